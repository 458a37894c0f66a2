package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ucb-cyarp/dataflowc/internal/ir"
)

// fixtureFile is the on-disk JSON shape loaded by --design. It is
// deliberately not a GraphML import: the dialect walk that interprets
// an external GraphML file into this shape is an out-of-scope external
// collaborator (spec.md §1). This is a flat node/arc list built for
// exercising the pass pipeline directly, analogous to the teacher's
// -i test-data-file flag for its analyze command.
type fixtureFile struct {
	Nodes []fixtureNode `json:"nodes"`
	Arcs  []fixtureArc  `json:"arcs"`
}

type fixtureNode struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Name      string            `json:"name"`
	Partition int               `json:"partition"`
	Attrs     map[string]string `json:"attrs"`
}

type fixtureArc struct {
	SrcID      string  `json:"srcId"`
	SrcPort    int     `json:"srcPort"`
	DstID      string  `json:"dstId"`
	DstPort    int     `json:"dstPort"`
	Signed     bool    `json:"signed"`
	Float      bool    `json:"float"`
	IntBits    int     `json:"intBits"`
	FracBits   int     `json:"fracBits"`
	SampleTime float64 `json:"sampleTime"`
}

// loadFixtureFile reads and parses a fixture file from path.
func loadFixtureFile(path string) (*fixtureFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read design fixture %s: %w", path, err)
	}
	var f fixtureFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse design fixture %s: %w", path, err)
	}
	return &f, nil
}

// buildDesign constructs an ir.Design from a parsed fixtureFile using the
// default node factory, then wires its arcs by id/port reference.
func buildDesign(f *fixtureFile) (*ir.Design, error) {
	d := ir.NewDesign()
	factory := ir.DefaultNodeFactory{}

	byID := make(map[string]ir.Node, len(f.Nodes))
	for _, fn := range f.Nodes {
		n, err := factory.Create(fn.Type, fn.Name, fn.Attrs)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", fn.ID, err)
		}
		n.SetPartition(fn.Partition)
		d.AddNode(n, true)
		byID[fn.ID] = n
	}

	for i, fa := range f.Arcs {
		src, ok := byID[fa.SrcID]
		if !ok {
			return nil, fmt.Errorf("arc %d: unknown source node %q", i, fa.SrcID)
		}
		dst, ok := byID[fa.DstID]
		if !ok {
			return nil, fmt.Errorf("arc %d: unknown destination node %q", i, fa.DstID)
		}
		srcPorts := src.OutputPorts()
		if fa.SrcPort < 0 || fa.SrcPort >= len(srcPorts) {
			return nil, fmt.Errorf("arc %d: source node %q has no output port %d", i, fa.SrcID, fa.SrcPort)
		}
		dstPorts := dst.InputPorts()
		if fa.DstPort < 0 || fa.DstPort >= len(dstPorts) {
			return nil, fmt.Errorf("arc %d: destination node %q has no input port %d", i, fa.DstID, fa.DstPort)
		}

		dtype := ir.DataType{Signed: fa.Signed, Float: fa.Float, IntBits: fa.IntBits, FracBits: fa.FracBits}
		sampleTime := fa.SampleTime
		if sampleTime == 0 {
			sampleTime = 1.0
		}
		d.Connect(srcPorts[fa.SrcPort], dstPorts[fa.DstPort], dtype, sampleTime)
	}

	return d, nil
}

// builtinFixture builds the default design driven when no --design file
// is given: a 3-tap fixed-coefficient DiscreteFIR feeding a Gain, with
// the Gain's output looped back to the FIR so every port carries exactly
// one arc (mirroring the ring shape the pass-driver tests use, so the
// built-in fixture validates cleanly start to finish).
func builtinFixture() *ir.Design {
	d := ir.NewDesign()
	dtype := ir.Scalar(true, 16)

	fir := ir.NewDiscreteFIR("fir0", 3, true, []ir.NumericValue{
		ir.NewInt(1), ir.NewInt(-2), ir.NewInt(1),
	}, []ir.NumericValue{ir.NewInt(0)})
	fir.SetPartition(0)
	d.AddNode(fir, true)

	gain := ir.NewGain("gain0", []ir.NumericValue{ir.NewInt(4)})
	gain.SetPartition(1)
	d.AddNode(gain, true)

	d.Connect(gain.OutputPorts()[0], fir.InputPorts()[0], dtype, 1.0)
	d.Connect(fir.OutputPorts()[0], gain.InputPorts()[0], dtype, 1.0)

	return d
}
