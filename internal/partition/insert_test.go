package partition

import (
	"testing"

	"github.com/ucb-cyarp/dataflowc/internal/ir"
	"github.com/ucb-cyarp/dataflowc/pkg/utils"
)

func TestInsertFIFOs_SingleCrossingArcGetsOnePortPair(t *testing.T) {
	d := ir.NewDesign()
	dtype := ir.Scalar(true, 16)

	src := ir.NewGain("src", []ir.NumericValue{ir.NewInt(1)})
	src.SetPartition(0)
	dst := ir.NewGain("dst", []ir.NumericValue{ir.NewInt(1)})
	dst.SetPartition(1)
	d.AddNode(src, true)
	d.AddNode(dst, true)
	arc := d.Connect(src.OutputPorts()[0], dst.InputPorts()[0], dtype, 1.0)

	res, err := InsertFIFOs(d, 4, &utils.NullLogger{})
	if err != nil {
		t.Fatalf("InsertFIFOs: %v", err)
	}
	if len(res.FIFOsInserted) != 1 {
		t.Fatalf("expected one FIFO, got %d", len(res.FIFOsInserted))
	}
	fifo := res.FIFOsInserted[0]
	if len(fifo.InputPorts()) != 1 || len(fifo.OutputPorts()) != 1 {
		t.Fatalf("expected exactly one port pair, got %d in / %d out", len(fifo.InputPorts()), len(fifo.OutputPorts()))
	}
	if arc.SrcPort() != fifo.OutputPorts()[0] {
		t.Fatalf("expected the original crossing arc retargeted onto the FIFO's output")
	}
	if arc.Crossing() == nil {
		t.Fatalf("expected the retargeted arc to carry partition-crossing metadata")
	}
	if len(res.ArcsAdded) != 1 {
		t.Fatalf("expected one new arc from the source into the FIFO, got %d", len(res.ArcsAdded))
	}
	newArc := res.ArcsAdded[0]
	if newArc.SrcPort() != src.OutputPorts()[0] || newArc.DstPort() != fifo.InputPorts()[0] {
		t.Fatalf("expected the new arc to connect src directly to the FIFO's input port")
	}
}

func TestInsertFIFOs_SharedSourcePortFanOutStaysOnePortPair(t *testing.T) {
	d := ir.NewDesign()
	dtype := ir.Scalar(true, 16)

	src := ir.NewGain("src", []ir.NumericValue{ir.NewInt(1)})
	src.SetPartition(0)
	dst1 := ir.NewGain("dst1", []ir.NumericValue{ir.NewInt(1)})
	dst1.SetPartition(1)
	dst2 := ir.NewGain("dst2", []ir.NumericValue{ir.NewInt(1)})
	dst2.SetPartition(1)
	d.AddNode(src, true)
	d.AddNode(dst1, true)
	d.AddNode(dst2, true)

	d.Connect(src.OutputPorts()[0], dst1.InputPorts()[0], dtype, 1.0)
	d.Connect(src.OutputPorts()[0], dst2.InputPorts()[0], dtype, 1.0)

	res, err := InsertFIFOs(d, 4, &utils.NullLogger{})
	if err != nil {
		t.Fatalf("InsertFIFOs: %v", err)
	}
	if len(res.FIFOsInserted) != 1 {
		t.Fatalf("expected one FIFO for the single partition pair, got %d", len(res.FIFOsInserted))
	}
	fifo := res.FIFOsInserted[0]
	if len(fifo.OutputPorts()) != 1 {
		t.Fatalf("expected both fan-out arcs to share one port pair, got %d output ports", len(fifo.OutputPorts()))
	}
	if len(res.ArcsAdded) != 1 {
		t.Fatalf("expected exactly one new source-to-FIFO arc for the shared source port, got %d", len(res.ArcsAdded))
	}

	dst1Arc := dst1.InputPorts()[0].Arcs()[0]
	dst2Arc := dst2.InputPorts()[0].Arcs()[0]
	if dst1Arc.SrcPort() != fifo.OutputPorts()[0] || dst2Arc.SrcPort() != fifo.OutputPorts()[0] {
		t.Fatalf("expected both fanned-out arcs retargeted onto the same FIFO output port")
	}
}

func TestInsertFIFOs_DistinctSourcePortsGetDistinctPortPairs(t *testing.T) {
	d := ir.NewDesign()
	dtype := ir.Scalar(true, 16)

	srcA := ir.NewGain("srcA", []ir.NumericValue{ir.NewInt(1)})
	srcA.SetPartition(0)
	srcB := ir.NewGain("srcB", []ir.NumericValue{ir.NewInt(1)})
	srcB.SetPartition(0)
	dst1 := ir.NewGain("dst1", []ir.NumericValue{ir.NewInt(1)})
	dst1.SetPartition(1)
	dst2 := ir.NewGain("dst2", []ir.NumericValue{ir.NewInt(1)})
	dst2.SetPartition(1)
	d.AddNode(srcA, true)
	d.AddNode(srcB, true)
	d.AddNode(dst1, true)
	d.AddNode(dst2, true)

	d.Connect(srcA.OutputPorts()[0], dst1.InputPorts()[0], dtype, 1.0)
	d.Connect(srcB.OutputPorts()[0], dst2.InputPorts()[0], dtype, 1.0)

	res, err := InsertFIFOs(d, 4, &utils.NullLogger{})
	if err != nil {
		t.Fatalf("InsertFIFOs: %v", err)
	}
	if len(res.FIFOsInserted) != 1 {
		t.Fatalf("expected one FIFO servicing the one partition pair, got %d", len(res.FIFOsInserted))
	}
	fifo := res.FIFOsInserted[0]
	if len(fifo.InputPorts()) != 2 || len(fifo.OutputPorts()) != 2 {
		t.Fatalf("expected two distinct port pairs for two distinct source ports, got %d in / %d out",
			len(fifo.InputPorts()), len(fifo.OutputPorts()))
	}
}

func TestInsertFIFOs_BlockingDomainBridgeIsFoldedIntoTheFIFO(t *testing.T) {
	d := ir.NewDesign()
	dtype := ir.Scalar(true, 16)

	upstream := ir.NewGain("upstream", []ir.NumericValue{ir.NewInt(1)})
	upstream.SetPartition(0)
	bridge := ir.NewBlockingDomainBridge("bridge", 4)
	bridge.SetPartition(0)
	dst := ir.NewGain("dst", []ir.NumericValue{ir.NewInt(1)})
	dst.SetPartition(1)
	d.AddNode(upstream, true)
	d.AddNode(bridge, true)
	d.AddNode(dst, true)

	d.Connect(upstream.OutputPorts()[0], bridge.InputPorts()[0], dtype, 1.0)
	d.Connect(bridge.OutputPorts()[0], dst.InputPorts()[0], dtype, 1.0)

	res, err := InsertFIFOs(d, 4, &utils.NullLogger{})
	if err != nil {
		t.Fatalf("InsertFIFOs: %v", err)
	}
	if len(res.FIFOsInserted) != 1 {
		t.Fatalf("expected one FIFO, got %d", len(res.FIFOsInserted))
	}
	fifo := res.FIFOsInserted[0]

	if _, ok := d.NodeByID(bridge.ID()); ok {
		t.Fatalf("expected the BlockingDomainBridge to be removed once folded into the FIFO")
	}
	upstreamArc := upstream.OutputPorts()[0].Arcs()[0]
	if upstreamArc.DstPort() != fifo.InputPorts()[0] {
		t.Fatalf("expected the bridge's upstream arc rewired directly onto the FIFO's input port")
	}
	if len(res.ArcsAdded) != 0 {
		t.Fatalf("expected no new arc to be created when folding a bridge, got %d", len(res.ArcsAdded))
	}
}
