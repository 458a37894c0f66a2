package merge

import (
	"testing"

	"github.com/ucb-cyarp/dataflowc/internal/ir"
	"github.com/ucb-cyarp/dataflowc/pkg/utils"
)

// twoCrossingFIFOs wires two independent single-port FIFOs, each crossing
// from partition 0 to partition 1, so they share a partitionPair and (with
// empty context stacks on both) land in the same merge group.
func twoCrossingFIFOs(d *ir.Design, dtype ir.DataType) (fifo1, fifo2 *ir.ThreadCrossingFIFO, src1, src2, dst1, dst2 *ir.Gain) {
	fifo1 = ir.NewThreadCrossingFIFO("fifo1", 4)
	fifo1.SetPartition(0)
	fifo2 = ir.NewThreadCrossingFIFO("fifo2", 4)
	fifo2.SetPartition(0)
	d.AddNode(fifo1, true)
	d.AddNode(fifo2, true)
	fifo1.AddPort()
	fifo2.AddPort()

	src1 = ir.NewGain("src1", []ir.NumericValue{ir.NewInt(1)})
	src1.SetPartition(0)
	src2 = ir.NewGain("src2", []ir.NumericValue{ir.NewInt(1)})
	src2.SetPartition(0)
	dst1 = ir.NewGain("dst1", []ir.NumericValue{ir.NewInt(1)})
	dst1.SetPartition(1)
	dst2 = ir.NewGain("dst2", []ir.NumericValue{ir.NewInt(1)})
	dst2.SetPartition(1)
	d.AddNode(src1, true)
	d.AddNode(src2, true)
	d.AddNode(dst1, true)
	d.AddNode(dst2, true)

	d.Connect(src1.OutputPorts()[0], fifo1.InputPorts()[0], dtype, 1.0)
	d.Connect(fifo1.OutputPorts()[0], dst1.InputPorts()[0], dtype, 1.0)
	d.Connect(src2.OutputPorts()[0], fifo2.InputPorts()[0], dtype, 1.0)
	d.Connect(fifo2.OutputPorts()[0], dst2.InputPorts()[0], dtype, 1.0)

	return
}

func TestMerge_TwoFIFOsAcrossSamePartitionPairMergeIntoOne(t *testing.T) {
	d := ir.NewDesign()
	dtype := ir.Scalar(true, 16)
	fifo1, fifo2, src2, _, dst2, _ := twoCrossingFIFOs(d, dtype)
	_ = src2
	_ = dst2

	res, err := Merge(d, false, &utils.NullLogger{})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if res.Merged != 1 {
		t.Fatalf("expected one merge group, got %d", res.Merged)
	}
	if len(res.Deleted) != 1 || res.Deleted[0] != fifo2 {
		t.Fatalf("expected fifo2 to be the one deleted, got %v", res.Deleted)
	}
	if len(fifo1.InputPorts()) != 2 || len(fifo1.OutputPorts()) != 2 {
		t.Fatalf("expected the surviving FIFO to gain a second port pair, got %d in / %d out",
			len(fifo1.InputPorts()), len(fifo1.OutputPorts()))
	}
	if _, ok := d.NodeByID(fifo2.ID()); ok {
		t.Fatalf("expected fifo2 removed from the design once merged")
	}

	src2Arc := fifo1.InputPorts()[1].Arcs()
	if len(src2Arc) != 1 {
		t.Fatalf("expected src2's arc retargeted onto the surviving FIFO's second input port")
	}
	dst2Arc := fifo1.OutputPorts()[1].Arcs()
	if len(dst2Arc) != 1 {
		t.Fatalf("expected dst2's arc retargeted onto the surviving FIFO's second output port")
	}
}

func TestMerge_DistinctContextsDoNotMergeUnlessIgnored(t *testing.T) {
	d := ir.NewDesign()
	dtype := ir.Scalar(true, 16)
	fifo1, fifo2, _, _, _, _ := twoCrossingFIFOs(d, dtype)

	rootA := ir.NewMux("muxA", 2)
	rootB := ir.NewMux("muxB", 2)
	d.AddNode(rootA, true)
	d.AddNode(rootB, true)
	fifo1.SetContextStack(ir.ContextStack{{Root: rootA, SubContext: 0}})
	fifo2.SetContextStack(ir.ContextStack{{Root: rootB, SubContext: 0}})

	res, err := Merge(d, false, &utils.NullLogger{})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if res.Merged != 0 {
		t.Fatalf("expected distinct contexts to block merging, got %d merges", res.Merged)
	}
	if _, ok := d.NodeByID(fifo1.ID()); !ok {
		t.Fatalf("expected fifo1 to remain in the design")
	}
	if _, ok := d.NodeByID(fifo2.ID()); !ok {
		t.Fatalf("expected fifo2 to remain in the design")
	}
}
