package absorb

import (
	"fmt"

	"github.com/ucb-cyarp/dataflowc/internal/ir"
)

// ReshapeForBlockSize implements the reshaping pass named in spec.md
// §4.6: after delay absorption, a FIFO port's initial-condition count may
// not be a multiple of blockSize*elementsPerItem. The surplus is moved
// into a new Delay placed adjacent to the FIFO — on the input side
// unless the FIFO's source is a MasterInput, in which case it must go on
// the output side instead. deferSpecialization controls the new Delay's
// BlockingSpecializationDeferred flag.
func ReshapeForBlockSize(d *ir.Design, fifo *ir.ThreadCrossingFIFO, portIdx int, dtype ir.DataType, deferSpecialization bool) (*ir.Delay, error) {
	inState := &fifo.InputState[portIdx]
	epi := elementsPerItem(dtype, inState.SubBlockSize)
	unit := inState.BlockSize * epi
	if unit <= 0 {
		return nil, nil
	}

	surplus := len(inState.InitConditions) % unit
	if surplus == 0 {
		return nil, nil
	}

	srcIsMasterInput := false
	if inArcs := fifo.InputPorts()[portIdx].Arcs(); len(inArcs) == 1 {
		if _, ok := inArcs[0].SrcPort().Node().(*ir.MasterInput); ok {
			srcIsMasterInput = true
		}
	}

	if !srcIsMasterInput {
		return reshapeInputSide(d, fifo, portIdx, inState, epi, surplus, deferSpecialization)
	}
	return reshapeOutputSide(d, fifo, portIdx, dtype, surplus, deferSpecialization)
}

// reshapeInputSide moves the tail surplus primitive elements of the
// FIFO's input initial conditions into a new Delay spliced between the
// FIFO's current source and the FIFO itself.
func reshapeInputSide(d *ir.Design, fifo *ir.ThreadCrossingFIFO, portIdx int, state *ir.FIFOPortState, epi, surplus int, defer_ bool) (*ir.Delay, error) {
	inArcs := fifo.InputPorts()[portIdx].Arcs()
	if len(inArcs) != 1 {
		return nil, ir.NewPreconditionError(fifo, "reshape requires exactly one input arc")
	}
	arc := inArcs[0]
	srcPort := arc.SrcPort()
	dtype := arc.DataType()
	sampleTime := arc.SampleTime()

	tailStart := len(state.InitConditions) - surplus
	tail := append([]int64(nil), state.InitConditions[tailStart:]...)
	state.InitConditions = state.InitConditions[:tailStart]

	delayValue := surplus / epi
	delay := ir.NewDelay(fmt.Sprintf("%s_in%d_reshape", fifo.Name(), portIdx), delayValue, int64ToNumeric(tail))
	delay.DeferredBlockSize = state.BlockSize
	delay.DeferredSubBlockSize = 1
	delay.BlockingSpecializationDeferred = defer_
	delay.SetParent(fifo.Parent())
	delay.SetPartition(fifo.Partition())
	delay.SetContextStack(fifo.ContextStack())
	d.AddNode(delay, fifo.Parent() == nil)
	if container, ok := fifo.Parent().(ir.ChildContainer); ok {
		container.AddChild(delay)
	}

	if oc := fifo.OrderConstraintInput(); oc != nil && oc.NumArcs() > 0 {
		delay.EnsureOrderConstraintPorts(delay)
		for _, a := range oc.Arcs() {
			a.SetDstPort(delay.OrderConstraintInput())
		}
	}

	d.Disconnect(arc)
	d.Connect(srcPort, delay.InputPorts()[0], dtype, sampleTime)
	d.Connect(delay.OutputPorts()[0], fifo.InputPorts()[portIdx], dtype, sampleTime)

	return delay, nil
}

// reshapeOutputSide moves the head surplus primitive elements of the
// FIFO's output initial conditions into a new Delay spliced between the
// FIFO and every one of its direct consumers on that port, which must
// all share a single context and partition (spec.md §4.6).
func reshapeOutputSide(d *ir.Design, fifo *ir.ThreadCrossingFIFO, portIdx int, dtype ir.DataType, surplus int, defer_ bool) (*ir.Delay, error) {
	state := &fifo.OutputState[portIdx]
	epi := elementsPerItem(dtype, state.SubBlockSize)

	outArcs := fifo.OutputPorts()[portIdx].Arcs()
	if len(outArcs) == 0 {
		return nil, ir.NewPreconditionError(fifo, "reshape requires at least one output arc")
	}
	dst0 := outArcs[0].DstPort().Node()
	for _, a := range outArcs[1:] {
		if !sameContext(a.DstPort().Node(), dst0) {
			return nil, ir.NewPreconditionError(fifo, "all FIFO outputs must share one context and partition to reshape on the output side")
		}
	}

	head := append([]int64(nil), state.InitConditions[:surplus]...)
	state.InitConditions = state.InitConditions[surplus:]

	delayValue := surplus / epi
	delay := ir.NewDelay(fmt.Sprintf("%s_out%d_reshape", fifo.Name(), portIdx), delayValue, int64ToNumeric(head))
	delay.DeferredBlockSize = state.BlockSize
	delay.DeferredSubBlockSize = 1
	delay.BlockingSpecializationDeferred = defer_
	delay.SetParent(fifo.Parent())
	delay.SetPartition(dst0.Partition())
	delay.SetContextStack(dst0.ContextStack())
	d.AddNode(delay, fifo.Parent() == nil)
	if container, ok := fifo.Parent().(ir.ChildContainer); ok {
		container.AddChild(delay)
	}

	sampleTime := outArcs[0].SampleTime()
	d.Connect(fifo.OutputPorts()[portIdx], delay.InputPorts()[0], dtype, sampleTime)
	for _, a := range outArcs {
		dst := a.DstPort()
		st := a.SampleTime()
		d.Disconnect(a)
		d.Connect(delay.OutputPorts()[0], dst, dtype, st)
	}

	return delay, nil
}

// ReshapeToSizeBlocks shrinks a FIFO port's initial-condition count down
// to exactly target blocks (target*blockSize*elementsPerItem elements),
// discarding the tail. It is used by FIFO merging to align sibling FIFOs
// before bundling their ports together (spec.md §4.6, §4.7).
func ReshapeToSizeBlocks(fifo *ir.ThreadCrossingFIFO, portIdx int, dtype ir.DataType, onInput bool, target int) {
	var state *ir.FIFOPortState
	if onInput {
		state = &fifo.InputState[portIdx]
	} else {
		state = &fifo.OutputState[portIdx]
	}
	epi := elementsPerItem(dtype, state.SubBlockSize)
	keep := target * state.BlockSize * epi
	if keep < len(state.InitConditions) {
		state.InitConditions = state.InitConditions[:keep]
	}
}

// MinInitConditionBlocks computes, in units of blocks, the smallest
// initial-condition count across every port of every FIFO in a merge
// group (spec.md §4.7 step 2).
func MinInitConditionBlocks(fifos []*ir.ThreadCrossingFIFO, dtype ir.DataType) int {
	min := -1
	consider := func(state ir.FIFOPortState) {
		epi := elementsPerItem(dtype, state.SubBlockSize)
		unit := state.BlockSize * epi
		if unit <= 0 {
			return
		}
		blocks := len(state.InitConditions) / unit
		if min == -1 || blocks < min {
			min = blocks
		}
	}
	for _, f := range fifos {
		for _, s := range f.InputState {
			consider(s)
		}
		for _, s := range f.OutputState {
			consider(s)
		}
	}
	if min == -1 {
		return 0
	}
	return min
}

func int64ToNumeric(vals []int64) []ir.NumericValue {
	out := make([]ir.NumericValue, len(vals))
	for i, v := range vals {
		out[i] = ir.NewInt(v)
	}
	return out
}
