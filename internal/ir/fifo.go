package ir

import "fmt"

// FIFOPortState holds the per-port bookkeeping a ThreadCrossingFIFO
// carries in parallel arrays, one slot per port index (spec.md §4.4,
// §4.7): initial conditions queued in the FIFO at start, the block/
// sub-block size negotiated for that port, its clock domain, and any
// index expressions recorded for export.
type FIFOPortState struct {
	InitConditions []int64
	BlockSize      int
	SubBlockSize   int
	ClockDomain    int
	IndexExprs     []string
}

// ThreadCrossingFIFO is inserted by the partition-crossing pass (spec.md
// §4.4), one per (source partition, destination partition) pair. It owns
// one input and one output port per group of crossing arcs that share a
// source port; FIFOMerge (§4.7) can grow its port count when several
// FIFOs for the same partition pair are combined.
type ThreadCrossingFIFO struct {
	NodeBase

	FifoLength int
	InputState  []FIFOPortState
	OutputState []FIFOPortState
}

func NewThreadCrossingFIFO(name string, fifoLength int) *ThreadCrossingFIFO {
	f := &ThreadCrossingFIFO{FifoLength: fifoLength}
	InitBase(&f.NodeBase, f, 0, 0)
	f.SetName(name)
	return f
}

func (f *ThreadCrossingFIFO) TypeName() string { return "ThreadCrossingFIFO" }
func (f *ThreadCrossingFIFO) Label() string {
	return fmt.Sprintf("ThreadCrossingFIFO(%s, len=%d)", f.Name(), f.FifoLength)
}
func (f *ThreadCrossingFIFO) CanExpand() bool { return false }

// AddPort appends one input and one output port to the FIFO, along with
// matching zero-valued port state slots, and returns their indices.
func (f *ThreadCrossingFIFO) AddPort() (inIdx, outIdx int) {
	f.inputPorts = append(f.inputPorts, NewPort(f, DirInput, len(f.inputPorts)))
	f.outputPorts = append(f.outputPorts, NewPort(f, DirOutput, len(f.outputPorts)))
	f.InputState = append(f.InputState, FIFOPortState{})
	f.OutputState = append(f.OutputState, FIFOPortState{})
	return len(f.inputPorts) - 1, len(f.outputPorts) - 1
}

func (f *ThreadCrossingFIFO) Validate() error {
	if len(f.InputState) != len(f.InputPorts()) {
		return NewInvariantError(f, "InputState length must match input port count")
	}
	if len(f.OutputState) != len(f.OutputPorts()) {
		return NewInvariantError(f, "OutputState length must match output port count")
	}
	if len(f.InputPorts()) != len(f.OutputPorts()) {
		return NewInvariantError(f, "FIFO must have matching input/output port counts")
	}
	if f.FifoLength <= 0 {
		return NewStructuralError(f, "FIFO length must be positive")
	}
	return nil
}

func (f *ThreadCrossingFIFO) ShallowClone(newParent Node) Node {
	clone := &ThreadCrossingFIFO{
		FifoLength:  f.FifoLength,
		InputState:  append([]FIFOPortState(nil), f.InputState...),
		OutputState: append([]FIFOPortState(nil), f.OutputState...),
	}
	InitBase(&clone.NodeBase, clone, 0, 0)
	for range f.InputState {
		clone.inputPorts = append(clone.inputPorts, NewPort(clone, DirInput, len(clone.inputPorts)))
	}
	for range f.OutputState {
		clone.outputPorts = append(clone.outputPorts, NewPort(clone, DirOutput, len(clone.outputPorts)))
	}
	CloneBaseInto(&f.NodeBase, &clone.NodeBase)
	clone.SetParent(newParent)
	return clone
}
