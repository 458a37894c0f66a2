// Package absorb implements delay absorption into ThreadCrossingFIFOs
// (spec.md §4.5) and the initial-condition reshaping that follows it
// (§4.6).
package absorb

import "github.com/ucb-cyarp/dataflowc/internal/ir"

// Status is the outcome of attempting to absorb a Delay into an
// adjacent FIFO, matching the taxonomy spec.md §4.5 names.
type Status int

const (
	// NoAbsorption: the preconditions for absorption were not met (wrong
	// node shape, order-constraint arcs present, partition/context
	// mismatch, or no room at all in the FIFO).
	NoAbsorption Status = iota
	// FullAbsorption: the Delay's entire initial condition fit within the
	// FIFO's remaining room; the Delay node is removed.
	FullAbsorption
	// PartialAbsorptionFullFIFO: only part of the initial condition fit;
	// the FIFO is now at capacity and a shrunk Delay remains.
	PartialAbsorptionFullFIFO
	// PartialAbsorptionMergeInitCond: an output-side absorption consumed
	// a downstream Delay's entire initial condition even though the FIFO
	// was not completely filled, because the common suffix across all
	// downstream Delays ran out first.
	PartialAbsorptionMergeInitCond
)

func (s Status) String() string {
	switch s {
	case NoAbsorption:
		return "NO_ABSORPTION"
	case FullAbsorption:
		return "FULL_ABSORPTION"
	case PartialAbsorptionFullFIFO:
		return "PARTIAL_ABSORPTION_FULL_FIFO"
	case PartialAbsorptionMergeInitCond:
		return "PARTIAL_ABSORPTION_MERGE_INIT_COND"
	default:
		return "UNKNOWN"
	}
}

// elementsPerItem is typeElements/subBlockSize (spec.md §4): the number
// of primitive scalar elements making up one sub-blocked item of dtype.
func elementsPerItem(dtype ir.DataType, subBlockSize int) int {
	if subBlockSize <= 0 {
		subBlockSize = 1
	}
	n := dtype.NumElements() / subBlockSize
	if n <= 0 {
		n = 1
	}
	return n
}

// sameContext reports whether a and b share the same partition and an
// equal context stack, the precondition every absorption step shares.
func sameContext(a, b ir.Node) bool {
	if a.Partition() != b.Partition() {
		return false
	}
	return a.ContextStack().Equal(b.ContextStack())
}

// InputSide implements absorbAdjacentInputDelay (spec.md §4.5): folds a
// plain Delay feeding a single-port FIFO's sole input directly into that
// port's initial conditions. portIdx identifies the FIFO port; dtype is
// the DataType carried by the arc between the Delay and the FIFO.
func InputSide(d *ir.Design, fifo *ir.ThreadCrossingFIFO, portIdx int, delay *ir.Delay, dtype ir.DataType) (Status, error) {
	in := fifo.InputPorts()[portIdx]
	if in.NumArcs() != 1 {
		return NoAbsorption, nil
	}
	if oc := fifo.OrderConstraintInput(); oc != nil && oc.NumArcs() != 0 {
		return NoAbsorption, nil
	}
	if !sameContext(delay, fifo) {
		return NoAbsorption, nil
	}
	if len(delay.OutputPorts()[0].Arcs()) != 1 {
		return NoAbsorption, nil
	}

	state := &fifo.InputState[portIdx]
	epi := elementsPerItem(dtype, state.SubBlockSize)

	if state.SubBlockSize > 1 && delay.DelayValue != 0 && !delay.BlockingSpecializationDeferred {
		return NoAbsorption, ir.NewPreconditionError(delay, "sub-block absorption requires blockingSpecializationDeferred")
	}

	roomInFifo := state.BlockSize*epi*(fifo.FifoLength-1) - len(state.InitConditions)
	if roomInFifo <= 0 {
		return NoAbsorption, nil
	}

	delayCapacity := delay.DelayValue * epi
	values := toInt64(delay.InitCondition, epi)

	if delayCapacity <= roomInFifo {
		state.InitConditions = append(state.InitConditions, values...)
		rewireInputOrderConstraints(delay, fifo)
		removeAndBypass(d, delay)
		return FullAbsorption, nil
	}

	absorbBlocks := (roomInFifo / epi) * epi
	absorbed := values
	if absorbBlocks < len(values) {
		absorbed = values[:absorbBlocks]
	}
	state.InitConditions = append(state.InitConditions, absorbed...)

	residual := values[len(absorbed):]
	delay.InitCondition = fromInt64(residual)
	delay.DelayValue = len(residual) / epi
	return PartialAbsorptionFullFIFO, nil
}

// OutputSide implements absorbAdjacentOutputDelay (spec.md §4.5): finds
// the longest common initial-condition suffix shared by every plain
// Delay directly downstream of a FIFO port and folds it back into that
// port's output initial conditions.
func OutputSide(d *ir.Design, fifo *ir.ThreadCrossingFIFO, portIdx int, dtype ir.DataType, downstream []*ir.Delay) (Status, error) {
	if oc := fifo.OrderConstraintOutput(); oc != nil && oc.NumArcs() != 0 {
		return NoAbsorption, nil
	}
	if len(downstream) == 0 {
		return NoAbsorption, nil
	}
	for _, dl := range downstream {
		if !sameContext(dl, fifo) {
			return NoAbsorption, nil
		}
	}

	state := &fifo.OutputState[portIdx]
	epi := elementsPerItem(dtype, state.SubBlockSize)

	suffix := commonSuffixLen(downstream, epi)
	if suffix == 0 {
		return NoAbsorption, nil
	}

	roomInFifo := state.BlockSize*epi*(fifo.FifoLength-1) - len(state.InitConditions)
	if roomInFifo <= 0 {
		return NoAbsorption, nil
	}

	absorb := suffix
	if roomInFifo < absorb {
		absorb = roomInFifo
	}
	absorb = (absorb / epi) * epi
	if absorb == 0 {
		return NoAbsorption, nil
	}

	first := downstream[0]
	firstVals := toInt64(first.InitCondition, epi)
	tail := firstVals[len(firstVals)-absorb:]
	state.InitConditions = append(state.InitConditions, tail...)

	status := PartialAbsorptionFullFIFO
	anyFullyConsumed := false
	for _, dl := range downstream {
		vals := toInt64(dl.InitCondition, epi)
		remaining := vals[:len(vals)-absorb]
		if len(remaining) == 0 {
			rewireOutputOrderConstraints(dl, fifo)
			removeAndBypass(d, dl)
			anyFullyConsumed = true
			continue
		}
		dl.InitCondition = fromInt64(remaining)
		dl.DelayValue = len(remaining) / epi
	}
	if anyFullyConsumed && absorb < suffix {
		status = PartialAbsorptionMergeInitCond
	}
	return status, nil
}

// commonSuffixLen returns the length, in primitive elements, of the
// longest initial-condition suffix shared by every Delay in ds.
func commonSuffixLen(ds []*ir.Delay, epi int) int {
	if len(ds) == 0 {
		return 0
	}
	min := len(toInt64(ds[0].InitCondition, epi))
	for _, dl := range ds[1:] {
		n := len(toInt64(dl.InitCondition, epi))
		if n < min {
			min = n
		}
	}
	first := toInt64(ds[0].InitCondition, epi)
	for l := min; l > 0; l-- {
		match := true
		suffixA := first[len(first)-l:]
		for _, dl := range ds[1:] {
			v := toInt64(dl.InitCondition, epi)
			suffixB := v[len(v)-l:]
			if !equalInt64(suffixA, suffixB) {
				match = false
				break
			}
		}
		if match {
			return l
		}
	}
	return 0
}

func equalInt64(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// rewireInputOrderConstraints moves a fully-absorbed Delay's
// order-constraint input arcs onto the FIFO's own order-constraint
// input port before the Delay is removed.
func rewireInputOrderConstraints(delay *ir.Delay, fifo *ir.ThreadCrossingFIFO) {
	oc := delay.OrderConstraintInput()
	if oc == nil || oc.NumArcs() == 0 {
		return
	}
	fifo.EnsureOrderConstraintPorts(fifo)
	for _, a := range oc.Arcs() {
		a.SetDstPort(fifo.OrderConstraintInput())
	}
}

func rewireOutputOrderConstraints(delay *ir.Delay, fifo *ir.ThreadCrossingFIFO) {
	oc := delay.OrderConstraintOutput()
	if oc == nil || oc.NumArcs() == 0 {
		return
	}
	fifo.EnsureOrderConstraintPorts(fifo)
	for _, a := range oc.Arcs() {
		a.SetSrcPort(fifo.OrderConstraintOutput())
	}
}

// removeAndBypass removes a fully-absorbed Delay from the design,
// reconnecting its single upstream producer directly to its downstream
// consumer(s) so the graph stays connected.
func removeAndBypass(d *ir.Design, delay *ir.Delay) {
	in := delay.InputPorts()[0]
	out := delay.OutputPorts()[0]

	inArcs := in.Arcs()
	outArcs := out.Arcs()
	if len(inArcs) != 1 {
		return
	}
	srcPort := inArcs[0].SrcPort()
	d.Disconnect(inArcs[0])

	for _, a := range outArcs {
		a.SetSrcPort(srcPort)
	}

	if container, ok := delay.Parent().(ir.ChildContainer); ok {
		container.RemoveChild(delay)
	}
	d.RemoveNode(delay)
}

func toInt64(vals []ir.NumericValue, epi int) []int64 {
	out := make([]int64, len(vals))
	for i, v := range vals {
		out[i] = int64(v.Real)
	}
	return out
}

func fromInt64(vals []int64) []ir.NumericValue {
	out := make([]ir.NumericValue, len(vals))
	for i, v := range vals {
		out[i] = ir.NewInt(v)
	}
	return out
}
