// Package merge implements FIFO merging across partition pairs
// (spec.md §4.7): combining multiple single- or few-port
// ThreadCrossingFIFOs that cross the same two partitions, sharing the
// same reduced context, into one wider FIFO.
package merge

import (
	"fmt"

	"github.com/ucb-cyarp/dataflowc/internal/absorb"
	"github.com/ucb-cyarp/dataflowc/internal/ir"
	"github.com/ucb-cyarp/dataflowc/pkg/utils"
)

// Result summarizes one run of FIFO merging.
type Result struct {
	Merged  int
	Deleted []*ir.ThreadCrossingFIFO
}

// partitionPair identifies the two partitions a FIFO crosses, derived
// from the FIFO's own partition and the partition of whatever its first
// output port feeds.
type partitionPair struct {
	a, b int
}

func pairOf(f *ir.ThreadCrossingFIFO) (partitionPair, bool) {
	if len(f.OutputPorts()) == 0 {
		return partitionPair{}, false
	}
	arcs := f.OutputPorts()[0].Arcs()
	if len(arcs) == 0 {
		return partitionPair{}, false
	}
	return partitionPair{f.Partition(), arcs[0].DstPort().Node().Partition()}, true
}

// reducedContextKey builds a comparable key for a FIFO's context stack
// with ClockDomain/BlockingDomain scopes stripped. This IR only ever
// records EnabledSubSystem/Mux roots on a ContextStack (clock-domain and
// blocking-domain boundaries are tracked on individual nodes/FIFOs, not
// as ContextRoots), so the "reduction" here is the identity — kept as an
// explicit step for symmetry with spec.md §4.7 and as the one seam a
// future clock-domain-as-context-root addition would hook into.
func reducedContextKey(f *ir.ThreadCrossingFIFO) string {
	key := ""
	for _, c := range f.ContextStack() {
		key += fmt.Sprintf("%d.%d#", c.Root.ID(), c.SubContext)
	}
	return key
}

// portDType returns the DataType used for elementsPerItem bookkeeping
// while reshaping sibling FIFOs to a common block count. Each port may
// in principle carry a different DataType; ReshapeToSizeBlocks is called
// per port with that port's own arc type, so this is resolved per call
// rather than once per group.
func portDType(f *ir.ThreadCrossingFIFO, idx int, onInput bool) ir.DataType {
	var arcs []*ir.Arc
	if onInput {
		arcs = f.InputPorts()[idx].Arcs()
	} else {
		arcs = f.OutputPorts()[idx].Arcs()
	}
	if len(arcs) == 0 {
		return ir.DataType{}
	}
	return arcs[0].DataType()
}

// Merge implements spec.md §4.7 over every ThreadCrossingFIFO in the
// design. ignoreContexts collapses every FIFO for a partition pair into
// one merge group regardless of context; otherwise FIFOs only merge with
// siblings sharing an identical reduced context stack.
func Merge(d *ir.Design, ignoreContexts bool, log utils.Logger) (*Result, error) {
	res := &Result{}

	buckets := make(map[partitionPair][]*ir.ThreadCrossingFIFO)
	for _, n := range d.Nodes {
		fifo, ok := n.(*ir.ThreadCrossingFIFO)
		if !ok {
			continue
		}
		pp, ok := pairOf(fifo)
		if !ok {
			continue
		}
		buckets[pp] = append(buckets[pp], fifo)
	}

	for _, fifos := range buckets {
		groups := make(map[string][]*ir.ThreadCrossingFIFO)
		for _, f := range fifos {
			key := ""
			if !ignoreContexts {
				key = reducedContextKey(f)
			}
			groups[key] = append(groups[key], f)
		}

		for _, group := range groups {
			if len(group) < 2 {
				continue
			}
			if err := mergeGroup(d, group, log); err != nil {
				return res, err
			}
			res.Merged++
			res.Deleted = append(res.Deleted, group[1:]...)
		}
	}

	return res, nil
}

// mergeGroup implements spec.md §4.7 steps 2-5 for one merge group.
func mergeGroup(d *ir.Design, group []*ir.ThreadCrossingFIFO, log utils.Logger) error {
	for _, f := range group {
		for idx := range f.InputState {
			dt := portDType(f, idx, true)
			target := absorb.MinInitConditionBlocks(group, dt)
			absorb.ReshapeToSizeBlocks(f, idx, dt, true, target)
		}
		for idx := range f.OutputState {
			dt := portDType(f, idx, false)
			target := absorb.MinInitConditionBlocks(group, dt)
			absorb.ReshapeToSizeBlocks(f, idx, dt, false, target)
		}
	}

	target := group[0]
	mostSpecificCtx := target.ContextStack()
	mostSpecificParent := target.Parent()

	for _, src := range group[1:] {
		if len(src.ContextStack()) < len(mostSpecificCtx) {
			mostSpecificCtx = mostSpecificCtx[:len(src.ContextStack())]
		}
		n := ir.FindMostSpecificCommonContext(mostSpecificCtx, src.ContextStack())
		mostSpecificCtx = mostSpecificCtx[:n]
		if src.Parent() != mostSpecificParent {
			mostSpecificParent = commonAncestorOf(mostSpecificParent, src.Parent())
		}

		for idx := range src.InputPorts() {
			newIn, newOut := target.AddPort()
			retargetPort(src.InputPorts()[idx], target.InputPorts()[newIn])
			retargetPort(src.OutputPorts()[idx], target.OutputPorts()[newOut])
			target.InputState[newIn] = src.InputState[idx]
			target.OutputState[newOut] = src.OutputState[idx]
		}
		transferOrderConstraints(src, target)

		if container, ok := src.Parent().(ir.ChildContainer); ok {
			container.RemoveChild(src)
		}
		d.RemoveNode(src)

		if log != nil {
			log.Info("merged FIFO %s into %s", src.Name(), target.Name())
		}
	}

	target.SetContextStack(mostSpecificCtx)
	relocate(target, mostSpecificParent)
	return nil
}

// retargetPort moves every arc currently attached to oldPort onto
// newPort, preserving direction.
func retargetPort(oldPort, newPort *ir.Port) {
	for _, a := range oldPort.Arcs() {
		if oldPort.Direction() == ir.DirInput {
			a.SetDstPort(newPort)
		} else {
			a.SetSrcPort(newPort)
		}
	}
}

func transferOrderConstraints(src, dst *ir.ThreadCrossingFIFO) {
	dst.EnsureOrderConstraintPorts(dst)
	if oc := src.OrderConstraintInput(); oc != nil {
		for _, a := range oc.Arcs() {
			a.SetDstPort(dst.OrderConstraintInput())
		}
	}
	if oc := src.OrderConstraintOutput(); oc != nil {
		for _, a := range oc.Arcs() {
			a.SetSrcPort(dst.OrderConstraintOutput())
		}
	}
}

// commonAncestorOf finds the most specific node reachable from both a's
// and b's inclusive ancestor chains (a/b themselves count as their own
// ancestor), or nil (top level) if they share none.
func commonAncestorOf(a, b ir.Node) ir.Node {
	reachable := make(map[ir.Node]bool)
	for n := a; n != nil; n = n.Parent() {
		reachable[n] = true
	}
	for n := b; n != nil; n = n.Parent() {
		if reachable[n] {
			return n
		}
	}
	return nil
}

// relocate reparents the surviving FIFO to newParent, the most-specific
// common ancestor of every merged FIFO (possibly top level).
func relocate(f *ir.ThreadCrossingFIFO, newParent ir.Node) {
	if old, ok := f.Parent().(ir.ChildContainer); ok {
		old.RemoveChild(f)
	}
	f.SetParent(newParent)
	if newParent == nil {
		return
	}
	if container, ok := newParent.(ir.ChildContainer); ok {
		container.AddChild(f)
	}
}
