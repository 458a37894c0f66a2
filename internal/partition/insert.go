// Package partition implements the partition-crossing FIFO insertion
// pass (spec.md §4.4) and partition propagation (§4.8).
package partition

import (
	"fmt"

	"github.com/ucb-cyarp/dataflowc/internal/ir"
	"github.com/ucb-cyarp/dataflowc/pkg/utils"
)

// InsertResult summarizes one run of FIFO insertion.
type InsertResult struct {
	FIFOsInserted []*ir.ThreadCrossingFIFO
	ArcsAdded     []*ir.Arc
	ArcsRemoved   []*ir.Arc
}

type partitionPair struct {
	src, dst int
}

// sourceGroup is the arcs sharing one source port within a partition
// pair, in discovery order.
type sourceGroup struct {
	srcPort *ir.Port
	arcs    []*ir.Arc
}

type pairGroups struct {
	order []*sourceGroup
}

// InsertFIFOs builds the map named in spec.md §4.4 — (srcPartition,
// dstPartition) -> groups of arcs sharing a single source port — and
// replaces each partition pair's crossing arcs with one
// ThreadCrossingFIFO carrying one port pair per group. A
// BlockingDomainBridge is never treated as an ordinary FIFO candidate
// (SPEC_FULL.md §4): it marks a block-size change, not a partition
// change, but when a bridge happens to sit at a partition boundary it is
// folded into the inserted FIFO rather than left dangling beside it.
func InsertFIFOs(d *ir.Design, defaultFIFOLength int, log utils.Logger) (*InsertResult, error) {
	res := &InsertResult{}

	pairOrder, groupsByPair := bucketCrossingArcs(d)

	for _, pair := range pairOrder {
		groups := groupsByPair[pair]
		fifo, addedArcs, err := insertFIFOForPair(d, pair, groups, defaultFIFOLength)
		if err != nil {
			return res, err
		}
		res.FIFOsInserted = append(res.FIFOsInserted, fifo)
		res.ArcsAdded = append(res.ArcsAdded, addedArcs...)

		if log != nil {
			log.Info("inserted FIFO %s between partition %d and %d (%d port(s))", fifo.Name(), pair.src, pair.dst, len(groups.order))
		}
	}

	return res, nil
}

// bucketCrossingArcs scans every arc in the design and buckets the ones
// that cross a partition boundary first by partition pair and then, in
// first-seen order, by shared source port.
func bucketCrossingArcs(d *ir.Design) ([]partitionPair, map[partitionPair]*pairGroups) {
	var pairOrder []partitionPair
	byPair := make(map[partitionPair]*pairGroups)

	for _, a := range d.Arcs {
		src := a.SrcPort().Node()
		dst := a.DstPort().Node()
		if src.Partition() == dst.Partition() {
			continue
		}

		pair := partitionPair{src.Partition(), dst.Partition()}
		pg, ok := byPair[pair]
		if !ok {
			pg = &pairGroups{}
			byPair[pair] = pg
			pairOrder = append(pairOrder, pair)
		}

		var grp *sourceGroup
		for _, existing := range pg.order {
			if existing.srcPort == a.SrcPort() {
				grp = existing
				break
			}
		}
		if grp == nil {
			grp = &sourceGroup{srcPort: a.SrcPort()}
			pg.order = append(pg.order, grp)
		}
		grp.arcs = append(grp.arcs, a)
	}

	return pairOrder, byPair
}

// insertFIFOForPair builds the single ThreadCrossingFIFO servicing one
// partition pair, adding one port pair per source-port group (spec.md
// §4.4 steps 1-5).
func insertFIFOForPair(d *ir.Design, pair partitionPair, groups *pairGroups, defaultFIFOLength int) (*ir.ThreadCrossingFIFO, []*ir.Arc, error) {
	var addedArcs []*ir.Arc

	fifo := ir.NewThreadCrossingFIFO(fmt.Sprintf("fifo_%d_%d", pair.src, pair.dst), defaultFIFOLength)
	fifo.SetPartition(pair.src)

	first := groups.order[0].srcPort.Node()
	fifo.SetBaseSubBlockingLength(first.BaseSubBlockingLength())
	fifo.SetContextStack(findContextForBlockingBridgeOrFIFO(first))

	var parent ir.Node
	if bridge, ok := first.(*ir.BlockingDomainBridge); ok {
		parent = bridge.Parent()
	} else {
		parent = findInsertionPointForBlockingBridgeOrFIFO(first)
	}
	fifo.SetParent(parent)
	d.AddNode(fifo, parent == nil)
	if container, ok := parent.(ir.ChildContainer); ok {
		container.AddChild(fifo)
	}

	for _, grp := range groups.order {
		srcNode := grp.srcPort.Node()
		bridge, srcIsBridge := srcNode.(*ir.BlockingDomainBridge)

		inIdx, outIdx := fifo.AddPort()

		dstSubBlock := -1
		for _, a := range grp.arcs {
			n := a.DstPort().Node().BaseSubBlockingLength()
			if dstSubBlock == -1 {
				dstSubBlock = n
			} else if n != dstSubBlock {
				return nil, nil, ir.NewInvariantError(fifo, "base sub-blocking length mismatch across a partition-crossing arc group")
			}
		}
		fifo.OutputState[outIdx].SubBlockSize = dstSubBlock
		fifo.InputState[inIdx].SubBlockSize = dstSubBlock

		// Step 3: retarget every arc in the group onto the FIFO's output
		// side; a port's arc set already fans out naturally, so one
		// output port serves every arc in the group.
		for _, a := range grp.arcs {
			a.SetSrcPort(fifo.OutputPorts()[outIdx])
			a.MakePartitionCrossing(0, 1)
		}

		// Step 4: a BlockingDomainBridge source rewires its own input
		// arc (and any order-constraint arcs, step 5) directly to the
		// FIFO port-for-port instead of gaining a fresh connecting arc.
		if srcIsBridge {
			if len(bridge.InputPorts()) != 1 || bridge.InputPorts()[0].NumArcs() != 1 {
				return nil, nil, ir.NewInvariantError(bridge, "BlockingDomainBridge must have exactly one input arc at FIFO insertion")
			}
			bridgeInArc := bridge.InputPorts()[0].Arcs()[0]
			bridgeInArc.SetDstPort(fifo.InputPorts()[inIdx])

			if oc := bridge.OrderConstraintInput(); oc != nil && oc.NumArcs() > 0 {
				fifo.EnsureOrderConstraintPorts(fifo)
				for _, a := range oc.Arcs() {
					a.SetDstPort(fifo.OrderConstraintInput())
				}
			}
			if oc := bridge.OrderConstraintOutput(); oc != nil && oc.NumArcs() > 0 {
				fifo.EnsureOrderConstraintPorts(fifo)
				for _, a := range oc.Arcs() {
					a.SetSrcPort(fifo.OrderConstraintOutput())
				}
			}

			if bc, ok := bridge.Parent().(ir.ChildContainer); ok {
				bc.RemoveChild(bridge)
			}
			d.RemoveNode(bridge)
		} else {
			first := grp.arcs[0]
			inArc := d.Connect(grp.srcPort, fifo.InputPorts()[inIdx], first.DataType(), first.SampleTime())
			addedArcs = append(addedArcs, inArc)
		}
	}

	return fifo, addedArcs, nil
}

// findContextForBlockingBridgeOrFIFO returns the context stack a new
// FIFO (or the bridge it absorbs) should inherit from its source node:
// the enclosing context with ClockDomain/BlockingDomain scopes stripped
// and EnabledSubSystem/Mux scopes preserved. This IR only ever records
// EnabledSubSystem/Mux roots on a ContextStack — clock-domain and
// blocking-domain boundaries live on individual node fields, not as
// ContextRoots — so the strip is the identity here; the helper exists so
// a future clock-domain-as-context-root addition has a single seam to
// change (mirrors internal/merge/fifo.go's reducedContextKey).
func findContextForBlockingBridgeOrFIFO(src ir.Node) ir.ContextStack {
	return src.ContextStack()
}

// findInsertionPointForBlockingBridgeOrFIFO returns the parent a newly
// inserted FIFO should live under when its source is not itself a
// BlockingDomainBridge: alongside the source node, so the FIFO doesn't
// drift away from the subsystem nesting that produced the crossing arc.
func findInsertionPointForBlockingBridgeOrFIFO(src ir.Node) ir.Node {
	return src.Parent()
}
