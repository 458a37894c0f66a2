// Package expand implements the expansion engine: repeatedly replacing
// HighLevelNodes with equivalent primitive subgraphs until none remain
// (spec.md §4.3), the reference design being DiscreteFIR.
package expand

import (
	"github.com/ucb-cyarp/dataflowc/internal/ir"
	"github.com/ucb-cyarp/dataflowc/pkg/errors"
	"github.com/ucb-cyarp/dataflowc/pkg/utils"
)

// Result summarizes one run of the expansion engine over a design.
type Result struct {
	NodesAdded   []ir.Node
	ArcsAdded    []*ir.Arc
	NodesRemoved []ir.Node
	Rounds       int
}

// Run repeatedly scans the design for HighLevelNodes and expands them,
// following the six-step protocol named in spec.md §4.3:
//  1. find a not-yet-expanded HighLevelNode
//  2. call its Expand method
//  3. register the nodes/arcs it returns with the design
//  4. replace it with an ExpandedNode wrapping the original
//  5. repeat until no HighLevelNode remains unexpanded
//  6. return the accumulated added/removed sets for the pass driver's
//     ledger entry
//
// Run is itself sequential — HighLevelNodes may expand into further
// HighLevelNodes (e.g. a future composite filter expanding into
// DiscreteFIR stages), so each round must observe the previous round's
// output before deciding whether another pass is needed.
func Run(d *ir.Design, log utils.Logger) (*Result, error) {
	res := &Result{}
	for {
		target := findNextHighLevelNode(d)
		if target == nil {
			return res, nil
		}
		added, addedArcs, removed, err := target.Expand(d)
		if err != nil {
			return res, errors.Wrap(errors.CodeInvariant, "expansion failed", err)
		}

		placeholder := ir.NewExpandedNode(target.Name()+"_expanded", target)
		placeholder.SetParent(target.Parent())
		if container, ok := target.Parent().(ir.ChildContainer); ok {
			container.RemoveChild(target)
			container.AddChild(placeholder)
		}
		d.RemoveNode(target)
		d.AddNode(placeholder, target.Parent() == nil)

		for _, n := range added {
			placeholder.AddChild(n)
		}

		res.NodesAdded = append(res.NodesAdded, added...)
		res.ArcsAdded = append(res.ArcsAdded, addedArcs...)
		res.NodesRemoved = append(res.NodesRemoved, target)
		res.Rounds++

		if log != nil {
			log.Info("expanded %s (%s) into %d node(s)", target.Name(), target.TypeName(), len(added))
		}
	}
}

// findNextHighLevelNode returns an arbitrary not-yet-expanded
// HighLevelNode still present in the design, or nil if none remain.
// Iteration order follows Design.Nodes (insertion order), giving
// expansion a deterministic, repeatable order across runs on the same
// design (spec.md §5).
func findNextHighLevelNode(d *ir.Design) ir.HighLevelNode {
	for _, n := range d.Nodes {
		if hl, ok := n.(ir.HighLevelNode); ok && hl.CanExpand() {
			return hl
		}
	}
	return nil
}
