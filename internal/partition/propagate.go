package partition

import "github.com/ucb-cyarp/dataflowc/internal/ir"

// Propagate assigns every node whose partition is 0 (the unset default)
// the partition of its nearest ancestor, walking from each top-level node
// down through its children (spec.md §4.8). A node with a non-zero
// partition keeps it and passes it on to its own descendants. An
// ExpandedNode gets no special handling: like any other container whose
// partition is 0, it takes its parent's partition and passes it on to
// the nodes produced by expansion.
func Propagate(d *ir.Design) {
	for _, n := range d.TopLevelNodes {
		walk(n, n.Partition())
	}
}

func walk(n ir.Node, inherited int) {
	if n.Partition() == 0 {
		n.SetPartition(inherited)
	}
	current := n.Partition()

	container, ok := n.(ir.ChildContainer)
	if !ok {
		return
	}
	for _, child := range container.Children() {
		walk(child, current)
	}
}
