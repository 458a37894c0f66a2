package ir

// CloneShallow clones a single node under newParent, registering it with
// d and returning the clone. It does not recreate arcs: the caller is
// expected to reconnect whatever the clone's ports need, per spec.md
// §4.10's cloning contract (shallow clone carries no arcs).
func CloneShallow(d *Design, n Node, newParent Node) Node {
	clone := n.ShallowClone(newParent)
	d.registerNode(clone)
	return clone
}

// CloneWithChildren recursively clones n and, if it is a ChildContainer,
// all of its descendants, reparenting the whole subtree under newParent.
// It returns the root of the cloned subtree. Arcs are not recreated; a
// caller that needs the internal wiring preserved must walk the original
// and cloned trees in lockstep and reconnect matching ports itself.
func CloneWithChildren(d *Design, n Node, newParent Node) Node {
	clone := CloneShallow(d, n, newParent)
	container, ok := n.(ChildContainer)
	if !ok {
		return clone
	}
	cloneContainer, ok := clone.(ChildContainer)
	if !ok {
		return clone
	}
	for _, child := range container.Children() {
		childClone := CloneWithChildren(d, child, clone)
		cloneContainer.AddChild(childClone)
	}
	return clone
}
