package ir

// Design is the arena that owns every node, arc and master of one
// dataflow graph. It is the single entry point for id allocation, so
// that node and arc ids are unique and stable for the lifetime of the
// design (spec.md §9 Design Notes, "stable-index-based IR").
type Design struct {
	TopLevelNodes []Node
	Nodes         []Node
	Arcs          []*Arc

	Input      *MasterInput
	Output     *MasterOutput
	Terminator *MasterTerminator
	Unconnected *MasterUnconnected

	nextNodeID int
	nextArcID  int
	nodeByID   map[int]Node
}

// NewDesign creates an empty Design with its four masters already
// registered, matching spec.md §3's "every design has exactly one of
// each master kind".
func NewDesign() *Design {
	d := &Design{nodeByID: make(map[int]Node)}
	d.Input = NewMasterInput(0)
	d.Output = NewMasterOutput(0)
	d.Terminator = NewMasterTerminator()
	d.Unconnected = NewMasterUnconnected()
	d.registerNode(d.Input)
	d.registerNode(d.Output)
	d.registerNode(d.Terminator)
	d.registerNode(d.Unconnected)
	return d
}

func (d *Design) registerNode(n Node) {
	d.nextNodeID++
	n.SetID(d.nextNodeID)
	d.Nodes = append(d.Nodes, n)
	d.nodeByID[n.ID()] = n
}

// AddNode registers a node with the design, assigning it a fresh id. If
// atTopLevel is true, it is also added to TopLevelNodes; the node's
// parent is not consulted.
func (d *Design) AddNode(n Node, atTopLevel bool) {
	d.registerNode(n)
	if atTopLevel {
		d.TopLevelNodes = append(d.TopLevelNodes, n)
	}
}

// RemoveNode deregisters a node (e.g. after expansion replaces it with
// an ExpandedNode, or a pass prunes a now-unreferenced FIFO). It does
// not disconnect the node's arcs; callers must do so first.
func (d *Design) RemoveNode(n Node) {
	delete(d.nodeByID, n.ID())
	for i, existing := range d.Nodes {
		if existing == n {
			d.Nodes = append(d.Nodes[:i], d.Nodes[i+1:]...)
			break
		}
	}
	for i, existing := range d.TopLevelNodes {
		if existing == n {
			d.TopLevelNodes = append(d.TopLevelNodes[:i], d.TopLevelNodes[i+1:]...)
			break
		}
	}
}

// NodeByID looks up a node by its design-scoped id.
func (d *Design) NodeByID(id int) (Node, bool) {
	n, ok := d.nodeByID[id]
	return n, ok
}

// Connect creates an arc between src and dst, registers it with the
// design, and returns it.
func (d *Design) Connect(src, dst *Port, dtype DataType, sampleTime float64) *Arc {
	a := Connect(src, dst, dtype, sampleTime)
	d.nextArcID++
	a.id = d.nextArcID
	d.Arcs = append(d.Arcs, a)
	return a
}

// Disconnect removes an arc from both its endpoints and from the
// design's arc vector.
func (d *Design) Disconnect(a *Arc) {
	a.Disconnect()
	for i, existing := range d.Arcs {
		if existing == a {
			d.Arcs = append(d.Arcs[:i], d.Arcs[i+1:]...)
			return
		}
	}
}

// AllNodesOfType filters Nodes by concrete type using a caller-supplied
// predicate; a thin convenience used by several passes (e.g. "find all
// ThreadCrossingFIFOs").
func (d *Design) AllNodesOfType(pred func(Node) bool) []Node {
	var out []Node
	for _, n := range d.Nodes {
		if pred(n) {
			out = append(out, n)
		}
	}
	return out
}
