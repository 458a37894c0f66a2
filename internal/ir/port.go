package ir

// Direction identifies the role a Port plays on its owning node.
type Direction int

const (
	// DirInput is a normal data input.
	DirInput Direction = iota
	// DirOutput is a normal data output.
	DirOutput
	// DirEnable is the single enable port carried by EnableInput/Output
	// nodes and EnabledSubSystem bookkeeping.
	DirEnable
	// DirOrderConstraintInput accepts order-only arcs that do not carry
	// data but force scheduling order.
	DirOrderConstraintInput
	// DirOrderConstraintOutput emits order-only arcs.
	DirOrderConstraintOutput
)

func (d Direction) String() string {
	switch d {
	case DirInput:
		return "Input"
	case DirOutput:
		return "Output"
	case DirEnable:
		return "Enable"
	case DirOrderConstraintInput:
		return "OrderConstraintInput"
	case DirOrderConstraintOutput:
		return "OrderConstraintOutput"
	default:
		return "Unknown"
	}
}

// Port is a typed connection point on a node, identified by direction and
// index within that direction. It holds a non-owning set of arcs
// referencing it; the arc is the owner of its endpoints.
type Port struct {
	node  Node
	dir   Direction
	index int
	arcs  []*Arc
}

// NewPort creates a port owned by node at the given direction/index.
func NewPort(node Node, dir Direction, index int) *Port {
	return &Port{node: node, dir: dir, index: index}
}

// Node returns the owning node.
func (p *Port) Node() Node { return p.node }

// Direction returns the port's direction.
func (p *Port) Direction() Direction { return p.dir }

// Index returns the port's index within its direction.
func (p *Port) Index() int { return p.index }

// Arcs returns the set of arcs currently registered on this port. The
// returned slice is a copy-on-read view; callers must not mutate it.
func (p *Port) Arcs() []*Arc {
	out := make([]*Arc, len(p.arcs))
	copy(out, p.arcs)
	return out
}

// NumArcs returns the number of arcs registered on this port.
func (p *Port) NumArcs() int { return len(p.arcs) }

// addArc registers an arc on this port. It is idempotent w.r.t. the same
// arc pointer.
func (p *Port) addArc(a *Arc) {
	for _, existing := range p.arcs {
		if existing == a {
			return
		}
	}
	p.arcs = append(p.arcs, a)
}

// removeArc removes an arc from this port's set, if present.
func (p *Port) removeArc(a *Arc) {
	for i, existing := range p.arcs {
		if existing == a {
			p.arcs = append(p.arcs[:i], p.arcs[i+1:]...)
			return
		}
	}
}
