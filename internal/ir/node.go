package ir

// Node is the common interface implemented by every kind of dataflow
// node: primitives, high-level nodes, subsystems, masters, FIFOs and
// the blocking-domain bridge. Concrete kinds embed NodeBase for the
// common bookkeeping and add their own typed fields and Validate logic.
type Node interface {
	ID() int
	SetID(int)

	Name() string
	SetName(string)

	Parent() Node
	SetParent(Node)

	InputPorts() []*Port
	OutputPorts() []*Port
	EnablePort() *Port
	OrderConstraintInput() *Port
	OrderConstraintOutput() *Port

	Partition() int
	SetPartition(int)

	BaseSubBlockingLength() int
	SetBaseSubBlockingLength(int)

	ContextStack() ContextStack
	SetContextStack(ContextStack)

	TypeName() string
	Label() string

	CanExpand() bool
	Validate() error

	// ShallowClone returns a copy of this node, reparented to newParent,
	// with its own port objects but no arcs (arcs are re-established by
	// the caller). Node identity (id) is not copied; the caller assigns
	// a fresh id via Design.
	ShallowClone(newParent Node) Node
}

// ChildContainer is implemented by nodes that own children: SubSystem,
// EnabledSubSystem, ExpandedNode.
type ChildContainer interface {
	Children() []Node
	AddChild(Node)
	RemoveChild(Node)
}

// NodeBase holds the bookkeeping every node kind shares. It is meant to
// be embedded, not used directly.
type NodeBase struct {
	id     int
	name   string
	parent Node

	inputPorts  []*Port
	outputPorts []*Port
	enablePort  *Port
	ocInPort    *Port
	ocOutPort   *Port

	partition             int
	baseSubBlockingLength int
	contextStack          ContextStack
}

// InitBase sets up nIn input ports and nOut output ports on self,
// binding each port's owner to self. Call once, right after constructing
// a concrete node, before wiring any arcs.
func InitBase(b *NodeBase, self Node, nIn, nOut int) {
	b.inputPorts = make([]*Port, nIn)
	for i := range b.inputPorts {
		b.inputPorts[i] = NewPort(self, DirInput, i)
	}
	b.outputPorts = make([]*Port, nOut)
	for i := range b.outputPorts {
		b.outputPorts[i] = NewPort(self, DirOutput, i)
	}
}

func (b *NodeBase) ID() int     { return b.id }
func (b *NodeBase) SetID(id int) { b.id = id }

func (b *NodeBase) Name() string      { return b.name }
func (b *NodeBase) SetName(name string) { b.name = name }

func (b *NodeBase) Parent() Node          { return b.parent }
func (b *NodeBase) SetParent(parent Node) { b.parent = parent }

func (b *NodeBase) InputPorts() []*Port {
	out := make([]*Port, len(b.inputPorts))
	copy(out, b.inputPorts)
	return out
}

func (b *NodeBase) OutputPorts() []*Port {
	out := make([]*Port, len(b.outputPorts))
	copy(out, b.outputPorts)
	return out
}

func (b *NodeBase) EnablePort() *Port { return b.enablePort }

func (b *NodeBase) OrderConstraintInput() *Port  { return b.ocInPort }
func (b *NodeBase) OrderConstraintOutput() *Port { return b.ocOutPort }

// EnsureEnablePort lazily creates the node's enable port, owned by self.
func (b *NodeBase) EnsureEnablePort(self Node) *Port {
	if b.enablePort == nil {
		b.enablePort = NewPort(self, DirEnable, 0)
	}
	return b.enablePort
}

// EnsureOrderConstraintPorts lazily creates the order-constraint ports.
func (b *NodeBase) EnsureOrderConstraintPorts(self Node) (*Port, *Port) {
	if b.ocInPort == nil {
		b.ocInPort = NewPort(self, DirOrderConstraintInput, 0)
	}
	if b.ocOutPort == nil {
		b.ocOutPort = NewPort(self, DirOrderConstraintOutput, 0)
	}
	return b.ocInPort, b.ocOutPort
}

func (b *NodeBase) Partition() int          { return b.partition }
func (b *NodeBase) SetPartition(p int)      { b.partition = p }

func (b *NodeBase) BaseSubBlockingLength() int      { return b.baseSubBlockingLength }
func (b *NodeBase) SetBaseSubBlockingLength(n int)  { b.baseSubBlockingLength = n }

func (b *NodeBase) ContextStack() ContextStack {
	out := make(ContextStack, len(b.contextStack))
	copy(out, b.contextStack)
	return out
}

func (b *NodeBase) SetContextStack(cs ContextStack) {
	b.contextStack = make(ContextStack, len(cs))
	copy(b.contextStack, cs)
}

// CloneBaseInto copies the scalar bookkeeping fields (name, partition,
// base sub-blocking length, context stack) from b into dst, leaving
// dst's id, parent and ports untouched — those are the caller's
// responsibility during ShallowClone.
func CloneBaseInto(b *NodeBase, dst *NodeBase) {
	dst.name = b.name
	dst.partition = b.partition
	dst.baseSubBlockingLength = b.baseSubBlockingLength
	dst.contextStack = make(ContextStack, len(b.contextStack))
	copy(dst.contextStack, b.contextStack)
}
