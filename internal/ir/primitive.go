package ir

import "fmt"

// Delay is a single-sample (or multi-sample, per spec.md §4.5/§4.6)
// state-holding primitive. When BlockingSpecializationDeferred is set,
// DeferredBlockSize/DeferredSubBlockSize hold the requested blocking;
// NewDelay leaves it unset.
type Delay struct {
	NodeBase

	DelayValue    int
	InitCondition []NumericValue

	BlockingSpecializationDeferred bool
	DeferredBlockSize              int
	DeferredSubBlockSize           int
}

// NewDelay creates a Delay node with one input and one output port.
func NewDelay(name string, delayValue int, initCond []NumericValue) *Delay {
	d := &Delay{DelayValue: delayValue, InitCondition: initCond}
	InitBase(&d.NodeBase, d, 1, 1)
	d.SetName(name)
	return d
}

func (d *Delay) TypeName() string { return "Delay" }
func (d *Delay) Label() string    { return fmt.Sprintf("Delay(%s, z^-%d)", d.Name(), d.DelayValue) }
func (d *Delay) CanExpand() bool  { return false }

func (d *Delay) Validate() error {
	if d.DelayValue < 0 {
		return NewStructuralError(d, "delay value must be non-negative")
	}
	if len(d.InitCondition) != 0 && len(d.InitCondition) != d.DelayValue {
		return NewInvariantError(d, "init condition length must match delay value once sized")
	}
	return nil
}

func (d *Delay) ShallowClone(newParent Node) Node {
	clone := &Delay{
		DelayValue:                     d.DelayValue,
		InitCondition:                  append([]NumericValue(nil), d.InitCondition...),
		BlockingSpecializationDeferred: d.BlockingSpecializationDeferred,
		DeferredBlockSize:              d.DeferredBlockSize,
		DeferredSubBlockSize:           d.DeferredSubBlockSize,
	}
	InitBase(&clone.NodeBase, clone, len(d.InputPorts()), len(d.OutputPorts()))
	CloneBaseInto(&d.NodeBase, &clone.NodeBase)
	clone.SetParent(newParent)
	return clone
}

// TappedDelay is a vector-output delay line exposing earliestFirst/
// latestFirst taps. Its Expand() is intentionally unimplemented: see
// spec.md §9 Open Question on whether TappedDelay participates in
// expansion directly or only appears as DiscreteFIR's expansion target.
type TappedDelay struct {
	NodeBase

	NumTaps           int
	AllocateExtraSpace bool
	EarliestFirst      bool
	InitCondition      []NumericValue
}

func NewTappedDelay(name string, numTaps int, earliestFirst bool) *TappedDelay {
	t := &TappedDelay{NumTaps: numTaps, EarliestFirst: earliestFirst}
	InitBase(&t.NodeBase, t, 1, 1)
	t.SetName(name)
	return t
}

func (t *TappedDelay) TypeName() string { return "TappedDelay" }
func (t *TappedDelay) Label() string    { return fmt.Sprintf("TappedDelay(%s, %d taps)", t.Name(), t.NumTaps) }
func (t *TappedDelay) CanExpand() bool  { return false }

func (t *TappedDelay) Validate() error {
	if t.NumTaps <= 0 {
		return NewStructuralError(t, "tapped delay must have at least one tap")
	}
	return nil
}

func (t *TappedDelay) ShallowClone(newParent Node) Node {
	clone := &TappedDelay{
		NumTaps:            t.NumTaps,
		AllocateExtraSpace: t.AllocateExtraSpace,
		EarliestFirst:      t.EarliestFirst,
		InitCondition:      append([]NumericValue(nil), t.InitCondition...),
	}
	InitBase(&clone.NodeBase, clone, len(t.InputPorts()), len(t.OutputPorts()))
	CloneBaseInto(&t.NodeBase, &clone.NodeBase)
	clone.SetParent(newParent)
	return clone
}

// Product multiplies its inputs elementwise; InputIsInverted marks, per
// input, the inputs that divide instead of multiply (e.g. a/b).
type Product struct {
	NodeBase
	InputIsInverted []bool
}

func NewProduct(name string, numInputs int) *Product {
	p := &Product{InputIsInverted: make([]bool, numInputs)}
	InitBase(&p.NodeBase, p, numInputs, 1)
	p.SetName(name)
	return p
}

func (p *Product) TypeName() string { return "Product" }
func (p *Product) Label() string    { return fmt.Sprintf("Product(%s)", p.Name()) }
func (p *Product) CanExpand() bool  { return false }

func (p *Product) Validate() error {
	if len(p.InputPorts()) < 1 {
		return NewStructuralError(p, "product requires at least one input")
	}
	if len(p.InputIsInverted) != len(p.InputPorts()) {
		return NewInvariantError(p, "InputIsInverted length must match input port count")
	}
	return nil
}

func (p *Product) ShallowClone(newParent Node) Node {
	clone := &Product{InputIsInverted: append([]bool(nil), p.InputIsInverted...)}
	InitBase(&clone.NodeBase, clone, len(p.InputPorts()), len(p.OutputPorts()))
	CloneBaseInto(&p.NodeBase, &clone.NodeBase)
	clone.SetParent(newParent)
	return clone
}

// Constant emits a fixed value on every invocation; it has no inputs.
type Constant struct {
	NodeBase
	Value []NumericValue
}

func NewConstant(name string, value []NumericValue) *Constant {
	c := &Constant{Value: value}
	InitBase(&c.NodeBase, c, 0, 1)
	c.SetName(name)
	return c
}

func (c *Constant) TypeName() string { return "Constant" }
func (c *Constant) Label() string    { return fmt.Sprintf("Constant(%s)", c.Name()) }
func (c *Constant) CanExpand() bool  { return false }

func (c *Constant) Validate() error {
	if len(c.Value) == 0 {
		return NewStructuralError(c, "constant must carry at least one value")
	}
	return nil
}

func (c *Constant) ShallowClone(newParent Node) Node {
	clone := &Constant{Value: append([]NumericValue(nil), c.Value...)}
	InitBase(&clone.NodeBase, clone, len(c.InputPorts()), len(c.OutputPorts()))
	CloneBaseInto(&c.NodeBase, &clone.NodeBase)
	clone.SetParent(newParent)
	return clone
}

// ComplexConjBehavior controls how InnerProduct treats a complex second
// input: conjugate it, or leave it as-is.
type ComplexConjBehavior int

const (
	ConjNone ComplexConjBehavior = iota
	ConjSecondInput
)

// InnerProduct is DiscreteFIR's expansion target for the elementwise
// multiply-accumulate step: taps (vector) times coefficients (vector),
// summed.
type InnerProduct struct {
	NodeBase
	ConjBehavior ComplexConjBehavior
}

func NewInnerProduct(name string) *InnerProduct {
	ip := &InnerProduct{}
	InitBase(&ip.NodeBase, ip, 2, 1)
	ip.SetName(name)
	return ip
}

func (ip *InnerProduct) TypeName() string { return "InnerProduct" }
func (ip *InnerProduct) Label() string    { return fmt.Sprintf("InnerProduct(%s)", ip.Name()) }
func (ip *InnerProduct) CanExpand() bool  { return false }

func (ip *InnerProduct) Validate() error {
	if len(ip.InputPorts()) != 2 {
		return NewStructuralError(ip, "inner product requires exactly two inputs")
	}
	return nil
}

func (ip *InnerProduct) ShallowClone(newParent Node) Node {
	clone := &InnerProduct{ConjBehavior: ip.ConjBehavior}
	InitBase(&clone.NodeBase, clone, len(ip.InputPorts()), len(ip.OutputPorts()))
	CloneBaseInto(&ip.NodeBase, &clone.NodeBase)
	clone.SetParent(newParent)
	return clone
}

// Gain multiplies its single input by a fixed (possibly vector) value.
type Gain struct {
	NodeBase
	GainValue []NumericValue
}

func NewGain(name string, gain []NumericValue) *Gain {
	g := &Gain{GainValue: gain}
	InitBase(&g.NodeBase, g, 1, 1)
	g.SetName(name)
	return g
}

func (g *Gain) TypeName() string { return "Gain" }
func (g *Gain) Label() string    { return fmt.Sprintf("Gain(%s)", g.Name()) }
func (g *Gain) CanExpand() bool  { return false }

func (g *Gain) Validate() error {
	if len(g.GainValue) == 0 {
		return NewStructuralError(g, "gain must carry at least one value")
	}
	return nil
}

func (g *Gain) ShallowClone(newParent Node) Node {
	clone := &Gain{GainValue: append([]NumericValue(nil), g.GainValue...)}
	InitBase(&clone.NodeBase, clone, len(g.InputPorts()), len(g.OutputPorts()))
	CloneBaseInto(&g.NodeBase, &clone.NodeBase)
	clone.SetParent(newParent)
	return clone
}

// Mux selects one of N inputs under a select line, and doubles as a
// ContextRoot: each input lives in its own sub-context, mirroring
// EnabledSubSystem's enabled/disabled split but for N-way selection.
type Mux struct {
	NodeBase
	subContextNodes map[int][]Node
}

func NewMux(name string, numInputs int) *Mux {
	m := &Mux{subContextNodes: make(map[int][]Node)}
	InitBase(&m.NodeBase, m, numInputs, 1)
	m.SetName(name)
	return m
}

func (m *Mux) TypeName() string { return "Mux" }
func (m *Mux) Label() string    { return fmt.Sprintf("Mux(%s)", m.Name()) }
func (m *Mux) CanExpand() bool  { return false }

func (m *Mux) Validate() error {
	if len(m.InputPorts()) < 2 {
		return NewStructuralError(m, "mux requires at least two data inputs")
	}
	return nil
}

func (m *Mux) AllowFIFOAbsorption() bool { return false }

func (m *Mux) AddSubContextNode(sub int, n Node) {
	m.subContextNodes[sub] = append(m.subContextNodes[sub], n)
}

func (m *Mux) SubContextNodes(sub int) []Node {
	out := make([]Node, len(m.subContextNodes[sub]))
	copy(out, m.subContextNodes[sub])
	return out
}

func (m *Mux) ShallowClone(newParent Node) Node {
	clone := &Mux{subContextNodes: make(map[int][]Node)}
	InitBase(&clone.NodeBase, clone, len(m.InputPorts()), len(m.OutputPorts()))
	CloneBaseInto(&m.NodeBase, &clone.NodeBase)
	clone.SetParent(newParent)
	return clone
}
