package ir

import "fmt"

// HighLevelNode is a node that stands in for a subgraph of primitives
// until it is expanded. DiscreteFIR is the reference design named by
// spec.md §4.3; other high-level nodes follow the same contract.
type HighLevelNode interface {
	Node
	// Expand replaces this node, in place within its parent, with an
	// equivalent subgraph of primitives and returns the new nodes/arcs
	// added and the (now unused) high-level node to be removed.
	Expand(d *Design) (added []Node, addedArcs []*Arc, removed Node, err error)
}

// DiscreteFIR is a fixed or runtime-configurable discrete FIR filter.
// Coefficients, when Fixed, are known at compile time and expansion
// picks the smallest representable coefficient DataType (spec.md §4.3,
// SPEC_FULL.md §1). When not Fixed, the FIR carries a second input port
// supplying the coefficient vector (or, for a single tap, the scalar
// coefficient) at run time.
type DiscreteFIR struct {
	NodeBase

	NumTaps      int
	Fixed        bool
	Coefficients []NumericValue // len == NumTaps when Fixed
	InitVals     []NumericValue // len in {1, NumTaps-1}
}

// NewDiscreteFIR constructs a DiscreteFIR with one input port (the
// signal) plus, when !fixed, a second input port carrying the
// coefficients.
func NewDiscreteFIR(name string, numTaps int, fixed bool, coeffs, initVals []NumericValue) *DiscreteFIR {
	f := &DiscreteFIR{NumTaps: numTaps, Fixed: fixed, Coefficients: coeffs, InitVals: initVals}
	nIn := 1
	if !fixed {
		nIn = 2
	}
	InitBase(&f.NodeBase, f, nIn, 1)
	f.SetName(name)
	return f
}

func (f *DiscreteFIR) TypeName() string { return "DiscreteFIR" }
func (f *DiscreteFIR) Label() string    { return fmt.Sprintf("DiscreteFIR(%s, %d taps)", f.Name(), f.NumTaps) }
func (f *DiscreteFIR) CanExpand() bool  { return true }

func (f *DiscreteFIR) Validate() error {
	if f.NumTaps <= 0 {
		return NewStructuralError(f, "FIR must have at least one tap")
	}
	if f.Fixed && len(f.Coefficients) != f.NumTaps {
		return NewInvariantError(f, "fixed FIR coefficient count must equal tap count")
	}
	if f.NumTaps > 1 {
		if len(f.InitVals) != 1 && len(f.InitVals) != f.NumTaps-1 {
			return NewInvariantError(f, "FIR init values must number 1 or numTaps-1")
		}
	}
	return nil
}

func (f *DiscreteFIR) ShallowClone(newParent Node) Node {
	clone := &DiscreteFIR{
		NumTaps:      f.NumTaps,
		Fixed:        f.Fixed,
		Coefficients: append([]NumericValue(nil), f.Coefficients...),
		InitVals:     append([]NumericValue(nil), f.InitVals...),
	}
	InitBase(&clone.NodeBase, clone, len(f.InputPorts()), len(f.OutputPorts()))
	CloneBaseInto(&f.NodeBase, &clone.NodeBase)
	clone.SetParent(newParent)
	return clone
}

// Expand replaces a DiscreteFIR with its primitive equivalent, per
// spec.md §4.3:
//
//   - NumTaps == 1, Fixed: a single Gain carrying the one coefficient.
//   - NumTaps == 1, !Fixed: a Product with the coefficient port wired
//     first so the multiply reads the run-time coefficient rather than
//     a fabricated constant.
//   - NumTaps > 1: a TappedDelay of length NumTaps-1
//     (allocateExtraSpace=true, earliestFirst=true, initCond taken
//     verbatim from InitVals) feeding InnerProduct port 1; InnerProduct
//     port 0 takes either a Constant built from the smallest
//     representable coefficient type (Fixed) or the FIR's own
//     coefficient port retargeted directly (!Fixed).
func (f *DiscreteFIR) Expand(d *Design) (added []Node, addedArcs []*Arc, removed Node, err error) {
	parent := f.Parent()
	inArc := firstArc(f.InputPorts()[0])
	outArcs := f.OutputPorts()[0].Arcs()

	var outputType DataType
	if len(outArcs) > 0 {
		outputType = outArcs[0].DataType()
	} else if inArc != nil {
		outputType = inArc.DataType()
	}

	if f.NumTaps == 1 {
		if f.Fixed {
			gain := NewGain(f.Name()+"_gain", f.Coefficients)
			gain.SetParent(parent)
			gain.SetPartition(f.Partition())
			gain.SetContextStack(f.ContextStack())
			d.AddNode(gain, parent == nil)

			if inArc != nil {
				inArc.SetDstPort(gain.InputPorts()[0])
			}
			for _, outArc := range outArcs {
				outArc.SetSrcPort(gain.OutputPorts()[0])
			}
			added = append(added, gain)
			return added, addedArcs, f, nil
		}

		coefArc := firstArc(f.InputPorts()[1])
		product := NewProduct(f.Name()+"_product", 2)
		product.SetParent(parent)
		product.SetPartition(f.Partition())
		product.SetContextStack(f.ContextStack())
		d.AddNode(product, parent == nil)

		if coefArc != nil {
			coefArc.SetDstPort(product.InputPorts()[0])
		}
		if inArc != nil {
			inArc.SetDstPort(product.InputPorts()[1])
		}
		for _, outArc := range outArcs {
			outArc.SetSrcPort(product.OutputPorts()[0])
		}
		added = append(added, product)
		return added, addedArcs, f, nil
	}

	tapLength := f.NumTaps - 1
	tapped := NewTappedDelay(f.Name()+"_taps", tapLength, true)
	tapped.AllocateExtraSpace = true
	tapped.InitCondition = broadcastInitVals(f.InitVals, tapLength)
	tapped.SetParent(parent)
	tapped.SetPartition(f.Partition())
	tapped.SetContextStack(f.ContextStack())
	d.AddNode(tapped, parent == nil)
	added = append(added, tapped)

	if inArc != nil {
		inArc.SetDstPort(tapped.InputPorts()[0])
	}

	ip := NewInnerProduct(f.Name() + "_ip")
	ip.ConjBehavior = ConjNone
	ip.SetParent(parent)
	ip.SetPartition(f.Partition())
	ip.SetContextStack(f.ContextStack())
	d.AddNode(ip, parent == nil)
	added = append(added, ip)

	var tapType DataType
	if inArc != nil {
		tapType = inArc.DataType().WithDims([]int{f.NumTaps})
	} else {
		tapType = outputType.WithDims([]int{f.NumTaps})
	}
	tapArc := d.Connect(tapped.OutputPorts()[0], ip.InputPorts()[1], tapType, 0)
	addedArcs = append(addedArcs, tapArc)

	if f.Fixed {
		coeffType := smallestRepresentableVectorType(f.Coefficients, outputType)
		constant := NewConstant(f.Name()+"_coeffs", f.Coefficients)
		constant.SetParent(parent)
		constant.SetPartition(f.Partition())
		constant.SetContextStack(f.ContextStack())
		d.AddNode(constant, parent == nil)
		added = append(added, constant)

		coeffArc := d.Connect(constant.OutputPorts()[0], ip.InputPorts()[0], coeffType, 0)
		addedArcs = append(addedArcs, coeffArc)
	} else {
		coefArc := firstArc(f.InputPorts()[1])
		if coefArc != nil {
			coefArc.SetDstPort(ip.InputPorts()[0])
		}
	}

	for _, outArc := range outArcs {
		outArc.SetSrcPort(ip.OutputPorts()[0])
	}

	return added, addedArcs, f, nil
}

func firstArc(p *Port) *Arc {
	arcs := p.Arcs()
	if len(arcs) == 0 {
		return nil
	}
	return arcs[0]
}

// broadcastInitVals expands a FIR's InitVals (len 1 or n) to exactly n
// entries, per spec.md §4.3's "initial conditions taken verbatim from
// the FIR's init values".
func broadcastInitVals(vals []NumericValue, n int) []NumericValue {
	if len(vals) == n {
		return append([]NumericValue(nil), vals...)
	}
	out := make([]NumericValue, n)
	for i := range out {
		if len(vals) > 0 {
			out[i] = vals[0]
		}
	}
	return out
}

// smallestRepresentableVectorType returns a vector DataType of length
// len(vals) whose element type can represent every element of vals, per DiscreteFIR's "smallest
// representable coefficient type" rule (spec.md §4.3): if any
// coefficient is fractional, the output port's own (floating-point)
// DataType; otherwise an integer type, signed if any coefficient is
// signed, with bit width max_i(bits(coefs[i]) + (1 if signed &&
// !coefs[i].signed else 0)) — every unsigned coefficient gains a sign
// bit once the vector as a whole is signed.
func smallestRepresentableVectorType(vals []NumericValue, outputType DataType) DataType {
	anyFractional := false
	anySigned := false
	for _, v := range vals {
		if v.Fractional {
			anyFractional = true
		}
		if v.Signed {
			anySigned = true
		}
	}

	if anyFractional {
		return outputType.WithDims([]int{len(vals)})
	}

	bits := 0
	for _, v := range vals {
		dt := v.DataTypeOf()
		b := dt.IntBits
		if anySigned && !dt.Signed {
			b++
		}
		if b > bits {
			bits = b
		}
	}

	return Scalar(anySigned, bits).WithDims([]int{len(vals)})
}
