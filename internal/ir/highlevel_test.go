package ir

import "testing"

// ringWithFIR builds a minimal src -> FIR -> sink chain: a DiscreteFIR
// spliced between a source Gain and a sink Gain, so the FIR's single
// input and output ports each carry exactly one arc before Expand is
// called. The src input and sink output are left unconnected.
func ringWithFIR(fir *DiscreteFIR) (d *Design, src, sink *Gain) {
	d = NewDesign()
	dtype := Scalar(true, 16)

	src = NewGain("src", []NumericValue{NewInt(1)})
	src.SetPartition(0)
	d.AddNode(src, true)

	sink = NewGain("sink", []NumericValue{NewInt(1)})
	sink.SetPartition(0)
	d.AddNode(sink, true)

	fir.SetPartition(0)
	d.AddNode(fir, true)

	d.Connect(src.OutputPorts()[0], fir.InputPorts()[0], dtype, 1.0)
	d.Connect(fir.OutputPorts()[0], sink.InputPorts()[0], dtype, 1.0)
	return d, src, sink
}

func TestDiscreteFIR_Expand_OneTapFixed(t *testing.T) {
	fir := NewDiscreteFIR("fir", 1, true, []NumericValue{NewInt(5)}, nil)
	d, src, sink := ringWithFIR(fir)

	added, addedArcs, removed, err := fir.Expand(d)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if removed != fir {
		t.Fatalf("expected removed == fir")
	}
	if len(addedArcs) != 0 {
		t.Fatalf("expected no new arcs for a single-tap fixed FIR, got %d", len(addedArcs))
	}
	if len(added) != 1 {
		t.Fatalf("expected exactly one added node, got %d", len(added))
	}
	gain, ok := added[0].(*Gain)
	if !ok {
		t.Fatalf("expected added node to be a Gain, got %T", added[0])
	}
	if len(gain.GainValue) != 1 {
		t.Fatalf("expected exactly one gain coefficient, got %d", len(gain.GainValue))
	}
	if gain.GainValue[0].Real != 5 {
		t.Fatalf("expected gain coefficient 5, got %v", gain.GainValue[0].Real)
	}

	srcOutArc := src.OutputPorts()[0].Arcs()[0]
	if srcOutArc.DstPort() != gain.InputPorts()[0] {
		t.Fatalf("expected source arc retargeted onto the gain's input port")
	}
	sinkInArc := sink.InputPorts()[0].Arcs()[0]
	if sinkInArc.SrcPort() != gain.OutputPorts()[0] {
		t.Fatalf("expected sink arc retargeted onto the gain's output port")
	}
}

func TestDiscreteFIR_Expand_OneTapRuntimeCoefficient(t *testing.T) {
	fir := NewDiscreteFIR("fir", 1, false, nil, nil)
	d, src, sink := ringWithFIR(fir)

	coefSrc := NewConstant("coef", []NumericValue{NewInt(7)})
	coefSrc.SetPartition(0)
	d.AddNode(coefSrc, true)
	d.Connect(coefSrc.OutputPorts()[0], fir.InputPorts()[1], Scalar(true, 16), 1.0)

	added, _, _, err := fir.Expand(d)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(added) != 1 {
		t.Fatalf("expected exactly one added node, got %d", len(added))
	}
	product, ok := added[0].(*Product)
	if !ok {
		t.Fatalf("expected added node to be a Product, got %T", added[0])
	}
	if len(product.InputPorts()) != 2 {
		t.Fatalf("expected a two-input product")
	}

	coefArc := coefSrc.OutputPorts()[0].Arcs()[0]
	if coefArc.DstPort() != product.InputPorts()[0] {
		t.Fatalf("expected coefficient port wired first into the product, got port %d", coefArc.DstPort().Index())
	}
	srcArc := src.OutputPorts()[0].Arcs()[0]
	if srcArc.DstPort() != product.InputPorts()[1] {
		t.Fatalf("expected signal input wired into the product's second port")
	}
	if sink.InputPorts()[0].Arcs()[0].SrcPort() != product.OutputPorts()[0] {
		t.Fatalf("expected sink arc retargeted onto the product's output")
	}
}

func TestDiscreteFIR_Expand_ThreeTapsFixed(t *testing.T) {
	fir := NewDiscreteFIR("fir", 3, true, []NumericValue{NewInt(1), NewInt(-2), NewInt(1)}, []NumericValue{NewInt(0)})
	d, src, sink := ringWithFIR(fir)

	added, addedArcs, _, err := fir.Expand(d)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(added) != 3 {
		t.Fatalf("expected tapped delay, inner product and constant, got %d nodes", len(added))
	}
	if len(addedArcs) != 2 {
		t.Fatalf("expected two new arcs (taps->ip, constant->ip), got %d", len(addedArcs))
	}

	var tapped *TappedDelay
	var ip *InnerProduct
	var constant *Constant
	for _, n := range added {
		switch v := n.(type) {
		case *TappedDelay:
			tapped = v
		case *InnerProduct:
			ip = v
		case *Constant:
			constant = v
		}
	}
	if tapped == nil || ip == nil || constant == nil {
		t.Fatalf("expected one each of TappedDelay, InnerProduct, Constant")
	}

	if tapped.NumTaps != 2 {
		t.Fatalf("expected tap length NumTaps-1 == 2, got %d", tapped.NumTaps)
	}
	if !tapped.AllocateExtraSpace {
		t.Fatalf("expected AllocateExtraSpace to be set on the generated tapped delay")
	}
	if !tapped.EarliestFirst {
		t.Fatalf("expected EarliestFirst to be unconditionally true")
	}
	if len(tapped.InitCondition) != 2 {
		t.Fatalf("expected init condition broadcast to 2 entries, got %d", len(tapped.InitCondition))
	}

	if ip.ConjBehavior != ConjNone {
		t.Fatalf("expected ConjNone for a real FIR")
	}

	if len(constant.Value) != 3 {
		t.Fatalf("expected constant to carry all three coefficients")
	}

	srcArc := src.OutputPorts()[0].Arcs()[0]
	if srcArc.DstPort() != tapped.InputPorts()[0] {
		t.Fatalf("expected signal input wired into the tapped delay")
	}

	tapArc := tapped.OutputPorts()[0].Arcs()[0]
	if tapArc.DstPort() != ip.InputPorts()[1] {
		t.Fatalf("expected taps wired into inner product port 1")
	}
	coeffArc := constant.OutputPorts()[0].Arcs()[0]
	if coeffArc.DstPort() != ip.InputPorts()[0] {
		t.Fatalf("expected constant coefficients wired into inner product port 0")
	}
	if sink.InputPorts()[0].Arcs()[0].SrcPort() != ip.OutputPorts()[0] {
		t.Fatalf("expected sink arc retargeted onto the inner product's output")
	}
}

func TestDiscreteFIR_Expand_ThreeTapsRuntimeCoefficientPort(t *testing.T) {
	fir := NewDiscreteFIR("fir", 3, false, nil, []NumericValue{NewInt(0)})
	d, src, sink := ringWithFIR(fir)

	coefSrc := NewConstant("coef", []NumericValue{NewInt(1), NewInt(-2), NewInt(1)})
	coefSrc.SetPartition(0)
	d.AddNode(coefSrc, true)
	d.Connect(coefSrc.OutputPorts()[0], fir.InputPorts()[1], Scalar(true, 16).WithDims([]int{3}), 1.0)

	added, _, _, err := fir.Expand(d)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	var ip *InnerProduct
	for _, n := range added {
		if v, ok := n.(*InnerProduct); ok {
			ip = v
		}
	}
	if ip == nil {
		t.Fatalf("expected an InnerProduct among the added nodes")
	}
	for _, n := range added {
		if _, ok := n.(*Constant); ok {
			t.Fatalf("runtime-coefficient expansion must not fabricate a Constant")
		}
	}

	coefArc := coefSrc.OutputPorts()[0].Arcs()[0]
	if coefArc.DstPort() != ip.InputPorts()[0] {
		t.Fatalf("expected the FIR's own coefficient port retargeted directly onto the inner product")
	}
	_ = src
	_ = sink
}

func TestDiscreteFIR_Validate(t *testing.T) {
	cases := []struct {
		name    string
		fir     *DiscreteFIR
		wantErr bool
	}{
		{"zero taps", NewDiscreteFIR("f", 0, true, nil, nil), true},
		{"fixed with wrong coefficient count", NewDiscreteFIR("f", 3, true, []NumericValue{NewInt(1)}, []NumericValue{NewInt(0)}), true},
		{"multi-tap with bad init val count", NewDiscreteFIR("f", 3, true, []NumericValue{NewInt(1), NewInt(1), NewInt(1)}, []NumericValue{NewInt(0), NewInt(0), NewInt(0)}), true},
		{"valid single broadcast init val", NewDiscreteFIR("f", 3, true, []NumericValue{NewInt(1), NewInt(1), NewInt(1)}, []NumericValue{NewInt(0)}), false},
		{"valid one-tap needs no init vals", NewDiscreteFIR("f", 1, true, []NumericValue{NewInt(1)}, nil), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.fir.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected a validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestSmallestRepresentableVectorType(t *testing.T) {
	out := Scalar(true, 16)

	t.Run("fractional coefficient forces the output's float type", func(t *testing.T) {
		dt := smallestRepresentableVectorType([]NumericValue{NewFrac(0.5), NewInt(1)}, ScalarFloat(64))
		if !dt.Float {
			t.Fatalf("expected a float DataType, got %s", dt)
		}
	})

	t.Run("mixed signedness grows unsigned coefficients by one bit", func(t *testing.T) {
		unsigned := NumericValue{Signed: false, Bits: 8, Real: 200}
		signed := NumericValue{Signed: true, Bits: 4, Real: -3}
		dt := smallestRepresentableVectorType([]NumericValue{unsigned, signed}, out)
		if !dt.Signed {
			t.Fatalf("expected the vector type to be signed once any coefficient is signed")
		}
		if dt.IntBits != 9 {
			t.Fatalf("expected the unsigned coefficient's width to grow by one sign bit (9), got %d", dt.IntBits)
		}
	})

	t.Run("all unsigned keeps the narrowest unsigned width", func(t *testing.T) {
		a := NumericValue{Signed: false, Bits: 3, Real: 5}
		b := NumericValue{Signed: false, Bits: 5, Real: 20}
		dt := smallestRepresentableVectorType([]NumericValue{a, b}, out)
		if dt.Signed {
			t.Fatalf("expected an unsigned vector type")
		}
		if dt.IntBits != 5 {
			t.Fatalf("expected width 5 (the widest coefficient, no sign bit needed), got %d", dt.IntBits)
		}
	})
}
