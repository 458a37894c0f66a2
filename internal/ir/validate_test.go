package ir

import "testing"

func TestValidateNode_InputPortWithoutArcIsStructuralError(t *testing.T) {
	g := NewGain("g", []NumericValue{NewInt(2)})
	errs := ValidateNode(g)
	if len(errs) == 0 {
		t.Fatalf("expected errors for an unconnected gain")
	}
	var found bool
	for _, e := range errs {
		if ne, ok := e.(*NodeError); ok && ne.Class == ErrStructural {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected at least one structural error, got %v", errs)
	}
}

func TestValidateNode_FullyWiredRingHasNoErrors(t *testing.T) {
	d := NewDesign()
	dtype := Scalar(true, 16)

	a := NewGain("a", []NumericValue{NewInt(2)})
	b := NewGain("b", []NumericValue{NewInt(3)})
	d.AddNode(a, true)
	d.AddNode(b, true)
	d.Connect(a.OutputPorts()[0], b.InputPorts()[0], dtype, 1.0)
	d.Connect(b.OutputPorts()[0], a.InputPorts()[0], dtype, 1.0)

	if errs := ValidateDesign(d); len(errs) != 0 {
		t.Fatalf("expected no errors on a fully wired ring, got %v", errs)
	}
}

func TestValidateNode_FanOutTypeMismatchIsTypeError(t *testing.T) {
	d := NewDesign()

	src := NewGain("src", []NumericValue{NewInt(2)})
	dst1 := NewGain("dst1", []NumericValue{NewInt(1)})
	dst2 := NewGain("dst2", []NumericValue{NewInt(1)})
	d.AddNode(src, true)
	d.AddNode(dst1, true)
	d.AddNode(dst2, true)

	// Feed src's output back in so its own input port is satisfied too.
	d.Connect(dst1.OutputPorts()[0], src.InputPorts()[0], Scalar(true, 16), 1.0)
	d.Connect(src.OutputPorts()[0], dst1.InputPorts()[0], Scalar(true, 16), 1.0)
	d.Connect(src.OutputPorts()[0], dst2.InputPorts()[0], Scalar(false, 32), 1.0)

	errs := ValidateNode(src)
	var found bool
	for _, e := range errs {
		if ne, ok := e.(*NodeError); ok && ne.Class == ErrType {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a type error for disagreeing fan-out DataTypes, got %v", errs)
	}
}

func TestValidateNode_OutputPortWithoutAnyArcIsStructuralError(t *testing.T) {
	c := NewConstant("c", []NumericValue{NewInt(1)})
	errs := ValidateNode(c)
	if len(errs) == 0 {
		t.Fatalf("expected an error for a constant with no consumer")
	}
}
