package ir

import "testing"

func TestDataType_NumElementsAndShapeClassification(t *testing.T) {
	scalar := Scalar(true, 16)
	if !scalar.IsScalar() || scalar.IsVector() || scalar.IsMatrix() {
		t.Fatalf("expected a dims-less type to classify as scalar")
	}
	if scalar.NumElements() != 1 {
		t.Fatalf("expected one element, got %d", scalar.NumElements())
	}

	vector := scalar.WithDims([]int{4})
	if vector.IsScalar() || !vector.IsVector() || vector.IsMatrix() {
		t.Fatalf("expected a single dim > 1 to classify as vector")
	}
	if vector.NumElements() != 4 {
		t.Fatalf("expected 4 elements, got %d", vector.NumElements())
	}

	matrix := scalar.WithDims([]int{3, 4})
	if matrix.IsScalar() || matrix.IsVector() || !matrix.IsMatrix() {
		t.Fatalf("expected two dims to classify as matrix")
	}
	if matrix.NumElements() != 12 {
		t.Fatalf("expected 12 elements, got %d", matrix.NumElements())
	}
	if matrix.FirstDim() != 3 {
		t.Fatalf("expected first dim 3, got %d", matrix.FirstDim())
	}
}

func TestDataType_ElementBytesAndBytes(t *testing.T) {
	dt := Scalar(true, 12) // 12 bits -> 2 bytes
	if dt.ElementBytes() != 2 {
		t.Fatalf("expected 12 bits to round up to 2 bytes, got %d", dt.ElementBytes())
	}

	complexDt := dt
	complexDt.Complex = true
	if complexDt.ElementBytes() != 4 {
		t.Fatalf("expected complex element bytes to double, got %d", complexDt.ElementBytes())
	}

	vec := dt.WithDims([]int{10})
	if vec.Bytes() != 20 {
		t.Fatalf("expected 10 elements * 2 bytes == 20, got %d", vec.Bytes())
	}
}

func TestDataType_EqualComparesDimsAndSignedness(t *testing.T) {
	a := Scalar(true, 16).WithDims([]int{2, 3})
	b := Scalar(true, 16).WithDims([]int{2, 3})
	if !a.Equal(b) {
		t.Fatalf("expected identical shapes to be equal")
	}

	c := Scalar(true, 16).WithDims([]int{2, 4})
	if a.Equal(c) {
		t.Fatalf("expected different dims to compare unequal")
	}

	d := Scalar(false, 16).WithDims([]int{2, 3})
	if a.Equal(d) {
		t.Fatalf("expected different signedness to compare unequal")
	}
}

func TestDataType_String(t *testing.T) {
	dt := Scalar(true, 16)
	got := dt.String()
	want := "sint16.0[]"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestNumericValue_MinimalBits(t *testing.T) {
	cases := []struct {
		v      int64
		signed bool
		want   int
	}{
		{0, false, 1},
		{0, true, 1},
		{127, true, 8},
		{128, true, 9},
		{-128, true, 8},
		{-129, true, 9},
		{255, false, 8},
		{256, false, 9},
	}
	for _, tc := range cases {
		got := MinimalBits(tc.v, tc.signed)
		if got != tc.want {
			t.Fatalf("MinimalBits(%d, %v) = %d, want %d", tc.v, tc.signed, got, tc.want)
		}
	}
}

func TestNumericValue_NewIntAndNewFrac(t *testing.T) {
	pos := NewInt(42)
	if pos.Signed {
		t.Fatalf("expected a positive int literal to be unsigned")
	}
	if pos.Real != 42 {
		t.Fatalf("expected Real == 42, got %v", pos.Real)
	}

	neg := NewInt(-42)
	if !neg.Signed {
		t.Fatalf("expected a negative int literal to be signed")
	}

	frac := NewFrac(1.5)
	if !frac.Fractional || !frac.Signed {
		t.Fatalf("expected a fractional value to be signed and fractional")
	}
}

func TestNumericValue_IsZero(t *testing.T) {
	if !(NumericValue{}).IsZero() {
		t.Fatalf("expected the zero value to report IsZero")
	}
	if NewInt(1).IsZero() {
		t.Fatalf("expected a nonzero value to report !IsZero")
	}
}

func TestNumericValue_DataTypeOf(t *testing.T) {
	frac := NewFrac(3.25)
	dt := frac.DataTypeOf()
	if !dt.Float {
		t.Fatalf("expected a fractional value to produce a float DataType")
	}

	integer := NewInt(100)
	dt2 := integer.DataTypeOf()
	if dt2.Float {
		t.Fatalf("expected an integer value to produce a non-float DataType")
	}
	if dt2.IntBits != MinimalBits(100, false) {
		t.Fatalf("expected minimal bit width to be reused, got %d", dt2.IntBits)
	}
}
