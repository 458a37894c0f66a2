package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeFactory constructs a Node from a dialect type tag and its raw
// string attribute map. It is the seam an external GraphML importer
// (out of scope here, spec.md §1) would drive; this package only
// supplies the construction logic and the NumericValue attribute
// parser, not the XML walk itself.
type NodeFactory interface {
	// Create builds a new, unparented node of the given dialect type tag.
	// Returns an error if the tag is unrecognized or required attributes
	// are missing/malformed.
	Create(typeTag string, name string, attrs map[string]string) (Node, error)
}

// DefaultNodeFactory constructs the primitive and high-level node kinds
// this package defines directly from their GraphML type tags.
type DefaultNodeFactory struct{}

func (DefaultNodeFactory) Create(typeTag, name string, attrs map[string]string) (Node, error) {
	switch typeTag {
	case "Delay":
		delayValue, err := attrInt(attrs, "delayValue")
		if err != nil {
			return nil, err
		}
		return NewDelay(name, delayValue, nil), nil
	case "TappedDelay":
		numTaps, err := attrInt(attrs, "numTaps")
		if err != nil {
			return nil, err
		}
		return NewTappedDelay(name, numTaps, attrs["earliestFirst"] == "true"), nil
	case "Product":
		numInputs, err := attrInt(attrs, "numInputs")
		if err != nil {
			return nil, err
		}
		return NewProduct(name, numInputs), nil
	case "Constant":
		values, err := ParseNumericValueSequence(attrs["value"])
		if err != nil {
			return nil, err
		}
		return NewConstant(name, values), nil
	case "InnerProduct":
		return NewInnerProduct(name), nil
	case "Gain":
		values, err := ParseNumericValueSequence(attrs["gainValue"])
		if err != nil {
			return nil, err
		}
		return NewGain(name, values), nil
	case "Mux":
		numInputs, err := attrInt(attrs, "numInputs")
		if err != nil {
			return nil, err
		}
		return NewMux(name, numInputs), nil
	case "DiscreteFIR":
		numTaps, err := attrInt(attrs, "numTaps")
		if err != nil {
			return nil, err
		}
		fixed := attrs["fixed"] == "true"
		var coeffs []NumericValue
		if fixed {
			coeffs, err = ParseNumericValueSequence(attrs["coefficients"])
			if err != nil {
				return nil, err
			}
		}
		initVals, err := ParseNumericValueSequence(attrs["initVals"])
		if err != nil {
			return nil, err
		}
		return NewDiscreteFIR(name, numTaps, fixed, coeffs, initVals), nil
	case "SubSystem":
		return NewSubSystem(name), nil
	case "EnabledSubSystem":
		return NewEnabledSubSystem(name), nil
	case "EnableInput":
		return NewEnableInput(name), nil
	case "EnableOutput":
		return NewEnableOutput(name), nil
	case "ThreadCrossingFIFO":
		fifoLength, err := attrInt(attrs, "fifoLength")
		if err != nil {
			return nil, err
		}
		return NewThreadCrossingFIFO(name, fifoLength), nil
	case "BlockingDomainBridge":
		blockSize, err := attrInt(attrs, "blockSize")
		if err != nil {
			return nil, err
		}
		return NewBlockingDomainBridge(name, blockSize), nil
	default:
		return nil, fmt.Errorf("unrecognized node type tag %q", typeTag)
	}
}

func attrInt(attrs map[string]string, key string) (int, error) {
	raw, ok := attrs[key]
	if !ok {
		return 0, fmt.Errorf("missing required attribute %q", key)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("attribute %q: %w", key, err)
	}
	return v, nil
}

// ParseNumericValueSequence parses a comma-separated sequence of scalar
// literals into NumericValues, matching the import-side grammar named in
// spec.md §6: each element is an optionally-signed integer or decimal,
// or a number suffixed with "i" for a pure-imaginary value. A literal
// combining a real and an imaginary part (such as "1+2i") is rejected
// with an error.
func ParseNumericValueSequence(raw string) ([]NumericValue, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]NumericValue, 0, len(parts))
	for _, p := range parts {
		v, err := ParseNumericValue(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseNumericValue parses one scalar literal into a NumericValue.
func ParseNumericValue(raw string) (NumericValue, error) {
	if raw == "" {
		return NumericValue{}, fmt.Errorf("empty numeric literal")
	}
	if strings.HasSuffix(raw, "i") {
		imagPart := strings.TrimSuffix(raw, "i")
		imag, err := strconv.ParseFloat(imagPart, 64)
		if err != nil {
			return NumericValue{}, fmt.Errorf("invalid imaginary literal %q: %w", raw, err)
		}
		return NumericValue{Complex: true, Fractional: true, Signed: true, Imag: imag}, nil
	}
	if strings.Contains(raw, ".") {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return NumericValue{}, fmt.Errorf("invalid fractional literal %q: %w", raw, err)
		}
		return NewFrac(f), nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return NumericValue{}, fmt.Errorf("invalid integer literal %q: %w", raw, err)
	}
	return NewInt(v), nil
}
