package ir

import "fmt"

// ErrorClass is the IR-level error taxonomy from spec.md §7: every
// validation failure is one of these four kinds, which pkg/errors maps
// onto a canonical gRPC status code.
type ErrorClass int

const (
	// ErrStructural covers malformed graph shape: wrong port count,
	// dangling arcs, a node missing a required child.
	ErrStructural ErrorClass = iota
	// ErrType covers DataType mismatches across an arc or an operation
	// applied to an incompatible shape.
	ErrType
	// ErrPrecondition covers a pass invoked on a design that hasn't met
	// the precondition the pass documents (e.g. absorbing a non-deferred
	// Delay into a FIFO port with sub-block size > 1).
	ErrPrecondition
	// ErrInvariant covers an internal bookkeeping invariant broken by a
	// bug in a pass rather than by bad input (e.g. mismatched slice
	// lengths on a FIFO's per-port state).
	ErrInvariant
)

func (c ErrorClass) String() string {
	switch c {
	case ErrStructural:
		return "structural"
	case ErrType:
		return "type"
	case ErrPrecondition:
		return "precondition"
	case ErrInvariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// NodeError is an IR-level error embedding the offending node, so callers
// can report "which node" without string-parsing the message.
type NodeError struct {
	Class   ErrorClass
	Node    Node
	Message string
	Cause   error
}

func (e *NodeError) Error() string {
	id, typ := -1, "?"
	if e.Node != nil {
		id, typ = e.Node.ID(), e.Node.TypeName()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: node %s#%d: %s: %v", e.Class, typ, id, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: node %s#%d: %s", e.Class, typ, id, e.Message)
}

func (e *NodeError) Unwrap() error { return e.Cause }

// NewStructuralError builds a NodeError of class ErrStructural.
func NewStructuralError(n Node, msg string) error {
	return &NodeError{Class: ErrStructural, Node: n, Message: msg}
}

// NewTypeError builds a NodeError of class ErrType.
func NewTypeError(n Node, msg string) error {
	return &NodeError{Class: ErrType, Node: n, Message: msg}
}

// NewPreconditionError builds a NodeError of class ErrPrecondition.
func NewPreconditionError(n Node, msg string) error {
	return &NodeError{Class: ErrPrecondition, Node: n, Message: msg}
}

// NewInvariantError builds a NodeError of class ErrInvariant.
func NewInvariantError(n Node, msg string) error {
	return &NodeError{Class: ErrInvariant, Node: n, Message: msg}
}

// WrapNodeError wraps an existing error as an ErrInvariant NodeError,
// for bugs surfaced deep in a pass where the cause is itself informative.
func WrapNodeError(n Node, msg string, cause error) error {
	return &NodeError{Class: ErrInvariant, Node: n, Message: msg, Cause: cause}
}
