package ir

import "fmt"

// SubSystem is a plain hierarchical grouping node: a container with no
// contextual effect on its children (contrast EnabledSubSystem).
type SubSystem struct {
	NodeBase
	children []Node
}

func NewSubSystem(name string) *SubSystem {
	s := &SubSystem{}
	InitBase(&s.NodeBase, s, 0, 0)
	s.SetName(name)
	return s
}

func (s *SubSystem) TypeName() string { return "SubSystem" }
func (s *SubSystem) Label() string    { return fmt.Sprintf("SubSystem(%s)", s.Name()) }
func (s *SubSystem) CanExpand() bool  { return false }

func (s *SubSystem) Validate() error { return nil }

func (s *SubSystem) Children() []Node {
	out := make([]Node, len(s.children))
	copy(out, s.children)
	return out
}

func (s *SubSystem) AddChild(n Node) {
	s.children = append(s.children, n)
	n.SetParent(s)
}

func (s *SubSystem) RemoveChild(n Node) {
	for i, c := range s.children {
		if c == n {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

func (s *SubSystem) ShallowClone(newParent Node) Node {
	clone := &SubSystem{}
	InitBase(&clone.NodeBase, clone, 0, 0)
	CloneBaseInto(&s.NodeBase, &clone.NodeBase)
	clone.SetParent(newParent)
	return clone
}

// EnableInput is the first-class node kind marking one of an
// EnabledSubSystem's enable-input ports, validating that it is indeed
// registered in its parent's EnableInputs vector (SPEC_FULL.md §4,
// grounded on original_source GraphCore/EnableInput.cpp).
type EnableInput struct {
	NodeBase
}

func NewEnableInput(name string) *EnableInput {
	e := &EnableInput{}
	InitBase(&e.NodeBase, e, 1, 1)
	e.SetName(name)
	return e
}

func (e *EnableInput) TypeName() string { return "EnableInput" }
func (e *EnableInput) Label() string    { return fmt.Sprintf("EnableInput(%s)", e.Name()) }
func (e *EnableInput) CanExpand() bool  { return false }

func (e *EnableInput) Validate() error {
	parent, ok := e.Parent().(*EnabledSubSystem)
	if !ok {
		return NewStructuralError(e, "EnableInput must be a direct child of an EnabledSubSystem")
	}
	for _, in := range parent.EnableInputs {
		if in == e {
			return nil
		}
	}
	return NewInvariantError(e, "EnableInput not registered in parent's EnableInputs vector")
}

func (e *EnableInput) ShallowClone(newParent Node) Node {
	clone := &EnableInput{}
	InitBase(&clone.NodeBase, clone, len(e.InputPorts()), len(e.OutputPorts()))
	CloneBaseInto(&e.NodeBase, &clone.NodeBase)
	clone.SetParent(newParent)
	return clone
}

// EnableOutput is the symmetric counterpart of EnableInput for an
// EnabledSubSystem's outputs.
type EnableOutput struct {
	NodeBase
}

func NewEnableOutput(name string) *EnableOutput {
	e := &EnableOutput{}
	InitBase(&e.NodeBase, e, 1, 1)
	e.SetName(name)
	return e
}

func (e *EnableOutput) TypeName() string { return "EnableOutput" }
func (e *EnableOutput) Label() string    { return fmt.Sprintf("EnableOutput(%s)", e.Name()) }
func (e *EnableOutput) CanExpand() bool  { return false }

func (e *EnableOutput) Validate() error {
	parent, ok := e.Parent().(*EnabledSubSystem)
	if !ok {
		return NewStructuralError(e, "EnableOutput must be a direct child of an EnabledSubSystem")
	}
	for _, out := range parent.EnableOutputs {
		if out == e {
			return nil
		}
	}
	return NewInvariantError(e, "EnableOutput not registered in parent's EnableOutputs vector")
}

func (e *EnableOutput) ShallowClone(newParent Node) Node {
	clone := &EnableOutput{}
	InitBase(&clone.NodeBase, clone, len(e.InputPorts()), len(e.OutputPorts()))
	CloneBaseInto(&e.NodeBase, &clone.NodeBase)
	clone.SetParent(newParent)
	return clone
}

// EnabledSubSystem is a SubSystem whose children only execute when its
// enable line is asserted. It is a ContextRoot with two sub-contexts:
// 0 (enabled) is the only one this system uses, since "disabled" just
// means "did not run" rather than a distinct branch (contrast Mux).
type EnabledSubSystem struct {
	NodeBase
	children      []Node
	EnableInputs  []*EnableInput
	EnableOutputs []*EnableOutput

	subContextNodes map[int][]Node
}

func NewEnabledSubSystem(name string) *EnabledSubSystem {
	e := &EnabledSubSystem{subContextNodes: make(map[int][]Node)}
	InitBase(&e.NodeBase, e, 0, 0)
	e.EnsureEnablePort(e)
	e.SetName(name)
	return e
}

func (e *EnabledSubSystem) TypeName() string { return "EnabledSubSystem" }
func (e *EnabledSubSystem) Label() string    { return fmt.Sprintf("EnabledSubSystem(%s)", e.Name()) }
func (e *EnabledSubSystem) CanExpand() bool  { return false }

func (e *EnabledSubSystem) Validate() error {
	if len(e.EnableInputs) == 0 && len(e.EnableOutputs) == 0 {
		return NewStructuralError(e, "enabled subsystem must have at least one enable input or output")
	}
	return nil
}

func (e *EnabledSubSystem) AllowFIFOAbsorption() bool { return true }

func (e *EnabledSubSystem) AddSubContextNode(sub int, n Node) {
	e.subContextNodes[sub] = append(e.subContextNodes[sub], n)
}

func (e *EnabledSubSystem) SubContextNodes(sub int) []Node {
	out := make([]Node, len(e.subContextNodes[sub]))
	copy(out, e.subContextNodes[sub])
	return out
}

func (e *EnabledSubSystem) Children() []Node {
	out := make([]Node, len(e.children))
	copy(out, e.children)
	return out
}

func (e *EnabledSubSystem) AddChild(n Node) {
	e.children = append(e.children, n)
	n.SetParent(e)
	switch v := n.(type) {
	case *EnableInput:
		e.EnableInputs = append(e.EnableInputs, v)
	case *EnableOutput:
		e.EnableOutputs = append(e.EnableOutputs, v)
	}
}

func (e *EnabledSubSystem) RemoveChild(n Node) {
	for i, c := range e.children {
		if c == n {
			e.children = append(e.children[:i], e.children[i+1:]...)
			break
		}
	}
}

func (e *EnabledSubSystem) ShallowClone(newParent Node) Node {
	clone := &EnabledSubSystem{subContextNodes: make(map[int][]Node)}
	InitBase(&clone.NodeBase, clone, 0, 0)
	clone.EnsureEnablePort(clone)
	CloneBaseInto(&e.NodeBase, &clone.NodeBase)
	clone.SetParent(newParent)
	return clone
}

// ExpandedNode is a placeholder left in the graph after a HighLevelNode
// has been expanded, retaining a reference to the original for
// traceability (diagnostics, re-export) without it participating in any
// further pass.
type ExpandedNode struct {
	NodeBase
	children []Node
	Original Node
}

func NewExpandedNode(name string, original Node) *ExpandedNode {
	ex := &ExpandedNode{Original: original}
	InitBase(&ex.NodeBase, ex, 0, 0)
	ex.SetName(name)
	return ex
}

func (ex *ExpandedNode) TypeName() string { return "ExpandedNode" }
func (ex *ExpandedNode) Label() string {
	return fmt.Sprintf("ExpandedNode(%s, was %s)", ex.Name(), ex.Original.TypeName())
}
func (ex *ExpandedNode) CanExpand() bool { return false }
func (ex *ExpandedNode) Validate() error { return nil }

func (ex *ExpandedNode) Children() []Node {
	out := make([]Node, len(ex.children))
	copy(out, ex.children)
	return out
}

func (ex *ExpandedNode) AddChild(n Node) {
	ex.children = append(ex.children, n)
	n.SetParent(ex)
}

func (ex *ExpandedNode) RemoveChild(n Node) {
	for i, c := range ex.children {
		if c == n {
			ex.children = append(ex.children[:i], ex.children[i+1:]...)
			return
		}
	}
}

func (ex *ExpandedNode) ShallowClone(newParent Node) Node {
	clone := &ExpandedNode{Original: ex.Original}
	InitBase(&clone.NodeBase, clone, 0, 0)
	CloneBaseInto(&ex.NodeBase, &clone.NodeBase)
	clone.SetParent(newParent)
	return clone
}
