package ir

// ValidateNode runs a single node's own Validate plus the structural
// checks common to every node: every input port must carry exactly one
// arc, every output port at least one (an output with no arc is always
// reported), and the arcs fanning out of one output port must agree on
// DataType. This is deliberately a pure,
// read-only function of one node — internal/passes parallelizes calls
// to it across a design's node set and folds the results together.
func ValidateNode(n Node) []error {
	var errs []error
	if err := n.Validate(); err != nil {
		errs = append(errs, err)
	}
	for _, p := range n.InputPorts() {
		if p.NumArcs() != 1 {
			errs = append(errs, NewStructuralError(n, portArityMessage(p)))
		}
	}
	for _, p := range n.OutputPorts() {
		if p.NumArcs() == 0 {
			errs = append(errs, NewStructuralError(n, portArityMessage(p)))
		}
	}
	for _, p := range n.OutputPorts() {
		errs = append(errs, checkFanOutTypes(n, p)...)
	}
	return errs
}

func portArityMessage(p *Port) string {
	if p.Direction() == DirInput {
		return "input port must have exactly one incoming arc"
	}
	return "output port must have at least one outgoing arc"
}

// checkFanOutTypes ensures every arc fanning out of one output port
// carries the same DataType: a single produced value cannot be typed two
// different ways for two different consumers.
func checkFanOutTypes(n Node, p *Port) []error {
	arcs := p.Arcs()
	if len(arcs) < 2 {
		return nil
	}
	want := arcs[0].DataType()
	var errs []error
	for _, a := range arcs[1:] {
		if !a.DataType().Equal(want) {
			errs = append(errs, NewTypeError(n, "fan-out arcs from one output port disagree on DataType"))
		}
	}
	return errs
}

// ValidateDesign runs ValidateNode over every node in the design,
// sequentially, and returns the concatenation of all errors found. It is
// the reference (non-parallel) validator; internal/passes' validation
// pass reimplements the same per-node checks driven through a worker
// pool and folds results back in ascending-node-id order before handing
// them to the caller.
func ValidateDesign(d *Design) []error {
	var errs []error
	for _, n := range d.Nodes {
		errs = append(errs, ValidateNode(n)...)
	}
	return errs
}
