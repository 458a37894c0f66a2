package ir

// MasterInput is the design's single top-level source of input data,
// one output port per design-level input signal.
type MasterInput struct {
	NodeBase
	BlockSize             int
	InductionVariableName string
	PortClockDomains      []int
}

func NewMasterInput(numSignals int) *MasterInput {
	m := &MasterInput{BlockSize: 1, InductionVariableName: "n", PortClockDomains: make([]int, numSignals)}
	InitBase(&m.NodeBase, m, 0, numSignals)
	m.SetName("Input")
	return m
}

func (m *MasterInput) TypeName() string { return "MasterInput" }
func (m *MasterInput) Label() string    { return "MasterInput" }
func (m *MasterInput) CanExpand() bool  { return false }

func (m *MasterInput) Validate() error {
	if len(m.PortClockDomains) != len(m.OutputPorts()) {
		return NewInvariantError(m, "PortClockDomains length must match output port count")
	}
	return nil
}

func (m *MasterInput) ShallowClone(newParent Node) Node {
	clone := &MasterInput{
		BlockSize:             m.BlockSize,
		InductionVariableName: m.InductionVariableName,
		PortClockDomains:      append([]int(nil), m.PortClockDomains...),
	}
	InitBase(&clone.NodeBase, clone, len(m.InputPorts()), len(m.OutputPorts()))
	CloneBaseInto(&m.NodeBase, &clone.NodeBase)
	clone.SetParent(newParent)
	return clone
}

// MasterOutput is the design's single top-level sink, one input port
// per design-level output signal.
type MasterOutput struct {
	NodeBase
	BlockSize        int
	PortClockDomains []int
}

func NewMasterOutput(numSignals int) *MasterOutput {
	m := &MasterOutput{BlockSize: 1, PortClockDomains: make([]int, numSignals)}
	InitBase(&m.NodeBase, m, numSignals, 0)
	m.SetName("Output")
	return m
}

func (m *MasterOutput) TypeName() string { return "MasterOutput" }
func (m *MasterOutput) Label() string    { return "MasterOutput" }
func (m *MasterOutput) CanExpand() bool  { return false }

func (m *MasterOutput) Validate() error {
	if len(m.PortClockDomains) != len(m.InputPorts()) {
		return NewInvariantError(m, "PortClockDomains length must match input port count")
	}
	return nil
}

func (m *MasterOutput) ShallowClone(newParent Node) Node {
	clone := &MasterOutput{
		BlockSize:        m.BlockSize,
		PortClockDomains: append([]int(nil), m.PortClockDomains...),
	}
	InitBase(&clone.NodeBase, clone, len(m.InputPorts()), len(m.OutputPorts()))
	CloneBaseInto(&m.NodeBase, &clone.NodeBase)
	clone.SetParent(newParent)
	return clone
}

// MasterTerminator sinks arcs whose value is deliberately discarded
// (e.g. a side-effecting subsystem's unused output), so the design stays
// free of dangling outputs without a real downstream consumer.
type MasterTerminator struct {
	NodeBase
}

func NewMasterTerminator() *MasterTerminator {
	m := &MasterTerminator{}
	InitBase(&m.NodeBase, m, 0, 0)
	m.SetName("Terminator")
	return m
}

func (m *MasterTerminator) TypeName() string { return "MasterTerminator" }
func (m *MasterTerminator) Label() string    { return "MasterTerminator" }
func (m *MasterTerminator) CanExpand() bool  { return false }
func (m *MasterTerminator) Validate() error  { return nil }

func (m *MasterTerminator) ShallowClone(newParent Node) Node {
	clone := &MasterTerminator{}
	InitBase(&clone.NodeBase, clone, 0, 0)
	CloneBaseInto(&m.NodeBase, &clone.NodeBase)
	clone.SetParent(newParent)
	return clone
}

// MasterUnconnected marks a port that is structurally present but
// intentionally left unconnected (e.g. an optional output a pass has not
// yet wired up). It has no ports of its own. ValidateNode flags every
// output port that has no outgoing arc as a structural error, on any
// node kind, whether or not a MasterUnconnected is present.
type MasterUnconnected struct {
	NodeBase
}

func NewMasterUnconnected() *MasterUnconnected {
	m := &MasterUnconnected{}
	InitBase(&m.NodeBase, m, 0, 0)
	m.SetName("Unconnected")
	return m
}

func (m *MasterUnconnected) TypeName() string { return "MasterUnconnected" }
func (m *MasterUnconnected) Label() string    { return "MasterUnconnected" }
func (m *MasterUnconnected) CanExpand() bool  { return false }
func (m *MasterUnconnected) Validate() error  { return nil }

func (m *MasterUnconnected) ShallowClone(newParent Node) Node {
	clone := &MasterUnconnected{}
	InitBase(&clone.NodeBase, clone, 0, 0)
	CloneBaseInto(&m.NodeBase, &clone.NodeBase)
	clone.SetParent(newParent)
	return clone
}
