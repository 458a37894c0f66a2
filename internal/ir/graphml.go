package ir

import "strconv"

// GraphMLParameters is the contract a node kind satisfies to be
// round-tripped to/from the GraphML dialect this IR descends from. It
// does not perform XML encode/decode itself — that belongs to an
// external collaborator (spec.md §1 Non-goals: "GraphML XML
// import/export is out of scope") — it only exposes the attribute map a
// future importer/exporter would read and write, keeping the IR types
// themselves the single source of truth for what a node's GraphML
// representation contains.
type GraphMLParameters interface {
	// GraphMLTypeTag is the dialect's node type string, e.g. "Delay" or
	// "ThreadCrossingFIFO".
	GraphMLTypeTag() string
	// GraphMLAttributes returns the node's parameters as string-keyed
	// values, suitable for an external encoder to serialize.
	GraphMLAttributes() map[string]string
}

func (d *Delay) GraphMLTypeTag() string { return "Delay" }
func (d *Delay) GraphMLAttributes() map[string]string {
	return map[string]string{"delayValue": strconv.Itoa(d.DelayValue)}
}

func (f *ThreadCrossingFIFO) GraphMLTypeTag() string { return "ThreadCrossingFIFO" }
func (f *ThreadCrossingFIFO) GraphMLAttributes() map[string]string {
	return map[string]string{"fifoLength": strconv.Itoa(f.FifoLength), "ports": strconv.Itoa(len(f.InputState))}
}

func (b *BlockingDomainBridge) GraphMLTypeTag() string { return "BlockingDomainBridge" }
func (b *BlockingDomainBridge) GraphMLAttributes() map[string]string {
	return map[string]string{"blockSize": strconv.Itoa(b.BlockSize)}
}
