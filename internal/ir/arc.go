package ir

// PartitionCrossingInfo is carried by arcs whose source and destination
// ports sit on either side of a ThreadCrossingFIFO, giving the estimator
// and GraphML export surface the numbers named in spec.md §3/§6.
type PartitionCrossingInfo struct {
	InitStateCountBlocks int
	BytesPerSample       int
	BytesPerBlock        int
}

// Arc is a directed, typed edge between a source output port and a
// destination input port. Arcs are created through Connect, which
// atomically registers the new arc on both endpoints, and destroyed
// through Disconnect followed by dropping the reference.
type Arc struct {
	id         int
	src        *Port
	dst        *Port
	dtype      DataType
	sampleTime float64

	crossing *PartitionCrossingInfo
}

// Connect creates an arc from src to dst and registers it on both ports.
// This is the only constructor for Arc: endpoint registration must never
// happen outside of it, so that a port's arc set and an arc's endpoints
// never disagree.
func Connect(src, dst *Port, dtype DataType, sampleTime float64) *Arc {
	a := &Arc{src: src, dst: dst, dtype: dtype, sampleTime: sampleTime}
	src.addArc(a)
	dst.addArc(a)
	return a
}

// ID returns the arc's design-scoped id (0 until registered by a Design).
func (a *Arc) ID() int { return a.id }

// SrcPort returns the arc's source port.
func (a *Arc) SrcPort() *Port { return a.src }

// DstPort returns the arc's destination port.
func (a *Arc) DstPort() *Port { return a.dst }

// DataType returns the arc's carried type.
func (a *Arc) DataType() DataType { return a.dtype }

// SetDataType updates the arc's carried type.
func (a *Arc) SetDataType(dt DataType) { a.dtype = dt }

// SampleTime returns the arc's sample time.
func (a *Arc) SampleTime() float64 { return a.sampleTime }

// Crossing returns the partition-crossing metadata, or nil if this arc
// does not cross a partition boundary.
func (a *Arc) Crossing() *PartitionCrossingInfo { return a.crossing }

// MakePartitionCrossing attaches partition-crossing metadata to the arc,
// deriving byte counts from its DataType and the given block size (see
// SPEC_FULL.md §4, "PartitionCrossing estimator fields").
func (a *Arc) MakePartitionCrossing(initStateBlocks, blockSize int) {
	elemBytes := a.dtype.ElementBytes()
	perBlock := elemBytes * a.dtype.NumElements() * blockSize
	a.crossing = &PartitionCrossingInfo{
		InitStateCountBlocks: initStateBlocks,
		BytesPerSample:       elemBytes * a.dtype.NumElements(),
		BytesPerBlock:        perBlock,
	}
}

// SetSrcPort rewires the arc's source endpoint. Per spec.md §4.1, this is
// "update-new-update-prev": the new port is bound first, then the arc is
// detached from the previous one.
func (a *Arc) SetSrcPort(newPort *Port) {
	newPort.addArc(a)
	old := a.src
	a.src = newPort
	if old != nil && old != newPort {
		old.removeArc(a)
	}
}

// SetDstPort rewires the arc's destination endpoint, following the same
// update-new-update-prev contract as SetSrcPort.
func (a *Arc) SetDstPort(newPort *Port) {
	newPort.addArc(a)
	old := a.dst
	a.dst = newPort
	if old != nil && old != newPort {
		old.removeArc(a)
	}
}

// Disconnect removes the arc from both of its endpoints' arc sets. The
// arc itself is left unreferenced by any port, ready to be dropped by the
// caller (typically by omitting it from the Design's arc vector).
func (a *Arc) Disconnect() {
	if a.src != nil {
		a.src.removeArc(a)
	}
	if a.dst != nil {
		a.dst.removeArc(a)
	}
}
