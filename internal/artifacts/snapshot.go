package artifacts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ucb-cyarp/dataflowc/internal/ir"
)

// NodeSnapshot is the JSON-serializable projection of one ir.Node. The
// live Node graph is cyclic (parent/child, port/arc back-references) and
// not directly marshalable; a snapshot flattens it to ids.
type NodeSnapshot struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Label    string `json:"label"`
	ParentID int    `json:"parentId,omitempty"`

	Partition             int `json:"partition"`
	BaseSubBlockingLength int `json:"baseSubBlockingLength"`
	NumInputPorts         int `json:"numInputPorts"`
	NumOutputPorts        int `json:"numOutputPorts"`
}

// ArcSnapshot is the JSON-serializable projection of one ir.Arc.
type ArcSnapshot struct {
	ID         int     `json:"id"`
	SrcNodeID  int     `json:"srcNodeId"`
	SrcPort    int     `json:"srcPort"`
	DstNodeID  int     `json:"dstNodeId"`
	DstPort    int     `json:"dstPort"`
	DataType   string  `json:"dataType"`
	SampleTime float64 `json:"sampleTime"`
	Crossing   bool    `json:"crossing"`
}

// DesignSnapshot is a whole-design snapshot taken after a pass runs.
type DesignSnapshot struct {
	RunID    string         `json:"runId"`
	PassName string         `json:"passName"`
	Nodes    []NodeSnapshot `json:"nodes"`
	Arcs     []ArcSnapshot  `json:"arcs"`
}

// Snapshot flattens d into a DesignSnapshot.
func Snapshot(runID, passName string, d *ir.Design) DesignSnapshot {
	snap := DesignSnapshot{
		RunID:    runID,
		PassName: passName,
		Nodes:    make([]NodeSnapshot, 0, len(d.Nodes)),
		Arcs:     make([]ArcSnapshot, 0, len(d.Arcs)),
	}

	for _, n := range d.Nodes {
		ns := NodeSnapshot{
			ID:                    n.ID(),
			Name:                  n.Name(),
			Type:                  n.TypeName(),
			Label:                 n.Label(),
			Partition:             n.Partition(),
			BaseSubBlockingLength: n.BaseSubBlockingLength(),
			NumInputPorts:         len(n.InputPorts()),
			NumOutputPorts:        len(n.OutputPorts()),
		}
		if p := n.Parent(); p != nil {
			ns.ParentID = p.ID()
		}
		snap.Nodes = append(snap.Nodes, ns)
	}

	for _, a := range d.Arcs {
		snap.Arcs = append(snap.Arcs, ArcSnapshot{
			ID:         a.ID(),
			SrcNodeID:  a.SrcPort().Node().ID(),
			SrcPort:    a.SrcPort().Index(),
			DstNodeID:  a.DstPort().Node().ID(),
			DstPort:    a.DstPort().Index(),
			DataType:   a.DataType().String(),
			SampleTime: a.SampleTime(),
			Crossing:   a.Crossing() != nil,
		})
	}

	return snap
}

// Snapshotter writes a DesignSnapshot to a Store after each pass,
// keyed by run id and pass name, so a compile run's IR history can be
// inspected offline (SPEC_FULL.md §3).
type Snapshotter struct {
	store Store
}

// NewSnapshotter wraps store.
func NewSnapshotter(store Store) *Snapshotter {
	return &Snapshotter{store: store}
}

// WritePass snapshots d under a key scoped by runID and passName.
func (s *Snapshotter) WritePass(ctx context.Context, runID, passName string, d *ir.Design) error {
	snap := Snapshot(runID, passName, d)
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal design snapshot: %w", err)
	}
	key := fmt.Sprintf("%s/%s.json", runID, passName)
	return s.store.Put(ctx, key, data)
}
