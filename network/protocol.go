package network

import (
	"sort"

	"github.com/lixenwraith/tickfork/component"
	"github.com/lixenwraith/tickfork/core"
	"github.com/lixenwraith/tickfork/engine"
	"github.com/lixenwraith/tickfork/vmath"
)

// Snapshot is one presentation frame as streamed to subscribers
type Snapshot struct {
	Frame     int64          `json:"frame"`
	Timestamp float64        `json:"timestamp"`
	Timescale float64        `json:"timescale"`
	Bodies    []BodySnapshot `json:"bodies"`
}

// BodySnapshot is the rendered pose of one simulated entity
type BodySnapshot struct {
	Entity   core.Entity `json:"entity"`
	Position [3]float64  `json:"position"`
	Rotation [4]float64  `json:"rotation"`
	Sleeping bool        `json:"sleeping,omitempty"`
	// Interpolated is false when the pose is the raw writeback transform
	Interpolated bool `json:"interpolated"`
}

// BuildSnapshot reads the presentation world, preferring the interpolated transform
func BuildSnapshot(w *engine.World) Snapshot {
	tl := engine.SingleTimeline(w)
	snap := Snapshot{
		Timestamp: tl.Timestamp,
		Timescale: tl.Timescale,
		Bodies:    []BodySnapshot{},
	}
	if ft, ok := engine.GetResource[*engine.FrameTime](w.Resources); ok {
		snap.Frame = ft.Frame
	}

	engine.Components[component.RigidBody](w).Each(func(e core.Entity, rb component.RigidBody) {
		if rb.Kind == component.BodyFixed {
			return
		}

		var tr vmath.Transform
		interpolated := false
		if rt, ok := engine.GetComponent[component.RenderTransform](w, e); ok && rt.Valid {
			tr = rt.Transform
			interpolated = true
		} else if t, ok := engine.GetComponent[component.Transform](w, e); ok {
			tr = t
		} else {
			return
		}

		sl, _ := engine.GetComponent[component.Sleeping](w, e)
		snap.Bodies = append(snap.Bodies, BodySnapshot{
			Entity:       e,
			Position:     [3]float64{tr.Translation.X, tr.Translation.Y, tr.Translation.Z},
			Rotation:     [4]float64{tr.Rotation.X, tr.Rotation.Y, tr.Rotation.Z, tr.Rotation.W},
			Sleeping:     sl.Sleeping,
			Interpolated: interpolated,
		})
	})

	sort.Slice(snap.Bodies, func(i, j int) bool { return snap.Bodies[i].Entity < snap.Bodies[j].Entity })
	return snap
}
