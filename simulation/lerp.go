package simulation

import (
	"math"

	"github.com/lixenwraith/tickfork/component"
	"github.com/lixenwraith/tickfork/core"
	"github.com/lixenwraith/tickfork/engine"
	"github.com/lixenwraith/tickfork/vmath"
)

// UpdateLerpTransform records the transform of every tracked entity at the simulation clock
// Runs post-physics, once per tick
func UpdateLerpTransform(w *engine.World) {
	ts := engine.SingleTimeline(w).Timestamp
	store := engine.Components[component.LerpTransform](w)

	store.Each(func(e core.Entity, lt component.LerpTransform) {
		tr, ok := engine.GetComponent[component.Transform](w, e)
		if !ok {
			return
		}
		lt.Push(ts, tr)
		store.SetComponent(e, lt)
	})
}

// Interpolate blends the two samples of h for presentation time now
// local_t is not clamped, a clock outside the sample interval extrapolates.
// Returns false with fewer than two samples or a zero-length interval.
func Interpolate(h component.LerpTransform, now float64) (vmath.Transform, bool) {
	newer, ok := h.Newest()
	if !ok {
		return vmath.Transform{}, false
	}
	older, ok := h.Older()
	if !ok {
		return vmath.Transform{}, false
	}

	lo := math.Min(newer.Timestamp, older.Timestamp)
	hi := math.Max(newer.Timestamp, older.Timestamp)
	if lo == hi {
		return vmath.Transform{}, false
	}

	localT := math.Abs((now-lo)/(hi-lo) - 1)
	return vmath.InterpolateTransform(older.Transform, newer.Transform, localT), true
}

// InterpolateSystem writes RenderTransform for every entity with a usable sample history
// Skipped entities keep their previous RenderTransform
func InterpolateSystem() engine.System {
	return engine.FuncPriority(2, func(w *engine.World) {
		now := engine.SingleTimeline(w).Timestamp
		engine.Components[component.LerpTransform](w).Each(func(e core.Entity, lt component.LerpTransform) {
			tr, ok := Interpolate(lt, now)
			if !ok {
				return
			}
			engine.SetComponent(w, e, component.RenderTransform{Transform: tr, Valid: true})
		})
	})
}
