package engine

import (
	"fmt"

	"github.com/lixenwraith/tickfork/component"
	"github.com/lixenwraith/tickfork/core"
)

// FrameTime is written by the host before each presentation frame
type FrameTime struct {
	// Delta is elapsed real seconds since the previous frame
	Delta float64
	Frame int64
}

// TimelineEntity returns the single clock entity of w
// Panics unless exactly one entity carries a Timeline, each domain needs exactly one clock source
func TimelineEntity(w *World) core.Entity {
	entities := Components[component.Timeline](w).GetAllEntities()
	if len(entities) != 1 {
		panic(fmt.Sprintf("Missing Timeline entity: expected exactly one, found %d", len(entities)))
	}
	return entities[0]
}

// SingleTimeline returns the clock of w, see TimelineEntity
func SingleTimeline(w *World) component.Timeline {
	tl, _ := GetComponent[component.Timeline](w, TimelineEntity(w))
	return tl
}

// SetTimeline overwrites the single clock of w
func SetTimeline(w *World, tl component.Timeline) {
	SetComponent(w, TimelineEntity(w), tl)
}

// SpawnTimeline creates the clock entity of a domain
func SpawnTimeline(w *World, tl component.Timeline) core.Entity {
	return w.Spawn(With(tl))
}

// AdvanceTimeline ticks every clock in w by dt real seconds
func AdvanceTimeline(w *World, dt float64) {
	store := Components[component.Timeline](w)
	store.Each(func(e core.Entity, tl component.Timeline) {
		tl.Tick(dt)
		store.SetComponent(e, tl)
	})
}

// TimelineSystem advances the presentation clock from the FrameTime resource
// Belongs in StagePreUpdate
func TimelineSystem() System {
	return Func(func(w *World) {
		ft, ok := GetResource[*FrameTime](w.Resources)
		if !ok {
			return
		}
		AdvanceTimeline(w, ft.Delta)
	})
}
