package simulation

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/lixenwraith/tickfork/component"
	"github.com/lixenwraith/tickfork/core"
	"github.com/lixenwraith/tickfork/engine"
	"github.com/lixenwraith/tickfork/physics"
)

type componentTransfer struct {
	kind string
	copy func(from, to *engine.World)
}

type resourceTransfer struct {
	kind      string
	extract   func(main, sim *engine.World)
	writeback func(sim, main *engine.World)
}

// Registry is the static list of data crossing the domain boundary
// Components are copied by entity id, resources are moved; anything not registered stays in its domain
type Registry struct {
	extract   []componentTransfer
	writeback []componentTransfer
	resources []resourceTransfer
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

func kindOf[T any]() string {
	var zero T
	return reflect.TypeOf(&zero).Elem().String()
}

// ExtractComponent registers T to be copied from presentation into simulation at every fork
func ExtractComponent[T any](r *Registry) *Registry {
	r.extract = append(r.extract, componentTransfer{
		kind: kindOf[T](),
		copy: func(main, sim *engine.World) {
			engine.Components[T](main).Each(func(e core.Entity, val T) {
				engine.SetComponent(sim, sim.GetOrSpawn(e), val)
			})
		},
	})
	return r
}

// ExtractComponentWith registers T for extraction on entities that also carry F
func ExtractComponentWith[T, F any](r *Registry) *Registry {
	r.extract = append(r.extract, componentTransfer{
		kind: kindOf[T]() + " with " + kindOf[F](),
		copy: func(main, sim *engine.World) {
			engine.Components[T](main).Each(func(e core.Entity, val T) {
				if !engine.HasComponent[F](main, e) {
					return
				}
				engine.SetComponent(sim, sim.GetOrSpawn(e), val)
			})
		},
	})
	return r
}

// WritebackComponent registers T to be copied from simulation back into presentation at every join
func WritebackComponent[T any](r *Registry) *Registry {
	r.writeback = append(r.writeback, componentTransfer{
		kind: kindOf[T](),
		copy: func(sim, main *engine.World) {
			engine.Components[T](sim).Each(func(e core.Entity, val T) {
				writeBack(main, e, val)
			})
		},
	})
	return r
}

// WritebackComponentWith registers T for writeback on entities that also carry F in the simulation domain
func WritebackComponentWith[T, F any](r *Registry) *Registry {
	r.writeback = append(r.writeback, componentTransfer{
		kind: kindOf[T]() + " with " + kindOf[F](),
		copy: func(sim, main *engine.World) {
			engine.Components[T](sim).Each(func(e core.Entity, val T) {
				if !engine.HasComponent[F](sim, e) {
					return
				}
				writeBack(main, e, val)
			})
		},
	})
	return r
}

// writeBack skips entities despawned from presentation while the episode ran
func writeBack[T any](main *engine.World, e core.Entity, val T) {
	if !main.IsAlive(e) {
		slog.Debug("writeback skipped despawned entity", "entity", e, "kind", kindOf[T]())
		return
	}
	engine.SetComponent(main, e, val)
}

// MoveResource registers an exclusive resource
// Extraction moves it into simulation and leaves placeholder() behind when placeholder is non-nil;
// writeback moves it back over the placeholder. A missing resource at either point panics.
func MoveResource[T any](r *Registry, placeholder func() T) *Registry {
	r.resources = append(r.resources, resourceTransfer{
		kind: kindOf[T](),
		extract: func(main, sim *engine.World) {
			engine.MoveResource[T](main.Resources, sim.Resources)
			if placeholder != nil {
				engine.AddResource(main.Resources, placeholder())
			}
		},
		writeback: func(sim, main *engine.World) {
			engine.MoveResource[T](sim.Resources, main.Resources)
		},
	})
	return r
}

// Extract moves resources then copies components from main into sim
func (r *Registry) Extract(main, sim *engine.World) {
	for _, t := range r.resources {
		t.extract(main, sim)
	}
	for _, t := range r.extract {
		t.copy(main, sim)
	}
}

// Writeback copies components then moves resources from sim into main
func (r *Registry) Writeback(sim, main *engine.World) {
	for _, t := range r.writeback {
		t.copy(sim, main)
	}
	for _, t := range r.resources {
		t.writeback(sim, main)
	}
}

// Kinds lists every registration in transfer order
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.extract)+len(r.writeback)+len(r.resources))
	for _, t := range r.resources {
		kinds = append(kinds, "move "+t.kind)
	}
	for _, t := range r.extract {
		kinds = append(kinds, "extract "+t.kind)
	}
	for _, t := range r.writeback {
		kinds = append(kinds, "writeback "+t.kind)
	}
	return kinds
}

func (r *Registry) String() string {
	return fmt.Sprintf("registry(%d extract, %d writeback, %d resources)", len(r.extract), len(r.writeback), len(r.resources))
}

// DefaultRegistry transfers the rigid body simulation state
func DefaultRegistry() *Registry {
	r := NewRegistry()

	MoveResource(r, physics.NewContext)
	MoveResource(r, physics.DefaultConfiguration)
	MoveResource(r, physics.NewEvents[physics.CollisionEvent])
	MoveResource(r, physics.NewEvents[physics.ContactForceEvent])

	ExtractComponent[component.RigidBody](r)
	ExtractComponent[component.Collider](r)
	ExtractComponentWith[component.Transform, component.Collider](r)
	ExtractComponentWith[component.GlobalTransform, component.Collider](r)
	ExtractComponentWith[component.Transform, component.RigidBody](r)
	ExtractComponentWith[component.GlobalTransform, component.RigidBody](r)
	ExtractComponent[component.Velocity](r)
	ExtractComponent[component.Damping](r)
	ExtractComponent[component.GravityScale](r)
	ExtractComponent[component.Sleeping](r)
	ExtractComponentWith[component.RigidBodyHandle, component.RigidBody](r)
	ExtractComponentWith[component.ColliderHandle, component.Collider](r)
	ExtractComponentWith[component.LerpTransform, component.RigidBody](r)
	ExtractComponent[component.Timeline](r)

	WritebackComponentWith[component.Transform, component.RigidBody](r)
	WritebackComponent[component.Velocity](r)
	WritebackComponent[component.Sleeping](r)
	WritebackComponent[component.RigidBodyHandle](r)
	WritebackComponent[component.ColliderHandle](r)
	WritebackComponent[component.LerpTransform](r)

	return r
}
