package engine

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/lixenwraith/tickfork/core"
)

// World contains all entities and their components using typed stores
// Each domain (presentation, simulation) owns one World; entity ids carry the same meaning in both
type World struct {
	mu           sync.RWMutex
	nextEntityID core.Entity
	alive        map[core.Entity]struct{}

	// reserved is the highest id that may be spawned on demand via GetOrSpawn
	reserved core.Entity

	// Global ResourceStore
	Resources *ResourceStore

	stores    map[reflect.Type]AnyStore
	allStores []AnyStore
}

// NewWorld creates an empty world, first issued entity id is 1
func NewWorld() *World {
	return &World{
		nextEntityID: 1,
		alive:        make(map[core.Entity]struct{}),
		Resources:    NewResourceStore(),
		stores:       make(map[reflect.Type]AnyStore),
	}
}

// CreateEntity issues a new entity ID
func (w *World) CreateEntity() core.Entity {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextEntityID
	w.nextEntityID++
	w.alive[id] = struct{}{}
	return id
}

// GetOrSpawn returns e, making it live if it falls inside the reserved id range
// Panics for an id that was never issued or reserved, that would be identity drift between domains
func (w *World) GetOrSpawn(e core.Entity) core.Entity {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.alive[e]; ok {
		return e
	}
	if e == core.NoEntity || e > w.reserved {
		panic(fmt.Sprintf("entity %d is neither live nor reserved (reserved up to %d)", e, w.reserved))
	}
	w.alive[e] = struct{}{}
	return e
}

// IsAlive reports whether e currently exists in this world
func (w *World) IsAlive(e core.Entity) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.alive[e]
	return ok
}

// Len returns the number of live entities
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.alive)
}

// Watermark returns the highest entity id this world has issued or reserved
func (w *World) Watermark() core.Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.reserved > w.nextEntityID-1 {
		return w.reserved
	}
	return w.nextEntityID - 1
}

// ReserveUpTo makes ids 1..n spawnable through GetOrSpawn and moves the allocator past them
// Caller guarantees the world holds no live entity
func (w *World) ReserveUpTo(n core.Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.reserved = n
	if w.nextEntityID <= n {
		w.nextEntityID = n + 1
	}
}

// DestroyEntity removes all components associated with an entity
func (w *World) DestroyEntity(e core.Entity) {
	w.mu.Lock()
	delete(w.alive, e)
	stores := w.allStores
	w.mu.Unlock()

	for _, s := range stores {
		s.RemoveEntity(e)
	}
}

// Clear removes all entities and components and drops any reservation
// Resources are kept
func (w *World) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.nextEntityID = 1
	w.reserved = 0
	w.alive = make(map[core.Entity]struct{})
	for _, s := range w.allStores {
		s.ClearAllComponents()
	}
}

// Entities returns a snapshot of all live entity ids
func (w *World) Entities() []core.Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	result := make([]core.Entity, 0, len(w.alive))
	for e := range w.alive {
		result = append(result, e)
	}
	return result
}

// Spawn creates an entity and applies the given component setters
func (w *World) Spawn(setters ...func(*World, core.Entity)) core.Entity {
	e := w.CreateEntity()
	for _, set := range setters {
		set(w, e)
	}
	return e
}

// With returns a Spawn setter for one component value
func With[T any](val T) func(*World, core.Entity) {
	return func(w *World, e core.Entity) {
		SetComponent(w, e, val)
	}
}
