package engine

import (
	"reflect"
	"sync"

	"github.com/lixenwraith/tickfork/core"
)

// Store is a generic container for a specific component type T
// Uses sparse set pattern for cache-friendly iteration
type Store[T any] struct {
	mu         sync.RWMutex
	components map[core.Entity]T
	entities   []core.Entity // Array of entities that have this component
}

// NewStore creates a new component store for type T
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		components: make(map[core.Entity]T),
		entities:   make([]core.Entity, 0, 64),
	}
}

// SetComponent inserts or updates a component for an entity
func (s *Store[T]) SetComponent(e core.Entity, val T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.components[e]; !exists {
		s.entities = append(s.entities, e)
	}
	s.components[e] = val
}

// GetComponent retrieves a component for an entity
func (s *Store[T]) GetComponent(e core.Entity) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.components[e]
	return val, ok
}

// RemoveEntity deletes a component from an entity
func (s *Store[T]) RemoveEntity(e core.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.components[e]; exists {
		delete(s.components, e)
		for i, entity := range s.entities {
			if entity == e {
				s.entities[i] = s.entities[len(s.entities)-1]
				s.entities = s.entities[:len(s.entities)-1]
				break
			}
		}
	}
}

// HasEntity checks if entity has this component
func (s *Store[T]) HasEntity(e core.Entity) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.components[e]
	return ok
}

// GetAllEntities returns all entities with this component type
func (s *Store[T]) GetAllEntities() []core.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]core.Entity, len(s.entities))
	copy(result, s.entities)
	return result
}

// CountEntities returns number of entities with this component
func (s *Store[T]) CountEntities() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// ClearAllComponents removes all components from this store
func (s *Store[T]) ClearAllComponents() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.components = make(map[core.Entity]T)
	s.entities = make([]core.Entity, 0, 64)
}

// Each calls fn for every (entity, component) pair in insertion order over a snapshot
func (s *Store[T]) Each(fn func(e core.Entity, val T)) {
	s.mu.RLock()
	entities := make([]core.Entity, len(s.entities))
	copy(entities, s.entities)
	vals := make([]T, len(entities))
	for i, e := range entities {
		vals[i] = s.components[e]
	}
	s.mu.RUnlock()

	for i, e := range entities {
		fn(e, vals[i])
	}
}

// Components returns the world's store for T, creating it on first use
func Components[T any](w *World) *Store[T] {
	var zero T
	t := reflect.TypeOf(&zero).Elem()

	w.mu.RLock()
	s, ok := w.stores[t]
	w.mu.RUnlock()
	if ok {
		return s.(*Store[T])
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if s, ok := w.stores[t]; ok {
		return s.(*Store[T])
	}
	store := NewStore[T]()
	w.stores[t] = store
	w.allStores = append(w.allStores, store)
	return store
}

// SetComponent stores val on e in w
func SetComponent[T any](w *World, e core.Entity, val T) {
	Components[T](w).SetComponent(e, val)
}

// GetComponent reads the T component of e
func GetComponent[T any](w *World, e core.Entity) (T, bool) {
	return Components[T](w).GetComponent(e)
}

// HasComponent reports whether e carries a T component
func HasComponent[T any](w *World, e core.Entity) bool {
	return Components[T](w).HasEntity(e)
}

// UpdateComponent applies fn to e's T component in place, false if e has none
func UpdateComponent[T any](w *World, e core.Entity, fn func(*T)) bool {
	s := Components[T](w)
	val, ok := s.GetComponent(e)
	if !ok {
		return false
	}
	fn(&val)
	s.SetComponent(e, val)
	return true
}
