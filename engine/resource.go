package engine

import (
	"reflect"
	"sync"
)

// ResourceStore is a thread-safe container for singleton resources of one domain
// A resource slot is either present here, moved to another domain, or absent
type ResourceStore struct {
	mu        sync.RWMutex
	resources map[reflect.Type]any
}

// NewResourceStore creates a new empty resource store
func NewResourceStore() *ResourceStore {
	return &ResourceStore{
		resources: make(map[reflect.Type]any),
	}
}

func typeOf[T any]() reflect.Type {
	var target T
	return reflect.TypeOf(&target).Elem()
}

// AddResource registers or replaces a resource in the store
// T should be a pointer type so systems can mutate the resource in place
func AddResource[T any](rs *ResourceStore, resource T) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.resources[typeOf[T]()] = resource
}

// GetResource retrieves a resource of type T from the store
// Returns the zero value of T and false if not found
func GetResource[T any](rs *ResourceStore) (T, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	val, ok := rs.resources[typeOf[T]()]
	if !ok {
		var target T
		return target, false
	}
	return val.(T), true
}

// MustGetResource retrieves a resource or panics if missing
// Useful for resources that must exist by protocol
func MustGetResource[T any](rs *ResourceStore) T {
	res, ok := GetResource[T](rs)
	if !ok {
		panic("Required resource not found: " + typeOf[T]().String())
	}
	return res
}

// HasResource reports whether a T is present
func HasResource[T any](rs *ResourceStore) bool {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	_, ok := rs.resources[typeOf[T]()]
	return ok
}

// TakeResource removes and returns the T resource, leaving the slot empty
func TakeResource[T any](rs *ResourceStore) (T, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	t := typeOf[T]()
	val, ok := rs.resources[t]
	if !ok {
		var target T
		return target, false
	}
	delete(rs.resources, t)
	return val.(T), true
}

// MustTakeResource removes the T resource or panics if the slot is empty
func MustTakeResource[T any](rs *ResourceStore) T {
	res, ok := TakeResource[T](rs)
	if !ok {
		panic("Required resource not found for transfer: " + typeOf[T]().String())
	}
	return res
}

// MoveResource transfers the T resource from one store to another
// The source slot is left empty; a missing source is a broken transfer protocol and panics
func MoveResource[T any](from, to *ResourceStore) {
	AddResource(to, MustTakeResource[T](from))
}
