package physics

import (
	"sync"

	"github.com/lixenwraith/tickfork/core"
)

// CollisionKind tells whether a contact began or ended
type CollisionKind uint8

const (
	CollisionStarted CollisionKind = iota
	CollisionStopped
)

// CollisionEvent reports a contact pair change
type CollisionEvent struct {
	Kind CollisionKind
	A, B core.Entity
}

// ContactForceEvent reports an impulse above a collider's threshold
type ContactForceEvent struct {
	A, B      core.Entity
	Magnitude float64
}

// Events is a pending event queue; written by the step, drained by presentation consumers
type Events[T any] struct {
	mu    sync.Mutex
	queue []T
}

// NewEvents creates an empty queue
func NewEvents[T any]() *Events[T] {
	return &Events[T]{}
}

// Send appends an event
func (e *Events[T]) Send(ev T) {
	e.mu.Lock()
	e.queue = append(e.queue, ev)
	e.mu.Unlock()
}

// Drain returns and clears all pending events
func (e *Events[T]) Drain() []T {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.queue
	e.queue = nil
	return out
}

// Len returns the number of pending events
func (e *Events[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}
