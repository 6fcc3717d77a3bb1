package physics

import (
	"sort"

	"github.com/lixenwraith/tickfork/component"
	"github.com/lixenwraith/tickfork/core"
	"github.com/lixenwraith/tickfork/vmath"
)

// staticMass stands in for the infinite mass of fixed bodies in pair resolution
const staticMass = 1e9

type body struct {
	entity core.Entity
	kind   component.BodyKind
	mass   float64

	pos   vmath.Vec3F
	rot   vmath.Quat
	scale vmath.Vec3F

	linVel vmath.Vec3F
	angVel vmath.Vec3F

	damping      component.Damping
	gravityScale float64

	sleeping bool
	lowTicks int
}

type collider struct {
	entity core.Entity
	shape  component.Collider
	// origin is used when the collider has no rigid body
	origin vmath.Vec3F
}

type pairKey struct {
	a, b core.Entity
}

func makePair(a, b core.Entity) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// Context is the internal physics state, an exclusive resource that lives in one domain at a time
type Context struct {
	bodies    map[uint32]*body
	colliders map[uint32]*collider

	entityBody     map[core.Entity]uint32
	entityCollider map[core.Entity]uint32

	nextBody     uint32
	nextCollider uint32

	contacts map[pairKey]struct{}

	// Steps counts executed simulation steps
	Steps uint64
}

// NewContext creates an empty physics context
func NewContext() *Context {
	return &Context{
		bodies:         make(map[uint32]*body),
		colliders:      make(map[uint32]*collider),
		entityBody:     make(map[core.Entity]uint32),
		entityCollider: make(map[core.Entity]uint32),
		nextBody:       1,
		nextCollider:   1,
		contacts:       make(map[pairKey]struct{}),
	}
}

// BodyCount returns the number of rigid bodies
func (c *Context) BodyCount() int {
	return len(c.bodies)
}

// ColliderCount returns the number of colliders
func (c *Context) ColliderCount() int {
	return len(c.colliders)
}

// ContactCount returns the number of touching pairs after the last step
func (c *Context) ContactCount() int {
	return len(c.contacts)
}

// BodyEntity returns the entity owning a body handle
func (c *Context) BodyEntity(h component.RigidBodyHandle) (core.Entity, bool) {
	b, ok := c.bodies[h.ID]
	if !ok {
		return core.NoEntity, false
	}
	return b.entity, true
}

func (c *Context) sortedBodies() []uint32 {
	ids := make([]uint32, 0, len(c.bodies))
	for id := range c.bodies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (c *Context) sortedColliders() []uint32 {
	ids := make([]uint32, 0, len(c.colliders))
	for id := range c.colliders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (c *Context) removeBody(id uint32) {
	b, ok := c.bodies[id]
	if !ok {
		return
	}
	delete(c.entityBody, b.entity)
	delete(c.bodies, id)
}

func (c *Context) removeCollider(id uint32) {
	col, ok := c.colliders[id]
	if !ok {
		return
	}
	delete(c.entityCollider, col.entity)
	delete(c.colliders, id)
	for p := range c.contacts {
		if p.a == col.entity || p.b == col.entity {
			delete(c.contacts, p)
		}
	}
}
