package component

import "github.com/lixenwraith/tickfork/vmath"

// BodyKind selects how the physics step treats a rigid body
type BodyKind uint8

const (
	BodyDynamic BodyKind = iota
	BodyFixed
	BodyKinematic
)

// RigidBody marks an entity as simulated
type RigidBody struct {
	Kind BodyKind
	Mass float64
}

// Transform is the local transform written by the physics writeback
type Transform = vmath.Transform

// GlobalTransform is the resolved world-space transform
type GlobalTransform struct {
	vmath.Transform
}

// Velocity in world units per second and radians per second
type Velocity struct {
	Linear  vmath.Vec3F
	Angular vmath.Vec3F
}

// Damping bleeds velocity per second, 0 disables
type Damping struct {
	Linear  float64
	Angular float64
}

// GravityScale multiplies the configured gravity for one body
type GravityScale struct {
	Scale float64
}

// Sleeping is set by the physics step once a body stays below the sleep threshold
type Sleeping struct {
	Sleeping bool
	// LowTicks counts consecutive ticks under the linear threshold
	LowTicks int
}

// RigidBodyHandle links an entity to its body inside physics.Context
type RigidBodyHandle struct {
	ID uint32
}

// ColliderHandle links an entity to its collider inside physics.Context
type ColliderHandle struct {
	ID uint32
}
