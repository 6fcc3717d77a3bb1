package component

import "github.com/lixenwraith/tickfork/vmath"

// ShapeKind is the collider geometry
type ShapeKind uint8

const (
	ShapeBall ShapeKind = iota
	// ShapeHalfSpace is an infinite plane through the entity translation, solid below Normal
	ShapeHalfSpace
)

// Collider describes the collision geometry and material of an entity
type Collider struct {
	Shape       ShapeKind
	Radius      float64
	Normal      vmath.Vec3F
	Restitution float64
	// ActiveEvents enables collision Started/Stopped events for this collider
	ActiveEvents bool
	// ForceEventThreshold emits a contact force event when an impulse exceeds it, 0 disables
	ForceEventThreshold float64
}

// Ball returns a sphere collider
func Ball(radius, restitution float64) Collider {
	return Collider{Shape: ShapeBall, Radius: radius, Restitution: restitution, ActiveEvents: true}
}

// HalfSpace returns a ground-style plane collider
func HalfSpace(normal vmath.Vec3F, restitution float64) Collider {
	return Collider{Shape: ShapeHalfSpace, Normal: vmath.V3FNormalize(normal), Restitution: restitution}
}
