package physics

import (
	"math"

	"github.com/lixenwraith/tickfork/vmath"
)

// ElasticCollision3DF applies an impulse along the contact normal to two approaching spheres
// Returns the impulse magnitude, zero when the bodies are separating
func ElasticCollision3DF(
	posA, posB *vmath.Vec3F,
	velA, velB *vmath.Vec3F,
	massA, massB, restitution float64,
) float64 {
	dx := posB.X - posA.X
	dy := posB.Y - posA.Y
	dz := posB.Z - posA.Z

	distSq := dx*dx + dy*dy + dz*dz
	if distSq == 0 {
		return 0
	}

	dist := math.Sqrt(distSq)
	invDist := 1.0 / dist
	nx, ny, nz := dx*invDist, dy*invDist, dz*invDist

	relVx := velA.X - velB.X
	relVy := velA.Y - velB.Y
	relVz := velA.Z - velB.Z

	vn := relVx*nx + relVy*ny + relVz*nz
	if vn <= 0 {
		return 0
	}

	invA := 1.0 / massA
	invB := 1.0 / massB
	j := (1.0 + restitution) * vn / (invA + invB)

	jInvA := j * invA
	jInvB := j * invB

	velA.X -= jInvA * nx
	velA.Y -= jInvA * ny
	velA.Z -= jInvA * nz
	velB.X += jInvB * nx
	velB.Y += jInvB * ny
	velB.Z += jInvB * nz

	return j
}

// SeparateOverlap3DF pushes overlapping spheres apart, split by inverse mass ratio
func SeparateOverlap3DF(posA, posB *vmath.Vec3F, radiusA, radiusB, massA, massB float64) bool {
	dx := posB.X - posA.X
	dy := posB.Y - posA.Y
	dz := posB.Z - posA.Z

	distSq := dx*dx + dy*dy + dz*dz
	minDist := radiusA + radiusB
	minDistSq := minDist * minDist

	if distSq >= minDistSq || distSq == 0 {
		return false
	}

	dist := math.Sqrt(distSq)
	overlap := minDist - dist
	invDist := 1.0 / dist

	nx, ny, nz := dx*invDist, dy*invDist, dz*invDist

	totalMass := massA + massB
	ratioA := massB / totalMass
	ratioB := massA / totalMass

	sepA := overlap * ratioA
	sepB := overlap * ratioB

	posA.X -= nx * sepA
	posA.Y -= ny * sepA
	posA.Z -= nz * sepA
	posB.X += nx * sepB
	posB.Y += ny * sepB
	posB.Z += nz * sepB

	return true
}

// ReflectHalfSpace resolves a sphere against a plane through origin with unit normal n
// Returns the impulse per unit mass applied along n, and whether the sphere touched the plane
func ReflectHalfSpace(pos, vel *vmath.Vec3F, radius float64, origin, n vmath.Vec3F, restitution, restingSpeed float64) (float64, bool) {
	depth := vmath.V3FDot(vmath.V3FSub(*pos, origin), n) - radius
	if depth > 0 {
		return 0, false
	}

	*pos = vmath.V3FSub(*pos, vmath.V3FScale(n, depth))

	vn := vmath.V3FDot(*vel, n)
	if vn >= 0 {
		return 0, true
	}

	after := -vn * restitution
	if after < restingSpeed {
		after = 0
	}
	dv := after - vn
	*vel = vmath.V3FAdd(*vel, vmath.V3FScale(n, dv))
	return dv, true
}
