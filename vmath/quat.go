package vmath

import "math"

// Quat is a rotation quaternion (X, Y, Z imaginary, W real)
type Quat struct {
	X, Y, Z, W float64
}

// QuatIdentity is the no-rotation quaternion
var QuatIdentity = Quat{W: 1}

// QuatFromAxisAngle builds a rotation of angle radians around axis
func QuatFromAxisAngle(axis Vec3F, angle float64) Quat {
	n := V3FNormalize(axis)
	if n == (Vec3F{}) {
		return QuatIdentity
	}
	s, c := math.Sincos(angle * 0.5)
	return Quat{n.X * s, n.Y * s, n.Z * s, c}
}

func (q Quat) Dot(o Quat) float64 {
	return q.X*o.X + q.Y*o.Y + q.Z*o.Z + q.W*o.W
}

func (q Quat) Neg() Quat {
	return Quat{-q.X, -q.Y, -q.Z, -q.W}
}

func (q Quat) Normalize() Quat {
	l := math.Sqrt(q.Dot(q))
	if l == 0 {
		return QuatIdentity
	}
	inv := 1 / l
	return Quat{q.X * inv, q.Y * inv, q.Z * inv, q.W * inv}
}

// Mul composes rotations, q applied after o
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// Rotate applies the rotation to v
func (q Quat) Rotate(v Vec3F) Vec3F {
	u := Vec3F{q.X, q.Y, q.Z}
	t := V3FScale(V3FCross(u, v), 2)
	return V3FAdd(V3FAdd(v, V3FScale(t, q.W)), V3FCross(u, t))
}

// Lerp is a normalized linear blend along the shortest arc
func (q Quat) Lerp(o Quat, t float64) Quat {
	if q.Dot(o) < 0 {
		o = o.Neg()
	}
	return Quat{
		q.X + (o.X-q.X)*t,
		q.Y + (o.Y-q.Y)*t,
		q.Z + (o.Z-q.Z)*t,
		q.W + (o.W-q.W)*t,
	}.Normalize()
}

// Slerp interpolates along the shortest great arc
// t is not clamped; values outside [0,1] extrapolate the rotation
func (q Quat) Slerp(o Quat, t float64) Quat {
	dot := q.Dot(o)
	if dot < 0 {
		o = o.Neg()
		dot = -dot
	}

	// Nearly parallel: sin(theta) underflows, fall back to nlerp
	if dot > 0.9995 {
		return q.Lerp(o, t)
	}

	theta := math.Acos(dot)
	sinTheta := math.Sin(theta)
	a := math.Sin((1-t)*theta) / sinTheta
	b := math.Sin(t*theta) / sinTheta

	return Quat{
		q.X*a + o.X*b,
		q.Y*a + o.Y*b,
		q.Z*a + o.Z*b,
		q.W*a + o.W*b,
	}
}

// QuatApproxEqual treats q and -q as the same rotation
func QuatApproxEqual(a, b Quat, eps float64) bool {
	return math.Abs(math.Abs(a.Dot(b))-1) <= eps
}
