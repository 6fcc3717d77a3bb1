package vmath

// Transform is translation, rotation and scale of an entity
type Transform struct {
	Translation Vec3F
	Rotation    Quat
	Scale       Vec3F
}

// TransformIdentity places an entity at the origin with unit scale
var TransformIdentity = Transform{Rotation: QuatIdentity, Scale: V3FOne}

// TransformFromTranslation is an identity transform moved to p
func TransformFromTranslation(p Vec3F) Transform {
	t := TransformIdentity
	t.Translation = p
	return t
}

// InterpolateTransform blends from toward to: linear for translation and scale, spherical for rotation
func InterpolateTransform(from, to Transform, t float64) Transform {
	return Transform{
		Translation: V3FLerp(from.Translation, to.Translation, t),
		Rotation:    from.Rotation.Slerp(to.Rotation, t),
		Scale:       V3FLerp(from.Scale, to.Scale, t),
	}
}

// TransformPoint maps a local point into the transform's parent space
func (tr Transform) TransformPoint(p Vec3F) Vec3F {
	return V3FAdd(tr.Rotation.Rotate(V3FMul(p, tr.Scale)), tr.Translation)
}

// TransformApproxEqual compares every channel within eps
func TransformApproxEqual(a, b Transform, eps float64) bool {
	return V3FApproxEqual(a.Translation, b.Translation, eps) &&
		V3FApproxEqual(a.Scale, b.Scale, eps) &&
		QuatApproxEqual(a.Rotation, b.Rotation, eps)
}
