package math3d

// Ray is a half-line starting at Origin. Direction is not required to be
// unit length; hit distances are expressed in multiples of it.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// NewRay creates a ray.
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// Transform returns the ray with its origin transformed as a point and its
// direction as a vector.
func (r Ray) Transform(m Mat4) Ray {
	return Ray{Origin: m.MulVec3(r.Origin), Direction: m.MulVec3Dir(r.Direction)}
}
