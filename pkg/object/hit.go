package object

import (
	"math"

	"github.com/taigrr/spiderling/pkg/material"
	"github.com/taigrr/spiderling/pkg/math3d"
	"github.com/taigrr/spiderling/pkg/models"
)

// SelfIntersectionBias is the smallest accepted hit distance. Rays spawned
// on a surface would otherwise hit that surface again at t ≈ 0.
const SelfIntersectionBias = 1e-3

// RayHit describes where a ray met a surface. T is measured in multiples of
// the ray direction. Normal is interpolated and not renormalized.
type RayHit struct {
	T        float64
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
	Material material.Material
}

// NoHit returns the empty result: T is +Inf so any real hit is nearer.
func NoHit() RayHit {
	return RayHit{T: math.Inf(1)}
}

// intersectTriangle runs Möller–Trumbore on one triangle. It returns the hit
// distance and the barycentric weights b and c of p1 and p2. Both faces are
// hit; a ray parallel to the plane never is.
func intersectTriangle(ray math3d.Ray, p0, p1, p2 math3d.Vec3) (t, b, c float64, ok bool) {
	e1 := p1.Sub(p0)
	e2 := p2.Sub(p0)
	pvec := ray.Direction.Cross(e2)
	det := e1.Dot(pvec)
	if det == 0 {
		return 0, 0, 0, false
	}
	inv := 1 / det

	tvec := ray.Origin.Sub(p0)
	b = tvec.Dot(pvec) * inv
	if b < 0 || b > 1 {
		return 0, 0, 0, false
	}

	qvec := tvec.Cross(e1)
	c = ray.Direction.Dot(qvec) * inv
	if c < 0 || b+c > 1 {
		return 0, 0, 0, false
	}

	t = e2.Dot(qvec) * inv
	return t, b, c, true
}

// hitTriangle intersects ray with the world-space triangle v0 v1 v2 and,
// when the hit lies past the bias and strictly before best.T, replaces best.
func (r *Renderable) hitTriangle(ray math3d.Ray, v0, v1, v2 models.Vertex, best *RayHit) bool {
	t, b, c, ok := intersectTriangle(ray, v0.Position, v1.Position, v2.Position)
	if !ok || t <= SelfIntersectionBias || best.T <= t {
		return false
	}
	a := 1 - b - c

	uv := math3d.Blend2(v0.UV, v1.UV, v2.UV, a, b, c)
	*best = RayHit{
		T:        t,
		Position: ray.At(t),
		Normal:   math3d.Blend3(v0.Normal, v1.Normal, v2.Normal, a, b, c),
		UV:       uv,
		Material: r.MaterialAt(uv),
	}
	return true
}
