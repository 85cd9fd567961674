package render

import (
	"math"

	"github.com/taigrr/spiderling/pkg/material"
	"github.com/taigrr/spiderling/pkg/math3d"
)

// Light is a point light with separate ambient, diffuse and specular
// intensities.
type Light struct {
	Position math3d.Vec3
	Ambient  math3d.Vec3
	Diffuse  math3d.Vec3
	Specular math3d.Vec3
}

// NewLight creates a white light at pos.
func NewLight(pos math3d.Vec3) *Light {
	return &Light{
		Position: pos,
		Ambient:  math3d.V3(0.05, 0.05, 0.05),
		Diffuse:  math3d.V3(1, 1, 1),
		Specular: math3d.V3(1, 1, 1),
	}
}

// LightTerms is the light arriving at a point before material colors are
// applied. Each term is multiplied by the matching material coefficient.
type LightTerms struct {
	Ambient  math3d.Vec3 // scales ka
	Diffuse  math3d.Vec3 // scales kd
	Specular math3d.Vec3 // scales ks
}

// Illuminate evaluates Blinn-Phong for every light at point p with normal n
// seen from eye. ambient is the scene-wide ambient intensity. No shadowing.
func Illuminate(lights []*Light, ambient float64, p, n, eye math3d.Vec3, shininess float64) LightTerms {
	terms := LightTerms{Ambient: math3d.V3(ambient, ambient, ambient)}
	n = n.Normalize()
	view := eye.Sub(p).Normalize()

	for _, l := range lights {
		terms.Ambient = terms.Ambient.Add(l.Ambient)

		dir := l.Position.Sub(p).Normalize()
		diff := n.Dot(dir)
		if diff <= 0 {
			continue
		}
		terms.Diffuse = terms.Diffuse.Add(l.Diffuse.Scale(diff))

		half := dir.Add(view).Normalize()
		if spec := n.Dot(half); spec > 0 {
			terms.Specular = terms.Specular.Add(l.Specular.Scale(math.Pow(spec, shininess)))
		}
	}
	return terms
}

// Apply combines the light terms with material m into a linear color.
func (t LightTerms) Apply(m material.Material) math3d.Vec3 {
	return m.Ka.Mul(t.Ambient).
		Add(m.Kd.Mul(t.Diffuse)).
		Add(m.Ks.Mul(t.Specular)).
		Add(m.Ke)
}

// lerpTerms blends three light terms with barycentric weights.
func lerpTerms(a, b, c LightTerms, wa, wb, wc float64) LightTerms {
	return LightTerms{
		Ambient:  math3d.Blend3(a.Ambient, b.Ambient, c.Ambient, wa, wb, wc),
		Diffuse:  math3d.Blend3(a.Diffuse, b.Diffuse, c.Diffuse, wa, wb, wc),
		Specular: math3d.Blend3(a.Specular, b.Specular, c.Specular, wa, wb, wc),
	}
}
