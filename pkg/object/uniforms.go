package object

import (
	"github.com/taigrr/spiderling/pkg/gfx"
	"github.com/taigrr/spiderling/pkg/material"
	"github.com/taigrr/spiderling/pkg/models"
)

// VertexLayout is the interleaved layout Upload produces.
var VertexLayout = gfx.Layout{
	Stride: models.FloatsPerVertex,
	Attributes: []gfx.Attribute{
		{Location: gfx.AttribPosition, Components: 3, Offset: 0},
		{Location: gfx.AttribNormal, Components: 3, Offset: 3},
		{Location: gfx.AttribUV, Components: 2, Offset: 6},
		{Location: gfx.AttribTangent, Components: 3, Offset: 8},
	},
}

// Uniforms holds resolved uniform locations.
type Uniforms struct {
	ModelMatrix     gfx.Location
	NormalMatrix    gfx.Location
	HasTransparency gfx.Location
	HasMap          [material.NumChannels]gfx.Location

	Ka, Kd, Ks, Ke gfx.Location
	Shininess      gfx.Location
	Transparency   gfx.Location
}

// LookupUniforms resolves every uniform the draw path writes.
func LookupUniforms(b gfx.Backend) Uniforms {
	u := Uniforms{
		ModelMatrix:     b.UniformLocation(gfx.UniformModelMatrix),
		NormalMatrix:    b.UniformLocation(gfx.UniformNormalMatrix),
		HasTransparency: b.UniformLocation(gfx.UniformHasTransparency),
		Ka:              b.UniformLocation(gfx.UniformKa),
		Kd:              b.UniformLocation(gfx.UniformKd),
		Ks:              b.UniformLocation(gfx.UniformKs),
		Ke:              b.UniformLocation(gfx.UniformKe),
		Shininess:       b.UniformLocation(gfx.UniformShininess),
		Transparency:    b.UniformLocation(gfx.UniformTransparency),
	}
	for ch := range material.NumChannels {
		u.HasMap[ch] = b.UniformLocation(gfx.HasMapUniform(ch))
	}
	return u
}
