package gfx

import "github.com/taigrr/spiderling/pkg/material"

// Uniform names shared by the draw path and the shaders that consume it.
const (
	UniformModelMatrix     = "vertexModelMatrix"
	UniformNormalMatrix    = "normalModelMatrix"
	UniformHasTransparency = "hasTransparency"
	UniformKa              = "material.ka"
	UniformKd              = "material.kd"
	UniformKs              = "material.ks"
	UniformKe              = "material.ke"
	UniformShininess       = "material.shininess"
	UniformTransparency    = "material.transparency"
)

var hasMapUniforms = [material.NumChannels]string{
	material.Diffuse:  "hasKdMap",
	material.Specular: "hasKsMap",
	material.Emissive: "hasKeMap",
	material.Normal:   "hasNormalMap",
	material.Parallax: "hasParallaxMap",
}

// HasMapUniform returns the name of the flag telling shaders ch is bound.
func HasMapUniform(ch material.Channel) string {
	return hasMapUniforms[ch]
}
