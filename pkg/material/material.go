// Package material describes surface materials, their optional texture maps
// and how a material is resolved at a point on a surface.
package material

import (
	"github.com/taigrr/spiderling/pkg/math3d"
)

// Material holds the Blinn-Phong coefficients of a surface.
type Material struct {
	Ka           math3d.Vec3 // ambient
	Kd           math3d.Vec3 // diffuse
	Ks           math3d.Vec3 // specular
	Shininess    float64
	Kr           math3d.Vec3 // reflection
	Ke           math3d.Vec3 // emission
	Transparency float64     // 1 is opaque
}

// Default returns an opaque grey material.
func Default() Material {
	return Material{
		Ka:           math3d.V3(0.1, 0.1, 0.1),
		Kd:           math3d.V3(0.8, 0.8, 0.8),
		Ks:           math3d.V3(0.2, 0.2, 0.2),
		Shininess:    16,
		Transparency: 1,
	}
}

// Config describes which texture maps a surface uses and where they come
// from. A channel whose Has flag is false is never loaded or sampled.
type Config struct {
	HasTransparency bool
	HasKdMap        bool
	HasKsMap        bool
	HasKeMap        bool
	HasNormalMap    bool
	HasParallaxMap  bool

	KdMap       string
	KsMap       string
	KeMap       string
	NormalMap   string
	ParallaxMap string

	Default Material
}

// DefaultConfig returns a config with no texture maps and the default
// material.
func DefaultConfig() Config {
	return Config{Default: Default()}
}

// Source returns the texture source and whether the channel is mapped.
func (c Config) Source(ch Channel) (string, bool) {
	switch ch {
	case Diffuse:
		return c.KdMap, c.HasKdMap
	case Specular:
		return c.KsMap, c.HasKsMap
	case Emissive:
		return c.KeMap, c.HasKeMap
	case Normal:
		return c.NormalMap, c.HasNormalMap
	case Parallax:
		return c.ParallaxMap, c.HasParallaxMap
	}
	return "", false
}
