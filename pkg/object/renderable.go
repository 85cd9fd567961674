package object

import (
	"fmt"

	"github.com/taigrr/spiderling/pkg/material"
	"github.com/taigrr/spiderling/pkg/math3d"
)

// Renderable is the surface description shared by the raster and ray paths:
// a default material and up to five texture maps.
type Renderable struct {
	config   material.Config
	textures material.Textures
}

// NewRenderable loads every texture cfg maps through loader.
func NewRenderable(cfg material.Config, loader material.TextureLoader) (*Renderable, error) {
	tex, err := material.Bind(cfg, loader)
	if err != nil {
		return nil, fmt.Errorf("bind textures: %w", err)
	}
	return &Renderable{config: cfg, textures: tex}, nil
}

// NewPlainRenderable returns a surface with no texture maps.
func NewPlainRenderable(m material.Material) *Renderable {
	cfg := material.DefaultConfig()
	cfg.Default = m
	return &Renderable{config: cfg, textures: material.EmptyTextures()}
}

// Material returns the default material.
func (r *Renderable) Material() material.Material {
	return r.config.Default
}

// Config returns the configuration the surface was built from.
func (r *Renderable) Config() material.Config {
	return r.config
}

// Texture returns the texture bound to ch, or material.NoTexture.
func (r *Renderable) Texture(ch material.Channel) material.Texture {
	return r.textures[ch]
}

// HasMap reports whether ch has a valid texture bound.
func (r *Renderable) HasMap(ch material.Channel) bool {
	return r.textures.Bound(ch)
}

// MaterialAt resolves the material at texture coordinate uv.
func (r *Renderable) MaterialAt(uv math3d.Vec2) material.Material {
	return r.textures.Resolve(r.config.Default, uv)
}
