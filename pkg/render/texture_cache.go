package render

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/taigrr/spiderling/pkg/logging"
	"github.com/taigrr/spiderling/pkg/material"
)

// TextureCache loads each texture source once. Relative sources resolve
// against Dir. It satisfies material.TextureLoader.
type TextureCache struct {
	Dir    string
	Filter FilterMode

	mu       sync.Mutex
	textures map[string]*Texture
	log      logging.Logger
}

var _ material.TextureLoader = (*TextureCache)(nil)

// NewTextureCache creates a cache resolving relative paths against dir.
func NewTextureCache(dir string, log logging.Logger) *TextureCache {
	return &TextureCache{
		Dir:      dir,
		Filter:   FilterBilinear,
		textures: make(map[string]*Texture),
		log:      logging.OrNop(log),
	}
}

// Register makes tex available under name, replacing any earlier entry.
// Embedded model images are registered this way.
func (c *TextureCache) Register(name string, tex *Texture) {
	c.mu.Lock()
	c.textures[name] = tex
	c.mu.Unlock()
}

// LoadTexture returns the texture for source, decoding it on first use.
func (c *TextureCache) LoadTexture(source string) (material.Texture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tex, ok := c.textures[source]; ok {
		return tex, nil
	}

	path := source
	if !filepath.IsAbs(path) && c.Dir != "" {
		path = filepath.Join(c.Dir, path)
	}
	tex, err := LoadTexture(path)
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", source, err)
	}
	tex.Filter = c.Filter
	c.textures[source] = tex
	c.log.Debugf("loaded texture %s (%dx%d)", path, tex.Width, tex.Height)
	return tex, nil
}

// Len returns the number of cached textures.
func (c *TextureCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.textures)
}
