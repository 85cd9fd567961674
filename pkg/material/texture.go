package material

import (
	"fmt"

	"github.com/taigrr/spiderling/pkg/math3d"
)

// Channel names one of the texture slots of a surface.
type Channel int

const (
	Diffuse Channel = iota
	Specular
	Emissive
	Normal
	Parallax

	// NumChannels is the number of texture slots.
	NumChannels
)

var channelNames = [NumChannels]string{"kd", "ks", "ke", "normal", "parallax"}

func (c Channel) String() string {
	if c < 0 || c >= NumChannels {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return channelNames[c]
}

// Unit returns the texture unit the channel is bound to when drawing.
func (c Channel) Unit() int {
	return int(c)
}

// Texture is a sampled 2D image. Sample returns linear RGB in 0..1.
type Texture interface {
	IsValid() bool
	Sample(uv math3d.Vec2) math3d.Vec3
}

// TextureLoader turns a source identifier into a texture.
type TextureLoader interface {
	LoadTexture(source string) (Texture, error)
}

type noTexture struct{}

func (noTexture) IsValid() bool                  { return false }
func (noTexture) Sample(math3d.Vec2) math3d.Vec3 { return math3d.Vec3{} }

// NoTexture is the placeholder for an unbound slot.
var NoTexture Texture = noTexture{}

// Textures holds one texture per channel. Unbound slots hold NoTexture.
type Textures [NumChannels]Texture

// EmptyTextures returns a set with every slot unbound.
func EmptyTextures() Textures {
	var t Textures
	for i := range t {
		t[i] = NoTexture
	}
	return t
}

// Bind loads every channel cfg maps through loader. The first failure is
// returned wrapped with the channel name.
func Bind(cfg Config, loader TextureLoader) (Textures, error) {
	t := EmptyTextures()
	for ch := Channel(0); ch < NumChannels; ch++ {
		src, ok := cfg.Source(ch)
		if !ok {
			continue
		}
		if loader == nil {
			return t, fmt.Errorf("%s map %q: no texture loader", ch, src)
		}
		tex, err := loader.LoadTexture(src)
		if err != nil {
			return t, fmt.Errorf("%s map %q: %w", ch, src, err)
		}
		if tex == nil {
			tex = NoTexture
		}
		t[ch] = tex
	}
	return t, nil
}

// Bound reports whether the channel holds a valid texture.
func (t *Textures) Bound(ch Channel) bool {
	tex := t[ch]
	return tex != nil && tex.IsValid()
}

// Resolve returns def with kd, ks and ke replaced by the bound diffuse,
// specular and emissive samples at uv.
func (t *Textures) Resolve(def Material, uv math3d.Vec2) Material {
	m := def
	if t.Bound(Diffuse) {
		m.Kd = t[Diffuse].Sample(uv)
	}
	if t.Bound(Specular) {
		m.Ks = t[Specular].Sample(uv)
	}
	if t.Bound(Emissive) {
		m.Ke = t[Emissive].Sample(uv)
	}
	return m
}
