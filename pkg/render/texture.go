package render

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"os"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/taigrr/spiderling/pkg/material"
	"github.com/taigrr/spiderling/pkg/math3d"
)

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // Tile the texture
	WrapClamp                  // Clamp to edge
)

// FilterMode determines how texture sampling is performed.
type FilterMode int

const (
	FilterNearest  FilterMode = iota // Nearest-neighbor (pixelated)
	FilterBilinear                   // Bilinear interpolation (smooth)
)

// Texture is a material map. Texels are stored as RGB in 0..1, top row
// first, and sampled with V pointing up.
type Texture struct {
	Width  int
	Height int
	Texels []math3d.Vec3
	WrapU  WrapMode
	WrapV  WrapMode
	Filter FilterMode
}

var _ material.Texture = (*Texture)(nil)

// NewTexture creates a black texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Texels: make([]math3d.Vec3, width*height),
	}
}

// LoadTexture decodes an image file (PNG, JPEG, BMP, TIFF or WebP).
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return TextureFromImage(img), nil
}

// TextureFromImage converts an image. Alpha is dropped; transparency is a
// material property.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	tex := NewTexture(bounds.Dx(), bounds.Dy())

	const max16 = 0xffff
	for y := range tex.Height {
		for x := range tex.Width {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			tex.Texels[y*tex.Width+x] = math3d.V3(float64(r)/max16, float64(g)/max16, float64(b)/max16)
		}
	}
	return tex
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)
	a, b := ColorToVec3(c1), ColorToVec3(c2)
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				tex.Texels[y*width+x] = a
			} else {
				tex.Texels[y*width+x] = b
			}
		}
	}
	return tex
}

// IsValid reports whether the texture has texels to sample.
func (t *Texture) IsValid() bool {
	return t != nil && t.Width > 0 && t.Height > 0 && len(t.Texels) == t.Width*t.Height
}

// SetPixel sets texel (x, y) from a color. Out of range writes are ignored.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Texels[y*t.Width+x] = ColorToVec3(c)
}

// Texel returns texel (x, y) with x and y already wrapped.
func (t *Texture) Texel(x, y int) math3d.Vec3 {
	return t.Texels[y*t.Width+x]
}

// Sample returns the filtered texel at uv.
func (t *Texture) Sample(uv math3d.Vec2) math3d.Vec3 {
	fx := uv.X * float64(t.Width)
	fy := (1 - uv.Y) * float64(t.Height)

	if t.Filter != FilterBilinear {
		return t.Texel(wrap(int(math.Floor(fx)), t.Width, t.WrapU), wrap(int(math.Floor(fy)), t.Height, t.WrapV))
	}

	// Texel centers sit at half-integer positions.
	fx -= 0.5
	fy -= 0.5
	x0, y0 := math.Floor(fx), math.Floor(fy)
	tx, ty := fx-x0, fy-y0

	xa := wrap(int(x0), t.Width, t.WrapU)
	xb := wrap(int(x0)+1, t.Width, t.WrapU)
	ya := wrap(int(y0), t.Height, t.WrapV)
	yb := wrap(int(y0)+1, t.Height, t.WrapV)

	top := lerp3(t.Texel(xa, ya), t.Texel(xb, ya), tx)
	bot := lerp3(t.Texel(xa, yb), t.Texel(xb, yb), tx)
	return lerp3(top, bot, ty)
}

// wrap maps texel index i into [0, size).
func wrap(i, size int, mode WrapMode) int {
	if mode == WrapClamp {
		return max(0, min(i, size-1))
	}
	i %= size
	if i < 0 {
		i += size
	}
	return i
}

func lerp3(a, b math3d.Vec3, t float64) math3d.Vec3 {
	return a.Add(b.Sub(a).Scale(t))
}
