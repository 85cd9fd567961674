package render

import (
	"errors"
	"fmt"

	"github.com/taigrr/spiderling/pkg/gfx"
	"github.com/taigrr/spiderling/pkg/logging"
	"github.com/taigrr/spiderling/pkg/material"
	"github.com/taigrr/spiderling/pkg/math3d"
)

var (
	ErrNoVertexArray = errors.New("render: no vertex array bound")
	ErrDrawRange     = errors.New("render: draw range outside vertex array")
	ErrBadLayout     = errors.New("render: vertex layout does not match data")
)

// uniformNames are the uniforms the pipeline reads. Any other name resolves
// to gfx.NoLocation.
var uniformNames = []string{
	gfx.UniformModelMatrix,
	gfx.UniformNormalMatrix,
	gfx.UniformHasTransparency,
	gfx.UniformKa,
	gfx.UniformKd,
	gfx.UniformKs,
	gfx.UniformKe,
	gfx.UniformShininess,
	gfx.UniformTransparency,
	gfx.HasMapUniform(material.Diffuse),
	gfx.HasMapUniform(material.Specular),
	gfx.HasMapUniform(material.Emissive),
	gfx.HasMapUniform(material.Normal),
	gfx.HasMapUniform(material.Parallax),
}

type vertexArray struct {
	data   []float32
	stride int
	count  int
	pos    int // float offsets; -1 when absent
	normal int
	uv     int
	bounds AABB
}

func (a *vertexArray) vec3(i, off int) math3d.Vec3 {
	if off < 0 {
		return math3d.Vec3{}
	}
	d := a.data[i*a.stride+off:]
	return math3d.V3(float64(d[0]), float64(d[1]), float64(d[2]))
}

func (a *vertexArray) vec2(i, off int) math3d.Vec2 {
	if off < 0 {
		return math3d.Vec2{}
	}
	d := a.data[i*a.stride+off:]
	return math3d.V2(float64(d[0]), float64(d[1]))
}

// Pipeline is a software gfx.Backend. Vertices are lit per vertex with
// Blinn-Phong and rasterized into a Framebuffer; the diffuse, specular and
// emissive maps are sampled per fragment.
type Pipeline struct {
	raster *Rasterizer
	fb     *Framebuffer
	camera *Camera
	log    logging.Logger

	arrays map[gfx.Handle]*vertexArray
	next   gfx.Handle
	bound  gfx.Handle

	locations map[string]gfx.Location
	values    []any
	units     [material.NumChannels]material.Texture

	lights  []*Light
	ambient float64
}

var _ gfx.Backend = (*Pipeline)(nil)

// NewPipeline creates a pipeline drawing into a width x height framebuffer
// as seen by camera.
func NewPipeline(camera *Camera, width, height int, log logging.Logger) *Pipeline {
	fb := NewFramebuffer(width, height)
	p := &Pipeline{
		raster:    NewRasterizer(camera, fb),
		fb:        fb,
		camera:    camera,
		log:       logging.OrNop(log),
		arrays:    make(map[gfx.Handle]*vertexArray),
		locations: make(map[string]gfx.Location, len(uniformNames)),
		values:    make([]any, len(uniformNames)),
	}
	for i, name := range uniformNames {
		p.locations[name] = gfx.Location(i)
	}
	return p
}

// Framebuffer returns the current render target.
func (p *Pipeline) Framebuffer() *Framebuffer { return p.fb }

// Rasterizer returns the rasterizer, for culling statistics and options.
func (p *Pipeline) Rasterizer() *Rasterizer { return p.raster }

// Resize replaces the framebuffer and updates the camera aspect ratio.
func (p *Pipeline) Resize(width, height int) {
	if width == p.fb.Width && height == p.fb.Height {
		return
	}
	p.fb = NewFramebuffer(width, height)
	p.raster.SetFramebuffer(p.fb)
	if height > 0 {
		p.camera.SetAspectRatio(float64(width) / float64(height))
	}
	p.raster.InvalidateFrustum()
}

// SetLights sets the lights and ambient intensity used by later draws.
func (p *Pipeline) SetLights(lights []*Light, ambient float64) {
	p.lights = lights
	p.ambient = ambient
}

// BeginFrame clears color and depth and refreshes the culling frustum.
func (p *Pipeline) BeginFrame(background Color) {
	p.fb.Clear(background)
	p.raster.ClearDepth()
	p.raster.InvalidateFrustum()
	p.raster.ResetCullingStats()
}

// CreateVertexArray copies data into a new vertex array. The layout must
// provide a position attribute with at least three components.
func (p *Pipeline) CreateVertexArray(data []float32, layout gfx.Layout) (gfx.Handle, error) {
	if layout.Stride <= 0 || len(data)%layout.Stride != 0 {
		return 0, fmt.Errorf("%w: %d floats, stride %d", ErrBadLayout, len(data), layout.Stride)
	}
	arr := &vertexArray{
		data:   append([]float32(nil), data...),
		stride: layout.Stride,
		count:  len(data) / layout.Stride,
		pos:    -1,
		normal: -1,
		uv:     -1,
	}
	for _, attr := range layout.Attributes {
		if attr.Offset < 0 || attr.Offset+attr.Components > layout.Stride {
			return 0, fmt.Errorf("%w: attribute %d overruns stride", ErrBadLayout, attr.Location)
		}
		switch {
		case attr.Location == gfx.AttribPosition && attr.Components >= 3:
			arr.pos = attr.Offset
		case attr.Location == gfx.AttribNormal && attr.Components >= 3:
			arr.normal = attr.Offset
		case attr.Location == gfx.AttribUV && attr.Components >= 2:
			arr.uv = attr.Offset
		}
	}
	if arr.pos < 0 {
		return 0, fmt.Errorf("%w: no position attribute", ErrBadLayout)
	}
	for i := range arr.count {
		v := arr.vec3(i, arr.pos)
		if i == 0 {
			arr.bounds = AABB{Min: v, Max: v}
			continue
		}
		arr.bounds.Min = arr.bounds.Min.Min(v)
		arr.bounds.Max = arr.bounds.Max.Max(v)
	}

	p.next++
	p.arrays[p.next] = arr
	return p.next, nil
}

// BindVertexArray makes h the array DrawTriangles reads.
func (p *Pipeline) BindVertexArray(h gfx.Handle) {
	p.bound = h
}

// UniformLocation resolves a uniform name.
func (p *Pipeline) UniformLocation(name string) gfx.Location {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	return gfx.NoLocation
}

func (p *Pipeline) set(loc gfx.Location, v any) {
	if loc < 0 || int(loc) >= len(p.values) {
		return
	}
	p.values[loc] = v
}

func (p *Pipeline) SetUniformMat4(loc gfx.Location, m math3d.Mat4) { p.set(loc, m) }
func (p *Pipeline) SetUniformVec3(loc gfx.Location, v math3d.Vec3) { p.set(loc, v) }
func (p *Pipeline) SetUniformFloat(loc gfx.Location, f float64)    { p.set(loc, f) }
func (p *Pipeline) SetUniformBool(loc gfx.Location, b bool)        { p.set(loc, b) }

// BindTexture binds tex to unit. Units outside the material channels are
// ignored.
func (p *Pipeline) BindTexture(unit int, tex material.Texture) {
	if unit < 0 || unit >= len(p.units) {
		return
	}
	p.units[unit] = tex
}

func uniform[T any](p *Pipeline, name string, def T) T {
	if v, ok := p.values[p.locations[name]].(T); ok {
		return v
	}
	return def
}

// boundMaterial rebuilds the default material from the uniform table.
func (p *Pipeline) boundMaterial() material.Material {
	def := material.Default()
	return material.Material{
		Ka:           uniform(p, gfx.UniformKa, def.Ka),
		Kd:           uniform(p, gfx.UniformKd, def.Kd),
		Ks:           uniform(p, gfx.UniformKs, def.Ks),
		Ke:           uniform(p, gfx.UniformKe, def.Ke),
		Shininess:    uniform(p, gfx.UniformShininess, def.Shininess),
		Transparency: uniform(p, gfx.UniformTransparency, def.Transparency),
	}
}

// textures returns the bound units whose hasXMap flag is set.
func (p *Pipeline) textures() material.Textures {
	tex := material.EmptyTextures()
	for ch := range material.NumChannels {
		t := p.units[ch.Unit()]
		if t != nil && t.IsValid() && uniform(p, gfx.HasMapUniform(ch), false) {
			tex[ch] = t
		}
	}
	return tex
}

// DrawTriangles draws count vertices of the bound array starting at first.
func (p *Pipeline) DrawTriangles(first, count int) error {
	arr, ok := p.arrays[p.bound]
	if p.bound == 0 || !ok {
		return ErrNoVertexArray
	}
	if first < 0 || count < 0 || count%3 != 0 || first+count > arr.count {
		return fmt.Errorf("%w: [%d, %d) of %d vertices", ErrDrawRange, first, first+count, arr.count)
	}
	if count == 0 {
		return nil
	}

	model := uniform(p, gfx.UniformModelMatrix, math3d.Identity())
	normal := uniform(p, gfx.UniformNormalMatrix, model.NormalMatrix())
	if p.raster.Cull(arr.bounds, model) {
		p.log.Debugf("culled vertex array %d", p.bound)
		return nil
	}

	mat := p.boundMaterial()
	tex := p.textures()
	alpha := 1.0
	if uniform(p, gfx.UniformHasTransparency, false) {
		alpha = mat.Transparency
	}
	frag := func(uv math3d.Vec2, light LightTerms) math3d.Vec3 {
		return light.Apply(tex.Resolve(mat, uv))
	}

	eye := p.camera.Position
	for i := first; i < first+count; i += 3 {
		var tri Triangle
		for k := range 3 {
			pos := model.MulVec3(arr.vec3(i+k, arr.pos))
			n := normal.MulVec3Dir(arr.vec3(i+k, arr.normal)).Normalize()
			tri.V[k] = Vertex{
				Position: pos,
				UV:       arr.vec2(i+k, arr.uv),
				Light:    Illuminate(p.lights, p.ambient, pos, n, eye, mat.Shininess),
			}
		}
		p.raster.DrawTriangleBlended(tri, frag, alpha)
	}
	return nil
}
