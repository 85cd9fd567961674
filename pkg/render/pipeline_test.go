package render

import (
	"errors"
	"testing"

	"github.com/taigrr/spiderling/pkg/gfx"
	"github.com/taigrr/spiderling/pkg/material"
	"github.com/taigrr/spiderling/pkg/math3d"
	"github.com/taigrr/spiderling/pkg/models"
	"github.com/taigrr/spiderling/pkg/object"
)

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	cam := NewCamera()
	cam.SetPosition(math3d.V3(0, 0, 10))
	cam.LookAt(math3d.Zero3())
	cam.SetAspectRatio(1)
	p := NewPipeline(cam, 64, 64, nil)
	p.BeginFrame(ColorBlack)
	return p
}

func bigTriangle(t *testing.T) *models.Mesh {
	t.Helper()
	n := math3d.V3(0, 0, 1)
	mesh, err := models.NewMesh("big", []models.Vertex{
		{Position: math3d.V3(-5, -5, 0), Normal: n, UV: math3d.V2(0, 0)},
		{Position: math3d.V3(5, -5, 0), Normal: n, UV: math3d.V2(1, 0)},
		{Position: math3d.V3(0, 5, 0), Normal: n, UV: math3d.V2(0.5, 1)},
	})
	if err != nil {
		t.Fatal(err)
	}
	return mesh
}

func drawObject(t *testing.T, p *Pipeline, surface *object.Renderable, model math3d.Mat4) {
	t.Helper()
	o, err := object.New(bigTriangle(t), surface, model)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.Upload(p); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := o.Draw(p); err != nil {
		t.Fatalf("Draw: %v", err)
	}
}

func emissive(c math3d.Vec3) material.Material {
	return material.Material{Ke: c, Transparency: 1}
}

func TestPipelineDrawsEmissiveObject(t *testing.T) {
	p := testPipeline(t)
	drawObject(t, p, object.NewPlainRenderable(emissive(math3d.V3(0, 1, 0))), math3d.Identity())

	if got := p.Framebuffer().GetPixel(32, 32); got != RGB(0, 255, 0) {
		t.Errorf("center pixel = %v, want green", got)
	}
}

func TestPipelineSamplesDiffuseMap(t *testing.T) {
	blue := NewTexture(1, 1)
	blue.SetPixel(0, 0, RGB(0, 0, 255))
	cache := NewTextureCache("", nil)
	cache.Register("blue", blue)

	cfg := material.DefaultConfig()
	cfg.Default = material.Material{Kd: math3d.V3(1, 0, 0), Transparency: 1}
	cfg.HasKdMap, cfg.KdMap = true, "blue"
	surface, err := object.NewRenderable(cfg, cache)
	if err != nil {
		t.Fatal(err)
	}

	p := testPipeline(t)
	p.SetLights([]*Light{{Position: math3d.V3(0, 0, 10), Diffuse: math3d.V3(1, 1, 1)}}, 0)
	drawObject(t, p, surface, math3d.Identity())

	got := p.Framebuffer().GetPixel(32, 32)
	if got.R != 0 || got.B == 0 {
		t.Errorf("center pixel = %v, want blue from the kd map", got)
	}
}

func TestPipelineCullsOffscreenObject(t *testing.T) {
	p := testPipeline(t)
	drawObject(t, p, object.NewPlainRenderable(emissive(math3d.V3(1, 1, 1))), math3d.Translate(math3d.V3(0, 0, 50)))

	stats := p.Rasterizer().CullingStats
	if stats.MeshesCulled != 1 {
		t.Errorf("MeshesCulled = %d, want 1", stats.MeshesCulled)
	}
	if n := litPixels(p.Framebuffer()); n != 0 {
		t.Errorf("culled object drew %d pixels", n)
	}
}

func TestPipelineTransparency(t *testing.T) {
	cfg := material.DefaultConfig()
	cfg.Default = material.Material{Ke: math3d.V3(1, 1, 1), Transparency: 0.5}
	cfg.HasTransparency = true
	surface, err := object.NewRenderable(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	p := testPipeline(t)
	drawObject(t, p, surface, math3d.Identity())

	got := p.Framebuffer().GetPixel(32, 32)
	if got.R < 126 || got.R > 129 {
		t.Errorf("center pixel = %v, want half grey", got)
	}
}

func TestPipelineMisuse(t *testing.T) {
	p := testPipeline(t)

	if err := p.DrawTriangles(0, 3); !errors.Is(err, ErrNoVertexArray) {
		t.Errorf("draw with nothing bound = %v, want ErrNoVertexArray", err)
	}

	h, err := p.CreateVertexArray(bigTriangle(t).Interleave(), object.VertexLayout)
	if err != nil {
		t.Fatal(err)
	}
	p.BindVertexArray(h)

	for _, tc := range []struct{ first, count int }{{0, 6}, {-1, 3}, {0, 2}, {3, 3}} {
		if err := p.DrawTriangles(tc.first, tc.count); !errors.Is(err, ErrDrawRange) {
			t.Errorf("DrawTriangles(%d, %d) = %v, want ErrDrawRange", tc.first, tc.count, err)
		}
	}
	if err := p.DrawTriangles(0, 3); err != nil {
		t.Errorf("DrawTriangles(0, 3) = %v", err)
	}

	p.BindVertexArray(0)
	if err := p.DrawTriangles(0, 3); !errors.Is(err, ErrNoVertexArray) {
		t.Errorf("draw after unbind = %v, want ErrNoVertexArray", err)
	}
}

func TestPipelineRejectsBadLayout(t *testing.T) {
	p := testPipeline(t)

	_, err := p.CreateVertexArray(make([]float32, 10), gfx.Layout{Stride: 3})
	if !errors.Is(err, ErrBadLayout) {
		t.Errorf("partial vertex: err = %v, want ErrBadLayout", err)
	}

	_, err = p.CreateVertexArray(make([]float32, 6), gfx.Layout{
		Stride:     3,
		Attributes: []gfx.Attribute{{Location: gfx.AttribUV, Components: 2}},
	})
	if !errors.Is(err, ErrBadLayout) {
		t.Errorf("no position: err = %v, want ErrBadLayout", err)
	}
}

func TestPipelineUnknownUniform(t *testing.T) {
	p := testPipeline(t)

	loc := p.UniformLocation("lights[0].pos")
	if loc != gfx.NoLocation {
		t.Errorf("unknown uniform location = %d, want NoLocation", loc)
	}
	p.SetUniformVec3(loc, math3d.V3(1, 2, 3)) // must not panic

	kd := p.UniformLocation(gfx.UniformKd)
	p.SetUniformVec3(kd, math3d.V3(0.1, 0.2, 0.3))
	if got := p.boundMaterial().Kd; got != math3d.V3(0.1, 0.2, 0.3) {
		t.Errorf("kd = %v after SetUniformVec3", got)
	}
}

func TestPipelineResize(t *testing.T) {
	p := testPipeline(t)
	p.Resize(80, 40)

	if fb := p.Framebuffer(); fb.Width != 80 || fb.Height != 40 {
		t.Errorf("framebuffer = %dx%d, want 80x40", fb.Width, fb.Height)
	}
	if p.camera.AspectRatio != 2 {
		t.Errorf("aspect = %v, want 2", p.camera.AspectRatio)
	}
}
