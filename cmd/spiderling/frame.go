package main

import (
	"context"
	"fmt"

	"github.com/taigrr/spiderling/pkg/logging"
	"github.com/taigrr/spiderling/pkg/math3d"
	"github.com/taigrr/spiderling/pkg/object"
	"github.com/taigrr/spiderling/pkg/render"
	"github.com/taigrr/spiderling/pkg/scene"
)

// Mode selects how frames are produced.
type Mode string

const (
	ModeRaster Mode = "raster" // software pipeline, per-vertex lighting
	ModeTrace  Mode = "trace"  // one primary ray per pixel, shaded at the hit
)

// ParseMode validates a --mode value.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeRaster, ModeTrace:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (use raster or trace)", s)
}

// Renderer produces frames of a world into the pipeline's framebuffer.
type Renderer struct {
	world    *World
	pipeline *render.Pipeline
	mode     Mode
	workers  int
	bg       render.Color

	ShowGrid bool
	selected scene.Pick
}

// NewRenderer creates a renderer drawing width x height pixels.
func NewRenderer(w *World, mode Mode, workers, width, height int, bg render.Color, log logging.Logger) *Renderer {
	if height > 0 {
		w.Scene.Camera().SetAspectRatio(float64(width) / float64(height))
	}
	return &Renderer{
		world:    w,
		pipeline: render.NewPipeline(w.Scene.Camera(), width, height, log),
		mode:     mode,
		workers:  workers,
		bg:       bg,
	}
}

// Framebuffer returns the frame being drawn.
func (r *Renderer) Framebuffer() *render.Framebuffer { return r.pipeline.Framebuffer() }

// Resize changes the frame size in pixels.
func (r *Renderer) Resize(width, height int) { r.pipeline.Resize(width, height) }

// Render draws one frame followed by the overlays.
func (r *Renderer) Render(ctx context.Context) error {
	var err error
	switch r.mode {
	case ModeTrace:
		err = r.trace(ctx)
	default:
		err = r.raster()
	}
	if err != nil {
		return err
	}
	r.overlay()
	return nil
}

func (r *Renderer) raster() error {
	sc := r.world.Scene
	r.pipeline.SetLights(sc.Lights(), sc.AmbientLight())
	r.pipeline.BeginFrame(r.bg)
	if err := sc.UploadAll(r.pipeline); err != nil {
		return err
	}
	return sc.DrawAll(r.pipeline)
}

func (r *Renderer) trace(ctx context.Context) error {
	sc := r.world.Scene
	fb := r.pipeline.Framebuffer()
	fb.Clear(r.bg)

	cam := sc.Camera()
	picks, err := sc.CastRays(ctx, cam.PixelRays(fb.Width, fb.Height), r.workers)
	if err != nil {
		return err
	}
	for i, p := range picks {
		if !p.Found() {
			continue
		}
		fb.SetPixel(i%fb.Width, i/fb.Width, render.ColorFromVec3(sc.Shade(p.Hit, cam.Position)))
	}
	return nil
}

func (r *Renderer) overlay() {
	wire := render.NewWireframe(r.world.Scene.Camera(), r.pipeline.Framebuffer())
	if r.ShowGrid {
		wire.DrawGrid(-1, 8, 1, render.ColorGray)
	}
	if !r.selected.Found() {
		return
	}
	if o, ok := r.selected.Object.(*object.Rasterizable); ok {
		lo, hi := o.WorldBounds()
		wire.DrawBox(render.AABB{Min: lo, Max: hi}, render.ColorYellow)
	}
	wire.DrawPoint(r.selected.Hit.Position, 0.2, render.ColorRed)
}

// Pick selects the first object under framebuffer pixel (x, y). It returns
// false and clears the selection when the ray misses.
func (r *Renderer) Pick(x, y float64) (scene.Pick, bool) {
	fb := r.pipeline.Framebuffer()
	ray := r.world.Scene.Camera().Ray(x, y, fb.Width, fb.Height)
	o, hit, ok := r.world.Scene.FirstRayHit(ray)
	if !ok {
		r.selected = scene.Pick{}
		return r.selected, false
	}
	r.selected = scene.Pick{Object: o, Hit: hit}
	return r.selected, true
}

// Selected returns the current pick.
func (r *Renderer) Selected() scene.Pick { return r.selected }

// Snapshot renders one frame with rotation applied and writes it to path as
// PNG.
func (r *Renderer) Snapshot(ctx context.Context, rotation math3d.Mat4, path string) error {
	r.world.Animate(rotation)
	if err := r.Render(ctx); err != nil {
		return fmt.Errorf("render snapshot: %w", err)
	}
	return r.pipeline.Framebuffer().SavePNG(path)
}
