// Package scene holds the objects, lights and camera of one rendered scene
// and answers first-hit ray queries against them.
package scene

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/spiderling/pkg/gfx"
	"github.com/taigrr/spiderling/pkg/logging"
	"github.com/taigrr/spiderling/pkg/math3d"
	"github.com/taigrr/spiderling/pkg/object"
	"github.com/taigrr/spiderling/pkg/render"
)

// ErrNilObject is returned when adding a nil object or light.
var ErrNilObject = errors.New("scene: nil object")

// Scene owns its objects and lights. Both are append-only and kept in
// insertion order, which decides ties between equally distant hits.
type Scene struct {
	objects []object.RayIntersectable
	lights  []*render.Light
	camera  render.Camera
	ambient float64
	log     logging.Logger
}

// New creates an empty scene with a default camera.
func New(log logging.Logger) *Scene {
	return &Scene{
		camera: *render.NewCamera(),
		log:    logging.OrNop(log),
	}
}

// AddObject appends o to the scene.
func (s *Scene) AddObject(o object.RayIntersectable) error {
	if o == nil {
		return ErrNilObject
	}
	s.objects = append(s.objects, o)
	s.log.Debugf("added object %d (%T)", len(s.objects)-1, o)
	return nil
}

// AddLight appends l to the scene.
func (s *Scene) AddLight(l *render.Light) error {
	if l == nil {
		return ErrNilObject
	}
	s.lights = append(s.lights, l)
	s.log.Debugf("added light %d at %v", len(s.lights)-1, l.Position)
	return nil
}

// Objects returns the objects in insertion order. The slice is a copy; the
// objects are still owned by the scene.
func (s *Scene) Objects() []object.RayIntersectable {
	return append([]object.RayIntersectable(nil), s.objects...)
}

// Drawables returns the objects that can also be drawn, in insertion order.
func (s *Scene) Drawables() []object.Drawable {
	var out []object.Drawable
	for _, o := range s.objects {
		if d, ok := o.(object.Drawable); ok {
			out = append(out, d)
		}
	}
	return out
}

// Lights returns the lights in insertion order.
func (s *Scene) Lights() []*render.Light {
	return append([]*render.Light(nil), s.lights...)
}

// Camera returns the scene camera for in-place updates.
func (s *Scene) Camera() *render.Camera {
	return &s.camera
}

// SetAmbientLight sets the scene-wide ambient intensity.
func (s *Scene) SetAmbientLight(ambient float64) {
	s.ambient = ambient
}

// AmbientLight returns the scene-wide ambient intensity.
func (s *Scene) AmbientLight() float64 {
	return s.ambient
}

// closer reports whether hit beats best: past the bias and strictly nearer,
// so the earlier object keeps a tie.
func closer(hit, best object.RayHit) bool {
	return hit.T > object.SelfIntersectionBias && hit.T < best.T
}

// FirstRayHit returns the object with the nearest hit along ray, scanning
// objects in insertion order.
func (s *Scene) FirstRayHit(ray math3d.Ray) (object.RayIntersectable, object.RayHit, bool) {
	var hitObj object.RayIntersectable
	best := object.NoHit()
	for _, o := range s.objects {
		hit, ok := o.IntersectRay(ray)
		if ok && closer(hit, best) {
			hitObj, best = o, hit
		}
	}
	return hitObj, best, hitObj != nil
}

type result struct {
	hit object.RayHit
	ok  bool
}

// FirstRayHitParallel is FirstRayHit with one goroutine per object. Results
// are reduced in insertion order, so ties resolve exactly as in FirstRayHit.
func (s *Scene) FirstRayHitParallel(ctx context.Context, ray math3d.Ray) (object.RayIntersectable, object.RayHit, bool, error) {
	results := make([]result, len(s.objects))
	g, ctx := errgroup.WithContext(ctx)
	for i, o := range s.objects {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			hit, ok := o.IntersectRay(ray)
			results[i] = result{hit: hit, ok: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, object.NoHit(), false, err
	}

	var hitObj object.RayIntersectable
	best := object.NoHit()
	for i, r := range results {
		if r.ok && closer(r.hit, best) {
			hitObj, best = s.objects[i], r.hit
		}
	}
	return hitObj, best, hitObj != nil, nil
}

// Pick is the answer to one ray of a batch query.
type Pick struct {
	Object object.RayIntersectable // nil when nothing was hit
	Hit    object.RayHit
}

// Found reports whether the ray hit anything.
func (p Pick) Found() bool { return p.Object != nil }

// CastRays answers FirstRayHit for every ray using at most workers
// goroutines. picks[i] belongs to rays[i].
func (s *Scene) CastRays(ctx context.Context, rays []math3d.Ray, workers int) ([]Pick, error) {
	picks := make([]Pick, len(rays))
	if workers < 1 {
		workers = 1
	}
	const chunk = 64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(rays); start += chunk {
		end := min(start+chunk, len(rays))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				o, hit, _ := s.FirstRayHit(rays[i])
				picks[i] = Pick{Object: o, Hit: hit}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("cast rays: %w", err)
	}
	return picks, nil
}

// Shade lights a hit with the scene's lights and ambient term as seen from
// eye. No shadow rays are cast.
func (s *Scene) Shade(hit object.RayHit, eye math3d.Vec3) math3d.Vec3 {
	terms := render.Illuminate(s.lights, s.ambient, hit.Position, hit.Normal, eye, hit.Material.Shininess)
	return terms.Apply(hit.Material)
}

// UploadAll uploads every drawable that has not been uploaded yet.
func (s *Scene) UploadAll(b gfx.Backend) error {
	for i, d := range s.Drawables() {
		if l, ok := d.(interface{ Loaded() bool }); ok && l.Loaded() {
			continue
		}
		if err := d.Upload(b); err != nil {
			return fmt.Errorf("upload drawable %d: %w", i, err)
		}
	}
	return nil
}

// DrawAll draws every drawable in insertion order and stops at the first
// failure.
func (s *Scene) DrawAll(b gfx.Backend) error {
	for i, d := range s.Drawables() {
		if err := d.Draw(b); err != nil {
			return fmt.Errorf("draw drawable %d: %w", i, err)
		}
	}
	return nil
}
