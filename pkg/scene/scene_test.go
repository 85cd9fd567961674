package scene

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/spiderling/pkg/material"
	"github.com/taigrr/spiderling/pkg/math3d"
	"github.com/taigrr/spiderling/pkg/models"
	"github.com/taigrr/spiderling/pkg/object"
	"github.com/taigrr/spiderling/pkg/render"
)

// fixedHit reports the same hit for every ray.
type fixedHit struct {
	t  float64
	ok bool
}

func (f *fixedHit) IntersectRay(math3d.Ray) (object.RayHit, bool) {
	if !f.ok {
		return object.NoHit(), false
	}
	return object.RayHit{T: f.t}, true
}

func plane(t *testing.T, z float64, kd math3d.Vec3) *object.Rasterizable {
	t.Helper()
	n := math3d.V3(0, 0, 1)
	mesh, err := models.NewMesh("plane", []models.Vertex{
		{Position: math3d.V3(-1, -1, z), Normal: n},
		{Position: math3d.V3(1, -1, z), Normal: n},
		{Position: math3d.V3(0, 1, z), Normal: n},
	})
	require.NoError(t, err)
	m := material.Default()
	m.Kd = kd
	o, err := object.New(mesh, object.NewPlainRenderable(m), math3d.Identity())
	require.NoError(t, err)
	return o
}

func down() math3d.Ray {
	return math3d.NewRay(math3d.V3(0, 0, 5), math3d.V3(0, 0, -1))
}

func TestFirstRayHitEmptyScene(t *testing.T) {
	s := New(nil)
	o, hit, ok := s.FirstRayHit(down())
	assert.False(t, ok)
	assert.Nil(t, o)
	assert.True(t, math.IsInf(hit.T, 1))
}

func TestFirstRayHitNearest(t *testing.T) {
	s := New(nil)
	far := &fixedHit{t: 7, ok: true}
	near := &fixedHit{t: 3, ok: true}
	miss := &fixedHit{}
	require.NoError(t, s.AddObject(far))
	require.NoError(t, s.AddObject(miss))
	require.NoError(t, s.AddObject(near))

	o, hit, ok := s.FirstRayHit(down())
	require.True(t, ok)
	assert.Same(t, near, o)
	assert.Equal(t, 3.0, hit.T)
}

func TestFirstRayHitTieKeepsFirstInserted(t *testing.T) {
	s := New(nil)
	a := plane(t, 0, math3d.V3(1, 0, 0))
	b := plane(t, 0, math3d.V3(0, 1, 0))
	require.NoError(t, s.AddObject(a))
	require.NoError(t, s.AddObject(b))

	o, hit, ok := s.FirstRayHit(down())
	require.True(t, ok)
	assert.Same(t, a, o)
	assert.Equal(t, math3d.V3(1, 0, 0), hit.Material.Kd)
}

func TestFirstRayHitIgnoresHitsWithinBias(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.AddObject(&fixedHit{t: object.SelfIntersectionBias, ok: true}))
	require.NoError(t, s.AddObject(&fixedHit{t: math.Inf(1), ok: true}))

	_, _, ok := s.FirstRayHit(down())
	assert.False(t, ok)
}

func TestFirstRayHitParallelMatchesSerial(t *testing.T) {
	s := New(nil)
	for _, tt := range []float64{9, 4, 4, 6, 4} {
		require.NoError(t, s.AddObject(&fixedHit{t: tt, ok: true}))
	}

	wantObj, wantHit, wantOK := s.FirstRayHit(down())
	gotObj, gotHit, gotOK, err := s.FirstRayHitParallel(context.Background(), down())
	require.NoError(t, err)
	assert.Equal(t, wantOK, gotOK)
	assert.Same(t, wantObj, gotObj)
	assert.Same(t, s.Objects()[1], gotObj)
	assert.Equal(t, wantHit, gotHit)
}

func TestFirstRayHitParallelCancelled(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.AddObject(&fixedHit{t: 1, ok: true}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, ok, err := s.FirstRayHitParallel(ctx, down())
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
}

func TestCastRays(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.AddObject(plane(t, 0, math3d.V3(1, 1, 1))))

	rays := make([]math3d.Ray, 200)
	for i := range rays {
		x := -2 + 4*float64(i)/float64(len(rays))
		rays[i] = math3d.NewRay(math3d.V3(x, 0, 5), math3d.V3(0, 0, -1))
	}

	picks, err := s.CastRays(context.Background(), rays, 4)
	require.NoError(t, err)
	require.Len(t, picks, len(rays))
	for i, p := range picks {
		_, hit, ok := s.FirstRayHit(rays[i])
		assert.Equal(t, ok, p.Found(), "ray %d", i)
		assert.Equal(t, hit, p.Hit, "ray %d", i)
	}
}

func TestAddNil(t *testing.T) {
	s := New(nil)
	assert.ErrorIs(t, s.AddObject(nil), ErrNilObject)
	assert.ErrorIs(t, s.AddLight(nil), ErrNilObject)
	assert.Empty(t, s.Objects())
}

func TestLightsInInsertionOrder(t *testing.T) {
	s := New(nil)
	l1 := render.NewLight(math3d.V3(1, 0, 0))
	l2 := render.NewLight(math3d.V3(2, 0, 0))
	require.NoError(t, s.AddLight(l1))
	require.NoError(t, s.AddLight(l2))
	require.NoError(t, s.AddLight(l1))

	lights := s.Lights()
	require.Len(t, lights, 3)
	assert.Same(t, l1, lights[0])
	assert.Same(t, l2, lights[1])
	assert.Same(t, l1, lights[2])

	lights[0] = nil
	assert.Same(t, l1, s.Lights()[0], "returned slice must not alias the scene")
}

func TestAmbientAndCamera(t *testing.T) {
	s := New(nil)
	assert.Equal(t, 0.0, s.AmbientLight())
	s.SetAmbientLight(0.25)
	assert.Equal(t, 0.25, s.AmbientLight())

	s.Camera().SetPosition(math3d.V3(1, 2, 3))
	assert.Equal(t, math3d.V3(1, 2, 3), s.Camera().Position)
}

func TestShade(t *testing.T) {
	s := New(nil)
	s.SetAmbientLight(0.5)
	hit := object.RayHit{
		Position: math3d.Zero3(),
		Normal:   math3d.V3(0, 0, 1),
		Material: material.Material{Ka: math3d.V3(1, 0, 0), Kd: math3d.V3(0, 1, 0), Ke: math3d.V3(0, 0, 0.25)},
	}

	// Ambient only.
	assert.Equal(t, math3d.V3(0.5, 0, 0.25), s.Shade(hit, math3d.V3(0, 0, 5)))

	// A light straight above adds full diffuse.
	require.NoError(t, s.AddLight(&render.Light{Position: math3d.V3(0, 0, 3), Diffuse: math3d.V3(1, 1, 1)}))
	got := s.Shade(hit, math3d.V3(0, 0, 5))
	assert.True(t, got.ApproxEqual(math3d.V3(0.5, 1, 0.25), 1e-12), "got %v", got)
}

func TestDrawables(t *testing.T) {
	s := New(nil)
	p := plane(t, 0, math3d.V3(1, 1, 1))
	require.NoError(t, s.AddObject(&fixedHit{}))
	require.NoError(t, s.AddObject(p))

	d := s.Drawables()
	require.Len(t, d, 1)
	assert.Same(t, p, d[0])
}
