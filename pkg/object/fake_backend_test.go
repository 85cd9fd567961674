package object

import (
	"errors"
	"fmt"

	"github.com/taigrr/spiderling/pkg/gfx"
	"github.com/taigrr/spiderling/pkg/material"
	"github.com/taigrr/spiderling/pkg/math3d"
)

// recordingBackend is a gfx.Backend that remembers every call.
type recordingBackend struct {
	calls     []string
	locations map[string]gfx.Location
	mats      map[gfx.Location]math3d.Mat4
	vec3s     map[gfx.Location]math3d.Vec3
	floats    map[gfx.Location]float64
	bools     map[gfx.Location]bool
	units     map[int]material.Texture
	arrays    [][]float32
	bound     gfx.Handle
	drawn     gfx.Handle
	failNew   bool
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{
		locations: make(map[string]gfx.Location),
		mats:      make(map[gfx.Location]math3d.Mat4),
		vec3s:     make(map[gfx.Location]math3d.Vec3),
		floats:    make(map[gfx.Location]float64),
		bools:     make(map[gfx.Location]bool),
		units:     make(map[int]material.Texture),
	}
}

func (r *recordingBackend) CreateVertexArray(data []float32, layout gfx.Layout) (gfx.Handle, error) {
	r.calls = append(r.calls, "CreateVertexArray")
	if r.failNew {
		return 0, errors.New("out of memory")
	}
	r.arrays = append(r.arrays, data)
	return gfx.Handle(len(r.arrays)), nil
}

func (r *recordingBackend) BindVertexArray(h gfx.Handle) {
	r.calls = append(r.calls, fmt.Sprintf("BindVertexArray(%d)", h))
	r.bound = h
}

func (r *recordingBackend) DrawTriangles(first, count int) error {
	r.calls = append(r.calls, fmt.Sprintf("DrawTriangles(%d,%d)", first, count))
	r.drawn = r.bound
	return nil
}

func (r *recordingBackend) UniformLocation(name string) gfx.Location {
	loc, ok := r.locations[name]
	if !ok {
		loc = gfx.Location(len(r.locations))
		r.locations[name] = loc
	}
	return loc
}

func (r *recordingBackend) SetUniformMat4(loc gfx.Location, m math3d.Mat4) { r.mats[loc] = m }
func (r *recordingBackend) SetUniformVec3(loc gfx.Location, v math3d.Vec3) { r.vec3s[loc] = v }
func (r *recordingBackend) SetUniformFloat(loc gfx.Location, f float64)    { r.floats[loc] = f }
func (r *recordingBackend) SetUniformBool(loc gfx.Location, b bool)        { r.bools[loc] = b }

func (r *recordingBackend) BindTexture(unit int, tex material.Texture) {
	r.calls = append(r.calls, fmt.Sprintf("BindTexture(%d)", unit))
	r.units[unit] = tex
}

var _ gfx.Backend = (*recordingBackend)(nil)
