// Package gfx defines the drawing backend that objects upload to and draw
// through. The backend owns GPU-side (or software) resources; objects only
// keep the handles it returns.
package gfx

import (
	"github.com/taigrr/spiderling/pkg/material"
	"github.com/taigrr/spiderling/pkg/math3d"
)

// Handle identifies a vertex array owned by a backend. Zero is no array.
type Handle uint32

// Location is a resolved uniform slot. Writes to NoLocation are ignored.
type Location int

// NoLocation is returned for uniform names the backend does not know.
const NoLocation Location = -1

// Vertex attribute locations understood by every backend.
const (
	AttribPosition = 0
	AttribNormal   = 1
	AttribUV       = 2
	AttribTangent  = 3
)

// Attribute describes one vertex attribute inside an interleaved buffer.
// Offset is measured in floats.
type Attribute struct {
	Location   int
	Components int
	Offset     int
}

// Layout describes an interleaved float buffer. Stride is measured in floats.
type Layout struct {
	Stride     int
	Attributes []Attribute
}

// Backend is the capability objects need to be drawn. Calls must come from a
// single goroutine.
type Backend interface {
	// CreateVertexArray copies data into a new vertex array.
	CreateVertexArray(data []float32, layout Layout) (Handle, error)
	// BindVertexArray makes h current. Zero unbinds.
	BindVertexArray(h Handle)
	// DrawTriangles draws count vertices of the bound array as a triangle
	// list starting at first.
	DrawTriangles(first, count int) error

	UniformLocation(name string) Location
	SetUniformMat4(loc Location, m math3d.Mat4)
	SetUniformVec3(loc Location, v math3d.Vec3)
	SetUniformFloat(loc Location, f float64)
	SetUniformBool(loc Location, b bool)

	// BindTexture binds tex to a texture unit. A nil or invalid texture
	// unbinds the unit.
	BindTexture(unit int, tex material.Texture)
}
