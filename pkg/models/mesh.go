// Package models provides mesh storage and loading for spiderling.
package models

import (
	"errors"
	"fmt"

	"github.com/taigrr/spiderling/pkg/math3d"
)

// ErrNotTriangleList is returned when a vertex sequence cannot be split into
// whole triangles.
var ErrNotTriangleList = errors.New("vertex count is not a multiple of 3")

// FloatsPerVertex is the number of float32 values one interleaved vertex
// occupies: position(3), normal(3), uv(2), tangent(3).
const FloatsPerVertex = 3 + 3 + 2 + 3

// Vertex holds all vertex attributes.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
	Tangent  math3d.Vec3
}

// Mesh is a flat triangle list: vertices 3i, 3i+1 and 3i+2 form triangle i.
// A mesh is read-only once built and may be shared by any number of objects.
type Mesh struct {
	Name     string
	Vertices []Vertex

	// Bounding box (calculated on construction)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// NewMesh creates a mesh from a flat triangle list.
func NewMesh(name string, vertices []Vertex) (*Mesh, error) {
	if len(vertices)%3 != 0 {
		return nil, fmt.Errorf("mesh %q has %d vertices: %w", name, len(vertices), ErrNotTriangleList)
	}
	m := &Mesh{
		Name:     name,
		Vertices: vertices,
	}
	m.CalculateBounds()
	return m, nil
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// GetBounds returns the axis-aligned bounding box.
func (m *Mesh) GetBounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Vertices) / 3
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Triangle returns the three vertices of triangle i.
func (m *Mesh) Triangle(i int) (v0, v1, v2 Vertex) {
	return m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2]
}

// CalculateNormals assigns each triangle's face normal to its three vertices.
func (m *Mesh) CalculateNormals() {
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		v0 := m.Vertices[i].Position
		v1 := m.Vertices[i+1].Position
		v2 := m.Vertices[i+2].Position

		normal := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()

		m.Vertices[i].Normal = normal
		m.Vertices[i+1].Normal = normal
		m.Vertices[i+2].Normal = normal
	}
}

// CalculateTangents derives a per-vertex tangent from each triangle's UV
// gradient, orthogonalized against the vertex normal. Triangles with a
// degenerate UV mapping get an arbitrary tangent perpendicular to the normal.
func (m *Mesh) CalculateTangents() {
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		v0, v1, v2 := m.Vertices[i], m.Vertices[i+1], m.Vertices[i+2]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)
		d1 := v1.UV.Sub(v0.UV)
		d2 := v2.UV.Sub(v0.UV)

		var tangent math3d.Vec3
		if denom := d1.X*d2.Y - d2.X*d1.Y; denom != 0 {
			r := 1.0 / denom
			tangent = e1.Scale(d2.Y * r).Sub(e2.Scale(d1.Y * r))
		}

		for j := i; j < i+3; j++ {
			m.Vertices[j].Tangent = orthogonalTangent(m.Vertices[j].Normal, tangent)
		}
	}
}

// orthogonalTangent applies one Gram-Schmidt step: T - N(N·T), normalized.
func orthogonalTangent(n, t math3d.Vec3) math3d.Vec3 {
	t = t.Sub(n.Scale(n.Dot(t)))
	if t.LenSq() < 1e-12 {
		if n.X < 0.9 && n.X > -0.9 {
			t = math3d.V3(1, 0, 0).Sub(n.Scale(n.X))
		} else {
			t = math3d.V3(0, 1, 0).Sub(n.Scale(n.Y))
		}
	}
	return t.Normalize()
}

// Interleave packs the vertices into one float32 slice, FloatsPerVertex
// values per vertex in the order position, normal, uv, tangent.
func (m *Mesh) Interleave() []float32 {
	data := make([]float32, 0, len(m.Vertices)*FloatsPerVertex)
	for _, v := range m.Vertices {
		data = append(data,
			float32(v.Position.X), float32(v.Position.Y), float32(v.Position.Z),
			float32(v.Normal.X), float32(v.Normal.Y), float32(v.Normal.Z),
			float32(v.UV.X), float32(v.UV.Y),
			float32(v.Tangent.X), float32(v.Tangent.Y), float32(v.Tangent.Z),
		)
	}
	return data
}
