package models

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/spiderling/pkg/math3d"
)

func unitTriangle() []Vertex {
	n := math3d.V3(0, 0, 1)
	return []Vertex{
		{Position: math3d.V3(0, 0, 0), Normal: n, UV: math3d.V2(0, 0)},
		{Position: math3d.V3(1, 0, 0), Normal: n, UV: math3d.V2(1, 0)},
		{Position: math3d.V3(0, 1, 0), Normal: n, UV: math3d.V2(0, 1)},
	}
}

func TestNewMeshRejectsPartialTriangles(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		wantErr bool
	}{
		{"empty", 0, false},
		{"one triangle", 3, false},
		{"two triangles", 6, false},
		{"dangling vertex", 4, true},
		{"dangling edge", 5, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewMesh("test", make([]Vertex, tc.count))
			if tc.wantErr != (err != nil) {
				t.Fatalf("NewMesh(%d vertices) error = %v, wantErr %v", tc.count, err, tc.wantErr)
			}
			if tc.wantErr && !errors.Is(err, ErrNotTriangleList) {
				t.Errorf("error %v does not wrap ErrNotTriangleList", err)
			}
		})
	}
}

func TestMeshBoundsAndCounts(t *testing.T) {
	m, err := NewMesh("tri", unitTriangle())
	if err != nil {
		t.Fatal(err)
	}

	if m.TriangleCount() != 1 || m.VertexCount() != 3 {
		t.Errorf("counts = %d triangles / %d vertices, want 1 / 3", m.TriangleCount(), m.VertexCount())
	}
	lo, hi := m.GetBounds()
	if lo != math3d.V3(0, 0, 0) || hi != math3d.V3(1, 1, 0) {
		t.Errorf("bounds = %v..%v, want (0,0,0)..(1,1,0)", lo, hi)
	}
	if c := m.Center(); c != math3d.V3(0.5, 0.5, 0) {
		t.Errorf("center = %v", c)
	}
}

func TestMeshTriangle(t *testing.T) {
	verts := append(unitTriangle(), unitTriangle()...)
	verts[4].Position = math3d.V3(7, 0, 0)
	m, err := NewMesh("pair", verts)
	if err != nil {
		t.Fatal(err)
	}

	_, v1, _ := m.Triangle(1)
	if v1.Position.X != 7 {
		t.Errorf("Triangle(1) second vertex = %v, want x=7", v1.Position)
	}
}

func TestCalculateNormals(t *testing.T) {
	verts := unitTriangle()
	for i := range verts {
		verts[i].Normal = math3d.Zero3()
	}
	m, _ := NewMesh("tri", verts)
	m.CalculateNormals()

	for i, v := range m.Vertices {
		if !v.Normal.ApproxEqual(math3d.V3(0, 0, 1), 1e-12) {
			t.Errorf("vertex %d normal = %v, want (0, 0, 1)", i, v.Normal)
		}
	}
}

func TestCalculateTangents(t *testing.T) {
	m, _ := NewMesh("tri", unitTriangle())
	m.CalculateTangents()

	for i, v := range m.Vertices {
		// U grows along +X, so the tangent is +X.
		if !v.Tangent.ApproxEqual(math3d.V3(1, 0, 0), 1e-12) {
			t.Errorf("vertex %d tangent = %v, want (1, 0, 0)", i, v.Tangent)
		}
	}
}

func TestCalculateTangentsDegenerateUV(t *testing.T) {
	verts := unitTriangle()
	for i := range verts {
		verts[i].UV = math3d.V2(0.5, 0.5)
	}
	m, _ := NewMesh("tri", verts)
	m.CalculateTangents()

	for i, v := range m.Vertices {
		if math.Abs(v.Tangent.Len()-1) > 1e-12 {
			t.Errorf("vertex %d tangent %v is not unit length", i, v.Tangent)
		}
		if math.Abs(v.Tangent.Dot(v.Normal)) > 1e-12 {
			t.Errorf("vertex %d tangent %v is not perpendicular to normal", i, v.Tangent)
		}
	}
}

func TestInterleaveLayout(t *testing.T) {
	verts := unitTriangle()
	verts[1].Tangent = math3d.V3(0.25, 0.5, 0.75)
	m, _ := NewMesh("tri", verts)

	data := m.Interleave()
	if len(data) != 3*FloatsPerVertex {
		t.Fatalf("len = %d, want %d", len(data), 3*FloatsPerVertex)
	}

	v1 := data[FloatsPerVertex : 2*FloatsPerVertex]
	want := []float32{1, 0, 0, 0, 0, 1, 1, 0, 0.25, 0.5, 0.75}
	for i := range want {
		if v1[i] != want[i] {
			t.Errorf("vertex 1 float %d = %v, want %v", i, v1[i], want[i])
		}
	}
}
