package math3d

import (
	"math"
	"testing"
)

func mat4ApproxEqual(a, b Mat4, eps float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func TestInverseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"identity", Identity()},
		{"translate", Translate(V3(1, -2, 3))},
		{"scale", Scale(V3(2, 0.5, 4))},
		{"rotate", RotateY(0.7).Mul(RotateX(-0.3))},
		{"trs", TRS(V3(4, 5, 6), RotateZ(1.1), V3(0.1, 0.1, 0.1))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.m.Mul(tc.m.Inverse())
			if !mat4ApproxEqual(got, Identity(), 1e-9) {
				t.Errorf("m * inverse(m) = %v, want identity", got)
			}
		})
	}
}

func TestInverseSingularReturnsIdentity(t *testing.T) {
	m := Scale(V3(1, 0, 1))
	if got := m.Inverse(); got != Identity() {
		t.Errorf("Inverse of singular matrix = %v, want identity", got)
	}
}

func TestNormalMatrixTranslationOnly(t *testing.T) {
	n := Translate(V3(10, 20, 30)).NormalMatrix()
	got := n.MulVec3Dir(V3(0, 0, 1))
	if !got.ApproxEqual(V3(0, 0, 1), 1e-12) {
		t.Errorf("translated normal = %v, want (0, 0, 1)", got)
	}
}

func TestNormalMatrixNonUniformScale(t *testing.T) {
	// A plane x + y = 0 has normal (1, 1, 0). Squashing y by 1/2 turns the
	// surface into x + 2y = 0, whose normal is (1, 2, 0).
	m := Scale(V3(1, 0.5, 1))
	got := m.NormalMatrix().MulVec3Dir(V3(1, 1, 0)).Normalize()
	want := V3(1, 2, 0).Normalize()
	if !got.ApproxEqual(want, 1e-12) {
		t.Errorf("normal under non-uniform scale = %v, want %v", got, want)
	}

	// The plain model matrix gets it wrong, which is why it is not used.
	naive := m.MulVec3Dir(V3(1, 1, 0)).Normalize()
	if naive.ApproxEqual(want, 1e-3) {
		t.Errorf("model matrix unexpectedly preserved the normal")
	}
}

func TestMulVec3PointAndDirection(t *testing.T) {
	m := TRS(V3(1, 2, 3), Identity(), V3(2, 2, 2))
	if got := m.MulVec3(V3(1, 0, 0)); !got.ApproxEqual(V3(3, 2, 3), 1e-12) {
		t.Errorf("MulVec3 = %v, want (3, 2, 3)", got)
	}
	if got := m.MulVec3Dir(V3(1, 0, 0)); !got.ApproxEqual(V3(2, 0, 0), 1e-12) {
		t.Errorf("MulVec3Dir = %v, want (2, 0, 0)", got)
	}
}

func TestRayAt(t *testing.T) {
	r := NewRay(V3(0.2, 0.2, 5), V3(0, 0, -1))
	if got := r.At(5); !got.ApproxEqual(V3(0.2, 0.2, 0), 1e-12) {
		t.Errorf("At(5) = %v, want (0.2, 0.2, 0)", got)
	}
}

func TestRayTransform(t *testing.T) {
	r := NewRay(V3(0, 0, 0), V3(0, 0, -1)).Transform(Translate(V3(1, 1, 1)))
	if r.Origin != V3(1, 1, 1) {
		t.Errorf("origin = %v, want (1, 1, 1)", r.Origin)
	}
	if r.Direction != V3(0, 0, -1) {
		t.Errorf("direction = %v, want unchanged", r.Direction)
	}
}

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := RotateY(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkNormalMatrix(b *testing.B) {
	m := TRS(V3(1, 2, 3), RotateY(0.5), V3(2, 1, 0.5))

	for b.Loop() {
		_ = m.NormalMatrix()
	}
}

func BenchmarkMat4MulVec3(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = m.MulVec3(v)
	}
}
