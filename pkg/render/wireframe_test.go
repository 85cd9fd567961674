package render

import (
	"testing"

	"github.com/taigrr/spiderling/pkg/math3d"
)

func TestWireframeDrawBox(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	w := NewWireframe(r.camera, fb)

	w.DrawBox(AABB{Min: math3d.V3(-1, -1, -1), Max: math3d.V3(1, 1, 1)}, ColorYellow)

	if litPixels(fb) == 0 {
		t.Fatal("box drew nothing")
	}
	if fb.GetPixel(50, 50) != ColorBlack {
		t.Error("box outline should leave the center empty")
	}
}

func TestWireframeSkipsLinesBehindCamera(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	w := NewWireframe(r.camera, fb)

	w.DrawLine3D(math3d.V3(-1, 0, 20), math3d.V3(1, 0, 20), ColorWhite)
	if n := litPixels(fb); n != 0 {
		t.Errorf("line behind camera drew %d pixels", n)
	}
}

func TestWireframePointAndGrid(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	w := NewWireframe(r.camera, fb)

	w.DrawPoint(math3d.Zero3(), 0.5, ColorRed)
	point := litPixels(fb)
	if point == 0 {
		t.Fatal("point marker drew nothing")
	}

	w.DrawGrid(-1, 4, 1, ColorGray)
	if litPixels(fb) <= point {
		t.Error("grid drew nothing")
	}
}
