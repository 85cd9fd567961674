// Package render is the software side of spiderling: a depth-buffered
// triangle rasterizer behind the gfx.Backend interface, plus the camera,
// frustum culling, textures and terminal presentation it needs.
package render

import (
	"math"

	"github.com/taigrr/spiderling/pkg/math3d"
)

// Vertex is a world-space vertex ready for rasterization.
type Vertex struct {
	Position math3d.Vec3 // World position
	UV       math3d.Vec2 // Texture coordinates
	Light    LightTerms  // Lighting evaluated at the vertex
}

// Triangle represents a triangle to be rasterized.
type Triangle struct {
	V [3]Vertex
}

// FragmentFunc computes the color of one fragment from its perspective
// correct uv and interpolated lighting.
type FragmentFunc func(uv math3d.Vec2, light LightTerms) math3d.Vec3

// Rasterizer handles software triangle rasterization.
type Rasterizer struct {
	camera                 *Camera
	fb                     *Framebuffer
	zbuffer                []float64    // Depth buffer (1D array, row-major)
	frustum                Frustum      // Cached frustum planes
	frustumDirty           bool         // Whether frustum needs recalculation
	CullingStats           CullingStats // Statistics for debugging/benchmarking
	DisableBackfaceCulling bool         // If true, render both sides of triangles
}

// CullingStats tracks frustum culling and triangle throughput.
type CullingStats struct {
	MeshesTested   int // Total meshes tested for culling
	MeshesCulled   int // Meshes culled (not rendered)
	MeshesDrawn    int // Meshes that passed culling
	TrianglesDrawn int // Triangles that reached the pixel loop
}

// NewRasterizer creates a new rasterizer.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		camera:       camera,
		fb:           fb,
		frustumDirty: true,
	}
	r.Resize()
	return r
}

// SetFramebuffer switches the render target and resizes the depth buffer.
func (r *Rasterizer) SetFramebuffer(fb *Framebuffer) {
	r.fb = fb
	r.Resize()
}

// Resize resizes the rasterizer's buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
	r.ClearDepth()
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth clears the Z-buffer (call before each frame).
func (r *Rasterizer) ClearDepth() {
	// Use copy-doubling for faster clearing
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// InvalidateFrustum marks the frustum as needing recalculation.
// Call this when the camera moves or rotates.
func (r *Rasterizer) InvalidateFrustum() {
	r.frustumDirty = true
}

// Frustum returns the current frustum, rebuilding it if invalidated.
func (r *Rasterizer) Frustum() Frustum {
	if r.frustumDirty {
		r.frustum = NewFrustumFromMatrix(r.camera.ViewProjectionMatrix())
		r.frustumDirty = false
	}
	return r.frustum
}

// ResetCullingStats resets the culling statistics (call once per frame).
func (r *Rasterizer) ResetCullingStats() {
	r.CullingStats = CullingStats{}
}

// Cull reports whether local bounds transformed by model lie entirely
// outside the frustum, and records the result in CullingStats.
func (r *Rasterizer) Cull(local AABB, model math3d.Mat4) bool {
	r.CullingStats.MeshesTested++
	if !r.Frustum().IntersectAABB(local.Transform(model)) {
		r.CullingStats.MeshesCulled++
		return true
	}
	r.CullingStats.MeshesDrawn++
	return false
}

// DepthAt returns the depth stored at (x, y).
func (r *Rasterizer) DepthAt(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.Width()+x]
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y float64 // Screen coordinates
	Z    float64 // NDC depth
	InvW float64 // 1/w for perspective-correct interpolation
}

// edgeCoeffs returns A, B, C of the edge function A*x + B*y + C for the
// directed edge (x0,y0) -> (x1,y1).
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	A = y0 - y1 // dy
	B = x1 - x0 // -dx
	C = x0*y1 - x1*y0
	return
}

// DrawTriangle rasterizes an opaque triangle. A nil frag shades with a white
// material.
func (r *Rasterizer) DrawTriangle(tri Triangle, frag FragmentFunc) {
	r.DrawTriangleBlended(tri, frag, 1)
}

// DrawTriangleBlended rasterizes a triangle with opacity alpha. Fragments
// with alpha below 1 are blended over the framebuffer and leave the depth
// buffer untouched.
func (r *Rasterizer) DrawTriangleBlended(tri Triangle, frag FragmentFunc, alpha float64) {
	if r.fb == nil {
		return
	}
	width, height := r.Width(), r.Height()
	viewProj := r.camera.ViewProjectionMatrix()

	var sv [3]screenVertex
	for i := range 3 {
		clip := viewProj.MulVec4(math3d.V4FromV3(tri.V[i].Position, 1))
		// Near-plane clipping is not implemented; drop the triangle.
		if clip.W <= 0 {
			return
		}
		invW := 1 / clip.W
		sv[i] = screenVertex{
			X:    (clip.X*invW + 1) * 0.5 * float64(width),
			Y:    (1 - clip.Y*invW) * 0.5 * float64(height), // Y flipped
			Z:    clip.Z * invW,
			InvW: invW,
		}
	}

	// Counter-clockwise triangles face the viewer. Y is flipped on screen,
	// so they have a negative screen-space cross product.
	cross := (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[1].Y-sv[0].Y)*(sv[2].X-sv[0].X)
	if cross == 0 || (cross > 0 && !r.DisableBackfaceCulling) {
		return
	}
	sign := 1.0
	if cross < 0 {
		sign = -1
	}

	minX := int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(width-1), math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(height-1), math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))
	if minX > maxX || minY > maxY {
		return
	}
	r.CullingStats.TrianglesDrawn++

	// Edge 0: v1 -> v2, Edge 1: v2 -> v0, Edge 2: v0 -> v1. Flipping the
	// sign makes "inside" mean all three are non-negative for either winding.
	A0, B0, C0 := edgeCoeffs(sv[1].X, sv[1].Y, sv[2].X, sv[2].Y)
	A1, B1, C1 := edgeCoeffs(sv[2].X, sv[2].Y, sv[0].X, sv[0].Y)
	A2, B2, C2 := edgeCoeffs(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y)
	A0, B0, C0 = A0*sign, B0*sign, C0*sign
	A1, B1, C1 = A1*sign, B1*sign, C1*sign
	A2, B2, C2 = A2*sign, B2*sign, C2*sign
	invArea := 1 / (cross * sign)

	px := float64(minX) + 0.5
	py := float64(minY) + 0.5
	w0Row := A0*px + B0*py + C0
	w1Row := A1*px + B1*py + C1
	w2Row := A2*px + B2*py + C2

	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		rowOffset := y * width

		for x := minX; x <= maxX; x++ {
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				bc0, bc1, bc2 := w0*invArea, w1*invArea, w2*invArea
				z := bc0*sv[0].Z + bc1*sv[1].Z + bc2*sv[2].Z

				idx := rowOffset + x
				if z < r.zbuffer[idx] {
					// Perspective-correct weights
					p0, p1, p2 := bc0*sv[0].InvW, bc1*sv[1].InvW, bc2*sv[2].InvW
					if sum := p0 + p1 + p2; sum != 0 {
						p0, p1, p2 = p0/sum, p1/sum, p2/sum
						r.shade(tri, frag, alpha, x, y, idx, z, p0, p1, p2)
					}
				}
			}

			w0 += A0
			w1 += A1
			w2 += A2
		}

		w0Row += B0
		w1Row += B1
		w2Row += B2
	}
}

func (r *Rasterizer) shade(tri Triangle, frag FragmentFunc, alpha float64, x, y, idx int, z, p0, p1, p2 float64) {
	uv := math3d.Blend2(tri.V[0].UV, tri.V[1].UV, tri.V[2].UV, p0, p1, p2)
	light := lerpTerms(tri.V[0].Light, tri.V[1].Light, tri.V[2].Light, p0, p1, p2)

	var c math3d.Vec3
	if frag != nil {
		c = frag(uv, light)
	} else {
		c = light.Ambient.Add(light.Diffuse).Add(light.Specular)
	}

	if alpha < 1 {
		dst := ColorToVec3(r.fb.GetPixel(x, y))
		r.fb.SetPixel(x, y, ColorFromVec3(c.Scale(alpha).Add(dst.Scale(1-alpha))))
		return
	}
	r.zbuffer[idx] = z
	r.fb.SetPixel(x, y, ColorFromVec3(c))
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
