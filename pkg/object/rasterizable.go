// Package object implements scene objects that can be drawn through a
// rendering backend and intersected analytically by rays, from the same
// mesh, transform and material data.
package object

import (
	"errors"
	"fmt"

	"github.com/taigrr/spiderling/pkg/gfx"
	"github.com/taigrr/spiderling/pkg/material"
	"github.com/taigrr/spiderling/pkg/math3d"
	"github.com/taigrr/spiderling/pkg/models"
)

var (
	ErrNilMesh         = errors.New("object: nil mesh")
	ErrNotUploaded     = errors.New("object: draw before upload")
	ErrAlreadyUploaded = errors.New("object: already uploaded")
)

// Drawable is anything that can be uploaded to and drawn by a backend.
type Drawable interface {
	Upload(b gfx.Backend) error
	Draw(b gfx.Backend) error
}

// RayIntersectable is anything a ray can hit.
type RayIntersectable interface {
	IntersectRay(ray math3d.Ray) (RayHit, bool)
}

// Rasterizable is a mesh instance with a surface and a model transform. The
// mesh is borrowed; its owner must keep it alive and unchanged.
type Rasterizable struct {
	*Renderable

	mesh        *models.Mesh
	vertexCount int

	model  math3d.Mat4
	normal math3d.Mat4

	vao      gfx.Handle
	loaded   bool
	uniforms Uniforms
	resolved bool
}

// New creates an object. A nil surface uses the default material.
func New(mesh *models.Mesh, surface *Renderable, model math3d.Mat4) (*Rasterizable, error) {
	if mesh == nil {
		return nil, ErrNilMesh
	}
	if surface == nil {
		surface = NewPlainRenderable(material.Default())
	}
	o := &Rasterizable{
		Renderable:  surface,
		mesh:        mesh,
		vertexCount: mesh.VertexCount(),
	}
	o.SetModelMatrix(model)
	return o, nil
}

// Mesh returns the borrowed mesh.
func (o *Rasterizable) Mesh() *models.Mesh { return o.mesh }

// VertexCount returns the number of vertices drawn.
func (o *Rasterizable) VertexCount() int { return o.vertexCount }

// ModelMatrix returns the object-to-world transform.
func (o *Rasterizable) ModelMatrix() math3d.Mat4 { return o.model }

// NormalMatrix returns transpose(inverse(ModelMatrix())).
func (o *Rasterizable) NormalMatrix() math3d.Mat4 { return o.normal }

// SetModelMatrix replaces the transform and recomputes the normal matrix.
func (o *Rasterizable) SetModelMatrix(m math3d.Mat4) {
	o.model = m
	o.normal = m.NormalMatrix()
}

// Loaded reports whether Upload has succeeded.
func (o *Rasterizable) Loaded() bool { return o.loaded }

// SetUniforms overrides the uniform locations Draw writes. Without it they
// are looked up on upload.
func (o *Rasterizable) SetUniforms(u Uniforms) {
	o.uniforms = u
	o.resolved = true
}

// Upload interleaves the mesh into a backend vertex array.
func (o *Rasterizable) Upload(b gfx.Backend) error {
	if o.loaded {
		return ErrAlreadyUploaded
	}
	vao, err := b.CreateVertexArray(o.mesh.Interleave(), VertexLayout)
	if err != nil {
		return fmt.Errorf("upload mesh %q: %w", o.mesh.Name, err)
	}
	o.vao = vao
	o.loaded = true
	if !o.resolved {
		o.SetUniforms(LookupUniforms(b))
	}
	return nil
}

// Draw pushes transforms, material and textures, then draws the triangle
// list.
func (o *Rasterizable) Draw(b gfx.Backend) error {
	if !o.loaded {
		return ErrNotUploaded
	}
	u := &o.uniforms
	cfg := o.Config()
	def := cfg.Default

	b.SetUniformMat4(u.ModelMatrix, o.model)
	b.SetUniformMat4(u.NormalMatrix, o.normal)
	b.SetUniformBool(u.HasTransparency, cfg.HasTransparency)
	for ch := range material.NumChannels {
		bound := o.HasMap(ch)
		b.SetUniformBool(u.HasMap[ch], bound)
		if bound {
			b.BindTexture(ch.Unit(), o.Texture(ch))
		} else {
			b.BindTexture(ch.Unit(), nil)
		}
	}

	b.SetUniformVec3(u.Ka, def.Ka)
	b.SetUniformVec3(u.Kd, def.Kd)
	b.SetUniformVec3(u.Ks, def.Ks)
	b.SetUniformVec3(u.Ke, def.Ke)
	b.SetUniformFloat(u.Shininess, def.Shininess)
	b.SetUniformFloat(u.Transparency, def.Transparency)

	b.BindVertexArray(o.vao)
	err := b.DrawTriangles(0, o.vertexCount)
	b.BindVertexArray(0)
	if err != nil {
		return fmt.Errorf("draw mesh %q: %w", o.mesh.Name, err)
	}
	return nil
}

// VertexToWorld returns vertex i in world space: position by the model
// matrix, normal by the normal matrix (renormalized), uv unchanged.
func (o *Rasterizable) VertexToWorld(i int) models.Vertex {
	return o.toWorld(o.mesh.Vertices[i])
}

func (o *Rasterizable) toWorld(v models.Vertex) models.Vertex {
	return models.Vertex{
		Position: o.model.MulVec3(v.Position),
		Normal:   o.normal.MulVec3Dir(v.Normal).Normalize(),
		UV:       v.UV,
		Tangent:  o.model.MulVec3Dir(v.Tangent).Normalize(),
	}
}

// IntersectRay returns the nearest hit past SelfIntersectionBias. Triangles
// are tested in index order and a later triangle only wins when strictly
// nearer. It never touches the backend and may run before Upload.
func (o *Rasterizable) IntersectRay(ray math3d.Ray) (RayHit, bool) {
	best := NoHit()
	found := false
	for i := 0; i+2 < o.vertexCount; i += 3 {
		v0 := o.toWorld(o.mesh.Vertices[i])
		v1 := o.toWorld(o.mesh.Vertices[i+1])
		v2 := o.toWorld(o.mesh.Vertices[i+2])
		if o.hitTriangle(ray, v0, v1, v2, &best) {
			found = true
		}
	}
	return best, found
}

// WorldBounds returns the axis-aligned box around the transformed mesh
// bounds.
func (o *Rasterizable) WorldBounds() (lo, hi math3d.Vec3) {
	bmin, bmax := o.mesh.GetBounds()
	for i := range 8 {
		corner := math3d.V3(bmin.X, bmin.Y, bmin.Z)
		if i&1 != 0 {
			corner.X = bmax.X
		}
		if i&2 != 0 {
			corner.Y = bmax.Y
		}
		if i&4 != 0 {
			corner.Z = bmax.Z
		}
		p := o.model.MulVec3(corner)
		if i == 0 {
			lo, hi = p, p
			continue
		}
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return lo, hi
}
