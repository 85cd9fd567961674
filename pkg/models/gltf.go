package models

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/spiderling/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into flat triangle-list meshes.
type GLTFLoader struct {
	// CalculateNormals fills face normals when the file carries none.
	CalculateNormals bool
	// FlipV converts glTF's top-left UV origin to the bottom-left origin
	// textures are sampled with.
	FlipV bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		FlipV:            true,
	}
}

// LoadGLB loads a binary GLTF (.glb) file.
func LoadGLB(path string) (*Mesh, error) {
	loader := NewGLTFLoader()
	return loader.Load(path)
}

// Load loads a GLTF or GLB file and returns a Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.build(doc, filepath.Base(path))
}

// build turns every mesh of the document into one flat triangle list.
func (l *GLTFLoader) build(doc *gltf.Document, name string) (*Mesh, error) {
	var (
		vertices []Vertex
		err      error
	)
	for _, m := range doc.Meshes {
		vertices, err = l.appendMesh(doc, m, vertices)
		if err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	mesh, err := NewMesh(name, vertices)
	if err != nil {
		return nil, err
	}

	hasNormals := false
	for _, v := range mesh.Vertices {
		if v.Normal.Len() > 0.001 {
			hasNormals = true
			break
		}
	}
	if l.CalculateNormals && !hasNormals {
		mesh.CalculateNormals()
	}
	mesh.CalculateTangents()

	return mesh, nil
}

// appendMesh expands every triangle primitive of a GLTF mesh into the flat
// triangle list.
func (l *GLTFLoader) appendMesh(doc *gltf.Document, m *gltf.Mesh, out []Vertex) ([]Vertex, error) {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Lines and points have no surface to draw or hit.
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return nil, fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = readVec3Accessor(doc, normIdx)
			if err != nil {
				return nil, fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs []math3d.Vec2
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = readVec2Accessor(doc, uvIdx)
			if err != nil {
				return nil, fmt.Errorf("read uvs: %w", err)
			}
		}

		vertexAt := func(i int) (Vertex, error) {
			if i < 0 || i >= len(positions) {
				return Vertex{}, fmt.Errorf("index %d out of range for %d positions", i, len(positions))
			}
			v := Vertex{Position: positions[i]}
			if i < len(normals) {
				v.Normal = normals[i]
			}
			if i < len(uvs) {
				v.UV = uvs[i]
				if l.FlipV {
					v.UV.Y = 1.0 - v.UV.Y
				}
			}
			return v, nil
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return nil, fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		// Trailing indices that do not close a triangle are dropped.
		for i := 0; i+2 < len(indices); i += 3 {
			for _, idx := range indices[i : i+3] {
				v, err := vertexAt(idx)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
		}
	}

	return out, nil
}

// readVec3Accessor reads a VEC3 float accessor (positions or normals).
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	data, err := modeler.ReadPosition(doc, doc.Accessors[accessorIdx], nil)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, len(data))
	for i, f := range data {
		result[i] = math3d.V3(float64(f[0]), float64(f[1]), float64(f[2]))
	}
	return result, nil
}

// readVec2Accessor reads a VEC2 texture coordinate accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	data, err := modeler.ReadTextureCoord(doc, doc.Accessors[accessorIdx], nil)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec2, len(data))
	for i, f := range data {
		result[i] = math3d.V2(float64(f[0]), float64(f[1]))
	}
	return result, nil
}

// readIndices reads index data of any unsigned component type.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	data, err := modeler.ReadIndices(doc, doc.Accessors[accessorIdx], nil)
	if err != nil {
		return nil, err
	}

	result := make([]int, len(data))
	for i, x := range data {
		result[i] = int(x)
	}
	return result, nil
}

// Asset is a loaded GLTF file: its geometry plus the first material's
// surface parameters and base color image, when present.
type Asset struct {
	Mesh      *Mesh
	BaseColor math3d.Vec3
	Emissive  math3d.Vec3
	Texture   image.Image // nil when the file has no decodable image
}

// LoadAsset loads a GLTF or GLB file with its first material and texture.
func (l *GLTFLoader) LoadAsset(path string) (*Asset, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh, err := l.build(doc, filepath.Base(path))
	if err != nil {
		return nil, err
	}

	asset := &Asset{
		Mesh:      mesh,
		BaseColor: math3d.V3(1, 1, 1),
	}
	if len(doc.Materials) > 0 {
		mat := doc.Materials[0]
		if pbr := mat.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
			f := pbr.BaseColorFactor
			asset.BaseColor = math3d.V3(f[0], f[1], f[2])
		}
		e := mat.EmissiveFactor
		asset.Emissive = math3d.V3(e[0], e[1], e[2])
	}

	for _, img := range doc.Images {
		data, err := imageBytes(doc, img, filepath.Dir(path))
		if err != nil || len(data) == 0 {
			continue
		}
		decoded, _, err := image.Decode(bytes.NewReader(data))
		if err == nil {
			asset.Texture = decoded
			break
		}
	}

	return asset, nil
}

// imageBytes returns the encoded bytes of a GLTF image, either from a buffer
// view or from a file next to the document.
func imageBytes(doc *gltf.Document, img *gltf.Image, dir string) ([]byte, error) {
	if img.BufferView != nil {
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if buf.Data == nil {
			return nil, fmt.Errorf("image buffer %d has no data", bv.Buffer)
		}
		return buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength], nil
	}
	if img.URI == "" || img.IsEmbeddedResource() {
		return nil, fmt.Errorf("image has no external file")
	}
	return os.ReadFile(filepath.Join(dir, img.URI))
}
