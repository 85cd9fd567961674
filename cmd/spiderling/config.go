package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taigrr/spiderling/pkg/logging"
	"github.com/taigrr/spiderling/pkg/material"
	"github.com/taigrr/spiderling/pkg/math3d"
	"github.com/taigrr/spiderling/pkg/models"
	"github.com/taigrr/spiderling/pkg/object"
	"github.com/taigrr/spiderling/pkg/render"
	"github.com/taigrr/spiderling/pkg/scene"
)

// Vec is a YAML triple written as [x, y, z].
type Vec math3d.Vec3

// UnmarshalYAML accepts a three element sequence.
func (v *Vec) UnmarshalYAML(node *yaml.Node) error {
	var xs []float64
	if err := node.Decode(&xs); err != nil {
		return err
	}
	if len(xs) != 3 {
		return fmt.Errorf("line %d: want 3 components, got %d", node.Line, len(xs))
	}
	*v = Vec(math3d.V3(xs[0], xs[1], xs[2]))
	return nil
}

func (v *Vec) or(def math3d.Vec3) math3d.Vec3 {
	if v == nil {
		return def
	}
	return math3d.Vec3(*v)
}

// SceneFile is the YAML scene description.
type SceneFile struct {
	Camera  CameraConfig   `yaml:"camera"`
	Ambient *float64       `yaml:"ambient"`
	Lights  []LightConfig  `yaml:"lights"`
	Objects []ObjectConfig `yaml:"objects"`
}

type CameraConfig struct {
	Position *Vec    `yaml:"position"`
	LookAt   *Vec    `yaml:"look_at"`
	FOVDeg   float64 `yaml:"fov_deg"`
}

type LightConfig struct {
	Position Vec  `yaml:"position"`
	Ambient  *Vec `yaml:"ambient"`
	Diffuse  *Vec `yaml:"diffuse"`
	Specular *Vec `yaml:"specular"`
}

type ObjectConfig struct {
	Model     string         `yaml:"model"`
	Translate *Vec           `yaml:"translate"`
	RotateDeg *Vec           `yaml:"rotate_deg"`
	Scale     *Vec           `yaml:"scale"`
	Material  MaterialConfig `yaml:"material"`
}

type MaterialConfig struct {
	Ka           *Vec     `yaml:"ka"`
	Kd           *Vec     `yaml:"kd"`
	Ks           *Vec     `yaml:"ks"`
	Ke           *Vec     `yaml:"ke"`
	Kr           *Vec     `yaml:"kr"`
	Shininess    *float64 `yaml:"shininess"`
	Transparency *float64 `yaml:"transparency"`

	KdMap       string `yaml:"kd_map"`
	KsMap       string `yaml:"ks_map"`
	KeMap       string `yaml:"ke_map"`
	NormalMap   string `yaml:"normal_map"`
	ParallaxMap string `yaml:"parallax_map"`
}

// ParseSceneFile decodes and validates a YAML scene.
func ParseSceneFile(data []byte) (*SceneFile, error) {
	var f SceneFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if len(f.Objects) == 0 {
		return nil, fmt.Errorf("parse scene: no objects")
	}
	for i, o := range f.Objects {
		if o.Model == "" {
			return nil, fmt.Errorf("parse scene: object %d has no model", i)
		}
		if t := o.Material.Transparency; t != nil && (*t < 0 || *t > 1) {
			return nil, fmt.Errorf("parse scene: object %d transparency %g outside [0,1]", i, *t)
		}
	}
	return &f, nil
}

// Config converts the YAML material to a surface config. Setting
// transparency below 1 turns blending on.
func (m MaterialConfig) Config() material.Config {
	def := material.Default()
	def.Ka = m.Ka.or(def.Ka)
	def.Kd = m.Kd.or(def.Kd)
	def.Ks = m.Ks.or(def.Ks)
	def.Ke = m.Ke.or(def.Ke)
	def.Kr = m.Kr.or(def.Kr)
	if m.Shininess != nil {
		def.Shininess = *m.Shininess
	}
	if m.Transparency != nil {
		def.Transparency = *m.Transparency
	}

	return material.Config{
		HasTransparency: def.Transparency < 1,
		HasKdMap:        m.KdMap != "",
		HasKsMap:        m.KsMap != "",
		HasKeMap:        m.KeMap != "",
		HasNormalMap:    m.NormalMap != "",
		HasParallaxMap:  m.ParallaxMap != "",
		KdMap:           m.KdMap,
		KsMap:           m.KsMap,
		KeMap:           m.KeMap,
		NormalMap:       m.NormalMap,
		ParallaxMap:     m.ParallaxMap,
		Default:         def,
	}
}

// Transform returns translate * rotateZ * rotateY * rotateX * scale.
func (o ObjectConfig) Transform() math3d.Mat4 {
	rot := o.RotateDeg.or(math3d.Zero3())
	rotation := math3d.RotateZ(radians(rot.Z)).
		Mul(math3d.RotateY(radians(rot.Y))).
		Mul(math3d.RotateX(radians(rot.X)))
	return math3d.TRS(o.Translate.or(math3d.Zero3()), rotation, o.Scale.or(math3d.V3(1, 1, 1)))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// World is a loaded scene with the objects the viewer animates.
type World struct {
	Scene    *scene.Scene
	Objects  []*object.Rasterizable
	Base     []math3d.Mat4 // model matrices from the scene file
	Store    *models.Store
	Textures *render.TextureCache
	Target   math3d.Vec3 // point the camera looks at
	Name     string
}

// Animate sets every object's model matrix to rotation applied after its
// base transform.
func (w *World) Animate(rotation math3d.Mat4) {
	for i, o := range w.Objects {
		o.SetModelMatrix(rotation.Mul(w.Base[i]))
	}
}

// Triangles returns the triangle count of all objects.
func (w *World) Triangles() int {
	n := 0
	for _, o := range w.Objects {
		n += o.Mesh().TriangleCount()
	}
	return n
}

func newWorld(name, dir string, log logging.Logger) *World {
	loader := models.NewGLTFLoader()
	return &World{
		Scene:    scene.New(log),
		Store:    models.NewStore(loader),
		Textures: render.NewTextureCache(dir, log),
		Name:     name,
	}
}

func (w *World) add(mesh *models.Mesh, surface *object.Renderable, model math3d.Mat4) error {
	o, err := object.New(mesh, surface, model)
	if err != nil {
		return err
	}
	if err := w.Scene.AddObject(o); err != nil {
		return err
	}
	w.Objects = append(w.Objects, o)
	w.Base = append(w.Base, model)
	return nil
}

// LoadWorld loads a YAML scene or a single GLTF model.
func LoadWorld(path string, log logging.Logger) (*World, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
		return LoadModelWorld(path, log)
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read scene: %w", err)
		}
		f, err := ParseSceneFile(data)
		if err != nil {
			return nil, err
		}
		return BuildWorld(f, filepath.Dir(path), filepath.Base(path), log)
	default:
		return nil, fmt.Errorf("unsupported file: %s (use .yaml, .glb or .gltf)", path)
	}
}

// BuildWorld creates the scene described by f. Model and texture paths
// resolve against dir.
func BuildWorld(f *SceneFile, dir, name string, log logging.Logger) (*World, error) {
	log = logging.OrNop(log)
	w := newWorld(name, dir, log)

	cam := w.Scene.Camera()
	cam.SetPosition(f.Camera.Position.or(math3d.V3(0, 0, 5)))
	w.Target = f.Camera.LookAt.or(math3d.Zero3())
	cam.LookAt(w.Target)
	if f.Camera.FOVDeg > 0 {
		cam.SetFOV(radians(f.Camera.FOVDeg))
	}

	ambient := 0.1
	if f.Ambient != nil {
		ambient = *f.Ambient
	}
	w.Scene.SetAmbientLight(ambient)

	for _, lc := range f.Lights {
		l := render.NewLight(math3d.Vec3(lc.Position))
		l.Ambient = lc.Ambient.or(l.Ambient)
		l.Diffuse = lc.Diffuse.or(l.Diffuse)
		l.Specular = lc.Specular.or(l.Specular)
		if err := w.Scene.AddLight(l); err != nil {
			return nil, err
		}
	}
	if len(f.Lights) == 0 {
		if err := w.Scene.AddLight(render.NewLight(math3d.V3(3, 5, 5))); err != nil {
			return nil, err
		}
	}

	for i, oc := range f.Objects {
		path := oc.Model
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		_, mesh, err := w.Store.Load(path)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		surface, err := object.NewRenderable(oc.Material.Config(), w.Textures)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		if err := w.add(mesh, surface, oc.Transform()); err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		log.Infof("loaded %s (%d triangles)", oc.Model, mesh.TriangleCount())
	}
	return w, nil
}

// embeddedTexture is the cache key of a model's embedded base color image.
const embeddedTexture = "embedded:basecolor"

// LoadModelWorld builds a one-object scene from a GLTF file. The model is
// centered and scaled to fit a 2 unit cube, and its embedded image, if any,
// becomes the diffuse map.
func LoadModelWorld(path string, log logging.Logger) (*World, error) {
	log = logging.OrNop(log)
	w := newWorld(filepath.Base(path), filepath.Dir(path), log)

	loader := models.NewGLTFLoader()
	asset, err := loader.LoadAsset(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	w.Store.Add(asset.Mesh)

	cfg := material.DefaultConfig()
	cfg.Default.Kd = asset.BaseColor
	cfg.Default.Ke = asset.Emissive
	if asset.Texture != nil {
		w.Textures.Register(embeddedTexture, render.TextureFromImage(asset.Texture))
		cfg.HasKdMap = true
		cfg.KdMap = embeddedTexture
		b := asset.Texture.Bounds()
		log.Infof("using embedded texture: %dx%d", b.Dx(), b.Dy())
	}
	surface, err := object.NewRenderable(cfg, w.Textures)
	if err != nil {
		return nil, err
	}

	if err := w.add(asset.Mesh, surface, fitTransform(asset.Mesh)); err != nil {
		return nil, err
	}
	w.Scene.SetAmbientLight(0.1)
	if err := w.Scene.AddLight(render.NewLight(math3d.V3(3, 5, 5))); err != nil {
		return nil, err
	}
	log.Infof("loaded %s (%d vertices, %d triangles)", w.Name, asset.Mesh.VertexCount(), asset.Mesh.TriangleCount())
	return w, nil
}

// fitTransform centers a mesh at the origin and scales its largest
// dimension to 2.
func fitTransform(m *models.Mesh) math3d.Mat4 {
	size := m.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if maxDim <= 0 {
		return math3d.Identity()
	}
	scale := 2.0 / maxDim
	return math3d.Scale(math3d.V3(scale, scale, scale)).Mul(math3d.Translate(m.Center().Negate()))
}
