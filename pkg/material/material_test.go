package material

import (
	"errors"
	"testing"

	"github.com/taigrr/spiderling/pkg/math3d"
)

// solid is a texture that returns one color everywhere.
type solid math3d.Vec3

func (solid) IsValid() bool                    { return true }
func (s solid) Sample(math3d.Vec2) math3d.Vec3 { return math3d.Vec3(s) }

type mapLoader map[string]Texture

func (m mapLoader) LoadTexture(source string) (Texture, error) {
	tex, ok := m[source]
	if !ok {
		return nil, errors.New("not found")
	}
	return tex, nil
}

func TestDefaultIsOpaque(t *testing.T) {
	if Default().Transparency != 1 {
		t.Errorf("Default().Transparency = %v, want 1", Default().Transparency)
	}
}

func TestChannelUnits(t *testing.T) {
	for ch := Channel(0); ch < NumChannels; ch++ {
		if ch.Unit() != int(ch) {
			t.Errorf("%s unit = %d, want %d", ch, ch.Unit(), int(ch))
		}
	}
	if Parallax.Unit() != 4 {
		t.Errorf("parallax unit = %d, want 4", Parallax.Unit())
	}
}

func TestBindSkipsUnmappedChannels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KdMap = "kd.png" // ignored: HasKdMap is false

	tex, err := Bind(cfg, mapLoader{})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	for ch := Channel(0); ch < NumChannels; ch++ {
		if tex.Bound(ch) {
			t.Errorf("%s bound without a map", ch)
		}
	}
}

func TestBindReportsChannel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HasKsMap = true
	cfg.KsMap = "missing.png"

	_, err := Bind(cfg, mapLoader{})
	if err == nil {
		t.Fatal("expected error for missing ks map")
	}
	if want := `ks map "missing.png": not found`; err.Error() != want {
		t.Errorf("error = %q, want %q", err, want)
	}
}

func TestResolve(t *testing.T) {
	def := Default()
	red := math3d.V3(1, 0, 0)
	green := math3d.V3(0, 1, 0)
	blue := math3d.V3(0, 0, 1)

	tests := []struct {
		name   string
		cfg    func(*Config)
		wantKd math3d.Vec3
		wantKs math3d.Vec3
		wantKe math3d.Vec3
	}{
		{
			name:   "no maps",
			cfg:    func(*Config) {},
			wantKd: def.Kd, wantKs: def.Ks, wantKe: def.Ke,
		},
		{
			name:   "kd map",
			cfg:    func(c *Config) { c.HasKdMap, c.KdMap = true, "red" },
			wantKd: red, wantKs: def.Ks, wantKe: def.Ke,
		},
		{
			// The specular channel must come from the ks map, not the kd map.
			name: "kd and ks maps",
			cfg: func(c *Config) {
				c.HasKdMap, c.KdMap = true, "red"
				c.HasKsMap, c.KsMap = true, "green"
			},
			wantKd: red, wantKs: green, wantKe: def.Ke,
		},
		{
			name:   "ke map",
			cfg:    func(c *Config) { c.HasKeMap, c.KeMap = true, "blue" },
			wantKd: def.Kd, wantKs: def.Ks, wantKe: blue,
		},
	}

	loader := mapLoader{"red": solid(red), "green": solid(green), "blue": solid(blue)}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.cfg(&cfg)
			tex, err := Bind(cfg, loader)
			if err != nil {
				t.Fatalf("Bind: %v", err)
			}

			m := tex.Resolve(def, math3d.V2(0.5, 0.5))
			if m.Kd != tc.wantKd || m.Ks != tc.wantKs || m.Ke != tc.wantKe {
				t.Errorf("Resolve = kd %v ks %v ke %v, want kd %v ks %v ke %v",
					m.Kd, m.Ks, m.Ke, tc.wantKd, tc.wantKs, tc.wantKe)
			}
			if m.Shininess != def.Shininess || m.Transparency != def.Transparency {
				t.Errorf("Resolve changed non-sampled fields: %+v", m)
			}
		})
	}
}
