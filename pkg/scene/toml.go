package scene

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/taigrr/roam/pkg/math3d"
)

// fileScene mirrors the on-disk TOML scene description. Object kinds form
// a closed set: triangles, spheres, and glTF mesh references. Spheres and
// meshes are tessellated/flattened into triangles at load time, so the
// renderer only ever sees triangles.
type fileScene struct {
	Light      [3]float64     `toml:"light"`
	Background *[3]int        `toml:"background"`
	Triangles  []fileTriangle `toml:"triangle"`
	Spheres    []fileSphere   `toml:"sphere"`
	Meshes     []fileMesh     `toml:"mesh"`
}

type fileTriangle struct {
	A     [3]float64 `toml:"a"`
	B     [3]float64 `toml:"b"`
	C     [3]float64 `toml:"c"`
	Color [3]int     `toml:"color"`
}

type fileSphere struct {
	Center   [3]float64 `toml:"center"`
	Radius   float64    `toml:"radius"`
	Color    [3]int     `toml:"color"`
	Segments int        `toml:"segments"` // optional, defaults to 16
}

type fileMesh struct {
	Path      string     `toml:"path"`
	Color     [3]int     `toml:"color"`
	Translate [3]float64 `toml:"translate"`
	Scale     float64    `toml:"scale"`    // optional, defaults to 1
	RotateY   float64    `toml:"rotate_y"` // degrees, optional
}

// DefaultBackground is used when the scene file does not set one.
var DefaultBackground = RGB(30, 30, 40)

func v3(a [3]float64) math3d.Vec3 {
	return math3d.V3(a[0], a[1], a[2])
}

// Load reads, decodes, and validates a TOML scene file. Mesh paths are
// resolved relative to the scene file's directory. Any validation failure
// rejects the entire scene with a descriptive error; nothing is clamped.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return Decode(data, filepath.Dir(path))
}

// Decode builds a Scene from TOML data. dir is the base directory for
// relative mesh paths.
func Decode(data []byte, dir string) (*Scene, error) {
	var fs fileScene
	if err := toml.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}

	s := &Scene{
		Light:      v3(fs.Light),
		Background: DefaultBackground,
	}
	if fs.Background != nil {
		bg, err := parseColor(*fs.Background, "background", 0)
		if err != nil {
			return nil, err
		}
		s.Background = bg
	}

	for i, ft := range fs.Triangles {
		c, err := parseColor(ft.Color, "triangle", i)
		if err != nil {
			return nil, err
		}
		s.Triangles = append(s.Triangles, Triangle{
			A:     v3(ft.A),
			B:     v3(ft.B),
			C:     v3(ft.C),
			Color: c,
		})
	}

	for i, sp := range fs.Spheres {
		c, err := parseColor(sp.Color, "sphere", i)
		if err != nil {
			return nil, err
		}
		if sp.Radius <= 0 || math.IsNaN(sp.Radius) || math.IsInf(sp.Radius, 0) {
			return nil, fmt.Errorf("scene: sphere %d radius %v must be positive and finite", i, sp.Radius)
		}
		segments := sp.Segments
		if segments == 0 {
			segments = 16
		}
		if segments < 3 {
			return nil, fmt.Errorf("scene: sphere %d needs at least 3 segments, got %d", i, segments)
		}
		s.Triangles = append(s.Triangles, TessellateSphere(v3(sp.Center), sp.Radius, c, segments)...)
	}

	for i, fm := range fs.Meshes {
		c, err := parseColor(fm.Color, "mesh", i)
		if err != nil {
			return nil, err
		}
		scale := fm.Scale
		if scale == 0 {
			scale = 1
		}
		transform := math3d.Translate(v3(fm.Translate)).
			Mul(math3d.RotateY(fm.RotateY * math.Pi / 180)).
			Mul(math3d.ScaleUniform(scale))

		tris, err := LoadGLTF(filepath.Join(dir, fm.Path), transform, c)
		if err != nil {
			return nil, fmt.Errorf("scene: mesh %d: %w", i, err)
		}
		s.Triangles = append(s.Triangles, tris...)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
