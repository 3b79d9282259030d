package render

import (
	"github.com/taigrr/roam/pkg/math3d"
	"github.com/taigrr/roam/pkg/scene"
)

// AmbientFloor is the default fraction of a triangle's base color that
// survives with zero direct light, so unlit faces stay visible against
// the background.
const AmbientFloor = 0.3

// Shade computes the flat-shaded color of a triangle under a single
// directional light. The light vector points from the surface toward the
// light; faces turned away from it get only the ambient floor. ambient
// must be in (0, 1).
func Shade(t scene.Triangle, light math3d.Vec3, ambient float64) scene.Color {
	intensity := t.Normal().Dot(light.Normalize())
	if intensity < 0 {
		intensity = 0
	}
	f := ambient + (1-ambient)*intensity
	return scene.Color{
		R: uint8(float64(t.Color.R) * f),
		G: uint8(float64(t.Color.G) * f),
		B: uint8(float64(t.Color.B) * f),
		A: 255,
	}
}
