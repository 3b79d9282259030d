// Package scene provides the in-memory scene model for the roam renderer:
// flat-colored triangles plus a single directional light.
package scene

import (
	"fmt"
	"image/color"
	"math"

	"github.com/taigrr/roam/pkg/math3d"
)

// Color is an alias for color.RGBA for convenience. Scene colors carry
// three meaningful channels; alpha is always 255.
type Color = color.RGBA

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) Color {
	return color.RGBA{r, g, b, 255}
}

// Triangle is a flat-shaded triangle. The vertex order A, B, C is fixed:
// the outward-facing normal is (B-A) × (C-A). Triangles are created at
// scene-load time and never mutated afterwards.
type Triangle struct {
	A, B, C math3d.Vec3
	Color   Color
}

// Normal returns the unit outward normal, or the zero vector for a
// degenerate (zero-area) triangle.
func (t Triangle) Normal() math3d.Vec3 {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A)).Normalize()
}

// Degenerate reports whether the triangle has no usable normal.
func (t Triangle) Degenerate() bool {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A)).LenSq() < math3d.Epsilon
}

// Scene is an ordered sequence of triangles plus one directional light.
// The order is render order, not a sorted order; the depth buffer makes
// the visible result order-independent. A scene is loaded once and is
// immutable while frames are being rendered.
type Scene struct {
	Triangles  []Triangle
	Light      math3d.Vec3 // incoming direction of the light, not a position
	Background Color
}

// TriangleCount returns the number of triangles.
func (s *Scene) TriangleCount() int {
	return len(s.Triangles)
}

// Bounds returns the axis-aligned bounding box of all vertices.
// An empty scene returns two zero vectors.
func (s *Scene) Bounds() (min, max math3d.Vec3) {
	if len(s.Triangles) == 0 {
		return math3d.Zero3(), math3d.Zero3()
	}

	min = s.Triangles[0].A
	max = s.Triangles[0].A
	for _, t := range s.Triangles {
		for _, v := range [3]math3d.Vec3{t.A, t.B, t.C} {
			min = min.Min(v)
			max = max.Max(v)
		}
	}
	return min, max
}

// Center returns the center of the scene's bounding box.
func (s *Scene) Center() math3d.Vec3 {
	min, max := s.Bounds()
	return min.Add(max).Scale(0.5)
}

// Validate checks the scene for malformed geometry before any rendering
// begins. Non-finite coordinates and a degenerate light direction reject
// the whole scene; validation failures are fatal at load time, never
// mid-render.
func (s *Scene) Validate() error {
	if !s.Light.IsFinite() {
		return fmt.Errorf("scene: light direction %v is not finite", s.Light)
	}
	if s.Light.LenSq() < math3d.Epsilon {
		return fmt.Errorf("scene: light direction must be non-zero")
	}

	for i, t := range s.Triangles {
		for j, v := range [3]math3d.Vec3{t.A, t.B, t.C} {
			if !v.IsFinite() {
				return fmt.Errorf("scene: triangle %d vertex %c has non-finite coordinate %v",
					i, 'a'+rune(j), v)
			}
		}
	}
	return nil
}

// channel validates a single color channel from a scene file.
// Out-of-range colors are rejected, never clamped.
func channel(v int, what string, index int) (uint8, error) {
	if v < 0 || v > math.MaxUint8 {
		return 0, fmt.Errorf("scene: %s %d color channel %d out of range 0..255", what, index, v)
	}
	return uint8(v), nil
}

// parseColor validates an RGB triple from a scene file.
func parseColor(c [3]int, what string, index int) (Color, error) {
	var rgb [3]uint8
	for i, v := range c {
		ch, err := channel(v, what, index)
		if err != nil {
			return Color{}, err
		}
		rgb[i] = ch
	}
	return RGB(rgb[0], rgb[1], rgb[2]), nil
}
