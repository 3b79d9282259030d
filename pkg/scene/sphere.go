package scene

import (
	"math"

	"github.com/taigrr/roam/pkg/math3d"
)

// TessellateSphere approximates a sphere with a latitude/longitude grid of
// triangles. segments is the number of latitude bands; each band carries
// 2*segments sectors. Winding is chosen so face normals point away from
// the center. Polar caps degenerate quads collapse to single triangles.
func TessellateSphere(center math3d.Vec3, radius float64, c Color, segments int) []Triangle {
	if segments < 3 {
		segments = 3
	}
	sectors := 2 * segments

	// point returns the surface position at latitude band i (0..segments)
	// and sector j (0..sectors). Band 0 is the north pole (+Y).
	point := func(i, j int) math3d.Vec3 {
		theta := math.Pi * float64(i) / float64(segments)
		phi := 2 * math.Pi * float64(j) / float64(sectors)
		sinT, cosT := math.Sincos(theta)
		sinP, cosP := math.Sincos(phi)
		return center.Add(math3d.V3(
			radius*sinT*cosP,
			radius*cosT,
			radius*sinT*sinP,
		))
	}

	tris := make([]Triangle, 0, 2*segments*sectors)
	for i := 0; i < segments; i++ {
		for j := 0; j < sectors; j++ {
			p00 := point(i, j)
			p01 := point(i, j+1)
			p10 := point(i+1, j)
			p11 := point(i+1, j+1)

			if i > 0 {
				tris = append(tris, Triangle{A: p00, B: p01, C: p10, Color: c})
			}
			if i < segments-1 {
				tris = append(tris, Triangle{A: p01, B: p11, C: p10, Color: c})
			}
		}
	}
	return tris
}
