package render

import (
	"math"

	"github.com/taigrr/roam/pkg/math3d"
	"github.com/taigrr/roam/pkg/scene"
)

// Stats counts per-frame triangle outcomes. Reset at the start of every
// DrawScene call.
type Stats struct {
	Submitted int // triangles handed to the pipeline
	Culled    int // rejected before projection (frustum, behind camera, degenerate)
	Clipped   int // triangles that intersected the near plane
	Drawn     int // screen-space triangles rasterized
}

// Rasterizer draws scenes into a Frame with flat shading and depth
// testing. It holds no per-scene state; one rasterizer can serve many
// scenes and cameras.
type Rasterizer struct {
	Wireframe bool

	// Ambient overrides the shading ambient floor when set inside
	// (0, 1); zero means AmbientFloor.
	Ambient float64

	stats Stats
}

func (r *Rasterizer) ambient() float64 {
	if r.Ambient > 0 && r.Ambient < 1 {
		return r.Ambient
	}
	return AmbientFloor
}

// WireColor is the overlay color for wireframe edges.
var WireColor = scene.RGB(255, 255, 255)

// Stats returns the counters from the most recent DrawScene.
func (r *Rasterizer) Stats() Stats {
	return r.stats
}

// DrawScene renders all triangles of a scene into the frame. The frame
// is cleared to the scene background first. Triangle submission order
// does not affect the result except where fragments tie exactly in
// depth; ties keep the earlier triangle.
func (r *Rasterizer) DrawScene(f *Frame, cam *Camera, s *scene.Scene) {
	f.Begin(s.Background)
	r.stats = Stats{}
	if f.Width == 0 || f.Height == 0 {
		return
	}

	frustum := ExtractFrustum(cam.ViewProjection(float64(f.Width) / float64(f.Height)))
	if min, max := s.Bounds(); s.TriangleCount() > 0 && !frustum.IntersectsAABB(min, max) {
		// Whole scene out of view.
		r.stats.Submitted = s.TriangleCount()
		r.stats.Culled = s.TriangleCount()
		return
	}

	for _, t := range s.Triangles {
		r.drawTriangle(f, cam, t, s.Light)
	}
}

func (r *Rasterizer) drawTriangle(f *Frame, cam *Camera, t scene.Triangle, light math3d.Vec3) {
	r.stats.Submitted++
	if t.Degenerate() {
		r.stats.Culled++
		return
	}

	// Shading happens in world space, before any clipping subdivides the
	// face, so both halves of a clipped triangle get the same color.
	c := Shade(t, light, r.ambient())

	a := cam.ToView(t.A)
	b := cam.ToView(t.B)
	cc := cam.ToView(t.C)

	near := cam.Near
	if a.Z <= near && b.Z <= near && cc.Z <= near {
		r.stats.Culled++
		return
	}

	poly := clipNear([]math3d.Vec3{a, b, cc}, near)
	if len(poly) < 3 {
		r.stats.Culled++
		return
	}
	if len(poly) > 3 {
		r.stats.Clipped++
	}

	// Fan-triangulate the clipped polygon (at most 4 vertices).
	for i := 1; i+1 < len(poly); i++ {
		r.fillViewTriangle(f, cam, poly[0], poly[i], poly[i+1], c)
	}
}

// clipNear clips a view-space polygon against the plane z = near,
// keeping the half-space in front of the camera. Sutherland-Hodgman
// against a single plane; a triangle yields at most 4 vertices.
func clipNear(in []math3d.Vec3, near float64) []math3d.Vec3 {
	out := make([]math3d.Vec3, 0, len(in)+1)
	for i := range in {
		cur := in[i]
		next := in[(i+1)%len(in)]
		curIn := cur.Z > near
		nextIn := next.Z > near

		if curIn {
			out = append(out, cur)
		}
		if curIn != nextIn {
			t := (near - cur.Z) / (next.Z - cur.Z)
			out = append(out, cur.Lerp(next, t))
		}
	}
	return out
}

// project maps a view-space point to pixel coordinates. Both axes scale
// by half the frame height so pixels stay square; the extra horizontal
// extent of a wide frame widens the field of view.
func (f *Frame) project(v math3d.Vec3, focal float64) (px, py, depth float64) {
	inv := focal / v.Z
	half := float64(f.Height) / 2
	px = float64(f.Width)/2 + v.X*inv*half
	py = half - v.Y*inv*half
	return px, py, v.Z
}

// edgeCoeffs returns the coefficients of the edge function
// w(x, y) = A*x + B*y + C for the directed edge (x0,y0) -> (x1,y1).
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	return y0 - y1, x1 - x0, x0*y1 - x1*y0
}

// topLeft reports whether an edge of a positively oriented screen
// triangle is a top or left edge under the fill rule: pixels exactly on
// such edges belong to this triangle, pixels on the others do not.
func topLeft(A, B float64) bool {
	return A > 0 || (A == 0 && B > 0)
}

func (r *Rasterizer) fillViewTriangle(f *Frame, cam *Camera, a, b, c math3d.Vec3, col scene.Color) {
	x0, y0, z0 := f.project(a, cam.FocalLength)
	x1, y1, z1 := f.project(b, cam.FocalLength)
	x2, y2, z2 := f.project(c, cam.FocalLength)

	// Orient positively so the edge functions are non-negative inside.
	area2 := (x1-x0)*(y2-y0) - (y1-y0)*(x2-x0)
	if area2 == 0 {
		r.stats.Culled++
		return
	}
	if area2 < 0 {
		x1, y1, z1, x2, y2, z2 = x2, y2, z2, x1, y1, z1
		area2 = -area2
	}

	minX := int(math.Floor(min3(x0, x1, x2)))
	maxX := int(math.Ceil(max3(x0, x1, x2)))
	minY := int(math.Floor(min3(y0, y1, y2)))
	maxY := int(math.Ceil(max3(y0, y1, y2)))
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > f.Width-1 {
		maxX = f.Width - 1
	}
	if maxY > f.Height-1 {
		maxY = f.Height - 1
	}
	if minX > maxX || minY > maxY {
		r.stats.Culled++
		return
	}

	// Edge i is opposite vertex i, so w_i/area2 is the barycentric
	// weight of vertex i.
	a0, b0, c0 := edgeCoeffs(x1, y1, x2, y2)
	a1, b1, c1 := edgeCoeffs(x2, y2, x0, y0)
	a2, b2, c2 := edgeCoeffs(x0, y0, x1, y1)
	tl0, tl1, tl2 := topLeft(a0, b0), topLeft(a1, b1), topLeft(a2, b2)

	inv := 1.0 / area2

	// Sample at pixel centers, stepping the edge functions
	// incrementally across the box.
	sx := float64(minX) + 0.5
	sy := float64(minY) + 0.5
	w0row := a0*sx + b0*sy + c0
	w1row := a1*sx + b1*sy + c1
	w2row := a2*sx + b2*sy + c2

	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0row, w1row, w2row
		for x := minX; x <= maxX; x++ {
			if covered(w0, tl0) && covered(w1, tl1) && covered(w2, tl2) {
				depth := (w0*z0 + w1*z1 + w2*z2) * inv
				f.Write(x, y, depth, col)
			}
			w0 += a0
			w1 += a1
			w2 += a2
		}
		w0row += b0
		w1row += b1
		w2row += b2
	}

	if r.Wireframe {
		f.DrawLine(int(x0), int(y0), int(x1), int(y1), WireColor)
		f.DrawLine(int(x1), int(y1), int(x2), int(y2), WireColor)
		f.DrawLine(int(x2), int(y2), int(x0), int(y0), WireColor)
	}

	r.stats.Drawn++
}

// covered applies the fill rule: strictly inside always, on-edge only
// for top/left edges.
func covered(w float64, topLeftEdge bool) bool {
	if w > 0 {
		return true
	}
	return w == 0 && topLeftEdge
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
