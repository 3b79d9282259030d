package render

import (
	"github.com/taigrr/roam/pkg/math3d"
)

// Plane is Ax + By + Cz + D = 0; Normal is (A, B, C).
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize scales the plane equation so Normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1.0 / l)
	p.D /= l
}

// Distance returns the signed distance from the plane to a point:
// positive on the normal's side.
func (p Plane) Distance(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum holds the six planes of a view frustum, normals pointing
// inward. Ordered left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

// ExtractFrustum pulls the frustum planes out of a view-projection
// matrix using the Gribb/Hartmann row combinations. For a column-major
// matrix, row i element j is m[i+j*4].
func ExtractFrustum(m math3d.Mat4) Frustum {
	var f Frustum

	f.Planes[0] = Plane{ // left: row3 + row0
		Normal: math3d.V3(m[3]+m[0], m[7]+m[4], m[11]+m[8]),
		D:      m[15] + m[12],
	}
	f.Planes[1] = Plane{ // right: row3 - row0
		Normal: math3d.V3(m[3]-m[0], m[7]-m[4], m[11]-m[8]),
		D:      m[15] - m[12],
	}
	f.Planes[2] = Plane{ // bottom: row3 + row1
		Normal: math3d.V3(m[3]+m[1], m[7]+m[5], m[11]+m[9]),
		D:      m[15] + m[13],
	}
	f.Planes[3] = Plane{ // top: row3 - row1
		Normal: math3d.V3(m[3]-m[1], m[7]-m[5], m[11]-m[9]),
		D:      m[15] - m[13],
	}
	f.Planes[4] = Plane{ // near: row3 + row2
		Normal: math3d.V3(m[3]+m[2], m[7]+m[6], m[11]+m[10]),
		D:      m[15] + m[14],
	}
	f.Planes[5] = Plane{ // far: row3 - row2
		Normal: math3d.V3(m[3]-m[2], m[7]-m[6], m[11]-m[10]),
		D:      m[15] - m[14],
	}

	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// ContainsPoint reports whether a point is inside the frustum.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].Distance(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsAABB reports whether any part of the box [min, max] is
// inside the frustum, using the positive-vertex test: for each plane,
// check the box corner furthest along the plane normal. Conservative;
// never rejects a visible box.
func (f Frustum) IntersectsAABB(min, max math3d.Vec3) bool {
	for i := range f.Planes {
		n := f.Planes[i].Normal
		p := math3d.V3(
			pick(n.X >= 0, max.X, min.X),
			pick(n.Y >= 0, max.Y, min.Y),
			pick(n.Z >= 0, max.Z, min.Z),
		)
		if f.Planes[i].Distance(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere reports whether a sphere touches the frustum.
func (f Frustum) IntersectsSphere(center math3d.Vec3, radius float64) bool {
	for i := range f.Planes {
		if f.Planes[i].Distance(center) < -radius {
			return false
		}
	}
	return true
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
