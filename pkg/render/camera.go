// Package render implements the software rendering pipeline: camera,
// framebuffer, triangle rasterization, shading, and terminal output.
package render

import (
	"github.com/taigrr/roam/pkg/math3d"
)

// Camera defaults.
const (
	DefaultFocalLength = 1.5
	DefaultNear        = 0.1
	DefaultFar         = 1000.0

	// MinFocalLength bounds focal length changes; the projection divides
	// by it indirectly, so it must stay positive.
	MinFocalLength = 0.1

	// minDollyDistance keeps dolly zoom from crossing the subject plane.
	minDollyDistance = 0.25
)

// Camera is a free-flying perspective camera described by an orthonormal
// basis rather than Euler angles; every look and roll operation rotates
// the basis vectors directly, so there is no gimbal lock and no
// privileged world axis.
type Camera struct {
	Position math3d.Vec3
	Forward  math3d.Vec3
	Right    math3d.Vec3
	Up       math3d.Vec3

	// FocalLength is the distance from the eye to the projection plane
	// in view units; larger values zoom in.
	FocalLength float64

	// Near is the near clipping distance. Geometry at camera depth
	// <= Near is clipped before projection.
	Near float64
	Far  float64

	// dollyDist is the current distance to the dolly zoom subject plane,
	// maintained so opposite dolly steps undo each other exactly.
	dollyDist float64
}

// NewCamera returns a camera at the origin looking down -Z with +Y up.
func NewCamera() *Camera {
	c := &Camera{
		FocalLength: DefaultFocalLength,
		Near:        DefaultNear,
		Far:         DefaultFar,
		dollyDist:   5,
	}
	c.Position = math3d.Zero3()
	c.Forward = math3d.V3(0, 0, -1)
	c.Up = math3d.V3(0, 1, 0)
	c.Right = math3d.V3(1, 0, 0)
	return c
}

// LookAt positions the camera at eye, facing target. up is a hint; the
// actual Up is re-derived so the basis stays orthonormal. If eye and
// target coincide the camera keeps its previous orientation.
func (c *Camera) LookAt(eye, target, up math3d.Vec3) {
	c.Position = eye
	forward := target.Sub(eye)
	if forward.LenSq() < math3d.Epsilon {
		return
	}
	c.Forward = forward.Normalize()
	c.Right = c.Forward.Cross(up).Normalize()
	if c.Right.LenSq() < math3d.Epsilon {
		// up was parallel to forward; pick an arbitrary perpendicular.
		c.Right = c.Forward.Cross(math3d.V3(1, 0, 0)).Normalize()
		if c.Right.LenSq() < math3d.Epsilon {
			c.Right = c.Forward.Cross(math3d.V3(0, 1, 0)).Normalize()
		}
	}
	c.Up = c.Right.Cross(c.Forward)
	c.dollyDist = target.Sub(eye).Len()
}

// Move translates the camera along its own basis: dx along Right,
// dy along Up, dz along Forward.
func (c *Camera) Move(dx, dy, dz float64) {
	c.Position = c.Position.
		Add(c.Right.Scale(dx)).
		Add(c.Up.Scale(dy)).
		Add(c.Forward.Scale(dz))
}

// LookRight yaws the view by angle radians around the camera's Up axis.
// Negative angles look left.
func (c *Camera) LookRight(angle float64) {
	c.Forward = c.Forward.RotateAround(c.Up, -angle)
	c.Right = c.Right.RotateAround(c.Up, -angle)
	c.Reorthonormalize()
}

// LookUp pitches the view by angle radians around the camera's Right
// axis. Negative angles look down. There is no pitch limit; the basis
// rolls through vertical without snapping.
func (c *Camera) LookUp(angle float64) {
	c.Forward = c.Forward.RotateAround(c.Right, angle)
	c.Up = c.Up.RotateAround(c.Right, angle)
	c.Reorthonormalize()
}

// Roll rotates the view by angle radians around the Forward axis.
// Positive angles roll clockwise on screen.
func (c *Camera) Roll(angle float64) {
	c.Right = c.Right.RotateAround(c.Forward, -angle)
	c.Up = c.Up.RotateAround(c.Forward, -angle)
	c.Reorthonormalize()
}

// Reorthonormalize repairs accumulated floating point drift with a
// Gram-Schmidt pass anchored on Forward. Each individual rotation is
// nearly exact; this keeps thousands of them from compounding.
func (c *Camera) Reorthonormalize() {
	c.Forward = c.Forward.Normalize()
	c.Right = c.Right.Sub(c.Forward.Scale(c.Right.Dot(c.Forward))).Normalize()
	c.Up = c.Forward.Cross(c.Right).Negate().Normalize()
}

// AdjustFocal changes the focal length by delta, clamped so it never
// reaches zero.
func (c *Camera) AdjustFocal(delta float64) {
	c.FocalLength += delta
	if c.FocalLength < MinFocalLength {
		c.FocalLength = MinFocalLength
	}
}

// DollyZoom moves the camera forward by step while compensating the
// focal length so the subject plane keeps its apparent size. A positive
// step dollies in (wider perspective), negative dollies out. Opposite
// steps restore both position and focal length exactly. Steps that would
// reach the subject plane are ignored.
func (c *Camera) DollyZoom(step float64) {
	next := c.dollyDist - step
	if next < minDollyDistance {
		return
	}
	c.Position = c.Position.Add(c.Forward.Scale(step))
	c.FocalLength *= next / c.dollyDist
	c.dollyDist = next
}

// DollyDistance returns the current distance to the dolly subject plane.
func (c *Camera) DollyDistance() float64 {
	return c.dollyDist
}

// ToView transforms a world-space point into camera space: x along
// Right, y along Up, z along Forward (positive in front of the camera).
func (c *Camera) ToView(v math3d.Vec3) math3d.Vec3 {
	d := v.Sub(c.Position)
	return math3d.V3(d.Dot(c.Right), d.Dot(c.Up), d.Dot(c.Forward))
}

// ViewMatrix returns the world-to-camera matrix in the OpenGL
// convention (camera looks down -Z). Used for frustum extraction; the
// rasterizer itself transforms vertices with ToView.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	back := c.Forward.Negate()
	return math3d.Mat4{
		c.Right.X, c.Up.X, back.X, 0,
		c.Right.Y, c.Up.Y, back.Y, 0,
		c.Right.Z, c.Up.Z, back.Z, 0,
		-c.Right.Dot(c.Position), -c.Up.Dot(c.Position), -back.Dot(c.Position), 1,
	}
}

// ViewProjection returns the combined view-projection matrix for the
// given aspect ratio (width/height).
func (c *Camera) ViewProjection(aspect float64) math3d.Mat4 {
	proj := math3d.PerspectiveFocal(c.FocalLength, aspect, c.Near, c.Far)
	return proj.Mul(c.ViewMatrix())
}
