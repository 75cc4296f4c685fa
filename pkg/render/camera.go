package render

import (
	"math"

	"github.com/termforge/charcoal/pkg/math3d"
)

// Camera holds a look-at view and a perspective projection, with the
// derived matrices cached and recomputed only after a setter runs.
type Camera struct {
	// View parameters
	Eye    math3d.Vec3
	Target math3d.Vec3
	Up     math3d.Vec3

	// Projection parameters
	FOV         float64 // vertical field of view in radians
	AspectRatio float64 // width / height
	Near        float64
	Far         float64

	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
}

// NewCamera creates a camera at (0, 0, 5) looking at the origin with a
// 60 degree field of view.
func NewCamera() *Camera {
	return &Camera{
		Eye:         math3d.V3(0, 0, 5),
		Target:      math3d.Zero3(),
		Up:          math3d.Up(),
		FOV:         math.Pi / 3,
		AspectRatio: 16.0 / 9.0,
		Near:        0.1,
		Far:         100,
		viewDirty:   true,
		projDirty:   true,
	}
}

// SetView sets the camera position and orientation.
func (c *Camera) SetView(eye, target, up math3d.Vec3) {
	c.Eye = eye
	c.Target = target
	c.Up = up
	c.viewDirty = true
}

// SetEye moves the camera without changing its target.
func (c *Camera) SetEye(eye math3d.Vec3) {
	c.Eye = eye
	c.viewDirty = true
}

// SetFOV sets the vertical field of view (in radians).
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.projDirty = true
}

// SetAspectRatio sets the projection aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.projDirty = true
}

// SetClipPlanes sets the near and far clipping distances.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.projDirty = true
}

// ViewMatrix returns the world-to-camera matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.LookAt(c.Eye, c.Target, c.Up)
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the perspective projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projDirty = false
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns the combined world-to-clip matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	if c.viewDirty || c.projDirty {
		c.viewProjMatrix = c.ProjectionMatrix().Mul(c.ViewMatrix())
	}
	return c.viewProjMatrix
}

// Forward returns the unit vector from the eye toward the target.
func (c *Camera) Forward() math3d.Vec3 {
	return c.Target.Sub(c.Eye).Normalize()
}
