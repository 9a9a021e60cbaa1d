package components

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/rosella/engine/renderer"
)

// Clamp pitch short of the poles to avoid gimbal lock.
const pitchLimit = float32(1.55334306) // 89 degrees

const minDistance = 0.5

/**
 * Camera orbits a target point. Yaw turns around the up (Z) axis, pitch
 * tilts towards it. Call Apply to push the view into the renderer's camera.
 */
type Camera struct {
	Target   mgl32.Vec3
	Distance float32
	// Radians.
	YawAngle   float32
	PitchAngle float32

	isDirty bool
	view    mgl32.Mat4
}

// NewCamera places the camera so that its eye matches the renderer default.
func NewCamera() *Camera {
	camera := &Camera{}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.Target = mgl32.Vec3{}
	c.Distance = mgl32.Vec3{2, 2, 2}.Len()
	c.YawAngle = mgl32.DegToRad(45)
	c.PitchAngle = float32(0.61547971) // asin(1/sqrt(3))
	c.isDirty = true
}

func (c *Camera) Eye() mgl32.Vec3 {
	return c.Target.Add(mgl32.SphericalToCartesian(c.Distance, mgl32.DegToRad(90)-c.PitchAngle, c.YawAngle))
}

func (c *Camera) View() mgl32.Mat4 {
	if c.isDirty {
		c.view = mgl32.LookAtV(c.Eye(), c.Target, mgl32.Vec3{0, 0, 1})
		c.isDirty = false
	}
	return c.view
}

func (c *Camera) Yaw(amount float32) {
	c.YawAngle += amount
	c.isDirty = true
}

func (c *Camera) Pitch(amount float32) {
	c.PitchAngle = mgl32.Clamp(c.PitchAngle+amount, -pitchLimit, pitchLimit)
	c.isDirty = true
}

// Zoom moves towards the target by amount, never closer than minDistance.
func (c *Camera) Zoom(amount float32) {
	c.Distance -= amount
	if c.Distance < minDistance {
		c.Distance = minDistance
	}
	c.isDirty = true
}

// Apply writes the eye, target and view into the renderer camera. Projection
// is left to the renderer, which rebuilds it on every resize.
func (c *Camera) Apply(dst *renderer.Camera) {
	dst.Eye = c.Eye()
	dst.Center = c.Target
	dst.Up = mgl32.Vec3{0, 0, 1}
	dst.View = c.View()
}
