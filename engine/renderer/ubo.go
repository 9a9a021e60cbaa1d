package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
)

// BasicUboSize is three column-major 4x4 float matrices.
const BasicUboSize = 3 * 16 * 4

// BasicUbo is the per-object uniform block bound at binding 0.
type BasicUbo struct {
	Model      mgl32.Mat4
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

func (u *BasicUbo) Pack(dst []byte) {
	putFloats(dst[0:], u.Model[:]...)
	putFloats(dst[64:], u.View[:]...)
	putFloats(dst[128:], u.Projection[:]...)
}

// PushConstantSize is the vec3 object position pushed per draw.
const PushConstantSize = 12

func packPushConstant(position mgl32.Vec3) []byte {
	buf := make([]byte, PushConstantSize)
	putFloats(buf, position[:]...)
	return buf
}

// Camera holds the view and projection shared by every object.
type Camera struct {
	Eye    mgl32.Vec3
	Center mgl32.Vec3
	Up     mgl32.Vec3
	FovY   float32
	Near   float32
	Far    float32

	View       mgl32.Mat4
	Projection mgl32.Mat4
}

func NewCamera() *Camera {
	return &Camera{
		Eye:    mgl32.Vec3{2, 2, 2},
		Center: mgl32.Vec3{0, 0, 0},
		Up:     mgl32.Vec3{0, 0, 1},
		FovY:   mgl32.DegToRad(45),
		Near:   0.1,
		Far:    10,
	}
}

// Resize rebuilds view and projection for a new swapchain extent. Vulkan clip
// space has Y pointing down, so the projection is flipped.
func (c *Camera) Resize(extent Extent2D) {
	aspect := float32(1)
	if extent.Height != 0 {
		aspect = float32(extent.Width) / float32(extent.Height)
	}
	c.View = mgl32.LookAtV(c.Eye, c.Center, c.Up)
	c.Projection = mgl32.Perspective(c.FovY, aspect, c.Near, c.Far)
	c.Projection[5] *= -1
}
