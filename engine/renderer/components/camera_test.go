package components

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/rosella/engine/renderer"
)

func TestCameraDefaultEye(t *testing.T) {
	c := NewCamera()
	if !c.Eye().ApproxEqualThreshold(mgl32.Vec3{2, 2, 2}, 1e-4) {
		t.Fatalf("expected eye at (2, 2, 2), got %v", c.Eye())
	}
}

func TestCameraPitchClamps(t *testing.T) {
	c := NewCamera()
	c.Pitch(10)
	if c.PitchAngle != pitchLimit {
		t.Errorf("expected pitch clamped to %f, got %f", pitchLimit, c.PitchAngle)
	}
	c.Pitch(-20)
	if c.PitchAngle != -pitchLimit {
		t.Errorf("expected pitch clamped to %f, got %f", -pitchLimit, c.PitchAngle)
	}
}

func TestCameraYawKeepsDistance(t *testing.T) {
	c := NewCamera()
	c.Yaw(1.3)
	if d := c.Eye().Sub(c.Target).Len(); mgl32.Abs(d-c.Distance) > 1e-4 {
		t.Errorf("expected distance %f, got %f", c.Distance, d)
	}
	c.Zoom(100)
	if c.Distance != minDistance {
		t.Errorf("expected zoom to stop at %f, got %f", minDistance, c.Distance)
	}
}

func TestCameraApply(t *testing.T) {
	c := NewCamera()
	c.Yaw(0.5)
	dst := renderer.NewCamera()
	c.Apply(dst)
	if dst.Eye != c.Eye() {
		t.Errorf("expected eye %v, got %v", c.Eye(), dst.Eye)
	}
	if dst.View != mgl32.LookAtV(c.Eye(), c.Target, mgl32.Vec3{0, 0, 1}) {
		t.Errorf("view was not rebuilt after yaw")
	}
}
