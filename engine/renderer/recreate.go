package renderer

import (
	"github.com/spaghettifunk/rosella/engine/core"
)

// waitForDrawableSize pumps window events while the framebuffer has no area,
// which is what a minimized window reports.
func (r *Renderer) waitForDrawableSize() (uint32, uint32) {
	width, height := r.window.FramebufferSize()
	for width <= 0 || height <= 0 {
		r.window.WaitEvents()
		width, height = r.window.FramebufferSize()
	}
	return uint32(width), uint32(height)
}

// recreate replaces the swapchain and everything built on it. The device is
// idle before anything is destroyed, so no GPU work can still reference the
// old objects.
func (r *Renderer) recreate() error {
	width, height := r.waitForDrawableSize()
	core.LogDebug("recreating swapchain for %dx%d", width, height)

	if res := r.device.WaitIdle(); res != ResultSuccess {
		return apiError("vkDeviceWaitIdle", res)
	}
	r.framebufferResized = false

	runTeardown(r.swapchainStages())

	for _, m := range r.scene.Materials() {
		if m.hasPending() {
			m.applyPending(r.device, r.whiteTexture)
		}
	}
	if r.frames.Len() != r.config.FramesInFlight {
		r.destroyFrames()
		frames, err := createFrames(r.device, r.config.FramesInFlight)
		if err != nil {
			return err
		}
		r.frames = frames
	}

	if err := r.buildChain(width, height); err != nil {
		return err
	}
	r.scene.MarkClean()
	r.metrics.RecordRecreation()
	core.LogDebug("swapchain recreated: %dx%d, %d images",
		r.swapchain.Extent.Width, r.swapchain.Extent.Height, r.swapchain.ImageCount())
	return nil
}
