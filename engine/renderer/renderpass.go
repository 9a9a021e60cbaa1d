package renderer

import "github.com/spaghettifunk/rosella/engine/core"

// CreateFramebuffers builds one framebuffer per swapchain view, each sharing
// the depth view. On failure the ones already built are released.
func CreateFramebuffers(device Device, pass Handle, sc *Swapchain, depth *DepthBuffer) ([]Handle, error) {
	framebuffers := make([]Handle, 0, len(sc.Views))
	for _, view := range sc.Views {
		fb, err := device.CreateFramebuffer(pass, []Handle{view, depth.View}, sc.Extent)
		if err != nil {
			core.LogError(err.Error())
			DestroyFramebuffers(device, framebuffers)
			return nil, err
		}
		framebuffers = append(framebuffers, fb)
	}
	return framebuffers, nil
}

func DestroyFramebuffers(device Device, framebuffers []Handle) {
	for _, fb := range framebuffers {
		device.DestroyFramebuffer(fb)
	}
}
