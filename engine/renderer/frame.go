package renderer

import (
	"github.com/spaghettifunk/rosella/engine/containers"
	"github.com/spaghettifunk/rosella/engine/core"
)

// Frame is one ring slot of synchronization objects. Its fence is signaled
// whenever no GPU work tagged with it is outstanding.
type Frame struct {
	ImageAvailable Handle
	RenderFinished Handle
	InFlight       Handle
}

// createFrames builds n frames with signaled fences so the first wait on each
// returns at once.
func createFrames(device Device, n int) (*containers.Ring[Frame], error) {
	frames := make([]Frame, 0, n)
	release := func() {
		for _, f := range frames {
			f.destroy(device)
		}
	}
	for i := 0; i < n; i++ {
		var f Frame
		var err error
		if f.ImageAvailable, err = device.CreateSemaphore(); err != nil {
			core.LogError(err.Error())
			release()
			return nil, err
		}
		if f.RenderFinished, err = device.CreateSemaphore(); err != nil {
			core.LogError(err.Error())
			f.destroy(device)
			release()
			return nil, err
		}
		if f.InFlight, err = device.CreateFence(true); err != nil {
			core.LogError(err.Error())
			f.destroy(device)
			release()
			return nil, err
		}
		frames = append(frames, f)
	}
	return containers.NewRing(frames), nil
}

func (f Frame) destroy(device Device) {
	if !f.ImageAvailable.IsNull() {
		device.DestroySemaphore(f.ImageAvailable)
	}
	if !f.RenderFinished.IsNull() {
		device.DestroySemaphore(f.RenderFinished)
	}
	if !f.InFlight.IsNull() {
		device.DestroyFence(f.InFlight)
	}
}

// noFrame marks a swapchain image no ring slot owns.
const noFrame = -1

// imagesInFlight maps a swapchain image index to the ring slot whose fence
// guards its resources.
type imagesInFlight []int

func newImagesInFlight(imageCount int) imagesInFlight {
	owners := make(imagesInFlight, imageCount)
	for i := range owners {
		owners[i] = noFrame
	}
	return owners
}
