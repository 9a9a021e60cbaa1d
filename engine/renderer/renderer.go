package renderer

import (
	"github.com/spaghettifunk/rosella/engine/containers"
	"github.com/spaghettifunk/rosella/engine/core"
)

// Scene is the set of materials and objects the command buffers draw.
type Scene interface {
	Materials() []*Material
	Objects() []*RenderObject
	// Released hands over the objects removed since the last call.
	Released() []*RenderObject
	// Dirty is true after any add or remove.
	Dirty() bool
	MarkClean()
}

/**
 * @brief Renderer owns the frame ring and every swapchain-dependent object.
 * All methods must be called from the render thread.
 */
type Renderer struct {
	config  core.RendererConfig
	device  Device
	window  Window
	scene   Scene
	metrics *core.Metrics

	commandPool  Handle
	allocator    *Allocator
	depthFormat  Format
	camera       *Camera
	clear        ClearValues
	whiteTexture *Texture

	frames         *containers.Ring[Frame]
	swapchain      *Swapchain
	renderPass     Handle
	depth          *DepthBuffer
	framebuffers   []Handle
	commandBuffers []Handle
	imagesInFlight imagesInFlight

	// Set by OnResize and ReloadMaterials, consumed after the next present.
	framebufferResized bool
}

// New creates the swapchain-independent objects and builds the first chain at
// the window's current size.
func New(device Device, window Window, scene Scene, config core.RendererConfig, metrics *core.Metrics) (*Renderer, error) {
	if config.FramesInFlight < 1 {
		err := core.NewConfigurationError("frames_in_flight must be at least 1, got %d", config.FramesInFlight)
		core.LogError(err.Error())
		return nil, err
	}
	if metrics == nil {
		metrics = core.NewMetrics()
	}
	r := &Renderer{
		config:       config,
		device:       device,
		window:       window,
		scene:        scene,
		metrics:      metrics,
		camera:       NewCamera(),
		whiteTexture: whiteTexture(),
		clear: ClearValues{
			Color: config.ClearColor,
			Depth: 1.0,
		},
	}

	var err error
	if r.depthFormat, err = FindSupportedDepthFormat(device); err != nil {
		return nil, err
	}
	if r.commandPool, err = device.CreateCommandPool(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	r.allocator = NewAllocator(device, r.commandPool)
	if r.frames, err = createFrames(device, config.FramesInFlight); err != nil {
		r.Shutdown()
		return nil, err
	}
	if err := r.whiteTexture.upload(device, r.allocator); err != nil {
		r.Shutdown()
		return nil, err
	}

	width, height := r.waitForDrawableSize()
	if err := r.buildChain(width, height); err != nil {
		r.Shutdown()
		return nil, err
	}
	r.scene.MarkClean()
	core.LogInfo("Renderer initialized with %d frames in flight.", r.frames.Len())
	return r, nil
}

// OnResize flags the chain for recreation after the next present.
func (r *Renderer) OnResize(width, height uint32) {
	core.LogDebug("framebuffer resized to %dx%d", width, height)
	r.framebufferResized = true
}

// ReloadMaterials rebuilds every pipeline after the next present, picking up
// shaders and textures queued with Material.Replace.
func (r *Renderer) ReloadMaterials() {
	r.framebufferResized = true
}

// SetFramesInFlight changes the ring size. The ring is rebuilt with the next
// recreation.
func (r *Renderer) SetFramesInFlight(n int) error {
	if n < 1 {
		err := core.NewConfigurationError("frames_in_flight must be at least 1, got %d", n)
		core.LogError(err.Error())
		return err
	}
	r.config.FramesInFlight = n
	r.framebufferResized = true
	return nil
}

// DrawFrame runs one iteration of the render loop. Only fatal errors are
// returned; an out-of-date or suboptimal chain is rebuilt here.
func (r *Renderer) DrawFrame() error {
	if r.scene.Dirty() {
		if err := r.rebuildScene(); err != nil {
			return err
		}
	}

	slot := r.frames.Index()
	frame := r.frames.Current()
	timeout := r.config.FenceTimeoutNS()

	// The resources this slot reused last time must no longer be read.
	if res := r.device.WaitForFence(frame.InFlight, timeout); res != ResultSuccess {
		return apiError("vkWaitForFences", res)
	}

	imageIndex, res := r.device.AcquireNextImage(r.swapchain.Handle, timeout, frame.ImageAvailable)
	if res == ResultErrorOutOfDate {
		r.metrics.RecordDroppedFrame()
		return r.recreate()
	}
	if !res.IsSuccess() {
		return apiError("vkAcquireNextImageKHR", res)
	}

	// Another slot may still be rendering into this image.
	if owner := r.imagesInFlight[imageIndex]; owner != noFrame && owner != slot {
		if res := r.device.WaitForFence(r.frames.At(owner).InFlight, timeout); res != ResultSuccess {
			return apiError("vkWaitForFences (image in flight)", res)
		}
	}
	r.imagesInFlight[imageIndex] = slot

	if err := r.updateUniforms(imageIndex); err != nil {
		return err
	}

	if res := r.device.ResetFence(frame.InFlight); res != ResultSuccess {
		return apiError("vkResetFences", res)
	}
	if res := r.device.SubmitGraphics(SubmitInfo{
		CommandBuffer: r.commandBuffers[imageIndex],
		Wait:          frame.ImageAvailable,
		Signal:        frame.RenderFinished,
		Fence:         frame.InFlight,
	}); res != ResultSuccess {
		return apiError("vkQueueSubmit", res)
	}

	res = r.device.Present(r.swapchain.Handle, imageIndex, frame.RenderFinished)
	if res != ResultSuccess && !res.needsRecreate() {
		return apiError("vkQueuePresentKHR", res)
	}
	if res.needsRecreate() || r.framebufferResized {
		if err := r.recreate(); err != nil {
			return err
		}
	}

	r.frames.Advance()
	return nil
}

// updateUniforms writes every object's uniform block for the acquired image.
// The image index, not the ring slot, picks the copy: it is the one the
// pre-recorded command buffer for this image binds.
func (r *Renderer) updateUniforms(imageIndex uint32) error {
	for _, obj := range r.scene.Objects() {
		if err := obj.writeUniforms(r.allocator, imageIndex, r.camera); err != nil {
			core.LogError(err.Error())
			return err
		}
	}
	return nil
}

// Shutdown waits for the device and releases everything the renderer
// created. The device itself belongs to the caller.
func (r *Renderer) Shutdown() {
	if res := r.device.WaitIdle(); res != ResultSuccess {
		core.LogWarn("vkDeviceWaitIdle returned %s during shutdown", res)
	}
	runTeardown(r.shutdownStages())
	core.LogInfo("Renderer shut down.")
}

func (r *Renderer) Camera() *Camera {
	return r.camera
}

func (r *Renderer) Metrics() *core.Metrics {
	return r.metrics
}

// FrameIndex is the current ring slot.
func (r *Renderer) FrameIndex() int {
	return r.frames.Index()
}

func (r *Renderer) FrameCount() int {
	return r.frames.Len()
}

func (r *Renderer) Swapchain() *Swapchain {
	return r.swapchain
}

func (r *Renderer) CommandBufferCount() int {
	return len(r.commandBuffers)
}

func (r *Renderer) FramebufferCount() int {
	return len(r.framebuffers)
}

func (r *Renderer) DepthFormat() Format {
	return r.depthFormat
}

// ImageOwner returns the ring slot tagged on a swapchain image, or -1.
func (r *Renderer) ImageOwner(imageIndex int) int {
	return r.imagesInFlight[imageIndex]
}

// CommandBuffer is the pre-recorded buffer submitted for a swapchain image.
func (r *Renderer) CommandBuffer(imageIndex int) Handle {
	return r.commandBuffers[imageIndex]
}
