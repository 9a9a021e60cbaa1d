package renderer

// Device is everything the frame lifecycle asks of a graphics backend. Every
// object is addressed by a generation-checked Handle, so a destroyed object
// can never be used or released twice.
//
// The Vulkan implementation lives in engine/renderer/vulkan, an in-memory one
// for tests in engine/renderer/rendertest.
type Device interface {
	SurfaceDevice
	SyncDevice
	MemoryDevice
	PipelineDevice
	CommandDevice
}

type SwapchainCreateInfo struct {
	Format        SurfaceFormat
	PresentMode   PresentMode
	Extent        Extent2D
	MinImageCount uint32
	SharingMode   SharingMode
	// Only set for SharingModeConcurrent.
	QueueFamilies []uint32
}

type SurfaceDevice interface {
	QueueFamilies() QueueFamilyIndices
	QueryChainSupport() (ChainSupport, error)
	// DepthFormatSupported reports whether optimal tiling of f supports
	// depth-stencil attachments.
	DepthFormatSupported(f Format) bool
	CreateSwapchain(info SwapchainCreateInfo) (Handle, error)
	SwapchainImages(swapchain Handle) ([]Handle, error)
	DestroySwapchain(swapchain Handle)
	CreateImageView(image Handle, format Format, aspect ImageAspect) (Handle, error)
	DestroyImageView(view Handle)
	AcquireNextImage(swapchain Handle, timeoutNS uint64, signal Handle) (uint32, Result)
	Present(swapchain Handle, imageIndex uint32, wait Handle) Result
	WaitIdle() Result
}

type SyncDevice interface {
	CreateSemaphore() (Handle, error)
	DestroySemaphore(semaphore Handle)
	CreateFence(signaled bool) (Handle, error)
	DestroyFence(fence Handle)
	WaitForFence(fence Handle, timeoutNS uint64) Result
	ResetFence(fence Handle) Result
}

type MemoryDevice interface {
	// CreateBuffer returns a buffer bound to memory that satisfies both the
	// residency hint and the memory types the device allows for usage.
	CreateBuffer(size uint64, usage BufferUsage, residency Residency) (Handle, error)
	DestroyBuffer(buffer Handle)
	// MapBuffer is only valid for host-visible residencies.
	MapBuffer(buffer Handle) ([]byte, error)
	UnmapBuffer(buffer Handle)
	CreateImage(info ImageCreateInfo) (Handle, error)
	DestroyImage(image Handle)
	CreateSampler() (Handle, error)
	DestroySampler(sampler Handle)
}

type PipelineDevice interface {
	CreateRenderPass(color Format, depth Format) (Handle, error)
	DestroyRenderPass(pass Handle)
	CreateFramebuffer(pass Handle, attachments []Handle, extent Extent2D) (Handle, error)
	DestroyFramebuffer(framebuffer Handle)
	CreateShaderModule(code []uint32) (Handle, error)
	DestroyShaderModule(module Handle)
	CreateDescriptorSetLayout(bindings []DescriptorBinding) (Handle, error)
	DestroyDescriptorSetLayout(layout Handle)
	CreateDescriptorPool(sizes []DescriptorPoolSize, maxSets uint32) (Handle, error)
	// DestroyDescriptorPool also releases every set allocated from it.
	DestroyDescriptorPool(pool Handle)
	AllocateDescriptorSets(pool Handle, layout Handle, count uint32) ([]Handle, error)
	UpdateDescriptorSet(set Handle, writes []DescriptorWrite)
	CreateGraphicsPipeline(info PipelineCreateInfo) (pipeline Handle, layout Handle, err error)
	DestroyPipeline(pipeline Handle, layout Handle)
}

type CommandDevice interface {
	CreateCommandPool() (Handle, error)
	DestroyCommandPool(pool Handle)
	AllocateCommandBuffers(pool Handle, count uint32) ([]Handle, error)
	FreeCommandBuffers(pool Handle, buffers []Handle)
	BeginCommandBuffer(buffer Handle, singleUse bool) error
	EndCommandBuffer(buffer Handle) error

	CmdBeginRenderPass(buffer, pass, framebuffer Handle, extent Extent2D, clear ClearValues)
	CmdEndRenderPass(buffer Handle)
	CmdSetViewportScissor(buffer Handle, extent Extent2D)
	CmdBindPipeline(buffer, pipeline Handle)
	CmdBindDescriptorSet(buffer, layout, set Handle)
	CmdBindVertexBuffer(buffer, vertices Handle)
	CmdBindIndexBuffer(buffer, indices Handle)
	CmdPushConstants(buffer, layout Handle, stage ShaderStage, data []byte)
	CmdDrawIndexed(buffer Handle, indexCount uint32)
	CmdCopyBuffer(buffer, src, dst Handle, size uint64)
	CmdCopyBufferToImage(buffer, src, image Handle, extent Extent2D)
	CmdTransitionImageLayout(buffer, image Handle, format Format, from, to ImageLayout)

	// SubmitGraphics waits on info.Wait at the color-attachment-output stage.
	SubmitGraphics(info SubmitInfo) Result
	QueueWaitIdle() Result
}

// Window is the part of the platform window the renderer needs.
type Window interface {
	// FramebufferSize is the drawable size in pixels.
	FramebufferSize() (width, height int)
	// WaitEvents blocks until the platform delivers the next batch of events.
	WaitEvents()
}
