package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/rosella/engine/containers"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/renderer"
)

// SurfaceSource is the part of a platform window that Vulkan needs to create
// an instance and a presentation surface. *glfw.Window satisfies it.
type SurfaceSource interface {
	GetRequiredInstanceExtensions() []string
	CreateWindowSurface(instance interface{}, allocCallbacks unsafe.Pointer) (uintptr, error)
}

type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize
	Mapped bool
}

type VulkanImage struct {
	Handle vk.Image
	// Swapchain images have no memory of their own.
	Memory vk.DeviceMemory
	Format vk.Format
	Width  uint32
	Height uint32
	owned  bool
}

type VulkanDescriptorPool struct {
	Handle vk.DescriptorPool
	Sets   []renderer.Handle
}

// VulkanContext owns the instance, the surface and the logical device, plus
// every object created through it. Objects are addressed by Handles so the
// renderer never holds a raw Vulkan handle.
type VulkanContext struct {
	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugMessenger vk.DebugReportCallback

	Device *VulkanDevice

	locks *VulkanLockPool

	swapchains      *containers.HandleTable[vk.Swapchain]
	images          *containers.HandleTable[*VulkanImage]
	views           *containers.HandleTable[vk.ImageView]
	semaphores      *containers.HandleTable[vk.Semaphore]
	fences          *containers.HandleTable[*VulkanFence]
	buffers         *containers.HandleTable[*VulkanBuffer]
	samplers        *containers.HandleTable[vk.Sampler]
	renderPasses    *containers.HandleTable[vk.RenderPass]
	framebuffers    *containers.HandleTable[vk.Framebuffer]
	shaderModules   *containers.HandleTable[vk.ShaderModule]
	setLayouts      *containers.HandleTable[vk.DescriptorSetLayout]
	descriptorPools *containers.HandleTable[*VulkanDescriptorPool]
	descriptorSets  *containers.HandleTable[vk.DescriptorSet]
	pipelines       *containers.HandleTable[vk.Pipeline]
	pipelineLayouts *containers.HandleTable[vk.PipelineLayout]
	commandPools    *containers.HandleTable[vk.CommandPool]
	commandBuffers  *containers.HandleTable[*VulkanCommandBuffer]
}

// New creates the instance, the surface and the logical device for window.
func New(appName string, window SurfaceSource, config core.RendererConfig) (*VulkanContext, error) {
	vc := &VulkanContext{
		Allocator: nil,
		locks:     NewVulkanLockPool(),

		swapchains:      containers.NewHandleTable[vk.Swapchain](2),
		images:          containers.NewHandleTable[*VulkanImage](16),
		views:           containers.NewHandleTable[vk.ImageView](16),
		semaphores:      containers.NewHandleTable[vk.Semaphore](8),
		fences:          containers.NewHandleTable[*VulkanFence](4),
		buffers:         containers.NewHandleTable[*VulkanBuffer](64),
		samplers:        containers.NewHandleTable[vk.Sampler](8),
		renderPasses:    containers.NewHandleTable[vk.RenderPass](1),
		framebuffers:    containers.NewHandleTable[vk.Framebuffer](4),
		shaderModules:   containers.NewHandleTable[vk.ShaderModule](8),
		setLayouts:      containers.NewHandleTable[vk.DescriptorSetLayout](4),
		descriptorPools: containers.NewHandleTable[*VulkanDescriptorPool](4),
		descriptorSets:  containers.NewHandleTable[vk.DescriptorSet](32),
		pipelines:       containers.NewHandleTable[vk.Pipeline](4),
		pipelineLayouts: containers.NewHandleTable[vk.PipelineLayout](4),
		commandPools:    containers.NewHandleTable[vk.CommandPool](1),
		commandBuffers:  containers.NewHandleTable[*VulkanCommandBuffer](8),
	}

	if err := vc.createInstance(appName, window.GetRequiredInstanceExtensions(), config.Validation); err != nil {
		return nil, err
	}

	core.LogDebug("Creating Vulkan surface...")
	surface, err := window.CreateWindowSurface(vc.Instance, nil)
	if err != nil {
		core.LogError("Vulkan surface creation failed: %s", err)
		vc.Destroy()
		return nil, core.NewConfigurationError("surface creation failed: %s", err)
	}
	vc.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	if err := DeviceCreate(vc); err != nil {
		vc.Destroy()
		return nil, err
	}
	vc.locks.SetQueueFamily(vc.Device.GraphicsQueueIndex)
	vc.locks.SetQueueFamily(vc.Device.PresentQueueIndex)

	return vc, nil
}

// Destroy releases the device, the surface and the instance. Every object
// created through the context must already be destroyed.
func (vc *VulkanContext) Destroy() {
	if vc.Device != nil && vc.Device.LogicalDevice != nil {
		DeviceDestroy(vc)
	}
	if vc.Surface != vk.NullSurface {
		core.LogDebug("Destroying Vulkan surface...")
		vk.DestroySurface(vc.Instance, vc.Surface, vc.Allocator)
		vc.Surface = vk.NullSurface
	}
	if vc.debugMessenger != vk.NullDebugReportCallback {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(vc.Instance, vc.debugMessenger, vc.Allocator)
		vc.debugMessenger = vk.NullDebugReportCallback
	}
	if vc.Instance != nil {
		core.LogDebug("Destroying Vulkan instance...")
		vk.DestroyInstance(vc.Instance, vc.Allocator)
		vc.Instance = nil
	}
}

func (vc *VulkanContext) FindMemoryIndex(typeFilter, propertyFlags uint32) int32 {
	memoryProperties := vc.Device.Memory
	memoryProperties.Deref()

	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		// Check each memory type to see if its bit is set to 1.
		memoryProperties.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (uint32(memoryProperties.MemoryTypes[i].PropertyFlags)&propertyFlags) == propertyFlags {
			return int32(i)
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return -1
}

var _ renderer.Device = (*VulkanContext)(nil)
