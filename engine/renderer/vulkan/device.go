package vulkan

import (
	"runtime"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/renderer"
)

const portabilitySubsetExtensionName = "VK_KHR_portability_subset"

type VulkanDevice struct {
	PhysicalDevice     vk.PhysicalDevice
	LogicalDevice      vk.Device
	GraphicsQueueIndex uint32
	PresentQueueIndex  uint32

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue

	Properties vk.PhysicalDeviceProperties
	Features   vk.PhysicalDeviceFeatures
	Memory     vk.PhysicalDeviceMemoryProperties
}

type VulkanPhysicalDeviceRequirements struct {
	Graphics             bool
	Present              bool
	DeviceExtensionNames []string
	SamplerAnisotropy    bool
	DiscreteGPU          bool
}

// VulkanPhysicalDeviceQueueFamilyInfo records which families were found. A
// family index of zero is valid, so presence is tracked separately.
type VulkanPhysicalDeviceQueueFamilyInfo struct {
	GraphicsFamilyIndex uint32
	PresentFamilyIndex  uint32
	HasGraphics         bool
	HasPresent          bool
}

func DeviceCreate(context *VulkanContext) error {
	if err := SelectPhysicalDevice(context); err != nil {
		return err
	}

	core.LogInfo("Creating logical device...")

	// NOTE: Do not create additional queues for shared indices.
	indices := []uint32{context.Device.GraphicsQueueIndex}
	if context.Device.PresentQueueIndex != context.Device.GraphicsQueueIndex {
		indices = append(indices, context.Device.PresentQueueIndex)
	}

	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(indices))
	for i := range indices {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: indices[i],
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	deviceFeatures := vk.PhysicalDeviceFeatures{
		SamplerAnisotropy: context.Device.Features.SamplerAnisotropy,
	}

	extensionNames := []string{vk.KhrSwapchainExtensionName}
	available, err := deviceExtensions(context.Device.PhysicalDevice)
	if err != nil {
		return err
	}
	if available[portabilitySubsetExtensionName] {
		core.LogInfo("Adding required extension '%s'.", portabilitySubsetExtensionName)
		extensionNames = append(extensionNames, portabilitySubsetExtensionName)
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{deviceFeatures},
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensionNames),
		// Deprecated and ignored, so pass nothing.
		EnabledLayerCount:   0,
		PpEnabledLayerNames: nil,
	}

	var logical vk.Device
	if res := vk.CreateDevice(context.Device.PhysicalDevice, &deviceCreateInfo, context.Allocator, &logical); res != vk.Success {
		return resultError("vkCreateDevice", res)
	}
	context.Device.LogicalDevice = logical
	core.LogInfo("Logical device created.")

	var graphics, present vk.Queue
	vk.GetDeviceQueue(logical, context.Device.GraphicsQueueIndex, 0, &graphics)
	vk.GetDeviceQueue(logical, context.Device.PresentQueueIndex, 0, &present)
	context.Device.GraphicsQueue = graphics
	context.Device.PresentQueue = present
	core.LogInfo("Queues obtained.")

	return nil
}

func DeviceDestroy(context *VulkanContext) {
	context.Device.GraphicsQueue = nil
	context.Device.PresentQueue = nil

	core.LogInfo("Destroying logical device...")
	vk.DestroyDevice(context.Device.LogicalDevice, context.Allocator)
	context.Device.LogicalDevice = nil

	// Physical devices are not destroyed.
	context.Device.PhysicalDevice = nil
}

func deviceExtensions(device vk.PhysicalDevice) (map[string]bool, error) {
	var count uint32
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &count, nil); res != vk.Success {
		return nil, resultError("vkEnumerateDeviceExtensionProperties", res)
	}
	props := make([]vk.ExtensionProperties, count)
	if count > 0 {
		if res := vk.EnumerateDeviceExtensionProperties(device, "", &count, props); res != vk.Success {
			return nil, resultError("vkEnumerateDeviceExtensionProperties", res)
		}
	}
	out := make(map[string]bool, count)
	for i := range props {
		props[i].Deref()
		out[cString(props[i].ExtensionName[:])] = true
	}
	return out, nil
}

// DeviceQuerySwapchainSupport reads what device can do with surface.
func DeviceQuerySwapchainSupport(device vk.PhysicalDevice, surface vk.Surface) (renderer.ChainSupport, error) {
	support := renderer.ChainSupport{}

	var caps vk.SurfaceCapabilities
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(device, surface, &caps); res != vk.Success {
		return support, resultError("vkGetPhysicalDeviceSurfaceCapabilitiesKHR", res)
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	support.Capabilities = renderer.SurfaceCapabilities{
		MinImageCount:  caps.MinImageCount,
		MaxImageCount:  caps.MaxImageCount,
		CurrentExtent:  renderer.Extent2D{Width: caps.CurrentExtent.Width, Height: caps.CurrentExtent.Height},
		MinImageExtent: renderer.Extent2D{Width: caps.MinImageExtent.Width, Height: caps.MinImageExtent.Height},
		MaxImageExtent: renderer.Extent2D{Width: caps.MaxImageExtent.Width, Height: caps.MaxImageExtent.Height},
	}

	var formatCount uint32
	if res := vk.GetPhysicalDeviceSurfaceFormats(device, surface, &formatCount, nil); res != vk.Success {
		return support, resultError("vkGetPhysicalDeviceSurfaceFormatsKHR", res)
	}
	if formatCount != 0 {
		formats := make([]vk.SurfaceFormat, formatCount)
		if res := vk.GetPhysicalDeviceSurfaceFormats(device, surface, &formatCount, formats); res != vk.Success {
			return support, resultError("vkGetPhysicalDeviceSurfaceFormatsKHR", res)
		}
		for i := range formats {
			formats[i].Deref()
			support.Formats = append(support.Formats, renderer.SurfaceFormat{
				Format:     renderer.Format(formats[i].Format),
				ColorSpace: renderer.ColorSpace(formats[i].ColorSpace),
			})
		}
	}

	var modeCount uint32
	if res := vk.GetPhysicalDeviceSurfacePresentModes(device, surface, &modeCount, nil); res != vk.Success {
		return support, resultError("vkGetPhysicalDeviceSurfacePresentModesKHR", res)
	}
	if modeCount != 0 {
		modes := make([]vk.PresentMode, modeCount)
		if res := vk.GetPhysicalDeviceSurfacePresentModes(device, surface, &modeCount, modes); res != vk.Success {
			return support, resultError("vkGetPhysicalDeviceSurfacePresentModesKHR", res)
		}
		for _, m := range modes {
			support.PresentModes = append(support.PresentModes, renderer.PresentMode(m))
		}
	}
	return support, nil
}

func SelectPhysicalDevice(context *VulkanContext) error {
	var physicalDeviceCount uint32
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, nil); res != vk.Success {
		return resultError("vkEnumeratePhysicalDevices", res)
	}
	if physicalDeviceCount == 0 {
		return core.NewConfigurationError("no devices which support Vulkan were found")
	}

	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, physicalDevices); res != vk.Success {
		return resultError("vkEnumeratePhysicalDevices", res)
	}

	requirements := VulkanPhysicalDeviceRequirements{
		Graphics:             true,
		Present:              true,
		SamplerAnisotropy:    true,
		DiscreteGPU:          false,
		DeviceExtensionNames: []string{vk.KhrSwapchainExtensionName},
	}
	if runtime.GOOS == "darwin" {
		requirements.SamplerAnisotropy = false
	}

	for _, physical := range physicalDevices {
		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(physical, &properties)
		properties.Deref()

		var features vk.PhysicalDeviceFeatures
		vk.GetPhysicalDeviceFeatures(physical, &features)
		features.Deref()

		var memory vk.PhysicalDeviceMemoryProperties
		vk.GetPhysicalDeviceMemoryProperties(physical, &memory)
		memory.Deref()

		queueInfo, ok := PhysicalDeviceMeetsRequirements(physical, context.Surface, &properties, &features, &requirements)
		if !ok {
			continue
		}

		logDeviceInfo(&properties, &memory)

		context.Device = &VulkanDevice{
			PhysicalDevice:     physical,
			GraphicsQueueIndex: queueInfo.GraphicsFamilyIndex,
			PresentQueueIndex:  queueInfo.PresentFamilyIndex,
			Properties:         properties,
			Features:           features,
			Memory:             memory,
		}
		core.LogInfo("Physical device selected.")
		return nil
	}

	return core.NewConfigurationError("no physical devices were found which meet the requirements")
}

func logDeviceInfo(properties *vk.PhysicalDeviceProperties, memory *vk.PhysicalDeviceMemoryProperties) {
	core.LogInfo("Selected device: '%s'.", cString(properties.DeviceName[:]))
	switch properties.DeviceType {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		core.LogInfo("GPU type is Integrated.")
	case vk.PhysicalDeviceTypeDiscreteGpu:
		core.LogInfo("GPU type is Discrete.")
	case vk.PhysicalDeviceTypeVirtualGpu:
		core.LogInfo("GPU type is Virtual.")
	case vk.PhysicalDeviceTypeCpu:
		core.LogInfo("GPU type is CPU.")
	default:
		core.LogInfo("GPU type is Unknown.")
	}

	core.LogInfo(
		"GPU Driver version: %d.%d.%d",
		vk.Version(properties.DriverVersion).Major(),
		vk.Version(properties.DriverVersion).Minor(),
		vk.Version(properties.DriverVersion).Patch(),
	)
	core.LogInfo(
		"Vulkan API version: %d.%d.%d",
		vk.Version(properties.ApiVersion).Major(),
		vk.Version(properties.ApiVersion).Minor(),
		vk.Version(properties.ApiVersion).Patch(),
	)

	for j := uint32(0); j < memory.MemoryHeapCount; j++ {
		memory.MemoryHeaps[j].Deref()
		sizeGib := float64(memory.MemoryHeaps[j].Size) / 1024.0 / 1024.0 / 1024.0
		if vk.MemoryHeapFlagBits(memory.MemoryHeaps[j].Flags)&vk.MemoryHeapDeviceLocalBit != 0 {
			core.LogInfo("Local GPU memory: %.2f GiB", sizeGib)
		} else {
			core.LogInfo("Shared System memory: %.2f GiB", sizeGib)
		}
	}
}

func PhysicalDeviceMeetsRequirements(device vk.PhysicalDevice, surface vk.Surface, properties *vk.PhysicalDeviceProperties, features *vk.PhysicalDeviceFeatures, requirements *VulkanPhysicalDeviceRequirements) (VulkanPhysicalDeviceQueueFamilyInfo, bool) {
	info := VulkanPhysicalDeviceQueueFamilyInfo{}
	name := cString(properties.DeviceName[:])

	if requirements.DiscreteGPU && properties.DeviceType != vk.PhysicalDeviceTypeDiscreteGpu {
		core.LogInfo("Device is not a discrete GPU, and one is required. Skipping.")
		return info, false
	}

	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies)

	for i := uint32(0); i < queueFamilyCount; i++ {
		queueFamilies[i].Deref()

		if !info.HasGraphics && vk.QueueFlagBits(queueFamilies[i].QueueFlags)&vk.QueueGraphicsBit != 0 {
			info.GraphicsFamilyIndex = i
			info.HasGraphics = true
		}

		var supportsPresent vk.Bool32
		if res := vk.GetPhysicalDeviceSurfaceSupport(device, i, surface, &supportsPresent); res != vk.Success {
			core.LogWarn("vkGetPhysicalDeviceSurfaceSupportKHR failed on '%s': %s", name, VulkanResultString(res, false))
			return info, false
		}
		if supportsPresent == vk.True {
			// Prefer a family that does both.
			if !info.HasPresent || (info.HasGraphics && info.GraphicsFamilyIndex == i) {
				info.PresentFamilyIndex = i
				info.HasPresent = true
			}
		}
	}

	core.LogInfo("Graphics | Present | Name")
	core.LogInfo("   %5t |   %5t | %s", info.HasGraphics, info.HasPresent, name)

	if (requirements.Graphics && !info.HasGraphics) || (requirements.Present && !info.HasPresent) {
		return info, false
	}
	core.LogDebug("Graphics Family Index: %d", info.GraphicsFamilyIndex)
	core.LogDebug("Present Family Index:  %d", info.PresentFamilyIndex)

	// Device extensions come first: surface queries are only meaningful with
	// swapchain support.
	available, err := deviceExtensions(device)
	if err != nil {
		return info, false
	}
	for _, ext := range requirements.DeviceExtensionNames {
		if !available[ext] {
			core.LogInfo("Required extension not found: '%s', skipping device.", ext)
			return info, false
		}
	}

	support, err := DeviceQuerySwapchainSupport(device, surface)
	if err != nil || len(support.Formats) == 0 || len(support.PresentModes) == 0 {
		core.LogInfo("Required swapchain support not present, skipping device.")
		return info, false
	}

	if requirements.SamplerAnisotropy && features.SamplerAnisotropy == vk.False {
		core.LogInfo("Device does not support samplerAnisotropy, skipping.")
		return info, false
	}
	return info, true
}

// The renderer.SurfaceDevice queries.

func (vc *VulkanContext) QueueFamilies() renderer.QueueFamilyIndices {
	return renderer.QueueFamilyIndices{
		Graphics: vc.Device.GraphicsQueueIndex,
		Present:  vc.Device.PresentQueueIndex,
	}
}

func (vc *VulkanContext) QueryChainSupport() (renderer.ChainSupport, error) {
	return DeviceQuerySwapchainSupport(vc.Device.PhysicalDevice, vc.Surface)
}

func (vc *VulkanContext) DepthFormatSupported(f renderer.Format) bool {
	var properties vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(vc.Device.PhysicalDevice, vk.Format(f), &properties)
	properties.Deref()
	flags := vk.FormatFeatureDepthStencilAttachmentBit
	return vk.FormatFeatureFlagBits(properties.OptimalTilingFeatures)&flags == flags
}

func (vc *VulkanContext) WaitIdle() renderer.Result {
	return toResult(vk.DeviceWaitIdle(vc.Device.LogicalDevice))
}
