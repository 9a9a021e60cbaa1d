package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/renderer"
)

func memoryFlags(residency renderer.Residency) vk.MemoryPropertyFlagBits {
	switch residency {
	case renderer.ResidencyHostVisibleCoherent, renderer.ResidencyStaging:
		return vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit
	default:
		return vk.MemoryPropertyDeviceLocalBit
	}
}

func (vc *VulkanContext) allocate(requirements vk.MemoryRequirements, flags vk.MemoryPropertyFlagBits) (vk.DeviceMemory, error) {
	requirements.Deref()
	index := vc.FindMemoryIndex(requirements.MemoryTypeBits, uint32(flags))
	if index < 0 {
		return vk.NullDeviceMemory, core.NewConfigurationError("no memory type matches flags 0x%x", uint32(flags))
	}
	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(index),
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(vc.Device.LogicalDevice, &allocateInfo, vc.Allocator, &memory); res != vk.Success {
		return vk.NullDeviceMemory, resultError("vkAllocateMemory", res)
	}
	return memory, nil
}

func (vc *VulkanContext) CreateBuffer(size uint64, usage renderer.BufferUsage, residency renderer.Residency) (renderer.Handle, error) {
	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}
	var buffer vk.Buffer
	if res := vk.CreateBuffer(vc.Device.LogicalDevice, &bufferInfo, vc.Allocator, &buffer); res != vk.Success {
		return renderer.NullHandle, resultError("vkCreateBuffer", res)
	}

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(vc.Device.LogicalDevice, buffer, &requirements)
	memory, err := vc.allocate(requirements, memoryFlags(residency))
	if err != nil {
		vk.DestroyBuffer(vc.Device.LogicalDevice, buffer, vc.Allocator)
		return renderer.NullHandle, err
	}
	if res := vk.BindBufferMemory(vc.Device.LogicalDevice, buffer, memory, 0); res != vk.Success {
		vk.FreeMemory(vc.Device.LogicalDevice, memory, vc.Allocator)
		vk.DestroyBuffer(vc.Device.LogicalDevice, buffer, vc.Allocator)
		return renderer.NullHandle, resultError("vkBindBufferMemory", res)
	}

	core.LogDebug("Created %s buffer of %d bytes", residency, size)
	return vc.buffers.Insert(&VulkanBuffer{
		Handle: buffer,
		Memory: memory,
		Size:   vk.DeviceSize(size),
	}), nil
}

func (vc *VulkanContext) DestroyBuffer(h renderer.Handle) {
	buffer, ok := vc.buffers.Remove(h)
	if !ok {
		return
	}
	if buffer.Mapped {
		vk.UnmapMemory(vc.Device.LogicalDevice, buffer.Memory)
	}
	vk.DestroyBuffer(vc.Device.LogicalDevice, buffer.Handle, vc.Allocator)
	vk.FreeMemory(vc.Device.LogicalDevice, buffer.Memory, vc.Allocator)
}

func (vc *VulkanContext) MapBuffer(h renderer.Handle) ([]byte, error) {
	buffer, ok := vc.buffers.Get(h)
	if !ok {
		return nil, core.NewNotFoundError("buffer", h.String())
	}
	var data unsafe.Pointer
	if res := vk.MapMemory(vc.Device.LogicalDevice, buffer.Memory, 0, buffer.Size, 0, &data); res != vk.Success {
		return nil, resultError("vkMapMemory", res)
	}
	buffer.Mapped = true
	return unsafe.Slice((*byte)(data), int(buffer.Size)), nil
}

func (vc *VulkanContext) UnmapBuffer(h renderer.Handle) {
	buffer, ok := vc.buffers.Get(h)
	if !ok || !buffer.Mapped {
		return
	}
	vk.UnmapMemory(vc.Device.LogicalDevice, buffer.Memory)
	buffer.Mapped = false
}

func (vc *VulkanContext) CreateImage(info renderer.ImageCreateInfo) (renderer.Handle, error) {
	imageCreateInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  info.Extent.Width,
			Height: info.Extent.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        vk.Format(info.Format),
		Tiling:        vk.ImageTilingOptimal,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         vk.ImageUsageFlags(info.Usage),
		Samples:       vk.SampleCount1Bit,
		SharingMode:   vk.SharingModeExclusive,
	}
	var image vk.Image
	if res := vk.CreateImage(vc.Device.LogicalDevice, &imageCreateInfo, vc.Allocator, &image); res != vk.Success {
		return renderer.NullHandle, resultError("vkCreateImage", res)
	}

	var requirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(vc.Device.LogicalDevice, image, &requirements)
	memory, err := vc.allocate(requirements, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		vk.DestroyImage(vc.Device.LogicalDevice, image, vc.Allocator)
		return renderer.NullHandle, err
	}
	if res := vk.BindImageMemory(vc.Device.LogicalDevice, image, memory, 0); res != vk.Success {
		vk.FreeMemory(vc.Device.LogicalDevice, memory, vc.Allocator)
		vk.DestroyImage(vc.Device.LogicalDevice, image, vc.Allocator)
		return renderer.NullHandle, resultError("vkBindImageMemory", res)
	}

	return vc.images.Insert(&VulkanImage{
		Handle: image,
		Memory: memory,
		Format: vk.Format(info.Format),
		Width:  info.Extent.Width,
		Height: info.Extent.Height,
		owned:  true,
	}), nil
}

func (vc *VulkanContext) DestroyImage(h renderer.Handle) {
	img, ok := vc.images.Get(h)
	if !ok || !img.owned {
		return
	}
	vc.images.Remove(h)
	vk.DestroyImage(vc.Device.LogicalDevice, img.Handle, vc.Allocator)
	vk.FreeMemory(vc.Device.LogicalDevice, img.Memory, vc.Allocator)
}

func (vc *VulkanContext) CreateSampler() (renderer.Handle, error) {
	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1.0,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
	}
	if vc.Device.Features.SamplerAnisotropy == vk.True {
		limits := vc.Device.Properties.Limits
		limits.Deref()
		samplerInfo.AnisotropyEnable = vk.True
		samplerInfo.MaxAnisotropy = limits.MaxSamplerAnisotropy
	}
	var sampler vk.Sampler
	if res := vk.CreateSampler(vc.Device.LogicalDevice, &samplerInfo, vc.Allocator, &sampler); res != vk.Success {
		return renderer.NullHandle, resultError("vkCreateSampler", res)
	}
	return vc.samplers.Insert(sampler), nil
}

func (vc *VulkanContext) DestroySampler(h renderer.Handle) {
	if sampler, ok := vc.samplers.Remove(h); ok {
		vk.DestroySampler(vc.Device.LogicalDevice, sampler, vc.Allocator)
	}
}
