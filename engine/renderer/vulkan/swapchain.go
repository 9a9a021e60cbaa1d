package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/renderer"
)

func (vc *VulkanContext) CreateSwapchain(info renderer.SwapchainCreateInfo) (renderer.Handle, error) {
	// The pre-transform is not part of the renderer's view of the surface.
	var caps vk.SurfaceCapabilities
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(vc.Device.PhysicalDevice, vc.Surface, &caps); res != vk.Success {
		return renderer.NullHandle, resultError("vkGetPhysicalDeviceSurfaceCapabilitiesKHR", res)
	}
	caps.Deref()

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          vc.Surface,
		MinImageCount:    info.MinImageCount,
		ImageFormat:      vk.Format(info.Format.Format),
		ImageColorSpace:  vk.ColorSpace(info.Format.ColorSpace),
		ImageExtent:      vk.Extent2D{Width: info.Extent.Width, Height: info.Extent.Height},
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      vk.PresentMode(info.PresentMode),
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}
	if info.SharingMode == renderer.SharingModeConcurrent {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = uint32(len(info.QueueFamilies))
		swapchainCreateInfo.PQueueFamilyIndices = info.QueueFamilies
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var swapchain vk.Swapchain
	if res := vk.CreateSwapchain(vc.Device.LogicalDevice, &swapchainCreateInfo, vc.Allocator, &swapchain); res != vk.Success {
		return renderer.NullHandle, resultError("vkCreateSwapchainKHR", res)
	}
	core.LogInfo("Swapchain created successfully.")
	return vc.swapchains.Insert(swapchain), nil
}

// SwapchainImages registers the images owned by the swapchain. They are
// released with it and must not be passed to DestroyImage.
func (vc *VulkanContext) SwapchainImages(h renderer.Handle) ([]renderer.Handle, error) {
	swapchain, ok := vc.swapchains.Get(h)
	if !ok {
		return nil, core.NewNotFoundError("swapchain", h.String())
	}
	var count uint32
	if res := vk.GetSwapchainImages(vc.Device.LogicalDevice, swapchain, &count, nil); res != vk.Success {
		return nil, resultError("vkGetSwapchainImagesKHR", res)
	}
	images := make([]vk.Image, count)
	if res := vk.GetSwapchainImages(vc.Device.LogicalDevice, swapchain, &count, images); res != vk.Success {
		return nil, resultError("vkGetSwapchainImagesKHR", res)
	}
	out := make([]renderer.Handle, count)
	for i := range images {
		out[i] = vc.images.Insert(&VulkanImage{Handle: images[i]})
	}
	return out, nil
}

func (vc *VulkanContext) DestroySwapchain(h renderer.Handle) {
	swapchain, ok := vc.swapchains.Remove(h)
	if !ok {
		return
	}
	// Drop the image handles that belonged to this swapchain.
	var stale []renderer.Handle
	vc.images.Each(func(ih renderer.Handle, img *VulkanImage) {
		if !img.owned {
			stale = append(stale, ih)
		}
	})
	for _, ih := range stale {
		vc.images.Remove(ih)
	}
	vk.DestroySwapchain(vc.Device.LogicalDevice, swapchain, vc.Allocator)
}

func (vc *VulkanContext) CreateImageView(image renderer.Handle, format renderer.Format, aspect renderer.ImageAspect) (renderer.Handle, error) {
	img, ok := vc.images.Get(image)
	if !ok {
		return renderer.NullHandle, core.NewNotFoundError("image", image.String())
	}
	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    img.Handle,
		ViewType: vk.ImageViewType2d,
		Format:   vk.Format(format),
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(aspect),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	var view vk.ImageView
	if res := vk.CreateImageView(vc.Device.LogicalDevice, &viewInfo, vc.Allocator, &view); res != vk.Success {
		return renderer.NullHandle, resultError("vkCreateImageView", res)
	}
	return vc.views.Insert(view), nil
}

func (vc *VulkanContext) DestroyImageView(h renderer.Handle) {
	if view, ok := vc.views.Remove(h); ok {
		vk.DestroyImageView(vc.Device.LogicalDevice, view, vc.Allocator)
	}
}

func (vc *VulkanContext) AcquireNextImage(h renderer.Handle, timeoutNS uint64, signal renderer.Handle) (uint32, renderer.Result) {
	swapchain, ok := vc.swapchains.Get(h)
	if !ok {
		return 0, renderer.ResultInitFailed
	}
	semaphore, _ := vc.semaphores.Get(signal)
	var imageIndex uint32
	res := vk.AcquireNextImage(vc.Device.LogicalDevice, swapchain, timeoutNS, semaphore, vk.NullFence, &imageIndex)
	return imageIndex, toResult(res)
}

func (vc *VulkanContext) Present(h renderer.Handle, imageIndex uint32, wait renderer.Handle) renderer.Result {
	swapchain, ok := vc.swapchains.Get(h)
	if !ok {
		return renderer.ResultInitFailed
	}
	presentInfo := vk.PresentInfo{
		SType:          vk.StructureTypePresentInfo,
		SwapchainCount: 1,
		PSwapchains:    []vk.Swapchain{swapchain},
		PImageIndices:  []uint32{imageIndex},
	}
	if semaphore, ok := vc.semaphores.Get(wait); ok {
		presentInfo.WaitSemaphoreCount = 1
		presentInfo.PWaitSemaphores = []vk.Semaphore{semaphore}
	}

	var res vk.Result
	vc.locks.SafeQueueCall(vc.Device.PresentQueueIndex, func() error {
		res = vk.QueuePresent(vc.Device.PresentQueue, &presentInfo)
		return nil
	})
	return toResult(res)
}
