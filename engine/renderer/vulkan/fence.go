package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/renderer"
)

type VulkanFence struct {
	Handle     vk.Fence
	IsSignaled bool
}

func (vc *VulkanContext) CreateSemaphore() (renderer.Handle, error) {
	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	var semaphore vk.Semaphore
	if res := vk.CreateSemaphore(vc.Device.LogicalDevice, &semaphoreCreateInfo, vc.Allocator, &semaphore); res != vk.Success {
		return renderer.NullHandle, resultError("vkCreateSemaphore", res)
	}
	return vc.semaphores.Insert(semaphore), nil
}

func (vc *VulkanContext) DestroySemaphore(h renderer.Handle) {
	if semaphore, ok := vc.semaphores.Remove(h); ok {
		vk.DestroySemaphore(vc.Device.LogicalDevice, semaphore, vc.Allocator)
	}
}

func (vc *VulkanContext) CreateFence(signaled bool) (renderer.Handle, error) {
	fence := &VulkanFence{
		// Make sure to signal the fence if required.
		IsSignaled: signaled,
	}

	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if fence.IsSignaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var handle vk.Fence
	if res := vk.CreateFence(vc.Device.LogicalDevice, &fenceCreateInfo, vc.Allocator, &handle); res != vk.Success {
		return renderer.NullHandle, resultError("vkCreateFence", res)
	}
	fence.Handle = handle
	return vc.fences.Insert(fence), nil
}

func (vc *VulkanContext) DestroyFence(h renderer.Handle) {
	if fence, ok := vc.fences.Remove(h); ok {
		vk.DestroyFence(vc.Device.LogicalDevice, fence.Handle, vc.Allocator)
		fence.Handle = vk.NullFence
		fence.IsSignaled = false
	}
}

func (vc *VulkanContext) WaitForFence(h renderer.Handle, timeoutNS uint64) renderer.Result {
	fence, ok := vc.fences.Get(h)
	if !ok {
		return renderer.ResultInitFailed
	}
	// If already signaled, do not wait.
	if fence.IsSignaled {
		return renderer.ResultSuccess
	}
	result := vk.WaitForFences(vc.Device.LogicalDevice, 1, []vk.Fence{fence.Handle}, vk.True, timeoutNS)
	switch result {
	case vk.Success:
		fence.IsSignaled = true
	case vk.Timeout:
		core.LogWarn("vk_fence_wait - Timed out")
	default:
		core.LogError("vk_fence_wait - %s", VulkanResultString(result, true))
	}
	return toResult(result)
}

func (vc *VulkanContext) ResetFence(h renderer.Handle) renderer.Result {
	fence, ok := vc.fences.Get(h)
	if !ok {
		return renderer.ResultInitFailed
	}
	if !fence.IsSignaled {
		return renderer.ResultSuccess
	}
	res := vk.ResetFences(vc.Device.LogicalDevice, 1, []vk.Fence{fence.Handle})
	if res == vk.Success {
		fence.IsSignaled = false
	}
	return toResult(res)
}

