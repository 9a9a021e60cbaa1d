package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/renderer"
)

type VulkanCommandBufferState int

const (
	COMMAND_BUFFER_STATE_READY VulkanCommandBufferState = iota
	COMMAND_BUFFER_STATE_RECORDING
	COMMAND_BUFFER_STATE_IN_RENDER_PASS
	COMMAND_BUFFER_STATE_RECORDING_ENDED
	COMMAND_BUFFER_STATE_SUBMITTED
)

type VulkanCommandBuffer struct {
	Handle vk.CommandBuffer
	// Command buffer state.
	State VulkanCommandBufferState
}

func (vc *VulkanContext) CreateCommandPool() (renderer.Handle, error) {
	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: vc.Device.GraphicsQueueIndex,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(vc.Device.LogicalDevice, &poolCreateInfo, vc.Allocator, &pool); res != vk.Success {
		return renderer.NullHandle, resultError("vkCreateCommandPool", res)
	}
	core.LogInfo("Graphics command pool created.")
	return vc.commandPools.Insert(pool), nil
}

func (vc *VulkanContext) DestroyCommandPool(h renderer.Handle) {
	if pool, ok := vc.commandPools.Remove(h); ok {
		core.LogInfo("Destroying command pools...")
		vk.DestroyCommandPool(vc.Device.LogicalDevice, pool, vc.Allocator)
	}
}

func (vc *VulkanContext) AllocateCommandBuffers(poolHandle renderer.Handle, count uint32) ([]renderer.Handle, error) {
	pool, ok := vc.commandPools.Get(poolHandle)
	if !ok {
		return nil, core.NewNotFoundError("command pool", poolHandle.String())
	}
	if count == 0 {
		return nil, nil
	}
	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	}
	buffers := make([]vk.CommandBuffer, count)
	if res := vk.AllocateCommandBuffers(vc.Device.LogicalDevice, &allocateInfo, buffers); res != vk.Success {
		return nil, resultError("vkAllocateCommandBuffers", res)
	}
	out := make([]renderer.Handle, count)
	for i := range buffers {
		out[i] = vc.commandBuffers.Insert(&VulkanCommandBuffer{
			Handle: buffers[i],
			State:  COMMAND_BUFFER_STATE_READY,
		})
	}
	return out, nil
}

func (vc *VulkanContext) FreeCommandBuffers(poolHandle renderer.Handle, buffers []renderer.Handle) {
	pool, ok := vc.commandPools.Get(poolHandle)
	if !ok {
		return
	}
	handles := make([]vk.CommandBuffer, 0, len(buffers))
	for _, h := range buffers {
		if cb, ok := vc.commandBuffers.Remove(h); ok {
			handles = append(handles, cb.Handle)
		}
	}
	if len(handles) == 0 {
		return
	}
	vk.FreeCommandBuffers(vc.Device.LogicalDevice, pool, uint32(len(handles)), handles)
}

func (vc *VulkanContext) commandBuffer(h renderer.Handle) *VulkanCommandBuffer {
	cb, ok := vc.commandBuffers.Get(h)
	if !ok {
		core.LogWarn("unknown command buffer %s", h)
		return nil
	}
	return cb
}

func (vc *VulkanContext) BeginCommandBuffer(h renderer.Handle, singleUse bool) error {
	cb := vc.commandBuffer(h)
	if cb == nil {
		return core.NewNotFoundError("command buffer", h.String())
	}
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	if singleUse {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	if res := vk.BeginCommandBuffer(cb.Handle, &beginInfo); res != vk.Success {
		return resultError("vkBeginCommandBuffer", res)
	}
	cb.State = COMMAND_BUFFER_STATE_RECORDING
	return nil
}

func (vc *VulkanContext) EndCommandBuffer(h renderer.Handle) error {
	cb := vc.commandBuffer(h)
	if cb == nil {
		return core.NewNotFoundError("command buffer", h.String())
	}
	if res := vk.EndCommandBuffer(cb.Handle); res != vk.Success {
		return resultError("vkEndCommandBuffer", res)
	}
	cb.State = COMMAND_BUFFER_STATE_RECORDING_ENDED
	return nil
}

func (vc *VulkanContext) CmdBeginRenderPass(h, pass, framebuffer renderer.Handle, extent renderer.Extent2D, clear renderer.ClearValues) {
	cb := vc.commandBuffer(h)
	renderPass, okPass := vc.renderPasses.Get(pass)
	fb, okFb := vc.framebuffers.Get(framebuffer)
	if cb == nil || !okPass || !okFb {
		return
	}

	clearValues := make([]vk.ClearValue, 2)
	clearValues[0].SetColor(clear.Color[:])
	clearValues[1].SetDepthStencil(clear.Depth, clear.Stencil)

	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  renderPass,
		Framebuffer: fb,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: vk.Extent2D{Width: extent.Width, Height: extent.Height},
		},
		ClearValueCount: 2,
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(cb.Handle, &beginInfo, vk.SubpassContentsInline)
	cb.State = COMMAND_BUFFER_STATE_IN_RENDER_PASS
}

func (vc *VulkanContext) CmdEndRenderPass(h renderer.Handle) {
	if cb := vc.commandBuffer(h); cb != nil {
		vk.CmdEndRenderPass(cb.Handle)
		cb.State = COMMAND_BUFFER_STATE_RECORDING
	}
}

func (vc *VulkanContext) CmdSetViewportScissor(h renderer.Handle, extent renderer.Extent2D) {
	cb := vc.commandBuffer(h)
	if cb == nil {
		return
	}
	viewport := vk.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: extent.Width, Height: extent.Height},
	}
	vk.CmdSetViewport(cb.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(cb.Handle, 0, 1, []vk.Rect2D{scissor})
}

func (vc *VulkanContext) CmdBindPipeline(h, pipeline renderer.Handle) {
	cb := vc.commandBuffer(h)
	p, ok := vc.pipelines.Get(pipeline)
	if cb == nil || !ok {
		return
	}
	vk.CmdBindPipeline(cb.Handle, vk.PipelineBindPointGraphics, p)
}

func (vc *VulkanContext) CmdBindDescriptorSet(h, layout, set renderer.Handle) {
	cb := vc.commandBuffer(h)
	l, okLayout := vc.pipelineLayouts.Get(layout)
	s, okSet := vc.descriptorSets.Get(set)
	if cb == nil || !okLayout || !okSet {
		return
	}
	vk.CmdBindDescriptorSets(cb.Handle, vk.PipelineBindPointGraphics, l, 0, 1, []vk.DescriptorSet{s}, 0, nil)
}

func (vc *VulkanContext) CmdBindVertexBuffer(h, vertices renderer.Handle) {
	cb := vc.commandBuffer(h)
	buffer, ok := vc.buffers.Get(vertices)
	if cb == nil || !ok {
		return
	}
	vk.CmdBindVertexBuffers(cb.Handle, 0, 1, []vk.Buffer{buffer.Handle}, []vk.DeviceSize{0})
}

func (vc *VulkanContext) CmdBindIndexBuffer(h, indices renderer.Handle) {
	cb := vc.commandBuffer(h)
	buffer, ok := vc.buffers.Get(indices)
	if cb == nil || !ok {
		return
	}
	vk.CmdBindIndexBuffer(cb.Handle, buffer.Handle, 0, vk.IndexTypeUint32)
}

func (vc *VulkanContext) CmdPushConstants(h, layout renderer.Handle, stage renderer.ShaderStage, data []byte) {
	cb := vc.commandBuffer(h)
	l, ok := vc.pipelineLayouts.Get(layout)
	if cb == nil || !ok || len(data) == 0 {
		return
	}
	vk.CmdPushConstants(cb.Handle, l, shaderStageFlags(stage), 0, uint32(len(data)), unsafe.Pointer(&data[0]))
}

func (vc *VulkanContext) CmdDrawIndexed(h renderer.Handle, indexCount uint32) {
	if cb := vc.commandBuffer(h); cb != nil {
		vk.CmdDrawIndexed(cb.Handle, indexCount, 1, 0, 0, 0)
	}
}

func (vc *VulkanContext) CmdCopyBuffer(h, src, dst renderer.Handle, size uint64) {
	cb := vc.commandBuffer(h)
	s, okSrc := vc.buffers.Get(src)
	d, okDst := vc.buffers.Get(dst)
	if cb == nil || !okSrc || !okDst {
		return
	}
	vk.CmdCopyBuffer(cb.Handle, s.Handle, d.Handle, 1, []vk.BufferCopy{{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      vk.DeviceSize(size),
	}})
}

func (vc *VulkanContext) CmdCopyBufferToImage(h, src, image renderer.Handle, extent renderer.Extent2D) {
	cb := vc.commandBuffer(h)
	s, okSrc := vc.buffers.Get(src)
	img, okImg := vc.images.Get(image)
	if cb == nil || !okSrc || !okImg {
		return
	}
	region := vk.BufferImageCopy{
		BufferOffset:      0,
		BufferRowLength:   0,
		BufferImageHeight: 0,
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			MipLevel:       0,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
		ImageOffset: vk.Offset3D{X: 0, Y: 0, Z: 0},
		ImageExtent: vk.Extent3D{Width: extent.Width, Height: extent.Height, Depth: 1},
	}
	vk.CmdCopyBufferToImage(cb.Handle, s.Handle, img.Handle, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})
}

// CmdTransitionImageLayout records the barrier for the three transitions the
// engine performs: upload target, shader-readable texture and depth buffer.
func (vc *VulkanContext) CmdTransitionImageLayout(h, image renderer.Handle, format renderer.Format, from, to renderer.ImageLayout) {
	cb := vc.commandBuffer(h)
	img, ok := vc.images.Get(image)
	if cb == nil || !ok {
		return
	}

	aspectFlags := vk.ImageAspectFlags(vk.ImageAspectColorBit)
	if to == renderer.ImageLayoutDepthStencilAttachmentOptimal {
		aspectFlags = vk.ImageAspectFlags(vk.ImageAspectDepthBit)
		if format.HasStencil() {
			aspectFlags |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
		}
	}

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           vk.ImageLayout(from),
		NewLayout:           vk.ImageLayout(to),
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img.Handle,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspectFlags,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}

	var srcStage, dstStage vk.PipelineStageFlags
	switch {
	case from == renderer.ImageLayoutUndefined && to == renderer.ImageLayoutTransferDstOptimal:
		barrier.SrcAccessMask = 0
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	case from == renderer.ImageLayoutTransferDstOptimal && to == renderer.ImageLayoutShaderReadOnlyOptimal:
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	case from == renderer.ImageLayoutUndefined && to == renderer.ImageLayoutDepthStencilAttachmentOptimal:
		barrier.SrcAccessMask = 0
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit)
	default:
		core.LogError("unsupported image layout transition %d -> %d", from, to)
		return
	}

	vk.CmdPipelineBarrier(cb.Handle, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

func (vc *VulkanContext) SubmitGraphics(info renderer.SubmitInfo) renderer.Result {
	cb := vc.commandBuffer(info.CommandBuffer)
	if cb == nil {
		return renderer.ResultInitFailed
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cb.Handle},
	}
	if wait, ok := vc.semaphores.Get(info.Wait); ok {
		submitInfo.WaitSemaphoreCount = 1
		submitInfo.PWaitSemaphores = []vk.Semaphore{wait}
		submitInfo.PWaitDstStageMask = []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)}
	}
	if signal, ok := vc.semaphores.Get(info.Signal); ok {
		submitInfo.SignalSemaphoreCount = 1
		submitInfo.PSignalSemaphores = []vk.Semaphore{signal}
	}
	fence := vk.NullFence
	if f, ok := vc.fences.Get(info.Fence); ok {
		fence = f.Handle
	}

	var res vk.Result
	vc.locks.SafeQueueCall(vc.Device.GraphicsQueueIndex, func() error {
		res = vk.QueueSubmit(vc.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, fence)
		return nil
	})
	if res == vk.Success {
		cb.State = COMMAND_BUFFER_STATE_SUBMITTED
	} else {
		core.LogError("vkQueueSubmit failed with %s", VulkanResultString(res, true))
	}
	return toResult(res)
}

func (vc *VulkanContext) QueueWaitIdle() renderer.Result {
	var res vk.Result
	vc.locks.SafeQueueCall(vc.Device.GraphicsQueueIndex, func() error {
		res = vk.QueueWaitIdle(vc.Device.GraphicsQueue)
		return nil
	})
	return toResult(res)
}
