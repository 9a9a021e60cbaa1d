package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/renderer"
)

// CreateRenderPass builds the single-subpass pass used for every frame: a
// cleared color attachment handed to presentation and a cleared depth
// attachment that is discarded afterwards.
func (vc *VulkanContext) CreateRenderPass(color renderer.Format, depth renderer.Format) (renderer.Handle, error) {
	colorAttachment := vk.AttachmentDescription{
		Format:         vk.Format(color),
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,  // Do not expect any particular layout before render pass starts.
		FinalLayout:    vk.ImageLayoutPresentSrc, // Transitioned to after the render pass
	}
	depthAttachment := vk.AttachmentDescription{
		Format:         vk.Format(depth),
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpDontCare,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
	}

	colorAttachmentReference := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}
	depthAttachmentReference := vk.AttachmentReference{
		Attachment: 1,
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    1,
		PColorAttachments:       colorAttachmentReference,
		PDepthStencilAttachment: &depthAttachmentReference,
	}

	// The depth buffer is shared by every frame in flight, so its writes
	// have to be ordered too.
	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
	}

	renderpassCreateInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 2,
		PAttachments:    []vk.AttachmentDescription{colorAttachment, depthAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	var pass vk.RenderPass
	if res := vk.CreateRenderPass(vc.Device.LogicalDevice, &renderpassCreateInfo, vc.Allocator, &pass); res != vk.Success {
		return renderer.NullHandle, resultError("vkCreateRenderPass", res)
	}
	core.LogDebug("Render pass created (%s, %s).", color, depth)
	return vc.renderPasses.Insert(pass), nil
}

func (vc *VulkanContext) DestroyRenderPass(h renderer.Handle) {
	if pass, ok := vc.renderPasses.Remove(h); ok {
		vk.DestroyRenderPass(vc.Device.LogicalDevice, pass, vc.Allocator)
	}
}

func (vc *VulkanContext) CreateFramebuffer(pass renderer.Handle, attachments []renderer.Handle, extent renderer.Extent2D) (renderer.Handle, error) {
	renderPass, ok := vc.renderPasses.Get(pass)
	if !ok {
		return renderer.NullHandle, core.NewNotFoundError("render pass", pass.String())
	}
	views := make([]vk.ImageView, len(attachments))
	for i, a := range attachments {
		view, ok := vc.views.Get(a)
		if !ok {
			return renderer.NullHandle, core.NewNotFoundError("image view", a.String())
		}
		views[i] = view
	}

	framebufferCreateInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderPass,
		AttachmentCount: uint32(len(views)),
		PAttachments:    views,
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}
	var framebuffer vk.Framebuffer
	if res := vk.CreateFramebuffer(vc.Device.LogicalDevice, &framebufferCreateInfo, vc.Allocator, &framebuffer); res != vk.Success {
		return renderer.NullHandle, resultError("vkCreateFramebuffer", res)
	}
	return vc.framebuffers.Insert(framebuffer), nil
}

func (vc *VulkanContext) DestroyFramebuffer(h renderer.Handle) {
	if framebuffer, ok := vc.framebuffers.Remove(h); ok {
		vk.DestroyFramebuffer(vc.Device.LogicalDevice, framebuffer, vc.Allocator)
	}
}
