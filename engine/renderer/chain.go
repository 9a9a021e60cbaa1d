package renderer

import (
	"github.com/spaghettifunk/rosella/engine/core"
)

// buildChain creates every swapchain-dependent object in dependency order:
// swapchain, render pass, depth buffer, framebuffers, pipelines, per-image
// scene resources and finally the command buffers.
func (r *Renderer) buildChain(width, height uint32) error {
	var err error
	if r.swapchain, err = BuildSwapchain(r.device, width, height, r.config.FramesInFlight, r.config.PreferMailbox); err != nil {
		return err
	}
	if r.renderPass, err = r.device.CreateRenderPass(r.swapchain.Format.Format, r.depthFormat); err != nil {
		core.LogError(err.Error())
		return err
	}
	if r.depth, err = CreateDepthBuffer(r.device, r.commandPool, r.depthFormat, r.swapchain.Extent); err != nil {
		return err
	}
	if r.framebuffers, err = CreateFramebuffers(r.device, r.renderPass, r.swapchain, r.depth); err != nil {
		return err
	}
	r.camera.Resize(r.swapchain.Extent)

	for _, m := range r.scene.Materials() {
		if err := m.load(r.device, r.allocator, r.whiteTexture); err != nil {
			return err
		}
		if err := m.createPipeline(r.device, r.renderPass, r.swapchain.Extent); err != nil {
			return err
		}
	}
	if err := r.buildSceneResources(); err != nil {
		return err
	}
	r.imagesInFlight = newImagesInFlight(r.swapchain.ImageCount())
	return nil
}

// buildSceneResources uploads new objects, creates the per-image uniform
// buffers and descriptor sets, then records one command buffer per image.
func (r *Renderer) buildSceneResources() error {
	imageCount := r.swapchain.ImageCount()
	objects := r.scene.Objects()

	perMaterial := make(map[*Material]int)
	for _, obj := range objects {
		if _, ok := r.materialIndex(obj.Material); !ok {
			return core.NewNotFoundError("material", obj.Material.ID.String())
		}
		if !obj.uploaded() {
			if err := obj.upload(r.allocator); err != nil {
				return err
			}
		}
		perMaterial[obj.Material]++
	}
	for _, m := range r.scene.Materials() {
		n := perMaterial[m]
		if n == 0 {
			continue
		}
		pool, err := m.Shader.createPool(r.device, uint32(n*imageCount))
		if err != nil {
			return err
		}
		m.pool = pool
	}
	for _, obj := range objects {
		if err := obj.createPerImage(r.device, r.allocator, imageCount); err != nil {
			return err
		}
	}

	buffers, err := r.device.AllocateCommandBuffers(r.commandPool, uint32(imageCount))
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	r.commandBuffers = buffers
	return r.recordCommandBuffers()
}

func (r *Renderer) materialIndex(m *Material) (int, bool) {
	for i, registered := range r.scene.Materials() {
		if registered == m {
			return i, true
		}
	}
	return -1, false
}

// recordCommandBuffers records the full draw sequence for each image. Objects
// are grouped by material so each pipeline is bound once per pass.
func (r *Renderer) recordCommandBuffers() error {
	extent := r.swapchain.Extent
	objects := r.scene.Objects()
	for i, cmd := range r.commandBuffers {
		if err := r.device.BeginCommandBuffer(cmd, false); err != nil {
			core.LogError(err.Error())
			return err
		}
		r.device.CmdBeginRenderPass(cmd, r.renderPass, r.framebuffers[i], extent, r.clear)
		r.device.CmdSetViewportScissor(cmd, extent)
		for _, m := range r.scene.Materials() {
			bound := false
			for _, obj := range objects {
				if obj.Material != m {
					continue
				}
				if !bound {
					r.device.CmdBindPipeline(cmd, m.pipeline)
					bound = true
				}
				r.device.CmdBindDescriptorSet(cmd, m.pipelineLayout, obj.sets[i])
				r.device.CmdBindVertexBuffer(cmd, obj.vertexBuffer)
				r.device.CmdBindIndexBuffer(cmd, obj.indexBuffer)
				r.device.CmdPushConstants(cmd, m.pipelineLayout, ShaderStageVertex, packPushConstant(obj.Position))
				r.device.CmdDrawIndexed(cmd, uint32(len(obj.Indices)))
			}
		}
		r.device.CmdEndRenderPass(cmd)
		if err := r.device.EndCommandBuffer(cmd); err != nil {
			core.LogError(err.Error())
			return err
		}
	}
	return nil
}

// rebuildScene follows an add or remove. The swapchain is kept; new materials
// get their pipelines and every per-image resource and command buffer is
// rebuilt so the set size still equals the image count.
func (r *Renderer) rebuildScene() error {
	if res := r.device.WaitIdle(); res != ResultSuccess {
		return apiError("vkDeviceWaitIdle", res)
	}
	for _, obj := range r.scene.Released() {
		obj.release(r.allocator)
	}
	r.destroySceneResources()
	r.freeCommandBuffers()

	for _, m := range r.scene.Materials() {
		if !m.pipeline.IsNull() {
			continue
		}
		if err := m.load(r.device, r.allocator, r.whiteTexture); err != nil {
			return err
		}
		if err := m.createPipeline(r.device, r.renderPass, r.swapchain.Extent); err != nil {
			return err
		}
	}
	if err := r.buildSceneResources(); err != nil {
		return err
	}
	r.scene.MarkClean()
	core.LogDebug("scene rebuilt: %d materials, %d objects", len(r.scene.Materials()), len(r.scene.Objects()))
	return nil
}
