package renderer

import "github.com/spaghettifunk/rosella/engine/core"

type teardownStage struct {
	name    string
	release func()
}

func runTeardown(stages []teardownStage) {
	for _, stage := range stages {
		core.LogDebug("releasing %s", stage.name)
		stage.release()
	}
}

// swapchainStages lists what recreation destroys, in reverse creation order.
// Vertex and index buffers, textures and the command pool do not depend on
// the swapchain and are not part of it.
func (r *Renderer) swapchainStages() []teardownStage {
	return []teardownStage{
		{"descriptor pools and pipelines", func() {
			r.destroySceneResources()
			for _, m := range r.scene.Materials() {
				m.destroyPipeline(r.device)
			}
		}},
		{"command buffers", r.freeCommandBuffers},
		{"depth buffer", func() {
			if r.depth != nil {
				r.depth.Destroy(r.device)
				r.depth = nil
			}
		}},
		{"framebuffers", func() {
			DestroyFramebuffers(r.device, r.framebuffers)
			r.framebuffers = nil
		}},
		{"render pass", func() {
			if !r.renderPass.IsNull() {
				r.device.DestroyRenderPass(r.renderPass)
				r.renderPass = NullHandle
			}
		}},
		{"swapchain image views", func() {
			if r.swapchain != nil {
				r.swapchain.DestroyViews(r.device)
			}
		}},
		{"swapchain", func() {
			if r.swapchain != nil {
				r.swapchain.DestroyHandle(r.device)
			}
		}},
	}
}

// shutdownStages extends swapchainStages with everything that outlives a
// recreation.
func (r *Renderer) shutdownStages() []teardownStage {
	stages := r.swapchainStages()
	return append(stages,
		teardownStage{"object buffers", func() {
			if r.allocator == nil {
				return
			}
			for _, obj := range r.scene.Released() {
				obj.release(r.allocator)
			}
			for _, obj := range r.scene.Objects() {
				obj.release(r.allocator)
			}
		}},
		teardownStage{"materials", func() {
			for _, m := range r.scene.Materials() {
				m.unload(r.device, r.whiteTexture)
			}
			r.whiteTexture.destroy(r.device)
		}},
		teardownStage{"frame sync objects", r.destroyFrames},
		teardownStage{"command pool", func() {
			if !r.commandPool.IsNull() {
				r.device.DestroyCommandPool(r.commandPool)
				r.commandPool = NullHandle
			}
		}},
	)
}

func (r *Renderer) destroySceneResources() {
	if r.allocator == nil {
		return
	}
	for _, obj := range r.scene.Objects() {
		obj.destroyPerImage(r.allocator)
	}
	for _, m := range r.scene.Materials() {
		m.destroyPool(r.device)
	}
}

func (r *Renderer) freeCommandBuffers() {
	if len(r.commandBuffers) > 0 {
		r.device.FreeCommandBuffers(r.commandPool, r.commandBuffers)
	}
	r.commandBuffers = nil
}

func (r *Renderer) destroyFrames() {
	if r.frames == nil {
		return
	}
	r.frames.Each(func(_ int, f Frame) {
		f.destroy(r.device)
	})
	r.frames = nil
}
