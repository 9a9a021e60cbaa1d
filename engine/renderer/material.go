package renderer

import (
	"github.com/spaghettifunk/rosella/engine/core"
)

// Material is a pipeline built from a shader program and fixed-function
// state, plus the texture it samples. The pipeline and the descriptor pool
// depend on the swapchain and are rebuilt with it.
type Material struct {
	ID      core.Identifier
	Shader  *ShaderProgram
	Texture *Texture

	Blend      bool
	DepthTest  bool
	DepthWrite bool
	CullBack   bool

	pipeline       Handle
	pipelineLayout Handle
	pool           Handle

	pendingShader  *ShaderProgram
	pendingTexture *Texture
}

// NewMaterial returns an opaque, depth-tested, back-face culled material.
func NewMaterial(id core.Identifier, shader *ShaderProgram, texture *Texture) *Material {
	return &Material{
		ID:         id,
		Shader:     shader,
		Texture:    texture,
		DepthTest:  true,
		DepthWrite: true,
		CullBack:   true,
	}
}

// Replace swaps the shader and/or texture the next time the swapchain is
// rebuilt. Nil keeps the current one.
func (m *Material) Replace(shader *ShaderProgram, texture *Texture) {
	if shader != nil {
		m.pendingShader = shader
	}
	if texture != nil {
		m.pendingTexture = texture
	}
}

func (m *Material) hasPending() bool {
	return m.pendingShader != nil || m.pendingTexture != nil
}

// applyPending runs with the device idle and the material's pipeline and pool
// already gone. The shared fallback texture belongs to the renderer and is
// never destroyed here.
func (m *Material) applyPending(device Device, fallback *Texture) {
	if m.pendingShader != nil {
		m.Shader.destroy(device)
		m.Shader = m.pendingShader
		m.pendingShader = nil
	}
	if m.pendingTexture != nil {
		if m.Texture != nil && m.Texture != fallback {
			m.Texture.destroy(device)
		}
		m.Texture = m.pendingTexture
		m.pendingTexture = nil
	}
}

// load creates the swapchain-independent objects once.
func (m *Material) load(device Device, allocator *Allocator, fallback *Texture) error {
	if m.Texture == nil {
		m.Texture = fallback
	}
	if !m.Shader.created() {
		if err := m.Shader.create(device); err != nil {
			return err
		}
	}
	if !m.Texture.uploaded() {
		if err := m.Texture.upload(device, allocator); err != nil {
			return err
		}
	}
	return nil
}

func (m *Material) pipelineInfo(pass Handle, extent Extent2D) PipelineCreateInfo {
	return PipelineCreateInfo{
		RenderPass: pass,
		Extent:     extent,
		Stages:     m.Shader.stages(),
		SetLayout:  m.Shader.setLayout,
		Stride:     VertexStride,
		Attributes: VertexAttributes(),
		PushConstant: &PushConstantRange{
			Stage: ShaderStageVertex,
			Size:  PushConstantSize,
		},
		DepthTest:  m.DepthTest,
		DepthWrite: m.DepthWrite,
		CullBack:   m.CullBack,
		Blend:      m.Blend,
	}
}

func (m *Material) createPipeline(device Device, pass Handle, extent Extent2D) error {
	pipeline, layout, err := device.CreateGraphicsPipeline(m.pipelineInfo(pass, extent))
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	m.pipeline, m.pipelineLayout = pipeline, layout
	return nil
}

func (m *Material) destroyPipeline(device Device) {
	if !m.pipeline.IsNull() {
		device.DestroyPipeline(m.pipeline, m.pipelineLayout)
	}
	m.pipeline, m.pipelineLayout = NullHandle, NullHandle
}

func (m *Material) destroyPool(device Device) {
	if !m.pool.IsNull() {
		device.DestroyDescriptorPool(m.pool)
		m.pool = NullHandle
	}
}

// unload releases everything. The fallback texture is owned by the renderer.
func (m *Material) unload(device Device, fallback *Texture) {
	m.destroyPool(device)
	m.destroyPipeline(device)
	m.Shader.destroy(device)
	if m.Texture != nil && m.Texture != fallback {
		m.Texture.destroy(device)
	}
}

func (m *Material) Pipeline() Handle {
	return m.pipeline
}

func (m *Material) DescriptorPool() Handle {
	return m.pool
}
