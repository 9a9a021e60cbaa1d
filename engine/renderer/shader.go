package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/rosella/engine/core"
)

// ShaderProgram pairs a vertex and a fragment stage with the descriptor layout
// both expect: the object's uniform block at binding 0 and its material's
// texture at binding 1.
type ShaderProgram struct {
	Vertex   []uint32
	Fragment []uint32

	vertexModule   Handle
	fragmentModule Handle
	setLayout      Handle
}

func NewShaderProgram(vertex, fragment []uint32) (*ShaderProgram, error) {
	if len(vertex) == 0 || len(fragment) == 0 {
		err := errors.Newf("shader program needs both stages, got %d vertex and %d fragment words", len(vertex), len(fragment))
		core.LogError(err.Error())
		return nil, err
	}
	return &ShaderProgram{Vertex: vertex, Fragment: fragment}, nil
}

func shaderBindings() []DescriptorBinding {
	return []DescriptorBinding{
		{Binding: 0, Type: DescriptorTypeUniformBuffer, Stage: ShaderStageVertex},
		{Binding: 1, Type: DescriptorTypeCombinedImageSampler, Stage: ShaderStageFragment},
	}
}

func (p *ShaderProgram) created() bool {
	return !p.setLayout.IsNull()
}

func (p *ShaderProgram) create(device Device) error {
	var err error
	if p.vertexModule, err = device.CreateShaderModule(p.Vertex); err != nil {
		core.LogError(err.Error())
		return err
	}
	if p.fragmentModule, err = device.CreateShaderModule(p.Fragment); err != nil {
		core.LogError(err.Error())
		p.destroy(device)
		return err
	}
	if p.setLayout, err = device.CreateDescriptorSetLayout(shaderBindings()); err != nil {
		core.LogError(err.Error())
		p.destroy(device)
		return err
	}
	return nil
}

func (p *ShaderProgram) stages() []ShaderModuleStage {
	return []ShaderModuleStage{
		{Module: p.vertexModule, Stage: ShaderStageVertex},
		{Module: p.fragmentModule, Stage: ShaderStageFragment},
	}
}

// createPool sizes a pool for sets descriptor sets of this program's layout.
func (p *ShaderProgram) createPool(device Device, sets uint32) (Handle, error) {
	pool, err := device.CreateDescriptorPool([]DescriptorPoolSize{
		{Type: DescriptorTypeUniformBuffer, Count: sets},
		{Type: DescriptorTypeCombinedImageSampler, Count: sets},
	}, sets)
	if err != nil {
		core.LogError(err.Error())
		return NullHandle, err
	}
	return pool, nil
}

func (p *ShaderProgram) destroy(device Device) {
	if !p.setLayout.IsNull() {
		device.DestroyDescriptorSetLayout(p.setLayout)
		p.setLayout = NullHandle
	}
	if !p.fragmentModule.IsNull() {
		device.DestroyShaderModule(p.fragmentModule)
		p.fragmentModule = NullHandle
	}
	if !p.vertexModule.IsNull() {
		device.DestroyShaderModule(p.vertexModule)
		p.vertexModule = NullHandle
	}
}
