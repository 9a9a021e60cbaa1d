package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/renderer"
)

func shaderStageFlags(stage renderer.ShaderStage) vk.ShaderStageFlags {
	if stage == renderer.ShaderStageVertex {
		return vk.ShaderStageFlags(vk.ShaderStageVertexBit)
	}
	return vk.ShaderStageFlags(vk.ShaderStageFragmentBit)
}

func (vc *VulkanContext) CreateShaderModule(code []uint32) (renderer.Handle, error) {
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code) * 4),
		PCode:    code,
	}
	var module vk.ShaderModule
	if res := vk.CreateShaderModule(vc.Device.LogicalDevice, &createInfo, vc.Allocator, &module); res != vk.Success {
		return renderer.NullHandle, resultError("vkCreateShaderModule", res)
	}
	return vc.shaderModules.Insert(module), nil
}

func (vc *VulkanContext) DestroyShaderModule(h renderer.Handle) {
	if module, ok := vc.shaderModules.Remove(h); ok {
		vk.DestroyShaderModule(vc.Device.LogicalDevice, module, vc.Allocator)
	}
}

func (vc *VulkanContext) CreateDescriptorSetLayout(bindings []renderer.DescriptorBinding) (renderer.Handle, error) {
	layoutBindings := make([]vk.DescriptorSetLayoutBinding, len(bindings))
	for i, b := range bindings {
		layoutBindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         b.Binding,
			DescriptorType:  vk.DescriptorType(b.Type),
			DescriptorCount: 1,
			StageFlags:      shaderStageFlags(b.Stage),
		}
	}
	createInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(layoutBindings)),
		PBindings:    layoutBindings,
	}
	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(vc.Device.LogicalDevice, &createInfo, vc.Allocator, &layout); res != vk.Success {
		return renderer.NullHandle, resultError("vkCreateDescriptorSetLayout", res)
	}
	return vc.setLayouts.Insert(layout), nil
}

func (vc *VulkanContext) DestroyDescriptorSetLayout(h renderer.Handle) {
	if layout, ok := vc.setLayouts.Remove(h); ok {
		vk.DestroyDescriptorSetLayout(vc.Device.LogicalDevice, layout, vc.Allocator)
	}
}

func (vc *VulkanContext) CreateDescriptorPool(sizes []renderer.DescriptorPoolSize, maxSets uint32) (renderer.Handle, error) {
	poolSizes := make([]vk.DescriptorPoolSize, len(sizes))
	for i, s := range sizes {
		poolSizes[i] = vk.DescriptorPoolSize{
			Type:            vk.DescriptorType(s.Type),
			DescriptorCount: s.Count,
		}
	}
	createInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       maxSets,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}
	var pool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(vc.Device.LogicalDevice, &createInfo, vc.Allocator, &pool); res != vk.Success {
		return renderer.NullHandle, resultError("vkCreateDescriptorPool", res)
	}
	return vc.descriptorPools.Insert(&VulkanDescriptorPool{Handle: pool}), nil
}

func (vc *VulkanContext) DestroyDescriptorPool(h renderer.Handle) {
	pool, ok := vc.descriptorPools.Remove(h)
	if !ok {
		return
	}
	// Sets go with their pool.
	for _, set := range pool.Sets {
		vc.descriptorSets.Remove(set)
	}
	vk.DestroyDescriptorPool(vc.Device.LogicalDevice, pool.Handle, vc.Allocator)
}

func (vc *VulkanContext) AllocateDescriptorSets(poolHandle renderer.Handle, layoutHandle renderer.Handle, count uint32) ([]renderer.Handle, error) {
	pool, ok := vc.descriptorPools.Get(poolHandle)
	if !ok {
		return nil, core.NewNotFoundError("descriptor pool", poolHandle.String())
	}
	layout, ok := vc.setLayouts.Get(layoutHandle)
	if !ok {
		return nil, core.NewNotFoundError("descriptor set layout", layoutHandle.String())
	}
	if count == 0 {
		return nil, nil
	}

	layouts := make([]vk.DescriptorSetLayout, count)
	for i := range layouts {
		layouts[i] = layout
	}
	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool.Handle,
		DescriptorSetCount: count,
		PSetLayouts:        layouts,
	}
	sets := make([]vk.DescriptorSet, count)
	if res := vk.AllocateDescriptorSets(vc.Device.LogicalDevice, &allocateInfo, &(sets[0])); res != vk.Success {
		return nil, resultError("vkAllocateDescriptorSets", res)
	}

	out := make([]renderer.Handle, count)
	for i := range sets {
		out[i] = vc.descriptorSets.Insert(sets[i])
	}
	pool.Sets = append(pool.Sets, out...)
	return out, nil
}

func (vc *VulkanContext) UpdateDescriptorSet(setHandle renderer.Handle, writes []renderer.DescriptorWrite) {
	set, ok := vc.descriptorSets.Get(setHandle)
	if !ok {
		core.LogWarn("UpdateDescriptorSet: unknown set %s", setHandle)
		return
	}

	descriptorWrites := make([]vk.WriteDescriptorSet, 0, len(writes))
	for _, w := range writes {
		write := vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      w.Binding,
			DstArrayElement: 0,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorType(w.Type),
		}
		switch w.Type {
		case renderer.DescriptorTypeUniformBuffer:
			buffer, ok := vc.buffers.Get(w.Buffer)
			if !ok {
				core.LogWarn("UpdateDescriptorSet: unknown buffer %s", w.Buffer)
				continue
			}
			write.PBufferInfo = []vk.DescriptorBufferInfo{{
				Buffer: buffer.Handle,
				Offset: 0,
				Range:  vk.DeviceSize(w.BufferSize),
			}}
		case renderer.DescriptorTypeCombinedImageSampler:
			view, okView := vc.views.Get(w.ImageView)
			sampler, okSampler := vc.samplers.Get(w.Sampler)
			if !okView || !okSampler {
				core.LogWarn("UpdateDescriptorSet: unknown image view %s or sampler %s", w.ImageView, w.Sampler)
				continue
			}
			write.PImageInfo = []vk.DescriptorImageInfo{{
				Sampler:     sampler,
				ImageView:   view,
				ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
			}}
		}
		descriptorWrites = append(descriptorWrites, write)
	}
	if len(descriptorWrites) == 0 {
		return
	}
	vk.UpdateDescriptorSets(vc.Device.LogicalDevice, uint32(len(descriptorWrites)), descriptorWrites, 0, nil)
}

func (vc *VulkanContext) CreateGraphicsPipeline(config renderer.PipelineCreateInfo) (renderer.Handle, renderer.Handle, error) {
	renderPass, ok := vc.renderPasses.Get(config.RenderPass)
	if !ok {
		return renderer.NullHandle, renderer.NullHandle, core.NewNotFoundError("render pass", config.RenderPass.String())
	}
	setLayout, ok := vc.setLayouts.Get(config.SetLayout)
	if !ok {
		return renderer.NullHandle, renderer.NullHandle, core.NewNotFoundError("descriptor set layout", config.SetLayout.String())
	}

	stages := make([]vk.PipelineShaderStageCreateInfo, len(config.Stages))
	for i, s := range config.Stages {
		module, ok := vc.shaderModules.Get(s.Module)
		if !ok {
			return renderer.NullHandle, renderer.NullHandle, core.NewNotFoundError("shader module", s.Module.String())
		}
		stageBit := vk.ShaderStageVertexBit
		if s.Stage == renderer.ShaderStageFragment {
			stageBit = vk.ShaderStageFragmentBit
		}
		stages[i] = vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  stageBit,
			Module: module,
			PName:  VulkanSafeString("main"),
		}
	}

	// Viewport and scissor are dynamic; these only set the counts.
	viewport := vk.Viewport{
		Width:    float32(config.Extent.Width),
		Height:   float32(config.Extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Extent: vk.Extent2D{Width: config.Extent.Width, Height: config.Extent.Height},
	}
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports:    []vk.Viewport{viewport},
		ScissorCount:  1,
		PScissors:     []vk.Rect2D{scissor},
	}

	rasterizerCreateInfo := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		LineWidth:               1.0,
		CullMode:                vk.CullModeFlags(vk.CullModeNone),
		FrontFace:               vk.FrontFaceCounterClockwise,
		DepthBiasEnable:         vk.False,
	}
	if config.CullBack {
		rasterizerCreateInfo.CullMode = vk.CullModeFlags(vk.CullModeBackBit)
	}

	multisamplingCreateInfo := vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:   vk.False,
		RasterizationSamples:  vk.SampleCount1Bit,
		MinSampleShading:      1.0,
		AlphaToCoverageEnable: vk.False,
		AlphaToOneEnable:      vk.False,
	}

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:       vk.False,
		DepthWriteEnable:      vk.False,
		DepthCompareOp:        vk.CompareOpLess,
		DepthBoundsTestEnable: vk.False,
		StencilTestEnable:     vk.False,
	}
	if config.DepthTest {
		depthStencil.DepthTestEnable = vk.True
	}
	if config.DepthWrite {
		depthStencil.DepthWriteEnable = vk.True
	}

	colorBlendAttachmentState := vk.PipelineColorBlendAttachmentState{
		BlendEnable:         vk.False,
		SrcColorBlendFactor: vk.BlendFactorSrcAlpha,
		DstColorBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
		ColorBlendOp:        vk.BlendOpAdd,
		SrcAlphaBlendFactor: vk.BlendFactorSrcAlpha,
		DstAlphaBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
		AlphaBlendOp:        vk.BlendOpAdd,
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit) | vk.ColorComponentFlags(vk.ColorComponentGBit) |
			vk.ColorComponentFlags(vk.ColorComponentBBit) | vk.ColorComponentFlags(vk.ColorComponentABit),
	}
	if config.Blend {
		colorBlendAttachmentState.BlendEnable = vk.True
	}

	colorBlendStateCreateInfo := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{colorBlendAttachmentState},
	}

	dynamicStates := []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
	}
	dynamicStateCreateInfo := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	bindingDescription := vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    config.Stride,
		InputRate: vk.VertexInputRateVertex,
	}
	attributes := make([]vk.VertexInputAttributeDescription, len(config.Attributes))
	for i, a := range config.Attributes {
		attributes[i] = vk.VertexInputAttributeDescription{
			Location: a.Location,
			Binding:  0,
			Format:   vk.Format(a.Format),
			Offset:   a.Offset,
		}
	}
	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   1,
		PVertexBindingDescriptions:      []vk.VertexInputBindingDescription{bindingDescription},
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}

	pipelineLayoutCreateInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    []vk.DescriptorSetLayout{setLayout},
	}
	if config.PushConstant != nil {
		pipelineLayoutCreateInfo.PushConstantRangeCount = 1
		pipelineLayoutCreateInfo.PPushConstantRanges = []vk.PushConstantRange{{
			StageFlags: shaderStageFlags(config.PushConstant.Stage),
			Offset:     0,
			Size:       config.PushConstant.Size,
		}}
	}

	var pipelineLayout vk.PipelineLayout
	if res := vk.CreatePipelineLayout(vc.Device.LogicalDevice, &pipelineLayoutCreateInfo, vc.Allocator, &pipelineLayout); res != vk.Success {
		return renderer.NullHandle, renderer.NullHandle, resultError("vkCreatePipelineLayout", res)
	}

	pipelineCreateInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizerCreateInfo,
		PMultisampleState:   &multisamplingCreateInfo,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlendStateCreateInfo,
		PDynamicState:       &dynamicStateCreateInfo,
		Layout:              pipelineLayout,
		RenderPass:          renderPass,
		Subpass:             0,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   -1,
	}

	pipelines := make([]vk.Pipeline, 1)
	if res := vk.CreateGraphicsPipelines(vc.Device.LogicalDevice, vk.NullPipelineCache, 1, []vk.GraphicsPipelineCreateInfo{pipelineCreateInfo}, vc.Allocator, pipelines); res != vk.Success {
		vk.DestroyPipelineLayout(vc.Device.LogicalDevice, pipelineLayout, vc.Allocator)
		return renderer.NullHandle, renderer.NullHandle, resultError("vkCreateGraphicsPipelines", res)
	}

	core.LogDebug("Graphics pipeline created!")
	return vc.pipelines.Insert(pipelines[0]), vc.pipelineLayouts.Insert(pipelineLayout), nil
}

func (vc *VulkanContext) DestroyPipeline(pipeline renderer.Handle, layout renderer.Handle) {
	if p, ok := vc.pipelines.Remove(pipeline); ok {
		vk.DestroyPipeline(vc.Device.LogicalDevice, p, vc.Allocator)
	}
	if l, ok := vc.pipelineLayouts.Remove(layout); ok {
		vk.DestroyPipelineLayout(vc.Device.LogicalDevice, l, vc.Allocator)
	}
}
