package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/rosella/engine/core"
)

// RenderObject is geometry drawn with one material. Vertex and index buffers
// are immutable once uploaded; Transform is written to the object's uniform
// buffer every frame.
type RenderObject struct {
	Material  *Material
	Vertices  []Vertex
	Indices   []uint32
	Position  mgl32.Vec3
	Transform mgl32.Mat4

	vertexBuffer Handle
	indexBuffer  Handle

	// Indexed by swapchain image.
	ubos []Handle
	sets []Handle
}

func NewRenderObject(material *Material, vertices []Vertex, indices []uint32) (*RenderObject, error) {
	if material == nil {
		err := errors.New("render object has no material")
		core.LogError(err.Error())
		return nil, err
	}
	if len(vertices) == 0 || len(indices) == 0 {
		err := errors.Newf("render object for '%s' has no geometry", material.ID)
		core.LogError(err.Error())
		return nil, err
	}
	return &RenderObject{
		Material:  material,
		Vertices:  vertices,
		Indices:   indices,
		Transform: mgl32.Ident4(),
	}, nil
}

func (o *RenderObject) uploaded() bool {
	return !o.vertexBuffer.IsNull()
}

func (o *RenderObject) upload(allocator *Allocator) error {
	var err error
	o.vertexBuffer, err = allocator.UploadViaStaging(BufferUsageVertex, uint64(len(o.Vertices)*VertexStride), func(dst []byte) error {
		PackVertices(dst, o.Vertices)
		return nil
	})
	if err != nil {
		return err
	}
	o.indexBuffer, err = allocator.UploadViaStaging(BufferUsageIndex, uint64(len(o.Indices)*4), func(dst []byte) error {
		PackIndices(dst, o.Indices)
		return nil
	})
	if err != nil {
		allocator.DestroyBuffer(o.vertexBuffer)
		o.vertexBuffer = NullHandle
		return err
	}
	return nil
}

// createPerImage builds one uniform buffer and one descriptor set for each
// swapchain image, drawn from the material's pool.
func (o *RenderObject) createPerImage(device Device, allocator *Allocator, imageCount int) error {
	m := o.Material
	sets, err := device.AllocateDescriptorSets(m.pool, m.Shader.setLayout, uint32(imageCount))
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	o.sets = sets
	o.ubos = make([]Handle, 0, imageCount)
	for i := 0; i < imageCount; i++ {
		ubo, err := allocator.CreateBuffer(BasicUboSize, BufferUsageUniform, ResidencyHostVisibleCoherent)
		if err != nil {
			return err
		}
		o.ubos = append(o.ubos, ubo)
		device.UpdateDescriptorSet(sets[i], []DescriptorWrite{
			{Binding: 0, Type: DescriptorTypeUniformBuffer, Buffer: ubo, BufferSize: BasicUboSize},
			{Binding: 1, Type: DescriptorTypeCombinedImageSampler, ImageView: m.Texture.view, Sampler: m.Texture.sampler},
		})
	}
	return nil
}

// destroyPerImage releases the uniform buffers. The sets go with the pool.
func (o *RenderObject) destroyPerImage(allocator *Allocator) {
	for _, ubo := range o.ubos {
		allocator.DestroyBuffer(ubo)
	}
	o.ubos = nil
	o.sets = nil
}

func (o *RenderObject) writeUniforms(allocator *Allocator, imageIndex uint32, camera *Camera) error {
	ubo := BasicUbo{Model: o.Transform, View: camera.View, Projection: camera.Projection}
	return allocator.Write(o.ubos[imageIndex], func(dst []byte) error {
		ubo.Pack(dst)
		return nil
	})
}

func (o *RenderObject) release(allocator *Allocator) {
	o.destroyPerImage(allocator)
	allocator.DestroyBuffer(o.indexBuffer)
	allocator.DestroyBuffer(o.vertexBuffer)
	o.indexBuffer, o.vertexBuffer = NullHandle, NullHandle
}

// UniformBuffers are indexed by swapchain image.
func (o *RenderObject) UniformBuffers() []Handle {
	return o.ubos
}

func (o *RenderObject) DescriptorSets() []Handle {
	return o.sets
}
