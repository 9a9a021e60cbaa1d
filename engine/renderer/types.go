package renderer

import (
	"fmt"

	"github.com/spaghettifunk/rosella/engine/containers"
)

// Handle addresses any GPU object owned by a Device.
type Handle = containers.Handle

var NullHandle = containers.NullHandle

// Format mirrors the VkFormat values the engine uses.
type Format int32

const (
	FormatUndefined       Format = 0
	FormatR8G8B8A8Unorm   Format = 37
	FormatR8G8B8A8Srgb    Format = 43
	FormatB8G8R8A8Unorm   Format = 44
	FormatB8G8R8A8Srgb    Format = 50
	FormatR32G32Sfloat    Format = 103
	FormatR32G32B32Sfloat Format = 106
	FormatD32Sfloat       Format = 126
	FormatD24UnormS8Uint  Format = 129
	FormatD32SfloatS8Uint Format = 130
)

func (f Format) IsDepth() bool {
	switch f {
	case FormatD32Sfloat, FormatD24UnormS8Uint, FormatD32SfloatS8Uint:
		return true
	}
	return false
}

func (f Format) HasStencil() bool {
	return f == FormatD24UnormS8Uint || f == FormatD32SfloatS8Uint
}

func (f Format) String() string {
	switch f {
	case FormatUndefined:
		return "UNDEFINED"
	case FormatR8G8B8A8Unorm:
		return "R8G8B8A8_UNORM"
	case FormatR8G8B8A8Srgb:
		return "R8G8B8A8_SRGB"
	case FormatB8G8R8A8Unorm:
		return "B8G8R8A8_UNORM"
	case FormatB8G8R8A8Srgb:
		return "B8G8R8A8_SRGB"
	case FormatR32G32Sfloat:
		return "R32G32_SFLOAT"
	case FormatR32G32B32Sfloat:
		return "R32G32B32_SFLOAT"
	case FormatD32Sfloat:
		return "D32_SFLOAT"
	case FormatD24UnormS8Uint:
		return "D24_UNORM_S8_UINT"
	case FormatD32SfloatS8Uint:
		return "D32_SFLOAT_S8_UINT"
	}
	return fmt.Sprintf("FORMAT(%d)", int32(f))
}

type ColorSpace int32

const ColorSpaceSrgbNonlinear ColorSpace = 0

type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

type PresentMode int32

const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFifo        PresentMode = 2
	PresentModeFifoRelaxed PresentMode = 3
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeImmediate:
		return "IMMEDIATE"
	case PresentModeMailbox:
		return "MAILBOX"
	case PresentModeFifo:
		return "FIFO"
	case PresentModeFifoRelaxed:
		return "FIFO_RELAXED"
	}
	return fmt.Sprintf("PRESENT_MODE(%d)", int32(m))
}

type Extent2D struct {
	Width  uint32
	Height uint32
}

func (e Extent2D) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}

// UndefinedExtentSize in CurrentExtent.Width means the surface lets the
// swapchain pick its own extent.
const UndefinedExtentSize = ^uint32(0)

type SurfaceCapabilities struct {
	MinImageCount uint32
	// Zero means no upper bound.
	MaxImageCount  uint32
	CurrentExtent  Extent2D
	MinImageExtent Extent2D
	MaxImageExtent Extent2D
}

// ChainSupport is what a physical device reports for a surface.
type ChainSupport struct {
	Capabilities SurfaceCapabilities
	Formats      []SurfaceFormat
	PresentModes []PresentMode
}

type QueueFamilyIndices struct {
	Graphics uint32
	Present  uint32
}

type SharingMode int32

const (
	SharingModeExclusive  SharingMode = 0
	SharingModeConcurrent SharingMode = 1
)

type BufferUsage uint32

const (
	BufferUsageTransferSrc BufferUsage = 0x01
	BufferUsageTransferDst BufferUsage = 0x02
	BufferUsageUniform     BufferUsage = 0x10
	BufferUsageIndex       BufferUsage = 0x40
	BufferUsageVertex      BufferUsage = 0x80
)

// Residency is the memory placement hint for a buffer.
type Residency int

const (
	// Only the GPU touches it.
	ResidencyDeviceLocal Residency = iota
	// Mapped by the CPU, writes visible without flushes.
	ResidencyHostVisibleCoherent
	// Mapped by the CPU for one-shot transfers into device memory.
	ResidencyStaging
)

func (r Residency) String() string {
	switch r {
	case ResidencyDeviceLocal:
		return "device-local"
	case ResidencyHostVisibleCoherent:
		return "host-visible-coherent"
	case ResidencyStaging:
		return "staging"
	}
	return fmt.Sprintf("residency(%d)", int(r))
}

type ImageUsage uint32

const (
	ImageUsageTransferDst            ImageUsage = 0x02
	ImageUsageSampled                ImageUsage = 0x04
	ImageUsageColorAttachment        ImageUsage = 0x10
	ImageUsageDepthStencilAttachment ImageUsage = 0x20
)

type ImageAspect uint32

const (
	ImageAspectColor   ImageAspect = 0x1
	ImageAspectDepth   ImageAspect = 0x2
	ImageAspectStencil ImageAspect = 0x4
)

type ImageLayout int32

const (
	ImageLayoutUndefined                     ImageLayout = 0
	ImageLayoutColorAttachmentOptimal        ImageLayout = 2
	ImageLayoutDepthStencilAttachmentOptimal ImageLayout = 3
	ImageLayoutShaderReadOnlyOptimal         ImageLayout = 5
	ImageLayoutTransferDstOptimal            ImageLayout = 7
	ImageLayoutPresentSrc                    ImageLayout = 1000001002
)

type ImageCreateInfo struct {
	Extent Extent2D
	Format Format
	Usage  ImageUsage
}

type ShaderStage int

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageFragment
)

func (s ShaderStage) String() string {
	if s == ShaderStageVertex {
		return "vertex"
	}
	return "fragment"
}

type DescriptorType int32

const (
	DescriptorTypeCombinedImageSampler DescriptorType = 1
	DescriptorTypeUniformBuffer        DescriptorType = 6
)

type DescriptorBinding struct {
	Binding uint32
	Type    DescriptorType
	Stage   ShaderStage
}

type DescriptorPoolSize struct {
	Type  DescriptorType
	Count uint32
}

// DescriptorWrite points a binding at a uniform buffer or at a sampled image.
type DescriptorWrite struct {
	Binding    uint32
	Type       DescriptorType
	Buffer     Handle
	BufferSize uint64
	ImageView  Handle
	Sampler    Handle
}

type VertexAttribute struct {
	Location uint32
	Format   Format
	Offset   uint32
}

type PushConstantRange struct {
	Stage ShaderStage
	Size  uint32
}

type ShaderModuleStage struct {
	Module Handle
	Stage  ShaderStage
}

// PipelineCreateInfo is the fixed-function state of one material.
type PipelineCreateInfo struct {
	RenderPass   Handle
	Extent       Extent2D
	Stages       []ShaderModuleStage
	SetLayout    Handle
	Stride       uint32
	Attributes   []VertexAttribute
	PushConstant *PushConstantRange
	DepthTest    bool
	DepthWrite   bool
	CullBack     bool
	Blend        bool
}

type ClearValues struct {
	Color   [4]float32
	Depth   float32
	Stencil uint32
}

// SubmitInfo describes one graphics queue submission. Null handles are
// skipped, which is how one-shot transfers submit without semaphores.
type SubmitInfo struct {
	CommandBuffer Handle
	Wait          Handle
	Signal        Handle
	Fence         Handle
}
