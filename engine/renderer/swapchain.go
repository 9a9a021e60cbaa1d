package renderer

import (
	"github.com/spaghettifunk/rosella/engine/core"
	"golang.org/x/exp/constraints"
)

// Swapchain is one immutable build of the presentable chain. A size or format
// change replaces it wholesale.
type Swapchain struct {
	Handle      Handle
	Format      SurfaceFormat
	PresentMode PresentMode
	Extent      Extent2D
	Images      []Handle
	Views       []Handle
}

func (s *Swapchain) ImageCount() int {
	return len(s.Images)
}

var preferredSurfaceFormats = []Format{
	FormatB8G8R8A8Srgb,
	FormatB8G8R8A8Unorm,
	FormatR8G8B8A8Srgb,
	FormatR8G8B8A8Unorm,
}

// ChooseSurfaceFormat prefers an 8-bit BGRA/RGBA format in the sRGB nonlinear
// color space and otherwise takes the first advertised one.
func ChooseSurfaceFormat(formats []SurfaceFormat) SurfaceFormat {
	for _, want := range preferredSurfaceFormats {
		for _, f := range formats {
			if f.Format == want && f.ColorSpace == ColorSpaceSrgbNonlinear {
				return f
			}
		}
	}
	return formats[0]
}

// ChoosePresentMode returns mailbox when allowed and available. FIFO is
// always supported.
func ChoosePresentMode(modes []PresentMode, preferMailbox bool) PresentMode {
	if preferMailbox {
		for _, m := range modes {
			if m == PresentModeMailbox {
				return m
			}
		}
	}
	return PresentModeFifo
}

// ChooseExtent uses the surface's fixed extent when it has one and clamps the
// window size otherwise.
func ChooseExtent(caps SurfaceCapabilities, width, height uint32) Extent2D {
	if caps.CurrentExtent.Width != UndefinedExtentSize {
		return caps.CurrentExtent
	}
	return Extent2D{
		Width:  Clamp(width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: Clamp(height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// ChooseImageCount asks for one image more than the minimum, and never fewer
// than framesInFlight, capped by the surface maximum when it has one.
func ChooseImageCount(caps SurfaceCapabilities, framesInFlight int) uint32 {
	count := caps.MinImageCount + 1
	if n := uint32(framesInFlight); n > count {
		count = n
	}
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// ChooseSharingMode shares images between both families when graphics and
// present are different queues.
func ChooseSharingMode(families QueueFamilyIndices) (SharingMode, []uint32) {
	if families.Graphics != families.Present {
		return SharingModeConcurrent, []uint32{families.Graphics, families.Present}
	}
	return SharingModeExclusive, nil
}

func Clamp[T constraints.Ordered](value, min, max T) T {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// BuildSwapchain creates the chain and its color views. On failure everything
// created so far is released and no Swapchain is returned.
func BuildSwapchain(device Device, width, height uint32, framesInFlight int, preferMailbox bool) (sc *Swapchain, err error) {
	support, err := device.QueryChainSupport()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	if len(support.Formats) == 0 || len(support.PresentModes) == 0 {
		err := core.NewConfigurationError("device does not support the surface: %d formats, %d present modes",
			len(support.Formats), len(support.PresentModes))
		core.LogError(err.Error())
		return nil, err
	}

	sharing, families := ChooseSharingMode(device.QueueFamilies())
	info := SwapchainCreateInfo{
		Format:        ChooseSurfaceFormat(support.Formats),
		PresentMode:   ChoosePresentMode(support.PresentModes, preferMailbox),
		Extent:        ChooseExtent(support.Capabilities, width, height),
		MinImageCount: ChooseImageCount(support.Capabilities, framesInFlight),
		SharingMode:   sharing,
		QueueFamilies: families,
	}

	handle, err := device.CreateSwapchain(info)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	sc = &Swapchain{
		Handle:      handle,
		Format:      info.Format,
		PresentMode: info.PresentMode,
		Extent:      info.Extent,
	}
	defer func() {
		if err != nil {
			sc.Destroy(device)
			sc = nil
		}
	}()

	sc.Images, err = device.SwapchainImages(handle)
	if err != nil {
		core.LogError(err.Error())
		return sc, err
	}
	sc.Views = make([]Handle, 0, len(sc.Images))
	for _, image := range sc.Images {
		view, err := device.CreateImageView(image, info.Format.Format, ImageAspectColor)
		if err != nil {
			core.LogError(err.Error())
			return sc, err
		}
		sc.Views = append(sc.Views, view)
	}

	core.LogDebug("swapchain created: %dx%d, %d images, %s, %s",
		sc.Extent.Width, sc.Extent.Height, len(sc.Images), sc.Format.Format, sc.PresentMode)
	return sc, nil
}

// DestroyViews releases the image views. The images belong to the swapchain.
func (s *Swapchain) DestroyViews(device Device) {
	for _, view := range s.Views {
		device.DestroyImageView(view)
	}
	s.Views = nil
}

func (s *Swapchain) DestroyHandle(device Device) {
	if !s.Handle.IsNull() {
		device.DestroySwapchain(s.Handle)
	}
	s.Handle = NullHandle
	s.Images = nil
}

func (s *Swapchain) Destroy(device Device) {
	s.DestroyViews(device)
	s.DestroyHandle(device)
}
