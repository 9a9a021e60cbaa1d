package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/rosella/engine/core"
)

// Texture is an RGBA8 image sampled by a material. It does not depend on the
// swapchain and survives recreation.
type Texture struct {
	Name   string
	Width  uint32
	Height uint32
	Pixels []byte

	image   Handle
	view    Handle
	sampler Handle
}

func NewTexture(name string, width, height uint32, pixels []byte) (*Texture, error) {
	if width == 0 || height == 0 {
		err := errors.Newf("texture '%s' has an empty size %dx%d", name, width, height)
		core.LogError(err.Error())
		return nil, err
	}
	if want := int(width) * int(height) * 4; len(pixels) != want {
		err := errors.Newf("texture '%s' has %d bytes of pixels, expected %d", name, len(pixels), want)
		core.LogError(err.Error())
		return nil, err
	}
	return &Texture{Name: name, Width: width, Height: height, Pixels: pixels}, nil
}

// whiteTexture stands in for materials without a texture.
func whiteTexture() *Texture {
	return &Texture{Name: "default_white", Width: 1, Height: 1, Pixels: []byte{0xff, 0xff, 0xff, 0xff}}
}

func (t *Texture) uploaded() bool {
	return !t.image.IsNull()
}

func (t *Texture) upload(device Device, allocator *Allocator) error {
	extent := Extent2D{Width: t.Width, Height: t.Height}
	var err error
	if t.image, err = device.CreateImage(ImageCreateInfo{
		Extent: extent,
		Format: FormatR8G8B8A8Srgb,
		Usage:  ImageUsageTransferDst | ImageUsageSampled,
	}); err != nil {
		core.LogError(err.Error())
		return err
	}
	if err := allocator.UploadImage(t.image, FormatR8G8B8A8Srgb, extent, t.Pixels); err != nil {
		t.destroy(device)
		return err
	}
	if t.view, err = device.CreateImageView(t.image, FormatR8G8B8A8Srgb, ImageAspectColor); err != nil {
		core.LogError(err.Error())
		t.destroy(device)
		return err
	}
	if t.sampler, err = device.CreateSampler(); err != nil {
		core.LogError(err.Error())
		t.destroy(device)
		return err
	}
	core.LogDebug("texture '%s' uploaded (%dx%d)", t.Name, t.Width, t.Height)
	return nil
}

func (t *Texture) destroy(device Device) {
	if !t.sampler.IsNull() {
		device.DestroySampler(t.sampler)
		t.sampler = NullHandle
	}
	if !t.view.IsNull() {
		device.DestroyImageView(t.view)
		t.view = NullHandle
	}
	if !t.image.IsNull() {
		device.DestroyImage(t.image)
		t.image = NullHandle
	}
}
