package renderer

import "github.com/spaghettifunk/rosella/engine/core"

// Candidates in order of preference.
var depthFormatCandidates = []Format{
	FormatD32Sfloat,
	FormatD32SfloatS8Uint,
	FormatD24UnormS8Uint,
}

// FindSupportedDepthFormat returns the first candidate the device can use as
// an optimal-tiling depth-stencil attachment.
func FindSupportedDepthFormat(device Device) (Format, error) {
	for _, f := range depthFormatCandidates {
		if device.DepthFormatSupported(f) {
			return f, nil
		}
	}
	err := core.NewConfigurationError("device supports none of the depth formats %v", depthFormatCandidates)
	core.LogError(err.Error())
	return FormatUndefined, err
}

type DepthBuffer struct {
	Format Format
	Image  Handle
	View   Handle
}

// CreateDepthBuffer allocates a device-local depth image sized to extent and
// moves it to the attachment layout before any render pass can use it.
func CreateDepthBuffer(device Device, commandPool Handle, format Format, extent Extent2D) (db *DepthBuffer, err error) {
	image, err := device.CreateImage(ImageCreateInfo{
		Extent: extent,
		Format: format,
		Usage:  ImageUsageDepthStencilAttachment,
	})
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	db = &DepthBuffer{Format: format, Image: image}
	defer func() {
		if err != nil {
			db.Destroy(device)
			db = nil
		}
	}()

	aspect := ImageAspectDepth
	if format.HasStencil() {
		aspect |= ImageAspectStencil
	}
	if db.View, err = device.CreateImageView(image, format, aspect); err != nil {
		core.LogError(err.Error())
		return db, err
	}

	err = SingleUseCommands(device, commandPool, func(cmd Handle) {
		device.CmdTransitionImageLayout(cmd, image, format, ImageLayoutUndefined, ImageLayoutDepthStencilAttachmentOptimal)
	})
	return db, err
}

func (db *DepthBuffer) Destroy(device Device) {
	if !db.View.IsNull() {
		device.DestroyImageView(db.View)
		db.View = NullHandle
	}
	if !db.Image.IsNull() {
		device.DestroyImage(db.Image)
		db.Image = NullHandle
	}
}
