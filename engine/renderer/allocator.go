package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/rosella/engine/core"
)

// Allocator is the single place buffers are created. Load-time uploads go
// through a staging buffer and a blocking single-use command buffer.
type Allocator struct {
	device      Device
	commandPool Handle
}

func NewAllocator(device Device, commandPool Handle) *Allocator {
	return &Allocator{device: device, commandPool: commandPool}
}

func (a *Allocator) CreateBuffer(size uint64, usage BufferUsage, residency Residency) (Handle, error) {
	if size == 0 {
		err := errors.Newf("cannot create an empty %s buffer", residency)
		core.LogError(err.Error())
		return NullHandle, err
	}
	buffer, err := a.device.CreateBuffer(size, usage, residency)
	if err != nil {
		core.LogError(err.Error())
		return NullHandle, err
	}
	return buffer, nil
}

func (a *Allocator) DestroyBuffer(buffer Handle) {
	if !buffer.IsNull() {
		a.device.DestroyBuffer(buffer)
	}
}

// Write maps a host-visible buffer, lets fill write into it and unmaps it.
func (a *Allocator) Write(buffer Handle, fill func(dst []byte) error) error {
	mapped, err := a.device.MapBuffer(buffer)
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	defer a.device.UnmapBuffer(buffer)
	return fill(mapped)
}

// StagingCopy returns a filled host-visible transfer source. The caller owns
// it and must destroy it on every path once the copy has executed.
func (a *Allocator) StagingCopy(size uint64, fill func(dst []byte) error) (Handle, error) {
	staging, err := a.CreateBuffer(size, BufferUsageTransferSrc, ResidencyStaging)
	if err != nil {
		return NullHandle, err
	}
	if err := a.Write(staging, fill); err != nil {
		a.DestroyBuffer(staging)
		return NullHandle, err
	}
	return staging, nil
}

// UploadViaStaging creates a device-local buffer of the given usage and fills
// it through a staging copy. It blocks until the transfer is complete, so it
// is for load time only.
func (a *Allocator) UploadViaStaging(usage BufferUsage, size uint64, fill func(dst []byte) error) (Handle, error) {
	staging, err := a.StagingCopy(size, fill)
	if err != nil {
		return NullHandle, err
	}
	defer a.DestroyBuffer(staging)

	dst, err := a.CreateBuffer(size, usage|BufferUsageTransferDst, ResidencyDeviceLocal)
	if err != nil {
		return NullHandle, err
	}
	err = SingleUseCommands(a.device, a.commandPool, func(cmd Handle) {
		a.device.CmdCopyBuffer(cmd, staging, dst, size)
	})
	if err != nil {
		a.DestroyBuffer(dst)
		return NullHandle, err
	}
	return dst, nil
}

// UploadImage copies pixels into a sampled image through a staging buffer and
// leaves it in the shader-read-only layout.
func (a *Allocator) UploadImage(image Handle, format Format, extent Extent2D, pixels []byte) error {
	staging, err := a.StagingCopy(uint64(len(pixels)), func(dst []byte) error {
		copy(dst, pixels)
		return nil
	})
	if err != nil {
		return err
	}
	defer a.DestroyBuffer(staging)

	return SingleUseCommands(a.device, a.commandPool, func(cmd Handle) {
		a.device.CmdTransitionImageLayout(cmd, image, format, ImageLayoutUndefined, ImageLayoutTransferDstOptimal)
		a.device.CmdCopyBufferToImage(cmd, staging, image, extent)
		a.device.CmdTransitionImageLayout(cmd, image, format, ImageLayoutTransferDstOptimal, ImageLayoutShaderReadOnlyOptimal)
	})
}

// SingleUseCommands allocates a command buffer, records into it, submits it
// and waits for the graphics queue to go idle before freeing it.
func SingleUseCommands(device Device, pool Handle, record func(cmd Handle)) error {
	buffers, err := device.AllocateCommandBuffers(pool, 1)
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	defer device.FreeCommandBuffers(pool, buffers)
	cmd := buffers[0]

	if err := device.BeginCommandBuffer(cmd, true); err != nil {
		core.LogError(err.Error())
		return err
	}
	record(cmd)
	if err := device.EndCommandBuffer(cmd); err != nil {
		core.LogError(err.Error())
		return err
	}
	if res := device.SubmitGraphics(SubmitInfo{CommandBuffer: cmd}); res != ResultSuccess {
		return apiError("vkQueueSubmit (single use)", res)
	}
	if res := device.QueueWaitIdle(); res != ResultSuccess {
		return apiError("vkQueueWaitIdle", res)
	}
	return nil
}
