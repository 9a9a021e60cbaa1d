package renderer_test

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/rosella/engine/renderer"
	"github.com/spaghettifunk/rosella/engine/renderer/rendertest"
)

func newAllocator(t *testing.T) (*rendertest.Device, *renderer.Allocator) {
	t.Helper()
	dev := rendertest.NewDevice()
	pool, err := dev.CreateCommandPool()
	if err != nil {
		t.Fatal(err)
	}
	return dev, renderer.NewAllocator(dev, pool)
}

func TestUploadViaStaging(t *testing.T) {
	dev, alloc := newAllocator(t)
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	var staged []byte
	dev.OnMap = func(buffer renderer.Handle) {
		staged = dev.BufferData(buffer)
	}
	buf, err := alloc.UploadViaStaging(renderer.BufferUsageVertex, uint64(len(payload)), func(dst []byte) error {
		copy(dst, payload)
		return nil
	})
	if err != nil {
		t.Fatalf("UploadViaStaging() error = %v", err)
	}
	if buf.IsNull() {
		t.Fatal("null buffer returned")
	}
	if !bytes.Equal(staged, payload) {
		t.Errorf("staged %v, want %v", staged, payload)
	}
	if n := dev.Live("staging-buffer"); n != 0 {
		t.Errorf("%d staging buffers alive after upload", n)
	}
	if dev.Count("QueueWaitIdle") != 1 {
		t.Error("upload did not block on the queue")
	}
}

func TestUploadViaStagingFreesOnError(t *testing.T) {
	t.Run("fill fails", func(t *testing.T) {
		dev, alloc := newAllocator(t)
		_, err := alloc.UploadViaStaging(renderer.BufferUsageIndex, 16, func([]byte) error {
			return errors.New("bad data")
		})
		if err == nil {
			t.Fatal("want error")
		}
		if n := dev.Live("staging-buffer") + dev.Live("buffer"); n != 0 {
			t.Errorf("%d buffers leaked", n)
		}
	})
	t.Run("command buffer allocation fails", func(t *testing.T) {
		dev, alloc := newAllocator(t)
		dev.FailOn["AllocateCommandBuffers"] = errors.New("out of pool memory")
		_, err := alloc.UploadViaStaging(renderer.BufferUsageIndex, 16, func([]byte) error { return nil })
		if err == nil {
			t.Fatal("want error")
		}
		if n := dev.Live("staging-buffer") + dev.Live("buffer"); n != 0 {
			t.Errorf("%d buffers leaked", n)
		}
	})
	t.Run("submit fails", func(t *testing.T) {
		dev, alloc := newAllocator(t)
		dev.SubmitResults = []renderer.Result{renderer.ResultDeviceLost}
		_, err := alloc.UploadViaStaging(renderer.BufferUsageIndex, 16, func([]byte) error { return nil })
		if err == nil {
			t.Fatal("want error")
		}
		if n := dev.Live("staging-buffer") + dev.Live("buffer"); n != 0 {
			t.Errorf("%d buffers leaked", n)
		}
		if n := dev.Live("command-buffer"); n != 0 {
			t.Errorf("%d command buffers leaked", n)
		}
	})
}

func TestCreateBufferRejectsEmpty(t *testing.T) {
	_, alloc := newAllocator(t)
	if _, err := alloc.CreateBuffer(0, renderer.BufferUsageUniform, renderer.ResidencyHostVisibleCoherent); err == nil {
		t.Error("want error for a zero-sized buffer")
	}
}
