package core

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func TestErrorTaxonomy(t *testing.T) {
	apiErr := errors.Wrap(NewGraphicsAPIError("vkQueueSubmit", -4, "VK_ERROR_DEVICE_LOST"), "render frame")
	if !IsFatal(apiErr) {
		t.Errorf("wrapped graphics API error should be fatal")
	}
	var target *GraphicsAPIError
	if !errors.As(apiErr, &target) || target.Code != -4 {
		t.Errorf("native result code should survive wrapping, got %+v", target)
	}

	nf := NewNotFoundError("material", "rosella:missing")
	if IsFatal(nf) {
		t.Errorf("not found is not fatal")
	}
	if !IsNotFound(errors.Wrap(nf, "lookup")) {
		t.Errorf("wrapped not found should still match")
	}
	if IsFatal(nil) {
		t.Errorf("nil is not fatal")
	}
}

func TestWaitTimeoutError(t *testing.T) {
	err := NewWaitTimeoutError("vkWaitForFences", 2, "VK_TIMEOUT")
	if !errors.Is(err, ErrWaitTimeout) {
		t.Errorf("expected ErrWaitTimeout mark")
	}
	if !IsFatal(err) {
		t.Errorf("a timed out wait is fatal")
	}
}
