package renderer_test

import (
	"testing"

	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/renderer"
	"github.com/spaghettifunk/rosella/engine/renderer/rendertest"
)

func TestFindSupportedDepthFormat(t *testing.T) {
	tests := []struct {
		name      string
		supported []renderer.Format
		want      renderer.Format
		wantErr   bool
	}{
		{"all", []renderer.Format{renderer.FormatD24UnormS8Uint, renderer.FormatD32SfloatS8Uint, renderer.FormatD32Sfloat}, renderer.FormatD32Sfloat, false},
		{"stencil float", []renderer.Format{renderer.FormatD24UnormS8Uint, renderer.FormatD32SfloatS8Uint}, renderer.FormatD32SfloatS8Uint, false},
		{"only d24s8", []renderer.Format{renderer.FormatD24UnormS8Uint}, renderer.FormatD24UnormS8Uint, false},
		{"none", nil, renderer.FormatUndefined, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := rendertest.NewDevice()
			dev.DepthFormats = make(map[renderer.Format]bool)
			for _, f := range tt.supported {
				dev.DepthFormats[f] = true
			}
			got, err := renderer.FindSupportedDepthFormat(dev)
			if tt.wantErr {
				if !core.IsFatal(err) {
					t.Fatalf("error = %v, want a fatal configuration error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCreateDepthBuffer(t *testing.T) {
	dev := rendertest.NewDevice()
	pool, _ := dev.CreateCommandPool()

	db, err := renderer.CreateDepthBuffer(dev, pool, renderer.FormatD24UnormS8Uint, renderer.Extent2D{Width: 640, Height: 480})
	if err != nil {
		t.Fatalf("CreateDepthBuffer() error = %v", err)
	}
	if db.Image.IsNull() || db.View.IsNull() {
		t.Fatal("depth buffer has no image or view")
	}
	if dev.Count("SubmitGraphics") != 1 || dev.Count("QueueWaitIdle") != 1 {
		t.Errorf("layout transition not submitted once and waited on")
	}
	if dev.Live("command-buffer") != 0 {
		t.Error("single-use command buffer not freed")
	}

	db.Destroy(dev)
	db.Destroy(dev)
	if len(dev.Errors) > 0 {
		t.Errorf("device misuse: %v", dev.Errors)
	}
	if n := dev.Live("image") + dev.Live("image-view"); n != 0 {
		t.Errorf("%d depth objects alive after Destroy", n)
	}
}
