package renderer_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/renderer"
	"github.com/spaghettifunk/rosella/engine/renderer/rendertest"
)

var spirvStub = []uint32{0x07230203, 0x00010000, 0, 1, 0}

func testMaterial(t *testing.T, name string) *renderer.Material {
	t.Helper()
	shader, err := renderer.NewShaderProgram(spirvStub, spirvStub)
	if err != nil {
		t.Fatal(err)
	}
	return renderer.NewMaterial(core.NewIdentifier("test", name), shader, nil)
}

func testQuad(t *testing.T, m *renderer.Material) *renderer.RenderObject {
	t.Helper()
	vertices := []renderer.Vertex{
		{Position: mgl32.Vec3{-0.5, -0.5, 0}, UV: mgl32.Vec2{0, 0}},
		{Position: mgl32.Vec3{0.5, -0.5, 0}, UV: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{0.5, 0.5, 0}, UV: mgl32.Vec2{1, 1}},
		{Position: mgl32.Vec3{-0.5, 0.5, 0}, UV: mgl32.Vec2{0, 1}},
	}
	obj, err := renderer.NewRenderObject(m, vertices, []uint32{0, 1, 2, 2, 3, 0})
	if err != nil {
		t.Fatal(err)
	}
	return obj
}

type harness struct {
	dev    *rendertest.Device
	win    *rendertest.Window
	scene  *rendertest.Scene
	r      *renderer.Renderer
	config core.RendererConfig
}

// newHarness builds a renderer at 1280x720 with two materials, one quad
// each.
func newHarness(t *testing.T, configure func(h *harness)) *harness {
	t.Helper()
	h := &harness{
		dev:    rendertest.NewDevice(),
		win:    rendertest.NewWindow(1280, 720),
		scene:  rendertest.NewScene(),
		config: core.DefaultConfig().Renderer,
	}
	for _, name := range []string{"gui", "cube"} {
		m := testMaterial(t, name)
		h.scene.AddMaterial(m)
		h.scene.AddObject(testQuad(t, m))
	}
	if configure != nil {
		configure(h)
	}
	r, err := renderer.New(h.dev, h.win, h.scene, h.config, core.NewMetrics())
	if err != nil {
		t.Fatalf("renderer.New() error = %v", err)
	}
	h.r = r
	return h
}

func (h *harness) draw(t *testing.T) {
	t.Helper()
	if err := h.r.DrawFrame(); err != nil {
		t.Fatalf("DrawFrame() error = %v", err)
	}
}

// frameSubmits counts submissions guarded by a ring fence, leaving out
// single-use transfers.
func frameSubmits(dev *rendertest.Device) int {
	n := 0
	for _, sub := range dev.Submits {
		if !sub.Fence.IsNull() {
			n++
		}
	}
	return n
}

// assertCounts checks that every per-image resource matches the image count.
func (h *harness) assertCounts(t *testing.T) {
	t.Helper()
	images := h.r.Swapchain().ImageCount()
	if got := h.r.CommandBufferCount(); got != images {
		t.Errorf("command buffers = %d, want %d", got, images)
	}
	if got := h.r.FramebufferCount(); got != images {
		t.Errorf("framebuffers = %d, want %d", got, images)
	}
	for _, obj := range h.scene.Objects() {
		if got := len(obj.UniformBuffers()); got != images {
			t.Errorf("uniform buffers for %s = %d, want %d", obj.Material.ID, got, images)
		}
		if got := len(obj.DescriptorSets()); got != images {
			t.Errorf("descriptor sets for %s = %d, want %d", obj.Material.ID, got, images)
		}
	}
	if got := h.dev.Live("descriptor-set"); got != images*len(h.scene.Objects()) {
		t.Errorf("live descriptor sets = %d, want %d", got, images*len(h.scene.Objects()))
	}
	if len(h.dev.Errors) > 0 {
		t.Errorf("device misuse: %v", h.dev.Errors)
	}
}

func TestRendererInitialBuild(t *testing.T) {
	h := newHarness(t, nil)
	caps := h.dev.Support.Capabilities

	images := uint32(h.r.Swapchain().ImageCount())
	if images < caps.MinImageCount+1 || images > caps.MaxImageCount {
		t.Errorf("image count %d outside [%d, %d]", images, caps.MinImageCount+1, caps.MaxImageCount)
	}
	if got := h.r.FrameCount(); got != 2 {
		t.Errorf("frames = %d, want 2", got)
	}
	if got := h.dev.Live("fence"); got != 2 {
		t.Errorf("fences = %d, want 2", got)
	}
	if got := h.dev.Live("semaphore"); got != 4 {
		t.Errorf("semaphores = %d, want 4", got)
	}
	if got := h.dev.Live("pipeline"); got != 2 {
		t.Errorf("pipelines = %d, want 2", got)
	}
	if ext := h.r.Swapchain().Extent; ext.Width != 1280 || ext.Height != 720 {
		t.Errorf("extent = %+v, want 1280x720", ext)
	}
	if h.scene.Dirty() {
		t.Error("scene still dirty after the first build")
	}
	h.assertCounts(t)

	for i := 0; i < int(images); i++ {
		draws := 0
		for _, op := range h.dev.Recorded[h.r.CommandBuffer(i)] {
			if op == "DrawIndexed" {
				draws++
			}
		}
		if draws != 2 {
			t.Errorf("command buffer %d records %d draws, want 2", i, draws)
		}
	}
}

func TestRendererRingAdvances(t *testing.T) {
	h := newHarness(t, nil)
	for i := 1; i <= 7; i++ {
		h.draw(t)
		if got, want := h.r.FrameIndex(), i%2; got != want {
			t.Fatalf("after frame %d: ring slot = %d, want %d", i, got, want)
		}
	}
	if got := h.dev.Count("SubmitGraphics"); got < 7 {
		t.Errorf("submits = %d, want at least 7", got)
	}
	if h.dev.Live("fence") != 2 {
		t.Error("ring size changed")
	}
}

func TestRendererUpdatesByImageIndex(t *testing.T) {
	h := newHarness(t, nil)
	if h.r.Swapchain().ImageCount() != 3 || h.r.FrameCount() != 2 {
		t.Fatalf("want 3 images and 2 frames, got %d and %d", h.r.Swapchain().ImageCount(), h.r.FrameCount())
	}
	obj := h.scene.Objects()[0]
	h.dev.ResetCalls()

	var written []int
	h.dev.OnMap = func(buffer renderer.Handle) {
		for img, ubo := range obj.UniformBuffers() {
			if ubo != buffer {
				continue
			}
			written = append(written, img)

			// The last submission that used this image must have finished.
			cmd := h.r.CommandBuffer(img)
			for i := len(h.dev.Submits) - 1; i >= 0; i-- {
				if h.dev.Submits[i].CommandBuffer == cmd {
					if !h.dev.FenceSignaled(h.dev.Submits[i].Fence) {
						t.Errorf("uniform buffer of image %d written while its last submission is in flight", img)
					}
					break
				}
			}
		}
	}

	for i := 0; i < 6; i++ {
		h.draw(t)
	}
	want := []int{0, 1, 2, 0, 1, 2}
	if len(written) != len(want) {
		t.Fatalf("written = %v, want %v", written, want)
	}
	for i := range want {
		if written[i] != want[i] {
			t.Fatalf("written = %v, want %v", written, want)
		}
	}
	// Image 0 was last used by slot 1 on the fourth frame.
	if got := h.r.ImageOwner(0); got != 1 {
		t.Errorf("owner of image 0 = %d, want 1", got)
	}
	for i, sub := range h.dev.Submits {
		if sub.Wait.IsNull() || sub.Signal.IsNull() || sub.Fence.IsNull() {
			t.Errorf("submit %d is missing a semaphore or fence", i)
		}
	}
}

func TestRendererAcquireOutOfDate(t *testing.T) {
	h := newHarness(t, func(h *harness) {
		ok := renderer.ResultSuccess
		h.dev.AcquireResults = []renderer.Result{ok, ok, ok, ok, renderer.ResultErrorOutOfDate}
	})
	for i := 0; i < 4; i++ {
		h.draw(t)
	}
	oldSwapchain := h.r.Swapchain().Handle
	slot := h.r.FrameIndex()
	submits := frameSubmits(h.dev)
	h.dev.Support.Capabilities.MinImageCount = 3

	h.draw(t)
	if got := frameSubmits(h.dev); got != submits {
		t.Errorf("iteration 5 submitted work: %d submits, want %d", got, submits)
	}
	if got := h.r.FrameIndex(); got != slot {
		t.Errorf("ring slot moved from %d to %d", slot, got)
	}
	if got := h.r.Metrics().Recreations(); got != 1 {
		t.Errorf("recreations = %d, want 1", got)
	}
	if got := h.r.Metrics().DroppedFrames(); got != 1 {
		t.Errorf("dropped frames = %d, want 1", got)
	}
	if h.r.Swapchain().Handle == oldSwapchain {
		t.Error("swapchain not replaced")
	}
	if got := h.r.Swapchain().ImageCount(); got != 4 {
		t.Errorf("image count after recreation = %d, want 4", got)
	}
	h.assertCounts(t)

	submits = frameSubmits(h.dev)
	h.draw(t)
	if got := frameSubmits(h.dev); got != submits+1 {
		t.Error("iteration 6 did not submit")
	}
	if got := h.r.FrameIndex(); got != (slot+1)%2 {
		t.Errorf("ring slot = %d, want %d", got, (slot+1)%2)
	}
}

func TestRendererResizeThroughZeroExtent(t *testing.T) {
	h := newHarness(t, func(h *harness) {
		h.dev.Support.Capabilities.CurrentExtent = renderer.Extent2D{
			Width:  renderer.UndefinedExtentSize,
			Height: renderer.UndefinedExtentSize,
		}
		h.dev.Support.Capabilities.MaxImageExtent = renderer.Extent2D{Width: 1920, Height: 560}
	})

	h.win.Width, h.win.Height = 0, 0
	h.win.Pending = [][2]int{{0, 0}, {800, 600}}
	h.r.OnResize(0, 0)
	h.draw(t)

	if h.win.WaitCalls != 2 {
		t.Errorf("WaitEvents called %d times, want 2", h.win.WaitCalls)
	}
	ext := h.r.Swapchain().Extent
	if ext.Width != 800 || ext.Height != 560 {
		t.Errorf("extent = %dx%d, want 800x560", ext.Width, ext.Height)
	}
	if got := h.r.Metrics().Recreations(); got != 1 {
		t.Errorf("recreations = %d, want 1", got)
	}
	if got := h.r.FrameIndex(); got != 1 {
		t.Errorf("ring slot = %d, want 1", got)
	}
	h.assertCounts(t)
}

func TestRendererSuboptimalPresent(t *testing.T) {
	h := newHarness(t, func(h *harness) {
		h.dev.PresentResults = []renderer.Result{renderer.ResultSuboptimal}
	})
	h.draw(t)
	if got := h.dev.Count("Present"); got != 1 {
		t.Errorf("presents = %d, want 1", got)
	}
	if got := h.r.Metrics().Recreations(); got != 1 {
		t.Errorf("recreations = %d, want 1", got)
	}
	if got := h.r.FrameIndex(); got != 1 {
		t.Errorf("ring slot = %d, want 1: the frame completes before recreation", got)
	}
	h.assertCounts(t)
}

func TestRendererFatalResults(t *testing.T) {
	tests := []struct {
		name      string
		configure func(h *harness)
		code      renderer.Result
		timeout   bool
	}{
		{"submit", func(h *harness) { h.dev.SubmitResults = []renderer.Result{renderer.ResultDeviceLost} }, renderer.ResultDeviceLost, false},
		{"present", func(h *harness) { h.dev.PresentResults = []renderer.Result{renderer.ResultSurfaceLost} }, renderer.ResultSurfaceLost, false},
		{"acquire", func(h *harness) { h.dev.AcquireResults = []renderer.Result{renderer.ResultOutOfDeviceMemory} }, renderer.ResultOutOfDeviceMemory, false},
		{"fence timeout", func(h *harness) { h.dev.FenceResults = []renderer.Result{renderer.ResultTimeout} }, renderer.ResultTimeout, true},
		{"present during resize", func(h *harness) {
			h.dev.PresentResults = []renderer.Result{renderer.ResultDeviceLost}
			h.r.OnResize(1280, 720)
		}, renderer.ResultDeviceLost, false},
		{"present during reload", func(h *harness) {
			h.dev.PresentResults = []renderer.Result{renderer.ResultSurfaceLost}
			h.r.ReloadMaterials()
		}, renderer.ResultSurfaceLost, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			tt.configure(h)
			err := h.r.DrawFrame()
			if !core.IsFatal(err) {
				t.Fatalf("DrawFrame() error = %v, want fatal", err)
			}
			var apiErr *core.GraphicsAPIError
			if !errors.As(err, &apiErr) || apiErr.Code != int32(tt.code) {
				t.Errorf("error = %v, want code %d", err, tt.code)
			}
			if got := errors.Is(err, core.ErrWaitTimeout); got != tt.timeout {
				t.Errorf("errors.Is(err, ErrWaitTimeout) = %v, want %v", got, tt.timeout)
			}
			if h.r.Metrics().Recreations() != 0 {
				t.Error("a fatal result triggered recreation")
			}
		})
	}
}

func TestRendererFenceTimeoutConfig(t *testing.T) {
	cfg := core.DefaultConfig().Renderer
	if got := cfg.FenceTimeoutNS(); got != ^uint64(0) {
		t.Errorf("default timeout = %d, want the wait-forever sentinel", got)
	}
	cfg.FenceTimeoutMS = 5
	if got := cfg.FenceTimeoutNS(); got != 5_000_000 {
		t.Errorf("timeout = %d, want 5ms", got)
	}
}

func TestRecreationTeardownOrder(t *testing.T) {
	h := newHarness(t, nil)
	h.dev.ResetCalls()
	h.r.OnResize(1280, 720)
	h.draw(t)

	order := []string{
		"WaitIdle",
		"DestroyDescriptorPool",
		"DestroyPipeline",
		"FreeCommandBuffers",
		"DestroyImageView:image",
		"DestroyImage",
		"DestroyFramebuffer",
		"DestroyRenderPass",
		"DestroyImageView:swapchain-image",
		"DestroySwapchain",
		"CreateSwapchain",
	}
	first := func(name string) int {
		for i, c := range h.dev.Calls {
			if c == name {
				return i
			}
		}
		return -1
	}
	prev := -1
	for _, name := range order {
		idx := first(name)
		if idx < 0 {
			t.Fatalf("%s never called", name)
		}
		if idx < prev {
			t.Errorf("%s at %d came before the previous stage at %d", name, idx, prev)
		}
		prev = idx
	}
	if got := h.dev.Count("DestroyShaderModule"); got != 0 {
		t.Errorf("recreation destroyed %d shader modules", got)
	}
	if got := h.dev.Count("DestroyCommandPool"); got != 0 {
		t.Error("recreation destroyed the command pool")
	}
	h.assertCounts(t)
}

func TestRendererSceneChanges(t *testing.T) {
	h := newHarness(t, nil)
	cube := h.scene.Materials()[1]

	extra := testQuad(t, cube)
	h.scene.AddObject(extra)
	h.draw(t)
	if h.scene.Dirty() {
		t.Error("scene still dirty after a frame")
	}
	h.assertCounts(t)
	draws := 0
	for _, op := range h.dev.Recorded[h.r.CommandBuffer(0)] {
		if op == "DrawIndexed" {
			draws++
		}
	}
	if draws != 3 {
		t.Errorf("draws = %d, want 3", draws)
	}

	buffersBefore := h.dev.Live("buffer")
	h.scene.RemoveObject(extra)
	h.draw(t)
	h.assertCounts(t)
	images := h.r.Swapchain().ImageCount()
	// Vertex and index buffers plus one uniform buffer per image.
	if got, want := h.dev.Live("buffer"), buffersBefore-2-images; got != want {
		t.Errorf("live buffers = %d, want %d", got, want)
	}

	late := testMaterial(t, "late")
	h.scene.AddMaterial(late)
	h.scene.AddObject(testQuad(t, late))
	h.draw(t)
	if late.Pipeline().IsNull() {
		t.Error("material added after start has no pipeline")
	}
	h.assertCounts(t)
}

func TestRendererReloadMaterials(t *testing.T) {
	h := newHarness(t, nil)
	m := h.scene.Materials()[0]
	oldPipeline := m.Pipeline()

	shader, err := renderer.NewShaderProgram(spirvStub, spirvStub)
	if err != nil {
		t.Fatal(err)
	}
	m.Replace(shader, nil)
	h.r.ReloadMaterials()
	h.draw(t)

	if m.Shader != shader {
		t.Error("replacement shader not applied")
	}
	if m.Pipeline() == oldPipeline {
		t.Error("pipeline not rebuilt")
	}
	if got := h.dev.Live("shader-module"); got != 4 {
		t.Errorf("shader modules = %d, want 4", got)
	}
	h.assertCounts(t)
}

func TestRendererReplaceKeepsFallbackTexture(t *testing.T) {
	h := newHarness(t, nil)
	m := h.scene.Materials()[0]
	texture, err := renderer.NewTexture("replacement", 1, 1, []byte{0, 0, 0, 0xff})
	if err != nil {
		t.Fatal(err)
	}
	h.dev.ResetCalls()
	m.Replace(nil, texture)
	h.r.ReloadMaterials()
	h.draw(t)

	if m.Texture != texture {
		t.Fatal("replacement texture not applied")
	}
	// Only the new texture is uploaded; the shared fallback stays alive.
	if got := h.dev.Count("DestroySampler"); got != 0 {
		t.Errorf("samplers destroyed = %d, want 0", got)
	}
	if got := h.dev.Count("CreateSampler"); got != 1 {
		t.Errorf("samplers created = %d, want 1", got)
	}
	if got := h.dev.Live("sampler"); got != 2 {
		t.Errorf("live samplers = %d, want 2", got)
	}
	h.assertCounts(t)
}

func TestRendererChangeFramesInFlight(t *testing.T) {
	h := newHarness(t, nil)
	if err := h.r.SetFramesInFlight(0); err == nil {
		t.Error("SetFramesInFlight(0) accepted")
	}
	if err := h.r.SetFramesInFlight(3); err != nil {
		t.Fatal(err)
	}
	h.draw(t)
	if got := h.r.FrameCount(); got != 3 {
		t.Errorf("frames = %d, want 3", got)
	}
	if got := h.dev.Live("fence"); got != 3 {
		t.Errorf("fences = %d, want 3", got)
	}
	if got := h.dev.Live("semaphore"); got != 6 {
		t.Errorf("semaphores = %d, want 6", got)
	}
	h.assertCounts(t)
}

func TestRendererShutdownReleasesEverything(t *testing.T) {
	h := newHarness(t, nil)
	for i := 0; i < 3; i++ {
		h.draw(t)
	}
	h.r.OnResize(1024, 768)
	h.draw(t)

	h.r.Shutdown()
	if n := h.dev.Live(""); n != 0 {
		t.Errorf("%d objects alive after shutdown: %v", n, h.dev.LiveKinds())
	}
	if len(h.dev.Errors) > 0 {
		t.Errorf("device misuse: %v", h.dev.Errors)
	}
}

func TestNewRendererConfigurationErrors(t *testing.T) {
	t.Run("no depth format", func(t *testing.T) {
		dev := rendertest.NewDevice()
		dev.DepthFormats = nil
		_, err := renderer.New(dev, rendertest.NewWindow(640, 480), rendertest.NewScene(), core.DefaultConfig().Renderer, nil)
		var cfgErr *core.ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("error = %v, want ConfigurationError", err)
		}
		if n := dev.Live(""); n != 0 {
			t.Errorf("%d objects leaked", n)
		}
	})
	t.Run("no frames in flight", func(t *testing.T) {
		cfg := core.DefaultConfig().Renderer
		cfg.FramesInFlight = 0
		_, err := renderer.New(rendertest.NewDevice(), rendertest.NewWindow(640, 480), rendertest.NewScene(), cfg, nil)
		if !core.IsFatal(err) {
			t.Fatalf("error = %v, want fatal", err)
		}
	})
	t.Run("swapchain failure releases everything", func(t *testing.T) {
		dev := rendertest.NewDevice()
		dev.FailOn["CreateSwapchain"] = errors.New("surface lost")
		_, err := renderer.New(dev, rendertest.NewWindow(640, 480), rendertest.NewScene(), core.DefaultConfig().Renderer, nil)
		if err == nil {
			t.Fatal("want error")
		}
		if n := dev.Live(""); n != 0 {
			t.Errorf("%d objects leaked: %v", n, dev.LiveKinds())
		}
	})
}
