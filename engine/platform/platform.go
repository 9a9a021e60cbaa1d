package platform

import (
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/rosella/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

var keyMap = map[glfw.Key]core.KeyCode{
	glfw.KeyEnter:  core.KEY_ENTER,
	glfw.KeyEscape: core.KEY_ESCAPE,
	glfw.KeySpace:  core.KEY_SPACE,
	glfw.KeyLeft:   core.KEY_LEFT,
	glfw.KeyUp:     core.KEY_UP,
	glfw.KeyRight:  core.KEY_RIGHT,
	glfw.KeyDown:   core.KEY_DOWN,
	glfw.KeyA:      core.KEY_A,
	glfw.KeyD:      core.KEY_D,
	glfw.KeyM:      core.KEY_M,
	glfw.KeyR:      core.KEY_R,
	glfw.KeyS:      core.KEY_S,
	glfw.KeyW:      core.KEY_W,
	glfw.KeyF1:     core.KEY_F1,
}

// Platform owns the GLFW window. It is the renderer's Window and the source
// of the Vulkan surface.
type Platform struct {
	Window *glfw.Window

	events    *core.EventSystem
	input     *core.Input
	startTime float64
}

func New(events *core.EventSystem, input *core.Input) *Platform {
	return &Platform{
		events: events,
		input:  input,
	}
}

func (p *Platform) Startup(cfg core.WindowConfig) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return core.NewConfigurationError("glfw reports no Vulkan loader")
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(cfg.Width), int(cfg.Height), cfg.Title, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		glfw.Terminate()
		return err
	}
	p.Window = window

	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetCloseCallback(p.closeCallback)
	p.Window.SetPos(int(cfg.PosX), int(cfg.PosY))
	p.Window.Show()

	p.startTime = glfw.GetTime()
	core.LogInfo("window '%s' created (%dx%d)", cfg.Title, cfg.Width, cfg.Height)
	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages processes pending window events without blocking.
func (p *Platform) PumpMessages() {
	glfw.PollEvents()
}

func (p *Platform) ShouldClose() bool {
	return p.Window == nil || p.Window.ShouldClose()
}

// Time is seconds since Startup.
func (p *Platform) Time() float64 {
	return glfw.GetTime() - p.startTime
}

func (p *Platform) FramebufferSize() (int, int) {
	return p.Window.GetFramebufferSize()
}

// WaitEvents blocks while the window is minimized.
func (p *Platform) WaitEvents() {
	glfw.WaitEvents()
}

// Wake unblocks WaitEvents. Safe from any goroutine.
func (p *Platform) Wake() {
	glfw.PostEmptyEvent()
}

func (p *Platform) GetRequiredInstanceExtensions() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

func (p *Platform) CreateWindowSurface(instance interface{}, allocCallbacks unsafe.Pointer) (uintptr, error) {
	return p.Window.CreateWindowSurface(instance, allocCallbacks)
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	code, ok := keyMap[key]
	if !ok || action == glfw.Repeat {
		return
	}
	p.input.ProcessKey(code, action == glfw.Press)
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	ctx := core.EventContext{}
	ctx.Data.U32[0] = uint32(width)
	ctx.Data.U32[1] = uint32(height)
	p.events.Fire(core.EVENT_CODE_RESIZED, p, ctx)
}

func (p *Platform) closeCallback(w *glfw.Window) {
	p.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, p, core.EventContext{})
}
