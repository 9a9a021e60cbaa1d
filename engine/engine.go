package engine

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/rosella/engine/assets"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/platform"
	"github.com/spaghettifunk/rosella/engine/renderer"
	"github.com/spaghettifunk/rosella/engine/renderer/vulkan"
	"github.com/spaghettifunk/rosella/engine/scene"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// metricsLogInterval is how often, in seconds, frame statistics are logged.
const metricsLogInterval = 5.0

type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *core.Config
	isRunning    bool
	isSuspended  bool

	// Set from other goroutines, read by the loop.
	quitRequested atomic.Bool

	events       *core.EventSystem
	input        *core.Input
	platform     *platform.Platform
	assetManager *assets.AssetManager
	materials    *assets.MaterialLibrary
	scene        *scene.Registry
	canvas       *scene.Canvas
	context      *vulkan.VulkanContext
	renderer     *renderer.Renderer

	width      uint32
	height     uint32
	clock      *core.Clock
	metrics    *core.Metrics
	lastTime   float64
	lastReport float64
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil || g.ApplicationConfig.Config == nil {
		err := core.NewConfigurationError("game has no application config")
		core.LogError(err.Error())
		return nil, err
	}
	cfg := g.ApplicationConfig.Config
	events := core.NewEventSystem()
	input := core.NewInput(events)
	am := assets.NewAssetManager(cfg.Assets.Dir, events)
	registry := scene.NewRegistry()

	return &Engine{
		currentStage: EngineStageBooting,
		gameInstance: g,
		config:       cfg,
		events:       events,
		input:        input,
		platform:     platform.New(events, input),
		assetManager: am,
		materials:    assets.NewMaterialLibrary(am),
		scene:        registry,
		canvas:       scene.NewCanvas(registry),
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		isRunning:    true,
		width:        cfg.Window.Width,
		height:       cfg.Window.Height,
	}, nil
}

// Initialize opens the window, brings up Vulkan and the renderer, then lets
// the game build its scene. On error everything created so far is released.
func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)

	if err := e.platform.Startup(e.config.Window); err != nil {
		return err
	}
	if err := e.assetManager.Initialize(e.config.Assets.Watch); err != nil {
		e.Shutdown()
		return err
	}

	var err error
	if e.context, err = vulkan.New(e.gameInstance.ApplicationConfig.Name, e.platform, e.config.Renderer); err != nil {
		e.Shutdown()
		return err
	}
	if e.renderer, err = renderer.New(e.context, e.platform, e.scene, e.config.Renderer, e.metrics); err != nil {
		e.Shutdown()
		return err
	}

	systems := &Systems{
		Events:    e.events,
		Input:     e.input,
		Assets:    e.assetManager,
		Materials: e.materials,
		Scene:     e.scene,
		Canvas:    e.canvas,
		Renderer:  e.renderer,
		Metrics:   e.metrics,
	}
	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(systems); err != nil {
			e.Shutdown()
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			e.Shutdown()
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	return nil
}

// Run drives the frame loop until the window closes or a fatal error occurs.
func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		e.platform.PumpMessages()
		if e.quitRequested.Load() {
			e.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
			break
		}
		if e.platform.ShouldClose() {
			e.isRunning = false
			break
		}
		if e.isSuspended {
			// Nothing to draw into; sleep until the window changes.
			e.platform.WaitEvents()
			continue
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStartTime := core.AbsoluteTime()

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogError("Game update failed, shutting down: %s", err)
				return err
			}
		}

		e.reloadChangedAssets()

		if e.gameInstance.FnRender != nil {
			if err := e.gameInstance.FnRender(delta); err != nil {
				core.LogError("Game render failed, shutting down: %s", err)
				return err
			}
		}

		if err := e.renderer.DrawFrame(); err != nil {
			if core.IsFatal(err) {
				core.LogError("frame failed, shutting down: %s", err)
				return err
			}
			core.LogWarn("frame skipped: %s", err)
		}

		e.metrics.Update(core.AbsoluteTime() - frameStartTime)
		if currentTime-e.lastReport >= metricsLogInterval {
			fps, ms := e.metrics.Frame()
			core.LogDebug("%.0f fps, %.2f ms/frame, %d frames, %d swapchain recreations",
				fps, ms, e.metrics.TotalFrames(), e.metrics.Recreations())
			e.lastReport = currentTime
		}

		// NOTE: Input update/state copying should always be handled
		// after any input should be recorded; I.E. before this line.
		e.input.Update(delta)
		e.lastTime = currentTime
	}
	return nil
}

// reloadChangedAssets picks up files changed on disk. A material built from
// any of them gets its new shader or texture with the next recreation; a
// broken file keeps the old material.
func (e *Engine) reloadChangedAssets() {
	changed := e.assetManager.Drain()
	if len(changed) == 0 {
		return
	}
	reloaded, err := e.materials.Reload(changed)
	if err != nil {
		core.LogError("asset reload failed, keeping the previous version: %s", err)
	}
	if reloaded {
		e.renderer.ReloadMaterials()
	}
}

// Shutdown waits for the GPU to go idle and releases everything in reverse
// creation order. It is safe after a partial Initialize.
func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	var errs error

	if e.renderer != nil {
		e.renderer.Shutdown()
		e.renderer = nil
	}
	if e.gameInstance.FnShutdown != nil {
		errs = errors.CombineErrors(errs, e.gameInstance.FnShutdown())
	}
	if e.context != nil {
		e.context.Destroy()
		e.context = nil
	}
	errs = errors.CombineErrors(errs, e.assetManager.Shutdown())
	errs = errors.CombineErrors(errs, e.platform.Shutdown())
	errs = errors.CombineErrors(errs, e.events.Shutdown())

	e.currentStage = EngineStageUninitialized
	return errs
}

// RequestQuit stops the loop after the current frame. It may be called from
// any goroutine.
func (e *Engine) RequestQuit() {
	e.quitRequested.Store(true)
	e.platform.Wake()
}

// GetFramebufferSize returns the width and height (in this order)
// of the application Framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	if code == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onKey(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	if core.KeyCode(context.Data.U32[0]) == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		e.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
		// Block anything else from processing this.
		return true
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	width, height := context.Data.U32[0], context.Data.U32[1]
	if width == e.width && height == e.height {
		return false
	}
	e.width, e.height = width, height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if e.renderer != nil {
		e.renderer.OnResize(width, height)
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
	return false
}
