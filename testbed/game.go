package testbed

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/spaghettifunk/rosella/engine"
	"github.com/spaghettifunk/rosella/engine/assets/loaders"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/renderer"
	"github.com/spaghettifunk/rosella/engine/renderer/components"
	"github.com/spaghettifunk/rosella/engine/scene"
)

const (
	statsRefresh  = 0.5
	statsFontSize = 32
	turnSpeed     = 1.0
	zoomSpeed     = 2.0
)

var (
	basicMaterial = "materials/basic.material.toml"
	guiMaterial   = "materials/gui.material.toml"
	panelMaterial = "materials/panel.material.toml"

	textMaterialID = core.Identifier{Namespace: "testbed", Path: "text"}
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	systems *engine.Systems
	font    *scene.Font
	camera  *components.Camera

	cubes    []*renderer.RenderObject
	rotation float32
	paused   bool

	width  uint32
	height uint32

	showStats    bool
	statsElapsed float64
	inFlight     int
}

func NewTestGame(config *engine.ApplicationConfig) (*TestGame, error) {
	if config == nil {
		return nil, core.NewConfigurationError("testbed needs an application config")
	}
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State: &gameState{
				showStats: true,
				inFlight:  config.Config.Renderer.FramesInFlight,
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) Initialize(systems *engine.Systems) error {
	core.LogDebug("TestGame Initialize fn....")

	state := g.State.(*gameState)
	state.systems = systems
	state.camera = components.NewCamera()
	state.camera.Apply(systems.Renderer.Camera())

	materials := make(map[string]*renderer.Material)
	for _, name := range []string{basicMaterial, guiMaterial, panelMaterial} {
		m, err := systems.Materials.Load(name)
		if err != nil {
			core.LogError("failed to load material '%s'", name)
			return err
		}
		if err := systems.Scene.RegisterMaterial(m); err != nil {
			return err
		}
		materials[name] = m
	}

	// The text material shares the GUI shaders and samples the font atlas.
	fontRes, err := loaders.RasterizeFont("Go Regular", goregular.TTF, statsFontSize)
	if err != nil {
		return err
	}
	state.font = fontRes.Font
	gui := materials[guiMaterial]
	shader, err := renderer.NewShaderProgram(gui.Shader.Vertex, gui.Shader.Fragment)
	if err != nil {
		return err
	}
	text := renderer.NewMaterial(textMaterialID, shader, fontRes.Atlas)
	text.Blend = true
	text.DepthWrite = false
	text.CullBack = false
	if err := systems.Scene.RegisterMaterial(text); err != nil {
		return err
	}

	// Three cubes side by side.
	basicID := materials[basicMaterial].ID
	for i, size := range []float32{1.0, 0.6, 0.3} {
		_, obj, err := systems.Scene.AddObject(basicID, Cube(size))
		if err != nil {
			return err
		}
		// Position is pushed per draw and added after the model transform.
		obj.Position = mgl32.Vec3{0, float32(i)*1.2 - 1.2, 0}
		state.cubes = append(state.cubes, obj)
	}

	panelID := materials[panelMaterial].ID
	if err := systems.Canvas.AddColorRect("stats-background", 16, 16, 760, 56, scene.LayerBackground, panelID, mgl32.Vec3{0.1, 0.1, 0.12}); err != nil {
		return err
	}
	if err := systems.Canvas.AddRect("logo", scene.CanvasWidth-144, 16, 128, 128, scene.LayerForeground1, materials[guiMaterial].ID); err != nil {
		return err
	}
	if err := g.updateStats(); err != nil {
		return err
	}

	systems.Events.Register(core.EVENT_CODE_KEY_RELEASED, g, g.gameOnKey)
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)

	if !state.paused {
		state.rotation += float32(0.5 * deltaTime)
	}
	for i, cube := range state.cubes {
		// Every other cube spins the other way.
		angle := state.rotation
		if i%2 == 1 {
			angle = -angle
		}
		cube.Transform = mgl32.HomogRotate3DZ(angle)
	}

	g.moveCamera(float32(deltaTime))

	state.statsElapsed += deltaTime
	if state.showStats && state.statsElapsed >= statsRefresh {
		state.statsElapsed = 0
		return g.updateStats()
	}
	return nil
}

func (g *TestGame) Render(deltaTime float64) error {
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogDebug("TestGame Shutdown fn....")
	state := g.State.(*gameState)
	state.cubes = nil
	return nil
}

// moveCamera orbits with the arrows or WASD.
func (g *TestGame) moveCamera(dt float32) {
	state := g.State.(*gameState)
	input := state.systems.Input
	moved := false
	if input.IsKeyDown(core.KEY_LEFT) || input.IsKeyDown(core.KEY_A) {
		state.camera.Yaw(turnSpeed * dt)
		moved = true
	}
	if input.IsKeyDown(core.KEY_RIGHT) || input.IsKeyDown(core.KEY_D) {
		state.camera.Yaw(-turnSpeed * dt)
		moved = true
	}
	if input.IsKeyDown(core.KEY_UP) {
		state.camera.Pitch(turnSpeed * dt)
		moved = true
	}
	if input.IsKeyDown(core.KEY_DOWN) {
		state.camera.Pitch(-turnSpeed * dt)
		moved = true
	}
	if input.IsKeyDown(core.KEY_W) {
		state.camera.Zoom(zoomSpeed * dt)
		moved = true
	}
	if input.IsKeyDown(core.KEY_S) {
		state.camera.Zoom(-zoomSpeed * dt)
		moved = true
	}
	if moved {
		state.camera.Apply(state.systems.Renderer.Camera())
	}
}

func (g *TestGame) updateStats() error {
	state := g.State.(*gameState)
	metrics := state.systems.Metrics
	fps, frameTime := metrics.Frame()
	text := fmt.Sprintf("FPS: %5.1f (%4.1fms) %dx%d frames in flight: %d recreations: %d",
		fps, frameTime, state.width, state.height, state.inFlight, metrics.Recreations())
	return state.systems.Canvas.AddText("stats", state.font, text, 24, 24, 40, scene.LayerForeground2, textMaterialID, mgl32.Vec3{1, 1, 1})
}

func (g *TestGame) gameOnKey(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	state := g.State.(*gameState)
	switch core.KeyCode(context.Data.U32[0]) {
	case core.KEY_SPACE:
		state.paused = !state.paused
	case core.KEY_M:
		// Cycle between double and triple buffering.
		next := 2
		if state.inFlight == 2 {
			next = 3
		}
		if err := state.systems.Renderer.SetFramesInFlight(next); err != nil {
			return false
		}
		state.inFlight = next
		core.LogInfo("frames in flight: %d", next)
	case core.KEY_R:
		core.LogInfo("rebuilding pipelines")
		state.systems.Renderer.ReloadMaterials()
	case core.KEY_F1:
		state.showStats = !state.showStats
		if state.showStats {
			if err := g.updateStats(); err != nil {
				core.LogError(err.Error())
			}
			return true
		}
		if err := state.systems.Canvas.Remove("stats"); err != nil {
			core.LogError(err.Error())
		}
	default:
		return false
	}
	return true
}
