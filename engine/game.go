package engine

import (
	"github.com/spaghettifunk/rosella/engine/assets"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/renderer"
	"github.com/spaghettifunk/rosella/engine/scene"
)

// Systems is what a game gets to build its scene with.
type Systems struct {
	Events    *core.EventSystem
	Input     *core.Input
	Assets    *assets.AssetManager
	Materials *assets.MaterialLibrary
	Scene     *scene.Registry
	Canvas    *scene.Canvas
	Renderer  *renderer.Renderer
	Metrics   *core.Metrics
}

type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

type Initialize func(systems *Systems) error
type Update func(deltaTime float64) error
type Render func(deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
