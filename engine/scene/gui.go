package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/renderer"
)

// Layer is the depth of a GUI element. Later layers draw over earlier ones.
type Layer float32

const (
	LayerBackground  Layer = -0.1
	LayerBackground2 Layer = -0.2
	LayerBackground3 Layer = -0.3
	LayerForeground1 Layer = -0.4
	LayerForeground2 Layer = -0.5
	LayerForeground3 Layer = -0.6
	LayerOverlay1    Layer = -0.7
	LayerTop         Layer = -0.8
)

// Canvas resolution. Rectangles are given in these units regardless of the
// window size.
const (
	CanvasWidth  = 1920
	CanvasHeight = 1080
)

// Canvas places GUI quads into clip space. The GUI shader uses only the model
// matrix, so the transform built here is the final clip-space placement.
type Canvas struct {
	registry *Registry
	names    map[string]uuid.UUID
}

func NewCanvas(registry *Registry) *Canvas {
	return &Canvas{
		registry: registry,
		names:    make(map[string]uuid.UUID),
	}
}

// CanvasTransform maps the unit quad onto the rectangle at (x, y) with the
// given size, in canvas units with y pointing down.
func CanvasTransform(x, y, width, height float32) mgl32.Mat4 {
	sx := width / CanvasWidth * 2
	sy := height / CanvasHeight * 2
	cx := (x+width/2)/CanvasWidth*2 - 1
	cy := (y+height/2)/CanvasHeight*2 - 1
	return mgl32.Translate3D(cx, cy, 0).Mul4(mgl32.Scale3D(sx, sy, 1))
}

// AddRect adds a textured rectangle. A name that is already on the canvas is
// replaced.
func (c *Canvas) AddRect(name string, x, y, width, height float32, layer Layer, material core.Identifier) error {
	return c.add(name, GuiQuad{Z: float32(layer)}, CanvasTransform(x, y, width, height), material)
}

// AddColorRect adds a flat colored rectangle.
func (c *Canvas) AddColorRect(name string, x, y, width, height float32, layer Layer, material core.Identifier, color mgl32.Vec3) error {
	return c.add(name, ColoredQuad{Z: float32(layer), Color: color}, CanvasTransform(x, y, width, height), material)
}

// AddText lays out a string at (x, y). size is the line height in canvas
// units.
func (c *Canvas) AddText(name string, font *Font, text string, x, y, size float32, layer Layer, material core.Identifier, color mgl32.Vec3) error {
	laid, err := LayoutText(font, text, TextStyle{Scale: 1, Z: float32(layer), Color: color})
	if err != nil {
		return err
	}
	// Layout units start at the top left corner of the rectangle.
	transform := CanvasTransform(x, y, size, size).Mul4(mgl32.Translate3D(-0.5, -0.5, 0))
	return c.add(name, laid, transform, material)
}

func (c *Canvas) add(name string, src Source, transform mgl32.Mat4, material core.Identifier) error {
	if old, ok := c.names[name]; ok {
		if err := c.registry.RemoveObject(old); err != nil {
			return err
		}
		delete(c.names, name)
	}
	id, obj, err := c.registry.AddObject(material, src)
	if err != nil {
		return err
	}
	obj.Transform = transform
	c.names[name] = id
	return nil
}

// Remove takes a named element off the canvas.
func (c *Canvas) Remove(name string) error {
	id, ok := c.names[name]
	if !ok {
		err := core.NewNotFoundError("canvas element", name)
		core.LogError(err.Error())
		return err
	}
	delete(c.names, name)
	return c.registry.RemoveObject(id)
}

func (c *Canvas) Object(name string) (*renderer.RenderObject, error) {
	id, ok := c.names[name]
	if !ok {
		return nil, core.NewNotFoundError("canvas element", name)
	}
	return c.registry.Object(id)
}
