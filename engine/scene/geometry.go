package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/rosella/engine/renderer"
)

// Source is anything that can be turned into vertices and indices. The set of
// implementations is closed: StaticMesh, GuiQuad, ColoredQuad, GlyphQuad, Text
// and Model.
type Source interface {
	source()
}

// StaticMesh is geometry given directly by the caller.
type StaticMesh struct {
	Vertices []renderer.Vertex
	Indices  []uint32
}

// GuiQuad is a white unit quad sampling the whole texture.
type GuiQuad struct {
	Z float32
}

// ColoredQuad is an untextured unit quad.
type ColoredQuad struct {
	Z     float32
	Color mgl32.Vec3
}

// GlyphQuad samples one rectangle of a font atlas.
type GlyphQuad struct {
	Z      float32
	Color  mgl32.Vec3
	Center mgl32.Vec2
	Size   mgl32.Vec2
	UVMin  mgl32.Vec2
	UVMax  mgl32.Vec2
}

// Text is a laid out string, one glyph quad per visible rune.
type Text struct {
	Glyphs []GlyphQuad
}

// Model is geometry imported from a model file.
type Model struct {
	Name     string
	Vertices []renderer.Vertex
	Indices  []uint32
}

func (StaticMesh) source()  {}
func (GuiQuad) source()     {}
func (ColoredQuad) source() {}
func (GlyphQuad) source()   {}
func (Text) source()        {}
func (*Model) source()      {}

var (
	white     = mgl32.Vec3{1, 1, 1}
	quadIndex = []uint32{0, 1, 2, 2, 3, 0}
)

// Vertices converts a source into vertex and index lists. Quads span
// [-0.5, 0.5] with (-0.5, -0.5) at texture coordinate (0, 0). The returned
// slices are never shared with the source.
func Vertices(src Source) ([]renderer.Vertex, []uint32) {
	switch s := src.(type) {
	case StaticMesh:
		return cloneVertices(s.Vertices), cloneIndices(s.Indices)
	case *StaticMesh:
		return cloneVertices(s.Vertices), cloneIndices(s.Indices)
	case GuiQuad:
		return quad(mgl32.Vec2{}, mgl32.Vec2{1, 1}, s.Z, white, mgl32.Vec2{0, 0}, mgl32.Vec2{1, 1}), cloneIndices(quadIndex)
	case ColoredQuad:
		return quad(mgl32.Vec2{}, mgl32.Vec2{1, 1}, s.Z, s.Color, mgl32.Vec2{}, mgl32.Vec2{}), cloneIndices(quadIndex)
	case GlyphQuad:
		return glyphVertices(s), cloneIndices(quadIndex)
	case Text:
		return textVertices(s.Glyphs)
	case *Text:
		return textVertices(s.Glyphs)
	case *Model:
		return cloneVertices(s.Vertices), cloneIndices(s.Indices)
	}
	return nil, nil
}

func quad(center, size mgl32.Vec2, z float32, color mgl32.Vec3, uvMin, uvMax mgl32.Vec2) []renderer.Vertex {
	hx, hy := size.X()/2, size.Y()/2
	cx, cy := center.X(), center.Y()
	return []renderer.Vertex{
		{Position: mgl32.Vec3{cx - hx, cy - hy, z}, Color: color, UV: mgl32.Vec2{uvMin.X(), uvMin.Y()}},
		{Position: mgl32.Vec3{cx + hx, cy - hy, z}, Color: color, UV: mgl32.Vec2{uvMax.X(), uvMin.Y()}},
		{Position: mgl32.Vec3{cx + hx, cy + hy, z}, Color: color, UV: mgl32.Vec2{uvMax.X(), uvMax.Y()}},
		{Position: mgl32.Vec3{cx - hx, cy + hy, z}, Color: color, UV: mgl32.Vec2{uvMin.X(), uvMax.Y()}},
	}
}

func glyphVertices(g GlyphQuad) []renderer.Vertex {
	return quad(g.Center, g.Size, g.Z, g.Color, g.UVMin, g.UVMax)
}

func textVertices(glyphs []GlyphQuad) ([]renderer.Vertex, []uint32) {
	vertices := make([]renderer.Vertex, 0, len(glyphs)*4)
	indices := make([]uint32, 0, len(glyphs)*6)
	for _, g := range glyphs {
		base := uint32(len(vertices))
		vertices = append(vertices, glyphVertices(g)...)
		for _, i := range quadIndex {
			indices = append(indices, base+i)
		}
	}
	return vertices, indices
}

func cloneVertices(v []renderer.Vertex) []renderer.Vertex {
	return append([]renderer.Vertex(nil), v...)
}

func cloneIndices(i []uint32) []uint32 {
	return append([]uint32(nil), i...)
}
