package scene_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/rosella/engine/renderer"
	"github.com/spaghettifunk/rosella/engine/scene"
)

func TestVerticesGuiQuad(t *testing.T) {
	vertices, indices := scene.Vertices(scene.GuiQuad{Z: float32(scene.LayerTop)})
	if len(vertices) != 4 || len(indices) != 6 {
		t.Fatalf("got %d vertices and %d indices, want 4 and 6", len(vertices), len(indices))
	}
	want := []struct {
		pos mgl32.Vec3
		uv  mgl32.Vec2
	}{
		{mgl32.Vec3{-0.5, -0.5, -0.8}, mgl32.Vec2{0, 0}},
		{mgl32.Vec3{0.5, -0.5, -0.8}, mgl32.Vec2{1, 0}},
		{mgl32.Vec3{0.5, 0.5, -0.8}, mgl32.Vec2{1, 1}},
		{mgl32.Vec3{-0.5, 0.5, -0.8}, mgl32.Vec2{0, 1}},
	}
	for i, w := range want {
		if vertices[i].Position != w.pos || vertices[i].UV != w.uv {
			t.Errorf("vertex %d = %v / %v, want %v / %v", i, vertices[i].Position, vertices[i].UV, w.pos, w.uv)
		}
		if vertices[i].Color != (mgl32.Vec3{1, 1, 1}) {
			t.Errorf("vertex %d color = %v, want white", i, vertices[i].Color)
		}
	}
	for i, idx := range []uint32{0, 1, 2, 2, 3, 0} {
		if indices[i] != idx {
			t.Errorf("indices = %v", indices)
			break
		}
	}
}

func TestVerticesColoredQuad(t *testing.T) {
	red := mgl32.Vec3{1, 0, 0}
	vertices, _ := scene.Vertices(scene.ColoredQuad{Color: red})
	for i, v := range vertices {
		if v.Color != red {
			t.Errorf("vertex %d color = %v, want %v", i, v.Color, red)
		}
		if v.UV != (mgl32.Vec2{}) {
			t.Errorf("vertex %d uv = %v, want zero", i, v.UV)
		}
	}
}

func TestVerticesGlyphQuadUsesAtlasRect(t *testing.T) {
	g := scene.GlyphQuad{
		Center: mgl32.Vec2{1, 1},
		Size:   mgl32.Vec2{2, 4},
		UVMin:  mgl32.Vec2{0.25, 0.5},
		UVMax:  mgl32.Vec2{0.5, 0.75},
	}
	vertices, _ := scene.Vertices(g)
	if got := vertices[0]; got.Position != (mgl32.Vec3{0, -1, 0}) || got.UV != (mgl32.Vec2{0.25, 0.5}) {
		t.Errorf("top left = %v / %v", got.Position, got.UV)
	}
	if got := vertices[2]; got.Position != (mgl32.Vec3{2, 3, 0}) || got.UV != (mgl32.Vec2{0.5, 0.75}) {
		t.Errorf("bottom right = %v / %v", got.Position, got.UV)
	}
}

func TestVerticesTextOffsetsIndices(t *testing.T) {
	text := scene.Text{Glyphs: []scene.GlyphQuad{
		{Size: mgl32.Vec2{1, 1}},
		{Center: mgl32.Vec2{1, 0}, Size: mgl32.Vec2{1, 1}},
	}}
	vertices, indices := scene.Vertices(text)
	if len(vertices) != 8 || len(indices) != 12 {
		t.Fatalf("got %d vertices and %d indices, want 8 and 12", len(vertices), len(indices))
	}
	for i, idx := range []uint32{4, 5, 6, 6, 7, 4} {
		if indices[6+i] != idx {
			t.Fatalf("second glyph indices = %v", indices[6:])
		}
	}
}

func TestVerticesStaticMeshIsCopied(t *testing.T) {
	mesh := scene.StaticMesh{
		Vertices: []renderer.Vertex{{}, {}, {}},
		Indices:  []uint32{0, 1, 2},
	}
	vertices, indices := scene.Vertices(mesh)
	vertices[0].Position = mgl32.Vec3{9, 9, 9}
	indices[0] = 7
	if mesh.Vertices[0].Position != (mgl32.Vec3{}) || mesh.Indices[0] != 0 {
		t.Error("Vertices returned slices shared with the source")
	}
}
