package scene_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/scene"
)

func testFont() *scene.Font {
	return &scene.Font{
		Face:        "test",
		LineHeight:  10,
		AtlasWidth:  100,
		AtlasHeight: 100,
		Glyphs: map[rune]scene.Glyph{
			'A': {Codepoint: 'A', X: 0, Y: 0, Width: 10, Height: 10, XAdvance: 10},
			'B': {Codepoint: 'B', X: 10, Y: 0, Width: 10, Height: 10, XAdvance: 10},
		},
		Kerning: map[scene.KerningPair]int{},
	}
}

func near(a, b mgl32.Vec2) bool {
	return a.ApproxEqualThreshold(b, 1e-5)
}

func TestLayoutText(t *testing.T) {
	text, err := scene.LayoutText(testFont(), "AB\nA", scene.TextStyle{Scale: 2})
	if err != nil {
		t.Fatalf("LayoutText: %v", err)
	}
	if len(text.Glyphs) != 3 {
		t.Fatalf("got %d glyphs, want 3", len(text.Glyphs))
	}
	tests := []struct {
		center mgl32.Vec2
		uvMin  mgl32.Vec2
	}{
		{mgl32.Vec2{1, 1}, mgl32.Vec2{0, 0}},
		{mgl32.Vec2{3, 1}, mgl32.Vec2{0.1, 0}},
		// newline: down 0.8 lines at scale 2, back to x = 0
		{mgl32.Vec2{1, 2.6}, mgl32.Vec2{0, 0}},
	}
	for i, tt := range tests {
		g := text.Glyphs[i]
		if !near(g.Center, tt.center) {
			t.Errorf("glyph %d center = %v, want %v", i, g.Center, tt.center)
		}
		if !near(g.UVMin, tt.uvMin) {
			t.Errorf("glyph %d uv = %v, want %v", i, g.UVMin, tt.uvMin)
		}
		if !near(g.Size, mgl32.Vec2{2, 2}) {
			t.Errorf("glyph %d size = %v, want scaled to 2x2", i, g.Size)
		}
	}
}

func TestLayoutTextKerning(t *testing.T) {
	font := testFont()
	font.Kerning[scene.KerningPair{First: 'A', Second: 'B'}] = -5
	text, err := scene.LayoutText(font, "AB", scene.TextStyle{Scale: 1})
	if err != nil {
		t.Fatalf("LayoutText: %v", err)
	}
	if got := text.Glyphs[1].Center; !near(got, mgl32.Vec2{1, 0.5}) {
		t.Errorf("kerned glyph center = %v, want (1, 0.5)", got)
	}
}

func TestLayoutTextMissingGlyph(t *testing.T) {
	_, err := scene.LayoutText(testFont(), "AZ", scene.TextStyle{Scale: 1})
	if !core.IsNotFound(err) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
}
