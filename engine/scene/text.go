package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/rosella/engine/core"
)

// LineAdvance is how far a newline moves the pen down, in line units.
const LineAdvance = 0.8

// Glyph is one character cell of a font atlas, in atlas pixels.
type Glyph struct {
	Codepoint rune
	X         int
	Y         int
	Width     int
	Height    int
	XOffset   int
	YOffset   int
	XAdvance  int
}

type KerningPair struct {
	First  rune
	Second rune
}

// Font is a bitmap font. Layout measures everything relative to LineHeight,
// so one line unit is one line of text at scale 1.
type Font struct {
	Face        string
	LineHeight  int
	Base        int
	AtlasWidth  int
	AtlasHeight int
	// Atlas is the page image, relative to the font file.
	Atlas   string
	Glyphs  map[rune]Glyph
	Kerning map[KerningPair]int
}

func (f *Font) Glyph(r rune) (Glyph, error) {
	g, ok := f.Glyphs[r]
	if !ok {
		return Glyph{}, core.NewNotFoundError("glyph", fmt.Sprintf("%q in font '%s'", r, f.Face))
	}
	return g, nil
}

// TextStyle places a string. Scale multiplies every glyph quad and the pen
// movement; the pen starts at Origin.
type TextStyle struct {
	Origin mgl32.Vec2
	Scale  float32
	Z      float32
	Color  mgl32.Vec3
}

// LayoutText turns a string into one glyph quad per rune. Y grows downwards,
// matching clip space. A rune the font lacks fails the whole layout.
func LayoutText(font *Font, text string, style TextStyle) (Text, error) {
	if font.LineHeight <= 0 || font.AtlasWidth <= 0 || font.AtlasHeight <= 0 {
		err := core.NewConfigurationError("font '%s' has no line height or atlas size", font.Face)
		core.LogError(err.Error())
		return Text{}, err
	}
	scale := style.Scale
	if scale == 0 {
		scale = 1
	}
	unit := scale / float32(font.LineHeight)
	atlasW, atlasH := float32(font.AtlasWidth), float32(font.AtlasHeight)

	out := Text{Glyphs: make([]GlyphQuad, 0, len(text))}
	penX, penY := style.Origin.X(), style.Origin.Y()
	var prev rune = -1
	for _, r := range text {
		if r == '\n' {
			penY += LineAdvance * scale
			penX = style.Origin.X()
			prev = -1
			continue
		}
		g, err := font.Glyph(r)
		if err != nil {
			core.LogError(err.Error())
			return Text{}, err
		}
		if prev >= 0 {
			penX += float32(font.Kerning[KerningPair{First: prev, Second: r}]) * unit
		}
		w, h := float32(g.Width)*unit, float32(g.Height)*unit
		out.Glyphs = append(out.Glyphs, GlyphQuad{
			Z:      style.Z,
			Color:  style.Color,
			Center: mgl32.Vec2{penX + float32(g.XOffset)*unit + w/2, penY + float32(g.YOffset)*unit + h/2},
			Size:   mgl32.Vec2{w, h},
			UVMin:  mgl32.Vec2{float32(g.X) / atlasW, float32(g.Y) / atlasH},
			UVMax:  mgl32.Vec2{float32(g.X+g.Width) / atlasW, float32(g.Y+g.Height) / atlasH},
		})
		penX += float32(g.XAdvance) * unit
		prev = r
	}
	return out, nil
}
