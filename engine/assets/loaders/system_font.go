package loaders

import (
	"image"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/scene"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	defaultFontSize = 32
	firstPrintable  = ' '
	lastPrintable   = '~'
)

type SystemFontLoader struct{}

// Load rasterizes the printable ASCII range of a TrueType or OpenType font
// into a single-row atlas. The "size" param is the pixel size.
func (fl *SystemFontLoader) Load(path string, params Params) (*Resource, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	size, err := strconv.ParseFloat(params.get("size", strconv.Itoa(defaultFontSize)), 64)
	if err != nil || size <= 0 {
		err := core.NewConfigurationError("invalid font size '%s' for '%s'", params["size"], path)
		core.LogError(err.Error())
		return nil, err
	}
	name := params.get("name", path)
	res, err := RasterizeFont(name, data, size)
	if err != nil {
		err = errors.Wrapf(err, "font '%s'", path)
		core.LogError(err.Error())
		return nil, err
	}
	return &Resource{
		Name:     name,
		FullPath: path,
		Type:     ResourceTypeSystemFont,
		DataSize: uint64(len(data)),
		Data:     res,
	}, nil
}

func (fl *SystemFontLoader) Unload(res *Resource) error {
	res.Data = nil
	return nil
}

// RasterizeFont draws every printable ASCII glyph side by side, white on
// transparent, one line high.
func RasterizeFont(name string, data []byte, size float64) (*FontResource, error) {
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	defer face.Close()

	metrics := face.Metrics()
	lineHeight := (metrics.Ascent + metrics.Descent).Ceil()
	if lineHeight <= 0 {
		return nil, errors.Newf("font '%s' has no line height", name)
	}

	type cell struct {
		r       rune
		x       int
		width   int
		advance int
	}
	cells := make([]cell, 0, lastPrintable-firstPrintable+1)
	atlasWidth := 0
	for r := rune(firstPrintable); r <= lastPrintable; r++ {
		bounds, advance, ok := face.GlyphBounds(r)
		if !ok {
			continue
		}
		width := advance.Ceil()
		if w := bounds.Max.X.Ceil(); w > width {
			width = w
		}
		cells = append(cells, cell{r: r, x: atlasWidth, width: width, advance: advance.Round()})
		// One pixel of padding keeps linear filtering from bleeding.
		atlasWidth += width + 1
	}
	if atlasWidth == 0 {
		return nil, errors.Newf("font '%s' has no printable glyphs", name)
	}

	atlas := image.NewRGBA(image.Rect(0, 0, atlasWidth, lineHeight))
	drawer := &font.Drawer{Dst: atlas, Src: image.White, Face: face}
	out := &scene.Font{
		Face:        name,
		LineHeight:  lineHeight,
		Base:        metrics.Ascent.Ceil(),
		AtlasWidth:  atlasWidth,
		AtlasHeight: lineHeight,
		Glyphs:      make(map[rune]scene.Glyph, len(cells)),
		Kerning:     make(map[scene.KerningPair]int),
	}
	for _, c := range cells {
		drawer.Dot = fixed.Point26_6{X: fixed.I(c.x), Y: metrics.Ascent}
		drawer.DrawString(string(c.r))
		out.Glyphs[c.r] = scene.Glyph{
			Codepoint: c.r,
			X:         c.x,
			Width:     c.width,
			Height:    lineHeight,
			XAdvance:  c.advance,
		}
	}
	for _, a := range cells {
		for _, b := range cells {
			if k := face.Kern(a.r, b.r).Round(); k != 0 {
				out.Kerning[scene.KerningPair{First: a.r, Second: b.r}] = k
			}
		}
	}

	texture, err := TextureFromImage(name+"_atlas", atlas)
	if err != nil {
		return nil, err
	}
	return &FontResource{Font: out, Atlas: texture}, nil
}
