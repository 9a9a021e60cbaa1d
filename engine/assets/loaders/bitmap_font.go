package loaders

import (
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/fzipp/bmfont"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/renderer"
	"github.com/spaghettifunk/rosella/engine/scene"
)

// FontResource is what both font loaders produce: the glyph metrics and the
// atlas texture they index.
type FontResource struct {
	Font  *scene.Font
	Atlas *renderer.Texture
}

type BitmapFontLoader struct {
	textures TextureLoader
}

// Load imports an AngelCode .fnt file and its first page image.
func (fl *BitmapFontLoader) Load(path string, params Params) (*Resource, error) {
	bf, err := bmfont.Load(path)
	if err != nil {
		err = errors.Wrapf(err, "loading bitmap font '%s'", path)
		core.LogError(err.Error())
		return nil, err
	}
	font := FontFromDescriptor(bf.Descriptor)
	if font.Atlas == "" {
		err := core.NewConfigurationError("bitmap font '%s' has no page", path)
		core.LogError(err.Error())
		return nil, err
	}
	page, err := fl.textures.Load(filepath.Join(filepath.Dir(path), font.Atlas), Params{"name": font.Face + "_atlas"})
	if err != nil {
		return nil, err
	}
	return &Resource{
		Name:     params.get("name", font.Face),
		FullPath: path,
		Type:     ResourceTypeBitmapFont,
		DataSize: page.DataSize,
		Data:     &FontResource{Font: font, Atlas: page.Data.(*renderer.Texture)},
	}, nil
}

func (fl *BitmapFontLoader) Unload(res *Resource) error {
	res.Data = nil
	return nil
}

// FontFromDescriptor keeps the glyphs of page 0, the only page the atlas
// texture covers.
func FontFromDescriptor(d *bmfont.Descriptor) *scene.Font {
	font := &scene.Font{
		Face:        d.Info.Face,
		LineHeight:  d.Common.LineHeight,
		Base:        d.Common.Base,
		AtlasWidth:  d.Common.ScaleW,
		AtlasHeight: d.Common.ScaleH,
		Glyphs:      make(map[rune]scene.Glyph, len(d.Chars)),
		Kerning:     make(map[scene.KerningPair]int, len(d.Kerning)),
	}
	if p, ok := d.Pages[0]; ok {
		font.Atlas = p.File
	}
	for r, c := range d.Chars {
		if c.Page != 0 {
			continue
		}
		font.Glyphs[r] = scene.Glyph{
			Codepoint: r,
			X:         c.X,
			Y:         c.Y,
			Width:     c.Width,
			Height:    c.Height,
			XOffset:   c.XOffset,
			YOffset:   c.YOffset,
			XAdvance:  c.XAdvance,
		}
	}
	for pair, k := range d.Kerning {
		font.Kerning[scene.KerningPair{First: pair.First, Second: pair.Second}] = k.Amount
	}
	return font
}
