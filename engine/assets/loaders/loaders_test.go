package loaders_test

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spaghettifunk/rosella/engine/assets/loaders"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/renderer"
	"github.com/spaghettifunk/rosella/engine/scene"
	"golang.org/x/image/font/gofont/goregular"
)

var spirvHeader = []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encoding %s: %v", path, err)
	}
	return path
}

func TestDecodeSPIRV(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"valid", spirvHeader, false},
		{"empty", nil, true},
		{"not word aligned", spirvHeader[:6], true},
		{"bad magic", []byte{1, 2, 3, 4}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := loaders.DecodeSPIRV(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeSPIRV() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (code[0] != loaders.SpirvMagic || code[1] != 0x00010000) {
				t.Errorf("words = %#x", code)
			}
		})
	}
}

func TestShaderLoader(t *testing.T) {
	path := writeFile(t, t.TempDir(), "test.vert.spv", spirvHeader)
	res, err := (&loaders.ShaderLoader{}).Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if code, ok := res.Data.([]uint32); !ok || len(code) != 2 {
		t.Errorf("Data = %#v, want two SPIR-V words", res.Data)
	}
	if res.DataSize != uint64(len(spirvHeader)) {
		t.Errorf("DataSize = %d", res.DataSize)
	}
}

func TestParseMaterialConfig(t *testing.T) {
	cfg, err := loaders.ParseMaterialConfig([]byte(`
id = "rosella:gui"
vertex = "gui.vert.spv"
fragment = "gui.frag.spv"
blend = true
cull_back = false
`))
	if err != nil {
		t.Fatalf("ParseMaterialConfig: %v", err)
	}
	if cfg.Identifier != core.NewIdentifier("rosella", "gui") {
		t.Errorf("identifier = %s", cfg.Identifier)
	}
	if !cfg.Blend || cfg.CullBack || !cfg.DepthTest || !cfg.DepthWrite {
		t.Errorf("flags = %+v, want blend, no cull, depth defaults kept", cfg)
	}

	bad := []string{
		`id = "rosella:x"` + "\nvertex = \"a.spv\"",
		`id = ":broken"` + "\nvertex = \"a.spv\"\nfragment = \"b.spv\"",
		`id = [`,
	}
	for _, doc := range bad {
		if _, err := loaders.ParseMaterialConfig([]byte(doc)); !core.IsFatal(err) {
			t.Errorf("ParseMaterialConfig(%q) error = %v, want a configuration error", doc, err)
		}
	}
}

func TestMaterialLoaderResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "basic.material.toml", []byte(`
id = "rosella:basic"
vertex = "shaders/basic.vert.spv"
fragment = "shaders/basic.frag.spv"
texture = "textures/grass.png"
`))
	res, err := (&loaders.MaterialLoader{}).Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg := res.Data.(*loaders.MaterialConfig)
	if want := filepath.Join(dir, "shaders", "basic.vert.spv"); cfg.Vertex != want {
		t.Errorf("vertex = %s, want %s", cfg.Vertex, want)
	}
	if want := filepath.Join(dir, "textures", "grass.png"); cfg.Texture != want {
		t.Errorf("texture = %s, want %s", cfg.Texture, want)
	}
}

func TestTextureLoader(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{B: 255, A: 255})
	path := writePNG(t, t.TempDir(), "two.png", img)

	res, err := (&loaders.TextureLoader{}).Load(path, loaders.Params{"name": "two"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tex := res.Data.(*renderer.Texture)
	if tex.Name != "two" || tex.Width != 2 || tex.Height != 1 {
		t.Fatalf("texture = %s %dx%d", tex.Name, tex.Width, tex.Height)
	}
	want := []byte{255, 0, 0, 255, 0, 0, 255, 255}
	if string(tex.Pixels) != string(want) {
		t.Errorf("pixels = %v, want %v", tex.Pixels, want)
	}
}

func TestToRGBARebasesSubImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src.Set(2, 2, color.RGBA{G: 255, A: 255})
	sub := src.SubImage(image.Rect(2, 2, 4, 4))
	rgba := loaders.ToRGBA(sub)
	if rgba.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("bounds = %v", rgba.Bounds())
	}
	if got := rgba.RGBAAt(0, 0); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("origin pixel = %v", got)
	}
	if len(rgba.Pix) != 2*2*4 {
		t.Errorf("pixel buffer is %d bytes, want tightly packed", len(rgba.Pix))
	}
}

func TestModelLoader(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tri.obj", []byte("o tri\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"))
	res, err := (&loaders.ModelLoader{}).Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	model := res.Data.(*scene.Model)
	if model.Name != "tri.obj" || len(model.Vertices) != 3 || len(model.Indices) != 3 {
		t.Errorf("model = %s with %d vertices, %d indices", model.Name, len(model.Vertices), len(model.Indices))
	}
}

const testFNT = `info face="Test" size=10 bold=0 italic=0 charset="" unicode=1 stretchH=100 smooth=1 aa=1 padding=0,0,0,0 spacing=1,1 outline=0
common lineHeight=10 base=8 scaleW=20 scaleH=10 pages=1 packed=0 alphaChnl=0 redChnl=4 greenChnl=4 blueChnl=4
page id=0 file="test_0.png"
chars count=2
char id=65 x=0 y=0 width=10 height=10 xoffset=0 yoffset=0 xadvance=10 page=0 chnl=15
char id=66 x=10 y=0 width=10 height=10 xoffset=0 yoffset=0 xadvance=10 page=0 chnl=15
kernings count=1
kerning first=65 second=66 amount=-1
`

func TestBitmapFontLoader(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "test_0.png", image.NewRGBA(image.Rect(0, 0, 20, 10)))
	path := writeFile(t, dir, "test.fnt", []byte(testFNT))

	res, err := (&loaders.BitmapFontLoader{}).Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	fr := res.Data.(*loaders.FontResource)
	if fr.Font.Face != "Test" || fr.Font.LineHeight != 10 || fr.Font.AtlasWidth != 20 {
		t.Errorf("font = %+v", fr.Font)
	}
	if g, err := fr.Font.Glyph('B'); err != nil || g.X != 10 {
		t.Errorf("glyph B = %+v, %v", g, err)
	}
	if k := fr.Font.Kerning[scene.KerningPair{First: 'A', Second: 'B'}]; k != -1 {
		t.Errorf("kerning A-B = %d, want -1", k)
	}
	if fr.Atlas.Width != 20 || fr.Atlas.Height != 10 {
		t.Errorf("atlas = %dx%d", fr.Atlas.Width, fr.Atlas.Height)
	}
}

func TestRasterizeFont(t *testing.T) {
	fr, err := loaders.RasterizeFont("goregular", goregular.TTF, 16)
	if err != nil {
		t.Fatalf("RasterizeFont: %v", err)
	}
	font := fr.Font
	if font.AtlasHeight != font.LineHeight || font.LineHeight <= 0 {
		t.Errorf("atlas height %d, line height %d", font.AtlasHeight, font.LineHeight)
	}
	if int(fr.Atlas.Width) != font.AtlasWidth || int(fr.Atlas.Height) != font.AtlasHeight {
		t.Errorf("texture %dx%d does not match font atlas %dx%d", fr.Atlas.Width, fr.Atlas.Height, font.AtlasWidth, font.AtlasHeight)
	}
	text, err := scene.LayoutText(font, "Hello\nWorld", scene.TextStyle{Scale: 1})
	if err != nil {
		t.Fatalf("LayoutText: %v", err)
	}
	if len(text.Glyphs) != len(strings.ReplaceAll("Hello\nWorld", "\n", "")) {
		t.Errorf("laid out %d glyphs", len(text.Glyphs))
	}
}
