package loaders

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/renderer"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

type TextureLoader struct{}

// Load decodes a png, jpeg, bmp or webp image into an RGBA8 texture. Data is a
// *renderer.Texture that has not been uploaded yet.
func (tl *TextureLoader) Load(path string, params Params) (*Resource, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		err = errors.Wrapf(err, "decoding image '%s'", path)
		core.LogError(err.Error())
		return nil, err
	}
	name := params.get("name", path)
	texture, err := TextureFromImage(name, img)
	if err != nil {
		return nil, err
	}
	core.LogDebug("decoded %s image '%s' (%dx%d)", format, name, texture.Width, texture.Height)
	return &Resource{
		Name:     name,
		FullPath: path,
		Type:     ResourceTypeImage,
		DataSize: uint64(len(data)),
		Data:     texture,
	}, nil
}

func (tl *TextureLoader) Unload(res *Resource) error {
	res.Data = nil
	return nil
}

// ToRGBA converts any image to tightly packed RGBA8 with its origin at 0,0.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == 4*b.Dx() {
		return rgba
	}
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

func TextureFromImage(name string, img image.Image) (*renderer.Texture, error) {
	rgba := ToRGBA(img)
	b := rgba.Bounds()
	return renderer.NewTexture(name, uint32(b.Dx()), uint32(b.Dy()), rgba.Pix)
}
