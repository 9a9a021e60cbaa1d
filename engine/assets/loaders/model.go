package loaders

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/rosella/engine/scene"
)

type ModelLoader struct{}

// Load decodes an OBJ file. A .mtl file with the same base name is used when
// present. Data is a *scene.Model.
func (ml *ModelLoader) Load(path string, params Params) (*Resource, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	var mtl io.Reader
	mtlPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".mtl"
	if mtlData, err := os.ReadFile(mtlPath); err == nil {
		mtl = bytes.NewReader(mtlData)
	}
	name := params.get("name", filepath.Base(path))
	model, err := scene.DecodeModel(name, bytes.NewReader(data), mtl)
	if err != nil {
		return nil, err
	}
	return &Resource{
		Name:     name,
		FullPath: path,
		Type:     ResourceTypeModel,
		DataSize: uint64(len(data)),
		Data:     model,
	}, nil
}

func (ml *ModelLoader) Unload(res *Resource) error {
	res.Data = nil
	return nil
}
