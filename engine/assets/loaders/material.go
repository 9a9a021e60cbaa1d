package loaders

import (
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/rosella/engine/core"
)

// MaterialConfig is the content of a .material.toml file. Paths are relative
// to the file.
type MaterialConfig struct {
	ID         string `toml:"id"`
	Vertex     string `toml:"vertex"`
	Fragment   string `toml:"fragment"`
	Texture    string `toml:"texture"`
	Blend      bool   `toml:"blend"`
	DepthTest  bool   `toml:"depth_test"`
	DepthWrite bool   `toml:"depth_write"`
	CullBack   bool   `toml:"cull_back"`

	Identifier core.Identifier `toml:"-"`
}

func defaultMaterialConfig() MaterialConfig {
	return MaterialConfig{
		DepthTest:  true,
		DepthWrite: true,
		CullBack:   true,
	}
}

type MaterialLoader struct{}

func (ml *MaterialLoader) Load(path string, params Params) (*Resource, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseMaterialConfig(data)
	if err != nil {
		err = errors.Wrapf(err, "material '%s'", path)
		core.LogError(err.Error())
		return nil, err
	}
	dir := filepath.Dir(path)
	cfg.Vertex = filepath.Join(dir, cfg.Vertex)
	cfg.Fragment = filepath.Join(dir, cfg.Fragment)
	if cfg.Texture != "" {
		cfg.Texture = filepath.Join(dir, cfg.Texture)
	}
	return &Resource{
		Name:     cfg.Identifier.String(),
		FullPath: path,
		Type:     ResourceTypeMaterial,
		DataSize: uint64(len(data)),
		Data:     cfg,
	}, nil
}

func (ml *MaterialLoader) Unload(res *Resource) error {
	res.Data = nil
	return nil
}

// ParseMaterialConfig decodes a material description. Unset flags keep the
// opaque defaults: depth test and write on, back faces culled.
func ParseMaterialConfig(data []byte) (*MaterialConfig, error) {
	cfg := defaultMaterialConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, core.NewConfigurationError("invalid material description: %v", err)
	}
	if cfg.Vertex == "" || cfg.Fragment == "" {
		return nil, core.NewConfigurationError("material '%s' needs both a vertex and a fragment shader", cfg.ID)
	}
	id, err := core.ParseIdentifier(cfg.ID)
	if err != nil {
		return nil, err
	}
	cfg.Identifier = id
	return &cfg, nil
}
