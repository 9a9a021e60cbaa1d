package assets

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/rosella/engine/assets/loaders"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/engine/renderer"
)

// MaterialLibrary builds materials from .material.toml files and rebuilds
// them when any file they were made from changes. Render thread only.
type MaterialLibrary struct {
	am        *AssetManager
	materials map[string]*renderer.Material
	// dependency path -> material file paths
	dependents map[string][]string
}

func NewMaterialLibrary(am *AssetManager) *MaterialLibrary {
	return &MaterialLibrary{
		am:         am,
		materials:  make(map[string]*renderer.Material),
		dependents: make(map[string][]string),
	}
}

// Load builds the material described by the named file. Loading the same file
// twice returns the same material.
func (ml *MaterialLibrary) Load(name string) (*renderer.Material, error) {
	path := ml.am.Path(name)
	if m, ok := ml.materials[path]; ok {
		return m, nil
	}
	cfg, err := ml.config(path)
	if err != nil {
		return nil, err
	}
	shader, texture, err := ml.build(cfg)
	if err != nil {
		return nil, err
	}
	m := renderer.NewMaterial(cfg.Identifier, shader, texture)
	applyFlags(m, cfg)
	ml.materials[path] = m
	ml.track(path, cfg)
	core.LogDebug("material '%s' loaded from '%s'", m.ID, path)
	return m, nil
}

// Reload queues new shaders and textures for every material built from one of
// the changed paths. It reports whether anything was queued; the caller then
// asks the renderer to rebuild its pipelines.
func (ml *MaterialLibrary) Reload(changed []string) (bool, error) {
	affected := make(map[string]bool)
	for _, p := range changed {
		for _, materialPath := range ml.dependents[ml.am.Path(p)] {
			affected[materialPath] = true
		}
	}
	reloaded := false
	var errs error
	for path := range affected {
		m := ml.materials[path]
		cfg, err := ml.config(path)
		if err != nil {
			errs = errors.CombineErrors(errs, err)
			continue
		}
		if cfg.Identifier != m.ID {
			core.LogWarn("material '%s' changed its id to '%s', keeping the old one", m.ID, cfg.Identifier)
		}
		shader, texture, err := ml.build(cfg)
		if err != nil {
			errs = errors.CombineErrors(errs, err)
			continue
		}
		m.Replace(shader, texture)
		applyFlags(m, cfg)
		ml.track(path, cfg)
		reloaded = true
		core.LogInfo("material '%s' reloaded", m.ID)
	}
	return reloaded, errs
}

func (ml *MaterialLibrary) config(path string) (*loaders.MaterialConfig, error) {
	res, err := ml.am.Load(path, nil)
	if err != nil {
		return nil, err
	}
	cfg, ok := res.Data.(*loaders.MaterialConfig)
	if !ok {
		err := core.NewConfigurationError("'%s' is a %s, not a material", path, res.Type)
		core.LogError(err.Error())
		return nil, err
	}
	return cfg, nil
}

func (ml *MaterialLibrary) build(cfg *loaders.MaterialConfig) (*renderer.ShaderProgram, *renderer.Texture, error) {
	vertex, err := ml.spirv(cfg.Vertex)
	if err != nil {
		return nil, nil, err
	}
	fragment, err := ml.spirv(cfg.Fragment)
	if err != nil {
		return nil, nil, err
	}
	shader, err := renderer.NewShaderProgram(vertex, fragment)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Texture == "" {
		return shader, nil, nil
	}
	res, err := ml.am.Load(cfg.Texture, loaders.Params{"name": cfg.Identifier.String()})
	if err != nil {
		return nil, nil, err
	}
	texture, ok := res.Data.(*renderer.Texture)
	if !ok {
		err := core.NewConfigurationError("'%s' is a %s, not an image", cfg.Texture, res.Type)
		core.LogError(err.Error())
		return nil, nil, err
	}
	return shader, texture, nil
}

func (ml *MaterialLibrary) spirv(path string) ([]uint32, error) {
	res, err := ml.am.Load(path, nil)
	if err != nil {
		return nil, err
	}
	code, ok := res.Data.([]uint32)
	if !ok {
		err := core.NewConfigurationError("'%s' is a %s, not a shader", path, res.Type)
		core.LogError(err.Error())
		return nil, err
	}
	return code, nil
}

func (ml *MaterialLibrary) track(path string, cfg *loaders.MaterialConfig) {
	deps := []string{path, cfg.Vertex, cfg.Fragment}
	if cfg.Texture != "" {
		deps = append(deps, cfg.Texture)
	}
	for _, d := range deps {
		d = ml.am.Path(d)
		if !slices.Contains(ml.dependents[d], path) {
			ml.dependents[d] = append(ml.dependents[d], path)
		}
	}
}

func applyFlags(m *renderer.Material, cfg *loaders.MaterialConfig) {
	m.Blend = cfg.Blend
	m.DepthTest = cfg.DepthTest
	m.DepthWrite = cfg.DepthWrite
	m.CullBack = cfg.CullBack
}

