package engine

import (
	"github.com/spaghettifunk/rosella/engine/core"
)

type ApplicationConfig struct {
	// The application name used in windowing and as the Vulkan application name.
	Name     string
	LogLevel core.LogLevel
	Config   *core.Config
}

// LoadApplicationConfig reads the TOML configuration at path (defaults when
// the file is missing), validates it and applies the log level.
func LoadApplicationConfig(name, path string) (*ApplicationConfig, error) {
	cfg, err := core.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, err := core.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	core.SetLogLevel(level)
	if name == "" {
		name = cfg.Window.Title
	}
	return &ApplicationConfig{
		Name:     name,
		LogLevel: level,
		Config:   cfg,
	}, nil
}
