package core

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
)

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
	PosX   uint32 `toml:"pos_x"`
	PosY   uint32 `toml:"pos_y"`
}

type RendererConfig struct {
	// Number of frames the CPU may record ahead of the GPU.
	FramesInFlight int `toml:"frames_in_flight"`
	// Enables VK_LAYER_KHRONOS_validation and the debug report callback.
	Validation    bool `toml:"validation"`
	PreferMailbox bool `toml:"prefer_mailbox"`
	// Bound for fence and acquire waits. Zero waits forever.
	FenceTimeoutMS uint64     `toml:"fence_timeout_ms"`
	ClearColor     [4]float32 `toml:"clear_color"`
}

type AssetsConfig struct {
	Dir   string `toml:"dir"`
	Watch bool   `toml:"watch"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Assets   AssetsConfig   `toml:"assets"`
	Log      LogConfig      `toml:"log"`
}

func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Rosella",
			Width:  1280,
			Height: 720,
			PosX:   100,
			PosY:   100,
		},
		Renderer: RendererConfig{
			FramesInFlight: 2,
			Validation:     false,
			PreferMailbox:  true,
			FenceTimeoutMS: 0,
			ClearColor:     [4]float32{0xef / 255.0, 0x32 / 255.0, 0x3d / 255.0, 1.0},
		},
		Assets: AssetsConfig{
			Dir:   "assets",
			Watch: true,
		},
		Log: LogConfig{
			Level: "debug",
		},
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig. A missing file is
// not an error and yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			LogWarn("config file '%s' not found, using defaults", path)
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "reading config '%s'", path)
	}
	if err := ParseConfig(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "config '%s'", path)
	}
	return cfg, nil
}

// ParseConfig decodes TOML into cfg and validates the result.
func ParseConfig(data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return NewConfigurationError("invalid toml at %d:%d: %s", row, col, decodeErr.Error())
		}
		return NewConfigurationError("invalid toml: %s", err)
	}
	return cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Renderer.FramesInFlight < 1 {
		return NewConfigurationError("frames_in_flight must be at least 1, got %d", c.Renderer.FramesInFlight)
	}
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return NewConfigurationError("window size must be non-zero, got %dx%d", c.Window.Width, c.Window.Height)
	}
	for i, v := range c.Renderer.ClearColor {
		if v < 0 || v > 1 {
			return NewConfigurationError("clear_color[%d] = %f is outside [0, 1]", i, v)
		}
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// FenceTimeoutNS converts the configured bound to the value passed to the
// graphics API. Zero, and any bound too large to express in nanoseconds, maps
// to the wait-forever sentinel.
func (c *RendererConfig) FenceTimeoutNS() uint64 {
	if c.FenceTimeoutMS == 0 || c.FenceTimeoutMS > ^uint64(0)/1_000_000 {
		return ^uint64(0)
	}
	return c.FenceTimeoutMS * 1_000_000
}
