package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/rosella/engine/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadApplicationConfig(t *testing.T) {
	path := writeConfig(t, `
[window]
title = "demo"

[renderer]
frames_in_flight = 3

[log]
level = "error"
`)
	app, err := LoadApplicationConfig("", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app.Name != "demo" {
		t.Errorf("expected the window title as name, got '%s'", app.Name)
	}
	if app.LogLevel != core.LogLevelError {
		t.Errorf("expected error level, got %v", app.LogLevel)
	}
	if app.Config.Renderer.FramesInFlight != 3 {
		t.Errorf("expected 3 frames in flight, got %d", app.Config.Renderer.FramesInFlight)
	}
	core.SetLogLevel(core.LogLevelDebug)
}

func TestLoadApplicationConfigKeepsExplicitName(t *testing.T) {
	app, err := LoadApplicationConfig("testbed", writeConfig(t, "[log]\nlevel = \"debug\"\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app.Name != "testbed" {
		t.Errorf("expected 'testbed', got '%s'", app.Name)
	}
}

func TestLoadApplicationConfigMissingFile(t *testing.T) {
	app, err := LoadApplicationConfig("", filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("a missing file should yield defaults: %v", err)
	}
	if app.Config.Window.Width != 1280 || app.Config.Window.Height != 720 {
		t.Errorf("expected the default window size, got %dx%d", app.Config.Window.Width, app.Config.Window.Height)
	}
}

func TestLoadApplicationConfigRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"log level":        "[log]\nlevel = \"loud\"\n",
		"frames in flight": "[renderer]\nframes_in_flight = 0\n",
		"syntax":           "[window\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadApplicationConfig("", writeConfig(t, content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !core.IsFatal(err) {
				t.Errorf("expected a configuration error, got %v", err)
			}
		})
	}
}

func TestNewRejectsMissingConfig(t *testing.T) {
	if _, err := New(&Game{}); err == nil {
		t.Fatal("expected an error for a game without config")
	}
}
