package assets

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/rosella/engine/assets/loaders"
	"github.com/spaghettifunk/rosella/engine/core"
)

var spirv = []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00}

func writeAsset(t *testing.T, root, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeTexture(t *testing.T, root, name string) {
	t.Helper()
	f, err := os.Create(filepath.Join(root, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
}

func newTestManager(t *testing.T, watch bool) (*AssetManager, string) {
	t.Helper()
	root := t.TempDir()
	writeAsset(t, root, "shaders/basic.vert.spv", spirv)
	writeAsset(t, root, "shaders/basic.frag.spv", spirv)
	writeAsset(t, root, "notes.txt", []byte("ignored"))
	writeTexture(t, root, "white.png")
	writeAsset(t, root, "basic.material.toml", []byte(`
id = "rosella:basic"
vertex = "shaders/basic.vert.spv"
fragment = "shaders/basic.frag.spv"
texture = "white.png"
blend = true
`))
	am := NewAssetManager(root, core.NewEventSystem())
	if err := am.Initialize(watch); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() { am.Shutdown() })
	return am, root
}

func TestDetermineAssetType(t *testing.T) {
	tests := map[string]loaders.ResourceType{
		"a/b.vert.spv":       loaders.ResourceTypeShader,
		"x.PNG":              loaders.ResourceTypeImage,
		"x.webp":             loaders.ResourceTypeImage,
		"gui.material.toml":  loaders.ResourceTypeMaterial,
		"config.toml":        loaders.ResourceTypeNone,
		"cube.obj":           loaders.ResourceTypeModel,
		"fonts/arial.fnt":    loaders.ResourceTypeBitmapFont,
		"fonts/regular.ttf":  loaders.ResourceTypeSystemFont,
		"shaders/basic.vert": loaders.ResourceTypeNone,
	}
	for path, want := range tests {
		if got := determineAssetType(path); got != want {
			t.Errorf("determineAssetType(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestAssetManagerIndexAndLoad(t *testing.T) {
	am, _ := newTestManager(t, false)
	if am.Len() != 4 {
		t.Errorf("indexed %d assets, want 4", am.Len())
	}
	res, err := am.Load("shaders/basic.vert.spv", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Type != loaders.ResourceTypeShader {
		t.Errorf("type = %s", res.Type)
	}
	if _, err := am.Load("notes.txt", nil); !core.IsNotFound(err) {
		t.Errorf("unindexed asset error = %v, want NotFoundError", err)
	}
}

func TestAssetManagerPreload(t *testing.T) {
	am, _ := newTestManager(t, false)
	names := []string{"shaders/basic.vert.spv", "shaders/basic.frag.spv", "white.png"}
	got, err := am.Preload(context.Background(), names)
	if err != nil {
		t.Fatalf("Preload: %v", err)
	}
	for _, n := range names {
		if got[n] == nil {
			t.Errorf("%s missing from preload result", n)
		}
	}
	if _, err := am.Preload(context.Background(), []string{"white.png", "missing.png"}); !core.IsNotFound(err) {
		t.Errorf("Preload with a missing asset error = %v, want NotFoundError", err)
	}
}

func TestDrainDeduplicatesAndFires(t *testing.T) {
	am, _ := newTestManager(t, false)
	var fired []string
	am.events.Register(core.EVENT_CODE_ASSET_CHANGED, t, func(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
		fired = append(fired, data.Data.C[0])
		return false
	})

	am.queueChange("a.spv")
	am.queueChange("b.spv")
	am.queueChange("a.spv")
	changed := am.Drain()
	if len(changed) != 2 || changed[0] != "a.spv" || changed[1] != "b.spv" {
		t.Errorf("Drain() = %v, want [a.spv b.spv]", changed)
	}
	if len(fired) != 2 {
		t.Errorf("fired %d events, want 2", len(fired))
	}
	if len(am.Drain()) != 0 {
		t.Error("second Drain returned stale paths")
	}
}

func TestDrainDropsWhenFull(t *testing.T) {
	am, _ := newTestManager(t, false)
	for i := 0; i < changeQueueSize+5; i++ {
		am.queueChange(filepath.Join("x", string(rune('a'+i%26)), "f.spv"))
	}
	if am.changes.Len() != changeQueueSize {
		t.Errorf("queue holds %d paths, want capped at %d", am.changes.Len(), changeQueueSize)
	}
}

func TestWatcherQueuesChanges(t *testing.T) {
	am, root := newTestManager(t, true)
	path := writeAsset(t, root, "shaders/basic.frag.spv", append(spirv, 0, 0, 0, 0))

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		for _, p := range am.Drain() {
			if p == path {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("change to %s was never queued", path)
}

func TestMaterialLibrary(t *testing.T) {
	am, root := newTestManager(t, false)
	lib := NewMaterialLibrary(am)

	m, err := lib.Load("basic.material.toml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.ID != core.NewIdentifier("rosella", "basic") || !m.Blend || m.Texture == nil {
		t.Errorf("material = %s blend=%v texture=%v", m.ID, m.Blend, m.Texture)
	}
	again, err := lib.Load("basic.material.toml")
	if err != nil || again != m {
		t.Errorf("second Load returned a different material")
	}

	reloaded, err := lib.Reload([]string{filepath.Join(root, "notes.txt")})
	if err != nil || reloaded {
		t.Errorf("unrelated change reloaded = %v, %v", reloaded, err)
	}
	reloaded, err = lib.Reload([]string{filepath.Join(root, "shaders", "basic.frag.spv")})
	if err != nil || !reloaded {
		t.Errorf("shader change reloaded = %v, %v", reloaded, err)
	}
}

func TestMaterialLibraryBadShader(t *testing.T) {
	am, root := newTestManager(t, false)
	writeAsset(t, root, "broken.material.toml", []byte(`
id = "rosella:broken"
vertex = "shaders/basic.vert.spv"
fragment = "shaders/missing.frag.spv"
`))
	am.handleFileEvent(filepath.Join(root, "broken.material.toml"))
	if _, err := NewMaterialLibrary(am).Load("broken.material.toml"); !core.IsNotFound(err) {
		t.Errorf("error = %v, want NotFoundError for the missing shader", err)
	}
}
