package assets

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/spaghettifunk/rosella/engine/assets/loaders"
	"github.com/spaghettifunk/rosella/engine/containers"
	"github.com/spaghettifunk/rosella/engine/core"
)

// changeQueueSize bounds the paths waiting for the render thread. Further
// changes are dropped until the queue is drained.
const changeQueueSize = 64

type AssetInfo struct {
	Path       string
	Type       loaders.ResourceType
	LastLoaded time.Time
}

// AssetManager indexes the files under an asset directory, loads them through
// per-type loaders and, when watching, queues changed paths for the render
// thread.
type AssetManager struct {
	root    string
	assets  map[string]AssetInfo
	loaders map[loaders.ResourceType]Loader
	events  *core.EventSystem

	mutex sync.RWMutex

	fsnotify *fsnotify.Watcher
	done     chan struct{}
	wg       sync.WaitGroup
	isClosed bool

	changesMu sync.Mutex
	changes   *containers.RingQueue[string]
}

func NewAssetManager(root string, events *core.EventSystem) *AssetManager {
	return &AssetManager{
		root:    filepath.Clean(root),
		assets:  make(map[string]AssetInfo),
		loaders: make(map[loaders.ResourceType]Loader),
		events:  events,
		changes: containers.NewRingQueue[string](changeQueueSize),
		done:    make(chan struct{}),
	}
}

// Initialize registers the loaders and indexes the asset directory. With
// watch set, changes on disk are queued until Drain is called.
func (am *AssetManager) Initialize(watch bool) error {
	am.registerLoader(loaders.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(loaders.ResourceTypeImage, &loaders.TextureLoader{})
	am.registerLoader(loaders.ResourceTypeMaterial, &loaders.MaterialLoader{})
	am.registerLoader(loaders.ResourceTypeModel, &loaders.ModelLoader{})
	am.registerLoader(loaders.ResourceTypeBitmapFont, &loaders.BitmapFontLoader{})
	am.registerLoader(loaders.ResourceTypeSystemFont, &loaders.SystemFontLoader{})

	if watch {
		fsWatch, err := fsnotify.NewWatcher()
		if err != nil {
			err = errors.Wrap(err, "creating asset watcher")
			core.LogError(err.Error())
			return err
		}
		am.fsnotify = fsWatch
	}
	if err := am.watchRecursive(am.root); err != nil {
		err = errors.Wrapf(err, "indexing assets in '%s'", am.root)
		core.LogError(err.Error())
		return err
	}
	if am.fsnotify != nil {
		am.wg.Add(1)
		go am.start()
	}
	core.LogInfo("indexed %d assets under '%s' (watch=%v)", am.Len(), am.root, watch)
	return nil
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType loaders.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

func (am *AssetManager) Len() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// Path resolves a name relative to the asset directory.
func (am *AssetManager) Path(name string) string {
	if filepath.IsAbs(name) || strings.HasPrefix(filepath.Clean(name), am.root+string(filepath.Separator)) {
		return filepath.Clean(name)
	}
	return filepath.Join(am.root, name)
}

// Load reads an indexed asset with the loader for its type.
func (am *AssetManager) Load(name string, params loaders.Params) (*loaders.Resource, error) {
	path := am.Path(name)

	am.mutex.Lock()
	asset, exists := am.assets[path]
	if exists {
		asset.LastLoaded = time.Now()
		am.assets[path] = asset
	}
	am.mutex.Unlock()
	if !exists {
		err := core.NewNotFoundError("asset", path)
		core.LogError(err.Error())
		return nil, err
	}

	loader, loaderExists := am.loaders[asset.Type]
	if !loaderExists {
		err := core.NewNotFoundError("loader", asset.Type.String())
		core.LogError(err.Error())
		return nil, err
	}
	return loader.Load(path, params)
}

// Unload releases whatever the loader holds for the resource.
func (am *AssetManager) Unload(res *loaders.Resource) error {
	if loader, ok := am.loaders[res.Type]; ok {
		return loader.Unload(res)
	}
	return nil
}

// Preload reads and decodes several assets concurrently. Decoding is CPU side
// only; nothing touches the device. The first failure cancels the rest.
func (am *AssetManager) Preload(ctx context.Context, names []string) (map[string]*loaders.Resource, error) {
	results := make([]*loaders.Resource, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := am.Load(name, nil)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[string]*loaders.Resource, len(names))
	for i, name := range names {
		out[name] = results[i]
	}
	return out, nil
}

// Drain hands the changed paths to the caller, oldest first and without
// duplicates, and fires EVENT_CODE_ASSET_CHANGED for each. Call it from the
// render thread.
func (am *AssetManager) Drain() []string {
	am.changesMu.Lock()
	var changed []string
	seen := make(map[string]bool)
	for !am.changes.IsEmpty() {
		p, _ := am.changes.Dequeue()
		if !seen[p] {
			seen[p] = true
			changed = append(changed, p)
		}
	}
	am.changesMu.Unlock()

	for _, p := range changed {
		core.LogDebug("asset changed: %s", p)
		if am.events != nil {
			ctx := core.EventContext{}
			ctx.Data.C[0] = p
			am.events.Fire(core.EVENT_CODE_ASSET_CHANGED, am, ctx)
		}
	}
	return changed
}

func (am *AssetManager) queueChange(path string) {
	am.changesMu.Lock()
	defer am.changesMu.Unlock()
	if err := am.changes.Enqueue(path); err != nil {
		core.LogWarn("dropping asset change for '%s': %s", path, err)
	}
}

// Shutdown stops the watcher and waits for its goroutine.
func (am *AssetManager) Shutdown() error {
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	close(am.done)
	am.wg.Wait()
	return nil
}

func (am *AssetManager) start() {
	defer am.wg.Done()
	for {
		select {

		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					am.watchRecursive(e.Name)
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if am.handleFileEvent(e.Name) {
					am.queueChange(filepath.Clean(e.Name))
				}
			}
			// Can't stat a deleted directory, so just pretend that it's always a directory and
			// try to remove from the watch list.
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(e.Name)
				am.fsnotify.Remove(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

// watchRecursive indexes every file under path and, when a watcher exists,
// adds every directory to it.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if am.fsnotify == nil {
				return nil
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// handleFileEvent indexes a created or modified file. It reports whether the
// file is a known asset type.
func (am *AssetManager) handleFileEvent(path string) bool {
	assetType := determineAssetType(path)
	if assetType == loaders.ResourceTypeNone {
		return false
	}
	path = filepath.Clean(path)

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[path] = AssetInfo{
		Path: path,
		Type: assetType,
	}
	return true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, filepath.Clean(path))
}

func determineAssetType(path string) loaders.ResourceType {
	if strings.HasSuffix(path, ".material.toml") {
		return loaders.ResourceTypeMaterial
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".spv":
		return loaders.ResourceTypeShader
	case ".png", ".jpg", ".jpeg", ".bmp", ".webp":
		return loaders.ResourceTypeImage
	case ".obj":
		return loaders.ResourceTypeModel
	case ".fnt":
		return loaders.ResourceTypeBitmapFont
	case ".ttf", ".otf":
		return loaders.ResourceTypeSystemFont
	default:
		return loaders.ResourceTypeNone
	}
}
