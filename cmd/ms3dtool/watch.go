package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// reloadFunc handles one settled change to a model file.
type reloadFunc func(path string)

// debouncer delays a call per key until no new trigger arrived for the
// wait period.
type debouncer struct {
	wait time.Duration
	fire func(key string)

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func newDebouncer(wait time.Duration, fire func(key string)) *debouncer {
	return &debouncer{wait: wait, fire: fire, timers: make(map[string]*time.Timer)}
}

func (d *debouncer) trigger(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.timers[key] = time.AfterFunc(d.wait, func() {
		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()
		d.fire(key)
	})
}

// stop cancels every pending call.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}

func (a *app) cmdWatch(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("watch <dir>")
	}
	fmt.Fprintf(a.out, "Watching %s for .ms3d changes (Ctrl+C to stop)\n", args[0])
	return a.watch(ctx, args[0], a.reload)
}

// watch reports settled .ms3d changes in dir to onChange until ctx is
// done. Reloads run one at a time.
func (a *app) watch(ctx context.Context, dir string, onChange reloadFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	changes := make(chan string, 16)
	deb := newDebouncer(a.cfg.Watch.Debounce, func(path string) {
		select {
		case changes <- path:
		case <-ctx.Done():
		}
	})
	defer deb.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !a.loader.IsLoadableFile(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			a.log.Debug("model changed", zap.String("file", ev.Name), zap.Stringer("op", ev.Op))
			deb.trigger(filepath.Clean(ev.Name))

		case path := <-changes:
			onChange(path)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// reload loads path and logs a one-line summary.
func (a *app) reload(path string) {
	start := time.Now()
	_, res, err := a.loadModel(path)
	if err != nil {
		a.log.Error("reload failed", zap.String("file", path), zap.Error(err))
		return
	}
	mesh := res.Mesh
	a.log.Info("model reloaded",
		zap.String("file", path),
		zap.Int("buffers", len(mesh.Buffers)),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("joints", len(mesh.Joints)),
		zap.Int("issues", len(res.Issues)),
		zap.Duration("took", time.Since(start)))
	fmt.Fprintf(a.out, "reloaded %s: %d vertices, %d joints, %d issues\n",
		path, mesh.VertexCount(), len(mesh.Joints), len(res.Issues))
}
