// Package watcher feeds filesystem changes into the translation index.
// Events are filtered through the same membership rules as the scan,
// debounced per file so editor save bursts coalesce into one reparse,
// and manifest changes re-trigger framework detection.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/transkit/transkit/framework"
	"github.com/transkit/transkit/index"
	"github.com/transkit/transkit/scanner"
)

// DefaultDebounce is the quiet period before a changed file is
// reparsed. Queries inside the window may observe pre-change state;
// that trade-off keeps save bursts from stacking reparses.
const DefaultDebounce = 500 * time.Millisecond

// Watcher owns the fsnotify stream for one project root.
type Watcher struct {
	ix       *index.Index
	log      zerolog.Logger
	debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a watcher over the given index. debounce <= 0 selects
// the default window.
func New(ix *index.Index, debounce time.Duration, log zerolog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		ix:       ix,
		log:      log,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
	}
}

// Run watches the project tree until ctx is cancelled. Directories are
// registered recursively, and newly created directories are added as
// they appear.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()
	defer w.stopTimers()

	if err := w.addTree(fsw, w.ix.Root()); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) handle(ctx context.Context, fsw *fsnotify.Watcher, ev fsnotify.Event) {
	if ev.Op.Has(fsnotify.Create) {
		// New directories join the watch; a create of a translation
		// file falls through to the debounce below.
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if !skippable(ev.Name) {
				_ = w.addTree(fsw, ev.Name)
			}
			return
		}
	}

	interesting := scanner.IsTranslationFile(ev.Name, w.ix.Root()) || framework.IsManifest(ev.Name)
	if !interesting {
		return
	}
	w.log.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("file event")

	// Deletes and renames take effect immediately; content writes are
	// debounced per file.
	if ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename) {
		w.cancelTimer(ev.Name)
		w.invalidate(ctx, ev.Name)
		return
	}
	w.schedule(ctx, ev.Name)
}

// schedule arms (or re-arms) the per-file debounce timer.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.invalidate(ctx, path)
	})
}

func (w *Watcher) invalidate(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	if err := w.ix.InvalidateFile(ctx, path); err != nil {
		w.log.Warn().Err(err).Str("path", path).Msg("invalidation failed")
	}
}

func (w *Watcher) cancelTimer(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
		delete(w.timers, path)
	}
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

// addTree registers dir and every non-pruned subdirectory.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != dir && skippable(path) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			w.log.Debug().Err(err).Str("path", path).Msg("cannot watch directory")
		}
		return nil
	})
}

// skippable mirrors the scanner's directory pruning.
func skippable(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch name {
	case "node_modules", "dist", "build", "target", "out", "vendor":
		return true
	}
	return false
}
