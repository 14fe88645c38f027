// Package watcher keeps the format cache in sync with a directory of format
// description files.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"magnetunits/internal/format"
	"magnetunits/internal/infrastructure/cache"
	"magnetunits/pkg/logger"
)

// Change reports the outcome of processing one file.
type Change struct {
	Path   string
	Format string
	Kind   cache.EventKind
	Err    error
}

// Config holds watcher configuration options.
type Config struct {
	Dir         string
	DebounceDur time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:         dir,
		DebounceDur: 500 * time.Millisecond,
	}
}

// Watcher reloads format files on write or create and evicts them on removal.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dir       string
	debounce  time.Duration
	loader    *format.Loader
	cache     *cache.FormatCache
	log       *logger.Logger

	mu    sync.Mutex
	names map[string]string // path -> format name

	changes chan Change
	done    chan struct{}
	wg      sync.WaitGroup
}

func New(cfg Config, loader *format.Loader, c *cache.FormatCache, log *logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if log == nil {
		log = logger.Default()
	}
	debounce := cfg.DebounceDur
	if debounce <= 0 {
		debounce = DefaultConfig(cfg.Dir).DebounceDur
	}

	return &Watcher{
		fsWatcher: fsw,
		dir:       cfg.Dir,
		debounce:  debounce,
		loader:    loader,
		cache:     c,
		log:       log.WithComponent("format_watcher").With("dir", cfg.Dir),
		names:     make(map[string]string),
		changes:   make(chan Change, 64),
		done:      make(chan struct{}),
	}, nil
}

// Changes delivers processed file changes. Sends never block; changes are
// dropped when nobody reads.
func (w *Watcher) Changes() <-chan Change { return w.changes }

// LoadAll loads every format file currently in the directory.
func (w *Watcher) LoadAll(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("reading formats dir %s: %w", w.dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p := filepath.Join(w.dir, e.Name())
		if isFormatFile(p) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	for _, p := range paths {
		w.process(ctx, p)
	}
	return nil
}

// Start performs an initial load and begins watching.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", w.dir, err)
	}
	if err := w.LoadAll(ctx); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.loop(ctx)
	w.log.WithContext(ctx).Infow("watching format files", "debounce", w.debounce)
	return nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.fsWatcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	var timer *time.Timer
	dirty := map[string]struct{}{}

	for {
		var fire <-chan time.Time
		if timer != nil {
			fire = timer.C
		}

		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !isRelevantEvent(event) {
				continue
			}
			dirty[event.Name] = struct{}{}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-fire:
			timer = nil
			paths := make([]string, 0, len(dirty))
			for p := range dirty {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(dirty)
			for _, p := range paths {
				w.process(ctx, p)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warnw("watch error", "error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// process reloads path, or evicts its format when the file is gone.
func (w *Watcher) process(ctx context.Context, path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		w.mu.Lock()
		name, known := w.names[path]
		delete(w.names, path)
		w.mu.Unlock()
		if known {
			w.cache.Remove(name)
			w.log.Infow("format evicted", "path", path, "format", name)
			w.emit(Change{Path: path, Format: name, Kind: cache.EventEvicted})
		}
		return
	}

	def, err := w.loader.LoadFile(ctx, path)
	if err != nil {
		// keep serving the previous version
		w.log.Warnw("format reload failed", "path", path, "error", err)
		w.emit(Change{Path: path, Err: err})
		return
	}

	w.mu.Lock()
	prev, known := w.names[path]
	w.names[path] = def.Name()
	w.mu.Unlock()
	if known && prev != def.Name() {
		w.cache.Remove(prev)
	}

	w.cache.Put(def)
	w.emit(Change{Path: path, Format: def.Name(), Kind: cache.EventStored})
}

func (w *Watcher) emit(c Change) {
	select {
	case w.changes <- c:
	default:
	}
}

func isFormatFile(path string) bool {
	_, ok := format.EncodingForPath(path)
	return ok
}

// isRelevantEvent keeps writes, creates, removals and renames of format files.
func isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return isFormatFile(event.Name)
}
