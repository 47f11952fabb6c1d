package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig contains configuration for the definition file watcher.
type WatcherConfig struct {
	// Path is the file or directory to watch.
	Path string

	// DebounceInterval is the quiet period before a reload fires after
	// file changes (default: 100ms).
	DebounceInterval time.Duration

	// Extensions is the list of file extensions to watch.
	Extensions []string

	// SkipHidden controls whether hidden files are ignored.
	SkipHidden bool
}

// DefaultWatcherConfig returns the default watcher configuration.
func DefaultWatcherConfig() *WatcherConfig {
	return &WatcherConfig{
		DebounceInterval: 100 * time.Millisecond,
		Extensions:       []string{".yaml", ".yml"},
		SkipHidden:       true,
	}
}

// Watcher watches definition files for changes and triggers reloads.
// Rapid event bursts are debounced into a single reload.
type Watcher struct {
	watcher  *fsnotify.Watcher
	config   *WatcherConfig
	debounce *debouncer
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a new definition file watcher.
func NewWatcher(config *WatcherConfig) (*Watcher, error) {
	if config == nil {
		config = DefaultWatcherConfig()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher:  fsw,
		config:   config,
		debounce: newDebouncer(config.DebounceInterval),
		logger:   slog.Default().With("component", "source.watcher"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks processing file events until the context is cancelled or
// Stop is called. Each debounced change burst calls onReload once.
func (w *Watcher) Watch(ctx context.Context, onReload func() error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if err := w.addPath(w.config.Path); err != nil {
		return fmt.Errorf("failed to watch path: %w", err)
	}

	w.logger.Info("definition watcher started",
		"path", w.config.Path,
		"debounce_ms", w.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("definition watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("definition watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.shouldProcess(event) {
				continue
			}

			w.logger.Debug("definition file event",
				"path", event.Name,
				"op", event.Op.String(),
			)

			w.debounce.trigger(func() {
				w.logger.Info("reloading definitions", "path", event.Name)
				if err := onReload(); err != nil {
					w.logger.Error("definition reload failed", "error", err)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("definition watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.debounce.stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

func (w *Watcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.watcher.Add(path)
	}

	return filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if w.config.SkipHidden && strings.HasPrefix(filepath.Base(p), ".") && p != path {
			if fi.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if fi.IsDir() {
			if err := w.watcher.Add(p); err != nil {
				return fmt.Errorf("failed to watch directory %q: %w", p, err)
			}
		}
		return nil
	})
}

func (w *Watcher) shouldProcess(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}

	ext := strings.ToLower(filepath.Ext(event.Name))
	valid := false
	for _, e := range w.config.Extensions {
		if ext == strings.ToLower(e) {
			valid = true
			break
		}
	}
	if !valid {
		return false
	}

	if w.config.SkipHidden && strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	return true
}

// debouncer collapses rapid event bursts into one callback after a
// quiet period.
type debouncer struct {
	interval time.Duration
	timer    *time.Timer
	callback func()
	stopCh   chan struct{}
	mu       sync.Mutex
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
		}
		d.mu.Lock()
		cb := d.callback
		d.mu.Unlock()
		if cb != nil {
			cb()
		}
	})
}

func (d *debouncer) stop() {
	close(d.stopCh)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
