package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config controls what a Watcher observes.
type Config struct {
	// Path is the file or directory to watch.
	Path string

	// Debounce is the quiet period before a change triggers a reload.
	Debounce time.Duration

	// Extensions lists the file extensions that trigger reloads.
	Extensions []string

	// SkipHidden ignores dot files and directories.
	SkipHidden bool
}

// DefaultConfig returns the default watcher configuration.
func DefaultConfig() Config {
	return Config{
		Debounce:   100 * time.Millisecond,
		Extensions: []string{".json", ".yaml", ".yml"},
		SkipHidden: true,
	}
}

// Watcher watches definition files and triggers a debounced reload on change.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   Config
	debounce *Debouncer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a Watcher. Zero Debounce and empty Extensions take the defaults.
func New(cfg Config, logger *slog.Logger) (*Watcher, error) {
	defaults := DefaultConfig()
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaults.Debounce
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = defaults.Extensions
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher:  fsw,
		logger:   logger,
		config:   cfg,
		debounce: NewDebouncer(cfg.Debounce),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks until ctx is cancelled or Stop is called, calling onReload after
// each burst of relevant file events. Reload errors are logged, not returned.
func (w *Watcher) Watch(ctx context.Context, onReload func(context.Context) error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("watch: watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer close(w.doneCh)

	if err := w.addPath(w.config.Path); err != nil {
		return fmt.Errorf("watch: watch path: %w", err)
	}

	w.logger.Info("definition watcher started",
		"path", w.config.Path,
		"debounce_ms", w.config.Debounce.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("definition watcher stopped", "reason", ctx.Err())
			return nil

		case <-w.stopCh:
			w.logger.Info("definition watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watch: events channel closed")
			}
			if !w.shouldProcess(event) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if isDir, err := isDirectory(event.Name); err == nil && isDir {
					if err := w.addDirectory(event.Name); err != nil {
						w.logger.Warn("could not watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if !w.hasExtension(filepath.Ext(event.Name)) {
				continue
			}

			w.logger.Debug("definition file event", "path", event.Name, "op", event.Op.String())

			name, op := event.Name, event.Op.String()
			w.debounce.Trigger(func() {
				w.logger.Info("reloading definitions", "path", name, "op", op)
				if err := onReload(ctx); err != nil {
					w.logger.Error("definition reload failed", "error", err)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watch: errors channel closed")
			}
			w.logger.Error("definition watcher error", "error", err)
		}
	}
}

// Stop ends Watch and releases the fsnotify watcher. It is safe to call when
// Watch never ran.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	w.debounce.Stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("watch: close watcher: %w", err)
	}
	return nil
}

func (w *Watcher) addPath(path string) error {
	isDir, err := isDirectory(path)
	if err != nil {
		return err
	}
	if isDir {
		return w.addDirectory(path)
	}
	return w.watcher.Add(path)
}

func (w *Watcher) addDirectory(dir string) error {
	return filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if w.config.SkipHidden && path != dir && strings.HasPrefix(entry.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch directory %q: %w", path, err)
		}
		w.logger.Debug("watching directory", "path", path)
		return nil
	})
}

func (w *Watcher) shouldProcess(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	if w.config.SkipHidden && strings.HasPrefix(base, ".") {
		return false
	}
	if event.Op&fsnotify.Create != 0 && filepath.Ext(base) == "" {
		// possibly a new directory
		return true
	}
	return w.hasExtension(filepath.Ext(base))
}

func (w *Watcher) hasExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, valid := range w.config.Extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}

func isDirectory(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
