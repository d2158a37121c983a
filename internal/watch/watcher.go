// Package watch reruns a callback when files under a directory change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 200 * time.Millisecond

var ignoreDirs = map[string]bool{
	".git": true,
}

// Options configures a Watcher.
type Options struct {
	Root     string
	Debounce time.Duration // Quiet period before OnChange runs
	Logger   *zap.Logger
	// OnChange runs once per burst of events, never concurrently.
	OnChange func(ctx context.Context) error
}

// Watcher watches a directory tree with fsnotify.
type Watcher struct {
	root     string
	debounce time.Duration
	logger   *zap.Logger
	onChange func(ctx context.Context) error
	watcher  *fsnotify.Watcher
}

// New creates a Watcher and registers every directory under Root.
func New(opts Options) (*Watcher, error) {
	if opts.OnChange == nil {
		return nil, errors.New("watch: OnChange is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		root:     opts.Root,
		debounce: opts.Debounce,
		logger:   opts.Logger,
		onChange: opts.OnChange,
		watcher:  fw,
	}
	if err := w.addTree(opts.Root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if ignoreDirs[info.Name()] {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// Run calls OnChange once up front and then after each debounced burst of
// events, until ctx is done. OnChange errors are logged and do not stop
// the loop.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	w.fire(ctx)

	var timer *time.Timer
	var fireC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.handleEvent(event) {
				continue
			}
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
			fireC = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", zap.Error(err))
		case <-fireC:
			fireC = nil
			w.fire(ctx)
		}
	}
}

// handleEvent reports whether event should trigger a rerun.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if w.ignored(event.Name) {
		return false
	}
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", zap.String("path", event.Name), zap.Error(err))
			}
		}
	}
	if event.Op == fsnotify.Chmod {
		return false
	}
	w.logger.Debug("file event", zap.String("path", event.Name), zap.String("op", event.Op.String()))
	return true
}

func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	dir := rel
	for dir != "." && dir != string(filepath.Separator) && dir != "" {
		if ignoreDirs[filepath.Base(dir)] {
			return true
		}
		dir = filepath.Dir(dir)
	}
	return false
}

func (w *Watcher) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := w.onChange(ctx); err != nil {
		w.logger.Error("change handler failed", zap.Error(err))
	}
}
