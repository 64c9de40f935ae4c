// Package watch re-runs an analysis whenever files in a corpus directory
// change.
package watch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/fsnotify.v1"
)

// DefaultDebounce is how long the watcher waits after the last change
// before running.
const DefaultDebounce = 500 * time.Millisecond

// RunFunc is called with the corpus files changed since the previous call,
// sorted. The initial run receives nil.
type RunFunc func(ctx context.Context, changed []string) error

// Watcher watches a corpus directory tree.
type Watcher struct {
	dir        string
	run        RunFunc
	debounce   time.Duration
	initialRun bool
	matches    func(name string) bool
	logger     *logrus.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period after the last change.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithInitialRun runs once as soon as the directory is being watched.
func WithInitialRun() Option {
	return func(w *Watcher) {
		w.initialRun = true
	}
}

// WithFilter selects which file names count as corpus changes. The default
// accepts *.txt files and manifest.yaml.
func WithFilter(matches func(name string) bool) Option {
	return func(w *Watcher) {
		if matches != nil {
			w.matches = matches
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a watcher over dir and its subdirectories.
func New(dir string, run RunFunc, opts ...Option) *Watcher {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	w := &Watcher{
		dir:      dir,
		run:      run,
		debounce: DefaultDebounce,
		matches:  DefaultFilter,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// DefaultFilter accepts corpus text files and the manifest.
func DefaultFilter(name string) bool {
	base := filepath.Base(name)
	return strings.EqualFold(filepath.Ext(base), ".txt") || base == "manifest.yaml"
}

// Run watches until ctx is done. Errors from the run function are logged
// and watching continues; only failing to set up the watch is returned.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if _, err := w.addTree(watcher, w.dir); err != nil {
		return err
	}

	if w.initialRun {
		w.invoke(ctx, nil)
	}

	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					files, err := w.addTree(watcher, event.Name)
					if err != nil {
						w.logger.WithError(err).Warn("Failed to watch new directory")
					}
					for _, file := range files {
						pending[file] = true
					}
					timer.Reset(w.debounce)
					continue
				}
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod || !w.matches(event.Name) {
				continue
			}
			pending[event.Name] = true
			timer.Reset(w.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("Watcher error")

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			sort.Strings(changed)
			pending = make(map[string]bool)
			w.invoke(ctx, changed)
		}
	}
}

func (w *Watcher) invoke(ctx context.Context, changed []string) {
	w.logger.WithFields(logrus.Fields{
		"dir":     w.dir,
		"changed": len(changed),
	}).Info("Corpus changed, running analysis")

	if err := w.run(ctx, changed); err != nil && ctx.Err() == nil {
		w.logger.WithError(err).Error("Analysis run failed")
	}
}

// addTree watches root and every directory below it, returning the
// matching files already present.
func (w *Watcher) addTree(watcher *fsnotify.Watcher, root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if err := watcher.Add(path); err != nil {
				return fmt.Errorf("watching directory %s: %w", path, err)
			}
			return nil
		}
		if w.matches(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
