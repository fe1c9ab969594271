package source

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher observes a directory tree and invokes a callback after file
// activity settles. Bursts of events (editor save dances, bulk copies) are
// coalesced into a single invocation per quiet period.
type Watcher struct {
	root     string
	debounce time.Duration
	logger   *slog.Logger
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the quiet period required before the callback fires.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets a custom logger.
func WithWatchLogger(logger *slog.Logger) WatchOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher creates a watcher over the given directory tree.
func NewWatcher(root string, opts ...WatchOption) *Watcher {
	w := &Watcher{
		root:     root,
		debounce: defaultDebounce,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("component", "watcher")
	return w
}

// Run watches until the context is canceled, calling notify after each burst
// of changes. Callback errors are logged and watching continues; only a
// context cancellation or a watch-infrastructure failure ends the loop.
func (w *Watcher) Run(ctx context.Context, notify func(ctx context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addRecursive(watcher, w.root); err != nil {
		return err
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			// New directories must be watched too or changes inside them
			// would go unseen.
			if event.Op.Has(fsnotify.Create) {
				if err := addRecursive(watcher, event.Name); err != nil {
					w.logger.Warn("watching new path failed", "path", event.Name, "error", err)
				}
			}
			w.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(w.debounce)
			}

		case <-fire:
			timer = nil
			fire = nil
			if err := notify(ctx); err != nil {
				w.logger.Error("change handler failed", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

// addRecursive registers path and, if it is a directory, every non-hidden
// subdirectory beneath it. Non-directory paths are ignored: fsnotify watches
// their parent already.
func addRecursive(watcher *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			if p == path {
				return err
			}
			// Nested entries may be gone already (create followed by remove).
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if strings.HasPrefix(entry.Name(), ".") && p != path {
			return filepath.SkipDir
		}
		return watcher.Add(p)
	})
}
