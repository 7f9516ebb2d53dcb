// Package watcher monitors local directories and triggers subtitle
// matching when media files change.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/captionmate/captionmate/internal/logging"
	"github.com/captionmate/captionmate/internal/media"
)

// Handler receives directory-level change notifications. A directory is
// reported once per settle window no matter how many files landed in it.
type Handler interface {
	DirectoryChanged(dir string) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(dir string) error

// DirectoryChanged implements Handler.
func (f HandlerFunc) DirectoryChanged(dir string) error { return f(dir) }

// Watcher watches directories for new or renamed video and subtitle
// files. Events are debounced per directory so a batch copy triggers one
// match pass instead of one per file.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	handler   Handler
	videoExts []string
	settle    time.Duration
	recursive bool
	log       *logging.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithRecursive toggles recursive directory watching (default true).
func WithRecursive(recursive bool) Option {
	return func(w *Watcher) { w.recursive = recursive }
}

// WithSettleDelay overrides the debounce window (default 5s).
func WithSettleDelay(d time.Duration) Option {
	return func(w *Watcher) { w.settle = d }
}

// WithVideoExtensions overrides the recognized video extensions.
func WithVideoExtensions(exts []string) Option {
	return func(w *Watcher) { w.videoExts = exts }
}

// NewWatcher creates a Watcher delivering debounced events to handler.
func NewWatcher(handler Handler, log *logging.Logger, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}
	if log == nil {
		log = logging.Nop()
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		handler:   handler,
		videoExts: media.DefaultVideoExtensions,
		settle:    5 * time.Second,
		recursive: true,
		log:       log,
		pending:   map[string]*time.Timer{},
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Watch registers the given root directories.
func (w *Watcher) Watch(paths []string) error {
	for _, path := range paths {
		if w.recursive {
			if err := w.addRecursive(path); err != nil {
				return err
			}
			continue
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("unable to watch %s: %w", path, err)
		}
		w.log.Info("watcher", "watching", logging.F("path", path))
	}
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if strings.HasPrefix(filepath.Base(path), ".") && path != root {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("unable to watch %s: %w", path, err)
		}
		w.log.Info("watcher", "watching", logging.F("path", path))
		return nil
	})
}

// Start consumes filesystem events until the watcher is closed.
func (w *Watcher) Start() error {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.Warn("watcher", "filesystem error", logging.F("error", err))
		}
	}
}

// Close stops the watcher and cancels pending notifications.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for dir, timer := range w.pending {
		timer.Stop()
		delete(w.pending, dir)
	}
	w.mu.Unlock()
	return w.fsWatcher.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}

	// New directories join the watch set; their contents arrive as
	// separate events.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.recursive && !strings.HasPrefix(filepath.Base(event.Name), ".") {
				w.fsWatcher.Add(event.Name)
				w.log.Info("watcher", "watching new directory", logging.F("path", event.Name))
			}
			return
		}
	}

	if !w.isRelevant(event.Name) {
		return
	}

	w.scheduleNotify(filepath.Dir(event.Name))
}

// scheduleNotify (re)arms the settle timer for a directory.
func (w *Watcher) scheduleNotify(dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[dir]; ok {
		timer.Reset(w.settle)
		return
	}

	w.pending[dir] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, dir)
		w.mu.Unlock()

		w.log.Info("watcher", "directory settled", logging.F("dir", dir))
		if err := w.handler.DirectoryChanged(dir); err != nil {
			w.log.Error("watcher", "handler failed", err, logging.F("dir", dir))
		}
	})
}

func (w *Watcher) isRelevant(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return media.IsSubtitleFile(name) || media.IsVideoFile(name, w.videoExts)
}
