// Package filewatcher reports documents dropped into a folder.
// Adapter implementing ports.FileWatcher.
package filewatcher

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
	"github.com/0xcro3dile/docqa-go/internal/pkg/logger"
)

const moduleWatcher = "WATCHER"

// DefaultSettle is how long a path must stay quiet before it is reported.
const DefaultSettle = 500 * time.Millisecond

// FSNotifyWatcher implements ports.FileWatcher using fsnotify.
// A create followed by writes is reported once, after the file settles, so
// slow copies are not picked up half written.
type FSNotifyWatcher struct {
	watcher    *fsnotify.Watcher
	extensions []string // empty means every file
	settle     time.Duration
	logger     logger.ILogger
}

// Option customizes an FSNotifyWatcher.
type Option func(*FSNotifyWatcher)

// WithSettle overrides DefaultSettle. Zero reports every change immediately.
func WithSettle(d time.Duration) Option {
	return func(w *FSNotifyWatcher) { w.settle = d }
}

// NewFSNotifyWatcher creates a watcher limited to extensions (e.g. ".pdf").
func NewFSNotifyWatcher(extensions []string, log logger.ILogger, opts ...Option) (*FSNotifyWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	normalized := make([]string, len(extensions))
	for i, ext := range extensions {
		normalized[i] = strings.ToLower(ext)
	}

	w := &FSNotifyWatcher{
		watcher:    fsw,
		extensions: normalized,
		settle:     DefaultSettle,
		logger:     log,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch starts monitoring dir. The channel closes when ctx is done or the
// watcher is stopped.
func (w *FSNotifyWatcher) Watch(ctx context.Context, dir string) (<-chan ports.FileEvent, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}

	events := make(chan ports.FileEvent, 100)

	go func() {
		defer close(events)

		pending := newDebouncer(w.settle)
		defer pending.stop()

		emit := func(ev ports.FileEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			select {
			case <-ctx.Done():
				return

			case p := <-pending.settled:
				ev, ok := pending.resolve(p)
				if !ok {
					continue
				}
				if !emit(ev) {
					return
				}

			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !w.isCandidate(event.Name) {
					continue
				}

				switch {
				case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
					if pending.cancel(event.Name) {
						continue // never reported, nothing to retract
					}
					if !emit(ports.FileEvent{Path: event.Name, Operation: ports.FileDeleted}) {
						return
					}

				case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
					created := event.Has(fsnotify.Create)
					if w.settle > 0 {
						pending.touch(event.Name, created)
						continue
					}
					op := ports.FileModified
					if created {
						op = ports.FileCreated
					}
					if !emit(ports.FileEvent{Path: event.Name, Operation: op}) {
						return
					}
				}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn(moduleWatcher, "fsnotify error", map[string]interface{}{
					"dir":   dir,
					"error": err.Error(),
				})
			}
		}
	}()

	return events, nil
}

// Stop releases the underlying fsnotify watcher.
func (w *FSNotifyWatcher) Stop() error {
	return w.watcher.Close()
}

// isCandidate filters editor and office lock files, then extensions.
func (w *FSNotifyWatcher) isCandidate(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	return w.isWatchedExtension(path)
}

func (w *FSNotifyWatcher) isWatchedExtension(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}
