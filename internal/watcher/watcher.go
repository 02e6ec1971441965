// Package watcher turns filesystem notifications for the watch directory into
// recording events.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"livearchive/internal/logging"
)

// Kind classifies a filesystem notification.
type Kind int

const (
	Other Kind = iota
	Created
	Modified
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "created"
	case Modified:
		return "modified"
	default:
		return "other"
	}
}

// Event is a notification about one path in the watch directory.
type Event struct {
	Path string
	Kind Kind
}

// Actionable reports whether the event may signal a new recording.
func (e Event) Actionable() bool {
	return e.Kind == Created || e.Kind == Modified
}

// Watcher observes a single directory without recursing.
type Watcher struct {
	dir    string
	fs     *fsnotify.Watcher
	logger *slog.Logger
}

// New starts watching dir. Failure here is fatal for the caller.
func New(dir string, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve watch dir: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(abs); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", abs, err)
	}
	return &Watcher{
		dir:    abs,
		fs:     fsw,
		logger: logging.NewComponentLogger(logger, "watcher"),
	}, nil
}

// Dir returns the absolute watched directory.
func (w *Watcher) Dir() string { return w.dir }

// Run forwards events of every kind to out until ctx is cancelled or the
// watcher is closed. A full out channel blocks the forwarding loop; events are
// never dropped.
func (w *Watcher) Run(ctx context.Context, out chan<- Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			event, ok := w.translate(ev)
			if !ok {
				continue
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return ctx.Err()
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				logging.WarnWithContext(w.logger, "filesystem event queue overflowed", "watch_overflow",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "run the scan command to pick up missed recordings"),
					logging.String(logging.FieldImpact, "some recordings may not be archived until the next scan"),
				)
				continue
			}
			logging.WarnWithContext(w.logger, "filesystem watcher error", "watch_error", logging.Error(err))
		}
	}
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// translate maps an fsnotify event to an Event for direct children of the
// watch directory.
func (w *Watcher) translate(ev fsnotify.Event) (Event, bool) {
	path := filepath.Clean(ev.Name)
	if filepath.Dir(path) != w.dir {
		return Event{}, false
	}
	return Event{Path: path, Kind: classify(ev.Op)}, true
}

func classify(op fsnotify.Op) Kind {
	switch {
	case op.Has(fsnotify.Create):
		return Created
	case op.Has(fsnotify.Write):
		return Modified
	default:
		return Other
	}
}
