package fs

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/seoagent/pkg/core"
)

// Watch observes the articles directory and emits an event per record file change.
// pattern is matched against file names with doublestar syntax; empty means all records.
// The channel is closed when ctx is done or the watcher fails.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(r.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", r.Path, err)
	}

	// Records are written as a temp file renamed into place, so a rewrite of a
	// known id arrives as a create. known tells the two apart.
	known := make(map[string]bool)
	if names, err := r.names(); err == nil {
		for _, name := range names {
			if id, ok := r.idFromName(name); ok {
				known[id] = true
			}
		}
	}

	events := make(chan core.Event)
	r.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(events)
		defer r.setWatcherActive(false)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return nil

			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				e, keep := r.toEvent(event, pattern, known)
				if !keep {
					continue
				}
				r.logger.Debug("article change", "type", e.Type, "id", e.ID)
				select {
				case events <- e:
				case <-ctx.Done():
					return nil
				}

			case wErr, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				r.logger.Error("fsnotify error", "error", wErr)
				if r.config.ErrorHandler != nil {
					r.config.ErrorHandler(wErr)
				}
			}
		}
	})

	return events, nil
}

// toEvent maps a filesystem notification to an article event.
// Temp files, foreign extensions and names outside pattern are dropped.
// A create for an id already in known is reported as a modify.
func (r *Repository) toEvent(event fsnotify.Event, pattern string, known map[string]bool) (core.Event, bool) {
	name := filepath.Base(event.Name)
	id, ok := r.idFromName(name)
	if !ok {
		return core.Event{}, false
	}
	if match, err := doublestar.Match(pattern, name); err != nil || !match {
		return core.Event{}, false
	}

	var eType core.EventType
	switch {
	case event.Has(fsnotify.Create):
		eType = core.EventCreate
		if known[id] {
			eType = core.EventModify
		}
		known[id] = true
	case event.Has(fsnotify.Write):
		eType = core.EventModify
		known[id] = true
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		eType = core.EventDelete
		delete(known, id)
	default:
		return core.Event{}, false
	}

	return core.Event{Type: eType, ID: id, Timestamp: time.Now().Unix()}, true
}
