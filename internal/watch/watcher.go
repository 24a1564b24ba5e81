// Package watch turns filesystem notifications on a collection directory
// into broker events.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/collection"
	"github.com/starford/othala/internal/events"
	"github.com/starford/othala/internal/storage"
)

// Watch runs an fsnotify loop on col's directory and its metadata
// sub-directory, publishing item.created / item.updated / item.deleted
// and meta.updated events until ctx is cancelled. Temp files from
// in-flight atomic writes are ignored; only the final link/rename of an
// item surfaces as an event.
func Watch(ctx context.Context, col *collection.Collection, logger *slog.Logger, broker *events.Broker) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := col.Path()
	metaDir := filepath.Join(root, collection.MetaDirName)
	if err := w.Add(root); err != nil {
		return err
	}
	if err := w.Add(metaDir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Chmod != 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if strings.HasPrefix(name, storage.TmpPrefix) {
				continue
			}

			if filepath.Dir(ev.Name) == metaDir {
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
					logger.Debug("watcher: meta changed", slog.String("key", name))
					broker.Publish(events.Event{Type: events.MetaUpdated, Key: name})
				}
				continue
			}

			if !strings.HasSuffix(name, col.Fileext()) {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				etag, etagErr := col.Etag(name)
				if etagErr != nil {
					if !errors.Is(etagErr, apperr.ErrNotFound) {
						logger.Warn("watcher: etag failed",
							slog.String("href", name),
							slog.String("error", etagErr.Error()))
					}
					// Vanished before we could stat it; the Remove
					// event will follow.
					continue
				}
				kind := events.ItemUpdated
				if ev.Op&fsnotify.Create != 0 {
					kind = events.ItemCreated
				}
				logger.Debug("watcher: item changed", slog.String("href", name), slog.String("op", kind))
				broker.Publish(events.Event{Type: kind, Href: name, Etag: etag})

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				logger.Debug("watcher: item deleted", slog.String("href", name))
				broker.Publish(events.Event{Type: events.ItemDeleted, Href: name})
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
