// Package filewatcher provides file system monitoring adapters.
package filewatcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/0xcro3dile/jarvis-go/internal/domain/ports"
)

// FSNotifyWatcher implements ports.FileWatcher using fsnotify.
// The whole tree below the watched directory is observed, including
// directories created after Watch is called.
type FSNotifyWatcher struct {
	watcher    *fsnotify.Watcher
	extensions []string
	logger     zerolog.Logger
}

// NewFSNotifyWatcher creates a watcher. Knowledge-base records are JSON,
// so that is the default extension.
func NewFSNotifyWatcher(extensions []string, logger zerolog.Logger) (*FSNotifyWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if len(extensions) == 0 {
		extensions = []string{".json"}
	}

	return &FSNotifyWatcher{
		watcher:    w,
		extensions: extensions,
		logger:     logger.With().Str("component", "filewatcher").Logger(),
	}, nil
}

// addTree registers dir and every subdirectory. It returns the watched files
// already present, which no event will ever announce.
func (w *FSNotifyWatcher) addTree(dir string) ([]string, error) {
	var existing []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if w.isWatchedExtension(path) {
				existing = append(existing, path)
			}
			return nil
		}
		return w.watcher.Add(path)
	})
	return existing, err
}

// Watch starts monitoring the directory and emits events.
func (w *FSNotifyWatcher) Watch(ctx context.Context, dir string) (<-chan ports.FileEvent, error) {
	if _, err := w.addTree(dir); err != nil {
		return nil, err
	}

	events := make(chan ports.FileEvent, 100)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}

				if event.Op.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						// Files can land before the new directory is watched,
						// or arrive with it when it is moved in.
						files, err := w.addTree(event.Name)
						if err != nil {
							w.logger.Warn().Err(err).Str("dir", event.Name).Msg("cannot watch new directory")
						}
						for _, f := range files {
							select {
							case events <- ports.FileEvent{Path: f, Operation: ports.FileCreated}:
							case <-ctx.Done():
								return
							}
						}
						continue
					}
				}

				if !w.isWatchedExtension(event.Name) {
					continue
				}

				var op ports.FileOperation
				switch {
				case event.Op.Has(fsnotify.Create):
					op = ports.FileCreated
				case event.Op.Has(fsnotify.Write):
					op = ports.FileModified
				case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
					op = ports.FileDeleted
				default:
					continue
				}

				select {
				case events <- ports.FileEvent{Path: event.Name, Operation: op}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Error().Err(err).Msg("watch error")
			}
		}
	}()

	return events, nil
}

// Stop stops the watcher.
func (w *FSNotifyWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *FSNotifyWatcher) isWatchedExtension(path string) bool {
	return slices.Contains(w.extensions, filepath.Ext(path))
}
