package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fsnotify/fsnotify"
)

// fileWatcher watches a file for changes and emits its contents.
type fileWatcher struct {
	path   string
	logger *slog.Logger
}

func newFileWatcher(path string, logger *slog.Logger) *fileWatcher {
	return &fileWatcher{path: path, logger: logger}
}

// Watch returns a channel that emits the file contents whenever the file is
// written. The current contents are emitted first. The channel is closed when
// ctx is done.
func (w *fileWatcher) Watch(ctx context.Context) (<-chan []byte, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if err := watcher.Add(w.path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch file %s: %w", w.path, err)
	}

	out := make(chan []byte)

	go func() {
		defer close(out)
		defer watcher.Close()

		if data, err := os.ReadFile(w.path); err == nil {
			select {
			case out <- data:
			case <-ctx.Done():
				return
			}
		}

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}

				data, err := os.ReadFile(w.path)
				if err != nil {
					w.logger.Warn("watched file unreadable", "path", w.path, "error", err)
					continue
				}

				select {
				case out <- data:
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("file watcher error", "path", w.path, "error", err)
			}
		}
	}()

	return out, nil
}
