package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the global configuration whenever the config file is
// written or replaced, until ctx is done. onReload receives the outcome of
// each reload; a failed reload keeps the previous configuration.
func Watch(ctx context.Context, onReload func(*NotesConfig, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory so editors that replace the file are noticed.
	path := Path()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			err := Reload()
			if onReload != nil {
				onReload(Get(), err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if onReload != nil {
				onReload(Get(), err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
