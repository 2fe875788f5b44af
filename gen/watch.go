package gen

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch blocks and invokes regen every time the configuration file at
// path is rewritten. It returns when the context is canceled, on watcher
// failure, or when regen fails.
func Watch(ctx context.Context, path string, regen func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	path = filepath.Clean(path)
	// Watch the directory. Editors replace files on save, which drops
	// a watch placed on the file itself.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := regen(); err != nil {
				return err
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
