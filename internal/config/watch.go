package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Reload loads path, applies the environment overrides and validates the
// result. A config that fails validation is returned with the error and
// must not be applied.
func Reload(path string) (Config, error) {
	c, err := Load(path)
	if err != nil {
		return c, err
	}
	c = ApplyEnv(c)
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Watch calls fn with the result of Reload each time path is written or
// created (including renamed into place), until ctx is done. The directory
// is watched rather than the file so editors that replace the file are seen.
func Watch(ctx context.Context, path string, fn func(Config, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return fmt.Errorf("config: watch: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return fmt.Errorf("config: watch %s: %w", path, err)
	}
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				fn(Reload(path))
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				fn(Config{}, fmt.Errorf("config: watch: %w", err))
			}
		}
	}()
	return nil
}
