package schedule

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the bursts of events a single save produces.
const reloadDelay = 100 * time.Millisecond

// Watch reloads the scheduler whenever the store file changes, until ctx is
// done. The store's directory is watched because saves replace the file.
func (s *Scheduler) Watch(ctx context.Context) error {
	path := s.store.Path()
	if path == "" {
		<-ctx.Done()
		return nil
	}
	if err := s.store.ensureDir(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch schedule store: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch schedule store: %w", err)
	}

	name := filepath.Clean(path)
	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				reload = time.After(reloadDelay)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn().Err(err).Msg("Schedule store watcher error")

		case <-reload:
			reload = nil
			if err := s.Load(); err != nil {
				s.logger.Warn().Err(err).Msg("Failed to reload schedule store")
			}
		}
	}
}
