package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

const debounceDelay = 500 * time.Millisecond

// Watch syncs once, then re-syncs whenever a watched log directory changes.
// Assistants write logs in bursts, so events are debounced before syncing.
// A periodic rescan covers directories created too deep for the watches.
// Returns when the context is cancelled.
func (e *Engine) Watch(ctx context.Context, rescanEvery time.Duration) error {
	if _, err := e.SyncAll(ctx, false); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, p := range e.Parsers {
		for _, root := range p.Roots() {
			watchTree(watcher, root)
		}
	}

	if rescanEvery <= 0 {
		rescanEvery = 5 * time.Minute
	}
	ticker := time.NewTicker(rescanEvery)
	defer ticker.Stop()

	debounce := time.NewTimer(debounceDelay)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					watchTree(watcher, ev.Name)
				}
			}
			debounce.Reset(debounceDelay)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watch error")
		case <-ticker.C:
			debounce.Reset(debounceDelay)
		case <-debounce.C:
			res, err := e.SyncAll(ctx, false)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Warn().Err(err).Msg("sync failed")
				continue
			}
			if res.Total > 0 {
				log.Info().Int("new_prompts", res.Total).Msg("synced")
			}
		}
	}
}

// watchTree registers dir and its visible subdirectories a few levels deep.
// Missing directories and watch failures are skipped; the rescan ticker
// covers whatever inotify does not see.
func watchTree(watcher *fsnotify.Watcher, root string) {
	const maxDepth = 3
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root {
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			rel, err := filepath.Rel(root, path)
			if err != nil || strings.Count(rel, string(filepath.Separator)) >= maxDepth {
				return filepath.SkipDir
			}
		}
		if err := watcher.Add(path); err != nil {
			log.Debug().Err(err).Str("dir", path).Msg("cannot watch")
		}
		return nil
	})
}
