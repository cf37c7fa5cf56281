package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Rebuild drops and re-syncs every prompt from the log files while preserving
// the user-managed metadata that logs cannot regenerate: stars, tags, and use
// counts survive by prompt id because ids are content-derived and stable
// across parses.
func (e *Engine) Rebuild(ctx context.Context) (*Result, error) {
	e.report(Progress{Phase: PhaseResetting})
	metas, err := e.Store.SnapshotMetadata()
	if err != nil {
		return nil, fmt.Errorf("snapshotting metadata: %w", err)
	}
	if err := e.Store.ClearPrompts(); err != nil {
		return nil, fmt.Errorf("clearing prompts: %w", err)
	}
	if err := e.Store.ClearFileState(); err != nil {
		return nil, fmt.Errorf("clearing sync state: %w", err)
	}

	res, err := e.SyncAll(ctx, true)
	if err != nil {
		return res, err
	}

	e.report(Progress{Phase: PhaseRestoring})
	restored, err := e.Store.RestoreMetadata(metas)
	if err != nil {
		return res, fmt.Errorf("restoring metadata: %w", err)
	}
	log.Info().Int("restored", restored).Int("snapshotted", len(metas)).Msg("metadata restored")

	e.report(Progress{Phase: PhaseCompacting})
	if err := e.Store.Compact(); err != nil {
		return res, fmt.Errorf("compacting: %w", err)
	}
	return res, nil
}
