// Package pipeline drives log-to-store synchronization: discovery, change
// detection, parallel parsing, and serialized batched writes.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/n-WN/prompt-manager/internal/model"
	"github.com/n-WN/prompt-manager/internal/source"
	"github.com/n-WN/prompt-manager/internal/store"
)

// Engine coordinates sync runs over a set of parsers and one store.
type Engine struct {
	Store   *store.Store
	Parsers []source.Parser

	// Progress, when set, receives per-file updates. It is invoked only from
	// the writer goroutine, never concurrently.
	Progress ProgressFunc

	// Workers bounds the parse pool; 0 means min(max(NumCPU,2),8).
	Workers int
	// BatchRows and BatchBytes bound each write transaction; 0 means the
	// defaults of 200 rows and 4 MiB.
	BatchRows  int
	BatchBytes int
}

// ProgressFunc receives progress updates during a sync run. Side effect only.
type ProgressFunc func(Progress)

// Sync phases reported through Progress.
const (
	PhaseStarting    = "starting"
	PhaseDiscovering = "discovering"
	PhaseSyncing     = "syncing"
	PhaseResetting   = "resetting"
	PhaseRestoring   = "restoring"
	PhaseCompacting  = "compacting"
)

// Progress is one progress update during a sync run. File counts are relative
// to the current source.
type Progress struct {
	Phase            string
	Source           string
	FilePath         string
	FilesChecked     int
	FilesTotal       int
	FilesUpdated     int
	NewPromptsTotal  int
	NewPromptsInFile int
	Skipped          bool
	Err              error
}

// Result summarizes a sync run across all requested sources.
type Result struct {
	BySource     map[string]int // new prompts per source
	Total        int            // new prompts overall
	FilesChecked int
	FilesUpdated int
	FilesSkipped int
	FilesFailed  int
}

func newResult() *Result {
	return &Result{BySource: make(map[string]int)}
}

const (
	defaultBatchRows  = 200
	defaultBatchBytes = 4 << 20
)

type decision int

const (
	fileUpToDate decision = iota
	fileNew
	fileModified
	fileSchemaStale
	fileForced
)

// decideFile classifies a discovered file against its stored fingerprint.
func decideFile(st model.FileState, known bool, size, mtimeNs int64, schemaVersion int, force bool) decision {
	if !known {
		return fileNew
	}
	if st.SyncVersion != schemaVersion {
		return fileSchemaStale
	}
	if st.Changed(size, mtimeNs) {
		return fileModified
	}
	if force {
		return fileForced
	}
	return fileUpToDate
}

// SyncAll runs an incremental sync across every parser. force reprocesses
// files whose fingerprints are current.
func (e *Engine) SyncAll(ctx context.Context, force bool) (*Result, error) {
	e.report(Progress{Phase: PhaseStarting})
	res := newResult()

	tracked, err := e.Store.TrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading sync state: %w", err)
	}
	for _, p := range e.Parsers {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := e.syncParser(ctx, p, force, tracked, res); err != nil {
			return res, err
		}
	}
	return res, nil
}

// SyncSource syncs a single named source.
func (e *Engine) SyncSource(ctx context.Context, name string, force bool) (*Result, error) {
	var parser source.Parser
	names := make([]string, 0, len(e.Parsers))
	for _, p := range e.Parsers {
		names = append(names, p.Name())
		if p.Name() == name {
			parser = p
		}
	}
	if parser == nil {
		return nil, fmt.Errorf("unknown source %q (have %s)", name, strings.Join(names, ", "))
	}

	e.report(Progress{Phase: PhaseStarting, Source: name})
	res := newResult()
	tracked, err := e.Store.TrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading sync state: %w", err)
	}
	if err := e.syncParser(ctx, parser, force, tracked, res); err != nil {
		return res, err
	}
	return res, nil
}

// CheckUpdates reports how many files each source would process, without
// parsing or writing anything.
func (e *Engine) CheckUpdates() (map[string]int, error) {
	tracked, err := e.Store.TrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading sync state: %w", err)
	}

	pending := make(map[string]int, len(e.Parsers))
	for _, p := range e.Parsers {
		files, err := p.FindLogFiles()
		if err != nil {
			return nil, fmt.Errorf("discovering %s files: %w", p.Name(), err)
		}
		count := 0
		for _, path := range files {
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			st, known := tracked[path]
			if decideFile(st, known, info.Size(), info.ModTime().UnixNano(), p.SchemaVersion(), false) != fileUpToDate {
				count++
			}
		}
		pending[p.Name()] = count
	}
	return pending, nil
}

type syncJob struct {
	path    string
	size    int64
	mtimeNs int64
}

func (e *Engine) syncParser(ctx context.Context, p source.Parser, force bool, tracked map[string]model.FileState, res *Result) error {
	e.report(Progress{Phase: PhaseDiscovering, Source: p.Name()})
	files, err := p.FindLogFiles()
	if err != nil {
		return fmt.Errorf("discovering %s files: %w", p.Name(), err)
	}

	var jobs []syncJob
	for _, path := range files {
		res.FilesChecked++
		info, err := os.Stat(path)
		if err != nil {
			// Listed but not statable: racing deletion or permissions.
			res.FilesSkipped++
			e.report(Progress{Phase: PhaseSyncing, Source: p.Name(), FilePath: path, Skipped: true})
			continue
		}
		st, known := tracked[path]
		if decideFile(st, known, info.Size(), info.ModTime().UnixNano(), p.SchemaVersion(), force) == fileUpToDate {
			continue
		}
		jobs = append(jobs, syncJob{path: path, size: info.Size(), mtimeNs: info.ModTime().UnixNano()})
	}
	if len(jobs) == 0 {
		return ctx.Err()
	}

	numWorkers := e.workers()
	if numWorkers > len(jobs) {
		numWorkers = len(jobs)
	}

	work := make(chan syncJob, len(jobs))
	for _, j := range jobs {
		work <- j
	}
	close(work)

	type parsedFile struct {
		syncJob
		prompts []model.ParsedPrompt
		err     error
	}
	out := make(chan parsedFile, numWorkers)

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for j := range work {
				if ctx.Err() != nil {
					return
				}
				prompts, err := p.ParseFile(j.path)
				out <- parsedFile{syncJob: j, prompts: prompts, err: err}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()

	// Single writer: every store write and progress report happens here.
	done := 0
	for pf := range out {
		done++
		if pf.err != nil {
			res.FilesFailed++
			log.Warn().Err(pf.err).Str("source", p.Name()).Str("path", pf.path).Msg("parse failed")
			e.report(Progress{Phase: PhaseSyncing, Source: p.Name(), FilePath: pf.path,
				FilesChecked: done, FilesTotal: len(jobs), FilesUpdated: res.FilesUpdated,
				NewPromptsTotal: res.Total, Err: pf.err})
			continue
		}
		added, err := e.writeFile(p, pf.syncJob, pf.prompts)
		if err != nil {
			res.FilesFailed++
			log.Warn().Err(err).Str("source", p.Name()).Str("path", pf.path).Msg("write failed")
			e.report(Progress{Phase: PhaseSyncing, Source: p.Name(), FilePath: pf.path,
				FilesChecked: done, FilesTotal: len(jobs), FilesUpdated: res.FilesUpdated,
				NewPromptsTotal: res.Total, Err: err})
			continue
		}
		res.FilesUpdated++
		res.BySource[p.Name()] += added
		res.Total += added
		e.report(Progress{Phase: PhaseSyncing, Source: p.Name(), FilePath: pf.path,
			FilesChecked: done, FilesTotal: len(jobs), FilesUpdated: res.FilesUpdated,
			NewPromptsTotal: res.Total, NewPromptsInFile: added})
	}
	return ctx.Err()
}

// writeFile inserts a parsed file's prompts in bounded transactions. The
// fingerprint commits with the final batch, so an interrupted write leaves
// the file marked unsynced and it is retried next run.
func (e *Engine) writeFile(p source.Parser, j syncJob, prompts []model.ParsedPrompt) (int, error) {
	state := &model.FileState{
		FilePath:    j.path,
		Source:      p.Name(),
		FileSize:    j.size,
		MtimeNs:     j.mtimeNs,
		SyncVersion: p.SchemaVersion(),
	}
	if len(prompts) == 0 {
		_, err := e.Store.InsertPrompts(nil, state)
		return 0, err
	}

	maxRows := e.batchRows()
	maxBytes := e.batchBytes()
	added := 0
	for start := 0; start < len(prompts); {
		end := start
		batchBytes := 0
		for end < len(prompts) && end-start < maxRows {
			batchBytes += promptBytes(prompts[end])
			end++
			if batchBytes >= maxBytes {
				break
			}
		}
		var st *model.FileState
		if end == len(prompts) {
			st = state
		}
		n, err := e.Store.InsertPrompts(prompts[start:end], st)
		if err != nil {
			return added, err
		}
		added += n
		start = end
	}
	return added, nil
}

func promptBytes(p model.ParsedPrompt) int {
	return len(p.Content) + len(p.Response) + len(p.TurnJSON)
}

func (e *Engine) workers() int {
	if e.Workers > 0 {
		return e.Workers
	}
	n := runtime.NumCPU()
	if n < 2 {
		n = 2
	}
	if n > 8 {
		n = 8
	}
	return n
}

func (e *Engine) batchRows() int {
	if e.BatchRows > 0 {
		return e.BatchRows
	}
	return defaultBatchRows
}

func (e *Engine) batchBytes() int {
	if e.BatchBytes > 0 {
		return e.BatchBytes
	}
	return defaultBatchBytes
}

func (e *Engine) report(p Progress) {
	if e.Progress != nil {
		e.Progress(p)
	}
}
