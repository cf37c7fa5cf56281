package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n-WN/prompt-manager/internal/model"
	"github.com/n-WN/prompt-manager/internal/source"
	"github.com/n-WN/prompt-manager/internal/store"
)

type fakeParser struct {
	name    string
	version int
	files   []string
	prompts map[string][]model.ParsedPrompt
	errs    map[string]error

	mu     sync.Mutex
	parsed []string
}

func (f *fakeParser) Name() string       { return f.name }
func (f *fakeParser) SchemaVersion() int { return f.version }
func (f *fakeParser) Roots() []string    { return nil }

func (f *fakeParser) FindLogFiles() ([]string, error) {
	return f.files, nil
}

func (f *fakeParser) ParseFile(path string) ([]model.ParsedPrompt, error) {
	f.mu.Lock()
	f.parsed = append(f.parsed, path)
	f.mu.Unlock()
	if err := f.errs[path]; err != nil {
		return nil, err
	}
	return f.prompts[path], nil
}

func (f *fakeParser) parseCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.parsed {
		if p == path {
			n++
		}
	}
	return n
}

func (f *fakeParser) totalParsed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.parsed)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "prompts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func writeLog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func fakePrompt(src, id, content string) model.ParsedPrompt {
	return model.ParsedPrompt{
		ID:        id,
		Source:    src,
		Content:   content,
		SessionID: "sess",
		Timestamp: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC),
		HasTime:   true,
	}
}

func TestSyncAllInsertsAndIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	logA := writeLog(t, dir, "a.jsonl", "first version")

	fp := &fakeParser{
		name:    model.SourceClaudeCode,
		version: 1,
		files:   []string{logA},
		prompts: map[string][]model.ParsedPrompt{logA: {
			fakePrompt(model.SourceClaudeCode, "p1", "first prompt"),
			fakePrompt(model.SourceClaudeCode, "p2", "second prompt"),
		}},
	}
	eng := &Engine{Store: newTestStore(t), Parsers: []source.Parser{fp}}

	res, err := eng.SyncAll(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, map[string]int{model.SourceClaudeCode: 2}, res.BySource)
	assert.Equal(t, 1, res.FilesChecked)
	assert.Equal(t, 1, res.FilesUpdated)
	assert.Zero(t, res.FilesSkipped)
	assert.Zero(t, res.FilesFailed)

	res, err = eng.SyncAll(context.Background(), false)
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Zero(t, res.FilesUpdated)
	assert.Equal(t, 1, res.FilesChecked)
	assert.Equal(t, 1, fp.totalParsed()) // unchanged file was not re-parsed
}

func TestSyncAllPicksUpModifiedFiles(t *testing.T) {
	dir := t.TempDir()
	logA := writeLog(t, dir, "a.jsonl", "short")

	fp := &fakeParser{
		name:    model.SourceGeminiCLI,
		version: 1,
		files:   []string{logA},
		prompts: map[string][]model.ParsedPrompt{logA: {fakePrompt(model.SourceGeminiCLI, "g1", "ask one")}},
	}
	eng := &Engine{Store: newTestStore(t), Parsers: []source.Parser{fp}}

	_, err := eng.SyncAll(context.Background(), false)
	require.NoError(t, err)

	// A larger rewrite changes the size fingerprint.
	writeLog(t, dir, "a.jsonl", "short plus an appended turn")
	fp.prompts[logA] = append(fp.prompts[logA], fakePrompt(model.SourceGeminiCLI, "g2", "ask two"))

	res, err := eng.SyncAll(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.FilesUpdated)
	assert.Equal(t, 1, res.Total) // g1 deduplicated, g2 new
	assert.Equal(t, 2, fp.totalParsed())
}

func TestSchemaVersionBumpReprocessesOnce(t *testing.T) {
	dir := t.TempDir()
	logA := writeLog(t, dir, "a.jsonl", "stable content")

	fp := &fakeParser{
		name:    model.SourceCodex,
		version: 1,
		files:   []string{logA},
		prompts: map[string][]model.ParsedPrompt{logA: {fakePrompt(model.SourceCodex, "c1", "codex ask")}},
	}
	eng := &Engine{Store: newTestStore(t), Parsers: []source.Parser{fp}}

	_, err := eng.SyncAll(context.Background(), false)
	require.NoError(t, err)

	fp.version = 2
	res, err := eng.SyncAll(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.FilesUpdated) // reprocessed for the new parser version
	assert.Zero(t, res.Total)

	res, err = eng.SyncAll(context.Background(), false)
	require.NoError(t, err)
	assert.Zero(t, res.FilesUpdated)
	assert.Equal(t, 2, fp.totalParsed())
}

func TestMissingFileSkippedNeverFailed(t *testing.T) {
	dir := t.TempDir()

	fp := &fakeParser{
		name:    model.SourceAider,
		version: 1,
		files:   []string{filepath.Join(dir, "ghost.md")},
	}
	eng := &Engine{Store: newTestStore(t), Parsers: []source.Parser{fp}}

	res, err := eng.SyncAll(context.Background(), true) // even under force
	require.NoError(t, err)
	assert.Equal(t, 1, res.FilesChecked)
	assert.Equal(t, 1, res.FilesSkipped)
	assert.Zero(t, res.FilesFailed)
	assert.Zero(t, fp.totalParsed()) // parser never invoked for it
}

func TestParseErrorFailsFileAndContinues(t *testing.T) {
	dir := t.TempDir()
	bad := writeLog(t, dir, "bad.jsonl", "unreadable")
	good := writeLog(t, dir, "good.jsonl", "fine")

	fp := &fakeParser{
		name:    model.SourceAmp,
		version: 1,
		files:   []string{bad, good},
		prompts: map[string][]model.ParsedPrompt{good: {fakePrompt(model.SourceAmp, "a1", "amp ask")}},
		errs:    map[string]error{bad: errors.New("boom")},
	}
	eng := &Engine{Store: newTestStore(t), Parsers: []source.Parser{fp}, Workers: 1}

	res, err := eng.SyncAll(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.FilesFailed)
	assert.Equal(t, 1, res.FilesUpdated)
	assert.Equal(t, 1, res.Total)

	// The failed file has no fingerprint, so it is retried next run.
	res, err = eng.SyncAll(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.FilesFailed)
	assert.Equal(t, 2, fp.parseCount(bad))
	assert.Equal(t, 1, fp.parseCount(good))
}

func TestForceReprocessesUpToDateFiles(t *testing.T) {
	dir := t.TempDir()
	logA := writeLog(t, dir, "a.jsonl", "content")

	fp := &fakeParser{
		name:    model.SourceClaudeCode,
		version: 1,
		files:   []string{logA},
		prompts: map[string][]model.ParsedPrompt{logA: {fakePrompt(model.SourceClaudeCode, "p1", "ask")}},
	}
	eng := &Engine{Store: newTestStore(t), Parsers: []source.Parser{fp}}

	_, err := eng.SyncAll(context.Background(), false)
	require.NoError(t, err)

	res, err := eng.SyncAll(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.FilesUpdated)
	assert.Zero(t, res.Total) // same prompts, deduplicated
	assert.Equal(t, 2, fp.totalParsed())
}

func TestBatchedWritesCommitFingerprintWithFinalBatch(t *testing.T) {
	dir := t.TempDir()
	logA := writeLog(t, dir, "a.jsonl", "five prompts worth of log")

	var prompts []model.ParsedPrompt
	for i := 0; i < 5; i++ {
		prompts = append(prompts, fakePrompt(model.SourceCodex, fmt.Sprintf("b%d", i), fmt.Sprintf("prompt %d", i)))
	}
	fp := &fakeParser{
		name:    model.SourceCodex,
		version: 3,
		files:   []string{logA},
		prompts: map[string][]model.ParsedPrompt{logA: prompts},
	}
	st := newTestStore(t)
	eng := &Engine{Store: st, Parsers: []source.Parser{fp}, BatchRows: 2}

	res, err := eng.SyncAll(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total)

	tracked, err := st.TrackedFiles()
	require.NoError(t, err)
	require.Contains(t, tracked, logA)
	assert.Equal(t, 3, tracked[logA].SyncVersion)
}

func TestSyncSourceValidatesAndScopes(t *testing.T) {
	dir := t.TempDir()
	logA := writeLog(t, dir, "a.jsonl", "claude log")
	logB := writeLog(t, dir, "b.json", "gemini log")

	cc := &fakeParser{
		name:    model.SourceClaudeCode,
		version: 1,
		files:   []string{logA},
		prompts: map[string][]model.ParsedPrompt{logA: {fakePrompt(model.SourceClaudeCode, "p1", "claude ask")}},
	}
	gm := &fakeParser{
		name:    model.SourceGeminiCLI,
		version: 1,
		files:   []string{logB},
		prompts: map[string][]model.ParsedPrompt{logB: {fakePrompt(model.SourceGeminiCLI, "g1", "gemini ask")}},
	}
	eng := &Engine{Store: newTestStore(t), Parsers: []source.Parser{cc, gm}}

	_, err := eng.SyncSource(context.Background(), "not_a_source", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source")

	res, err := eng.SyncSource(context.Background(), model.SourceGeminiCLI, false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Zero(t, cc.totalParsed())
	assert.Equal(t, 1, gm.totalParsed())
}

func TestCheckUpdatesCountsWithoutWriting(t *testing.T) {
	dir := t.TempDir()
	logA := writeLog(t, dir, "a.jsonl", "content")

	fp := &fakeParser{
		name:    model.SourceAmp,
		version: 1,
		files:   []string{logA},
		prompts: map[string][]model.ParsedPrompt{logA: {fakePrompt(model.SourceAmp, "a1", "amp ask")}},
	}
	st := newTestStore(t)
	eng := &Engine{Store: st, Parsers: []source.Parser{fp}}

	pending, err := eng.CheckUpdates()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{model.SourceAmp: 1}, pending)
	assert.Zero(t, fp.totalParsed())

	_, err = eng.SyncAll(context.Background(), false)
	require.NoError(t, err)

	pending, err = eng.CheckUpdates()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{model.SourceAmp: 0}, pending)
}

func TestSyncAllHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fp := &fakeParser{name: model.SourceClaudeCode, version: 1}
	eng := &Engine{Store: newTestStore(t), Parsers: []source.Parser{fp}}

	_, err := eng.SyncAll(ctx, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProgressReportsCounts(t *testing.T) {
	dir := t.TempDir()
	logA := writeLog(t, dir, "a.jsonl", "content")

	fp := &fakeParser{
		name:    model.SourceClaudeCode,
		version: 1,
		files:   []string{logA},
		prompts: map[string][]model.ParsedPrompt{logA: {
			fakePrompt(model.SourceClaudeCode, "p1", "one"),
			fakePrompt(model.SourceClaudeCode, "p2", "two"),
		}},
	}
	var updates []Progress
	eng := &Engine{
		Store:    newTestStore(t),
		Parsers:  []source.Parser{fp},
		Progress: func(p Progress) { updates = append(updates, p) },
	}

	_, err := eng.SyncAll(context.Background(), false)
	require.NoError(t, err)

	require.NotEmpty(t, updates)
	assert.Equal(t, PhaseStarting, updates[0].Phase)

	last := updates[len(updates)-1]
	assert.Equal(t, PhaseSyncing, last.Phase)
	assert.Equal(t, model.SourceClaudeCode, last.Source)
	assert.Equal(t, 1, last.FilesTotal)
	assert.Equal(t, 2, last.NewPromptsInFile)
	assert.Equal(t, 2, last.NewPromptsTotal)
}
