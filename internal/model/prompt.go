// Package model defines the core data types shared across parsing, storage,
// and presentation.
package model

import "time"

// Source names, in display order.
const (
	SourceClaudeCode = "claude_code"
	SourceCursor     = "cursor"
	SourceAider      = "aider"
	SourceCodex      = "codex"
	SourceGeminiCLI  = "gemini_cli"
	SourceAmp        = "amp"
)

// AllSources lists every known source name in display order.
var AllSources = []string{
	SourceClaudeCode,
	SourceCursor,
	SourceAider,
	SourceCodex,
	SourceGeminiCLI,
	SourceAmp,
}

// ParsedPrompt is one user turn extracted from a log file, before storage.
type ParsedPrompt struct {
	ID          string
	Source      string
	Content     string
	ProjectPath string
	SessionID   string

	// Timestamp is zero (and HasTime false) when the log carried none.
	Timestamp time.Time
	HasTime   bool

	// Response is the assistant text for the turn, empty when unavailable.
	Response string

	// TurnJSON is a serialized JSON array of the raw turn events, empty for
	// sources that rehydrate lazily from origin offsets.
	TurnJSON string

	// Origin locates the turn inside its log file for lazy rehydration.
	// Codex spans are byte offsets; amp spans are message indices.
	OriginPath  string
	OriginStart int64
	OriginEnd   int64
	HasOrigin   bool
}

// Prompt is a stored prompt row including user-managed metadata.
type Prompt struct {
	ParsedPrompt

	Tags      []string
	Starred   bool
	UseCount  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary is the lightweight projection used by listings and search results.
// Content is truncated to the requested snippet length; the response and turn
// timeline are never loaded.
type Summary struct {
	ID          string
	Source      string
	Content     string
	ProjectPath string
	SessionID   string
	Timestamp   time.Time
	HasTime     bool
	Starred     bool
	UseCount    int
}

// Stats aggregates stored prompt counts.
type Stats struct {
	Total     int
	BySource  map[string]int
	Starred   int
	TotalUses int
}

// FileState is the stored sync fingerprint for one log file.
type FileState struct {
	FilePath    string
	Source      string
	FileSize    int64
	MtimeNs     int64
	SyncVersion int
	LastSync    time.Time
}

// MtimeToleranceNs treats mtimes within 1ms as equal, so filesystems that
// truncate timestamps do not cause perpetual re-syncs.
const MtimeToleranceNs = int64(time.Millisecond)

// Changed reports whether the on-disk size/mtime differ from the fingerprint.
func (fs FileState) Changed(size, mtimeNs int64) bool {
	if fs.FileSize != size {
		return true
	}
	delta := fs.MtimeNs - mtimeNs
	if delta < 0 {
		delta = -delta
	}
	return delta > MtimeToleranceNs
}
