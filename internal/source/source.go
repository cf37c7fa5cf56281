// Package source discovers and parses conversation logs from AI coding
// assistant CLIs, normalizing each user turn into a model.ParsedPrompt.
package source

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/n-WN/prompt-manager/internal/model"
)

// Parser extracts prompts from one assistant's log format.
//
// ParseFile returns an error only for file-level failures; malformed records
// inside an otherwise readable file are skipped. SchemaVersion is bumped when
// extraction logic changes enough that previously synced files should be
// reprocessed. Roots lists the directories watch mode monitors for new logs.
type Parser interface {
	Name() string
	SchemaVersion() int
	FindLogFiles() ([]string, error)
	ParseFile(path string) ([]model.ParsedPrompt, error)
	Roots() []string
}

// Options configures parser construction.
type Options struct {
	// Home overrides the user home directory for log discovery. Empty means
	// os.UserHomeDir.
	Home string

	// CursorExtraDBs adds state.vscdb paths beyond the platform defaults.
	CursorExtraDBs []string
}

func (o Options) home() string {
	if o.Home != "" {
		return o.Home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// AllParsers returns every parser in display order.
func AllParsers(opts Options) []Parser {
	return []Parser{
		NewClaudeCodeParser(opts),
		NewCursorParser(opts),
		NewAiderParser(opts),
		NewCodexParser(opts),
		NewGeminiParser(opts),
		NewAmpParser(opts),
	}
}

// ByName returns the named parser.
func ByName(name string, opts Options) (Parser, error) {
	for _, p := range AllParsers(opts) {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unknown source %q", name)
}

// globDirs returns the subdirectories of dir matching pattern, ignoring
// stat errors on individual entries.
func globDirs(dir, pattern string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil
	}
	var dirs []string
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.IsDir() {
			dirs = append(dirs, m)
		}
	}
	return dirs
}

// globFiles returns the regular files in dir matching pattern.
func globFiles(dir, pattern string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil
	}
	var files []string
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	return files
}
