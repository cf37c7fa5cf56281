package store

import (
	"os"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/n-WN/prompt-manager/internal/model"
)

// rehydrateTurn rebuilds a turn timeline from the origin log for sources that
// store spans instead of inline turn JSON. Codex spans are byte offsets into
// the rollout file; amp spans are message indexes into the thread document.
// Best effort: a missing or truncated log yields no timeline, not an error.
func rehydrateTurn(source, path string, start, end int64) (string, bool) {
	switch source {
	case model.SourceCodex:
		return rehydrateCodexSpan(path, start, end)
	case model.SourceAmp:
		return rehydrateAmpSpan(path, start, end)
	default:
		return "", false
	}
}

func rehydrateCodexSpan(path string, start, end int64) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	if start < 0 || start >= end || start > int64(len(data)) {
		return "", false
	}
	if end > int64(len(data)) {
		end = int64(len(data))
	}

	var events []json.RawMessage
	for _, line := range strings.Split(string(data[start:end]), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !json.Valid([]byte(line)) {
			continue
		}
		events = append(events, json.RawMessage(line))
	}
	if len(events) == 0 {
		return "", false
	}
	out, err := json.Marshal(events)
	if err != nil {
		return "", false
	}
	return string(out), true
}

func rehydrateAmpSpan(path string, start, end int64) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	var thread struct {
		Messages []json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(data, &thread); err != nil {
		return "", false
	}
	if start < 0 || start >= end || start >= int64(len(thread.Messages)) {
		return "", false
	}
	if end > int64(len(thread.Messages)) {
		end = int64(len(thread.Messages))
	}

	out, err := json.Marshal(thread.Messages[start:end])
	if err != nil {
		return "", false
	}
	return string(out), true
}
