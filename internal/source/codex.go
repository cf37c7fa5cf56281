package source

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/n-WN/prompt-manager/internal/model"
)

// CodexParser reads Codex CLI rollout files under ~/.codex/sessions.
// Current sessions are JSONL event streams (rollout-*.jsonl); very old ones
// are single JSON documents (rollout-*.json).
type CodexParser struct {
	dir string
}

// NewCodexParser returns a parser rooted at <home>/.codex.
func NewCodexParser(opts Options) *CodexParser {
	return &CodexParser{dir: filepath.Join(opts.home(), ".codex")}
}

func (p *CodexParser) Name() string { return model.SourceCodex }

func (p *CodexParser) SchemaVersion() int { return 2 }

// FindLogFiles walks the dated sessions tree.
func (p *CodexParser) FindLogFiles() ([]string, error) {
	sessionsDir := filepath.Join(p.dir, "sessions")
	if _, err := os.Stat(sessionsDir); err != nil {
		return nil, nil
	}

	var files []string
	err := filepath.WalkDir(sessionsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if !strings.HasPrefix(name, "rollout-") {
			return nil
		}
		if strings.HasSuffix(name, ".jsonl") || strings.HasSuffix(name, ".json") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func (p *CodexParser) Roots() []string {
	return []string{filepath.Join(p.dir, "sessions")}
}

func (p *CodexParser) ParseFile(path string) ([]model.ParsedPrompt, error) {
	if strings.HasSuffix(path, ".json") && !strings.HasSuffix(path, ".jsonl") {
		return p.parseLegacyDoc(path)
	}
	return p.parseRollout(path)
}

// rolloutRecord is one decoded line plus its byte offset in the file.
type rolloutRecord struct {
	start int64
	ts    string
	item  RolloutItem
}

func splitRolloutLines(data []byte) []rolloutRecord {
	var recs []rolloutRecord
	offset := 0
	for offset < len(data) {
		next := len(data)
		lineEnd := len(data)
		if idx := bytes.IndexByte(data[offset:], '\n'); idx >= 0 {
			lineEnd = offset + idx
			next = lineEnd + 1
		}
		line := bytes.TrimSpace(data[offset:lineEnd])
		if len(line) > 0 {
			if ts, item, ok := DecodeRolloutLine(line); ok {
				recs = append(recs, rolloutRecord{start: int64(offset), ts: ts, item: item})
			}
		}
		offset = next
	}
	return recs
}

// codexSessionID derives a session id from the filename when the rollout
// carries no session_meta: "rollout-2025-01-02T10-00-00-abc" -> everything
// after the first hyphen.
func codexSessionID(path string) string {
	stem := strings.TrimSuffix(strings.TrimSuffix(filepath.Base(path), ".jsonl"), ".json")
	if idx := strings.Index(stem, "-"); idx >= 0 {
		return stem[idx+1:]
	}
	return stem
}

type codexTurn struct {
	content       string
	timeKey       string
	start         int64
	parts         []string
	sawStructured bool
}

// appendStructured records assistant text from a dedicated response item.
// Structured text wins over the looser agent_message signal for the rest of
// the turn, and immediate duplicates are dropped.
func (t *codexTurn) appendStructured(texts []string) {
	for _, text := range texts {
		if len(t.parts) > 0 && t.parts[len(t.parts)-1] == text {
			continue
		}
		t.parts = append(t.parts, text)
	}
	if len(texts) > 0 {
		t.sawStructured = true
	}
}

func (t *codexTurn) appendLoose(text string) {
	if t.sawStructured || text == "" {
		return
	}
	if len(t.parts) > 0 && t.parts[len(t.parts)-1] == text {
		return
	}
	t.parts = append(t.parts, text)
}

// parseRollout segments a JSONL rollout into turns with byte-offset spans.
//
// Files with explicit user_message events use those as boundaries; the
// duplicate role=user response item that precedes each marker is carryover
// and extends the upcoming turn's span backwards. Older files without
// markers fall back to the role=user response items themselves.
func (p *CodexParser) parseRollout(path string) ([]model.ParsedPrompt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	records := splitRolloutLines(data)

	sessionID := codexSessionID(path)
	projectPath := ""
	markerMode := false
	for _, rec := range records {
		switch item := rec.item.(type) {
		case SessionMetaItem:
			if item.ID != "" {
				sessionID = item.ID
			}
			if projectPath == "" {
				projectPath = item.Cwd
			}
		case UserMessageEvent:
			markerMode = true
		}
	}

	var prompts []model.ParsedPrompt
	var turn *codexTurn
	carryover := int64(-1)

	flush := func(end int64) {
		if turn == nil {
			return
		}
		ts, hasTime := ParseTimestamp(turn.timeKey)
		prompts = append(prompts, model.ParsedPrompt{
			ID:          GenerateID(model.SourceCodex, turn.content, sessionID, turn.timeKey),
			Source:      model.SourceCodex,
			Content:     turn.content,
			ProjectPath: projectPath,
			SessionID:   sessionID,
			Timestamp:   ts,
			HasTime:     hasTime,
			Response:    strings.Join(turn.parts, "\n"),
			OriginPath:  path,
			OriginStart: turn.start,
			OriginEnd:   end,
			HasOrigin:   true,
		})
		turn = nil
	}

	for _, rec := range records {
		switch item := rec.item.(type) {
		case UserMessageEvent:
			content := strings.TrimSpace(item.Message)
			if content == "" {
				continue
			}
			flush(rec.start)
			start := rec.start
			if carryover >= 0 {
				start = carryover
				carryover = -1
			}
			turn = &codexTurn{content: content, timeKey: rec.ts, start: start}

		case ResponseMessageItem:
			switch {
			case item.Role == "user" && markerMode:
				// The marker for this message follows; remember where the
				// logical turn begins so the span covers both records.
				flush(rec.start)
				if carryover < 0 {
					carryover = rec.start
				}
			case item.Role == "user":
				content := strings.TrimSpace(strings.Join(spanTexts(item.Content, "input_text"), "\n"))
				if !longEnough(content) {
					continue
				}
				flush(rec.start)
				turn = &codexTurn{content: content, timeKey: rec.ts, start: rec.start}
			case item.Role == "assistant" && turn != nil:
				turn.appendStructured(spanTexts(item.Content, "output_text"))
			}

		case AgentMessageEvent:
			if turn != nil {
				turn.appendLoose(strings.TrimSpace(item.Message))
			}
		}
	}
	flush(int64(len(data)))

	return prompts, nil
}

// parseLegacyDoc handles the single-document rollout format: one JSON object
// with a session header and a flat items array. Turns are inlined into
// TurnJSON since there are no line offsets to span.
func (p *CodexParser) parseLegacyDoc(path string) ([]model.ParsedPrompt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	session := mapField(doc, "session")
	sessionID := strField(session, "id")
	if sessionID == "" {
		sessionID = codexSessionID(path)
	}
	projectPath := strField(session, "cwd")
	items := listField(doc, "items")

	var prompts []model.ParsedPrompt
	var turn *codexTurn
	turnStart := 0

	flush := func(end int) {
		if turn == nil {
			return
		}
		turnJSON, err := json.Marshal(items[turnStart:end])
		if err != nil {
			turnJSON = []byte("[]")
		}
		prompts = append(prompts, model.ParsedPrompt{
			ID:          GenerateID(model.SourceCodex, turn.content, sessionID, turn.timeKey),
			Source:      model.SourceCodex,
			Content:     turn.content,
			ProjectPath: projectPath,
			SessionID:   sessionID,
			Response:    strings.Join(turn.parts, "\n"),
			TurnJSON:    string(turnJSON),
		})
		turn = nil
	}

	for i, raw := range items {
		payload, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		msg, ok := decodeResponseItem(payload).(ResponseMessageItem)
		if !ok {
			continue
		}
		switch msg.Role {
		case "user":
			content := strings.TrimSpace(strings.Join(spanTexts(msg.Content, "input_text"), "\n"))
			if !longEnough(content) {
				continue
			}
			flush(i)
			turn = &codexTurn{content: content, timeKey: strconv.Itoa(i)}
			turnStart = i
		case "assistant":
			if turn != nil {
				turn.appendStructured(spanTexts(msg.Content, "output_text"))
			}
		}
	}
	flush(len(items))

	return prompts, nil
}
