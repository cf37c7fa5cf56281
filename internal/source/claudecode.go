package source

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/n-WN/prompt-manager/internal/model"
)

// ClaudeCodeParser reads Claude Code session transcripts, one JSON event per
// line, under ~/.claude/projects/<encoded-project>/<session>.jsonl.
type ClaudeCodeParser struct {
	dir string
}

// NewClaudeCodeParser returns a parser rooted at <home>/.claude.
func NewClaudeCodeParser(opts Options) *ClaudeCodeParser {
	return &ClaudeCodeParser{dir: filepath.Join(opts.home(), ".claude")}
}

func (p *ClaudeCodeParser) Name() string { return model.SourceClaudeCode }

func (p *ClaudeCodeParser) SchemaVersion() int { return 2 }

// FindLogFiles lists session files, skipping subagent transcripts.
func (p *ClaudeCodeParser) FindLogFiles() ([]string, error) {
	projectsDir := filepath.Join(p.dir, "projects")
	var files []string
	for _, dir := range globDirs(projectsDir, "*") {
		for _, f := range globFiles(dir, "*.jsonl") {
			if strings.HasPrefix(filepath.Base(f), "agent-") {
				continue
			}
			files = append(files, f)
		}
	}
	return files, nil
}

func (p *ClaudeCodeParser) Roots() []string {
	return []string{filepath.Join(p.dir, "projects")}
}

// decodeClaudeProjectPath reverses Claude Code's path encoding, which maps
// "/" to "-" in the project directory name.
func decodeClaudeProjectPath(dirName string) string {
	trimmed := strings.TrimPrefix(dirName, "-")
	return "/" + strings.ReplaceAll(trimmed, "-", "/")
}

type claudeTurn struct {
	content   string
	timeKey   string
	rawLines  []string
	responses []string
}

// ParseFile extracts one prompt per user turn. A turn opens at a real user
// message and accumulates every raw event line until the next one, so the
// stored timeline includes tool calls and their results.
func (p *ClaudeCodeParser) ParseFile(path string) ([]model.ParsedPrompt, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sessionID := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	projectPath := decodeClaudeProjectPath(filepath.Base(filepath.Dir(path)))

	var prompts []model.ParsedPrompt
	var turn *claudeTurn

	flush := func() {
		if turn == nil {
			return
		}
		ts, hasTime := ParseTimestamp(turn.timeKey)
		prompts = append(prompts, model.ParsedPrompt{
			ID:          GenerateID(model.SourceClaudeCode, turn.content, sessionID, turn.timeKey),
			Source:      model.SourceClaudeCode,
			Content:     turn.content,
			ProjectPath: projectPath,
			SessionID:   sessionID,
			Timestamp:   ts,
			HasTime:     hasTime,
			Response:    strings.Join(turn.responses, "\n"),
			TurnJSON:    "[" + strings.Join(turn.rawLines, ",") + "]",
		})
		turn = nil
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256*1024), 16*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		entryType := extractTopLevelType(line)

		switch entryType {
		case "user":
			if content, timeKey, ok := claudeUserBoundary(line); ok {
				flush()
				turn = &claudeTurn{content: content, timeKey: timeKey}
			}
		case "assistant":
			if turn != nil {
				turn.responses = append(turn.responses, claudeAssistantText(line)...)
			}
		}

		// Undecodable lines stay out of the timeline so it re-parses cleanly.
		if turn != nil && json.Valid(line) {
			turn.rawLines = append(turn.rawLines, string(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	flush()

	return prompts, nil
}

// claudeUserBoundary decides whether a user-typed line starts a new turn.
// Meta records and local-command transcripts share the user type but are not
// prompts the user wrote.
func claudeUserBoundary(line []byte) (content, timeKey string, ok bool) {
	var entry map[string]any
	if err := json.Unmarshal(line, &entry); err != nil {
		return "", "", false
	}
	if isMeta, _ := entry["isMeta"].(bool); isMeta {
		return "", "", false
	}
	msg := mapField(entry, "message")
	if msg == nil || strField(msg, "role") != "user" {
		return "", "", false
	}
	content = extractText(msg["content"])
	if strings.HasPrefix(content, "<command-name>") || strings.HasPrefix(content, "<local-command-") {
		return "", "", false
	}
	if !longEnough(content) {
		return "", "", false
	}
	return content, strField(entry, "timestamp"), true
}

// claudeAssistantText pulls text blocks out of an assistant event, dropping
// fragments of five characters or fewer (stop tokens, stray punctuation).
func claudeAssistantText(line []byte) []string {
	var entry map[string]any
	if err := json.Unmarshal(line, &entry); err != nil {
		return nil
	}
	msg := mapField(entry, "message")
	if msg == nil {
		return nil
	}
	var parts []string
	for _, item := range listField(msg, "content") {
		block, ok := item.(map[string]any)
		if !ok || strField(block, "type") != "text" {
			continue
		}
		if text := strField(block, "text"); len(text) > 5 {
			parts = append(parts, text)
		}
	}
	return parts
}

// typeKey is the byte sequence for a JSON key named "type" (with quotes).
var typeKey = []byte(`"type"`)

// extractTopLevelType finds the top-level "type" field in a JSONL line
// without a full decode. Tracks brace depth and string boundaries so nested
// "type" keys are ignored; early-exits once found.
func extractTopLevelType(line []byte) string {
	depth := 0
	for i := 0; i < len(line); {
		switch line[i] {
		case '"':
			if depth == 1 && bytes.HasPrefix(line[i:], typeKey) {
				val, isKey := classifyTopLevelType(line, i+len(typeKey))
				if isKey {
					return val
				}
				// "type" appeared as a value, not a key. Continue scanning.
			}
			i = skipJSONString(line, i)
		case '{':
			depth++
			i++
		case '}':
			depth--
			i++
		default:
			i++
		}
	}
	return ""
}

// classifyTopLevelType checks whether pos follows a JSON key (expects : then
// value) and returns the string value when it does. isKey=false means "type"
// appeared as a value and the caller should keep scanning.
func classifyTopLevelType(line []byte, pos int) (val string, isKey bool) {
	i := skipSpaces(line, pos)
	if i >= len(line) || line[i] != ':' {
		return "", false
	}
	i = skipSpaces(line, i+1)
	if i >= len(line) || line[i] != '"' {
		return "", true // key with non-string value
	}
	i++

	end := bytes.IndexByte(line[i:], '"')
	if end < 0 || end > 40 {
		return "", true
	}
	return string(line[i : i+end]), true
}

// skipJSONString advances past a JSON string starting at the opening quote.
func skipJSONString(line []byte, i int) int {
	i++
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return i
}

func skipSpaces(line []byte, i int) int {
	for i < len(line) && line[i] == ' ' {
		i++
	}
	return i
}
