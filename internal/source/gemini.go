package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/n-WN/prompt-manager/internal/model"
)

// GeminiParser reads Gemini CLI chat files: one JSON document per session
// under ~/.gemini/tmp/<project-hash>/chats/session-*.json.
type GeminiParser struct {
	dir string
}

// NewGeminiParser returns a parser rooted at <home>/.gemini/tmp.
func NewGeminiParser(opts Options) *GeminiParser {
	return &GeminiParser{dir: filepath.Join(opts.home(), ".gemini", "tmp")}
}

func (p *GeminiParser) Name() string { return model.SourceGeminiCLI }

func (p *GeminiParser) SchemaVersion() int { return 1 }

func (p *GeminiParser) FindLogFiles() ([]string, error) {
	var files []string
	for _, hashDir := range globDirs(p.dir, "*") {
		files = append(files, globFiles(filepath.Join(hashDir, "chats"), "session-*.json")...)
	}
	return files, nil
}

func (p *GeminiParser) Roots() []string {
	return []string{p.dir}
}

// ParseFile pairs each user message with every following model message until
// the next user message.
func (p *GeminiParser) ParseFile(path string) ([]model.ParsedPrompt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	projectHash := strField(doc, "projectHash")
	if projectHash == "" {
		projectHash = filepath.Base(filepath.Dir(filepath.Dir(path)))
	}
	sessionID := strField(doc, "sessionId")
	if sessionID == "" {
		sessionID = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	projectPath := model.SourceGeminiCLI + ":" + projectHash

	messages := listField(doc, "messages")

	var prompts []model.ParsedPrompt
	for i := 0; i < len(messages); i++ {
		msg, ok := messages[i].(map[string]any)
		if !ok || strField(msg, "type") != "user" {
			continue
		}
		rawContent, ok := msg["content"].(string)
		if !ok {
			continue
		}
		content := strings.TrimSpace(rawContent)
		if !longEnough(content) {
			continue
		}

		var parts []string
		j := i + 1
		for ; j < len(messages); j++ {
			next, ok := messages[j].(map[string]any)
			if !ok {
				continue
			}
			if strField(next, "type") == "user" {
				break
			}
			if c, ok := next["content"].(string); ok && strings.TrimSpace(c) != "" {
				parts = append(parts, c)
			}
		}

		turnJSON, err := json.Marshal(messages[i:j])
		if err != nil {
			turnJSON = []byte("[]")
		}

		timeKey := strField(msg, "id")
		if timeKey == "" {
			timeKey = rawTimeKey(msg["timestamp"])
		}
		ts, hasTime := ParseTimestamp(msg["timestamp"])

		prompts = append(prompts, model.ParsedPrompt{
			ID:          GenerateID(model.SourceGeminiCLI, content, sessionID, timeKey),
			Source:      model.SourceGeminiCLI,
			Content:     content,
			ProjectPath: projectPath,
			SessionID:   sessionID,
			Timestamp:   ts,
			HasTime:     hasTime,
			Response:    strings.Join(parts, "\n"),
			TurnJSON:    string(turnJSON),
		})
	}

	return prompts, nil
}
