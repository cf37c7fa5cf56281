package source

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/n-WN/prompt-manager/internal/model"
)

// AmpParser reads Amp thread files: one JSON document per thread under
// $XDG_DATA_HOME/amp/threads (or ~/.local/share/amp/threads).
type AmpParser struct {
	dir string
}

func NewAmpParser(opts Options) *AmpParser {
	if opts.Home == "" {
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return &AmpParser{dir: filepath.Join(xdg, "amp", "threads")}
		}
	}
	return &AmpParser{dir: filepath.Join(opts.home(), ".local", "share", "amp", "threads")}
}

func (p *AmpParser) Name() string { return model.SourceAmp }

func (p *AmpParser) SchemaVersion() int { return 1 }

func (p *AmpParser) FindLogFiles() ([]string, error) {
	return globFiles(p.dir, "T-*.json"), nil
}

func (p *AmpParser) Roots() []string {
	return []string{p.dir}
}

// ampText joins a message's text blocks, stripping each block.
func ampText(msg map[string]any) string {
	var parts []string
	for _, item := range listField(msg, "content") {
		block, ok := item.(map[string]any)
		if !ok || strField(block, "type") != "text" {
			continue
		}
		if text := strings.TrimSpace(strField(block, "text")); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

// projectFromFileURI converts a file:// URI into a filesystem path,
// including UNC hosts and Windows drive letters.
func projectFromFileURI(uri string) (string, bool) {
	if !strings.HasPrefix(uri, "file://") {
		return "", false
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", false
	}
	path := u.Path
	if u.Host != "" {
		path = "//" + u.Host + path
	}
	if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	if path == "" {
		return "", false
	}
	return path, true
}

// ParseFile emits one prompt per user message. Amp prompts are often tiny
// ("continue", "yes do that") yet still the unit of replay, so no minimum
// length applies. Turn spans are message indexes into the thread, stored for
// lazy timeline rehydration.
func (p *AmpParser) ParseFile(path string) ([]model.ParsedPrompt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	threadID := strField(doc, "id")
	if threadID == "" {
		threadID = strings.TrimSuffix(filepath.Base(path), ".json")
	}

	projectPath := "amp"
	if trees := listField(mapField(mapField(doc, "env"), "initial"), "trees"); len(trees) > 0 {
		if tree, ok := trees[0].(map[string]any); ok {
			if decoded, ok := projectFromFileURI(strField(tree, "uri")); ok {
				projectPath = decoded
			}
		}
	}

	createdTS, createdOK := ParseTimestamp(doc["created"])
	messages := listField(doc, "messages")

	type ampTurn struct {
		content string
		timeKey string
		tsValue any
		start   int
		parts   []string
	}

	var prompts []model.ParsedPrompt
	var turn *ampTurn

	flush := func(end int) {
		if turn == nil {
			return
		}
		ts, hasTime := ParseTimestamp(turn.tsValue)
		if !hasTime && createdOK {
			ts, hasTime = createdTS, true
		}
		prompts = append(prompts, model.ParsedPrompt{
			ID:          GenerateID(model.SourceAmp, turn.content, threadID, turn.timeKey),
			Source:      model.SourceAmp,
			Content:     turn.content,
			ProjectPath: projectPath,
			SessionID:   threadID,
			Timestamp:   ts,
			HasTime:     hasTime,
			Response:    strings.TrimSpace(strings.Join(turn.parts, "\n")),
			OriginPath:  path,
			OriginStart: int64(turn.start),
			OriginEnd:   int64(end),
			HasOrigin:   true,
		})
		turn = nil
	}

	for idx, raw := range messages {
		msg, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		switch strField(msg, "role") {
		case "user":
			flush(idx)
			text := ampText(msg)
			if text == "" {
				continue
			}
			timeKey := strField(msg, "messageId")
			if timeKey == "" {
				timeKey = strconv.Itoa(idx)
			}
			turn = &ampTurn{
				content: text,
				timeKey: timeKey,
				tsValue: mapField(msg, "meta")["sentAt"],
				start:   idx,
			}
		case "assistant":
			if turn == nil {
				continue
			}
			if text := ampText(msg); text != "" {
				turn.parts = append(turn.parts, text)
			}
		}
	}
	flush(len(messages))

	return prompts, nil
}
