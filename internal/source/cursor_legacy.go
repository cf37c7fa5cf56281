package source

import (
	"database/sql"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	"github.com/n-WN/prompt-manager/internal/model"
)

// Legacy cursor chats keep one SQLite database per conversation: a meta table
// holding hex-encoded JSON (name, createdAt) and a blobs table whose rows are
// messages encoded as either JSON or protobuf.

// cursorMessage is one decoded blob. Role is "user", "assistant", or empty
// when the blob carried text but no role signal; empty roles are resolved by
// alternation before pairing.
type cursorMessage struct {
	BlobID string `json:"blob_id"`
	Role   string `json:"role"`
	Text   string `json:"text"`
}

func (p *CursorParser) parseStoreDB(path string) ([]model.ParsedPrompt, error) {
	workspaceID := filepath.Base(filepath.Dir(filepath.Dir(path)))
	chatID := filepath.Base(filepath.Dir(path))

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	chatName, createdAt, hasTime := readStoreMeta(db)

	rows, err := db.Query("SELECT id, data FROM blobs")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []cursorMessage
	seen := make(map[string]struct{})
	prev := "assistant" // first unresolved role alternates to user
	for rows.Next() {
		var blobID string
		var data []byte
		if err := rows.Scan(&blobID, &data); err != nil {
			continue
		}

		role, text, ok := decodeCursorBlob(data)
		if !ok || text == "" {
			continue
		}
		if role == "" {
			if prev == "user" {
				role = "assistant"
			} else {
				role = "user"
			}
		}

		// Duplicate blobs are common (the editor rewrites conversation
		// state); drop repeats without advancing the alternation.
		key := role + "\x00" + dedupKey(text)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		messages = append(messages, cursorMessage{BlobID: blobID, Role: role, Text: text})
		if role == "user" || role == "assistant" {
			prev = role
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var prompts []model.ParsedPrompt
	for i := 0; i < len(messages); i++ {
		if messages[i].Role != "user" {
			continue
		}
		content := cleanCursorContent(messages[i].Text)
		if !longEnough(content) {
			continue
		}

		j := i + 1
		var parts []string
		for ; j < len(messages); j++ {
			if messages[j].Role == "user" {
				break
			}
			if messages[j].Role == "assistant" && strings.TrimSpace(messages[j].Text) != "" {
				parts = append(parts, messages[j].Text)
			}
		}
		turnJSON, err := json.Marshal(messages[i:j])
		if err != nil {
			turnJSON = nil
		}

		prompt := model.ParsedPrompt{
			ID:          GenerateID(model.SourceCursor, content, chatID, messages[i].BlobID),
			Source:      model.SourceCursor,
			Content:     content,
			ProjectPath: "cursor:" + workspaceID + "/" + chatName,
			SessionID:   chatID,
			Response:    strings.Join(parts, "\n"),
			TurnJSON:    string(turnJSON),
		}
		if hasTime {
			prompt.Timestamp = createdAt
			prompt.HasTime = true
		}
		prompts = append(prompts, prompt)
	}
	return prompts, nil
}

// readStoreMeta decodes the chat name and creation time from the meta table.
// The value is hex-encoded JSON; anything unreadable degrades to defaults.
func readStoreMeta(db *sql.DB) (name string, createdAt time.Time, hasTime bool) {
	name = "Unknown"
	var key, value string
	if err := db.QueryRow("SELECT key, value FROM meta").Scan(&key, &value); err != nil {
		return name, createdAt, false
	}
	raw, err := hex.DecodeString(value)
	if err != nil {
		return name, createdAt, false
	}
	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil {
		return name, createdAt, false
	}
	if n := strField(meta, "name"); n != "" {
		name = n
	}
	if v, ok := meta["createdAt"]; ok {
		createdAt, hasTime = ParseTimestamp(v)
	}
	return name, createdAt, hasTime
}

// dedupKey truncates text to its first 200 characters, trimmed. Long
// messages that share a prefix this size are effectively re-saves.
func dedupKey(text string) string {
	runes := []rune(text)
	if len(runes) > 200 {
		runes = runes[:200]
	}
	return strings.TrimSpace(string(runes))
}

// decodeCursorBlob extracts (role, text) from one blob, trying JSON first
// and falling back to the protobuf string scan. An empty role with ok=true
// means text was found but the encoding carried no role.
func decodeCursorBlob(data []byte) (role, text string, ok bool) {
	if role, text, ok = cursorBlobJSON(data); ok {
		return role, text, true
	}
	return cursorBlobProto(data)
}

func cursorBlobJSON(data []byte) (role, text string, ok bool) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", "", false
	}
	content := doc["content"]
	switch strField(doc, "role") {
	case "user":
		if t := cursorUserText(content); t != "" {
			return "user", t, true
		}
	case "assistant":
		if t := cursorAssistantText(content); t != "" {
			return "assistant", t, true
		}
	case "tool":
		return "tool", "", true
	default:
		if t := cursorUserText(content); t != "" {
			return "", t, true
		}
	}
	return "", "", false
}

// cursorBlobProto applies the observed field-number heuristics: field 4 often
// wraps a JSON message with an explicit role; a field 1 string over 20
// characters that is not a URL or JSON is a user message. Blobs matching
// neither are conversation state, not messages, and are skipped.
func cursorBlobProto(data []byte) (role, text string, ok bool) {
	strs := scanProtoStrings(data)
	if len(strs) == 0 {
		return "", "", false
	}
	for _, fs := range strs {
		if fs.field == 4 && strings.HasPrefix(fs.text, "{") {
			var doc map[string]any
			if err := json.Unmarshal([]byte(fs.text), &doc); err == nil {
				content := doc["content"]
				switch strField(doc, "role") {
				case "assistant":
					if t := cursorAssistantText(content); t != "" {
						return "assistant", t, true
					}
				case "user":
					if t := cursorUserText(content); t != "" {
						return "user", t, true
					}
				}
			}
		}
		if fs.field == 1 && utf8.RuneCountInString(fs.text) > 20 {
			if !strings.HasPrefix(fs.text, "file://") &&
				!strings.HasPrefix(fs.text, "http://") &&
				!strings.HasPrefix(fs.text, "https://") &&
				!strings.HasPrefix(fs.text, "{") &&
				hasLetter(fs.text) {
				return "user", fs.text, true
			}
		}
	}
	return "", "", false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// cursorUserText flattens user content: either a plain string or a list
// whose entries are text/input_text blocks or bare strings.
func cursorUserText(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case []any:
		var parts []string
		for _, item := range c {
			switch block := item.(type) {
			case map[string]any:
				if t := strField(block, "type"); t == "text" || t == "input_text" {
					if text := strField(block, "text"); text != "" {
						parts = append(parts, text)
					}
				}
			case string:
				parts = append(parts, block)
			}
		}
		return strings.Join(parts, "\n")
	}
	return ""
}

// cursorAssistantText flattens assistant content. Reasoning blocks are kept
// but labelled so they read distinctly from the answer text.
func cursorAssistantText(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case []any:
		var parts []string
		for _, item := range c {
			block, ok := item.(map[string]any)
			if !ok {
				continue
			}
			switch strField(block, "type") {
			case "text", "output_text":
				if text := strField(block, "text"); text != "" {
					parts = append(parts, text)
				}
			case "reasoning":
				if text := strField(block, "text"); text != "" {
					parts = append(parts, "[Reasoning] "+text)
				}
			}
		}
		return strings.Join(parts, "\n")
	}
	return ""
}

var (
	userQueryOpenRE  = regexp.MustCompile(`<user_query>\s*`)
	userQueryCloseRE = regexp.MustCompile(`\s*</user_query>`)
	userInfoRE       = regexp.MustCompile(`(?s)<user_info>.*?</user_info>\s*`)
	envContextRE     = regexp.MustCompile(`(?s)<environment_context>.*?</environment_context>\s*`)
)

// cleanCursorContent strips the editor's prompt-wrapping tags so only the
// words the user typed remain.
func cleanCursorContent(content string) string {
	content = userQueryOpenRE.ReplaceAllString(content, "")
	content = userQueryCloseRE.ReplaceAllString(content, "")
	content = userInfoRE.ReplaceAllString(content, "")
	content = envContextRE.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}
