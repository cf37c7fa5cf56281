package source

import (
	"database/sql"
	"encoding/base64"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/n-WN/prompt-manager/internal/model"
)

// CursorParser reads Cursor chat databases in both on-disk generations:
// legacy per-chat SQLite files under ~/.cursor/chats/<workspace>/<chat>/store.db
// and the VS Code-style globalStorage state.vscdb, whose cursorDiskKV table
// splits conversations across composerData:<id> and bubbleId:<id>:<id> keys.
type CursorParser struct {
	chatsDir string
	stateDBs []string
}

func NewCursorParser(opts Options) *CursorParser {
	home := opts.home()
	candidates := []string{
		filepath.Join(home, "Library", "Application Support", "Cursor", "User", "globalStorage", "state.vscdb"),
		filepath.Join(home, ".config", "Cursor", "User", "globalStorage", "state.vscdb"),
	}
	if opts.Home == "" {
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			candidates = append(candidates, filepath.Join(appdata, "Cursor", "User", "globalStorage", "state.vscdb"))
		}
	}
	candidates = append(candidates, opts.CursorExtraDBs...)
	return &CursorParser{
		chatsDir: filepath.Join(home, ".cursor", "chats"),
		stateDBs: candidates,
	}
}

func (p *CursorParser) Name() string { return model.SourceCursor }

func (p *CursorParser) SchemaVersion() int { return 2 }

func (p *CursorParser) FindLogFiles() ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	add := func(path string) {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		files = append(files, path)
	}

	matches, err := filepath.Glob(filepath.Join(p.chatsDir, "*", "*", "store.db"))
	if err == nil {
		for _, m := range matches {
			add(m)
		}
	}
	for _, candidate := range p.stateDBs {
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			add(candidate)
		}
	}
	return files, nil
}

func (p *CursorParser) Roots() []string {
	roots := []string{p.chatsDir}
	for _, db := range p.stateDBs {
		roots = append(roots, filepath.Dir(db))
	}
	return roots
}

func (p *CursorParser) ParseFile(path string) ([]model.ParsedPrompt, error) {
	if filepath.Base(path) == "state.vscdb" {
		return p.parseStateDB(path)
	}
	return p.parseStoreDB(path)
}

func (p *CursorParser) parseStateDB(path string) ([]model.ParsedPrompt, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var hasKV bool
	err = db.QueryRow(
		"SELECT EXISTS (SELECT name FROM sqlite_master WHERE type='table' AND name='cursorDiskKV')",
	).Scan(&hasKV)
	if err != nil {
		return nil, err
	}
	if !hasKV {
		return nil, nil
	}

	composers, err := loadComposers(db)
	if err != nil {
		return nil, err
	}
	order, bubbles, err := loadBubbles(db)
	if err != nil {
		return nil, err
	}

	var prompts []model.ParsedPrompt
	for _, composerID := range order {
		prompts = append(prompts, composerPrompts(composerID, composers[composerID], bubbles[composerID])...)
	}
	return prompts, nil
}

func loadComposers(db *sql.DB) (map[string]map[string]any, error) {
	rows, err := db.Query("SELECT key, value FROM cursorDiskKV WHERE key LIKE 'composerData:%'")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	composers := make(map[string]map[string]any)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			continue
		}
		composerID := strings.TrimPrefix(key, "composerData:")
		if composerID == "" || composerID == key {
			continue
		}
		if obj, ok := decodeKVValue(value).(map[string]any); ok {
			composers[composerID] = obj
		}
	}
	return composers, rows.Err()
}

// loadBubbles groups bubble rows by composer, keeping first-seen composer
// order so output is stable across runs.
func loadBubbles(db *sql.DB) ([]string, map[string][]map[string]any, error) {
	rows, err := db.Query("SELECT key, value FROM cursorDiskKV WHERE key LIKE 'bubbleId:%'")
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var order []string
	bubbles := make(map[string][]map[string]any)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			continue
		}
		composerID, bubbleID, ok := splitBubbleKey(key)
		if !ok {
			continue
		}
		obj, ok := decodeKVValue(value).(map[string]any)
		if !ok {
			continue
		}
		if strField(obj, "bubbleId") == "" {
			obj["bubbleId"] = bubbleID
		}
		if _, known := bubbles[composerID]; !known {
			order = append(order, composerID)
		}
		bubbles[composerID] = append(bubbles[composerID], obj)
	}
	return order, bubbles, rows.Err()
}

func splitBubbleKey(key string) (composerID, bubbleID string, ok bool) {
	rest, found := strings.CutPrefix(key, "bubbleId:")
	if !found {
		return "", "", false
	}
	composerID, bubbleID, found = strings.Cut(rest, ":")
	if !found || composerID == "" || bubbleID == "" {
		return "", "", false
	}
	return composerID, bubbleID, true
}

// composerPrompts orders one composer's bubbles by derived timestamp and
// pairs each type-1 (user) bubble with the type-2 (assistant) bubbles that
// follow it. Bubbles with no recoverable time sort last, bubble id breaking
// ties, so ordering never depends on row order in the database.
func composerPrompts(composerID string, composer map[string]any, bubbleList []map[string]any) []model.ParsedPrompt {
	label := "cursor"
	if root, ok := cursorProjectRoot(composer); ok {
		label = "cursor:" + root
	}

	type sortedBubble struct {
		key    float64
		id     string
		bubble map[string]any
	}
	prepared := make([]sortedBubble, 0, len(bubbleList))
	for _, b := range bubbleList {
		prepared = append(prepared, sortedBubble{
			key:    bubbleSortKey(b),
			id:     strField(b, "bubbleId"),
			bubble: b,
		})
	}
	sort.SliceStable(prepared, func(i, j int) bool {
		if prepared[i].key != prepared[j].key {
			return prepared[i].key < prepared[j].key
		}
		return prepared[i].id < prepared[j].id
	})

	var prompts []model.ParsedPrompt
	for idx := 0; idx < len(prepared); idx++ {
		bubble := prepared[idx].bubble
		if bubbleType(bubble) != 1 {
			continue
		}
		content := cleanCursorContent(strField(bubble, "text"))
		if !longEnough(content) {
			continue
		}

		ts, hasTime := bubbleTimestamp(bubble)
		if !hasTime {
			ts, hasTime = ParseTimestamp(mapValue(composer, "createdAt"))
		}

		var parts []string
		for j := idx + 1; j < len(prepared); j++ {
			next := prepared[j].bubble
			if bubbleType(next) == 1 {
				break
			}
			if bubbleType(next) == 2 {
				if text := strField(next, "text"); strings.TrimSpace(text) != "" {
					parts = append(parts, text)
				}
			}
		}

		bubbleID := strField(bubble, "bubbleId")
		prompt := model.ParsedPrompt{
			ID:          GenerateID(model.SourceCursor, content, composerID, bubbleID),
			Source:      model.SourceCursor,
			Content:     content,
			ProjectPath: label,
			SessionID:   composerID,
			Response:    strings.Join(parts, "\n"),
		}
		if hasTime {
			prompt.Timestamp = ts
			prompt.HasTime = true
		}
		prompts = append(prompts, prompt)
	}
	return prompts
}

func bubbleType(b map[string]any) int {
	v, ok := b["type"].(float64)
	if !ok {
		return 0
	}
	return int(v)
}

func bubbleTimestamp(b map[string]any) (time.Time, bool) {
	if ts, ok := nonzeroTime(b["createdAt"]); ok {
		return ts, true
	}
	if timing := mapField(b, "timingInfo"); timing != nil {
		if ts, ok := nonzeroTime(timing["clientEndTime"]); ok {
			return ts, true
		}
	}
	return time.Time{}, false
}

// nonzeroTime parses a timestamp but treats a literal zero as absent, since
// bubble records use 0 for "never set".
func nonzeroTime(v any) (time.Time, bool) {
	if n, ok := v.(float64); ok && n == 0 {
		return time.Time{}, false
	}
	return ParseTimestamp(v)
}

func bubbleSortKey(b map[string]any) float64 {
	ts, ok := bubbleTimestamp(b)
	if !ok {
		return math.Inf(1)
	}
	return float64(ts.UnixNano()) / float64(time.Second)
}

func mapValue(m map[string]any, key string) any {
	if m == nil {
		return nil
	}
	return m[key]
}

// cursorProjectRoot infers a project path from the file paths a composer
// touched: the git root most of them share wins, falling back to their
// longest common path prefix.
func cursorProjectRoot(composer map[string]any) (string, bool) {
	var paths []string
	if cbd := mapField(composer, "codeBlockData"); cbd != nil {
		keys := make([]string, 0, len(cbd))
		for k := range cbd {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			entry, ok := cbd[k].(map[string]any)
			if !ok {
				continue
			}
			uri := mapField(entry, "uri")
			if uri == nil {
				continue
			}
			if fsPath := strField(uri, "fsPath"); fsPath != "" {
				paths = append(paths, fsPath)
			}
		}
	}
	for _, u := range listField(composer, "allAttachedFileCodeChunksUris") {
		if s, ok := u.(string); ok && strings.HasPrefix(s, "file://") {
			paths = append(paths, strings.TrimPrefix(s, "file://"))
		}
	}
	if len(paths) == 0 {
		return "", false
	}

	counts := make(map[string]int)
	var rootOrder []string
	for _, p := range paths {
		for dir := p; ; {
			if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
				if counts[dir] == 0 {
					rootOrder = append(rootOrder, dir)
				}
				counts[dir]++
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	best := ""
	for _, root := range rootOrder {
		if best == "" || counts[root] > counts[best] {
			best = root
		}
	}
	if best != "" {
		return best, true
	}
	return commonPath(paths)
}

// commonPath returns the longest shared path prefix, segment-wise. Mixing
// absolute and relative paths, or sharing only the filesystem root, yields
// no usable prefix.
func commonPath(paths []string) (string, bool) {
	sep := string(filepath.Separator)
	segs := strings.Split(filepath.Clean(paths[0]), sep)
	for _, p := range paths[1:] {
		other := strings.Split(filepath.Clean(p), sep)
		n := 0
		for n < len(segs) && n < len(other) && segs[n] == other[n] {
			n++
		}
		segs = segs[:n]
	}
	common := strings.Join(segs, sep)
	if common == "" || common == sep {
		return "", false
	}
	return common, true
}

// decodeKVValue decodes a cursorDiskKV value, which may be raw JSON, JSON in
// a UTF-8 string, or base64-wrapped JSON in either. Undecodable values
// return nil.
func decodeKVValue(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	if utf8.Valid(raw) {
		text := string(raw)
		stripped := strings.TrimLeftFunc(text, unicode.IsSpace)
		if strings.HasPrefix(stripped, "{") || strings.HasPrefix(stripped, "[") {
			var v any
			if err := json.Unmarshal([]byte(text), &v); err == nil {
				return v
			}
		}
		if decoded, err := base64.StdEncoding.DecodeString(text); err == nil {
			var v any
			if err := json.Unmarshal(decoded, &v); err == nil {
				return v
			}
		}
	}
	if decoded, err := base64.StdEncoding.DecodeString(string(raw)); err == nil {
		var v any
		if err := json.Unmarshal(decoded, &v); err == nil {
			return v
		}
	}
	return nil
}
