package source

import (
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
)

func writeGeminiSession(t *testing.T, doc string) string {
	t.Helper()
	chatsDir := filepath.Join(t.TempDir(), "abc123hash", "chats")
	if err := os.MkdirAll(chatsDir, 0o750); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(chatsDir, "session-2025-06-01T10-00-00.json")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGeminiParseFile_TurnPairing(t *testing.T) {
	path := writeGeminiSession(t, `{
		"sessionId": "gem-session-1",
		"projectHash": "abc123hash",
		"messages": [
			{"id":"m1","type":"user","content":"Tell me about Go contexts","timestamp":"2025-06-01T10:00:00Z"},
			{"id":"m2","type":"gemini","content":"First answer","timestamp":"2025-06-01T10:00:05Z"},
			{"id":"m3","type":"gemini","content":"Second answer","timestamp":"2025-06-01T10:00:10Z"},
			{"id":"m4","type":"user","content":"Another long question here","timestamp":"2025-06-01T10:01:00Z"},
			{"id":"m5","type":"gemini","content":"Second reply","timestamp":"2025-06-01T10:01:05Z"}
		]
	}`)

	p := &GeminiParser{}
	prompts, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prompts) != 2 {
		t.Fatalf("got %d prompts, want 2", len(prompts))
	}

	if prompts[0].Response != "First answer\nSecond answer" {
		t.Errorf("first response = %q", prompts[0].Response)
	}
	if prompts[1].Response != "Second reply" {
		t.Errorf("second response = %q", prompts[1].Response)
	}
	if prompts[0].SessionID != "gem-session-1" {
		t.Errorf("SessionID = %q", prompts[0].SessionID)
	}
	if prompts[0].ProjectPath != "gemini_cli:abc123hash" {
		t.Errorf("ProjectPath = %q", prompts[0].ProjectPath)
	}

	// Turn timelines carry exactly the messages between boundaries.
	wantIDs := [][]string{{"m1", "m2", "m3"}, {"m4", "m5"}}
	for i, want := range wantIDs {
		var msgs []map[string]any
		if err := json.Unmarshal([]byte(prompts[i].TurnJSON), &msgs); err != nil {
			t.Fatalf("turn %d TurnJSON invalid: %v", i, err)
		}
		if len(msgs) != len(want) {
			t.Fatalf("turn %d has %d messages, want %d", i, len(msgs), len(want))
		}
		for k, id := range want {
			if got, _ := msgs[k]["id"].(string); got != id {
				t.Errorf("turn %d message %d id = %q, want %q", i, k, got, id)
			}
		}
	}
}

func TestGeminiParseFile_Fallbacks(t *testing.T) {
	path := writeGeminiSession(t, `{
		"messages": [
			{"type":"user","content":"A question long enough to keep","timestamp":1717236000000},
			{"type":"gemini","content":"An answer"}
		]
	}`)

	p := &GeminiParser{}
	prompts, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prompts) != 1 {
		t.Fatalf("got %d prompts, want 1", len(prompts))
	}
	if prompts[0].SessionID != "session-2025-06-01T10-00-00" {
		t.Errorf("SessionID = %q, want filename stem", prompts[0].SessionID)
	}
	if prompts[0].ProjectPath != "gemini_cli:abc123hash" {
		t.Errorf("ProjectPath = %q, want directory-derived hash", prompts[0].ProjectPath)
	}
	if !prompts[0].HasTime {
		t.Error("unix-milliseconds timestamp should parse")
	}
	if got := prompts[0].Timestamp.UTC().Year(); got != 2024 {
		t.Errorf("timestamp year = %d, want 2024", got)
	}
}

func TestGeminiParseFile_ShortAndNonUserSkipped(t *testing.T) {
	path := writeGeminiSession(t, `{
		"sessionId": "s",
		"messages": [
			{"type":"user","content":"short"},
			{"type":"gemini","content":"Reply to the short one"},
			{"type":"info","content":"A system notice that is long enough"}
		]
	}`)

	p := &GeminiParser{}
	prompts, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prompts) != 0 {
		t.Fatalf("got %d prompts, want 0", len(prompts))
	}
}

func TestGeminiFindLogFiles(t *testing.T) {
	home := t.TempDir()
	chats := filepath.Join(home, ".gemini", "tmp", "hash1", "chats")
	if err := os.MkdirAll(chats, 0o750); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"session-1.json", "notes.json"} {
		if err := os.WriteFile(filepath.Join(chats, name), []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	p := NewGeminiParser(Options{Home: home})
	files, err := p.FindLogFiles()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1: %v", len(files), files)
	}
}
