package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

// writeClaudeSession creates a session file under an encoded project dir and
// returns its path.
func writeClaudeSession(t *testing.T, lines ...string) string {
	t.Helper()
	projDir := filepath.Join(t.TempDir(), "-Users-test-project")
	if err := os.MkdirAll(projDir, 0o750); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(projDir, "sess-1.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestClaudeCodeParseFile_Turns(t *testing.T) {
	path := writeClaudeSession(t,
		`{"type":"user","timestamp":"2025-06-01T10:00:00Z","message":{"role":"user","content":[{"type":"text","text":"First prompt long enough"}]}}`,
		`{"type":"assistant","timestamp":"2025-06-01T10:00:05Z","message":{"role":"assistant","content":[{"type":"text","text":"Reply to the first prompt"}]}}`,
		`{"type":"user","timestamp":"2025-06-01T10:01:00Z","message":{"role":"user","content":[{"type":"text","text":"Second prompt long enough"}]}}`,
		`{"type":"assistant","timestamp":"2025-06-01T10:01:05Z","message":{"role":"assistant","content":[{"type":"text","text":"Reply to the second prompt"}]}}`,
	)

	p := &ClaudeCodeParser{}
	prompts, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prompts) != 2 {
		t.Fatalf("got %d prompts, want 2", len(prompts))
	}

	if prompts[0].Content != "First prompt long enough" {
		t.Errorf("Content = %q", prompts[0].Content)
	}
	if prompts[0].Response != "Reply to the first prompt" {
		t.Errorf("Response = %q", prompts[0].Response)
	}
	if prompts[0].SessionID != "sess-1" {
		t.Errorf("SessionID = %q", prompts[0].SessionID)
	}
	if !prompts[0].HasTime {
		t.Error("expected parsed timestamp")
	}

	// Each turn timeline holds exactly its own user+assistant events.
	for i, want := range []int{2, 2} {
		var events []map[string]any
		if err := json.Unmarshal([]byte(prompts[i].TurnJSON), &events); err != nil {
			t.Fatalf("turn %d TurnJSON invalid: %v", i, err)
		}
		if len(events) != want {
			t.Errorf("turn %d has %d events, want %d", i, len(events), want)
		}
	}
	if strings.Contains(prompts[0].TurnJSON, "Second prompt long enough") {
		t.Error("first turn timeline leaked the second turn's prompt")
	}
	if !strings.Contains(prompts[1].TurnJSON, "Second prompt long enough") {
		t.Error("second turn timeline missing its own prompt")
	}
}

func TestClaudeCodeParseFile_Filtering(t *testing.T) {
	path := writeClaudeSession(t,
		`{"type":"user","isMeta":true,"message":{"role":"user","content":"Meta record long enough to pass"}}`,
		`{"type":"user","message":{"role":"user","content":"<command-name>/compact</command-name>"}}`,
		`{"type":"user","message":{"role":"user","content":"<local-command-caveat>Caveat text goes here</local-command-caveat>"}}`,
		`{"type":"user","message":{"role":"user","content":"short"}}`,
		`{"type":"user","timestamp":"2025-06-01T10:00:00Z","message":{"role":"user","content":"A real prompt typed by hand"}}`,
	)

	p := &ClaudeCodeParser{}
	prompts, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prompts) != 1 {
		t.Fatalf("got %d prompts, want 1", len(prompts))
	}
	if prompts[0].Content != "A real prompt typed by hand" {
		t.Errorf("Content = %q", prompts[0].Content)
	}
	if prompts[0].ProjectPath != "/Users/test/project" {
		t.Errorf("ProjectPath = %q, want /Users/test/project", prompts[0].ProjectPath)
	}
	if strings.HasPrefix(prompts[0].ProjectPath, "//") {
		t.Error("project path must not start with //")
	}
}

func TestClaudeCodeParseFile_StringContentAndShortAssistant(t *testing.T) {
	path := writeClaudeSession(t,
		`{"type":"user","timestamp":"2025-06-01T10:00:00Z","message":{"role":"user","content":"Plain string content here"}}`,
		`{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"ok"},{"type":"text","text":"A useful longer answer"}]}}`,
	)

	p := &ClaudeCodeParser{}
	prompts, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prompts) != 1 {
		t.Fatalf("got %d prompts, want 1", len(prompts))
	}
	if prompts[0].Response != "A useful longer answer" {
		t.Errorf("Response = %q, short fragments should be dropped", prompts[0].Response)
	}
}

func TestClaudeCodeParseFile_MalformedLines(t *testing.T) {
	path := writeClaudeSession(t,
		`not json at all`,
		`{"type":"user","message":{"role":"user","content":"Survives malformed neighbors"}}`,
		`{"broken`,
	)

	p := &ClaudeCodeParser{}
	prompts, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prompts) != 1 {
		t.Fatalf("got %d prompts, want 1", len(prompts))
	}
}

func TestClaudeCodeFindLogFiles(t *testing.T) {
	home := t.TempDir()
	projDir := filepath.Join(home, ".claude", "projects", "-Users-test-project")
	if err := os.MkdirAll(projDir, 0o750); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"sess-1.jsonl", "agent-sub.jsonl", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(projDir, name), []byte("{}\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	p := NewClaudeCodeParser(Options{Home: home})
	files, err := p.FindLogFiles()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1 (agent and non-jsonl skipped): %v", len(files), files)
	}
	if filepath.Base(files[0]) != "sess-1.jsonl" {
		t.Errorf("unexpected file %q", files[0])
	}
}

func TestDecodeClaudeProjectPath(t *testing.T) {
	cases := map[string]string{
		"-Users-test-project": "/Users/test/project",
		"-home-dev-src-tool":  "/home/dev/src/tool",
		"relative-dir":        "/relative/dir",
	}
	for in, want := range cases {
		if got := decodeClaudeProjectPath(in); got != want {
			t.Errorf("decodeClaudeProjectPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtractTopLevelType(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{`{"type":"user","timestamp":"2025-06-01T10:00:00Z"}`, "user"},
		{`{"type": "assistant", "message": {}}`, "assistant"},
		{`{"message":{"type":"nested"},"type":"summary"}`, "summary"},
		{`{"data":"the word \"type\" inside a string","type":"user"}`, "user"},
		{`{"type":123}`, ""},
		{`{"type":null}`, ""},
		{`{}`, ""},
		{`not json`, ""},
		{`{"type":"user`, ""},
		{``, ""},
	}
	for _, tt := range cases {
		if got := extractTopLevelType([]byte(tt.input)); got != tt.want {
			t.Errorf("extractTopLevelType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// FuzzExtractTopLevelType exercises the byte-level scanner on arbitrary
// input. Session files come from other tools, so the scanner has to stay
// total on anything they write.
func FuzzExtractTopLevelType(f *testing.F) {
	f.Add([]byte(`{"type":"user","timestamp":"2025-06-01T10:00:00Z"}`))
	f.Add([]byte(`{"type":"assistant","message":{"id":"x","usage":{}}}`))
	f.Add([]byte(`{"message":{"type":"nested"},"type":"summary"}`))
	f.Add([]byte(`{"data":"\"type\"","type":"user"}`))
	f.Add([]byte(`{"type":"user`)) // unterminated string
	f.Add([]byte(`{"type": \`))
	f.Add([]byte(`not json`))
	f.Add([]byte(``))

	f.Fuzz(func(t *testing.T, data []byte) {
		got := extractTopLevelType(data)
		if len(got) > 40 {
			t.Errorf("type value %q exceeds the scanner's length cap", got)
		}
		if strings.ContainsRune(got, '"') {
			t.Errorf("type value %q contains an unterminated quote", got)
		}
	})
}
