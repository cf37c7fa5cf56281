package source

import (
	"os"
	"path/filepath"
	"testing"
)

func writeAmpThread(t *testing.T, doc string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "T-123.json")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAmpParseFile_Turns(t *testing.T) {
	path := writeAmpThread(t, `{
		"id": "T-123",
		"created": 1717236000000,
		"env": {"initial": {"trees": [{"uri": "file:///Users/dev/my%20app"}]}},
		"messages": [
			{"role":"user","messageId":"am1","meta":{"sentAt":1717236005000},"content":[{"type":"text","text":"Hi"}]},
			{"role":"assistant","content":[{"type":"text","text":"Reply part one"}]},
			{"role":"assistant","content":[{"type":"text","text":"Reply part two"}]},
			{"role":"user","content":[{"type":"text","text":"Go on"}]},
			{"role":"assistant","content":[{"type":"text","text":"Second reply"}]}
		]
	}`)

	p := &AmpParser{}
	prompts, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prompts) != 2 {
		t.Fatalf("got %d prompts, want 2 (no minimum length for amp)", len(prompts))
	}

	if prompts[0].Content != "Hi" {
		t.Errorf("first content = %q", prompts[0].Content)
	}
	if prompts[0].Response != "Reply part one\nReply part two" {
		t.Errorf("first response = %q", prompts[0].Response)
	}
	if prompts[0].OriginStart != 0 || prompts[0].OriginEnd != 3 {
		t.Errorf("first span = [%d,%d), want [0,3)", prompts[0].OriginStart, prompts[0].OriginEnd)
	}
	if prompts[1].OriginStart != 3 || prompts[1].OriginEnd != 5 {
		t.Errorf("second span = [%d,%d), want [3,5)", prompts[1].OriginStart, prompts[1].OriginEnd)
	}
	if prompts[0].ProjectPath != "/Users/dev/my app" {
		t.Errorf("ProjectPath = %q", prompts[0].ProjectPath)
	}
	if prompts[0].SessionID != "T-123" {
		t.Errorf("SessionID = %q", prompts[0].SessionID)
	}

	if !prompts[0].HasTime || prompts[0].Timestamp.UTC().Year() != 2024 {
		t.Errorf("sentAt timestamp not parsed: %v", prompts[0].Timestamp)
	}
	if !prompts[1].HasTime {
		t.Error("second turn should fall back to the thread created time")
	}
	if prompts[1].Response != "Second reply" {
		t.Errorf("second response = %q", prompts[1].Response)
	}
}

func TestAmpParseFile_NoProjectTree(t *testing.T) {
	path := writeAmpThread(t, `{
		"messages": [
			{"role":"user","content":[{"type":"text","text":"A standalone thread message"}]}
		]
	}`)

	p := &AmpParser{}
	prompts, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prompts) != 1 {
		t.Fatalf("got %d prompts, want 1", len(prompts))
	}
	if prompts[0].ProjectPath != "amp" {
		t.Errorf("ProjectPath = %q, want amp", prompts[0].ProjectPath)
	}
	if prompts[0].SessionID != "T-123" {
		t.Errorf("SessionID = %q, want filename stem", prompts[0].SessionID)
	}
	if prompts[0].HasTime {
		t.Error("no timestamps anywhere, HasTime must be false")
	}
}

func TestProjectFromFileURI(t *testing.T) {
	cases := []struct {
		uri  string
		want string
		ok   bool
	}{
		{"file:///Users/dev/my%20app", "/Users/dev/my app", true},
		{"file:///C:/Users/dev/proj", "C:/Users/dev/proj", true},
		{"file://server/share/dir", "//server/share/dir", true},
		{"https://example.com/x", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := projectFromFileURI(tc.uri)
		if got != tc.want || ok != tc.ok {
			t.Errorf("projectFromFileURI(%q) = %q,%v want %q,%v", tc.uri, got, ok, tc.want, tc.ok)
		}
	}
}

func TestAmpFindLogFiles_XDG(t *testing.T) {
	dataDir := t.TempDir()
	threads := filepath.Join(dataDir, "amp", "threads")
	if err := os.MkdirAll(threads, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(threads, "T-1.json"), []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(threads, "other.json"), []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("XDG_DATA_HOME", dataDir)

	p := NewAmpParser(Options{})
	files, err := p.FindLogFiles()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1: %v", len(files), files)
	}
}
