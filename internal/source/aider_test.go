package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeAiderHistory(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), aiderHistoryName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAiderParseFile_Sessions(t *testing.T) {
	path := writeAiderHistory(t, `# aider chat started at 2025-01-15 10:30:00

> Add a retry wrapper around the HTTP client

#### Okay, adding a retry wrapper.

> Now make the backoff exponential please

# aider chat started at 2025-01-16 09:00:00

> Rename the config module to settings
`)

	p := &AiderParser{}
	prompts, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prompts) != 3 {
		t.Fatalf("got %d prompts, want 3", len(prompts))
	}

	if prompts[0].Content != "Add a retry wrapper around the HTTP client" {
		t.Errorf("first content = %q", prompts[0].Content)
	}
	if prompts[1].Content != "Now make the backoff exponential please" {
		t.Errorf("second content = %q", prompts[1].Content)
	}
	if prompts[2].Content != "Rename the config module to settings" {
		t.Errorf("third content = %q", prompts[2].Content)
	}

	if prompts[0].SessionID != ".aider.chat.history_2025-01-15_10-30-00" {
		t.Errorf("SessionID = %q", prompts[0].SessionID)
	}
	if prompts[2].SessionID != ".aider.chat.history_2025-01-16_09-00-00" {
		t.Errorf("third SessionID = %q", prompts[2].SessionID)
	}
	if prompts[0].SessionID == prompts[2].SessionID {
		t.Error("sessions must get distinct ids")
	}

	want := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	if !prompts[0].Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", prompts[0].Timestamp, want)
	}
	if prompts[0].Response != "" {
		t.Errorf("aider captures no responses, got %q", prompts[0].Response)
	}
	if prompts[0].ProjectPath != filepath.Dir(path) {
		t.Errorf("ProjectPath = %q", prompts[0].ProjectPath)
	}
}

func TestAiderParseFile_MultilineBlock(t *testing.T) {
	path := writeAiderHistory(t, `# aider chat started at 2025-01-15 10:30:00

> First line of the request
>
> Second paragraph of the request

ok
`)

	p := &AiderParser{}
	prompts, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prompts) != 1 {
		t.Fatalf("got %d prompts, want 1", len(prompts))
	}
	want := "First line of the request\n\nSecond paragraph of the request"
	if prompts[0].Content != want {
		t.Errorf("content = %q, want %q", prompts[0].Content, want)
	}
}

func TestAiderParseFile_ShortBlocksSkipped(t *testing.T) {
	path := writeAiderHistory(t, `# aider chat started at 2025-01-15 10:30:00

> /add

> yes

> A real instruction with enough text
`)

	p := &AiderParser{}
	prompts, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prompts) != 1 {
		t.Fatalf("got %d prompts, want 1", len(prompts))
	}
	if prompts[0].Content != "A real instruction with enough text" {
		t.Errorf("content = %q", prompts[0].Content)
	}
}

func TestAiderFindLogFiles_Dedup(t *testing.T) {
	home := t.TempDir()
	projDir := filepath.Join(home, "projects", "myapp")
	if err := os.MkdirAll(projDir, 0o750); err != nil {
		t.Fatal(err)
	}
	// Reachable both from the home root at depth 2 and the projects root at
	// depth 1; must be listed once.
	if err := os.WriteFile(filepath.Join(projDir, aiderHistoryName), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	p := NewAiderParser(Options{Home: home})
	files, err := p.FindLogFiles()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1: %v", len(files), files)
	}
}
