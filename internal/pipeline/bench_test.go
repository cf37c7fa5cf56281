package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/n-WN/prompt-manager/internal/source"
	"github.com/n-WN/prompt-manager/internal/store"
)

// benchEngine builds an engine over real gemini session files so the
// benchmarks cover discovery, parsing, and SQLite writes together.
func benchEngine(b *testing.B, sessions int) *Engine {
	b.Helper()
	home := b.TempDir()
	chats := filepath.Join(home, ".gemini", "tmp", "deadbeef", "chats")
	if err := os.MkdirAll(chats, 0o750); err != nil {
		b.Fatal(err)
	}
	for i := 0; i < sessions; i++ {
		doc := fmt.Sprintf(`{"sessionId":"bench-%04d","projectHash":"deadbeef","messages":[`+
			`{"id":"m1","type":"user","content":"benchmark session %d question one","timestamp":"2025-01-01T10:00:01Z"},`+
			`{"id":"m2","type":"gemini","content":"first answer body","timestamp":"2025-01-01T10:00:02Z"},`+
			`{"id":"m3","type":"user","content":"benchmark session %d question two","timestamp":"2025-01-01T10:00:03Z"},`+
			`{"id":"m4","type":"gemini","content":"second answer body","timestamp":"2025-01-01T10:00:04Z"}]}`, i, i, i)
		name := fmt.Sprintf("session-%04d.json", i)
		if err := os.WriteFile(filepath.Join(chats, name), []byte(doc), 0o600); err != nil {
			b.Fatal(err)
		}
	}

	s, err := store.Open(filepath.Join(b.TempDir(), "prompts.db"))
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = s.Close() })

	return &Engine{
		Store:   s,
		Parsers: []source.Parser{source.NewGeminiParser(source.Options{Home: home})},
	}
}

func BenchmarkSyncAllUpToDate(b *testing.B) {
	eng := benchEngine(b, 100)
	if _, err := eng.SyncAll(context.Background(), false); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := eng.SyncAll(context.Background(), false); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSyncAllForced(b *testing.B) {
	eng := benchEngine(b, 50)
	if _, err := eng.SyncAll(context.Background(), false); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := eng.SyncAll(context.Background(), true); err != nil {
			b.Fatal(err)
		}
	}
}
