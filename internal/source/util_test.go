package source

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateIDStable(t *testing.T) {
	a := GenerateID("claude_code", "rename the config loader", "sess-1", "1700000000")
	b := GenerateID("claude_code", "rename the config loader", "sess-1", "1700000000")
	if a != b {
		t.Fatalf("same inputs produced %q and %q", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("id length = %d, want 16", len(a))
	}
}

func TestGenerateIDDiscriminatesFields(t *testing.T) {
	base := GenerateID("claude_code", "content", "sess", "ts")
	variants := []string{
		GenerateID("cursor", "content", "sess", "ts"),
		GenerateID("claude_code", "content2", "sess", "ts"),
		GenerateID("claude_code", "content", "sess2", "ts"),
		GenerateID("claude_code", "content", "sess", "ts2"),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with base id %q", i, base)
		}
	}
}

func TestLongEnoughBoundary(t *testing.T) {
	cases := []struct {
		content string
		want    bool
	}{
		{"123456789", false},          // 9 runes
		{"1234567890", true},          // 10 runes
		{"  123456789  ", false},      // padding does not count
		{" 1234567890\n", true},       //
		{strings.Repeat("界", 9), false}, // runes, not bytes
		{strings.Repeat("界", 10), true},
		{"", false},
	}
	for _, c := range cases {
		if got := longEnough(c.content); got != c.want {
			t.Errorf("longEnough(%q) = %v, want %v", c.content, got, c.want)
		}
	}
}

func TestParseTimestampForms(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want time.Time
		ok   bool
	}{
		{"rfc3339", "2024-03-01T12:30:00Z", time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), true},
		{"rfc3339 offset", "2024-03-01T12:30:00+02:00", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), true},
		{"unix seconds", float64(1709296200), time.Unix(1709296200, 0), true},
		{"unix millis", float64(1709296200000), time.Unix(1709296200, 0), true},
		{"space separated", "2024-03-01 12:30:00", time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), true},
		{"hyphenated time", "2024-03-01T12-30-00", time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), true},
		{"date only", "2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"nil", nil, time.Time{}, false},
		{"garbage", "not a time", time.Time{}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := ParseTimestamp(c.in)
			if ok != c.ok {
				t.Fatalf("ok = %v, want %v", ok, c.ok)
			}
			if ok && !got.UTC().Equal(c.want.UTC()) {
				t.Errorf("got %v, want %v", got.UTC(), c.want.UTC())
			}
		})
	}
}

func TestParseTimestampMillisKeepSubSecond(t *testing.T) {
	got, ok := ParseTimestamp(float64(1709296200123))
	if !ok {
		t.Fatal("millisecond timestamp not parsed")
	}
	want := time.Unix(1709296200, 123*int64(time.Millisecond))
	if d := got.Sub(want); d < -time.Millisecond || d > time.Millisecond {
		t.Errorf("got %v, off from %v by %v", got, want, d)
	}
}

func TestExtractTextBlocks(t *testing.T) {
	blocks := []any{
		map[string]any{"type": "text", "text": "first part"},
		map[string]any{"type": "tool_use", "name": "bash"},
		map[string]any{"type": "text", "text": "second part"},
		"not a block",
	}
	if got := extractText(blocks); got != "first part\nsecond part" {
		t.Errorf("extractText(blocks) = %q", got)
	}
	if got := extractText("  plain  "); got != "plain" {
		t.Errorf("extractText(string) = %q", got)
	}
	if got := extractText(42.0); got != "" {
		t.Errorf("extractText(number) = %q", got)
	}
}
