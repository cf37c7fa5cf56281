package source

import (
	"strings"
	"testing"
)

func TestFormatRolloutTranscript(t *testing.T) {
	path := writeCodexRollout(t, "rollout-2026-01-19T01-45-34-sess.jsonl",
		`{"timestamp":"2026-01-19T01:45:34.000Z","type":"session_meta","payload":{"id":"sess-123","cwd":"/proj"}}`,
		`{"timestamp":"2026-01-19T01:45:39.000Z","type":"event_msg","payload":{"type":"user_message","message":"message1"}}`,
		`{"timestamp":"2026-01-19T01:45:39.100Z","type":"event_msg","payload":{"type":"agent_reasoning","text":"**Interpreting user intent**\n\nThe user provided AGENTS.md instructions."}}`,
		`{"timestamp":"2026-01-19T01:45:39.200Z","type":"event_msg","payload":{"type":"agent_reasoning","text":"**Responding concisely**\n\nI should ask for clarification."}}`,
		`{"timestamp":"2026-01-19T01:45:40.000Z","type":"event_msg","payload":{"type":"agent_message","message":"Answer 1"}}`,
		`{"timestamp":"2026-01-19T01:45:55.000Z","type":"event_msg","payload":{"type":"user_message","message":"message2"}}`,
		`{"timestamp":"2026-01-19T01:45:55.100Z","type":"event_msg","payload":{"type":"agent_reasoning","text":"**Asking for clarification**\n\nSecond turn reasoning."}}`,
		`{"timestamp":"2026-01-19T01:45:56.000Z","type":"event_msg","payload":{"type":"agent_message","message":"Answer 2"}}`,
		`{"timestamp":"2026-01-19T01:46:06.000Z","type":"event_msg","payload":{"type":"user_message","message":"message3"}}`,
		`{"timestamp":"2026-01-19T01:46:07.000Z","type":"event_msg","payload":{"type":"agent_message","message":"Answer 3"}}`,
		`{"timestamp":"2026-01-19T01:46:14.000Z","type":"event_msg","payload":{"type":"token_count","info":{"total_token_usage":{"input_tokens":31353,"cached_input_tokens":20480,"output_tokens":675,"reasoning_output_tokens":497,"total_tokens":32028}}}}`,
	)

	out, err := FormatRolloutTranscript(path, 80)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"› message1", "› message2", "› message3"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	// The first reasoning heading of a turn is suppressed; only its body shows.
	if strings.Contains(out, "Interpreting user intent") {
		t.Error("first reasoning heading should be suppressed")
	}
	if strings.Contains(out, "Asking for clarification") {
		t.Error("sole reasoning heading of a turn should be suppressed")
	}
	if !strings.Contains(out, "\n  Responding concisely\n") {
		t.Error("later reasoning headings should appear indented")
	}

	for _, want := range []string{"• Answer 1", "• Answer 2", "• Answer 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}

	if !strings.Contains(out, "Token usage: total=11,548 input=10,873 (+ 20,480 cached) output=675 (reasoning 497)") {
		t.Errorf("token usage line wrong in:\n%s", out)
	}
	if !strings.Contains(out, "To continue this session, run codex resume sess-123") {
		t.Error("missing resume hint")
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("transcript must end with a newline")
	}
}

func TestFormatTurnTimeline(t *testing.T) {
	turnJSON := `[` +
		`{"timestamp":"t1","type":"event_msg","payload":{"type":"user_message","message":"Show me the diff"}},` +
		`{"timestamp":"t2","type":"event_msg","payload":{"type":"agent_message","message":"Here it is"}}]`

	out, ok := FormatTurnTimeline(turnJSON, 80)
	if !ok {
		t.Fatal("expected a rendered turn")
	}
	if !strings.Contains(out, "› Show me the diff") || !strings.Contains(out, "• Here it is") {
		t.Errorf("unexpected rendering:\n%s", out)
	}

	if _, ok := FormatTurnTimeline(`[{"type":"other"}]`, 80); ok {
		t.Error("timeline without a user message must not render")
	}
	if _, ok := FormatTurnTimeline(`not json`, 80); ok {
		t.Error("invalid JSON must not render")
	}
}

func TestWrapParagraphs(t *testing.T) {
	out := wrapParagraphs("one two three four five", 12, "• ", "  ")
	want := "• one two\n  three four\n  five"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}

	// Long words overflow rather than break.
	out = fillParagraph("supercalifragilistic word", 10, "• ", "  ")
	if !strings.HasPrefix(out, "• supercalifragilistic") {
		t.Errorf("long word was broken: %q", out)
	}

	// Paragraphs keep the bullet on each.
	out = wrapParagraphs("first para\n\nsecond para", 40, "• ", "  ")
	if out != "• first para\n\n• second para" {
		t.Errorf("got %q", out)
	}
}

func TestSplitReasoningTitle(t *testing.T) {
	title, body := splitReasoningTitle("**Heading**\n\nBody text here.")
	if title != "Heading" || body != "Body text here." {
		t.Errorf("got %q / %q", title, body)
	}

	title, body = splitReasoningTitle("No heading at all")
	if title != "" || body != "No heading at all" {
		t.Errorf("got %q / %q", title, body)
	}
}
