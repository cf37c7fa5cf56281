package source

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"
)

// TurnView is the user-visible shape of one codex turn: the typed message,
// the reasoning segments, and the surfaced agent replies.
type TurnView struct {
	UserMessage       string
	ReasoningSegments []string
	AgentMessages     []string
}

var reasoningTitleRE = regexp.MustCompile(`^\*\*(.+?)\*\*\s*$`)

// splitReasoningTitle separates a bold first-line heading from the segment
// body. An empty title means the segment has no heading.
func splitReasoningTitle(text string) (title, body string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ""
	}
	lines := strings.Split(text, "\n")
	m := reasoningTitleRE.FindStringSubmatch(strings.TrimSpace(lines[0]))
	if m == nil {
		return "", text
	}
	title = strings.TrimSpace(m[1])
	body = strings.TrimSpace(strings.TrimLeft(strings.Join(lines[1:], "\n"), "\n"))
	return title, body
}

var paragraphSplitRE = regexp.MustCompile(`\n\s*\n`)

// wrapParagraphs fills each blank-line-separated paragraph to width. Every
// paragraph takes the initial indent; continuation lines take the subsequent
// indent. Words longer than the width are never broken.
func wrapParagraphs(text string, width int, initialIndent, subsequentIndent string) string {
	var paragraphs []string
	for _, p := range paragraphSplitRE.Split(strings.TrimSpace(text), -1) {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	if len(paragraphs) == 0 {
		return ""
	}
	wrapped := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		wrapped = append(wrapped, fillParagraph(p, width, initialIndent, subsequentIndent))
	}
	return strings.Join(wrapped, "\n\n")
}

func fillParagraph(paragraph string, width int, initialIndent, subsequentIndent string) string {
	words := strings.Fields(paragraph)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	line := initialIndent + words[0]
	for _, word := range words[1:] {
		if utf8.RuneCountInString(line)+1+utf8.RuneCountInString(word) <= width {
			line += " " + word
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
		line = subsequentIndent + word
	}
	b.WriteString(line)
	return b.String()
}

// ExtractRolloutViews reads a rollout file into per-turn views plus the last
// reported cumulative token usage.
func ExtractRolloutViews(path string) (sessionID string, turns []TurnView, usage *TokenUsage, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var current *TurnView

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		_, item, ok := DecodeRolloutLine(line)
		if !ok {
			continue
		}
		switch ev := item.(type) {
		case SessionMetaItem:
			if ev.ID != "" {
				sessionID = ev.ID
			}
		case UserMessageEvent:
			if current != nil {
				turns = append(turns, *current)
			}
			current = &TurnView{UserMessage: ev.Message}
		case TokenCountEvent:
			if ev.Total != nil {
				usage = ev.Total
			}
		case AgentReasoningEvent:
			if current != nil && strings.TrimSpace(ev.Text) != "" {
				current.ReasoningSegments = append(current.ReasoningSegments, ev.Text)
			}
		case AgentMessageEvent:
			if current != nil && strings.TrimSpace(ev.Message) != "" {
				current.AgentMessages = append(current.AgentMessages, ev.Message)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if current != nil {
		turns = append(turns, *current)
	}
	return sessionID, turns, usage, nil
}

// ExtractTurnJSONView rebuilds a single turn view from a stored timeline.
func ExtractTurnJSONView(turnJSON string) (TurnView, bool) {
	var timeline []any
	if err := json.Unmarshal([]byte(turnJSON), &timeline); err != nil {
		return TurnView{}, false
	}

	var view TurnView
	haveUser := false
	for _, entry := range timeline {
		line, ok := entry.(map[string]any)
		if !ok || strField(line, "type") != "event_msg" {
			continue
		}
		payload := mapField(line, "payload")
		if payload == nil {
			continue
		}
		switch ev := decodeEventMsg(payload).(type) {
		case UserMessageEvent:
			if !haveUser {
				view.UserMessage = ev.Message
				haveUser = true
			}
		case AgentReasoningEvent:
			if strings.TrimSpace(ev.Text) != "" {
				view.ReasoningSegments = append(view.ReasoningSegments, ev.Text)
			}
		case AgentMessageEvent:
			if strings.TrimSpace(ev.Message) != "" {
				view.AgentMessages = append(view.AgentMessages, ev.Message)
			}
		}
	}
	if !haveUser {
		return TurnView{}, false
	}
	return view, true
}

// FormatTurnView renders one turn the way the codex CLI shows it: the typed
// message behind a "›" marker, reasoning with the first segment's heading
// suppressed, and bulleted agent replies.
func FormatTurnView(turn TurnView, width int) string {
	out := []string{"", "› " + turn.UserMessage, ""}

	if len(turn.ReasoningSegments) > 0 {
		title0, body0 := splitReasoningTitle(turn.ReasoningSegments[0])
		firstBody := body0
		if firstBody == "" {
			firstBody = title0
		}
		out = append(out, wrapParagraphs(firstBody, width, "• ", "  "))

		for _, seg := range turn.ReasoningSegments[1:] {
			title, body := splitReasoningTitle(seg)
			if title != "" {
				out = append(out, "", "  "+title, "")
			}
			if body != "" {
				out = append(out, wrapParagraphs(body, width, "  ", "  "))
			}
		}
		out = append(out, "")
	}

	var visible []string
	for _, msg := range turn.AgentMessages {
		if strings.TrimSpace(msg) != "" {
			visible = append(visible, msg)
		}
	}
	if assistant := strings.TrimSpace(strings.Join(visible, "\n")); assistant != "" {
		out = append(out, wrapParagraphs(assistant, width, "• ", "  "), "")
	}

	return strings.TrimLeft(strings.Join(out, "\n"), "\n")
}

// FormatTurnTimeline renders a stored turn_json timeline; ok is false when
// the timeline holds no codex user message.
func FormatTurnTimeline(turnJSON string, width int) (string, bool) {
	if width <= 0 {
		width = 100
	}
	view, ok := ExtractTurnJSONView(turnJSON)
	if !ok {
		return "", false
	}
	return FormatTurnView(view, width), true
}

// FormatTokenUsage renders the cumulative usage line. Cached input is carved
// out of the input figure the way the codex CLI reports it.
func FormatTokenUsage(u TokenUsage) string {
	nonCached := u.InputTokens - u.CachedInputTokens
	if nonCached < 0 {
		nonCached = 0
	}
	total := nonCached + u.OutputTokens

	cachedPart := ""
	if u.CachedInputTokens != 0 {
		cachedPart = fmt.Sprintf(" (+ %s cached)", humanize.Comma(u.CachedInputTokens))
	}
	return fmt.Sprintf("Token usage: total=%s input=%s%s output=%s (reasoning %s)",
		humanize.Comma(total), humanize.Comma(nonCached), cachedPart,
		humanize.Comma(u.OutputTokens), humanize.Comma(u.ReasoningOutputTokens))
}

// FormatRolloutTranscript renders a whole rollout file as a transcript.
func FormatRolloutTranscript(path string, width int) (string, error) {
	if width <= 0 {
		width = 100
	}
	sessionID, turns, usage, err := ExtractRolloutViews(path)
	if err != nil {
		return "", err
	}

	var out []string
	for _, turn := range turns {
		out = append(out, FormatTurnView(turn, width))
	}
	if usage != nil {
		out = append(out, FormatTokenUsage(*usage))
	}
	if sessionID != "" {
		out = append(out, "To continue this session, run codex resume "+sessionID)
	}
	return strings.TrimRightFunc(strings.Join(out, "\n"), unicode.IsSpace) + "\n", nil
}
