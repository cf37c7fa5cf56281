package source

import (
	json "github.com/goccy/go-json"
)

// RolloutItem is one decoded line of a codex rollout file. Unknown types and
// malformed payloads decode to the Unknown variants so a newer CLI's files
// still parse.
type RolloutItem interface {
	rolloutItem()
}

// SessionMetaItem is the rollout header describing the recording session.
type SessionMetaItem struct {
	ID            string
	Timestamp     string
	Cwd           string
	Originator    string
	CLIVersion    string
	Instructions  string
	Source        string
	ModelProvider string
	Git           map[string]any
}

// TurnContextItem carries per-turn model settings; kept raw.
type TurnContextItem struct {
	Raw map[string]any
}

// ContentSpan is one block of a response item's content list.
type ContentSpan struct {
	Type string
	Text string
}

// ResponseMessageItem is a response_item of type message with a valid role
// and content list.
type ResponseMessageItem struct {
	Role    string
	Content []ContentSpan
}

// UserMessageEvent marks text the user actually submitted.
type UserMessageEvent struct {
	Message string
	Kind    string
}

// AgentMessageEvent is the agent's surfaced reply text.
type AgentMessageEvent struct {
	Message string
}

// AgentReasoningEvent is one reasoning segment.
type AgentReasoningEvent struct {
	Text string
}

// TokenUsage mirrors the counters inside a token_count event.
type TokenUsage struct {
	InputTokens           int64
	CachedInputTokens     int64
	OutputTokens          int64
	ReasoningOutputTokens int64
	TotalTokens           int64
}

// TokenCountEvent reports cumulative token usage; Total is nil when the
// payload carried no usable info block.
type TokenCountEvent struct {
	Total *TokenUsage
}

// UnknownEventMsg preserves an event_msg payload this decoder does not model.
type UnknownEventMsg struct {
	EventType string
	Raw       map[string]any
}

// UnknownRolloutItem preserves any other unmodeled line payload.
type UnknownRolloutItem struct {
	ItemType string
	Raw      map[string]any
}

func (SessionMetaItem) rolloutItem()     {}
func (TurnContextItem) rolloutItem()     {}
func (ResponseMessageItem) rolloutItem() {}
func (UserMessageEvent) rolloutItem()    {}
func (AgentMessageEvent) rolloutItem()   {}
func (AgentReasoningEvent) rolloutItem() {}
func (TokenCountEvent) rolloutItem()     {}
func (UnknownEventMsg) rolloutItem()     {}
func (UnknownRolloutItem) rolloutItem()  {}

// DecodeRolloutLine decodes one rollout JSONL line. ok is false when the line
// is not a well-formed rollout record (non-string timestamp or type, or a
// non-object payload); such lines are skipped entirely.
func DecodeRolloutLine(line []byte) (timestamp string, item RolloutItem, ok bool) {
	var doc map[string]any
	if err := json.Unmarshal(line, &doc); err != nil {
		return "", nil, false
	}
	timestamp, tsOK := doc["timestamp"].(string)
	lineType, typeOK := doc["type"].(string)
	if !tsOK || !typeOK {
		return "", nil, false
	}
	payload, ok := doc["payload"].(map[string]any)
	if !ok {
		return "", nil, false
	}
	return timestamp, decodeRolloutPayload(lineType, payload), true
}

func decodeRolloutPayload(lineType string, payload map[string]any) RolloutItem {
	switch lineType {
	case "session_meta":
		return SessionMetaItem{
			ID:            strField(payload, "id"),
			Timestamp:     strField(payload, "timestamp"),
			Cwd:           strField(payload, "cwd"),
			Originator:    strField(payload, "originator"),
			CLIVersion:    strField(payload, "cli_version"),
			Instructions:  strField(payload, "instructions"),
			Source:        strField(payload, "source"),
			ModelProvider: strField(payload, "model_provider"),
			Git:           mapField(payload, "git"),
		}
	case "turn_context":
		return TurnContextItem{Raw: payload}
	case "response_item":
		return decodeResponseItem(payload)
	case "event_msg":
		return decodeEventMsg(payload)
	default:
		return UnknownRolloutItem{ItemType: lineType, Raw: payload}
	}
}

func decodeResponseItem(payload map[string]any) RolloutItem {
	itemType := strField(payload, "type")
	if itemType != "message" {
		return UnknownRolloutItem{ItemType: itemType, Raw: payload}
	}
	role, roleOK := payload["role"].(string)
	content, contentOK := payload["content"].([]any)
	if !roleOK || !contentOK {
		return UnknownRolloutItem{ItemType: itemType, Raw: payload}
	}
	msg := ResponseMessageItem{Role: role}
	for _, item := range content {
		span, ok := item.(map[string]any)
		if !ok {
			continue
		}
		msg.Content = append(msg.Content, ContentSpan{
			Type: strField(span, "type"),
			Text: strField(span, "text"),
		})
	}
	return msg
}

func decodeEventMsg(payload map[string]any) RolloutItem {
	eventType := strField(payload, "type")
	switch eventType {
	case "user_message":
		msg, ok := payload["message"].(string)
		if !ok {
			return UnknownEventMsg{EventType: eventType, Raw: payload}
		}
		return UserMessageEvent{Message: msg, Kind: strField(payload, "kind")}
	case "agent_message":
		msg, ok := payload["message"].(string)
		if !ok {
			return UnknownEventMsg{EventType: eventType, Raw: payload}
		}
		return AgentMessageEvent{Message: msg}
	case "agent_reasoning":
		text, ok := payload["text"].(string)
		if !ok {
			return UnknownEventMsg{EventType: eventType, Raw: payload}
		}
		return AgentReasoningEvent{Text: text}
	case "token_count":
		return TokenCountEvent{Total: decodeTotalUsage(mapField(payload, "info"))}
	default:
		return UnknownEventMsg{EventType: eventType, Raw: payload}
	}
}

func decodeTotalUsage(info map[string]any) *TokenUsage {
	total := mapField(info, "total_token_usage")
	if total == nil {
		return nil
	}
	return &TokenUsage{
		InputTokens:           intField(total, "input_tokens"),
		CachedInputTokens:     intField(total, "cached_input_tokens"),
		OutputTokens:          intField(total, "output_tokens"),
		ReasoningOutputTokens: intField(total, "reasoning_output_tokens"),
		TotalTokens:           intField(total, "total_tokens"),
	}
}

func intField(m map[string]any, key string) int64 {
	if f, ok := m[key].(float64); ok {
		return int64(f)
	}
	return 0
}

// spanTexts collects the texts of spans matching the given type.
func spanTexts(spans []ContentSpan, spanType string) []string {
	var texts []string
	for _, s := range spans {
		if s.Type == spanType && s.Text != "" {
			texts = append(texts, s.Text)
		}
	}
	return texts
}
