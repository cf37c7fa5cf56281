package source

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// GenerateID derives a stable prompt ID from the turn's identifying fields.
// Same source + session + time key + content always hashes to the same ID,
// which is what makes re-syncs idempotent.
func GenerateID(source, content, sessionID, timeKey string) string {
	sum := sha256.Sum256([]byte(source + ":" + sessionID + ":" + timeKey + ":" + content))
	return hex.EncodeToString(sum[:])[:16]
}

// timestampLayouts are tried in order after RFC 3339 fails. The hyphenated
// time form appears in gemini session filenames echoed into message ids.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15-04-05",
	"2006-01-02",
}

// ParseTimestamp interprets a timestamp value from a decoded JSON document.
// Numbers are unix seconds, or unix milliseconds when larger than 1e12.
// Strings are tried as RFC 3339 and then a few looser layouts.
func ParseTimestamp(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case float64:
		return unixTime(t), true
	case int64:
		return unixTime(float64(t)), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		if ts, err := time.Parse(time.RFC3339Nano, strings.Replace(s, "Z", "+00:00", 1)); err == nil {
			return ts, true
		}
		if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return ts, true
		}
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

func unixTime(v float64) time.Time {
	if v > 1e12 { // milliseconds
		v /= 1000
	}
	sec, frac := math.Modf(v)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}

// rawTimeKey renders a timestamp value the way it appears in the log, for use
// in ID derivation. Numbers keep their integer form when whole.
func rawTimeKey(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == math.Trunc(t) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// extractText flattens a message content value into plain text. Content is
// either a string or a list of blocks where text blocks carry the words.
func extractText(v any) string {
	switch c := v.(type) {
	case string:
		return strings.TrimSpace(c)
	case []any:
		var parts []string
		for _, item := range c {
			block, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if blockType, _ := block["type"].(string); blockType != "text" {
				continue
			}
			if text, _ := block["text"].(string); text != "" {
				parts = append(parts, text)
			}
		}
		return strings.TrimSpace(strings.Join(parts, "\n"))
	}
	return ""
}

// longEnough applies the minimum-content filter shared by most sources.
// Trivial acknowledgements ("ok", "yes") are not worth indexing.
func longEnough(content string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(content)) >= 10
}

func strField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func mapField(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func listField(m map[string]any, key string) []any {
	v, _ := m[key].([]any)
	return v
}
