// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatDuration formats seconds into a human-readable duration.
// e.g., 3725 -> "1h 2m", 125 -> "2m", 45 -> "45s"
func FormatDuration(secs int64) string {
	if secs <= 0 {
		return "0s"
	}

	hours := secs / 3600
	mins := (secs % 3600) / 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	if mins > 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", secs)
}

// RelativeTime renders a timestamp as "3 hours ago". Prompts parsed from
// logs without timestamps render as a dash.
func RelativeTime(t time.Time, has bool) string {
	if !has || t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// FormatTime renders an absolute timestamp in the local timezone.
func FormatTime(t time.Time, has bool) string {
	if !has || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// FormatBytes renders a byte count in human units, e.g. 2352435 -> "2.4 MB".
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// Truncate collapses runs of whitespace and cuts s to max runes, ending in
// an ellipsis when anything was dropped.
func Truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
