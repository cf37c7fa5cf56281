package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/n-WN/prompt-manager/internal/tui/theme"
)

// Sparkline renders a unicode sparkline from values. Zero values render as
// gaps so quiet days stay readable in sparse activity data.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 4) // UTF-8 block chars are up to 3 bytes
	for _, v := range values {
		if v <= 0 {
			buf.WriteRune(' ')
			continue
		}
		idx := int(v / peak * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		buf.WriteRune(blocks[idx])
	}

	return style.Render(buf.String())
}
