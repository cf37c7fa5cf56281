package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/n-WN/prompt-manager/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar: key hints on the left and
// state (counts, sync activity) on the right.
func RenderStatusBar(width int, left, right string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Width(width)

	// Pad middle
	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	bar := left
	for i := 0; i < padding; i++ {
		bar += " "
	}
	bar += right

	return style.Render(bar)
}
