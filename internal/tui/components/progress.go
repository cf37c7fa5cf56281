package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/n-WN/prompt-manager/internal/tui/theme"
)

// SyncBar renders a labeled file-progress bar for sync runs, sized to fit a
// status line.
func SyncBar(label string, done, total, width int) string {
	t := theme.Active

	pct := 0.0
	if total > 0 {
		pct = float64(done) / float64(total)
	}
	if pct > 1 {
		pct = 1
	}

	counts := fmt.Sprintf("%d/%d", done, total)

	barW := width - lipgloss.Width(label) - lipgloss.Width(counts) - 4
	if barW < 4 {
		barW = 4
	}

	bar := progress.New(
		progress.WithSolidFill(string(t.Accent)),
		progress.WithWidth(barW),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)

	return labelStyle.Render(label) + " " +
		bar.ViewAs(pct) + " " +
		countStyle.Render(counts)
}
