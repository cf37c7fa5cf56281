package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/n-WN/prompt-manager/internal/cli"
	"github.com/n-WN/prompt-manager/internal/model"
	"github.com/n-WN/prompt-manager/internal/tui/components"
	"github.com/n-WN/prompt-manager/internal/tui/theme"
)

func (a App) renderStatsContent(cw int) string {
	t := theme.Active

	sourcesWithPrompts := 0
	for _, n := range a.stats.BySource {
		if n > 0 {
			sourcesWithPrompts++
		}
	}

	cards := []struct{ Label, Value, Detail string }{
		{"Prompts", cli.FormatNumber(int64(a.stats.Total)), ""},
		{"Starred", cli.FormatNumber(int64(a.stats.Starred)), ""},
		{"Uses", cli.FormatNumber(int64(a.stats.TotalUses)), "via copy"},
		{"Sources", fmt.Sprintf("%d/%d", sourcesWithPrompts, len(model.AllSources)), ""},
	}
	metricRow := components.MetricCardRow(cards, cw)

	leftW := cw / 2
	rightW := cw - leftW

	bySource := components.ContentCard("By Source",
		a.renderSourceChart(components.CardInnerWidth(leftW)), leftW)
	activity := components.ContentCard("Activity",
		a.renderActivity(components.CardInnerWidth(rightW)), rightW)

	hint := lipgloss.NewStyle().Foreground(t.TextDim).
		Render(" [S] sync  [R] rebuild  [r] reload")

	return metricRow + "\n" +
		components.CardRow([]string{bySource, activity}) + "\n" +
		hint
}

// renderSourceChart draws one horizontal bar per source, scaled against the
// busiest one, with count and share columns.
func (a App) renderSourceChart(w int) string {
	t := theme.Active

	total := 0
	maxN := 0
	for _, src := range model.AllSources {
		n := a.stats.BySource[src]
		total += n
		if n > maxN {
			maxN = n
		}
	}
	if total == 0 {
		return lipgloss.NewStyle().Foreground(t.TextMuted).Render("No prompts stored")
	}

	countW := len(cli.FormatNumber(int64(maxN)))
	if countW < 3 {
		countW = 3
	}
	barW := w - 7 - countW - 6 - 3 // label, count, share, separators
	if barW < 5 {
		barW = 5
	}

	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	shareStyle := lipgloss.NewStyle().Foreground(t.Cyan)

	var b strings.Builder
	for _, src := range model.AllSources {
		n := a.stats.BySource[src]
		srcStyle := lipgloss.NewStyle().Foreground(t.Source(src))

		bar := cli.RenderHorizontalBar(float64(n), float64(maxN), barW)
		share := 100 * float64(n) / float64(total)

		b.WriteString(srcStyle.Render(fmt.Sprintf("%-7s", shortSource(src))))
		b.WriteString(srcStyle.Render(" " + bar))
		b.WriteString(countStyle.Render(fmt.Sprintf(" %*s", countW, cli.FormatNumber(int64(n)))))
		b.WriteString(shareStyle.Render(fmt.Sprintf(" %5.1f%%", share)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderActivity draws the dated-prompt sparkline for the trailing window.
func (a App) renderActivity(w int) string {
	t := theme.Active

	peak := 0
	for _, n := range a.daily {
		if n > peak {
			peak = n
		}
	}
	if peak == 0 {
		return lipgloss.NewStyle().Foreground(t.TextMuted).Render("No dated prompts in the last 30 days")
	}

	values := make([]float64, len(a.daily))
	for i, n := range a.daily {
		values[i] = float64(n)
	}
	// Keep the most recent days when the pane is narrower than the window
	if len(values) > w {
		values = values[len(values)-w:]
	}

	var b strings.Builder
	b.WriteString(components.Sparkline(values, t.Accent))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).
		Render(fmt.Sprintf("prompts per day · last %d days · peak %d", len(values), peak)))
	return b.String()
}
