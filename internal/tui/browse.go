package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"

	"github.com/n-WN/prompt-manager/internal/cli"
	"github.com/n-WN/prompt-manager/internal/model"
	"github.com/n-WN/prompt-manager/internal/store"
	"github.com/n-WN/prompt-manager/internal/tui/components"
	"github.com/n-WN/prompt-manager/internal/tui/theme"
)

// Browse view modes. Split is the zero value.
const (
	browseViewSplit  = iota // List + preview side by side (default)
	browseViewDetail        // Full-screen preview
)

// browseState holds the prompts tab state.
type browseState struct {
	cursor   int
	offset   int // scroll offset for the list
	viewMode int

	sourceIdx int // 0 = all sources, else AllSources[sourceIdx-1]

	searching   bool
	searchInput textinput.Model
	searchQuery string

	pendingDelete string // prompt id awaiting a second d press

	// Preview pane
	previewFor     string // id the pane shows or is loading
	previewLoading bool
	previewErr     error
	previewPrompt  model.Prompt
	previewSet     bool
	preview        viewport.Model
}

func newBrowseState() browseState {
	return browseState{preview: viewport.New(0, 0)}
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "search content"
	ti.Prompt = "/ "
	ti.CharLimit = 200
	return ti
}

func (b browseState) query() store.SearchQuery {
	return store.SearchQuery{
		Query:      b.searchQuery,
		Source:     b.sourceFilter(),
		Limit:      browseLimit,
		SnippetLen: snippetLen,
	}
}

func (b browseState) sourceFilter() string {
	if b.sourceIdx <= 0 || b.sourceIdx > len(model.AllSources) {
		return ""
	}
	return model.AllSources[b.sourceIdx-1]
}

func (b *browseState) cycleSource(delta int) {
	n := len(model.AllSources) + 1
	b.sourceIdx = (b.sourceIdx + delta + n) % n
}

func (b *browseState) startSearch() {
	b.searching = true
	b.searchInput = newSearchInput()
	b.searchInput.SetValue(b.searchQuery)
	b.searchInput.Focus()
}

func (b *browseState) clampCursor(n int) {
	if b.cursor >= n {
		b.cursor = n - 1
	}
	if b.cursor < 0 {
		b.cursor = 0
	}
}

func (b *browseState) setPreview(p model.Prompt) {
	b.previewLoading = false
	b.previewErr = nil
	b.previewPrompt = p
	b.previewSet = true
	b.preview.SetContent(renderPreviewBody(p, b.preview.Width))
	b.preview.GotoTop()
}

func (b *browseState) setPreviewError(err error) {
	b.previewLoading = false
	b.previewErr = err
	b.previewSet = false
}

// refreshPreview re-renders the pane content, picking up metadata changes and
// width changes.
func (b *browseState) refreshPreview() {
	if !b.previewSet {
		return
	}
	b.preview.SetContent(renderPreviewBody(b.previewPrompt, b.preview.Width))
}

func (b *browseState) applyStar(id string, starred bool) {
	if b.previewSet && b.previewPrompt.ID == id {
		b.previewPrompt.Starred = starred
		b.refreshPreview()
	}
}

// sizePreview fits the preview viewport to the current layout. Must run on
// every resize and view mode change.
func (a *App) sizePreview() {
	cw := a.contentWidth()

	// Header is the tab bar plus the filter line; status bar is one row.
	contentH := a.height - 3
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var paneW int
	if a.browse.viewMode == browseViewDetail {
		paneW = cw
	} else {
		paneW = cw - listPaneWidth(cw)
	}

	a.browse.preview.Width = components.CardInnerWidth(paneW)
	a.browse.preview.Height = contentH - 3 // card border (2) + title (1)
	if a.browse.preview.Height < 3 {
		a.browse.preview.Height = 3
	}
	a.browse.refreshPreview()
}

func listPaneWidth(cw int) int {
	w := cw * 2 / 5
	if w < 36 {
		w = 36
	}
	return w
}

func (a App) renderBrowseContent(cw, h int) string {
	t := theme.Active

	if len(a.prompts) == 0 {
		body := lipgloss.NewStyle().Foreground(t.TextMuted).Render(a.emptyListText())
		if a.browse.searching {
			body = a.browse.searchInput.View() + "\n\n" + body
		}
		return components.ContentCard("Prompts", body, cw)
	}

	if a.browse.viewMode == browseViewDetail {
		return a.renderPromptDetail(cw)
	}
	return a.renderBrowseSplit(cw, h)
}

func (a App) emptyListText() string {
	if a.browse.searchQuery != "" || a.browse.sourceFilter() != "" {
		return "No prompts match."
	}
	return "No prompts yet.\n\nPress S to sync your assistant logs,\nor run `prompt-manager setup` to choose sources."
}

func (a App) renderBrowseSplit(cw, h int) string {
	b := a.browse

	leftW := listPaneWidth(cw)
	rightW := cw - leftW

	leftCard := a.renderPromptList(leftW, h)

	sel := a.prompts[b.cursor]
	rightCard := components.ContentCard(
		fmt.Sprintf("Prompt %s", shortID(sel.ID)),
		a.renderPreviewPane(),
		rightW,
	)

	return components.CardRow([]string{leftCard, rightCard})
}

func (a App) renderPromptDetail(cw int) string {
	sel := a.prompts[a.browse.cursor]
	title := fmt.Sprintf("Prompt %s · %s", shortID(sel.ID), sel.Source)
	return components.ContentCard(title, a.renderPreviewPane(), cw)
}

func (a App) renderPromptList(leftW, h int) string {
	t := theme.Active
	b := a.browse
	inner := components.CardInnerWidth(leftW)

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	starStyle := lipgloss.NewStyle().Foreground(t.Yellow)

	var body strings.Builder
	if b.searching {
		body.WriteString(b.searchInput.View())
		body.WriteString("\n")
	}

	visible := h - 5 // card border (2) + title row (1) + search/slack (2)
	if visible < 5 {
		visible = 5
	}

	offset := b.offset
	if b.cursor < offset {
		offset = b.cursor
	}
	if b.cursor >= offset+visible {
		offset = b.cursor - visible + 1
	}

	end := offset + visible
	if end > len(a.prompts) {
		end = len(a.prompts)
	}

	snippetW := inner - 10 // star (2) + source (7) + space
	if snippetW < 10 {
		snippetW = 10
	}

	for i := offset; i < end; i++ {
		sum := a.prompts[i]

		star := "  "
		if sum.Starred {
			star = "★ "
		}
		snippet := cli.Truncate(sum.Content, snippetW)

		if i == b.cursor {
			line := fmt.Sprintf("%s%-7s %s", star, shortSource(sum.Source), snippet)
			body.WriteString(selectedStyle.Render(fmt.Sprintf("%-*s", inner, line)))
		} else {
			srcStyle := lipgloss.NewStyle().Foreground(t.Source(sum.Source))
			body.WriteString(starStyle.Render(star))
			body.WriteString(srcStyle.Render(fmt.Sprintf("%-7s", shortSource(sum.Source))))
			body.WriteString(rowStyle.Render(" " + snippet))
		}
		body.WriteString("\n")
	}

	title := "Prompts"
	if len(a.prompts) > 0 {
		title = fmt.Sprintf("Prompts %d/%d", b.cursor+1, len(a.prompts))
	}
	return components.ContentCard(title, body.String(), leftW)
}

func (a App) renderPreviewPane() string {
	t := theme.Active
	b := a.browse

	switch {
	case b.previewLoading:
		return a.spinner.View() + lipgloss.NewStyle().Foreground(t.TextMuted).Render(" loading...")
	case b.previewErr != nil:
		return lipgloss.NewStyle().Foreground(t.Red).Render(fmt.Sprintf("load failed: %v", b.previewErr))
	case !b.previewSet:
		return lipgloss.NewStyle().Foreground(t.TextMuted).Render("No prompt selected")
	}
	return b.preview.View()
}

// renderPreviewBody produces the scrollable preview: metadata header, the
// prompt content, and the response when one was captured.
func renderPreviewBody(p model.Prompt, w int) string {
	t := theme.Active
	if w < 10 {
		w = 10
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	srcStyle := lipgloss.NewStyle().Foreground(t.Source(p.Source)).Bold(true)
	starStyle := lipgloss.NewStyle().Foreground(t.Yellow)
	wrapStyle := lipgloss.NewStyle().Width(w)

	var body strings.Builder

	head := srcStyle.Render(p.Source)
	if p.Starred {
		head += starStyle.Render(" ★")
	}
	head += dimStyle.Render("  " + cli.RelativeTime(p.Timestamp, p.HasTime))
	body.WriteString(head)
	body.WriteString("\n")

	if p.ProjectPath != "" {
		body.WriteString(labelStyle.Render("project  "))
		body.WriteString(valueStyle.Render(p.ProjectPath))
		body.WriteString("\n")
	}
	if p.SessionID != "" {
		body.WriteString(labelStyle.Render("session  "))
		body.WriteString(valueStyle.Render(p.SessionID))
		body.WriteString("\n")
	}
	if p.HasTime {
		body.WriteString(labelStyle.Render("time     "))
		body.WriteString(valueStyle.Render(cli.FormatTime(p.Timestamp, p.HasTime)))
		body.WriteString("\n")
	}
	if len(p.Tags) > 0 {
		body.WriteString(labelStyle.Render("tags     "))
		body.WriteString(valueStyle.Render(strings.Join(p.Tags, ", ")))
		body.WriteString("\n")
	}
	if p.UseCount > 0 {
		body.WriteString(labelStyle.Render("uses     "))
		body.WriteString(valueStyle.Render(cli.FormatNumber(int64(p.UseCount))))
		body.WriteString("\n")
	}

	body.WriteString(dimStyle.Render(strings.Repeat("─", w)))
	body.WriteString("\n")
	body.WriteString(wrapStyle.Render(p.Content))
	body.WriteString("\n")

	if p.Response != "" {
		body.WriteString("\n")
		body.WriteString(dimStyle.Render("── response " + strings.Repeat("─", max(0, w-12))))
		body.WriteString("\n")
		body.WriteString(wrapStyle.Foreground(t.TextMuted).Render(p.Response))
		body.WriteString("\n")
	}

	if n := timelineEvents(p.TurnJSON); n > 0 {
		body.WriteString("\n")
		body.WriteString(dimStyle.Render(fmt.Sprintf("%d timeline events", n)))
		body.WriteString("\n")
	}

	return body.String()
}

// timelineEvents counts the events in a stored turn timeline, 0 when absent
// or unparseable.
func timelineEvents(turnJSON string) int {
	if turnJSON == "" {
		return 0
	}
	var events []json.RawMessage
	if err := json.Unmarshal([]byte(turnJSON), &events); err != nil {
		return 0
	}
	return len(events)
}

func shortSource(name string) string {
	switch name {
	case model.SourceClaudeCode:
		return "claude"
	case model.SourceGeminiCLI:
		return "gemini"
	default:
		return name
	}
}
