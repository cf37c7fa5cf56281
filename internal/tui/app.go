// Package tui provides the interactive Bubble Tea prompt browser.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/n-WN/prompt-manager/internal/cli"
	"github.com/n-WN/prompt-manager/internal/model"
	"github.com/n-WN/prompt-manager/internal/pipeline"
	"github.com/n-WN/prompt-manager/internal/store"
	"github.com/n-WN/prompt-manager/internal/tui/components"
	"github.com/n-WN/prompt-manager/internal/tui/theme"
)

// PromptsLoadedMsg is sent when a prompt listing query finishes.
type PromptsLoadedMsg struct {
	Summaries []model.Summary
	Err       error
}

// PreviewLoadedMsg carries the full prompt for the preview pane.
type PreviewLoadedMsg struct {
	ID     string
	Prompt model.Prompt
	Err    error
}

// StatsLoadedMsg carries the aggregates for the stats tab.
type StatsLoadedMsg struct {
	Stats model.Stats
	Daily []int
	Err   error
}

// SyncProgressMsg reports per-file progress from a running sync.
type SyncProgressMsg struct {
	Progress pipeline.Progress
}

// SyncDoneMsg is sent when a sync or rebuild run finishes.
type SyncDoneMsg struct {
	Result  *pipeline.Result
	Err     error
	Rebuild bool
}

// ActionMsg reports the outcome of a prompt action (copy, star, delete).
type ActionMsg struct {
	Status string
	Err    error
}

type statusExpiredMsg struct{ seq int }

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	engine *pipeline.Engine

	// Data
	prompts []model.Summary
	loaded  bool
	stats   model.Stats
	daily   []int

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Prompts tab state
	browse browseState

	// Sync state, fed by the engine's progress subscription
	syncing  bool
	syncProg pipeline.Progress
	syncSub  chan tea.Msg

	// Transient status line; seq guards delayed clears
	status    string
	statusErr bool
	statusSeq int

	spinner spinner.Model
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 180

	browseLimit     = 500
	snippetLen      = 160
	activityDays    = 30
	statusLingering = 4 * time.Second

	minContentHeight = 5 // minimum content area height
)

// NewApp creates the TUI model and hooks the engine's progress callback into
// the app's message channel.
func NewApp(st *store.Store, eng *pipeline.Engine) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	sub := make(chan tea.Msg, 16)
	if eng != nil {
		// Non-blocking send: a skipped update is caught by the next one.
		eng.Progress = func(p pipeline.Progress) {
			select {
			case sub <- SyncProgressMsg{Progress: p}:
			default:
			}
		}
	}

	return App{
		store:   st,
		engine:  eng,
		browse:  newBrowseState(),
		syncSub: sub,
		spinner: sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadPromptsCmd(a.store, a.browse.query()),
		loadStatsCmd(a.store),
		a.spinner.Tick,
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.sizePreview()
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp {
			return a, nil
		}

		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == 0 && !a.browse.searching {
				return a.moveCursor(-1)
			}
			return a, nil

		case tea.MouseButtonWheelDown:
			if a.activeTab == 0 && !a.browse.searching {
				return a.moveCursor(1)
			}
			return a, nil

		case tea.MouseButtonLeft:
			// Tab bar occupies the first two header lines
			if msg.Y <= 1 {
				if tab := a.tabAtX(msg.X); tab >= 0 && tab < len(components.Tabs) {
					a.activeTab = tab
				}
			}
			return a, nil
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKeys(msg)

	case PromptsLoadedMsg:
		a.loaded = true
		if msg.Err != nil {
			return a.setStatus(fmt.Sprintf("load failed: %v", msg.Err), true)
		}
		a.prompts = msg.Summaries
		a.browse.clampCursor(len(a.prompts))
		cmd := a.loadSelectedPreview()
		return a, cmd

	case PreviewLoadedMsg:
		// Discard results for rows the cursor already left
		if msg.ID != a.browse.previewFor {
			return a, nil
		}
		if msg.Err != nil {
			a.browse.setPreviewError(msg.Err)
			return a, nil
		}
		a.browse.setPreview(msg.Prompt)
		return a, nil

	case StatsLoadedMsg:
		if msg.Err == nil {
			a.stats = msg.Stats
			a.daily = msg.Daily
		}
		return a, nil

	case SyncProgressMsg:
		a.syncProg = msg.Progress
		return a, waitForSyncMsg(a.syncSub)

	case SyncDoneMsg:
		a.syncing = false
		a.syncProg = pipeline.Progress{}
		if msg.Err != nil {
			return a.setStatus(fmt.Sprintf("sync failed: %v", msg.Err), true)
		}
		verb := "synced"
		if msg.Rebuild {
			verb = "rebuilt"
		}
		a2, cmd := a.setStatus(fmt.Sprintf("%s %s prompts", verb,
			cli.FormatNumber(int64(msg.Result.Total))), false)
		return a2, tea.Batch(cmd,
			loadPromptsCmd(a.store, a.browse.query()),
			loadStatsCmd(a.store))

	case ActionMsg:
		if msg.Err != nil {
			return a.setStatus(fmt.Sprintf("%s: %v", msg.Status, msg.Err), true)
		}
		return a.setStatus(msg.Status, false)

	case statusExpiredMsg:
		if msg.seq == a.statusSeq {
			a.status = ""
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded || a.syncing {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global: quit
	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if !a.loaded {
		return a, nil
	}

	// Search mode intercepts all keys when active
	if a.activeTab == 0 && a.browse.searching {
		return a.updateSearch(msg)
	}

	// A pending delete is confirmed by the same key, cancelled by anything else
	if a.browse.pendingDelete != "" {
		pending := a.browse.pendingDelete
		a.browse.pendingDelete = ""
		if key == "d" {
			return a.deleteSelected(pending)
		}
		a.status = ""
	}

	// Help toggle
	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	// Prompts tab keybindings
	if a.activeTab == 0 {
		switch key {
		case "/":
			a.browse.startSearch()
			return a, a.browse.searchInput.Cursor.BlinkCmd()
		case "q":
			if a.browse.viewMode == browseViewDetail {
				a.browse.viewMode = browseViewSplit
				a.sizePreview()
				return a, nil
			}
			return a, tea.Quit
		case "enter", "f":
			if a.browse.viewMode == browseViewSplit && len(a.prompts) > 0 {
				a.browse.viewMode = browseViewDetail
				a.sizePreview()
			}
			return a, nil
		case "esc":
			if a.browse.searchQuery != "" {
				a.browse.searchQuery = ""
				a.browse.cursor = 0
				a.browse.offset = 0
				return a, loadPromptsCmd(a.store, a.browse.query())
			}
			if a.browse.viewMode == browseViewDetail {
				a.browse.viewMode = browseViewSplit
				a.sizePreview()
			}
			return a, nil
		case "j", "down":
			return a.moveCursor(1)
		case "k", "up":
			return a.moveCursor(-1)
		case "g":
			a.browse.cursor = 0
			a.browse.offset = 0
			cmd := a.loadSelectedPreview()
			return a, cmd
		case "G":
			a.browse.cursor = len(a.prompts) - 1
			if a.browse.cursor < 0 {
				a.browse.cursor = 0
			}
			cmd := a.loadSelectedPreview()
			return a, cmd
		case "J":
			a.browse.preview.LineDown(1)
			return a, nil
		case "K":
			a.browse.preview.LineUp(1)
			return a, nil
		case "ctrl+d":
			a.browse.preview.HalfViewDown()
			return a, nil
		case "ctrl+u":
			a.browse.preview.HalfViewUp()
			return a, nil
		case "tab":
			a.browse.cycleSource(1)
			a.browse.cursor = 0
			a.browse.offset = 0
			return a, loadPromptsCmd(a.store, a.browse.query())
		case "shift+tab":
			a.browse.cycleSource(-1)
			a.browse.cursor = 0
			a.browse.offset = 0
			return a, loadPromptsCmd(a.store, a.browse.query())
		case "c":
			return a.copySelected()
		case "s":
			return a.starSelected()
		case "d":
			if sum, ok := a.selected(); ok {
				a.browse.pendingDelete = sum.ID
				a.status = fmt.Sprintf("delete %s? press d again", shortID(sum.ID))
				a.statusErr = false
				a.statusSeq++
			}
			return a, nil
		}
	}

	// Global actions
	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		return a, tea.Batch(
			loadPromptsCmd(a.store, a.browse.query()),
			loadStatsCmd(a.store))
	case "S":
		return a.startSync(false)
	case "R":
		return a.startSync(true)
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	// Direct tab keys
	if len(key) == 1 {
		if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
			a.activeTab = idx
			return a, nil
		}
	}

	return a, nil
}

// updateSearch handles key events while the search input is focused.
func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.browse.searchQuery = strings.TrimSpace(a.browse.searchInput.Value())
		a.browse.searching = false
		a.browse.cursor = 0
		a.browse.offset = 0
		return a, loadPromptsCmd(a.store, a.browse.query())

	case "esc":
		a.browse.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.browse.searchInput, cmd = a.browse.searchInput.Update(msg)
	return a, cmd
}

func (a App) moveCursor(delta int) (tea.Model, tea.Cmd) {
	next := a.browse.cursor + delta
	if next < 0 || next >= len(a.prompts) {
		return a, nil
	}
	a.browse.cursor = next
	cmd := a.loadSelectedPreview()
	return a, cmd
}

func (a App) selected() (model.Summary, bool) {
	if a.browse.cursor < 0 || a.browse.cursor >= len(a.prompts) {
		return model.Summary{}, false
	}
	return a.prompts[a.browse.cursor], true
}

// loadSelectedPreview fetches the full prompt under the cursor unless the
// preview already shows it.
func (a *App) loadSelectedPreview() tea.Cmd {
	sum, ok := a.selected()
	if !ok {
		a.browse.previewFor = ""
		return nil
	}
	if a.browse.previewFor == sum.ID {
		return nil
	}
	a.browse.previewFor = sum.ID
	a.browse.previewLoading = true
	return loadPreviewCmd(a.store, sum.ID)
}

func (a App) copySelected() (tea.Model, tea.Cmd) {
	sum, ok := a.selected()
	if !ok {
		return a, nil
	}
	st := a.store
	id := sum.ID
	return a, func() tea.Msg {
		p, err := st.GetPrompt(id)
		if err != nil {
			return ActionMsg{Status: "copy failed", Err: err}
		}
		if err := clipboard.WriteAll(p.Content); err != nil {
			return ActionMsg{Status: "clipboard unavailable", Err: err}
		}
		if err := st.IncrementUseCount(id); err != nil {
			return ActionMsg{Status: "copy failed", Err: err}
		}
		return ActionMsg{Status: fmt.Sprintf("copied %s", shortID(id))}
	}
}

func (a App) starSelected() (tea.Model, tea.Cmd) {
	sum, ok := a.selected()
	if !ok {
		return a, nil
	}
	starred, err := a.store.ToggleStar(sum.ID)
	if err != nil {
		return a.setStatus(fmt.Sprintf("star failed: %v", err), true)
	}
	a.prompts[a.browse.cursor].Starred = starred
	a.browse.applyStar(sum.ID, starred)
	if starred {
		return a.setStatus(fmt.Sprintf("starred %s", shortID(sum.ID)), false)
	}
	return a.setStatus(fmt.Sprintf("unstarred %s", shortID(sum.ID)), false)
}

func (a App) deleteSelected(id string) (tea.Model, tea.Cmd) {
	if err := a.store.DeletePrompt(id); err != nil {
		return a.setStatus(fmt.Sprintf("delete failed: %v", err), true)
	}
	a2, cmd := a.setStatus(fmt.Sprintf("deleted %s", shortID(id)), false)
	return a2, tea.Batch(cmd,
		loadPromptsCmd(a2.store, a2.browse.query()),
		loadStatsCmd(a2.store))
}

func (a App) startSync(rebuild bool) (tea.Model, tea.Cmd) {
	if a.syncing || a.engine == nil {
		return a, nil
	}
	a.syncing = true
	a.syncProg = pipeline.Progress{Phase: pipeline.PhaseStarting}
	return a, tea.Batch(
		startSyncCmd(a.engine, a.syncSub, rebuild),
		a.spinner.Tick,
	)
}

func (a App) setStatus(s string, isErr bool) (App, tea.Cmd) {
	a.status = s
	a.statusErr = isErr
	a.statusSeq++
	seq := a.statusSeq
	return a, tea.Tick(statusLingering, func(time.Time) tea.Msg {
		return statusExpiredMsg{seq: seq}
	})
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  prompt-manager needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active
	w := a.width
	h := a.height

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Bold(true)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ prompt-manager"))
	b.WriteString(subtitleStyle.Render(" · Prompt Library"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Loading prompts..."))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active
	h := a.height
	w := a.width

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Bold(true)

	sectionStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Cyan).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Navigation"))
	b.WriteString("\n")
	navBindings := []struct{ key, desc string }{
		{"1 2", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"j k", "Move selection"},
		{"g G", "First / Last prompt"},
		{"J K", "Scroll preview"},
		{"^d ^u", "Half-page scroll"},
		{"Tab", "Cycle source filter"},
	}
	for _, bind := range navBindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
			descStyle.Render(bind.desc))
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Actions"))
	b.WriteString("\n")
	actionBindings := []struct{ key, desc string }{
		{"/", "Search prompts"},
		{"Enter", "Expand preview"},
		{"Esc", "Back / Clear search"},
		{"c", "Copy to clipboard"},
		{"s", "Star / Unstar"},
		{"d d", "Delete prompt"},
		{"S", "Sync new prompts"},
		{"R", "Rebuild database"},
		{"r", "Reload"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
	for _, bind := range actionBindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
			descStyle.Render(bind.desc))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w) + "\n" + a.renderFilterLine(w)
	statusBar := a.renderStatusBar(w)

	headerH := lipgloss.Height(header)
	statusH := lipgloss.Height(statusBar)
	contentH := h - headerH - statusH
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case 0:
		content = a.renderBrowseContent(cw, contentH)
	case 1:
		content = a.renderStatsContent(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

// renderFilterLine shows the active source filter, search query, and count.
func (a App) renderFilterLine(w int) string {
	t := theme.Active

	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)

	src := a.browse.sourceFilter()
	label := "all sources"
	if src != "" {
		label = src
	}

	line := " " + accentStyle.Render(label)
	if a.browse.searchQuery != "" {
		line += dimStyle.Render(" │ ") + accentStyle.Render("/"+a.browse.searchQuery)
	}
	line += dimStyle.Render(fmt.Sprintf(" │ %s prompts", cli.FormatNumber(int64(len(a.prompts)))))

	return lipgloss.NewStyle().Width(w).Render(line)
}

func (a App) renderStatusBar(w int) string {
	t := theme.Active

	left := " [?]help  [S]ync  [q]uit"
	if a.activeTab == 0 {
		left = " [?]help  [/]search  [c]opy  [s]tar  [S]ync  [q]uit"
	}

	var right string
	switch {
	case a.syncing:
		right = a.renderSyncStatus() + " "
	case a.status != "":
		style := lipgloss.NewStyle().Foreground(t.Green)
		if a.statusErr {
			style = lipgloss.NewStyle().Foreground(t.Red)
		}
		right = style.Render(a.status) + " "
	default:
		right = fmt.Sprintf("%s stored ", cli.FormatNumber(int64(a.stats.Total)))
	}

	return components.RenderStatusBar(w, left, right)
}

// renderSyncStatus compresses the current sync progress into one status cell.
func (a App) renderSyncStatus() string {
	p := a.syncProg
	switch p.Phase {
	case pipeline.PhaseSyncing:
		label := a.spinner.View() + p.Source
		if p.NewPromptsTotal > 0 {
			label += fmt.Sprintf(" +%d", p.NewPromptsTotal)
		}
		return components.SyncBar(label, p.FilesChecked, p.FilesTotal, 40)
	case pipeline.PhaseDiscovering:
		return a.spinner.View() + "scanning " + p.Source
	case "":
		return a.spinner.View() + "syncing"
	default:
		return a.spinner.View() + p.Phase
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	padding := strings.Repeat("\n", h-len(lines))
	return s + padding
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 1 // leading space
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)

		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Two-column separator between tabs
		if i < len(components.Tabs)-1 {
			pos += 2
		}
	}
	return -1
}

// ─── Commands ───────────────────────────────────────────────────

func loadPromptsCmd(st *store.Store, q store.SearchQuery) tea.Cmd {
	return func() tea.Msg {
		sums, err := st.SearchSummaries(q)
		return PromptsLoadedMsg{Summaries: sums, Err: err}
	}
}

func loadPreviewCmd(st *store.Store, id string) tea.Cmd {
	return func() tea.Msg {
		p, err := st.GetPrompt(id)
		return PreviewLoadedMsg{ID: id, Prompt: p, Err: err}
	}
}

func loadStatsCmd(st *store.Store) tea.Cmd {
	return func() tea.Msg {
		stats, err := st.Stats()
		if err != nil {
			return StatsLoadedMsg{Err: err}
		}
		daily, err := st.DailyCounts(activityDays)
		return StatsLoadedMsg{Stats: stats, Daily: daily, Err: err}
	}
}

// startSyncCmd launches the sync in a goroutine and subscribes to its first
// message. Progress updates stream through sub; the final SyncDoneMsg is sent
// after the engine returns.
func startSyncCmd(eng *pipeline.Engine, sub chan tea.Msg, rebuild bool) tea.Cmd {
	return func() tea.Msg {
		go func() {
			var (
				res *pipeline.Result
				err error
			)
			if rebuild {
				res, err = eng.Rebuild(context.Background())
			} else {
				res, err = eng.SyncAll(context.Background(), false)
			}
			sub <- SyncDoneMsg{Result: res, Err: err, Rebuild: rebuild}
		}()
		return <-sub
	}
}

// waitForSyncMsg blocks until the next message arrives from the sync goroutine.
func waitForSyncMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}
