package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/n-WN/prompt-manager/internal/cli"
	"github.com/n-WN/prompt-manager/internal/config"
	"github.com/n-WN/prompt-manager/internal/model"
)

var flagShowJSON bool

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a prompt in full, including its turn timeline",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&flagShowJSON, "json", false, "Emit JSON")
	rootCmd.AddCommand(showCmd)
}

// promptShown is the JSON projection of a stored prompt. The turn timeline
// embeds as a raw array rather than a double-encoded string.
type promptShown struct {
	ID          string          `json:"id"`
	Source      string          `json:"source"`
	Content     string          `json:"content"`
	Response    string          `json:"response,omitempty"`
	ProjectPath string          `json:"project_path,omitempty"`
	SessionID   string          `json:"session_id,omitempty"`
	Timestamp   string          `json:"timestamp,omitempty"`
	Tags        []string        `json:"tags"`
	Starred     bool            `json:"starred"`
	UseCount    int             `json:"use_count"`
	Turn        json.RawMessage `json:"turn,omitempty"`
}

func runShow(_ *cobra.Command, args []string) error {
	cfg, _ := config.Load()
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := s.GetPrompt(args[0])
	if err != nil {
		return err
	}

	if flagShowJSON {
		return printPromptJSON(p)
	}
	printPromptText(p)
	return nil
}

func printPromptJSON(p model.Prompt) error {
	out := promptShown{
		ID:          p.ID,
		Source:      p.Source,
		Content:     p.Content,
		Response:    p.Response,
		ProjectPath: p.ProjectPath,
		SessionID:   p.SessionID,
		Tags:        p.Tags,
		Starred:     p.Starred,
		UseCount:    p.UseCount,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if p.HasTime {
		out.Timestamp = p.Timestamp.Format("2006-01-02T15:04:05.999999999Z07:00")
	}
	if p.TurnJSON != "" {
		out.Turn = json.RawMessage(p.TurnJSON)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding prompt: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func printPromptText(p model.Prompt) {
	label := lipgloss.NewStyle().Foreground(cli.ColorTextMuted)
	srcStyle := lipgloss.NewStyle().Foreground(cli.SourceColor(p.Source))

	fmt.Printf("%s %s\n", label.Render("id:"), p.ID)
	fmt.Printf("%s %s\n", label.Render("source:"), srcStyle.Render(p.Source))
	if p.ProjectPath != "" {
		fmt.Printf("%s %s\n", label.Render("project:"), p.ProjectPath)
	}
	if p.SessionID != "" {
		fmt.Printf("%s %s\n", label.Render("session:"), p.SessionID)
	}
	fmt.Printf("%s %s\n", label.Render("when:"), cli.FormatTime(p.Timestamp, p.HasTime))
	if p.Starred {
		fmt.Printf("%s yes\n", label.Render("starred:"))
	}
	if len(p.Tags) > 0 {
		fmt.Printf("%s %s\n", label.Render("tags:"), strings.Join(p.Tags, ", "))
	}
	if p.UseCount > 0 {
		fmt.Printf("%s %d\n", label.Render("uses:"), p.UseCount)
	}

	fmt.Println()
	fmt.Println(p.Content)

	if p.Response != "" {
		fmt.Println()
		fmt.Println(label.Render("── response ─────────────────────────────"))
		fmt.Println(p.Response)
	}

	if p.TurnJSON != "" {
		var events []json.RawMessage
		if err := json.Unmarshal([]byte(p.TurnJSON), &events); err == nil && len(events) > 0 {
			fmt.Println()
			fmt.Println(label.Render(fmt.Sprintf("turn timeline: %d events (show --json for the raw array)", len(events))))
		}
	}
}
