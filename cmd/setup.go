package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/n-WN/prompt-manager/internal/config"
	"github.com/n-WN/prompt-manager/internal/model"
	"github.com/n-WN/prompt-manager/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, _ := config.Load()

	enabled := enabledSourceNames(cfg)
	dbPath := cfg.General.DBPath
	extraDBs := strings.Join(cfg.Sources.Cursor.ExtraDBs, ", ")
	themeName := theme.ByName(cfg.General.Theme).Name

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Sources to sync").
				Options(
					huh.NewOption("Claude Code", model.SourceClaudeCode),
					huh.NewOption("Cursor", model.SourceCursor),
					huh.NewOption("Aider", model.SourceAider),
					huh.NewOption("Codex", model.SourceCodex),
					huh.NewOption("Gemini CLI", model.SourceGeminiCLI),
					huh.NewOption("Amp", model.SourceAmp),
				).
				Value(&enabled),
			huh.NewInput().
				Title("Database path").
				Description("Empty uses "+filepath.Join(config.DataDir(), "prompts.db")).
				Value(&dbPath),
			huh.NewInput().
				Title("Extra Cursor databases").
				Description("Comma-separated state.vscdb paths, e.g. for remote profiles").
				Value(&extraDBs),
			huh.NewSelect[string]().
				Title("TUI theme").
				Options(themeOpts...).
				Value(&themeName),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("Aborted.")
			return nil
		}
		return err
	}

	set := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		set[name] = true
	}
	cfg.Sources.ClaudeCode.Enabled = set[model.SourceClaudeCode]
	cfg.Sources.Cursor.Enabled = set[model.SourceCursor]
	cfg.Sources.Aider.Enabled = set[model.SourceAider]
	cfg.Sources.Codex.Enabled = set[model.SourceCodex]
	cfg.Sources.GeminiCLI.Enabled = set[model.SourceGeminiCLI]
	cfg.Sources.Amp.Enabled = set[model.SourceAmp]

	cfg.General.DBPath = strings.TrimSpace(dbPath)
	cfg.General.Theme = themeName
	cfg.Sources.Cursor.ExtraDBs = nil
	for _, p := range strings.Split(extraDBs, ",") {
		if p = strings.TrimSpace(p); p != "" {
			cfg.Sources.Cursor.ExtraDBs = append(cfg.Sources.Cursor.ExtraDBs, p)
		}
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("Saved to %s\n", config.ConfigPath())
	fmt.Println("Run `prompt-manager setup` anytime to reconfigure.")
	return nil
}

func enabledSourceNames(cfg config.Config) []string {
	var names []string
	for _, src := range model.AllSources {
		if cfg.SourceEnabled(src) {
			names = append(names, src)
		}
	}
	return names
}
