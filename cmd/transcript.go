package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/n-WN/prompt-manager/internal/config"
	"github.com/n-WN/prompt-manager/internal/source"
)

const transcriptWidth = 100

var transcriptCmd = &cobra.Command{
	Use:   "transcript <id|file>",
	Short: "Render a codex conversation transcript",
	Long: "Renders the turn timeline of a stored prompt, or a whole codex rollout\n" +
		"file when given a path.",
	Args: cobra.ExactArgs(1),
	RunE: runTranscript,
}

func init() {
	rootCmd.AddCommand(transcriptCmd)
}

func runTranscript(_ *cobra.Command, args []string) error {
	arg := args[0]

	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		out, err := source.FormatRolloutTranscript(arg, transcriptWidth)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	}

	cfg, _ := config.Load()
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := s.GetPrompt(arg)
	if err != nil {
		return err
	}
	out, ok := source.FormatTurnTimeline(p.TurnJSON, transcriptWidth)
	if !ok {
		return fmt.Errorf("prompt %s has no renderable turn timeline", arg)
	}
	fmt.Print(out)
	return nil
}
