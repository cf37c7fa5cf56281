package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/n-WN/prompt-manager/internal/config"
)

var copyCmd = &cobra.Command{
	Use:   "copy <id>",
	Short: "Print a prompt and copy it to the clipboard",
	Args:  cobra.ExactArgs(1),
	RunE:  runCopy,
}

func init() {
	rootCmd.AddCommand(copyCmd)
}

func runCopy(_ *cobra.Command, args []string) error {
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

	fmt.Println(p.Content)

	if err := clipboard.WriteAll(p.Content); err != nil {
		// Headless session: the content was still printed above.
		log.Debug().Err(err).Msg("clipboard unavailable")
	}
	return s.IncrementUseCount(p.ID)
}
