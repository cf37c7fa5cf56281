package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/n-WN/prompt-manager/internal/config"
)

var tagCmd = &cobra.Command{
	Use:   "tag <id> [tags...]",
	Short: "Replace a prompt's tags",
	Long:  "Replaces the prompt's tag list with the given tags. With none, clears it.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTag,
}

func init() {
	rootCmd.AddCommand(tagCmd)
}

func runTag(_ *cobra.Command, args []string) error {
	cfg, _ := config.Load()
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	tags := args[1:]
	if err := s.SetTags(args[0], tags); err != nil {
		return err
	}
	if len(tags) > 0 {
		fmt.Printf("Tagged %s: %s\n", args[0], strings.Join(tags, ", "))
	} else {
		fmt.Printf("Cleared tags on %s\n", args[0])
	}
	return nil
}
