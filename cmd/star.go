package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/n-WN/prompt-manager/internal/config"
)

var starCmd = &cobra.Command{
	Use:   "star <id>",
	Short: "Toggle a prompt's star",
	Args:  cobra.ExactArgs(1),
	RunE:  runStar,
}

func init() {
	rootCmd.AddCommand(starCmd)
}

func runStar(_ *cobra.Command, args []string) error {
	cfg, _ := config.Load()
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	starred, err := s.ToggleStar(args[0])
	if err != nil {
		return err
	}
	if starred {
		fmt.Printf("Starred %s\n", args[0])
	} else {
		fmt.Printf("Unstarred %s\n", args[0])
	}
	return nil
}
