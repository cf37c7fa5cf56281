package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/n-WN/prompt-manager/internal/config"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a prompt from the database",
	Long: "Deletes the stored prompt. It comes back on the next sync if its source\n" +
		"log is still on disk and gets reprocessed.",
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(_ *cobra.Command, args []string) error {
	cfg, _ := config.Load()
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.DeletePrompt(args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}
