package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/n-WN/prompt-manager/internal/config"
	"github.com/n-WN/prompt-manager/internal/model"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report pending log files without syncing",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, _ []string) error {
	cfg, _ := config.Load()
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	pending, err := newEngine(s, cfg, nil).CheckUpdates()
	if err != nil {
		return err
	}

	total := 0
	for _, src := range model.AllSources {
		n, ok := pending[src]
		if !ok {
			continue // source disabled
		}
		total += n
		state := "up to date"
		if n > 0 {
			state = fmt.Sprintf("%d files pending", n)
		}
		fmt.Printf("  %-12s %s\n", src, state)
	}
	if total > 0 {
		fmt.Printf("\nRun `prompt-manager sync` to pick up %d files.\n", total)
	}
	return nil
}
