// Package cmd implements the prompt-manager CLI commands.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/n-WN/prompt-manager/internal/config"
	"github.com/n-WN/prompt-manager/internal/model"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Database: %s\n", cfg.DBPath())
	if cfg.General.Home != "" {
		fmt.Printf("    Home override: %s\n", cfg.General.Home)
	}
	if cfg.General.Theme != "" {
		fmt.Printf("    Theme: %s\n", cfg.General.Theme)
	}
	fmt.Println()

	fmt.Println("  [Sources]")
	for _, src := range model.AllSources {
		state := "enabled"
		if !cfg.SourceEnabled(src) {
			state = "disabled"
		}
		fmt.Printf("    %-12s %s\n", src, state)
	}
	if len(cfg.Sources.Cursor.ExtraDBs) > 0 {
		fmt.Printf("    Extra Cursor DBs: %s\n", strings.Join(cfg.Sources.Cursor.ExtraDBs, ", "))
	}
	fmt.Println()

	fmt.Println("  Run `prompt-manager setup` to reconfigure.")
	return nil
}
