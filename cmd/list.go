package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/n-WN/prompt-manager/internal/cli"
	"github.com/n-WN/prompt-manager/internal/config"
	"github.com/n-WN/prompt-manager/internal/model"
	"github.com/n-WN/prompt-manager/internal/store"
)

var (
	flagListSource   string
	flagListLimit    int
	flagListBalanced bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent prompts",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&flagListSource, "source", "s", "", "Filter by source")
	listCmd.Flags().IntVarP(&flagListLimit, "limit", "n", 20, "Maximum results")
	listCmd.Flags().BoolVar(&flagListBalanced, "balanced", false, "Take the most recent prompts from every source")
	rootCmd.AddCommand(listCmd)
}

func runList(_ *cobra.Command, _ []string) error {
	cfg, _ := config.Load()
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	var sums []model.Summary
	if flagListBalanced {
		var sources []string
		if flagListSource != "" {
			sources = []string{flagListSource}
		}
		sums, err = s.BalancedSummaries(sources, flagListLimit)
	} else {
		sums, err = s.SearchSummaries(store.SearchQuery{Source: flagListSource, Limit: flagListLimit})
	}
	if err != nil {
		return err
	}

	printSummaries(sums)
	return nil
}

// printSummaries renders one line per prompt, shared by list and search.
func printSummaries(sums []model.Summary) {
	if len(sums) == 0 {
		fmt.Println("No prompts found. Run `prompt-manager sync` first.")
		return
	}

	idStyle := lipgloss.NewStyle().Foreground(cli.ColorTextDim)
	starStyle := lipgloss.NewStyle().Foreground(cli.ColorYellow)
	timeStyle := lipgloss.NewStyle().Foreground(cli.ColorTextMuted)

	for _, sm := range sums {
		star := " "
		if sm.Starred {
			star = starStyle.Render("★")
		}
		srcStyle := lipgloss.NewStyle().Foreground(cli.SourceColor(sm.Source))
		fmt.Printf("%s %s %s %s  %s\n",
			idStyle.Render(sm.ID),
			star,
			srcStyle.Render(fmt.Sprintf("%-11s", sm.Source)),
			timeStyle.Render(fmt.Sprintf("%-14s", cli.RelativeTime(sm.Timestamp, sm.HasTime))),
			cli.Truncate(sm.Content, 70),
		)
	}
}
