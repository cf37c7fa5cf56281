package cmd

import (
	"github.com/spf13/cobra"

	"github.com/n-WN/prompt-manager/internal/config"
	"github.com/n-WN/prompt-manager/internal/store"
)

var (
	flagSearchSource  string
	flagSearchStarred bool
	flagSearchLimit   int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search prompt text",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&flagSearchSource, "source", "s", "", "Filter by source")
	searchCmd.Flags().BoolVar(&flagSearchStarred, "starred", false, "Only starred prompts")
	searchCmd.Flags().IntVarP(&flagSearchLimit, "limit", "n", 20, "Maximum results")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(_ *cobra.Command, args []string) error {
	cfg, _ := config.Load()
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	sums, err := s.SearchSummaries(store.SearchQuery{
		Query:       args[0],
		Source:      flagSearchSource,
		StarredOnly: flagSearchStarred,
		Limit:       flagSearchLimit,
	})
	if err != nil {
		return err
	}

	printSummaries(sums)
	return nil
}
