package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/n-WN/prompt-manager/internal/cli"
	"github.com/n-WN/prompt-manager/internal/config"
	"github.com/n-WN/prompt-manager/internal/model"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, _ []string) error {
	cfg, _ := config.Load()
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	st, err := s.Stats()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("PROMPT DATABASE"))
	fmt.Println()

	maxN := 0
	for _, n := range st.BySource {
		if n > maxN {
			maxN = n
		}
	}
	for _, src := range model.AllSources {
		n := st.BySource[src]
		srcStyle := lipgloss.NewStyle().Foreground(cli.SourceColor(src))
		bar := cli.RenderHorizontalBar(float64(n), float64(maxN), 28)
		fmt.Printf("  %s %s %s\n",
			srcStyle.Render(fmt.Sprintf("%-11s", src)),
			srcStyle.Render(bar),
			cli.FormatNumber(int64(n)))
	}
	fmt.Println()

	rows := [][]string{
		{"Total prompts", cli.FormatNumber(int64(st.Total))},
		{"Starred", cli.FormatNumber(int64(st.Starred))},
		{"Total uses", cli.FormatNumber(int64(st.TotalUses))},
	}
	dbPath := cfg.DBPath()
	if flagDB != "" {
		dbPath = flagDB
	}
	if info, err := os.Stat(dbPath); err == nil {
		rows = append(rows, []string{"Database size", cli.FormatBytes(info.Size())})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}
