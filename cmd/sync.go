package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/n-WN/prompt-manager/internal/cli"
	"github.com/n-WN/prompt-manager/internal/config"
	"github.com/n-WN/prompt-manager/internal/model"
	"github.com/n-WN/prompt-manager/internal/pipeline"
)

var (
	flagSyncSource string
	flagSyncForce  bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull new prompts from the session logs",
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().StringVarP(&flagSyncSource, "source", "s", "", "Only sync one source")
	syncCmd.Flags().BoolVarP(&flagSyncForce, "force", "f", false, "Reprocess files that look unchanged")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	cfg, _ := config.Load()
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	eng := newEngine(s, cfg, syncProgress)
	start := time.Now()

	var res *pipeline.Result
	if flagSyncSource != "" {
		res, err = eng.SyncSource(cmd.Context(), flagSyncSource, flagSyncForce)
	} else {
		res, err = eng.SyncAll(cmd.Context(), flagSyncForce)
	}
	if err != nil {
		return err
	}
	clearProgressLine()

	fmt.Printf("Synced %s new prompts in %s\n",
		cli.FormatNumber(int64(res.Total)),
		cli.FormatDuration(int64(time.Since(start).Seconds())))
	for _, src := range model.AllSources {
		if n, ok := res.BySource[src]; ok {
			fmt.Printf("  %-12s %s\n", src, cli.FormatNumber(int64(n)))
		}
	}
	if res.FilesFailed > 0 {
		fmt.Printf("  %d files failed to parse\n", res.FilesFailed)
	}
	return nil
}

// syncProgress paints a single status line that later updates overwrite.
func syncProgress(p pipeline.Progress) {
	if flagQuiet {
		return
	}
	switch p.Phase {
	case pipeline.PhaseDiscovering:
		paintProgressLine("scanning " + p.Source)
	case pipeline.PhaseSyncing:
		line := p.Source + " " + cli.RenderProgressBar(p.FilesChecked, p.FilesTotal, 20)
		if p.NewPromptsTotal > 0 {
			line += fmt.Sprintf(" +%d prompts", p.NewPromptsTotal)
		}
		paintProgressLine(line)
	case pipeline.PhaseResetting, pipeline.PhaseRestoring, pipeline.PhaseCompacting:
		paintProgressLine(p.Phase)
	}
}

// paintProgressLine pads by display width, not bytes, so shorter updates
// fully cover longer ones even with color codes in the bar.
func paintProgressLine(line string) {
	pad := 68 - lipgloss.Width(line)
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(os.Stderr, "\r  %s%s", line, strings.Repeat(" ", pad))
}

func clearProgressLine() {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "\r%-70s\r", "")
	}
}
