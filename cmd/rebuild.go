package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/n-WN/prompt-manager/internal/cli"
	"github.com/n-WN/prompt-manager/internal/config"
)

var flagRebuildYes bool

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Re-import everything from the logs",
	Long: "Drops all prompts and re-parses every log file. Stars, tags, and use\n" +
		"counts carry over because prompt ids are derived from content.",
	RunE: runRebuild,
}

func init() {
	rebuildCmd.Flags().BoolVarP(&flagRebuildYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	if !flagRebuildYes {
		fmt.Print("Rebuild the prompt database from the logs? [y/N] ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	cfg, _ := config.Load()
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := newEngine(s, cfg, syncProgress).Rebuild(cmd.Context())
	if err != nil {
		return err
	}
	clearProgressLine()

	fmt.Printf("Rebuilt: %s prompts from %d files.\n",
		cli.FormatNumber(int64(res.Total)), res.FilesUpdated)
	return nil
}
