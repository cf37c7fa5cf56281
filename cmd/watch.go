package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/n-WN/prompt-manager/internal/config"
)

var flagWatchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Continuously sync as logs change",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().DurationVarP(&flagWatchInterval, "interval", "i", 5*time.Minute, "Periodic rescan interval")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, _ := config.Load()
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("watching for new prompts, ctrl-c to stop")
	err = newEngine(s, cfg, nil).Watch(ctx, flagWatchInterval)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
