package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/n-WN/prompt-manager/internal/config"
	"github.com/n-WN/prompt-manager/internal/model"
	"github.com/n-WN/prompt-manager/internal/pipeline"
	"github.com/n-WN/prompt-manager/internal/source"
	"github.com/n-WN/prompt-manager/internal/store"
)

var (
	flagDB      string
	flagHome    string
	flagQuiet   bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "prompt-manager",
	Short: "Search and reuse prompts from AI coding assistant logs",
	Long: "Collects your prompts from Claude Code, Cursor, Aider, Codex, Gemini CLI,\n" +
		"and Amp session logs into one searchable local database.",
	RunE: runTUI,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Database path (default: XDG data dir)")
	rootCmd.PersistentFlags().StringVar(&flagHome, "home", "", "Override home directory for log discovery")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Errors only")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) { initLogging() }
	rootCmd.SilenceUsage = true
}

// initLogging routes zerolog through a console writer on stderr so command
// output on stdout stays clean.
func initLogging() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if flagQuiet {
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	}
	if flagVerbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// openStore opens the prompt database, honoring --db over the config value.
func openStore(cfg config.Config) (*store.Store, error) {
	path := cfg.DBPath()
	if flagDB != "" {
		path = flagDB
	}
	return store.Open(path)
}

// buildParsers constructs one parser per enabled source. --home wins over
// the configured home override.
func buildParsers(cfg config.Config) []source.Parser {
	opts := source.Options{
		Home:           cfg.General.Home,
		CursorExtraDBs: cfg.Sources.Cursor.ExtraDBs,
	}
	if flagHome != "" {
		opts.Home = flagHome
	}

	var parsers []source.Parser
	if cfg.SourceEnabled(model.SourceClaudeCode) {
		parsers = append(parsers, source.NewClaudeCodeParser(opts))
	}
	if cfg.SourceEnabled(model.SourceCursor) {
		parsers = append(parsers, source.NewCursorParser(opts))
	}
	if cfg.SourceEnabled(model.SourceAider) {
		parsers = append(parsers, source.NewAiderParser(opts))
	}
	if cfg.SourceEnabled(model.SourceCodex) {
		parsers = append(parsers, source.NewCodexParser(opts))
	}
	if cfg.SourceEnabled(model.SourceGeminiCLI) {
		parsers = append(parsers, source.NewGeminiParser(opts))
	}
	if cfg.SourceEnabled(model.SourceAmp) {
		parsers = append(parsers, source.NewAmpParser(opts))
	}
	return parsers
}

// newEngine wires the store and the enabled parsers into a sync engine.
func newEngine(s *store.Store, cfg config.Config, progress pipeline.ProgressFunc) *pipeline.Engine {
	return &pipeline.Engine{Store: s, Parsers: buildParsers(cfg), Progress: progress}
}
