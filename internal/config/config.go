package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const appDir = "prompt-manager"

// Config holds all prompt-manager configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Sources SourcesConfig `toml:"sources"`
}

// GeneralConfig holds cross-source preferences.
type GeneralConfig struct {
	// DBPath overrides the default prompts.db location.
	DBPath string `toml:"db_path,omitempty"`
	// Home overrides the home directory used for log discovery.
	Home string `toml:"home,omitempty"`
	// Theme names the TUI color theme; empty means the default.
	Theme string `toml:"theme,omitempty"`
}

// SourcesConfig toggles individual log sources on and off.
type SourcesConfig struct {
	ClaudeCode SourceConfig       `toml:"claude_code"`
	Cursor     CursorSourceConfig `toml:"cursor"`
	Aider      SourceConfig       `toml:"aider"`
	Codex      SourceConfig       `toml:"codex"`
	GeminiCLI  SourceConfig       `toml:"gemini_cli"`
	Amp        SourceConfig       `toml:"amp"`
}

// SourceConfig holds the settings every source shares.
type SourceConfig struct {
	Enabled bool `toml:"enabled"`
}

// CursorSourceConfig adds cursor-specific database locations.
type CursorSourceConfig struct {
	Enabled bool `toml:"enabled"`
	// ExtraDBs lists state.vscdb paths beyond the platform defaults.
	ExtraDBs []string `toml:"extra_dbs,omitempty"`
}

// SourceEnabled reports whether the named source is switched on. Unknown
// names are off.
func (c Config) SourceEnabled(name string) bool {
	switch name {
	case "claude_code":
		return c.Sources.ClaudeCode.Enabled
	case "cursor":
		return c.Sources.Cursor.Enabled
	case "aider":
		return c.Sources.Aider.Enabled
	case "codex":
		return c.Sources.Codex.Enabled
	case "gemini_cli":
		return c.Sources.GeminiCLI.Enabled
	case "amp":
		return c.Sources.Amp.Enabled
	}
	return false
}

// DBPath returns the prompt database location: the configured override when
// set, the XDG data dir otherwise.
func (c Config) DBPath() string {
	if c.General.DBPath != "" {
		return c.General.DBPath
	}
	return filepath.Join(DataDir(), "prompts.db")
}

// DefaultConfig returns the default configuration with every source enabled.
func DefaultConfig() Config {
	return Config{
		Sources: SourcesConfig{
			ClaudeCode: SourceConfig{Enabled: true},
			Cursor:     CursorSourceConfig{Enabled: true},
			Aider:      SourceConfig{Enabled: true},
			Codex:      SourceConfig{Enabled: true},
			GeminiCLI:  SourceConfig{Enabled: true},
			Amp:        SourceConfig{Enabled: true},
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appDir)
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appDir)
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
