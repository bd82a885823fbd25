// Package config loads ftree settings from environment variables, a config
// file, and defaults, in that order of precedence.
//
// The config file is .ftree.yaml in the vault directory (or any path given
// explicitly). Environment variables use the FTREE_ prefix, for example
// FTREE_PEOPLE_FOLDER.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all ftree settings.
type Config struct {
	// VaultDir is the root of the note vault.
	VaultDir string `mapstructure:"vault_dir"`

	// PeopleFolder is the vault-relative folder for new person notes.
	PeopleFolder string `mapstructure:"people_folder"`

	// DefaultLayout selects the graph layout hint ("hierarchical" or
	// "force-directed").
	DefaultLayout string `mapstructure:"default_layout"`

	// DebounceMs is the change debounce window in milliseconds.
	DebounceMs int `mapstructure:"debounce_ms"`

	// ScanBlocks enables family-tree code block parsing.
	ScanBlocks bool `mapstructure:"scan_blocks"`

	// DashboardPort is the dashboard listen port.
	DashboardPort int `mapstructure:"dashboard_port"`

	// CachePath is the SQLite mirror location. Empty disables the mirror.
	CachePath string `mapstructure:"cache_path"`

	// LogFile is where the watch daemon writes its log. Empty logs to
	// stderr.
	LogFile string `mapstructure:"log_file"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		VaultDir:      ".",
		PeopleFolder:  "People",
		DefaultLayout: "hierarchical",
		DebounceMs:    300,
		ScanBlocks:    true,
		DashboardPort: 8571,
	}
}

// Load reads settings from the given config file path. An empty path looks
// for .ftree.yaml in the current directory; a missing file is not an error,
// defaults and environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("vault_dir", defaults.VaultDir)
	v.SetDefault("people_folder", defaults.PeopleFolder)
	v.SetDefault("default_layout", defaults.DefaultLayout)
	v.SetDefault("debounce_ms", defaults.DebounceMs)
	v.SetDefault("scan_blocks", defaults.ScanBlocks)
	v.SetDefault("dashboard_port", defaults.DashboardPort)
	v.SetDefault("cache_path", defaults.CachePath)
	v.SetDefault("log_file", defaults.LogFile)

	v.SetEnvPrefix("FTREE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".ftree")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// Auto-discovery finding nothing is fine; an explicit path that
		// fails to load is not.
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings for values that cannot work.
func (c *Config) Validate() error {
	if c.VaultDir == "" {
		return fmt.Errorf("vault_dir must not be empty")
	}
	if c.DebounceMs < 0 {
		return fmt.Errorf("debounce_ms must not be negative")
	}
	if c.DashboardPort < 0 || c.DashboardPort > 65535 {
		return fmt.Errorf("dashboard_port %d out of range", c.DashboardPort)
	}
	switch c.DefaultLayout {
	case "hierarchical", "force-directed":
	default:
		return fmt.Errorf("unknown default_layout %q", c.DefaultLayout)
	}
	return nil
}

// Debounce returns the debounce window as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}
