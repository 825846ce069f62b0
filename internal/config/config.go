// Package config loads gsprobe configuration from .gsprobe/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// HistoryConfig represents run-history store configuration
type HistoryConfig struct {
	// Enabled enables recording of suite runs
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database
	DBPath string `yaml:"db_path"`

	// KeepRunsDays is the number of days to keep run history
	KeepRunsDays int `yaml:"keep_runs_days"`

	// MaxRunsPerSuite is the maximum number of runs to keep per suite
	MaxRunsPerSuite int `yaml:"max_runs_per_suite"`
}

// Config represents gsprobe configuration options
type Config struct {
	// CLIPath is the path to the CLI binary under test
	CLIPath string `yaml:"cli_path"`

	// Timeout is the maximum run time for one CLI invocation
	Timeout time.Duration `yaml:"timeout"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// Env lists extra KEY=value entries passed to the CLI under test
	Env []string `yaml:"env"`

	// History contains run-history store configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		CLIPath:  "gsutil",
		Timeout:  10 * time.Minute,
		LogLevel: "info",
		History: HistoryConfig{
			Enabled:         true,
			DBPath:          ".gsprobe/history.db",
			KeepRunsDays:    90,
			MaxRunsPerSuite: 100,
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Use a temporary struct to handle duration parsing
	type yamlConfig struct {
		CLIPath  string        `yaml:"cli_path"`
		Timeout  string        `yaml:"timeout"`
		LogLevel string        `yaml:"log_level"`
		Env      []string      `yaml:"env"`
		History  HistoryConfig `yaml:"history"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if yamlCfg.CLIPath != "" {
		cfg.CLIPath = yamlCfg.CLIPath
	}
	if yamlCfg.Timeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format %q: %w", yamlCfg.Timeout, err)
		}
		cfg.Timeout = timeout
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if len(yamlCfg.Env) > 0 {
		cfg.Env = yamlCfg.Env
	}

	// Merge the history section only when it is present in the file, so an
	// omitted section keeps all defaults.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if historySection, exists := rawMap["history"]; exists && historySection != nil {
			history := yamlCfg.History
			historyMap, _ := historySection.(map[string]interface{})

			if _, exists := historyMap["enabled"]; exists {
				cfg.History.Enabled = history.Enabled
			}
			if _, exists := historyMap["db_path"]; exists {
				cfg.History.DBPath = history.DBPath
			}
			if _, exists := historyMap["keep_runs_days"]; exists {
				cfg.History.KeepRunsDays = history.KeepRunsDays
			}
			if _, exists := historyMap["max_runs_per_suite"]; exists {
				cfg.History.MaxRunsPerSuite = history.MaxRunsPerSuite
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .gsprobe/config.yaml in the
// specified directory. If the directory or file doesn't exist, returns
// default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".gsprobe", "config.yaml"))
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(cliPath *string, timeout *time.Duration, logLevel *string, historyEnabled *bool) {
	if cliPath != nil {
		c.CLIPath = *cliPath
	}
	if timeout != nil {
		c.Timeout = *timeout
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if historyEnabled != nil {
		c.History.Enabled = *historyEnabled
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.CLIPath == "" {
		return fmt.Errorf("cli_path cannot be empty")
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	// Timeout can be 0 (no timeout) or positive, negative is invalid
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}

	if c.History.Enabled {
		if c.History.DBPath == "" {
			return fmt.Errorf("history.db_path cannot be empty when history is enabled")
		}
		if c.History.KeepRunsDays < 0 {
			return fmt.Errorf("history.keep_runs_days must be >= 0, got %d", c.History.KeepRunsDays)
		}
		if c.History.MaxRunsPerSuite < 0 {
			return fmt.Errorf("history.max_runs_per_suite must be >= 0, got %d", c.History.MaxRunsPerSuite)
		}
	}

	return nil
}
