package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrison/pfind/internal/fsys"
)

// Color modes for console output
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// HistoryConfig represents search history configuration
type HistoryConfig struct {
	// Enabled records every search in the history database
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database.
	// Empty means $PFIND_HOME/history/runs.db.
	DBPath string `yaml:"db_path"`
}

// WatchConfig represents watch mode configuration
type WatchConfig struct {
	// Debounce is how long the tree must stay quiet before a re-run
	Debounce time.Duration `yaml:"debounce"`
}

// Config represents pfind configuration options
type Config struct {
	// Workers is the number of search workers
	Workers int `yaml:"workers"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs are written (empty disables file logs)
	LogDir string `yaml:"log_dir"`

	// Color controls colored output: auto, always or never
	Color string `yaml:"color"`

	// BatchSize is how many directory entries are read per listing call
	BatchSize int `yaml:"batch_size"`

	// Output, if set, receives the sorted list of matched paths
	Output string `yaml:"output"`

	// Report, if set, receives a Markdown or HTML report (chosen by extension)
	Report string `yaml:"report"`

	History HistoryConfig `yaml:"history"`
	Watch   WatchConfig   `yaml:"watch"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Workers:   runtime.NumCPU(),
		LogLevel:  "info",
		LogDir:    ".pfind/logs",
		Color:     ColorAuto,
		BatchSize: fsys.DefaultBatchSize,
		History: HistoryConfig{
			Enabled: true,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations are strings in YAML ("750ms"), so decode through a mirror struct
	type yamlHistory struct {
		Enabled *bool  `yaml:"enabled"`
		DBPath  string `yaml:"db_path"`
	}
	type yamlWatch struct {
		Debounce string `yaml:"debounce"`
	}
	type yamlConfig struct {
		Workers   int         `yaml:"workers"`
		LogLevel  string      `yaml:"log_level"`
		LogDir    *string     `yaml:"log_dir"`
		Color     string      `yaml:"color"`
		BatchSize int         `yaml:"batch_size"`
		Output    string      `yaml:"output"`
		Report    string      `yaml:"report"`
		History   yamlHistory `yaml:"history"`
		Watch     yamlWatch   `yaml:"watch"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if yamlCfg.Workers != 0 {
		cfg.Workers = yamlCfg.Workers
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	// An explicit empty log_dir disables file logging
	if yamlCfg.LogDir != nil {
		cfg.LogDir = *yamlCfg.LogDir
	}
	if yamlCfg.Color != "" {
		cfg.Color = yamlCfg.Color
	}
	if yamlCfg.BatchSize != 0 {
		cfg.BatchSize = yamlCfg.BatchSize
	}
	if yamlCfg.Output != "" {
		cfg.Output = yamlCfg.Output
	}
	if yamlCfg.Report != "" {
		cfg.Report = yamlCfg.Report
	}
	if yamlCfg.History.Enabled != nil {
		cfg.History.Enabled = *yamlCfg.History.Enabled
	}
	if yamlCfg.History.DBPath != "" {
		cfg.History.DBPath = yamlCfg.History.DBPath
	}
	if yamlCfg.Watch.Debounce != "" {
		debounce, err := time.ParseDuration(yamlCfg.Watch.Debounce)
		if err != nil {
			return nil, fmt.Errorf("invalid watch.debounce format %q: %w", yamlCfg.Watch.Debounce, err)
		}
		cfg.Watch.Debounce = debounce
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .pfind/config.yaml in the specified directory.
// If the directory or file doesn't exist, returns default configuration without error.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".pfind", "config.yaml"))
}

// Overrides holds CLI flag values. Nil fields leave the configuration unchanged.
type Overrides struct {
	Workers   *int
	LogLevel  *string
	LogDir    *string
	Color     *string
	BatchSize *int
	Output    *string
	Report    *string
	NoHistory *bool
	Debounce  *time.Duration
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values so that CLI flags
// take precedence over config file settings.
func (c *Config) MergeWithFlags(o Overrides) {
	if o.Workers != nil {
		c.Workers = *o.Workers
	}
	if o.LogLevel != nil {
		c.LogLevel = *o.LogLevel
	}
	if o.LogDir != nil {
		c.LogDir = *o.LogDir
	}
	if o.Color != nil {
		c.Color = *o.Color
	}
	if o.BatchSize != nil {
		c.BatchSize = *o.BatchSize
	}
	if o.Output != nil {
		c.Output = *o.Output
	}
	if o.Report != nil {
		c.Report = *o.Report
	}
	if o.NoHistory != nil && *o.NoHistory {
		c.History.Enabled = false
	}
	if o.Debounce != nil {
		c.Watch.Debounce = *o.Debounce
	}
}

// Validate validates the configuration values.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
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

	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color %q, must be one of: auto, always, never", c.Color)
	}

	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be >= 1, got %d", c.BatchSize)
	}

	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must be >= 0, got %v", c.Watch.Debounce)
	}

	return nil
}
