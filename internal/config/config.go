// Package config handles configuration loading and validation for retrace.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds the complete retrace configuration.
type Config struct {
	// Validation controls the temporal validity filter.
	Validation ValidationConfig `toml:"validation" json:"validation" yaml:"validation"`

	// Rules optionally points at a JSON rule-table file replacing the
	// built-in keyword and alias tables.
	Rules RulesConfig `toml:"rules" json:"rules" yaml:"rules"`

	// Collectors enables or disables individual artifact collectors.
	Collectors CollectorsConfig `toml:"collectors" json:"collectors" yaml:"collectors"`

	// Output controls timeline presentation and export.
	Output OutputConfig `toml:"output" json:"output" yaml:"output"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`
}

// ValidationConfig is the surface consumed by the temporal validity filter.
type ValidationConfig struct {
	// StrictMode rejects any timestamp past the current instant.
	StrictMode bool `toml:"strict_mode" json:"strict_mode" yaml:"strict_mode"`

	// MaxFutureDriftMinutes is the allowed clock-skew budget when not strict.
	MaxFutureDriftMinutes int `toml:"max_future_drift_minutes" json:"max_future_drift_minutes" yaml:"max_future_drift_minutes"`

	// LogFilteredEvents reports filtered-out events for audit.
	LogFilteredEvents bool `toml:"log_filtered_events" json:"log_filtered_events" yaml:"log_filtered_events"`
}

// MaxFutureDrift returns the drift budget as a duration.
func (v ValidationConfig) MaxFutureDrift() time.Duration {
	return time.Duration(v.MaxFutureDriftMinutes) * time.Minute
}

// RulesConfig points at replaceable rule tables.
type RulesConfig struct {
	// Path is a JSON rule file; empty means built-in defaults.
	Path string `toml:"path" json:"path" yaml:"path"`
}

// CollectorsConfig enables individual collectors and sets their scan roots.
type CollectorsConfig struct {
	FileMetadata bool `toml:"file_metadata" json:"file_metadata" yaml:"file_metadata"`
	Browser      bool `toml:"browser" json:"browser" yaml:"browser"`
	RecentFiles  bool `toml:"recent_files" json:"recent_files" yaml:"recent_files"`
	Prefetch     bool `toml:"prefetch" json:"prefetch" yaml:"prefetch"`
	Registry     bool `toml:"registry" json:"registry" yaml:"registry"`
	SystemEvents bool `toml:"system_events" json:"system_events" yaml:"system_events"`
	USB          bool `toml:"usb" json:"usb" yaml:"usb"`
	Clipboard    bool `toml:"clipboard" json:"clipboard" yaml:"clipboard"`

	// ScanRoots are the directories the file-metadata collector walks.
	// Empty means the standard user folders under the home directory.
	ScanRoots []string `toml:"scan_roots" json:"scan_roots" yaml:"scan_roots"`

	// PrefetchDir overrides the Windows prefetch directory.
	PrefetchDir string `toml:"prefetch_dir" json:"prefetch_dir" yaml:"prefetch_dir"`
}

// OutputConfig controls presentation and export.
type OutputConfig struct {
	// MaxTerminalEvents caps the rows printed to the terminal.
	MaxTerminalEvents int `toml:"max_terminal_events" json:"max_terminal_events" yaml:"max_terminal_events"`

	// DefaultRangeDays is the default lookback window when no start time is
	// given.
	DefaultRangeDays int `toml:"default_range_days" json:"default_range_days" yaml:"default_range_days"`

	// IncludeUnknownTimes keeps temporally unknown events in filtered output.
	IncludeUnknownTimes bool `toml:"include_unknown_times" json:"include_unknown_times" yaml:"include_unknown_times"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the log format: "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is the log output: "stdout", "stderr", or "file".
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the path to the log file (when Output is "file").
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Validation: ValidationConfig{
			StrictMode:            false,
			MaxFutureDriftMinutes: 10,
			LogFilteredEvents:     true,
		},
		Collectors: CollectorsConfig{
			FileMetadata: true,
			Browser:      true,
			RecentFiles:  true,
			Prefetch:     true,
			Registry:     true,
			SystemEvents: true,
			USB:          true,
			Clipboard:    false, // snapshots live state, opt-in
		},
		Output: OutputConfig{
			MaxTerminalEvents: 10,
			DefaultRangeDays:  7,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	if dir := os.Getenv("RETRACE_DATA_DIR"); dir != "" {
		return filepath.Join(dir, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".retrace", "config.toml")
}

// Load reads configuration from the specified path. If the file doesn't
// exist, defaults are returned. TOML, JSON, and YAML are supported by file
// extension.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// ApplyEnvOverrides applies RETRACE_* environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("RETRACE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("RETRACE_LOG_PATH"); v != "" {
		c.Logging.Output = "file"
		c.Logging.FilePath = v
	}
	if v := os.Getenv("RETRACE_RULES_PATH"); v != "" {
		c.Rules.Path = v
	}
}
