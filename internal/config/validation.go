package config

import (
	"errors"
	"fmt"
	"os"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Validation.MaxFutureDriftMinutes < 0 {
		errs = append(errs, fmt.Errorf("validation.max_future_drift_minutes must be >= 0, got %d",
			c.Validation.MaxFutureDriftMinutes))
	}
	if c.Output.MaxTerminalEvents < 0 {
		errs = append(errs, fmt.Errorf("output.max_terminal_events must be >= 0, got %d",
			c.Output.MaxTerminalEvents))
	}
	if c.Output.DefaultRangeDays <= 0 {
		errs = append(errs, fmt.Errorf("output.default_range_days must be > 0, got %d",
			c.Output.DefaultRangeDays))
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unknown format %q", c.Logging.Format))
	}
	switch c.Logging.Output {
	case "", "stdout", "stderr":
	case "file":
		if c.Logging.FilePath == "" {
			errs = append(errs, errors.New("logging.file_path required when logging.output is file"))
		}
	default:
		errs = append(errs, fmt.Errorf("logging.output: unknown output %q", c.Logging.Output))
	}

	if c.Rules.Path != "" {
		if _, err := os.Stat(c.Rules.Path); err != nil {
			errs = append(errs, fmt.Errorf("rules.path: %w", err))
		}
	}

	return errors.Join(errs...)
}
