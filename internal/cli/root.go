// Package cli implements the retrace command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"retrace/internal/config"
	"retrace/internal/logging"
	"retrace/internal/rules"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// NewRoot builds the retrace command tree.
func NewRoot() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "retrace",
		Short:         "Reconstruct a user activity timeline from system artifacts",
		Long:          "retrace gathers filesystem, browser, and registry artifacts,\ncorrelates them across sources, and reconstructs a timeline of user activity.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: "+config.ConfigPath()+")")

	root.AddCommand(newRunCmd(&configPath))
	root.AddCommand(newRulesCmd(&configPath))
	root.AddCommand(newVersionCmd())
	return root
}

// loadEnvironment resolves config, logging, and rule tables for a command
// invocation. The returned closer is non-nil when logs go to a file.
func loadEnvironment(configPath string) (*config.Config, rules.Set, *slog.Logger, io.Closer, error) {
	if configPath == "" {
		configPath = config.ConfigPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, rules.Set{}, nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, rules.Set{}, nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, closer, err := buildLogger(cfg.Logging)
	if err != nil {
		return nil, rules.Set{}, nil, nil, err
	}

	rs := rules.Default()
	if cfg.Rules.Path != "" {
		rs, err = rules.Load(cfg.Rules.Path)
		if err != nil {
			if closer != nil {
				closer.Close()
			}
			return nil, rules.Set{}, nil, nil, fmt.Errorf("loading rule tables: %w", err)
		}
		logger.Info("loaded rule tables", "path", cfg.Rules.Path)
	}

	return cfg, rs, logger, closer, nil
}

func buildLogger(lc config.LoggingConfig) (*slog.Logger, io.Closer, error) {
	logCfg := logging.DefaultConfig()
	if lc.Level != "" {
		level, err := logging.ParseLevel(lc.Level)
		if err != nil {
			return nil, nil, err
		}
		logCfg.Level = level
	}
	if lc.Format != "" {
		format, err := logging.ParseFormat(lc.Format)
		if err != nil {
			return nil, nil, err
		}
		logCfg.Format = format
	}
	if lc.Output != "" {
		logCfg.Output = lc.Output
	}
	logCfg.FilePath = lc.FilePath
	return logging.New(logCfg)
}
