package cli

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"retrace/internal/collect"
	"retrace/internal/collect/browser"
	"retrace/internal/collect/clipboard"
	"retrace/internal/collect/filemeta"
	"retrace/internal/collect/prefetch"
	"retrace/internal/collect/recent"
	"retrace/internal/collect/sysevents"
	"retrace/internal/collect/usb"
	"retrace/internal/collect/winreg"
	"retrace/internal/config"
	"retrace/internal/export"
	"retrace/internal/pipeline"
	"retrace/internal/temporal"
	"retrace/internal/timeline"
)

// flagTimeLayout is the format accepted by --start and --end.
const flagTimeLayout = "2006-01-02 15:04"

type runOptions struct {
	start          string
	end            string
	last           time.Duration
	includeUnknown bool
	limit          int
	csvPath        string
	jsonPath       string
}

func newRunCmd(configPath *string) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Collect artifacts and reconstruct the activity timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimeline(cmd, *configPath, opts)
		},
	}
	cmd.Flags().StringVar(&opts.start, "start", "", `range start, e.g. "2024-03-15 09:00"`)
	cmd.Flags().StringVar(&opts.end, "end", "", `range end, e.g. "2024-03-15 18:00"`)
	cmd.Flags().DurationVar(&opts.last, "last", 0, "look back this far from now (overrides config default)")
	cmd.Flags().BoolVar(&opts.includeUnknown, "include-unknown", false, "include events without timestamps")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "max events printed to the terminal (0 = config default)")
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "write the full timeline to a CSV file")
	cmd.Flags().StringVar(&opts.jsonPath, "json", "", "write the full timeline to a JSON file")
	return cmd
}

func runTimeline(cmd *cobra.Command, configPath string, opts runOptions) error {
	cfg, rs, logger, closer, err := loadEnvironment(configPath)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	start, end, err := resolveRange(opts, cfg, time.Now())
	if err != nil {
		return err
	}
	if opts.includeUnknown {
		cfg.Output.IncludeUnknownTimes = true
	}

	collectors := buildCollectors(cfg, logger)
	p := pipeline.New(collectors, temporal.Policy{
		StrictMode:     cfg.Validation.StrictMode,
		MaxFutureDrift: cfg.Validation.MaxFutureDrift(),
		LogFiltered:    cfg.Validation.LogFilteredEvents,
	}, rs, logger)

	result, err := p.Run(cmd.Context(), start, end)
	if err != nil {
		return fmt.Errorf("timeline reconstruction failed: %w", err)
	}
	if result.Rejected > 0 {
		logger.Warn("events rejected by validity filter", "count", result.Rejected)
	}

	display := selectEvents(result.Events, start, end, cfg.Output.IncludeUnknownTimes)
	sortNewestFirst(display)

	if opts.csvPath != "" {
		if err := export.SaveCSV(opts.csvPath, display); err != nil {
			return err
		}
		logger.Info("wrote CSV timeline", "path", opts.csvPath, "events", len(display))
	}
	if opts.jsonPath != "" {
		if err := export.SaveJSON(opts.jsonPath, display); err != nil {
			return err
		}
		logger.Info("wrote JSON timeline", "path", opts.jsonPath, "events", len(display))
	}

	printTimeline(cmd, display, opts.limit, cfg.Output.MaxTerminalEvents)
	return nil
}

// resolveRange turns the flag set into concrete bounds. Explicit
// --start/--end win; otherwise --last (or the configured default range)
// anchors the window at now.
func resolveRange(opts runOptions, cfg *config.Config, now time.Time) (*time.Time, *time.Time, error) {
	if opts.start != "" || opts.end != "" {
		var start, end *time.Time
		if opts.start != "" {
			t, err := time.ParseInLocation(flagTimeLayout, opts.start, time.Local)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid --start (want %q): %w", flagTimeLayout, err)
			}
			start = &t
		}
		if opts.end != "" {
			t, err := time.ParseInLocation(flagTimeLayout, opts.end, time.Local)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid --end (want %q): %w", flagTimeLayout, err)
			}
			end = &t
		}
		if start != nil && end != nil && end.Before(*start) {
			return nil, nil, fmt.Errorf("--end %s is before --start %s", opts.end, opts.start)
		}
		return start, end, nil
	}

	lookback := opts.last
	if lookback == 0 {
		lookback = time.Duration(cfg.Output.DefaultRangeDays) * 24 * time.Hour
	}
	start := now.Add(-lookback)
	return &start, &now, nil
}

func buildCollectors(cfg *config.Config, logger *slog.Logger) []collect.Collector {
	var collectors []collect.Collector
	c := cfg.Collectors

	if c.FileMetadata {
		collectors = append(collectors, filemeta.New(c.ScanRoots, logger))
	}
	if c.Browser {
		collectors = append(collectors,
			browser.NewDownloadsCollector(logger),
			browser.NewHistoryCollector(logger))
	}
	if c.RecentFiles {
		collectors = append(collectors, recent.New("", logger))
	}
	if c.Prefetch {
		collectors = append(collectors, prefetch.New(c.PrefetchDir, logger))
	}
	if c.Registry {
		collectors = append(collectors,
			winreg.NewUserAssistCollector(logger),
			winreg.NewRunMRUCollector(logger))
	}
	if c.SystemEvents {
		collectors = append(collectors, sysevents.New(logger))
	}
	if c.USB {
		collectors = append(collectors, usb.New(logger))
	}
	if c.Clipboard {
		collectors = append(collectors, clipboard.New(logger))
	}
	return collectors
}

// selectEvents keeps events whose sort time falls inside [start, end].
// Unknown-time events are kept only when requested.
func selectEvents(events []timeline.Event, start, end *time.Time, includeUnknown bool) []timeline.Event {
	out := make([]timeline.Event, 0, len(events))
	for _, e := range events {
		ts := e.SortTime()
		if ts == nil {
			if includeUnknown {
				out = append(out, e)
			}
			continue
		}
		if start != nil && ts.Before(*start) {
			continue
		}
		if end != nil && ts.After(*end) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// sortNewestFirst orders events by sort time descending; events without
// timestamps sink to the end.
func sortNewestFirst(events []timeline.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		ti, tj := events[i].SortTime(), events[j].SortTime()
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})
}

func printTimeline(cmd *cobra.Command, events []timeline.Event, limit, configLimit int) {
	if limit <= 0 {
		limit = configLimit
	}
	shown := len(events)
	if limit > 0 && shown > limit {
		shown = limit
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Reconstructed %d events", len(events))
	if shown < len(events) {
		fmt.Fprintf(out, " (showing newest %d)", shown)
	}
	fmt.Fprintln(out)

	for i := 0; i < shown; i++ {
		fmt.Fprintln(out, events[i].String())
	}
}
