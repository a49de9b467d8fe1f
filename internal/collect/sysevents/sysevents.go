// Package sysevents reconstructs system startup and shutdown instants.
// The current boot is derived from kernel uptime; the last clean
// shutdown comes from the registry on Windows.
package sysevents

import (
	"context"
	"log/slog"

	"retrace/internal/timeline"
)

const (
	startupSource  = "System Uptime"
	shutdownSource = "Registry ShutdownTime"
)

type Collector struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{logger: logger}
}

func (c *Collector) Name() string { return "System Events" }

func (c *Collector) Collect(ctx context.Context) ([]timeline.Event, error) {
	var events []timeline.Event

	if boot, err := bootTime(); err != nil {
		c.logger.Debug("reading boot time", "error", err)
	} else {
		e := timeline.New(
			timeline.SystemStartup,
			"System",
			"System Boot",
			"System started (derived from kernel uptime)",
			startupSource,
			timeline.ConfidenceHigh,
		)
		e.TimeStart = &boot
		events = append(events, e)
	}

	if down, err := lastShutdown(); err != nil {
		c.logger.Debug("reading last shutdown time", "error", err)
	} else if down != nil {
		e := timeline.New(
			timeline.SystemShutdown,
			"System",
			"System Shutdown",
			"Last recorded clean shutdown",
			shutdownSource,
			timeline.ConfidenceHigh,
		)
		e.TimeEnd = down
		events = append(events, e)
	}

	return events, ctx.Err()
}
