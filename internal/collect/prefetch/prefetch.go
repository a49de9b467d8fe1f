// Package prefetch reads execution traces from Windows Prefetch files.
// Only the fixed header is parsed: it carries the last-run FILETIME and
// the run count, which is all the timeline needs.
package prefetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"retrace/internal/timeline"
)

const (
	source     = "Windows Prefetch"
	defaultDir = `C:\Windows\Prefetch`
)

type Collector struct {
	dir    string
	logger *slog.Logger
}

func New(dir string, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		dir = defaultDir
	}
	return &Collector{dir: dir, logger: logger}
}

func (c *Collector) Name() string { return "Prefetch" }

func (c *Collector) Collect(ctx context.Context) ([]timeline.Event, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			c.logger.Debug("prefetch folder unavailable", "dir", c.dir, "error", err)
			return nil, nil
		}
		return nil, fmt.Errorf("read prefetch folder: %w", err)
	}

	var events []timeline.Event
	for _, entry := range entries {
		if ctx.Err() != nil {
			return events, ctx.Err()
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pf") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(c.dir, entry.Name()))
		if err != nil {
			c.logger.Debug("reading prefetch file", "name", entry.Name(), "error", err)
			continue
		}
		hdr, err := parseHeader(data)
		if err != nil {
			c.logger.Debug("parsing prefetch file", "name", entry.Name(), "error", err)
			continue
		}
		if hdr.LastRun == nil {
			continue
		}

		// EXENAME-HASH.pf -> EXENAME
		object := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if i := strings.LastIndex(object, "-"); i > 0 {
			object = object[:i]
		}

		e := timeline.New(
			timeline.ProgramExecution,
			"User",
			object,
			fmt.Sprintf("Program executed %d times, last at %s (Prefetch)",
				hdr.RunCount, hdr.LastRun.Format("2006-01-02 15:04:05")),
			source,
			timeline.ConfidenceHigh,
		)
		e.TimeEnd = hdr.LastRun
		events = append(events, e)
	}
	return events, nil
}

// errCompressed marks Windows 10+ MAM-compressed prefetch files, which
// need a decompression pass this parser does not attempt.
var errCompressed = errors.New("prefetch file is MAM-compressed")
