// Package recent collects shortcut files from the Windows Recent Items
// folder. Each .lnk records that the user opened the target file; the
// shortcut's own modification time approximates the last open.
package recent

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"retrace/internal/timeline"
)

const source = "Recent Files (.lnk)"

type Collector struct {
	dir    string
	logger *slog.Logger
}

// New builds a collector over dir, defaulting to
// %APPDATA%\Microsoft\Windows\Recent when dir is empty.
func New(dir string, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			dir = filepath.Join(appData, "Microsoft", "Windows", "Recent")
		}
	}
	return &Collector{dir: dir, logger: logger}
}

func (c *Collector) Name() string { return "Recent Files" }

func (c *Collector) Collect(ctx context.Context) ([]timeline.Event, error) {
	if c.dir == "" {
		c.logger.Debug("recent items folder unknown; skipping")
		return nil, nil
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read recent items folder: %w", err)
	}

	var events []timeline.Event
	for _, entry := range entries {
		if ctx.Err() != nil {
			return events, ctx.Err()
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".lnk") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			c.logger.Debug("stat recent shortcut", "name", entry.Name(), "error", err)
			continue
		}

		// The shortcut name minus the extension is the opened file's name.
		target := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		e := timeline.New(
			timeline.FileReference,
			"User",
			target,
			fmt.Sprintf("File opened via shell (shortcut %s)", entry.Name()),
			source,
			timeline.ConfidenceLow,
		)
		mod := info.ModTime()
		e.TimeEnd = &mod
		events = append(events, e)
	}
	return events, nil
}
