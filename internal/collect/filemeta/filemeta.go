// Package filemeta walks the standard user folders and emits a FileReference
// event per file from filesystem metadata.
package filemeta

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"retrace/internal/timeline"
)

// Source is the stable label of this collector.
const Source = "NTFS Metadata"

var (
	defaultFolders = []string{"Desktop", "Documents", "Downloads", "Pictures"}
	skippedDirs    = map[string]struct{}{"temp": {}, "cache": {}}
	skippedExts    = map[string]struct{}{".tmp": {}, ".log": {}, ".dat": {}}
)

// Collector walks directories and reports file activity.
type Collector struct {
	roots  []string
	logger *slog.Logger
}

// New returns a Collector over the given roots. Empty roots mean the standard
// user folders under the home directory.
func New(roots []string, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{roots: roots, logger: logger}
}

// Name implements collect.Collector.
func (c *Collector) Name() string { return Source }

// Collect walks every root and emits one event per regular file. The event
// time is the most recent of the file's creation, modification, and access
// instants; TimeStart carries it because none of the three marks a certain
// completion.
func (c *Collector) Collect(ctx context.Context) ([]timeline.Event, error) {
	roots := c.roots
	if len(roots) == 0 {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		for _, folder := range defaultFolders {
			roots = append(roots, filepath.Join(home, folder))
		}
	}

	var events []timeline.Event
	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return events, err
		}
		if _, err := os.Stat(root); err != nil {
			continue
		}
		events = append(events, c.walk(ctx, root)...)
	}

	if len(events) > 0 {
		c.logger.Info("collected file metadata events", "count", len(events))
	}
	return events, nil
}

func (c *Collector) walk(ctx context.Context, root string) []timeline.Event {
	var events []timeline.Event

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			c.logger.Debug("cannot access path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := strings.ToLower(d.Name())
		if d.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			if _, skip := skippedDirs[name]; skip {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if _, skip := skippedExts[filepath.Ext(name)]; skip {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		events = append(events, fileEvent(path, info))
		return nil
	})

	return events
}

func fileEvent(path string, info fs.FileInfo) timeline.Event {
	created, modified, accessed := fileTimes(info)

	eventTime := created
	if modified.After(eventTime) {
		eventTime = modified
	}
	if accessed.After(eventTime) {
		eventTime = accessed
	}

	const layout = "2006-01-02 15:04:05"
	e := timeline.New(
		timeline.FileReference,
		"User",
		path,
		fmt.Sprintf("File activity detected (%d bytes) - Created: %s, Modified: %s, Accessed: %s",
			info.Size(), created.Format(layout), modified.Format(layout), accessed.Format(layout)),
		Source,
		timeline.ConfidenceMedium,
	)
	t := eventTime
	e.TimeStart = &t
	return e
}
