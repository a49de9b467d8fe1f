// Package browser extracts download and visit records from the SQLite
// databases of Chromium-family browsers and Firefox.
//
// Browsers keep their databases locked while running, so every read works on
// a temporary snapshot copy opened read-only.
package browser

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"retrace/internal/timeline"
)

// profile locates one browser's history database.
type profile struct {
	browser string
	path    string
	firefox bool
}

// chromiumProfiles returns the default Chromium-family history databases.
func chromiumProfiles() []profile {
	localAppData := os.Getenv("LOCALAPPDATA")
	if localAppData == "" {
		return nil
	}
	return []profile{
		{browser: "Chrome", path: filepath.Join(localAppData, "Google", "Chrome", "User Data", "Default", "History")},
		{browser: "Edge", path: filepath.Join(localAppData, "Microsoft", "Edge", "User Data", "Default", "History")},
		{browser: "Brave", path: filepath.Join(localAppData, "BraveSoftware", "Brave-Browser", "User Data", "Default", "History")},
	}
}

// firefoxProfiles returns the places.sqlite databases of all Firefox profiles.
func firefoxProfiles() []profile {
	appData := os.Getenv("APPDATA")
	if appData == "" {
		return nil
	}
	pattern := filepath.Join(appData, "Mozilla", "Firefox", "Profiles", "*", "places.sqlite")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil
	}
	var out []profile
	for _, m := range matches {
		out = append(out, profile{browser: "Firefox", path: m, firefox: true})
	}
	return out
}

// DownloadsCollector emits FileReference events for completed downloads.
type DownloadsCollector struct {
	profiles []profile
	logger   *slog.Logger
}

// NewDownloadsCollector discovers the default browser profiles. A nil logger
// falls back to slog.Default.
func NewDownloadsCollector(logger *slog.Logger) *DownloadsCollector {
	if logger == nil {
		logger = slog.Default()
	}
	return &DownloadsCollector{
		profiles: append(chromiumProfiles(), firefoxProfiles()...),
		logger:   logger,
	}
}

// Name implements collect.Collector.
func (c *DownloadsCollector) Name() string { return "Browser Downloads" }

// Collect reads the downloads table of every reachable profile. Per-profile
// failures are logged and skipped; the result is whatever parsed.
func (c *DownloadsCollector) Collect(ctx context.Context) ([]timeline.Event, error) {
	var events []timeline.Event
	for _, p := range c.profiles {
		if err := ctx.Err(); err != nil {
			return events, err
		}
		got, err := withSnapshot(p.path, func(db *sql.DB) ([]timeline.Event, error) {
			if p.firefox {
				return firefoxDownloads(ctx, db)
			}
			return chromiumDownloads(ctx, db, p.browser)
		})
		if err != nil {
			c.logger.Debug("download collection failed", "browser", p.browser, "error", err)
			continue
		}
		if len(got) > 0 {
			c.logger.Info("collected download events", "browser", p.browser, "count", len(got))
		}
		events = append(events, got...)
	}
	return events, nil
}

// HistoryCollector emits UserIntent events for visited URLs.
type HistoryCollector struct {
	profiles []profile
	logger   *slog.Logger
}

// NewHistoryCollector discovers the default browser profiles.
func NewHistoryCollector(logger *slog.Logger) *HistoryCollector {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryCollector{
		profiles: append(chromiumProfiles(), firefoxProfiles()...),
		logger:   logger,
	}
}

// Name implements collect.Collector.
func (c *HistoryCollector) Name() string { return "Browser History" }

// Collect reads the visit history of every reachable profile.
func (c *HistoryCollector) Collect(ctx context.Context) ([]timeline.Event, error) {
	var events []timeline.Event
	for _, p := range c.profiles {
		if err := ctx.Err(); err != nil {
			return events, err
		}
		got, err := withSnapshot(p.path, func(db *sql.DB) ([]timeline.Event, error) {
			if p.firefox {
				return firefoxHistory(ctx, db)
			}
			return chromiumHistory(ctx, db, p.browser)
		})
		if err != nil {
			c.logger.Debug("history collection failed", "browser", p.browser, "error", err)
			continue
		}
		events = append(events, got...)
	}
	return events, nil
}

// withSnapshot copies the database to a temporary file, opens it read-only,
// and runs fn against it.
func withSnapshot(path string, fn func(*sql.DB) ([]timeline.Event, error)) ([]timeline.Event, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "retrace-db-*")
	if err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	src, err := os.Open(path)
	if err != nil {
		tmp.Close()
		return nil, err
	}
	_, copyErr := io.Copy(tmp, src)
	src.Close()
	if err := tmp.Close(); err != nil || copyErr != nil {
		return nil, errors.Join(copyErr, err)
	}

	db, err := sql.Open("sqlite3", "file:"+tmp.Name()+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer db.Close()

	return fn(db)
}
