package browser

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"retrace/internal/collect"
	"retrace/internal/timeline"
)

// Chromium download state 1 marks a completed download.
const chromiumDownloadComplete = 1

const historyLimit = 1000

func chromiumDownloads(ctx context.Context, db *sql.DB, browser string) ([]timeline.Event, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT target_path, start_time, end_time, url, state
		FROM downloads
		ORDER BY end_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("query downloads: %w", err)
	}
	defer rows.Close()

	var events []timeline.Event
	for rows.Next() {
		var (
			targetPath, url sql.NullString
			start, end      sql.NullInt64
			state           int
		)
		if err := rows.Scan(&targetPath, &start, &end, &url, &state); err != nil {
			return events, err
		}
		if state != chromiumDownloadComplete || !targetPath.Valid || targetPath.String == "" || !end.Valid || end.Int64 == 0 {
			continue
		}

		startTime := collect.FromChromeTime(start.Int64)
		endTime := collect.FromChromeTime(end.Int64)
		if startTime == nil && endTime == nil {
			continue
		}

		e := timeline.New(
			timeline.FileReference,
			"User",
			targetPath.String,
			fmt.Sprintf("Downloaded via %s: '%s' from %s", browser, filepath.Base(targetPath.String), url.String),
			browser+" Downloads",
			timeline.ConfidenceHigh,
		)
		e.TimeStart = startTime
		e.TimeEnd = endTime
		events = append(events, e)
	}
	return events, rows.Err()
}

func chromiumHistory(ctx context.Context, db *sql.DB, browser string) ([]timeline.Event, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT url, title, visit_count, last_visit_time
		FROM urls
		ORDER BY last_visit_time DESC
		LIMIT ?`, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var events []timeline.Event
	for rows.Next() {
		var (
			url, title sql.NullString
			visits     int
			lastVisit  sql.NullInt64
		)
		if err := rows.Scan(&url, &title, &visits, &lastVisit); err != nil {
			return events, err
		}
		visitTime := collect.FromChromeTime(lastVisit.Int64)
		if visitTime == nil || !url.Valid {
			continue
		}

		e := timeline.New(
			timeline.UserIntent,
			"User",
			url.String,
			fmt.Sprintf("Visited '%s' (%d visits)", title.String, visits),
			browser+" History",
			timeline.ConfidenceHigh,
		)
		e.TimeEnd = visitTime
		events = append(events, e)
	}
	return events, rows.Err()
}
