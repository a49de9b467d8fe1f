package browser

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"retrace/internal/collect"
	"retrace/internal/timeline"
)

// firefoxDownloads reads the legacy moz_downloads table. Profiles without it
// (Firefox 26+) yield a query error, which the caller treats as "no events
// from this profile".
func firefoxDownloads(ctx context.Context, db *sql.DB) ([]timeline.Event, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT source, target, startTime, endTime
		FROM moz_downloads
		ORDER BY endTime DESC`)
	if err != nil {
		return nil, fmt.Errorf("query moz_downloads: %w", err)
	}
	defer rows.Close()

	var events []timeline.Event
	for rows.Next() {
		var (
			sourceURL, target sql.NullString
			start, end        sql.NullInt64
		)
		if err := rows.Scan(&sourceURL, &target, &start, &end); err != nil {
			return events, err
		}
		if !target.Valid || target.String == "" || !end.Valid || end.Int64 == 0 {
			continue
		}

		startTime := collect.FromPRTime(start.Int64)
		endTime := collect.FromPRTime(end.Int64)
		if startTime == nil && endTime == nil {
			continue
		}

		e := timeline.New(
			timeline.FileReference,
			"User",
			target.String,
			fmt.Sprintf("Downloaded via Firefox: '%s' from %s", filepath.Base(target.String), sourceURL.String),
			"Firefox Downloads",
			timeline.ConfidenceHigh,
		)
		e.TimeStart = startTime
		e.TimeEnd = endTime
		events = append(events, e)
	}
	return events, rows.Err()
}

func firefoxHistory(ctx context.Context, db *sql.DB) ([]timeline.Event, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT url, title, visit_count, last_visit_date
		FROM moz_places
		WHERE last_visit_date IS NOT NULL
		ORDER BY last_visit_date DESC
		LIMIT ?`, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("query moz_places: %w", err)
	}
	defer rows.Close()

	var events []timeline.Event
	for rows.Next() {
		var (
			url, title sql.NullString
			visits     sql.NullInt64
			lastVisit  sql.NullInt64
		)
		if err := rows.Scan(&url, &title, &visits, &lastVisit); err != nil {
			return events, err
		}
		visitTime := collect.FromPRTime(lastVisit.Int64)
		if visitTime == nil || !url.Valid {
			continue
		}

		e := timeline.New(
			timeline.UserIntent,
			"User",
			url.String,
			fmt.Sprintf("Visited '%s' (%d visits)", title.String, visits.Int64),
			"Firefox History",
			timeline.ConfidenceHigh,
		)
		e.TimeEnd = visitTime
		events = append(events, e)
	}
	return events, rows.Err()
}
