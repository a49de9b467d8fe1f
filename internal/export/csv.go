// Package export writes a reconstructed timeline to CSV or JSON.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"retrace/internal/timeline"
)

const timeLayout = "2006-01-02 15:04:05"

// unknownTime stands in for events whose artifacts carry no timestamp.
const unknownTime = "UNKNOWN"

var csvHeader = []string{
	"Timestamp", "TimeStart", "TimeEnd", "Type", "Subject", "Object",
	"Description", "Source", "Confidence", "Correlated", "CorrelationNotes",
}

// WriteCSV renders events to w in display order as given.
func WriteCSV(w io.Writer, events []timeline.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range events {
		e := &events[i]
		record := []string{
			formatTime(e.SortTime()),
			formatTime(e.TimeStart),
			formatTime(e.TimeEnd),
			string(e.Type),
			e.Subject,
			e.Object,
			e.Description,
			e.Source,
			e.Confidence.String(),
			strconv.FormatBool(e.Correlated),
			e.CorrelationNotes,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes events to a new file at path.
func SaveCSV(path string, events []timeline.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	if err := WriteCSV(f, events); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return unknownTime
	}
	return t.Format(timeLayout)
}
