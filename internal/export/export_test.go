package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"retrace/internal/timeline"
)

func sampleEvents() []timeline.Event {
	t1 := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	known := timeline.New(
		timeline.ProgramExecution,
		"User",
		"notepad",
		"Program executed",
		"Windows Prefetch",
		timeline.ConfidenceHigh,
	)
	known.TimeEnd = &t1
	known.Correlated = true
	known.CorrelationNotes = "Corroborated by: A, B"

	unknown := timeline.New(
		timeline.UserIntent,
		"User",
		"cmd /c whoami",
		"Command present in RunMRU (exact execution time unknown): cmd /c whoami",
		"Registry RunMRU",
		timeline.ConfidenceMedium,
	)
	return []timeline.Event{known, unknown}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleEvents()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(records))
	}
	if records[0][0] != "Timestamp" || records[0][10] != "CorrelationNotes" {
		t.Errorf("header = %v", records[0])
	}

	known := records[1]
	if known[0] != "2024-03-15 10:30:00" {
		t.Errorf("timestamp = %q", known[0])
	}
	if known[1] != "UNKNOWN" || known[2] != "2024-03-15 10:30:00" {
		t.Errorf("start/end = %q/%q", known[1], known[2])
	}
	if known[8] != "HIGH" || known[9] != "true" {
		t.Errorf("confidence/correlated = %q/%q", known[8], known[9])
	}

	unknown := records[2]
	if unknown[0] != "UNKNOWN" || unknown[1] != "UNKNOWN" || unknown[2] != "UNKNOWN" {
		t.Errorf("unknown-time row = %v", unknown)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleEvents()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("reading back json: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("got %d records, want 2", len(decoded))
	}

	known := decoded[0]
	if known["id"] == "" {
		t.Error("event id missing")
	}
	if known["time_end"] != "2024-03-15 10:30:00" {
		t.Errorf("time_end = %v", known["time_end"])
	}
	if known["time_start"] != nil {
		t.Errorf("time_start = %v, want null", known["time_start"])
	}
	if known["confidence"] != "HIGH" || known["correlated"] != true {
		t.Errorf("confidence/correlated = %v/%v", known["confidence"], known["correlated"])
	}
	if !strings.Contains(buf.String(), "correlation_notes") {
		t.Error("correlation notes missing from output")
	}
}

func TestSaveFiles(t *testing.T) {
	dir := t.TempDir()
	events := sampleEvents()

	csvPath := filepath.Join(dir, "out.csv")
	if err := SaveCSV(csvPath, events); err != nil {
		t.Fatalf("SaveCSV: %v", err)
	}
	jsonPath := filepath.Join(dir, "out.json")
	if err := SaveJSON(jsonPath, events); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	for _, path := range []string{csvPath, jsonPath} {
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("%s: %v", path, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s: empty file", path)
		}
	}
}
