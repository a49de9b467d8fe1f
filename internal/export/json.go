package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"retrace/internal/timeline"
)

// jsonEvent is the export shape: times rendered as strings, evidence
// links preserved so records can be traced back to their artifacts.
type jsonEvent struct {
	ID               string   `json:"id"`
	TimeStart        *string  `json:"time_start"`
	TimeEnd          *string  `json:"time_end"`
	Type             string   `json:"type"`
	Subject          string   `json:"subject"`
	Object           string   `json:"object"`
	Description      string   `json:"description"`
	Source           string   `json:"source"`
	Confidence       string   `json:"confidence"`
	Correlated       bool     `json:"correlated"`
	CorrelationNotes string   `json:"correlation_notes,omitempty"`
	EvidenceIDs      []string `json:"evidence_ids,omitempty"`
}

// WriteJSON renders events to w as a JSON array.
func WriteJSON(w io.Writer, events []timeline.Event) error {
	out := make([]jsonEvent, 0, len(events))
	for i := range events {
		e := &events[i]
		out = append(out, jsonEvent{
			ID:               e.ID,
			TimeStart:        jsonTime(e.TimeStart),
			TimeEnd:          jsonTime(e.TimeEnd),
			Type:             string(e.Type),
			Subject:          e.Subject,
			Object:           e.Object,
			Description:      e.Description,
			Source:           e.Source,
			Confidence:       e.Confidence.String(),
			Correlated:       e.Correlated,
			CorrelationNotes: e.CorrelationNotes,
			EvidenceIDs:      e.EvidenceIDs,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode timeline json: %w", err)
	}
	return nil
}

// SaveJSON writes events to a new file at path.
func SaveJSON(path string, events []timeline.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	if err := WriteJSON(f, events); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func jsonTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(timeLayout)
	return &s
}
