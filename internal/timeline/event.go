// Package timeline defines the shared event record that every collector
// produces and every analysis pass consumes.
package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventType categorizes what kind of activity an event describes.
type EventType string

const (
	FileReference           EventType = "FILE_REFERENCE"
	ProgramExecution        EventType = "PROGRAM_EXECUTION"
	UserIntent              EventType = "USER_INTENT"
	SystemEvent             EventType = "SYSTEM_EVENT"
	SystemStartup           EventType = "SYSTEM_STARTUP"
	SystemShutdown          EventType = "SYSTEM_SHUTDOWN"
	FileAcquisitionInferred EventType = "FILE_ACQUISITION_INFERRED"
	ClipboardActivity       EventType = "CLIPBOARD_ACTIVITY"
	UsbDeviceMount          EventType = "USB_DEVICE_MOUNT"
)

// Confidence is the evidentiary strength of an event. Values are ordered so
// that escalation can be expressed as a comparison.
type Confidence int

const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

// String returns the canonical label used in reports and exports.
func (c Confidence) String() string {
	switch c {
	case ConfidenceMedium:
		return "MEDIUM"
	case ConfidenceHigh:
		return "HIGH"
	default:
		return "LOW"
	}
}

// NoteSeparator joins accumulated correlation notes.
const NoteSeparator = " | "

// Event is a single observation on the activity timeline. Collectors create
// events; the correlation engine and attribution classifier mutate copies of
// them; the inference analyzer creates new ones.
type Event struct {
	// ID is a stable identifier used for evidence links between events.
	ID string

	// TimeStart and TimeEnd are optional. TimeEnd is the more certain
	// completion instant (last run, download finish); TimeStart is often an
	// approximation. Either or both may be nil.
	TimeStart *time.Time
	TimeEnd   *time.Time

	Type        EventType
	Subject     string
	Object      string
	Description string

	// Source is the stable label of the producing collector. It is the unit
	// of corroboration: two events corroborate each other only if their
	// sources differ.
	Source string

	Confidence Confidence
	Correlated bool

	// CorrelationNotes accumulates corroboration evidence across passes,
	// separated by NoteSeparator. Never overwritten, only appended.
	CorrelationNotes string

	// EvidenceIDs references the IDs of events that support this one.
	EvidenceIDs []string
}

// New returns an event with a fresh ID and the given core fields.
func New(t EventType, subject, object, description, source string, confidence Confidence) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        t,
		Subject:     subject,
		Object:      object,
		Description: description,
		Source:      source,
		Confidence:  confidence,
	}
}

// SortTime is the instant used for timeline ordering and all windowed math:
// TimeEnd when present, else TimeStart, else nil (temporally unknown).
func (e *Event) SortTime() *time.Time {
	if e.TimeEnd != nil {
		return e.TimeEnd
	}
	return e.TimeStart
}

// Escalate raises Confidence to c if c is higher. Confidence never regresses.
func (e *Event) Escalate(c Confidence) {
	if c > e.Confidence {
		e.Confidence = c
	}
}

// HasNote reports whether note is already present in CorrelationNotes.
func (e *Event) HasNote(note string) bool {
	if e.CorrelationNotes == "" {
		return false
	}
	for _, n := range strings.Split(e.CorrelationNotes, NoteSeparator) {
		if n == note {
			return true
		}
	}
	return false
}

// AppendNote accumulates note unless an identical note is already recorded.
func (e *Event) AppendNote(note string) {
	if note == "" || e.HasNote(note) {
		return
	}
	if e.CorrelationNotes == "" {
		e.CorrelationNotes = note
		return
	}
	e.CorrelationNotes += NoteSeparator + note
}

// AddEvidence records a supporting event ID, skipping duplicates and self
// references.
func (e *Event) AddEvidence(id string) {
	if id == "" || id == e.ID {
		return
	}
	for _, existing := range e.EvidenceIDs {
		if existing == id {
			return
		}
	}
	e.EvidenceIDs = append(e.EvidenceIDs, id)
}

// Clone returns a deep copy. Analysis passes operate on clones so that their
// inputs stay immutable.
func (e Event) Clone() Event {
	out := e
	if e.TimeStart != nil {
		t := *e.TimeStart
		out.TimeStart = &t
	}
	if e.TimeEnd != nil {
		t := *e.TimeEnd
		out.TimeEnd = &t
	}
	if e.EvidenceIDs != nil {
		out.EvidenceIDs = append([]string(nil), e.EvidenceIDs...)
	}
	return out
}

// CloneAll deep-copies a slice of events.
func CloneAll(events []Event) []Event {
	out := make([]Event, len(events))
	for i := range events {
		out[i] = events[i].Clone()
	}
	return out
}

// String renders the event in the timeline record format.
func (e Event) String() string {
	start := "UNKNOWN"
	if e.TimeStart != nil {
		start = e.TimeStart.Format(time.RFC3339)
	}
	end := "UNKNOWN"
	if e.TimeEnd != nil {
		end = e.TimeEnd.Format(time.RFC3339)
	}

	corr := ""
	if e.Correlated {
		corr = " | CORRELATED"
		if e.CorrelationNotes != "" {
			corr += fmt.Sprintf(" (%s)", e.CorrelationNotes)
		}
	}

	return fmt.Sprintf("[%s -> %s] | %s | %s | %s | %s%s",
		start, end, e.Type, e.Description, e.Source, e.Confidence, corr)
}
