// Package attribute labels each event's actor as User or System. The
// classifier runs after correlation and overwrites whatever subject a
// collector set: attribution is a deliberate, uniform override.
package attribute

import (
	"strings"

	"retrace/internal/rules"
	"retrace/internal/timeline"
)

// Subject labels assigned by the classifier.
const (
	SubjectUser   = "User"
	SubjectSystem = "System"
)

const systemNote = "System Activity"

// Classifier decides actor attribution from path and process heuristics.
type Classifier struct {
	paths     []string
	processes []string
}

// NewClassifier builds a Classifier from the rule tables.
func NewClassifier(rs rules.Set) *Classifier {
	return &Classifier{paths: rs.SystemPaths, processes: rs.SystemProcesses}
}

// IsSystem reports whether the event looks like operating-system activity:
// a system path fragment in the object or description, or a system process
// name in the object.
func (c *Classifier) IsSystem(e *timeline.Event) bool {
	object := strings.ToLower(e.Object)
	description := strings.ToLower(e.Description)

	for _, p := range c.paths {
		if strings.Contains(object, p) || strings.Contains(description, p) {
			return true
		}
	}
	for _, proc := range c.processes {
		if strings.Contains(object, proc) {
			return true
		}
	}
	return false
}

// Classify returns copies of events with Subject set to User or System.
// System events additionally get a "System Activity" correlation note.
// The input slice is never modified.
func (c *Classifier) Classify(events []timeline.Event) []timeline.Event {
	out := timeline.CloneAll(events)
	for i := range out {
		if c.IsSystem(&out[i]) {
			out[i].Subject = SubjectSystem
			out[i].AppendNote(systemNote)
		} else {
			out[i].Subject = SubjectUser
		}
	}
	return out
}
