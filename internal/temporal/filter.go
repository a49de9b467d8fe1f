// Package temporal rejects events whose timestamps are not plausibly in the
// past. Rejection is a filtering decision, never an error: the filter reports
// a count and the pipeline carries on.
package temporal

import (
	"log/slog"
	"time"

	"retrace/internal/timeline"
)

// Policy controls how future timestamps are judged.
type Policy struct {
	// StrictMode rejects any timestamp past the current instant.
	StrictMode bool

	// MaxFutureDrift is the clock-skew budget allowed when not strict.
	MaxFutureDrift time.Duration

	// LogFiltered reports each rejected event for audit.
	LogFiltered bool
}

// Filter applies a Policy to event batches.
type Filter struct {
	policy Policy
	logger *slog.Logger
}

// New returns a Filter. A nil logger falls back to slog.Default.
func New(policy Policy, logger *slog.Logger) *Filter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filter{policy: policy, logger: logger}
}

// Valid reports whether every known timestamp of e lies at or before the
// allowed horizon. Events with no timestamps are valid: unknown is not
// invalid.
func (f *Filter) Valid(e *timeline.Event, now time.Time) bool {
	horizon := now
	if !f.policy.StrictMode {
		horizon = now.Add(f.policy.MaxFutureDrift)
	}

	if e.TimeStart != nil && e.TimeStart.After(horizon) {
		return false
	}
	if e.TimeEnd != nil && e.TimeEnd.After(horizon) {
		return false
	}
	return true
}

// Apply returns copies of the events that pass the policy, plus the count of
// rejected events. The input slice is never modified.
func (f *Filter) Apply(events []timeline.Event, now time.Time) ([]timeline.Event, int) {
	valid := make([]timeline.Event, 0, len(events))
	rejected := 0

	for i := range events {
		if !f.Valid(&events[i], now) {
			rejected++
			if f.policy.LogFiltered {
				f.logger.Warn("rejected future-dated event",
					"source", events[i].Source,
					"object", events[i].Object,
					"sort_time", events[i].SortTime())
			}
			continue
		}
		valid = append(valid, events[i].Clone())
	}

	return valid, rejected
}
