// Package correlate implements the cross-artifact correlation engine. It
// recognizes when independently collected events describe the same real-world
// action, escalates evidentiary confidence when sources corroborate each
// other, and links program executions to file activity in time.
package correlate

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"retrace/internal/normalize"
	"retrace/internal/timeline"
)

// Engine defaults. The window is a data threshold for deciding whether two
// timestamps plausibly describe the same action, not a wall-clock timeout.
const (
	DefaultWindow = 5 * time.Minute
	DefaultBucket = 5 * time.Minute
)

// Engine groups events by normalized identity and by time bucket.
type Engine struct {
	window time.Duration
	bucket time.Duration
	norm   *normalize.Normalizer
	logger *slog.Logger
}

// NewEngine returns an Engine with the default window and bucket size.
// A nil logger falls back to slog.Default.
func NewEngine(norm *normalize.Normalizer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		window: DefaultWindow,
		bucket: DefaultBucket,
		norm:   norm,
		logger: logger,
	}
}

// Correlate runs both correlation passes over a copy of events and returns
// the copy. The input is never modified. Confidence only escalates and notes
// only accumulate, so running Correlate over its own output changes nothing.
//
// An unexpected failure in either pass is recovered: events correlated so far
// keep their state, the rest pass through uncorrelated, and the run continues.
func (e *Engine) Correlate(events []timeline.Event) []timeline.Event {
	out := timeline.CloneAll(events)
	e.runPass("identity", func() { e.correlateByIdentity(out) })
	e.runPass("time_bucket", func() { e.correlateByTimeBucket(out) })
	return out
}

func (e *Engine) runPass(name string, pass func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("correlation pass failed; remaining events left uncorrelated",
				"pass", name, "panic", r)
		}
	}()
	pass()
}

// correlateByIdentity partitions events by normalized object name. Within
// each group of two or more observations it escalates confidence from source
// and time agreement and records a corroboration note when the group spans
// more than one source. The processed set lives here, in the call scope, so
// each event is considered at most once per run and no marker leaks onto the
// shared records.
func (e *Engine) correlateByIdentity(events []timeline.Event) {
	processed := make(map[string]struct{}, len(events))
	groups := make(map[string][]*timeline.Event)

	for i := range events {
		ev := &events[i]
		if _, done := processed[ev.ID]; done {
			continue
		}
		processed[ev.ID] = struct{}{}

		if key := e.norm.Normalize(ev.Object); key != "" {
			groups[key] = append(groups[key], ev)
		}
	}

	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		e.correlateGroup(group)
	}
}

// correlateGroup handles one identity group. Unknown-time members stay in the
// group so their source still counts toward corroboration, but they are never
// escalated or mutated themselves.
func (e *Engine) correlateGroup(group []*timeline.Event) {
	// Members sort by sort time; unknown-time members sort last.
	sort.SliceStable(group, func(i, j int) bool {
		ti, tj := group[i].SortTime(), group[j].SortTime()
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.Before(*tj)
		}
	})

	sources := distinctSources(group)
	multiSource := len(sources) > 1
	note := "Corroborated by: " + strings.Join(sources, ", ")

	for _, ev := range group {
		evTime := ev.SortTime()
		if evTime == nil {
			continue
		}

		ev.Escalate(e.scoreAgainstGroup(ev, *evTime, group))

		if multiSource {
			ev.Correlated = true
			ev.AppendNote(note)
			for _, other := range group {
				if other.Source != ev.Source {
					ev.AddEvidence(other.ID)
				}
			}
		}
	}
}

// scoreAgainstGroup computes the confidence an event earns from the other
// members of its identity group: related events within the correlation window
// count as time agreements, and those from other sources count toward the
// distinct-source tally.
func (e *Engine) scoreAgainstGroup(ev *timeline.Event, evTime time.Time, group []*timeline.Event) timeline.Confidence {
	otherSources := make(map[string]struct{})
	timeAgreements := 0

	for _, related := range group {
		if related == ev {
			continue
		}
		relTime := related.SortTime()
		if relTime == nil || absDuration(relTime.Sub(evTime)) > e.window {
			continue
		}
		timeAgreements++
		if related.Source != ev.Source {
			otherSources[related.Source] = struct{}{}
		}
	}

	switch {
	case len(otherSources) >= 2 && timeAgreements >= 1:
		return timeline.ConfidenceHigh
	case len(otherSources) >= 1 || timeAgreements >= 1:
		return timeline.ConfidenceMedium
	default:
		return timeline.ConfidenceLow
	}
}

// correlateByTimeBucket floors every known sort time to a fixed-width bucket
// and, within each bucket, pairs program executions against file references
// that fall inside the correlation window.
func (e *Engine) correlateByTimeBucket(events []timeline.Event) {
	// Keyed on the bucket ordinal, not a time.Time: collectors emit
	// timestamps in mixed locations (UTC conversions vs local mtimes),
	// and time.Time map keys separate by location.
	buckets := make(map[int64][]*timeline.Event)
	for i := range events {
		ev := &events[i]
		ts := ev.SortTime()
		if ts == nil {
			continue
		}
		key := ts.UnixNano() / int64(e.bucket)
		buckets[key] = append(buckets[key], ev)
	}

	for _, bucket := range buckets {
		if len(bucket) < 2 {
			continue
		}

		var executions, fileRefs []*timeline.Event
		for _, ev := range bucket {
			switch ev.Type {
			case timeline.ProgramExecution:
				executions = append(executions, ev)
			case timeline.FileReference:
				fileRefs = append(fileRefs, ev)
			}
		}

		for _, exec := range executions {
			execTime := exec.SortTime()
			for _, file := range fileRefs {
				fileTime := file.SortTime()
				if absDuration(fileTime.Sub(*execTime)) > e.window {
					continue
				}

				file.Correlated = true
				file.AppendNote(fmt.Sprintf("Associated with %s execution", exec.Object))
				file.AddEvidence(exec.ID)

				exec.Correlated = true
				exec.AppendNote(fmt.Sprintf("Associated with file access: %s", file.Object))
				exec.AddEvidence(file.ID)
			}
		}
	}
}

// distinctSources returns the deduplicated source labels of a group in a
// stable order.
func distinctSources(group []*timeline.Event) []string {
	seen := make(map[string]struct{}, len(group))
	var sources []string
	for _, ev := range group {
		if _, ok := seen[ev.Source]; ok {
			continue
		}
		seen[ev.Source] = struct{}{}
		sources = append(sources, ev.Source)
	}
	sort.Strings(sources)
	return sources
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
