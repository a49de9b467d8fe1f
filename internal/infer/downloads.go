// Package infer synthesizes events that were never directly observed. Its
// one analyzer derives non-browser file acquisitions: a file appearing in a
// download location, not explained by any browser-download record, while a
// messaging or cloud application was running nearby in time, was most likely
// received through that application.
package infer

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"retrace/internal/rules"
	"retrace/internal/timeline"
)

// Source is the label the analyzer assigns to the events it creates.
const Source = "Non-Browser Download Inference"

// DefaultWindow bounds how far an application execution may sit from a file
// creation and still explain it.
const DefaultWindow = 5 * time.Minute

// Analyzer infers non-browser file acquisitions from existing events.
type Analyzer struct {
	window time.Duration
	rules  rules.Set
	logger *slog.Logger
}

// NewAnalyzer returns an Analyzer with the default correlation window.
// A nil logger falls back to slog.Default.
func NewAnalyzer(rs rules.Set, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{window: DefaultWindow, rules: rs, logger: logger}
}

// Analyze scans the event list and returns newly synthesized
// FileAcquisitionInferred events. The inputs are never modified; the caller
// decides whether to append the results. start and end optionally bound the
// candidate files by creation time.
func (a *Analyzer) Analyze(events []timeline.Event, start, end *time.Time) []timeline.Event {
	var candidates, browserDownloads, executions []*timeline.Event
	for i := range events {
		ev := &events[i]
		switch {
		case a.isCandidateFile(ev):
			candidates = append(candidates, ev)
		case ev.Type == timeline.FileReference && a.isBrowserDownloadSource(ev.Source):
			browserDownloads = append(browserDownloads, ev)
		case ev.Type == timeline.ProgramExecution:
			executions = append(executions, ev)
		}
	}

	var inferred []timeline.Event
	for _, file := range candidates {
		fileTime := file.TimeStart // file creation time
		if fileTime == nil {
			continue
		}
		if start != nil && fileTime.Before(*start) {
			continue
		}
		if end != nil && fileTime.After(*end) {
			continue
		}

		// Already explained by direct browser-download evidence.
		if a.isKnownBrowserDownload(file.Object, browserDownloads) {
			continue
		}

		app := a.findCorrelatedApp(*fileTime, executions)
		if app == nil {
			continue
		}

		ev := timeline.New(
			timeline.FileAcquisitionInferred,
			"User",
			file.Object,
			fmt.Sprintf("File likely received via %s (non-browser download inferred)", app.Object),
			Source,
			timeline.ConfidenceMedium,
		)
		ev.TimeStart = fileTime
		ev.AddEvidence(file.ID)
		ev.AddEvidence(app.ID)
		inferred = append(inferred, ev)

		a.logger.Debug("inferred non-browser acquisition",
			"file", file.Object, "app", app.Object)
	}

	return inferred
}

// isCandidateFile reports whether the event is a file-metadata observation in
// a likely download location.
func (a *Analyzer) isCandidateFile(e *timeline.Event) bool {
	if e.Type != timeline.FileReference || e.Source != a.rules.FileMetadataSource {
		return false
	}
	path := strings.ToLower(e.Object)
	for _, dir := range a.rules.DownloadDirs {
		if strings.Contains(path, dir) {
			return true
		}
	}
	return false
}

func (a *Analyzer) isBrowserDownloadSource(source string) bool {
	for _, s := range a.rules.BrowserDownloadSources {
		if source == s {
			return true
		}
	}
	return false
}

func (a *Analyzer) isKnownBrowserDownload(path string, downloads []*timeline.Event) bool {
	for _, ev := range downloads {
		if strings.EqualFold(ev.Object, path) {
			return true
		}
	}
	return false
}

// findCorrelatedApp returns the first execution, in list order, of a
// messaging or cloud application within the window around the file creation.
// First match wins; candidates are not ranked.
func (a *Analyzer) findCorrelatedApp(fileTime time.Time, executions []*timeline.Event) *timeline.Event {
	for _, exec := range executions {
		name := strings.ToLower(exec.Object)
		matched := false
		for _, keyword := range a.rules.AppKeywords {
			if strings.Contains(name, keyword) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		execTime := exec.SortTime() // time_end preferred
		if execTime == nil {
			continue
		}
		delta := execTime.Sub(fileTime)
		if delta < 0 {
			delta = -delta
		}
		if delta <= a.window {
			return exec
		}
	}
	return nil
}
