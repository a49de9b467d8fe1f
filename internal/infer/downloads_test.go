package infer

import (
	"strings"
	"testing"
	"time"

	"retrace/internal/rules"
	"retrace/internal/timeline"
)

var fileTime = time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC)

func downloadsFile(path string) timeline.Event {
	e := timeline.New(timeline.FileReference, "User", path, "File activity", "NTFS Metadata", timeline.ConfidenceMedium)
	e.TimeStart = &fileTime
	return e
}

func appExecution(object string, end time.Time) timeline.Event {
	e := timeline.New(timeline.ProgramExecution, "User", object, "Program executed", "UserAssist Registry", timeline.ConfidenceHigh)
	e.TimeEnd = &end
	return e
}

func newAnalyzer() *Analyzer {
	return NewAnalyzer(rules.Default(), nil)
}

func TestInfersAcquisitionFromMessagingApp(t *testing.T) {
	file := downloadsFile(`C:\Users\A\Downloads\img.jpg`)
	app := appExecution("WhatsApp.exe", fileTime.Add(90*time.Second))

	got := newAnalyzer().Analyze([]timeline.Event{file, app}, nil, nil)

	if len(got) != 1 {
		t.Fatalf("inferred %d events, want 1", len(got))
	}
	ev := got[0]
	if ev.Type != timeline.FileAcquisitionInferred {
		t.Errorf("type = %v", ev.Type)
	}
	if ev.Confidence != timeline.ConfidenceMedium {
		t.Errorf("confidence = %v, want MEDIUM", ev.Confidence)
	}
	if ev.Subject != "User" || ev.Source != Source {
		t.Errorf("subject/source = %q/%q", ev.Subject, ev.Source)
	}
	if !strings.Contains(ev.Description, "WhatsApp.exe") {
		t.Errorf("description = %q, should name the application", ev.Description)
	}
	if ev.Object != file.Object {
		t.Errorf("object = %q", ev.Object)
	}
	if len(ev.EvidenceIDs) != 2 {
		t.Errorf("evidence = %v, want file and app IDs", ev.EvidenceIDs)
	}
}

func TestBrowserDownloadGatesInference(t *testing.T) {
	file := downloadsFile(`C:\Users\A\Downloads\img.jpg`)
	app := appExecution("WhatsApp.exe", fileTime.Add(90*time.Second))

	browser := timeline.New(timeline.FileReference, "User",
		`c:\users\a\downloads\IMG.JPG`, "Downloaded via Chrome", "Chrome Downloads", timeline.ConfidenceHigh)
	end := fileTime.Add(-time.Minute)
	browser.TimeEnd = &end

	got := newAnalyzer().Analyze([]timeline.Event{file, browser, app}, nil, nil)
	if len(got) != 0 {
		t.Errorf("inferred %d events, want 0: path already explained by browser download", len(got))
	}
}

func TestWindowBoundary(t *testing.T) {
	file := downloadsFile(`C:\Users\A\Downloads\img.jpg`)

	atBoundary := appExecution("Telegram.exe", fileTime.Add(5*time.Minute))
	if got := newAnalyzer().Analyze([]timeline.Event{file, atBoundary}, nil, nil); len(got) != 1 {
		t.Errorf("exactly 5:00: inferred %d, want 1 (window inclusive)", len(got))
	}

	beyond := appExecution("Telegram.exe", fileTime.Add(5*time.Minute+time.Second))
	if got := newAnalyzer().Analyze([]timeline.Event{file, beyond}, nil, nil); len(got) != 0 {
		t.Errorf("5:01: inferred %d, want 0 (beyond window)", len(got))
	}
}

func TestFirstMatchingAppWins(t *testing.T) {
	file := downloadsFile(`C:\Users\A\Desktop\doc.pdf`)
	first := appExecution("Slack.exe", fileTime.Add(time.Minute))
	second := appExecution("Discord.exe", fileTime.Add(30*time.Second))

	// List order decides, not temporal proximity.
	got := newAnalyzer().Analyze([]timeline.Event{file, first, second}, nil, nil)
	if len(got) != 1 {
		t.Fatalf("inferred %d events, want 1", len(got))
	}
	if !strings.Contains(got[0].Description, "Slack.exe") {
		t.Errorf("description = %q, want first match in list order", got[0].Description)
	}
}

func TestNonCandidatePathsIgnored(t *testing.T) {
	file := downloadsFile(`C:\Users\A\Documents\notes.txt`)
	app := appExecution("WhatsApp.exe", fileTime.Add(time.Minute))

	if got := newAnalyzer().Analyze([]timeline.Event{file, app}, nil, nil); len(got) != 0 {
		t.Errorf("inferred %d, want 0: Documents is not a download location", len(got))
	}
}

func TestSourceOtherThanFileMetadataIgnored(t *testing.T) {
	file := downloadsFile(`C:\Users\A\Downloads\img.jpg`)
	file.Source = "Recent Files (.lnk)"
	app := appExecution("WhatsApp.exe", fileTime.Add(time.Minute))

	if got := newAnalyzer().Analyze([]timeline.Event{file, app}, nil, nil); len(got) != 0 {
		t.Errorf("inferred %d, want 0: only file-metadata events are candidates", len(got))
	}
}

func TestTimeBoundsFilterCandidates(t *testing.T) {
	file := downloadsFile(`C:\Users\A\Downloads\img.jpg`)
	app := appExecution("WhatsApp.exe", fileTime.Add(time.Minute))

	after := fileTime.Add(time.Hour)
	if got := newAnalyzer().Analyze([]timeline.Event{file, app}, &after, nil); len(got) != 0 {
		t.Errorf("start bound ignored: inferred %d, want 0", len(got))
	}

	before := fileTime.Add(-time.Hour)
	if got := newAnalyzer().Analyze([]timeline.Event{file, app}, nil, &before); len(got) != 0 {
		t.Errorf("end bound ignored: inferred %d, want 0", len(got))
	}
}

func TestAnalyzeDoesNotMutateInputs(t *testing.T) {
	file := downloadsFile(`C:\Users\A\Downloads\img.jpg`)
	app := appExecution("WhatsApp.exe", fileTime.Add(time.Minute))
	in := []timeline.Event{file, app}

	_ = newAnalyzer().Analyze(in, nil, nil)

	if in[0].Correlated || in[0].CorrelationNotes != "" || in[1].Correlated {
		t.Error("analyzer mutated its inputs")
	}
	if len(in[0].EvidenceIDs) != 0 {
		t.Error("analyzer attached evidence to input events")
	}
}
