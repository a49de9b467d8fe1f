package prefetch

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"retrace/internal/timeline"
)

// 2020-01-01 00:00:00 UTC as FILETIME ticks.
const filetime2020 = uint64(132223104000000000)

func buildPf(version uint32, runCount uint32, lastRun uint64) []byte {
	offsets := fieldOffsets[version]
	data := make([]byte, offsets.runCount+4)
	binary.LittleEndian.PutUint32(data[0:4], version)
	copy(data[4:8], sccaMagic)
	binary.LittleEndian.PutUint64(data[offsets.lastRun:offsets.lastRun+8], lastRun)
	binary.LittleEndian.PutUint32(data[offsets.runCount:offsets.runCount+4], runCount)
	return data
}

func TestParseHeaderVersions(t *testing.T) {
	want := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, version := range []uint32{versionXP, versionVista, versionWin8} {
		hdr, err := parseHeader(buildPf(version, 12, filetime2020))
		if err != nil {
			t.Fatalf("version %d: %v", version, err)
		}
		if hdr.RunCount != 12 {
			t.Errorf("version %d: run count = %d, want 12", version, hdr.RunCount)
		}
		if hdr.LastRun == nil || !hdr.LastRun.Equal(want) {
			t.Errorf("version %d: last run = %v, want %v", version, hdr.LastRun, want)
		}
	}
}

func TestParseHeaderRejects(t *testing.T) {
	if _, err := parseHeader([]byte("MAM\x04....")); !errors.Is(err, errCompressed) {
		t.Errorf("compressed file: err = %v", err)
	}
	if _, err := parseHeader([]byte("\x1a\x00\x00\x00XXXX")); err == nil {
		t.Error("bad magic accepted")
	}
	if _, err := parseHeader(buildPf(versionXP, 1, filetime2020)[:0x20]); err == nil {
		t.Error("truncated file accepted")
	}
	bad := buildPf(versionVista, 1, filetime2020)
	binary.LittleEndian.PutUint32(bad[0:4], 99)
	if _, err := parseHeader(bad); err == nil {
		t.Error("unknown version accepted")
	}
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	writeFile := func(name string, data []byte) {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	writeFile("NOTEPAD.EXE-D8414F97.pf", buildPf(versionVista, 5, filetime2020))
	writeFile("CORRUPT.EXE-00000000.pf", []byte("garbage"))
	writeFile("readme.txt", []byte("not prefetch"))
	// Never-run entry: zero FILETIME yields no event.
	writeFile("NEVER.EXE-11111111.pf", buildPf(versionVista, 0, 0))

	c := New(dir, nil)
	events, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	e := events[0]
	if e.Object != "NOTEPAD.EXE" {
		t.Errorf("object = %q, want NOTEPAD.EXE", e.Object)
	}
	if e.Type != timeline.ProgramExecution || e.Source != "Windows Prefetch" {
		t.Errorf("type/source = %v/%q", e.Type, e.Source)
	}
	if e.Confidence != timeline.ConfidenceHigh {
		t.Errorf("confidence = %v", e.Confidence)
	}
	if e.Description != "Program executed 5 times, last at 2020-01-01 00:00:00 (Prefetch)" {
		t.Errorf("description = %q", e.Description)
	}
}

func TestCollectMissingDir(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "nope"), nil)
	events, err := c.Collect(context.Background())
	if err != nil || events != nil {
		t.Errorf("missing folder should be silent: events=%v err=%v", events, err)
	}
}
