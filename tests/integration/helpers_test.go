//go:build integration

// Package integration provides end-to-end tests for retrace.
//
// These tests build synthetic artifact fixtures (download folders,
// browser databases, prefetch files) and verify the complete flow from
// collection through correlation, attribution, inference, and export.
//
// Run with: go test -tags=integration ./tests/integration/...
package integration

import (
	"context"
	"database/sql"
	"encoding/binary"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"retrace/internal/collect"
	"retrace/internal/pipeline"
	"retrace/internal/rules"
	"retrace/internal/temporal"
	"retrace/internal/timeline"
)

// TestEnv holds the fixture tree and components for one test run.
type TestEnv struct {
	T       *testing.T
	TempDir string
	Rules   rules.Set
	Logger  *slog.Logger

	collectors []collect.Collector
}

func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	rs := rules.Default()
	// The built-in download locations use Windows separators; fixtures
	// live on the host filesystem, so match both.
	sep := string(filepath.Separator)
	rs.DownloadDirs = append(rs.DownloadDirs,
		sep+"downloads"+sep, sep+"desktop"+sep)

	return &TestEnv{
		T:       t,
		TempDir: t.TempDir(),
		Rules:   rs,
		Logger:  slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}
}

// AddCollector registers a collector for the pipeline under test.
func (env *TestEnv) AddCollector(c collect.Collector) {
	env.collectors = append(env.collectors, c)
}

// Run executes the full pipeline over the registered collectors.
func (env *TestEnv) Run(start, end *time.Time) pipeline.Result {
	env.T.Helper()
	p := pipeline.New(env.collectors, temporal.Policy{
		MaxFutureDrift: 10 * time.Minute,
		LogFiltered:    true,
	}, env.Rules, env.Logger)

	result, err := p.Run(context.Background(), start, end)
	if err != nil {
		env.T.Fatalf("pipeline run: %v", err)
	}
	return result
}

// WriteFileAt creates a fixture file and sets its timestamps.
func (env *TestEnv) WriteFileAt(relPath string, mtime time.Time) string {
	env.T.Helper()
	path := filepath.Join(env.TempDir, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		env.T.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("fixture"), 0o644); err != nil {
		env.T.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		env.T.Fatal(err)
	}
	return path
}

// ChromiumHistoryDB builds a minimal Chromium History database with the
// given completed downloads.
func (env *TestEnv) ChromiumHistoryDB(relPath string, downloads ...ChromiumDownload) string {
	env.T.Helper()
	path := filepath.Join(env.TempDir, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		env.T.Fatal(err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		env.T.Fatal(err)
	}
	defer db.Close()

	mustExec(env.T, db, `CREATE TABLE downloads (target_path TEXT, start_time INTEGER, end_time INTEGER, url TEXT, state INTEGER)`)
	mustExec(env.T, db, `CREATE TABLE urls (url TEXT, title TEXT, visit_count INTEGER, last_visit_time INTEGER)`)
	for _, d := range downloads {
		mustExec(env.T, db,
			`INSERT INTO downloads VALUES (?, ?, ?, ?, 1)`,
			d.TargetPath, chromeMicros(d.End.Add(-time.Minute)), chromeMicros(d.End), d.URL)
	}
	return path
}

type ChromiumDownload struct {
	TargetPath string
	URL        string
	End        time.Time
}

// PrefetchFile writes a version-23 prefetch file recording lastRun.
func (env *TestEnv) PrefetchFile(name string, runCount uint32, lastRun time.Time) string {
	env.T.Helper()
	const (
		lastRunOffset  = 0x80
		runCountOffset = 0x98
	)
	data := make([]byte, runCountOffset+4)
	binary.LittleEndian.PutUint32(data[0:4], 23)
	copy(data[4:8], "SCCA")
	binary.LittleEndian.PutUint64(data[lastRunOffset:lastRunOffset+8], filetimeTicks(lastRun))
	binary.LittleEndian.PutUint32(data[runCountOffset:runCountOffset+4], runCount)

	dir := filepath.Join(env.TempDir, "Prefetch")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		env.T.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		env.T.Fatal(err)
	}
	return dir
}

// EventsByType indexes a result for assertions.
func EventsByType(events []timeline.Event) map[timeline.EventType][]timeline.Event {
	out := make(map[timeline.EventType][]timeline.Event)
	for _, e := range events {
		out[e.Type] = append(out[e.Type], e)
	}
	return out
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

// 11644473600s separate the Windows epoch (1601) from the Unix epoch;
// going through time.Sub would overflow time.Duration.
const windowsUnixDeltaSeconds = 11644473600

func chromeMicros(t time.Time) int64 {
	return t.UnixMicro() + windowsUnixDeltaSeconds*1_000_000
}

func filetimeTicks(t time.Time) uint64 {
	return uint64(t.UnixNano()/100 + windowsUnixDeltaSeconds*10_000_000)
}
