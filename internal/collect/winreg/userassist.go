// Package winreg reads program-execution traces out of the Windows
// registry. UserAssist keys record GUI launches with ROT13-obfuscated
// value names; RunMRU records commands typed into the Run dialog.
package winreg

import (
	"encoding/binary"
	"log/slog"
	"time"

	"retrace/internal/collect"
)

const (
	userAssistSource = "UserAssist Registry"
	runMRUSource     = "Registry RunMRU"
)

// UserAssistCollector reads execution counts and last-run times from
// HKCU UserAssist subkeys. Windows only; a no-op elsewhere.
type UserAssistCollector struct {
	logger *slog.Logger
}

func NewUserAssistCollector(logger *slog.Logger) *UserAssistCollector {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserAssistCollector{logger: logger}
}

func (c *UserAssistCollector) Name() string { return "UserAssist" }

// RunMRUCollector reads the Run-dialog command history. Windows only;
// a no-op elsewhere.
type RunMRUCollector struct {
	logger *slog.Logger
}

func NewRunMRUCollector(logger *slog.Logger) *RunMRUCollector {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunMRUCollector{logger: logger}
}

func (c *RunMRUCollector) Name() string { return "RunMRU" }

// rot13 decodes the Caesar cipher Windows applies to UserAssist value
// names. Non-letter bytes pass through unchanged.
func rot13(s string) string {
	out := []byte(s)
	for i, b := range out {
		switch {
		case b >= 'a' && b <= 'z':
			out[i] = 'a' + (b-'a'+13)%26
		case b >= 'A' && b <= 'Z':
			out[i] = 'A' + (b-'A'+13)%26
		}
	}
	return string(out)
}

// parseUserAssistValue extracts the run count and last-run time from a
// UserAssist REG_BINARY payload. The count sits at bytes 4:8 and the
// FILETIME at bytes 8:16, both little-endian. Payloads shorter than 16
// bytes carry neither and are rejected.
func parseUserAssistValue(data []byte) (runCount uint32, lastRun *time.Time, ok bool) {
	if len(data) < 16 {
		return 0, nil, false
	}
	runCount = binary.LittleEndian.Uint32(data[4:8])
	lastRun = collect.FromFiletime(binary.LittleEndian.Uint64(data[8:16]))
	return runCount, lastRun, true
}
