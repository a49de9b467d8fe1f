// Package clipboard snapshots the current text clipboard as a single
// activity event. It is opt-in: clipboard contents are live user data,
// not a historical artifact, so collection is off unless configured.
package clipboard

import (
	"log/slog"
	"unicode/utf8"
)

const (
	source = "Clipboard"

	// previewLimit caps how much clipboard text lands in the event
	// description.
	previewLimit = 120
)

type Collector struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{logger: logger}
}

func (c *Collector) Name() string { return "Clipboard" }

// preview truncates s to previewLimit without splitting a rune.
func preview(s string) string {
	if len(s) <= previewLimit {
		return s
	}
	cut := previewLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
