// Package collect defines the collector contract and the timestamp
// conversions shared by the per-artifact collectors.
//
// A collector produces zero or more normalized events and sets a stable
// Source label on each; that label is the unit of corroboration counting.
// Collectors must not let a parsing failure escape their boundary: internal
// failures become an error return (and a partial result), and the pipeline
// treats any error as "zero events from that source".
package collect

import (
	"context"

	"retrace/internal/timeline"
)

// Collector is the boundary between the analysis core and a data source.
type Collector interface {
	// Name is the collector's stable source label.
	Name() string

	// Collect gathers events. Implementations return whatever they parsed
	// successfully even when err is non-nil.
	Collect(ctx context.Context) ([]timeline.Event, error)
}
