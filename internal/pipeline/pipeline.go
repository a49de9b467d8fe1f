// Package pipeline runs the full timeline reconstruction: gather raw
// events from every enabled collector, drop temporally invalid records,
// correlate, attribute, and append inferred acquisition events.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"retrace/internal/attribute"
	"retrace/internal/collect"
	"retrace/internal/correlate"
	"retrace/internal/infer"
	"retrace/internal/normalize"
	"retrace/internal/rules"
	"retrace/internal/temporal"
	"retrace/internal/timeline"
)

// Result is the outcome of one reconstruction run.
type Result struct {
	Events []timeline.Event
	// Rejected counts events dropped by the temporal validity filter.
	Rejected int
	// SourceCounts maps collector name to the number of raw events it
	// produced, including events later filtered out.
	SourceCounts map[string]int
}

type Pipeline struct {
	collectors []collect.Collector
	filter     *temporal.Filter
	engine     *correlate.Engine
	classifier *attribute.Classifier
	analyzer   *infer.Analyzer
	logger     *slog.Logger
}

func New(collectors []collect.Collector, policy temporal.Policy, rs rules.Set, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	norm := normalize.New(rs.Aliases)
	return &Pipeline{
		collectors: collectors,
		filter:     temporal.New(policy, logger),
		engine:     correlate.NewEngine(norm, logger),
		classifier: attribute.NewClassifier(rs),
		analyzer:   infer.NewAnalyzer(rs, logger),
		logger:     logger,
	}
}

// Run gathers and processes events. start and end bound the inference
// stage; either may be nil for an open bound. A failing collector never
// aborts the run: its events are dropped and the failure logged.
func (p *Pipeline) Run(ctx context.Context, start, end *time.Time) (Result, error) {
	result := Result{SourceCounts: make(map[string]int)}

	var raw []timeline.Event
	for _, c := range p.collectors {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		events := p.collectOne(ctx, c)
		result.SourceCounts[c.Name()] = len(events)
		raw = append(raw, events...)
	}
	p.logger.Info("collection complete",
		"collectors", len(p.collectors), "events", len(raw))

	valid, rejected := p.filter.Apply(raw, time.Now())
	result.Rejected = rejected

	processed := p.engine.Correlate(valid)
	processed = p.classifier.Classify(processed)
	processed = append(processed, p.analyzer.Analyze(processed, start, end)...)

	result.Events = processed
	return result, nil
}

// collectOne isolates a single collector: errors and panics reduce to
// zero events plus a warning.
func (p *Pipeline) collectOne(ctx context.Context, c collect.Collector) (events []timeline.Event) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("collector panicked", "collector", c.Name(), "panic", r)
			events = nil
		}
	}()

	events, err := c.Collect(ctx)
	if err != nil {
		p.logger.Warn("collector failed", "collector", c.Name(), "error", err)
		return events
	}
	return events
}
