// Package analysis reconciles change/detection event logs into per-signal
// valid pairs and anomalies and aggregates latency and error statistics.
//
// The pipeline is parse → group → (sanitize) → match → classify → fold.
// It is single-pass and holds no state between runs.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/pacelog/pkg/event"
	"github.com/Sumatoshi-tech/pacelog/pkg/flow"
	"github.com/Sumatoshi-tech/pacelog/pkg/logsource"
	"github.com/Sumatoshi-tech/pacelog/pkg/pairing"
)

const tracerName = "github.com/Sumatoshi-tech/pacelog/pkg/analysis"

// Options controls a run.
type Options struct {
	// Sanitize enables duplicate suppression before pairing.
	Sanitize bool
	// Strict fails the run on unbalanced signals instead of warning.
	Strict bool
	// OutlierThreshold is the delay above which a signal is an outlier.
	OutlierThreshold int64
	// SpacingMode selects the average change spacing denominator.
	SpacingMode SpacingMode
}

// DefaultOptions returns lenient, unsanitized options with the standard
// outlier threshold.
func DefaultOptions() Options {
	return Options{
		OutlierThreshold: DefaultOutlierThreshold,
		SpacingMode:      SpacingLiteral,
	}
}

// Sink receives diagnostic records during a run.
type Sink interface {
	Anomaly(signal int64, a pairing.Anomaly)
	Outlier(o Outlier)
	Removal(r flow.Removal)
}

type discardSink struct{}

func (discardSink) Anomaly(int64, pairing.Anomaly) {}
func (discardSink) Outlier(Outlier)                {}
func (discardSink) Removal(flow.Removal)           {}

// Analyzer runs the reconciliation pipeline.
type Analyzer struct {
	opts   Options
	sink   Sink
	logger *slog.Logger
	tracer trace.Tracer
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithSink sets the diagnostic sink. A nil sink disables diagnostics.
func WithSink(s Sink) Option {
	return func(a *Analyzer) {
		if s == nil {
			s = discardSink{}
		}

		a.sink = s
	}
}

// WithLogger sets the logger used for warnings.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithTracer sets the tracer used for run spans.
func WithTracer(t trace.Tracer) Option {
	return func(a *Analyzer) {
		if t != nil {
			a.tracer = t
		}
	}
}

// New creates an Analyzer.
func New(opts Options, options ...Option) *Analyzer {
	if !opts.SpacingMode.Valid() {
		opts.SpacingMode = SpacingLiteral
	}

	a := &Analyzer{
		opts:   opts,
		sink:   discardSink{},
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}

	for _, o := range options {
		o(a)
	}

	return a
}

// Options returns the options the analyzer was built with.
func (a *Analyzer) Options() Options {
	return a.opts
}

// Analyze parses a complete log and returns its statistics. A malformed line
// aborts the run with an error wrapping event.ErrMalformedLine.
func (a *Analyzer) Analyze(ctx context.Context, r io.Reader) (*Statistics, error) {
	ctx, span := a.tracer.Start(ctx, "analysis.Analyze")
	defer span.End()

	events, err := event.Parse(r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")

		return nil, fmt.Errorf("parse log: %w", err)
	}

	st, runErr := a.AnalyzeEvents(ctx, events)
	if runErr != nil {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, "analysis failed")

		return nil, runErr
	}

	span.SetAttributes(
		attribute.Int("pacelog.events", st.TotalEvents),
		attribute.Int("pacelog.signals", st.Signals),
		attribute.Int("pacelog.valid_pairs", st.ValidPairs),
		attribute.Int("pacelog.errors", st.ErrorCount),
	)

	return st, nil
}

// AnalyzeFile analyzes the log at path ("-" for standard input, lz4 logs are
// decoded transparently).
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (st *Statistics, err error) {
	src, openErr := logsource.Open(path)
	if openErr != nil {
		return nil, openErr
	}

	defer func() {
		err = errors.Join(err, src.Close())
	}()

	return a.Analyze(ctx, src)
}

// AnalyzeEvents runs the pipeline over already parsed events.
func (a *Analyzer) AnalyzeEvents(ctx context.Context, events []event.Event) (*Statistics, error) {
	set := flow.Group(events)

	mismatches := CheckBalance(set)
	if len(mismatches) > 0 {
		if a.opts.Strict {
			return nil, &GroupCountMismatchError{Mismatches: mismatches}
		}

		for _, m := range mismatches {
			a.logger.WarnContext(ctx, "unbalanced signal",
				"signal", m.Signal, "changes", m.Changes, "detects", m.Detects)
		}
	}

	var removals []flow.Removal
	if a.opts.Sanitize {
		set, removals = flow.SanitizeSet(set)

		for _, r := range removals {
			a.sink.Removal(r)
		}
	}

	acc := NewAccumulator(a.opts.OutlierThreshold, a.opts.SpacingMode)

	for _, id := range set.Signals() {
		ctxErr := ctx.Err()
		if ctxErr != nil {
			return nil, fmt.Errorf("analysis interrupted: %w", ctxErr)
		}

		r := Evaluate(id, set[id])
		for _, an := range r.Anomalies {
			a.sink.Anomaly(id, an)
		}

		acc = acc.Add(r)
	}

	st := acc.Statistics()
	st.Sanitized = len(removals)
	st.Mismatches = mismatches

	for _, o := range st.Outliers {
		a.sink.Outlier(o)
	}

	a.logger.DebugContext(ctx, "analysis complete",
		"signals", st.Signals, "events", st.TotalEvents, "valid_pairs", st.ValidPairs, "errors", st.ErrorCount)

	return st, nil
}
