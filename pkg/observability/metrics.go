package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRuns       = "pacelog.runs"
	metricEvents     = "pacelog.events"
	metricValidPairs = "pacelog.valid_pairs"
	metricAnomalies  = "pacelog.anomalies"
	metricOutliers   = "pacelog.outliers"
	metricSanitized  = "pacelog.sanitized_events"
	metricMismatches = "pacelog.count_mismatches"
	metricDuration   = "pacelog.run.duration.seconds"

	attrStatus = "status"

	statusOK    = "ok"
	statusError = "error"
)

// durationBucketBoundaries covers 1ms to 60s; logs are read in a single pass.
var durationBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// RunStats is a flat summary of one analysis run, decoupled from the
// analysis types so this package stays a leaf.
type RunStats struct {
	Events     int64
	ValidPairs int64
	Anomalies  int64
	Outliers   int64
	Sanitized  int64
	Mismatches int64
	Duration   time.Duration
	Failed     bool
}

// AnalysisMetrics holds the OTel instruments describing analysis runs.
type AnalysisMetrics struct {
	runs       metric.Int64Counter
	events     metric.Int64Counter
	validPairs metric.Int64Counter
	anomalies  metric.Int64Counter
	outliers   metric.Int64Counter
	sanitized  metric.Int64Counter
	mismatches metric.Int64Counter
	duration   metric.Float64Histogram
}

// NewAnalysisMetrics creates the analysis instruments from the given meter.
func NewAnalysisMetrics(mt metric.Meter) (*AnalysisMetrics, error) {
	am := &AnalysisMetrics{}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&am.runs, metricRuns, "Analysis runs", "{run}"},
		{&am.events, metricEvents, "Events read from the log", "{event}"},
		{&am.validPairs, metricValidPairs, "Matched change/detection pairs", "{pair}"},
		{&am.anomalies, metricAnomalies, "Events not covered by a valid pair", "{event}"},
		{&am.outliers, metricOutliers, "Signals whose maximal delay exceeded the threshold", "{signal}"},
		{&am.sanitized, metricSanitized, "Duplicate events dropped by the sanitizer", "{event}"},
		{&am.mismatches, metricMismatches, "Signals with unequal change and detection counts", "{signal}"},
	}

	for _, c := range counters {
		counter, err := mt.Int64Counter(c.name,
			metric.WithDescription(c.desc),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", c.name, err)
		}

		*c.dst = counter
	}

	duration, err := mt.Float64Histogram(metricDuration,
		metric.WithDescription("Analysis run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricDuration, err)
	}

	am.duration = duration

	return am, nil
}

// RecordRun records the counters of one run. Safe to call on a nil receiver.
func (am *AnalysisMetrics) RecordRun(ctx context.Context, rs RunStats) {
	if am == nil {
		return
	}

	status := statusOK
	if rs.Failed {
		status = statusError
	}

	statusAttr := metric.WithAttributes(attribute.String(attrStatus, status))

	am.runs.Add(ctx, 1, statusAttr)
	am.duration.Record(ctx, rs.Duration.Seconds(), statusAttr)

	if rs.Failed {
		return
	}

	am.events.Add(ctx, rs.Events)
	am.validPairs.Add(ctx, rs.ValidPairs)
	am.anomalies.Add(ctx, rs.Anomalies)
	am.outliers.Add(ctx, rs.Outliers)
	am.sanitized.Add(ctx, rs.Sanitized)
	am.mismatches.Add(ctx, rs.Mismatches)
}
