// Package diagnostics provides the side-channel sinks that report anomalous
// events, outlier signals and sanitizer removals while a log is analyzed.
package diagnostics

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Sumatoshi-tech/pacelog/pkg/analysis"
	"github.com/Sumatoshi-tech/pacelog/pkg/flow"
	"github.com/Sumatoshi-tech/pacelog/pkg/pairing"
)

// WriterSink writes one line per record to an io.Writer. Write errors are
// remembered and reported by Err; the analysis itself is never interrupted.
type WriterSink struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

// NewWriterSink returns a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Anomaly implements analysis.Sink.
func (s *WriterSink) Anomaly(signal int64, a pairing.Anomaly) {
	s.printf("anomaly signal=%d position=%d rule=%s line=%d event=%q\n",
		signal, a.Position, a.Rule, a.Event.Line, a.Event.String())
}

// Outlier implements analysis.Sink.
func (s *WriterSink) Outlier(o analysis.Outlier) {
	s.printf("outlier signal=%d max_delay=%d position=%d line=%d event=%q\n",
		o.Signal, o.MaxDelay, o.Position, o.Event.Line, o.Event.String())
}

// Removal implements analysis.Sink.
func (s *WriterSink) Removal(r flow.Removal) {
	s.printf("duplicate signal=%d removed=%q removed_line=%d neighbor=%q neighbor_line=%d\n",
		r.Signal, r.Removed.String(), r.Removed.Line, r.Neighbor.String(), r.Neighbor.Line)
}

// Err returns the first write error, if any.
func (s *WriterSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

func (s *WriterSink) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return
	}

	_, err := fmt.Fprintf(s.w, format, args...)
	if err != nil {
		s.err = fmt.Errorf("write diagnostic: %w", err)
	}
}

// LogSink reports records through a structured logger at warn level.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a sink logging to logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Anomaly implements analysis.Sink.
func (s *LogSink) Anomaly(signal int64, a pairing.Anomaly) {
	s.logger.LogAttrs(context.Background(), slog.LevelWarn, "anomalous event",
		slog.Int64("signal", signal),
		slog.Int("position", a.Position),
		slog.String("rule", string(a.Rule)),
		slog.Int("line", a.Event.Line),
		slog.String("event", a.Event.String()),
	)
}

// Outlier implements analysis.Sink.
func (s *LogSink) Outlier(o analysis.Outlier) {
	s.logger.LogAttrs(context.Background(), slog.LevelWarn, "outlier signal",
		slog.Int64("signal", o.Signal),
		slog.Int64("max_delay", o.MaxDelay),
		slog.Int("position", o.Position),
		slog.String("event", o.Event.String()),
	)
}

// Removal implements analysis.Sink.
func (s *LogSink) Removal(r flow.Removal) {
	s.logger.LogAttrs(context.Background(), slog.LevelWarn, "duplicate removed",
		slog.Int64("signal", r.Signal),
		slog.String("removed", r.Removed.String()),
		slog.Int("removed_line", r.Removed.Line),
		slog.String("neighbor", r.Neighbor.String()),
	)
}

// Counter tallies records without emitting them.
type Counter struct {
	Anomalies int
	Outliers  int
	Removals  int
}

// Anomaly implements analysis.Sink.
func (c *Counter) Anomaly(int64, pairing.Anomaly) { c.Anomalies++ }

// Outlier implements analysis.Sink.
func (c *Counter) Outlier(analysis.Outlier) { c.Outliers++ }

// Removal implements analysis.Sink.
func (c *Counter) Removal(flow.Removal) { c.Removals++ }

// Tee fans records out to several sinks.
type Tee []analysis.Sink

// Anomaly implements analysis.Sink.
func (t Tee) Anomaly(signal int64, a pairing.Anomaly) {
	for _, s := range t {
		s.Anomaly(signal, a)
	}
}

// Outlier implements analysis.Sink.
func (t Tee) Outlier(o analysis.Outlier) {
	for _, s := range t {
		s.Outlier(o)
	}
}

// Removal implements analysis.Sink.
func (t Tee) Removal(r flow.Removal) {
	for _, s := range t {
		s.Removal(r)
	}
}
