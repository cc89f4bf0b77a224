package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const metricLastRun = "pacelog_last_run_timestamp_seconds"

// ErrEmptyTextfilePath is returned when no textfile destination is given.
var ErrEmptyTextfilePath = errors.New("empty metrics textfile path")

// WriteTextfile records the given runs into a private registry and writes it
// in the Prometheus textfile-collector format. The file is replaced atomically
// by client_golang.
func WriteTextfile(ctx context.Context, path string, runs ...RunStats) (err error) {
	if path == "" {
		return ErrEmptyTextfilePath
	}

	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return fmt.Errorf("create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	defer func() {
		err = errors.Join(err, mp.Shutdown(ctx))
	}()

	am, err := NewAnalysisMetrics(mp.Meter(meterName))
	if err != nil {
		return err
	}

	for _, rs := range runs {
		am.RecordRun(ctx, rs)
	}

	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: metricLastRun,
		Help: "Unix time of the last completed pacelog analysis.",
	})
	lastRun.SetToCurrentTime()

	err = registry.Register(lastRun)
	if err != nil {
		return fmt.Errorf("register %s: %w", metricLastRun, err)
	}

	err = prometheus.WriteToTextfile(path, registry)
	if err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}

	return nil
}
