package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/pacelog/pkg/observability"
)

func spanAttrMap(span tracetest.SpanStub) map[string]any {
	out := make(map[string]any, len(span.Attributes))
	for _, kv := range span.Attributes {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}

	return out
}

func recordSpan(t *testing.T, attrs ...attribute.KeyValue) map[string]any {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(observability.NewAttributeFilter(sdktrace.NewSimpleSpanProcessor(exporter))),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.SetAttributes(attrs...)
	span.End()

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	require.NoError(t, tp.ForceFlush(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	return spanAttrMap(spans[0])
}

func TestAttributeFilter_ShutdownReachesExporter(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(observability.NewAttributeFilter(sdktrace.NewSimpleSpanProcessor(exporter))),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.End()

	require.Len(t, exporter.GetSpans(), 1)

	// The in-memory exporter drops its spans on shutdown.
	require.NoError(t, tp.Shutdown(context.Background()))
	assert.Empty(t, exporter.GetSpans())
}

func TestAttributeFilter_AllowsKnownPrefixes(t *testing.T) {
	t.Parallel()

	attrs := recordSpan(t,
		attribute.Int64("pacelog.signals", 4),
		attribute.String("error.type", "malformed"),
		attribute.Bool("error", true),
	)

	assert.Equal(t, int64(4), attrs["pacelog.signals"])
	assert.Equal(t, "malformed", attrs["error.type"])
	assert.Equal(t, true, attrs["error"])
}

func TestAttributeFilter_DropsUnknownAndBlocked(t *testing.T) {
	t.Parallel()

	attrs := recordSpan(t,
		attribute.String(observability.AttrLogPath, "/home/alice/run.log"),
		attribute.String("user.name", "alice"),
		attribute.Int64("pacelog.events", 10),
	)

	assert.NotContains(t, attrs, observability.AttrLogPath)
	assert.NotContains(t, attrs, "user.name")
	assert.Equal(t, int64(10), attrs["pacelog.events"])
}
