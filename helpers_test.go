package agentops

import (
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTracing points the engine at an in-memory exporter and returns it.
// Spans are exported synchronously on End.
func setupTracing(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	InitTracing(tp.Tracer("test"), DefaultNamer{})

	t.Cleanup(func() {
		InitTracing(nil, nil)
	})

	return exporter
}

// spanAttrs flattens a recorded span's attributes into a map for assertions.
func spanAttrs(span tracetest.SpanStub) map[string]any {
	m := make(map[string]any, len(span.Attributes))
	for _, attr := range span.Attributes {
		m[string(attr.Key)] = attr.Value.AsInterface()
	}

	return m
}
