package grpcx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/metadata"
)

func setTraceContextPropagator(t *testing.T) {
	t.Helper()

	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })
}

func TestInjectExtract_RoundTrip(t *testing.T) {
	setTraceContextPropagator(t)

	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	md := metadata.New(nil)
	Inject(ctx, md)

	require.NotEmpty(t, md.Get("traceparent"))

	extracted := Extract(context.Background(), md)
	got := trace.SpanContextFromContext(extracted)

	assert.Equal(t, traceID, got.TraceID())
	assert.Equal(t, spanID, got.SpanID())
	assert.True(t, got.IsRemote())
}

func TestExtract_EmptyMetadata(t *testing.T) {
	setTraceContextPropagator(t)

	ctx := Extract(context.Background(), metadata.New(nil))
	assert.False(t, trace.SpanContextFromContext(ctx).IsValid())
}

func TestMetadataCarrier(t *testing.T) {
	md := metadata.New(nil)
	carrier := metadataCarrier(md)

	carrier.Set("traceparent", "00-abc-def-01")
	assert.Equal(t, "00-abc-def-01", carrier.Get("traceparent"))
	assert.Empty(t, carrier.Get("missing"))
	assert.Contains(t, carrier.Keys(), "traceparent")
}
