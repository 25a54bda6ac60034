package agentops

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

func TestSpanHandle_FinishOK(t *testing.T) {
	exporter := setupTracing(t)

	_, handle := Open(context.Background(), "chat gpt-4o", oteltrace.SpanKindClient, AttributeMap{
		"gen_ai.request.model": "gpt-4o",
	})

	assert.False(t, handle.Finished())
	handle.FinishOK()
	assert.True(t, handle.Finished())

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	span := spans[0]
	assert.Equal(t, "chat gpt-4o", span.Name)
	assert.Equal(t, oteltrace.SpanKindClient, span.SpanKind)
	assert.Equal(t, codes.Ok, span.Status.Code)
	assert.Equal(t, "gpt-4o", spanAttrs(span)["gen_ai.request.model"])
}

func TestSpanHandle_FinishIsIdempotent(t *testing.T) {
	exporter := setupTracing(t)

	_, handle := Open(context.Background(), "chat", oteltrace.SpanKindClient, nil)

	handle.FinishOK()
	handle.FinishOK()
	handle.FinishError(errors.New("too late"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Empty(t, spans[0].Events)
}

func TestSpanHandle_FinishError(t *testing.T) {
	exporter := setupTracing(t)

	_, handle := Open(context.Background(), "chat", oteltrace.SpanKindClient, nil)

	handle.FinishError(errors.New("rate limited"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	span := spans[0]
	assert.Equal(t, codes.Error, span.Status.Code)
	assert.Equal(t, "rate limited", span.Status.Description)
	require.NotEmpty(t, span.Events)
	assert.Equal(t, "exception", span.Events[0].Name)
}

func TestSpanHandle_FinishErrorNil_FinishesOK(t *testing.T) {
	exporter := setupTracing(t)

	_, handle := Open(context.Background(), "chat", oteltrace.SpanKindClient, nil)

	handle.FinishError(nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
}

func TestSpanHandle_WriteAfterFinish_Ignored(t *testing.T) {
	exporter := setupTracing(t)

	_, handle := Open(context.Background(), "chat", oteltrace.SpanKindClient, nil)

	handle.FinishOK()
	handle.SetAttributes(AttributeMap{"gen_ai.response.id": "late"})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.NotContains(t, spanAttrs(spans[0]), "gen_ai.response.id")
}

func TestSpanHandle_SetAttributes_MergesBeforeFinish(t *testing.T) {
	exporter := setupTracing(t)

	_, handle := Open(context.Background(), "chat", oteltrace.SpanKindClient, AttributeMap{
		"gen_ai.request.model": "gpt-4o",
	})

	handle.SetAttributes(AttributeMap{"gen_ai.response.id": "resp-1"})
	handle.SetAttributes(AttributeMap{"gen_ai.response.id": "resp-2"})
	handle.FinishOK()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	attrs := spanAttrs(spans[0])
	assert.Equal(t, "gpt-4o", attrs["gen_ai.request.model"])
	// Last write wins per key.
	assert.Equal(t, "resp-2", attrs["gen_ai.response.id"])
}

func TestSpanHandle_ChildOfAmbientSpan(t *testing.T) {
	exporter := setupTracing(t)

	ctx, parent := Open(context.Background(), "invoke_agent researcher", oteltrace.SpanKindInternal, nil)
	_, child := Open(ctx, "chat gpt-4o", oteltrace.SpanKindClient, nil)

	child.FinishOK()
	parent.FinishOK()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	childSpan, parentSpan := spans[0], spans[1]
	assert.Equal(t, parentSpan.SpanContext.TraceID(), childSpan.SpanContext.TraceID())
	assert.Equal(t, parentSpan.SpanContext.SpanID(), childSpan.Parent.SpanID())
}

func TestSpanHandle_NilSafe(t *testing.T) {
	var handle *SpanHandle

	assert.NotPanics(t, func() {
		handle.SetAttributes(AttributeMap{"k": "v"})
		handle.FinishOK()
		handle.FinishError(errors.New("x"))
		assert.False(t, handle.Finished())
		assert.Nil(t, handle.Span())
	})
}
