package agentops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuppress(t *testing.T) {
	ctx := context.Background()
	assert.False(t, IsSuppressed(ctx))

	suppressed := Suppress(ctx)
	assert.True(t, IsSuppressed(suppressed))

	// The original context is untouched.
	assert.False(t, IsSuppressed(ctx))

	// Derived contexts inherit the flag.
	type ctxKey string
	child := context.WithValue(suppressed, ctxKey("k"), "v")
	assert.True(t, IsSuppressed(child))
}

func TestSuppress_StartIsPassThrough(t *testing.T) {
	exporter := setupTracing(t)

	ctx := Suppress(context.Background())
	spanCtx, span := Start(ctx, "chat fake-model")
	span.End()

	// No new span was created; the ambient (invalid) span came back.
	assert.False(t, span.SpanContext().IsValid())
	assert.Equal(t, ctx, spanCtx)
	assert.Empty(t, exporter.GetSpans())
}
