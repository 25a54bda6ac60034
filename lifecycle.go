package agentops

import (
	"context"
	"errors"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AgentOps-AI/agentops-sub000/internal/tracker"
)

// errWriteAfterFinish is reported via otel.Handle when attributes arrive
// after a handle has been finalized. It never propagates to the caller.
var errWriteAfterFinish = errors.New("agentops: attributes written after span finalization, ignored")

// SpanHandle owns the create -> populate -> finalize protocol for one span.
// FinishOK and FinishError are idempotent: the first call ends the span,
// every later call is a no-op. Attribute writes after finalization are
// absorbed and reported via otel.Handle; instrumentation bugs must never
// crash or alter the host program.
type SpanHandle struct {
	span  trace.Span
	ended atomic.Bool
}

// Open creates a span named name as a child of the ambient span in ctx
// (or as a root if none), applying the configured [SpanNamer]. It returns
// the context carrying the new span and a handle controlling finalization.
func Open(ctx context.Context, name string, kind trace.SpanKind, attrs AttributeMap) (context.Context, *SpanHandle) {
	ctx, span := tracker.Start(ctx, name,
		trace.WithSpanKind(kind),
		trace.WithAttributes(attrs.KeyValues()...),
	)

	return ctx, &SpanHandle{span: span}
}

// Span returns the underlying span.
func (h *SpanHandle) Span() trace.Span {
	if h == nil {
		return nil
	}

	return h.span
}

// SetAttributes merges attrs into the span, last write wins per key.
// Calls after finalization are ignored.
func (h *SpanHandle) SetAttributes(attrs AttributeMap) {
	if h == nil || h.span == nil || len(attrs) == 0 {
		return
	}
	if h.ended.Load() {
		otel.Handle(errWriteAfterFinish)
		return
	}

	h.span.SetAttributes(attrs.KeyValues()...)
}

// Finished reports whether the handle has been finalized.
func (h *SpanHandle) Finished() bool {
	return h != nil && h.ended.Load()
}

// FinishOK sets status OK and ends the span. No-op after the first finish.
func (h *SpanHandle) FinishOK() {
	if h == nil || h.span == nil || !h.ended.CompareAndSwap(false, true) {
		return
	}

	h.span.SetStatus(codes.Ok, "")
	h.span.End()
}

// FinishError records err, sets status ERROR with its message, and ends
// the span. The caller remains responsible for returning err unchanged;
// this method never swallows or wraps it. A nil err finishes with OK.
// No-op after the first finish.
func (h *SpanHandle) FinishError(err error) {
	if err == nil {
		h.FinishOK()
		return
	}
	if h == nil || h.span == nil || !h.ended.CompareAndSwap(false, true) {
		return
	}

	h.span.RecordError(err)
	h.span.SetStatus(codes.Error, err.Error())
	h.span.End()
}
