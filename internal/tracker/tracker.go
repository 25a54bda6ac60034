// Package tracker holds the process-wide interception state: the tracer
// spans are created on, the namer applied to every operation name, and the
// suppression flag that turns every instrumented entry point into a
// pass-through.
package tracker

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"
)

// Namer formats operation names into span names.
type Namer interface {
	Name(string) string
}

type identityNamer struct{}

func (identityNamer) Name(s string) string { return s }

type state struct {
	tracer trace.Tracer
	namer  Namer
}

var global atomic.Pointer[state]

func init() {
	global.Store(&state{namer: identityNamer{}})
}

// Set updates the global tracing state.
// If n is nil, names pass through unchanged.
func Set(t trace.Tracer, n Namer) {
	if n == nil {
		n = identityNamer{}
	}
	global.Store(&state{tracer: t, namer: n})
}

type suppressKey struct{}

// Suppress marks ctx so that Start becomes a pass-through. Already
// suppressed contexts are returned as-is.
func Suppress(ctx context.Context) context.Context {
	if Suppressed(ctx) {
		return ctx
	}

	return context.WithValue(ctx, suppressKey{}, true)
}

// Suppressed reports whether instrumentation is suppressed for ctx.
func Suppressed(ctx context.Context) bool {
	v, _ := ctx.Value(suppressKey{}).(bool)
	return v
}

// Start begins a new span using the global tracer and namer. When no tracer
// is configured, or ctx carries the suppression flag, it returns the ambient
// span from ctx unchanged.
func Start(ctx context.Context, operation string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	s := global.Load()
	if s.tracer == nil || Suppressed(ctx) {
		return ctx, trace.SpanFromContext(ctx)
	}

	return s.tracer.Start(ctx, s.namer.Name(operation), opts...)
}

// Tracer returns the configured global tracer, or nil if not set.
func Tracer() trace.Tracer {
	return global.Load().tracer
}
