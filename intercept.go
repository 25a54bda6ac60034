package agentops

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
)

// Func is the shape of a unary target: one request in, one result out.
type Func[Req, Res any] func(ctx context.Context, req Req) (Res, error)

// WrapConfig describes one interception point. Target is the identity used
// for install/uninstall idempotency (e.g. "openai.chat.completions.create");
// Name is the span display name and falls back to Target when empty.
type WrapConfig struct {
	// Target is the instrumented call path. It is the registry key.
	Target string

	// Name is the span name. Defaults to Target.
	Name string

	// Kind is the span kind (client, internal, producer, ...).
	Kind trace.SpanKind

	// Streaming marks targets whose result is consumed incrementally.
	Streaming bool

	// Async marks targets consumed from another goroutine (channel streams).
	Async bool
}

func (c WrapConfig) spanName() string {
	if c.Name != "" {
		return c.Name
	}

	return c.Target
}

// WrapFunc wraps a unary target so that every call produces exactly one
// span. The extractor runs before the call with a nil result and again
// after a successful call; its failures never change what the target
// returns. A target error is recorded on the span, sets status ERROR, and
// is returned unchanged. A suppressed context bypasses instrumentation
// entirely.
//
// Panics if fn is nil.
func WrapFunc[Req, Res any](cfg WrapConfig, extract Extractor[Req, Res], fn Func[Req, Res]) Func[Req, Res] {
	if fn == nil {
		panic("agentops: target function must not be nil")
	}

	return func(ctx context.Context, req Req) (Res, error) {
		if IsSuppressed(ctx) {
			return fn(ctx, req)
		}

		spanCtx, handle := Open(ctx, cfg.spanName(), cfg.Kind, safeExtract(cfg, extract, req, nil))

		// A panicking target is recorded before the panic continues.
		defer func() {
			if r := recover(); r != nil {
				handle.FinishError(fmt.Errorf("panic: %v", r))
				panic(r)
			}
		}()

		res, err := fn(spanCtx, req)
		if err != nil {
			handle.FinishError(err)
			return res, err
		}

		handle.SetAttributes(safeExtract(cfg, extract, req, &res))
		handle.FinishOK()

		return res, nil
	}
}
