package agentops

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// Scoped pairs an acquired resource with its release. It is the Go
// rendering of a context-managed resource: the holder uses Value during
// the scope and must call Close (or CloseWith) exactly once at the end.
// Close is idempotent; later calls are no-ops returning nil.
type Scoped[Res any] struct {
	value   Res
	release func() error
	closed  atomic.Bool

	// Set by WrapScoped. Nil when the scope is not instrumented.
	handle      *SpanHandle
	finishAttrs func() AttributeMap
}

// NewScoped wraps an acquired resource and its release function.
// release may be nil for resources that need no cleanup.
func NewScoped[Res any](value Res, release func() error) *Scoped[Res] {
	return &Scoped[Res]{value: value, release: release}
}

// Value returns the acquired resource.
func (s *Scoped[Res]) Value() Res {
	return s.value
}

// Close releases the resource and finalizes the scope with OK status.
func (s *Scoped[Res]) Close() error {
	return s.CloseWith(nil)
}

// CloseWith releases the resource and finalizes the scope. A non-nil err
// is the outcome of the scope body (the __exit__ exception of the source
// protocol): the span finishes with ERROR and err recorded. When err is
// nil but the release itself fails, the release error decides the status.
// Final attributes are computed after release, when the resource exposes
// its terminal state. Only the first call has any effect.
func (s *Scoped[Res]) CloseWith(err error) error {
	if s == nil || !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	var releaseErr error
	if s.release != nil {
		releaseErr = s.release()
	}

	if s.handle != nil {
		if s.finishAttrs != nil {
			s.handle.SetAttributes(s.finishAttrs())
		}
		switch {
		case err != nil:
			s.handle.FinishError(err)
		case releaseErr != nil:
			s.handle.FinishError(releaseErr)
		default:
			s.handle.FinishOK()
		}
	}

	return releaseErr
}

// ScopedFunc is the shape of a target that acquires a scoped resource.
type ScopedFunc[Req, Res any] func(ctx context.Context, req Req) (*Scoped[Res], error)

// WrapScoped wraps a resource-acquiring target. The span opens before the
// acquisition, is enriched once the resource is known, and is finalized
// exactly once inside Close/CloseWith, which also re-runs the extractor so
// terminal state (counters, usage) lands on the span. Acquisition failure
// finishes the span with ERROR and returns the error unchanged. Closure is
// guaranteed on every path the caller routes through CloseWith, including
// cancellation.
//
// Panics if fn is nil.
func WrapScoped[Req, Res any](cfg WrapConfig, extract Extractor[Req, Res], fn ScopedFunc[Req, Res]) ScopedFunc[Req, Res] {
	if fn == nil {
		panic("agentops: target function must not be nil")
	}

	return func(ctx context.Context, req Req) (*Scoped[Res], error) {
		if IsSuppressed(ctx) {
			return fn(ctx, req)
		}

		spanCtx, handle := Open(ctx, cfg.spanName(), cfg.Kind, safeExtract(cfg, extract, req, nil))

		scope, err := fn(spanCtx, req)
		if err != nil {
			handle.FinishError(err)
			return nil, err
		}

		value := scope.value
		handle.SetAttributes(safeExtract(cfg, extract, req, &value))

		scope.handle = handle
		scope.finishAttrs = func() AttributeMap {
			v := scope.value
			return safeExtract(cfg, extract, req, &v)
		}

		return scope, nil
	}
}

// Lazy materializes a value exactly once and caches it, so a call site can
// either resolve it directly with Get or run a bounded scope with Do. Both
// usage styles observe the same instance.
type Lazy[T any] struct {
	once    sync.Once
	resolve func(context.Context) (T, error)
	value   T
	err     error
}

// NewLazy returns a Lazy that resolves through fn on first use.
func NewLazy[T any](fn func(context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{resolve: fn}
}

// Get resolves the value, materializing it on the first call. Later calls
// return the cached value and error regardless of ctx.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	l.once.Do(func() {
		l.value, l.err = l.resolve(ctx)
	})

	return l.value, l.err
}

// Do resolves the value, runs fn with it, and closes the value afterwards
// when it implements io.Closer, on all paths including a panicking fn.
// When the value is a [Scoped] resource, the scope outcome is forwarded to
// CloseWith so the span status reflects how the scope ended: fn's error, or
// the panic that aborted it. A panic is re-raised after the close.
func (l *Lazy[T]) Do(ctx context.Context, fn func(T) error) (err error) {
	value, resolveErr := l.Get(ctx)
	if resolveErr != nil {
		return resolveErr
	}

	defer func() {
		if r := recover(); r != nil {
			_ = closeValue(value, fmt.Errorf("panic: %v", r))
			panic(r)
		}

		closeErr := closeValue(value, err)
		if err == nil {
			err = closeErr
		}
	}()

	return fn(value)
}

// closeValue releases v with the scope outcome when it supports closing.
func closeValue(v any, outcome error) error {
	switch c := v.(type) {
	case interface{ CloseWith(error) error }:
		return c.CloseWith(outcome)
	case io.Closer:
		return c.Close()
	}

	return nil
}
