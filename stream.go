package agentops

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
)

// Receiver is a pull-based stream: each Recv returns the next item, and
// io.EOF signals normal exhaustion. This is the shape exposed by gRPC
// streams, SSE decoders, and most LLM streaming clients.
type Receiver[T any] interface {
	Recv() (T, error)
}

// Aggregator accumulates per-item state while a stream is consumed and
// produces the final span attributes once the stream ends. One aggregator
// instance serves exactly one stream; implementations need no locking.
// Like extractors, aggregators must be side-effect free and their panics
// are absorbed.
type Aggregator[T any] interface {
	// Add observes one item as it passes through the wrapper.
	Add(item T)

	// Finish returns attributes computed from the accumulated state.
	Finish() AttributeMap
}

// StreamFunc is the shape of a target that returns a pull-based stream.
type StreamFunc[Req, T any] func(ctx context.Context, req Req) (Receiver[T], error)

// ChanFunc is the shape of a target that returns a channel of items.
type ChanFunc[Req, T any] func(ctx context.Context, req Req) (<-chan T, error)

// WrapRecv wraps a stream-returning target. One span opens per call and
// stays open across the entire consumption: each Recv feeds the item to a
// fresh aggregator (from newAgg) and yields it unchanged. On io.EOF the
// aggregator's final attributes are written and the span finishes OK
// before the io.EOF is returned; any other error finishes the span with
// ERROR and propagates unchanged.
//
// A caller that stops receiving without draining the stream leaves the
// span open; callers must consume to exhaustion or use [WrapScoped].
//
// Panics if fn is nil.
func WrapRecv[Req, T any](
	cfg WrapConfig,
	extract RequestExtractor[Req],
	newAgg func() Aggregator[T],
	fn StreamFunc[Req, T],
) StreamFunc[Req, T] {
	if fn == nil {
		panic("agentops: target function must not be nil")
	}

	return func(ctx context.Context, req Req) (Receiver[T], error) {
		if IsSuppressed(ctx) {
			return fn(ctx, req)
		}

		spanCtx, handle := Open(ctx, cfg.spanName(), cfg.Kind, safeExtractRequest(cfg, extract, req))

		stream, err := fn(spanCtx, req)
		if err != nil {
			handle.FinishError(err)
			return nil, err
		}

		var agg Aggregator[T]
		if newAgg != nil {
			agg = newAgg()
		}

		return &tracedReceiver[T]{
			stream: stream,
			handle: handle,
			agg:    agg,
			cfg:    cfg,
		}, nil
	}
}

// tracedReceiver forwards items from the underlying stream and finalizes
// the span exactly once on the terminal transition. The underlying stream
// was created with the span's context, so work it performs between pulls
// is parented to this span.
type tracedReceiver[T any] struct {
	stream Receiver[T]
	handle *SpanHandle
	agg    Aggregator[T]
	cfg    WrapConfig
}

// Recv pulls the next item, updating accumulation state. The item and any
// error are returned exactly as the underlying stream produced them.
func (r *tracedReceiver[T]) Recv() (T, error) {
	item, err := r.stream.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			r.handle.SetAttributes(safeFinish(r.cfg, r.agg))
			r.handle.FinishOK()
		} else {
			r.handle.FinishError(err)
		}

		return item, err
	}

	safeAdd(r.cfg, r.agg, item)

	return item, nil
}

// Unwrap returns the underlying stream.
func (r *tracedReceiver[T]) Unwrap() Receiver[T] {
	return r.stream
}

// WrapChan wraps a channel-returning target. Items are forwarded through a
// new channel by a goroutine that keeps the span open until the source
// channel closes (finish OK) or the call context is cancelled (finish
// ERROR with the context error). Finalization happens exactly once on
// whichever transition fires first.
//
// Panics if fn is nil.
func WrapChan[Req, T any](
	cfg WrapConfig,
	extract RequestExtractor[Req],
	newAgg func() Aggregator[T],
	fn ChanFunc[Req, T],
) ChanFunc[Req, T] {
	if fn == nil {
		panic("agentops: target function must not be nil")
	}

	return func(ctx context.Context, req Req) (<-chan T, error) {
		if IsSuppressed(ctx) {
			return fn(ctx, req)
		}

		spanCtx, handle := Open(ctx, cfg.spanName(), cfg.Kind, safeExtractRequest(cfg, extract, req))

		src, err := fn(spanCtx, req)
		if err != nil {
			handle.FinishError(err)
			return nil, err
		}

		var agg Aggregator[T]
		if newAgg != nil {
			agg = newAgg()
		}

		out := make(chan T)
		go func() {
			defer close(out)

			for {
				select {
				case item, ok := <-src:
					if !ok {
						handle.SetAttributes(safeFinish(cfg, agg))
						handle.FinishOK()

						return
					}
					safeAdd(cfg, agg, item)

					select {
					case out <- item:
					case <-spanCtx.Done():
						handle.FinishError(spanCtx.Err())
						return
					}
				case <-spanCtx.Done():
					handle.FinishError(spanCtx.Err())
					return
				}
			}
		}()

		return out, nil
	}
}

// safeAdd feeds one item to the aggregator, absorbing panics.
func safeAdd[T any](cfg WrapConfig, agg Aggregator[T], item T) {
	if agg == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			otel.Handle(fmt.Errorf("agentops: aggregator for %q panicked: %v", cfg.Target, r))
		}
	}()

	agg.Add(item)
}

// safeFinish computes final attributes from the aggregator, absorbing panics.
func safeFinish[T any](cfg WrapConfig, agg Aggregator[T]) (attrs AttributeMap) {
	if agg == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			attrs = nil
			otel.Handle(fmt.Errorf("agentops: aggregator for %q panicked: %v", cfg.Target, r))
		}
	}()

	return agg.Finish()
}
