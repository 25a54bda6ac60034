package natsx

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	agentops "github.com/AgentOps-AI/agentops-sub000"
)

// Handler wraps a handler function to add process spans.
// The returned jetstream.MessageHandler extracts trace context from headers,
// creates a process span with OTel messaging attributes, then calls your
// handler. Before the span ends, pending tool outcomes recorded against it
// are drained onto the span (disable with WithToolDraining(false)).
//
// The stream name is extracted from message metadata. Use WithStream to
// override if needed.
//
// Example:
//
//	consumer.Consume(natsx.Handler(func(msg *natsx.TracedMsg) {
//	    ctx := msg.Context()
//	    handleEvent(ctx, msg.Data())
//	    msg.Ack()
//	}))
func Handler(
	handler func(*TracedMsg),
	opts ...Option,
) jetstream.MessageHandler {
	return HandlerWithProviders(handler, nil, nil, opts...)
}

// HandlerWithProviders wraps a handler with explicit providers.
// If tp is nil, the global TracerProvider is used.
// If prop is nil, the global TextMapPropagator is used.
//
// Panics if handler is nil.
func HandlerWithProviders(
	handler func(*TracedMsg),
	tp trace.TracerProvider,
	prop propagation.TextMapPropagator,
	opts ...Option,
) jetstream.MessageHandler {
	if handler == nil {
		panic("agentops/natsx: handler must not be nil")
	}
	o := applyOptions(opts)

	if prop != nil {
		o.prop = prop
	}

	tracer := getTracer(tp, o)
	propagator := getPropagator(o)

	return func(msg jetstream.Msg) {
		parentCtx := context.Background()
		if headers := msg.Headers(); headers != nil {
			parentCtx = propagator.Extract(parentCtx, headerCarrier(headers))
		}

		stream := ""
		consumerName := ""

		if metadata, err := msg.Metadata(); err == nil && metadata != nil {
			stream = metadata.Stream
			consumerName = metadata.Consumer
		}

		if o.stream != "" {
			stream = o.stream
		}

		spanName := opTypeProcess + " " + stream
		spanCtx, span := tracer.Start(parentCtx, spanName,
			trace.WithSpanKind(trace.SpanKindConsumer),
			trace.WithAttributes(processAttributes(stream, consumerName, msg.Subject(), len(msg.Data()))...),
		)

		tracedMsg := &TracedMsg{
			Msg: msg,
			ctx: spanCtx,
		}

		// End the span on every exit path, attaching tool outcomes first.
		// A panic in the handler is recorded and re-raised.
		defer func() {
			if o.drainTools {
				agentops.DrainAndAttach(span)
			}

			if r := recover(); r != nil {
				span.RecordError(fmt.Errorf("panic: %v", r))
				span.SetStatus(codes.Error, "panic in handler")
				span.End()
				panic(r)
			}
			span.End()
		}()

		handler(tracedMsg)
	}
}
