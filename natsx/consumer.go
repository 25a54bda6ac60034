package natsx

import (
	"context"

	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Consumer wraps a jetstream.Consumer with OpenTelemetry tracing.
type Consumer struct {
	consumer jetstream.Consumer
	stream   string
	tracer   trace.Tracer
	prop     propagation.TextMapPropagator
	opts     options
}

// WrapConsumer wraps a Consumer with tracing using the global providers.
func WrapConsumer(c jetstream.Consumer, stream string, opts ...Option) *Consumer {
	return WrapConsumerWithProviders(c, stream, nil, nil, opts...)
}

// WrapConsumerWithProviders wraps a Consumer with explicit providers.
// If tp is nil, the global TracerProvider is used.
// If prop is nil, the global TextMapPropagator is used (or opts.prop if set).
//
// Panics if c is nil.
func WrapConsumerWithProviders(
	c jetstream.Consumer,
	stream string,
	tp trace.TracerProvider,
	prop propagation.TextMapPropagator,
	opts ...Option,
) *Consumer {
	if c == nil {
		panic("agentops/natsx: Consumer must not be nil")
	}
	o := applyOptions(opts)

	if prop != nil {
		o.prop = prop
	}

	return &Consumer{
		consumer: c,
		stream:   stream,
		tracer:   getTracer(tp, o),
		prop:     getPropagator(o),
		opts:     o,
	}
}

// Consumer returns the underlying jetstream.Consumer for non-traced
// operations.
func (tc *Consumer) Consumer() jetstream.Consumer {
	return tc.consumer
}

func (tc *Consumer) startFetchSpan() (context.Context, trace.Span) {
	consumerName := ""
	if info := tc.consumer.CachedInfo(); info != nil {
		consumerName = info.Name
	}

	spanName := opTypeReceive + " " + tc.stream

	return tc.tracer.Start(context.Background(), spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(receiveAttributes(tc.stream, consumerName)...),
	)
}

// Fetch retrieves a batch of messages with tracing.
// Returns a TracedBatch where each message has trace context extracted.
func (tc *Consumer) Fetch(batch int, opts ...jetstream.FetchOpt) (*TracedBatch, error) {
	ctx, span := tc.startFetchSpan()

	msgBatch, err := tc.consumer.Fetch(batch, opts...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()

		return nil, err
	}

	span.End()

	return &TracedBatch{
		batch:      msgBatch,
		ctx:        ctx,
		extractCtx: tc.extractContext,
	}, nil
}

// Next retrieves a single message with tracing.
func (tc *Consumer) Next(opts ...jetstream.FetchOpt) (*TracedMsg, error) {
	_, span := tc.startFetchSpan()

	msg, err := tc.consumer.Next(opts...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()

		return nil, err
	}

	span.End()

	return &TracedMsg{
		Msg: msg,
		ctx: tc.extractContext(context.Background(), msg),
	}, nil
}

// Consume starts consuming messages with the provided handler.
// For traced handlers, use [Handler] to wrap the callback.
func (tc *Consumer) Consume(
	handler jetstream.MessageHandler,
	opts ...jetstream.PullConsumeOpt,
) (jetstream.ConsumeContext, error) {
	return tc.consumer.Consume(handler, opts...)
}

// extractContext extracts trace context from a message's headers.
func (tc *Consumer) extractContext(ctx context.Context, msg jetstream.Msg) context.Context {
	if msg == nil {
		return ctx
	}

	headers := msg.Headers()
	if headers == nil {
		return ctx
	}

	return tc.prop.Extract(ctx, headerCarrier(headers))
}
