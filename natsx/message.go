package natsx

import (
	"context"

	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	agentops "github.com/AgentOps-AI/agentops-sub000"
)

// TracedMsg wraps a jetstream.Msg with trace context.
// Use Context() to access the extracted trace context for downstream
// propagation.
type TracedMsg struct {
	jetstream.Msg
	ctx context.Context
}

// Context returns the context containing the extracted trace.
func (m *TracedMsg) Context() context.Context {
	if m.ctx == nil {
		return context.Background()
	}

	return m.ctx
}

// StartProcessSpan creates a process span for this message using the global
// TracerProvider. It returns a new context containing the span and an end
// function to call when processing is complete.
//
// The end function records the given error (if any), drains pending tool
// outcomes onto the span, and ends it.
//
// Example:
//
//	consumer.Consume(func(msg jetstream.Msg) {
//	    tracedMsg := natsx.NewTracedMsg(msg)
//	    ctx, endSpan := tracedMsg.StartProcessSpan()
//
//	    if err := handleEvent(ctx, msg.Data()); err != nil {
//	        endSpan(err)
//	        msg.Nak()
//	        return
//	    }
//	    endSpan(nil)
//	    msg.Ack()
//	})
func (m *TracedMsg) StartProcessSpan(opts ...Option) (context.Context, func(error)) {
	return m.StartProcessSpanWithTracer(nil, opts...)
}

// StartProcessSpanWithTracer creates a process span using the provided
// TracerProvider. If tp is nil, the global TracerProvider is used.
func (m *TracedMsg) StartProcessSpanWithTracer(
	tp trace.TracerProvider,
	opts ...Option,
) (context.Context, func(error)) {
	o := applyOptions(opts)
	tracer := getTracer(tp, o)

	stream := ""
	consumerName := ""
	subject := ""
	bodySize := 0

	if m.Msg != nil {
		if metadata, err := m.Msg.Metadata(); err == nil && metadata != nil {
			stream = metadata.Stream
			consumerName = metadata.Consumer
		}

		subject = m.Msg.Subject()
		bodySize = len(m.Msg.Data())
	}

	if o.stream != "" {
		stream = o.stream
	}

	spanName := opTypeProcess + " " + stream

	ctx, span := tracer.Start(m.Context(), spanName,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(processAttributes(stream, consumerName, subject, bodySize)...),
	)

	endFunc := func(err error) {
		if o.drainTools {
			agentops.DrainAndAttach(span)
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.End()
	}

	return ctx, endFunc
}

// NewTracedMsg creates a TracedMsg from a jetstream.Msg by extracting
// trace context from the message headers using the global propagator.
//
// Use this when you consume through your own mechanism and only need the
// propagated trace context without adopting [Consumer].
func NewTracedMsg(msg jetstream.Msg) *TracedMsg {
	return NewTracedMsgWithPropagator(msg, nil)
}

// NewTracedMsgWithPropagator creates a TracedMsg using the provided
// propagator. If prop is nil, the global propagator is used.
func NewTracedMsgWithPropagator(msg jetstream.Msg, prop propagation.TextMapPropagator) *TracedMsg {
	ctx := context.Background()

	if prop == nil {
		prop = otel.GetTextMapPropagator()
	}

	if msg != nil {
		if headers := msg.Headers(); headers != nil {
			ctx = prop.Extract(ctx, headerCarrier(headers))
		}
	}

	return &TracedMsg{
		Msg: msg,
		ctx: ctx,
	}
}

// TracedBatch wraps a jetstream.MessageBatch with tracing support.
type TracedBatch struct {
	batch      jetstream.MessageBatch
	msgChan    chan *TracedMsg
	ctx        context.Context
	extractCtx func(context.Context, jetstream.Msg) context.Context
}

// Messages returns a channel of traced messages.
// The channel blocks until messages arrive or the batch completes.
// Always check Error() after the channel closes to detect fetch failures.
func (b *TracedBatch) Messages() <-chan *TracedMsg {
	if b.msgChan != nil {
		return b.msgChan
	}

	b.msgChan = make(chan *TracedMsg)

	go func() {
		defer close(b.msgChan)

		for msg := range b.batch.Messages() {
			b.msgChan <- &TracedMsg{
				Msg: msg,
				ctx: b.extractCtx(b.ctx, msg),
			}
		}
	}()

	return b.msgChan
}

// Error returns any error that occurred during the fetch operation.
// Should be called after the Messages() channel is closed.
func (b *TracedBatch) Error() error {
	return b.batch.Error()
}
