package natsx

import (
	"context"
	"strconv"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	agentops "github.com/AgentOps-AI/agentops-sub000"
)

// Publisher wraps JetStream publish operations with OpenTelemetry tracing.
//
// A publish issued from a context carrying the engine's suppression flag
// creates no span. The message is still delivered, and whatever trace
// context the caller holds is still injected into the headers so downstream
// consumers can link back to the suppressing operation's parent.
type Publisher struct {
	js     jetstream.JetStream
	tracer trace.Tracer
	prop   propagation.TextMapPropagator
	opts   options
}

// NewPublisher creates a Publisher with tracing using the global providers.
func NewPublisher(js jetstream.JetStream, opts ...Option) *Publisher {
	return NewPublisherWithProviders(js, nil, nil, opts...)
}

// NewPublisherWithProviders creates a Publisher with explicit providers.
// If tp is nil, the global TracerProvider is used.
// If prop is nil, the global TextMapPropagator is used (or opts.prop if set).
//
// Panics if js is nil.
func NewPublisherWithProviders(
	js jetstream.JetStream,
	tp trace.TracerProvider,
	prop propagation.TextMapPropagator,
	opts ...Option,
) *Publisher {
	if js == nil {
		panic("agentops/natsx: JetStream must not be nil")
	}
	o := applyOptions(opts)

	// Explicit prop parameter takes precedence over option
	if prop != nil {
		o.prop = prop
	}

	return &Publisher{
		js:     js,
		tracer: getTracer(tp, o),
		prop:   getPropagator(o),
		opts:   o,
	}
}

// JetStream returns the underlying JetStream client for non-traced operations.
func (p *Publisher) JetStream() jetstream.JetStream {
	return p.js
}

// Publish publishes a message with tracing.
// A producer span is created and trace context is injected into message
// headers, unless the context is suppressed.
func (p *Publisher) Publish(
	ctx context.Context,
	subject string,
	data []byte,
	opts ...jetstream.PublishOpt,
) (*jetstream.PubAck, error) {
	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header:  make(nats.Header),
	}

	return p.PublishMsg(ctx, msg, opts...)
}

// PublishMsg publishes a message with tracing.
// If msg.Header is nil, it is initialized before injecting trace context.
func (p *Publisher) PublishMsg(
	ctx context.Context,
	msg *nats.Msg,
	opts ...jetstream.PublishOpt,
) (*jetstream.PubAck, error) {
	if msg.Header == nil {
		msg.Header = make(nats.Header)
	}

	if agentops.IsSuppressed(ctx) {
		p.prop.Inject(ctx, headerCarrier(msg.Header))

		return p.js.PublishMsg(ctx, msg, opts...)
	}

	subject := msg.Subject
	spanName := opTypePublish + " " + subject

	ctx, span := p.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(publishAttributes(subject, "", len(msg.Data))...),
	)
	defer span.End()

	p.prop.Inject(ctx, headerCarrier(msg.Header))

	ack, err := p.js.PublishMsg(ctx, msg, opts...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	if ack != nil {
		span.SetAttributes(attribute.String(attrMessagingMessageID, strconv.FormatUint(ack.Sequence, 10)))
	}

	return ack, nil
}
