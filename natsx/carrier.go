package natsx

import (
	"context"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// headerCarrier adapts nats.Header to propagation.TextMapCarrier so trace
// context can ride on message headers.
type headerCarrier nats.Header

func (c headerCarrier) Get(key string) string {
	vals := nats.Header(c).Values(key)
	if len(vals) > 0 {
		return vals[0]
	}

	return ""
}

func (c headerCarrier) Set(key, value string) {
	nats.Header(c).Set(key, value)
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}

	return keys
}

// Inject injects trace context into NATS message headers.
// If msg.Header is nil, it is initialized first.
// Uses the globally registered TextMapPropagator.
func Inject(ctx context.Context, msg *nats.Msg) {
	if msg.Header == nil {
		msg.Header = make(nats.Header)
	}

	otel.GetTextMapPropagator().Inject(ctx, headerCarrier(msg.Header))
}

// InjectWithPropagator injects trace context using a specific propagator.
// If msg.Header is nil, it is initialized first.
func InjectWithPropagator(ctx context.Context, msg *nats.Msg, prop propagation.TextMapPropagator) {
	if msg.Header == nil {
		msg.Header = make(nats.Header)
	}

	prop.Inject(ctx, headerCarrier(msg.Header))
}

// Extract extracts trace context from NATS message headers.
// Returns a new context containing the extracted trace information.
// Uses the globally registered TextMapPropagator.
func Extract(ctx context.Context, header nats.Header) context.Context {
	if header == nil {
		return ctx
	}

	return otel.GetTextMapPropagator().Extract(ctx, headerCarrier(header))
}

// ExtractWithPropagator extracts trace context using a specific propagator.
func ExtractWithPropagator(
	ctx context.Context,
	header nats.Header,
	prop propagation.TextMapPropagator,
) context.Context {
	if header == nil {
		return ctx
	}

	return prop.Extract(ctx, headerCarrier(header))
}
