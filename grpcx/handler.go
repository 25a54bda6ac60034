package grpcx

import (
	"context"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/stats"

	agentops "github.com/AgentOps-AI/agentops-sub000"
)

// suppressibleHandler skips the traced handler for RPCs whose context
// carries the engine's suppression flag. TagRPC records the decision so
// that the remaining callbacks for the same RPC stay consistent even if
// the flag is dropped from derived contexts.
type suppressibleHandler struct {
	traced stats.Handler
}

type rpcSuppressedKey struct{}

func (h *suppressibleHandler) TagRPC(ctx context.Context, info *stats.RPCTagInfo) context.Context {
	if agentops.IsSuppressed(ctx) {
		return context.WithValue(ctx, rpcSuppressedKey{}, true)
	}

	return h.traced.TagRPC(ctx, info)
}

func (h *suppressibleHandler) HandleRPC(ctx context.Context, s stats.RPCStats) {
	if suppressed, _ := ctx.Value(rpcSuppressedKey{}).(bool); suppressed {
		return
	}

	h.traced.HandleRPC(ctx, s)
}

func (h *suppressibleHandler) TagConn(ctx context.Context, info *stats.ConnTagInfo) context.Context {
	return h.traced.TagConn(ctx, info)
}

func (h *suppressibleHandler) HandleConn(ctx context.Context, s stats.ConnStats) {
	h.traced.HandleConn(ctx, s)
}

// ClientHandler returns a gRPC stats.Handler for client-side tracing and
// metrics that honors the engine's suppression flag: RPCs issued from a
// suppressed context produce no spans.
//
// This handler uses the globally registered TracerProvider, MeterProvider,
// and TextMapPropagator; ensure global providers have been initialized.
//
// For explicit provider injection, use [ClientHandlerWithProviders] instead.
func ClientHandler(opts ...otelgrpc.Option) stats.Handler {
	return &suppressibleHandler{traced: otelgrpc.NewClientHandler(opts...)}
}

// ClientHandlerWithProviders returns a suppression-aware gRPC stats.Handler
// for client-side tracing and metrics with explicitly provided
// TracerProvider, MeterProvider, and TextMapPropagator.
//
// If any provider is nil, the corresponding global provider will be used as
// fallback.
func ClientHandlerWithProviders(
	tp trace.TracerProvider,
	mp metric.MeterProvider,
	prop propagation.TextMapPropagator,
	opts ...otelgrpc.Option,
) stats.Handler {
	allOpts := buildProviderOptions(tp, mp, prop)
	allOpts = append(allOpts, opts...)

	return &suppressibleHandler{traced: otelgrpc.NewClientHandler(allOpts...)}
}

// ServerHandler returns a gRPC stats.Handler for server-side tracing and
// metrics. Server-side RPCs never originate inside an intercepted call
// site, so no suppression check applies.
//
// This handler uses the globally registered TracerProvider, MeterProvider,
// and TextMapPropagator; ensure global providers have been initialized.
//
// For explicit provider injection, use [ServerHandlerWithProviders] instead.
func ServerHandler(opts ...otelgrpc.Option) stats.Handler {
	return otelgrpc.NewServerHandler(opts...)
}

// ServerHandlerWithProviders returns a gRPC stats.Handler for server-side
// tracing and metrics with explicitly provided TracerProvider,
// MeterProvider, and TextMapPropagator.
//
// If any provider is nil, the corresponding global provider will be used as
// fallback.
func ServerHandlerWithProviders(
	tp trace.TracerProvider,
	mp metric.MeterProvider,
	prop propagation.TextMapPropagator,
	opts ...otelgrpc.Option,
) stats.Handler {
	allOpts := buildProviderOptions(tp, mp, prop)
	allOpts = append(allOpts, opts...)

	return otelgrpc.NewServerHandler(allOpts...)
}

// buildProviderOptions creates otelgrpc.Option slice from providers.
// Falls back to global providers when explicit providers are nil.
func buildProviderOptions(
	tp trace.TracerProvider,
	mp metric.MeterProvider,
	prop propagation.TextMapPropagator,
) []otelgrpc.Option {
	var opts []otelgrpc.Option

	if tp != nil {
		opts = append(opts, otelgrpc.WithTracerProvider(tp))
	} else {
		opts = append(opts, otelgrpc.WithTracerProvider(otel.GetTracerProvider()))
	}

	if mp != nil {
		opts = append(opts, otelgrpc.WithMeterProvider(mp))
	} else {
		opts = append(opts, otelgrpc.WithMeterProvider(otel.GetMeterProvider()))
	}

	if prop != nil {
		opts = append(opts, otelgrpc.WithPropagators(prop))
	} else {
		opts = append(opts, otelgrpc.WithPropagators(otel.GetTextMapPropagator()))
	}

	return opts
}
