package httpx

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	agentops "github.com/AgentOps-AI/agentops-sub000"
)

// suppressibleTransport routes suppressed requests around the traced
// transport so that no duplicate span is produced.
type suppressibleTransport struct {
	base   http.RoundTripper
	traced http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *suppressibleTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if agentops.IsSuppressed(req.Context()) {
		return t.base.RoundTrip(req)
	}

	return t.traced.RoundTrip(req)
}

// Transport wraps an http.RoundTripper with OTel tracing for client calls,
// honoring the engine's suppression flag.
//
// This transport uses the globally registered TracerProvider, MeterProvider,
// and TextMapPropagator; ensure global providers have been initialized. For
// explicit provider injection, use [TransportWithProviders] instead.
//
// If base is nil, http.DefaultTransport is used.
//
// Usage:
//
//	client := &http.Client{
//	    Transport: httpx.Transport(http.DefaultTransport),
//	}
func Transport(base http.RoundTripper, opts ...otelhttp.Option) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	return &suppressibleTransport{
		base:   base,
		traced: otelhttp.NewTransport(base, opts...),
	}
}

// TransportWithProviders wraps an http.RoundTripper with OTel tracing using
// explicitly provided TracerProvider, MeterProvider, and TextMapPropagator,
// honoring the engine's suppression flag.
//
// If any provider is nil, the corresponding global provider is used as
// fallback. If base is nil, http.DefaultTransport is used.
func TransportWithProviders(
	base http.RoundTripper,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
	prop propagation.TextMapPropagator,
	opts ...otelhttp.Option,
) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	allOpts := buildProviderOptions(tp, mp, prop)
	allOpts = append(allOpts, opts...)

	return &suppressibleTransport{
		base:   base,
		traced: otelhttp.NewTransport(base, allOpts...),
	}
}

// buildProviderOptions creates otelhttp.Option slice from providers.
// Falls back to global providers when explicit providers are nil.
func buildProviderOptions(
	tp trace.TracerProvider,
	mp metric.MeterProvider,
	prop propagation.TextMapPropagator,
) []otelhttp.Option {
	var opts []otelhttp.Option

	if tp != nil {
		opts = append(opts, otelhttp.WithTracerProvider(tp))
	} else {
		opts = append(opts, otelhttp.WithTracerProvider(otel.GetTracerProvider()))
	}

	if mp != nil {
		opts = append(opts, otelhttp.WithMeterProvider(mp))
	} else {
		opts = append(opts, otelhttp.WithMeterProvider(otel.GetMeterProvider()))
	}

	if prop != nil {
		opts = append(opts, otelhttp.WithPropagators(prop))
	} else {
		opts = append(opts, otelhttp.WithPropagators(otel.GetTextMapPropagator()))
	}

	return opts
}
