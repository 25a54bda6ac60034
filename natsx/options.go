package natsx

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/AgentOps-AI/agentops-sub000/internal/tracker"
)

const instrumentationName = "agentops/natsx"

// options holds configuration for the tracing wrappers.
type options struct {
	tracerName string
	prop       propagation.TextMapPropagator
	stream     string // Override stream name for spans
	drainTools bool   // Attach pending tool outcomes to process spans
}

func defaultOptions() options {
	return options{
		tracerName: instrumentationName,
		drainTools: true,
	}
}

// Option configures tracing behavior.
type Option func(*options)

// WithTracerName sets a custom tracer name.
// Default is the package import path.
func WithTracerName(name string) Option {
	return func(o *options) {
		o.tracerName = name
	}
}

// WithPropagator sets a custom propagator for context injection/extraction.
// If not set, the global propagator is used.
func WithPropagator(prop propagation.TextMapPropagator) Option {
	return func(o *options) {
		o.prop = prop
	}
}

// WithStream sets an explicit stream name for span naming and attributes.
// Use this when the stream name cannot be determined from message metadata,
// or to override the auto-detected stream name.
func WithStream(stream string) Option {
	return func(o *options) {
		o.stream = stream
	}
}

// WithToolDraining enables or disables draining pending tool outcomes onto
// process spans. Default is true.
func WithToolDraining(enabled bool) Option {
	return func(o *options) {
		o.drainTools = enabled
	}
}

// applyOptions applies option functions to the default options.
func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// getTracer returns a tracer from the provider with the configured name.
func getTracer(tp trace.TracerProvider, opts options) trace.Tracer {
	if opts.tracerName != instrumentationName {
		if tp == nil {
			tp = otel.GetTracerProvider()
		}

		return tp.Tracer(opts.tracerName)
	}

	// Use global tracer if configured
	if t := tracker.Tracer(); t != nil {
		return t
	}

	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return tp.Tracer(opts.tracerName)
}

// getPropagator returns the configured or global propagator.
func getPropagator(opts options) propagation.TextMapPropagator {
	if opts.prop != nil {
		return opts.prop
	}

	return otel.GetTextMapPropagator()
}
