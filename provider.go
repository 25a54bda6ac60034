package agentops

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// ErrDisabled is returned when the SDK is disabled.
var ErrDisabled = errors.New("agentops: sdk is disabled")

// ErrLogsDisabled is returned when log export is disabled.
var ErrLogsDisabled = errors.New("agentops: logs export is disabled")

// ErrMetricsDisabled is returned when metrics export is disabled.
var ErrMetricsDisabled = errors.New("agentops: metrics export is disabled")

// ErrServiceNameRequired is returned when ServiceName is empty but the SDK is enabled.
var ErrServiceNameRequired = errors.New("agentops: service name is required")

// engineScope is the instrumentation scope the engine's spans are created
// under when the provider wires the engine itself.
const engineScope = "github.com/AgentOps-AI/agentops-sub000"

// ============================================================================
// Tracer Provider
// ============================================================================

// NewTracerProvider builds the TracerProvider that receives the spans the
// interception engine produces, registers it and the configured propagator
// globally, and wires the engine itself: the tracer and namer installed
// bindings create spans on, and the correlation-store bounds. Returns
// ErrDisabled when the SDK or the traces signal is off.
//
// Callers that need a different scope or namer can re-run [InitTracing]
// afterwards; the last registration wins.
func NewTracerProvider(ctx context.Context, cfg *Config) (*sdktrace.TracerProvider, error) {
	if !cfg.IsEnabled() || !cfg.Traces.IsEnabled() {
		return nil, ErrDisabled
	}

	res, err := buildResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	exporter, err := newTraceExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(buildSampler(cfg.GetSamplingConfig())),
		sdktrace.WithBatcher(exporter),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(buildPropagator(cfg.Propagation))
	wireEngine(tp, cfg)

	return tp, nil
}

// wireEngine points the interception engine at tp and applies the
// instrumentation config: the span namer and the correlation bounds. When
// the engine is disabled the tracer stays unset, so installed bindings pass
// through without creating spans.
func wireEngine(tp *sdktrace.TracerProvider, cfg *Config) {
	InitCorrelation(cfg.GetCorrelationConfig())

	if !cfg.Instrumentation.IsEnabled() {
		InitTracing(nil, nil)
		return
	}

	InitTracing(tp.Tracer(engineScope), DefaultNamer{})
}

// ============================================================================
// Logger Provider
// ============================================================================

// NewLoggerProvider initializes the OpenTelemetry LoggerProvider and
// registers it globally. Logs are opt-in; returns ErrLogsDisabled unless
// the logs signal is explicitly enabled.
func NewLoggerProvider(ctx context.Context, cfg *Config) (*sdklog.LoggerProvider, error) {
	if !cfg.IsEnabled() {
		return nil, ErrDisabled
	}
	if !cfg.Logs.IsEnabled() {
		return nil, ErrLogsDisabled
	}

	res, err := buildResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	exporter, err := newLogExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build log exporter: %w", err)
	}

	lp := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(lp)

	return lp, nil
}

// ============================================================================
// Meter Provider
// ============================================================================

// NewMeterProvider initializes the OpenTelemetry MeterProvider and registers
// it globally. Metrics are opt-in; returns ErrMetricsDisabled unless the
// metrics signal is explicitly enabled.
func NewMeterProvider(ctx context.Context, cfg *Config) (*sdkmetric.MeterProvider, error) {
	if !cfg.IsEnabled() {
		return nil, ErrDisabled
	}
	if !cfg.Metrics.IsEnabled() {
		return nil, ErrMetricsDisabled
	}

	res, err := buildResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	exporter, err := newMetricExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(normalizeMetricInterval(cfg.Metrics.Interval, 60*time.Second)),
		)),
	)
	otel.SetMeterProvider(mp)

	return mp, nil
}

// ============================================================================
// Shared Helpers
// ============================================================================

// buildResource creates the resource shared by all providers built from cfg.
func buildResource(ctx context.Context, cfg *Config) (*resource.Resource, error) {
	if cfg.ServiceName == "" {
		return nil, ErrServiceNameRequired
	}

	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
		semconv.DeploymentEnvironment(cfg.Environment),
	}
	for key, value := range cfg.ResourceAttributes {
		if key == "" {
			continue
		}
		attrs = append(attrs, attribute.String(key, value))
	}

	res, err := resource.New(ctx,
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(attrs...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	return res, nil
}

// normalizeMetricInterval treats sub-millisecond values as milliseconds, the
// OTel convention for numeric env values.
func normalizeMetricInterval(value time.Duration, defaultValue time.Duration) time.Duration {
	if value <= 0 {
		return defaultValue
	}
	if value < time.Millisecond {
		ms := int64(value / time.Nanosecond)
		if ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}

		return defaultValue
	}

	return value
}

// buildSampler maps the configured sampler name to an SDK sampler. Names
// follow OTEL_TRACES_SAMPLER:
// https://opentelemetry.io/docs/specs/otel/configuration/sdk-environment-variables/
func buildSampler(cfg *SamplingConfig) sdktrace.Sampler {
	if cfg == nil {
		cfg = &SamplingConfig{Sampler: "parentbased_always_on", SamplerArg: 1.0}
	}

	switch cfg.Sampler {
	case "always_on":
		return sdktrace.AlwaysSample()
	case "always_off":
		return sdktrace.NeverSample()
	case "traceidratio":
		return sdktrace.TraceIDRatioBased(cfg.SamplerArg)
	case "parentbased_always_off":
		return sdktrace.ParentBased(sdktrace.NeverSample())
	case "parentbased_traceidratio":
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplerArg))
	default:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
}
