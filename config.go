//revive:disable:line-length-limit
package agentops

import (
	"slices"
	"strings"
	"time"
)

// Config configures the SDK: the OpenTelemetry providers it exports
// through, and the interception engine itself. Environment variable names
// follow the OTel specification where one exists:
// https://opentelemetry.io/docs/specs/otel/configuration/sdk-environment-variables/
type Config struct {
	// Enabled controls whether the SDK is active.
	Enabled *bool `yaml:"enabled" default:"false" env:"AGENTOPS_ENABLED"`

	// ServiceName is the name of the service for telemetry identification.
	// Maps to OTEL_SERVICE_NAME.
	ServiceName string `yaml:"serviceName" env:"OTEL_SERVICE_NAME" validate:"required_if=Enabled true"`

	// Version is the service version (e.g., git commit or semantic version).
	// Used in the service.version resource attribute.
	Version string `yaml:"version" env:"OTEL_SERVICE_VERSION"`

	// Environment is the deployment environment (e.g., production, development).
	// Used in the deployment.environment resource attribute.
	Environment string `yaml:"environment" env:"OTEL_DEPLOYMENT_ENVIRONMENT" default:"development"`

	// ResourceAttributes contains additional resource attributes as key=value pairs.
	// Maps to OTEL_RESOURCE_ATTRIBUTES (comma-separated key=value pairs).
	ResourceAttributes map[string]string `yaml:"resourceAttributes,omitempty" env:"OTEL_RESOURCE_ATTRIBUTES"`

	// OTLP contains shared OTLP exporter settings used by all signals.
	// Signal-specific settings can override these.
	OTLP *OTLPConfig `yaml:"otlp,omitempty"`

	// Traces configures the tracing subsystem.
	Traces *TracesConfig `yaml:"traces,omitempty"`

	// Logs configures the logging subsystem (OTel log bridge).
	Logs *LogsConfig `yaml:"logs,omitempty"`

	// Metrics configures the metrics subsystem.
	Metrics *MetricsConfig `yaml:"metrics,omitempty"`

	// Propagation configures context propagation (W3C TraceContext, Baggage).
	// Maps to OTEL_PROPAGATORS.
	Propagation *PropConfig `yaml:"propagation,omitempty"`

	// Instrumentation configures the interception engine.
	Instrumentation *InstrumentationConfig `yaml:"instrumentation,omitempty"`
}

// InstrumentationConfig configures the interception engine.
type InstrumentationConfig struct {
	// Enabled controls whether installed bindings create spans.
	// Defaults to true when the SDK is enabled.
	Enabled *bool `yaml:"enabled" default:"true"`

	// CaptureContent opts into recording prompt and completion content on
	// spans. Content may carry sensitive data, so it is off by default;
	// extractors honor this flag.
	CaptureContent *bool `yaml:"captureContent" env:"AGENTOPS_CAPTURE_CONTENT" default:"false"`

	// Correlation bounds the tool-correlation side table.
	Correlation *CorrelationConfig `yaml:"correlation,omitempty"`
}

// IsEnabled returns true if the engine is enabled. Defaults to true.
func (c *InstrumentationConfig) IsEnabled() bool {
	return c == nil || c.Enabled == nil || *c.Enabled
}

// ShouldCaptureContent returns true if content capture is opted in.
func (c *InstrumentationConfig) ShouldCaptureContent() bool {
	return c != nil && c.CaptureContent != nil && *c.CaptureContent
}

// CorrelationConfig bounds the correlation store. Owners whose entries are
// never drained (ancestor span ended, or was never instrumented) are a
// controlled leak: the store drops past MaxEntriesPerOwner, evicts owners
// past MaxOwners oldest-first, and expires untouched owners after TTL.
type CorrelationConfig struct {
	// Prefix namespaces the indexed attributes written by DrainAndAttach
	// ("prefix.{i}.{field}").
	Prefix string `yaml:"prefix" default:"tool"`

	// MaxEntriesPerOwner caps queued entries per owning span.
	MaxEntriesPerOwner int `yaml:"maxEntriesPerOwner" default:"64" validate:"gte=0"`

	// MaxOwners caps the number of owning spans with queued entries.
	MaxOwners int `yaml:"maxOwners" default:"1024" validate:"gte=0"`

	// TTL expires owners that have not been touched for this duration.
	TTL time.Duration `yaml:"ttl" default:"10m" validate:"gte=0"`
}

// DefaultCorrelationConfig returns the default correlation bounds.
func DefaultCorrelationConfig() *CorrelationConfig {
	return &CorrelationConfig{
		Prefix:             "tool",
		MaxEntriesPerOwner: 64,
		MaxOwners:          1024,
		TTL:                10 * time.Minute,
	}
}

// OTLPConfig contains shared OTLP exporter settings.
// These settings apply to all signals unless overridden per signal.
type OTLPConfig struct {
	// Endpoint is the OTLP collector endpoint.
	// Maps to OTEL_EXPORTER_OTLP_ENDPOINT.
	//
	// Format depends on protocol:
	//   - gRPC: "host:port" (e.g., "localhost:4317"). Do NOT include scheme.
	//   - HTTP: Full URL with scheme (e.g., "http://localhost:4318/v1/traces").
	Endpoint string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`

	// Insecure disables TLS for the OTLP connection.
	// Maps to OTEL_EXPORTER_OTLP_INSECURE.
	Insecure *bool `yaml:"insecure" env:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`

	// Headers adds custom headers to OTLP requests.
	// Maps to OTEL_EXPORTER_OTLP_HEADERS (comma-separated key=value pairs).
	// Avoid logging this value, as it may contain sensitive credentials.
	Headers map[string]string `yaml:"headers,omitempty" env:"OTEL_EXPORTER_OTLP_HEADERS"`

	// Protocol determines the OTLP transport protocol.
	// Maps to OTEL_EXPORTER_OTLP_PROTOCOL.
	// Options: "grpc", "http/protobuf", "http".
	Protocol string `yaml:"protocol" env:"OTEL_EXPORTER_OTLP_PROTOCOL" default:"grpc" validate:"oneof=grpc http/protobuf http"`

	// Timeout is the timeout for exporter operations.
	// Maps to OTEL_EXPORTER_OTLP_TIMEOUT.
	Timeout time.Duration `yaml:"timeout" env:"OTEL_EXPORTER_OTLP_TIMEOUT" default:"10s" validate:"gte=0"`

	// Compression sets the compression algorithm for OTLP.
	// Maps to OTEL_EXPORTER_OTLP_COMPRESSION.
	// Options: "gzip", "none".
	Compression string `yaml:"compression,omitempty" env:"OTEL_EXPORTER_OTLP_COMPRESSION" validate:"omitempty,oneof=gzip none"`
}

// IsInsecure returns true if insecure connection is enabled.
func (c *OTLPConfig) IsInsecure() bool {
	return c == nil || c.Insecure == nil || *c.Insecure
}

// TracesConfig configures the tracing subsystem.
type TracesConfig struct {
	// Enabled controls whether tracing is active. Defaults to true if the SDK is enabled.
	Enabled *bool `yaml:"enabled" default:"true"`

	// Exporter determines the trace exporter type.
	// Maps to OTEL_TRACES_EXPORTER.
	// Options: "otlp", "console", "stdout", "none".
	Exporter string `yaml:"exporter" env:"OTEL_TRACES_EXPORTER" default:"otlp" validate:"oneof=otlp console stdout none"`

	// Endpoint overrides OTLP.Endpoint for traces.
	// Maps to OTEL_EXPORTER_OTLP_TRACES_ENDPOINT.
	// Leave empty unless traces need a different endpoint than other signals.
	Endpoint string `yaml:"endpoint,omitempty" env:"OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"`

	// Sampling configures the trace sampling strategy.
	Sampling *SamplingConfig `yaml:"sampling,omitempty"`
}

// IsEnabled returns true if tracing is enabled.
func (c *TracesConfig) IsEnabled() bool {
	return c == nil || c.Enabled == nil || *c.Enabled
}

// LogsConfig configures the logging subsystem (OTel log bridge).
type LogsConfig struct {
	// Enabled controls whether OTel log export is active.
	// Defaults to false (opt-in for logs).
	Enabled *bool `yaml:"enabled" default:"false"`

	// Exporter determines the log exporter type.
	// Maps to OTEL_LOGS_EXPORTER.
	// Options: "otlp", "console", "stdout", "none".
	Exporter string `yaml:"exporter" env:"OTEL_LOGS_EXPORTER" default:"otlp" validate:"oneof=otlp console stdout none"`

	// Endpoint overrides OTLP.Endpoint for logs.
	// Maps to OTEL_EXPORTER_OTLP_LOGS_ENDPOINT.
	Endpoint string `yaml:"endpoint,omitempty" env:"OTEL_EXPORTER_OTLP_LOGS_ENDPOINT"`
}

// IsEnabled returns true if OTel log export is enabled.
func (c *LogsConfig) IsEnabled() bool {
	return c != nil && c.Enabled != nil && *c.Enabled
}

// MetricsConfig configures the metrics subsystem.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Defaults to false (opt-in for metrics).
	Enabled *bool `yaml:"enabled" default:"false"`

	// Exporter determines the metrics exporter type.
	// Maps to OTEL_METRICS_EXPORTER.
	// Options: "otlp", "console", "stdout", "none".
	Exporter string `yaml:"exporter" env:"OTEL_METRICS_EXPORTER" default:"otlp" validate:"oneof=otlp console stdout none"`

	// Endpoint overrides OTLP.Endpoint for metrics.
	// Maps to OTEL_EXPORTER_OTLP_METRICS_ENDPOINT.
	Endpoint string `yaml:"endpoint,omitempty" env:"OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"`

	// Interval is the export interval for the periodic metric reader.
	// Maps to OTEL_METRIC_EXPORT_INTERVAL (milliseconds if numeric).
	Interval time.Duration `yaml:"interval,omitempty" env:"OTEL_METRIC_EXPORT_INTERVAL" default:"60s" validate:"omitempty,gt=0"`
}

// IsEnabled returns true if metrics collection is enabled.
func (c *MetricsConfig) IsEnabled() bool {
	return c != nil && c.Enabled != nil && *c.Enabled
}

// SamplingConfig configures the trace sampling strategy.
// Maps to OTEL_TRACES_SAMPLER and OTEL_TRACES_SAMPLER_ARG.
type SamplingConfig struct {
	// Sampler determines which sampler to use.
	// Maps to OTEL_TRACES_SAMPLER.
	// Options: "always_on", "always_off", "traceidratio",
	// "parentbased_always_on", "parentbased_always_off", "parentbased_traceidratio".
	Sampler string `yaml:"sampler" env:"OTEL_TRACES_SAMPLER" default:"parentbased_always_on" validate:"oneof=always_on always_off traceidratio parentbased_always_on parentbased_always_off parentbased_traceidratio"`

	// SamplerArg is the argument for ratio-based samplers: sampling
	// probability 0.0 to 1.0. Maps to OTEL_TRACES_SAMPLER_ARG.
	SamplerArg float64 `yaml:"samplerArg" env:"OTEL_TRACES_SAMPLER_ARG" default:"1.0" validate:"gte=0,lte=1"`
}

// PropConfig configures context propagation.
// Maps to OTEL_PROPAGATORS.
type PropConfig struct {
	// Propagators specifies which propagators to use.
	// Maps to OTEL_PROPAGATORS (comma-separated list).
	// Known values: "tracecontext", "baggage", "b3", "b3multi", "jaeger", "xray", "none".
	Propagators string `yaml:"propagators" env:"OTEL_PROPAGATORS" default:"tracecontext,baggage"`
}

// HasTraceContext returns true if the tracecontext propagator is enabled.
func (c *PropConfig) HasTraceContext() bool {
	if c == nil || c.Propagators == "" {
		return true // default includes tracecontext
	}

	return containsPropagator(c.Propagators, "tracecontext")
}

// HasBaggage returns true if the baggage propagator is enabled.
func (c *PropConfig) HasBaggage() bool {
	if c == nil || c.Propagators == "" {
		return true // default includes baggage
	}

	return containsPropagator(c.Propagators, "baggage")
}

// containsPropagator checks if a propagator is in the comma-separated list.
func containsPropagator(propagators, name string) bool {
	return slices.Contains(splitPropagators(propagators), name)
}

// splitPropagators splits a comma-separated propagator list.
func splitPropagators(propagators string) []string {
	if propagators == "" {
		return nil
	}

	var result []string
	for p := range strings.SplitSeq(propagators, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}

	return result
}

// IsEnabled returns true if the SDK is enabled. Defaults to false if nil.
func (c *Config) IsEnabled() bool {
	return c != nil && c.Enabled != nil && *c.Enabled
}

// GetSamplingConfig returns the effective sampling config.
func (c *Config) GetSamplingConfig() *SamplingConfig {
	if c == nil || c.Traces == nil {
		return nil
	}

	return c.Traces.Sampling
}

// GetTracesExporter returns the effective traces exporter type.
func (c *Config) GetTracesExporter() string {
	if c == nil || c.Traces == nil || c.Traces.Exporter == "" {
		return "otlp"
	}

	return c.Traces.Exporter
}

// GetOTLPEndpoint returns the effective OTLP endpoint for traces.
// Priority: Traces.Endpoint > OTLP.Endpoint.
func (c *Config) GetOTLPEndpoint() string {
	if c == nil {
		return "localhost:4317"
	}
	if c.Traces != nil && c.Traces.Endpoint != "" {
		return c.Traces.Endpoint
	}
	if c.OTLP != nil && c.OTLP.Endpoint != "" {
		return c.OTLP.Endpoint
	}

	return "localhost:4317"
}

// GetOTLPConfig returns the effective OTLP config.
func (c *Config) GetOTLPConfig() *OTLPConfig {
	if c == nil || c.OTLP == nil {
		return &OTLPConfig{}
	}

	return c.OTLP
}

// GetCorrelationConfig returns the effective correlation bounds.
func (c *Config) GetCorrelationConfig() *CorrelationConfig {
	if c == nil || c.Instrumentation == nil || c.Instrumentation.Correlation == nil {
		return DefaultCorrelationConfig()
	}

	return c.Instrumentation.Correlation
}

// boolPtr returns a pointer to the given boolean value.
// It is useful for initializing config fields.
func boolPtr(v bool) *bool { return &v }
