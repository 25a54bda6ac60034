package agentops

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// signal identifies one telemetry signal when resolving exporter settings.
type signal int

const (
	signalTraces signal = iota
	signalLogs
	signalMetrics
)

// exporterTarget is the resolved destination for one signal: the exporter
// kind plus the OTLP transport settings that apply when the kind is "otlp".
// Shared settings come from Config.OTLP; each signal may override the kind
// and endpoint.
type exporterTarget struct {
	kind        string // "otlp", "console", "nop"
	protocol    string // "grpc", "http/protobuf"
	endpoint    string
	headers     map[string]string
	timeout     time.Duration
	compression string
	insecure    bool
}

// resolveExporterTarget merges the shared OTLP block with sig's overrides
// and canonicalizes the exporter kind.
func resolveExporterTarget(cfg *Config, sig signal) exporterTarget {
	target := exporterTarget{
		kind:     "otlp",
		protocol: "grpc",
		endpoint: "localhost:4317",
		timeout:  10 * time.Second,
		insecure: true,
	}

	if cfg != nil {
		otlp := cfg.GetOTLPConfig()
		if otlp.Endpoint != "" {
			target.endpoint = otlp.Endpoint
		}
		if otlp.Protocol != "" {
			target.protocol = otlp.Protocol
		}
		if otlp.Timeout > 0 {
			target.timeout = normalizeDuration(otlp.Timeout)
		}
		target.headers = otlp.Headers
		target.compression = otlp.Compression
		target.insecure = otlp.IsInsecure()
	}

	kind, endpoint := signalOverrides(cfg, sig)
	if kind != "" {
		target.kind = kind
	}
	if endpoint != "" {
		target.endpoint = endpoint
	}
	target.kind = canonicalExporterKind(target.kind)

	return target
}

// signalOverrides returns sig's exporter kind and endpoint overrides, empty
// when the signal inherits the shared settings.
func signalOverrides(cfg *Config, sig signal) (kind, endpoint string) {
	if cfg == nil {
		return "", ""
	}

	switch sig {
	case signalTraces:
		if cfg.Traces != nil {
			return cfg.Traces.Exporter, cfg.Traces.Endpoint
		}
	case signalLogs:
		if cfg.Logs != nil {
			return cfg.Logs.Exporter, cfg.Logs.Endpoint
		}
	case signalMetrics:
		if cfg.Metrics != nil {
			return cfg.Metrics.Exporter, cfg.Metrics.Endpoint
		}
	}

	return "", ""
}

// canonicalExporterKind folds the accepted spellings into the three kinds
// the constructors switch on. Unknown values fall back to "otlp".
func canonicalExporterKind(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "console", "stdout":
		return "console"
	case "none", "nop", "noop":
		return "nop"
	default:
		return "otlp"
	}
}

// otlpOptionSet bundles one OTLP client's option constructors so the three
// signals share a single option-assembly path. endpointURL is nil for gRPC
// clients, which only take a bare host:port endpoint.
type otlpOptionSet[T any] struct {
	endpoint    func(string) T
	endpointURL func(string) T
	headers     func(map[string]string) T
	timeout     func(time.Duration) T
	insecure    func() T
	gzip        func() T
}

func (s otlpOptionSet[T]) build(target exporterTarget) []T {
	var opts []T

	if s.endpointURL != nil && hasHTTPScheme(target.endpoint) {
		opts = append(opts, s.endpointURL(target.endpoint))
	} else {
		opts = append(opts, s.endpoint(target.endpoint))
	}
	if len(target.headers) > 0 {
		opts = append(opts, s.headers(target.headers))
	}
	if target.timeout > 0 {
		opts = append(opts, s.timeout(target.timeout))
	}
	if target.insecure {
		opts = append(opts, s.insecure())
	}
	if target.compression == "gzip" {
		opts = append(opts, s.gzip())
	}

	return opts
}

func hasHTTPScheme(endpoint string) bool {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return false
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return true
	default:
		return false
	}
}

func isHTTPProtocol(protocol string) bool {
	return protocol == "http/protobuf" || protocol == "http"
}

// newTraceExporter builds the span exporter the finished spans are handed
// to. The engine never depends on which one it is.
func newTraceExporter(ctx context.Context, cfg *Config) (sdktrace.SpanExporter, error) {
	target := resolveExporterTarget(cfg, signalTraces)

	switch target.kind {
	case "console":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "nop":
		return nopSpanExporter{}, nil
	}

	if isHTTPProtocol(target.protocol) {
		set := otlpOptionSet[otlptracehttp.Option]{
			endpoint:    otlptracehttp.WithEndpoint,
			endpointURL: otlptracehttp.WithEndpointURL,
			headers:     otlptracehttp.WithHeaders,
			timeout:     otlptracehttp.WithTimeout,
			insecure:    otlptracehttp.WithInsecure,
			gzip: func() otlptracehttp.Option {
				return otlptracehttp.WithCompression(otlptracehttp.GzipCompression)
			},
		}

		return otlptrace.New(ctx, otlptracehttp.NewClient(set.build(target)...))
	}

	set := otlpOptionSet[otlptracegrpc.Option]{
		endpoint: otlptracegrpc.WithEndpoint,
		headers:  otlptracegrpc.WithHeaders,
		timeout:  otlptracegrpc.WithTimeout,
		insecure: otlptracegrpc.WithInsecure,
		gzip: func() otlptracegrpc.Option {
			return otlptracegrpc.WithCompressor("gzip")
		},
	}

	return otlptrace.New(ctx, otlptracegrpc.NewClient(set.build(target)...))
}

// newLogExporter builds the log exporter for the opt-in log bridge.
func newLogExporter(ctx context.Context, cfg *Config) (sdklog.Exporter, error) {
	target := resolveExporterTarget(cfg, signalLogs)

	switch target.kind {
	case "console":
		return stdoutlog.New(stdoutlog.WithPrettyPrint())
	case "nop":
		return nopLogExporter{}, nil
	}

	if isHTTPProtocol(target.protocol) {
		set := otlpOptionSet[otlploghttp.Option]{
			endpoint:    otlploghttp.WithEndpoint,
			endpointURL: otlploghttp.WithEndpointURL,
			headers:     otlploghttp.WithHeaders,
			timeout:     otlploghttp.WithTimeout,
			insecure:    otlploghttp.WithInsecure,
			gzip: func() otlploghttp.Option {
				return otlploghttp.WithCompression(otlploghttp.GzipCompression)
			},
		}

		return otlploghttp.New(ctx, set.build(target)...)
	}

	set := otlpOptionSet[otlploggrpc.Option]{
		endpoint: otlploggrpc.WithEndpoint,
		headers:  otlploggrpc.WithHeaders,
		timeout:  otlploggrpc.WithTimeout,
		insecure: otlploggrpc.WithInsecure,
		gzip: func() otlploggrpc.Option {
			return otlploggrpc.WithCompressor("gzip")
		},
	}

	return otlploggrpc.New(ctx, set.build(target)...)
}

// newMetricExporter builds the metric exporter for the opt-in metrics signal.
func newMetricExporter(ctx context.Context, cfg *Config) (sdkmetric.Exporter, error) {
	target := resolveExporterTarget(cfg, signalMetrics)

	switch target.kind {
	case "console":
		return stdoutmetric.New(stdoutmetric.WithPrettyPrint())
	case "nop":
		return nopMetricExporter{}, nil
	}

	if isHTTPProtocol(target.protocol) {
		set := otlpOptionSet[otlpmetrichttp.Option]{
			endpoint:    otlpmetrichttp.WithEndpoint,
			endpointURL: otlpmetrichttp.WithEndpointURL,
			headers:     otlpmetrichttp.WithHeaders,
			timeout:     otlpmetrichttp.WithTimeout,
			insecure:    otlpmetrichttp.WithInsecure,
			gzip: func() otlpmetrichttp.Option {
				return otlpmetrichttp.WithCompression(otlpmetrichttp.GzipCompression)
			},
		}

		return otlpmetrichttp.New(ctx, set.build(target)...)
	}

	set := otlpOptionSet[otlpmetricgrpc.Option]{
		endpoint: otlpmetricgrpc.WithEndpoint,
		headers:  otlpmetricgrpc.WithHeaders,
		timeout:  otlpmetricgrpc.WithTimeout,
		insecure: otlpmetricgrpc.WithInsecure,
		gzip: func() otlpmetricgrpc.Option {
			return otlpmetricgrpc.WithCompressor("gzip")
		},
	}

	return otlpmetricgrpc.New(ctx, set.build(target)...)
}

// normalizeDuration treats sub-millisecond values as milliseconds, the OTel
// convention for numeric env values.
func normalizeDuration(value time.Duration) time.Duration {
	if value > 0 && value < time.Millisecond {
		//nolint:durationcheck // numeric env values are milliseconds
		return value * time.Millisecond
	}

	return value
}

// nopSpanExporter discards spans; used for the "none" exporter kind.
type nopSpanExporter struct{}

func (nopSpanExporter) ExportSpans(_ context.Context, _ []sdktrace.ReadOnlySpan) error { return nil }
func (nopSpanExporter) Shutdown(_ context.Context) error                               { return nil }

type nopLogExporter struct{}

func (nopLogExporter) Export(_ context.Context, _ []sdklog.Record) error { return nil }
func (nopLogExporter) Shutdown(_ context.Context) error                  { return nil }
func (nopLogExporter) ForceFlush(_ context.Context) error                { return nil }

type nopMetricExporter struct{}

func (nopMetricExporter) Export(_ context.Context, _ *metricdata.ResourceMetrics) error { return nil }
func (nopMetricExporter) Temporality(k sdkmetric.InstrumentKind) metricdata.Temporality {
	return sdkmetric.DefaultTemporalitySelector(k)
}

func (nopMetricExporter) Aggregation(k sdkmetric.InstrumentKind) sdkmetric.Aggregation {
	return sdkmetric.DefaultAggregationSelector(k)
}
func (nopMetricExporter) ForceFlush(_ context.Context) error { return nil }
func (nopMetricExporter) Shutdown(_ context.Context) error   { return nil }
