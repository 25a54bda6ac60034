package agentops

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsEnabled(t *testing.T) {
	assert.False(t, (*Config)(nil).IsEnabled())
	assert.False(t, (&Config{}).IsEnabled())
	assert.True(t, (&Config{Enabled: boolPtr(true)}).IsEnabled())
}

func TestInstrumentationConfig(t *testing.T) {
	assert.True(t, (*InstrumentationConfig)(nil).IsEnabled())
	assert.True(t, (&InstrumentationConfig{}).IsEnabled())
	assert.False(t, (&InstrumentationConfig{Enabled: boolPtr(false)}).IsEnabled())

	assert.False(t, (*InstrumentationConfig)(nil).ShouldCaptureContent())
	assert.False(t, (&InstrumentationConfig{}).ShouldCaptureContent())
	assert.True(t, (&InstrumentationConfig{CaptureContent: boolPtr(true)}).ShouldCaptureContent())
}

func TestGetCorrelationConfig(t *testing.T) {
	def := DefaultCorrelationConfig()
	assert.Equal(t, "tool", def.Prefix)
	assert.Equal(t, 64, def.MaxEntriesPerOwner)
	assert.Equal(t, 1024, def.MaxOwners)
	assert.Equal(t, 10*time.Minute, def.TTL)

	// Nil paths fall back to defaults.
	assert.Equal(t, def, (*Config)(nil).GetCorrelationConfig())
	assert.Equal(t, def, (&Config{}).GetCorrelationConfig())

	custom := &CorrelationConfig{Prefix: "agentops.tool", MaxEntriesPerOwner: 8}
	cfg := &Config{Instrumentation: &InstrumentationConfig{Correlation: custom}}
	assert.Equal(t, custom, cfg.GetCorrelationConfig())
}

func TestGetOTLPEndpoint(t *testing.T) {
	assert.Equal(t, "localhost:4317", (*Config)(nil).GetOTLPEndpoint())
	assert.Equal(t, "localhost:4317", (&Config{}).GetOTLPEndpoint())

	cfg := &Config{OTLP: &OTLPConfig{Endpoint: "collector:4317"}}
	assert.Equal(t, "collector:4317", cfg.GetOTLPEndpoint())

	// Per-signal endpoint wins.
	cfg.Traces = &TracesConfig{Endpoint: "traces:4317"}
	assert.Equal(t, "traces:4317", cfg.GetOTLPEndpoint())
}

func TestGetTracesExporter(t *testing.T) {
	assert.Equal(t, "otlp", (*Config)(nil).GetTracesExporter())
	assert.Equal(t, "otlp", (&Config{}).GetTracesExporter())
	assert.Equal(t, "console", (&Config{Traces: &TracesConfig{Exporter: "console"}}).GetTracesExporter())
}

func TestPropConfig(t *testing.T) {
	assert.True(t, (*PropConfig)(nil).HasTraceContext())
	assert.True(t, (*PropConfig)(nil).HasBaggage())

	cfg := &PropConfig{Propagators: "tracecontext"}
	assert.True(t, cfg.HasTraceContext())
	assert.False(t, cfg.HasBaggage())

	cfg = &PropConfig{Propagators: " tracecontext , baggage "}
	assert.True(t, cfg.HasTraceContext())
	assert.True(t, cfg.HasBaggage())
}
