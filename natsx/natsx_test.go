package natsx

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// mockMsg implements jetstream.Msg for testing.
type mockMsg struct {
	subject  string
	data     []byte
	headers  nats.Header
	metadata *jetstream.MsgMetadata
}

func (m *mockMsg) Subject() string                           { return m.subject }
func (m *mockMsg) Data() []byte                              { return m.data }
func (m *mockMsg) Headers() nats.Header                      { return m.headers }
func (*mockMsg) Reply() string                               { return "" }
func (*mockMsg) Ack() error                                  { return nil }
func (*mockMsg) DoubleAck(_ context.Context) error           { return nil }
func (*mockMsg) Nak() error                                  { return nil }
func (*mockMsg) NakWithDelay(_ time.Duration) error          { return nil }
func (*mockMsg) Term() error                                 { return nil }
func (*mockMsg) TermWithReason(_ string) error               { return nil }
func (*mockMsg) InProgress() error                           { return nil }
func (m *mockMsg) Metadata() (*jetstream.MsgMetadata, error) { return m.metadata, nil }

func attrMap(attrs []attribute.KeyValue) map[string]any {
	m := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		m[string(kv.Key)] = kv.Value.AsInterface()
	}

	return m
}

func TestHeaderCarrier(t *testing.T) {
	header := make(nats.Header)
	carrier := headerCarrier(header)

	carrier.Set("traceparent", "00-abc-def-01")
	assert.Equal(t, "00-abc-def-01", carrier.Get("traceparent"))
	assert.Empty(t, carrier.Get("missing"))
	assert.Contains(t, carrier.Keys(), "Traceparent")
}

func TestInject_InitializesNilHeader(t *testing.T) {
	prop := propagation.TraceContext{}
	ctx := contextWithSpan(t)

	msg := &nats.Msg{Subject: "events.turn"}
	InjectWithPropagator(ctx, msg, prop)

	require.NotNil(t, msg.Header)
	assert.NotEmpty(t, msg.Header.Get("traceparent"))
}

func TestExtract_ValidHeader(t *testing.T) {
	prop := propagation.TraceContext{}
	ctx := contextWithSpan(t)

	msg := &nats.Msg{Subject: "events.turn"}
	InjectWithPropagator(ctx, msg, prop)

	extracted := ExtractWithPropagator(context.Background(), msg.Header, prop)
	got := oteltrace.SpanContextFromContext(extracted)

	want := oteltrace.SpanContextFromContext(ctx)
	assert.Equal(t, want.TraceID(), got.TraceID())
	assert.Equal(t, want.SpanID(), got.SpanID())
	assert.True(t, got.IsRemote())
}

func TestExtract_NilHeader(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, Extract(ctx, nil))
}

func contextWithSpan(t *testing.T) context.Context {
	t.Helper()

	traceID, err := oteltrace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)
	spanID, err := oteltrace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)

	sc := oteltrace.NewSpanContext(oteltrace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: oteltrace.FlagsSampled,
	})

	return oteltrace.ContextWithSpanContext(context.Background(), sc)
}

func TestPublishAttributes(t *testing.T) {
	attrs := attrMap(publishAttributes("events.turn", "42", 128))

	assert.Equal(t, "nats", attrs["messaging.system"])
	assert.Equal(t, "publish", attrs["messaging.operation.name"])
	assert.Equal(t, "send", attrs["messaging.operation.type"])
	assert.Equal(t, "events.turn", attrs["messaging.destination.name"])
	assert.Equal(t, "42", attrs["messaging.message.id"])
	assert.Equal(t, int64(128), attrs["messaging.message.body.size"])
}

func TestPublishAttributes_OmitsEmpties(t *testing.T) {
	attrs := attrMap(publishAttributes("events.turn", "", 0))

	assert.NotContains(t, attrs, "messaging.message.id")
	assert.NotContains(t, attrs, "messaging.message.body.size")
}

func TestReceiveAttributes(t *testing.T) {
	attrs := attrMap(receiveAttributes("EVENTS", "worker-1"))

	assert.Equal(t, "nats", attrs["messaging.system"])
	assert.Equal(t, "receive", attrs["messaging.operation.name"])
	assert.Equal(t, "EVENTS", attrs["nats.stream"])
	assert.Equal(t, "worker-1", attrs["messaging.consumer.group.name"])
}

func TestProcessAttributes(t *testing.T) {
	attrs := attrMap(processAttributes("EVENTS", "worker-1", "events.turn", 64))

	assert.Equal(t, "process", attrs["messaging.operation.name"])
	assert.Equal(t, "EVENTS", attrs["nats.stream"])
	assert.Equal(t, "events.turn", attrs["messaging.destination.name"])
	assert.Equal(t, "worker-1", attrs["messaging.consumer.group.name"])
	assert.Equal(t, int64(64), attrs["messaging.message.body.size"])
}

func TestOptions_Defaults(t *testing.T) {
	o := applyOptions(nil)

	assert.Equal(t, instrumentationName, o.tracerName)
	assert.True(t, o.drainTools)
	assert.Nil(t, o.prop)
	assert.Empty(t, o.stream)
}

func TestOptions_Overrides(t *testing.T) {
	o := applyOptions([]Option{
		WithTracerName("custom"),
		WithStream("EVENTS"),
		WithToolDraining(false),
		WithPropagator(propagation.TraceContext{}),
	})

	assert.Equal(t, "custom", o.tracerName)
	assert.Equal(t, "EVENTS", o.stream)
	assert.False(t, o.drainTools)
	assert.NotNil(t, o.prop)
}

func TestNewPublisher_NilJetStream_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "agentops/natsx: JetStream must not be nil", func() {
		NewPublisher(nil)
	})
}

func TestWrapConsumer_NilConsumer_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "agentops/natsx: Consumer must not be nil", func() {
		WrapConsumer(nil, "EVENTS")
	})
}
