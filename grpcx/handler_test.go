package grpcx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/stats"

	agentops "github.com/AgentOps-AI/agentops-sub000"
)

// recordingHandler counts callback invocations so tests can observe
// whether the suppression wrapper delegated to the traced handler.
type recordingHandler struct {
	tagRPC     int
	handleRPC  int
	tagConn    int
	handleConn int
}

func (h *recordingHandler) TagRPC(ctx context.Context, _ *stats.RPCTagInfo) context.Context {
	h.tagRPC++
	return ctx
}

func (h *recordingHandler) HandleRPC(context.Context, stats.RPCStats) {
	h.handleRPC++
}

func (h *recordingHandler) TagConn(ctx context.Context, _ *stats.ConnTagInfo) context.Context {
	h.tagConn++
	return ctx
}

func (h *recordingHandler) HandleConn(context.Context, stats.ConnStats) {
	h.handleConn++
}

func TestSuppressibleHandler_DelegatesWhenNotSuppressed(t *testing.T) {
	inner := &recordingHandler{}
	handler := &suppressibleHandler{traced: inner}

	ctx := handler.TagRPC(context.Background(), &stats.RPCTagInfo{FullMethodName: "/svc/Method"})
	handler.HandleRPC(ctx, &stats.Begin{})
	handler.HandleRPC(ctx, &stats.End{})

	assert.Equal(t, 1, inner.tagRPC)
	assert.Equal(t, 2, inner.handleRPC)
}

func TestSuppressibleHandler_SkipsSuppressedRPC(t *testing.T) {
	inner := &recordingHandler{}
	handler := &suppressibleHandler{traced: inner}

	ctx := agentops.Suppress(context.Background())
	ctx = handler.TagRPC(ctx, &stats.RPCTagInfo{FullMethodName: "/svc/Method"})
	handler.HandleRPC(ctx, &stats.Begin{})
	handler.HandleRPC(ctx, &stats.End{})

	assert.Zero(t, inner.tagRPC)
	assert.Zero(t, inner.handleRPC)
}

func TestSuppressibleHandler_MarkSurvivesDerivedContexts(t *testing.T) {
	inner := &recordingHandler{}
	handler := &suppressibleHandler{traced: inner}

	ctx := handler.TagRPC(agentops.Suppress(context.Background()), &stats.RPCTagInfo{})

	// Later callbacks may receive contexts derived after the suppression
	// flag was consumed; the RPC-level mark still applies.
	derived := context.WithValue(ctx, struct{ k string }{"other"}, "v")
	handler.HandleRPC(derived, &stats.End{})

	assert.Zero(t, inner.handleRPC)
}

func TestSuppressibleHandler_ConnCallbacksAlwaysDelegate(t *testing.T) {
	inner := &recordingHandler{}
	handler := &suppressibleHandler{traced: inner}

	handler.TagConn(agentops.Suppress(context.Background()), &stats.ConnTagInfo{})
	handler.HandleConn(context.Background(), &stats.ConnBegin{})

	assert.Equal(t, 1, inner.tagConn)
	assert.Equal(t, 1, inner.handleConn)
}

func TestClientHandler_Constructors(t *testing.T) {
	require.NotNil(t, ClientHandler())
	require.NotNil(t, ClientHandlerWithProviders(nil, nil, nil))
	require.NotNil(t, ServerHandler())
	require.NotNil(t, ServerHandlerWithProviders(nil, nil, nil))

	_, ok := ClientHandler().(*suppressibleHandler)
	assert.True(t, ok)
}
