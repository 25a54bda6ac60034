package agentops

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// fakeSession is a resource with terminal state readable at close time.
type fakeSession struct {
	Turns  int
	closed int
}

func scopedConfig() WrapConfig {
	return WrapConfig{
		Target: "fake.session.open",
		Name:   "invoke_agent session",
		Kind:   oteltrace.SpanKindInternal,
	}
}

func sessionExtractor(req *fakeRequest, res **fakeSession) AttributeMap {
	attrs := AttributeMap{"gen_ai.request.model": req.Model}
	if res != nil && *res != nil {
		attrs["session.turns"] = (*res).Turns
	}

	return attrs
}

func TestScoped_CloseIsIdempotent(t *testing.T) {
	released := 0
	scope := NewScoped(&fakeSession{}, func() error {
		released++
		return nil
	})

	require.NoError(t, scope.Close())
	require.NoError(t, scope.Close())
	require.NoError(t, scope.CloseWith(errors.New("late")))

	assert.Equal(t, 1, released)
}

func TestScoped_Value(t *testing.T) {
	session := &fakeSession{Turns: 2}
	scope := NewScoped(session, nil)

	assert.Equal(t, session, scope.Value())
	assert.NoError(t, scope.Close())
}

func TestWrapScoped_SuccessPath(t *testing.T) {
	exporter := setupTracing(t)

	fn := WrapScoped(scopedConfig(), sessionExtractor,
		func(ctx context.Context, req *fakeRequest) (*Scoped[*fakeSession], error) {
			session := &fakeSession{}

			return NewScoped(session, func() error {
				session.closed++
				return nil
			}), nil
		})

	scope, err := fn(context.Background(), &fakeRequest{Model: "fake-model"})
	require.NoError(t, err)

	// Span stays open while the scope is live.
	assert.Empty(t, exporter.GetSpans())

	scope.Value().Turns = 3
	require.NoError(t, scope.Close())
	assert.Equal(t, 1, scope.Value().closed)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	span := spans[0]
	assert.Equal(t, "invoke_agent session", span.Name)
	assert.Equal(t, codes.Ok, span.Status.Code)

	// Terminal state computed at close time lands on the span.
	attrs := spanAttrs(span)
	assert.Equal(t, "fake-model", attrs["gen_ai.request.model"])
	assert.Equal(t, int64(3), attrs["session.turns"])
}

func TestWrapScoped_BodyError(t *testing.T) {
	exporter := setupTracing(t)

	fn := WrapScoped(scopedConfig(), sessionExtractor,
		func(ctx context.Context, req *fakeRequest) (*Scoped[*fakeSession], error) {
			return NewScoped(&fakeSession{}, nil), nil
		})

	scope, err := fn(context.Background(), &fakeRequest{})
	require.NoError(t, err)

	bodyErr := errors.New("agent failed")
	require.NoError(t, scope.CloseWith(bodyErr))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "agent failed", spans[0].Status.Description)
}

func TestWrapScoped_ReleaseErrorDecidesStatus(t *testing.T) {
	exporter := setupTracing(t)

	releaseErr := errors.New("flush failed")
	fn := WrapScoped(scopedConfig(), nil,
		func(ctx context.Context, req *fakeRequest) (*Scoped[*fakeSession], error) {
			return NewScoped(&fakeSession{}, func() error { return releaseErr }), nil
		})

	scope, err := fn(context.Background(), &fakeRequest{})
	require.NoError(t, err)

	assert.Equal(t, releaseErr, scope.Close())

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestWrapScoped_AcquisitionError(t *testing.T) {
	exporter := setupTracing(t)

	acquireErr := errors.New("no capacity")
	fn := WrapScoped(scopedConfig(), nil,
		func(ctx context.Context, req *fakeRequest) (*Scoped[*fakeSession], error) {
			return nil, acquireErr
		})

	scope, err := fn(context.Background(), &fakeRequest{})
	assert.Nil(t, scope)
	assert.Equal(t, acquireErr, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestWrapScoped_Suppressed_NoSpan(t *testing.T) {
	exporter := setupTracing(t)

	fn := WrapScoped(scopedConfig(), nil,
		func(ctx context.Context, req *fakeRequest) (*Scoped[*fakeSession], error) {
			return NewScoped(&fakeSession{}, nil), nil
		})

	scope, err := fn(Suppress(context.Background()), &fakeRequest{})
	require.NoError(t, err)
	require.NoError(t, scope.Close())

	assert.Empty(t, exporter.GetSpans())
}

func TestLazy_GetResolvesOnce(t *testing.T) {
	resolved := 0
	lazy := NewLazy(func(ctx context.Context) (*fakeSession, error) {
		resolved++
		return &fakeSession{Turns: 1}, nil
	})

	first, err := lazy.Get(context.Background())
	require.NoError(t, err)

	second, err := lazy.Get(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, resolved)
}

func TestLazy_GetCachesError(t *testing.T) {
	resolveErr := errors.New("dial failed")
	resolved := 0
	lazy := NewLazy(func(ctx context.Context) (*fakeSession, error) {
		resolved++
		return nil, resolveErr
	})

	_, err := lazy.Get(context.Background())
	assert.Equal(t, resolveErr, err)

	_, err = lazy.Get(context.Background())
	assert.Equal(t, resolveErr, err)
	assert.Equal(t, 1, resolved)
}

func TestLazy_DoForwardsErrorToScope(t *testing.T) {
	exporter := setupTracing(t)

	fn := WrapScoped(scopedConfig(), nil,
		func(ctx context.Context, req *fakeRequest) (*Scoped[*fakeSession], error) {
			return NewScoped(&fakeSession{}, nil), nil
		})

	lazy := NewLazy(func(ctx context.Context) (*Scoped[*fakeSession], error) {
		return fn(ctx, &fakeRequest{})
	})

	bodyErr := errors.New("tool loop diverged")
	err := lazy.Do(context.Background(), func(scope *Scoped[*fakeSession]) error {
		return bodyErr
	})
	assert.Equal(t, bodyErr, err)

	// The scope was closed with the body error.
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "tool loop diverged", spans[0].Status.Description)
}

func TestLazy_DoClosesOnSuccess(t *testing.T) {
	exporter := setupTracing(t)

	fn := WrapScoped(scopedConfig(), nil,
		func(ctx context.Context, req *fakeRequest) (*Scoped[*fakeSession], error) {
			return NewScoped(&fakeSession{}, nil), nil
		})

	lazy := NewLazy(func(ctx context.Context) (*Scoped[*fakeSession], error) {
		return fn(ctx, &fakeRequest{})
	})

	err := lazy.Do(context.Background(), func(scope *Scoped[*fakeSession]) error {
		return nil
	})
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
}

func TestLazy_DoPanicClosesScopeWithError(t *testing.T) {
	exporter := setupTracing(t)

	fn := WrapScoped(scopedConfig(), nil,
		func(ctx context.Context, req *fakeRequest) (*Scoped[*fakeSession], error) {
			return NewScoped(&fakeSession{}, nil), nil
		})

	lazy := NewLazy(func(ctx context.Context) (*Scoped[*fakeSession], error) {
		return fn(ctx, &fakeRequest{})
	})

	assert.PanicsWithValue(t, "tool loop exploded", func() {
		_ = lazy.Do(context.Background(), func(*Scoped[*fakeSession]) error {
			panic("tool loop exploded")
		})
	})

	// The scope was closed before the panic resurfaced, with ERROR status.
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "panic: tool loop exploded", spans[0].Status.Description)
}

func TestLazy_DoReturnsResolveError(t *testing.T) {
	resolveErr := errors.New("dial failed")
	lazy := NewLazy(func(ctx context.Context) (*fakeSession, error) {
		return nil, resolveErr
	})

	called := false
	err := lazy.Do(context.Background(), func(*fakeSession) error {
		called = true
		return nil
	})
	assert.Equal(t, resolveErr, err)
	assert.False(t, called)
}
