package agentops

import (
	"context"

	"github.com/AgentOps-AI/agentops-sub000/internal/tracker"
)

// Suppress marks the context so that every interceptor and adapter in this
// package becomes a pure pass-through: no span is created and no extractor
// runs. It is the escape hatch used to avoid recursive or duplicate
// instrumentation, e.g. when an instrumented SDK internally calls another
// instrumented target.
func Suppress(ctx context.Context) context.Context {
	return tracker.Suppress(ctx)
}

// IsSuppressed reports whether instrumentation is suppressed for ctx.
func IsSuppressed(ctx context.Context) bool {
	return tracker.Suppressed(ctx)
}
