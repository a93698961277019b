package agents

import (
	"context"

	"github.com/jonathan/coverletter-agent/internal/llm"
)

// GenerateFunc is one agent's fallible generation attempt, yielding the
// section values it owns.
type GenerateFunc func(ctx context.Context, client llm.Client, shared *Context) (map[string]string, error)

// WithFallback composes a generation attempt with the resilience policy:
// any failure yields the fixed fallback values instead of propagating. The
// returned function cannot fail, which is what lets the orchestrator treat
// the generation fan-out as infallible.
func WithFallback(fn GenerateFunc, fallback map[string]string, logf func(format string, args ...any)) func(ctx context.Context, client llm.Client, shared *Context) map[string]string {
	return func(ctx context.Context, client llm.Client, shared *Context) map[string]string {
		values, err := fn(ctx, client, shared)
		if err != nil {
			if logf != nil {
				logf("agent fell back to default content: %v", err)
			}
			return fallback
		}
		return values
	}
}
