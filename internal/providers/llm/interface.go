package llm

import (
	"context"
)

// Client is the minimal generative-interpreter surface the agent needs.
// Implementations give no guarantee of valid JSON, idempotence, or
// latency; callers must bound and fall back.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
