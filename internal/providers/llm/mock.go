package llm

import (
	"context"
)

// MockClient is used in development when no real provider is configured,
// and in tests. With no Response set it returns an empty answer shape,
// which exercises the fallback parser downstream.
type MockClient struct {
	Response string
	Err      error
}

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if m.Response != "" {
		return m.Response, nil
	}
	return `{"response": "", "tool_calls": []}`, nil
}
