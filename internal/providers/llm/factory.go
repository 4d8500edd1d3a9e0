package llm

import (
	"context"
	"os"
	"strings"
)

// New returns a Client for the given provider. Unknown or unconfigured
// providers fall back to auto-detection by API key presence, and finally
// to the mock client so the pipeline always has an interpreter to fail
// over from.
//
// Supported providers: gemini (SDK, REST fallback), openai, anthropic.
func New(ctx context.Context, provider, apiKey, model string) Client {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gemini":
		if key := pick(apiKey, "GEMINI_API_KEY", "GOOGLE_API_KEY"); key != "" {
			return newGeminiOrHTTP(ctx, key, model)
		}
	case "openai":
		if key := pick(apiKey, "OPENAI_API_KEY"); key != "" {
			return &OpenAIClient{APIKey: key, Model: defaultModel(model, "gpt-4o-mini")}
		}
	case "anthropic":
		if key := pick(apiKey, "ANTHROPIC_API_KEY"); key != "" {
			return &AnthropicClient{APIKey: key, Model: defaultModel(model, "claude-3-5-sonnet-latest")}
		}
	}

	if key := pick("", "GEMINI_API_KEY", "GOOGLE_API_KEY"); key != "" {
		return newGeminiOrHTTP(ctx, key, model)
	}
	if key := pick("", "OPENAI_API_KEY"); key != "" {
		return &OpenAIClient{APIKey: key, Model: defaultModel(model, "gpt-4o-mini")}
	}
	if key := pick("", "ANTHROPIC_API_KEY"); key != "" {
		return &AnthropicClient{APIKey: key, Model: defaultModel(model, "claude-3-5-sonnet-latest")}
	}
	return &MockClient{}
}

func newGeminiOrHTTP(ctx context.Context, key, model string) Client {
	if c, err := NewGemini(ctx, key, model); err == nil {
		return c
	}
	return &GeminiHTTPClient{APIKey: key, Model: model}
}

func pick(explicit string, envKeys ...string) string {
	if explicit != "" {
		return explicit
	}
	for _, k := range envKeys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func defaultModel(model, def string) string {
	if model != "" {
		return model
	}
	return def
}
