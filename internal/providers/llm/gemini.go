package llm

import (
	"context"
	"errors"
	"fmt"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Candidate models, tried in order until one constructs and answers.
var geminiCandidates = []string{
	"gemini-2.0-flash",
	"gemini-2.5-flash",
	"gemini-2.0-flash-lite",
	"gemini-1.5-flash",
}

// GeminiClient talks to Gemini through the official SDK.
type GeminiClient struct {
	client *genai.Client
	models []string
}

// NewGemini builds an SDK-backed client. When model is empty, a built-in
// candidate list is tried per request, most capable first.
func NewGemini(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("missing gemini api key")
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	candidates := geminiCandidates
	if model != "" {
		candidates = []string{model}
	}
	return &GeminiClient{client: c, models: candidates}, nil
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for _, name := range g.models {
		resp, err := g.client.GenerativeModel(name).GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}
		if txt := firstText(resp); txt != "" {
			return txt, nil
		}
		lastErr = errors.New("no candidates in response")
	}
	return "", lastErr
}

func (g *GeminiClient) Close() error { return g.client.Close() }

func firstText(r *genai.GenerateContentResponse) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Candidates {
		if c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
