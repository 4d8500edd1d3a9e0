package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

type AnthropicClient struct {
	APIKey string
	Model  string
}

func (c *AnthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"model":      c.Model,
		"max_tokens": 1024,
		"messages": []map[string]any{{
			"role":    "user",
			"content": []map[string]string{{"type": "text", "text": prompt}},
		}},
	}
	var resp struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := c.postJSON(ctx, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Content) == 0 {
		return "", errors.New("no content")
	}
	return resp.Content[0].Text, nil
}

func (c *AnthropicClient) postJSON(ctx context.Context, body any, out any) error {
	b, _ := json.Marshal(body)
	url := os.Getenv("ANTHROPIC_API_URL")
	if url == "" {
		url = "https://api.anthropic.com/v1/messages"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("content-type", "application/json")
	httpClient := &http.Client{Timeout: clientTimeout()}
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		res, err := httpClient.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			if isTimeout(err) {
				time.Sleep(backoff(attempt))
				continue
			}
			return err
		}
		if res.StatusCode >= 200 && res.StatusCode < 300 {
			err := json.NewDecoder(res.Body).Decode(out)
			res.Body.Close()
			return err
		}
		var eresp map[string]any
		_ = json.NewDecoder(res.Body).Decode(&eresp)
		res.Body.Close()
		lastErr = fmt.Errorf("anthropic status %d: %v", res.StatusCode, eresp)
		if res.StatusCode == 408 || res.StatusCode == 429 || (res.StatusCode >= 500 && res.StatusCode <= 599) {
			time.Sleep(backoff(attempt))
			continue
		}
		return lastErr
	}
	return lastErr
}
