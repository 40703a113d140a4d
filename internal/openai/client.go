// Package openai generates transcripts through any OpenAI-compatible chat
// completion endpoint, including Ollama's /v1 API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	gogpt "github.com/sashabaranov/go-openai"
)

// Local servers ignore the key, but the client refuses an empty one.
const placeholderKey = "ollama"

type Client struct {
	client *gogpt.Client
	model  string
	logger *slog.Logger
}

func NewClient(apiKey, baseURL, model string, timeout time.Duration, logger *slog.Logger) *Client {
	if apiKey == "" {
		apiKey = placeholderKey
	}
	cfg := gogpt.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		client: gogpt.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

func (c *Client) Model() string { return c.model }

// Generate returns the assistant reply for prompt, or "" on any failure.
func (c *Client) Generate(ctx context.Context, prompt string) string {
	start := time.Now()
	text, err := c.generate(ctx, prompt)
	if err != nil {
		c.logger.Warn("openai generation failed", "model", c.model, "error", err, "elapsed", time.Since(start))
		return ""
	}
	c.logger.Debug("openai generation complete", "model", c.model, "chars", len(text), "elapsed", time.Since(start))
	return text
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, gogpt.ChatCompletionRequest{
		Model: c.model,
		Messages: []gogpt.ChatCompletionMessage{
			{Role: gogpt.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		var apiErr *gogpt.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("api error %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response choices")
	}
	return resp.Choices[0].Message.Content, nil
}
