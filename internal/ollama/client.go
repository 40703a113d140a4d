package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single generation call. Local models are slow.
const DefaultTimeout = 600 * time.Second

type Client struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL, model string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) Model() string { return c.model }

type request struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type response struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Generate returns the model's completion for prompt, or "" when the call
// fails for any reason. Failures are logged, never returned.
func (c *Client) Generate(ctx context.Context, prompt string) string {
	start := time.Now()
	text, err := c.generate(ctx, prompt)
	if err != nil {
		c.logger.Warn("ollama generation failed", "model", c.model, "error", err, "elapsed", time.Since(start))
		return ""
	}
	c.logger.Debug("ollama generation complete", "model", c.model, "chars", len(text), "elapsed", time.Since(start))
	return text
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(request{Model: c.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return "", fmt.Errorf("api error %d: %s", resp.StatusCode, errResp.Error)
		}
		return "", fmt.Errorf("api error %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	return apiResp.Response, nil
}
