package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avoronov/review-relay/internal/core"
)

// Local models can be slow.
const ollamaDefaultTimeout = 120 * time.Second

// OllamaClient is an HTTP client for the Ollama generate API.
type OllamaClient struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaClient creates an Ollama provider for the given host and model.
func NewOllamaClient(baseURL, model string, timeout time.Duration) *OllamaClient {
	if timeout <= 0 {
		timeout = ollamaDefaultTimeout
	}
	return &OllamaClient{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// SetBaseURL overrides the API base URL (for testing).
func (c *OllamaClient) SetBaseURL(url string) {
	c.baseURL = url
}

// Name implements Provider.
func (c *OllamaClient) Name() string { return "ollama" }

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate implements Provider against /api/generate without streaming.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := ollamaGenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", c.failf(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return "", c.failf(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", c.failf(err, "request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.failf(err, "failed to read response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", c.failf(fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(body)), "api error")
	}

	var result ollamaGenerateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", c.failf(err, "failed to decode response")
	}
	return result.Response, nil
}

func (c *OllamaClient) failf(err error, msg string) error {
	return &core.GenerationError{Provider: c.Name(), Err: fmt.Errorf("%s: %w", msg, err)}
}
