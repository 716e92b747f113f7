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

const (
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com"
	geminiDefaultTimeout = 60 * time.Second
)

// GeminiClient is an HTTP client for the Google Gemini generateContent API.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGeminiClient creates a Gemini provider for the given model.
func NewGeminiClient(apiKey, model string, timeout time.Duration) *GeminiClient {
	if timeout <= 0 {
		timeout = geminiDefaultTimeout
	}
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: geminiDefaultBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// SetBaseURL overrides the API base URL (for testing).
func (c *GeminiClient) SetBaseURL(url string) {
	c.baseURL = url
}

// Name implements Provider.
func (c *GeminiClient) Name() string { return "gemini" }

type geminiGenerateRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate implements Provider against the generateContent endpoint.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := geminiGenerateRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", c.failf(err, "failed to marshal request")
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
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
		var apiErr geminiErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", c.failf(fmt.Errorf("status %d: %s", resp.StatusCode, apiErr.Error.Message), "api error")
		}
		return "", c.failf(fmt.Errorf("unexpected status %d", resp.StatusCode), "api error")
	}

	var result geminiGenerateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", c.failf(err, "failed to decode response")
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", c.failf(fmt.Errorf("response contained no candidates"), "empty completion")
	}

	return result.Candidates[0].Content.Parts[0].Text, nil
}

func (c *GeminiClient) failf(err error, msg string) error {
	return &core.GenerationError{Provider: c.Name(), Err: fmt.Errorf("%s: %w", msg, err)}
}
