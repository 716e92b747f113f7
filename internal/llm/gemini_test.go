package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/review-relay/internal/core"
)

func TestGeminiGenerate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", r.URL.Path)
			assert.Equal(t, "test-key", r.URL.Query().Get("key"))

			var req geminiGenerateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Contents, 1)
			assert.Equal(t, "review this", req.Contents[0].Parts[0].Text)

			_ = json.NewEncoder(w).Encode(map[string]any{
				"candidates": []map[string]any{
					{"content": map[string]any{"parts": []map[string]string{{"text": "Looks good."}}}},
				},
			})
		}))
		defer server.Close()

		client := NewGeminiClient("test-key", "gemini-1.5-flash", 5*time.Second)
		client.SetBaseURL(server.URL)

		got, err := client.Generate(context.Background(), "review this")
		require.NoError(t, err)
		assert.Equal(t, "Looks good.", got)
	})

	t.Run("api error surfaces the upstream message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"},
			})
		}))
		defer server.Close()

		client := NewGeminiClient("bad-key", "gemini-1.5-flash", 5*time.Second)
		client.SetBaseURL(server.URL)

		_, err := client.Generate(context.Background(), "prompt")

		var genErr *core.GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, "gemini", genErr.Provider)
		assert.Contains(t, err.Error(), "API key not valid")
	})

	t.Run("no candidates is a generation error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
		}))
		defer server.Close()

		client := NewGeminiClient("test-key", "gemini-1.5-flash", 5*time.Second)
		client.SetBaseURL(server.URL)

		_, err := client.Generate(context.Background(), "prompt")

		var genErr *core.GenerationError
		assert.ErrorAs(t, err, &genErr)
	})

	t.Run("unreachable server is a generation error", func(t *testing.T) {
		client := NewGeminiClient("test-key", "gemini-1.5-flash", time.Second)
		client.SetBaseURL("http://127.0.0.1:1")

		_, err := client.Generate(context.Background(), "prompt")

		var genErr *core.GenerationError
		assert.ErrorAs(t, err, &genErr)
	})
}
