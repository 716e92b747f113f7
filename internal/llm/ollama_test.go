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

func TestOllamaGenerate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/generate", r.URL.Path)

			var req ollamaGenerateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "llama3:latest", req.Model)
			assert.Equal(t, "review this", req.Prompt)
			assert.False(t, req.Stream)

			_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "Consider error handling.", Done: true})
		}))
		defer server.Close()

		client := NewOllamaClient(server.URL, "llama3:latest", 5*time.Second)

		got, err := client.Generate(context.Background(), "review this")
		require.NoError(t, err)
		assert.Equal(t, "Consider error handling.", got)
	})

	t.Run("non-200 status is a generation error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer server.Close()

		client := NewOllamaClient(server.URL, "missing:model", 5*time.Second)

		_, err := client.Generate(context.Background(), "prompt")

		var genErr *core.GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, "ollama", genErr.Provider)
	})
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		apiKey   string
		wantName string
		wantErr  bool
	}{
		{name: "gemini", provider: "gemini", apiKey: "key", wantName: "gemini"},
		{name: "gemini without key", provider: "gemini", wantErr: true},
		{name: "ollama", provider: "ollama", wantName: "ollama"},
		{name: "unknown", provider: "openai", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.provider, "some-model", tt.apiKey, "http://localhost:11434", time.Second)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}
