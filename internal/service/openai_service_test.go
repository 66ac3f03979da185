package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/fadilmartias/klarus-hr/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLLM(t *testing.T, h http.HandlerFunc) *OpenAIService {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewOpenAIService(&config.OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-test"})
}

func TestCompleteReturnsFirstChoice(t *testing.T) {
	svc := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-test", body["model"])
		assert.InDelta(t, 0.7, body["temperature"], 0.0001)
		assert.Len(t, body["messages"], 2)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Hello hiring world"}}]}`))
	})

	text, err := svc.Complete(context.Background(), ChatRequest{System: "sys", Prompt: "hi", Temperature: 0.7})
	require.NoError(t, err)
	assert.Equal(t, "Hello hiring world", text)
}

func TestCompleteSurfacesVendorError(t *testing.T) {
	svc := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	})

	_, err := svc.Complete(context.Background(), ChatRequest{Prompt: "hi"})
	var llmErr *LLMError
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, http.StatusUnauthorized, llmErr.StatusCode)
	assert.Equal(t, "Incorrect API key provided", llmErr.Message)
}

func TestCompleteRejectsMissingContent(t *testing.T) {
	svc := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := svc.Complete(context.Background(), ChatRequest{Prompt: "hi"})
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestCompleteRejectsEmptyPrompt(t *testing.T) {
	svc := NewOpenAIService(&config.OpenAIConfig{BaseURL: "http://127.0.0.1:0"})
	_, err := svc.Complete(context.Background(), ChatRequest{Prompt: "  "})
	assert.Error(t, err)
}
