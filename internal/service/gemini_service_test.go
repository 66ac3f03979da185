package service

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, time.Second, calculateBackoff(1, time.Second, 30*time.Second))
	assert.Equal(t, 4*time.Second, calculateBackoff(3, time.Second, 30*time.Second))
	assert.Equal(t, 30*time.Second, calculateBackoff(10, time.Second, 30*time.Second))
}

func TestCircuitBreakerRejectsWithoutCallingVendor(t *testing.T) {
	s := &GeminiService{circuitBreakerMax: 2, RequestTimeout: time.Second}
	s.recordFailure()
	s.recordFailure()

	_, err := s.GenerateEmbedding(context.Background(), "Go developer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")

	s.ResetCircuitBreaker()
	errs, open := s.CircuitBreakerStatus()
	assert.Zero(t, errs)
	assert.False(t, open)
}

func TestGenerateEmbeddingRejectsEmptyText(t *testing.T) {
	s := &GeminiService{circuitBreakerMax: 5}
	_, err := s.GenerateEmbedding(context.Background(), "   ")
	assert.Error(t, err)
}

func TestIsRetryableGeminiError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"rate limited", genai.APIError{Code: 429}, true},
		{"unavailable", errors.Wrap(genai.APIError{Code: 503}, "embed"), true},
		{"bad request", genai.APIError{Code: 400}, false},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"other", errors.New("invalid model"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableGeminiError(tt.err))
		})
	}
}

func TestValidateEmbeddingResponse(t *testing.T) {
	_, err := validateEmbeddingResponse(nil)
	assert.Error(t, err)

	_, err = validateEmbeddingResponse(&genai.EmbedContentResponse{})
	assert.Error(t, err)

	_, err = validateEmbeddingResponse(&genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: []float32{0.1, float32(math.NaN())}}},
	})
	assert.Error(t, err)

	values, err := validateEmbeddingResponse(&genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: []float32{0.1, 0.2}}},
	})
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, values)
}

func TestTruncateUTF8KeepsRuneBoundary(t *testing.T) {
	assert.Equal(t, "abc", truncateUTF8("abc", 10))
	assert.Equal(t, "ab", truncateUTF8("abcd", 2))

	// "é" is two bytes; cutting at 2 would split it
	got := truncateUTF8("aé", 2)
	assert.Equal(t, "a", got)
	assert.True(t, utf8.ValidString(got))

	long := strings.Repeat("日本", maxEmbeddingInput)
	got = truncateUTF8(long, maxEmbeddingInput)
	assert.LessOrEqual(t, len(got), maxEmbeddingInput)
	assert.True(t, utf8.ValidString(got))
}
