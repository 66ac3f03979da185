package service

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/fadilmartias/klarus-hr/internal/config"
	"github.com/fadilmartias/klarus-hr/internal/logger"
	"google.golang.org/genai"
)

const maxEmbeddingInput = 10000

type EmbeddingServiceInterface interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// GeminiService produces embeddings for CV/job matching. Unlike chat
// completions it retries transient failures, guarded by a circuit breaker.
type GeminiService struct {
	client            *genai.Client
	model             string
	MaxRetries        int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	RequestTimeout    time.Duration
	circuitBreakerMax int

	mu                sync.Mutex
	consecutiveErrors int
}

func NewGeminiService(ctx context.Context, cfg *config.GeminiConfig) (*GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client")
	}
	return &GeminiService{
		client:            client,
		model:             cfg.EmbeddingModel,
		MaxRetries:        3,
		BaseDelay:         time.Second,
		MaxDelay:          30 * time.Second,
		RequestTimeout:    60 * time.Second,
		circuitBreakerMax: 5,
	}, nil
}

func (s *GeminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, errors.New("text for embedding cannot be empty")
	}
	if len(trimmed) > maxEmbeddingInput {
		logger.Warnw("Embedding input truncated", "length", len(trimmed))
		trimmed = truncateUTF8(trimmed, maxEmbeddingInput)
	}

	if errs, open := s.CircuitBreakerStatus(); open {
		return nil, errors.Newf("circuit breaker open: too many consecutive errors (%d)", errs)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.RequestTimeout)
	defer cancel()

	content := []*genai.Content{genai.NewContentFromText(trimmed, genai.RoleUser)}

	var lastErr error
	for attempt := 0; attempt <= s.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := calculateBackoff(attempt, s.BaseDelay, s.MaxDelay)
			logger.Infow("Retrying embedding", "attempt", attempt, "max_retries", s.MaxRetries, "delay", delay)

			select {
			case <-time.After(delay):
			case <-timeoutCtx.Done():
				return nil, errors.Wrap(timeoutCtx.Err(), "context timeout during retry")
			}
		}

		result, err := s.client.Models.EmbedContent(timeoutCtx, s.model, content, nil)
		if err == nil {
			s.recordSuccess()
			return validateEmbeddingResponse(result)
		}

		lastErr = err
		if !isRetryableGeminiError(err) {
			s.recordFailure()
			return nil, errors.Wrap(err, "generate embedding failed")
		}
		logger.Warnw("Retryable embedding error", "attempt", attempt+1, "error", err)
	}

	s.recordFailure()
	return nil, errors.Wrapf(lastErr, "max retries (%d) exceeded for GenerateEmbedding", s.MaxRetries)
}

func (s *GeminiService) recordSuccess() {
	s.mu.Lock()
	s.consecutiveErrors = 0
	s.mu.Unlock()
}

func (s *GeminiService) recordFailure() {
	s.mu.Lock()
	s.consecutiveErrors++
	s.mu.Unlock()
}

func (s *GeminiService) ResetCircuitBreaker() {
	s.recordSuccess()
	logger.Infow("Circuit breaker reset")
}

func (s *GeminiService) CircuitBreakerStatus() (consecutiveErrors int, isOpen bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consecutiveErrors, s.consecutiveErrors >= s.circuitBreakerMax
}

// calculateBackoff doubles base per attempt, capped at max, with a +/-12.5% spread.
func calculateBackoff(attempt int, base, max time.Duration) time.Duration {
	delay := base * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > max {
		delay = max
	}
	jitter := time.Duration(float64(delay) * 0.25)
	return delay - jitter/2 + time.Duration(float64(jitter)*0.5)
}

func isRetryableGeminiError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 500, 502, 503, 504:
			return true
		default:
			return false
		}
	}

	msg := err.Error()
	for _, marker := range []string{"connection refused", "connection reset", "timeout", "temporary failure", "EOF"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func validateEmbeddingResponse(resp *genai.EmbedContentResponse) ([]float32, error) {
	if resp == nil {
		return nil, errors.New("response is nil")
	}
	if len(resp.Embeddings) == 0 {
		return nil, errors.New("no embeddings returned")
	}

	values := resp.Embeddings[0].Values
	if len(values) == 0 {
		return nil, errors.New("embedding vector is empty")
	}
	for i, val := range values {
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return nil, errors.Newf("invalid embedding value at index %d: %v", i, val)
		}
	}
	return values, nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
