package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fadilmartias/klarus-hr/internal/config"
	"github.com/fadilmartias/klarus-hr/internal/logger"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// ErrEmptyCompletion is returned when the vendor answers 2xx without choice content.
var ErrEmptyCompletion = errors.New("no content in completion response")

type ChatRequest struct {
	System      string
	Prompt      string
	Temperature float64
}

type LLMServiceInterface interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// LLMError carries a non-2xx answer from the completion endpoint.
type LLMError struct {
	StatusCode int
	Message    string
}

func (e *LLMError) Error() string {
	return fmt.Sprintf("llm request failed: status %d: %s", e.StatusCode, e.Message)
}

type OpenAIService struct {
	client *resty.Client
	model  string
}

const completionTimeout = 20 * time.Second

func NewOpenAIService(cfg *config.OpenAIConfig) *OpenAIService {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(completionTimeout)
	return &OpenAIService{client: client, model: cfg.Model}
}

// Complete performs exactly one chat completion. No retries.
func (s *OpenAIService) Complete(ctx context.Context, req ChatRequest) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", errors.New("prompt cannot be empty")
	}

	messages := make([]map[string]string, 0, 2)
	if req.System != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.System})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.Prompt})

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"model":       s.model,
			"messages":    messages,
			"temperature": req.Temperature,
		}).
		Post("/chat/completions")
	if err != nil {
		return "", errors.Wrap(err, "chat completion request")
	}

	body := resp.String()
	if resp.IsError() {
		msg := gjson.Get(body, "error.message").String()
		if msg == "" {
			msg = resp.Status()
		}
		logger.Warnw("Chat completion rejected", "status", resp.StatusCode(), "message", msg)
		return "", &LLMError{StatusCode: resp.StatusCode(), Message: msg}
	}

	text := gjson.Get(body, "choices.0.message.content").String()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
