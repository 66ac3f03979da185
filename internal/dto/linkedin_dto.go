package dto

import "github.com/google/uuid"

type ConnectResponse struct {
	AuthorizationURL string `json:"authorization_url"`
}

type CallbackResponse struct {
	RedirectTo string `json:"redirect_to"`
}

type PublishRequest struct {
	JobID      uuid.UUID `json:"job_id"`
	QueueRetry bool      `json:"queue_retry"`
}

type GenerateContentResponse struct {
	Content string `json:"content"`
}
