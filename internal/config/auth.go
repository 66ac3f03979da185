package config

import (
	"os"
	"sync"
)

type AuthConfig struct {
	// JWTSecret verifies the platform-issued bearer tokens (HS256).
	JWTSecret string
	// WebhookSecret is shared with the workflow-automation service.
	WebhookSecret string
	// TokenEncryptionKey is a base64 encoded 32 byte AES key for OAuth tokens at rest.
	TokenEncryptionKey string
}

var (
	authConfig *AuthConfig
	authOnce   sync.Once
)

func LoadAuthConfig() *AuthConfig {
	authOnce.Do(func() {
		authConfig = &AuthConfig{
			JWTSecret:          os.Getenv("AUTH_JWT_SECRET"),
			WebhookSecret:      os.Getenv("WEBHOOK_SECRET"),
			TokenEncryptionKey: os.Getenv("TOKEN_ENCRYPTION_KEY"),
		}
	})
	return authConfig
}
