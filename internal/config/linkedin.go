package config

import (
	"os"
	"sync"
)

type LinkedInConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	APIBaseURL   string
	APIVersion   string
}

var (
	linkedInConfig *LinkedInConfig
	linkedInOnce   sync.Once
)

func LoadLinkedInConfig() *LinkedInConfig {
	linkedInOnce.Do(func() {
		linkedInConfig = &LinkedInConfig{
			ClientID:     os.Getenv("LINKEDIN_CLIENT_ID"),
			ClientSecret: os.Getenv("LINKEDIN_CLIENT_SECRET"),
			RedirectURI:  os.Getenv("LINKEDIN_REDIRECT_URI"),
			APIBaseURL:   getEnvWithDefault("LINKEDIN_API_BASE_URL", "https://api.linkedin.com"),
			APIVersion:   getEnvWithDefault("LINKEDIN_API_VERSION", "202401"),
		}
	})
	return linkedInConfig
}
