package config

import (
	"os"
	"sync"
)

// OpenAIConfig targets any OpenAI-compatible chat completion endpoint
// (OpenAI itself or OpenRouter).
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

var (
	openAIConfig *OpenAIConfig
	openAIOnce   sync.Once
)

func LoadOpenAIConfig() *OpenAIConfig {
	openAIOnce.Do(func() {
		openAIConfig = &OpenAIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: getEnvWithDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:   getEnvWithDefault("OPENAI_MODEL", "gpt-4o-mini"),
		}
	})
	return openAIConfig
}
