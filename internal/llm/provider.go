package llm

import (
	"context"
	"fmt"
	"time"

	"mailtriage/config"
)

// Provider defines a generic LLM interface.
type Provider interface {
	// Name is the short provider key ("gemini", "ollama", "bedrock").
	Name() string
	// EngineName is the human-readable engine label surfaced in API
	// responses and analytics.
	EngineName() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewProviderFromConfig creates a Provider from config fields.
func NewProviderFromConfig(cfg config.AIConfig) (Provider, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	switch cfg.Provider {
	case "gemini", "":
		return NewGemini(cfg.APIKey, cfg.Model, timeout), nil
	case "ollama":
		return NewOllama(cfg.Endpoint, cfg.Model, timeout), nil
	case "bedrock":
		return NewBedrock(cfg.Region, cfg.Model, timeout)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
