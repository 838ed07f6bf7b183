package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/markvz/proefgesprek/internal/config"
)

// ErrNoCredentials means the configured provider has no API key. The
// relay turns it into a 5xx response before any backend call.
var ErrNoCredentials = errors.New("backend credentials missing")

// NewProvider builds the provider selected by the configuration.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	switch cfg.Provider {
	case "", "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, ErrNoCredentials
		}
		return NewGeminiProvider(ctx, cfg.Gemini.APIKey, cfg.Gemini.Models["smart"])
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, ErrNoCredentials
		}
		return NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}
