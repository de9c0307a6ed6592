package provider

import (
	"context"
	"fmt"
	"os"
)

// Config selects and parameterizes a provider backend.
type Config struct {
	Name            string
	Model           string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GeminiAPIKey    string
	OllamaHost      string
}

// New constructs the provider named in cfg.Name.
func New(ctx context.Context, cfg *Config) (Provider, error) {
	switch cfg.Name {
	case "openai":
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.Model)
	case "anthropic":
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.Model)
	case "gemini":
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.Model)
	case "minimax-m2":
		return NewMinimax(cfg.OllamaHost, cfg.Model)
	case "mock":
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want openai, anthropic, gemini, minimax-m2 or mock)", cfg.Name)
	}
}

// ValidateEnvironment checks that the credentials the named provider needs
// are present before any files are processed.
func ValidateEnvironment(name string) error {
	required := map[string]string{
		"openai":    "OPENAI_API_KEY",
		"anthropic": "ANTHROPIC_API_KEY",
		"gemini":    "GEMINI_API_KEY",
	}
	envVar, ok := required[name]
	if !ok {
		return nil
	}
	if os.Getenv(envVar) == "" {
		return fmt.Errorf("provider %s requires %s to be set", name, envVar)
	}
	return nil
}
