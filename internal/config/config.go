package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the runtime settings for a documentation run. Values come
// from environment variables, with command-line flags overriding them.
type Config struct {
	Provider        string
	Model           string
	OutputDir       string
	OutputStructure string
	Pattern         string
	Incremental     bool
	ForceRebuild    bool
	Workers         int
	Port            string

	OpenAIAPIKey    string
	AnthropicAPIKey string
	GeminiAPIKey    string
	OllamaHost      string
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Provider:        getEnv("LLM_PROVIDER", "openai"),
		Model:           getEnv("LLM_MODEL", ""),
		OutputDir:       getEnv("OUTPUT_DIR", "documented"),
		OutputStructure: getEnv("OUTPUT_STRUCTURE", "flat"),
		Pattern:         getEnv("FILE_PATTERN", "*.rb"),
		Incremental:     true,
		Workers:         getEnvInt("PARALLEL_WORKERS", 0),
		Port:            getEnv("PORT", "8080"),

		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Provider {
	case "openai", "anthropic", "gemini", "minimax-m2", "mock":
	default:
		return fmt.Errorf("invalid LLM_PROVIDER %q", c.Provider)
	}

	switch c.OutputStructure {
	case "flat", "mirror":
	default:
		return fmt.Errorf("invalid OUTPUT_STRUCTURE %q (want flat or mirror)", c.OutputStructure)
	}

	if c.Workers < 0 {
		return fmt.Errorf("PARALLEL_WORKERS must not be negative, got %d", c.Workers)
	}
	return nil
}

// WorkerCount returns the configured worker count, or a provider-appropriate
// default when unset. Providers with strict rate limits get fewer workers.
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	switch c.Provider {
	case "openai":
		return 8
	case "anthropic":
		return 4
	default:
		return 1
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
