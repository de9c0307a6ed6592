package provider

import (
	"context"
	"errors"
)

// Provider is the interface every text-generation backend implements. The
// pipeline treats it as a single injected capability; quota and timeout
// conditions surface as errors and leave the file unmodified.
type Provider interface {
	// Generate produces a raw response for the given prompts.
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)

	// Name returns the provider name
	Name() string

	// Stats returns accumulated request and cost statistics
	Stats() Stats
}

// ErrQuotaExceeded indicates the backend rejected the request for quota or
// billing reasons. The affected file is recorded as failed and retried on the
// next run.
var ErrQuotaExceeded = errors.New("provider: quota exceeded")

// ErrDailyLimit indicates the provider's own daily request budget ran out.
var ErrDailyLimit = errors.New("provider: daily request limit reached")

// Stats captures per-provider usage counters for the run summary and the
// metadata file.
type Stats struct {
	Provider      string  `json:"provider"`
	Model         string  `json:"model"`
	Requests      int     `json:"requests"`
	DailyRequests int     `json:"daily_requests"`
	EstimatedCost float64 `json:"estimated_cost"`
}
