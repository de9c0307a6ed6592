package provider

import (
	"context"
	"fmt"
	"log"

	genai "google.golang.org/genai"
)

// Gemini generates documentation through the Google Gemini API. The free
// tier has severe rate limits, so the defaults are conservative.
type Gemini struct {
	cli     *genai.Client
	model   string
	tracker *Tracker
}

// NewGemini creates a Gemini provider. An empty model selects the 2.0 Flash
// experimental model.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: GEMINI_API_KEY is required")
	}
	if model == "" {
		model = "gemini-2.0-flash-exp"
	}

	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Gemini{
		cli:   cli,
		model: model,
		tracker: NewTracker("gemini", model, Limits{
			// Actual free tier limits are lower than documented
			RequestsPerMinute: 8,
			RequestsPerDay:    150,
		}),
	}, nil
}

// Name returns the provider name
func (p *Gemini) Name() string { return "gemini" }

// Stats returns accumulated usage statistics
func (p *Gemini) Stats() Stats { return p.tracker.Stats() }

// Generate sends the prompts to Gemini and returns the raw response text.
// Gemini has no separate system role here, so the system prompt is prefixed
// to the user prompt.
func (p *Gemini) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	if err := p.tracker.Acquire(ctx); err != nil {
		return "", err
	}

	full := prompt
	if systemPrompt != "" {
		full = systemPrompt + "\n\n" + prompt
	}

	log.Printf("[Gemini] Sending request (%s, prompt %d chars)", p.model, len(full))

	resp, err := p.cli.Models.GenerateContent(ctx, p.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return "", fmt.Errorf("gemini: API call failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: empty response (possibly safety-blocked)")
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil
}
