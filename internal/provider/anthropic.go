package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const anthropicEndpoint = "https://api.anthropic.com/v1/messages"

// Anthropic generates documentation through the Claude messages API.
type Anthropic struct {
	httpClient *http.Client
	apiKey     string
	model      string
	maxTokens  int
	tracker    *Tracker
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewAnthropic creates an Anthropic provider. An empty model selects Claude 3
// Haiku, the cheapest Claude model.
func NewAnthropic(apiKey, model string) (*Anthropic, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic: ANTHROPIC_API_KEY is required")
	}
	if model == "" {
		model = "claude-3-haiku-20240307"
	}

	return &Anthropic{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		apiKey:     apiKey,
		model:      model,
		maxTokens:  4096,
		tracker: NewTracker("anthropic", model, Limits{
			RequestsPerMinute: 50,
			CostPer1MInput:    0.25,
			CostPer1MOutput:   1.25,
		}),
	}, nil
}

// Name returns the provider name
func (p *Anthropic) Name() string { return "anthropic" }

// Stats returns accumulated usage statistics
func (p *Anthropic) Stats() Stats { return p.tracker.Stats() }

// Generate sends the prompts to the messages endpoint and returns the raw
// response text.
func (p *Anthropic) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	if err := p.tracker.Acquire(ctx); err != nil {
		return "", err
	}

	body, err := json.Marshal(anthropicRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		System:    systemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("anthropic: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	log.Printf("[Anthropic] Sending request (%s, prompt %d chars)", p.model, len(prompt))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic: API call failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("anthropic: read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("anthropic: %w: %s", ErrQuotaExceeded, truncateBody(raw))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic: API returned %d: %s", resp.StatusCode, truncateBody(raw))
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("anthropic: parse response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("anthropic: API error %s: %s", parsed.Error.Type, parsed.Error.Message)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("anthropic: empty content in response")
	}

	result := parsed.Content[0].Text
	p.tracker.TrackCost(prompt+systemPrompt, result)
	return result, nil
}

func truncateBody(raw []byte) string {
	const max = 500
	if len(raw) <= max {
		return string(raw)
	}
	return string(raw[:max]) + "..."
}
