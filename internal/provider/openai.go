package provider

import (
	"context"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI generates documentation through the OpenAI chat-completions API.
type OpenAI struct {
	client    *openai.Client
	model     string
	maxTokens int
	tracker   *Tracker
}

// NewOpenAI creates an OpenAI provider. An empty model selects gpt-4o-mini,
// the cheapest model with acceptable documentation quality.
func NewOpenAI(apiKey, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: OPENAI_API_KEY is required")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAI{
		client:    openai.NewClient(apiKey),
		model:     model,
		maxTokens: 16384,
		tracker: NewTracker("openai", model, Limits{
			// 500 RPM tier limit, 400 leaves headroom
			RequestsPerMinute: 400,
			CostPer1MInput:    0.15,
			CostPer1MOutput:   0.60,
		}),
	}, nil
}

// Name returns the provider name
func (p *OpenAI) Name() string { return "openai" }

// Stats returns accumulated usage statistics
func (p *OpenAI) Stats() Stats { return p.tracker.Stats() }

// Generate sends the prompts to the chat-completions endpoint and returns
// the raw response text.
func (p *OpenAI) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	if err := p.tracker.Acquire(ctx); err != nil {
		return "", err
	}

	var messages []openai.ChatCompletionMessage
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	log.Printf("[OpenAI] Sending request (%s, prompt %d chars)", p.model, len(prompt))

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		Messages:  messages,
		MaxTokens: p.maxTokens,
	})
	if err != nil {
		if strings.Contains(err.Error(), "insufficient_quota") {
			return "", fmt.Errorf("openai: %w: %v", ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("openai: API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices in response")
	}

	result := resp.Choices[0].Message.Content
	p.tracker.TrackCost(prompt+systemPrompt, result)
	return result, nil
}
