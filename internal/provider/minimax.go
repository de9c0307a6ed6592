package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOllamaHost is where a local Ollama daemon listens.
const DefaultOllamaHost = "http://localhost:11434"

// Minimax runs the open-source MiniMax-M2 model locally through Ollama's
// OpenAI-compatible endpoint. Zero cost, no rate limits.
type Minimax struct {
	client  *openai.Client
	model   string
	tracker *Tracker
}

// NewMinimax creates a MiniMax-M2 provider backed by a local Ollama daemon.
// It probes the daemon at construction time so a missing server fails fast
// instead of failing every file.
func NewMinimax(host, model string) (*Minimax, error) {
	if host == "" {
		host = DefaultOllamaHost
	}
	if model == "" {
		model = "minimax-m2:latest"
	}

	if err := probeOllama(host, model); err != nil {
		return nil, err
	}

	cfg := openai.DefaultConfig("ollama")
	cfg.BaseURL = strings.TrimSuffix(host, "/") + "/v1"

	return &Minimax{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		tracker: NewTracker("minimax-m2", model, Limits{}),
	}, nil
}

// Name returns the provider name
func (p *Minimax) Name() string { return "minimax-m2" }

// Stats returns accumulated usage statistics
func (p *Minimax) Stats() Stats { return p.tracker.Stats() }

// Generate sends the prompts to the local model and returns the raw
// response text.
func (p *Minimax) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
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

	log.Printf("[MiniMax] Sending request (%s, prompt %d chars)", p.model, len(prompt))

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("minimax: API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("minimax: no choices in response")
	}

	return resp.Choices[0].Message.Content, nil
}

// probeOllama verifies the daemon is reachable and warns when the model has
// not been pulled yet.
func probeOllama(host, model string) error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(strings.TrimSuffix(host, "/") + "/api/tags")
	if err != nil {
		return fmt.Errorf("minimax: cannot connect to Ollama at %s (is 'ollama serve' running?): %w", host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[MiniMax] Ollama responded with status %d", resp.StatusCode)
		return nil
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil
	}

	base := strings.SplitN(model, ":", 2)[0]
	for _, m := range tags.Models {
		if strings.Contains(m.Name, base) {
			log.Printf("[MiniMax] Model %s available in Ollama", model)
			return nil
		}
	}
	log.Printf("[MiniMax] Model %s not found in Ollama, run 'ollama pull %s' first", model, model)
	return nil
}
