package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var numberedLineRegex = regexp.MustCompile(`(?m)^\s*(\d+): (.*)$`)

// Mock is an offline provider for testing the pipeline without API access.
// It scans the numbered source listing in the prompt and emits a canned
// directive for each class and method definition it finds.
type Mock struct {
	tracker *Tracker
}

// NewMock creates the mock provider.
func NewMock() *Mock {
	return &Mock{tracker: NewTracker("mock", "mock", Limits{})}
}

// Name returns the provider name
func (p *Mock) Name() string { return "mock" }

// Stats returns accumulated usage statistics
func (p *Mock) Stats() Stats { return p.tracker.Stats() }

// Generate returns a fenced JSON block of directives derived from the
// numbered lines in the prompt. The system prompt is ignored.
func (p *Mock) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	if err := p.tracker.Acquire(ctx); err != nil {
		return "", err
	}

	type directive struct {
		LineNumber int    `json:"line_number"`
		Anchor     string `json:"anchor"`
		Indent     int    `json:"indent"`
		Comment    string `json:"comment"`
	}

	var directives []directive
	for _, m := range numberedLineRegex.FindAllStringSubmatch(prompt, -1) {
		num := 0
		fmt.Sscanf(m[1], "%d", &num)
		line := m[2]
		trimmed := strings.TrimLeft(line, " \t")
		indent := len(line) - len(trimmed)

		switch {
		case strings.HasPrefix(trimmed, "class ") || strings.HasPrefix(trimmed, "module "):
			directives = append(directives, directive{
				LineNumber: num,
				Anchor:     trimmed,
				Indent:     indent,
				Comment:    "# Placeholder documentation for this definition.",
			})
		case strings.HasPrefix(trimmed, "def "):
			name := strings.TrimPrefix(trimmed, "def ")
			directives = append(directives, directive{
				LineNumber: num,
				Anchor:     trimmed,
				Indent:     indent,
				Comment:    "# Placeholder documentation.\n# @return [Object] result of " + name,
			})
		}
	}

	body, err := json.MarshalIndent(directives, "", "  ")
	if err != nil {
		return "", fmt.Errorf("mock: marshal directives: %w", err)
	}
	return "```json\n" + string(body) + "\n```", nil
}
