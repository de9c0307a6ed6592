package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Nisugi/lich-5-docs-minimax-test/internal/config"
	"github.com/Nisugi/lich-5-docs-minimax-test/internal/generator"
	"github.com/Nisugi/lich-5-docs-minimax-test/internal/provider"
)

// DocumentFileParams defines the input parameters for the document_file tool
type DocumentFileParams struct {
	Path     string `json:"path" jsonschema:"Path to the Ruby file to document"`
	Provider string `json:"provider,omitempty" jsonschema:"LLM provider override: openai, anthropic, gemini, minimax-m2 or mock"`
}

// HandleDocumentFile runs the single-file documentation pipeline for the
// requested path and reports the output location.
func HandleDocumentFile(
	ctx context.Context,
	req *mcp.CallToolRequest,
	params DocumentFileParams,
) (*mcp.CallToolResult, any, error) {
	log.Printf("[MCP Doc Server] Received document_file request for %s", params.Path)

	if params.Path == "" {
		return nil, nil, fmt.Errorf("path parameter is required")
	}

	info, err := os.Stat(params.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("file not found: %s", params.Path)
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("path is a directory, want a file: %s", params.Path)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	if params.Provider != "" {
		cfg.Provider = params.Provider
	}

	if err := provider.ValidateEnvironment(cfg.Provider); err != nil {
		return toolError(err), nil, nil
	}

	aiProvider, err := provider.New(ctx, &provider.Config{
		Name:            cfg.Provider,
		Model:           cfg.Model,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		OllamaHost:      cfg.OllamaHost,
	})
	if err != nil {
		return toolError(err), nil, nil
	}

	abs, err := filepath.Abs(params.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve path: %w", err)
	}

	gen, err := generator.New(aiProvider, nil, generator.Options{
		OutputDir:       cfg.OutputDir,
		OutputStructure: cfg.OutputStructure,
		SourceRoot:      filepath.Dir(abs),
		Incremental:     cfg.Incremental,
	})
	if err != nil {
		return toolError(err), nil, nil
	}

	outputPath, err := gen.ProcessSingle(ctx, abs)
	if err != nil {
		log.Printf("[MCP Doc Server] Failed to document %s: %v", params.Path, err)
		return toolError(err), nil, nil
	}

	resultText := fmt.Sprintf(`{
  "success": true,
  "input": %q,
  "output": %q,
  "provider": %q
}`, abs, outputPath, aiProvider.Name())

	log.Printf("[MCP Doc Server] Successfully documented %s", params.Path)

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: resultText},
		},
	}, nil, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Error: %v", err)},
		},
		IsError: true,
	}
}
