package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	// Load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	log.Println("[MCP Doc Server] Starting Documentation MCP Server v1.0.0")
	log.Printf("[MCP Doc Server] Default provider: %s", defaultProvider())

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "lich5-doc-server",
		Version: "v1.0.0",
	}, nil)

	tool := &mcp.Tool{
		Name:        "document_file",
		Description: "Generate YARD documentation for a Ruby file and write the documented copy to the output directory",
	}
	mcp.AddTool(server, tool, HandleDocumentFile)
	log.Println("[MCP Doc Server] Registered tool: document_file")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("[MCP Doc Server] Received shutdown signal")
		cancel()
	}()

	log.Println("[MCP Doc Server] Starting on stdio transport...")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("[MCP Doc Server] Server error: %v", err)
	}
	log.Println("[MCP Doc Server] Server stopped gracefully")
}

func defaultProvider() string {
	if p := os.Getenv("LLM_PROVIDER"); p != "" {
		return p
	}
	return "openai"
}
