package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func setupTestEnv(t *testing.T, outputDir string) {
	t.Helper()
	t.Setenv("LLM_PROVIDER", "mock")
	t.Setenv("OUTPUT_DIR", outputDir)
	t.Setenv("OUTPUT_STRUCTURE", "flat")
}

func TestHandleDocumentFile_MissingPath(t *testing.T) {
	setupTestEnv(t, t.TempDir())

	_, _, err := HandleDocumentFile(context.Background(), nil, DocumentFileParams{})
	if err == nil {
		t.Error("Expected error for empty path, got nil")
	}
}

func TestHandleDocumentFile_NonexistentFile(t *testing.T) {
	setupTestEnv(t, t.TempDir())

	_, _, err := HandleDocumentFile(context.Background(), nil, DocumentFileParams{Path: "/no/such/file.rb"})
	if err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

func TestHandleDocumentFile_Success(t *testing.T) {
	outputDir := t.TempDir()
	setupTestEnv(t, outputDir)

	src := filepath.Join(t.TempDir(), "player.rb")
	source := "class Player\n  def greet\n    \"hi\"\n  end\nend\n"
	if err := os.WriteFile(src, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}

	result, _, err := HandleDocumentFile(context.Background(), nil, DocumentFileParams{Path: src})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool returned error result: %v", result.Content)
	}

	text := result.Content[0].(*mcp.TextContent).Text
	if !strings.Contains(text, `"success": true`) {
		t.Fatalf("result should report success: %s", text)
	}

	out, err := os.ReadFile(filepath.Join(outputDir, "documented", "player.rb"))
	if err != nil {
		t.Fatalf("documented output should exist: %v", err)
	}
	if !strings.Contains(string(out), "# Placeholder documentation") {
		t.Fatal("output should contain inserted comments")
	}
}

func TestHandleDocumentFile_InvalidProvider(t *testing.T) {
	setupTestEnv(t, t.TempDir())

	src := filepath.Join(t.TempDir(), "a.rb")
	if err := os.WriteFile(src, []byte("class A\nend\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, _, err := HandleDocumentFile(context.Background(), nil, DocumentFileParams{Path: src, Provider: "skynet"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Error("expected an error result for unknown provider")
	}
}
