package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Nisugi/lich-5-docs-minimax-test/internal/config"
)

func TestParseArgsRequiresInput(t *testing.T) {
	_, err := parseArgs([]string{})
	if err == nil || !strings.Contains(err.Error(), "input directory") {
		t.Fatalf("expected missing input error, got %v", err)
	}
}

func TestParseArgsFileMode(t *testing.T) {
	args, err := parseArgs([]string{"-file", "lib/player.rb", "-provider", "mock"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if args.file != "lib/player.rb" || args.provider != "mock" {
		t.Fatalf("args = %+v", args)
	}
	if args.input != "" {
		t.Fatalf("input should be empty in file mode, got %q", args.input)
	}
}

func TestParseArgsDirectoryMode(t *testing.T) {
	args, err := parseArgs([]string{"-output-structure", "mirror", "-workers", "4", "src"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if args.input != "src" {
		t.Fatalf("input = %q, want src", args.input)
	}
	if args.outputStructure != "mirror" || args.workers != 4 {
		t.Fatalf("args = %+v", args)
	}
}

func TestApplyArgsOverridesConfig(t *testing.T) {
	cfg := &config.Config{
		Provider:        "mock",
		OutputDir:       "documented",
		OutputStructure: "flat",
		Pattern:         "*.rb",
		Incremental:     true,
	}
	applyArgs(cfg, &cliArgs{
		provider:      "openai",
		output:        "custom",
		noIncremental: true,
	})

	if cfg.Provider != "openai" {
		t.Errorf("provider = %q", cfg.Provider)
	}
	if cfg.OutputDir != "custom" {
		t.Errorf("output dir = %q", cfg.OutputDir)
	}
	if !cfg.ForceRebuild {
		t.Error("no-incremental should set ForceRebuild")
	}
	if cfg.OutputStructure != "flat" || cfg.Pattern != "*.rb" {
		t.Error("unset flags should not clobber config")
	}
}

func TestResolveInputFileMode(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.rb")
	if err := os.WriteFile(file, []byte("class A\nend\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	root, input, err := resolveInput(&cliArgs{file: file})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if input != file {
		t.Fatalf("input = %q, want %q", input, file)
	}
	if root != dir {
		t.Fatalf("source root = %q, want parent dir %q", root, dir)
	}
}

func TestResolveInputRejectsMissingPaths(t *testing.T) {
	if _, _, err := resolveInput(&cliArgs{file: "/does/not/exist.rb"}); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, _, err := resolveInput(&cliArgs{input: "/does/not/exist"}); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestResolveInputDirectoryMode(t *testing.T) {
	dir := t.TempDir()
	root, input, err := resolveInput(&cliArgs{input: dir})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if root != input {
		t.Fatalf("directory mode should root at the input: %q != %q", root, input)
	}
}
