package generator

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Nisugi/lich-5-docs-minimax-test/internal/provider"
	"github.com/Nisugi/lich-5-docs-minimax-test/internal/taskstore"
)

const sampleRuby = `module Game
  class Player
    def initialize(name)
      @name = name
    end

    def greet
      "hello"
    end
  end
end
`

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestGenerator(t *testing.T, src string, opts Options) *Generator {
	t.Helper()
	if opts.OutputDir == "" {
		opts.OutputDir = filepath.Join(t.TempDir(), "out")
	}
	if opts.SourceRoot == "" {
		opts.SourceRoot = src
	}
	g, err := New(provider.NewMock(), taskstore.NewStore(), opts)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	return g
}

func TestProcessSingleInsertsComments(t *testing.T) {
	src := t.TempDir()
	path := writeSource(t, src, "player.rb", sampleRuby)

	g := newTestGenerator(t, src, Options{Incremental: true})

	outputPath, err := g.ProcessSingle(context.Background(), path)
	if err != nil {
		t.Fatalf("process single: %v", err)
	}

	out, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	documented := string(out)

	if !strings.Contains(documented, "# Placeholder documentation") {
		t.Fatal("output should contain inserted comments")
	}
	if !strings.Contains(documented, "module Game") || !strings.Contains(documented, "def greet") {
		t.Fatal("output should preserve original code")
	}

	// Comments go above their anchors
	idx := strings.Index(documented, "module Game")
	if !strings.Contains(documented[:idx], "#") {
		t.Fatal("module Game should have a comment above it")
	}
}

func TestProcessDirectoryStatsAndMetadata(t *testing.T) {
	src := t.TempDir()
	writeSource(t, src, "a.rb", sampleRuby)
	writeSource(t, src, "b.rb", sampleRuby)
	writeSource(t, src, "notes.txt", "not ruby")

	g := newTestGenerator(t, src, Options{Incremental: true, Workers: 2})

	stats, err := g.ProcessDirectory(context.Background(), src)
	if err != nil {
		t.Fatalf("process directory: %v", err)
	}
	if stats.Total != 2 {
		t.Fatalf("total = %d, want 2 (txt file should be excluded)", stats.Total)
	}
	if stats.Processed != 2 || stats.Failed != 0 {
		t.Fatalf("processed/failed = %d/%d, want 2/0", stats.Processed, stats.Failed)
	}
	if stats.Provider != "mock" {
		t.Fatalf("provider = %q", stats.Provider)
	}

	raw, err := os.ReadFile(filepath.Join(g.opts.OutputDir, "metadata.json"))
	if err != nil {
		t.Fatalf("metadata.json should exist: %v", err)
	}
	var meta struct {
		Stats         RunStats       `json:"stats"`
		ProviderStats provider.Stats `json:"provider_stats"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		t.Fatalf("metadata should be valid JSON: %v", err)
	}
	if meta.Stats.Processed != 2 {
		t.Fatalf("metadata stats = %+v", meta.Stats)
	}
	if meta.ProviderStats.Requests != 2 {
		t.Fatalf("provider stats should record 2 requests: %+v", meta.ProviderStats)
	}
}

func TestProcessDirectorySkipsProcessedFiles(t *testing.T) {
	src := t.TempDir()
	writeSource(t, src, "a.rb", sampleRuby)

	out := filepath.Join(t.TempDir(), "out")
	g := newTestGenerator(t, src, Options{Incremental: true, OutputDir: out})

	if _, err := g.ProcessDirectory(context.Background(), src); err != nil {
		t.Fatal(err)
	}

	// Second run with a fresh generator sharing the same manifest
	g2 := newTestGenerator(t, src, Options{Incremental: true, OutputDir: out})
	stats, err := g2.ProcessDirectory(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Processed != 1 {
		t.Fatalf("processed = %d, want 1 (skipped file counts as processed)", stats.Processed)
	}
	if got := g2.provider.Stats().Requests; got != 0 {
		t.Fatalf("second run should make no API requests, made %d", got)
	}
}

func TestProcessDirectoryExcludesCritranks(t *testing.T) {
	src := t.TempDir()
	writeSource(t, src, "a.rb", sampleRuby)
	writeSource(t, src, filepath.Join("critranks", "tables.rb"), sampleRuby)
	writeSource(t, src, "critranks.rb", sampleRuby)

	g := newTestGenerator(t, src, Options{Incremental: true})

	stats, err := g.ProcessDirectory(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	// critranks.rb the file stays, critranks/ the directory goes
	if stats.Total != 2 {
		t.Fatalf("total = %d, want 2", stats.Total)
	}
}

func TestOutputPathStructures(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	nested := filepath.Join(src, "lib", "util.rb")

	flat := newTestGenerator(t, src, Options{OutputDir: out, OutputStructure: "flat"})
	if got := flat.OutputPath(nested); got != filepath.Join(out, "documented", "util.rb") {
		t.Fatalf("flat path = %q", got)
	}

	mirror := newTestGenerator(t, src, Options{OutputDir: out, OutputStructure: "mirror", SourceRoot: src})
	if got := mirror.OutputPath(nested); got != filepath.Join(out, "documented", "lib", "util.rb") {
		t.Fatalf("mirror path = %q", got)
	}

	// Outside the source root the mirror layout falls back to flat
	outside := filepath.Join(t.TempDir(), "other.rb")
	if got := mirror.OutputPath(outside); got != filepath.Join(out, "documented", "other.rb") {
		t.Fatalf("fallback path = %q", got)
	}
}

func TestFailedResponsePersisted(t *testing.T) {
	src := t.TempDir()
	path := writeSource(t, src, "bad.rb", sampleRuby)
	out := filepath.Join(t.TempDir(), "out")

	g, err := New(&garbageProvider{}, nil, Options{OutputDir: out, SourceRoot: src})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := g.ProcessSingle(context.Background(), path); err == nil {
		t.Fatal("expected error from unparseable response")
	}

	raw, err := os.ReadFile(filepath.Join(out, "bad_failed_response.txt"))
	if err != nil {
		t.Fatalf("failed response file should exist: %v", err)
	}
	if !strings.Contains(string(raw), "this is not json") {
		t.Fatal("failed response file should contain the raw response")
	}
}

func TestTasksTracked(t *testing.T) {
	src := t.TempDir()
	writeSource(t, src, "a.rb", sampleRuby)

	tasks := taskstore.NewStore()
	g, err := New(provider.NewMock(), tasks, Options{
		OutputDir:  filepath.Join(t.TempDir(), "out"),
		SourceRoot: src,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := g.ProcessDirectory(context.Background(), src); err != nil {
		t.Fatal(err)
	}

	list := tasks.List()
	if len(list) != 1 {
		t.Fatalf("expected 1 tracked task, got %d", len(list))
	}
	if list[0].Status != taskstore.StatusCompleted {
		t.Fatalf("task status = %s, want completed", list[0].Status)
	}
	if list[0].Directives == 0 {
		t.Fatal("task should record directive count")
	}
}

// garbageProvider returns text no extraction strategy can parse.
type garbageProvider struct{}

func (p *garbageProvider) Name() string { return "garbage" }
func (p *garbageProvider) Stats() provider.Stats {
	return provider.Stats{Provider: "garbage"}
}
func (p *garbageProvider) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	return "this is not json at all", nil
}
