package generator

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Nisugi/lich-5-docs-minimax-test/internal/extract"
	"github.com/Nisugi/lich-5-docs-minimax-test/internal/manifest"
	"github.com/Nisugi/lich-5-docs-minimax-test/internal/patch"
	"github.com/Nisugi/lich-5-docs-minimax-test/internal/provider"
	"github.com/Nisugi/lich-5-docs-minimax-test/internal/taskstore"
)

// Options controls a documentation run.
type Options struct {
	OutputDir       string
	OutputStructure string // "flat" or "mirror"
	SourceRoot      string
	Pattern         string
	Workers         int
	Incremental     bool
	ForceRebuild    bool
}

// RunStats summarizes one directory run. Field names match the metadata file
// the run writes.
type RunStats struct {
	Processed   int      `json:"processed"`
	Failed      int      `json:"failed"`
	Total       int      `json:"total"`
	ElapsedTime float64  `json:"elapsed_time"`
	Provider    string   `json:"provider"`
	FailedFiles []string `json:"failed_files"`
}

// Generator runs the per-file documentation pipeline: prompt the provider,
// extract directives from the response, patch them into the source, and
// record the outcome in the manifest.
type Generator struct {
	provider provider.Provider
	manifest *manifest.Manifest
	tasks    *taskstore.Store
	opts     Options

	writeMu  sync.Mutex
	failedMu sync.Mutex
	failed   []string
}

// New creates a generator. The output directory is created if missing and
// the manifest inside it is loaded.
func New(p provider.Provider, tasks *taskstore.Store, opts Options) (*Generator, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = filepath.Join("output", "latest")
	}
	if opts.OutputStructure == "" {
		opts.OutputStructure = "flat"
	}
	if opts.Pattern == "" {
		opts.Pattern = "*.rb"
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	incremental := opts.Incremental && !opts.ForceRebuild
	m := manifest.Load(filepath.Join(opts.OutputDir, "manifest.json"), incremental)

	log.Printf("[Generator] Provider: %s, output: %s, incremental: %v, workers: %d",
		p.Name(), opts.OutputDir, incremental, opts.Workers)

	return &Generator{
		provider: p,
		manifest: m,
		tasks:    tasks,
		opts:     opts,
	}, nil
}

// OutputPath maps a source file to its documented output location. Mirror
// structure preserves the path relative to the source root; anything outside
// the root falls back to flat.
func (g *Generator) OutputPath(path string) string {
	base := filepath.Join(g.opts.OutputDir, "documented")

	if g.opts.OutputStructure == "mirror" && g.opts.SourceRoot != "" {
		rel, err := filepath.Rel(g.opts.SourceRoot, path)
		if err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.Join(base, rel)
		}
		log.Printf("[Generator] %s not under source root %s, using flat structure", path, g.opts.SourceRoot)
	}
	return filepath.Join(base, filepath.Base(path))
}

// ProcessDirectory documents every file under dir that matches the pattern,
// skipping files the manifest says are up to date. It writes metadata.json
// next to the manifest and returns the run statistics.
func (g *Generator) ProcessDirectory(ctx context.Context, dir string) (RunStats, error) {
	files, err := g.collectFiles(dir)
	if err != nil {
		return RunStats{}, err
	}
	log.Printf("[Generator] Found %d file(s) to process", len(files))

	if len(files) == 0 {
		log.Printf("[Generator] No matching files found")
		return RunStats{Provider: g.provider.Name(), FailedFiles: []string{}}, nil
	}

	start := time.Now()
	processed := 0

	var pending []string
	for _, path := range files {
		if g.manifest.IsProcessed(path, g.OutputPath(path)) {
			processed++
			log.Printf("[Generator] Skipping (already processed): %s", filepath.Base(path))
			g.trackTask(path, taskstore.StatusSkipped)
			continue
		}
		pending = append(pending, path)
	}

	log.Printf("[Generator] Files to process: %d, already processed: %d", len(pending), processed)
	processed += g.runPool(ctx, pending)

	stats := RunStats{
		Processed:   processed,
		Failed:      len(g.failedFiles()),
		Total:       len(files),
		ElapsedTime: time.Since(start).Seconds(),
		Provider:    g.provider.Name(),
		FailedFiles: g.failedFiles(),
	}
	if err := g.writeMetadata(stats); err != nil {
		log.Printf("[Generator] Failed to write metadata: %v", err)
	}
	return stats, nil
}

// ProcessSingle documents one file and writes the result. It returns the
// output path.
func (g *Generator) ProcessSingle(ctx context.Context, path string) (string, error) {
	documented, directives, inserted, err := g.processFile(ctx, path)
	if err != nil {
		g.manifest.MarkProcessed(path, g.provider.Name(), filepath.Base(path), false, "")
		return "", err
	}

	outputPath := g.OutputPath(path)
	if err := g.writeOutput(outputPath, documented); err != nil {
		return "", err
	}
	g.manifest.MarkProcessed(path, g.provider.Name(), filepath.Base(path), true, "")
	log.Printf("[Generator] Documented %s (%d directives, %d comment lines) -> %s",
		filepath.Base(path), directives, inserted, outputPath)
	return outputPath, nil
}

// collectFiles walks dir recursively for files matching the pattern,
// excluding the critranks data tables which are too large to document.
func (g *Generator) collectFiles(dir string) ([]string, error) {
	var files []string
	excluded := 0

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ok, err := filepath.Match(g.opts.Pattern, d.Name())
		if err != nil {
			return fmt.Errorf("invalid pattern %q: %w", g.opts.Pattern, err)
		}
		if !ok {
			return nil
		}
		if strings.Contains(filepath.ToSlash(path), "/critranks/") {
			excluded++
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	if excluded > 0 {
		log.Printf("[Generator] Excluded %d file(s) from /critranks/ directory", excluded)
	}
	return files, nil
}

// runPool processes files with a bounded worker pool and returns the number
// of successes.
func (g *Generator) runPool(ctx context.Context, files []string) int {
	if len(files) == 0 {
		return 0
	}

	workers := g.opts.Workers
	if workers > len(files) {
		workers = len(files)
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				if g.processAndSave(ctx, path) {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
			}
		}()
	}

	total := len(files)
	for i, path := range files {
		log.Printf("[Generator] [%d/%d] Queueing: %s", i+1, total, filepath.Base(path))
		select {
		case jobs <- path:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return succeeded
		}
	}
	close(jobs)
	wg.Wait()
	return succeeded
}

// processAndSave runs the full pipeline for one file, writes the output and
// updates the manifest. Returns true on success.
func (g *Generator) processAndSave(ctx context.Context, path string) bool {
	taskID := g.trackTask(path, taskstore.StatusRunning)

	documented, directives, inserted, err := g.processFile(ctx, path)
	if err != nil {
		log.Printf("[Generator] Failed to process %s: %v", filepath.Base(path), err)
		g.recordFailure(path)
		g.manifest.MarkProcessed(path, g.provider.Name(), filepath.Base(path), false, "")
		g.finishTask(taskID, taskstore.StatusFailed, err.Error(), 0, 0)
		return false
	}

	outputPath := g.OutputPath(path)
	g.writeMu.Lock()
	writeErr := g.writeOutput(outputPath, documented)
	g.writeMu.Unlock()
	if writeErr != nil {
		log.Printf("[Generator] Failed to write %s: %v", outputPath, writeErr)
		g.recordFailure(path)
		g.manifest.MarkProcessed(path, g.provider.Name(), filepath.Base(path), false, "")
		g.finishTask(taskID, taskstore.StatusFailed, writeErr.Error(), directives, inserted)
		return false
	}

	g.manifest.MarkProcessed(path, g.provider.Name(), filepath.Base(path), true, "")
	log.Printf("[Generator] Completed: %s (%d directives, %d comment lines)", filepath.Base(path), directives, inserted)
	g.finishTask(taskID, taskstore.StatusCompleted, fmt.Sprintf("%d directives, %d comment lines inserted", directives, inserted), directives, inserted)
	return true
}

// processFile runs prompt, generation, extraction and patching for one file.
// It returns the documented content, the directive count and the number of
// comment lines actually inserted.
func (g *Generator) processFile(ctx context.Context, path string) (documented string, directives, inserted int, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", 0, 0, fmt.Errorf("read %s: %w", path, err)
	}
	content := string(raw)
	fileName := filepath.Base(path)

	log.Printf("[Generator] Processing %s (%d lines, %d chars)",
		fileName, strings.Count(content, "\n")+1, len(content))

	response, err := g.provider.Generate(ctx, BuildUserPrompt(fileName, content), SystemPrompt)
	if err != nil {
		return "", 0, 0, fmt.Errorf("generate documentation for %s: %w", fileName, err)
	}

	parsed, err := extract.Directives(response)
	if err != nil {
		if errors.Is(err, extract.ErrNoDirectives) {
			g.saveFailedResponse(path, response)
		}
		return "", 0, 0, fmt.Errorf("extract directives for %s: %w", fileName, err)
	}

	if len(parsed) == 0 {
		// Valid empty array: nothing left to document in this file
		log.Printf("[Generator] No documentation needed for %s", fileName)
		return content, 0, 0, nil
	}

	log.Printf("[Generator] Extracted %d documentation entries for %s", len(parsed), fileName)

	lines := strings.Split(content, "\n")
	patched := patch.Apply(lines, parsed)
	return strings.Join(patched, "\n"), len(parsed), len(patched) - len(lines), nil
}

// saveFailedResponse persists an unparseable model response for manual
// inspection.
func (g *Generator) saveFailedResponse(path, response string) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	failedPath := filepath.Join(g.opts.OutputDir, stem+"_failed_response.txt")

	var b strings.Builder
	fmt.Fprintf(&b, "Failed to parse JSON for: %s\n", filepath.Base(path))
	fmt.Fprintf(&b, "AI Response Length: %d characters\n", len(response))
	b.WriteString(strings.Repeat("=", 80) + "\n")
	b.WriteString(response)

	if err := os.WriteFile(failedPath, []byte(b.String()), 0o644); err != nil {
		log.Printf("[Generator] Could not save failed response: %v", err)
		return
	}
	log.Printf("[Generator] Saved failed response to: %s", filepath.Base(failedPath))
}

func (g *Generator) writeOutput(outputPath, content string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func (g *Generator) writeMetadata(stats RunStats) error {
	blob, err := json.MarshalIndent(map[string]any{
		"stats":          stats,
		"provider_stats": g.provider.Stats(),
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(g.opts.OutputDir, "metadata.json"), blob, 0o644)
}

func (g *Generator) recordFailure(path string) {
	g.failedMu.Lock()
	defer g.failedMu.Unlock()
	g.failed = append(g.failed, filepath.Base(path))
}

func (g *Generator) failedFiles() []string {
	g.failedMu.Lock()
	defer g.failedMu.Unlock()
	out := make([]string, len(g.failed))
	copy(out, g.failed)
	return out
}

// trackTask registers a task for the web UI when a store is attached.
func (g *Generator) trackTask(path string, status taskstore.TaskStatus) string {
	if g.tasks == nil {
		return ""
	}
	id := newTaskID()
	g.tasks.Create(&taskstore.Task{
		ID:       id,
		Path:     path,
		FileName: filepath.Base(path),
		Provider: g.provider.Name(),
		Status:   status,
	})
	return id
}

func (g *Generator) finishTask(id string, status taskstore.TaskStatus, message string, directives, inserted int) {
	if g.tasks == nil || id == "" {
		return
	}
	g.tasks.SetCounts(id, directives, inserted)
	level := "info"
	if status == taskstore.StatusFailed {
		level = "error"
	} else if status == taskstore.StatusCompleted {
		level = "success"
	}
	g.tasks.AddLog(id, level, message)
	g.tasks.UpdateStatus(id, status)
}

func newTaskID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("task-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// PrintSummary writes the human-readable run report to stdout.
func (g *Generator) PrintSummary(stats RunStats) {
	line := strings.Repeat("=", 60)
	fmt.Println("\n" + line)
	fmt.Println("DOCUMENTATION GENERATION COMPLETE")
	fmt.Println(line)
	fmt.Printf("Provider: %s\n", stats.Provider)
	fmt.Printf("Processed: %d/%d files\n", stats.Processed, stats.Total)
	fmt.Printf("Failed: %d files\n", stats.Failed)
	fmt.Printf("Time: %.2f seconds\n", stats.ElapsedTime)
	fmt.Printf("Output: %s\n", g.opts.OutputDir)

	if len(stats.FailedFiles) > 0 {
		fmt.Println("\nFailed files:")
		for _, f := range stats.FailedFiles {
			fmt.Printf("  - %s\n", f)
		}
	}

	ps := g.provider.Stats()
	fmt.Println("\nProvider statistics:")
	fmt.Printf("  Requests: %d\n", ps.Requests)
	fmt.Printf("  Daily requests: %d\n", ps.DailyRequests)
	fmt.Printf("  Estimated cost: $%.4f\n", ps.EstimatedCost)
	fmt.Println(line)
}
