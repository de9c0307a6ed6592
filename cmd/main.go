package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/Nisugi/lich-5-docs-minimax-test/internal/config"
	"github.com/Nisugi/lich-5-docs-minimax-test/internal/generator"
	"github.com/Nisugi/lich-5-docs-minimax-test/internal/provider"
	"github.com/Nisugi/lich-5-docs-minimax-test/internal/taskstore"
	"github.com/Nisugi/lich-5-docs-minimax-test/internal/web"
)

var (
	loadDotEnv         = godotenv.Load
	newTaskStore       = taskstore.NewStore
	newProvider        = provider.New
	newWebHandler      = web.NewHandler
	defaultListenServe = http.ListenAndServe
)

type cliArgs struct {
	input           string
	file            string
	provider        string
	model           string
	output          string
	outputStructure string
	pattern         string
	workers         int
	forceRebuild    bool
	noIncremental   bool
	serve           bool
}

func main() {
	if err := run(context.Background(), os.Args[1:], defaultListenServe); err != nil {
		log.Fatalf("Documentation run failed: %v", err)
	}
}

func parseArgs(argv []string) (*cliArgs, error) {
	fs := flag.NewFlagSet("lich5-docs", flag.ContinueOnError)
	args := &cliArgs{}

	fs.StringVar(&args.file, "file", "", "Process a single Ruby file (alternative to input directory)")
	fs.StringVar(&args.provider, "provider", "", "LLM provider: openai, anthropic, gemini, minimax-m2 or mock (defaults to LLM_PROVIDER)")
	fs.StringVar(&args.model, "model", "", "Model name override (defaults to the provider's cheapest model)")
	fs.StringVar(&args.output, "output", "", "Output directory (defaults to OUTPUT_DIR or output/latest)")
	fs.StringVar(&args.outputStructure, "output-structure", "", "Output structure: flat or mirror")
	fs.StringVar(&args.pattern, "pattern", "", "File pattern to match (default *.rb)")
	fs.IntVar(&args.workers, "workers", 0, "Parallel workers (0 = auto-detect from provider)")
	fs.BoolVar(&args.forceRebuild, "force-rebuild", false, "Reprocess all files, ignoring the manifest")
	fs.BoolVar(&args.noIncremental, "no-incremental", false, "Disable incremental processing (same as -force-rebuild)")
	fs.BoolVar(&args.serve, "serve", false, "Serve the progress dashboard while processing")

	if err := fs.Parse(argv); err != nil {
		return nil, err
	}
	args.input = fs.Arg(0)

	if args.input == "" && args.file == "" {
		return nil, fmt.Errorf("either an input directory or -file must be specified")
	}
	return args, nil
}

// applyArgs layers command-line flags over the environment configuration.
func applyArgs(cfg *config.Config, args *cliArgs) {
	if args.provider != "" {
		cfg.Provider = args.provider
	}
	if args.model != "" {
		cfg.Model = args.model
	}
	if args.output != "" {
		cfg.OutputDir = args.output
	}
	if args.outputStructure != "" {
		cfg.OutputStructure = args.outputStructure
	}
	if args.pattern != "" {
		cfg.Pattern = args.pattern
	}
	if args.workers > 0 {
		cfg.Workers = args.workers
	}
	if args.forceRebuild || args.noIncremental {
		cfg.ForceRebuild = true
	}
}

func run(ctx context.Context, argv []string, serve func(string, http.Handler) error) error {
	// Load .env file (ignore error if file doesn't exist)
	_ = loadDotEnv()

	args, err := parseArgs(argv)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyArgs(cfg, args)

	if err := provider.ValidateEnvironment(cfg.Provider); err != nil {
		return fmt.Errorf("environment validation failed: %w", err)
	}

	log.Printf("Starting documentation generator")
	log.Printf("Provider: %s", cfg.Provider)
	log.Printf("Output: %s (%s structure)", cfg.OutputDir, cfg.OutputStructure)

	aiProvider, err := newProvider(ctx, &provider.Config{
		Name:            cfg.Provider,
		Model:           cfg.Model,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		OllamaHost:      cfg.OllamaHost,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize provider: %w", err)
	}

	sourceRoot, inputPath, err := resolveInput(args)
	if err != nil {
		return err
	}

	tasks := newTaskStore()
	gen, err := generator.New(aiProvider, tasks, generator.Options{
		OutputDir:       cfg.OutputDir,
		OutputStructure: cfg.OutputStructure,
		SourceRoot:      sourceRoot,
		Pattern:         cfg.Pattern,
		Workers:         cfg.WorkerCount(),
		Incremental:     cfg.Incremental,
		ForceRebuild:    cfg.ForceRebuild,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize generator: %w", err)
	}

	if args.serve {
		if err := startDashboard(cfg.Port, tasks, serve); err != nil {
			return err
		}
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if args.file != "" {
		outputPath, err := gen.ProcessSingle(ctx, inputPath)
		if err != nil {
			return fmt.Errorf("failed to document %s: %w", args.file, err)
		}
		fmt.Printf("Successfully documented: %s\n", inputPath)
		fmt.Printf("Output: %s\n", outputPath)
		return nil
	}

	stats, err := gen.ProcessDirectory(ctx, inputPath)
	if err != nil {
		return err
	}
	gen.PrintSummary(stats)

	if stats.Failed > 0 {
		log.Printf("%d file(s) failed but will be retried on next run", stats.Failed)
	}

	if args.serve {
		log.Printf("Run complete, dashboard still serving on port %s (Ctrl-C to exit)", cfg.Port)
		<-ctx.Done()
	}
	return nil
}

// resolveInput determines the source root and input path. Single-file mode
// roots the mirror layout at the file's directory.
func resolveInput(args *cliArgs) (sourceRoot, inputPath string, err error) {
	if args.file != "" {
		info, err := os.Stat(args.file)
		if err != nil {
			return "", "", fmt.Errorf("file not found: %s", args.file)
		}
		if info.IsDir() {
			return "", "", fmt.Errorf("-file expects a file, got directory: %s", args.file)
		}
		abs, err := filepath.Abs(args.file)
		if err != nil {
			return "", "", err
		}
		return filepath.Dir(abs), abs, nil
	}

	info, err := os.Stat(args.input)
	if err != nil {
		return "", "", fmt.Errorf("input path does not exist: %s", args.input)
	}
	if !info.IsDir() {
		return "", "", fmt.Errorf("input path is not a directory: %s", args.input)
	}
	abs, err := filepath.Abs(args.input)
	if err != nil {
		return "", "", err
	}
	return abs, abs, nil
}

// startDashboard serves the task UI in the background.
func startDashboard(port string, tasks *taskstore.Store, serve func(string, http.Handler) error) error {
	webHandler, err := newWebHandler(tasks)
	if err != nil {
		return fmt.Errorf("failed to initialize web handler: %w", err)
	}

	r := mux.NewRouter()
	webHandler.RegisterRoutes(r)

	addr := ":" + port
	log.Printf("Dashboard listening on http://localhost%s/", addr)
	go func() {
		if err := serve(addr, r); err != nil {
			log.Printf("Dashboard server stopped: %v", err)
		}
	}()
	return nil
}
