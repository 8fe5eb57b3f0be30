package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/papercheck/internal/app"
)

// options are the flags that steer the CLI itself rather than the app.
type options struct {
	configPath    string
	envFiles      string
	criteriaWrite string
	version       bool
}

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, opts, err := parseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatal().Err(err).Msg("invalid arguments")
	}
	if opts.version {
		fmt.Println(app.VersionString())
		return
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if opts.criteriaWrite != "" {
		if err := app.ExportCriteria(cfg, opts.criteriaWrite); err != nil {
			log.Fatal().Err(err).Msg("criteria export failed")
		}
		log.Info().Str("path", opts.criteriaWrite).Msg("criteria written")
		return
	}
	if err := app.ValidateConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		// Exit code policy: 2 when no document could be analyzed.
		if errors.Is(err, app.ErrNoDocuments) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg app.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()
	return a.Run(ctx)
}

// parseArgs resolves the configuration with precedence flags > env > config
// file > defaults. Positional arguments are the documents to check.
func parseArgs(args []string) (app.Config, options, error) {
	fs := flag.NewFlagSet("papercheck", flag.ContinueOnError)
	var (
		opts    options
		fl      app.Config
		formats string
	)
	fs.StringVar(&opts.configPath, "config", "", "Path to YAML or JSON config file")
	fs.StringVar(&opts.envFiles, "env", ".env", "Comma-separated dotenv files to load (e.g. the API_KEY credential file)")
	fs.StringVar(&opts.criteriaWrite, "criteria.write", "", "Write the effective criteria table to this path and exit")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	fs.StringVar(&fl.OutputDir, "out", app.DefaultOutputDir, "Directory for reports")
	fs.StringVar(&formats, "format", app.DefaultFormats, "Comma-separated report formats: md, json, pdf")
	fs.StringVar(&fl.PDFFont, "pdf.font", "", "UTF-8 TrueType font for PDF reports (Cyrillic needs one)")

	fs.StringVar(&fl.LLMProvider, "llm.provider", app.DefaultProvider, "Remote backend: openai (any OpenAI-compatible API) or gemini")
	fs.StringVar(&fl.LLMBaseURL, "llm.base", app.DefaultLLMBaseURL, "OpenAI-compatible base URL")
	fs.StringVar(&fl.LLMModel, "llm.model", "", "Model name")
	fs.StringVar(&fl.LLMAPIKey, "llm.key", "", "API key (default from LLM_API_KEY or API_KEY)")
	fs.DurationVar(&fl.LLMTimeout, "llm.timeout", 0, "Per-attempt timeout (default 15s)")
	fs.IntVar(&fl.LLMMaxAttempts, "llm.maxAttempts", 0, "Attempts per paragraph (default 3)")
	fs.DurationVar(&fl.LLMBaseDelay, "llm.baseDelay", 0, "Initial rate-limit backoff, doubled per attempt (default 1s)")

	fs.StringVar(&fl.RuleSet, "rules", "", "Context rule set: active (default) or full")
	fs.BoolVar(&fl.LegacyAbstractMarker, "rules.legacyAbstractMarker", false, "Full rule set: let the abstract marker match every paragraph")
	fs.IntVar(&fl.HistoryLimit, "history", 0, "Paragraphs kept in the classification history (default 32)")
	fs.BoolVar(&fl.Offline, "offline", false, "Never call the remote classifier")

	fs.StringVar(&fl.CriteriaFile, "criteria", "", "YAML or JSON criteria file overlaying the built-in table")

	fs.StringVar(&fl.CacheDir, "cache.dir", app.DefaultCacheDir, "Remote label cache directory (empty disables)")
	fs.DurationVar(&fl.CacheMaxAge, "cache.maxAge", 0, "Purge cache entries older than this before the run; 0 disables")
	fs.BoolVar(&fl.CacheClear, "cache.clear", false, "Clear the cache directory before the run")
	fs.BoolVar(&fl.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")

	fs.StringVar(&fl.DatabaseURL, "db", "", "PostgreSQL DSN for storing results (default from DATABASE_URL)")
	fs.StringVar(&fl.MetricsOut, "metrics.out", "", "Write Prometheus metrics in textfile format to this path")
	fs.IntVar(&fl.Concurrency, "concurrency", 0, "Documents analyzed in parallel (default 4)")
	fs.BoolVar(&fl.Verbose, "v", false, "Verbose logging")

	if err := fs.Parse(args); err != nil {
		return app.Config{}, opts, err
	}
	fl.Formats = app.ParseFormats(formats)
	fl.Inputs = fs.Args()

	if err := app.LoadEnvFiles(strings.Split(opts.envFiles, ",")...); err != nil {
		return app.Config{}, opts, fmt.Errorf("load env: %w", err)
	}

	cfg := fl
	if opts.configPath != "" {
		fc, err := app.LoadConfigFile(opts.configPath)
		if err != nil {
			return app.Config{}, opts, fmt.Errorf("config file: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
		app.ApplyEnvOverrides(&cfg)
	} else {
		app.ApplyEnvToConfig(&cfg)
	}

	// Explicit flags win over env and file.
	fs.Visit(func(f *flag.Flag) { applyFlag(&cfg, fl, f.Name) })
	if len(fl.Inputs) > 0 {
		cfg.Inputs = fl.Inputs
	}
	return cfg, opts, nil
}

func applyFlag(cfg *app.Config, fl app.Config, name string) {
	switch name {
	case "out":
		cfg.OutputDir = fl.OutputDir
	case "format":
		cfg.Formats = fl.Formats
	case "pdf.font":
		cfg.PDFFont = fl.PDFFont
	case "llm.provider":
		cfg.LLMProvider = fl.LLMProvider
	case "llm.base":
		cfg.LLMBaseURL = fl.LLMBaseURL
	case "llm.model":
		cfg.LLMModel = fl.LLMModel
	case "llm.key":
		cfg.LLMAPIKey = fl.LLMAPIKey
	case "llm.timeout":
		cfg.LLMTimeout = fl.LLMTimeout
	case "llm.maxAttempts":
		cfg.LLMMaxAttempts = fl.LLMMaxAttempts
	case "llm.baseDelay":
		cfg.LLMBaseDelay = fl.LLMBaseDelay
	case "rules":
		cfg.RuleSet = fl.RuleSet
	case "rules.legacyAbstractMarker":
		cfg.LegacyAbstractMarker = fl.LegacyAbstractMarker
	case "history":
		cfg.HistoryLimit = fl.HistoryLimit
	case "offline":
		cfg.Offline = fl.Offline
	case "criteria":
		cfg.CriteriaFile = fl.CriteriaFile
	case "cache.dir":
		cfg.CacheDir = fl.CacheDir
	case "cache.maxAge":
		cfg.CacheMaxAge = fl.CacheMaxAge
	case "cache.clear":
		cfg.CacheClear = fl.CacheClear
	case "cache.strictPerms":
		cfg.CacheStrictPerms = fl.CacheStrictPerms
	case "db":
		cfg.DatabaseURL = fl.DatabaseURL
	case "metrics.out":
		cfg.MetricsOut = fl.MetricsOut
	case "concurrency":
		cfg.Concurrency = fl.Concurrency
	case "v":
		cfg.Verbose = fl.Verbose
	}
}
