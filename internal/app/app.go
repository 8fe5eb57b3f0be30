package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/papercheck/internal/analyze"
	"github.com/hyperifyio/papercheck/internal/cache"
	"github.com/hyperifyio/papercheck/internal/classify"
	"github.com/hyperifyio/papercheck/internal/criteria"
	"github.com/hyperifyio/papercheck/internal/llm"
	"github.com/hyperifyio/papercheck/internal/metrics"
	"github.com/hyperifyio/papercheck/internal/report"
	"github.com/hyperifyio/papercheck/internal/store"
)

// ErrNoDocuments is returned when none of the inputs could be analyzed. Per
// the exit code policy this results in a non-zero process exit.
var ErrNoDocuments = errors.New("no documents analyzed")

// defaultGeminiModel replaces the OpenRouter default when the Gemini backend
// is selected without an explicit model.
const defaultGeminiModel = "gemini-1.5-flash"

type App struct {
	cfg      Config
	analyzer *analyze.Analyzer
	metrics  *metrics.Recorder
	store    *store.Postgres
}

func New(ctx context.Context, cfg Config) (*App, error) {
	if len(cfg.Formats) == 0 {
		cfg.Formats = ParseFormats(DefaultFormats)
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	tbl, err := loadCriteria(cfg)
	if err != nil {
		return nil, err
	}
	ruleSet, err := classify.ParseRuleSet(cfg.RuleSet)
	if err != nil {
		return nil, err
	}

	rec := metrics.New()
	a := &App{cfg: cfg, metrics: rec}

	var remote classify.RemoteClassifier
	if r := a.newRemote(ctx); r != nil {
		remote = r
	}
	engine := classify.New(classify.Config{
		RuleSet:              ruleSet,
		LegacyAbstractMarker: cfg.LegacyAbstractMarker,
		HistoryLimit:         cfg.HistoryLimit,
	}, remote, rec)

	a.analyzer = analyze.New(engine, tbl)
	a.analyzer.Observer = rec
	if cfg.Concurrency > 0 {
		a.analyzer.Concurrency = cfg.Concurrency
	}

	if cfg.DatabaseURL != "" {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("database schema: %w", err)
		}
		a.store = db
	}
	return a, nil
}

func loadCriteria(cfg Config) (*criteria.Table, error) {
	if strings.TrimSpace(cfg.CriteriaFile) == "" {
		return criteria.Default(), nil
	}
	tbl, err := criteria.Load(cfg.CriteriaFile)
	if err != nil {
		return nil, fmt.Errorf("load criteria: %w", err)
	}
	return tbl, nil
}

// remoteEnabled reports whether a remote backend is usable: a key is set, or
// an OpenAI-compatible endpoint other than OpenRouter is configured (local
// servers often need no key).
func remoteEnabled(cfg Config) bool {
	if cfg.Offline {
		return false
	}
	if strings.TrimSpace(cfg.LLMAPIKey) != "" {
		return true
	}
	base := strings.TrimSpace(cfg.LLMBaseURL)
	return !isGemini(cfg) && base != "" && base != DefaultLLMBaseURL
}

func isGemini(cfg Config) bool { return strings.EqualFold(strings.TrimSpace(cfg.LLMProvider), "gemini") }

func (a *App) newRemote(ctx context.Context) *classify.Remote {
	cfg := a.cfg
	if !remoteEnabled(cfg) {
		log.Info().Msg("remote classifier disabled; using context rules and fallback only")
		return nil
	}
	rc := classify.DefaultRemoteConfig()
	if cfg.LLMModel != "" {
		rc.Model = cfg.LLMModel
	}
	if cfg.LLMTimeout > 0 {
		rc.Timeout = cfg.LLMTimeout
	}
	if cfg.LLMMaxAttempts > 0 {
		rc.MaxAttempts = cfg.LLMMaxAttempts
	}
	if cfg.LLMBaseDelay > 0 {
		rc.BaseDelay = cfg.LLMBaseDelay
	}

	var client llm.Client
	if isGemini(cfg) {
		if cfg.LLMModel == "" {
			rc.Model = defaultGeminiModel
		}
		client = llm.NewGemini(cfg.LLMAPIKey)
	} else {
		base := cfg.LLMBaseURL
		if base == "" {
			base = DefaultLLMBaseURL
		}
		p := llm.NewOpenAI(base, cfg.LLMAPIKey, newLLMHTTPClient(rc.Timeout))
		client = p
		preflight(ctx, p)
	}

	r := classify.NewRemote(client, rc)
	r.Observer = a.metrics
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			if n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge); err != nil {
				log.Warn().Err(err).Msg("cache purge failed")
			} else if n > 0 {
				log.Info().Int("removed", n).Msg("expired cache entries purged")
			}
		}
		r.Cache = &cache.LabelCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}
	log.Info().Str("model", rc.Model).Str("provider", strings.ToLower(cfg.LLMProvider)).Msg("remote classifier enabled")
	return r
}

// preflight lists models as a best-effort connectivity check. Failure only
// warns: every paragraph still gets a fallback decision.
func preflight(ctx context.Context, lister llm.ModelLister) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := lister.ListModels(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("LLM model list failed; continuing")
		return
	}
	log.Debug().Int("count", len(models.Models)).Msg("LLM models available")
}

func (a *App) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

// Run analyzes every input, writes the requested reports, persists results
// when a database is configured and exports metrics. Documents that fail to
// load are skipped with a warning.
func (a *App) Run(ctx context.Context) error {
	results, err := a.analyzer.AnalyzeFiles(ctx, a.cfg.Inputs)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil && len(results) == 0 {
		return fmt.Errorf("%w: %w", ErrNoDocuments, err)
	}
	if len(results) == 0 {
		return ErrNoDocuments
	}

	for _, res := range results {
		if err := a.writeReports(res); err != nil {
			return fmt.Errorf("write report for %s: %w", res.Path, err)
		}
		a.persist(ctx, res)
		log.Info().
			Str("path", res.Path).
			Int("paragraphs", res.Summary.TotalParagraphs).
			Int("findings", res.Findings()).
			Int("missing", len(res.Missing())).
			Msg("document checked")
	}

	if a.cfg.MetricsOut != "" {
		if err := a.metrics.WriteTextfile(a.cfg.MetricsOut); err != nil {
			log.Warn().Err(err).Str("path", a.cfg.MetricsOut).Msg("metrics export failed")
		}
	}
	return nil
}

func (a *App) writeReports(res analyze.Result) error {
	if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
		return err
	}
	base := reportBase(a.cfg.OutputDir, res.Path)
	for _, f := range a.cfg.Formats {
		path := base + "." + f
		var err error
		switch f {
		case "md":
			err = os.WriteFile(path, []byte(report.Markdown(res)), 0o644)
		case "json":
			var b []byte
			if b, err = report.JSON(res); err == nil {
				err = os.WriteFile(path, b, 0o644)
			}
		case "pdf":
			err = report.WritePDF(res, path, a.cfg.PDFFont)
		default:
			continue
		}
		if err != nil {
			return err
		}
		log.Debug().Str("path", path).Msg("report written")
	}
	return nil
}

// persist stores res and logs the change against the previous run of the
// same document. Database failures never fail the run.
func (a *App) persist(ctx context.Context, res analyze.Result) {
	if a.store == nil {
		return
	}
	prev, err := a.store.Latest(ctx, res.Path)
	switch {
	case err == nil:
		log.Info().Str("path", res.Path).Int("previous_findings", prev.Findings()).Int("findings", res.Findings()).Msg("compared with previous check")
	case !errors.Is(err, sql.ErrNoRows):
		log.Warn().Err(err).Str("path", res.Path).Msg("previous result lookup failed")
	}
	if _, err := a.store.Save(ctx, res); err != nil {
		log.Warn().Err(err).Str("path", res.Path).Msg("result not stored")
	}
}

// ExportCriteria writes the effective criteria table (built-in defaults
// overlaid with cfg.CriteriaFile) to path for editing.
func ExportCriteria(cfg Config, path string) error {
	tbl, err := loadCriteria(cfg)
	if err != nil {
		return err
	}
	return tbl.Save(path)
}
