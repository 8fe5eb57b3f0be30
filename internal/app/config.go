package app

import "time"

// Defaults shared by flag parsing and the file/env overlays. A field equal to
// its default counts as unset when a config file is applied.
const (
	DefaultProvider   = "openai"
	DefaultLLMBaseURL = "https://openrouter.ai/api/v1"
	DefaultOutputDir  = "reports"
	DefaultCacheDir   = ".papercheck-cache"
	DefaultFormats    = "md,json"
)

// Config holds runtime configuration for the application.
type Config struct {
	Inputs    []string
	OutputDir string
	// Formats lists report formats to write: md, json, pdf.
	Formats []string
	PDFFont string

	// LLM
	LLMProvider    string
	LLMBaseURL     string
	LLMModel       string
	LLMAPIKey      string
	LLMTimeout     time.Duration
	LLMMaxAttempts int
	LLMBaseDelay   time.Duration

	// Classifier
	RuleSet              string
	LegacyAbstractMarker bool
	HistoryLimit         int
	// Offline disables the remote classifier even when a key is configured.
	Offline bool

	CriteriaFile string

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool

	DatabaseURL string
	MetricsOut  string
	Concurrency int
	Verbose     bool
}

func (c Config) wantsFormat(name string) bool {
	for _, f := range c.Formats {
		if f == name {
			return true
		}
	}
	return false
}
