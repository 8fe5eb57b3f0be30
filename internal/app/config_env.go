package app

import (
    "os"
    "strconv"
    "strings"
)

// llmKeyFromEnv prefers LLM_API_KEY and falls back to API_KEY, the name used
// by the classifier's credential file.
func llmKeyFromEnv() string {
    if v := os.Getenv("LLM_API_KEY"); v != "" { return v }
    return os.Getenv("API_KEY")
}

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
    if cfg == nil { return }

    // flag defaults count as unset
    if v := os.Getenv("LLM_PROVIDER"); v != "" && (cfg.LLMProvider == "" || cfg.LLMProvider == DefaultProvider) { cfg.LLMProvider = v }
    if v := os.Getenv("LLM_BASE_URL"); v != "" && (cfg.LLMBaseURL == "" || cfg.LLMBaseURL == DefaultLLMBaseURL) { cfg.LLMBaseURL = v }
    if cfg.LLMModel == "" { cfg.LLMModel = os.Getenv("LLM_MODEL") }
    if cfg.LLMAPIKey == "" { cfg.LLMAPIKey = llmKeyFromEnv() }

    if cfg.CriteriaFile == "" { cfg.CriteriaFile = os.Getenv("CRITERIA_FILE") }
    if v := os.Getenv("CACHE_DIR"); v != "" && (cfg.CacheDir == "" || cfg.CacheDir == DefaultCacheDir) { cfg.CacheDir = v }
    if cfg.DatabaseURL == "" { cfg.DatabaseURL = os.Getenv("DATABASE_URL") }
    if cfg.MetricsOut == "" { cfg.MetricsOut = os.Getenv("METRICS_OUT") }

    if cfg.Concurrency == 0 {
        if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("CONCURRENCY"))); err == nil && n > 0 {
            cfg.Concurrency = n
        }
    }

    if !cfg.Verbose {
        if s := strings.ToLower(strings.TrimSpace(os.Getenv("VERBOSE"))); s == "1" || s == "true" || s == "yes" || s == "on" {
            cfg.Verbose = true
        }
    }
}

// ApplyEnvOverrides forcefully overrides cfg fields with environment variables
// when the corresponding env vars are set. This lets env take precedence over
// a config file while flags remain highest precedence.
func ApplyEnvOverrides(cfg *Config) {
    if cfg == nil { return }

    if v := os.Getenv("LLM_PROVIDER"); v != "" { cfg.LLMProvider = v }
    if v := os.Getenv("LLM_BASE_URL"); v != "" { cfg.LLMBaseURL = v }
    if v := os.Getenv("LLM_MODEL"); v != "" { cfg.LLMModel = v }
    if v := llmKeyFromEnv(); v != "" { cfg.LLMAPIKey = v }

    if v := os.Getenv("CRITERIA_FILE"); v != "" { cfg.CriteriaFile = v }
    if v := os.Getenv("CACHE_DIR"); v != "" { cfg.CacheDir = v }
    if v := os.Getenv("DATABASE_URL"); v != "" { cfg.DatabaseURL = v }
    if v := os.Getenv("METRICS_OUT"); v != "" { cfg.MetricsOut = v }

    if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("CONCURRENCY"))); err == nil && n > 0 {
        cfg.Concurrency = n
    }

    if s := strings.ToLower(strings.TrimSpace(os.Getenv("VERBOSE"))); s != "" {
        switch s {
        case "1", "true", "yes", "on":
            cfg.Verbose = true
        case "0", "false", "no", "off":
            cfg.Verbose = false
        }
    }
}
