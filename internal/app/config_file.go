package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    yaml "gopkg.in/yaml.v3"

    "github.com/hyperifyio/papercheck/internal/classify"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
    Inputs []string `yaml:"inputs" json:"inputs"`

    LLM struct {
        Provider    string        `yaml:"provider" json:"provider"`
        BaseURL     string        `yaml:"base" json:"base"`
        Model       string        `yaml:"model" json:"model"`
        APIKey      string        `yaml:"key" json:"key"`
        Timeout     time.Duration `yaml:"timeout" json:"timeout"`
        MaxAttempts int           `yaml:"maxAttempts" json:"maxAttempts"`
        BaseDelay   time.Duration `yaml:"baseDelay" json:"baseDelay"`
    } `yaml:"llm" json:"llm"`

    Classifier struct {
        RuleSet              string `yaml:"ruleSet" json:"ruleSet"`
        LegacyAbstractMarker bool   `yaml:"legacyAbstractMarker" json:"legacyAbstractMarker"`
        HistoryLimit         int    `yaml:"historyLimit" json:"historyLimit"`
        Offline              bool   `yaml:"offline" json:"offline"`
    } `yaml:"classifier" json:"classifier"`

    Criteria struct {
        File string `yaml:"file" json:"file"`
    } `yaml:"criteria" json:"criteria"`

    Cache struct {
        Dir         string        `yaml:"dir" json:"dir"`
        MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
        Clear       bool          `yaml:"clear" json:"clear"`
        StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
    } `yaml:"cache" json:"cache"`

    Output struct {
        Dir     string   `yaml:"dir" json:"dir"`
        Formats []string `yaml:"formats" json:"formats"`
        PDFFont string   `yaml:"pdfFont" json:"pdfFont"`
    } `yaml:"output" json:"output"`

    Database struct {
        URL string `yaml:"url" json:"url"`
    } `yaml:"database" json:"database"`

    Metrics struct {
        Out string `yaml:"out" json:"out"`
    } `yaml:"metrics" json:"metrics"`

    Concurrency int  `yaml:"concurrency" json:"concurrency"`
    Verbose     bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := filepath.Ext(path); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    default:
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset or still at their flag default, so explicit flags win.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
    if cfg == nil { return }

    if len(cfg.Inputs) == 0 && len(fc.Inputs) > 0 { cfg.Inputs = append([]string{}, fc.Inputs...) }

    if (cfg.LLMProvider == "" || cfg.LLMProvider == DefaultProvider) && fc.LLM.Provider != "" { cfg.LLMProvider = fc.LLM.Provider }
    if (cfg.LLMBaseURL == "" || cfg.LLMBaseURL == DefaultLLMBaseURL) && fc.LLM.BaseURL != "" { cfg.LLMBaseURL = fc.LLM.BaseURL }
    if cfg.LLMModel == "" && fc.LLM.Model != "" { cfg.LLMModel = fc.LLM.Model }
    if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" { cfg.LLMAPIKey = fc.LLM.APIKey }
    if cfg.LLMTimeout == 0 && fc.LLM.Timeout > 0 { cfg.LLMTimeout = fc.LLM.Timeout }
    if cfg.LLMMaxAttempts == 0 && fc.LLM.MaxAttempts > 0 { cfg.LLMMaxAttempts = fc.LLM.MaxAttempts }
    if cfg.LLMBaseDelay == 0 && fc.LLM.BaseDelay > 0 { cfg.LLMBaseDelay = fc.LLM.BaseDelay }

    if cfg.RuleSet == "" && fc.Classifier.RuleSet != "" { cfg.RuleSet = fc.Classifier.RuleSet }
    if !cfg.LegacyAbstractMarker && fc.Classifier.LegacyAbstractMarker { cfg.LegacyAbstractMarker = true }
    if cfg.HistoryLimit == 0 && fc.Classifier.HistoryLimit > 0 { cfg.HistoryLimit = fc.Classifier.HistoryLimit }
    if !cfg.Offline && fc.Classifier.Offline { cfg.Offline = true }

    if cfg.CriteriaFile == "" && fc.Criteria.File != "" { cfg.CriteriaFile = fc.Criteria.File }

    if (cfg.CacheDir == "" || cfg.CacheDir == DefaultCacheDir) && fc.Cache.Dir != "" { cfg.CacheDir = fc.Cache.Dir }
    if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 { cfg.CacheMaxAge = fc.Cache.MaxAge }
    if !cfg.CacheClear && fc.Cache.Clear { cfg.CacheClear = true }
    if !cfg.CacheStrictPerms && fc.Cache.StrictPerms { cfg.CacheStrictPerms = true }

    if (cfg.OutputDir == "" || cfg.OutputDir == DefaultOutputDir) && fc.Output.Dir != "" { cfg.OutputDir = fc.Output.Dir }
    if (len(cfg.Formats) == 0 || strings.Join(cfg.Formats, ",") == DefaultFormats) && len(fc.Output.Formats) > 0 {
        cfg.Formats = ParseFormats(strings.Join(fc.Output.Formats, ","))
    }
    if cfg.PDFFont == "" && fc.Output.PDFFont != "" { cfg.PDFFont = fc.Output.PDFFont }

    if cfg.DatabaseURL == "" && fc.Database.URL != "" { cfg.DatabaseURL = fc.Database.URL }
    if cfg.MetricsOut == "" && fc.Metrics.Out != "" { cfg.MetricsOut = fc.Metrics.Out }
    if cfg.Concurrency == 0 && fc.Concurrency > 0 { cfg.Concurrency = fc.Concurrency }
    if !cfg.Verbose && fc.Verbose { cfg.Verbose = true }
}

// ParseFormats splits a comma-separated format list, lowercasing entries and
// dropping blanks and duplicates. "markdown" is accepted for "md".
func ParseFormats(s string) []string {
    var out []string
    seen := map[string]bool{}
    for _, p := range strings.Split(s, ",") {
        f := strings.ToLower(strings.TrimSpace(p))
        if f == "markdown" { f = "md" }
        if f == "" || seen[f] { continue }
        seen[f] = true
        out = append(out, f)
    }
    return out
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
    if len(cfg.Inputs) == 0 {
        return errors.New("config: at least one input document is required")
    }
    for _, f := range cfg.Formats {
        switch f {
        case "md", "json", "pdf":
        default:
            return fmt.Errorf("config: unknown output format %q", f)
        }
    }
    if _, err := classify.ParseRuleSet(cfg.RuleSet); err != nil {
        return fmt.Errorf("config: %w", err)
    }
    switch strings.ToLower(cfg.LLMProvider) {
    case "", "openai", "openrouter", "gemini":
    default:
        return fmt.Errorf("config: unknown llm provider %q", cfg.LLMProvider)
    }
    if cfg.Concurrency < 0 || cfg.HistoryLimit < 0 || cfg.LLMMaxAttempts < 0 {
        return errors.New("config: negative limits are not allowed")
    }
    return nil
}
