package classify

import (
	"fmt"
	"strings"
	"time"
)

// RuleSet selects which context rules run before the remote classifier.
type RuleSet string

const (
	// RuleSetActive runs UDC, English workplace and author-info context only.
	RuleSetActive RuleSet = "active"
	// RuleSetFull adds the author, title, section-marker and abstract
	// context rules.
	RuleSetFull RuleSet = "full"
)

// ParseRuleSet accepts "active" (or "reduced"), "full" and the empty string.
func ParseRuleSet(s string) (RuleSet, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "active", "reduced":
		return RuleSetActive, nil
	case "full":
		return RuleSetFull, nil
	}
	return "", fmt.Errorf("unknown rule set %q", s)
}

// Config is the immutable engine configuration.
type Config struct {
	RuleSet RuleSet
	// LegacyAbstractMarker makes the abstract marker rule of the full rule set
	// fire on every paragraph that reaches it, as early releases did.
	LegacyAbstractMarker bool
	// HistoryLimit bounds the processed-paragraph log of a State.
	HistoryLimit int
	// AuthorWindow is how many recent paragraphs are searched for an author line.
	AuthorWindow int
	// AuthorInfoMaxOrdinal admits author-info without a preceding author line.
	AuthorInfoMaxOrdinal int
	// AuthorMaxOrdinal and TitleMaxOrdinal bound the full-set context rules.
	AuthorMaxOrdinal int
	TitleMaxOrdinal  int
}

// DefaultConfig returns the configuration matching the shipped behaviour.
func DefaultConfig() Config {
	return Config{
		RuleSet:              RuleSetActive,
		HistoryLimit:         32,
		AuthorWindow:         3,
		AuthorInfoMaxOrdinal: 8,
		AuthorMaxOrdinal:     10,
		TitleMaxOrdinal:      8,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RuleSet == "" {
		c.RuleSet = d.RuleSet
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = d.HistoryLimit
	}
	if c.AuthorWindow <= 0 {
		c.AuthorWindow = d.AuthorWindow
	}
	if c.AuthorInfoMaxOrdinal <= 0 {
		c.AuthorInfoMaxOrdinal = d.AuthorInfoMaxOrdinal
	}
	if c.AuthorMaxOrdinal <= 0 {
		c.AuthorMaxOrdinal = d.AuthorMaxOrdinal
	}
	if c.TitleMaxOrdinal <= 0 {
		c.TitleMaxOrdinal = d.TitleMaxOrdinal
	}
	return c
}

// RemoteConfig holds the request and retry parameters of the remote adapter.
type RemoteConfig struct {
	Model       string
	Temperature float32
	TopP        float32
	MaxTokens   int
	// Timeout bounds a single attempt.
	Timeout     time.Duration
	MaxAttempts int
	// BaseDelay is doubled on every rate-limited attempt.
	BaseDelay time.Duration
	// RetryDelay follows other non-success responses.
	RetryDelay time.Duration
	// ErrorDelay follows transport errors and timeouts.
	ErrorDelay time.Duration
}

// DefaultRemoteConfig mirrors the OpenRouter setup the tool ships with.
func DefaultRemoteConfig() RemoteConfig {
	return RemoteConfig{
		Model:       "mistralai/devstral-small:free",
		Temperature: 0.1,
		TopP:        0.3,
		MaxTokens:   10,
		Timeout:     15 * time.Second,
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		RetryDelay:  time.Second,
		ErrorDelay:  2 * time.Second,
	}
}
