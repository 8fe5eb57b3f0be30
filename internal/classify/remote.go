package classify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/papercheck/internal/cache"
	"github.com/hyperifyio/papercheck/internal/lexicon"
	"github.com/hyperifyio/papercheck/internal/llm"
	"github.com/hyperifyio/papercheck/internal/role"
)

var (
	// ErrNoMatch means the model answered with nothing usable. It is not retried.
	ErrNoMatch = errors.New("remote answer matches no permitted role")
	// ErrRemoteExhausted means every attempt failed with a transient error.
	ErrRemoteExhausted = errors.New("remote classifier attempts exhausted")
	errNotConfigured   = errors.New("remote classifier not configured")
)

// Remote asks a chat model for the role of a paragraph.
type Remote struct {
	Client   llm.Client
	Config   RemoteConfig
	Cache    *cache.LabelCache
	Observer Observer
	// Sleep waits between attempts and returns early with the context error.
	// Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewRemote returns an adapter over client. Zero fields of cfg take the
// defaults from DefaultRemoteConfig.
func NewRemote(client llm.Client, cfg RemoteConfig) *Remote {
	return &Remote{Client: client, Config: cfg}
}

func (r *Remote) config() RemoteConfig {
	c := r.Config
	d := DefaultRemoteConfig()
	if strings.TrimSpace(c.Model) == "" {
		c.Model = d.Model
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	return c
}

// Classify returns a role from permitted or an error. Errors are ErrNoMatch
// for unusable answers, ErrRemoteExhausted after the last transient failure,
// the context error on cancellation, or the provider error for rejected
// requests.
func (r *Remote) Classify(ctx context.Context, text string, isEnglish bool, permitted []role.Role, st *State) (role.Role, error) {
	if r == nil || r.Client == nil {
		return "", errNotConfigured
	}
	if len(permitted) == 0 {
		return "", fmt.Errorf("%w: empty permitted set", ErrNoMatch)
	}
	cfg := r.config()
	prompt := BuildPrompt(text, permitted, st.Summary())
	key := cache.KeyFrom(cfg.Model, prompt)
	if r.Cache != nil {
		if label, ok, _ := r.Cache.Get(ctx, key); ok {
			if got, ok := MatchLabel(label, permitted, st); ok {
				r.observe("cache", 0)
				return got, nil
			}
		}
	}
	log.Debug().Str("stage", "remote").Str("model", cfg.Model).Bool("english", isEnglish).Int("prompt_len", len(prompt)).Msg("remote prompt")

	answer, err := r.call(ctx, cfg, prompt)
	if err != nil {
		return "", err
	}
	got, ok := MatchLabel(answer, permitted, st)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoMatch, lexicon.Prefix(answer, 40))
	}
	if r.Cache != nil {
		if err := r.Cache.Save(ctx, key, cfg.Model, answer); err != nil {
			log.Debug().Err(err).Str("stage", "remote").Msg("label cache save failed")
		}
	}
	return got, nil
}

func (r *Remote) call(ctx context.Context, cfg RemoteConfig, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       cfg.Model,
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		MaxTokens:   cfg.MaxTokens,
		N:           1,
	}
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		last := attempt == cfg.MaxAttempts-1
		actx, cancel := attemptContext(ctx, cfg.Timeout)
		start := time.Now()
		resp, err := r.Client.CreateChatCompletion(actx, req)
		cancel()
		elapsed := time.Since(start)
		if err == nil {
			if len(resp.Choices) == 0 {
				r.observe("empty", elapsed)
				return "", fmt.Errorf("%w: no choices", ErrNoMatch)
			}
			r.observe("ok", elapsed)
			return strings.TrimSpace(resp.Choices[0].Message.Content), nil
		}
		if ctx.Err() != nil {
			r.observe("canceled", elapsed)
			return "", ctx.Err()
		}
		lastErr = err
		code := llm.StatusCode(err)
		var (
			wait    time.Duration
			outcome string
		)
		switch {
		case code == http.StatusTooManyRequests:
			// rate limits back off even after the final attempt
			outcome, wait = "rate_limited", cfg.BaseDelay<<attempt
		case code != 0 && !llm.Retryable(code):
			r.observe("rejected", elapsed)
			return "", fmt.Errorf("remote classifier: status %d: %w", code, err)
		case code != 0:
			outcome = "status"
			if !last {
				wait = cfg.RetryDelay
			}
		default:
			outcome = "error"
			if !last {
				wait = cfg.ErrorDelay
			}
		}
		r.observe(outcome, elapsed)
		log.Warn().Err(err).Int("attempt", attempt+1).Int("status", code).Dur("wait", wait).Msg("remote classifier attempt failed")
		if wait > 0 {
			if err := r.sleep(ctx, wait); err != nil {
				return "", err
			}
		}
	}
	return "", fmt.Errorf("%w after %d attempts: %w", ErrRemoteExhausted, cfg.MaxAttempts, lastErr)
}

func attemptContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

func (r *Remote) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep != nil {
		return r.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (r *Remote) observe(outcome string, elapsed time.Duration) {
	if r.Observer != nil {
		r.Observer.ObserveRemoteAttempt(outcome, elapsed)
	}
}
