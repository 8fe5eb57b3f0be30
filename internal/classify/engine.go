// Package classify assigns article-section roles to paragraphs in document
// order. An Engine is stateless and may be shared; all per-document state
// lives in a State owned by one analysis run.
package classify

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/papercheck/internal/document"
	"github.com/hyperifyio/papercheck/internal/lexicon"
	"github.com/hyperifyio/papercheck/internal/role"
)

// Source names the rule that produced a decision.
type Source string

const (
	SourceUDC        Source = "udc"
	SourceAuthor     Source = "author"
	SourceTitle      Source = "title"
	SourceWorkplace  Source = "workplace"
	SourceAuthorInfo Source = "author-info"
	SourceMarker     Source = "marker"
	SourceAbstract   Source = "abstract"
	SourceRemote     Source = "remote"
	SourceFallback   Source = "fallback"
	SourceEmpty      Source = "empty"
)

// Decision is the outcome of classifying one paragraph.
type Decision struct {
	Role    role.Role
	Source  Source
	English bool
	// Demoted is set when a rule produced a singleton role that was already
	// assigned and the engine replaced it with body text.
	Demoted bool
}

// RemoteClassifier is the remote step of the decision procedure.
type RemoteClassifier interface {
	Classify(ctx context.Context, text string, isEnglish bool, permitted []role.Role, st *State) (role.Role, error)
}

// Observer receives decision and remote-attempt events, e.g. for metrics.
type Observer interface {
	ObserveDecision(role, source string)
	ObserveRemoteAttempt(outcome string, elapsed time.Duration)
}

// Engine runs the ordered decision procedure.
type Engine struct {
	cfg    Config
	remote RemoteClassifier
	obs    Observer
}

// New returns an engine. remote may be nil, in which case the remote step
// is skipped. obs may be nil.
func New(cfg Config, remote RemoteClassifier, obs Observer) *Engine {
	if r, ok := remote.(*Remote); ok && r == nil {
		remote = nil
	}
	return &Engine{cfg: cfg.withDefaults(), remote: remote, obs: obs}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// NewState returns a fresh state sized for this engine.
func (e *Engine) NewState() *State { return NewState(e.cfg.HistoryLimit) }

// Classify decides the role of p and updates st. It never fails; remote
// errors degrade to the fallback classifier.
func (e *Engine) Classify(ctx context.Context, p document.Paragraph, st *State) Decision {
	text := strings.TrimSpace(p.Text)
	if text == "" {
		d := Decision{Role: role.BodyText, Source: SourceEmpty}
		e.observe(d)
		return d
	}
	st.Record(p.Ordinal, text)
	english := lexicon.IsEnglish(text)
	st.setLanguage(english)

	d := e.decide(ctx, text, p.Ordinal, english, st)
	d.English = english
	if d.Role.Singleton() && st.IsAssigned(d.Role) {
		log.Debug().Int("ordinal", p.Ordinal).Str("role", string(d.Role)).Str("source", string(d.Source)).Msg("singleton already assigned, demoted to body text")
		d.Role = role.BodyText
		d.Demoted = true
	}
	st.MarkAssigned(d.Role)
	log.Debug().Int("ordinal", p.Ordinal).Str("role", string(d.Role)).Str("source", string(d.Source)).Bool("english", english).Msg("classified")
	e.observe(d)
	return d
}

func (e *Engine) decide(ctx context.Context, text string, ordinal int, english bool, st *State) Decision {
	if lexicon.IsUDC(text) {
		return Decision{Role: role.UDC, Source: SourceUDC}
	}
	full := e.cfg.RuleSet == RuleSetFull
	if full {
		if r, ok := e.authorRule(text, ordinal, english, st); ok {
			return Decision{Role: r, Source: SourceAuthor}
		}
		if r, ok := e.titleRule(text, ordinal, english, st); ok {
			return Decision{Role: r, Source: SourceTitle}
		}
	}
	if english && lexicon.LooksLikeWorkplace(text) {
		return Decision{Role: role.WorkplaceEN, Source: SourceWorkplace}
	}
	if e.authorInfoContext(text, ordinal, st) {
		return Decision{Role: role.AuthorInfoRU, Source: SourceAuthorInfo}
	}
	if full {
		if r, ok := e.markerRule(text, st); ok {
			return Decision{Role: r, Source: SourceMarker}
		}
		if r, ok := abstractRule(text, english, st); ok {
			return Decision{Role: r, Source: SourceAbstract}
		}
	}
	if e.remote != nil {
		permitted := e.PermittedRoles(english, st)
		r, err := e.remote.Classify(ctx, text, english, permitted, st)
		if err == nil && containsRole(permitted, r) {
			return Decision{Role: r, Source: SourceRemote}
		}
		if err != nil {
			log.Warn().Err(err).Int("ordinal", ordinal).Msg("remote classification failed, using fallback")
		}
	}
	return Decision{Role: Fallback(text, english, st), Source: SourceFallback}
}

// PermittedRoles lists the roles the remote step may return for a paragraph
// of the given language, leaving out singletons already assigned. Body text
// is offered for Russian paragraphs only; an English paragraph the model
// cannot place among the English roles goes to the fallback.
func (e *Engine) PermittedRoles(isEnglish bool, st *State) []role.Role {
	base := []role.Role{role.AuthorRU, role.TitleRU, role.AuthorInfoRU, role.AbstractRU, role.KeywordsRU, role.BodyText}
	if isEnglish {
		base = []role.Role{role.TitleEN, role.AuthorEN, role.WorkplaceEN, role.AbstractEN, role.KeywordsEN}
	}
	out := make([]role.Role, 0, len(base))
	for _, r := range base {
		if r.Singleton() && st.IsAssigned(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// authorInfoContext fires for author-info text that follows an author line
// or sits near the top of the document.
func (e *Engine) authorInfoContext(text string, ordinal int, st *State) bool {
	if !lexicon.LooksLikeAuthorInfo(text) {
		return false
	}
	if ordinal <= e.cfg.AuthorInfoMaxOrdinal {
		return true
	}
	for _, h := range st.Recent(e.cfg.AuthorWindow) {
		if lexicon.LooksLikeAuthor(h.Prefix, false) || lexicon.LooksLikeAuthor(h.Prefix, true) {
			return true
		}
	}
	return false
}

func (e *Engine) authorRule(text string, ordinal int, english bool, st *State) (role.Role, bool) {
	if ordinal > e.cfg.AuthorMaxOrdinal || !lexicon.LooksLikeAuthor(text, english) {
		return "", false
	}
	return unassigned(pick(english, role.AuthorEN, role.AuthorRU), st)
}

func (e *Engine) titleRule(text string, ordinal int, english bool, st *State) (role.Role, bool) {
	if ordinal > e.cfg.TitleMaxOrdinal {
		return "", false
	}
	if !lexicon.LooksLikeTitle(text) && !lexicon.IsAllUppercaseTitle(text) {
		return "", false
	}
	return unassigned(pick(english, role.TitleEN, role.TitleRU), st)
}

// markerRule handles explicit "Ключевые слова"/"Keywords" and abstract
// markers. A repeated keyword marker yields body text.
func (e *Engine) markerRule(text string, st *State) (role.Role, bool) {
	lower := strings.ToLower(text)
	if lexicon.ContainsAny(lower, lexicon.KeywordMarkersRU) {
		if st.IsAssigned(role.KeywordsRU) {
			return role.BodyText, true
		}
		return role.KeywordsRU, true
	}
	if lexicon.ContainsAny(lower, lexicon.KeywordMarkersEN) {
		if st.IsAssigned(role.KeywordsEN) {
			return role.BodyText, true
		}
		return role.KeywordsEN, true
	}
	if e.cfg.LegacyAbstractMarker {
		// early releases matched every paragraph here
		return role.AbstractRU, true
	}
	if lexicon.ContainsAny(lower, lexicon.AbstractMarkersRU) && !st.IsAssigned(role.AbstractRU) {
		return role.AbstractRU, true
	}
	if lexicon.ContainsAny(lower, lexicon.AbstractMarkersEN) && !st.IsAssigned(role.AbstractEN) {
		return role.AbstractEN, true
	}
	return "", false
}

const (
	contextAbstractMin = 100
	contextAbstractMax = 800
)

func abstractRule(text string, english bool, st *State) (role.Role, bool) {
	n := lexicon.RuneLen(text)
	if n < contextAbstractMin || n > contextAbstractMax {
		return "", false
	}
	if lexicon.HasStructureWords(text) || lexicon.LooksLikeAuthorInfo(text) ||
		lexicon.HasTechnicalFormulas(text) || !lexicon.HasAbstractStyle(text) {
		return "", false
	}
	return unassigned(pick(english, role.AbstractEN, role.AbstractRU), st)
}

func pick(english bool, en, ru role.Role) role.Role {
	if english {
		return en
	}
	return ru
}

func unassigned(r role.Role, st *State) (role.Role, bool) {
	if st.IsAssigned(r) {
		return "", false
	}
	return r, true
}

func containsRole(rs []role.Role, r role.Role) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}

func (e *Engine) observe(d Decision) {
	if e.obs != nil {
		e.obs.ObserveDecision(string(d.Role), string(d.Source))
	}
}
