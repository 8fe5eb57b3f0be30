package classify

import (
	"strings"

	"github.com/hyperifyio/papercheck/internal/lexicon"
	"github.com/hyperifyio/papercheck/internal/role"
)

// Language is the language context of the last classified paragraph.
type Language string

const (
	LangRU Language = "ru"
	LangEN Language = "en"
)

// Entry summarises one processed paragraph.
type Entry struct {
	Ordinal int
	Prefix  string
	Length  int
}

const entryPrefixLen = 100

// State is the per-document classification state. It is not safe for
// concurrent use; each document analysis owns one.
type State struct {
	assigned map[role.Role]bool
	history  []Entry
	limit    int
	lang     Language
}

// NewState returns an empty state whose history keeps at most limit entries.
// limit <= 0 keeps everything.
func NewState(limit int) *State {
	s := &State{limit: limit}
	s.Reset()
	return s
}

// Reset clears every flag and the history.
func (s *State) Reset() {
	s.assigned = make(map[role.Role]bool, 8)
	s.history = s.history[:0]
	s.lang = LangRU
}

// Record appends a summary of a paragraph to the history.
func (s *State) Record(ordinal int, text string) {
	s.history = append(s.history, Entry{
		Ordinal: ordinal,
		Prefix:  lexicon.Prefix(text, entryPrefixLen),
		Length:  lexicon.RuneLen(text),
	})
	if s.limit > 0 && len(s.history) > s.limit {
		drop := len(s.history) - s.limit
		s.history = append(s.history[:0], s.history[drop:]...)
	}
}

// MarkAssigned sets the flag of a singleton role. Other roles are ignored.
func (s *State) MarkAssigned(r role.Role) {
	if r.Singleton() {
		s.assigned[r] = true
	}
}

// IsAssigned reports whether a singleton role was already produced.
func (s *State) IsAssigned(r role.Role) bool {
	return s.assigned[r]
}

// Recent returns up to n most recent history entries, oldest first.
func (s *State) Recent(n int) []Entry {
	if n <= 0 || len(s.history) == 0 {
		return nil
	}
	if n > len(s.history) {
		n = len(s.history)
	}
	out := make([]Entry, n)
	copy(out, s.history[len(s.history)-n:])
	return out
}

// Len returns the number of entries currently held in the history.
func (s *State) Len() int { return len(s.history) }

// Language returns the language context of the last recorded paragraph.
func (s *State) Language() Language { return s.lang }

func (s *State) setLanguage(english bool) {
	if english {
		s.lang = LangEN
		return
	}
	s.lang = LangRU
}

var summaryPhrases = []struct {
	r      role.Role
	phrase string
}{
	{role.TitleRU, "русский заголовок уже найден"},
	{role.TitleEN, "английский заголовок уже найден"},
	{role.AbstractRU, "русская аннотация уже найдена"},
	{role.AbstractEN, "английская аннотация уже найдена"},
	{role.KeywordsRU, "русские ключевые слова уже найдены"},
	{role.KeywordsEN, "английские ключевые слова уже найдены"},
	{role.AuthorRU, "русские авторы уже найдены"},
	{role.AuthorEN, "английские авторы уже найдены"},
}

// Summary describes the assigned singleton roles in Russian for the remote
// prompt, or "начало документа" when none are assigned.
func (s *State) Summary() string {
	var parts []string
	for _, p := range summaryPhrases {
		if s.assigned[p.r] {
			parts = append(parts, p.phrase)
		}
	}
	if len(parts) == 0 {
		return "начало документа"
	}
	return strings.Join(parts, "; ")
}

// Assigned lists the assigned singleton roles in document order.
func (s *State) Assigned() []role.Role {
	var out []role.Role
	for _, r := range role.All {
		if s.assigned[r] {
			out = append(out, r)
		}
	}
	return out
}
