package criteria

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/hyperifyio/papercheck/internal/lexicon"
)

// Check reports whether text satisfies a content rule.
type Check func(text string) bool

// Rule is a named content check. The name doubles as the message shown when
// the check fails.
type Rule struct {
	Name  string
	Check Check
}

var (
	latinLetter      = regexp.MustCompile(`[a-zA-Z]`)
	latinWord        = regexp.MustCompile(`[a-zA-Z]+`)
	authorRU         = regexp.MustCompile(`^[А-ЯЁ][а-яё]+\s+[А-ЯЁ]\.\s*[А-ЯЁ]\.$`)
	spacedInitials   = regexp.MustCompile(`[А-ЯЁ]\.\s+[А-ЯЁ]\.`)
	authorEN         = regexp.MustCompile(`[A-Z][a-z]+\s*[A-Z]\.[A-Z]\.`)
	allowedDegrees   = []string{"к.т.н", "д.т.н", "к.э.н", "д.э.н", "к.ф.-м.н", "д.ф.-м.н"}
	professionalInfo = []string{
		"к.т.н", "д.т.н", "кандидат", "доктор", "профессор", "доцент",
		"аспирант", "магистр", "заведующий", "директор", "кафедра",
		"университет", "институт", "факультет", "область", "город",
	}
)

// registry maps rule names to checks. Names are what criteria files refer to.
var registry = map[string]Check{
	"должен начинаться с 'УДК'": func(t string) bool {
		return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(t)), "УДК")
	},
	"должен содержать код классификации": func(t string) bool { return len(strings.Fields(t)) >= 2 },

	"должен содержать корректный формат ФИО с инициалами": authorList,
	"инициалы без пробелов": func(t string) bool { return !spacedInitials.MatchString(t) },

	"не должен содержать аббревиатуры": func(t string) bool { return !hasAbbreviation(t) },
	"должен начинаться с заглавной буквы": func(t string) bool {
		r, _ := utf8.DecodeRuneInString(t)
		return t != "" && unicode.IsUpper(r)
	},

	"должен содержать профессиональную информацию": func(t string) bool {
		lower := strings.ToLower(t)
		for _, k := range professionalInfo {
			if strings.Contains(lower, k) {
				return true
			}
		}
		return false
	},
	// Case agreement cannot be checked without morphology; always passes.
	"должен быть в именительном падеже": func(string) bool { return true },

	"должна быть 300-650 символов": func(t string) bool { return between(utf8.RuneCountInString(t), 300, 650) },
	"не должна содержать заголовок 'Аннотация'": func(t string) bool {
		return !strings.Contains(lexicon.Prefix(strings.ToLower(t), 20), "аннотация")
	},

	"должно быть 4-6 ключевых слов": func(t string) bool { return between(countItems(t), 4, 6) },
	"не более 100 символов":         func(t string) bool { return utf8.RuneCountInString(t) <= 100 },

	"должен содержать английский текст": latinLetter.MatchString,
	"должен быть корректно написан": func(t string) bool {
		return len(latinWord.FindAllString(t, -1)) >= 3
	},

	"фамилия + инициалы без пробела": authorEN.MatchString,

	"должно содержать название организации": func(t string) bool { return len(strings.Fields(t)) >= 3 },
	"должно содержать город и страну":       func(t string) bool { return strings.Contains(t, ",") },

	"должна содержать английский текст": latinLetter.MatchString,
	"должна быть достаточной длины":     func(t string) bool { return utf8.RuneCountInString(t) >= 100 },

	"должны содержать английский текст": latinLetter.MatchString,
	"должно быть 4-6 слов":              func(t string) bool { return between(countItems(t), 4, 6) },

	"должен содержать законченные предложения": func(t string) bool { return strings.Contains(t, ".") },
	"не должен быть слишком коротким":          func(t string) bool { return len(strings.Fields(t)) >= 10 },
}

var registryMu sync.RWMutex

// Register adds a named check so criteria files can refer to it.
func Register(name string, c Check) error {
	if name == "" || c == nil {
		return fmt.Errorf("criteria: rule needs a name and a check")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		return fmt.Errorf("criteria: rule %q already registered", name)
	}
	registry[name] = c
	return nil
}

// Lookup returns the check registered under name.
func Lookup(name string) (Check, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := registry[name]
	return c, ok
}

// RuleNames lists every registered rule name in sorted order.
func RuleNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// authorList accepts one or more comma separated "Фамилия И.О." entries.
func authorList(t string) bool {
	for _, a := range strings.Split(t, ",") {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if !authorRU.MatchString(a) {
			return false
		}
	}
	return true
}

// hasAbbreviation looks for a standalone word of 2 to 6 upper-case Cyrillic
// (А-Я) or Latin letters, ignoring the allowed academic degree contractions.
func hasAbbreviation(t string) bool {
	for _, a := range allowedDegrees {
		t = strings.ReplaceAll(t, a, "")
	}
	isWord := func(r rune) bool { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }
	for _, w := range strings.FieldsFunc(t, func(r rune) bool { return !isWord(r) }) {
		n := utf8.RuneCountInString(w)
		if n < 2 || n > 6 {
			continue
		}
		upper := true
		for _, r := range w {
			if !(r >= 'А' && r <= 'Я') && !(r >= 'A' && r <= 'Z') {
				upper = false
				break
			}
		}
		if upper {
			return true
		}
	}
	return false
}

func countItems(t string) int {
	n := 0
	for _, w := range strings.Split(t, ",") {
		if strings.TrimSpace(w) != "" {
			n++
		}
	}
	return n
}

func between(n, lo, hi int) bool { return n >= lo && n <= hi }
