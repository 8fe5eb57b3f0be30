package role

import "strings"

// Role is the section tag assigned to a paragraph of a scholarly article.
// The string value is a stable ASCII key used in config files, JSON and
// metrics labels.
type Role string

const (
	UDC          Role = "udc"
	AuthorRU     Role = "author-ru"
	TitleRU      Role = "title-ru"
	AuthorInfoRU Role = "author-info-ru"
	AbstractRU   Role = "abstract-ru"
	KeywordsRU   Role = "keywords-ru"
	TitleEN      Role = "title-en"
	AuthorEN     Role = "author-en"
	WorkplaceEN  Role = "workplace-en"
	AbstractEN   Role = "abstract-en"
	KeywordsEN   Role = "keywords-en"
	BodyText     Role = "body-text"
)

// All lists every role in document order.
var All = []Role{
	UDC, AuthorRU, TitleRU, AuthorInfoRU, AbstractRU, KeywordsRU,
	TitleEN, AuthorEN, WorkplaceEN, AbstractEN, KeywordsEN, BodyText,
}

// Required lists the elements a complete article must contain.
var Required = []Role{
	UDC, AuthorRU, TitleRU, AuthorInfoRU, AbstractRU, KeywordsRU,
	TitleEN, AuthorEN, AbstractEN, KeywordsEN,
}

type meta struct {
	label     string
	display   string
	singleton bool
	english   bool
}

var table = map[Role]meta{
	UDC:          {label: "удк", display: "УДК"},
	AuthorRU:     {label: "автор", display: "Автор", singleton: true},
	TitleRU:      {label: "заголовок", display: "Заголовок статьи", singleton: true},
	AuthorInfoRU: {label: "сведения_об_авторе", display: "Сведения об авторе"},
	AbstractRU:   {label: "аннотация", display: "Аннотация", singleton: true},
	KeywordsRU:   {label: "ключевые_слова", display: "Ключевые слова", singleton: true},
	TitleEN:      {label: "заголовок_английский", display: "Заголовок (англ.)", singleton: true, english: true},
	AuthorEN:     {label: "автор_английский", display: "Автор (англ.)", singleton: true, english: true},
	WorkplaceEN:  {label: "место_работы_английский", display: "Место работы (англ.)", english: true},
	AbstractEN:   {label: "аннотация_английская", display: "Аннотация (англ.)", singleton: true, english: true},
	KeywordsEN:   {label: "ключевые_слова_английские", display: "Ключевые слова (англ.)", singleton: true, english: true},
	BodyText:     {label: "основной_текст", display: "Основной текст"},
}

// Label returns the Russian wire label the remote model is asked to answer with.
func (r Role) Label() string { return table[r].label }

// Display returns a human readable name for reports.
func (r Role) Display() string {
	if m, ok := table[r]; ok {
		return m.display
	}
	return string(r)
}

// Singleton reports whether the role may be assigned at most once per document.
func (r Role) Singleton() bool { return table[r].singleton }

// English reports whether the role belongs to the English half of the article.
func (r Role) English() bool { return table[r].english }

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := table[r]
	return ok
}

// Sibling returns the other-language counterpart of a language-paired role.
func (r Role) Sibling() (Role, bool) {
	switch r {
	case AuthorRU:
		return AuthorEN, true
	case AuthorEN:
		return AuthorRU, true
	case TitleRU:
		return TitleEN, true
	case TitleEN:
		return TitleRU, true
	case AbstractRU:
		return AbstractEN, true
	case AbstractEN:
		return AbstractRU, true
	case KeywordsRU:
		return KeywordsEN, true
	case KeywordsEN:
		return KeywordsRU, true
	}
	return "", false
}

// Parse accepts either a key ("title-ru") or a wire label ("заголовок"),
// case-insensitively.
func Parse(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}
	for _, r := range All {
		if string(r) == s || table[r].label == s {
			return r, true
		}
	}
	return "", false
}
