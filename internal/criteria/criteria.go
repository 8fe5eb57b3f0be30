// Package criteria holds the formatting and content expectations for each
// article element and the page setup required of the whole document.
package criteria

import (
	"fmt"

	"github.com/hyperifyio/papercheck/internal/document"
	"github.com/hyperifyio/papercheck/internal/role"
)

// Record is the expectation for paragraphs of one role. Nil pointers and
// zero values are not checked.
type Record struct {
	Font      string             `yaml:"font,omitempty" json:"font,omitempty"`
	Size      float64            `yaml:"size,omitempty" json:"size,omitempty"`
	Alignment document.Alignment `yaml:"alignment,omitempty" json:"alignment,omitempty"`
	Bold      *bool              `yaml:"bold,omitempty" json:"bold,omitempty"`
	Italic    *bool              `yaml:"italic,omitempty" json:"italic,omitempty"`
	IndentCM  *float64           `yaml:"indentCm,omitempty" json:"indentCm,omitempty"`
	Rules     []string           `yaml:"rules" json:"rules"`
}

// Requirements is the page setup the document as a whole must follow.
type Requirements struct {
	TopMarginCM    float64 `yaml:"topMarginCm" json:"topMarginCm"`
	BottomMarginCM float64 `yaml:"bottomMarginCm" json:"bottomMarginCm"`
	LeftMarginCM   float64 `yaml:"leftMarginCm" json:"leftMarginCm"`
	RightMarginCM  float64 `yaml:"rightMarginCm" json:"rightMarginCm"`
	LineSpacing    float64 `yaml:"lineSpacing" json:"lineSpacing"`
	Font           string  `yaml:"font" json:"font"`
	MinPages       int     `yaml:"minPages" json:"minPages"`
}

// Table is the complete criteria set.
type Table struct {
	Document Requirements         `yaml:"document" json:"document"`
	Roles    map[role.Role]Record `yaml:"roles" json:"roles"`
}

func on(v bool) *bool { return &v }

func cm(v float64) *float64 { return &v }

func rules(names ...string) []string { return names }

// Default returns the built-in criteria.
func Default() *Table {
	const tnr = document.DefaultFont
	left, justify := document.AlignLeft, document.AlignJustify
	return &Table{
		Document: Requirements{
			TopMarginCM:    1.5,
			BottomMarginCM: 1.5,
			LeftMarginCM:   2.5,
			RightMarginCM:  1.0,
			LineSpacing:    1.0,
			Font:           tnr,
			MinPages:       3,
		},
		Roles: map[role.Role]Record{
			role.UDC: {Font: tnr, Size: 10.5, Alignment: left, Bold: on(false), Italic: on(false),
				Rules: rules("должен начинаться с 'УДК'", "должен содержать код классификации")},
			role.AuthorRU: {Font: tnr, Size: 12, Alignment: left, Bold: on(false), Italic: on(false),
				Rules: rules("должен содержать корректный формат ФИО с инициалами", "инициалы без пробелов")},
			role.TitleRU: {Font: tnr, Size: 12, Alignment: left, Bold: on(true), Italic: on(false),
				Rules: rules("не должен содержать аббревиатуры", "должен начинаться с заглавной буквы")},
			role.AuthorInfoRU: {Font: tnr, Size: 10.5, Alignment: left, Bold: on(false), Italic: on(false),
				Rules: rules("должен содержать профессиональную информацию", "должен быть в именительном падеже")},
			role.AbstractRU: {Font: tnr, Size: 10.5, Alignment: justify, Bold: on(false), Italic: on(true),
				Rules: rules("должна быть 300-650 символов", "не должна содержать заголовок 'Аннотация'")},
			role.KeywordsRU: {Font: tnr, Size: 10.5, Alignment: justify, Bold: on(false), Italic: on(true),
				Rules: rules("должно быть 4-6 ключевых слов", "не более 100 символов")},
			role.TitleEN: {Font: tnr, Size: 10.5, Alignment: left, Bold: on(true), Italic: on(false),
				Rules: rules("должен содержать английский текст", "должен быть корректно написан")},
			role.AuthorEN: {Font: tnr, Size: 10.5, Alignment: left, Bold: on(false), Italic: on(false),
				Rules: rules("фамилия + инициалы без пробела", "должен содержать английский текст")},
			role.WorkplaceEN: {Font: tnr, Size: 10.5, Alignment: left, Bold: on(false), Italic: on(false),
				Rules: rules("должно содержать название организации", "должно содержать город и страну")},
			role.AbstractEN: {Font: tnr, Size: 10.5, Alignment: justify, Bold: on(false), Italic: on(true),
				Rules: rules("должна содержать английский текст", "должна быть достаточной длины")},
			role.KeywordsEN: {Font: tnr, Size: 10.5, Alignment: justify, Bold: on(false), Italic: on(true),
				Rules: rules("должны содержать английский текст", "должно быть 4-6 слов")},
			role.BodyText: {Font: tnr, Size: 10.5, Alignment: justify, Bold: on(false), Italic: on(false), IndentCM: cm(0.6),
				Rules: rules("должен содержать законченные предложения", "не должен быть слишком коротким")},
		},
	}
}

// Get returns the record for r.
func (t *Table) Get(r role.Role) (Record, bool) {
	if t == nil {
		return Record{}, false
	}
	rec, ok := t.Roles[r]
	return rec, ok
}

// Requirements returns the document-level requirements.
func (t *Table) Requirements() Requirements {
	if t == nil {
		return Default().Document
	}
	return t.Document
}

// RulesFor resolves the rule names of rec. Unknown names are skipped; Validate
// reports them.
func (t *Table) RulesFor(rec Record) []Rule {
	out := make([]Rule, 0, len(rec.Rules))
	for _, name := range rec.Rules {
		if c, ok := Lookup(name); ok {
			out = append(out, Rule{Name: name, Check: c})
		}
	}
	return out
}

// Validate checks that every role key is known and every rule name is
// registered.
func (t *Table) Validate() error {
	for r, rec := range t.Roles {
		if !r.Valid() {
			return fmt.Errorf("criteria: unknown role %q", r)
		}
		for _, name := range rec.Rules {
			if _, ok := Lookup(name); !ok {
				return fmt.Errorf("criteria: role %s: unknown rule %q", r, name)
			}
		}
	}
	if t.Document.MinPages < 0 {
		return fmt.Errorf("criteria: minPages must not be negative")
	}
	return nil
}
