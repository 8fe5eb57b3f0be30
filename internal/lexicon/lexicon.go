// Package lexicon holds the stateless text predicates used to recognise the
// parts of a scholarly article. Every function is a pure function of its
// arguments.
package lexicon

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// EnglishThreshold is the ratio above which a paragraph counts as English.
const EnglishThreshold = 0.7

var (
	udcRe          = regexp.MustCompile(`(?i)^удк[\s\x{00A0}]`)
	latinWordRe    = regexp.MustCompile(`[a-zA-Z]+`)
	anyWordRe      = regexp.MustCompile(`[а-яёА-ЯЁa-zA-Z]+`)
	initialsRURe   = regexp.MustCompile(`[А-ЯЁ]\.[А-ЯЁ]\.`)
	initialsENRe   = regexp.MustCompile(`[A-Z]\.[A-Z]\.`)
	initialsAnyRe  = regexp.MustCompile(`[А-ЯЁA-Z]\.[А-ЯЁA-Z]\.`)
	authorRe       = regexp.MustCompile(`[А-ЯЁA-Z][а-яёa-z]+\s+[А-ЯЁA-Z]\.[А-ЯЁA-Z]\.`)
	fullNameRe     = regexp.MustCompile(`[А-ЯЁ][а-яё]+\s+[А-ЯЁ][а-яё]+\s+[А-ЯЁ][а-яё]+`)
	postalCodeRe   = regexp.MustCompile(`\d{6}`)
	degreeAbbrRe   = regexp.MustCompile(`[кд]\.т\.н`)
	properNounRe   = regexp.MustCompile(`[A-Z][a-z]+`)
	upperLetterRe  = regexp.MustCompile(`[А-ЯЁA-Z]`)
	lowerLetterRe  = regexp.MustCompile(`[а-яёa-z]`)
	formulaPattern = []*regexp.Regexp{
		regexp.MustCompile(`\b[a-zA-Z]\s*[=<>]\s*\d`),
		regexp.MustCompile(`\d+\s*[+\-*/]\s*\d+`),
		regexp.MustCompile(`[а-яА-Я]\s*[=<>]\s*\d`),
	}
)

// IsUDC reports whether text starts with a UDC code marker ("УДК ").
func IsUDC(text string) bool {
	return udcRe.MatchString(text)
}

// EnglishRatio returns the share of Latin word tokens among all Cyrillic and
// Latin word tokens. The denominator is floored at 1.
func EnglishRatio(text string) float64 {
	english := len(latinWordRe.FindAllStringIndex(text, -1))
	total := len(anyWordRe.FindAllStringIndex(text, -1))
	if total < 1 {
		total = 1
	}
	return float64(english) / float64(total)
}

// IsEnglish reports whether text is predominantly English.
func IsEnglish(text string) bool {
	return EnglishRatio(text) > EnglishThreshold
}

// LooksLikeAuthor reports whether text reads as a list of authors written as
// "Surname I.I.".
func LooksLikeAuthor(text string, isEnglish bool) bool {
	initials := initialsRURe
	if isEnglish {
		initials = initialsENRe
	}
	if !initials.MatchString(text) {
		return false
	}
	if len(strings.Fields(text)) > 20 {
		return false
	}
	if containsAny(strings.ToLower(text), authorExclusions) {
		return false
	}
	return authorRe.MatchString(text)
}

// LooksLikeAuthorInfo reports whether text carries affiliation, degree or
// contact information about an author.
func LooksLikeAuthorInfo(text string) bool {
	lower := strings.ToLower(text)
	return fullNameRe.MatchString(text) ||
		containsAny(lower, authorInfoKeywords) ||
		postalCodeRe.MatchString(text) ||
		degreeAbbrRe.MatchString(lower)
}

// LooksLikeTitle applies the title heuristic: 3..20 words, no initials or
// e-mail, not an affiliation, address or degree line, at least one
// preposition/article and no geographic or organisation word.
func LooksLikeTitle(text string) bool {
	n := len(strings.Fields(text))
	if n < 3 || n > 20 {
		return false
	}
	if strings.Contains(text, "@") || initialsAnyRe.MatchString(text) {
		return false
	}
	if LooksLikeWorkplace(text) || HasAddressPattern(text) || HasProfessionalKeywords(text) {
		return false
	}
	lower := strings.ToLower(text)
	return containsAny(lower, titleIndicators) && !containsAny(lower, titleLocationWords)
}

// IsAllUppercaseTitle reports whether more than 80% of the letters are
// upper-case.
func IsAllUppercaseTitle(text string) bool {
	upper := len(upperLetterRe.FindAllStringIndex(text, -1))
	lower := len(lowerLetterRe.FindAllStringIndex(text, -1))
	total := upper + lower
	if total == 0 {
		return false
	}
	return float64(upper)/float64(total) > 0.8
}

// LooksLikeWorkplace reports whether text names an organisation, or a place
// together with a capitalised proper noun.
func LooksLikeWorkplace(text string) bool {
	lower := strings.ToLower(text)
	if containsAny(lower, workplaceKeywords) {
		return true
	}
	return containsAny(lower, workplaceLocations) && properNounRe.MatchString(text)
}

// HasAbstractStyle reports whether text uses the descriptive research
// vocabulary typical of an abstract.
func HasAbstractStyle(text string) bool {
	return containsAny(strings.ToLower(text), abstractIndicators)
}

// HasStructureWords reports whether text mentions article section names.
func HasStructureWords(text string) bool {
	return containsAny(strings.ToLower(text), structureWords)
}

// HasAddressPattern reports whether text contains a postal code or an
// address keyword.
func HasAddressPattern(text string) bool {
	if postalCodeRe.MatchString(text) {
		return true
	}
	return containsAny(strings.ToLower(text), addressKeywords)
}

// HasProfessionalKeywords reports whether text mentions degrees, positions
// or academic units.
func HasProfessionalKeywords(text string) bool {
	return containsAny(strings.ToLower(text), professionalKeywords)
}

// HasTechnicalFormulas reports whether text contains simple math
// expressions such as "x = 5" or "2 + 3".
func HasTechnicalFormulas(text string) bool {
	for _, re := range formulaPattern {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// ContainsAny reports whether the lower-cased text contains any of words.
func ContainsAny(text string, words []string) bool {
	return containsAny(strings.ToLower(text), words)
}

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// RuneLen returns the length of s in characters.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Prefix returns at most n leading characters of s.
func Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Preview returns the first n characters of s followed by "..." when s is
// longer than n.
func Preview(s string, n int) string {
	p := Prefix(s, n)
	if len(p) < len(s) {
		return p + "..."
	}
	return s
}

// IsBlank reports whether s has no visible characters.
func IsBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
