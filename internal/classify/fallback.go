package classify

import (
	"strings"

	"github.com/hyperifyio/papercheck/internal/lexicon"
	"github.com/hyperifyio/papercheck/internal/role"
)

const (
	fallbackAbstractMin = 100
	fallbackAbstractMax = 600
	fallbackKeywordsMax = 100
)

// Fallback is the deterministic classifier used when no remote classifier is
// configured or it gave no usable answer. It only reads st and always
// returns a role.
func Fallback(text string, isEnglish bool, st *State) role.Role {
	if isEnglish {
		return fallbackEnglish(text, st)
	}
	return fallbackRussian(text, st)
}

func fallbackEnglish(text string, st *State) role.Role {
	n := lexicon.RuneLen(text)
	title := lexicon.LooksLikeTitle(text)
	workplace := lexicon.LooksLikeWorkplace(text)
	switch {
	case title && !st.IsAssigned(role.TitleEN) && !workplace:
		return role.TitleEN
	case workplace:
		return role.WorkplaceEN
	case n >= fallbackAbstractMin && n <= fallbackAbstractMax && !st.IsAssigned(role.AbstractEN) &&
		lexicon.HasAbstractStyle(text) && !title && !workplace:
		return role.AbstractEN
	case strings.Contains(text, ",") && n <= fallbackKeywordsMax && !st.IsAssigned(role.KeywordsEN):
		return role.KeywordsEN
	}
	return role.BodyText
}

func fallbackRussian(text string, st *State) role.Role {
	n := lexicon.RuneLen(text)
	authorInfo := lexicon.LooksLikeAuthorInfo(text)
	switch {
	case lexicon.LooksLikeTitle(text) && !authorInfo && !st.IsAssigned(role.TitleRU):
		return role.TitleRU
	case lexicon.HasAddressPattern(text) || strings.Contains(text, "@"):
		return role.AuthorInfoRU
	case n >= fallbackAbstractMin && n <= fallbackAbstractMax && lexicon.HasAbstractStyle(text) &&
		!lexicon.HasStructureWords(text) && !st.IsAssigned(role.AbstractRU):
		return role.AbstractRU
	case n <= fallbackKeywordsMax && strings.Contains(text, ",") && !authorInfo && !st.IsAssigned(role.KeywordsRU):
		return role.KeywordsRU
	}
	return role.BodyText
}
