package classify

import (
	"strings"

	"github.com/hyperifyio/papercheck/internal/lexicon"
	"github.com/hyperifyio/papercheck/internal/role"
)

// excerptLen caps the paragraph text sent to the remote model.
const excerptLen = 500

const promptRules = `Правила классификации:
1. автор/автор_английский:
   - Строка с фамилиями и инициалами авторов
   - Пример: "Иванов А.А., Петров Б.В."
   - Может содержать email (но не всегда)

2. заголовок/заголовок_английский:
   - Название статьи (обычно 5-20 слов)
   - Часто выделен жирным или заглавными буквами
   - Содержит ключевые термины исследования
   - В русской статье английский заголовок идет после русского

3. сведения_об_авторе/место_работы_английский:
   - Информация об аффилиации, должностях, ученых степенях
   - Содержит названия организаций, городов
   - Может включать контактную информацию
   - Пример: "МГУ им. Ломоносова, Москва, Россия"

4. аннотация/аннотация_английская:
   - Краткое описание исследования (100-500 символов)
   - Начинается с "В статье..." или "The article..."
   - Содержит цели, методы и основные результаты

5. ключевые_слова/ключевые_слова_английские:
   - Начинаются со слов "Ключевые слова:" или "Keywords:"
   - Содержат 3-10 терминов через запятую

6. основной_текст:
   - Содержит научное описание исследования
   - Включает формулы, ссылки на литературу
   - Может содержать подзаголовки (введение, методы и т.д.)
   - Часто использует научную лексику

7. удостоверяющая_информация:
   - УДК, DOI, дата поступления
   - Пример: "УДК 66.02:519.771.3"`

// BuildPrompt renders the single user message sent to the remote model: the
// permitted labels, the document context summary, the classification rules
// and an excerpt of the paragraph.
func BuildPrompt(text string, permitted []role.Role, summary string) string {
	labels := make([]string, 0, len(permitted))
	for _, r := range permitted {
		labels = append(labels, r.Label())
	}
	var sb strings.Builder
	sb.WriteString("Определи тип элемента научной статьи. Ответь ТОЛЬКО одним словом из списка:\n")
	sb.WriteString(strings.Join(labels, ", "))
	sb.WriteString("\n\nКонтекст документа:\n")
	sb.WriteString(summary)
	sb.WriteString("\n\n")
	sb.WriteString(promptRules)
	sb.WriteString("\n\nТекст: \"")
	sb.WriteString(lexicon.Prefix(text, excerptLen))
	sb.WriteString("\"\n\nТип:")
	return sb.String()
}

// MatchLabel maps a model answer onto the first permitted role whose label
// contains the answer or is contained in it, case-insensitively. Keyword
// roles already assigned in st are never returned.
func MatchLabel(answer string, permitted []role.Role, st *State) (role.Role, bool) {
	a := strings.ToLower(strings.TrimSpace(answer))
	a = strings.Trim(a, " \t\r\n\"'`«».,:;*")
	// a one or two letter answer would be a substring of nearly every label
	if lexicon.RuneLen(a) < 3 {
		return "", false
	}
	for _, r := range permitted {
		if (r == role.KeywordsRU || r == role.KeywordsEN) && st != nil && st.IsAssigned(r) {
			continue
		}
		label := strings.ToLower(r.Label())
		if a == string(r) || strings.Contains(a, label) || strings.Contains(label, a) {
			return r, true
		}
	}
	return "", false
}
