// Package report renders analysis results as Markdown, JSON and PDF.
package report

import (
    "encoding/json"
    "fmt"
    "strings"

    "github.com/hyperifyio/papercheck/internal/analyze"
    "github.com/hyperifyio/papercheck/internal/role"
)

// complianceNames are the names used when listing missing elements.
var complianceNames = map[role.Role]string{
    role.TitleEN:    "Заголовок на английском",
    role.AuthorEN:   "Автор на английском",
    role.AbstractEN: "Аннотация на английском",
    role.KeywordsEN: "Ключевые слова на английском",
}

func complianceName(r role.Role) string {
    if s, ok := complianceNames[r]; ok {
        return s
    }
    return r.Display()
}

// Markdown renders the final report for one document.
func Markdown(res analyze.Result) string {
    var b strings.Builder
    s := res.Summary

    b.WriteString("# Отчёт о проверке документа\n\n")
    if res.Path != "" {
        fmt.Fprintf(&b, "Файл: `%s`\n\n", res.Path)
    }
    if !res.AnalyzedAt.IsZero() {
        fmt.Fprintf(&b, "Дата проверки: %s\n\n", res.AnalyzedAt.Format("2006-01-02 15:04:05"))
    }

    b.WriteString("## Общая статистика\n\n")
    fmt.Fprintf(&b, "- Всего абзацев: %d\n", s.TotalParagraphs)
    fmt.Fprintf(&b, "- Всего ошибок: %d\n", s.TotalErrors)
    fmt.Fprintf(&b, "- Ошибки форматирования: %d\n", s.FormattingErrors)
    fmt.Fprintf(&b, "- Ошибки содержания: %d\n", s.ContentErrors)
    fmt.Fprintf(&b, "- Ошибки структуры документа: %d\n", s.DocumentErrors)
    fmt.Fprintf(&b, "- Страниц (оценка): %d\n\n", res.PageCount)

    if len(res.DocumentErrors) > 0 {
        b.WriteString("## Ошибки структуры документа\n\n")
        for _, e := range res.DocumentErrors {
            fmt.Fprintf(&b, "- %s\n", e)
        }
        b.WriteString("\n")
    }

    b.WriteString("## Найденные элементы статьи\n\n")
    found := res.Found()
    if len(found) == 0 {
        b.WriteString("Элементы не найдены.\n")
    }
    for _, r := range found {
        fmt.Fprintf(&b, "- %s: %d элемент(ов)\n", r.Display(), s.RolesFound[r])
    }
    b.WriteString("\n")

    b.WriteString("## Детализация ошибок\n\n")
    listed := false
    for _, p := range res.Paragraphs {
        if p.TotalErrors == 0 {
            continue
        }
        listed = true
        fmt.Fprintf(&b, "### Абзац %d (%s)\n\n", p.Ordinal, p.Role.Label())
        fmt.Fprintf(&b, "Текст: %s\n\n", p.TextPreview)
        for _, e := range p.FormattingErrors {
            fmt.Fprintf(&b, "- Форматирование: %s\n", e)
        }
        for _, e := range p.ContentErrors {
            fmt.Fprintf(&b, "- Содержание: %s\n", e)
        }
        b.WriteString("\n")
    }
    if !listed {
        b.WriteString("Ошибок в абзацах не найдено.\n\n")
    }

    b.WriteString("## Анализ соответствия требованиям\n\n")
    if missing := res.Missing(); len(missing) > 0 {
        b.WriteString("Отсутствующие обязательные элементы:\n\n")
        for _, r := range missing {
            fmt.Fprintf(&b, "- %s\n", complianceName(r))
        }
    } else {
        b.WriteString("Все обязательные элементы присутствуют.\n")
    }
    b.WriteString("\n")

    b.WriteString("## Рекомендации\n\n")
    for _, line := range Recommendations(res) {
        b.WriteString(line)
        b.WriteString("\n")
    }
    return b.String()
}

// Recommendations returns the advice lines chosen by which kind of finding
// dominates.
func Recommendations(res analyze.Result) []string {
    s := res.Summary
    if res.Findings() == 0 {
        return []string{"Отличная работа! Документ полностью соответствует требованиям."}
    }
    var out []string
    if s.DocumentErrors > 0 {
        out = append(out, "- Исправьте настройки документа: поля, объем, общее форматирование.")
    }
    if s.FormattingErrors > s.ContentErrors {
        out = append(out,
            "- Основные проблемы в форматировании:",
            "  - Проверьте шрифт Times New Roman для всего текста",
            "  - Проверьте размеры шрифтов согласно требованиям",
            "  - Проверьте выравнивание текста",
            "  - Проверьте использование полужирного шрифта и курсива",
            "  - Проверьте отступы абзацев (0.6 см для основного текста)",
        )
    } else {
        out = append(out,
            "- Основные проблемы в содержании:",
            "  - Проверьте структуру и полноту всех разделов",
            "  - Убедитесь в корректности оформления ФИО и контактов",
            "  - Проверьте длину аннотации (300-650 символов)",
            "  - Проверьте количество ключевых слов (4-6 слов)",
        )
    }
    out = append(out,
        "- Общие рекомендации:",
        "  - Используйте только Times New Roman для всего документа",
        "  - Соблюдайте межстрочный интервал 1.0",
        "  - Не используйте аббревиатуры в заголовках",
        "  - Убедитесь в корректности английской части",
    )
    return out
}

// JSON encodes the result with indentation.
func JSON(res analyze.Result) ([]byte, error) {
    return json.MarshalIndent(res, "", "  ")
}
