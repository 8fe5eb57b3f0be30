package report

import (
    "bytes"
    "encoding/json"
    "os"
    "path/filepath"
    "strings"
    "testing"
    "time"

    "github.com/hyperifyio/papercheck/internal/analyze"
    "github.com/hyperifyio/papercheck/internal/classify"
    "github.com/hyperifyio/papercheck/internal/role"
)

func sampleResult() analyze.Result {
    return analyze.Result{
        Path:           "article.docx",
        AnalyzedAt:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
        PageCount:      2,
        DocumentErrors: []string{"Недостаточный объем документа: 2 стр. (минимум 3 стр.)"},
        Paragraphs: []analyze.ParagraphResult{
            {Ordinal: 1, TextPreview: "УДК 004.8", Role: role.UDC, Source: classify.SourceUDC},
            {Ordinal: 2, TextPreview: "Иванов И.И.", Role: role.AuthorRU, Source: classify.SourceRemote,
                FormattingErrors: []string{"Неверный размер шрифта: 14.0 (требуется 12)"}, TotalErrors: 1},
        },
        Summary: analyze.Summary{
            TotalParagraphs:  2,
            TotalErrors:      1,
            FormattingErrors: 1,
            DocumentErrors:   1,
            RolesFound:       map[role.Role]int{role.UDC: 1, role.AuthorRU: 1},
        },
    }
}

func TestMarkdown_Sections(t *testing.T) {
    md := Markdown(sampleResult())
    for _, want := range []string{
        "# Отчёт о проверке документа",
        "Файл: `article.docx`",
        "Дата проверки: 2026-03-01 10:00:00",
        "- Всего абзацев: 2",
        "- Ошибки структуры документа: 1",
        "## Ошибки структуры документа",
        "- УДК: 1 элемент(ов)",
        "- Автор: 1 элемент(ов)",
        "### Абзац 2 (автор)",
        "- Форматирование: Неверный размер шрифта: 14.0 (требуется 12)",
        "- Заголовок на английском",
        "- Сведения об авторе",
        "- Исправьте настройки документа",
        "- Основные проблемы в форматировании:",
    } {
        if !strings.Contains(md, want) {
            t.Fatalf("missing %q in:\n%s", want, md)
        }
    }
    if strings.Contains(md, "### Абзац 1") {
        t.Fatalf("paragraphs without findings must not be detailed")
    }
    if strings.Contains(md, "- УДК\n") {
        t.Fatalf("found element listed as missing")
    }
}

func TestMarkdown_CleanDocument(t *testing.T) {
    res := analyze.Result{Summary: analyze.Summary{RolesFound: map[role.Role]int{}}}
    for _, r := range role.Required {
        res.Summary.RolesFound[r] = 1
    }
    md := Markdown(res)
    for _, want := range []string{
        "Ошибок в абзацах не найдено.",
        "Все обязательные элементы присутствуют.",
        "Отличная работа!",
    } {
        if !strings.Contains(md, want) {
            t.Fatalf("missing %q in:\n%s", want, md)
        }
    }
}

func TestRecommendations_ContentDominates(t *testing.T) {
    res := analyze.Result{Summary: analyze.Summary{TotalErrors: 3, FormattingErrors: 1, ContentErrors: 2}}
    got := strings.Join(Recommendations(res), "\n")
    if !strings.Contains(got, "Основные проблемы в содержании") || strings.Contains(got, "настройки документа") {
        t.Fatalf("recommendations:\n%s", got)
    }
}

func TestJSON(t *testing.T) {
    b, err := JSON(sampleResult())
    if err != nil {
        t.Fatal(err)
    }
    var back map[string]any
    if err := json.Unmarshal(b, &back); err != nil {
        t.Fatalf("invalid json: %v", err)
    }
    paras := back["paragraphs"].([]any)
    if p := paras[1].(map[string]any); p["role"] != "author-ru" || p["source"] != "remote" {
        t.Fatalf("paragraph json %v", p)
    }
}

func TestRenderPDF_TransliteratesWithoutFont(t *testing.T) {
    saved := FontCandidates
    FontCandidates = nil
    defer func() { FontCandidates = saved }()

    var buf bytes.Buffer
    if err := RenderPDF(&buf, sampleResult(), filepath.Join(t.TempDir(), "missing.ttf")); err != nil {
        t.Fatalf("render: %v", err)
    }
    if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
        t.Fatalf("not a pdf: %q", buf.Bytes()[:8])
    }
}

func TestWritePDF(t *testing.T) {
    saved := FontCandidates
    FontCandidates = nil
    defer func() { FontCandidates = saved }()

    p := filepath.Join(t.TempDir(), "report.pdf")
    if err := WritePDF(sampleResult(), p, ""); err != nil {
        t.Fatalf("write: %v", err)
    }
    info, err := os.Stat(p)
    if err != nil || info.Size() == 0 {
        t.Fatalf("pdf not written: %v", err)
    }
}

func TestTransliterate(t *testing.T) {
    if got := transliterate("Щука и Ёж: 5 шт — ok"); got != "Shchuka i Yozh: 5 sht ? ok" {
        t.Fatalf("got %q", got)
    }
}
