// Package validate checks classified paragraphs and whole documents against
// the criteria table. Validators return messages, never errors: a finding is
// data for the report.
package validate

import (
    "fmt"
    "math"
    "strconv"

    "github.com/hyperifyio/papercheck/internal/criteria"
    "github.com/hyperifyio/papercheck/internal/document"
)

const (
    sizeTolerance   = 0.2
    indentTolerance = 0.1
    marginTolerance = 0.2
)

// Formatting compares the paragraph's formatting with rec. A nil format
// (plain text input) yields no findings, and attributes the source did not
// carry (empty font name, zero size, unset alignment, nil indent) are
// skipped.
func Formatting(f *document.Format, rec criteria.Record) []string {
    if f == nil {
        return nil
    }
    var out []string

    if rec.Font != "" && f.FontName != "" && f.FontName != rec.Font {
        out = append(out, fmt.Sprintf("Неверный шрифт: %s (требуется %s)", f.FontName, rec.Font))
    }
    if rec.Size > 0 && f.FontSize > 0 && math.Abs(f.FontSize-rec.Size) > sizeTolerance {
        out = append(out, fmt.Sprintf("Неверный размер шрифта: %.1f (требуется %s)", f.FontSize, strconv.FormatFloat(rec.Size, 'f', -1, 64)))
    }
    if rec.Alignment != document.AlignUnset && f.Alignment != document.AlignUnset && f.Alignment != rec.Alignment {
        out = append(out, fmt.Sprintf("Неверное выравнивание: %s (требуется %s)", f.Alignment.Russian(), rec.Alignment.Russian()))
    }
    if rec.Bold != nil && f.Bold != *rec.Bold {
        if *rec.Bold {
            out = append(out, "Текст должен быть полужирным")
        } else {
            out = append(out, "Текст не должен быть полужирным")
        }
    }
    if rec.Italic != nil && f.Italic != *rec.Italic {
        if *rec.Italic {
            out = append(out, "Текст должен быть курсивом")
        } else {
            out = append(out, "Текст не должен быть курсивом")
        }
    }
    if rec.IndentCM != nil && *rec.IndentCM != 0 && f.FirstLineIndentCM != nil {
        if math.Abs(*f.FirstLineIndentCM-*rec.IndentCM) > indentTolerance {
            out = append(out, fmt.Sprintf("Неверный отступ абзаца: %.1f см (требуется %.1f см)", *f.FirstLineIndentCM, *rec.IndentCM))
        }
    }
    return out
}

// Content runs the named rules of rec against text. A failed rule reports
// its name; a rule that panics is reported and the remaining rules still run.
func Content(text string, rec criteria.Record, tbl *criteria.Table) []string {
    var out []string
    for _, r := range tbl.RulesFor(rec) {
        ok, err := runRule(r, text)
        switch {
        case err != nil:
            out = append(out, fmt.Sprintf("Ошибка проверки правила '%s': %v", r.Name, err))
        case !ok:
            out = append(out, r.Name)
        }
    }
    return out
}

func runRule(r criteria.Rule, text string) (ok bool, err error) {
    defer func() {
        if p := recover(); p != nil {
            err = fmt.Errorf("%v", p)
        }
    }()
    return r.Check(text), nil
}

// Document checks page setup and volume. Margins the source did not carry
// are skipped.
func Document(doc document.Document, req criteria.Requirements) []string {
    var out []string
    margin := func(actual *float64, want float64, name string) {
        if actual == nil || *actual == 0 || want == 0 {
            return
        }
        if math.Abs(*actual-want) > marginTolerance {
            out = append(out, fmt.Sprintf("Неверное %s поле: %.1f см (требуется %.1f см)", name, *actual, want))
        }
    }
    p := doc.Properties
    margin(p.TopMarginCM, req.TopMarginCM, "верхнее")
    margin(p.BottomMarginCM, req.BottomMarginCM, "нижнее")
    margin(p.LeftMarginCM, req.LeftMarginCM, "левое")
    margin(p.RightMarginCM, req.RightMarginCM, "правое")

    if doc.PageCount < req.MinPages {
        out = append(out, fmt.Sprintf("Недостаточный объем документа: %d стр. (минимум %d стр.)", doc.PageCount, req.MinPages))
    }
    return out
}
