package report

import (
    "bufio"
    "io"
    "os"
    "strings"
    "unicode"

    "github.com/jung-kurt/gofpdf"
    "github.com/rs/zerolog/log"

    "github.com/hyperifyio/papercheck/internal/analyze"
)

// FontCandidates are UTF-8 TrueType fonts tried when no font is given.
// The core PDF fonts have no Cyrillic glyphs.
var FontCandidates = []string{
    "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
    "/usr/share/fonts/dejavu/DejaVuSans.ttf",
    "/usr/share/fonts/TTF/DejaVuSans.ttf",
    "/Library/Fonts/Arial Unicode.ttf",
    `C:\Windows\Fonts\times.ttf`,
}

const utfFamily = "report"

// WritePDF renders the Markdown report of res to path.
func WritePDF(res analyze.Result, path, fontPath string) error {
    f, err := os.Create(path)
    if err != nil {
        return err
    }
    if err := RenderPDF(f, res, fontPath); err != nil {
        _ = f.Close()
        return err
    }
    return f.Close()
}

// RenderPDF renders a simple layout of the Markdown report: headings in bold,
// list items and paragraphs as wrapped text. Without a usable UTF-8 font the
// text is transliterated to Latin and set in Helvetica.
func RenderPDF(w io.Writer, res analyze.Result, fontPath string) error {
    pdf := gofpdf.New("P", "mm", "A4", "")
    family, bullet, conv := "Helvetica", "*", transliterate
    if fp := resolveFont(fontPath); fp != "" {
        pdf.AddUTF8Font(utfFamily, "", fp)
        pdf.AddUTF8Font(utfFamily, "B", fp)
        if pdf.Ok() {
            family, bullet, conv = utfFamily, "•", func(s string) string { return s }
        } else {
            log.Warn().Err(pdf.Error()).Str("font", fp).Msg("pdf font unusable, transliterating")
            pdf.ClearError()
        }
    }
    pdf.SetFont(family, "", 11)
    pdf.AddPage()

    sc := bufio.NewScanner(strings.NewReader(Markdown(res)))
    sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
    for sc.Scan() {
        s := strings.TrimSpace(sc.Text())
        if s == "" {
            pdf.Ln(3)
            continue
        }
        if strings.HasPrefix(s, "#") {
            i := 0
            for i < len(s) && s[i] == '#' { i++ }
            text := strings.TrimSpace(s[i:])
            size := 14.0
            if i >= 2 { size = 12.0 }
            if i >= 3 { size = 11.0 }
            pdf.SetFont(family, "B", size)
            pdf.MultiCell(0, 7, conv(text), "", "L", false)
            pdf.SetFont(family, "", 11)
            continue
        }
        s = strings.ReplaceAll(s, "`", "")
        if strings.HasPrefix(s, "- ") {
            s = bullet + " " + strings.TrimPrefix(s, "- ")
        }
        pdf.MultiCell(0, 5, conv(s), "", "L", false)
    }
    if err := sc.Err(); err != nil {
        return err
    }
    return pdf.Output(w)
}

func resolveFont(fontPath string) string {
    if fontPath != "" {
        if _, err := os.Stat(fontPath); err == nil {
            return fontPath
        }
        log.Warn().Str("font", fontPath).Msg("pdf font not found")
    }
    for _, c := range FontCandidates {
        if _, err := os.Stat(c); err == nil {
            return c
        }
    }
    return ""
}

var translit = map[rune]string{
    'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo", 'ж': "zh",
    'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n", 'о': "o",
    'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u", 'ф': "f", 'х': "kh", 'ц': "ts",
    'ч': "ch", 'ш': "sh", 'щ': "shch", 'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu",
    'я': "ya",
}

// transliterate maps Cyrillic to Latin; other non-ASCII runes become '?'.
func transliterate(s string) string {
    var b strings.Builder
    for _, r := range s {
        if r < 128 {
            b.WriteRune(r)
            continue
        }
        lower := unicode.ToLower(r)
        t, ok := translit[lower]
        if !ok {
            b.WriteByte('?')
            continue
        }
        if lower != r && t != "" {
            t = strings.ToUpper(t[:1]) + t[1:]
        }
        b.WriteString(t)
    }
    return b.String()
}
