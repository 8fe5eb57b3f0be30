package document

import (
    "io"
    "strconv"
    "strings"

    "golang.org/x/net/html"
)

// runStyle is the character formatting in effect for a text node.
type runStyle struct {
    font   string
    size   float64
    bold   bool
    italic bool
}

// blockStyle is the paragraph formatting inherited by nested blocks.
type blockStyle struct {
    align     Alignment
    leftCM    *float64
    firstCM   *float64
}

type htmlRun struct {
    text  string
    style runStyle
}

type htmlReader struct {
    b     builder
    runs  []htmlRun
    block blockStyle
    tag   string
}

// ReadHTML reads an HTML document. Each block element (p, h1..h6, li, div,
// td, blockquote, pre) with text becomes a paragraph; formatting is taken
// from inline style attributes and from b/strong/i/em/h* elements.
func ReadHTML(r io.Reader) (Document, error) {
    root, err := html.Parse(r)
    if err != nil {
        return Document{}, err
    }
    content := findFirst(root, "body")
    if content == nil {
        content = root
    }
    hr := &htmlReader{}
    hr.walk(content, runStyle{}, blockStyle{})
    hr.flush()
    return Document{Paragraphs: hr.b.paragraphs, PageCount: hr.b.pages(), DefaultFont: DefaultFont}, nil
}

func findFirst(n *html.Node, tag string) *html.Node {
    if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
        return n
    }
    for c := n.FirstChild; c != nil; c = c.NextSibling {
        if res := findFirst(c, tag); res != nil {
            return res
        }
    }
    return nil
}

func isBlock(name string) bool {
    switch name {
    case "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "div", "td", "th", "blockquote", "pre", "section", "article":
        return true
    }
    return false
}

func (h *htmlReader) walk(n *html.Node, rs runStyle, bs blockStyle) {
    if n.Type == html.TextNode {
        data := strings.NewReplacer("\t", " ", "\r", " ", "\n", " ").Replace(n.Data)
        if data != "" {
            h.runs = append(h.runs, htmlRun{text: data, style: rs})
        }
        return
    }
    if n.Type != html.ElementNode && n.Type != html.DocumentNode {
        return
    }
    name := strings.ToLower(n.Data)
    switch name {
    case "script", "style", "noscript", "nav", "footer", "aside", "iframe", "head":
        return
    case "br":
        h.runs = append(h.runs, htmlRun{text: " ", style: rs})
        return
    case "b", "strong", "h1", "h2", "h3", "h4", "h5", "h6", "th":
        rs.bold = true
    case "i", "em", "cite":
        rs.italic = true
    }
    rs, bs = applyInlineStyle(n, rs, bs)

    block := n.Type == html.ElementNode && isBlock(name)
    prevBlock, prevTag := h.block, h.tag
    if block {
        h.flush()
        h.block, h.tag = bs, name
    }
    for c := n.FirstChild; c != nil; c = c.NextSibling {
        h.walk(c, rs, bs)
    }
    if block {
        h.flush()
        h.block, h.tag = prevBlock, prevTag
    }
}

// flush turns the collected runs into a paragraph.
func (h *htmlReader) flush() {
    if len(h.runs) == 0 {
        return
    }
    var sb strings.Builder
    var fonts, sizes tally
    total, bold, italic := 0, 0, 0
    for _, r := range h.runs {
        sb.WriteString(r.text)
        n := len([]rune(strings.TrimSpace(r.text)))
        if n == 0 {
            continue
        }
        total += n
        if r.style.font != "" {
            fonts.add(r.style.font, n)
        }
        if r.style.size > 0 {
            sizes.add(strconv.FormatFloat(r.style.size, 'f', -1, 64), n)
        }
        if r.style.bold {
            bold += n
        }
        if r.style.italic {
            italic += n
        }
    }
    h.runs = h.runs[:0]
    text := collapseSpaces(sb.String())
    f := &Format{
        FontName:          fonts.top(),
        Bold:              total > 0 && bold*2 > total,
        Italic:            total > 0 && italic*2 > total,
        Alignment:         h.block.align,
        LeftIndentCM:      h.block.leftCM,
        FirstLineIndentCM: h.block.firstCM,
        Style:             h.tag,
    }
    if f.Alignment == AlignUnset {
        f.Alignment = AlignLeft
    }
    if s := sizes.top(); s != "" {
        f.FontSize, _ = strconv.ParseFloat(s, 64)
    }
    h.b.add(text, f)
}

func applyInlineStyle(n *html.Node, rs runStyle, bs blockStyle) (runStyle, blockStyle) {
    for _, a := range n.Attr {
        key := strings.ToLower(a.Key)
        if key == "align" {
            if al, err := ParseAlignment(a.Val); err == nil {
                bs.align = al
            }
            continue
        }
        if key != "style" {
            continue
        }
        for _, decl := range strings.Split(a.Val, ";") {
            prop, val, ok := strings.Cut(decl, ":")
            if !ok {
                continue
            }
            prop = strings.ToLower(strings.TrimSpace(prop))
            val = strings.TrimSpace(val)
            switch prop {
            case "font-family":
                first, _, _ := strings.Cut(val, ",")
                rs.font = strings.Trim(strings.TrimSpace(first), `"'`)
            case "font-size":
                if cm, ok := parseLengthCM(val); ok {
                    rs.size = round1(cm / cmPerPoint)
                }
            case "font-weight":
                v := strings.ToLower(val)
                if v == "bold" || v == "bolder" {
                    rs.bold = true
                } else if w, err := strconv.Atoi(v); err == nil {
                    rs.bold = w >= 600
                } else if v == "normal" || v == "lighter" {
                    rs.bold = false
                }
            case "font-style":
                rs.italic = strings.EqualFold(val, "italic") || strings.EqualFold(val, "oblique")
            case "text-align":
                if al, err := ParseAlignment(val); err == nil {
                    bs.align = al
                }
            case "text-indent":
                if cm, ok := parseLengthCM(val); ok {
                    bs.firstCM = floatPtr(round2(cm))
                }
            case "margin-left", "padding-left":
                if cm, ok := parseLengthCM(val); ok {
                    bs.leftCM = floatPtr(round2(cm))
                }
            }
        }
    }
    return rs, bs
}

const cmPerPoint = 2.54 / 72

// parseLengthCM converts a CSS length to centimetres.
func parseLengthCM(v string) (float64, bool) {
    v = strings.ToLower(strings.TrimSpace(v))
    units := []struct {
        suffix string
        factor float64
    }{
        {"cm", 1}, {"mm", 0.1}, {"pt", cmPerPoint}, {"px", 2.54 / 96}, {"in", 2.54},
    }
    for _, u := range units {
        if strings.HasSuffix(v, u.suffix) {
            f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(v, u.suffix)), 64)
            if err != nil {
                return 0, false
            }
            return f * u.factor, true
        }
    }
    if v == "0" {
        return 0, true
    }
    return 0, false
}

func collapseSpaces(s string) string {
    return strings.Join(strings.Fields(s), " ")
}
