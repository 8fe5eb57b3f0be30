package document

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path"
	"strconv"
	"strings"
)

// twipsPerCM converts OOXML twentieths of a point to centimetres.
const twipsPerCM = 1440 / 2.54

// defaultFontSize applies when neither runs nor styles carry a size.
const defaultFontSize = 12.0

// ErrNotDOCX is returned when the archive has no word/document.xml part.
var ErrNotDOCX = errors.New("not a docx package: word/document.xml missing")

// OOXML parts, decoded by local name so any namespace prefix works.

type xVal struct {
	Val string `xml:"val,attr"`
}

type xToggle struct {
	Val *string `xml:"val,attr"`
}

func (t *xToggle) value() *bool {
	if t == nil {
		return nil
	}
	on := true
	if t.Val != nil {
		switch strings.ToLower(*t.Val) {
		case "0", "false", "off", "none":
			on = false
		}
	}
	return &on
}

type xFonts struct {
	ASCII      string `xml:"ascii,attr"`
	HAnsi      string `xml:"hAnsi,attr"`
	CS         string `xml:"cs,attr"`
	EastAsia   string `xml:"eastAsia,attr"`
	ASCIITheme string `xml:"asciiTheme,attr"`
	HAnsiTheme string `xml:"hAnsiTheme,attr"`
}

type xRPr struct {
	RStyle *xVal    `xml:"rStyle"`
	Fonts  *xFonts  `xml:"rFonts"`
	B      *xToggle `xml:"b"`
	I      *xToggle `xml:"i"`
	Sz     *xVal    `xml:"sz"`
}

type xInd struct {
	Left      *string `xml:"left,attr"`
	Start     *string `xml:"start,attr"`
	FirstLine *string `xml:"firstLine,attr"`
	Hanging   *string `xml:"hanging,attr"`
}

type xPgSz struct {
	W string `xml:"w,attr"`
	H string `xml:"h,attr"`
}

type xPgMar struct {
	Top    string `xml:"top,attr"`
	Bottom string `xml:"bottom,attr"`
	Left   string `xml:"left,attr"`
	Right  string `xml:"right,attr"`
}

type xSectPr struct {
	PgSz  *xPgSz  `xml:"pgSz"`
	PgMar *xPgMar `xml:"pgMar"`
}

type xPPr struct {
	PStyle *xVal    `xml:"pStyle"`
	Jc     *xVal    `xml:"jc"`
	Ind    *xInd    `xml:"ind"`
	SectPr *xSectPr `xml:"sectPr"`
}

type xRunPart struct {
	XMLName xml.Name
	Text    string `xml:",chardata"`
}

// xInline is a paragraph child: a run, or a container of runs such as a
// hyperlink or tracked insertion.
type xInline struct {
	XMLName xml.Name
	RPr     *xRPr      `xml:"rPr"`
	Parts   []xRunPart `xml:",any"`
	Runs    []xInline  `xml:"r"`
}

type xPara struct {
	PPr   *xPPr     `xml:"pPr"`
	Items []xInline `xml:",any"`
}

type xBody struct {
	Paragraphs []xPara `xml:"p"`
	SectPr     *xSectPr `xml:"sectPr"`
}

type xDocument struct {
	Body xBody `xml:"body"`
}

type xStyle struct {
	Type    string `xml:"type,attr"`
	ID      string `xml:"styleId,attr"`
	Default string `xml:"default,attr"`
	Name    xVal   `xml:"name"`
	BasedOn *xVal  `xml:"basedOn"`
	PPr     *xPPr  `xml:"pPr"`
	RPr     *xRPr  `xml:"rPr"`
}

type xStyles struct {
	DocDefaults struct {
		RPrDefault struct {
			RPr *xRPr `xml:"rPr"`
		} `xml:"rPrDefault"`
		PPrDefault struct {
			PPr *xPPr `xml:"pPr"`
		} `xml:"pPrDefault"`
	} `xml:"docDefaults"`
	Styles []xStyle `xml:"style"`
}

type xLatin struct {
	Typeface string `xml:"typeface,attr"`
}

type xTheme struct {
	Major xLatin `xml:"themeElements>fontScheme>majorFont>latin"`
	Minor xLatin `xml:"themeElements>fontScheme>minorFont>latin"`
}

// props is resolved character formatting; nil fields are unspecified.
type props struct {
	font   string
	size   float64
	bold   *bool
	italic *bool
}

func (p props) over(q *xRPr, theme themeFonts) props {
	if q == nil {
		return p
	}
	if f := fontFrom(q.Fonts, theme); f != "" {
		p.font = f
	}
	if q.Sz != nil {
		if v, err := strconv.ParseFloat(q.Sz.Val, 64); err == nil && v > 0 {
			p.size = v / 2
		}
	}
	if b := q.B.value(); b != nil {
		p.bold = b
	}
	if i := q.I.value(); i != nil {
		p.italic = i
	}
	return p
}

type themeFonts struct {
	major string
	minor string
}

func fontFrom(f *xFonts, theme themeFonts) string {
	if f == nil {
		return ""
	}
	for _, v := range []string{f.ASCII, f.HAnsi, f.CS, f.EastAsia} {
		if v != "" {
			return v
		}
	}
	for _, v := range []string{f.ASCIITheme, f.HAnsiTheme} {
		switch {
		case strings.HasPrefix(v, "major"):
			return theme.major
		case strings.HasPrefix(v, "minor"):
			return theme.minor
		}
	}
	return ""
}

// ppr is resolved paragraph formatting.
type ppr struct {
	align Alignment
	left  *float64
	first *float64
}

func (p ppr) over(q *xPPr) ppr {
	if q == nil {
		return p
	}
	if q.Jc != nil {
		if a, err := ParseAlignment(q.Jc.Val); err == nil {
			p.align = a
		}
	}
	if q.Ind != nil {
		left := q.Ind.Left
		if left == nil {
			left = q.Ind.Start
		}
		if v, ok := twipsAttr(left); ok {
			p.left = floatPtr(v)
		}
		if v, ok := twipsAttr(q.Ind.FirstLine); ok {
			p.first = floatPtr(v)
		} else if v, ok := twipsAttr(q.Ind.Hanging); ok {
			p.first = floatPtr(-v)
		}
	}
	return p
}

func twipsAttr(s *string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*s), 64)
	if err != nil {
		return 0, false
	}
	return round2(v / twipsPerCM), true
}

type styleSheet struct {
	byID          map[string]xStyle
	defaultPara   string
	defaultsRPr   *xRPr
	defaultsPPr   *xPPr
	theme         themeFonts
}

// chain returns the style and its ancestors, root first.
func (s *styleSheet) chain(id string) []xStyle {
	var out []xStyle
	seen := map[string]bool{}
	for id != "" && !seen[id] {
		seen[id] = true
		st, ok := s.byID[id]
		if !ok {
			break
		}
		out = append([]xStyle{st}, out...)
		if st.BasedOn == nil {
			break
		}
		id = st.BasedOn.Val
	}
	return out
}

func (s *styleSheet) name(id string) string {
	if st, ok := s.byID[id]; ok && st.Name.Val != "" {
		return st.Name.Val
	}
	return id
}

func loadDOCXFile(p string) (Document, error) {
	f, err := os.Open(p)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return Document{}, err
	}
	return ReadDOCX(f, info.Size())
}

// ReadDOCX reads a Word document package. Paragraph formatting is resolved
// through direct run properties, character and paragraph styles, document
// defaults and theme fonts; Calibri theme fonts count as Times New Roman.
func ReadDOCX(r io.ReaderAt, size int64) (Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Document{}, fmt.Errorf("open docx: %w", err)
	}
	parts := map[string]*zip.File{}
	var themePart string
	for _, f := range zr.File {
		parts[f.Name] = f
		if themePart == "" && strings.HasPrefix(f.Name, "word/theme/") && path.Ext(f.Name) == ".xml" {
			themePart = f.Name
		}
	}
	docPart, ok := parts["word/document.xml"]
	if !ok {
		return Document{}, ErrNotDOCX
	}

	ss := &styleSheet{byID: map[string]xStyle{}, theme: themeFonts{major: DefaultFont, minor: DefaultFont}}
	if themePart != "" {
		var th xTheme
		if err := decodePart(parts[themePart], &th); err == nil {
			if th.Major.Typeface != "" {
				ss.theme.major = th.Major.Typeface
			}
			if th.Minor.Typeface != "" {
				ss.theme.minor = th.Minor.Typeface
			}
		}
	}
	if strings.Contains(strings.ToLower(ss.theme.major), "calibri") {
		ss.theme.major = DefaultFont
	}
	if strings.Contains(strings.ToLower(ss.theme.minor), "calibri") {
		ss.theme.minor = DefaultFont
	}
	if sp, ok := parts["word/styles.xml"]; ok {
		var sx xStyles
		if err := decodePart(sp, &sx); err != nil {
			return Document{}, fmt.Errorf("styles: %w", err)
		}
		ss.defaultsRPr = sx.DocDefaults.RPrDefault.RPr
		ss.defaultsPPr = sx.DocDefaults.PPrDefault.PPr
		for _, st := range sx.Styles {
			ss.byID[st.ID] = st
			if st.Type == "paragraph" && (st.Default == "1" || st.Default == "true") {
				ss.defaultPara = st.ID
			}
		}
	}

	var xd xDocument
	if err := decodePart(docPart, &xd); err != nil {
		return Document{}, fmt.Errorf("document: %w", err)
	}

	var b builder
	var firstSect *xSectPr
	for _, xp := range xd.Body.Paragraphs {
		if firstSect == nil && xp.PPr != nil && xp.PPr.SectPr != nil {
			firstSect = xp.PPr.SectPr
		}
		text, f := ss.paragraph(xp)
		b.add(text, f)
	}
	if firstSect == nil {
		firstSect = xd.Body.SectPr
	}
	return Document{
		Paragraphs:  b.paragraphs,
		Properties:  sectionProperties(firstSect),
		PageCount:   b.pages(),
		DefaultFont: ss.theme.minor,
	}, nil
}

func decodePart(f *zip.File, v any) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return xml.NewDecoder(rc).Decode(v)
}

func (ss *styleSheet) paragraph(xp xPara) (string, *Format) {
	styleID := ss.defaultPara
	if xp.PPr != nil && xp.PPr.PStyle != nil && xp.PPr.PStyle.Val != "" {
		styleID = xp.PPr.PStyle.Val
	}
	chain := ss.chain(styleID)

	base := props{}.over(ss.defaultsRPr, ss.theme)
	para := ppr{}.over(ss.defaultsPPr)
	for _, st := range chain {
		base = base.over(st.RPr, ss.theme)
		para = para.over(st.PPr)
	}
	para = para.over(xp.PPr)

	runs := flattenRuns(xp.Items, nil)
	var sb strings.Builder
	var fonts, sizes tally
	total, bold, italic := 0, 0, 0
	for _, r := range runs {
		sb.WriteString(r.text)
		n := len([]rune(strings.TrimSpace(r.text)))
		if n == 0 {
			continue
		}
		p := base
		if r.rpr != nil && r.rpr.RStyle != nil {
			for _, st := range ss.chain(r.rpr.RStyle.Val) {
				p = p.over(st.RPr, ss.theme)
			}
		}
		p = p.over(r.rpr, ss.theme)
		font := p.font
		if font == "" {
			font = ss.theme.minor
			if strings.Contains(ss.name(styleID), "eading") {
				font = ss.theme.major
			}
		}
		sz := p.size
		if sz == 0 {
			sz = defaultFontSize
		}
		fonts.add(font, n)
		sizes.add(strconv.FormatFloat(sz, 'f', -1, 64), n)
		total += n
		if p.bold != nil && *p.bold {
			bold += n
		}
		if p.italic != nil && *p.italic {
			italic += n
		}
	}

	f := &Format{
		FontName:          fonts.top(),
		FontSize:          defaultFontSize,
		Bold:              total > 0 && bold*2 > total,
		Italic:            total > 0 && italic*2 > total,
		Alignment:         para.align,
		LeftIndentCM:      para.left,
		FirstLineIndentCM: para.first,
		Style:             ss.name(styleID),
	}
	if f.FontName == "" {
		f.FontName = ss.theme.minor
	}
	if s := sizes.top(); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			f.FontSize = round1(v)
		}
	}
	if f.Alignment == AlignUnset {
		f.Alignment = AlignLeft
	}
	return sb.String(), f
}

type flatRun struct {
	text string
	rpr  *xRPr
}

func flattenRuns(items []xInline, out []flatRun) []flatRun {
	for _, it := range items {
		switch it.XMLName.Local {
		case "r":
			var sb strings.Builder
			for _, part := range it.Parts {
				switch part.XMLName.Local {
				case "t":
					sb.WriteString(part.Text)
				case "tab":
					sb.WriteString("\t")
				case "br", "cr":
					sb.WriteString("\n")
				}
			}
			out = append(out, flatRun{text: sb.String(), rpr: it.RPr})
		case "hyperlink", "ins", "smartTag", "fldSimple", "customXml":
			out = flattenRuns(it.Runs, out)
		}
	}
	return out
}

func sectionProperties(s *xSectPr) Properties {
	var p Properties
	if s == nil {
		return p
	}
	cm := func(v string) *float64 {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || f == 0 {
			return nil
		}
		return floatPtr(round2(math.Abs(f) / twipsPerCM))
	}
	if s.PgMar != nil {
		p.TopMarginCM = cm(s.PgMar.Top)
		p.BottomMarginCM = cm(s.PgMar.Bottom)
		p.LeftMarginCM = cm(s.PgMar.Left)
		p.RightMarginCM = cm(s.PgMar.Right)
	}
	if s.PgSz != nil {
		p.PageWidthCM = cm(s.PgSz.W)
		p.PageHeightCM = cm(s.PgSz.H)
	}
	return p
}

// tally counts weights per key and reports the heaviest, earliest key on ties.
type tally struct {
	keys   []string
	weight map[string]int
}

func (t *tally) add(k string, n int) {
	if t.weight == nil {
		t.weight = map[string]int{}
	}
	if _, ok := t.weight[k]; !ok {
		t.keys = append(t.keys, k)
	}
	t.weight[k] += n
}

func (t *tally) top() string {
	best, bw := "", -1
	for _, k := range t.keys {
		if t.weight[k] > bw {
			best, bw = k, t.weight[k]
		}
	}
	return best
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
