package document

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const wNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles ` + wNS + `>
  <w:docDefaults>
    <w:rPrDefault><w:rPr><w:rFonts w:asciiTheme="minorHAnsi" w:hAnsiTheme="minorHAnsi"/><w:sz w:val="21"/></w:rPr></w:rPrDefault>
  </w:docDefaults>
  <w:style w:type="paragraph" w:default="1" w:styleId="Normal">
    <w:name w:val="Normal"/>
    <w:pPr><w:jc w:val="both"/><w:ind w:firstLine="340"/></w:pPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Title">
    <w:name w:val="Title"/>
    <w:basedOn w:val="Normal"/>
    <w:pPr><w:jc w:val="left"/></w:pPr>
    <w:rPr><w:b/><w:sz w:val="24"/></w:rPr>
  </w:style>
</w:styles>`

const themeXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="Office">
  <a:themeElements>
    <a:fontScheme name="Office">
      <a:majorFont><a:latin typeface="Calibri Light"/></a:majorFont>
      <a:minorFont><a:latin typeface="Calibri"/></a:minorFont>
    </a:fontScheme>
  </a:themeElements>
</a:theme>`

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document ` + wNS + `>
  <w:body>
    <w:p><w:pPr><w:pStyle w:val="Title"/></w:pPr>
      <w:r><w:t xml:space="preserve">Моделирование </w:t></w:r>
      <w:r><w:t>процесса сушки</w:t></w:r>
    </w:p>
    <w:p><w:r><w:t>   </w:t></w:r></w:p>
    <w:p>
      <w:r><w:rPr><w:rFonts w:ascii="Arial" w:hAnsi="Arial"/><w:i/></w:rPr><w:t>Курсивный текст аннотации</w:t></w:r>
      <w:hyperlink><w:r><w:rPr><w:i w:val="0"/></w:rPr><w:t>ссылка</w:t></w:r></w:hyperlink>
    </w:p>
    <w:p><w:pPr><w:jc w:val="center"/><w:ind w:left="567" w:hanging="284"/></w:pPr>
      <w:r><w:rPr><w:b w:val="0"/></w:rPr><w:t>Центр</w:t></w:r>
    </w:p>
    <w:sectPr>
      <w:pgSz w:w="11906" w:h="16838"/>
      <w:pgMar w:top="850" w:right="567" w:bottom="850" w:left="1417"/>
    </w:sectPr>
  </w:body>
</w:document>`

func buildDOCX(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestReadDOCX_FormattingResolution(t *testing.T) {
	data := buildDOCX(t, map[string]string{
		"word/document.xml":     documentXML,
		"word/styles.xml":       stylesXML,
		"word/theme/theme1.xml": themeXML,
	})
	doc, err := ReadDOCX(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(doc.Paragraphs) != 3 {
		t.Fatalf("want 3 non-empty paragraphs, got %d", len(doc.Paragraphs))
	}
	for i, p := range doc.Paragraphs {
		if p.Ordinal != i+1 {
			t.Fatalf("ordinals must be 1-based and dense: %+v", p)
		}
	}

	title := doc.Paragraphs[0]
	if title.Text != "Моделирование процесса сушки" {
		t.Fatalf("title text %q", title.Text)
	}
	tf := title.Format
	if tf.FontName != DefaultFont || tf.FontSize != 12 || !tf.Bold || tf.Italic || tf.Alignment != AlignLeft || tf.Style != "Title" {
		t.Fatalf("title format %+v", tf)
	}
	if tf.FirstLineIndentCM == nil || *tf.FirstLineIndentCM != 0.6 {
		t.Fatalf("first-line indent must be inherited from Normal: %v", tf.FirstLineIndentCM)
	}

	abs := doc.Paragraphs[1]
	if !strings.Contains(abs.Text, "ссылка") {
		t.Fatalf("hyperlink runs must be kept: %q", abs.Text)
	}
	af := abs.Format
	if af.FontName != "Arial" || af.FontSize != 10.5 || !af.Italic || af.Alignment != AlignJustify {
		t.Fatalf("abstract format %+v", af)
	}

	c := doc.Paragraphs[2].Format
	if c.Alignment != AlignCenter || c.Bold {
		t.Fatalf("center format %+v", c)
	}
	if c.LeftIndentCM == nil || *c.LeftIndentCM != 1 || c.FirstLineIndentCM == nil || *c.FirstLineIndentCM != -0.5 {
		t.Fatalf("indents left=%v first=%v", c.LeftIndentCM, c.FirstLineIndentCM)
	}

	p := doc.Properties
	if p.TopMarginCM == nil || *p.TopMarginCM != 1.5 || *p.LeftMarginCM != 2.5 || *p.RightMarginCM != 1 || *p.BottomMarginCM != 1.5 {
		t.Fatalf("margins %+v", p)
	}
	if p.PageWidthCM == nil || *p.PageWidthCM != 21 {
		t.Fatalf("page width %v", p.PageWidthCM)
	}
	if doc.PageCount != 1 || doc.DefaultFont != DefaultFont {
		t.Fatalf("page count %d default font %q", doc.PageCount, doc.DefaultFont)
	}
}

func TestReadDOCX_MissingDocumentPart(t *testing.T) {
	data := buildDOCX(t, map[string]string{"word/styles.xml": stylesXML})
	if _, err := ReadDOCX(bytes.NewReader(data), int64(len(data))); !errors.Is(err, ErrNotDOCX) {
		t.Fatalf("want ErrNotDOCX, got %v", err)
	}
}

func TestReadDOCX_NoStylesDefaults(t *testing.T) {
	data := buildDOCX(t, map[string]string{"word/document.xml": documentXML})
	doc, err := ReadDOCX(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	f := doc.Paragraphs[0].Format
	if f.FontName != DefaultFont || f.FontSize != 12 || f.Alignment != AlignLeft {
		t.Fatalf("defaults %+v", f)
	}
}

func TestReadHTML(t *testing.T) {
	in := `<html><head><title>x</title><style>p{}</style></head><body>
<p style="font-family: 'Times New Roman', serif; font-size: 10.5pt; text-align: justify; text-indent: 0.6cm"><i>Курсивная аннотация</i></p>
<h1>Заголовок статьи</h1>
<div align="center">Текст <b>с</b> выделением<br>и переносом</div>
<p>   </p>
<script>alert(1)</script>
</body></html>`
	doc, err := ReadHTML(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(doc.Paragraphs) != 3 {
		t.Fatalf("want 3 paragraphs, got %d: %+v", len(doc.Paragraphs), doc.Paragraphs)
	}
	p0 := doc.Paragraphs[0].Format
	if p0.FontName != "Times New Roman" || p0.FontSize != 10.5 || !p0.Italic || p0.Alignment != AlignJustify {
		t.Fatalf("p0 %+v", p0)
	}
	if p0.FirstLineIndentCM == nil || *p0.FirstLineIndentCM != 0.6 {
		t.Fatalf("indent %v", p0.FirstLineIndentCM)
	}
	if f := doc.Paragraphs[1].Format; !f.Bold || f.Style != "h1" {
		t.Fatalf("heading %+v", f)
	}
	p2 := doc.Paragraphs[2]
	if p2.Text != "Текст с выделением и переносом" || p2.Format.Alignment != AlignCenter || p2.Format.Bold {
		t.Fatalf("div %q %+v", p2.Text, p2.Format)
	}
}

func TestReadText(t *testing.T) {
	doc, err := ReadText(strings.NewReader("УДК 621.01\n\n  \nИванов А.А.\r\n"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(doc.Paragraphs) != 2 || doc.Paragraphs[1].Ordinal != 2 || doc.Paragraphs[1].Text != "Иванов А.А." {
		t.Fatalf("paragraphs %+v", doc.Paragraphs)
	}
	if doc.Paragraphs[0].Format != nil {
		t.Fatalf("plain text has no formatting")
	}
}

func TestNormalizeText_NFC(t *testing.T) {
	decomposed := "\u0435\u0308лка"
	if got := NormalizeText(" " + decomposed + " "); got != "\u0451лка" {
		t.Fatalf("got %q", got)
	}
}

func TestPageEstimate(t *testing.T) {
	text := strings.Repeat(strings.Repeat("а", 99)+"\n", 40)
	doc, err := ReadText(strings.NewReader(text))
	if err != nil {
		t.Fatal(err)
	}
	if doc.PageCount != 3 {
		t.Fatalf("3960 characters should estimate 3 pages, got %d", doc.PageCount)
	}
}

func TestLoad_DispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(txt, []byte("УДК 621.01\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := Load(context.Background(), txt)
	if err != nil || len(doc.Paragraphs) != 1 || doc.Path != txt {
		t.Fatalf("load txt: %v %+v", err, doc)
	}
	docx := filepath.Join(dir, "a.docx")
	if err := os.WriteFile(docx, buildDOCX(t, map[string]string{"word/document.xml": documentXML}), 0o644); err != nil {
		t.Fatal(err)
	}
	if doc, err := Load(context.Background(), docx); err != nil || len(doc.Paragraphs) != 3 {
		t.Fatalf("load docx: %v", err)
	}
	if _, err := Load(context.Background(), filepath.Join(dir, "a.pdf")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("want ErrUnsupportedFormat, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Load(ctx, txt); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
