// Package document loads article files into an ordered list of non-empty
// paragraphs with their formatting hints.
package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrUnsupportedFormat is returned by Load for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// DefaultFont is used when neither runs, styles nor the theme name a font.
const DefaultFont = "Times New Roman"

// CharsPerPage is the character count the page estimate assumes per page.
const CharsPerPage = 1250

// Format carries the formatting hints extracted for a paragraph. Nil
// pointers mean the source did not specify the value.
type Format struct {
	FontName          string
	FontSize          float64
	Bold              bool
	Italic            bool
	Alignment         Alignment
	LeftIndentCM      *float64
	FirstLineIndentCM *float64
	Style             string
}

// Paragraph is one non-empty paragraph in reading order.
type Paragraph struct {
	// Ordinal is 1-based among the non-empty paragraphs of the document.
	Ordinal int
	Text    string
	Format  *Format
}

// Properties describes page setup of the first section, in centimetres.
type Properties struct {
	TopMarginCM    *float64 `json:"top_margin_cm,omitempty"`
	BottomMarginCM *float64 `json:"bottom_margin_cm,omitempty"`
	LeftMarginCM   *float64 `json:"left_margin_cm,omitempty"`
	RightMarginCM  *float64 `json:"right_margin_cm,omitempty"`
	PageWidthCM    *float64 `json:"page_width_cm,omitempty"`
	PageHeightCM   *float64 `json:"page_height_cm,omitempty"`
}

// Document is the loaded article.
type Document struct {
	Path        string
	Paragraphs  []Paragraph
	Properties  Properties
	PageCount   int
	DefaultFont string
}

// Load reads the file at path, choosing a reader by extension.
func Load(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	var (
		doc Document
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".docx":
		doc, err = loadDOCXFile(path)
	case ".html", ".htm":
		f, oerr := os.Open(path)
		if oerr != nil {
			return Document{}, oerr
		}
		defer f.Close()
		doc, err = ReadHTML(f)
	case ".txt", ".text", ".md":
		f, oerr := os.Open(path)
		if oerr != nil {
			return Document{}, oerr
		}
		defer f.Close()
		doc, err = ReadText(f)
	default:
		return Document{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	doc.Path = path
	return doc, nil
}

// NormalizeText applies NFC normalisation and trims surrounding whitespace.
func NormalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// builder accumulates paragraphs, dropping empty ones and numbering the rest.
type builder struct {
	paragraphs []Paragraph
	chars      int
}

func (b *builder) add(text string, f *Format) {
	text = NormalizeText(text)
	b.chars += len([]rune(text))
	if text == "" {
		return
	}
	b.paragraphs = append(b.paragraphs, Paragraph{Ordinal: len(b.paragraphs) + 1, Text: text, Format: f})
}

// pages estimates the page count from the character total.
func (b *builder) pages() int {
	n := b.chars / CharsPerPage
	if n < 1 {
		n = 1
	}
	return n
}

func floatPtr(v float64) *float64 { return &v }
