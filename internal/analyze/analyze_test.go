package analyze

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hyperifyio/papercheck/internal/classify"
	"github.com/hyperifyio/papercheck/internal/criteria"
	"github.com/hyperifyio/papercheck/internal/document"
	"github.com/hyperifyio/papercheck/internal/role"
)

// scriptRemote answers from a fixed table and fails for anything else, so
// unknown paragraphs fall back to the local rules.
type scriptRemote map[string]role.Role

func (s scriptRemote) Classify(_ context.Context, text string, _ bool, permitted []role.Role, _ *classify.State) (role.Role, error) {
	if r, ok := s[text]; ok {
		return r, nil
	}
	return "", classify.ErrNoMatch
}

type countingObserver struct {
	mu    sync.Mutex
	docs  int
	paras int
}

func (c *countingObserver) ObserveDocument(paragraphs, _ int, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs++
	c.paras += paragraphs
}

var script = scriptRemote{
	"Иванов И.И.":     role.AuthorRU,
	"Методы анализа":  role.TitleRU,
	"Короткий текст.": role.BodyText,
}

func tnr(size float64, align document.Alignment, bold bool) *document.Format {
	return &document.Format{FontName: document.DefaultFont, FontSize: size, Alignment: align, Bold: bold}
}

func sampleDoc() document.Document {
	return document.Document{
		Path:      "sample.docx",
		PageCount: 1,
		Paragraphs: []document.Paragraph{
			{Ordinal: 1, Text: "УДК 004.8", Format: tnr(10.5, document.AlignLeft, false)},
			{Ordinal: 2, Text: "Иванов И.И.", Format: tnr(14, document.AlignLeft, false)},
			{Ordinal: 3, Text: "Методы анализа", Format: tnr(12, document.AlignLeft, true)},
			{Ordinal: 4, Text: "Короткий текст."},
		},
	}
}

func newAnalyzer() *Analyzer {
	return New(classify.New(classify.DefaultConfig(), script, nil), criteria.Default())
}

func TestAnalyze_ClassifiesValidatesAndSummarises(t *testing.T) {
	a := newAnalyzer()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	a.Now = func() time.Time { return fixed }
	obs := &countingObserver{}
	a.Observer = obs

	res, err := a.Analyze(context.Background(), sampleDoc())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	wantRoles := []role.Role{role.UDC, role.AuthorRU, role.TitleRU, role.BodyText}
	for i, p := range res.Paragraphs {
		if p.Role != wantRoles[i] || p.Ordinal != i+1 {
			t.Fatalf("paragraph %d: %+v", i+1, p)
		}
	}
	if res.Paragraphs[0].Source != classify.SourceUDC || res.Paragraphs[1].Source != classify.SourceRemote {
		t.Fatalf("sources: %s %s", res.Paragraphs[0].Source, res.Paragraphs[1].Source)
	}
	if got := res.Paragraphs[1].FormattingErrors; len(got) != 1 || got[0] != "Неверный размер шрифта: 14.0 (требуется 12)" {
		t.Fatalf("author formatting: %q", got)
	}
	if got := res.Paragraphs[3].ContentErrors; len(got) != 1 || got[0] != "не должен быть слишком коротким" {
		t.Fatalf("body content: %q", got)
	}
	if len(res.Paragraphs[3].FormattingErrors) != 0 {
		t.Fatalf("plain paragraph has no formatting to check")
	}

	s := res.Summary
	if s.TotalParagraphs != 4 || s.FormattingErrors != 1 || s.ContentErrors != 1 || s.TotalErrors != 2 {
		t.Fatalf("summary %+v", s)
	}
	if s.DocumentErrors != 1 || len(res.DocumentErrors) != 1 || res.Findings() != 3 {
		t.Fatalf("document findings %q", res.DocumentErrors)
	}
	if s.RolesFound[role.TitleRU] != 1 || len(res.Found()) != 4 {
		t.Fatalf("found %v", res.Found())
	}
	if missing := res.Missing(); len(missing) != len(role.Required)-3 {
		t.Fatalf("missing %v", missing)
	}
	if !res.AnalyzedAt.Equal(fixed) || res.Path != "sample.docx" {
		t.Fatalf("metadata %v %s", res.AnalyzedAt, res.Path)
	}
	if obs.docs != 1 || obs.paras != 4 {
		t.Fatalf("observer %+v", obs)
	}
}

func TestAnalyze_FreshStatePerDocument(t *testing.T) {
	a := newAnalyzer()
	for i := 0; i < 2; i++ {
		res, err := a.Analyze(context.Background(), sampleDoc())
		if err != nil {
			t.Fatal(err)
		}
		if p := res.Paragraphs[1]; p.Role != role.AuthorRU || p.Demoted {
			t.Fatalf("run %d: author demoted by a previous document: %+v", i, p)
		}
	}
}

func TestAnalyze_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newAnalyzer().Analyze(ctx, sampleDoc()); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestAnalyzeFiles_KeepsOrderAndReportsFailures(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}
	first := write("a.txt", "УДК 004.8\nИванов И.И.\n")
	bad := write("b.pdf", "%PDF")
	second := write("c.txt", "Методы анализа\n")

	a := newAnalyzer()
	a.Concurrency = 2
	results, err := a.AnalyzeFiles(context.Background(), []string{first, bad, second})
	if len(results) != 2 || results[0].Path != first || results[1].Path != second {
		t.Fatalf("results %+v", results)
	}
	var fe *FileError
	if !errors.As(err, &fe) || fe.Path != bad || !errors.Is(err, document.ErrUnsupportedFormat) {
		t.Fatalf("want FileError for %s, got %v", bad, err)
	}
}

func TestAnalyzeFiles_Canceled(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(p, []byte("УДК 004.8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newAnalyzer().AnalyzeFiles(ctx, []string{p, p}); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
