// Package analyze runs the per-document pipeline: classify every paragraph
// in order, validate it against the criteria for its role, and summarise.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/papercheck/internal/classify"
	"github.com/hyperifyio/papercheck/internal/criteria"
	"github.com/hyperifyio/papercheck/internal/document"
	"github.com/hyperifyio/papercheck/internal/lexicon"
	"github.com/hyperifyio/papercheck/internal/role"
	"github.com/hyperifyio/papercheck/internal/validate"
)

// PreviewRunes is the length of the paragraph preview kept in results.
const PreviewRunes = 100

// DefaultConcurrency bounds AnalyzeFiles when Analyzer.Concurrency is unset.
const DefaultConcurrency = 4

// ParagraphResult is the outcome for one paragraph.
type ParagraphResult struct {
	Ordinal          int             `json:"ordinal"`
	TextPreview      string          `json:"text_preview"`
	Role             role.Role       `json:"role"`
	Source           classify.Source `json:"source"`
	English          bool            `json:"english"`
	Demoted          bool            `json:"demoted,omitempty"`
	FormattingErrors []string        `json:"formatting_errors"`
	ContentErrors    []string        `json:"content_errors"`
	TotalErrors      int             `json:"total_errors"`
}

// Summary aggregates the findings of one document. TotalErrors counts
// paragraph findings only; document findings are counted separately.
type Summary struct {
	TotalParagraphs  int               `json:"total_paragraphs"`
	TotalErrors      int               `json:"total_errors"`
	FormattingErrors int               `json:"formatting_errors"`
	ContentErrors    int               `json:"content_errors"`
	DocumentErrors   int               `json:"document_errors"`
	RolesFound       map[role.Role]int `json:"roles_found"`
}

// Result is the analysis of one document.
type Result struct {
	Path           string              `json:"path"`
	AnalyzedAt     time.Time           `json:"analyzed_at"`
	Elapsed        time.Duration       `json:"elapsed_ns"`
	PageCount      int                 `json:"page_count"`
	Properties     document.Properties `json:"properties"`
	DocumentErrors []string            `json:"document_errors"`
	Paragraphs     []ParagraphResult   `json:"paragraphs"`
	Summary        Summary             `json:"summary"`
}

// Found lists the roles present in the document, in document order.
func (r Result) Found() []role.Role {
	var out []role.Role
	for _, ro := range role.All {
		if r.Summary.RolesFound[ro] > 0 {
			out = append(out, ro)
		}
	}
	return out
}

// Missing lists the required elements that were not found.
func (r Result) Missing() []role.Role {
	var out []role.Role
	for _, ro := range role.Required {
		if r.Summary.RolesFound[ro] == 0 {
			out = append(out, ro)
		}
	}
	return out
}

// Findings is the total number of paragraph and document findings.
func (r Result) Findings() int { return r.Summary.TotalErrors + r.Summary.DocumentErrors }

// Observer receives per-document measurements.
type Observer interface {
	ObserveDocument(paragraphs, findings int, elapsed time.Duration)
}

// Analyzer wires the classification engine to the validators.
type Analyzer struct {
	Engine   *classify.Engine
	Criteria *criteria.Table
	// Concurrency bounds how many documents AnalyzeFiles processes at once.
	Concurrency int
	Observer    Observer
	Now         func() time.Time
}

// New returns an Analyzer using the given engine and criteria. A nil table
// selects the built-in criteria.
func New(engine *classify.Engine, tbl *criteria.Table) *Analyzer {
	if tbl == nil {
		tbl = criteria.Default()
	}
	return &Analyzer{Engine: engine, Criteria: tbl, Concurrency: DefaultConcurrency}
}

func (a *Analyzer) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// Analyze classifies and validates doc. Each call uses a fresh classification
// state, so concurrent calls on one Analyzer are independent. Cancellation is
// checked between paragraphs.
func (a *Analyzer) Analyze(ctx context.Context, doc document.Document) (Result, error) {
	start := a.now()
	st := a.Engine.NewState()
	docErrs := validate.Document(doc, a.Criteria.Requirements())
	res := Result{
		Path:           doc.Path,
		AnalyzedAt:     start,
		PageCount:      doc.PageCount,
		Properties:     doc.Properties,
		DocumentErrors: docErrs,
		Paragraphs:     make([]ParagraphResult, 0, len(doc.Paragraphs)),
		Summary: Summary{
			TotalParagraphs: len(doc.Paragraphs),
			DocumentErrors:  len(docErrs),
			RolesFound:      map[role.Role]int{},
		},
	}
	for _, p := range doc.Paragraphs {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		pr := a.paragraph(ctx, p, st)
		res.Paragraphs = append(res.Paragraphs, pr)
		res.Summary.RolesFound[pr.Role]++
		res.Summary.TotalErrors += pr.TotalErrors
		res.Summary.FormattingErrors += len(pr.FormattingErrors)
		res.Summary.ContentErrors += len(pr.ContentErrors)
	}
	res.Elapsed = a.now().Sub(start)
	if a.Observer != nil {
		a.Observer.ObserveDocument(len(doc.Paragraphs), res.Findings(), res.Elapsed)
	}
	log.Info().Str("path", doc.Path).Int("paragraphs", len(doc.Paragraphs)).Int("findings", res.Findings()).Dur("elapsed", res.Elapsed).Msg("document analyzed")
	return res, nil
}

func (a *Analyzer) paragraph(ctx context.Context, p document.Paragraph, st *classify.State) ParagraphResult {
	d := a.Engine.Classify(ctx, p, st)
	pr := ParagraphResult{
		Ordinal:     p.Ordinal,
		TextPreview: lexicon.Preview(p.Text, PreviewRunes),
		Role:        d.Role,
		Source:      d.Source,
		English:     d.English,
		Demoted:     d.Demoted,
	}
	if rec, ok := a.Criteria.Get(d.Role); ok {
		pr.FormattingErrors = validate.Formatting(p.Format, rec)
		pr.ContentErrors = validate.Content(p.Text, rec, a.Criteria)
	}
	pr.TotalErrors = len(pr.FormattingErrors) + len(pr.ContentErrors)
	return pr
}

// AnalyzeFile loads and analyzes one file.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (Result, error) {
	doc, err := document.Load(ctx, path)
	if err != nil {
		return Result{}, err
	}
	return a.Analyze(ctx, doc)
}

// FileError reports a document that could not be analyzed.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }
func (e *FileError) Unwrap() error { return e.Err }

// AnalyzeFiles analyzes paths concurrently, bounded by Concurrency. Results
// keep the input order and omit documents that failed; those failures are
// returned joined as *FileError values. Cancellation aborts the whole run.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, paths []string) ([]Result, error) {
	limit := a.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	slots := make([]*Result, len(paths))
	failures := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			res, err := a.AnalyzeFile(gctx, p)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Warn().Err(err).Str("path", p).Msg("document skipped")
				failures[i] = &FileError{Path: p, Err: err}
				return nil
			}
			slots[i] = &res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(paths))
	for _, r := range slots {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, errors.Join(failures...)
}
