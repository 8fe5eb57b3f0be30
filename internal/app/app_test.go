package app

import (
    "context"
    "encoding/json"
    "errors"
    "net/http"
    "net/http/httptest"
    "os"
    "path/filepath"
    "strings"
    "sync"
    "testing"

    "github.com/hyperifyio/papercheck/internal/criteria"
)

const sampleArticle = "УДК 004.8\n\nПроцесс сушки протекает в три периода, каждый из которых описывается отдельным уравнением.\n"

func writeFile(t *testing.T, dir, name, content string) string {
    t.Helper()
    p := filepath.Join(dir, name)
    if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
        t.Fatalf("write %s: %v", name, err)
    }
    return p
}

func readReport(t *testing.T, path string) map[string]any {
    t.Helper()
    b, err := os.ReadFile(path)
    if err != nil {
        t.Fatalf("read report: %v", err)
    }
    var out map[string]any
    if err := json.Unmarshal(b, &out); err != nil {
        t.Fatalf("decode report: %v", err)
    }
    return out
}

func paragraphSources(t *testing.T, rep map[string]any) []string {
    t.Helper()
    paras, ok := rep["paragraphs"].([]any)
    if !ok {
        t.Fatalf("paragraphs missing: %v", rep)
    }
    var out []string
    for _, p := range paras {
        out = append(out, p.(map[string]any)["source"].(string))
    }
    return out
}

func TestRun_OfflineWritesReportsAndMetrics(t *testing.T) {
    tmp := t.TempDir()
    doc := writeFile(t, tmp, "статья.txt", sampleArticle)
    out := filepath.Join(tmp, "out")
    prom := filepath.Join(tmp, "papercheck.prom")

    a, err := New(context.Background(), Config{
        Inputs:     []string{doc},
        OutputDir:  out,
        Formats:    []string{"md", "json"},
        Offline:    true,
        MetricsOut: prom,
    })
    if err != nil {
        t.Fatalf("new app: %v", err)
    }
    defer a.Close()
    if err := a.Run(context.Background()); err != nil {
        t.Fatalf("run: %v", err)
    }

    base := reportBase(out, doc)
    if !strings.Contains(filepath.Base(base), "статья-") {
        t.Fatalf("report name %q should keep the Cyrillic stem", base)
    }
    md, err := os.ReadFile(base + ".md")
    if err != nil {
        t.Fatalf("markdown report: %v", err)
    }
    if !strings.Contains(string(md), "# Отчёт о проверке документа") {
        t.Fatalf("unexpected markdown:\n%s", md)
    }
    if got := paragraphSources(t, readReport(t, base+".json")); len(got) != 2 || got[0] != "udc" || got[1] != "fallback" {
        t.Fatalf("sources %v", got)
    }
    if _, err := os.Stat(base + ".pdf"); !errors.Is(err, os.ErrNotExist) {
        t.Fatalf("pdf was not requested: %v", err)
    }
    m, err := os.ReadFile(prom)
    if err != nil {
        t.Fatalf("metrics textfile: %v", err)
    }
    if !strings.Contains(string(m), "papercheck_documents_total 1") {
        t.Fatalf("metrics:\n%s", m)
    }
}

func TestRun_NoDocuments(t *testing.T) {
    tmp := t.TempDir()
    a, err := New(context.Background(), Config{
        Inputs:    []string{filepath.Join(tmp, "scan.pdf"), filepath.Join(tmp, "absent.txt")},
        OutputDir: filepath.Join(tmp, "out"),
        Offline:   true,
    })
    if err != nil {
        t.Fatalf("new app: %v", err)
    }
    if err := a.Run(context.Background()); !errors.Is(err, ErrNoDocuments) {
        t.Fatalf("want ErrNoDocuments, got %v", err)
    }
}

func TestRun_SkipsUnloadableDocuments(t *testing.T) {
    tmp := t.TempDir()
    good := writeFile(t, tmp, "good.txt", sampleArticle)
    a, err := New(context.Background(), Config{
        Inputs:    []string{filepath.Join(tmp, "scan.pdf"), good},
        OutputDir: filepath.Join(tmp, "out"),
        Formats:   []string{"json"},
        Offline:   true,
    })
    if err != nil {
        t.Fatalf("new app: %v", err)
    }
    if err := a.Run(context.Background()); err != nil {
        t.Fatalf("one loadable document should succeed: %v", err)
    }
    if _, err := os.Stat(reportBase(filepath.Join(tmp, "out"), good) + ".json"); err != nil {
        t.Fatalf("report for good document: %v", err)
    }
}

func TestRun_RemoteThroughOpenAICompatibleServer(t *testing.T) {
    var (
        mu     sync.Mutex
        titles []string
        calls  int
    )
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Content-Type", "application/json")
        mu.Lock()
        titles = append(titles, r.Header.Get("X-Title"))
        mu.Unlock()
        switch r.URL.Path {
        case "/v1/models":
            _, _ = w.Write([]byte(`{"object":"list","data":[{"id":"stub","object":"model"}]}`))
        case "/v1/chat/completions":
            mu.Lock()
            calls++
            mu.Unlock()
            _, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"основной_текст"}}]}`))
        default:
            http.NotFound(w, r)
        }
    }))
    defer srv.Close()

    tmp := t.TempDir()
    doc := writeFile(t, tmp, "article.txt", sampleArticle)
    out := filepath.Join(tmp, "out")
    cfg := Config{
        Inputs:     []string{doc},
        OutputDir:  out,
        Formats:    []string{"json"},
        LLMBaseURL: srv.URL + "/v1",
        LLMModel:   "stub",
        CacheDir:   filepath.Join(tmp, "cache"),
    }
    for run := 0; run < 2; run++ {
        a, err := New(context.Background(), cfg)
        if err != nil {
            t.Fatalf("new app: %v", err)
        }
        if err := a.Run(context.Background()); err != nil {
            t.Fatalf("run %d: %v", run, err)
        }
        if got := paragraphSources(t, readReport(t, reportBase(out, doc)+".json")); got[1] != "remote" {
            t.Fatalf("run %d sources %v", run, got)
        }
    }

    mu.Lock()
    defer mu.Unlock()
    if calls != 1 {
        t.Fatalf("second run should be served from the label cache, got %d completions", calls)
    }
    for _, title := range titles {
        if title != appTitle {
            t.Fatalf("X-Title %q", title)
        }
    }
}

func TestNew_BadCriteriaFile(t *testing.T) {
    tmp := t.TempDir()
    bad := writeFile(t, tmp, "criteria.yaml", "roles:\n  no-such-role:\n    size: 12\n")
    if _, err := New(context.Background(), Config{Inputs: []string{"x.txt"}, CriteriaFile: bad, Offline: true}); err == nil {
        t.Fatalf("expected criteria error")
    }
}

func TestExportCriteria(t *testing.T) {
    p := filepath.Join(t.TempDir(), "conf", "criteria.yaml")
    if err := ExportCriteria(Config{}, p); err != nil {
        t.Fatalf("export: %v", err)
    }
    tbl, err := criteria.Load(p)
    if err != nil {
        t.Fatalf("reload: %v", err)
    }
    if tbl.Requirements().MinPages != criteria.Default().Requirements().MinPages {
        t.Fatalf("exported table differs from defaults")
    }
}

func TestReportBase_StableAndDistinct(t *testing.T) {
    a := reportBase("out", "a/article.docx")
    b := reportBase("out", "b/article.docx")
    if a == b {
        t.Fatalf("same file name in different folders must not collide: %s", a)
    }
    if a != reportBase("out", "a/./article.docx") {
        t.Fatalf("base should depend on the cleaned path")
    }
    if got := slugify("  !!! "); got != "document" {
        t.Fatalf("slugify fallback %q", got)
    }
}
