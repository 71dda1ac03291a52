package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coolbeans/citator/pkg/cite"
	"github.com/coolbeans/citator/pkg/extract"
)

func newTestPipeline(opts ...Option) *Pipeline {
	base := []Option{
		WithEngine(extract.New(extract.WithReporterLookup(nil))),
	}
	return New(append(base, opts...)...)
}

func TestRunEndToEnd(t *testing.T) {
	original := "<p>Smith v. Jones, 500 F.2d  123 (9th Cir. 2020).</p> <p>Id. at 125.</p>"

	result, err := newTestPipeline().Run(original)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Citations) != 2 {
		t.Fatalf("got %d citations, want 2", len(result.Citations))
	}

	cc, ok := result.Citations[0].(*cite.CaseCitation)
	if !ok {
		t.Fatalf("first citation = %T, want *cite.CaseCitation", result.Citations[0])
	}
	if cc.CaseName != "Smith v. Jones" {
		t.Errorf("CaseName = %q, want %q", cc.CaseName, "Smith v. Jones")
	}
	if cc.Volume != "500" || cc.Reporter != "F.2d" || cc.Page != "123" {
		t.Errorf("core = %s %s %s, want 500 F.2d 123", cc.Volume, cc.Reporter, cc.Page)
	}

	// Spans survive the markup and whitespace cleaning: the original slice
	// is the citation as it was spelled in the source.
	got := original[cc.Span.OriginalStart:cc.Span.OriginalEnd]
	if got != "500 F.2d  123" {
		t.Errorf("original slice = %q, want the source spelling", got)
	}
	if got != cc.MatchedText {
		t.Errorf("MatchedText = %q, want %q", cc.MatchedText, got)
	}

	if len(result.Resolutions) != 2 {
		t.Fatalf("got %d resolutions, want 2", len(result.Resolutions))
	}
	id := result.Resolutions[1]
	if !id.Resolved || id.AntecedentIndex != 0 {
		t.Errorf("id resolution = %+v, want resolved to index 0", id)
	}
	if id.Pincite != "125" {
		t.Errorf("Pincite = %q, want %q", id.Pincite, "125")
	}
}

func TestRunUnknownCleaner(t *testing.T) {
	_, err := newTestPipeline(WithCleaners("html", "nonsense")).Run("text")
	if err == nil || !strings.Contains(err.Error(), "nonsense") {
		t.Fatalf("err = %v, want unknown cleaning step", err)
	}
}

func TestRunNoCitations(t *testing.T) {
	result, err := newTestPipeline().Run("nothing citable here")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Citations) != 0 {
		t.Errorf("got %d citations, want none", len(result.Citations))
	}
}

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	docs := map[string]string{
		"a.txt": "Smith v. Jones, 500 F.2d 123 (2020).",
		"b.txt": "See 410 U.S. 113 (1973). Id. at 120.",
		"c.txt": "no citations",
	}
	var paths []string
	for name, text := range docs {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}

	results, err := newTestPipeline().RunFiles(context.Background(), paths, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(paths) {
		t.Fatalf("got %d results, want %d", len(results), len(paths))
	}
	if got := len(results[filepath.Join(dir, "b.txt")].Citations); got != 2 {
		t.Errorf("b.txt citations = %d, want 2", got)
	}
	if got := len(results[filepath.Join(dir, "c.txt")].Citations); got != 0 {
		t.Errorf("c.txt citations = %d, want 0", got)
	}
}

func TestRunFilesMissingFile(t *testing.T) {
	_, err := newTestPipeline().RunFiles(context.Background(), []string{"/does/not/exist.txt"}, 1)
	if err == nil {
		t.Fatal("err = nil, want read failure")
	}
}

func TestRunFilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("500 F.2d 123"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := newTestPipeline().RunFiles(ctx, []string{path}, 1); err == nil {
		t.Fatal("err = nil, want context cancellation")
	}
}
