// Package pipeline runs the full citation pass for whole documents: clean,
// tokenize, extract, resolve. Within one document the stages are strictly
// ordered; separate documents share no mutable state and run concurrently.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/coolbeans/citator/pkg/cite"
	"github.com/coolbeans/citator/pkg/extract"
	"github.com/coolbeans/citator/pkg/resolve"
	"github.com/coolbeans/citator/pkg/tokenize"
)

// Result is one document's full output.
type Result struct {
	CleanText   string               `json:"clean_text"`
	Citations   []cite.Citation      `json:"citations"`
	Resolutions []resolve.Resolution `json:"resolutions"`
}

// Pipeline wires the stages together. Safe for concurrent use; per-document
// state lives in each Run call.
type Pipeline struct {
	cleanSteps []string
	tokenizer  *tokenize.Tokenizer
	engine     *extract.Engine
	resolver   *resolve.Resolver
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCleaners overrides the cleaning steps applied before tokenizing.
func WithCleaners(steps ...string) Option {
	return func(p *Pipeline) { p.cleanSteps = steps }
}

// WithEngine overrides the extraction engine.
func WithEngine(engine *extract.Engine) Option {
	return func(p *Pipeline) { p.engine = engine }
}

// WithResolver overrides the resolver.
func WithResolver(resolver *resolve.Resolver) Option {
	return func(p *Pipeline) { p.resolver = resolver }
}

// New creates a Pipeline with every cleaning step enabled and default
// extraction and resolution configuration.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		cleanSteps: tokenize.CleanerNames(),
		tokenizer:  tokenize.New(),
		engine:     extract.New(),
		resolver:   resolve.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes one document: clean, tokenize, extract, resolve.
func (p *Pipeline) Run(text string) (*Result, error) {
	clean, positions, err := tokenize.Clean(text, p.cleanSteps...)
	if err != nil {
		return nil, fmt.Errorf("cleaning: %w", err)
	}

	tokens := p.tokenizer.Tokenize(clean)
	citations, err := p.engine.Extract(extract.Document{
		CleanText:    clean,
		OriginalText: text,
		Tokens:       tokens,
		Positions:    positions,
	})
	if err != nil {
		return nil, fmt.Errorf("extracting: %w", err)
	}

	return &Result{
		CleanText:   clean,
		Citations:   citations,
		Resolutions: p.resolver.Resolve(citations),
	}, nil
}

// RunFiles processes documents concurrently, one goroutine per file bounded
// by workers (defaulting to GOMAXPROCS when workers <= 0). The first error
// cancels the remaining work.
func (p *Pipeline) RunFiles(ctx context.Context, paths []string, workers int) (map[string]*Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	results := make(map[string]*Result, len(paths))

	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			result, err := p.Run(string(data))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			mu.Lock()
			results[path] = result
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
