// Package annotate inserts markup around citation spans in the original
// document text. Insertions are applied in reverse document order so earlier
// offsets stay valid, and annotated text is HTML-escaped unless escaping is
// turned off.
package annotate

import (
	"html"
	"sort"

	"github.com/coolbeans/citator/pkg/cite"
)

// MarkupFunc produces the opening and closing markup for one citation.
type MarkupFunc func(c cite.Citation) (open, close string)

// Annotator wraps citation spans in markup.
type Annotator struct {
	markup      MarkupFunc
	useFullSpan bool
	escape      bool
}

// Option configures an Annotator.
type Option func(*Annotator)

// WithFullSpans annotates a case citation's full span (name through trailing
// parentheticals) when one exists, falling back to the core span otherwise.
func WithFullSpans() Option {
	return func(a *Annotator) { a.useFullSpan = true }
}

// WithoutEscaping leaves annotated text verbatim instead of HTML-escaping it.
func WithoutEscaping() Option {
	return func(a *Annotator) { a.escape = false }
}

// WithMarkupFunc derives per-citation markup instead of fixed tags.
func WithMarkupFunc(fn MarkupFunc) Option {
	return func(a *Annotator) { a.markup = fn }
}

// New creates an Annotator wrapping every citation in the given tags.
func New(open, close string, opts ...Option) *Annotator {
	a := &Annotator{
		markup: func(cite.Citation) (string, string) { return open, close },
		escape: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// insertion is one resolved annotation over original-text offsets.
type insertion struct {
	start, end  int
	open, close string
}

// Annotate returns the original text with markup wrapped around each
// citation's span. Spans outside the text's bounds and spans overlapping an
// earlier citation's span are skipped; the input is never mutated.
func (a *Annotator) Annotate(original string, citations []cite.Citation) string {
	insertions := a.plan(original, citations)
	if len(insertions) == 0 {
		return original
	}

	// Insertions are non-overlapping and ordered; walking backward keeps
	// every pending offset valid.
	out := original
	for i := len(insertions) - 1; i >= 0; i-- {
		ins := insertions[i]
		inner := out[ins.start:ins.end]
		if a.escape {
			inner = html.EscapeString(inner)
		}
		out = out[:ins.start] + ins.open + inner + ins.close + out[ins.end:]
	}
	return out
}

// plan selects one span per citation, drops invalid or overlapping spans,
// and returns the surviving insertions in document order.
func (a *Annotator) plan(original string, citations []cite.Citation) []insertion {
	insertions := make([]insertion, 0, len(citations))
	for _, c := range citations {
		span := a.spanFor(c)
		if span.OriginalStart < 0 || span.OriginalEnd > len(original) || span.OriginalStart >= span.OriginalEnd {
			continue
		}
		open, close := a.markup(c)
		insertions = append(insertions, insertion{
			start: span.OriginalStart,
			end:   span.OriginalEnd,
			open:  open,
			close: close,
		})
	}

	sort.SliceStable(insertions, func(i, j int) bool {
		return insertions[i].start < insertions[j].start
	})

	kept := insertions[:0]
	lastEnd := -1
	for _, ins := range insertions {
		if ins.start < lastEnd {
			continue
		}
		kept = append(kept, ins)
		lastEnd = ins.end
	}
	return kept
}

func (a *Annotator) spanFor(c cite.Citation) cite.Span {
	if a.useFullSpan {
		if cc, ok := c.(*cite.CaseCitation); ok && cc.FullSpan != nil {
			return *cc.FullSpan
		}
	}
	return c.Common().Span
}
