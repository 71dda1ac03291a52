// Package extract reconstructs structured citation metadata from typed
// tokenizer matches: the volume/reporter/page core, the case name found by
// backward search, parenthetical court/date/disposition, parallel citations,
// and a confidence score. Positions are reported in both the cleaned and the
// original coordinate system through the position table.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/coolbeans/citator/pkg/cite"
	"github.com/coolbeans/citator/pkg/position"
	"github.com/coolbeans/citator/pkg/reporters"
	"github.com/coolbeans/citator/pkg/tokenize"
)

// Scan windows, in cleaned-text characters. Together they bound the
// per-token extraction cost.
const (
	nameSearchWindow  = 150
	fullSpanWindow    = 200
	parallelLookahead = 80
)

// ErrTokenShape reports a token whose text does not match the shape its type
// declares. It indicates a tokenizer/extractor mismatch, not bad input.
var ErrTokenShape = errors.New("token text does not match its declared type")

// Document is one document's worth of extraction input: the cleaned text the
// tokens were matched against, the ordered de-duplicated token list, and the
// position table built during cleaning. OriginalText is optional; when empty,
// matched text falls back to the cleaned slice.
type Document struct {
	CleanText    string
	OriginalText string
	Tokens       []tokenize.Token
	Positions    *position.Table
}

// LookupFunc resolves a reporter abbreviation to candidate editions. The
// second return reports whether a database was available at all; false means
// degraded mode and no confidence adjustment.
type LookupFunc func(abbreviation string) ([]reporters.Edition, bool)

// Engine extracts one citation per token. Safe for concurrent use across
// documents; all per-document state lives in the Document.
type Engine struct {
	corePattern      *regexp.Regexp
	shortCorePattern *regexp.Regexp
	pincitePattern   *regexp.Regexp
	idPattern        *regexp.Regexp
	supraPattern     *regexp.Regexp
	uscPattern       *regexp.Regexp
	cfrPattern       *regexp.Regexp

	adversarialPattern *regexp.Regexp
	proceduralPattern  *regexp.Regexp

	lookup LookupFunc
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithReporterLookup overrides the reporter-database lookup. Passing nil
// disables database validation entirely.
func WithReporterLookup(lookup LookupFunc) Option {
	return func(e *Engine) { e.lookup = lookup }
}

// WithClock overrides the clock used for future-year checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Reporter abbreviation shape, mirroring the tokenizer's.
const reporterPat = `[A-Z][A-Za-z0-9.']*(?:\s[A-Z0-9][A-Za-z0-9.']*)*?`

// New creates an extraction Engine with compiled patterns. By default the
// reporter database is consulted only if it is already cached; the engine
// never triggers or waits on a load.
func New(opts ...Option) *Engine {
	e := &Engine{
		// Volume (plain or hyphenated range), reporter, page or placeholder.
		corePattern: regexp.MustCompile(`^(\d{1,4}(?:-\d+)?)\s+(` + reporterPat + `)\s+(\d+|[_-]+)$`),

		// Short-form core: volume, reporter, "at", pincite.
		shortCorePattern: regexp.MustCompile(`^(\d{1,4})\s+(` + reporterPat + `)\s+at\s+(\d+)$`),

		// Pincite following the core: comma, number, optional range.
		pincitePattern: regexp.MustCompile(`^,\s*(\d+(?:[-–]\d+)?)\b`),

		idPattern:    regexp.MustCompile(`^(?:Id\.|id\.|Ibid\.|ibid\.)(?:,?\s+at\s+(\d+(?:[-–]\d+)?))?$`),
		supraPattern: regexp.MustCompile(`^([A-Z][A-Za-z0-9.'&-]*)\s?,\s*supra(?:,?\s+at\s+(\d+(?:[-–]\d+)?))?$`),
		uscPattern:   regexp.MustCompile(`^(\d+)\s+U\.?S\.?C\.?\s+§§?\s*(\d+[a-z]*(?:[-–]\d+[a-z]*)?)$`),
		cfrPattern:   regexp.MustCompile(`^(\d+)\s+C\.?F\.?R\.?\s+(?:Part\s+|§\s*)(\d+(?:\.\d+)?)$`),

		adversarialPattern: regexp.MustCompile(
			`([A-Z][A-Za-z0-9.,'&()-]*(?:\s+[A-Za-z0-9.,'&()/-]+)*?)\s+[Vv]s?\.\s+([A-Z][A-Za-z0-9.,'&()-]*(?:\s+[A-Za-z0-9.,'&()/-]+)*?)[,\s]*$`),
		proceduralPattern: regexp.MustCompile(
			`(?i)\b(In re|Ex parte|Matter of|Estate of|State ex rel\.|United States ex rel\.|Application of|Petition of)\s+([A-Za-z0-9.,'&\s-]+?)[,\s]*$`),

		lookup: cachedLookup,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// cachedLookup consults the reporter database only when it is already
// loaded; absence is degraded mode.
func cachedLookup(abbreviation string) ([]reporters.Edition, bool) {
	db, ok := reporters.Cached()
	if !ok {
		return nil, false
	}
	return db.Find(abbreviation), true
}

// Extract emits one fully populated citation per token, in token order.
// A token whose text contradicts its declared type is a fatal error.
func (e *Engine) Extract(doc Document) ([]cite.Citation, error) {
	links := e.linkParallels(doc.CleanText, doc.Tokens)
	linkedMember := make(map[int]bool)
	for _, group := range links {
		for _, j := range group {
			linkedMember[j] = true
		}
	}

	citations := make([]cite.Citation, 0, len(doc.Tokens))
	for i, token := range doc.Tokens {
		var (
			citation cite.Citation
			err      error
		)
		switch token.Type {
		case cite.TypeCase:
			citation, err = e.extractCase(doc, i, links[i], linkedMember[i])
		case cite.TypeShortCase:
			citation, err = e.extractShortCase(doc, token)
		case cite.TypeID:
			citation, err = e.extractID(doc, token)
		case cite.TypeSupra:
			citation, err = e.extractSupra(doc, token)
		case cite.TypeStatute:
			citation, err = e.extractStatute(doc, token)
		default:
			err = fmt.Errorf("unsupported token type %q: %w", token.Type, ErrTokenShape)
		}
		if err != nil {
			return nil, fmt.Errorf("token %d (%q): %w", i, token.Text, err)
		}
		citations = append(citations, citation)
	}
	return citations, nil
}

// newBase fills the shared citation fields for a cleaned-text span. Both span
// boundaries are translated independently through the position table.
func (e *Engine) newBase(doc Document, token tokenize.Token) cite.Base {
	span := e.translateSpan(doc, token.Start, token.End)
	return cite.Base{
		Text:        token.Text,
		MatchedText: e.sliceOriginal(doc, span, token),
		Span:        span,
		Confidence:  1.0,
	}
}

func (e *Engine) translateSpan(doc Document, cleanStart, cleanEnd int) cite.Span {
	return cite.Span{
		CleanStart:    cleanStart,
		CleanEnd:      cleanEnd,
		OriginalStart: doc.Positions.ToOriginal(cleanStart),
		OriginalEnd:   doc.Positions.ToOriginal(cleanEnd),
	}
}

func (e *Engine) sliceOriginal(doc Document, span cite.Span, token tokenize.Token) string {
	if doc.OriginalText == "" {
		return token.Text
	}
	if span.OriginalStart < 0 || span.OriginalEnd > len(doc.OriginalText) || span.OriginalStart > span.OriginalEnd {
		return token.Text
	}
	return doc.OriginalText[span.OriginalStart:span.OriginalEnd]
}

// extractCase builds a full case citation: structural core, pincite,
// backward case-name search, parentheticals, full span, parallels, score.
// A linked member of another citation's parallel group skips the name
// search; the name belongs to the group's primary.
func (e *Engine) extractCase(doc Document, index int, linked []int, isLinkedMember bool) (*cite.CaseCitation, error) {
	token := doc.Tokens[index]

	volume, reporter, page, blank, err := e.parseCore(token.Text)
	if err != nil {
		return nil, err
	}

	citation := &cite.CaseCitation{
		Base:         e.newBase(doc, token),
		Volume:       volume,
		Reporter:     reporter,
		Page:         page,
		HasBlankPage: blank,
	}

	pincite, pinciteEnd := e.findPincite(doc, index)
	citation.Pincite = pincite

	var name caseName
	if !isLinkedMember {
		name = e.findCaseName(doc.CleanText, token.Start)
	}
	if name.found {
		citation.CaseName = name.name
		citation.Plaintiff = name.plaintiff
		citation.Defendant = name.defendant
		citation.ProceduralPrefix = name.procedural
		citation.PlaintiffNorm = NormalizeParty(name.plaintiff)
		citation.DefendantNorm = NormalizeParty(name.defendant)
	}

	scanStart := token.End
	if pinciteEnd > scanStart {
		scanStart = pinciteEnd
	}
	stop, parens := e.scanTrailing(doc.CleanText, token.End, scanStart)
	for _, paren := range parens {
		e.applyParenthetical(citation, paren)
	}

	if name.found {
		fullSpan := e.translateSpan(doc, name.start, stop)
		citation.FullSpan = &fullSpan
	}

	for _, linkedIndex := range linked {
		linkedToken := doc.Tokens[linkedIndex]
		lv, lr, lp, lblank, err := e.parseCore(linkedToken.Text)
		if err != nil {
			return nil, err
		}
		if lblank {
			lp = ""
		}
		citation.ParallelCitations = append(citation.ParallelCitations, cite.ParallelCitation{
			Volume:   lv,
			Reporter: lr,
			Page:     lp,
		})
	}

	e.scoreCase(citation)
	return citation, nil
}

// parseCore splits case-token text into volume, reporter and page. A run of
// 3+ underscore or dash characters in the page position is a blank-page
// placeholder; shorter runs are rejected as stray punctuation.
func (e *Engine) parseCore(text string) (volume, reporter, page string, blank bool, err error) {
	m := e.corePattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", "", false, fmt.Errorf("case core %q: %w", text, ErrTokenShape)
	}
	volume, reporter, page = m[1], m[2], m[3]

	if page[0] == '_' || page[0] == '-' {
		if len(page) < 3 {
			return "", "", "", false, fmt.Errorf("placeholder page %q shorter than 3 characters: %w", page, ErrTokenShape)
		}
		return volume, reporter, "", true, nil
	}
	return volume, reporter, page, false, nil
}

// findPincite looks past the token for ", N". The number is a pincite only
// when it is not itself the start of the next case token (which would make
// it a parallel citation's volume). Returns the pincite and the cleaned-text
// offset just past it.
func (e *Engine) findPincite(doc Document, index int) (string, int) {
	token := doc.Tokens[index]
	rest := doc.CleanText[token.End:]

	m := e.pincitePattern.FindStringSubmatchIndex(rest)
	if m == nil {
		return "", token.End
	}

	numberStart := token.End + m[2]
	if index+1 < len(doc.Tokens) && doc.Tokens[index+1].Start == numberStart {
		return "", token.End
	}
	return rest[m[2]:m[3]], token.End + m[3]
}

func (e *Engine) extractShortCase(doc Document, token tokenize.Token) (*cite.ShortCaseCitation, error) {
	m := e.shortCorePattern.FindStringSubmatch(token.Text)
	if m == nil {
		return nil, fmt.Errorf("short-form core %q: %w", token.Text, ErrTokenShape)
	}
	return &cite.ShortCaseCitation{
		Base:     e.newBase(doc, token),
		Volume:   m[1],
		Reporter: m[2],
		Pincite:  m[3],
	}, nil
}

func (e *Engine) extractID(doc Document, token tokenize.Token) (*cite.IDCitation, error) {
	m := e.idPattern.FindStringSubmatch(token.Text)
	if m == nil {
		return nil, fmt.Errorf("id token %q: %w", token.Text, ErrTokenShape)
	}
	return &cite.IDCitation{
		Base:    e.newBase(doc, token),
		Pincite: m[1],
	}, nil
}

func (e *Engine) extractSupra(doc Document, token tokenize.Token) (*cite.SupraCitation, error) {
	m := e.supraPattern.FindStringSubmatch(token.Text)
	if m == nil {
		return nil, fmt.Errorf("supra token %q: %w", token.Text, ErrTokenShape)
	}
	return &cite.SupraCitation{
		Base:      e.newBase(doc, token),
		PartyName: m[1],
		Pincite:   m[2],
	}, nil
}

func (e *Engine) extractStatute(doc Document, token tokenize.Token) (*cite.StatuteCitation, error) {
	if m := e.uscPattern.FindStringSubmatch(token.Text); m != nil {
		return &cite.StatuteCitation{
			Base:    e.newBase(doc, token),
			Code:    "USC",
			Title:   m[1],
			Section: m[2],
		}, nil
	}
	if m := e.cfrPattern.FindStringSubmatch(token.Text); m != nil {
		return &cite.StatuteCitation{
			Base:    e.newBase(doc, token),
			Code:    "CFR",
			Title:   m[1],
			Section: m[2],
		}, nil
	}
	return nil, fmt.Errorf("statute token %q: %w", token.Text, ErrTokenShape)
}

// mustAtoi converts digit-only capture groups.
func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
