// Package tokenize cleans document text and produces typed citation token
// candidates for the extraction engine. Tokens carry cleaned-text spans; the
// position table built during cleaning translates them back to the original
// input.
package tokenize

import (
	"regexp"
	"sort"

	"github.com/coolbeans/citator/pkg/cite"
)

// Token is one typed match candidate over the cleaned text.
type Token struct {
	// Text is the matched substring of the cleaned text.
	Text string `json:"text"`

	// Start and End are byte offsets into the cleaned text.
	Start int `json:"start"`
	End   int `json:"end"`

	// Type is the citation kind this token was matched as.
	Type cite.Type `json:"type"`

	// PatternID names the pattern that produced the match.
	PatternID string `json:"pattern_id"`
}

// Reporter abbreviations: an uppercase-led word optionally followed by
// further capitalized or ordinal words, preserving internal spacing
// ("F. Supp. 2d", "Cal. 3d", "S. Ct.").
const reporterPat = `[A-Z][A-Za-z0-9.']*(?:\s[A-Z0-9][A-Za-z0-9.']*)*?`

// Tokenizer scans cleaned text for citation token candidates.
type Tokenizer struct {
	casePattern      *regexp.Regexp // 500 F.2d 123, 1984-1 Trade Cas. 66, 500 F.2d ___
	shortCasePattern *regexp.Regexp // 500 F.2d at 127
	idPattern        *regexp.Regexp // Id. at 120, Ibid.
	supraPattern     *regexp.Regexp // Doe, supra, at 9
	uscPattern       *regexp.Regexp // 42 U.S.C. § 1983
	cfrPattern       *regexp.Regexp // 45 C.F.R. § 164.502
}

// New creates a Tokenizer with compiled patterns.
func New() *Tokenizer {
	return &Tokenizer{
		// Case citation core: volume (plain or hyphenated range), reporter,
		// page or blank-page placeholder (3+ underscores/dashes).
		casePattern: regexp.MustCompile(`\b(\d{1,4}(?:-\d+)?)\s+(` + reporterPat + `)\s+(\d+\b|[_-]{3,})`),

		// Short-form case citation: volume, reporter, "at", pincite.
		shortCasePattern: regexp.MustCompile(`\b(\d{1,4})\s+(` + reporterPat + `)\s+at\s+(\d+)\b`),

		// "Id." / "Ibid." with optional pincite.
		idPattern: regexp.MustCompile(`\b(?:Id\.|id\.|Ibid\.|ibid\.)(?:,?\s+at\s+(\d+(?:[-–]\d+)?))?`),

		// "Party, supra" with a tolerated stray space before the comma and an
		// optional trailing pincite.
		supraPattern: regexp.MustCompile(`\b([A-Z][A-Za-z0-9.'&-]*)\s?,\s*supra(?:,?\s+at\s+(\d+(?:[-–]\d+)?))?`),

		uscPattern: regexp.MustCompile(`\b(\d+)\s+U\.?S\.?C\.?\s+§§?\s*(\d+[a-z]*(?:[-–]\d+[a-z]*)?)`),
		cfrPattern: regexp.MustCompile(`\b(\d+)\s+C\.?F\.?R\.?\s+(?:Part\s+|§\s*)(\d+(?:\.\d+)?)`),
	}
}

// candidate pairs a raw match with the priority used for overlap
// suppression. Lower priority wins when two candidates overlap.
type candidate struct {
	token    Token
	priority int
}

// Tokenize scans the cleaned text and returns ordered, de-duplicated tokens.
// When matches from different patterns overlap, statutes win over case cores,
// and case cores win over short forms, mirroring pattern specificity.
func (t *Tokenizer) Tokenize(cleanText string) []Token {
	var candidates []candidate

	collect := func(re *regexp.Regexp, typ cite.Type, patternID string, priority int) {
		for _, m := range re.FindAllStringIndex(cleanText, -1) {
			candidates = append(candidates, candidate{
				token: Token{
					Text:      cleanText[m[0]:m[1]],
					Start:     m[0],
					End:       m[1],
					Type:      typ,
					PatternID: patternID,
				},
				priority: priority,
			})
		}
	}

	collect(t.uscPattern, cite.TypeStatute, "usc", 0)
	collect(t.cfrPattern, cite.TypeStatute, "cfr", 0)
	collect(t.shortCasePattern, cite.TypeShortCase, "short_case", 1)
	collect(t.casePattern, cite.TypeCase, "case_core", 2)
	collect(t.idPattern, cite.TypeID, "id", 3)
	collect(t.supraPattern, cite.TypeSupra, "supra", 3)

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.token.Start != b.token.Start {
			return a.token.Start < b.token.Start
		}
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		return a.token.End > b.token.End
	})

	var accepted []Token
	for _, c := range candidates {
		if overlapsAny(c.token, accepted) {
			continue
		}
		accepted = append(accepted, c.token)
	}

	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].Start < accepted[j].Start
	})
	return accepted
}

// overlapsAny checks a token against already accepted tokens. Accepted tokens
// are not sorted yet, so the scan is linear.
func overlapsAny(tok Token, accepted []Token) bool {
	for _, a := range accepted {
		if tok.Start < a.End && a.Start < tok.End {
			return true
		}
	}
	return false
}
