// Package resolve links short-form citations (Id., supra, volume+reporter
// short forms) to their antecedent full citations. Resolution is a strictly
// ordered pass over one document's citation list: every full citation
// extends the history the short forms behind it draw on. Resolution never
// fails hard; a short form without a usable antecedent yields an unresolved
// result carrying a warning.
package resolve

import (
	"fmt"

	"github.com/coolbeans/citator/pkg/cite"
	"github.com/coolbeans/citator/pkg/extract"
)

// DefaultThreshold is the minimum fuzzy-match similarity accepted when a
// supra party name has no exact match in history.
const DefaultThreshold = 0.8

// Resolution is the outcome for one citation, aligned by index with the
// input list. Full citations are emitted unresolved with no warnings; they
// are antecedents, not referents.
type Resolution struct {
	CitationIndex   int     `json:"citation_index"`
	AntecedentIndex int     `json:"antecedent_index"`
	Resolved        bool    `json:"resolved"`
	Confidence      float64 `json:"confidence"`
	Pincite         string  `json:"pincite,omitempty"`

	Warnings []cite.Warning `json:"warnings,omitempty"`
}

// Resolver resolves short forms against an accumulating per-document
// history. Safe for concurrent use across documents; all mutable state is
// local to one Resolve call.
type Resolver struct {
	threshold float64
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithThreshold overrides the fuzzy-match similarity threshold.
func WithThreshold(threshold float64) Option {
	return func(r *Resolver) { r.threshold = threshold }
}

// New creates a Resolver with the default threshold.
func New(opts ...Option) *Resolver {
	r := &Resolver{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// history accumulates full citations across one document pass.
type history struct {
	// fullIndices lists the citation indices of full case citations, in
	// document order.
	fullIndices []int

	// byParty maps each normalized party name to the index of its most
	// recent full citation.
	byParty map[string]int
}

func newHistory() *history {
	return &history{byParty: make(map[string]int)}
}

func (h *history) add(index int, citation *cite.CaseCitation) {
	h.fullIndices = append(h.fullIndices, index)
	if citation.PlaintiffNorm != "" {
		h.byParty[citation.PlaintiffNorm] = index
	}
	if citation.DefendantNorm != "" {
		h.byParty[citation.DefendantNorm] = index
	}
}

// Resolve processes the citation list in document order and returns one
// Resolution per citation, index-aligned. It never returns an error;
// unresolvable short forms carry warnings instead.
func (r *Resolver) Resolve(citations []cite.Citation) []Resolution {
	hist := newHistory()
	results := make([]Resolution, len(citations))

	for i, citation := range citations {
		result := Resolution{CitationIndex: i, AntecedentIndex: -1}

		switch c := citation.(type) {
		case *cite.IDCitation:
			result = r.resolveID(i, c)
		case *cite.SupraCitation:
			result = r.resolveSupra(i, c, hist)
		case *cite.ShortCaseCitation:
			result = r.resolveShortCase(i, c, citations, hist)
		case *cite.CaseCitation:
			hist.add(i, c)
		}

		results[i] = result
	}
	return results
}

// resolveID points at the immediately preceding citation, never skipping
// intervening ones.
func (r *Resolver) resolveID(index int, citation *cite.IDCitation) Resolution {
	result := Resolution{CitationIndex: index, AntecedentIndex: -1, Pincite: citation.Pincite}
	if index == 0 {
		result.Warnings = append(result.Warnings, cite.Warning{
			Level:    cite.LevelWarning,
			Message:  "id citation has no preceding citation",
			Position: citation.Span.CleanStart,
		})
		return result
	}
	result.AntecedentIndex = index - 1
	result.Resolved = true
	result.Confidence = 1.0
	return result
}

// resolveSupra matches the supra party name against history: exact
// normalized match first, then the best fuzzy similarity across all known
// party names, subject to the threshold.
func (r *Resolver) resolveSupra(index int, citation *cite.SupraCitation, hist *history) Resolution {
	result := Resolution{CitationIndex: index, AntecedentIndex: -1, Pincite: citation.Pincite}

	if len(hist.byParty) == 0 {
		result.Warnings = append(result.Warnings, cite.Warning{
			Level:    cite.LevelWarning,
			Message:  "supra citation has no prior full citations to resolve against",
			Position: citation.Span.CleanStart,
		})
		return result
	}

	name := extract.NormalizeParty(citation.PartyName)
	if antecedent, ok := hist.byParty[name]; ok {
		result.AntecedentIndex = antecedent
		result.Resolved = true
		result.Confidence = 0.9
		return result
	}

	best, bestSim, tied := "", 0.0, false
	for known := range hist.byParty {
		sim := similarity(name, known)
		switch {
		case sim > bestSim:
			best, bestSim, tied = known, sim, false
		case sim == bestSim && known != best:
			tied = true
		}
	}

	if bestSim < r.threshold {
		result.Warnings = append(result.Warnings, cite.Warning{
			Level:    cite.LevelWarning,
			Message:  fmt.Sprintf("supra party %q: best fuzzy similarity %.2f below threshold %.2f", citation.PartyName, bestSim, r.threshold),
			Position: citation.Span.CleanStart,
		})
		return result
	}
	if tied {
		result.Warnings = append(result.Warnings, cite.Warning{
			Level:    cite.LevelWarning,
			Message:  fmt.Sprintf("supra party %q: ambiguous fuzzy match at similarity %.2f", citation.PartyName, bestSim),
			Position: citation.Span.CleanStart,
		})
		return result
	}

	result.AntecedentIndex = hist.byParty[best]
	result.Resolved = true
	result.Confidence = bestSim
	result.Warnings = append(result.Warnings, cite.Warning{
		Level:    cite.LevelInfo,
		Message:  fmt.Sprintf("supra party %q resolved to %q by fuzzy match (similarity %.2f)", citation.PartyName, best, bestSim),
		Position: citation.Span.CleanStart,
	})
	return result
}

// resolveShortCase matches volume+reporter against history, most recent
// first. A full citation's parallel reporters count as its own.
func (r *Resolver) resolveShortCase(index int, citation *cite.ShortCaseCitation, citations []cite.Citation, hist *history) Resolution {
	result := Resolution{CitationIndex: index, AntecedentIndex: -1, Pincite: citation.Pincite}

	for j := len(hist.fullIndices) - 1; j >= 0; j-- {
		antecedent := hist.fullIndices[j]
		full, ok := citations[antecedent].(*cite.CaseCitation)
		if !ok {
			continue
		}
		if coreMatches(full, citation.Volume, citation.Reporter) {
			result.AntecedentIndex = antecedent
			result.Resolved = true
			result.Confidence = 0.7
			return result
		}
	}

	result.Warnings = append(result.Warnings, cite.Warning{
		Level:    cite.LevelWarning,
		Message:  fmt.Sprintf("short-form citation %s %s has no matching antecedent", citation.Volume, citation.Reporter),
		Position: citation.Span.CleanStart,
	})
	return result
}

func coreMatches(full *cite.CaseCitation, volume, reporter string) bool {
	if full.Volume == volume && full.Reporter == reporter {
		return true
	}
	for _, parallel := range full.ParallelCitations {
		if parallel.Volume == volume && parallel.Reporter == reporter {
			return true
		}
	}
	return false
}
