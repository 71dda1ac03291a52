package extract

import (
	"fmt"

	"github.com/coolbeans/citator/pkg/cite"
)

// Reporters common enough that their presence alone is a strong signal.
var commonReporters = map[string]bool{
	"U.S.":        true,
	"S. Ct.":      true,
	"L. Ed.":      true,
	"L. Ed. 2d":   true,
	"F.":          true,
	"F.2d":        true,
	"F.3d":        true,
	"F.4th":       true,
	"F. Supp.":    true,
	"F. Supp. 2d": true,
	"F. Supp. 3d": true,
	"A.2d":        true,
	"A.3d":        true,
	"P.2d":        true,
	"P.3d":        true,
	"N.E.2d":      true,
	"N.W.2d":      true,
	"S.E.2d":      true,
	"S.W.2d":      true,
	"So. 2d":      true,
	"So. 3d":      true,
	"Cal. 2d":     true,
	"Cal. 3d":     true,
	"Cal. 4th":    true,
	"N.Y.2d":      true,
}

// scoreCase assigns the citation's confidence: base 0.5, +0.3 for a common
// reporter, +0.2 for a parenthetical year no later than the current year.
// Blank-page citations are fixed at 0.8 regardless of other signals. When
// the reporter database is cached, its verdict adjusts the score; the result
// is clamped to [0, 1].
func (e *Engine) scoreCase(citation *cite.CaseCitation) {
	if citation.HasBlankPage {
		citation.Confidence = 0.8
		return
	}

	confidence := 0.5
	if commonReporters[citation.Reporter] {
		confidence += 0.3
	}
	if citation.Year > 0 && citation.Year <= e.now().Year() {
		confidence += 0.2
	}

	if e.lookup != nil {
		if matches, available := e.lookup(citation.Reporter); available {
			switch len(matches) {
			case 0:
				confidence -= 0.3
				citation.Warnings = append(citation.Warnings, cite.Warning{
					Level:    cite.LevelWarning,
					Message:  fmt.Sprintf("reporter %q not found in reporter database", citation.Reporter),
					Position: citation.Span.CleanStart,
				})
			case 1:
				confidence += 0.2
			default:
				confidence -= 0.1 * float64(len(matches)-1)
				citation.Warnings = append(citation.Warnings, cite.Warning{
					Level:    cite.LevelInfo,
					Message:  fmt.Sprintf("reporter %q is ambiguous across %d editions", citation.Reporter, len(matches)),
					Position: citation.Span.CleanStart,
				})
			}
		}
	}

	citation.Confidence = clamp(confidence)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
