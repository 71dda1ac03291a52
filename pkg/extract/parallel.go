package extract

import (
	"regexp"

	"github.com/coolbeans/citator/pkg/cite"
	"github.com/coolbeans/citator/pkg/tokenize"
)

// Adjacent parallel citations are joined by a comma and at most a few spaces.
var parallelGap = regexp.MustCompile(`^,\s{0,3}$`)

// linkParallels is the document-wide pass over the token list, run before
// per-citation attachment. Two adjacent case tokens link when the first is
// immediately followed by the second across a comma gap AND a balanced
// parenthetical follows the last token of the chain within bounded
// lookahead. Tokens separated by a semicolon, a non-case token, or excessive
// whitespace never link. One linear scan yields every independent group,
// keyed by the primary token's index.
func (e *Engine) linkParallels(clean string, tokens []tokenize.Token) map[int][]int {
	links := make(map[int][]int)

	i := 0
	for i < len(tokens) {
		if tokens[i].Type != cite.TypeCase {
			i++
			continue
		}

		// Extend the chain while consecutive case tokens sit across a
		// comma-sized gap.
		end := i
		for end+1 < len(tokens) &&
			tokens[end+1].Type == cite.TypeCase &&
			parallelGap.MatchString(clean[tokens[end].End:tokens[end+1].Start]) {
			end++
		}

		if end > i && parentheticalFollows(clean, tokens[end].End) {
			linked := make([]int, 0, end-i)
			for j := i + 1; j <= end; j++ {
				linked = append(linked, j)
			}
			links[i] = linked
		}

		i = end + 1
	}

	return links
}

// A parallel group needs a closing balanced parenthetical after its last
// citation, within bounded lookahead. An optional pincite may intervene.
func parentheticalFollows(clean string, from int) bool {
	limit := from + parallelLookahead
	if limit > len(clean) {
		limit = len(clean)
	}

	pos := from
	if m := pincitePrefix.FindString(clean[pos:limit]); m != "" {
		pos += len(m)
	}
	for pos < limit && clean[pos] == ' ' {
		pos++
	}
	if pos >= limit || clean[pos] != '(' {
		return false
	}
	_, _, ok := scanBalanced(clean, pos, limit)
	return ok
}

var pincitePrefix = regexp.MustCompile(`^,\s*\d+(?:[-–]\d+)?`)
