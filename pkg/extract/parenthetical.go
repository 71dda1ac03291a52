package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/coolbeans/citator/pkg/cite"
)

// One balanced parenthetical's content and its cleaned-text offset.
type parenSpan struct {
	content string
	start   int
}

// Date patterns tried in priority order; a bare 4-digit year is the fallback.
var (
	abbrevMonthDate = regexp.MustCompile(`\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sept?|Oct|Nov|Dec)\.?\s+(\d{1,2}),?\s+(\d{4})\b`)
	fullMonthDate   = regexp.MustCompile(`\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2}),?\s+(\d{4})\b`)
	numericDate     = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	bareYear        = regexp.MustCompile(`\b(\d{4})\b`)

	enBancMarker    = regexp.MustCompile(`(?i)\ben banc\b`)
	perCuriamMarker = regexp.MustCompile(`(?i)\bper curiam\b`)

	subsequentHistory = regexp.MustCompile(`^,\s*(?:aff'd|rev'd|cert\. denied|cert\. granted|vacated|modified|overruled)[,.]?`)

	// Material allowed between a citation core and its first parenthetical:
	// a pincite or a parallel citation, optionally with the comma already
	// consumed by a subsequent-history marker.
	citeConnector = regexp.MustCompile(`^,?\s*\d`)

	hasLetter = regexp.MustCompile(`[A-Za-z]`)
)

var monthNumbers = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

// parsedParen is one parenthetical's extracted court, date and disposition.
type parsedParen struct {
	court       string
	date        *cite.Date
	disposition string
}

// parseParenthetical extracts, in order: a full date (abbreviated month, then
// full month name, then numeric month/day/year, falling back to a bare
// 4-digit year), the court abbreviation left over once the date substring and
// trailing comma are stripped, and a disposition flag. Month and day are
// omitted, never invented, when absent from the source.
func parseParenthetical(content string) parsedParen {
	var parsed parsedParen

	remainder := content
	switch {
	case enBancMarker.MatchString(content):
		parsed.disposition = "en banc"
		remainder = enBancMarker.ReplaceAllString(remainder, "")
	case perCuriamMarker.MatchString(content):
		parsed.disposition = "per curiam"
		remainder = perCuriamMarker.ReplaceAllString(remainder, "")
	}

	var dateText string
	if m := abbrevMonthDate.FindStringSubmatch(remainder); m != nil {
		dateText = m[0]
		parsed.date = buildDate(mustAtoi(m[3]), monthNumbers[strings.ToLower(m[1])], mustAtoi(m[2]))
	} else if m := fullMonthDate.FindStringSubmatch(remainder); m != nil {
		dateText = m[0]
		parsed.date = buildDate(mustAtoi(m[3]), monthNumbers[strings.ToLower(m[1])], mustAtoi(m[2]))
	} else if m := numericDate.FindStringSubmatch(remainder); m != nil {
		// US ordering: month/day/year.
		dateText = m[0]
		parsed.date = buildDate(mustAtoi(m[3]), mustAtoi(m[1]), mustAtoi(m[2]))
	} else if m := bareYear.FindStringSubmatch(remainder); m != nil {
		dateText = m[0]
		parsed.date = buildDate(mustAtoi(m[1]), 0, 0)
	}

	// The court is whatever precedes the date once the date substring and
	// trailing comma are stripped. Without a date the parenthetical is
	// explanatory text, not a court.
	if dateText != "" {
		remainder = strings.Replace(remainder, dateText, "", 1)
		remainder = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(remainder), ","))
		if hasLetter.MatchString(remainder) {
			parsed.court = remainder
		}
	}

	return parsed
}

// buildDate produces the structured date. Whenever a year is found a date is
// produced; the ISO form carries only the fields the source text had.
func buildDate(year, month, day int) *cite.Date {
	date := &cite.Date{Year: year, Month: month, Day: day}
	switch {
	case month > 0 && day > 0:
		date.ISO = fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	case month > 0:
		date.ISO = fmt.Sprintf("%04d-%02d", year, month)
	default:
		date.ISO = fmt.Sprintf("%04d", year)
	}
	return date
}

// applyParenthetical merges one parenthetical's findings into the citation.
// The first court and date found win; a disposition is taken from any
// parenthetical but never overwritten.
func (e *Engine) applyParenthetical(citation *cite.CaseCitation, paren parenSpan) {
	parsed := parseParenthetical(paren.content)

	if parsed.court != "" && citation.Court == "" {
		citation.Court = parsed.court
	}
	if parsed.date != nil && citation.Date == nil {
		citation.Date = parsed.date
		citation.Year = parsed.date.Year
	}
	if parsed.disposition != "" && citation.Disposition == "" {
		citation.Disposition = parsed.disposition
	}
}

// scanTrailing walks forward from the citation core through its trailing
// parentheticals, tracking parenthesis depth, up to fullSpanWindow characters
// past the core. After a balanced parenthetical closes it peeks past
// whitespace: another "(" or a subsequent-history marker continues the scan.
// Returns the final stop offset and the parentheticals found.
func (e *Engine) scanTrailing(clean string, coreEnd, scanStart int) (int, []parenSpan) {
	limit := coreEnd + fullSpanWindow
	if limit > len(clean) {
		limit = len(clean)
	}

	stop := scanStart
	pos := scanStart
	var parens []parenSpan
	seenParen := false

	for pos < limit {
		for pos < limit && clean[pos] == ' ' {
			pos++
		}
		if pos >= limit {
			break
		}

		if clean[pos] == '(' {
			content, end, ok := scanBalanced(clean, pos, limit)
			if !ok {
				break
			}
			parens = append(parens, parenSpan{content: content, start: pos + 1})
			stop = end
			pos = end
			seenParen = true
			continue
		}

		if !seenParen {
			// Skip the pincite / parallel-citation segment before the first
			// parenthetical: ", 127" or ", 500 P.2d 200". Anything else,
			// semicolons included, ends the citation.
			next := strings.IndexByte(clean[pos:limit], '(')
			if next < 0 {
				break
			}
			segment := clean[pos : pos+next]
			if strings.ContainsRune(segment, ';') || !citeConnector.MatchString(segment) {
				break
			}
			pos += next
			continue
		}

		if m := subsequentHistory.FindString(clean[pos:limit]); m != "" {
			pos += len(m)
			stop = pos
			seenParen = false
			continue
		}
		break
	}

	return stop, parens
}

// scanBalanced consumes one balanced parenthetical starting at an opening
// "(". Returns the inner content and the offset just past the closing ")".
func scanBalanced(text string, open, limit int) (string, int, bool) {
	depth := 0
	for i := open; i < limit; i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return text[open+1 : i], i + 1, true
			}
		}
	}
	return "", 0, false
}
