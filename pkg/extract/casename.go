package extract

import (
	"regexp"
	"strings"
)

// caseName is the result of the backward search for the citation's case name.
type caseName struct {
	found      bool
	name       string
	plaintiff  string
	defendant  string
	procedural string

	// start is the cleaned-text offset of the name's first character.
	start int
}

// Signal words that introduce a citation but are not part of the case name.
var citationSignals = map[string]bool{
	"see":      true,
	"e.g":      true,
	"cf":       true,
	"accord":   true,
	"contra":   true,
	"compare":  true,
	"also":     true,
	"but":      true,
	"citing":   true,
	"quoting":  true,
	"in":       true,
	"under":    true,
	"overruling": true,
}

// findCaseName scans backward from the citation core's start, trying the
// adversarial "Party v. Party" pattern first and the procedural-prefix
// vocabulary second. Both patterns are anchored to end exactly at the core's
// start (trailing comma and whitespace permitted). A semicolon inside the
// captured text disqualifies a match: semicolons separate unrelated
// citations. No match leaves every name field absent.
func (e *Engine) findCaseName(clean string, coreStart int) caseName {
	windowStart := coreStart - nameSearchWindow
	if windowStart < 0 {
		windowStart = 0
	}
	window := clean[windowStart:coreStart]

	if m := e.adversarialPattern.FindStringSubmatchIndex(window); m != nil {
		matched := window[m[0]:m[1]]
		if !strings.Contains(matched, ";") {
			plaintiff := strings.TrimRight(window[m[2]:m[3]], ", \t")
			defendant := strings.TrimRight(window[m[4]:m[5]], ", \t")

			plaintiff, trimmed := trimSignalWords(plaintiff)
			name := strings.TrimRight(window[m[0]+trimmed:m[1]], ", \t")
			return caseName{
				found:     true,
				name:      name,
				plaintiff: plaintiff,
				defendant: defendant,
				start:     windowStart + m[0] + trimmed,
			}
		}
	}

	if m := e.proceduralPattern.FindStringSubmatchIndex(window); m != nil {
		matched := window[m[0]:m[1]]
		prefix := window[m[2]:m[3]]
		subject := window[m[4]:m[5]]

		// "Estate of X v. Y" is adversarial, not procedural; the literal
		// prefix belongs to the plaintiff in that reading.
		if strings.Contains(matched, ";") {
			return caseName{}
		}
		if strings.EqualFold(prefix, "Estate of") && containsAdversarial(matched) {
			return caseName{}
		}

		name := strings.TrimRight(matched, ", \t")
		return caseName{
			found:      true,
			name:       name,
			plaintiff:  strings.TrimRight(subject, ", \t"),
			procedural: prefix,
			start:      windowStart + m[0],
		}
	}

	return caseName{}
}

var adversarialMarker = regexp.MustCompile(`\s[Vv]s?\.\s`)

func containsAdversarial(text string) bool {
	return adversarialMarker.MatchString(text)
}

// trimSignalWords strips leading citation signals ("See", "cf.", ...) from a
// captured plaintiff, returning the trimmed plaintiff and the number of bytes
// removed from the front of the match.
func trimSignalWords(plaintiff string) (string, int) {
	trimmed := 0
	for {
		rest := plaintiff[trimmed:]
		space := strings.IndexAny(rest, " \t")
		if space < 0 {
			break
		}
		word := strings.ToLower(strings.Trim(rest[:space], ".,;:"))
		if !citationSignals[word] {
			break
		}
		trimmed += space + 1
		for trimmed < len(plaintiff) && (plaintiff[trimmed] == ' ' || plaintiff[trimmed] == '\t') {
			trimmed++
		}
	}
	return plaintiff[trimmed:], trimmed
}

// Truncation points after which nothing belongs to the normalized name.
var (
	etAlPattern = regexp.MustCompile(`(?i)\s*,?\s*\bet al\.?.*$`)
	dbaPattern  = regexp.MustCompile(`(?i)\s*,?\s*\bd/b/a\s.*$`)
	akaPattern  = regexp.MustCompile(`(?i)\s*,?\s*\baka\s.*$`)

	leadingArticle = regexp.MustCompile(`(?i)^(?:the|an|a)\s+`)
)

// Corporate suffix tokens stripped iteratively from the end of a party name.
var corporateSuffixes = map[string]bool{
	"inc":  true,
	"llc":  true,
	"corp": true,
	"ltd":  true,
	"co":   true,
	"llp":  true,
	"lp":   true,
	"p.c":  true,
	"pc":   true,
}

// NormalizeParty derives the comparison form of a party name: truncate at
// "et al.", "d/b/a" and "aka", strip trailing corporate suffixes until none
// remain, drop one leading article, collapse whitespace, lowercase. Only this
// form is ever compared during resolution.
func NormalizeParty(raw string) string {
	if raw == "" {
		return ""
	}

	name := etAlPattern.ReplaceAllString(raw, "")
	name = dbaPattern.ReplaceAllString(name, "")
	name = akaPattern.ReplaceAllString(name, "")

	for {
		name = strings.TrimRight(name, " ,")
		lastSpace := strings.LastIndexAny(name, " \t")
		if lastSpace < 0 {
			break
		}
		last := strings.ToLower(strings.Trim(name[lastSpace+1:], ".,"))
		if !corporateSuffixes[last] {
			break
		}
		name = name[:lastSpace]
	}

	name = leadingArticle.ReplaceAllString(name, "")
	name = strings.Join(strings.Fields(name), " ")
	name = strings.Trim(name, " ,.")
	return strings.ToLower(name)
}
