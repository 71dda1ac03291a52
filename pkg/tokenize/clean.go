package tokenize

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/coolbeans/citator/pkg/position"
)

// A cleaner rewrites text and reports, for every output byte, the input byte
// it came from. The final entry of the offset slice maps len(output) to
// len(input) so span end offsets translate cleanly.
type cleanerFunc func(text string) (string, []int)

// CleanerNames lists the registered cleaning steps in a stable order.
func CleanerNames() []string {
	return []string{"html", "whitespace", "nbsp"}
}

var cleaners = map[string]cleanerFunc{
	"html":       cleanHTML,
	"whitespace": cleanWhitespace,
	"nbsp":       cleanNBSP,
}

// Clean applies the named cleaning steps in order and returns the cleaned
// text together with the position table mapping cleaned offsets back to the
// original input. With no steps the text is returned unchanged under an
// identity table.
func Clean(text string, steps ...string) (string, *position.Table, error) {
	if len(steps) == 0 {
		return text, position.Identity(), nil
	}

	current := text
	// offsets[i] is the original-input byte index of current[i].
	offsets := identityOffsets(len(text))

	for _, step := range steps {
		clean, ok := cleaners[step]
		if !ok {
			return "", nil, fmt.Errorf("unknown cleaning step %q", step)
		}
		next, stepOffsets := clean(current)
		offsets = composeOffsets(offsets, stepOffsets)
		current = next
	}

	table := make(map[int]int, len(offsets))
	for i, orig := range offsets {
		table[i] = orig
	}
	return current, position.NewTable(table), nil
}

func identityOffsets(n int) []int {
	offsets := make([]int, n+1)
	for i := range offsets {
		offsets[i] = i
	}
	return offsets
}

// composeOffsets chains an inner output→input map with the map produced by
// the next cleaning step.
func composeOffsets(inner, outer []int) []int {
	composed := make([]int, len(outer))
	for i, mid := range outer {
		composed[i] = inner[mid]
	}
	return composed
}

// cleanHTML drops markup tags, keeping text content.
func cleanHTML(text string) (string, []int) {
	var out strings.Builder
	offsets := make([]int, 0, len(text)+1)

	inTag := false
	for i := 0; i < len(text); i++ {
		switch {
		case text[i] == '<':
			inTag = true
		case text[i] == '>' && inTag:
			inTag = false
		case !inTag:
			out.WriteByte(text[i])
			offsets = append(offsets, i)
		}
	}
	offsets = append(offsets, len(text))
	return out.String(), offsets
}

// cleanWhitespace collapses each run of whitespace into a single space. The
// surviving space maps to the first byte of the run.
func cleanWhitespace(text string) (string, []int) {
	var out strings.Builder
	offsets := make([]int, 0, len(text)+1)

	inRun := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			if !inRun {
				out.WriteByte(' ')
				offsets = append(offsets, i)
				inRun = true
			}
			continue
		}
		inRun = false
		start := out.Len()
		out.WriteRune(r)
		for b := start; b < out.Len(); b++ {
			offsets = append(offsets, i+(b-start))
		}
	}
	offsets = append(offsets, len(text))
	return out.String(), offsets
}

// cleanNBSP rewrites non-breaking spaces as plain spaces.
func cleanNBSP(text string) (string, []int) {
	var out strings.Builder
	offsets := make([]int, 0, len(text)+1)

	for i, r := range text {
		if r == ' ' {
			out.WriteByte(' ')
			offsets = append(offsets, i)
			continue
		}
		start := out.Len()
		out.WriteRune(r)
		for b := start; b < out.Len(); b++ {
			offsets = append(offsets, i+(b-start))
		}
	}
	offsets = append(offsets, len(text))
	return out.String(), offsets
}
