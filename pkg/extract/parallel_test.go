package extract

import (
	"reflect"
	"testing"

	"github.com/coolbeans/citator/pkg/tokenize"
)

func TestLinkParallels(t *testing.T) {
	e := newTestEngine()
	tok := tokenize.New()

	tests := []struct {
		name string
		text string
		want map[int][]int
	}{
		{
			name: "comma_pair_with_parenthetical",
			text: "500 F.2d 100, 501 F.3d 200 (1989)",
			want: map[int][]int{0: {1}},
		},
		{
			name: "three_reporter_chain",
			text: "10 Cal. 3d 100, 500 P.2d 200, 93 Cal. Rptr. 100 (1970)",
			want: map[int][]int{0: {1, 2}},
		},
		{
			name: "pincite_after_last_member",
			text: "500 F.2d 100, 501 F.3d 200, 205 (1989)",
			want: map[int][]int{0: {1}},
		},
		{
			name: "semicolon_never_links",
			text: "500 F.2d 100; 501 F.3d 200 (1989)",
			want: map[int][]int{},
		},
		{
			name: "no_following_parenthetical",
			text: "500 F.2d 100, 501 F.3d 200 ends here.",
			want: map[int][]int{},
		},
		{
			name: "prose_between_citations",
			text: "500 F.2d 100, and see 501 F.3d 200 (1989)",
			want: map[int][]int{},
		},
		{
			name: "single_citation",
			text: "500 F.2d 100 (1974)",
			want: map[int][]int{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.linkParallels(tt.text, tok.Tokenize(tt.text))
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("linkParallels = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParentheticalFollows(t *testing.T) {
	tests := []struct {
		name string
		text string
		from int
		want bool
	}{
		{"immediate_paren", "x (1989)", 1, true},
		{"pincite_then_paren", "x, 205 (1989)", 1, true},
		{"no_paren", "x and more text", 1, false},
		{"unbalanced_paren", "x (1989", 1, false},
		{"beyond_lookahead", "x" + spaces(parallelLookahead+5) + "(1989)", 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parentheticalFollows(tt.text, tt.from); got != tt.want {
				t.Errorf("parentheticalFollows(%q, %d) = %v, want %v", tt.text, tt.from, got, tt.want)
			}
		})
	}
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
