package extract

import "testing"

func TestFindCaseName(t *testing.T) {
	e := newTestEngine()
	tests := []struct {
		name       string
		text       string
		wantFound  bool
		wantName   string
		wantPl     string
		wantDef    string
		wantPrefix string
	}{
		{
			name:      "adversarial",
			text:      "Smith v. Jones, ",
			wantFound: true,
			wantName:  "Smith v. Jones",
			wantPl:    "Smith",
			wantDef:   "Jones",
		},
		{
			name:      "adversarial_vs_spelling",
			text:      "Smith vs. Jones, ",
			wantFound: true,
			wantName:  "Smith vs. Jones",
			wantPl:    "Smith",
			wantDef:   "Jones",
		},
		{
			name:      "multi_word_parties",
			text:      "United States v. Acme Widget Co., ",
			wantFound: true,
			wantName:  "United States v. Acme Widget Co.",
			wantPl:    "United States",
			wantDef:   "Acme Widget Co.",
		},
		{
			name:      "signal_word_trimmed",
			text:      "See Smith v. Jones, ",
			wantFound: true,
			wantName:  "Smith v. Jones",
			wantPl:    "Smith",
			wantDef:   "Jones",
		},
		{
			name:       "procedural_in_re",
			text:       "In re Doe, ",
			wantFound:  true,
			wantName:   "In re Doe",
			wantPl:     "Doe",
			wantPrefix: "In re",
		},
		{
			name:       "procedural_ex_parte",
			text:       "Ex parte Young, ",
			wantFound:  true,
			wantName:   "Ex parte Young",
			wantPl:     "Young",
			wantPrefix: "Ex parte",
		},
		{
			name:      "estate_of_adversarial_reading",
			text:      "Estate of Smith v. Jones, ",
			wantFound: true,
			wantName:  "Estate of Smith v. Jones",
			wantPl:    "Estate of Smith",
			wantDef:   "Jones",
		},
		{
			name:      "no_name_present",
			text:      "as the court held in ",
			wantFound: false,
		},
		{
			name:      "empty_window",
			text:      "",
			wantFound: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.findCaseName(tt.text, len(tt.text))
			if got.found != tt.wantFound {
				t.Fatalf("found = %v, want %v", got.found, tt.wantFound)
			}
			if !tt.wantFound {
				return
			}
			if got.name != tt.wantName {
				t.Errorf("name = %q, want %q", got.name, tt.wantName)
			}
			if got.plaintiff != tt.wantPl {
				t.Errorf("plaintiff = %q, want %q", got.plaintiff, tt.wantPl)
			}
			if got.defendant != tt.wantDef {
				t.Errorf("defendant = %q, want %q", got.defendant, tt.wantDef)
			}
			if got.procedural != tt.wantPrefix {
				t.Errorf("procedural = %q, want %q", got.procedural, tt.wantPrefix)
			}
		})
	}
}

func TestFindCaseNameWindowBound(t *testing.T) {
	e := newTestEngine()

	// The name sits just outside the 150-character window and must not be
	// found.
	filler := ""
	for len(filler) < nameSearchWindow {
		filler += "x "
	}
	text := "Smith v. Jones held that " + filler
	if got := e.findCaseName(text, len(text)); got.found {
		t.Errorf("found %q outside the search window", got.name)
	}
}

func TestNormalizeParty(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"simple", "Smith", "smith"},
		{"lowercased_and_collapsed", "  United   States ", "united states"},
		{"corporate_suffix", "Acme Corp.", "acme"},
		{"stacked_suffixes", "Acme Widget Co., Inc.", "acme widget"},
		{"llc", "Widgets LLC", "widgets"},
		{"et_al_truncated", "Smith, et al.", "smith"},
		{"dba_truncated", "Jones d/b/a Jones Plumbing", "jones"},
		{"aka_truncated", "Brown aka The Hammer", "brown"},
		{"leading_article", "The United Widget Co.", "united widget"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeParty(tt.raw); got != tt.want {
				t.Errorf("NormalizeParty(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
