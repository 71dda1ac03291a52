// Package cite defines the citation data model shared by the extraction and
// resolution engines. Each citation kind is its own record carrying only the
// fields it actually has; callers dispatch on the Type discriminant.
package cite

import "fmt"

// Type classifies the kind of citation.
type Type string

const (
	TypeCase      Type = "case"
	TypeStatute   Type = "statute"
	TypeID        Type = "id"
	TypeSupra     Type = "supra"
	TypeShortCase Type = "short_case"
)

// Warning levels attached to citations and resolutions.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
)

// Warning records a non-fatal observation made during extraction or
// resolution, ordered by the position it refers to.
type Warning struct {
	Level    string `json:"level"`
	Message  string `json:"message"`
	Position int    `json:"position"`
}

// Span holds four offsets into two parallel text representations: the cleaned
// text used for matching and the original input text. Both boundaries are
// translated independently; spans of neighboring citations are not guaranteed
// contiguous.
type Span struct {
	CleanStart    int `json:"clean_start"`
	CleanEnd      int `json:"clean_end"`
	OriginalStart int `json:"original_start"`
	OriginalEnd   int `json:"original_end"`
}

// Date is a structured citation date. Month and Day are zero when the source
// text carried only a year; they are never invented.
type Date struct {
	ISO   string `json:"iso"`
	Year  int    `json:"year"`
	Month int    `json:"month,omitempty"`
	Day   int    `json:"day,omitempty"`
}

// Base carries the fields shared by every citation kind.
type Base struct {
	// Text is the token text the citation was built from.
	Text string `json:"text"`

	// MatchedText is the matched substring of the original input.
	MatchedText string `json:"matched_text"`

	// Span covers the citation core in both coordinate systems.
	Span Span `json:"span"`

	// Confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// Common returns the shared fields. It makes every variant satisfy Citation.
func (b *Base) Common() *Base { return b }

// Citation is the tagged union over all citation kinds. Engines switch
// exhaustively on CitationType.
type Citation interface {
	CitationType() Type
	Common() *Base
}

// ParallelCitation identifies an alternate reporter citation to the same
// case, attached to the primary citation it was linked with.
type ParallelCitation struct {
	Volume   string `json:"volume"`
	Reporter string `json:"reporter"`
	Page     string `json:"page"`
}

// CaseCitation is a full case citation: volume/reporter/page core plus the
// metadata reconstructed around it.
type CaseCitation struct {
	Base

	// Volume is kept as a string: hyphenated range volumes such as "1984-1"
	// are valid.
	Volume   string `json:"volume"`
	Reporter string `json:"reporter"`

	// Page is empty for blank-page placeholders.
	Page    string `json:"page,omitempty"`
	Pincite string `json:"pincite,omitempty"`

	Court string `json:"court,omitempty"`
	Year  int    `json:"year,omitempty"`
	Date  *Date  `json:"date,omitempty"`

	CaseName         string `json:"case_name,omitempty"`
	Plaintiff        string `json:"plaintiff,omitempty"`
	Defendant        string `json:"defendant,omitempty"`
	PlaintiffNorm    string `json:"plaintiff_norm,omitempty"`
	DefendantNorm    string `json:"defendant_norm,omitempty"`
	ProceduralPrefix string `json:"procedural_prefix,omitempty"`

	// Disposition is "en banc" or "per curiam" when present.
	Disposition string `json:"disposition,omitempty"`

	// FullSpan covers case name through trailing parentheticals. Populated
	// only when a case name was found; Span always covers the core alone.
	FullSpan *Span `json:"full_span,omitempty"`

	ParallelCitations []ParallelCitation `json:"parallel_citations,omitempty"`

	HasBlankPage bool `json:"has_blank_page,omitempty"`
}

func (c *CaseCitation) CitationType() Type { return TypeCase }

// CoreCite renders the volume/reporter/page core.
func (c *CaseCitation) CoreCite() string {
	page := c.Page
	if c.HasBlankPage {
		page = "___"
	}
	return fmt.Sprintf("%s %s %s", c.Volume, c.Reporter, page)
}

// StatuteCitation is a statutory citation such as "42 U.S.C. § 1983".
type StatuteCitation struct {
	Base

	// Code names the compilation, e.g. "USC" or "CFR".
	Code    string `json:"code"`
	Title   string `json:"title"`
	Section string `json:"section"`
}

func (c *StatuteCitation) CitationType() Type { return TypeStatute }

// IDCitation is an "Id." or "Ibid." reference to the immediately preceding
// citation.
type IDCitation struct {
	Base

	Pincite string `json:"pincite,omitempty"`
}

func (c *IDCitation) CitationType() Type { return TypeID }

// SupraCitation is a "Party, supra" reference to an earlier full citation.
type SupraCitation struct {
	Base

	PartyName string `json:"party_name"`
	Pincite   string `json:"pincite,omitempty"`
}

func (c *SupraCitation) CitationType() Type { return TypeSupra }

// ShortCaseCitation is a short-form case citation ("500 F.2d at 123"): a
// volume/reporter/pincite core with no case name of its own.
type ShortCaseCitation struct {
	Base

	Volume   string `json:"volume"`
	Reporter string `json:"reporter"`
	Pincite  string `json:"pincite"`
}

func (c *ShortCaseCitation) CitationType() Type { return TypeShortCase }
