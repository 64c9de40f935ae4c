// Package citation locates and classifies case citations in normalized
// judgment text using independent per-jurisdiction grammars.
package citation

import (
	"github.com/coolbeans/juriscope/pkg/types"
)

// CitationType classifies a citation by the grammar that recognised it.
// Values double as dataset column suffixes.
type CitationType string

const (
	TypeUKNeutral CitationType = "uk_neutral"
	TypeAUNeutral CitationType = "au_neutral"
	TypeSGNeutral CitationType = "sg_neutral"
	TypeLawReport CitationType = "law_report"
	TypeFallback  CitationType = "fallback"
)

// AllTypes returns every citation type in column order.
func AllTypes() []CitationType {
	return []CitationType{TypeUKNeutral, TypeAUNeutral, TypeSGNeutral, TypeLawReport, TypeFallback}
}

// Description returns the human-readable name of the citation type.
func (t CitationType) Description() string {
	switch t {
	case TypeUKNeutral:
		return "UK neutral citation"
	case TypeAUNeutral:
		return "Australian medium neutral citation"
	case TypeSGNeutral:
		return "Singapore neutral citation"
	case TypeLawReport:
		return "law report citation"
	case TypeFallback:
		return "unclassified citation-like reference"
	}
	return string(t)
}

// neutralTypeFor returns the neutral citation type of a jurisdiction.
func neutralTypeFor(jurisdiction types.Jurisdiction) (CitationType, bool) {
	switch jurisdiction {
	case types.JurisdictionUK:
		return TypeUKNeutral, true
	case types.JurisdictionAU:
		return TypeAUNeutral, true
	case types.JurisdictionSG:
		return TypeSGNeutral, true
	}
	return "", false
}

// Priority ranks competing matches at the same position. Higher wins.
type Priority int

const (
	PriorityFallback  Priority = 1
	PriorityLawReport Priority = 2
	PriorityNeutral   Priority = 3
)

// Citation is a located citation. Offsets are byte offsets into the
// normalized text the citation was extracted from.
type Citation struct {
	// Raw text as found in the normalized text.
	RawText string `json:"raw_text"`

	Type CitationType `json:"type"`

	// Jurisdiction of the grammar that matched; empty for grammars shared
	// across jurisdictions.
	Jurisdiction types.Jurisdiction `json:"jurisdiction,omitempty"`

	// Grammar is the name of the grammar that produced this citation.
	Grammar  string   `json:"grammar"`
	Priority Priority `json:"priority"`

	TextOffset int `json:"text_offset"`
	TextLength int `json:"text_length"`

	// Origin is the jurisdiction of the cited court or report series.
	Origin Origin `json:"origin"`

	Components Components `json:"components"`
}

// End returns the offset just past the citation.
func (c Citation) End() int {
	return c.TextOffset + c.TextLength
}

// Components holds the parsed fields of a citation. Neutral citations fill
// Court and Number; law reports fill Reporter, Volume and Page.
type Components struct {
	Year     string `json:"year,omitempty"`
	Court    string `json:"court,omitempty"`
	Number   string `json:"number,omitempty"`
	Division string `json:"division,omitempty"`
	Reporter string `json:"reporter,omitempty"`
	Volume   string `json:"volume,omitempty"`
	Page     string `json:"page,omitempty"`
}
