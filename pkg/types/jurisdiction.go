// Package types holds the shared data model of the corpus: jurisdictions,
// courts and the judicial documents that flow through the pipeline.
package types

import "strings"

// Jurisdiction is the apex-court jurisdiction a judgment was delivered in.
// Values are upper-case tags; tags outside the known set are carried through
// unchanged so that configuration problems surface at the citation step.
type Jurisdiction string

// Supported jurisdictions.
const (
	JurisdictionUK Jurisdiction = "UK"
	JurisdictionAU Jurisdiction = "AU"
	JurisdictionSG Jurisdiction = "SG"
)

// jurisdictionAliases maps accepted spellings to their canonical tag.
var jurisdictionAliases = map[string]Jurisdiction{
	"UK":             JurisdictionUK,
	"GB":             JurisdictionUK,
	"GBR":            JurisdictionUK,
	"UNITED KINGDOM": JurisdictionUK,
	"AU":             JurisdictionAU,
	"AUS":            JurisdictionAU,
	"AUSTRALIA":      JurisdictionAU,
	"SG":             JurisdictionSG,
	"SGP":            JurisdictionSG,
	"SINGAPORE":      JurisdictionSG,
}

// AllJurisdictions returns the supported jurisdictions in display order.
func AllJurisdictions() []Jurisdiction {
	return []Jurisdiction{JurisdictionUK, JurisdictionAU, JurisdictionSG}
}

// ParseJurisdiction canonicalises a jurisdiction tag. The boolean reports
// whether the tag is one of the supported jurisdictions; unknown tags are
// returned upper-cased.
func ParseJurisdiction(value string) (Jurisdiction, bool) {
	key := strings.ToUpper(strings.TrimSpace(value))
	if jurisdiction, ok := jurisdictionAliases[key]; ok {
		return jurisdiction, true
	}
	return Jurisdiction(key), false
}

// IsKnown reports whether the jurisdiction is one of the supported ones.
func (j Jurisdiction) IsKnown() bool {
	switch j {
	case JurisdictionUK, JurisdictionAU, JurisdictionSG:
		return true
	}
	return false
}

// DisplayName returns the human-readable jurisdiction name.
func (j Jurisdiction) DisplayName() string {
	switch j {
	case JurisdictionUK:
		return "United Kingdom"
	case JurisdictionAU:
		return "Australia"
	case JurisdictionSG:
		return "Singapore"
	}
	return string(j)
}

func (j Jurisdiction) String() string {
	return string(j)
}
