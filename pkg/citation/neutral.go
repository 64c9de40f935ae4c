package citation

import (
	"fmt"
	"regexp"

	"github.com/coolbeans/juriscope/pkg/types"
)

// ukDivisions are the bracketed division or chamber suffixes that follow the
// case number in UK neutral citations: "[2020] EWHC 123 (Ch)".
var ukDivisions = []string{
	"Admin", "Admlty", "Ch", "Comm", "Costs", "Fam", "IPEC", "KB", "Mercantile", "Pat", "QB",
	"SCCO", "TCC", "AAC", "IAC", "LC", "TC", "GRC",
}

// NeutralGrammar recognises court-assigned neutral citations of one
// jurisdiction: "[year] COURT number", e.g. "[2020] UKSC 12",
// "[2009] HCA 14" or "[2019] SGCA 5". Singapore court codes may carry a
// bracketed suffix such as "[2021] SGHC(I) 3".
type NeutralGrammar struct {
	jurisdiction types.Jurisdiction
	citationType CitationType
	courts       []string

	// Captures: (1) year, (2) court, (3) court suffix, (4) number, (5) division
	pattern *regexp.Regexp
}

// NewNeutralGrammar creates the neutral citation grammar of jurisdiction
// from the court codes the table lists for it.
func NewNeutralGrammar(jurisdiction types.Jurisdiction, table *ReporterTable) (*NeutralGrammar, error) {
	citationType, ok := neutralTypeFor(jurisdiction)
	if !ok {
		return nil, &ConfigError{Jurisdiction: jurisdiction, Err: ErrUnknownJurisdiction}
	}
	courts := table.Codes(KindCourt, OriginOf(jurisdiction))
	if len(courts) == 0 {
		return nil, fmt.Errorf("no court codes registered for jurisdiction %s", jurisdiction)
	}

	divisions := ""
	if jurisdiction == types.JurisdictionUK {
		divisions = `(?:\s+\((` + alternation(ukDivisions) + `)\))?`
	}

	return &NeutralGrammar{
		jurisdiction: jurisdiction,
		citationType: citationType,
		courts:       courts,
		pattern: regexp.MustCompile(
			`^\[(\d{4})\]\s+(` + alternation(courts) + `)(?:\(([A-Z]{1,3})\))?\s+(\d{1,5})\b` + divisions,
		),
	}, nil
}

// NewUKNeutralGrammar creates the UK neutral citation grammar over the
// built-in court list.
func NewUKNeutralGrammar() *NeutralGrammar {
	return mustNeutralGrammar(types.JurisdictionUK)
}

// NewAUNeutralGrammar creates the Australian medium neutral citation grammar
// over the built-in court list.
func NewAUNeutralGrammar() *NeutralGrammar {
	return mustNeutralGrammar(types.JurisdictionAU)
}

// NewSGNeutralGrammar creates the Singapore neutral citation grammar over
// the built-in court list.
func NewSGNeutralGrammar() *NeutralGrammar {
	return mustNeutralGrammar(types.JurisdictionSG)
}

func mustNeutralGrammar(jurisdiction types.Jurisdiction) *NeutralGrammar {
	grammar, err := NewNeutralGrammar(jurisdiction, defaultReporterTable)
	if err != nil {
		panic(err)
	}
	return grammar
}

// Name returns the grammar name.
func (g *NeutralGrammar) Name() string {
	return g.citationType.Description()
}

// Jurisdiction returns the grammar's jurisdiction.
func (g *NeutralGrammar) Jurisdiction() types.Jurisdiction {
	return g.jurisdiction
}

// Type returns the neutral citation type of the jurisdiction.
func (g *NeutralGrammar) Type() CitationType {
	return g.citationType
}

// Priority returns PriorityNeutral.
func (g *NeutralGrammar) Priority() Priority {
	return PriorityNeutral
}

// Courts returns the court codes the grammar accepts.
func (g *NeutralGrammar) Courts() []string {
	return append([]string(nil), g.courts...)
}

// MatchAt matches a neutral citation starting at pos.
func (g *NeutralGrammar) MatchAt(text string, pos int) (Citation, bool) {
	loc := matchAnchored(g.pattern, text, pos)
	if loc == nil {
		return Citation{}, false
	}

	citation := newCitation(g, text, loc)
	court := compact(group(text, loc, 2))
	if suffix := group(text, loc, 3); suffix != "" {
		court += "(" + suffix + ")"
	}
	citation.Components = Components{
		Year:     group(text, loc, 1),
		Court:    court,
		Number:   group(text, loc, 4),
		Division: group(text, loc, 5),
	}
	citation.Origin = OriginOf(g.jurisdiction)
	return citation, true
}
