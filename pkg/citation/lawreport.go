package citation

import (
	"fmt"
	"regexp"

	"github.com/coolbeans/juriscope/pkg/types"
)

// LawReportGrammar recognises citations of printed law report series from
// any jurisdiction, since courts cite foreign and historical reports freely:
//   - Square-bracket year: "[1992] 2 AC 1", "[2003] QB 195", "[2015] 2 SLR(R) 456"
//   - Round-bracket year with volume: "(2005) 224 CLR 123", "(1990) 900 F 2d 1"
type LawReportGrammar struct {
	reporters *ReporterTable

	// Captures: (1) year, (2) optional volume, (3) reporter, (4) page
	squarePattern *regexp.Regexp

	// Captures: (1) year, (2) volume, (3) reporter, (4) page
	roundPattern *regexp.Regexp
}

// NewLawReportGrammar creates a law report grammar over the report series
// listed in table.
func NewLawReportGrammar(table *ReporterTable) (*LawReportGrammar, error) {
	reports := table.Codes(KindReport, "")
	if len(reports) == 0 {
		return nil, fmt.Errorf("no law report series registered")
	}
	reporterPattern := alternation(reports)

	return &LawReportGrammar{
		reporters:     table,
		squarePattern: regexp.MustCompile(`^\[(\d{4})\]\s+(?:(\d{1,3})\s+)?(` + reporterPattern + `)\s+(\d{1,5})\b`),
		roundPattern:  regexp.MustCompile(`^\((\d{4})\)\s+(\d{1,4})\s+(` + reporterPattern + `)\s+(\d{1,5})\b`),
	}, nil
}

// Name returns the grammar name.
func (g *LawReportGrammar) Name() string {
	return TypeLawReport.Description()
}

// Jurisdiction returns "": the grammar is shared across jurisdictions.
func (g *LawReportGrammar) Jurisdiction() types.Jurisdiction {
	return ""
}

// Type returns TypeLawReport.
func (g *LawReportGrammar) Type() CitationType {
	return TypeLawReport
}

// Priority returns PriorityLawReport.
func (g *LawReportGrammar) Priority() Priority {
	return PriorityLawReport
}

// MatchAt matches a law report citation starting at pos.
func (g *LawReportGrammar) MatchAt(text string, pos int) (Citation, bool) {
	if pos >= len(text) {
		return Citation{}, false
	}

	var loc []int
	switch text[pos] {
	case '[':
		loc = matchAnchored(g.squarePattern, text, pos)
	case '(':
		loc = matchAnchored(g.roundPattern, text, pos)
	}
	if loc == nil {
		return Citation{}, false
	}

	citation := newCitation(g, text, loc)
	citation.Components = Components{
		Year:     group(text, loc, 1),
		Volume:   group(text, loc, 2),
		Reporter: compact(group(text, loc, 3)),
		Page:     group(text, loc, 4),
	}
	citation.Origin = g.reporters.Classify(citation.Components.Reporter)
	return citation, true
}
