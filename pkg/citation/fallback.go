package citation

import (
	"regexp"
	"strings"

	"github.com/coolbeans/juriscope/pkg/types"
)

// FallbackGrammar is a loose grammar for citation-like references no other
// grammar recognises: foreign neutral citations ("[2019] NZSC 5"), unknown
// report series ("(1998) 12 Foo LJ 34") and citations damaged by upstream
// text corruption ("[2020]UKSC 12"). Its matches are counted separately and
// its imprecision is accepted.
type FallbackGrammar struct {
	reporters *ReporterTable

	// Captures: (1) year, (2) code, (3) number
	bracketCodePattern *regexp.Regexp

	// Captures: (1) year, (2) volume, (3) reporter, (4) page
	bracketVolumePattern *regexp.Regexp

	// Captures: (1) year, (2) volume, (3) reporter, (4) page
	roundPattern *regexp.Regexp
}

// minFallbackCodeLength is the shortest accepted court or reporter code.
const minFallbackCodeLength = 2

// NewFallbackGrammar creates the fallback grammar. table classifies the
// origin of matched codes.
func NewFallbackGrammar(table *ReporterTable) *FallbackGrammar {
	return &FallbackGrammar{
		reporters: table,

		// "[2019] NZSC 5", "[2020]UKSC12", "[2010] EWCA Civ 1"
		bracketCodePattern: regexp.MustCompile(
			`^\[\s*(\d{4})\s*\]\s*([A-Z][A-Za-z]+(?:\s[A-Z][a-z]+)?(?:\s?\([A-Za-z]+\))?)\s*(\d{1,5})\b`),

		// "[2001] 3 SCR 537", "[1995] 1 Foo Rep 10"
		bracketVolumePattern: regexp.MustCompile(
			`^\[\s*(\d{4})\s*\]\s*(\d{1,3})\s+([A-Z][A-Za-z&']*(?:\s[A-Z][A-Za-z&']*)*(?:\s?\([A-Za-z]+\))?)\s+(\d{1,5})\b`),

		// "(2004) 120 LQR 354", "(1990) 12 Cr App R (S) 4", "(1999) 5 F 3d 7"
		roundPattern: regexp.MustCompile(
			`^\(\s*(\d{4})\s*\)\s*(\d{1,4})\s+([A-Z][A-Za-z&']*(?:\s(?:[A-Z][A-Za-z&']*|\d+(?:d|th|st|nd|rd)))*(?:\s?\([A-Za-z]+\))?)\s+(\d{1,5})\b`),
	}
}

// Name returns the grammar name.
func (g *FallbackGrammar) Name() string {
	return TypeFallback.Description()
}

// Jurisdiction returns "": the grammar is shared across jurisdictions.
func (g *FallbackGrammar) Jurisdiction() types.Jurisdiction {
	return ""
}

// Type returns TypeFallback.
func (g *FallbackGrammar) Type() CitationType {
	return TypeFallback
}

// Priority returns PriorityFallback.
func (g *FallbackGrammar) Priority() Priority {
	return PriorityFallback
}

// MatchAt matches a loose citation starting at pos. The longest of the
// fallback forms wins.
func (g *FallbackGrammar) MatchAt(text string, pos int) (Citation, bool) {
	if pos >= len(text) {
		return Citation{}, false
	}

	var best Citation
	found := false
	consider := func(citation Citation, code string) {
		if len(strings.ReplaceAll(code, " ", "")) < minFallbackCodeLength {
			return
		}
		if !found || citation.TextLength > best.TextLength {
			best, found = citation, true
		}
	}

	switch text[pos] {
	case '[':
		if loc := matchAnchored(g.bracketCodePattern, text, pos); loc != nil {
			citation := newCitation(g, text, loc)
			citation.Components = Components{
				Year:   group(text, loc, 1),
				Court:  compact(group(text, loc, 2)),
				Number: group(text, loc, 3),
			}
			citation.Origin = g.reporters.Classify(citation.Components.Court)
			consider(citation, citation.Components.Court)
		}
		if loc := matchAnchored(g.bracketVolumePattern, text, pos); loc != nil {
			consider(g.reportCitation(text, loc), group(text, loc, 3))
		}
	case '(':
		if loc := matchAnchored(g.roundPattern, text, pos); loc != nil {
			consider(g.reportCitation(text, loc), group(text, loc, 3))
		}
	}
	return best, found
}

func (g *FallbackGrammar) reportCitation(text string, loc []int) Citation {
	citation := newCitation(g, text, loc)
	citation.Components = Components{
		Year:     group(text, loc, 1),
		Volume:   group(text, loc, 2),
		Reporter: compact(group(text, loc, 3)),
		Page:     group(text, loc, 4),
	}
	citation.Origin = g.reporters.Classify(citation.Components.Reporter)
	return citation
}
