package citation

import (
	"unicode"
	"unicode/utf8"

	"github.com/coolbeans/juriscope/pkg/types"
)

// Extractor locates citations in normalized text with the grammars of a
// GrammarSet. It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	grammars *GrammarSet
}

// NewExtractor creates an extractor over grammars.
func NewExtractor(grammars *GrammarSet) *Extractor {
	return &Extractor{grammars: grammars}
}

// GrammarSet returns the extractor's grammar set.
func (e *Extractor) GrammarSet() *GrammarSet {
	return e.grammars
}

// Extract scans text once from left to right and returns the citations
// found, in increasing offset order and never overlapping.
//
// Candidate positions are token starts beginning with "[", "(" or a digit.
// Every grammar is tried at each candidate; the highest priority match
// wins, then the longest, then the one whose grammar belongs to the
// document's jurisdiction. Scanning resumes after the chosen match.
// Text that no grammar matches is not reported.
//
// A *ConfigError is returned when jurisdiction has no neutral grammar.
func (e *Extractor) Extract(text string, jurisdiction types.Jurisdiction) ([]Citation, error) {
	if _, err := e.grammars.ForJurisdiction(jurisdiction); err != nil {
		return nil, err
	}

	citations := []Citation{}
	grammars := e.grammars.grammars
	for pos := 0; pos < len(text); {
		if !isCandidate(text, pos) {
			pos++
			continue
		}

		best, found := Citation{}, false
		for _, grammar := range grammars {
			candidate, ok := grammar.MatchAt(text, pos)
			if !ok || candidate.TextLength == 0 {
				continue
			}
			if !found || preferred(candidate, best, jurisdiction) {
				best, found = candidate, true
			}
		}
		if !found {
			pos++
			continue
		}

		citations = append(citations, best)
		pos = best.End()
	}
	return citations, nil
}

// preferred reports whether candidate beats current at the same position.
func preferred(candidate, current Citation, jurisdiction types.Jurisdiction) bool {
	if candidate.Priority != current.Priority {
		return candidate.Priority > current.Priority
	}
	if candidate.TextLength != current.TextLength {
		return candidate.TextLength > current.TextLength
	}
	return candidate.Jurisdiction == jurisdiction && current.Jurisdiction != jurisdiction
}

// isCandidate reports whether a citation may start at pos: an opening
// bracket anywhere, or a digit at the start of a token.
func isCandidate(text string, pos int) bool {
	switch ch := text[pos]; {
	case ch == '[' || ch == '(':
		return true
	case ch >= '0' && ch <= '9':
		if pos == 0 {
			return true
		}
		previous, _ := utf8.DecodeLastRuneInString(text[:pos])
		return !unicode.IsLetter(previous) && !unicode.IsDigit(previous)
	}
	return false
}

// CountByType counts citations per type. Every type of AllTypes is present,
// with zero when no citation of that type was found.
func CountByType(citations []Citation) map[CitationType]int {
	counts := make(map[CitationType]int, len(AllTypes()))
	for _, citationType := range AllTypes() {
		counts[citationType] = 0
	}
	for _, citation := range citations {
		counts[citation.Type]++
	}
	return counts
}

// CountByOrigin counts citations per origin. Every origin of AllOrigins is
// present, with zero when no citation had that origin.
func CountByOrigin(citations []Citation) map[Origin]int {
	counts := make(map[Origin]int, len(AllOrigins()))
	for _, origin := range AllOrigins() {
		counts[origin] = 0
	}
	for _, citation := range citations {
		origin := citation.Origin
		if origin == "" {
			origin = OriginOther
		}
		counts[origin]++
	}
	return counts
}
