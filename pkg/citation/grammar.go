package citation

import (
	"regexp"
	"sort"
	"strings"

	"github.com/coolbeans/juriscope/pkg/types"
)

// Grammar recognises one citation format.
// Implementations must be safe for concurrent use.
type Grammar interface {
	// Name returns the human-readable grammar name (e.g., "UK neutral citation").
	Name() string

	// Jurisdiction returns the jurisdiction the grammar belongs to, or ""
	// for grammars shared across jurisdictions.
	Jurisdiction() types.Jurisdiction

	// Type returns the citation type assigned to matches.
	Type() CitationType

	// Priority ranks the grammar against others matching at the same position.
	Priority() Priority

	// MatchAt attempts a match anchored at byte offset pos of text. It
	// never matches text before pos.
	MatchAt(text string, pos int) (Citation, bool)
}

// matchAnchored runs an anchored pattern ("^...") against text[pos:] and
// returns submatch indices relative to text, or nil.
func matchAnchored(pattern *regexp.Regexp, text string, pos int) []int {
	if pos < 0 || pos >= len(text) {
		return nil
	}
	loc := pattern.FindStringSubmatchIndex(text[pos:])
	if loc == nil {
		return nil
	}
	for i := range loc {
		if loc[i] >= 0 {
			loc[i] += pos
		}
	}
	return loc
}

// group returns submatch n of loc, or "" when it did not participate.
func group(text string, loc []int, n int) string {
	if 2*n+1 >= len(loc) || loc[2*n] < 0 {
		return ""
	}
	return text[loc[2*n]:loc[2*n+1]]
}

// newCitation builds a citation for the whole match in loc.
func newCitation(g Grammar, text string, loc []int) Citation {
	return Citation{
		RawText:      text[loc[0]:loc[1]],
		Type:         g.Type(),
		Jurisdiction: g.Jurisdiction(),
		Grammar:      g.Name(),
		Priority:     g.Priority(),
		TextOffset:   loc[0],
		TextLength:   loc[1] - loc[0],
	}
}

// alternation builds a regexp alternation from literal codes. Longer codes
// come first so that "FCAFC" is preferred over "FCA", and any whitespace
// inside a code matches one or more whitespace characters.
func alternation(codes []string) string {
	sorted := append([]string(nil), codes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	parts := make([]string, 0, len(sorted))
	for _, code := range sorted {
		words := strings.Fields(code)
		for i, word := range words {
			words[i] = regexp.QuoteMeta(word)
		}
		parts = append(parts, strings.Join(words, `\s+`))
	}
	return strings.Join(parts, "|")
}

// compact collapses internal whitespace runs to single spaces.
func compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
