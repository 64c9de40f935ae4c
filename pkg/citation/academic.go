package citation

import (
	"regexp"
	"sort"
)

// Span is a half-open byte range of a text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// journalPatterns match journal article references. They are matched
// case-insensitively.
var journalPatterns = compileAll(`(?i)`,
	// (year) vol Multi Word Journal-Name page
	`\(\d{4}\)\s+\d+\s+[A-Z][A-Za-z]+(?:\s+[A-Za-z]+)+\s+(?:Law|Legal|Journal|Review|Quarterly|University|Studies)\s+[A-Za-z]*\s*\d*`,
	`\d+\s+(?:Law\s+)?(?:Journal|Review|Quarterly|L\.?\s*J\.?|L\.?\s*Rev\.?|L\.?\s*Q\.?)`,
	`\b(?:LQR|MLR|CLJ|OJLS|CLP|Sing\.?\s*L\.?\s*Rev\.?|SJLS)\b`,
	`\b(?:Law\s+Quarterly\s+Review|Modern\s+Law\s+Review|Cambridge\s+Law\s+Journal|Oxford\s+Journal\s+of\s+Legal\s+Studies)\b`,
	`\b(?:Yale\s+L\.?\s*J\.?|Harv\.?\s*L\.?\s*Rev\.?|Stan\.?\s*L\.?\s*Rev\.?)`,
	`\b(?:Colum\.?\s*L\.?\s*Rev\.?|Mich\.?\s*L\.?\s*Rev\.?|Cornell\s+L\.?\s*Rev\.?)`,
	`\b(?:MULR|UNSWLJ|SydLR|UQLJ|UWALR|AdelLR|MonLR|MelbULawRw)\b`,
	`\b(?:AJLL|ABLR|AIAL\s+Forum|Fed(?:eral)?\s+L(?:aw)?\s+Rev(?:iew)?)\b`,
	`[A-Z][a-z]+,\s*"[^"]+"\s*\(\d{4}\)`,
	`\b(?:SAcLJ|Mal\.?\s*L\.?\s*R\.?|LMCLQ|JBL|ICLQ|AJCL|Sing\s+L\s+Rev)\b`,
	`"[^"]{10,}"\s*\(\d{4}\)\s+\d*\s*(?:SAcLJ|LQR|MLR|CLJ|OJLS|Sing\s+L\s+Rev|SJLS|LMCLQ|JBL|ICLQ)`,
	`"[^"]{15,}"\s*\(\d{4}\)`,
)

// bookPatterns match treatises and monographs. They are case-sensitive
// because several treatise names are also common surnames.
var bookPatterns = compileAll(``,
	`[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*,\s+[A-Z][A-Za-z\s:]+\([A-Za-z\s]+,\s*\d{4}\)`,
	`[A-Z][a-z]+,\s+[A-Z][A-Za-z\s]+\(\d+(?:st|nd|rd|th)\s+[Ee]d(?:ition)?,\s*\d{4}\)`,
	`\b(?:Halsbury|Chitty|Dicey|McGregor|Treitel|Anson|Cheshire|Winfield|Salmond)\b`,
	`\b(?:Snell|Bowstead|Phipson|Archbold|Lewin|Scrutton|Gatley|Keating)\b`,
	`\b(?:MacGillivray|Underhill|Spry|Bennion|Colinvaux|Williston|Corbin)\b`,
	`\b(?:Oppenheim|Brownlie|Pomeroy|Craies|Stroud|Odgers)\b`,
	`\b(?:Clerk\s*&\s*Lindsell|Goff\s*&\s*Jones|Spencer\s+Bower|Smith\s*&\s*Hogan)\b`,
	`\b(?:Mustill\s*&\s*Boyd|Megarry\s*&\s*Wade|Wade\s*&\s*Forsyth|Cross\s*&\s*Tapper)\b`,
	`\b(?:Bullen\s*&\s*Leake|Charlesworth\s*&\s*Percy|de\s+Smith)\b`,
	`\bBenjamin'?s?\s+(?:Sale|on\s+Sale)`,
	`\bFleming'?s?\s+(?:Law\s+of\s+Torts|Torts)`,
	`\bGower'?s?\s+(?:Principles|Company|Modern\s+Company)`,
	`\bSingapore\s+Civil\s+Procedure\b`,
	`\bMallal'?s?\s+Digest\b`,
	`\((?:Oxford\s+University\s+Press|Cambridge\s+University\s+Press|Hart\s+Publishing|Sweet\s*&\s*Maxwell|LexisNexis|Academy\s+Publishing|Butterworths|Thomson\s+Reuters|Clarendon\s+Press|Stevens|Law\s+Book\s+Co),\s*(?:\d+(?:st|nd|rd|th)\s+[Ee]d(?:ition)?,?\s*)?\d{4}\)`,
	`\([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?\s+University\s+Press,\s*(?:\d+(?:st|nd|rd|th)\s+[Ee]d(?:ition)?,?\s*)?\d{4}\)`,
	`\b(?:Ratanlal|Sarkar|Gour)\b(?:\s*&\s*(?:Dhirajlal|Thakore))?\S*\s+(?:Law\s+of|Indian|on\s+)`,
)

func compileAll(flags string, patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, pattern := range patterns {
		compiled[i] = regexp.MustCompile(flags + pattern)
	}
	return compiled
}

// FindAcademicReferences returns the spans of journal and treatise
// references in text. Overlapping matches are resolved by position, the
// longest match winning at equal starts.
func FindAcademicReferences(text string) []Span {
	var matches []Span
	for _, patterns := range [][]*regexp.Regexp{journalPatterns, bookPatterns} {
		for _, pattern := range patterns {
			for _, loc := range pattern.FindAllStringIndex(text, -1) {
				matches = append(matches, Span{Start: loc[0], End: loc[1]})
			}
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Start != matches[j].Start {
			return matches[i].Start < matches[j].Start
		}
		return matches[i].End-matches[i].Start > matches[j].End-matches[j].Start
	})

	var used []Span
	for _, match := range matches {
		overlapping := false
		for _, existing := range used {
			if match.Start < existing.End && match.End > existing.Start {
				overlapping = true
				break
			}
		}
		if !overlapping {
			used = append(used, match)
		}
	}
	return used
}

// CountAcademicReferences returns the number of distinct academic
// references in text.
func CountAcademicReferences(text string) int {
	return len(FindAcademicReferences(text))
}
