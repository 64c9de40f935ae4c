// Package normalize strips formatting artifacts from raw judgment text and
// produces clean prose paragraphs for segmentation and citation extraction.
package normalize

import (
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultMinHeaderRepeats is how many times a short line must repeat before
// it is treated as a running header or footer.
const DefaultMinHeaderRepeats = 3

// maxHeaderLength is the longest line still considered a header candidate.
const maxHeaderLength = 80

// minHeaderGap is the fewest non-blank lines between two occurrences of a
// running header that recurs at regular intervals.
const minHeaderGap = 6

var (
	// pageOfPattern matches "Page 3 of 41" page banners.
	pageOfPattern = regexp.MustCompile(`(?i)^page\s+\d+\s+of\s+\d+$`)

	// versionPattern matches database version markers like "Version No 0: 12 Mar 2021 (10:15 hrs)".
	versionPattern = regexp.MustCompile(`(?i)^version\s+no\.?\s*\d+`)

	// standalonePageNumberPattern matches lines holding only a page number, optionally dashed.
	standalonePageNumberPattern = regexp.MustCompile(`^(?:-\s*)?\d{1,4}(?:\s*-)?$`)

	// citationLinePattern matches a line holding nothing but a neutral citation.
	citationLinePattern = regexp.MustCompile(`^\[\d{4}\]\s+[A-Z][A-Za-z]*(?:\s+[A-Z][A-Za-z]*)?\s+\d+$`)

	// hyphenatedLineEndPattern matches lines ending with a hyphen (word break across lines).
	hyphenatedLineEndPattern = regexp.MustCompile(`[a-zA-Z]-$`)

	// lastWordPattern captures the word fragment before a trailing hyphen.
	lastWordPattern = regexp.MustCompile(`([A-Za-z]+)-$`)
)

// endOfDocumentMarker ends the judgment body in database exports.
const endOfDocumentMarker = "end of document"

// dictionaryHyphenPrefixes are prefixes whose hyphen belongs to the word.
var dictionaryHyphenPrefixes = map[string]bool{
	"self": true, "non": true, "co": true, "ex": true, "quasi": true,
	"pre": true, "post": true, "anti": true, "cross": true, "well": true,
	"counter": true, "sub": true, "semi": true, "multi": true, "inter": true,
}

// characterFolds maps typographic characters to their plain equivalents.
// NFKC already folds ligatures and compatibility spaces.
var characterFolds = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\u2018", "'", "\u2019", "'", "\u201a", "'", "\u2032", "'",
	"\u201c", `"`, "\u201d", `"`, "\u201e", `"`, "\u2033", `"`,
	"\u2013", "-", "\u2012", "-", "\u2010", "-", "\u2011", "-",
	"\u2014", " - ", "\u2015", " - ",
	"\u00ad", "",
	"\u200b", "", "\u200c", "", "\u200d", "", "\ufeff", "",
	"\t", " ",
)

// Stats counts the artifacts removed by one Normalize call.
type Stats struct {
	DroppedLines int
	HeaderLines  int
	HyphenFixes  int
	Truncated    bool
}

// Normalizer cleans raw judgment text. A Normalizer holds only
// configuration and is safe for concurrent use.
type Normalizer struct {
	minHeaderRepeats int
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithMinHeaderRepeats sets the running header/footer repeat threshold.
// Values below 2 disable header/footer detection.
func WithMinHeaderRepeats(repeats int) Option {
	return func(n *Normalizer) {
		n.minHeaderRepeats = repeats
	}
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{minHeaderRepeats: DefaultMinHeaderRepeats}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize returns the cleaned form of raw: paragraphs of single-spaced
// prose separated by one blank line. Whitespace-only input yields "".
// Normalizing already normalized text returns it unchanged.
func (n *Normalizer) Normalize(raw string) string {
	text, _ := n.NormalizeWithStats(raw)
	return text
}

// NormalizeWithStats is Normalize that also reports what was removed.
func (n *Normalizer) NormalizeWithStats(raw string) (string, Stats) {
	var stats Stats
	if strings.TrimSpace(raw) == "" {
		return "", stats
	}

	text := foldUnicode(raw)
	lines := strings.Split(text, "\n")

	lines, stats.Truncated = cutAtEndOfDocument(lines)
	lines, stats.HeaderLines = n.dropRunningHeaders(lines)
	lines, stats.DroppedLines = dropBoilerplateLines(lines)
	lines, stats.HyphenFixes = rejoinHyphenatedLines(lines)

	paragraphs := collapseParagraphs(lines)

	// Joining lines can assemble a paragraph that matches a line-level
	// artifact, so the line filters run once more over whole paragraphs.
	paragraphs, _ = cutAtEndOfDocument(paragraphs)
	paragraphs, dropped := dropBoilerplateLines(paragraphs)
	stats.DroppedLines += dropped
	paragraphs, dropped = n.dropRunningHeaders(paragraphs)
	stats.HeaderLines += dropped

	return strings.Join(paragraphs, "\n\n"), stats
}

// foldUnicode applies NFKC and folds typographic punctuation, invisible
// characters and control characters.
func foldUnicode(text string) string {
	text = norm.NFKC.String(text)
	text = characterFolds.Replace(text)
	return strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0) {
			return -1
		}
		return r
	}, text)
}

func cutAtEndOfDocument(lines []string) ([]string, bool) {
	for i, line := range lines {
		if strings.EqualFold(strings.TrimSpace(line), endOfDocumentMarker) {
			return lines[:i], true
		}
	}
	return lines, false
}

// isBoilerplateLine reports whether a trimmed line is a page banner, version
// marker or standalone page number.
func isBoilerplateLine(trimmed string) bool {
	return pageOfPattern.MatchString(trimmed) ||
		versionPattern.MatchString(trimmed) ||
		standalonePageNumberPattern.MatchString(trimmed)
}

func dropBoilerplateLines(lines []string) ([]string, int) {
	kept := make([]string, 0, len(lines))
	dropped := 0
	for _, line := range lines {
		if isBoilerplateLine(collapseSpaces(line)) {
			dropped++
			continue
		}
		kept = append(kept, line)
	}
	return kept, dropped
}

// dropRunningHeaders removes running headers and footers: short lines
// repeated at least minHeaderRepeats times either at regular intervals or
// next to page numbers and page banners. Neutral-citation-only lines that
// repeat at all are dropped too, since database exports stamp the case
// citation on every page. Rounds repeat until nothing more is dropped.
func (n *Normalizer) dropRunningHeaders(lines []string) ([]string, int) {
	if n.minHeaderRepeats < 2 {
		return lines, 0
	}

	total := 0
	for {
		var dropped int
		lines, dropped = n.dropHeaderRound(lines)
		if dropped == 0 {
			return lines, total
		}
		total += dropped
	}
}

func (n *Normalizer) dropHeaderRound(lines []string) ([]string, int) {
	keys := make([]string, len(lines))
	ordinals := make([]int, len(lines))
	positions := make(map[string][]int)
	var pageMarkers []bool

	for i, line := range lines {
		key := collapseSpaces(line)
		keys[i] = key
		if key == "" {
			ordinals[i] = -1
			continue
		}
		ordinal := len(pageMarkers)
		ordinals[i] = ordinal
		marker := isBoilerplateLine(key)
		pageMarkers = append(pageMarkers, marker)
		if !marker && len(key) <= maxHeaderLength {
			positions[key] = append(positions[key], ordinal)
		}
	}

	headers := make(map[string]bool)
	for key, at := range positions {
		if n.isRunningHeader(key, at, pageMarkers) {
			headers[key] = true
		}
	}
	if len(headers) == 0 {
		return lines, 0
	}

	kept := make([]string, 0, len(lines))
	dropped := 0
	for i, line := range lines {
		if ordinals[i] >= 0 && headers[keys[i]] {
			dropped++
			continue
		}
		kept = append(kept, line)
	}
	return kept, dropped
}

// isRunningHeader decides whether the line key, found at the given
// non-blank line ordinals, is a header or footer.
func (n *Normalizer) isRunningHeader(key string, at []int, pageMarkers []bool) bool {
	if len(at) >= 2 && citationLinePattern.MatchString(key) {
		return true
	}
	if len(at) < n.minHeaderRepeats {
		return false
	}
	return regularlySpaced(at) || besidePageMarkers(at, pageMarkers)
}

// regularlySpaced reports whether every gap between occurrences is at least
// minHeaderGap lines and close to the median gap.
func regularlySpaced(at []int) bool {
	gaps := make([]int, 0, len(at)-1)
	for i := 1; i < len(at); i++ {
		gap := at[i] - at[i-1]
		if gap < minHeaderGap {
			return false
		}
		gaps = append(gaps, gap)
	}

	sorted := slices.Clone(gaps)
	slices.Sort(sorted)
	median := sorted[len(sorted)/2]
	tolerance := max(2, median/3)
	for _, gap := range gaps {
		if gap < median-tolerance || gap > median+tolerance {
			return false
		}
	}
	return true
}

// besidePageMarkers reports whether every occurrence, except at most one,
// sits directly before or after a page number, page banner or version
// marker. The header on the first page has no page number before it.
func besidePageMarkers(at []int, pageMarkers []bool) bool {
	beside := 0
	for _, i := range at {
		before := i > 0 && pageMarkers[i-1]
		after := i+1 < len(pageMarkers) && pageMarkers[i+1]
		if before || after {
			beside++
		}
	}
	return beside >= len(at)-1
}

// rejoinHyphenatedLines merges lines where a word is split across a line
// break with a hyphen. For example:
//
//	"the appellant's submis-"
//	"sion was"
//
// becomes "the appellant's submission was". The hyphen is kept when the
// fragment is a dictionary prefix such as "self-" or "non-".
func rejoinHyphenatedLines(lines []string) ([]string, int) {
	if len(lines) == 0 {
		return lines, 0
	}

	var result []string
	fixes := 0
	current := lines[0]
	for i := 1; i < len(lines); i++ {
		trimmedCurrent := strings.TrimRight(current, " ")
		trimmedNext := strings.TrimSpace(lines[i])

		// Only rejoin when the next line continues with a lowercase letter.
		if hyphenatedLineEndPattern.MatchString(trimmedCurrent) &&
			trimmedNext != "" && trimmedNext[0] >= 'a' && trimmedNext[0] <= 'z' {
			if keepsHyphen(trimmedCurrent) {
				current = trimmedCurrent + trimmedNext
			} else {
				current = trimmedCurrent[:len(trimmedCurrent)-1] + trimmedNext
			}
			fixes++
			continue
		}

		result = append(result, current)
		current = lines[i]
	}
	result = append(result, current)
	return result, fixes
}

func keepsHyphen(line string) bool {
	match := lastWordPattern.FindStringSubmatch(line)
	if match == nil {
		return false
	}
	return dictionaryHyphenPrefixes[strings.ToLower(match[1])]
}

// collapseParagraphs joins non-blank runs of lines into single-spaced
// paragraphs.
func collapseParagraphs(lines []string) []string {
	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = current[:0]
		}
	}
	for _, line := range lines {
		collapsed := collapseSpaces(line)
		if collapsed == "" {
			flush()
			continue
		}
		current = append(current, collapsed)
	}
	flush()
	return paragraphs
}

func collapseSpaces(line string) string {
	return strings.Join(strings.Fields(line), " ")
}
