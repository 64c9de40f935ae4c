package corpus

import (
	"regexp"
	"strings"

	"github.com/coolbeans/juriscope/pkg/citation"
	"github.com/coolbeans/juriscope/pkg/types"
)

var (
	// bannerPattern matches a section banner: a dashed rule, the section
	// name and another dashed rule, each on its own line.
	bannerPattern = regexp.MustCompile(`(?im)^[ \t]*-{10,}[ \t]*\n[ \t]*(HEADNOTES|CORE JUDGMENT|FOOTNOTES)[ \t]*\n[ \t]*-{10,}[ \t]*$`)

	// headerLinePattern matches a metadata header line, e.g. "CASE: ...".
	headerLinePattern = regexp.MustCompile(`(?i)^\s*(CASE|COURT|JURISDICTION|Decision\s+Date|Date)\s*:\s*(.*?)\s*$`)

	// rulePattern matches separator lines of "=" or "-".
	rulePattern = regexp.MustCompile(`^\s*(?:={3,}|-{3,})\s*$`)

	yearPattern = regexp.MustCompile(`\b(1[89]\d{2}|20\d{2})\b`)
)

// Header holds metadata read from a file's header lines.
type Header struct {
	Case         string
	Court        string
	Jurisdiction string
	Date         string
}

// Sections are the banner-delimited parts of a prepared judgment file.
// Body holds the whole text after the header when no banner is present.
type Sections struct {
	Headnotes string
	Core      string
	Footnotes string
	Body      string
	Bannered  bool
}

// Text returns the text that is analyzed: core judgment and footnotes for
// bannered files, the body otherwise. Headnotes are written by reporters,
// not by the court, and are excluded.
func (s Sections) Text() string {
	if !s.Bannered {
		return s.Body
	}
	parts := make([]string, 0, 2)
	for _, part := range []string{s.Core, s.Footnotes} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "\n\n")
}

// ParseContent splits file content into header metadata and sections.
// Header lines are read from the leading block of the file, before the
// first line of prose or the first banner.
func ParseContent(content string) (Header, Sections) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	var header Header
	lines := strings.SplitAfter(content, "\n")
	offset := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || (rulePattern.MatchString(trimmed) && !startsBanner(content[offset:])) {
			offset += len(line)
			continue
		}
		match := headerLinePattern.FindStringSubmatch(trimmed)
		if match == nil {
			break
		}
		switch strings.ToUpper(strings.Join(strings.Fields(match[1]), " ")) {
		case "CASE":
			header.Case = match[2]
		case "COURT":
			header.Court = match[2]
		case "JURISDICTION":
			header.Jurisdiction = match[2]
		case "DECISION DATE", "DATE":
			if header.Date == "" {
				header.Date = match[2]
			}
		}
		offset += len(line)
	}

	body := content[offset:]
	sections := splitSections(body)
	if header.Date == "" {
		header.Date = findDecisionDate(sections.Headnotes)
	}
	return header, sections
}

func startsBanner(rest string) bool {
	loc := bannerPattern.FindStringIndex(rest)
	return loc != nil && strings.TrimSpace(rest[:loc[0]]) == ""
}

func splitSections(body string) Sections {
	banners := bannerPattern.FindAllStringSubmatchIndex(body, -1)
	if len(banners) == 0 {
		return Sections{Body: strings.TrimSpace(body)}
	}

	sections := Sections{Bannered: true}
	for i, loc := range banners {
		end := len(body)
		if i+1 < len(banners) {
			end = banners[i+1][0]
		}
		text := strings.TrimSpace(body[loc[1]:end])
		switch strings.ToUpper(body[loc[2]:loc[3]]) {
		case "HEADNOTES":
			sections.Headnotes = text
		case "CORE JUDGMENT":
			sections.Core = text
		case "FOOTNOTES":
			sections.Footnotes = text
		}
	}
	return sections
}

var datePattern = regexp.MustCompile(`(?im)^\s*Decision\s+Date\s*:\s*(.+?)\s*$|\b(\d{1,2}\s+(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4})\b`)

// findDecisionDate returns the "Decision Date:" line of the headnotes or,
// failing that, the last full date they mention.
func findDecisionDate(headnotes string) string {
	last := ""
	for _, match := range datePattern.FindAllStringSubmatch(headnotes, -1) {
		if match[1] != "" {
			return match[1]
		}
		last = match[2]
	}
	return last
}

var titleExtractor = citation.NewExtractor(citation.DefaultGrammarSet())

// neutralCitationIn returns the first neutral citation in text. The
// document jurisdiction only breaks ties between grammars, so a single
// pass finds neutral citations of every jurisdiction.
func neutralCitationIn(text string) (citation.Citation, bool) {
	citations, err := titleExtractor.Extract(text, types.JurisdictionUK)
	if err != nil {
		return citation.Citation{}, false
	}
	for _, found := range citations {
		if found.Priority == citation.PriorityNeutral {
			return found, true
		}
	}
	return citation.Citation{}, false
}

// cleanTitle removes a trailing neutral citation and anything after it.
func cleanTitle(title string, neutral citation.Citation, found bool) string {
	if found && neutral.TextOffset > 0 && neutral.End() <= len(title) {
		title = title[:neutral.TextOffset]
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(title), ",;"))
}

// yearOf returns the year of a neutral citation, else the last year in
// date.
func yearOf(neutral citation.Citation, found bool, date string) string {
	if found && neutral.Components.Year != "" {
		return neutral.Components.Year
	}
	years := yearPattern.FindAllString(date, -1)
	if len(years) == 0 {
		return ""
	}
	return years[len(years)-1]
}
