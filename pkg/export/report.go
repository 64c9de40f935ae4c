package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/coolbeans/juriscope/pkg/citation"
	"github.com/coolbeans/juriscope/pkg/pipeline"
	"github.com/coolbeans/juriscope/pkg/types"
)

// FormatRunReport formats a run summary for terminal output. With verbose
// set, every produced row is listed as well as the failures.
func FormatRunReport(report *pipeline.Report, verbose bool) string {
	var builder strings.Builder

	builder.WriteString("\nAnalysis Run Report\n")
	builder.WriteString(strings.Repeat("═", 70) + "\n")
	builder.WriteString(fmt.Sprintf("Run: %s\n", report.RunID))
	builder.WriteString(fmt.Sprintf("Succeeded: %d | Failed: %d | Skipped: %d | Duration: %s\n",
		report.Succeeded(), report.Failed(), report.Skipped, report.Duration.Round(1e6)))

	if counts := rowsByJurisdiction(report); len(counts) > 0 {
		builder.WriteString("Rows by jurisdiction: " + strings.Join(counts, " | ") + "\n")
	}
	builder.WriteString(strings.Repeat("─", 70) + "\n")

	if verbose {
		for _, row := range report.Dataset.Rows {
			line := fmt.Sprintf("  %-8s %-30s %-4s %-6s (%d words, %d citations)",
				"[OK]", row.DocumentID, row.Jurisdiction, row.Court, row.WordCount, row.CitationsTotal)
			if len(row.Flags) > 0 {
				line += " flags: " + strings.Join(row.Flags, ",")
			}
			builder.WriteString(line + "\n")
		}
	}
	builder.WriteString(FormatFailureReport(report.Failures))
	return builder.String()
}

// FormatFailureReport lists failures, one per line, in input order.
func FormatFailureReport(failures []pipeline.Failure) string {
	var builder strings.Builder
	for _, failure := range failures {
		builder.WriteString(fmt.Sprintf("  %-8s %-30s %-9s %-9s error: %s\n",
			"[FAIL]", failure.DocumentID, failure.Kind, failure.Stage, failure.Message()))
	}
	return builder.String()
}

// FormatFailuresJSON formats failures as JSON.
func FormatFailuresJSON(failures []pipeline.Failure) string {
	entries := make([]jsonFailure, len(failures))
	for i, failure := range failures {
		entries[i] = jsonFailure{
			DocumentID: failure.DocumentID,
			Stage:      failure.Stage,
			Kind:       failure.Kind,
			Error:      failure.Message(),
		}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data)
}

func rowsByJurisdiction(report *pipeline.Report) []string {
	counts := make(map[types.Jurisdiction]int)
	for _, row := range report.Dataset.Rows {
		counts[row.Jurisdiction]++
	}
	jurisdictions := make([]string, 0, len(counts))
	for jurisdiction := range counts {
		jurisdictions = append(jurisdictions, string(jurisdiction))
	}
	sort.Strings(jurisdictions)

	parts := make([]string, len(jurisdictions))
	for i, jurisdiction := range jurisdictions {
		parts[i] = fmt.Sprintf("%s %d", jurisdiction, counts[types.Jurisdiction(jurisdiction)])
	}
	return parts
}

// FormatCourtTable formats the court registry as a table.
func FormatCourtTable(courts []types.Court) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("%-8s %-14s %s\n", "CODE", "JURISDICTION", "NAME"))
	builder.WriteString(strings.Repeat("─", 70) + "\n")
	for _, court := range courts {
		builder.WriteString(fmt.Sprintf("%-8s %-14s %s\n", court.Code, court.Jurisdiction, court.Name))
	}
	builder.WriteString(fmt.Sprintf("\nTotal: %d courts\n", len(courts)))
	return builder.String()
}

// FormatGrammarTable formats the grammars of a set as a table, followed by
// the reporter table size.
func FormatGrammarTable(set *citation.GrammarSet) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("%-32s %-12s %-18s %s\n", "GRAMMAR", "JURISDICTION", "TYPE", "PRIORITY"))
	builder.WriteString(strings.Repeat("─", 75) + "\n")
	for _, grammar := range set.Grammars() {
		jurisdiction := string(grammar.Jurisdiction())
		if jurisdiction == "" {
			jurisdiction = "any"
		}
		builder.WriteString(fmt.Sprintf("%-32s %-12s %-18s %d\n",
			grammar.Name(), jurisdiction, grammar.Type(), grammar.Priority()))
	}
	builder.WriteString(fmt.Sprintf("\nTotal: %d grammars, %d reporter codes\n",
		set.Count(), len(set.Reporters().Entries())))
	return builder.String()
}
