// Package export writes run results as CSV, JSON or SQLite and formats the
// failure report for terminal output.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/coolbeans/juriscope/pkg/pipeline"
)

// Format is an output format.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatSQLite Format = "sqlite"
)

// AllFormats returns the supported formats.
func AllFormats() []Format {
	return []Format{FormatCSV, FormatJSON, FormatSQLite}
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(value string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range AllFormats() {
		if format == known {
			return format, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (supported: csv, json, sqlite)", value)
}

// FormatForPath guesses the format from a file extension, defaulting to CSV.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	}
	return FormatCSV
}

// WriteCSV writes the dataset header and one record per row. Missing
// values are the dataset's undefined marker.
func WriteCSV(w io.Writer, report *pipeline.Report) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(report.Dataset.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := range report.Dataset.Rows {
		if err := writer.Write(report.Dataset.Record(i)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

type jsonFailure struct {
	DocumentID string               `json:"document_id"`
	Stage      pipeline.Stage       `json:"stage"`
	Kind       pipeline.FailureKind `json:"kind"`
	Error      string               `json:"error"`
}

type jsonReport struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	DurationMS int64            `json:"duration_ms"`
	Columns    []string         `json:"columns"`
	Rows       []map[string]any `json:"rows"`
	Failures   []jsonFailure    `json:"failures"`
	Skipped    int              `json:"skipped"`
}

// WriteJSON writes the run as one JSON document. Each row is an object
// keyed by column; missing values are null.
func WriteJSON(w io.Writer, report *pipeline.Report) error {
	dataset := report.Dataset
	output := jsonReport{
		RunID:      report.RunID,
		StartedAt:  report.Started.UTC(),
		DurationMS: report.Duration.Milliseconds(),
		Columns:    dataset.Columns,
		Rows:       make([]map[string]any, len(dataset.Rows)),
		Failures:   make([]jsonFailure, len(report.Failures)),
		Skipped:    report.Skipped,
	}
	for i := range dataset.Rows {
		values := dataset.Values(i)
		row := make(map[string]any, len(values))
		for j, column := range dataset.Columns {
			row[column] = values[j]
		}
		output.Rows[i] = row
	}
	for i, failure := range report.Failures {
		output.Failures[i] = jsonFailure{
			DocumentID: failure.DocumentID,
			Stage:      failure.Stage,
			Kind:       failure.Kind,
			Error:      failure.Message(),
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// WriteFile writes the report to path in format. SQLite output appends the
// run to an existing database; the other formats replace the file.
func WriteFile(ctx context.Context, path string, format Format, report *pipeline.Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if format == FormatSQLite {
		return WriteSQLite(ctx, path, report)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	switch format {
	case FormatJSON:
		err = WriteJSON(file, report)
	case FormatCSV:
		err = WriteCSV(file, report)
	default:
		err = fmt.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return err
	}
	return file.Close()
}
