package export

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/juriscope/pkg/aggregate"
	"github.com/coolbeans/juriscope/pkg/citation"
	"github.com/coolbeans/juriscope/pkg/pipeline"
	"github.com/coolbeans/juriscope/pkg/readability"
	"github.com/coolbeans/juriscope/pkg/types"
)

func testReport(t *testing.T, opts ...pipeline.ConfigOption) *pipeline.Report {
	t.Helper()
	docs := []types.Document{
		{ID: "smith", Jurisdiction: types.JurisdictionUK, Court: "UKSC", Title: "Smith v Jones",
			RawText: "Smith v Jones [2020] UKSC 12. This is a short sentence."},
		{ID: "blank", Jurisdiction: types.JurisdictionSG, Court: "SGCA", RawText: " \n "},
		{ID: "orphan", Jurisdiction: types.JurisdictionAU, RawText: "No court."},
	}
	report, err := pipeline.NewRunner(pipeline.NewConfig(opts...)).Run(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, report.Dataset.Rows, 2)
	require.Len(t, report.Failures, 1)
	return report
}

func columnIndex(t *testing.T, columns []string, name string) int {
	t.Helper()
	for i, column := range columns {
		if column == name {
			return i
		}
	}
	t.Fatalf("column %s not found", name)
	return -1
}

func TestParseFormat(t *testing.T) {
	for _, value := range []string{"csv", " JSON ", "SQLite"} {
		_, err := ParseFormat(value)
		assert.NoError(t, err, value)
	}
	_, err := ParseFormat("xlsx")
	assert.Error(t, err)

	assert.Equal(t, FormatJSON, FormatForPath("out/run.json"))
	assert.Equal(t, FormatSQLite, FormatForPath("metrics.DB"))
	assert.Equal(t, FormatCSV, FormatForPath("metrics"))
}

func TestWriteCSV(t *testing.T) {
	report := testReport(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, report))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	assert.Equal(t, report.Dataset.Columns, header)
	assert.Equal(t, "smith", records[1][0])
	assert.Equal(t, "blank", records[2][0])

	grade := columnIndex(t, header, string(readability.FleschKincaidGrade))
	assert.NotEqual(t, aggregate.DefaultUndefinedMarker, records[1][grade])
	assert.Equal(t, aggregate.DefaultUndefinedMarker, records[2][grade])

	neutral := columnIndex(t, header, aggregate.CitationColumn(citation.TypeUKNeutral))
	assert.Equal(t, "1", records[1][neutral])
	assert.Equal(t, "0", records[2][neutral])
}

func TestWriteJSON(t *testing.T) {
	report := testReport(t)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, report))

	var decoded struct {
		RunID    string           `json:"run_id"`
		Columns  []string         `json:"columns"`
		Rows     []map[string]any `json:"rows"`
		Failures []struct {
			DocumentID string `json:"document_id"`
			Stage      string `json:"stage"`
			Kind       string `json:"kind"`
			Error      string `json:"error"`
		} `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, report.RunID, decoded.RunID)
	assert.Equal(t, report.Dataset.Columns, decoded.Columns)
	require.Len(t, decoded.Rows, 2)
	assert.Equal(t, "smith", decoded.Rows[0][aggregate.ColumnDocumentID])
	assert.Nil(t, decoded.Rows[1][string(readability.FleschKincaidGrade)])
	assert.Contains(t, decoded.Rows[1], string(readability.FleschKincaidGrade))

	require.Len(t, decoded.Failures, 1)
	assert.Equal(t, "orphan", decoded.Failures[0].DocumentID)
	assert.Equal(t, string(pipeline.KindMetadata), decoded.Failures[0].Kind)
	assert.NotEmpty(t, decoded.Failures[0].Error)
}

func TestWriteSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "metrics.db")

	first := testReport(t)
	require.NoError(t, WriteFile(ctx, path, FormatSQLite, first))

	// A second run with a different metric set extends the table.
	smog, err := readability.SelectMetrics(readability.SMOG)
	require.NoError(t, err)
	second := testReport(t, pipeline.WithEngine(readability.NewEngine(readability.WithMetrics(smog...))))
	require.NoError(t, WriteSQLite(ctx, path, second))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var runs int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&runs))
	assert.Equal(t, 2, runs)

	var succeeded, failed int
	require.NoError(t, db.QueryRow("SELECT succeeded, failed FROM runs WHERE run_id = ?", first.RunID).Scan(&succeeded, &failed))
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 1, failed)

	rows, err := db.Query(`SELECT document_id, fk_grade, cite_uk_neutral FROM metric_rows WHERE run_id = ? ORDER BY position`, first.RunID)
	require.NoError(t, err)
	defer rows.Close()

	var ids []string
	var grades []sql.NullFloat64
	for rows.Next() {
		var id string
		var grade sql.NullFloat64
		var neutral int
		require.NoError(t, rows.Scan(&id, &grade, &neutral))
		ids = append(ids, id)
		grades = append(grades, grade)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"smith", "blank"}, ids)
	assert.True(t, grades[0].Valid)
	assert.False(t, grades[1].Valid)

	var grade sql.NullFloat64
	require.NoError(t, db.QueryRow(`SELECT fk_grade FROM metric_rows WHERE run_id = ? AND position = 0`, second.RunID).Scan(&grade))
	assert.False(t, grade.Valid)

	var kind, stage string
	require.NoError(t, db.QueryRow(`SELECT kind, stage FROM failures WHERE run_id = ?`, first.RunID).Scan(&kind, &stage))
	assert.Equal(t, string(pipeline.KindMetadata), kind)
	assert.Equal(t, string(pipeline.StageMetadata), stage)
}

func TestWriteFile(t *testing.T) {
	report := testReport(t)
	dir := t.TempDir()

	for _, format := range []Format{FormatCSV, FormatJSON} {
		path := filepath.Join(dir, "out."+string(format))
		require.NoError(t, WriteFile(context.Background(), path, format, report))
		assert.FileExists(t, path)
	}
	assert.Error(t, WriteFile(context.Background(), filepath.Join(dir, "x"), Format("xml"), report))
}

func TestFormatRunReport(t *testing.T) {
	report := testReport(t)

	summary := FormatRunReport(report, false)
	assert.Contains(t, summary, "Succeeded: 2 | Failed: 1 | Skipped: 0")
	assert.Contains(t, summary, "Rows by jurisdiction: SG 1 | UK 1")
	assert.Contains(t, summary, "[FAIL]")
	assert.NotContains(t, summary, "[OK]")

	verbose := FormatRunReport(report, true)
	assert.Contains(t, verbose, "[OK]")
	assert.Contains(t, verbose, "flags: empty_text,undefined_metrics")

	var failures []map[string]any
	require.NoError(t, json.Unmarshal([]byte(FormatFailuresJSON(report.Failures)), &failures))
	require.Len(t, failures, 1)
	assert.Equal(t, "orphan", failures[0]["document_id"])
}

func TestFormatTables(t *testing.T) {
	courts := FormatCourtTable(types.DefaultCourtRegistry().List())
	assert.Contains(t, courts, "High Court of Australia")
	assert.Contains(t, courts, "Total: 8 courts")

	grammars := FormatGrammarTable(citation.DefaultGrammarSet())
	assert.Contains(t, grammars, "GRAMMAR")
	assert.Contains(t, grammars, "reporter codes")
}
