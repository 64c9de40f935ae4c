package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/coolbeans/juriscope/pkg/aggregate"
	"github.com/coolbeans/juriscope/pkg/pipeline"
)

// Table names in the SQLite output.
const (
	TableRuns     = "runs"
	TableRows     = "metric_rows"
	TableFailures = "failures"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	succeeded   INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	skipped     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS metric_rows (
	run_id   TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	PRIMARY KEY (run_id, position)
);

CREATE TABLE IF NOT EXISTS failures (
	run_id      TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	document_id TEXT NOT NULL,
	stage       TEXT NOT NULL,
	kind        TEXT NOT NULL,
	message     TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

var textColumns = map[string]bool{
	aggregate.ColumnDocumentID:      true,
	aggregate.ColumnJurisdiction:    true,
	aggregate.ColumnCourt:           true,
	aggregate.ColumnTitle:           true,
	aggregate.ColumnNeutralCitation: true,
	aggregate.ColumnYear:            true,
	aggregate.ColumnFlags:           true,
}

var integerColumns = map[string]bool{
	aggregate.ColumnWordCount:          true,
	aggregate.ColumnSentenceCount:      true,
	aggregate.ColumnCitationsTotal:     true,
	aggregate.ColumnAcademicReferences: true,
}

// columnType returns the SQLite type of a dataset column. Metric columns
// are REAL; undefined metrics are stored as NULL.
func columnType(column string) string {
	switch {
	case textColumns[column]:
		return "TEXT"
	case integerColumns[column], strings.HasPrefix(column, "cite_"), strings.HasPrefix(column, "origin_"):
		return "INTEGER"
	}
	return "REAL"
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// OpenDatabase opens or creates the SQLite database at path and ensures the
// base schema exists.
func OpenDatabase(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return db, nil
}

// WriteSQLite appends the run to the database at path: one runs row, one
// metric_rows row per dataset row and one failures row per failure.
// Columns missing from an existing metric_rows table are added first, so
// runs with different metric sets share one database.
func WriteSQLite(ctx context.Context, path string, report *pipeline.Report) error {
	db, err := OpenDatabase(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := ensureColumns(ctx, db, report.Dataset.Columns); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, duration_ms, succeeded, failed, skipped) VALUES (?, ?, ?, ?, ?, ?)`,
		report.RunID, report.Started.UTC().Format(time.RFC3339Nano), report.Duration.Milliseconds(),
		report.Succeeded(), report.Failed(), report.Skipped)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", report.RunID, err)
	}

	if err := insertRows(ctx, tx, report); err != nil {
		return err
	}

	for i, failure := range report.Failures {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO failures (run_id, position, document_id, stage, kind, message) VALUES (?, ?, ?, ?, ?, ?)`,
			report.RunID, i, failure.DocumentID, string(failure.Stage), string(failure.Kind), failure.Message())
		if err != nil {
			return fmt.Errorf("inserting failure for %s: %w", failure.DocumentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run %s: %w", report.RunID, err)
	}
	return nil
}

func insertRows(ctx context.Context, tx *sql.Tx, report *pipeline.Report) error {
	dataset := report.Dataset
	if len(dataset.Rows) == 0 {
		return nil
	}

	names := []string{"run_id", "position"}
	for _, column := range dataset.Columns {
		names = append(names, quoteIdentifier(column))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	query := fmt.Sprintf("INSERT INTO metric_rows (%s) VALUES (%s)", strings.Join(names, ", "), placeholders)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing row insert: %w", err)
	}
	defer stmt.Close()

	for i := range dataset.Rows {
		args := append([]any{report.RunID, i}, dataset.Values(i)...)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting row %s: %w", dataset.Rows[i].DocumentID, err)
		}
	}
	return nil
}

// ensureColumns adds any dataset column that metric_rows lacks.
func ensureColumns(ctx context.Context, db *sql.DB, columns []string) error {
	existing, err := tableColumns(ctx, db, TableRows)
	if err != nil {
		return err
	}
	for _, column := range columns {
		if existing[column] {
			continue
		}
		statement := fmt.Sprintf("ALTER TABLE metric_rows ADD COLUMN %s %s", quoteIdentifier(column), columnType(column))
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("adding column %s: %w", column, err)
		}
		existing[column] = true
	}
	return nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdentifier(table)))
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			name       string
			columnType string
			notNull    int
			defaultVal sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &columnType, &notNull, &defaultVal, &primaryKey); err != nil {
			return nil, fmt.Errorf("scanning columns of %s: %w", table, err)
		}
		columns[name] = true
	}
	return columns, rows.Err()
}
