package aggregate

import (
	"strconv"
	"strings"

	"github.com/coolbeans/juriscope/pkg/citation"
	"github.com/coolbeans/juriscope/pkg/readability"
)

// flagSeparator joins row flags into a single cell.
const flagSeparator = ";"

// Dataset is the ordered sequence of rows of one run, in input order.
type Dataset struct {
	RunID   string      `json:"run_id"`
	Columns []string    `json:"columns"`
	Rows    []MetricRow `json:"rows"`

	precision int
	undefined string
	metrics   []readability.MetricID
}

// Dataset wraps rows with the aggregator's column schema.
func (a *Aggregator) Dataset(runID string, rows []MetricRow) Dataset {
	return Dataset{
		RunID:     runID,
		Columns:   a.Columns(),
		Rows:      rows,
		precision: a.precision,
		undefined: a.undefined,
		metrics:   a.metrics,
	}
}

// UndefinedMarker returns the cell text used for missing values.
func (d Dataset) UndefinedMarker() string {
	if d.undefined == "" {
		return DefaultUndefinedMarker
	}
	return d.undefined
}

// Values returns the cells of row i in column order as string, int or
// float64 values. Missing values are nil.
func (d Dataset) Values(i int) []any {
	row := d.Rows[i]
	values := []any{
		row.DocumentID,
		string(row.Jurisdiction),
		row.Court,
		optional(row.Title),
		optional(row.NeutralCitation),
		optional(row.Year),
		row.WordCount,
		row.SentenceCount,
	}

	scores := make(map[readability.MetricID]readability.Score, len(row.Scores))
	for _, score := range row.Scores {
		scores[score.Metric] = score
	}
	for _, id := range d.metrics {
		if score, ok := scores[id]; ok && score.Defined {
			values = append(values, score.Value)
		} else {
			values = append(values, nil)
		}
	}

	for _, citationType := range citation.AllTypes() {
		values = append(values, row.CitationCounts[citationType])
	}
	values = append(values, row.CitationsTotal)
	for _, origin := range citation.AllOrigins() {
		values = append(values, row.OriginCounts[origin])
	}
	return append(values, row.AcademicReferences, strings.Join(row.Flags, flagSeparator))
}

// Record renders row i as text cells in column order. Missing values are
// the undefined marker, never zero.
func (d Dataset) Record(i int) []string {
	values := d.Values(i)
	record := make([]string, len(values))
	for j, value := range values {
		record[j] = d.format(value)
	}
	return record
}

// Records renders every row.
func (d Dataset) Records() [][]string {
	records := make([][]string, len(d.Rows))
	for i := range d.Rows {
		records[i] = d.Record(i)
	}
	return records
}

func (d Dataset) format(value any) string {
	switch v := value.(type) {
	case nil:
		return d.UndefinedMarker()
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', d.precision, 64)
	}
	return d.UndefinedMarker()
}

func optional(value string) any {
	if value == "" {
		return nil
	}
	return value
}
