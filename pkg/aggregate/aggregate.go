// Package aggregate merges the per-document readability scores and citation
// statistics into dataset rows with a stable column schema.
package aggregate

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/coolbeans/juriscope/pkg/citation"
	"github.com/coolbeans/juriscope/pkg/readability"
	"github.com/coolbeans/juriscope/pkg/types"
)

// ErrMissingMetadata is returned when a document lacks the identifier,
// jurisdiction or court needed to place it in the dataset.
var ErrMissingMetadata = errors.New("missing document metadata")

// Defaults.
const (
	DefaultPrecision       = 2
	DefaultUndefinedMarker = "NA"
)

// Row flags.
const (
	// FlagEmptyText marks a document whose normalized text was empty.
	FlagEmptyText = "empty_text"

	// FlagUndefinedMetrics marks a row with at least one undefined metric.
	FlagUndefinedMetrics = "undefined_metrics"
)

// Fixed column names.
const (
	ColumnDocumentID         = "document_id"
	ColumnJurisdiction       = "jurisdiction"
	ColumnCourt              = "court"
	ColumnTitle              = "title"
	ColumnNeutralCitation    = "neutral_citation"
	ColumnYear               = "year"
	ColumnWordCount          = "word_count"
	ColumnSentenceCount      = "sentence_count"
	ColumnCitationsTotal     = "citations_total"
	ColumnAcademicReferences = "academic_references"
	ColumnFlags              = "flags"
)

// CitationColumn returns the column name for a citation type count.
func CitationColumn(citationType citation.CitationType) string {
	return "cite_" + string(citationType)
}

// OriginColumn returns the column name for a citation origin count.
func OriginColumn(origin citation.Origin) string {
	return "origin_" + strings.ToLower(string(origin))
}

// Extras carries per-document values computed outside the readability
// engine and the citation extractor.
type Extras struct {
	AcademicReferences int
	Flags              []string
}

// MetricRow is the output unit: one row per document. Rows never hold the
// source text.
type MetricRow struct {
	DocumentID      string             `json:"document_id"`
	Jurisdiction    types.Jurisdiction `json:"jurisdiction"`
	Court           string             `json:"court"`
	Title           string             `json:"title,omitempty"`
	NeutralCitation string             `json:"neutral_citation,omitempty"`
	Year            string             `json:"year,omitempty"`

	WordCount     int `json:"word_count"`
	SentenceCount int `json:"sentence_count"`

	// Scores are rounded to the aggregator's precision. Undefined scores
	// keep Defined false.
	Scores []readability.Score `json:"scores"`

	CitationCounts     map[citation.CitationType]int `json:"citation_counts"`
	CitationsTotal     int                           `json:"citations_total"`
	OriginCounts       map[citation.Origin]int       `json:"origin_counts"`
	AcademicReferences int                           `json:"academic_references"`

	Flags []string `json:"flags,omitempty"`
}

// HasFlag reports whether the row carries flag.
func (r MetricRow) HasFlag(flag string) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Aggregator builds MetricRows. It holds only configuration and is safe
// for concurrent use.
type Aggregator struct {
	precision int
	undefined string
	metrics   []readability.MetricID
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithPrecision sets the number of decimals scores are rounded to.
// Negative values are ignored.
func WithPrecision(decimals int) Option {
	return func(a *Aggregator) {
		if decimals >= 0 {
			a.precision = decimals
		}
	}
}

// WithUndefinedMarker sets the cell text used for missing values.
func WithUndefinedMarker(marker string) Option {
	return func(a *Aggregator) {
		if marker != "" {
			a.undefined = marker
		}
	}
}

// WithMetrics sets the metric columns, in order. It should match the
// metrics of the readability engine feeding the aggregator.
func WithMetrics(ids ...readability.MetricID) Option {
	return func(a *Aggregator) {
		a.metrics = append([]readability.MetricID(nil), ids...)
	}
}

// New creates an Aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		precision: DefaultPrecision,
		undefined: DefaultUndefinedMarker,
	}
	for _, metric := range readability.DefaultMetrics() {
		a.metrics = append(a.metrics, metric.ID)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Precision returns the rounding precision.
func (a *Aggregator) Precision() int {
	return a.precision
}

// UndefinedMarker returns the cell text used for missing values.
func (a *Aggregator) UndefinedMarker() string {
	return a.undefined
}

// Columns returns the dataset columns in output order:
//
//	document_id, jurisdiction, court, title, neutral_citation, year,
//	word_count, sentence_count, <metric ids>, cite_<type>..., citations_total,
//	origin_<code>..., academic_references, flags
func (a *Aggregator) Columns() []string {
	columns := []string{
		ColumnDocumentID, ColumnJurisdiction, ColumnCourt, ColumnTitle,
		ColumnNeutralCitation, ColumnYear, ColumnWordCount, ColumnSentenceCount,
	}
	for _, id := range a.metrics {
		columns = append(columns, string(id))
	}
	for _, citationType := range citation.AllTypes() {
		columns = append(columns, CitationColumn(citationType))
	}
	columns = append(columns, ColumnCitationsTotal)
	for _, origin := range citation.AllOrigins() {
		columns = append(columns, OriginColumn(origin))
	}
	return append(columns, ColumnAcademicReferences, ColumnFlags)
}

// Aggregate builds the row of one document. The document must carry an ID,
// a jurisdiction and a court; otherwise the error wraps ErrMissingMetadata.
//
// Every citation type and origin is present in the counts, zero when
// absent. Scores follow the aggregator's metric order; metrics the result
// lacks are undefined.
func (a *Aggregator) Aggregate(doc types.Document, result readability.Result, citations []citation.Citation, extras Extras) (MetricRow, error) {
	if err := Validate(doc); err != nil {
		return MetricRow{}, err
	}

	row := MetricRow{
		DocumentID:         doc.ID,
		Jurisdiction:       doc.Jurisdiction,
		Court:              doc.Court,
		Title:              doc.Title,
		NeutralCitation:    doc.NeutralCitation,
		Year:               doc.Year,
		WordCount:          result.Counts.Words,
		SentenceCount:      result.Counts.Sentences,
		Scores:             make([]readability.Score, len(a.metrics)),
		CitationCounts:     citation.CountByType(citations),
		OriginCounts:       citation.CountByOrigin(citations),
		CitationsTotal:     len(citations),
		AcademicReferences: extras.AcademicReferences,
	}

	flags := append([]string(nil), extras.Flags...)
	for i, id := range a.metrics {
		score, ok := result.Lookup(id)
		if !ok || !score.Defined {
			row.Scores[i] = readability.Score{Metric: id}
			flags = append(flags, FlagUndefinedMetrics)
			continue
		}
		row.Scores[i] = readability.Score{Metric: id, Value: round(score.Value, a.precision), Defined: true}
	}
	row.Flags = uniqueSorted(flags)
	return row, nil
}

// Validate checks that doc carries the metadata a row needs. The error
// wraps ErrMissingMetadata and names the missing fields.
func Validate(doc types.Document) error {
	var missing []string
	if strings.TrimSpace(doc.ID) == "" {
		missing = append(missing, "id")
	}
	if doc.Jurisdiction == "" {
		missing = append(missing, "jurisdiction")
	}
	if strings.TrimSpace(doc.Court) == "" {
		missing = append(missing, "court")
	}
	if len(missing) > 0 {
		return fmt.Errorf("document %q: %w: %s", doc.ID, ErrMissingMetadata, strings.Join(missing, ", "))
	}
	return nil
}

// round rounds half away from zero to the given decimals.
func round(value float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	rounded := math.Round(value*scale) / scale
	if rounded == 0 {
		return 0
	}
	return rounded
}

func uniqueSorted(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	sort.Strings(values)
	unique := values[:1]
	for _, value := range values[1:] {
		if value != unique[len(unique)-1] {
			unique = append(unique, value)
		}
	}
	return unique
}
