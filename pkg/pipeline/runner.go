// Package pipeline runs documents through normalization, citation
// extraction, readability scoring and aggregation, sequentially or with a
// bounded worker pool.
package pipeline

import (
	"context"
	"io"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/coolbeans/juriscope/pkg/aggregate"
	"github.com/coolbeans/juriscope/pkg/citation"
	"github.com/coolbeans/juriscope/pkg/types"
)

// Observer receives per-document outcomes after a run has collected them.
type Observer interface {
	ObserveDocument(row aggregate.MetricRow, elapsed time.Duration)
	ObserveFailure(failure Failure)
	ObserveRun(report *Report)
}

// Report is the result of one run: the dataset of successful documents in
// input order and the failures, also in input order.
type Report struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	Dataset  aggregate.Dataset
	Failures []Failure

	// Skipped counts documents never processed because the run was
	// cancelled.
	Skipped int
}

// Succeeded returns the number of rows produced.
func (r *Report) Succeeded() int {
	return len(r.Dataset.Rows)
}

// Failed returns the number of excluded documents.
func (r *Report) Failed() int {
	return len(r.Failures)
}

// Runner executes runs over a Config.
type Runner struct {
	config   Config
	logger   *logrus.Logger
	observer Observer
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver sets an observer notified of every outcome.
func WithObserver(observer Observer) Option {
	return func(r *Runner) {
		r.observer = observer
	}
}

// NewRunner creates a runner. Without WithLogger, nothing is logged.
func NewRunner(config Config, opts ...Option) *Runner {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	r := &Runner{config: config, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the runner's configuration.
func (r *Runner) Config() Config {
	return r.config
}

type outcome struct {
	row     aggregate.MetricRow
	err     error
	elapsed time.Duration
	done    bool
}

// Run processes docs and returns the report. Failed documents are excluded
// from the dataset and listed in the report; they never affect other rows.
//
// With more than one worker, documents are processed concurrently, each
// writing only its own result slot; rows keep input order. When ctx is
// cancelled no further documents are started, and the report of the
// documents already processed is returned together with ctx.Err().
func (r *Runner) Run(ctx context.Context, docs []types.Document) (*Report, error) {
	return r.RunWithFailures(ctx, docs, nil)
}

// RunWithFailures is Run for a corpus some of whose documents already
// failed before the run, typically while loading. Those failures lead the
// report's failure list and reach the observer before the run totals.
func (r *Runner) RunWithFailures(ctx context.Context, docs []types.Document, prior []Failure) (*Report, error) {
	report := &Report{RunID: uuid.NewString(), Started: time.Now()}
	for _, failure := range prior {
		report.Failures = append(report.Failures, failure)
		if r.observer != nil {
			r.observer.ObserveFailure(failure)
		}
	}
	outcomes := make([]outcome, len(docs))
	duplicates := duplicateIndexes(docs)

	process := func(i int) {
		begin := time.Now()
		if duplicates[i] {
			outcomes[i] = outcome{
				err:  &DocumentError{DocumentID: docs[i].ID, Stage: StageLoad, Err: ErrDuplicateDocument},
				done: true,
			}
			return
		}
		row, err := r.Process(docs[i])
		outcomes[i] = outcome{row: row, err: err, elapsed: time.Since(begin), done: true}
	}

	if r.config.workers <= 1 {
		for i := range docs {
			if ctx.Err() != nil {
				break
			}
			process(i)
		}
	} else {
		var group errgroup.Group
		group.SetLimit(r.config.workers)
		for i := range docs {
			if ctx.Err() != nil {
				break
			}
			group.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				process(i)
				return nil
			})
		}
		_ = group.Wait()
	}

	rows := make([]aggregate.MetricRow, 0, len(docs))
	for i, result := range outcomes {
		switch {
		case !result.done:
			report.Skipped++
		case result.err != nil:
			failure := NewFailure(docs[i].ID, StageAggregate, result.err)
			report.Failures = append(report.Failures, failure)
			r.logger.WithFields(logrus.Fields{
				"run_id":      report.RunID,
				"document_id": failure.DocumentID,
				"stage":       failure.Stage,
				"kind":        failure.Kind,
			}).WithError(failure.Err).Warn("Document excluded from dataset")
			if r.observer != nil {
				r.observer.ObserveFailure(failure)
			}
		default:
			rows = append(rows, result.row)
			if r.observer != nil {
				r.observer.ObserveDocument(result.row, result.elapsed)
			}
		}
	}

	report.Dataset = r.config.aggregator.Dataset(report.RunID, rows)
	report.Duration = time.Since(report.Started)

	fields := logrus.Fields{
		"run_id":    report.RunID,
		"documents": len(docs),
		"rows":      report.Succeeded(),
		"failures":  report.Failed(),
		"skipped":   report.Skipped,
		"workers":   r.config.workers,
		"duration":  report.Duration.String(),
	}
	if err := ctx.Err(); err != nil {
		r.logger.WithFields(fields).WithError(err).Warn("Run cancelled")
	} else {
		r.logger.WithFields(fields).Info("Run complete")
	}
	if r.observer != nil {
		r.observer.ObserveRun(report)
	}
	return report, ctx.Err()
}

// Process runs one document through every stage. Errors are
// *DocumentError values naming the failed stage.
func (r *Runner) Process(doc types.Document) (aggregate.MetricRow, error) {
	fail := func(stage Stage, err error) (aggregate.MetricRow, error) {
		return aggregate.MetricRow{}, &DocumentError{DocumentID: doc.ID, Stage: stage, Err: err}
	}

	if err := aggregate.Validate(doc); err != nil {
		return fail(StageMetadata, err)
	}
	if !utf8.ValidString(doc.RawText) {
		return fail(StageNormalize, ErrInvalidEncoding)
	}

	logger := r.logger.WithFields(logrus.Fields{
		"document_id":  doc.ID,
		"jurisdiction": doc.Jurisdiction,
		"court":        doc.Court,
	})

	text, stats := r.config.normalizer.NormalizeWithStats(doc.RawText)
	var flags []string
	if text == "" {
		flags = append(flags, aggregate.FlagEmptyText)
		logger.Warn("Document has no text after normalization")
	}

	citations, err := r.config.extractor.Extract(text, doc.Jurisdiction)
	if err != nil {
		return fail(StageExtract, err)
	}

	result := r.config.engine.Score(r.config.segmenter.Sentences(text))
	extras := aggregate.Extras{
		AcademicReferences: citation.CountAcademicReferences(text),
		Flags:              flags,
	}

	row, err := r.config.aggregator.Aggregate(doc, result, citations, extras)
	if err != nil {
		return fail(StageAggregate, err)
	}

	logger.WithFields(logrus.Fields{
		"words":         row.WordCount,
		"sentences":     row.SentenceCount,
		"citations":     row.CitationsTotal,
		"dropped_lines": stats.DroppedLines,
		"header_lines":  stats.HeaderLines,
		"hyphen_fixes":  stats.HyphenFixes,
	}).Debug("Document processed")
	return row, nil
}

// duplicateIndexes marks every document whose non-empty ID appeared
// earlier in docs.
func duplicateIndexes(docs []types.Document) []bool {
	duplicates := make([]bool, len(docs))
	seen := make(map[string]bool, len(docs))
	for i, doc := range docs {
		if doc.ID == "" {
			continue
		}
		if seen[doc.ID] {
			duplicates[i] = true
		}
		seen[doc.ID] = true
	}
	return duplicates
}
