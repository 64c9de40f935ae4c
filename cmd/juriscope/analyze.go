package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/coolbeans/juriscope/pkg/config"
	"github.com/coolbeans/juriscope/pkg/corpus"
	"github.com/coolbeans/juriscope/pkg/export"
	"github.com/coolbeans/juriscope/pkg/logging"
	"github.com/coolbeans/juriscope/pkg/pipeline"
	"github.com/coolbeans/juriscope/pkg/telemetry"
	"github.com/coolbeans/juriscope/pkg/types"
	"github.com/coolbeans/juriscope/pkg/watch"
)

// analysis holds everything needed to analyze one corpus directory,
// possibly many times.
type analysis struct {
	input     string
	cfg       *config.Config
	logger    *logrus.Logger
	courts    *types.CourtRegistry
	loadOpts  []corpus.Option
	runner    *pipeline.Runner
	collector *telemetry.Collector
	verbose   bool
	failures  string
	stdout    io.Writer
	stderr    io.Writer
}

// newAnalysis builds an analysis from the command's flags and config. The
// returned closer releases the log file.
func newAnalysis(cmd *cobra.Command) (*analysis, io.Closer, error) {
	input, _ := cmd.Flags().GetString("input")
	if input == "" {
		return nil, nil, fmt.Errorf("--input flag is required")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	logger, closer, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}

	courts, err := cfg.CourtRegistry()
	if err != nil {
		closer.Close()
		return nil, nil, fmt.Errorf("failed to load courts: %w", err)
	}

	var loadOpts []corpus.Option
	if code, _ := cmd.Flags().GetString("court"); code != "" {
		court, ok := courts.Lookup(code)
		if !ok {
			closer.Close()
			return nil, nil, fmt.Errorf("%w %q", corpus.ErrUnknownCourt, code)
		}
		loadOpts = append(loadOpts, corpus.WithDefaultCourt(court))
	}

	pipelineConfig, err := cfg.PipelineConfig()
	if err != nil {
		closer.Close()
		return nil, nil, fmt.Errorf("failed to configure pipeline: %w", err)
	}

	collector := telemetry.NewCollector()
	verbose, _ := cmd.Flags().GetBool("verbose")
	failures, _ := cmd.Flags().GetString("failures-json")
	return &analysis{
		input:     input,
		cfg:       cfg,
		logger:    logger,
		courts:    courts,
		loadOpts:  loadOpts,
		runner:    pipeline.NewRunner(pipelineConfig, pipeline.WithLogger(logger), pipeline.WithObserver(collector)),
		collector: collector,
		verbose:   verbose,
		failures:  failures,
		stdout:    cmd.OutOrStdout(),
		stderr:    cmd.ErrOrStderr(),
	}, closer, nil
}

// run loads the corpus, runs the pipeline and writes every output. Load
// errors are reported as failures ahead of the pipeline's own.
func (a *analysis) run(ctx context.Context) (*pipeline.Report, error) {
	loaded, err := corpus.LoadDirectory(a.input, a.courts, a.loadOpts...)
	if err != nil {
		return nil, err
	}
	a.logger.WithFields(logrus.Fields{
		"input":     a.input,
		"documents": len(loaded.Documents),
		"errors":    len(loaded.Errors),
	}).Info("Corpus loaded")

	loadFailures := make([]pipeline.Failure, 0, len(loaded.Errors))
	for _, loadErr := range loaded.Errors {
		failure := pipeline.NewFailure(loadErr.DocumentID, pipeline.StageLoad, loadErr)
		if failure.DocumentID == "" {
			failure.DocumentID = loadErr.Path
		}
		loadFailures = append(loadFailures, failure)
	}

	report, runErr := a.runner.RunWithFailures(ctx, loaded.Documents, loadFailures)
	if report == nil {
		return nil, runErr
	}

	if err := a.write(ctx, report); err != nil {
		return report, err
	}
	fmt.Fprint(a.stderr, export.FormatRunReport(report, a.verbose))
	return report, runErr
}

func (a *analysis) write(ctx context.Context, report *pipeline.Report) error {
	format := a.cfg.OutputFormat()
	if a.cfg.Output.File != "" {
		if err := export.WriteFile(ctx, a.cfg.Output.File, format, report); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		a.logger.WithFields(logrus.Fields{
			"path":   a.cfg.Output.File,
			"format": format,
			"rows":   report.Succeeded(),
		}).Info("Dataset written")
	} else {
		var err error
		switch format {
		case export.FormatJSON:
			err = export.WriteJSON(a.stdout, report)
		case export.FormatSQLite:
			err = errors.New("sqlite output needs --output")
		default:
			err = export.WriteCSV(a.stdout, report)
		}
		if err != nil {
			return err
		}
	}

	if a.failures != "" {
		data := export.FormatFailuresJSON(report.Failures) + "\n"
		if err := os.WriteFile(a.failures, []byte(data), 0o644); err != nil {
			return fmt.Errorf("failed to write failures: %w", err)
		}
	}

	if a.cfg.Metrics.File != "" {
		if err := a.collector.WriteToTextfile(a.cfg.Metrics.File); err != nil {
			return err
		}
	}
	return nil
}

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().String("input", "", "Corpus directory of judgment .txt files (required)")
	cmd.Flags().String("court", "", "Court code for files whose court cannot be detected")
	cmd.Flags().String("output", "", "Output file (default: stdout)")
	cmd.Flags().String("format", "", "Output format: csv, json, sqlite (default: from --output extension)")
	cmd.Flags().Int("workers", 1, "Documents processed in parallel (0 = one per CPU)")
	cmd.Flags().Int("precision", 2, "Decimals kept in metric columns")
	cmd.Flags().String("undefined-marker", "NA", "Cell text for undefined metrics")
	cmd.Flags().StringSlice("metrics", nil, "Readability metrics to compute (default: all)")
	cmd.Flags().String("metrics-file", "", "Write Prometheus run metrics to this textfile")
	cmd.Flags().String("failures-json", "", "Write the run's failures as JSON to this file")
	cmd.Flags().String("courts-file", "", "YAML court file extending the built-in registry")
	cmd.Flags().String("grammars-file", "", "YAML file extending the neutral citation courts and reporters")
	cmd.Flags().BoolP("verbose", "v", false, "List every analyzed document in the report")
}

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute readability and citation metrics for a corpus",
		Long: `Analyze every judgment in a corpus directory and write one dataset row per
document. Metadata comes from manifest.yaml, from CASE:/COURT:/JURISDICTION:
header lines, or from a court code in the file path.

Documents that fail (missing metadata, unsupported jurisdiction, unreadable
input) are excluded from the dataset and listed in the run report.

Example:
  juriscope analyze --input corpus/
  juriscope analyze --input corpus/ --output metrics.csv --workers 8
  juriscope analyze --input corpus/sg --court SGHC --output metrics.db
  juriscope analyze --input corpus/ --format json --metrics fk_grade,smog`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closer, err := newAnalysis(cmd)
			if err != nil {
				return err
			}
			defer closer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, err = a.run(ctx)
			return err
		},
	}
	addAnalysisFlags(cmd)
	return cmd
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-analyze a corpus whenever it changes",
		Long: `Analyze a corpus directory, then watch it and analyze it again whenever a
judgment file or the manifest changes. Stop with Ctrl-C.

Example:
  juriscope watch --input corpus/ --output metrics.db --metrics-file juriscope.prom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closer, err := newAnalysis(cmd)
			if err != nil {
				return err
			}
			defer closer.Close()

			debounce, _ := cmd.Flags().GetDuration("debounce")
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			watcher := watch.New(a.input, func(ctx context.Context, changed []string) error {
				if len(changed) > 0 {
					a.logger.WithField("files", changed).Debug("Changed files")
				}
				_, err := a.run(ctx)
				return err
			}, watch.WithInitialRun(), watch.WithDebounce(debounce), watch.WithLogger(a.logger))

			fmt.Fprintf(a.stderr, "Watching %s (Ctrl-C to stop)\n", a.input)
			return watcher.Run(ctx)
		},
	}
	addAnalysisFlags(cmd)
	cmd.Flags().Duration("debounce", watch.DefaultDebounce, "Quiet period after the last change before re-running")
	return cmd
}
