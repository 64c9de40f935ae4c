package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coolbeans/juriscope/pkg/citation"
	"github.com/coolbeans/juriscope/pkg/config"
	"github.com/coolbeans/juriscope/pkg/export"
	"github.com/coolbeans/juriscope/pkg/types"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "juriscope",
		Short: "Readability and citation metrics for judicial opinions",
		Long: `Juriscope measures how judgments of UK, Australian and Singapore
courts are written.

For every judgment in a corpus directory it produces one dataset row with:
  - Readability indices (Flesch-Kincaid, Gunning Fog, SMOG, ARI, ...)
  - Citation counts by type (neutral citations, law reports, other)
  - Citation counts by origin of the cited court or reporter
  - Academic reference counts

Documents that cannot be analyzed are reported separately.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./juriscope.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(grammarsCmd())
	rootCmd.AddCommand(courtsCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

// flagKeys maps command-line flags to config keys. Flags a command does not
// define are skipped.
var flagKeys = map[string]string{
	"log-level":        config.KeyLogLevel,
	"log-format":       config.KeyLogFormat,
	"workers":          config.KeyWorkers,
	"precision":        config.KeyPrecision,
	"undefined-marker": config.KeyUndefinedMarker,
	"metrics":          config.KeyMetrics,
	"output":           config.KeyOutputFile,
	"format":           config.KeyOutputFormat,
	"metrics-file":     config.KeyMetricsFile,
	"courts-file":      config.KeyCourtsFile,
	"grammars-file":    config.KeyGrammarsFile,
}

// loadConfig reads the config file and environment, with flags set on the
// command line taking precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := config.NewViper()
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	path, _ := cmd.Flags().GetString("config")
	return config.Load(v, path)
}

func grammarsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grammars",
		Short: "List the citation grammars",
		Long: `List the citation grammars tried on every document, in order, and the
size of the reporter table used to classify citation origins.

Example:
  juriscope grammars
  juriscope grammars --grammars-file extra-courts.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			set, err := cfg.GrammarSet()
			if err != nil {
				return fmt.Errorf("failed to load grammars: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), export.FormatGrammarTable(set))

			showReporters, _ := cmd.Flags().GetBool("reporters")
			if showReporters {
				fmt.Fprintln(cmd.OutOrStdout())
				for _, origin := range citation.AllOrigins() {
					for _, kind := range []citation.ReporterKind{citation.KindCourt, citation.KindReport} {
						codes := set.Reporters().Codes(kind, origin)
						if len(codes) == 0 {
							continue
						}
						fmt.Fprintf(cmd.OutOrStdout(), "  %-6s %-7s %v\n", origin, kind, codes)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().String("grammars-file", "", "YAML file extending the neutral citation courts and reporters")
	cmd.Flags().Bool("reporters", false, "Also list reporter and court codes by origin")
	return cmd
}

func courtsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "courts",
		Short: "List the court registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			registry, err := cfg.CourtRegistry()
			if err != nil {
				return fmt.Errorf("failed to load courts: %w", err)
			}

			courts := registry.List()
			if value, _ := cmd.Flags().GetString("jurisdiction"); value != "" {
				jurisdiction, known := types.ParseJurisdiction(value)
				if !known {
					return fmt.Errorf("unknown jurisdiction %q", value)
				}
				filtered := courts[:0]
				for _, court := range courts {
					if court.Jurisdiction == jurisdiction {
						filtered = append(filtered, court)
					}
				}
				courts = filtered
			}
			fmt.Fprint(cmd.OutOrStdout(), export.FormatCourtTable(courts))
			return nil
		},
	}
	cmd.Flags().String("courts-file", "", "YAML court file extending the built-in registry")
	cmd.Flags().String("jurisdiction", "", "Only list courts of this jurisdiction (UK, AU, SG)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "juriscope %s\n", version)
		},
	}
}
