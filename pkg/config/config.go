// Package config loads run settings from juriscope.yaml, JURISCOPE_*
// environment variables and command-line flags, and builds the pipeline
// components they describe.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/coolbeans/juriscope/pkg/aggregate"
	"github.com/coolbeans/juriscope/pkg/citation"
	"github.com/coolbeans/juriscope/pkg/export"
	"github.com/coolbeans/juriscope/pkg/normalize"
	"github.com/coolbeans/juriscope/pkg/pipeline"
	"github.com/coolbeans/juriscope/pkg/readability"
	"github.com/coolbeans/juriscope/pkg/types"
)

// EnvPrefix is the prefix of environment overrides, e.g. JURISCOPE_WORKERS
// or JURISCOPE_LOG_LEVEL.
const EnvPrefix = "JURISCOPE"

// DefaultFileName is the config file looked up in the working directory
// when no path is given.
const DefaultFileName = "juriscope"

// Setting keys.
const (
	KeyWorkers          = "workers"
	KeyPrecision        = "precision"
	KeyUndefinedMarker  = "undefined_marker"
	KeyMetrics          = "readability.metrics"
	KeyLogLevel         = "log.level"
	KeyLogFormat        = "log.format"
	KeyLogFile          = "log.file"
	KeyLogMaxSizeMB     = "log.max_size_mb"
	KeyLogMaxBackups    = "log.max_backups"
	KeyGrammarsFile     = "grammars.file"
	KeyCourtsFile       = "courts.file"
	KeyMinHeaderRepeats = "normalize.min_header_repeats"
	KeyOutputFormat     = "output.format"
	KeyOutputFile       = "output.file"
	KeyMetricsFile      = "metrics.file"
)

// maxPrecision bounds the decimals kept in metric columns.
const maxPrecision = 10

// Config holds all run settings.
type Config struct {
	Workers         int             `mapstructure:"workers"`
	Precision       int             `mapstructure:"precision"`
	UndefinedMarker string          `mapstructure:"undefined_marker"`
	Readability     ReadabilityConf `mapstructure:"readability"`
	Log             LogConfig       `mapstructure:"log"`
	Grammars        FileConfig      `mapstructure:"grammars"`
	Courts          FileConfig      `mapstructure:"courts"`
	Normalize       NormalizeConfig `mapstructure:"normalize"`
	Output          OutputConfig    `mapstructure:"output"`
	Metrics         FileConfig      `mapstructure:"metrics"`
}

// ReadabilityConf selects the metrics computed. Empty means all.
type ReadabilityConf struct {
	Metrics []string `mapstructure:"metrics"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// FileConfig points at an optional file.
type FileConfig struct {
	File string `mapstructure:"file"`
}

// NormalizeConfig configures the text normalizer.
type NormalizeConfig struct {
	MinHeaderRepeats int `mapstructure:"min_header_repeats"`
}

// OutputConfig configures where the dataset is written.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// NewViper returns a viper instance with defaults and JURISCOPE_*
// environment binding. Callers may bind flags to it before Load.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyWorkers, 1)
	v.SetDefault(KeyPrecision, aggregate.DefaultPrecision)
	v.SetDefault(KeyUndefinedMarker, aggregate.DefaultUndefinedMarker)
	v.SetDefault(KeyMetrics, []string{})
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogMaxSizeMB, 50)
	v.SetDefault(KeyLogMaxBackups, 3)
	v.SetDefault(KeyGrammarsFile, "")
	v.SetDefault(KeyCourtsFile, "")
	v.SetDefault(KeyMinHeaderRepeats, normalize.DefaultMinHeaderRepeats)
	v.SetDefault(KeyOutputFormat, "")
	v.SetDefault(KeyOutputFile, "")
	v.SetDefault(KeyMetricsFile, "")
}

// Load reads settings into a Config. With a non-empty path the file must
// exist; otherwise juriscope.yaml in the working directory is used when
// present.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultFileName)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late in a run.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Precision < 0 || c.Precision > maxPrecision {
		return fmt.Errorf("precision must be between 0 and %d, got %d", maxPrecision, c.Precision)
	}
	if c.UndefinedMarker == "" {
		return errors.New("undefined_marker must not be empty")
	}
	if c.Normalize.MinHeaderRepeats < 0 {
		return fmt.Errorf("normalize.min_header_repeats must not be negative, got %d", c.Normalize.MinHeaderRepeats)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Output.Format != "" {
		if _, err := export.ParseFormat(c.Output.Format); err != nil {
			return err
		}
	}
	if _, err := readability.SelectMetrics(c.metricIDs()...); err != nil {
		return fmt.Errorf("readability.metrics: %w", err)
	}
	return nil
}

func (c *Config) metricIDs() []readability.MetricID {
	ids := make([]readability.MetricID, len(c.Readability.Metrics))
	for i, id := range c.Readability.Metrics {
		ids[i] = readability.MetricID(id)
	}
	return ids
}

// OutputFormat returns the configured format, else the one implied by the
// output file name.
func (c *Config) OutputFormat() export.Format {
	if format, err := export.ParseFormat(c.Output.Format); err == nil {
		return format
	}
	return export.FormatForPath(c.Output.File)
}

// CourtRegistry returns the registry from courts.file, else the built-in
// one.
func (c *Config) CourtRegistry() (*types.CourtRegistry, error) {
	if c.Courts.File == "" {
		return types.DefaultCourtRegistry(), nil
	}
	return types.LoadCourtFile(c.Courts.File)
}

// GrammarSet returns the grammars extended by grammars.file, else the
// standard set.
func (c *Config) GrammarSet() (*citation.GrammarSet, error) {
	if c.Grammars.File == "" {
		return citation.DefaultGrammarSet(), nil
	}
	return citation.LoadGrammarFile(c.Grammars.File)
}

// PipelineConfig builds the immutable pipeline configuration.
func (c *Config) PipelineConfig() (pipeline.Config, error) {
	grammars, err := c.GrammarSet()
	if err != nil {
		return pipeline.Config{}, err
	}

	engine := readability.NewEngine()
	if len(c.Readability.Metrics) > 0 {
		metrics, err := readability.SelectMetrics(c.metricIDs()...)
		if err != nil {
			return pipeline.Config{}, err
		}
		engine = readability.NewEngine(readability.WithMetrics(metrics...))
	}

	aggregator := aggregate.New(
		aggregate.WithPrecision(c.Precision),
		aggregate.WithUndefinedMarker(c.UndefinedMarker),
		aggregate.WithMetrics(engine.Metrics()...),
	)

	return pipeline.NewConfig(
		pipeline.WithWorkers(c.Workers),
		pipeline.WithNormalizer(normalize.New(normalize.WithMinHeaderRepeats(c.Normalize.MinHeaderRepeats))),
		pipeline.WithEngine(engine),
		pipeline.WithGrammarSet(grammars),
		pipeline.WithAggregator(aggregator),
	), nil
}
