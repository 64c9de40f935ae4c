package pipeline

import (
	"github.com/coolbeans/juriscope/pkg/aggregate"
	"github.com/coolbeans/juriscope/pkg/citation"
	"github.com/coolbeans/juriscope/pkg/normalize"
	"github.com/coolbeans/juriscope/pkg/readability"
	"github.com/coolbeans/juriscope/pkg/segment"
)

// Config holds the components of a run. It is built once by NewConfig and
// only read afterwards, so one Config may be shared by concurrent runs.
type Config struct {
	workers    int
	normalizer *normalize.Normalizer
	segmenter  *segment.Segmenter
	engine     *readability.Engine
	extractor  *citation.Extractor
	aggregator *aggregate.Aggregator
}

// ConfigOption configures a Config.
type ConfigOption func(*Config)

// WithWorkers sets the number of documents processed concurrently.
// Values below 2 process documents sequentially.
func WithWorkers(workers int) ConfigOption {
	return func(c *Config) {
		c.workers = workers
	}
}

// WithNormalizer replaces the text normalizer.
func WithNormalizer(normalizer *normalize.Normalizer) ConfigOption {
	return func(c *Config) {
		if normalizer != nil {
			c.normalizer = normalizer
		}
	}
}

// WithSegmenter replaces the sentence segmenter.
func WithSegmenter(segmenter *segment.Segmenter) ConfigOption {
	return func(c *Config) {
		if segmenter != nil {
			c.segmenter = segmenter
		}
	}
}

// WithEngine replaces the readability engine.
func WithEngine(engine *readability.Engine) ConfigOption {
	return func(c *Config) {
		if engine != nil {
			c.engine = engine
		}
	}
}

// WithGrammarSet sets the citation grammars.
func WithGrammarSet(grammars *citation.GrammarSet) ConfigOption {
	return func(c *Config) {
		if grammars != nil {
			c.extractor = citation.NewExtractor(grammars)
		}
	}
}

// WithAggregator replaces the aggregator.
func WithAggregator(aggregator *aggregate.Aggregator) ConfigOption {
	return func(c *Config) {
		if aggregator != nil {
			c.aggregator = aggregator
		}
	}
}

// NewConfig creates a Config from the default components, overridden by
// opts. The default aggregator's metric columns follow the engine.
func NewConfig(opts ...ConfigOption) Config {
	config := Config{workers: 1}
	for _, opt := range opts {
		opt(&config)
	}
	if config.normalizer == nil {
		config.normalizer = normalize.New()
	}
	if config.segmenter == nil {
		config.segmenter = segment.New()
	}
	if config.engine == nil {
		config.engine = readability.NewEngine()
	}
	if config.extractor == nil {
		config.extractor = citation.NewExtractor(citation.DefaultGrammarSet())
	}
	if config.aggregator == nil {
		config.aggregator = aggregate.New(aggregate.WithMetrics(config.engine.Metrics()...))
	}
	return config
}

// Workers returns the configured concurrency.
func (c Config) Workers() int {
	return c.workers
}

// GrammarSet returns the citation grammars.
func (c Config) GrammarSet() *citation.GrammarSet {
	return c.extractor.GrammarSet()
}

// Aggregator returns the aggregator.
func (c Config) Aggregator() *aggregate.Aggregator {
	return c.aggregator
}
