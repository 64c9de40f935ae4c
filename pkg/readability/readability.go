// Package readability computes readability indices from segmented text.
package readability

import (
	"fmt"
	"iter"
	"math"
	"strings"
	"unicode"

	"github.com/coolbeans/juriscope/pkg/segment"
)

// MetricID identifies a readability metric. IDs double as dataset column
// names.
type MetricID string

// Supported metrics, in output order.
const (
	FleschKincaidGrade   MetricID = "fk_grade"
	FleschReadingEase    MetricID = "fk_ease"
	GunningFog           MetricID = "gunning_fog"
	SMOG                 MetricID = "smog"
	AutomatedReadability MetricID = "ari"
	AvgSentenceLength    MetricID = "avg_sentence_length"
	AvgSyllablesPerWord  MetricID = "avg_syllables_per_word"
)

// complexWordSyllables is the syllable count from which a word is complex
// for the Gunning Fog and SMOG indices.
const complexWordSyllables = 3

// Counts are the raw text statistics the metrics are computed from.
type Counts struct {
	Sentences    int `json:"sentences"`
	Words        int `json:"words"`
	Syllables    int `json:"syllables"`
	ComplexWords int `json:"complex_words"`
	Characters   int `json:"characters"`
}

// Metric is a named readability formula.
type Metric struct {
	ID      MetricID
	Name    string
	Compute func(c Counts) float64
}

// Score is the value of one metric for one document. Value is meaningful
// only when Defined is true, and defined values are always finite.
type Score struct {
	Metric  MetricID `json:"metric"`
	Value   float64  `json:"value"`
	Defined bool     `json:"defined"`
}

// Result holds the counts and the scores of every configured metric, in
// metric order.
type Result struct {
	Counts Counts  `json:"counts"`
	Scores []Score `json:"scores"`
}

// Lookup returns the score for id.
func (r Result) Lookup(id MetricID) (Score, bool) {
	for _, score := range r.Scores {
		if score.Metric == id {
			return score, true
		}
	}
	return Score{}, false
}

// Undefined reports whether no metric could be computed.
func (r Result) Undefined() bool {
	for _, score := range r.Scores {
		if score.Defined {
			return false
		}
	}
	return true
}

// DefaultMetrics returns the built-in metrics in output order.
func DefaultMetrics() []Metric {
	return []Metric{
		{
			ID:   FleschKincaidGrade,
			Name: "Flesch-Kincaid grade level",
			Compute: func(c Counts) float64 {
				return 0.39*wordsPerSentence(c) + 11.8*syllablesPerWord(c) - 15.59
			},
		},
		{
			ID:   FleschReadingEase,
			Name: "Flesch reading ease",
			Compute: func(c Counts) float64 {
				return 206.835 - 1.015*wordsPerSentence(c) - 84.6*syllablesPerWord(c)
			},
		},
		{
			ID:   GunningFog,
			Name: "Gunning Fog index",
			Compute: func(c Counts) float64 {
				return 0.4 * (wordsPerSentence(c) + 100*float64(c.ComplexWords)/float64(c.Words))
			},
		},
		{
			ID:   SMOG,
			Name: "SMOG grade",
			Compute: func(c Counts) float64 {
				return 1.0430*math.Sqrt(float64(c.ComplexWords)*30/float64(c.Sentences)) + 3.1291
			},
		},
		{
			ID:   AutomatedReadability,
			Name: "Automated Readability Index",
			Compute: func(c Counts) float64 {
				return 4.71*float64(c.Characters)/float64(c.Words) + 0.5*wordsPerSentence(c) - 21.43
			},
		},
		{
			ID:      AvgSentenceLength,
			Name:    "average sentence length (words)",
			Compute: wordsPerSentence,
		},
		{
			ID:      AvgSyllablesPerWord,
			Name:    "average syllables per word",
			Compute: syllablesPerWord,
		},
	}
}

// SelectMetrics returns the built-in metrics named by ids, in the order
// given. An unknown ID is an error.
func SelectMetrics(ids ...MetricID) ([]Metric, error) {
	builtin := make(map[MetricID]Metric)
	for _, metric := range DefaultMetrics() {
		builtin[metric.ID] = metric
	}
	selected := make([]Metric, 0, len(ids))
	for _, id := range ids {
		metric, ok := builtin[MetricID(strings.ToLower(strings.TrimSpace(string(id))))]
		if !ok {
			return nil, fmt.Errorf("unknown metric %q", id)
		}
		selected = append(selected, metric)
	}
	return selected, nil
}

func wordsPerSentence(c Counts) float64 {
	return float64(c.Words) / float64(c.Sentences)
}

func syllablesPerWord(c Counts) float64 {
	return float64(c.Syllables) / float64(c.Words)
}

// Engine scores sentence sequences. It holds only configuration and is
// safe for concurrent use.
type Engine struct {
	metrics []Metric
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics replaces the metric set.
func WithMetrics(metrics ...Metric) Option {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

// NewEngine creates an Engine computing DefaultMetrics unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{metrics: DefaultMetrics()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Metrics returns the metric IDs the engine computes, in output order.
func (e *Engine) Metrics() []MetricID {
	ids := make([]MetricID, len(e.metrics))
	for i, metric := range e.metrics {
		ids[i] = metric.ID
	}
	return ids
}

// Score consumes the sentences and computes every metric. Only sentences
// with at least one word are counted. With no words, every score is
// undefined; so is any non-finite value.
func (e *Engine) Score(sentences iter.Seq[segment.Sentence]) Result {
	counts := Count(sentences)
	result := Result{Counts: counts, Scores: make([]Score, len(e.metrics))}
	for i, metric := range e.metrics {
		result.Scores[i] = Score{Metric: metric.ID}
		if counts.Sentences == 0 || counts.Words == 0 {
			continue
		}
		value := metric.Compute(counts)
		if math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}
		result.Scores[i].Value = value
		result.Scores[i].Defined = true
	}
	return result
}

// Count tallies sentences, words, syllables, complex words and characters.
func Count(sentences iter.Seq[segment.Sentence]) Counts {
	var counts Counts
	for sentence := range sentences {
		words := 0
		for _, token := range sentence.Tokens {
			if token.Kind != segment.TokenWord {
				continue
			}
			words++
			syllables := CountSyllables(token.Text)
			counts.Syllables += syllables
			if syllables >= complexWordSyllables {
				counts.ComplexWords++
			}
			for _, r := range token.Text {
				if unicode.IsLetter(r) || unicode.IsDigit(r) {
					counts.Characters++
				}
			}
		}
		if words > 0 {
			counts.Sentences++
			counts.Words += words
		}
	}
	return counts
}

// CountSyllables estimates the syllables of a word by counting groups of
// consecutive vowels (a, e, i, o, u, y). A trailing silent "e" is not
// counted when the word has more than one group. Every word has at least
// one syllable.
func CountSyllables(word string) int {
	var letters strings.Builder
	for _, r := range strings.ToLower(word) {
		if r >= 'a' && r <= 'z' {
			letters.WriteRune(r)
		}
	}
	cleaned := letters.String()

	count := 0
	previousVowel := false
	for _, r := range cleaned {
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !previousVowel {
			count++
		}
		previousVowel = vowel
	}

	if strings.HasSuffix(cleaned, "e") && count > 1 {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}
