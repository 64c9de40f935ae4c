package citation

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/coolbeans/juriscope/pkg/types"
)

// GrammarSet is the immutable collection of grammars shared by every
// document of a run. It is built once at startup and is safe for
// concurrent use without locking.
type GrammarSet struct {
	grammars          []Grammar
	byName            map[string]Grammar
	jurisdictionIndex map[types.Jurisdiction][]Grammar
	reporters         *ReporterTable
}

// NewGrammarSet creates a grammar set from the given grammars. Grammars
// are tried in the given order. Returns an error if a grammar is nil, has
// an empty name, or shares its name with another grammar.
func NewGrammarSet(reporters *ReporterTable, grammars ...Grammar) (*GrammarSet, error) {
	if reporters == nil {
		return nil, fmt.Errorf("reporter table cannot be nil")
	}
	set := &GrammarSet{
		byName:            make(map[string]Grammar, len(grammars)),
		jurisdictionIndex: make(map[types.Jurisdiction][]Grammar),
		reporters:         reporters,
	}
	for _, grammar := range grammars {
		if grammar == nil {
			return nil, fmt.Errorf("citation grammar cannot be nil")
		}
		grammarName := grammar.Name()
		if grammarName == "" {
			return nil, fmt.Errorf("citation grammar name cannot be empty")
		}
		if _, exists := set.byName[grammarName]; exists {
			return nil, fmt.Errorf("citation grammar %q already registered", grammarName)
		}
		set.byName[grammarName] = grammar
		set.grammars = append(set.grammars, grammar)
		if jurisdiction := grammar.Jurisdiction(); jurisdiction != "" && grammar.Priority() == PriorityNeutral {
			set.jurisdictionIndex[jurisdiction] = append(set.jurisdictionIndex[jurisdiction], grammar)
		}
	}
	return set, nil
}

// BuildGrammarSet creates the standard grammar set over a reporter table:
// one neutral grammar per supported jurisdiction, the shared law report
// grammar and the fallback grammar.
func BuildGrammarSet(table *ReporterTable) (*GrammarSet, error) {
	grammars := make([]Grammar, 0, len(types.AllJurisdictions())+2)
	for _, jurisdiction := range types.AllJurisdictions() {
		grammar, err := NewNeutralGrammar(jurisdiction, table)
		if err != nil {
			return nil, err
		}
		grammars = append(grammars, grammar)
	}

	lawReports, err := NewLawReportGrammar(table)
	if err != nil {
		return nil, err
	}
	grammars = append(grammars, lawReports, NewFallbackGrammar(table))

	return NewGrammarSet(table, grammars...)
}

// DefaultGrammarSet returns the standard grammar set over the built-in
// reporter table.
func DefaultGrammarSet() *GrammarSet {
	set, err := BuildGrammarSet(defaultReporterTable)
	if err != nil {
		panic(fmt.Sprintf("default grammar set: %v", err))
	}
	return set
}

// grammarFile is the YAML layout of a grammar extension file.
type grammarFile struct {
	// NeutralCourts adds court codes to a jurisdiction's neutral grammar.
	NeutralCourts map[string][]string `yaml:"neutral_courts"`

	// Reporters adds or reclassifies court codes and law report series.
	Reporters []Reporter `yaml:"reporters"`
}

// LoadGrammarFile builds the standard grammar set extended with the court
// codes and reporters listed in a YAML file:
//
//	neutral_courts:
//	  UK: [EWCOP]
//	reporters:
//	  - code: SAL Prac
//	    origin: SG
//	    kind: report
func LoadGrammarFile(path string) (*GrammarSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading grammar file: %w", err)
	}

	var file grammarFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing grammar file %s: %w", path, err)
	}

	var entries []Reporter
	jurisdictionTags := make([]string, 0, len(file.NeutralCourts))
	for tag := range file.NeutralCourts {
		jurisdictionTags = append(jurisdictionTags, tag)
	}
	sort.Strings(jurisdictionTags)
	for _, tag := range jurisdictionTags {
		jurisdiction, known := types.ParseJurisdiction(tag)
		if !known {
			return nil, &ConfigError{Jurisdiction: jurisdiction, Err: ErrUnknownJurisdiction}
		}
		for _, court := range file.NeutralCourts[tag] {
			entries = append(entries, Reporter{Code: court, Origin: OriginOf(jurisdiction), Kind: KindCourt})
		}
	}
	entries = append(entries, file.Reporters...)

	table, err := defaultReporterTable.With(entries)
	if err != nil {
		return nil, fmt.Errorf("grammar file %s: %w", path, err)
	}
	return BuildGrammarSet(table)
}

// Grammars returns all grammars in the order they are tried.
func (s *GrammarSet) Grammars() []Grammar {
	return append([]Grammar(nil), s.grammars...)
}

// Get returns a grammar by name.
func (s *GrammarSet) Get(grammarName string) (Grammar, bool) {
	grammar, ok := s.byName[grammarName]
	return grammar, ok
}

// ForJurisdiction returns the neutral citation grammars of a jurisdiction.
// It returns a *ConfigError wrapping ErrUnknownJurisdiction when none is
// registered.
func (s *GrammarSet) ForJurisdiction(jurisdiction types.Jurisdiction) ([]Grammar, error) {
	grammars := s.jurisdictionIndex[jurisdiction]
	if len(grammars) == 0 {
		return nil, &ConfigError{Jurisdiction: jurisdiction, Err: ErrUnknownJurisdiction}
	}
	return append([]Grammar(nil), grammars...), nil
}

// Jurisdictions returns the jurisdictions with a neutral grammar, sorted.
func (s *GrammarSet) Jurisdictions() []types.Jurisdiction {
	jurisdictions := make([]types.Jurisdiction, 0, len(s.jurisdictionIndex))
	for jurisdiction := range s.jurisdictionIndex {
		jurisdictions = append(jurisdictions, jurisdiction)
	}
	sort.Slice(jurisdictions, func(i, j int) bool {
		return jurisdictions[i] < jurisdictions[j]
	})
	return jurisdictions
}

// Reporters returns the reporter table the grammars were built from.
func (s *GrammarSet) Reporters() *ReporterTable {
	return s.reporters
}

// Count returns the number of grammars.
func (s *GrammarSet) Count() int {
	return len(s.grammars)
}
