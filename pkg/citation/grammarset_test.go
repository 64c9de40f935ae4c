package citation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/juriscope/pkg/types"
)

func TestDefaultGrammarSet(t *testing.T) {
	set := DefaultGrammarSet()

	assert.Equal(t, 5, set.Count())
	assert.Equal(t, []types.Jurisdiction{types.JurisdictionAU, types.JurisdictionSG, types.JurisdictionUK}, set.Jurisdictions())

	var names []string
	for _, grammar := range set.Grammars() {
		names = append(names, grammar.Name())
	}
	assert.Equal(t, []string{
		"UK neutral citation",
		"Australian medium neutral citation",
		"Singapore neutral citation",
		"law report citation",
		"unclassified citation-like reference",
	}, names)

	grammar, ok := set.Get("law report citation")
	require.True(t, ok)
	assert.Equal(t, PriorityLawReport, grammar.Priority())
	assert.Equal(t, types.Jurisdiction(""), grammar.Jurisdiction())

	for _, jurisdiction := range types.AllJurisdictions() {
		grammars, err := set.ForJurisdiction(jurisdiction)
		require.NoError(t, err)
		require.Len(t, grammars, 1)
		assert.Equal(t, jurisdiction, grammars[0].Jurisdiction())
		assert.Equal(t, PriorityNeutral, grammars[0].Priority())
	}
}

func TestGrammarSetForUnknownJurisdiction(t *testing.T) {
	_, err := DefaultGrammarSet().ForJurisdiction("CA")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownJurisdiction))
	assert.Contains(t, err.Error(), `"CA"`)
}

func TestNewGrammarSetValidation(t *testing.T) {
	table := DefaultReporterTable()

	_, err := NewGrammarSet(nil)
	assert.Error(t, err)

	_, err = NewGrammarSet(table, nil)
	assert.Error(t, err)

	_, err = NewGrammarSet(table, stubGrammar{name: ""})
	assert.Error(t, err)

	_, err = NewGrammarSet(table, NewUKNeutralGrammar(), NewUKNeutralGrammar())
	assert.Error(t, err)
}

func TestLoadGrammarFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grammars.yaml")
	content := `neutral_courts:
  UK: [UKAIT]
  australia: [NSWIRComm]
reporters:
  - code: SAL Prac
    origin: SG
    kind: report
  - code: NZSC
    origin: NZ
    kind: court
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	set, err := LoadGrammarFile(path)
	require.NoError(t, err)
	extractor := NewExtractor(set)

	citations, err := extractor.Extract("[2005] UKAIT 9; [2001] NSWIRComm 4; (2010) 3 SAL Prac 12", types.JurisdictionUK)
	require.NoError(t, err)
	require.Len(t, citations, 3)
	assert.Equal(t, TypeUKNeutral, citations[0].Type)
	assert.Equal(t, TypeAUNeutral, citations[1].Type)
	assert.Equal(t, TypeLawReport, citations[2].Type)
	assert.Equal(t, OriginSG, citations[2].Origin)

	// Codes of a jurisdiction without neutral grammar stay with the fallback grammar.
	citations, err = extractor.Extract("[2019] NZSC 5", types.JurisdictionUK)
	require.NoError(t, err)
	require.Len(t, citations, 1)
	assert.Equal(t, TypeFallback, citations[0].Type)
}

func TestLoadGrammarFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadGrammarFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("neutral_courts: [::"), 0o644))
	_, err = LoadGrammarFile(invalid)
	assert.Error(t, err)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("neutral_courts:\n  NZ: [NZSC]\n"), 0o644))
	_, err = LoadGrammarFile(unknown)
	var configErr *ConfigError
	require.True(t, errors.As(err, &configErr))
	assert.Equal(t, types.Jurisdiction("NZ"), configErr.Jurisdiction)

	badOrigin := filepath.Join(dir, "origin.yaml")
	require.NoError(t, os.WriteFile(badOrigin, []byte("reporters:\n  - code: XR\n    origin: MARS\n"), 0o644))
	_, err = LoadGrammarFile(badOrigin)
	assert.Error(t, err)
}
