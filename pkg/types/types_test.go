package types

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJurisdiction(t *testing.T) {
	cases := []struct {
		input    string
		expected Jurisdiction
		known    bool
	}{
		{"UK", JurisdictionUK, true},
		{"gb", JurisdictionUK, true},
		{"Australia", JurisdictionAU, true},
		{" sg ", JurisdictionSG, true},
		{"Singapore", JurisdictionSG, true},
		{"nz", Jurisdiction("NZ"), false},
		{"", Jurisdiction(""), false},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			jurisdiction, known := ParseJurisdiction(tc.input)
			assert.Equal(t, tc.expected, jurisdiction)
			assert.Equal(t, tc.known, known)
			assert.Equal(t, tc.known, jurisdiction.IsKnown())
		})
	}
}

func TestDefaultCourtRegistry(t *testing.T) {
	registry := DefaultCourtRegistry()

	court, ok := registry.Lookup("uksc")
	require.True(t, ok)
	assert.Equal(t, JurisdictionUK, court.Jurisdiction)

	court, ok = registry.Lookup("HCA")
	require.True(t, ok)
	assert.Equal(t, "High Court of Australia", court.Name)

	_, ok = registry.Lookup("NZSC")
	assert.False(t, ok)

	courts := registry.List()
	require.NotEmpty(t, courts)
	assert.Equal(t, JurisdictionAU, courts[0].Jurisdiction)
}

func TestNewCourtRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewCourtRegistry([]Court{
		{Code: "HCA", Jurisdiction: JurisdictionAU},
		{Code: "hca", Jurisdiction: JurisdictionAU},
	})
	assert.Error(t, err)

	_, err = NewCourtRegistry([]Court{{Code: " "}})
	assert.Error(t, err)
}

func TestCourtRegistryDetectInPath(t *testing.T) {
	registry := DefaultCourtRegistry()

	cases := []struct {
		path     string
		expected string
		found    bool
	}{
		{"corpus/UKSC_2009-2024 Final/case.txt", "UKSC", true},
		{"corpus/HL_1996-2009/case.txt", "UKHL", true},
		{"/data/sgca/2015/abc.txt", "SGCA", true},
		{"/data/unknown/abc.txt", "", false},
	}
	for _, tc := range cases {
		court, found := registry.DetectInPath(tc.path)
		assert.Equal(t, tc.found, found, tc.path)
		assert.Equal(t, tc.expected, court.Code, tc.path)
	}
}

func TestLoadCourtFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courts.yaml")
	content := `courts:
  - code: FCAFC
    name: Full Court of the Federal Court of Australia
    jurisdiction: australia
  - code: HCA
    name: High Court
    jurisdiction: AU
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	registry, err := LoadCourtFile(path)
	require.NoError(t, err)

	court, ok := registry.Lookup("FCAFC")
	require.True(t, ok)
	assert.Equal(t, JurisdictionAU, court.Jurisdiction)

	court, ok = registry.Lookup("HCA")
	require.True(t, ok)
	assert.Equal(t, "High Court", court.Name)

	_, ok = registry.Lookup("UKSC")
	assert.True(t, ok)
}

func TestLoadCourtFileErrors(t *testing.T) {
	_, err := LoadCourtFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("courts: [::"), 0o644))
	_, err = LoadCourtFile(path)
	assert.Error(t, err)
}
