package types

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Court identifies a court whose judgments make up part of the corpus.
type Court struct {
	Code         string       `yaml:"code" json:"code"`
	Name         string       `yaml:"name" json:"name"`
	Jurisdiction Jurisdiction `yaml:"jurisdiction" json:"jurisdiction"`
}

// courtFile is the YAML layout of a court registry file.
type courtFile struct {
	Courts []Court `yaml:"courts"`
}

// defaultCourts is the built-in registry of apex and lower courts the corpus
// is drawn from.
var defaultCourts = []Court{
	{Code: "UKSC", Name: "UK Supreme Court", Jurisdiction: JurisdictionUK},
	{Code: "UKHL", Name: "UK House of Lords", Jurisdiction: JurisdictionUK},
	{Code: "UKPC", Name: "Judicial Committee of the Privy Council", Jurisdiction: JurisdictionUK},
	{Code: "HCA", Name: "High Court of Australia", Jurisdiction: JurisdictionAU},
	{Code: "SGCA", Name: "Singapore Court of Appeal", Jurisdiction: JurisdictionSG},
	{Code: "SGHC", Name: "Singapore High Court", Jurisdiction: JurisdictionSG},
	{Code: "SGDC", Name: "Singapore District Court", Jurisdiction: JurisdictionSG},
	{Code: "SGMC", Name: "Singapore Magistrates' Court", Jurisdiction: JurisdictionSG},
}

// CourtRegistry maps court codes to courts. It is built once and only read
// afterwards.
type CourtRegistry struct {
	courts map[string]Court
}

// NewCourtRegistry creates a registry holding the given courts.
// Returns an error for empty or duplicate codes.
func NewCourtRegistry(courts []Court) (*CourtRegistry, error) {
	registry := &CourtRegistry{courts: make(map[string]Court, len(courts))}
	for _, court := range courts {
		if err := registry.add(court); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// DefaultCourtRegistry returns the built-in court registry.
func DefaultCourtRegistry() *CourtRegistry {
	registry, err := NewCourtRegistry(defaultCourts)
	if err != nil {
		panic(fmt.Sprintf("default court registry: %v", err))
	}
	return registry
}

// LoadCourtFile extends the built-in registry with the courts listed in a YAML
// file. Entries in the file replace built-in courts with the same code.
func LoadCourtFile(path string) (*CourtRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading court file: %w", err)
	}

	var file courtFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing court file %s: %w", path, err)
	}

	registry := DefaultCourtRegistry()
	for _, court := range file.Courts {
		delete(registry.courts, strings.ToUpper(court.Code))
		if err := registry.add(court); err != nil {
			return nil, fmt.Errorf("court file %s: %w", path, err)
		}
	}
	return registry, nil
}

func (r *CourtRegistry) add(court Court) error {
	code := strings.ToUpper(strings.TrimSpace(court.Code))
	if code == "" {
		return fmt.Errorf("court code cannot be empty")
	}
	if _, exists := r.courts[code]; exists {
		return fmt.Errorf("court %q already registered", code)
	}
	court.Code = code
	court.Jurisdiction, _ = ParseJurisdiction(string(court.Jurisdiction))
	r.courts[code] = court
	return nil
}

// Lookup returns the court registered under code (case-insensitive).
func (r *CourtRegistry) Lookup(code string) (Court, bool) {
	court, ok := r.courts[strings.ToUpper(strings.TrimSpace(code))]
	return court, ok
}

// List returns all courts sorted by jurisdiction then code.
func (r *CourtRegistry) List() []Court {
	courts := make([]Court, 0, len(r.courts))
	for _, court := range r.courts {
		courts = append(courts, court)
	}
	sort.Slice(courts, func(i, j int) bool {
		if courts[i].Jurisdiction != courts[j].Jurisdiction {
			return courts[i].Jurisdiction < courts[j].Jurisdiction
		}
		return courts[i].Code < courts[j].Code
	})
	return courts
}

var courtTokenPattern = regexp.MustCompile(`[A-Za-z]+`)

// DetectInPath finds a registered court code among the alphabetic tokens of a
// file path, e.g. "corpus/UKSC_2009-2024/x.txt". The legacy "HL_" folder
// prefix maps to UKHL.
func (r *CourtRegistry) DetectInPath(path string) (Court, bool) {
	for _, token := range courtTokenPattern.FindAllString(path, -1) {
		upper := strings.ToUpper(token)
		if court, ok := r.courts[upper]; ok {
			return court, true
		}
		if upper == "HL" {
			if court, ok := r.courts["UKHL"]; ok {
				return court, true
			}
		}
	}
	return Court{}, false
}
