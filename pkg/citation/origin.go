package citation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/coolbeans/juriscope/pkg/types"
)

// Origin is the jurisdiction a cited court or law report series belongs to,
// independent of the jurisdiction of the citing judgment.
type Origin string

// Citation origins, in classification precedence order.
const (
	OriginSG    Origin = "SG"
	OriginUK    Origin = "UK"
	OriginAU    Origin = "AU"
	OriginUSA   Origin = "USA"
	OriginCAN   Origin = "CAN"
	OriginIND   Origin = "IND"
	OriginNZ    Origin = "NZ"
	OriginEU    Origin = "EU"
	OriginOther Origin = "OTHER"
)

// AllOrigins returns every origin in precedence order. A code listed under
// several origins belongs to the earliest one.
func AllOrigins() []Origin {
	return []Origin{OriginSG, OriginUK, OriginAU, OriginUSA, OriginCAN, OriginIND, OriginNZ, OriginEU, OriginOther}
}

// ParseOrigin canonicalises an origin tag.
func ParseOrigin(value string) (Origin, bool) {
	candidate := Origin(strings.ToUpper(strings.TrimSpace(value)))
	for _, origin := range AllOrigins() {
		if candidate == origin {
			return origin, true
		}
	}
	switch candidate {
	case "US":
		return OriginUSA, true
	case "CA":
		return OriginCAN, true
	case "IN":
		return OriginIND, true
	case "GB":
		return OriginUK, true
	}
	return OriginOther, false
}

// OriginOf maps a document jurisdiction to the matching citation origin.
func OriginOf(jurisdiction types.Jurisdiction) Origin {
	origin, ok := ParseOrigin(string(jurisdiction))
	if !ok {
		return OriginOther
	}
	return origin
}

// ReporterKind distinguishes court codes used in neutral citations from
// printed law report series.
type ReporterKind string

const (
	KindCourt  ReporterKind = "court"
	KindReport ReporterKind = "report"
)

// Reporter is one entry of the reporter table.
type Reporter struct {
	Code   string       `yaml:"code" json:"code"`
	Origin Origin       `yaml:"origin" json:"origin"`
	Kind   ReporterKind `yaml:"kind" json:"kind"`
}

// ReporterTable maps court codes and law report abbreviations to their
// origin. It is built once and only read afterwards.
type ReporterTable struct {
	entries map[string]Reporter
	order   []string
}

// NewReporterTable creates a table from entries. When a code appears more
// than once, the first entry wins.
func NewReporterTable(entries []Reporter) (*ReporterTable, error) {
	table := &ReporterTable{entries: make(map[string]Reporter, len(entries))}
	for _, entry := range entries {
		if err := table.add(entry, false); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// DefaultReporterTable returns the built-in reporter table.
func DefaultReporterTable() *ReporterTable {
	table, err := NewReporterTable(defaultReporters())
	if err != nil {
		panic(fmt.Sprintf("default reporter table: %v", err))
	}
	return table
}

// With returns a copy of the table extended with entries. Extension entries
// replace existing entries with the same code.
func (t *ReporterTable) With(entries []Reporter) (*ReporterTable, error) {
	extended := &ReporterTable{
		entries: make(map[string]Reporter, len(t.entries)+len(entries)),
		order:   append([]string(nil), t.order...),
	}
	for key, entry := range t.entries {
		extended.entries[key] = entry
	}
	for _, entry := range entries {
		if err := extended.add(entry, true); err != nil {
			return nil, err
		}
	}
	return extended, nil
}

func (t *ReporterTable) add(entry Reporter, replace bool) error {
	entry.Code = strings.Join(strings.Fields(entry.Code), " ")
	if entry.Code == "" {
		return fmt.Errorf("reporter code cannot be empty")
	}
	origin, ok := ParseOrigin(string(entry.Origin))
	if !ok {
		return fmt.Errorf("reporter %q: unknown origin %q", entry.Code, entry.Origin)
	}
	entry.Origin = origin
	switch entry.Kind {
	case KindCourt, KindReport:
	case "":
		entry.Kind = KindReport
	default:
		return fmt.Errorf("reporter %q: unknown kind %q", entry.Code, entry.Kind)
	}

	key := reporterKey(entry.Code)
	if _, exists := t.entries[key]; exists {
		if !replace {
			return nil
		}
	} else {
		t.order = append(t.order, key)
	}
	t.entries[key] = entry
	return nil
}

// Lookup returns the entry for code, ignoring case, periods and spacing.
func (t *ReporterTable) Lookup(code string) (Reporter, bool) {
	entry, ok := t.entries[reporterKey(code)]
	return entry, ok
}

// Classify returns the origin of a court code or reporter abbreviation.
// Parenthesised suffixes ("SGHC(I)", "SLR(R)") and trailing words
// ("EWCA Civ", "F Supp 2d") are stripped progressively until a code is
// found. Unknown codes are OriginOther.
func (t *ReporterTable) Classify(code string) Origin {
	candidate := strings.Join(strings.Fields(code), " ")
	for candidate != "" {
		if entry, ok := t.Lookup(candidate); ok {
			return entry.Origin
		}
		if open := strings.LastIndexByte(candidate, '('); open > 0 {
			candidate = strings.TrimSpace(candidate[:open])
			continue
		}
		space := strings.LastIndexByte(candidate, ' ')
		if space < 0 {
			break
		}
		candidate = candidate[:space]
	}
	return OriginOther
}

// Codes returns the codes of the given kind and origin, in insertion order.
// An empty origin selects every origin.
func (t *ReporterTable) Codes(kind ReporterKind, origin Origin) []string {
	var codes []string
	for _, key := range t.order {
		entry := t.entries[key]
		if entry.Kind != kind || (origin != "" && entry.Origin != origin) {
			continue
		}
		codes = append(codes, entry.Code)
	}
	return codes
}

// Entries returns all entries sorted by origin precedence then code.
func (t *ReporterTable) Entries() []Reporter {
	rank := make(map[Origin]int)
	for i, origin := range AllOrigins() {
		rank[origin] = i
	}
	entries := make([]Reporter, 0, len(t.entries))
	for _, entry := range t.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Origin != entries[j].Origin {
			return rank[entries[i].Origin] < rank[entries[j].Origin]
		}
		return entries[i].Code < entries[j].Code
	})
	return entries
}

func reporterKey(code string) string {
	code = strings.ToUpper(strings.ReplaceAll(code, ".", ""))
	return strings.Join(strings.Fields(code), " ")
}

var defaultReporterTable = DefaultReporterTable()

// defaultReporters lists court codes and report series per origin. The
// list order is the precedence order for codes shared between origins
// (e.g. "SCC" is Canadian before Indian, "FCA" Australian before Canadian).
func defaultReporters() []Reporter {
	var entries []Reporter
	add := func(origin Origin, kind ReporterKind, codes ...string) {
		for _, code := range codes {
			entries = append(entries, Reporter{Code: code, Origin: origin, Kind: kind})
		}
	}

	add(OriginSG, KindCourt, "SGCA", "SGHC", "SGHCF", "SGHCR", "SGHCA", "SGDC", "SGMC", "SGFC", "SGYC")
	add(OriginSG, KindReport, "SLR(R)", "SLR", "MLJ")

	add(OriginUK, KindCourt, "UKSC", "UKHL", "UKPC", "EWCA Civ", "EWCA Crim", "EWCA", "EWHC", "EWFC",
		"EWCOP", "UKUT", "UKFTT", "UKEAT", "UKIPTrib", "CSOH", "CSIH", "HCJAC", "NICA", "NIQB")
	add(OriginUK, KindReport, "AC", "WLR", "QB", "KB", "Ch", "Fam", "All ER", "All ER (Comm)",
		"Lloyd's Rep", "Lloyd", "ICR", "IRLR", "Cr App R", "BCLC", "BCC", "FSR", "RPC", "STC", "TC",
		"WTLR", "EMLR", "HLR", "P & CR", "EG", "BLR", "Con LR", "SC", "SLT")

	add(OriginAU, KindCourt, "HCA", "FCAFC", "FCA", "FCCA", "FamCA", "FamCAFC", "FedCFamC1A",
		"FedCFamC1F", "FedCFamC2F", "NSWCA", "NSWCCA", "NSWSC", "NSWLEC", "NSWDC", "VSC", "VSCA",
		"QCA", "QSC", "WASCA", "WASC", "SASC", "SASCFC", "SASFC", "TASSC", "TASFC", "TASCCA",
		"ACTSC", "ACTCA", "NTSC", "NTCA", "AATA")
	add(OriginAU, KindReport, "CLR", "ALR", "ALJR", "FLR", "FCR", "NSWLR", "VR", "SASR", "WAR",
		"Qd R", "Tas R", "ACTR", "NTLR", "A Crim R", "IPR")

	add(OriginUSA, KindReport, "US", "S Ct", "L Ed 2d", "L Ed", "F 4th", "F 3d", "F 2d", "F Supp 3d",
		"F Supp 2d", "F Supp", "F", "So 2d", "So", "NE 2d", "NE", "NW 2d", "NW", "SE 2d", "SE",
		"SW 2d", "SW", "P 3d", "P 2d", "P", "A 3d", "A 2d", "A", "Cal", "NY", "Ill", "Tex", "Mass", "Pa")

	add(OriginCAN, KindCourt, "SCC", "FC", "ONCA", "ONSC", "BCCA", "BCSC", "ABCA", "ABQB", "QCCA")
	add(OriginCAN, KindReport, "SCR", "DLR", "OR", "AR", "BCLR", "WWR", "RFL", "CCC")

	add(OriginIND, KindReport, "AIR", "Bom", "Mad", "All", "Del", "Kar", "Ker")

	add(OriginNZ, KindCourt, "NZSC", "NZCA", "NZHC", "NZEmpC")
	add(OriginNZ, KindReport, "NZLR", "NZAR")

	add(OriginEU, KindCourt, "EUECJ", "ECHR")
	add(OriginEU, KindReport, "ECR", "CMLR", "EHRR")

	return entries
}
