package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the name of the optional metadata file at the corpus root.
const ManifestFile = "manifest.yaml"

// ManifestEntry describes one corpus file. Empty fields fall back to the
// file's own header lines.
type ManifestEntry struct {
	ID           string `yaml:"id"`
	File         string `yaml:"file"`
	Jurisdiction string `yaml:"jurisdiction"`
	Court        string `yaml:"court"`
	Title        string `yaml:"title"`
	Date         string `yaml:"date"`
}

// Manifest lists per-file metadata, keyed by file path relative to the
// corpus root.
type Manifest struct {
	Documents []ManifestEntry `yaml:"documents"`

	byFile map[string]ManifestEntry
}

// LoadManifest reads a manifest. A missing file yields an empty manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return newManifest(nil)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return newManifest(manifest.Documents)
}

func newManifest(entries []ManifestEntry) (*Manifest, error) {
	manifest := &Manifest{Documents: entries, byFile: make(map[string]ManifestEntry, len(entries))}
	ids := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.File == "" {
			return nil, fmt.Errorf("manifest entry %q has no file", entry.ID)
		}
		key := manifestKey(entry.File)
		if _, exists := manifest.byFile[key]; exists {
			return nil, fmt.Errorf("manifest lists file %s twice", entry.File)
		}
		if entry.ID != "" {
			if ids[entry.ID] {
				return nil, fmt.Errorf("manifest lists id %q twice", entry.ID)
			}
			ids[entry.ID] = true
		}
		manifest.byFile[key] = entry
	}
	return manifest, nil
}

// Lookup returns the entry for a path relative to the corpus root.
func (m *Manifest) Lookup(relativePath string) (ManifestEntry, bool) {
	entry, ok := m.byFile[manifestKey(relativePath)]
	return entry, ok
}

func manifestKey(path string) string {
	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean(path)), "./")
}
