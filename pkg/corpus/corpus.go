// Package corpus loads judgment texts from a directory into documents,
// reading metadata from an optional manifest, from file header lines, or
// from the court code in the file path.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/coolbeans/juriscope/pkg/citation"
	"github.com/coolbeans/juriscope/pkg/types"
)

// TextExtension is the extension of corpus files.
const TextExtension = ".txt"

// ErrUnknownCourt is returned when a manifest or header names a court that
// is not registered.
var ErrUnknownCourt = errors.New("unknown court")

// LoadError records a corpus file that could not be turned into a
// document.
type LoadError struct {
	Path       string
	DocumentID string
	Err        error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Corpus is the result of loading a directory.
type Corpus struct {
	Root      string
	Documents []types.Document
	Errors    []*LoadError
}

// Option configures LoadDirectory.
type Option func(*loader)

type loader struct {
	defaultCourt *types.Court
	rootName     string
}

// WithDefaultCourt attributes files to court when neither the manifest,
// the header nor the path names one.
func WithDefaultCourt(court types.Court) Option {
	return func(l *loader) {
		l.defaultCourt = &court
	}
}

// LoadDirectory walks dir for *.txt files, in lexical order, and builds a
// document per file. Files that cannot be read are reported in
// Corpus.Errors; documents with incomplete metadata are still returned so
// the pipeline can report them. The returned error is non-nil only when
// dir or its manifest cannot be read.
func LoadDirectory(dir string, courts *types.CourtRegistry, opts ...Option) (*Corpus, error) {
	if courts == nil {
		courts = types.DefaultCourtRegistry()
	}
	l := &loader{rootName: filepath.Base(filepath.Clean(dir))}
	for _, opt := range opts {
		opt(l)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus %s is not a directory", dir)
	}

	manifest, err := LoadManifest(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}

	corpus := &Corpus{Root: dir}
	seen := make(map[string]bool)
	err = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			corpus.Errors = append(corpus.Errors, &LoadError{Path: path, Err: walkErr})
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(path), TextExtension) {
			return nil
		}

		relative, err := filepath.Rel(dir, path)
		if err != nil {
			relative = path
		}
		seen[manifestKey(relative)] = true

		doc, err := l.loadFile(path, relative, manifest, courts)
		if err != nil {
			corpus.Errors = append(corpus.Errors, &LoadError{Path: path, DocumentID: doc.ID, Err: err})
			return nil
		}
		corpus.Documents = append(corpus.Documents, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk corpus: %w", err)
	}

	for _, entry := range manifest.Documents {
		if !seen[manifestKey(entry.File)] {
			corpus.Errors = append(corpus.Errors, &LoadError{
				Path:       filepath.Join(dir, entry.File),
				DocumentID: entry.ID,
				Err:        fs.ErrNotExist,
			})
		}
	}
	return corpus, nil
}

func (l *loader) loadFile(path, relative string, manifest *Manifest, courts *types.CourtRegistry) (types.Document, error) {
	entry, _ := manifest.Lookup(relative)
	doc := types.Document{
		ID:         entry.ID,
		SourcePath: path,
	}
	if doc.ID == "" {
		doc.ID = documentID(relative)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("failed to read file: %w", err)
	}

	header, sections := ParseContent(string(data))
	doc.RawText = sections.Text()
	if sections.Bannered {
		doc.HeadnoteWordCount = len(strings.Fields(sections.Headnotes))
	}

	title := firstNonEmpty(entry.Title, header.Case)
	neutral, inTitle := neutralCitationIn(title)
	found := inTitle
	if !found {
		neutral, found = neutralCitationIn(filepath.Base(relative))
	}
	if found {
		doc.NeutralCitation = neutral.RawText
	}
	doc.Title = cleanTitle(title, neutral, inTitle)
	if doc.Title == "" {
		doc.Title = strings.TrimSuffix(filepath.Base(relative), filepath.Ext(relative))
	}
	doc.Date = firstNonEmpty(entry.Date, header.Date)
	doc.Year = yearOf(neutral, found, doc.Date)

	court, err := l.resolveCourt(firstNonEmpty(entry.Court, header.Court), neutral, found, relative, courts)
	if err != nil {
		return doc, err
	}
	doc.Court = court.Code
	doc.Jurisdiction = court.Jurisdiction

	if value := firstNonEmpty(entry.Jurisdiction, header.Jurisdiction); value != "" {
		// An unregistered tag is kept so the pipeline reports it.
		doc.Jurisdiction, _ = types.ParseJurisdiction(value)
	}
	return doc, nil
}

// resolveCourt picks the court from, in order: the named code, the court of
// the neutral citation, the path, the default court. No court at all
// yields a zero Court; a named code that matches nothing is an error.
func (l *loader) resolveCourt(named string, neutral citation.Citation, found bool, relative string, courts *types.CourtRegistry) (types.Court, error) {
	if named != "" {
		if court, ok := courts.Lookup(named); ok {
			return court, nil
		}
	}
	if found {
		code := neutral.Components.Court
		if open := strings.IndexByte(code, '('); open > 0 {
			code = code[:open]
		}
		if court, ok := courts.Lookup(code); ok {
			return court, nil
		}
		if named == "" {
			return types.Court{Code: code, Jurisdiction: neutral.Jurisdiction}, nil
		}
	}
	if court, ok := courts.DetectInPath(filepath.Join(l.rootName, relative)); ok {
		return court, nil
	}
	if l.defaultCourt != nil {
		return *l.defaultCourt, nil
	}
	if named != "" {
		return types.Court{}, fmt.Errorf("%w %q", ErrUnknownCourt, named)
	}
	return types.Court{}, nil
}

func documentID(relative string) string {
	return strings.TrimSuffix(filepath.ToSlash(relative), filepath.Ext(relative))
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}
