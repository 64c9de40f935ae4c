package corpus

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/juriscope/pkg/types"
)

const banneredFile = `======================================================================
CASE: Tan v Lim [2019] SGCA 5
======================================================================

----------------------------------------
HEADNOTES
----------------------------------------
Contract - Formation - Whether offer accepted.
Decision Date: 22 January 2019

----------------------------------------
CORE JUDGMENT
----------------------------------------
Sundaresh Menon CJ (delivering the judgment of the court):

1. This appeal concerns the formation of a contract.

----------------------------------------
FOOTNOTES
----------------------------------------
1 See [2008] 1 SLR(R) 76.
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func byID(c *Corpus) map[string]types.Document {
	docs := make(map[string]types.Document, len(c.Documents))
	for _, doc := range c.Documents {
		docs[doc.ID] = doc
	}
	return docs
}

func TestParseContentBanneredSections(t *testing.T) {
	header, sections := ParseContent(strings.ReplaceAll(banneredFile, "\n", "\r\n"))

	assert.Equal(t, "Tan v Lim [2019] SGCA 5", header.Case)
	assert.Equal(t, "22 January 2019", header.Date)
	assert.True(t, sections.Bannered)
	assert.Equal(t, "Contract - Formation - Whether offer accepted.\nDecision Date: 22 January 2019", sections.Headnotes)
	assert.True(t, strings.HasPrefix(sections.Core, "Sundaresh Menon CJ"))
	assert.Equal(t, "1 See [2008] 1 SLR(R) 76.", sections.Footnotes)

	text := sections.Text()
	assert.Contains(t, text, "formation of a contract")
	assert.Contains(t, text, "SLR(R) 76")
	assert.NotContains(t, text, "HEADNOTES")
	assert.NotContains(t, text, "Whether offer accepted")
}

func TestParseContentHeaderLines(t *testing.T) {
	content := "CASE: Re X\nCOURT: HCA\nJURISDICTION: Australia\nDecision Date: 3 March 2015\n\nThe appeal is dismissed.\nCOURT: not a header any more\n"
	header, sections := ParseContent(content)

	assert.Equal(t, Header{Case: "Re X", Court: "HCA", Jurisdiction: "Australia", Date: "3 March 2015"}, header)
	assert.False(t, sections.Bannered)
	assert.Equal(t, "The appeal is dismissed.\nCOURT: not a header any more", sections.Text())
}

func TestParseContentWithoutHeader(t *testing.T) {
	header, sections := ParseContent("Plain judgment text.\n")
	assert.Equal(t, Header{}, header)
	assert.Equal(t, "Plain judgment text.", sections.Text())
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sg/tan.txt", banneredFile)
	writeFile(t, dir, "au/rex.txt", "CASE: Re X\nCOURT: HCA\nDecision Date: 3 March 2015\n\nThe appeal is dismissed.\n")
	writeFile(t, dir, "UKSC_2009-2024/smith.txt", "Smith v Jones. The appeal is allowed.\n")
	writeFile(t, dir, "misc/unknown.txt", "No metadata at all.\n")
	writeFile(t, dir, "misc/notes.md", "ignored")

	corpus, err := LoadDirectory(dir, types.DefaultCourtRegistry())
	require.NoError(t, err)
	assert.Empty(t, corpus.Errors)
	require.Len(t, corpus.Documents, 4)

	// Lexical walk order.
	var ids []string
	for _, doc := range corpus.Documents {
		ids = append(ids, doc.ID)
		assert.NotEmpty(t, doc.SourcePath)
	}
	assert.Equal(t, []string{"UKSC_2009-2024/smith", "au/rex", "misc/unknown", "sg/tan"}, ids)

	docs := byID(corpus)

	tan := docs["sg/tan"]
	assert.Equal(t, "Tan v Lim", tan.Title)
	assert.Equal(t, "[2019] SGCA 5", tan.NeutralCitation)
	assert.Equal(t, "SGCA", tan.Court)
	assert.Equal(t, types.JurisdictionSG, tan.Jurisdiction)
	assert.Equal(t, "2019", tan.Year)
	assert.Equal(t, "22 January 2019", tan.Date)
	assert.Equal(t, 12, tan.HeadnoteWordCount)
	assert.NotContains(t, tan.RawText, "HEADNOTES")

	rex := docs["au/rex"]
	assert.Equal(t, "HCA", rex.Court)
	assert.Equal(t, types.JurisdictionAU, rex.Jurisdiction)
	assert.Equal(t, "2015", rex.Year)
	assert.Equal(t, "The appeal is dismissed.", rex.RawText)

	smith := docs["UKSC_2009-2024/smith"]
	assert.Equal(t, "UKSC", smith.Court)
	assert.Equal(t, types.JurisdictionUK, smith.Jurisdiction)
	assert.Equal(t, "smith", smith.Title)

	unknown := docs["misc/unknown"]
	assert.Empty(t, unknown.Court)
	assert.Empty(t, unknown.Jurisdiction)
}

func TestLoadDirectoryDefaultCourt(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "Judgment text.\n")

	sgdc, ok := types.DefaultCourtRegistry().Lookup("SGDC")
	require.True(t, ok)
	corpus, err := LoadDirectory(dir, nil, WithDefaultCourt(sgdc))
	require.NoError(t, err)
	require.Len(t, corpus.Documents, 1)
	assert.Equal(t, "SGDC", corpus.Documents[0].Court)
	assert.Equal(t, types.JurisdictionSG, corpus.Documents[0].Jurisdiction)
}

func TestLoadDirectoryManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.txt", "CASE: Ignored title\nCOURT: SGHC\n\nText one.\n")
	writeFile(t, dir, "two.txt", "Text two.\n")
	writeFile(t, dir, "three.txt", "COURT: Supreme Court of Narnia\n\nText three.\n")
	writeFile(t, dir, ManifestFile, `documents:
  - id: case-1
    file: one.txt
    court: UKPC
    title: Brown v Green [2012] UKPC 3
  - id: case-2
    file: ./two.txt
    jurisdiction: NZ
    court: SGMC
  - id: case-9
    file: missing.txt
`)

	corpus, err := LoadDirectory(dir, types.DefaultCourtRegistry())
	require.NoError(t, err)

	docs := byID(corpus)
	require.Contains(t, docs, "case-1")
	assert.Equal(t, "UKPC", docs["case-1"].Court)
	assert.Equal(t, types.JurisdictionUK, docs["case-1"].Jurisdiction)
	assert.Equal(t, "Brown v Green", docs["case-1"].Title)
	assert.Equal(t, "2012", docs["case-1"].Year)

	require.Contains(t, docs, "case-2")
	assert.Equal(t, "SGMC", docs["case-2"].Court)
	assert.Equal(t, types.Jurisdiction("NZ"), docs["case-2"].Jurisdiction)

	require.Len(t, corpus.Errors, 2)
	assert.True(t, errors.Is(corpus.Errors[0].Err, ErrUnknownCourt))
	assert.Equal(t, "three", corpus.Errors[0].DocumentID)
	assert.True(t, errors.Is(corpus.Errors[1], fs.ErrNotExist))
	assert.Equal(t, "case-9", corpus.Errors[1].DocumentID)
}

func TestLoadDirectoryErrors(t *testing.T) {
	_, err := LoadDirectory(filepath.Join(t.TempDir(), "absent"), nil)
	assert.Error(t, err)

	file := writeFile(t, t.TempDir(), "file.txt", "x")
	_, err = LoadDirectory(file, nil)
	assert.Error(t, err)

	dir := t.TempDir()
	writeFile(t, dir, ManifestFile, "documents: [::")
	_, err = LoadDirectory(dir, nil)
	assert.Error(t, err)

	duplicate := t.TempDir()
	writeFile(t, duplicate, ManifestFile, "documents:\n  - id: a\n    file: x.txt\n  - id: b\n    file: x.txt\n")
	_, err = LoadDirectory(duplicate, nil)
	assert.Error(t, err)
}
