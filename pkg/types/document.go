package types

// Document is one judicial opinion entering the pipeline. It is built by the
// corpus loader and never mutated afterwards; normalized text is derived per
// run and is not stored here.
type Document struct {
	// ID uniquely identifies the document within a corpus.
	ID string `json:"id"`

	Jurisdiction Jurisdiction `json:"jurisdiction"`
	Court        string       `json:"court"`

	// RawText is the unprocessed judgment text. It is never written to the
	// output dataset.
	RawText string `json:"-"`

	// Optional metadata recovered from the source file.
	Title             string `json:"title,omitempty"`
	NeutralCitation   string `json:"neutral_citation,omitempty"`
	Date              string `json:"date,omitempty"`
	Year              string `json:"year,omitempty"`
	SourcePath        string `json:"source_path,omitempty"`
	HeadnoteWordCount int    `json:"headnote_word_count,omitempty"`
}
