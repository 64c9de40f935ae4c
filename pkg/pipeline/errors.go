package pipeline

import (
	"errors"
	"fmt"

	"github.com/coolbeans/juriscope/pkg/aggregate"
	"github.com/coolbeans/juriscope/pkg/citation"
)

// Stage names the pipeline step a document failed in.
type Stage string

const (
	StageLoad      Stage = "load"
	StageMetadata  Stage = "metadata"
	StageNormalize Stage = "normalize"
	StageExtract   Stage = "extract"
	StageAggregate Stage = "aggregate"
)

// FailureKind classifies recoverable per-document failures.
type FailureKind string

const (
	// KindMetadata covers missing identifier, jurisdiction or court.
	KindMetadata FailureKind = "metadata"

	// KindConfig covers documents whose jurisdiction has no registered
	// neutral citation grammar.
	KindConfig FailureKind = "config"

	// KindInput covers unreadable, duplicate or undecodable inputs.
	KindInput FailureKind = "input"
)

// ErrDuplicateDocument is returned for a document whose ID was already
// seen earlier in the same run.
var ErrDuplicateDocument = errors.New("duplicate document id")

// ErrInvalidEncoding is returned for raw text that is not valid UTF-8.
var ErrInvalidEncoding = errors.New("raw text is not valid UTF-8")

// DocumentError is a failure of one document in one stage.
type DocumentError struct {
	DocumentID string
	Stage      Stage
	Err        error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %q: %s: %v", e.DocumentID, e.Stage, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Failure is a document excluded from the dataset, reported separately
// for operator review.
type Failure struct {
	DocumentID string      `json:"document_id"`
	Stage      Stage       `json:"stage"`
	Kind       FailureKind `json:"kind"`
	Err        error       `json:"-"`
}

// Message returns the failure's error text.
func (f Failure) Message() string {
	if f.Err == nil {
		return ""
	}
	return f.Err.Error()
}

// NewFailure builds a Failure from err, classifying its kind: missing
// metadata, unknown jurisdiction, or otherwise an input failure.
func NewFailure(documentID string, stage Stage, err error) Failure {
	var docErr *DocumentError
	if errors.As(err, &docErr) {
		if documentID == "" {
			documentID = docErr.DocumentID
		}
		stage = docErr.Stage
	}
	return Failure{
		DocumentID: documentID,
		Stage:      stage,
		Kind:       Classify(err),
		Err:        err,
	}
}

// Classify returns the failure kind of err.
func Classify(err error) FailureKind {
	var configErr *citation.ConfigError
	switch {
	case errors.Is(err, aggregate.ErrMissingMetadata):
		return KindMetadata
	case errors.As(err, &configErr), errors.Is(err, citation.ErrUnknownJurisdiction):
		return KindConfig
	}
	return KindInput
}
