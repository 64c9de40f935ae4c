package citation

import (
	"errors"
	"fmt"

	"github.com/coolbeans/juriscope/pkg/types"
)

// ErrUnknownJurisdiction is returned when no neutral citation grammar is
// registered for a jurisdiction.
var ErrUnknownJurisdiction = errors.New("no neutral citation grammar registered")

// ConfigError reports a grammar configuration problem for one jurisdiction.
// It halts citation extraction for the documents of that jurisdiction.
type ConfigError struct {
	Jurisdiction types.Jurisdiction
	Err          error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("citation grammar configuration for jurisdiction %q: %v", e.Jurisdiction, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
