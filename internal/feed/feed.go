package feed

import (
	"context"

	"github.com/nao1215/darkhound/internal/model"
)

// Lookup queries a threat-intelligence feed for records matching the
// given indicators. Implementations must be safe for concurrent use.
//
// A nil slice with a nil error is a valid "nothing known" result.
// Errors are expected to be common (feeds rate-limit, go down, rotate
// keys); callers treat them as non-fatal.
type Lookup interface {
	// Lookup returns finding-like records for the indicator set.
	Lookup(ctx context.Context, indicators []string) ([]model.Finding, error)
}

// Disabled is a Lookup that always returns nothing.
// Used when no feed is configured, so callers never need a nil check.
type Disabled struct{}

// Lookup implements Lookup with an empty result.
func (Disabled) Lookup(_ context.Context, _ []string) ([]model.Finding, error) {
	return nil, nil
}

// Ensure Disabled implements Lookup.
var _ Lookup = Disabled{}
