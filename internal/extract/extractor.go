package extract

import (
	"context"
	"fmt"
)

// Extractor turns a text excerpt into a mapping of entity kind to
// entity text. Implementations must tolerate arbitrary short strings,
// including empty ones, and must be safe for concurrent use.
type Extractor interface {
	// Extract analyzes text and returns the entities found in it.
	// An empty map (or nil) with a nil error is a valid "nothing found"
	// result; an error means this excerpt could not be analyzed at all.
	Extract(ctx context.Context, text string) (map[string]string, error)
}

// ExtractError wraps a failure of the extraction backend.
// The scanner catches it per candidate: the failing candidate is dropped
// and logged, scanning continues for the remaining matches.
type ExtractError struct {
	// Err is the underlying backend error.
	Err error
}

// Error implements the error interface.
func (e *ExtractError) Error() string {
	return fmt.Sprintf("entity extraction failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *ExtractError) Unwrap() error {
	return e.Err
}
