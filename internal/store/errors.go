package store

import "fmt"

// ErrorKind classifies store failures so callers can tell bad input
// from a bad database without string matching.
type ErrorKind int

const (
	// KindValidation means the finding failed boundary validation and
	// was never written. Retrying with the same finding cannot succeed.
	KindValidation ErrorKind = iota

	// KindIntegrity means the database rejected the write (constraint
	// violation, corrupt file).
	KindIntegrity

	// KindOperational means an I/O-level failure: locked database,
	// timeout, missing file. Retrying may succeed.
	KindOperational
)

// String returns a human-readable kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindIntegrity:
		return "integrity"
	case KindOperational:
		return "operational"
	default:
		return "unknown"
	}
}

// StoreError is the error type returned by store operations.
type StoreError struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Op is the store operation that failed ("persist", "top", "count").
	Op string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("store %s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("store %s: %s error: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}
