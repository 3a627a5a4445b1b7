// Package validate provides pure input validation and sanitization for
// DarkHound: source URL and email predicates, indicator bounds checks,
// and HTML content sanitization.
//
// All functions here are pure, fast, and safe for concurrent use; none
// perform I/O. Validation failures are reported through the
// ErrInvalidInput sentinel so callers can fail closed with errors.Is
// before attempting any network or disk operation.
//
// Design decision: Validation lives in its own leaf package rather than
// next to each consumer because the same predicates guard several
// boundaries. The fetcher re-validates sources defensively, the config
// loader drops invalid entries, and the dispatcher checks destinations,
// all through the same functions.
package validate
