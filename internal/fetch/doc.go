// Package fetch retrieves monitoring sources through the anonymizing
// proxy and returns sanitized content.
//
// The Fetcher issues a single GET per source with a bounded timeout,
// never follows redirects, caps the response body at a fixed ceiling by
// truncation, and sanitizes the body before returning it. Every failure
// mode maps to a distinct FetchError reason (timeout, HTTP status, proxy
// unreachable, connection error, decode error) so the orchestrator can
// count and report failures per class; none of them are fatal to a cycle.
//
// There is no retry inside the Fetcher. Single attempt per source per
// cycle is the baseline; any retry policy belongs to the caller.
package fetch
