// Package feed provides the threat-feed lookup capability the scanner
// uses to enrich scan results: indicator set in, finding-like records out.
//
// Lookups are strictly best-effort. A feed failure is logged and counted
// but never affects the primary matches a scan already produced; a cycle
// with a dead feed is a degraded cycle, not a failed one.
//
// The default implementation is a plain JSON-over-HTTP client. When no
// feed URL is configured the lookup is disabled and returns nothing.
package feed
