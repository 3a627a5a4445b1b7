// Package scanner matches configured indicators against sanitized
// content and turns each match into a validated finding.
//
// For every matched indicator the scanner builds a bounded excerpt of
// the surrounding content, runs entity extraction over that excerpt,
// scores the result, and emits a model.Finding. A failing extraction
// drops only that candidate; the rest of the scan continues.
//
// Design decision: the scanner is pure with respect to I/O. It never
// fetches, stores, or alerts. Optional enrichment (threat feed lookups,
// embedded image metadata) happens through injected collaborators so a
// scan over untrusted content stays testable without a network.
package scanner
