// Package monitor orchestrates one monitoring cycle: fetch every
// configured source, scan the sanitized content for indicators, and
// route each finding through persistence and alerting.
//
// Failure isolation is the organizing rule. A source that cannot be
// fetched, a finding that cannot be stored, and an alert that cannot be
// dispatched are all recorded in the cycle report and logged; none of
// them stops the cycle. The only thing that interrupts a cycle is
// context cancellation.
//
// Design decision: per-source work runs as a short step sequence
// (fetch, scan, deliver) with a cancellation check between steps.
// Steps carry their own state and a Name for logging, which keeps the
// orchestrator a dumb loop and makes each stage testable in isolation.
package monitor
