// Package model defines the core data structures used throughout DarkHound.
//
// This package contains the following main types:
//   - Finding: One detected occurrence of a leak indicator
//   - PersistedLeak: The on-disk representation of a Finding
//   - CycleReport: Counters for one fetch cycle over all sources
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (scanner, store, alert, monitor, report)
// need to use these types, so centralizing them prevents import cycles.
//
// Finding construction goes through a validating factory (NewFinding) that
// enforces all length caps and the risk score range. Code downstream of the
// factory never needs to re-check those invariants, though the store does so
// anyway as defense in depth at the persistence boundary.
package model
