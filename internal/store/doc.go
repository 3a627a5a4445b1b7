// Package store provides SQLite-backed persistence for leak findings.
//
// Findings are stored append-only in a single database file. The store
// re-validates every field at the persistence boundary even though
// findings are validated at construction: the database outlives the
// process, and a row that violates the length or score invariants would
// poison every later read.
//
// Design decision: We use one database file per monitor installation
// rather than one per source. The dashboard queries rank findings
// across all sources, which a single file answers with one ORDER BY.
package store
