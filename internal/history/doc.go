// Package history keeps a SQLite ledger of collation runs: one row per
// directory per invocation, with the outcome, sizes, and any failure.
//
// The ledger is informational. Nothing in the pipeline reads it back, so a
// missing or unwritable database never blocks packing.
package history
