// Package faults defines the error taxonomy and context helpers shared by the
// collation pipeline.
//
// Key responsibilities:
//   - Sentinel markers (input, rename, encode, assembly, environment) plus the
//     Wrap helper so every failure names its directory and stage.
//   - Classification helpers used by reports and the CLI exit status.
//   - Context helpers that stamp run IDs, directories, and stage names for
//     structured logging.
//
// Use Wrap at stage boundaries so callers can classify failures with errors.Is
// regardless of how deep the underlying cause sits.
package faults
