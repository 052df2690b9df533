// Package collate runs the per-directory pipeline that turns a folder of
// loosely numbered pages into one comic archive:
//
//	discover -> sort -> rename -> encode -> assemble [-> verify]
//
// Sorting and renaming finish before any page is encoded. Pages are encoded
// in parallel into an index-aligned buffer, and assembly starts only after
// every page encoded successfully, so member order is always canonical.
// Directories may run concurrently with each other; each is guarded by an
// advisory lock file beside it.
//
// Run handles one directory and never panics on per-directory failures: the
// outcome carries the classified error. RunAll drives several directories
// and keeps going after a failure.
package collate
