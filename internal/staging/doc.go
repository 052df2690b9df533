// Package staging finds and removes what an interrupted pack run leaves
// behind: unpublished archive temp files and lock files beside a directory,
// and pages parked under temporary names inside it.
package staging
