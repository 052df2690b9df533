// Package preflight checks the environment before any directory is touched:
// source and output directories must be accessible, and 7-Zip must resolve
// when the configured format can produce cb7 archives.
//
// Checks return Results rather than errors so the check command can render
// every outcome; Required turns the failed required checks into a single
// environment error for the pack command.
package preflight
