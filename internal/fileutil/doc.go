// Package fileutil holds filesystem helpers that must not clobber existing
// files: no-overwrite renames and temp-file publishing.
package fileutil
