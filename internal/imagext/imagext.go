// Package imagext folds image file extensions to their canonical spelling and
// answers membership questions against a configured extension set.
package imagext

import (
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// aliases maps alternate spellings to the canonical extension.
var aliases = map[string]string{
	"jpeg": "jpg",
	"jpe":  "jpg",
	"tiff": "tif",
}

// Defaults is the canonical recognized set.
var Defaults = []string{"avif", "gif", "heic", "jpg", "png", "tif", "webp"}

// Canonical folds ext (with or without a leading dot) to lower case and
// resolves aliases, so "JPEG", ".jpeg" and "jpg" all become "jpg".
func Canonical(ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	// Casers carry state; build one per call so workers can share this path.
	ext = cases.Fold().String(ext)
	if alias, ok := aliases[ext]; ok {
		return alias
	}
	return ext
}

// Of returns the canonical extension of a file name or path.
func Of(name string) string {
	return Canonical(filepath.Ext(name))
}

// Render spells a canonical extension for use in an output name.
func Render(ext string, uppercase bool) string {
	ext = Canonical(ext)
	if uppercase {
		return cases.Upper(language.Und).String(ext)
	}
	return ext
}

// Set is an immutable set of canonical extensions.
type Set struct {
	exts []string
}

// NewSet builds a set from raw extension spellings. Duplicates and aliases
// collapse onto their canonical form.
func NewSet(exts ...string) Set {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		c := Canonical(ext)
		if c == "" || slices.Contains(out, c) {
			continue
		}
		out = append(out, c)
	}
	slices.Sort(out)
	return Set{exts: out}
}

// Contains reports whether the canonical form of ext is in the set.
func (s Set) Contains(ext string) bool {
	_, found := slices.BinarySearch(s.exts, Canonical(ext))
	return found
}

// Matches reports whether the file name carries a recognized extension.
func (s Set) Matches(name string) bool {
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return false
	}
	return s.Contains(ext)
}

// List returns the canonical extensions in sorted order.
func (s Set) List() []string {
	return slices.Clone(s.exts)
}

// Len returns the number of extensions in the set.
func (s Set) Len() int { return len(s.exts) }
