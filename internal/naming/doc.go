// Package naming computes and applies the canonical names of a comic
// directory's pages.
//
// Pages are renamed to "<zero-padded index>.<ext>" in natural order. When a
// canonical name is already held by another page, or a page only differs from
// its canonical name by case, the plan switches to a two-phase rename: every
// page first moves to a temporary ".<marker>-<original>" name, and only then
// does each temporary name move to its target. Renames never overwrite an
// existing path. A failed Apply leaves completed renames in place.
package naming
