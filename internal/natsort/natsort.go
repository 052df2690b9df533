// Package natsort orders filenames the way a reader expects numbered pages to
// run: embedded digit runs compare as integers, so img2 sorts before img10.
package natsort

import (
	"cmp"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
)

// ErrOverflow reports a digit run too large for a uint64.
var ErrOverflow = errors.New("numeric run overflows uint64")

// digitRuns is compiled once and never mutated.
var digitRuns = regexp.MustCompile(`[0-9]+`)

// Key is the sequence of digit-run values found in a name, left to right.
type Key []uint64

// KeyOf extracts the digit runs of name. Leading zeros do not change a run's
// value. A run that does not fit a uint64 is an error, never truncated.
func KeyOf(name string) (Key, error) {
	runs := digitRuns.FindAllString(name, -1)
	if len(runs) == 0 {
		return nil, nil
	}
	key := make(Key, 0, len(runs))
	for _, run := range runs {
		n, err := strconv.ParseUint(run, 10, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return nil, fmt.Errorf("%w: %q in %q", ErrOverflow, run, name)
			}
			return nil, fmt.Errorf("parse digit run %q in %q: %w", run, name, err)
		}
		key = append(key, n)
	}
	return key, nil
}

// CompareKeys orders two names by their precomputed keys. The first pair of
// runs with different values decides. When no shared run differs, including
// when one key runs out first or neither name has a run, the full names are
// compared byte-wise, so a bare "page.jpg" sorts before "page1.jpg".
//
// The byte fallback makes the order non-transitive across names with
// different run counts ("b.png" vs "a10.gif" vs "p001.jpg"); within names
// sharing a run count it is a total order.
func CompareKeys(a Key, nameA string, b Key, nameB string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := cmp.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(nameA, nameB)
}

// Compare returns -1, 0, or +1 ordering a before, equal to, or after b.
func Compare(a, b string) (int, error) {
	ka, err := KeyOf(a)
	if err != nil {
		return 0, err
	}
	kb, err := KeyOf(b)
	if err != nil {
		return 0, err
	}
	return CompareKeys(ka, a, kb, b), nil
}

// Sort orders names in place.
func Sort(names []string) error {
	return SortFunc(names, func(s string) string { return s })
}

// SortFunc orders items in place by the natural order of name(item). Keys are
// computed once per item; an overflowing run aborts before anything moves.
func SortFunc[T any](items []T, name func(T) string) error {
	type keyed struct {
		item T
		name string
		key  Key
	}
	tmp := make([]keyed, len(items))
	for i, item := range items {
		n := name(item)
		key, err := KeyOf(n)
		if err != nil {
			return err
		}
		tmp[i] = keyed{item: item, name: n, key: key}
	}
	slices.SortStableFunc(tmp, func(a, b keyed) int {
		return CompareKeys(a.key, a.name, b.key, b.name)
	})
	for i := range tmp {
		items[i] = tmp[i].item
	}
	return nil
}
