package naming

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"comicpack/internal/faults"
	"comicpack/internal/fileutil"
	"comicpack/internal/imagext"
)

// Strategy selects how a plan moves files.
type Strategy string

const (
	// Direct renames each source straight to its target.
	Direct Strategy = "direct"
	// TwoPhase routes every source through a temporary name first.
	TwoPhase Strategy = "two-phase"
)

// markerAttempts bounds the search for a marker no directory entry already uses.
const markerAttempts = 16

// Options tunes plan construction.
type Options struct {
	// UpperExt spells target extensions in upper case.
	UpperExt bool
	// Marker forces the temporary-name marker instead of generating one.
	Marker string
}

// Entry is one page of the plan. Names are relative to Plan.Dir.
type Entry struct {
	Index     int
	Source    string
	Temp      string
	Target    string
	Unchanged bool
}

// Plan is the full rename schedule for one directory.
type Plan struct {
	Dir      string
	Width    int
	Strategy Strategy
	Marker   string
	Entries  []Entry

	applied bool
}

// Width returns the zero-padding width for count pages: the number of decimal
// digits in count-1, and at least one.
func Width(count int) int {
	if count <= 1 {
		return 1
	}
	return len(strconv.Itoa(count - 1))
}

// NormalizeExt folds an extension to its canonical spelling (jpeg→jpg,
// tiff→tif) without a leading dot, in lower or upper case.
func NormalizeExt(ext string, upper bool) string {
	return imagext.Render(ext, upper)
}

// CanonicalName returns the target name of page index.
func CanonicalName(index, width int, ext string, upper bool) string {
	return fmt.Sprintf("%0*d.%s", width, index, NormalizeExt(ext, upper))
}

// NewPlan builds the rename plan for sources, which must already be in their
// final order and name entries directly inside dir. The directory is read but
// not modified.
func NewPlan(dir string, sources []string, opts Options) (*Plan, error) {
	if len(sources) == 0 {
		return nil, faults.Wrap(faults.ErrNothingToDo, dir, faults.StageRename, "no pages to rename", nil)
	}

	existing, err := readNames(dir)
	if err != nil {
		return nil, faults.Wrap(faults.ErrInput, dir, faults.StageRename, "read directory", err)
	}

	width := Width(len(sources))
	plan := &Plan{
		Dir:      dir,
		Width:    width,
		Strategy: Direct,
		Entries:  make([]Entry, len(sources)),
	}

	// Pages may differ only by case on case-sensitive filesystems, so each
	// folded name can map to several indices.
	sourceIndex := make(map[string][]int, len(sources))
	for i, src := range sources {
		if src == "" || strings.ContainsRune(src, filepath.Separator) {
			return nil, faults.Wrap(faults.ErrInput, dir, faults.StageRename, fmt.Sprintf("invalid page name %q", src), nil)
		}
		folded := strings.ToLower(src)
		sourceIndex[folded] = append(sourceIndex[folded], i)
	}

	for i, src := range sources {
		target := CanonicalName(i, width, filepath.Ext(src), opts.UpperExt)
		entry := Entry{Index: i, Source: src, Target: target, Unchanged: src == target}
		holders, isSource := sourceIndex[strings.ToLower(target)]
		if !entry.Unchanged {
			if strings.EqualFold(src, target) || slices.ContainsFunc(holders, func(j int) bool { return j != i }) {
				plan.Strategy = TwoPhase
			}
			if _, taken := existing[strings.ToLower(target)]; taken && !isSource {
				return nil, faults.Wrap(faults.ErrRename, dir, faults.StageRename,
					fmt.Sprintf("target %s is held by an entry that is not a page", target), nil)
			}
		}
		plan.Entries[i] = entry
	}

	marker, err := chooseMarker(existing, opts.Marker)
	if err != nil {
		return nil, faults.Wrap(faults.ErrRename, dir, faults.StageRename, "choose temporary marker", err)
	}
	plan.Marker = marker
	for i := range plan.Entries {
		plan.Entries[i].Temp = TempName(marker, plan.Entries[i].Source)
	}
	return plan, nil
}

// TempName returns the temporary name used for source during a two-phase
// rename.
func TempName(marker, source string) string {
	return "." + marker + "-" + source
}

// parkedPrefix matches the generated marker of TempName.
var parkedPrefix = regexp.MustCompile(`^\.[0-9a-f]{8}-`)

// Parked reports whether name is a page left under a generated temporary
// name by an interrupted two-phase rename, and returns the name it had
// before. Names that are not parked come back unchanged.
func Parked(name string) (string, bool) {
	loc := parkedPrefix.FindStringIndex(name)
	if loc == nil || loc[1] == len(name) {
		return name, false
	}
	return name[loc[1]:], true
}

// Targets returns the absolute canonical paths, index-aligned with the
// sources the plan was built from.
func (p *Plan) Targets() []string {
	out := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		out[i] = filepath.Join(p.Dir, e.Target)
	}
	return out
}

// Pending reports how many entries need a rename.
func (p *Plan) Pending() int {
	n := 0
	for _, e := range p.Entries {
		if !e.Unchanged {
			n++
		}
	}
	return n
}

// Apply executes the plan. Phase one of a two-phase plan completes for every
// entry before phase two starts. Cancellation is honoured between renames.
func (p *Plan) Apply(ctx context.Context) error {
	if p.applied {
		return errors.New("rename plan already applied")
	}
	p.applied = true

	if p.Strategy == Direct {
		return p.run(ctx, PhaseDirect, func(e Entry) (string, string) { return e.Source, e.Target })
	}
	if err := p.run(ctx, PhaseTemp, func(e Entry) (string, string) { return e.Source, e.Temp }); err != nil {
		return err
	}
	return p.run(ctx, PhaseFinal, func(e Entry) (string, string) { return e.Temp, e.Target })
}

func (p *Plan) run(ctx context.Context, phase Phase, pair func(Entry) (string, string)) error {
	for _, e := range p.Entries {
		if e.Unchanged {
			continue
		}
		from, to := pair(e)
		if err := ctx.Err(); err != nil {
			return &RenameError{Phase: phase, Source: from, Target: to, Err: err}
		}
		if err := fileutil.RenameNoReplace(filepath.Join(p.Dir, from), filepath.Join(p.Dir, to)); err != nil {
			return &RenameError{Phase: phase, Source: from, Target: to, Err: err}
		}
	}
	return nil
}

func chooseMarker(existing map[string]struct{}, forced string) (string, error) {
	if forced != "" {
		if strings.ContainsAny(forced, `/\`) {
			return "", fmt.Errorf("marker %q contains a path separator", forced)
		}
		if markerInUse(existing, forced) {
			return "", fmt.Errorf("marker %q already prefixes a directory entry", forced)
		}
		return forced, nil
	}
	for range markerAttempts {
		marker := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		if !markerInUse(existing, marker) {
			return marker, nil
		}
	}
	return "", errors.New("no unused marker found")
}

func markerInUse(existing map[string]struct{}, marker string) bool {
	prefix := strings.ToLower("." + marker + "-")
	for name := range existing {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// readNames returns the lower-cased names of every entry in dir.
func readNames(dir string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		names[strings.ToLower(entry.Name())] = struct{}{}
	}
	return names, nil
}
