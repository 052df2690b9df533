package naming

import (
	"fmt"

	"comicpack/internal/faults"
)

// Phase identifies which pass of a plan a rename belonged to.
type Phase string

const (
	PhaseDirect Phase = "direct"
	PhaseTemp   Phase = "to-temp"
	PhaseFinal  Phase = "to-target"
)

// RenameError reports the rename that stopped a plan. Renames completed
// before it are not undone.
type RenameError struct {
	Phase  Phase
	Source string
	Target string
	Err    error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("rename %s -> %s (%s): %v", e.Source, e.Target, e.Phase, e.Err)
}

func (e *RenameError) Unwrap() []error {
	return []error{faults.ErrRename, e.Err}
}
