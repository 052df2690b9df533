package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInput       = errors.New("input error")
	ErrNothingToDo = errors.New("nothing to do")
	ErrRename      = errors.New("rename error")
	ErrEncode      = errors.New("encode error")
	ErrAssembly    = errors.New("assembly error")
	ErrEnvironment = errors.New("environment error")
)

var categories = []struct {
	marker error
	name   string
}{
	{ErrEnvironment, "environment"},
	{ErrNothingToDo, "empty"},
	{ErrInput, "input"},
	{ErrRename, "rename"},
	{ErrEncode, "encode"},
	{ErrAssembly, "assembly"},
}

// StageError records the directory and pipeline stage a failure surfaced in.
type StageError struct {
	Marker    error
	Directory string
	Stage     string
	Message   string
	Err       error
}

func (e *StageError) Error() string {
	detail := buildDetail(e.Directory, e.Stage, e.Message)
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Marker, detail, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Marker, detail)
}

func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Marker}
	}
	return []error{e.Marker, e.Err}
}

// Wrap builds an error tagged with marker that names the failing directory and
// stage. The marker should be one of the exported sentinel errors above.
func Wrap(marker error, directory, stage, message string, err error) error {
	if marker == nil {
		marker = ErrAssembly
	}
	return &StageError{
		Marker:    marker,
		Directory: strings.TrimSpace(directory),
		Stage:     strings.TrimSpace(stage),
		Message:   strings.TrimSpace(message),
		Err:       err,
	}
}

// Category returns the short category name of err ("rename", "encode", ...),
// or "unknown" when err carries no marker.
func Category(err error) string {
	for _, c := range categories {
		if errors.Is(err, c.marker) {
			return c.name
		}
	}
	return "unknown"
}

// StageOf returns the stage recorded on the outermost StageError in err.
func StageOf(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// Fatal reports whether err should count as a failed directory. Nothing-to-do
// outcomes are informational.
func Fatal(err error) bool {
	return err != nil && !errors.Is(err, ErrNothingToDo)
}

func buildDetail(directory, stage, message string) string {
	parts := make([]string, 0, 3)
	if directory != "" {
		parts = append(parts, directory)
	}
	if stage != "" {
		parts = append(parts, stage)
	}
	if message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
