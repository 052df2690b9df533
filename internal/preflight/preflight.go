package preflight

import (
	"context"
	"fmt"
	"strings"

	"comicpack/internal/config"
	"comicpack/internal/faults"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes all applicable preflight checks for the given config and
// source directories.
func RunAll(ctx context.Context, cfg *config.Config, dirs []string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, dir := range dirs {
		if ctx.Err() != nil {
			break
		}
		// A bad source fails only its own directory, never the run.
		res := CheckSourceDirectory(dir)
		res.Optional = true
		results = append(results, res)
	}

	switch cfg.Archive.Format {
	case config.FormatCB7:
		results = append(results, CheckSevenZip(cfg.SevenZip.Binary, true))
	case config.FormatAuto:
		// Auto falls back to cbz without 7-Zip.
		results = append(results, CheckSevenZip(cfg.SevenZip.Binary, false))
	}

	if cfg.History.Enabled {
		results = append(results, CheckHistoryPath(cfg.History.Path))
	}
	return results
}

// Required returns an environment error naming every failed required check,
// or nil when all required checks passed.
func Required(results []Result) error {
	var failed []string
	for _, r := range results {
		if r.Passed || r.Optional {
			continue
		}
		failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	if len(failed) == 0 {
		return nil
	}
	return faults.Wrap(faults.ErrEnvironment, "", faults.StagePreflight, strings.Join(failed, "; "), nil)
}
