// Package stageexec runs one pipeline stage with uniform lifecycle logging.
package stageexec

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"comicpack/internal/faults"
	"comicpack/internal/logging"
)

// Func is the body of a stage. The logger carries the stage field.
type Func func(ctx context.Context, logger *slog.Logger) error

// Run stamps stage onto ctx and the logger, logs stage start, then completion or failure
// with the elapsed time, and returns fn's error unchanged.
func Run(ctx context.Context, logger *slog.Logger, stage string, fn Func) error {
	stageCtx := faults.WithStage(ctx, stage)
	if logger == nil {
		logger = logging.NewNop()
	}
	stageLogger := logger.With(logging.String(logging.FieldStage, stage))

	stageLogger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))
	started := time.Now()

	err := fn(stageCtx, stageLogger)
	elapsed := time.Since(started).Round(time.Millisecond)
	switch {
	case err == nil:
		stageLogger.Debug(
			"stage completed",
			logging.String(logging.FieldEventType, "stage_complete"),
			logging.Duration("elapsed", elapsed),
		)
	case !faults.Fatal(err):
		stageLogger.Info(
			"stage skipped",
			logging.String(logging.FieldEventType, "stage_skip"),
			logging.String("reason", reason(err)),
		)
	default:
		stageLogger.Error(
			"stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.String("error_category", faults.Category(err)),
			logging.String(logging.FieldErrorHint, Hint(err)),
			logging.Duration("elapsed", elapsed),
			logging.Error(err),
		)
	}
	return err
}

// Hint suggests what the operator should do about err.
func Hint(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "run was interrupted; rerun to finish"
	case errors.Is(err, faults.ErrEnvironment):
		return "run 'comicpack check' and fix the reported dependency"
	case errors.Is(err, faults.ErrRename):
		return "directory may be partially renamed; inspect it before rerunning"
	case errors.Is(err, faults.ErrEncode):
		return "replace or remove the unreadable page and rerun"
	case errors.Is(err, faults.ErrAssembly):
		return "check free space and permissions in the output directory"
	case errors.Is(err, faults.ErrInput):
		return "check the directory path and permissions"
	default:
		return ""
	}
}

func reason(err error) string {
	var se *faults.StageError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return err.Error()
}
