package stageexec

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"comicpack/internal/faults"
)

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestRunLogsLifecycle(t *testing.T) {
	var buf bytes.Buffer
	var sawStage string
	err := Run(context.Background(), newLogger(&buf), faults.StageEncode, func(ctx context.Context, _ *slog.Logger) error {
		sawStage, _ = faults.StageFromContext(ctx)
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sawStage != faults.StageEncode {
		t.Fatalf("stage in context = %q", sawStage)
	}
	out := buf.String()
	if !strings.Contains(out, "event_type=stage_start") || !strings.Contains(out, "event_type=stage_complete") {
		t.Fatalf("missing lifecycle events: %s", out)
	}
	if !strings.Contains(out, "stage=encode") {
		t.Fatalf("missing stage field: %s", out)
	}
}

func TestRunLogsFailureWithHint(t *testing.T) {
	var buf bytes.Buffer
	want := faults.Wrap(faults.ErrRename, "/c/vol1", faults.StageRename, "apply plan", errors.New("permission denied"))
	err := Run(context.Background(), newLogger(&buf), faults.StageRename, func(context.Context, *slog.Logger) error {
		return want
	})
	if err != want {
		t.Fatalf("err = %v, want original error", err)
	}
	out := buf.String()
	if !strings.Contains(out, "event_type=stage_failure") || !strings.Contains(out, "error_category=rename") {
		t.Fatalf("missing failure fields: %s", out)
	}
	if !strings.Contains(out, "partially renamed") {
		t.Fatalf("missing hint: %s", out)
	}
}

func TestRunTreatsNothingToDoAsSkip(t *testing.T) {
	var buf bytes.Buffer
	err := Run(context.Background(), newLogger(&buf), faults.StageDiscover, func(context.Context, *slog.Logger) error {
		return faults.Wrap(faults.ErrNothingToDo, "/c/empty", faults.StageDiscover, "no recognized images", nil)
	})
	if !errors.Is(err, faults.ErrNothingToDo) {
		t.Fatalf("err = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "event_type=stage_skip") || strings.Contains(out, "level=ERROR") {
		t.Fatalf("unexpected log: %s", out)
	}
	if !strings.Contains(out, `reason="no recognized images"`) {
		t.Fatalf("missing reason: %s", out)
	}
}

func TestHint(t *testing.T) {
	if Hint(context.Canceled) == "" || Hint(faults.ErrEnvironment) == "" {
		t.Fatal("expected hints")
	}
	if Hint(errors.New("plain")) != "" {
		t.Fatal("unexpected hint for unclassified error")
	}
}
