package faults_test

import (
	"context"
	"testing"

	"comicpack/internal/faults"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = faults.WithRunID(ctx, "run-1")
	ctx = faults.WithDirectory(ctx, "/comics/vol1")
	ctx = faults.WithStage(ctx, "encode")

	if id, ok := faults.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if dir, ok := faults.DirectoryFromContext(ctx); !ok || dir != "/comics/vol1" {
		t.Fatalf("unexpected directory: %v %v", dir, ok)
	}
	if stage, ok := faults.StageFromContext(ctx); !ok || stage != "encode" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := faults.WithStage(context.Background(), "")
	if _, ok := faults.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
