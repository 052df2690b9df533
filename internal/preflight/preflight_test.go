package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"comicpack/internal/config"
	"comicpack/internal/faults"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckSourceDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vol1")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	result := CheckSourceDirectory(dir)
	if !result.Passed || result.Name != "Source vol1" {
		t.Fatalf("result = %+v", result)
	}
}

func TestRunAllRequiresSevenZipForCB7(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	cfg := config.Default()
	cfg.Archive.Format = config.FormatCB7
	cfg.SevenZip.Binary = filepath.Join(t.TempDir(), "missing-7z")
	cfg.History.Enabled = false

	results := RunAll(context.Background(), &cfg, []string{t.TempDir()})
	if len(results) != 2 {
		t.Fatalf("results = %+v", results)
	}
	err := Required(results)
	if !errors.Is(err, faults.ErrEnvironment) {
		t.Fatalf("err = %v, want ErrEnvironment", err)
	}
}

func TestRunAllAutoTreatsSevenZipAsOptional(t *testing.T) {
	cfg := config.Default()
	cfg.Archive.Format = config.FormatAuto
	cfg.SevenZip.Binary = filepath.Join(t.TempDir(), "missing-7z")
	cfg.History.Path = filepath.Join(t.TempDir(), "state", "history.db")

	results := RunAll(context.Background(), &cfg, []string{t.TempDir()})
	if len(results) != 3 {
		t.Fatalf("results = %+v", results)
	}
	if err := Required(results); err != nil {
		t.Fatalf("Required: %v", err)
	}
	if results[1].Passed || !results[1].Optional {
		t.Fatalf("7-Zip result = %+v", results[1])
	}
	if !results[2].Passed {
		t.Fatalf("history result = %+v", results[2])
	}
}

func TestRunAllSourceChecksDoNotGateTheRun(t *testing.T) {
	cfg := config.Default()
	cfg.History.Enabled = false
	results := RunAll(context.Background(), &cfg, []string{filepath.Join(t.TempDir(), "gone")})
	if len(results) != 1 || results[0].Passed || !results[0].Optional {
		t.Fatalf("results = %+v", results)
	}
	if err := Required(results); err != nil {
		t.Fatalf("Required: %v", err)
	}
}
