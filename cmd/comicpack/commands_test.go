package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"comicpack/internal/history"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestInvalidLogLevelFlag(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"--log-level", "chatty", "config", "validate"}, env.configPath)
	if err == nil {
		t.Fatal("expected invalid log level to fail")
	}
}

func TestCheckReportsDirectories(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := env.makeBook(t, "ok", "1.png")

	out, _, err := runCLI(t, []string{"check", dir}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	requireContains(t, out, "== Preflight ==")
	requireContains(t, out, "[OK]")

	out, _, err = runCLI(t, []string{"check", filepath.Join(env.baseDir, "missing")}, env.configPath)
	if err != nil {
		t.Fatalf("check with a missing directory: %v", err)
	}
	requireContains(t, out, "[WARN]")
}

func TestVerifyCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := env.makeBook(t, "verify-me", "a.png", "b.png")
	if _, _, err := runCLI(t, []string{"pack", dir}, env.configPath); err != nil {
		t.Fatalf("pack: %v", err)
	}
	archive := filepath.Join(filepath.Dir(dir), "verify-me.cbz")

	out, _, err := runCLI(t, []string{"verify", "--list", archive}, "")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	requireContains(t, out, "1.png")
	requireContains(t, out, "deflate")
	requireContains(t, out, "[OK]")

	bogus := filepath.Join(env.baseDir, "bogus.cbz")
	if err := os.WriteFile(bogus, []byte("not a zip"), 0o644); err != nil {
		t.Fatalf("write bogus: %v", err)
	}
	out, _, err = runCLI(t, []string{"verify", bogus}, "")
	if err == nil {
		t.Fatal("expected verification failure")
	}
	requireContains(t, out, "[ERROR]")
}

func TestHistoryListFiltersAndClear(t *testing.T) {
	env := setupCLITestEnv(t)
	good := env.makeBook(t, "good", "1.png")
	bad := env.makeBook(t, "bad", "1.png")
	if err := os.WriteFile(filepath.Join(filepath.Dir(bad), "bad.cbz"), nil, 0o644); err != nil {
		t.Fatalf("seed archive: %v", err)
	}
	if _, _, err := runCLI(t, []string{"pack", good, bad}, env.configPath); err == nil {
		t.Fatal("expected partial failure")
	}

	out, _, err := runCLI(t, []string{"history", "list", "--json", "--status", "failed"}, env.configPath)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	var records []history.Record
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	if len(records) != 1 || records[0].Directory != bad {
		t.Fatalf("unexpected failed records: %+v", records)
	}
	if records[0].ErrorCategory != "assembly" {
		t.Fatalf("error category = %q", records[0].ErrorCategory)
	}

	if _, _, err := runCLI(t, []string{"history", "list", "--status", "bogus"}, env.configPath); err == nil {
		t.Fatal("expected invalid status to fail")
	}

	out, _, err = runCLI(t, []string{"history", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	requireContains(t, out, "Removed 2 history rows")

	out, _, err = runCLI(t, []string{"history", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, "No runs recorded")
}

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Summary", statusError, "1 failed", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Summary:", "[ERROR] 1 failed")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Summary", statusOK, "done", true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
}

func TestCleanCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := env.makeBook(t, "crashed", "1.png")
	temp := filepath.Join(filepath.Dir(dir), ".crashed.cbz.42.tmp")
	if err := os.WriteFile(temp, []byte("partial"), 0o644); err != nil {
		t.Fatalf("write temp: %v", err)
	}

	out, _, err := runCLI(t, []string{"clean", "--max-age", "0s", dir}, env.configPath)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	requireContains(t, out, "removed "+temp)
	if _, err := os.Stat(temp); !os.IsNotExist(err) {
		t.Fatal("expected temp removed")
	}

	out, _, err = runCLI(t, []string{"clean", dir}, env.configPath)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	requireContains(t, out, "Nothing to clean")
}
