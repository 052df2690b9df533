package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"comicpack/internal/testsupport"
)

type cliTestEnv struct {
	baseDir     string
	configPath  string
	historyPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(homeDir, ".config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(homeDir, ".local", "state"))

	historyPath := filepath.Join(base, "state", "history.db")
	configPath := filepath.Join(homeDir, ".config", "comicpack", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, historyPath)

	return &cliTestEnv{
		baseDir:     base,
		configPath:  configPath,
		historyPath: historyPath,
	}
}

func writeTestConfig(t *testing.T, path, historyPath string) {
	t.Helper()
	content := fmt.Sprintf(
		"[archive]\nskip_existing = false\n\n[compression]\nworkers = 2\n\n[history]\nenabled = true\npath = %q\n\n[logging]\nlevel = \"error\"\n",
		historyPath,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// makeBook creates a directory of pattern-filled pages under the env base.
func (e *cliTestEnv) makeBook(t *testing.T, name string, pages ...string) string {
	t.Helper()
	dir := filepath.Join(e.baseDir, "books", name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir book: %v", err)
	}
	for _, page := range pages {
		testsupport.WriteFile(t, filepath.Join(dir, page), 4096)
	}
	return dir
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
