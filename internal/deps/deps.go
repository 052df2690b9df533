// Package deps resolves the external archivers comicpack can hand work to.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Status reports whether an external archiver resolved, and where to.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Resolve returns the first candidate that is found on PATH or is an
// executable file at its own path. A configured binary replaces the
// candidates entirely and must resolve.
func Resolve(configured string, candidates []string) (string, error) {
	if bin := strings.TrimSpace(configured); bin != "" {
		path, err := exec.LookPath(bin)
		if err != nil {
			return "", fmt.Errorf("binary %q not found: %w", bin, err)
		}
		return path, nil
	}
	for _, candidate := range candidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
		if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("none found (tried %s)", strings.Join(candidates, ", "))
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
