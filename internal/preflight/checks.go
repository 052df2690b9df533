package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"comicpack/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSourceDirectory verifies a page directory and the parent its archive
// is written to. Pages are renamed in place, so both need write access.
func CheckSourceDirectory(dir string) Result {
	name := "Source " + filepath.Base(dir)
	if res := CheckDirectoryAccess(name, dir); !res.Passed {
		return res
	}
	parent := filepath.Dir(dir)
	if res := CheckDirectoryAccess(name, parent); !res.Passed {
		res.Detail = "output " + res.Detail
		return res
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok, output dir ok)", dir)}
}

// CheckSevenZip reports whether a 7-Zip binary resolves.
func CheckSevenZip(configured string, required bool) Result {
	status := deps.CheckSevenZip(configured, required)
	res := Result{Name: status.Name, Passed: status.Available, Optional: status.Optional}
	if status.Available {
		res.Detail = status.Command
	} else {
		res.Detail = status.Detail
	}
	return res
}

// CheckHistoryPath verifies the history database directory can be created
// and written.
func CheckHistoryPath(path string) Result {
	const name = "History database"
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("%s (error: %v)", dir, err)}
	}
	res := CheckDirectoryAccess(name, dir)
	res.Optional = true
	if res.Passed {
		res.Detail = path
	}
	return res
}
