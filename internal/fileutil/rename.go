package fileutil

import (
	"errors"
	"io/fs"
	"os"
)

// renameGuarded refuses to rename onto an existing path. The check and the
// rename are not atomic.
func renameGuarded(oldpath, newpath string) error {
	if _, err := os.Lstat(newpath); err == nil {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrExist}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Rename(oldpath, newpath)
}
