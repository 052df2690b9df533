//go:build !linux

package fileutil

// RenameNoReplace moves oldpath to newpath and fails when newpath exists.
func RenameNoReplace(oldpath, newpath string) error {
	return renameGuarded(oldpath, newpath)
}
