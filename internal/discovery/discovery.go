// Package discovery finds the image files a comic directory is built from.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"comicpack/internal/faults"
	"comicpack/internal/imagext"
	"comicpack/internal/natsort"
)

// Image is a regular file directly inside a source directory whose extension
// is in the recognized set.
type Image struct {
	Path string
	Name string
	Ext  string
	Size int64
}

// ListImages returns the recognized images directly inside dir in directory
// order. Subdirectories, symlinks, and macOS AppleDouble companions ("._x.jpg")
// are ignored. A directory without images yields faults.ErrNothingToDo.
func ListImages(dir string, exts imagext.Set) ([]Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, faults.Wrap(faults.ErrInput, dir, faults.StageDiscover, "read directory", err)
	}

	images := make([]Image, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "._") || !exts.Matches(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, faults.Wrap(faults.ErrInput, dir, faults.StageDiscover, "stat "+name, err)
		}
		images = append(images, Image{
			Path: filepath.Join(dir, name),
			Name: name,
			Ext:  imagext.Of(name),
			Size: info.Size(),
		})
	}

	if len(images) == 0 {
		return nil, faults.Wrap(faults.ErrNothingToDo, dir, faults.StageDiscover, "no recognized images", nil)
	}
	return images, nil
}

// TotalSize sums the sizes of images.
func TotalSize(images []Image) int64 {
	var total int64
	for _, img := range images {
		total += img.Size
	}
	return total
}

// ExpandDirectories resolves the command-line roots into absolute source
// directories. Without recursion every root is returned as given. With
// recursion each root is walked and every directory that directly holds at
// least one recognized image is returned; hidden directories are skipped.
// A root or subdirectory that cannot be read is returned too, so the pipeline
// reports it as a per-directory input failure instead of aborting the run.
// The result is deduplicated and in natural order.
func ExpandDirectories(roots []string, exts imagext.Set, recursive bool) ([]string, error) {
	seen := make(map[string]struct{}, len(roots))
	var dirs []string
	add := func(dir string) {
		if _, ok := seen[dir]; ok {
			return
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}

	for _, root := range roots {
		abs, err := filepath.Abs(filepath.Clean(root))
		if err != nil {
			return nil, faults.Wrap(faults.ErrEnvironment, root, faults.StageDiscover, "resolve path", err)
		}
		if !recursive {
			add(abs)
			continue
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			add(abs)
			continue
		}
		_ = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				if d == nil || d.IsDir() {
					add(path)
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() {
				return nil
			}
			if path != abs && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			ok, err := holdsImages(path, exts)
			if err != nil || ok {
				add(path)
			}
			if err != nil {
				return filepath.SkipDir
			}
			return nil
		})
	}

	if err := natsort.Sort(dirs); err != nil {
		slices.Sort(dirs)
	}
	return dirs, nil
}

func holdsImages(dir string, exts imagext.Set) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", dir, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.Type().IsRegular() && !strings.HasPrefix(name, "._") && exts.Matches(name) {
			return true, nil
		}
	}
	return false, nil
}
