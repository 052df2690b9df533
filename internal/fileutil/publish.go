package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// TempFile is a file created beside its final destination. Publish moves it
// into place; Discard removes it. Exactly one of them takes effect.
type TempFile struct {
	*os.File
	final string
	done  bool
}

// CreateTemp opens a hidden temporary file in the directory of final.
func CreateTemp(final string) (*TempFile, error) {
	dir, base := filepath.Split(final)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return nil, err
	}
	return &TempFile{File: f, final: final}, nil
}

// Publish syncs and closes the file, then renames it to its final path
// without overwriting. On failure the temporary file is removed.
func (t *TempFile) Publish() error {
	if t.done {
		return errors.New("temp file already finalized")
	}
	t.done = true

	if err := t.Sync(); err != nil {
		t.cleanup()
		return fmt.Errorf("sync %s: %w", t.Name(), err)
	}
	if err := t.Close(); err != nil {
		_ = os.Remove(t.Name())
		return fmt.Errorf("close %s: %w", t.Name(), err)
	}
	if err := RenameNoReplace(t.Name(), t.final); err != nil {
		_ = os.Remove(t.Name())
		return err
	}
	return nil
}

// Discard closes and removes the file unless it was already published.
func (t *TempFile) Discard() {
	if t.done {
		return
	}
	t.done = true
	t.cleanup()
}

func (t *TempFile) cleanup() {
	_ = t.Close()
	_ = os.Remove(t.Name())
}
