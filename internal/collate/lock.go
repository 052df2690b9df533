package collate

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockPath returns the advisory lock file guarding dir. It lives beside the
// directory so it never becomes a page.
func LockPath(dir string) string {
	return filepath.Join(filepath.Dir(dir), "."+filepath.Base(dir)+".comicpack.lock")
}

type dirLock struct {
	lock *flock.Flock
}

// acquireLock takes the lock without blocking. ok is false when another
// process holds it.
func acquireLock(dir string) (*dirLock, bool, error) {
	lock := flock.New(LockPath(dir))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	return &dirLock{lock: lock}, true, nil
}

// release unlocks and leaves the file in place, so every process contends on
// the same inode. "comicpack clean" deletes lock files nobody holds.
func (l *dirLock) release() error {
	return l.lock.Unlock()
}
