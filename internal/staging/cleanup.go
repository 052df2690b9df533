package staging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"comicpack/internal/collate"
	"comicpack/internal/logging"
	"comicpack/internal/naming"
)

// Kind classifies a leftover.
type Kind string

const (
	// KindArchiveTemp is an unpublished archive beside the directory.
	KindArchiveTemp Kind = "archive-temp"
	// KindLock is a lock file whose run no longer holds it.
	KindLock Kind = "lock"
	// KindPageTemp is a page parked under a temporary name by an interrupted
	// two-phase rename. It holds user data and is never removed.
	KindPageTemp Kind = "page-temp"
)

// Leftover is a file an interrupted run left behind.
type Leftover struct {
	Directory string
	Path      string
	Kind      Kind
	ModTime   time.Time
	Size      int64
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStaleResult contains the outcome of a cleanup.
type CleanStaleResult struct {
	Removed []Leftover
	Kept    []Leftover
	Errors  []CleanupError
}

// Scan lists the leftovers of dir: archive temps and the lock file beside it,
// and page temps inside it.
func Scan(dir string) ([]Leftover, error) {
	dir = filepath.Clean(dir)
	base := filepath.Base(dir)
	parent := filepath.Dir(dir)
	lockName := filepath.Base(collate.LockPath(dir))

	var out []Leftover
	siblings, err := os.ReadDir(parent)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", parent, err)
	}
	for _, entry := range siblings {
		name := entry.Name()
		var kind Kind
		switch {
		case name == lockName:
			kind = KindLock
		case isArchiveTemp(base, name):
			kind = KindArchiveTemp
		default:
			continue
		}
		if lo, ok := leftover(dir, filepath.Join(parent, name), kind, entry); ok {
			out = append(out, lo)
		}
	}

	pages, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	for _, entry := range pages {
		if _, parked := naming.Parked(entry.Name()); !parked {
			continue
		}
		if lo, ok := leftover(dir, filepath.Join(dir, entry.Name()), KindPageTemp, entry); ok {
			out = append(out, lo)
		}
	}
	return out, nil
}

func isArchiveTemp(base, name string) bool {
	if !strings.HasSuffix(name, ".tmp") {
		return false
	}
	for _, format := range []string{"cbz", "cb7"} {
		if strings.HasPrefix(name, "."+base+"."+format+".") {
			return true
		}
	}
	return false
}

func leftover(dir, path string, kind Kind, entry os.DirEntry) (Leftover, bool) {
	if !entry.Type().IsRegular() {
		return Leftover{}, false
	}
	info, err := entry.Info()
	if err != nil {
		return Leftover{}, false
	}
	return Leftover{Directory: dir, Path: path, Kind: kind, ModTime: info.ModTime(), Size: info.Size()}, true
}

// CleanStale removes archive temps older than maxAge and lock files no run
// holds. Page temps are reported in Kept.
func CleanStale(ctx context.Context, dirs []string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}
	if logger == nil {
		logger = logging.NewNop()
	}
	cutoff := time.Now().Add(-maxAge)

	for _, dir := range dirs {
		if ctx.Err() != nil {
			return result
		}
		found, err := Scan(dir)
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
			continue
		}
		for _, lo := range found {
			switch lo.Kind {
			case KindPageTemp:
				result.Kept = append(result.Kept, lo)
				logger.Warn("page left under a temporary name",
					logging.String(logging.FieldDirectory, lo.Directory),
					logging.String("path", lo.Path),
					logging.String(logging.FieldEventType, "page_temp_found"),
					logging.String(logging.FieldErrorHint, "rename the file back or re-run pack on the directory"),
				)
				continue
			case KindArchiveTemp:
				if lo.ModTime.After(cutoff) {
					result.Kept = append(result.Kept, lo)
					continue
				}
				err = os.Remove(lo.Path)
			case KindLock:
				var removed bool
				removed, err = removeUnheldLock(lo.Path)
				if err == nil && !removed {
					result.Kept = append(result.Kept, lo)
					continue
				}
			}
			if err != nil {
				result.Errors = append(result.Errors, CleanupError{Path: lo.Path, Error: err})
				logger.Warn("failed to remove leftover",
					logging.String("path", lo.Path),
					logging.Error(err),
					logging.String(logging.FieldEventType, "cleanup_failed"),
					logging.String(logging.FieldErrorHint, "check permissions on the parent directory"),
				)
				continue
			}
			result.Removed = append(result.Removed, lo)
			logger.Info("removed leftover",
				logging.String("path", lo.Path),
				logging.String("kind", string(lo.Kind)),
				logging.Duration("age", time.Since(lo.ModTime)),
				logging.String(logging.FieldEventType, "cleanup"),
			)
		}
	}
	return result
}

// removeUnheldLock deletes the lock file at path when no process holds it.
func removeUnheldLock(path string) (bool, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	defer lock.Unlock()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return false, err
	}
	return true, nil
}
