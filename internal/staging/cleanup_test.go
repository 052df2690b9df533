package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"comicpack/internal/collate"
	"comicpack/internal/logging"
)

func writeAged(t *testing.T, path string, age time.Duration) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	when := time.Now().Add(-age)
	if err := os.Chtimes(path, when, when); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

func makeBook(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "book")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	return dir
}

func TestScanClassifiesLeftovers(t *testing.T) {
	dir := makeBook(t)
	parent := filepath.Dir(dir)
	writeAged(t, filepath.Join(parent, ".book.cbz.123456.tmp"), 0)
	writeAged(t, filepath.Join(parent, ".book.cb7.abcd1234.tmp"), 0)
	writeAged(t, filepath.Join(parent, ".other.cbz.1.tmp"), 0)
	writeAged(t, collate.LockPath(dir), 0)
	writeAged(t, filepath.Join(dir, ".0a1b2c3d-page1.png"), 0)
	writeAged(t, filepath.Join(dir, "page2.png"), 0)

	found, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	counts := map[Kind]int{}
	for _, lo := range found {
		counts[lo.Kind]++
	}
	if counts[KindArchiveTemp] != 2 || counts[KindLock] != 1 || counts[KindPageTemp] != 1 {
		t.Fatalf("unexpected leftovers: %+v", found)
	}
}

func TestCleanStaleRemovesOldArchiveTemps(t *testing.T) {
	dir := makeBook(t)
	parent := filepath.Dir(dir)
	oldTemp := filepath.Join(parent, ".book.cbz.111.tmp")
	recentTemp := filepath.Join(parent, ".book.cbz.222.tmp")
	writeAged(t, oldTemp, 2*time.Hour)
	writeAged(t, recentTemp, 0)

	result := CleanStale(context.Background(), []string{dir}, time.Hour, logging.NewNop())

	if len(result.Removed) != 1 || result.Removed[0].Path != oldTemp {
		t.Fatalf("expected %s removed, got %+v", oldTemp, result.Removed)
	}
	if _, err := os.Stat(oldTemp); !os.IsNotExist(err) {
		t.Fatal("old temp should have been removed")
	}
	if _, err := os.Stat(recentTemp); err != nil {
		t.Fatal("recent temp should still exist")
	}
}

func TestCleanStaleKeepsPageTemps(t *testing.T) {
	dir := makeBook(t)
	page := filepath.Join(dir, ".deadbeef-cover.jpg")
	writeAged(t, page, 48*time.Hour)

	result := CleanStale(context.Background(), []string{dir}, time.Hour, logging.NewNop())

	if len(result.Removed) != 0 || len(result.Kept) != 1 {
		t.Fatalf("expected page temp kept, got %+v", result)
	}
	if _, err := os.Stat(page); err != nil {
		t.Fatalf("page temp removed: %v", err)
	}
}

func TestCleanStaleLocks(t *testing.T) {
	free := makeBook(t)
	writeAged(t, collate.LockPath(free), 0)

	held := makeBook(t)
	lock := flock.New(collate.LockPath(held))
	if ok, err := lock.TryLock(); err != nil || !ok {
		t.Fatalf("TryLock: %v %v", ok, err)
	}
	t.Cleanup(func() { _ = lock.Unlock() })

	result := CleanStale(context.Background(), []string{free, held}, time.Hour, logging.NewNop())

	if len(result.Removed) != 1 || result.Removed[0].Directory != free {
		t.Fatalf("expected only the free lock removed, got %+v", result.Removed)
	}
	if _, err := os.Stat(collate.LockPath(held)); err != nil {
		t.Fatalf("held lock removed: %v", err)
	}
}

func TestCleanStaleMissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")
	result := CleanStale(context.Background(), []string{missing}, time.Hour, nil)
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %+v", result.Errors)
	}
}
