package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"comicpack/internal/faults"
	"comicpack/internal/imagext"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func names(images []Image) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		out = append(out, img.Name)
	}
	slices.Sort(out)
	return out
}

func TestListImagesFiltersEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a1.GIF"), 10)
	writeFile(t, filepath.Join(dir, "b.png"), 20)
	writeFile(t, filepath.Join(dir, "c.JPEG"), 5)
	writeFile(t, filepath.Join(dir, "notes.txt"), 1)
	writeFile(t, filepath.Join(dir, "._b.png"), 1)
	writeFile(t, filepath.Join(dir, ".png"), 1)
	writeFile(t, filepath.Join(dir, ".0a1b2c3d-page.jpg"), 7)
	writeFile(t, filepath.Join(dir, "nested", "d.png"), 1)
	if err := os.Symlink(filepath.Join(dir, "b.png"), filepath.Join(dir, "link.png")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	images, err := ListImages(dir, imagext.NewSet(imagext.Defaults...))
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	want := []string{".0a1b2c3d-page.jpg", "a1.GIF", "b.png", "c.JPEG"}
	if got := names(images); !slices.Equal(got, want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	for _, img := range images {
		if img.Name == "c.JPEG" && img.Ext != "jpg" {
			t.Fatalf("ext = %q, want jpg", img.Ext)
		}
		if img.Path != filepath.Join(dir, img.Name) {
			t.Fatalf("path = %q", img.Path)
		}
	}
	if total := TotalSize(images); total != 42 {
		t.Fatalf("TotalSize = %d, want 42", total)
	}
}

func TestListImagesEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "readme.md"), 1)

	_, err := ListImages(dir, imagext.NewSet(imagext.Defaults...))
	if !errors.Is(err, faults.ErrNothingToDo) {
		t.Fatalf("err = %v, want ErrNothingToDo", err)
	}
	if faults.Fatal(err) {
		t.Fatal("empty directory should not be fatal")
	}
}

func TestListImagesMissingDirectory(t *testing.T) {
	_, err := ListImages(filepath.Join(t.TempDir(), "missing"), imagext.NewSet("png"))
	if !errors.Is(err, faults.ErrInput) {
		t.Fatalf("err = %v, want ErrInput", err)
	}
	if faults.StageOf(err) != faults.StageDiscover {
		t.Fatalf("stage = %q", faults.StageOf(err))
	}
}

func TestListImagesRespectsConfiguredSet(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "1.png"), 1)
	writeFile(t, filepath.Join(dir, "2.webp"), 1)

	images, err := ListImages(dir, imagext.NewSet("webp"))
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	if got := names(images); !slices.Equal(got, []string{"2.webp"}) {
		t.Fatalf("names = %v", got)
	}
}

func TestExpandDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "vol10", "1.jpg"), 1)
	writeFile(t, filepath.Join(root, "vol2", "1.jpg"), 1)
	writeFile(t, filepath.Join(root, "vol2", "extras", "1.png"), 1)
	writeFile(t, filepath.Join(root, "empty", "notes.txt"), 1)
	writeFile(t, filepath.Join(root, ".hidden", "1.png"), 1)
	exts := imagext.NewSet(imagext.Defaults...)

	t.Run("recursive", func(t *testing.T) {
		dirs, err := ExpandDirectories([]string{root, filepath.Join(root, "vol2")}, exts, true)
		if err != nil {
			t.Fatalf("ExpandDirectories: %v", err)
		}
		want := []string{
			filepath.Join(root, "vol2"),
			filepath.Join(root, "vol2", "extras"),
			filepath.Join(root, "vol10"),
		}
		if !slices.Equal(dirs, want) {
			t.Fatalf("dirs = %v, want %v", dirs, want)
		}
	})

	t.Run("flat", func(t *testing.T) {
		dirs, err := ExpandDirectories([]string{filepath.Join(root, "empty")}, exts, false)
		if err != nil {
			t.Fatalf("ExpandDirectories: %v", err)
		}
		if !slices.Equal(dirs, []string{filepath.Join(root, "empty")}) {
			t.Fatalf("dirs = %v", dirs)
		}
	})

	t.Run("unreadable roots pass through", func(t *testing.T) {
		file := filepath.Join(root, "vol2", "1.jpg")
		missing := filepath.Join(root, "missing")
		for _, recursive := range []bool{false, true} {
			dirs, err := ExpandDirectories([]string{file, missing, filepath.Join(root, "vol10")}, exts, recursive)
			if err != nil {
				t.Fatalf("ExpandDirectories(recursive=%v): %v", recursive, err)
			}
			want := []string{missing, file, filepath.Join(root, "vol10")}
			if !slices.Equal(dirs, want) {
				t.Fatalf("recursive=%v: dirs = %v, want %v", recursive, dirs, want)
			}
		}
	})
}
