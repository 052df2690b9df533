package naming

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"comicpack/internal/faults"
)

func seed(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func readContents(t *testing.T, dir string) map[string]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			t.Fatalf("read %s: %v", entry.Name(), err)
		}
		out[entry.Name()] = string(data)
	}
	return out
}

func TestWidth(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 1, 10: 1, 11: 2, 100: 2, 101: 3, 1000: 3, 1001: 4}
	for count, want := range cases {
		if got := Width(count); got != want {
			t.Errorf("Width(%d) = %d, want %d", count, got, want)
		}
	}
}

func TestNormalizeExt(t *testing.T) {
	tests := []struct {
		in    string
		upper bool
		want  string
	}{
		{".JPEG", false, "jpg"},
		{"jpg", false, "jpg"},
		{".TIFF", false, "tif"},
		{".png", true, "PNG"},
		{"jpeg", true, "JPG"},
		{".WebP", false, "webp"},
	}
	for _, tt := range tests {
		if got := NormalizeExt(tt.in, tt.upper); got != tt.want {
			t.Errorf("NormalizeExt(%q, %v) = %q, want %q", tt.in, tt.upper, got, tt.want)
		}
	}
}

func TestCanonicalName(t *testing.T) {
	if got := CanonicalName(7, 3, ".jpeg", false); got != "007.jpg" {
		t.Fatalf("CanonicalName = %q", got)
	}
	if got := CanonicalName(0, 1, ".png", true); got != "0.PNG" {
		t.Fatalf("CanonicalName = %q", got)
	}
}

func TestDirectPlan(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, map[string]string{"a1.gif": "one", "a10.gif": "ten", "b.png": "bee"})

	plan, err := NewPlan(dir, []string{"a1.gif", "a10.gif", "b.png"}, Options{})
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	if plan.Strategy != Direct {
		t.Fatalf("strategy = %s, want direct", plan.Strategy)
	}
	wantTargets := []string{
		filepath.Join(dir, "0.gif"),
		filepath.Join(dir, "1.gif"),
		filepath.Join(dir, "2.png"),
	}
	if got := plan.Targets(); !slices.Equal(got, wantTargets) {
		t.Fatalf("targets = %v, want %v", got, wantTargets)
	}

	if err := plan.Apply(context.Background()); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got := readContents(t, dir)
	want := map[string]string{"0.gif": "one", "1.gif": "ten", "2.png": "bee"}
	if len(got) != len(want) {
		t.Fatalf("dir = %v, want %v", got, want)
	}
	for name, content := range want {
		if got[name] != content {
			t.Fatalf("%s = %q, want %q", name, got[name], content)
		}
	}

	if err := plan.Apply(context.Background()); err == nil {
		t.Fatal("second Apply should fail")
	}
}

func TestTwoPhaseWithExistingCanonicalName(t *testing.T) {
	dir := t.TempDir()
	// 0.jpg is a page but not the first one.
	sources := []string{"page1.jpg", "page2.jpg", "0.jpg"}
	seed(t, dir, map[string]string{"page1.jpg": "p1", "page2.jpg": "p2", "0.jpg": "zero"})

	plan, err := NewPlan(dir, sources, Options{Marker: "tmpmark"})
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	if plan.Strategy != TwoPhase {
		t.Fatalf("strategy = %s, want two-phase", plan.Strategy)
	}
	if plan.Entries[2].Temp != ".tmpmark-0.jpg" {
		t.Fatalf("temp = %q", plan.Entries[2].Temp)
	}

	if err := plan.Apply(context.Background()); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got := readContents(t, dir)
	want := map[string]string{"0.jpg": "p1", "1.jpg": "p2", "2.jpg": "zero"}
	if len(got) != len(want) {
		t.Fatalf("dir = %v, want %v", got, want)
	}
	for name, content := range want {
		if got[name] != content {
			t.Fatalf("%s = %q, want %q", name, got[name], content)
		}
	}
}

func TestCaseOnlyChangeUsesTwoPhase(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, map[string]string{"0.JPG": "x", "1.jpg": "y"})

	plan, err := NewPlan(dir, []string{"0.JPG", "1.jpg"}, Options{})
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	if plan.Strategy != TwoPhase {
		t.Fatalf("strategy = %s, want two-phase", plan.Strategy)
	}
	if plan.Entries[0].Unchanged || !plan.Entries[1].Unchanged {
		t.Fatalf("unchanged flags = %v, %v", plan.Entries[0].Unchanged, plan.Entries[1].Unchanged)
	}
	if plan.Pending() != 1 {
		t.Fatalf("pending = %d", plan.Pending())
	}
	if err := plan.Apply(context.Background()); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got := readContents(t, dir)
	if got["0.jpg"] != "x" || got["1.jpg"] != "y" || len(got) != 2 {
		t.Fatalf("dir = %v", got)
	}
}

func TestAlreadyCanonicalIsNoop(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, map[string]string{"0.png": "a", "1.png": "b"})

	plan, err := NewPlan(dir, []string{"0.png", "1.png"}, Options{})
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	if plan.Pending() != 0 || plan.Strategy != Direct {
		t.Fatalf("pending = %d strategy = %s", plan.Pending(), plan.Strategy)
	}
	if err := plan.Apply(context.Background()); err != nil {
		t.Fatalf("Apply: %v", err)
	}
}

func TestTargetHeldByNonPage(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, map[string]string{"a.png": "a"})
	if err := os.Mkdir(filepath.Join(dir, "0.png"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	_, err := NewPlan(dir, []string{"a.png"}, Options{})
	if !errors.Is(err, faults.ErrRename) {
		t.Fatalf("err = %v, want ErrRename", err)
	}
}

func TestMarkerInUseRejected(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, map[string]string{"b.png": "b", ".dup-old.png": "x"})

	if _, err := NewPlan(dir, []string{"b.png"}, Options{Marker: "dup"}); err == nil {
		t.Fatal("expected marker collision error")
	}

	plan, err := NewPlan(dir, []string{"b.png"}, Options{})
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	if len(plan.Marker) != 8 || strings.HasPrefix(".dup-old.png", "."+plan.Marker+"-") {
		t.Fatalf("marker = %q", plan.Marker)
	}
}

func TestApplyReportsRenameError(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, map[string]string{"x1.png": "1", "x2.png": "2"})

	plan, err := NewPlan(dir, []string{"x1.png", "x2.png"}, Options{})
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	// Occupy the second target after planning.
	seed(t, dir, map[string]string{"1.png": "intruder"})

	err = plan.Apply(context.Background())
	var renameErr *RenameError
	if !errors.As(err, &renameErr) {
		t.Fatalf("err = %v, want *RenameError", err)
	}
	if renameErr.Phase != PhaseDirect || renameErr.Source != "x2.png" || renameErr.Target != "1.png" {
		t.Fatalf("rename error = %+v", renameErr)
	}
	if !errors.Is(err, faults.ErrRename) || !errors.Is(err, fs.ErrExist) {
		t.Fatalf("err should match ErrRename and ErrExist: %v", err)
	}

	got := readContents(t, dir)
	if got["0.png"] != "1" || got["1.png"] != "intruder" || got["x2.png"] != "2" {
		t.Fatalf("dir = %v", got)
	}
}

func TestApplyHonoursCancellation(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, map[string]string{"x1.png": "1"})

	plan, err := NewPlan(dir, []string{"x1.png"}, Options{})
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := plan.Apply(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "x1.png")); err != nil {
		t.Fatalf("source should be untouched: %v", err)
	}
}

func TestNewPlanRejectsEmpty(t *testing.T) {
	if _, err := NewPlan(t.TempDir(), nil, Options{}); !errors.Is(err, faults.ErrNothingToDo) {
		t.Fatalf("err = %v, want ErrNothingToDo", err)
	}
}

func TestParked(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		parked bool
	}{
		{".9a3b4c5d-p1.jpg", "p1.jpg", true},
		{TempName("0a1b2c3d", "cover.png"), "cover.png", true},
		{".9a3b4c5d-", ".9a3b4c5d-", false},
		{".9A3B4C5D-p1.jpg", ".9A3B4C5D-p1.jpg", false},
		{".abc-p1.jpg", ".abc-p1.jpg", false},
		{"p1.jpg", "p1.jpg", false},
	}
	for _, tc := range tests {
		got, parked := Parked(tc.name)
		if got != tc.want || parked != tc.parked {
			t.Errorf("Parked(%q) = %q, %v; want %q, %v", tc.name, got, parked, tc.want, tc.parked)
		}
	}
}
