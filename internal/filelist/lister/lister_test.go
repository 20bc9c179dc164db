package lister

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	flerrors "github.com/dimasma0305/filelist/internal/filelist/errors"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0600); err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
}

func TestList_DirectChildrenOnly(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.txt"))
	touch(t, filepath.Join(dir, "b.log"))
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0750); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(dir, "sub", "nested.txt"))
	if runtime.GOOS != "windows" {
		if err := os.Symlink(filepath.Join(dir, "a.txt"), filepath.Join(dir, "link")); err != nil {
			t.Fatal(err)
		}
	}

	got, err := List(dir)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []string{"a.txt", "b.log", "sub"}
	if runtime.GOOS != "windows" {
		want = append(want, "link")
	}
	sort.Strings(got)
	sort.Strings(want)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestList_EmptyDirectory(t *testing.T) {
	got, err := List(t.TempDir())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("List() = %v, want empty", got)
	}
	for _, name := range got {
		if name == "." || name == ".." {
			t.Errorf("List() returned pseudo-entry %q", name)
		}
	}
}

func TestList_NotFound(t *testing.T) {
	_, err := List(filepath.Join(t.TempDir(), "missing"))
	if !flerrors.Is(err, flerrors.ErrDirectoryNotFound) {
		t.Errorf("List() error = %v, want ErrDirectoryNotFound", err)
	}
}

func TestList_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain")
	touch(t, file)

	_, err := List(file)
	if !flerrors.Is(err, flerrors.ErrDirectoryRead) {
		t.Errorf("List() error = %v, want ErrDirectoryRead", err)
	}
}

func TestList_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for this user")
	}
	dir := filepath.Join(t.TempDir(), "locked")
	if err := os.Mkdir(dir, 0000); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chmod(dir, 0750) }()

	_, err := List(dir)
	if !flerrors.Is(err, flerrors.ErrDirectoryPermissionDenied) {
		t.Errorf("List() error = %v, want ErrDirectoryPermissionDenied", err)
	}
}

func TestClassify_ReadErrorNamesPathOnce(t *testing.T) {
	path := "/data/in"
	err := classify(path, &fs.PathError{Op: "readdirent", Path: path, Err: errors.New("device gone")})
	if !flerrors.Is(err, flerrors.ErrDirectoryRead) {
		t.Fatalf("classify() error = %v, want ErrDirectoryRead", err)
	}
	if got, want := err.Error(), "/data/in: device gone: directory read failed"; got != want {
		t.Errorf("classify() = %q, want %q", got, want)
	}
}

func TestFunc(t *testing.T) {
	var l Lister = Func(func(path string) ([]string, error) {
		return []string{path}, nil
	})
	got, err := l.List("x")
	if err != nil || len(got) != 1 || got[0] != "x" {
		t.Errorf("Func.List() = %v, %v", got, err)
	}
}
