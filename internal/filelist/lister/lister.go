// Package lister enumerates the direct entries of a directory.
package lister

import (
	"errors"
	"io/fs"
	"os"

	flerrors "github.com/dimasma0305/filelist/internal/filelist/errors"
	"github.com/dimasma0305/filelist/internal/log"
)

// Lister enumerates a directory
type Lister interface {
	List(path string) ([]string, error)
}

// Func adapts a function to the Lister interface
type Func func(path string) ([]string, error)

// List calls f(path)
func (f Func) List(path string) ([]string, error) {
	return f(path)
}

// OS lists directories on the local filesystem
type OS struct{}

// List returns the names of the direct children of path in directory order.
// Entries of every type are included and nothing is followed or recursed into.
func (OS) List(path string) ([]string, error) {
	return List(path)
}

// List returns the names of the direct children of path in directory order.
func List(path string) ([]string, error) {
	//nolint:gosec // G304: directory comes from operator configuration
	dir, err := os.Open(path)
	if err != nil {
		return nil, classify(path, err)
	}
	defer func() { _ = dir.Close() }()

	info, err := dir.Stat()
	if err != nil {
		return nil, classify(path, err)
	}
	if !info.IsDir() {
		return nil, flerrors.Wrapf(flerrors.ErrDirectoryRead, "%s is not a directory", path)
	}

	names, err := dir.Readdirnames(-1)
	if err != nil {
		return nil, classify(path, err)
	}

	entries := make([]string, 0, len(names))
	for _, name := range names {
		if name == "." || name == ".." {
			continue
		}
		entries = append(entries, name)
	}

	log.DebugH3("Listed %d entries in %s", len(entries), path)
	return entries, nil
}

func classify(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return flerrors.Wrapf(flerrors.ErrDirectoryNotFound, "%s", path)
	case errors.Is(err, fs.ErrPermission):
		return flerrors.Wrapf(flerrors.ErrDirectoryPermissionDenied, "%s", path)
	default:
		// the path is already in our prefix
		var pathErr *fs.PathError
		if flerrors.As(err, &pathErr) {
			err = pathErr.Err
		}
		return flerrors.Wrapf(flerrors.ErrDirectoryRead, "%s: %v", path, err)
	}
}
