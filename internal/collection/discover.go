package collection

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultDirMode is the permission mode for created collection
// directories.
const DefaultDirMode = 0o750

// EnsureDir creates the collection directory base/name if it is absent
// and returns its path. A path that exists but is not a directory is an
// error.
func EnsureDir(base, name string) (string, error) {
	path := filepath.Join(base, name)
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(path, DefaultDirMode); err != nil {
			return "", fmt.Errorf("collection: create %s: %w", path, err)
		}
	case err != nil:
		return "", fmt.Errorf("collection: stat %s: %w", path, err)
	case !info.IsDir():
		return "", fmt.Errorf("collection: %s is not a directory", path)
	}
	return path, nil
}

// Discover returns the path of every collection directory directly under
// base. A missing base yields an empty result, not an error.
func Discover(base string) ([]string, error) {
	dirents, err := os.ReadDir(base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("collection: discover %s: %w", base, err)
	}
	var out []string
	for _, de := range dirents {
		if de.IsDir() {
			out = append(out, filepath.Join(base, de.Name()))
		}
	}
	return out, nil
}
