package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/starford/othala/internal/apperr"
)

// TmpPrefix marks in-flight atomic-write staging files. Watchers and
// enumeration tools skip names carrying it.
const TmpPrefix = ".othala-tmp-"

const tmpPattern = TmpPrefix + "*"

// Dir implements Store backed by one local directory.
type Dir struct {
	root    string // absolute path to the directory
	ext     string // filename suffix filter for List, may be empty
	enc     encoding.Encoding
	charset string
}

// NewDir creates a Store rooted at the given directory, which must
// already exist. ext is the filename suffix List filters on (empty means
// every regular file). charset is an IANA encoding name; empty means
// UTF-8.
func NewDir(root, ext, charset string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	enc, err := lookupEncoding(charset)
	if err != nil {
		return nil, err
	}
	return &Dir{root: abs, ext: ext, enc: enc, charset: charset}, nil
}

// Root returns the absolute path of the directory.
func (d *Dir) Root() string { return d.root }

// path resolves name against the root, rejecting anything that is not a
// plain single-component file name (directory traversal, separators).
func (d *Dir) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) {
		return "", fmt.Errorf("storage: invalid file name: %q", name)
	}
	return filepath.Join(d.root, name), nil
}

// List returns every regular file whose name ends in the configured
// extension, with its current etag. The directory is re-read on each
// call; files vanishing mid-enumeration are skipped.
func (d *Dir) List() ([]Entry, error) {
	dirents, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []Entry
	for _, de := range dirents {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, d.ext) {
			continue
		}
		if strings.HasPrefix(name, TmpPrefix) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("storage: list: %w", err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		out = append(out, Entry{Name: name, Etag: etagFromInfo(info)})
	}
	return out, nil
}

// Read returns the decoded content of name together with its etag.
func (d *Dir) Read(name string) (string, string, error) {
	fpath, err := d.path(name)
	if err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(fpath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", "", &apperr.NotFoundError{Href: name}
		}
		return "", "", fmt.Errorf("storage: read %s: %w", name, err)
	}
	content, err := d.decode(data)
	if err != nil {
		return "", "", err
	}
	etag, err := d.Etag(name)
	if err != nil {
		return "", "", err
	}
	return content, etag, nil
}

// Etag stats name and returns its current etag.
func (d *Dir) Etag(name string) (string, error) {
	fpath, err := d.path(name)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(fpath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &apperr.NotFoundError{Href: name}
		}
		return "", fmt.Errorf("storage: stat %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return "", &apperr.NotFoundError{Href: name}
	}
	return etagFromInfo(info), nil
}

// writeTemp writes data to a fresh temp file in the root directory and
// syncs it. The caller owns the returned open file and its cleanup.
func (d *Dir) writeTemp(data []byte) (*os.File, error) {
	tmp, err := os.CreateTemp(d.root, tmpPattern)
	if err != nil {
		return nil, fmt.Errorf("storage: create temp: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("storage: fsync: %w", err)
	}
	return tmp, nil
}

// WriteNew atomically creates name with content, failing with
// AlreadyExists if the target is present. The content is staged in a
// temp file and hard-linked into place: link refuses to replace an
// existing target, so a concurrent creator loses with EEXIST instead of
// silently clobbering. Either the whole file is visible under name or
// nothing is.
func (d *Dir) WriteNew(name, content string) (string, error) {
	fpath, err := d.path(name)
	if err != nil {
		return "", err
	}
	data, err := d.encode(content)
	if err != nil {
		return "", err
	}
	tmp, err := d.writeTemp(data)
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		// The link (if it happened) keeps the inode alive.
		_ = os.Remove(tmpName)
	}()

	info, err := tmp.Stat()
	if err != nil {
		return "", fmt.Errorf("storage: stat temp: %w", err)
	}
	if err := os.Link(tmpName, fpath); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", &apperr.AlreadyExistsError{Href: name}
		}
		return "", fmt.Errorf("storage: link into place: %w", err)
	}
	return etagFromInfo(info), nil
}

// WriteExisting atomically overwrites name after verifying the caller's
// etag against the current on-disk etag. The new etag is taken from the
// still-open temp file descriptor (which references the renamed inode),
// so a concurrent writer racing the rename cannot leak its etag into the
// return value.
func (d *Dir) WriteExisting(name, content, expectedEtag string) (string, error) {
	fpath, err := d.path(name)
	if err != nil {
		return "", err
	}
	data, err := d.encode(content)
	if err != nil {
		return "", err
	}
	actual, err := d.Etag(name)
	if err != nil {
		return "", err
	}
	if actual != expectedEtag {
		return "", &apperr.EtagMismatchError{Expected: expectedEtag, Actual: actual}
	}

	tmp, err := d.writeTemp(data)
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	success := false
	defer func() {
		_ = tmp.Close()
		if !success {
			_ = os.Remove(tmpName)
		}
	}()

	if err := os.Rename(tmpName, fpath); err != nil {
		return "", fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	info, err := tmp.Stat()
	if err != nil {
		return "", fmt.Errorf("storage: stat written file: %w", err)
	}
	return etagFromInfo(info), nil
}

// Write atomically overwrites name without any etag guard. Last writer
// wins; the metadata layer builds on this.
func (d *Dir) Write(name, content string) error {
	fpath, err := d.path(name)
	if err != nil {
		return err
	}
	data, err := d.encode(content)
	if err != nil {
		return err
	}
	tmp, err := d.writeTemp(data)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	success := false
	defer func() {
		_ = tmp.Close()
		if !success {
			_ = os.Remove(tmpName)
		}
	}()

	if err := os.Rename(tmpName, fpath); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Remove deletes name after verifying the caller's etag. The check and
// the unlink are not atomic; the guarantee is that a mismatch is never
// followed by a delete, not that the window is closed.
func (d *Dir) Remove(name, expectedEtag string) error {
	fpath, err := d.path(name)
	if err != nil {
		return err
	}
	actual, err := d.Etag(name)
	if err != nil {
		return err
	}
	if actual != expectedEtag {
		return &apperr.EtagMismatchError{Expected: expectedEtag, Actual: actual}
	}
	if err := os.Remove(fpath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &apperr.NotFoundError{Href: name}
		}
		return fmt.Errorf("storage: remove %s: %w", name, err)
	}
	return nil
}
