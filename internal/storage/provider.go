// Package storage implements crash-safe file operations over a single
// directory, with mtime-derived etags and optimistic concurrency.
package storage

// Entry pairs a file name with its current etag.
type Entry struct {
	Name string
	Etag string
}

// Store is the interface for atomic single-directory file operations.
// Names are single path components; every call re-derives state from the
// filesystem, so the store holds nothing in memory between calls.
type Store interface {
	// List returns every regular file ending in the configured extension,
	// re-reading the directory on each call. No ordering guarantee.
	List() ([]Entry, error)
	// Read returns the decoded content and current etag of name.
	Read(name string) (string, string, error)
	// Etag returns the current etag of name.
	Etag(name string) (string, error)
	// WriteNew atomically creates name, failing if it already exists.
	WriteNew(name, content string) (string, error)
	// WriteExisting atomically overwrites name if its current etag matches
	// expectedEtag, returning the new etag.
	WriteExisting(name, content, expectedEtag string) (string, error)
	// Write atomically overwrites name unconditionally (no etag guard).
	Write(name, content string) error
	// Remove deletes name if its current etag matches expectedEtag.
	Remove(name, expectedEtag string) error
}
