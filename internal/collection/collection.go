// Package collection maps item identities to hrefs and layers a
// key/value metadata store on top of the atomic file primitives.
package collection

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/hook"
	"github.com/starford/othala/internal/storage"
)

// MetaDirName is the reserved sub-directory holding collection metadata.
// Item hrefs are single path components ending in the collection's file
// extension, so they can never collide with it.
const MetaDirName = ".meta"

// Item is an immutable piece of raw text content. Callers construct
// items; the store never retains them beyond a single call.
type Item struct {
	Raw string
}

// ItemRef pairs an href with the item's current etag.
type ItemRef struct {
	Href string
	Etag string
}

// Collection stores the items and metadata of one collection directory.
// It is safe for use by any number of concurrent processes on the same
// directory: creates race on exclusive link, updates and deletes on etag
// comparison, and conflicting writers fail instead of blocking.
type Collection struct {
	path     string
	ext      string
	items    storage.Store
	meta     storage.Store
	notifier hook.Notifier
}

// Option configures a Collection.
type Option func(*Collection)

// WithHook installs a post-write notifier invoked after every successful
// Create and Update.
func WithHook(n hook.Notifier) Option {
	return func(c *Collection) { c.notifier = n }
}

// Open returns a Collection over an existing directory. fileext is the
// item file extension (with leading dot); charset is an IANA encoding
// name, empty for UTF-8. The metadata sub-directory is created if absent.
func Open(path, fileext, charset string, opts ...Option) (*Collection, error) {
	items, err := storage.NewDir(path, fileext, charset)
	if err != nil {
		return nil, err
	}
	metaDir := filepath.Join(items.Root(), MetaDirName)
	if err := os.MkdirAll(metaDir, DefaultDirMode); err != nil {
		return nil, fmt.Errorf("collection: create meta dir: %w", err)
	}
	meta, err := storage.NewDir(metaDir, "", charset)
	if err != nil {
		return nil, err
	}
	c := &Collection{
		path:  items.Root(),
		ext:   fileext,
		items: items,
		meta:  meta,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Path returns the absolute path of the collection directory.
func (c *Collection) Path() string { return c.path }

// Fileext returns the item file extension, with leading dot.
func (c *Collection) Fileext() string { return c.ext }

// Create stores item under an href derived from the identifier hint and
// returns the href and the new etag. Empty or unsafe hints get a random
// identifier. An href the filesystem rejects as too long is retried
// exactly once with a random identifier; a collision surviving that
// retry is AlreadyExists.
func (c *Collection) Create(ident string, item Item) (string, string, error) {
	href := c.href(ident)
	etag, err := c.items.WriteNew(href, item.Raw)
	if err != nil && errors.Is(err, syscall.ENAMETOOLONG) {
		href = randomIdent() + c.ext
		etag, err = c.items.WriteNew(href, item.Raw)
	}
	if err != nil {
		return "", "", err
	}
	c.notify(href)
	return href, etag, nil
}

// Get returns the item stored under href with its current etag.
func (c *Collection) Get(href string) (Item, string, error) {
	raw, etag, err := c.items.Read(href)
	if err != nil {
		return Item{}, "", err
	}
	return Item{Raw: raw}, etag, nil
}

// List returns a reference for every item in the collection. The
// directory is re-read on every call.
func (c *Collection) List() ([]ItemRef, error) {
	entries, err := c.items.List()
	if err != nil {
		return nil, err
	}
	refs := make([]ItemRef, len(entries))
	for i, e := range entries {
		refs[i] = ItemRef{Href: e.Name, Etag: e.Etag}
	}
	return refs, nil
}

// Etag returns the current etag of href without reading its content.
func (c *Collection) Etag(href string) (string, error) {
	return c.items.Etag(href)
}

// Update overwrites the item under href if etag matches the current
// on-disk state, returning the new etag.
func (c *Collection) Update(href string, item Item, etag string) (string, error) {
	newEtag, err := c.items.WriteExisting(href, item.Raw, etag)
	if err != nil {
		return "", err
	}
	c.notify(href)
	return newEtag, nil
}

// Delete removes the item under href if etag matches the current
// on-disk state.
func (c *Collection) Delete(href, etag string) error {
	return c.items.Remove(href, etag)
}

// GetMeta returns the value stored under key. A missing entry and an
// empty normalized value both read as absent, not as an error.
func (c *Collection) GetMeta(key string) (string, bool, error) {
	raw, _, err := c.meta.Read(key)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", false, nil
	}
	return value, true, nil
}

// SetMeta unconditionally overwrites key with the normalized value.
// Last writer wins; metadata is not etag-guarded.
func (c *Collection) SetMeta(key, value string) error {
	return c.meta.Write(key, strings.TrimSpace(value))
}

func (c *Collection) notify(href string) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(filepath.Join(c.path, href))
}
