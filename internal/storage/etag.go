package storage

import (
	"fmt"
	"io/fs"
)

// etagFromInfo formats a file's modification time as an opaque change
// token: seconds and nanoseconds as a fixed-precision decimal string.
// Filesystems with coarse mtime resolution zero-fill the fraction, which
// means rapid sequential writes can collide; callers compare etags for
// equality only and never parse them.
func etagFromInfo(info fs.FileInfo) string {
	mtime := info.ModTime()
	return fmt.Sprintf("%d.%09d", mtime.Unix(), mtime.Nanosecond())
}
