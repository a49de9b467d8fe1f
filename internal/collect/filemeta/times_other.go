//go:build !windows

package filemeta

import (
	"io/fs"
	"time"
)

// fileTimes falls back to the modification time on platforms without
// creation and access attributes in the portable stat result.
func fileTimes(info fs.FileInfo) (created, modified, accessed time.Time) {
	modified = info.ModTime()
	return modified, modified, modified
}
