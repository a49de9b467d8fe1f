//go:build windows

package filemeta

import (
	"io/fs"
	"syscall"
	"time"
)

// fileTimes returns the creation, modification, and access instants from the
// NTFS attribute data.
func fileTimes(info fs.FileInfo) (created, modified, accessed time.Time) {
	modified = info.ModTime()
	created, accessed = modified, modified

	if attr, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		created = time.Unix(0, attr.CreationTime.Nanoseconds())
		accessed = time.Unix(0, attr.LastAccessTime.Nanoseconds())
	}
	return created, modified, accessed
}
