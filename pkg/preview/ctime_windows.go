//go:build windows

package preview

import (
	"io/fs"
	"syscall"
	"time"
)

// changeTime returns the creation time, which is what st_ctime means on Windows.
func changeTime(info fs.FileInfo) time.Time {
	if attr, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		return time.Unix(0, attr.CreationTime.Nanoseconds())
	}

	return info.ModTime()
}
