//go:build windows

package index

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sys/windows"
)

// cleanupBackup removes a replaced index directory.
//
// On Windows a server process or an indexer may still hold vectors.f32 open; we retry
// for a short period and then schedule whatever is left for deletion at next reboot.
func cleanupBackup(backupDir string) error {
	if backupDir == "" {
		return nil
	}

	var lastErr error
	for i := 0; i < 15; i++ {
		lastErr = os.RemoveAll(backupDir)
		if lastErr == nil {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}

	var paths []string
	_ = filepath.WalkDir(backupDir, func(path string, _ fs.DirEntry, err error) error {
		if err == nil {
			paths = append(paths, path)
		}
		return nil
	})
	// children before parents: MoveFileEx only deletes empty directories
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	for _, p := range paths {
		ptr, err := windows.UTF16PtrFromString(p)
		if err != nil {
			return lastErr
		}
		if err := windows.MoveFileEx(ptr, nil, windows.MOVEFILE_DELAY_UNTIL_REBOOT); err != nil {
			return lastErr
		}
	}
	return nil
}
