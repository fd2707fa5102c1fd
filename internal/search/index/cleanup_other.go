//go:build !windows

package index

import "os"

// cleanupBackup removes a replaced index directory.
func cleanupBackup(backupDir string) error {
	if backupDir == "" {
		return nil
	}
	return os.RemoveAll(backupDir)
}
