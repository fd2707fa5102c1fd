package index

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// removeBackup deletes the swap backup once the new directory is in place.
var removeBackup = cleanupBackup

// AtomicSwap replaces destDir with srcDir by renaming. The previous destDir is kept as
// destDir+".bak" until the rename succeeds, then removed. Once srcDir is installed a
// failure to remove the backup is only logged; 'biobot doctor fix' removes it later.
func AtomicSwap(srcDir, destDir string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	parent := filepath.Dir(destDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}
	backup := destDir + ".bak"
	_ = cleanupBackup(backup)
	if _, err := os.Stat(destDir); err == nil {
		if err := os.Rename(destDir, backup); err != nil {
			return err
		}
	}
	if err := os.Rename(srcDir, destDir); err != nil {
		// rollback best-effort
		if _, stErr := os.Stat(backup); stErr == nil {
			_ = os.Rename(backup, destDir)
		}
		return err
	}
	if err := removeBackup(backup); err != nil {
		logger.Warn("cannot remove index backup", "path", backup, "err", err)
	}
	return nil
}

// StaleArtifacts lists leftovers of interrupted builds next to dir: temp build dirs
// created by BuildAndInstall and the swap backup. Callers should hold the build lock.
func StaleArtifacts(dir string) ([]string, error) {
	dir = filepath.Clean(dir)
	parent := filepath.Dir(dir)
	entries, err := os.ReadDir(parent)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	tmpPrefix := "." + filepath.Base(dir) + ".tmp-"
	backup := filepath.Base(dir) + ".bak"

	var found []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if name := e.Name(); strings.HasPrefix(name, tmpPrefix) || name == backup {
			found = append(found, filepath.Join(parent, name))
		}
	}
	return found, nil
}

// RemoveStale deletes the paths reported by StaleArtifacts and returns them.
func RemoveStale(dir string) ([]string, error) {
	found, err := StaleArtifacts(dir)
	if err != nil {
		return nil, err
	}
	for _, p := range found {
		if err := cleanupBackup(p); err != nil {
			return nil, fmt.Errorf("cannot remove %s: %w", p, err)
		}
	}
	return found, nil
}
