package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// LockPath returns the lock file guarding builds into dir.
func LockPath(dir string) string {
	return filepath.Clean(dir) + ".lock"
}

// AcquireBuildLock takes the exclusive build lock for dir, polling until ctx is done or
// timeout elapses. The returned func releases the lock.
func AcquireBuildLock(ctx context.Context, dir string, timeout time.Duration) (func(), error) {
	lockPath := LockPath(dir)
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return func() {}, fmt.Errorf("cannot create lock dir: %w", err)
	}
	l := flock.New(lockPath)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return func() {}, fmt.Errorf("cannot acquire build lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return func() {}, fmt.Errorf("another index build is in progress (lock: %s)", lockPath)
		}
		select {
		case <-ctx.Done():
			return func() {}, ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}
