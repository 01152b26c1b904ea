// SPDX-License-Identifier: MPL-2.0

//go:build !linux && !darwin

package toolchain

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
)

// BuildLock is a create-exclusive lock file. Without flock the lock cannot
// outlive a crash cleanly: a stale file must be removed by hand, and the
// lock error says which file.
type BuildLock struct {
	path string
}

// acquireLock creates the lock file exclusively. An existing file means
// another build is running, or crashed without cleanup.
func acquireLock(path string) (*BuildLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, &BuildLockedError{Path: path}
		}
		return nil, fmt.Errorf("create lock file %s: %w", path, err)
	}

	// The PID inside identifies the owner of a stale lock.
	if _, err := f.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		slog.Debug("lock file pid write failed", "error", err)
	}
	if err := f.Close(); err != nil {
		slog.Debug("lock file close failed", "error", err)
	}
	return &BuildLock{path: path}, nil
}

// Release removes the lock file. It is safe to call multiple times.
func (l *BuildLock) Release() {
	if l == nil || l.path == "" {
		return
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Debug("lock file remove failed", "error", err)
	}
	l.path = ""
}
