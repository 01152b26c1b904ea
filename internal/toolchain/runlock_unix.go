// SPDX-License-Identifier: MPL-2.0

//go:build linux || darwin

package toolchain

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sys/unix"
)

// BuildLock holds an exclusive flock on the output directory's lock file.
// The kernel releases the lock when the fd closes, including on crash, so
// an orphaned zero-byte lock file is harmless.
type BuildLock struct {
	file *os.File
}

// acquireLock opens (or creates) the lock file and takes a non-blocking
// exclusive flock. A held lock means another build is writing this output
// tree right now.
func acquireLock(path string) (*BuildLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, &BuildLockedError{Path: path}
		}
		return nil, fmt.Errorf("flock %s: %w", path, err)
	}
	return &BuildLock{file: f}, nil
}

// Release unlocks the flock and closes the file descriptor. It is safe to
// call multiple times.
func (l *BuildLock) Release() {
	if l == nil || l.file == nil {
		return
	}
	// LOCK_UN before Close for explicitness; Close also releases the flock.
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		slog.Debug("flock unlock failed", "error", err)
	}
	if err := l.file.Close(); err != nil {
		slog.Debug("lock file close failed", "error", err)
	}
	l.file = nil
}
