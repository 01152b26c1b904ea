// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"fmt"
	"os"
	"path/filepath"
)

// LockFileName is the lock file guarding an output directory. One build at
// a time may hold it; concurrent builds would interleave writes into the
// shared output layout.
const LockFileName = "svbind.lock"

// AcquireBuildLock takes the exclusive build lock for an output directory,
// creating the directory first if needed. A second build against the same
// output directory fails with a BuildLockedError instead of corrupting the
// running one's layout.
func AcquireBuildLock(outDir string) (*BuildLock, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir %s: %w", outDir, err)
	}
	return acquireLock(filepath.Join(outDir, LockFileName))
}
