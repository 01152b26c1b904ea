// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"svbind-cli/pkg/types"
)

// IsTransientError reports whether err is a transient container engine error
// that may succeed on retry. It covers transient failures from image pulls
// and containerized builds: registry network hiccups, storage driver glitches,
// and generic engine errors (exit codes 125/126).
//
// Context cancellation and deadline errors are explicitly non-transient because
// retrying a cancelled operation is never useful.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}

	// Context errors are never transient — the caller explicitly stopped the operation.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Exit codes 125/126 signal container engine failures (not the command
	// inside the container). These are often transient storage or cgroup issues.
	if exitErr, ok := errors.AsType[*exec.ExitError](err); ok {
		if types.ExitCode(exitErr.ExitCode()).IsTransient() {
			return true
		}
	}

	errStr := err.Error()

	// OCI runtime setup races under rootless Podman.
	if strings.Contains(errStr, "OCI runtime error") {
		return true
	}

	// Network errors while contacting the registry.
	if strings.Contains(errStr, "Temporary failure resolving") ||
		strings.Contains(errStr, "Could not resolve host") ||
		strings.Contains(errStr, "connection timed out") ||
		strings.Contains(errStr, "connection refused") {
		return true
	}

	// Storage driver errors (overlay mount races on rootless Podman).
	if strings.Contains(errStr, "error creating overlay mount") ||
		strings.Contains(errStr, "error mounting layer") {
		return true
	}

	return false
}
