// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// This package centralizes the runtime.GOOS name constants used by the
// toolchain and preflight checks, so OS comparisons never scatter magic
// strings through the codebase.
package platform
