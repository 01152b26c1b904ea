// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"errors"
	"fmt"
	"strings"

	"svbind-cli/internal/container"
	"svbind-cli/pkg/triple"
	"svbind-cli/pkg/types"
)

var (
	// ErrMissingTool is the sentinel error wrapped by MissingToolError.
	ErrMissingTool = errors.New("required tool not found")
	// ErrMissingRustTarget is the sentinel error wrapped by MissingRustTargetError.
	ErrMissingRustTarget = errors.New("rust target not installed")
	// ErrNDKNotFound is the sentinel error wrapped by NDKNotFoundError.
	ErrNDKNotFound = errors.New("android ndk not found")
	// ErrAppleHostRequired is the sentinel error wrapped by AppleHostError.
	ErrAppleHostRequired = errors.New("apple targets require a macos host")
	// ErrMissingImage is the sentinel error wrapped by MissingImageError.
	ErrMissingImage = errors.New("build image not present")
	// ErrBuildFailed is the sentinel error wrapped by BuildFailedError.
	ErrBuildFailed = errors.New("native build failed")
	// ErrBuildLocked is the sentinel error wrapped by BuildLockedError.
	ErrBuildLocked = errors.New("output directory locked by another build")
	// ErrPathOutsideRoot is returned when a containerized build needs a host
	// path that is not under the mounted project root.
	ErrPathOutsideRoot = errors.New("path outside the mounted project root")
	// ErrInvalidBuildRequest is the sentinel error wrapped by InvalidBuildRequestError.
	ErrInvalidBuildRequest = errors.New("invalid build request")
)

type (
	// MissingToolError reports a required tool that could not be found in
	// PATH. Triple is set when the tool is needed for one specific target
	// rather than for every build.
	MissingToolError struct {
		Tool         string
		Alternatives []string
		Triple       triple.Triple
		Purpose      string
	}

	// MissingRustTargetError reports a triple whose rust std component is
	// not installed in the active toolchain.
	MissingRustTargetError struct {
		Triple triple.Triple
	}

	// NDKNotFoundError reports that no Android NDK installation was found.
	// Searched lists the candidate locations that were tried, in order.
	NDKNotFoundError struct {
		Searched []string
	}

	// AppleHostError reports an Apple triple requested on a host that
	// cannot build it. Apple targets need the Apple SDKs, which exist only
	// on macOS; containerized builds run Linux and are equally unable.
	AppleHostError struct {
		Triple triple.Triple
		HostOS string
	}

	// MissingImageError reports that the cross-compilation image for
	// containerized builds is not available locally.
	MissingImageError struct {
		Image container.ImageTag
	}

	// BuildFailedError reports a cargo build that exited non-zero. The
	// compiler output was already streamed to the request's writers.
	BuildFailedError struct {
		Triple   triple.Triple
		ExitCode types.ExitCode
	}

	// BuildLockedError reports that another build holds the output
	// directory's lock file.
	BuildLockedError struct {
		Path string
	}

	// InvalidBuildRequestError is returned when a BuildRequest has invalid
	// fields. It wraps ErrInvalidBuildRequest for errors.Is() compatibility
	// and collects field-level validation errors.
	InvalidBuildRequestError struct {
		FieldErrs []error
	}
)

// Error implements the error interface for MissingToolError.
func (e *MissingToolError) Error() string {
	name := e.Tool
	if len(e.Alternatives) > 0 {
		name = fmt.Sprintf("%s (or %s)", e.Tool, strings.Join(e.Alternatives, ", "))
	}
	msg := fmt.Sprintf("%s not found in PATH", name)
	if e.Triple != "" {
		msg += fmt.Sprintf(", required for %s", e.Triple)
	}
	if e.Purpose != "" {
		msg += ": " + e.Purpose
	}
	return msg
}

// Unwrap returns ErrMissingTool for errors.Is() compatibility.
func (e *MissingToolError) Unwrap() error { return ErrMissingTool }

// Error implements the error interface for MissingRustTargetError.
func (e *MissingRustTargetError) Error() string {
	return fmt.Sprintf("rust std component for %s is not installed (rustup target add %s)",
		e.Triple, e.Triple)
}

// Unwrap returns ErrMissingRustTarget for errors.Is() compatibility.
func (e *MissingRustTargetError) Unwrap() error { return ErrMissingRustTarget }

// Error implements the error interface for NDKNotFoundError.
func (e *NDKNotFoundError) Error() string {
	if len(e.Searched) == 0 {
		return fmt.Sprintf("android ndk not found: set %s or %s, or pin android.ndk_home in the machine config",
			EnvAndroidNDKHome, EnvAndroidHome)
	}
	return fmt.Sprintf("android ndk not found (searched: %s)", strings.Join(e.Searched, ", "))
}

// Unwrap returns ErrNDKNotFound for errors.Is() compatibility.
func (e *NDKNotFoundError) Unwrap() error { return ErrNDKNotFound }

// Error implements the error interface for AppleHostError.
func (e *AppleHostError) Error() string {
	return fmt.Sprintf("%s requires a macOS host with Xcode (building on %s)", e.Triple, e.HostOS)
}

// Unwrap returns ErrAppleHostRequired for errors.Is() compatibility.
func (e *AppleHostError) Unwrap() error { return ErrAppleHostRequired }

// Error implements the error interface for MissingImageError.
func (e *MissingImageError) Error() string {
	return fmt.Sprintf("build image %s not found locally", e.Image)
}

// Unwrap returns ErrMissingImage for errors.Is() compatibility.
func (e *MissingImageError) Unwrap() error { return ErrMissingImage }

// Error implements the error interface for BuildFailedError.
func (e *BuildFailedError) Error() string {
	return fmt.Sprintf("cargo build for %s failed with exit code %s", e.Triple, e.ExitCode)
}

// Unwrap returns ErrBuildFailed for errors.Is() compatibility.
func (e *BuildFailedError) Unwrap() error { return ErrBuildFailed }

// Error implements the error interface for BuildLockedError.
func (e *BuildLockedError) Error() string {
	return fmt.Sprintf("another build is using this output directory (lock file: %s)", e.Path)
}

// Unwrap returns ErrBuildLocked for errors.Is() compatibility.
func (e *BuildLockedError) Unwrap() error { return ErrBuildLocked }

// Error implements the error interface for InvalidBuildRequestError.
func (e *InvalidBuildRequestError) Error() string {
	return fmt.Sprintf("invalid build request: %d field error(s)", len(e.FieldErrs))
}

// Unwrap returns ErrInvalidBuildRequest for errors.Is() compatibility.
func (e *InvalidBuildRequestError) Unwrap() error { return ErrInvalidBuildRequest }
