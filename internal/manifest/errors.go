// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"

	"svbind-cli/internal/digest"
)

var (
	// ErrInvalidManifest is the sentinel error wrapped by InvalidManifestError.
	ErrInvalidManifest = errors.New("invalid bundle manifest")
	// ErrDigestMismatch is the sentinel error wrapped by DigestMismatchError.
	ErrDigestMismatch = errors.New("bundle binary digest mismatch")
)

type (
	// InvalidManifestError is returned when a manifest file fails
	// structural validation. It wraps ErrInvalidManifest for errors.Is()
	// compatibility and collects field-level validation errors.
	InvalidManifestError struct {
		Path      string
		FieldErrs []error
	}

	// DigestMismatchError reports a recorded binary whose on-disk
	// contents no longer hash to the digest recorded at assembly time.
	DigestMismatchError struct {
		Path string // bundle-relative
		Want digest.Digest
		Got  digest.Digest
	}
)

// Error implements the error interface for InvalidManifestError.
func (e *InvalidManifestError) Error() string {
	return fmt.Sprintf("invalid bundle manifest %s: %d field error(s)", e.Path, len(e.FieldErrs))
}

// Unwrap returns ErrInvalidManifest for errors.Is() compatibility.
func (e *InvalidManifestError) Unwrap() error { return ErrInvalidManifest }

// Error implements the error interface for DigestMismatchError.
func (e *DigestMismatchError) Error() string {
	return fmt.Sprintf("%s: digest %s does not match recorded %s", e.Path, e.Got, e.Want)
}

// Unwrap returns ErrDigestMismatch for errors.Is() compatibility.
func (e *DigestMismatchError) Unwrap() error { return ErrDigestMismatch }
