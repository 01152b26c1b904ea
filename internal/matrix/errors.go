// SPDX-License-Identifier: MPL-2.0

package matrix

import (
	"errors"
	"fmt"
	"strings"

	"svbind-cli/pkg/triple"
)

var (
	// ErrInvalidRequest is the sentinel error wrapped by InvalidRequestError.
	ErrInvalidRequest = errors.New("invalid matrix request")
	// ErrArtifactNotFound is the sentinel error wrapped by ArtifactNotFoundError.
	ErrArtifactNotFound = errors.New("compiled artifact not found")
	// ErrIncompleteMatrix is the sentinel error wrapped by IncompleteMatrixError.
	ErrIncompleteMatrix = errors.New("build matrix incomplete")
)

type (
	// InvalidRequestError is returned when a Request has invalid fields.
	// It wraps ErrInvalidRequest for errors.Is() compatibility and
	// collects field-level validation errors.
	InvalidRequestError struct {
		FieldErrs []error
	}

	// ArtifactNotFoundError reports a build that exited successfully but
	// left no library file where cargo puts artifacts for the triple.
	// The usual cause is a missing crate-type in the crate's [lib] table.
	ArtifactNotFoundError struct {
		Triple triple.Triple
		Path   string
	}

	// IncompleteMatrixError reports declared triples with no compiled
	// binary in a Result.
	IncompleteMatrixError struct {
		Missing []triple.Triple
	}
)

// Error implements the error interface for InvalidRequestError.
func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid matrix request: %d field error(s)", len(e.FieldErrs))
}

// Unwrap returns ErrInvalidRequest for errors.Is() compatibility.
func (e *InvalidRequestError) Unwrap() error { return ErrInvalidRequest }

// Error implements the error interface for ArtifactNotFoundError.
func (e *ArtifactNotFoundError) Error() string {
	return fmt.Sprintf("build for %s produced no library at %s", e.Triple, e.Path)
}

// Unwrap returns ErrArtifactNotFound for errors.Is() compatibility.
func (e *ArtifactNotFoundError) Unwrap() error { return ErrArtifactNotFound }

// Error implements the error interface for IncompleteMatrixError.
func (e *IncompleteMatrixError) Error() string {
	names := make([]string, len(e.Missing))
	for i, t := range e.Missing {
		names[i] = t.String()
	}
	return fmt.Sprintf("no compiled binary for: %s", strings.Join(names, ", "))
}

// Unwrap returns ErrIncompleteMatrix for errors.Is() compatibility.
func (e *IncompleteMatrixError) Unwrap() error { return ErrIncompleteMatrix }
