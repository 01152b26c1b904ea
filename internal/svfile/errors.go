// SPDX-License-Identifier: MPL-2.0

package svfile

import (
	"errors"
	"fmt"

	"svbind-cli/pkg/triple"
)

var (
	// ErrNotFound is the sentinel error wrapped by NotFoundError.
	ErrNotFound = errors.New("no svbind.cue found")
	// ErrUndeclaredPlatform is the sentinel error wrapped by UndeclaredPlatformError.
	ErrUndeclaredPlatform = errors.New("platform not declared in project file")
	// ErrTripleOutsidePlatform is the sentinel error wrapped by TripleOutsidePlatformError.
	ErrTripleOutsidePlatform = errors.New("triple outside platform family")
	// ErrDuplicateTriple is the sentinel error wrapped by DuplicateTripleError.
	ErrDuplicateTriple = errors.New("duplicate triple in project file")
)

type (
	// NotFoundError is returned by Find when no svbind.cue exists in the
	// start directory or any of its parents.
	NotFoundError struct {
		Start string
	}

	// UndeclaredPlatformError is returned when a build targets a platform
	// family the project file does not declare.
	UndeclaredPlatformError struct {
		Platform triple.Platform
		FilePath string
	}

	// TripleOutsidePlatformError is returned when a platform block lists a
	// triple that belongs to a different family (e.g. an Android triple
	// under apple).
	TripleOutsidePlatformError struct {
		Triple   triple.Triple
		Platform triple.Platform
	}

	// DuplicateTripleError is returned when a platform block lists the same
	// triple twice.
	DuplicateTripleError struct {
		Triple   triple.Triple
		Platform triple.Platform
	}
)

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found in %s or any parent directory", FileName, e.Start)
}

// Unwrap returns ErrNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Error implements the error interface for UndeclaredPlatformError.
func (e *UndeclaredPlatformError) Error() string {
	return fmt.Sprintf("%s: platform %q is not declared (add an %s block to %s)",
		e.FilePath, e.Platform, e.Platform, FileName)
}

// Unwrap returns ErrUndeclaredPlatform for errors.Is() compatibility.
func (e *UndeclaredPlatformError) Unwrap() error { return ErrUndeclaredPlatform }

// Error implements the error interface for TripleOutsidePlatformError.
func (e *TripleOutsidePlatformError) Error() string {
	return fmt.Sprintf("triple %q does not belong to platform family %q", e.Triple, e.Platform)
}

// Unwrap returns ErrTripleOutsidePlatform for errors.Is() compatibility.
func (e *TripleOutsidePlatformError) Unwrap() error { return ErrTripleOutsidePlatform }

// Error implements the error interface for DuplicateTripleError.
func (e *DuplicateTripleError) Error() string {
	return fmt.Sprintf("triple %q listed more than once under platform %q", e.Triple, e.Platform)
}

// Unwrap returns ErrDuplicateTriple for errors.Is() compatibility.
func (e *DuplicateTripleError) Unwrap() error { return ErrDuplicateTriple }
