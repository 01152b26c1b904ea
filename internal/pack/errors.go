// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"errors"
	"fmt"
	"strings"

	"svbind-cli/internal/digest"
	"svbind-cli/pkg/triple"
)

var (
	// ErrInvalidRequest is the sentinel error wrapped by InvalidRequestError.
	ErrInvalidRequest = errors.New("invalid packaging request")

	// ErrIncompleteBundle is the sentinel error wrapped by IncompleteBundleError.
	ErrIncompleteBundle = errors.New("platform bundle incomplete")

	// ErrSymbolMismatch is the sentinel error wrapped by SymbolMismatchError.
	ErrSymbolMismatch = errors.New("binding symbols disagree with bundle")
)

type (
	// InvalidRequestError is returned when a Request has invalid fields.
	// It wraps ErrInvalidRequest for errors.Is() compatibility and
	// carries the individual field errors.
	InvalidRequestError struct {
		FieldErrs []error
	}

	// IncompleteBundleError reports disagreement between the declared
	// triple set and the binaries a bundle actually records.
	IncompleteBundleError struct {
		// Missing are declared triples the bundle has no binary for.
		Missing []triple.Triple
		// Extra are bundled binaries no declared triple accounts for.
		Extra []triple.Triple
	}

	// SymbolMismatchError reports a bundle assembled against a different
	// FFI symbol set than the current bindings declare.
	SymbolMismatchError struct {
		// Want is the current binding artifact's symbol digest.
		Want digest.Digest
		// Got is the digest recorded in the bundle manifest.
		Got digest.Digest
	}
)

// Error implements the error interface for InvalidRequestError.
func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid packaging request: %d field error(s)", len(e.FieldErrs))
}

// Unwrap returns ErrInvalidRequest for errors.Is() compatibility.
func (e *InvalidRequestError) Unwrap() error { return ErrInvalidRequest }

// Error implements the error interface for IncompleteBundleError.
func (e *IncompleteBundleError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing %s", joinTriples(e.Missing)))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("unexpected %s", joinTriples(e.Extra)))
	}
	return "platform bundle incomplete: " + strings.Join(parts, "; ")
}

// Unwrap returns ErrIncompleteBundle for errors.Is() compatibility.
func (e *IncompleteBundleError) Unwrap() error { return ErrIncompleteBundle }

// Error implements the error interface for SymbolMismatchError.
func (e *SymbolMismatchError) Error() string {
	return fmt.Sprintf("bundle was assembled against symbol set %s, current bindings declare %s; reassemble before packaging", e.Got, e.Want)
}

// Unwrap returns ErrSymbolMismatch for errors.Is() compatibility.
func (e *SymbolMismatchError) Unwrap() error { return ErrSymbolMismatch }

func joinTriples(ts []triple.Triple) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}
