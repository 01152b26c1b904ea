// SPDX-License-Identifier: MPL-2.0

package assemble

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is the sentinel error wrapped by InvalidRequestError.
var ErrInvalidRequest = errors.New("invalid assembly request")

// InvalidRequestError is returned when a Request has invalid fields.
// It wraps ErrInvalidRequest for errors.Is() compatibility and carries
// the individual field errors.
type InvalidRequestError struct {
	FieldErrs []error
}

// Error implements the error interface for InvalidRequestError.
func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid assembly request: %d field error(s)", len(e.FieldErrs))
}

// Unwrap returns ErrInvalidRequest for errors.Is() compatibility.
func (e *InvalidRequestError) Unwrap() error { return ErrInvalidRequest }
