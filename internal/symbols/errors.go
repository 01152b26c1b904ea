// SPDX-License-Identifier: MPL-2.0

package symbols

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownFormat is the sentinel error wrapped by UnknownFormatError.
	ErrUnknownFormat = errors.New("unrecognized library format")
	// ErrMissingSymbols is the sentinel error wrapped by MissingSymbolsError.
	ErrMissingSymbols = errors.New("declared symbols missing from binary")
)

type (
	// UnknownFormatError reports a file whose leading magic bytes match
	// none of the supported library containers.
	UnknownFormatError struct {
		Path  string
		Magic []byte
	}

	// MissingSymbolsError reports declared symbols that a compiled
	// library does not export. Missing preserves declaration order.
	MissingSymbolsError struct {
		Path    string
		Missing []string
	}
)

// Error implements the error interface for UnknownFormatError.
func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("%s: unrecognized library format (magic % x)", e.Path, e.Magic)
}

// Unwrap returns ErrUnknownFormat for errors.Is() compatibility.
func (e *UnknownFormatError) Unwrap() error { return ErrUnknownFormat }

// Error implements the error interface for MissingSymbolsError.
func (e *MissingSymbolsError) Error() string {
	return fmt.Sprintf("%s does not export %d declared symbol(s): %s",
		e.Path, len(e.Missing), strings.Join(e.Missing, ", "))
}

// Unwrap returns ErrMissingSymbols for errors.Is() compatibility.
func (e *MissingSymbolsError) Unwrap() error { return ErrMissingSymbols }
