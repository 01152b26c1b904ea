// SPDX-License-Identifier: MPL-2.0

package bindgen

import (
	"errors"
	"fmt"
)

// Sentinel errors for binding generation. Type-mapping failures reuse the
// iface package's ErrUnknownType and ErrUnmappableType so callers match one
// family of sentinels for everything definition-shaped.
var (
	// ErrUnsupportedLanguage indicates a language name outside the
	// supported set.
	ErrUnsupportedLanguage = errors.New("unsupported binding language")

	// ErrNoDefinition indicates generation was invoked without an
	// interface definition.
	ErrNoDefinition = errors.New("no interface definition")
)

// UnsupportedLanguageError reports a binding language svbind cannot
// generate, along with the set it can.
type UnsupportedLanguageError struct {
	// Name is the language as the caller spelled it.
	Name string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported binding language %q (supported: %s)", e.Name, supportedLanguageList())
}

// Unwrap makes the error match ErrUnsupportedLanguage.
func (e *UnsupportedLanguageError) Unwrap() error { return ErrUnsupportedLanguage }
