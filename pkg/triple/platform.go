// SPDX-License-Identifier: MPL-2.0

package triple

import (
	"errors"
	"fmt"
)

const (
	// PlatformAndroid groups triples packaged as an Android AAR.
	PlatformAndroid Platform = "android"
	// PlatformApple groups triples packaged as a Swift Package with an
	// XCFramework binary target.
	PlatformApple Platform = "apple"
	// PlatformPython groups desktop triples packaged as a Python source
	// distribution.
	PlatformPython Platform = "python"
)

// ErrInvalidPlatform is returned when a Platform value is not one of the
// defined platform families.
var ErrInvalidPlatform = errors.New("invalid platform family")

type (
	// Platform is a packaging family. Each platform family produces one
	// Platform Bundle and one distributable package.
	Platform string

	// InvalidPlatformError is returned when a Platform value is not
	// recognized. It wraps ErrInvalidPlatform for errors.Is() compatibility.
	InvalidPlatformError struct {
		Value Platform
	}
)

// Error implements the error interface for InvalidPlatformError.
func (e *InvalidPlatformError) Error() string {
	return fmt.Sprintf("invalid platform family %q (valid: android, apple, python)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidPlatformError) Unwrap() error {
	return ErrInvalidPlatform
}

// String returns the string representation of the Platform.
func (p Platform) String() string { return string(p) }

// Validate returns nil if the Platform is one of the defined families,
// or a validation error if it is not.
func (p Platform) Validate() error {
	switch p {
	case PlatformAndroid, PlatformApple, PlatformPython:
		return nil
	default:
		return &InvalidPlatformError{Value: p}
	}
}

// Contains reports whether the given triple may participate in this
// platform family's bundle.
func (p Platform) Contains(t Triple) bool {
	switch p {
	case PlatformAndroid:
		return t.IsAndroid()
	case PlatformApple:
		return t.IsApple()
	case PlatformPython:
		return t.IsDesktop()
	default:
		return false
	}
}

// Members returns every registered triple that may participate in this
// platform family, in canonical order.
func (p Platform) Members() []Triple {
	var members []Triple
	for _, t := range All() {
		if p.Contains(t) {
			members = append(members, t)
		}
	}
	return members
}

// DefaultTriples returns the triple set a platform builds when the project
// file does not declare one explicitly. Android covers all four ABIs; Apple
// covers device plus both simulator slices; Python builds the host triple
// only.
func (p Platform) DefaultTriples() ([]Triple, error) {
	switch p {
	case PlatformAndroid:
		return []Triple{AndroidArm64, AndroidArm, AndroidX86_64, AndroidX86}, nil
	case PlatformApple:
		return []Triple{IOSDevice, IOSSimArm64, IOSSimX86_64}, nil
	case PlatformPython:
		host, err := Host()
		if err != nil {
			return nil, err
		}
		return []Triple{host}, nil
	default:
		return nil, &InvalidPlatformError{Value: p}
	}
}

// AllPlatforms returns all platform families in canonical order.
func AllPlatforms() []Platform {
	return []Platform{PlatformAndroid, PlatformApple, PlatformPython}
}

// ParsePlatform validates a raw string and returns it as a Platform.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(s)
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}
