// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"errors"
	"os/exec"
	"slices"

	"svbind-cli/pkg/platform"
	"svbind-cli/pkg/triple"
)

type (
	// LookPathFunc is the function signature for resolving a tool name to
	// an executable path. Tests inject a fake; production code uses
	// exec.LookPath.
	LookPathFunc func(file string) (string, error)

	// ToolRequirement names one tool a build needs, with optional fallback
	// names tried in order.
	ToolRequirement struct {
		// Name is the primary executable name.
		Name string
		// Alternatives are fallback executable names tried when Name is absent.
		Alternatives []string
		// Triple is set when the tool is needed for one specific target.
		Triple triple.Triple
		// Purpose says what the tool is used for, surfaced in error messages.
		Purpose string
	}

	// Checker resolves tool requirements against the host PATH.
	Checker struct {
		lookPath LookPathFunc
	}

	// CheckerOption configures a Checker.
	CheckerOption func(*Checker)
)

// WithLookPath overrides PATH resolution. Used by tests.
func WithLookPath(fn LookPathFunc) CheckerOption {
	return func(c *Checker) { c.lookPath = fn }
}

// NewChecker creates a Checker resolving tools via exec.LookPath.
func NewChecker(opts ...CheckerOption) *Checker {
	c := &Checker{lookPath: exec.LookPath}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check resolves one requirement to an executable path, trying the primary
// name first and then each alternative in order.
func (c *Checker) Check(req ToolRequirement) (string, error) {
	names := append([]string{req.Name}, req.Alternatives...)
	for _, name := range names {
		if path, err := c.lookPath(name); err == nil {
			return path, nil
		}
	}
	return "", &MissingToolError{
		Tool:         req.Name,
		Alternatives: req.Alternatives,
		Triple:       req.Triple,
		Purpose:      req.Purpose,
	}
}

// CheckAll resolves every requirement and aggregates the failures, so one
// run reports the complete list of missing tools.
func (c *Checker) CheckAll(reqs []ToolRequirement) error {
	var errs []error
	for _, req := range reqs {
		if _, err := c.Check(req); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Requirements returns the tools needed on a goos host to build the given
// triples in host mode. Cargo and rustup are always required; Apple triples
// add the Xcode packaging tools, which exist only on macOS (requesting
// Apple triples elsewhere fails preflight with AppleHostError instead).
func Requirements(triples []triple.Triple, goos string) []ToolRequirement {
	reqs := []ToolRequirement{
		{Name: "cargo", Purpose: "compiles the native crate"},
		{Name: "rustup", Purpose: "manages cross-compilation std components"},
	}
	if goos == platform.Darwin && containsApple(triples) {
		reqs = append(reqs,
			ToolRequirement{Name: "xcodebuild", Purpose: "assembles XCFramework bundles"},
			ToolRequirement{Name: "lipo", Purpose: "merges simulator architectures"},
		)
	}
	return reqs
}

// containsApple reports whether any triple targets an Apple OS.
func containsApple(triples []triple.Triple) bool {
	return slices.ContainsFunc(triples, triple.Triple.IsApple)
}

// containsAndroid reports whether any triple targets Android.
func containsAndroid(triples []triple.Triple) bool {
	return slices.ContainsFunc(triples, triple.Triple.IsAndroid)
}
