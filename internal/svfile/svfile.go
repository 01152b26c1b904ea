// SPDX-License-Identifier: EPL-2.0

package svfile

import (
	"path/filepath"

	"mvdan.cc/sh/v3/shell"

	"svbind-cli/pkg/triple"
	"svbind-cli/pkg/types"
)

// FileName is the project file name svbind looks for.
const FileName = "svbind.cue"

// Build profiles passed through to cargo.
const (
	// ProfileRelease builds with optimizations (cargo --release).
	ProfileRelease Profile = "release"
	// ProfileDebug builds without optimizations.
	ProfileDebug Profile = "debug"
)

type (
	// Profile selects the cargo build profile.
	Profile string

	// Svfile is the project build definition loaded from svbind.cue. It names
	// the native crate, the interface definition, and the per-platform
	// packaging targets. Machine-level settings (NDK home, container engine)
	// live in internal/config, never here: svbind.cue is committed to the SDK
	// repo and must hold for every machine that builds it.
	Svfile struct {
		// Description is an optional human-readable project summary.
		Description types.DescriptionText `json:"description,omitempty"`
		// SDK locates the native crate and its interface definition.
		SDK SDKConfig `json:"sdk"`
		// OutputDir is the build output root, relative to the project dir
		// unless absolute. Defaults to "out".
		OutputDir string `json:"output_dir,omitempty"`
		// Profile selects the cargo build profile. Defaults to "release".
		Profile Profile `json:"profile,omitempty"`
		// ExtraCargoArgs appends raw arguments to every cargo build
		// invocation, split with shell word rules (quotes respected).
		ExtraCargoArgs string `json:"extra_cargo_args,omitempty"`
		// Android configures the Android AAR target.
		Android *AndroidTarget `json:"android,omitempty"`
		// Apple configures the Swift Package / XCFramework target.
		Apple *AppleTarget `json:"apple,omitempty"`
		// Python configures the Python source distribution target.
		Python *PythonTarget `json:"python,omitempty"`

		// FilePath stores the path this svbind.cue was loaded from (not in CUE).
		FilePath string `json:"-"`
	}

	// SDKConfig locates the native crate and its interface definition.
	SDKConfig struct {
		// CrateDir is the directory holding the native crate's Cargo.toml.
		// Relative paths resolve against the project dir.
		CrateDir string `json:"crate_dir"`
		// Iface is the path to the <name>.iface.cue interface definition.
		// Relative paths resolve against the project dir.
		Iface string `json:"iface"`
		// LibName overrides the compiled library name. When empty it is
		// derived from Cargo.toml ([lib] name, else the package name with
		// dashes folded to underscores) or the svbind.toml override.
		LibName string `json:"lib_name,omitempty"`
	}

	// AndroidTarget configures the Android AAR target.
	AndroidTarget struct {
		// Package is the Java package the generated Kotlin bindings live in,
		// e.g. "io.smartvaults.sdk".
		Package string `json:"package"`
		// APILevel overrides the Android API level for this project.
		// 0 defers to the machine config, then the built-in default.
		APILevel int `json:"api_level,omitempty"`
		// Triples restricts the Android build matrix. Empty means all
		// Android ABIs.
		Triples []string `json:"triples,omitempty"`
	}

	// AppleTarget configures the Swift Package / XCFramework target.
	AppleTarget struct {
		// Module is the Swift module name, e.g. "SmartVaults".
		Module string `json:"module"`
		// Triples restricts the Apple build matrix. Empty means iOS device
		// plus both simulator slices.
		Triples []string `json:"triples,omitempty"`
	}

	// PythonTarget configures the Python source distribution target.
	PythonTarget struct {
		// Package is the Python package name, e.g. "smartvaults".
		Package string `json:"package"`
		// Triples restricts the Python build matrix. Empty means the host
		// triple.
		Triples []string `json:"triples,omitempty"`
	}
)

// String returns the string representation of the Profile.
func (p Profile) String() string { return string(p) }

// IsValid reports whether the Profile is a supported cargo profile.
func (p Profile) IsValid() bool {
	return p == ProfileRelease || p == ProfileDebug
}

// IsRelease reports whether this profile builds with optimizations.
func (p Profile) IsRelease() bool { return p == ProfileRelease }

// Dir returns the project directory (the directory holding svbind.cue).
func (sv *Svfile) Dir() string {
	return filepath.Dir(sv.FilePath)
}

// resolve converts a path from CUE format (forward slashes) to native format
// and resolves relative paths against the project directory.
func (sv *Svfile) resolve(path string) string {
	nativePath := filepath.FromSlash(path)
	if filepath.IsAbs(nativePath) {
		return nativePath
	}
	return filepath.Join(sv.Dir(), nativePath)
}

// CratePath returns the absolute path of the native crate directory.
func (sv *Svfile) CratePath() string {
	return sv.resolve(sv.SDK.CrateDir)
}

// IfacePath returns the absolute path of the interface definition file.
func (sv *Svfile) IfacePath() string {
	return sv.resolve(sv.SDK.Iface)
}

// OutPath returns the absolute path of the build output root.
func (sv *Svfile) OutPath() string {
	out := sv.OutputDir
	if out == "" {
		out = "out"
	}
	return sv.resolve(out)
}

// CargoArgs splits ExtraCargoArgs into argv entries using shell word rules,
// so quoted arguments with spaces survive intact.
func (sv *Svfile) CargoArgs() ([]string, error) {
	if sv.ExtraCargoArgs == "" {
		return nil, nil
	}
	return shell.Fields(sv.ExtraCargoArgs, nil)
}

// DeclaredPlatforms returns the platform families this project targets, in
// canonical order. A project with no platform blocks targets nothing and
// every build command fails with a clear error.
func (sv *Svfile) DeclaredPlatforms() []triple.Platform {
	var platforms []triple.Platform
	if sv.Android != nil {
		platforms = append(platforms, triple.PlatformAndroid)
	}
	if sv.Apple != nil {
		platforms = append(platforms, triple.PlatformApple)
	}
	if sv.Python != nil {
		platforms = append(platforms, triple.PlatformPython)
	}
	return platforms
}

// Targets reports whether the project declares the given platform family.
func (sv *Svfile) Targets(p triple.Platform) bool {
	switch p {
	case triple.PlatformAndroid:
		return sv.Android != nil
	case triple.PlatformApple:
		return sv.Apple != nil
	case triple.PlatformPython:
		return sv.Python != nil
	default:
		return false
	}
}

// TriplesFor resolves the build matrix for a platform family: the project's
// declared triples when set, the platform defaults otherwise. The project
// must declare the platform; querying an undeclared platform is an error.
func (sv *Svfile) TriplesFor(p triple.Platform) ([]triple.Triple, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !sv.Targets(p) {
		return nil, &UndeclaredPlatformError{Platform: p, FilePath: sv.FilePath}
	}

	var declared []string
	switch p {
	case triple.PlatformAndroid:
		declared = sv.Android.Triples
	case triple.PlatformApple:
		declared = sv.Apple.Triples
	case triple.PlatformPython:
		declared = sv.Python.Triples
	}

	if len(declared) == 0 {
		return p.DefaultTriples()
	}
	return parseTriples(p, declared)
}

// parseTriples validates raw triple strings against a platform family:
// every entry must be a registered triple, belong to the family, and
// appear only once.
func parseTriples(p triple.Platform, raw []string) ([]triple.Triple, error) {
	triples := make([]triple.Triple, 0, len(raw))
	seen := make(map[triple.Triple]bool, len(raw))
	for _, s := range raw {
		t, err := triple.Parse(s)
		if err != nil {
			return nil, err
		}
		if !p.Contains(t) {
			return nil, &TripleOutsidePlatformError{Triple: t, Platform: p}
		}
		if seen[t] {
			return nil, &DuplicateTripleError{Triple: t, Platform: p}
		}
		seen[t] = true
		triples = append(triples, t)
	}
	return triples, nil
}
