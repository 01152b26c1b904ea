// SPDX-License-Identifier: MPL-2.0

package svfile

import (
	"fmt"
	"strings"

	"svbind-cli/pkg/iface"
)

// validate checks the project file for errors and applies defaults.
// Field format rules (package name shapes, api_level range, profile
// disjunction) are enforced by the CUE schema; this function covers the
// cross-field rules CUE cannot express and guards programmatic construction.
func (sv *Svfile) validate() error {
	// Apply defaults before any cross-field check sees zero values.
	if sv.Profile == "" {
		sv.Profile = ProfileRelease
	}
	if sv.OutputDir == "" {
		sv.OutputDir = "out"
	}

	if !sv.Profile.IsValid() {
		return fmt.Errorf("%s: invalid profile %q (expected: release, debug)", sv.FilePath, sv.Profile)
	}

	if valid, errs := sv.Description.IsValid(); !valid {
		return fmt.Errorf("%s: %v", sv.FilePath, errs[0])
	}

	if strings.TrimSpace(sv.SDK.CrateDir) == "" {
		return fmt.Errorf("%s: sdk.crate_dir must name the native crate directory", sv.FilePath)
	}

	// [CUE-VALIDATED] The .iface.cue suffix is in the schema
	// (iface: string & =~"\\.iface\\.cue$"); re-checked here for
	// programmatically built values.
	if !strings.HasSuffix(sv.SDK.Iface, iface.Suffix) {
		return fmt.Errorf("%s: sdk.iface must point to a %s file, got %q", sv.FilePath, iface.Suffix, sv.SDK.Iface)
	}

	if len(sv.DeclaredPlatforms()) == 0 {
		return fmt.Errorf("%s: no platform targets declared (add an android, apple, or python block)", sv.FilePath)
	}

	// Extra cargo args must split cleanly now, not at build time.
	if _, err := sv.CargoArgs(); err != nil {
		return fmt.Errorf("%s: extra_cargo_args does not parse: %w", sv.FilePath, err)
	}

	// [CUE-VALIDATED] package/module name shapes and api_level range are in
	// the schema. Triple strings are Go-validated against the registry.
	for _, p := range sv.DeclaredPlatforms() {
		if _, err := sv.TriplesFor(p); err != nil {
			return fmt.Errorf("%s: %w", sv.FilePath, err)
		}
	}

	return nil
}
