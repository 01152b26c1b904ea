// SPDX-License-Identifier: MPL-2.0

package svfile

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	// CargoManifestName is the crate manifest file name.
	CargoManifestName = "Cargo.toml"
	// CargoLockName is the dependency lockfile name.
	CargoLockName = "Cargo.lock"
	// OverridesName is the optional per-crate overrides file, read from the
	// crate directory next to Cargo.toml.
	OverridesName = "svbind.toml"
)

type (
	// CrateInfo describes the native crate as declared by its Cargo.toml,
	// with svbind.toml overrides applied.
	CrateInfo struct {
		// Name is the cargo package name (may contain dashes).
		Name string
		// Version is the declared crate version. Empty when the crate
		// inherits its version from a workspace.
		Version string
		// LibName is the compiled library name: svbind.toml cdylib_name if
		// set, else [lib] name, else the package name with dashes folded to
		// underscores. File names derive from it (lib<LibName>.so etc.).
		LibName string
		// CrateTypes lists the [lib] crate-type entries.
		CrateTypes []string
		// HasLockfile reports whether a Cargo.lock sits next to Cargo.toml.
		HasLockfile bool
	}

	// cargoManifest mirrors the subset of Cargo.toml svbind reads.
	cargoManifest struct {
		Package cargoPackage `toml:"package"`
		Lib     cargoLib     `toml:"lib"`
	}

	cargoPackage struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	}

	cargoLib struct {
		Name      string   `toml:"name"`
		CrateType []string `toml:"crate-type"`
	}

	// crateOverrides mirrors the optional svbind.toml overrides file.
	crateOverrides struct {
		CdylibName string `toml:"cdylib_name"`
	}
)

// ReadCrateInfo reads Cargo.toml (and the optional svbind.toml overrides
// file) from the crate directory.
func ReadCrateInfo(crateDir string) (*CrateInfo, error) {
	manifestPath := filepath.Join(crateDir, CargoManifestName)
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", manifestPath, err)
	}

	var manifest cargoManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", manifestPath, err)
	}

	if manifest.Package.Name == "" {
		return nil, fmt.Errorf("%s: missing package.name", manifestPath)
	}

	info := &CrateInfo{
		Name:       manifest.Package.Name,
		Version:    manifest.Package.Version,
		CrateTypes: manifest.Lib.CrateType,
	}

	info.LibName = manifest.Lib.Name
	if info.LibName == "" {
		info.LibName = strings.ReplaceAll(manifest.Package.Name, "-", "_")
	}

	overrides, err := readOverrides(crateDir)
	if err != nil {
		return nil, err
	}
	if overrides.CdylibName != "" {
		info.LibName = overrides.CdylibName
	}

	if _, statErr := os.Stat(filepath.Join(crateDir, CargoLockName)); statErr == nil {
		info.HasLockfile = true
	}

	return info, nil
}

// readOverrides reads the optional svbind.toml overrides file.
// A missing file is not an error.
func readOverrides(crateDir string) (*crateOverrides, error) {
	path := filepath.Join(crateDir, OverridesName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &crateOverrides{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var overrides crateOverrides
	if err := toml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return &overrides, nil
}

// HasCrateType reports whether the crate declares the given crate-type.
func (c *CrateInfo) HasCrateType(t string) bool {
	return slices.Contains(c.CrateTypes, t)
}

// EffectiveLibName resolves the library name for a project: the svbind.cue
// sdk.lib_name when set, otherwise the crate's own name.
func (sv *Svfile) EffectiveLibName(info *CrateInfo) string {
	if sv.SDK.LibName != "" {
		return sv.SDK.LibName
	}
	return info.LibName
}
