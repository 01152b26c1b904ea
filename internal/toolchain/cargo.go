// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"svbind-cli/internal/svfile"
	"svbind-cli/pkg/triple"
)

// BuildRequest describes one cargo compilation: one crate, one triple, one
// profile. The build matrix issues one request per declared triple; requests
// differ only in Triple and TargetDir.
type BuildRequest struct {
	// CrateDir is the host directory holding the crate's Cargo.toml.
	CrateDir string
	// Crate describes the crate as read from its manifest.
	Crate *svfile.CrateInfo
	// Triple is the compilation target.
	Triple triple.Triple
	// Profile selects the cargo profile (release or debug).
	Profile svfile.Profile
	// TargetDir is the host directory cargo writes artifacts to
	// (CARGO_TARGET_DIR). Each triple builds into its own target dir:
	// concurrent cargo processes sharing one dir serialize on cargo's
	// directory lock.
	TargetDir string
	// ExtraArgs are appended verbatim to the cargo invocation.
	ExtraArgs []string
	// Jobs caps cargo's parallelism (0 lets cargo decide).
	Jobs int
	// Locked passes --locked when the crate has a lockfile.
	Locked bool
	// Stdout and Stderr receive the cargo output streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Validate checks the request fields. Output writers may be nil (output is
// discarded by the process).
func (r BuildRequest) Validate() error {
	var errs []error
	if r.CrateDir == "" {
		errs = append(errs, errors.New("crate dir must not be empty"))
	}
	if r.Crate == nil {
		errs = append(errs, errors.New("crate info must not be nil"))
	}
	if err := r.Triple.Validate(); err != nil {
		errs = append(errs, err)
	}
	if !r.Profile.IsValid() {
		errs = append(errs, fmt.Errorf("invalid build profile %q", r.Profile))
	}
	if r.TargetDir == "" {
		errs = append(errs, errors.New("target dir must not be empty"))
	}
	if r.Jobs < 0 {
		errs = append(errs, fmt.Errorf("invalid job count %d", r.Jobs))
	}
	if len(errs) > 0 {
		return &InvalidBuildRequestError{FieldErrs: errs}
	}
	return nil
}

// cargoArgs assembles the argument list for one cargo build invocation.
// The order is fixed so tests can assert the exact command line: build,
// target, profile, lock and job flags, then the user's extra args.
func cargoArgs(req BuildRequest) []string {
	args := []string{"build", "--target", req.Triple.String()}
	if req.Profile.IsRelease() {
		args = append(args, "--release")
	}
	if req.Locked && req.Crate.HasLockfile {
		args = append(args, "--locked")
	}
	if req.Jobs > 0 {
		args = append(args, "--jobs", strconv.Itoa(req.Jobs))
	}
	return append(args, req.ExtraArgs...)
}

// CargoOutputDir returns the directory cargo places artifacts in for one
// triple and profile: <targetDir>/<triple>/<release|debug>. The matrix
// discovers compiled libraries here.
func CargoOutputDir(targetDir string, t triple.Triple, p svfile.Profile) string {
	return filepath.Join(targetDir, t.String(), p.String())
}
