// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"svbind-cli/pkg/triple"
)

type (
	// Rustup drives the rustup CLI to inspect and install the per-target
	// rust std components. Rustup is a host tool: containerized builds use
	// an image with the components preinstalled and never touch it.
	Rustup struct {
		path        string
		execCommand ExecCommandFunc
	}

	// RustupOption configures a Rustup client.
	RustupOption func(*Rustup)
)

// WithRustupPath overrides the rustup executable.
func WithRustupPath(path string) RustupOption {
	return func(r *Rustup) { r.path = path }
}

// WithRustupExecCommand overrides process creation. Used by tests.
func WithRustupExecCommand(fn ExecCommandFunc) RustupOption {
	return func(r *Rustup) { r.execCommand = fn }
}

// NewRustup creates a rustup client using the "rustup" binary from PATH.
func NewRustup(opts ...RustupOption) *Rustup {
	r := &Rustup{path: "rustup", execCommand: exec.CommandContext}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// InstalledTargets returns the set of std components installed in the
// active toolchain (rustup target list --installed). Targets rustup knows
// but svbind does not are ignored.
func (r *Rustup) InstalledTargets(ctx context.Context) (map[triple.Triple]bool, error) {
	cmd := r.execCommand(ctx, r.path, "target", "list", "--installed")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("rustup target list: %w", err)
	}

	installed := make(map[triple.Triple]bool)
	for _, line := range strings.Split(string(out), "\n") {
		t, parseErr := triple.Parse(strings.TrimSpace(line))
		if parseErr != nil {
			continue
		}
		installed[t] = true
	}
	return installed, nil
}

// MissingTargets filters the given triples down to those whose std
// component is not installed, preserving order.
func (r *Rustup) MissingTargets(ctx context.Context, triples []triple.Triple) ([]triple.Triple, error) {
	installed, err := r.InstalledTargets(ctx)
	if err != nil {
		return nil, err
	}
	var missing []triple.Triple
	for _, t := range triples {
		if !installed[t] {
			missing = append(missing, t)
		}
	}
	return missing, nil
}

// AddTargets installs the std components for the given triples in one
// rustup invocation, streaming its output to the writers.
func (r *Rustup) AddTargets(ctx context.Context, triples []triple.Triple, stdout, stderr io.Writer) error {
	if len(triples) == 0 {
		return nil
	}
	args := []string{"target", "add"}
	for _, t := range triples {
		args = append(args, t.String())
	}

	cmd := r.execCommand(ctx, r.path, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("rustup target add: %w", err)
	}
	return nil
}
