// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"slices"

	"svbind-cli/pkg/types"
)

// HostRunner executes tool invocations directly on the host.
type HostRunner struct {
	execCommand ExecCommandFunc
}

// HostRunnerOption configures a HostRunner.
type HostRunnerOption func(*HostRunner)

// WithHostExecCommand overrides process creation. Used by tests.
func WithHostExecCommand(fn ExecCommandFunc) HostRunnerOption {
	return func(r *HostRunner) { r.execCommand = fn }
}

// NewHostRunner creates a runner that spawns processes via os/exec.
func NewHostRunner(opts ...HostRunnerOption) *HostRunner {
	r := &HostRunner{execCommand: exec.CommandContext}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns "host".
func (r *HostRunner) Name() string { return "host" }

// Available always reports true: the host runner needs nothing beyond the
// process environment. Individual tools are checked separately.
func (r *HostRunner) Available() bool { return true }

// Run executes the invocation on the host. The process inherits the parent
// environment (or whatever base the command factory established) with the
// invocation's variables appended in sorted order, so repeated runs spawn
// identical command environments.
func (r *HostRunner) Run(ctx context.Context, inv Invocation) *Result {
	cmd := r.execCommand(ctx, inv.Tool, inv.Args...)
	cmd.Dir = inv.Dir
	base := cmd.Env
	if base == nil {
		base = os.Environ()
	}
	cmd.Env = append(base, envSlice(inv.Env, inv.PathEnv)...)
	cmd.Stdout = inv.Stdout
	cmd.Stderr = inv.Stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := errors.AsType[*exec.ExitError](err); ok {
			return NewExitCodeResult(types.ExitCode(exitErr.ExitCode()))
		}
		return NewErrorResult(1, fmt.Errorf("running %s: %w", inv.Tool, err))
	}
	return NewExitCodeResult(0)
}

// envSlice flattens environment maps into sorted KEY=value entries. Later
// maps win on key collisions.
func envSlice(ms ...map[string]string) []string {
	merged := make(map[string]string)
	for _, m := range ms {
		maps.Copy(merged, m)
	}
	entries := make([]string, 0, len(merged))
	for _, k := range slices.Sorted(maps.Keys(merged)) {
		entries = append(entries, k+"="+merged[k])
	}
	return entries
}
