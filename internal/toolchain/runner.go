// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"io"
	"os/exec"

	"svbind-cli/internal/config"
	"svbind-cli/internal/container"
	"svbind-cli/pkg/types"
)

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// Tests inject a fake to intercept process creation.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Invocation describes one tool process: what to run, where, and with
	// which environment. PathEnv holds variables whose values are host
	// paths; the container runner rewrites those into its mount namespace,
	// the host runner treats them like Env.
	Invocation struct {
		// Tool is the executable name or path.
		Tool string
		// Args are the process arguments.
		Args []string
		// Dir is the host working directory.
		Dir string
		// Env holds plain environment variables.
		Env map[string]string
		// PathEnv holds environment variables whose values are host paths.
		PathEnv map[string]string
		// Stdout and Stderr receive the output streams. Nil discards.
		Stdout io.Writer
		Stderr io.Writer
	}

	// Result reports one invocation's outcome. A non-zero ExitCode with a
	// nil Error is a normal tool failure; Error is set only for
	// infrastructure problems (missing binary, engine failures).
	Result struct {
		ExitCode types.ExitCode
		Error    error
	}

	// Runner executes tool invocations either directly on the host or
	// inside a cross-compilation container.
	Runner interface {
		// Name identifies the runner in logs and error messages.
		Name() string
		// Available reports whether the runner can execute on this machine.
		Available() bool
		// Run executes one invocation, streaming output to the invocation's
		// writers. It blocks until the process exits or ctx is cancelled.
		Run(ctx context.Context, inv Invocation) *Result
	}
)

// Ok reports whether the invocation completed with exit code zero and no
// infrastructure error.
func (r *Result) Ok() bool {
	return r.Error == nil && r.ExitCode.IsSuccess()
}

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code types.ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewExitCodeResult creates a Result for normal process termination with
// the given exit code.
func NewExitCodeResult(code types.ExitCode) *Result {
	return &Result{ExitCode: code}
}

// NewRunner selects the build runner for the machine config: a container
// runner when build.in_container is set, the host runner otherwise.
// projectRoot is the directory bind mounted into build containers; host
// mode ignores it.
func NewRunner(cfg *config.Config, projectRoot string) (Runner, error) {
	if !cfg.Build.InContainer {
		return NewHostRunner(), nil
	}
	engine, err := container.NewEngine(container.EngineType(cfg.ContainerEngine))
	if err != nil {
		return nil, err
	}
	return NewContainerRunner(engine, container.ImageTag(cfg.Build.BuildImage()), projectRoot), nil
}
