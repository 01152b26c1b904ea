// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path"
	"path/filepath"
	"strings"

	"svbind-cli/internal/container"
)

// workMount is where the project root is bind mounted inside build
// containers.
const workMount container.MountTargetPath = "/work"

// cargoRegistryMount is where the host cargo registry cache is mounted so
// containerized builds reuse already downloaded crates.
const cargoRegistryMount container.MountTargetPath = "/root/.cargo/registry"

// ContainerRunner executes tool invocations inside a cross-compilation
// container. The project root is mounted at /work and every host path in
// the invocation is rewritten into that mount, so cargo writes artifacts
// through to the host output tree and the matrix discovers them at their
// host paths afterwards.
type ContainerRunner struct {
	engine    container.Engine
	image     container.ImageTag
	hostRoot  string
	cargoHome string
}

// ContainerRunnerOption configures a ContainerRunner.
type ContainerRunnerOption func(*ContainerRunner)

// WithCargoHome overrides the host cargo home whose registry cache is
// mounted into build containers. Empty disables the mount.
func WithCargoHome(dir string) ContainerRunnerOption {
	return func(r *ContainerRunner) { r.cargoHome = dir }
}

// NewContainerRunner creates a runner executing inside image via engine,
// with hostRoot mounted at /work.
func NewContainerRunner(engine container.Engine, image container.ImageTag, hostRoot string, opts ...ContainerRunnerOption) *ContainerRunner {
	r := &ContainerRunner{
		engine:    engine,
		image:     image,
		hostRoot:  hostRoot,
		cargoHome: defaultCargoHome(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns "container".
func (r *ContainerRunner) Name() string { return "container" }

// Available reports whether the container engine is usable.
func (r *ContainerRunner) Available() bool {
	return r.engine != nil && r.engine.Available()
}

// Image returns the build image the runner executes in.
func (r *ContainerRunner) Image() container.ImageTag { return r.image }

// EnsureImage pulls the build image unless it is already present locally.
func (r *ContainerRunner) EnsureImage(ctx context.Context) error {
	exists, err := r.engine.ImageExists(ctx, r.image)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return r.engine.Pull(ctx, r.image)
}

// Run executes the invocation inside the build container. The working
// directory and every PathEnv value must live under the project root;
// anything else is invisible to the container and fails the invocation.
func (r *ContainerRunner) Run(ctx context.Context, inv Invocation) *Result {
	workDir, err := r.mapPath(inv.Dir)
	if err != nil {
		return NewErrorResult(1, err)
	}

	env := make(map[string]string, len(inv.Env)+len(inv.PathEnv))
	maps.Copy(env, inv.Env)
	for k, v := range inv.PathEnv {
		mapped, mapErr := r.mapPath(v)
		if mapErr != nil {
			return NewErrorResult(1, fmt.Errorf("%s: %w", k, mapErr))
		}
		env[k] = string(mapped)
	}

	volumes := []container.VolumeMount{{
		HostPath:      container.HostFilesystemPath(r.hostRoot),
		ContainerPath: workMount,
	}}
	if r.cargoHome != "" {
		registry := filepath.Join(r.cargoHome, "registry")
		if _, statErr := os.Stat(registry); statErr == nil {
			volumes = append(volumes, container.VolumeMount{
				HostPath:      container.HostFilesystemPath(registry),
				ContainerPath: cargoRegistryMount,
			})
		}
	}

	result, err := r.engine.Run(ctx, container.RunOptions{
		Image:   r.image,
		Command: append([]string{inv.Tool}, inv.Args...),
		WorkDir: workDir,
		Env:     env,
		Volumes: volumes,
		Remove:  true,
		Stdout:  inv.Stdout,
		Stderr:  inv.Stderr,
	})
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("running %s in container: %w", inv.Tool, err))
	}
	return &Result{ExitCode: result.ExitCode, Error: result.Error}
}

// mapPath rewrites a host path under the project root into the container
// mount namespace. An empty path maps to the mount root.
func (r *ContainerRunner) mapPath(hostPath string) (container.MountTargetPath, error) {
	if hostPath == "" {
		return workMount, nil
	}
	rel, err := filepath.Rel(r.hostRoot, hostPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is not under %s", ErrPathOutsideRoot, hostPath, r.hostRoot)
	}
	if rel == "." {
		return workMount, nil
	}
	return container.MountTargetPath(path.Join(string(workMount), filepath.ToSlash(rel))), nil
}

// defaultCargoHome returns the host cargo home ($CARGO_HOME or ~/.cargo).
func defaultCargoHome() string {
	if home := os.Getenv("CARGO_HOME"); home != "" {
		return home
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(userHome, ".cargo")
}
