// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"slices"
	"strings"
)

// PodmanEngine implements the Engine interface using the Podman CLI.
// It embeds BaseCLIEngine for common CLI operations.
type PodmanEngine struct {
	*BaseCLIEngine
}

// NewPodmanEngine creates a new Podman engine.
// On Linux, volume mounts are labeled with :z when SELinux is enforcing, and
// --userns=keep-id is injected so files written to bind mounts stay owned by
// the invoking user under rootless Podman. Cross builds depend on both: cargo
// writes the compiled artifacts into the mounted project directory.
func NewPodmanEngine(opts ...BaseCLIEngineOption) *PodmanEngine {
	path, _ := exec.LookPath("podman")

	allOpts := append([]BaseCLIEngineOption{
		WithName(string(EngineTypePodman)),
		WithVolumeFormatter(selinuxVolumeFormatter(isSELinuxEnabled)),
		WithRunArgsTransformer(keepIDTransformer(runtime.GOOS)),
	}, opts...)

	return &PodmanEngine{
		BaseCLIEngine: NewBaseCLIEngine(HostFilesystemPath(path), allOpts...),
	}
}

// Available checks if Podman is available.
func (e *PodmanEngine) Available() bool {
	if e.BinaryPath() == "" {
		return false
	}
	cmd := e.CreateCommand(context.Background(), "version", "--format", "{{.Version}}")
	return cmd.Run() == nil
}

// Version returns the Podman version.
func (e *PodmanEngine) Version(ctx context.Context) (string, error) {
	out, err := e.RunCommandWithOutput(ctx, "version", "--format", "{{.Version}}")
	if err != nil {
		return "", fmt.Errorf("failed to get podman version: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// ImageExists checks if an image exists in local storage.
func (e *PodmanEngine) ImageExists(ctx context.Context, image ImageTag) (bool, error) {
	err := e.RunCommandStatus(ctx, "image", "exists", string(image))
	return err == nil, nil
}

// isSELinuxEnabled checks if SELinux is enforcing on the system.
func isSELinuxEnabled() bool {
	data, err := os.ReadFile("/sys/fs/selinux/enforce")
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == "1"
}

// selinuxVolumeFormatter returns a volume formatter that applies the shared
// SELinux label (:z) to mounts that don't carry a label already. Without the
// label, container processes cannot access bind-mounted host paths on
// SELinux-enforcing systems.
func selinuxVolumeFormatter(check SELinuxCheckFunc) VolumeFormatFunc {
	return func(mount VolumeMount) string {
		if check() && mount.SELinux == SELinuxLabelNone {
			mount.SELinux = SELinuxLabelShared
		}
		return FormatVolumeMount(mount)
	}
}

// keepIDTransformer returns a run args transformer that injects
// --userns=keep-id after the run subcommand. Rootless Podman maps the
// container user to an unprivileged subordinate UID by default, which would
// leave build outputs in bind mounts owned by a UID the invoking user cannot
// touch. keep-id maps the container user to the invoking UID instead.
// User namespace flags only apply on Linux hosts.
func keepIDTransformer(goos string) RunArgsTransformer {
	return func(args []string) []string {
		if goos != "linux" {
			return args
		}
		if len(args) == 0 || args[0] != "run" {
			return args
		}
		if slices.Contains(args, "--userns=keep-id") {
			return args
		}
		return slices.Insert(args, 1, "--userns=keep-id")
	}
}
