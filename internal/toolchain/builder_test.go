// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"svbind-cli/internal/config"
	"svbind-cli/internal/container"
	"svbind-cli/internal/issue"
	"svbind-cli/pkg/triple"
	"svbind-cli/pkg/types"
)

// fakeRunner records invocations and returns canned results.
type fakeRunner struct {
	name        string
	invocations []Invocation
	result      *Result
}

func (f *fakeRunner) Name() string    { return f.name }
func (f *fakeRunner) Available() bool { return true }

func (f *fakeRunner) Run(_ context.Context, inv Invocation) *Result {
	f.invocations = append(f.invocations, inv)
	if f.result != nil {
		return f.result
	}
	return NewExitCodeResult(0)
}

// hostTools returns a checker that finds cargo and rustup.
func hostTools() *Checker {
	return NewChecker(WithLookPath(fakeLookPath(map[string]string{
		"cargo":  "/usr/bin/cargo",
		"rustup": "/usr/bin/rustup",
	})))
}

// rustupReporting returns a rustup client whose target list prints the
// given lines.
func rustupReporting(t *testing.T, rec *MockCommandRecorder, installed string) *Rustup {
	t.Helper()
	rec.Stdout = installed
	return NewRustup(WithRustupExecCommand(rec.ExecCommandFunc(t)))
}

func noEnv(string) string { return "" }

func TestBuilder_Build_Desktop(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{name: "host"}
	b := NewBuilder(config.DefaultConfig(), runner, WithGOOS("linux"), WithGetenv(noEnv))

	req := testRequest(triple.LinuxX86_64)
	if err := b.Build(context.Background(), req); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(runner.invocations) != 1 {
		t.Fatalf("invocations = %d, want 1", len(runner.invocations))
	}
	inv := runner.invocations[0]
	if inv.Tool != "cargo" {
		t.Errorf("Tool = %q, want cargo", inv.Tool)
	}
	want := []string{"build", "--target", "x86_64-unknown-linux-gnu", "--release"}
	if !slices.Equal(inv.Args, want) {
		t.Errorf("Args = %v, want %v", inv.Args, want)
	}
	if inv.Dir != req.CrateDir {
		t.Errorf("Dir = %q, want %q", inv.Dir, req.CrateDir)
	}
	if got := inv.PathEnv["CARGO_TARGET_DIR"]; got != req.TargetDir {
		t.Errorf("CARGO_TARGET_DIR = %q, want %q", got, req.TargetDir)
	}
	if len(inv.Env) != 0 {
		t.Errorf("Env = %v, want none for a desktop triple", inv.Env)
	}
}

func TestBuilder_Build_AndroidGetsNDKEnv(t *testing.T) {
	t.Parallel()

	ndkRoot := makeNDKRoot(t, "linux-x86_64")
	runner := &fakeRunner{name: "host"}
	b := NewBuilder(config.DefaultConfig(), runner,
		WithGOOS("linux"),
		WithGetenv(envMap(map[string]string{EnvAndroidNDKHome: ndkRoot})),
	)

	if err := b.Build(context.Background(), testRequest(triple.AndroidArm64)); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	env := runner.invocations[0].Env
	bin := filepath.Join(ndkRoot, "toolchains", "llvm", "prebuilt", "linux-x86_64", "bin")
	clang := filepath.Join(bin, "aarch64-linux-android24-clang")
	if env["CC_aarch64_linux_android"] != clang {
		t.Errorf("CC = %q, want %q", env["CC_aarch64_linux_android"], clang)
	}
	if env["CARGO_TARGET_AARCH64_LINUX_ANDROID_LINKER"] != clang {
		t.Errorf("linker = %q, want %q", env["CARGO_TARGET_AARCH64_LINUX_ANDROID_LINKER"], clang)
	}
	if ar := filepath.Join(bin, "llvm-ar"); env["AR_aarch64_linux_android"] != ar {
		t.Errorf("AR = %q, want %q", env["AR_aarch64_linux_android"], ar)
	}
}

func TestBuilder_Build_AndroidWithoutNDK(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{name: "host"}
	b := NewBuilder(config.DefaultConfig(), runner, WithGOOS("linux"), WithGetenv(noEnv))

	err := b.Build(context.Background(), testRequest(triple.AndroidArm64))
	if !errors.Is(err, ErrNDKNotFound) {
		t.Fatalf("Build() error = %v, want ErrNDKNotFound", err)
	}
	if len(runner.invocations) != 0 {
		t.Errorf("invocations = %d, want none before the NDK resolves", len(runner.invocations))
	}
}

func TestBuilder_Build_ContainerSkipsNDKEnv(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Build.InContainer = true
	runner := &fakeRunner{name: "container"}
	b := NewBuilder(cfg, runner, WithGOOS("linux"), WithGetenv(noEnv))

	// The build image carries its own toolchain env; no NDK lookup happens.
	if err := b.Build(context.Background(), testRequest(triple.AndroidArm64)); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if env := runner.invocations[0].Env; len(env) != 0 {
		t.Errorf("Env = %v, want none in container mode", env)
	}
}

func TestBuilder_Build_ResolvesNDKOnce(t *testing.T) {
	t.Parallel()

	ndkRoot := makeNDKRoot(t, "linux-x86_64")
	lookups := 0
	runner := &fakeRunner{name: "host"}
	b := NewBuilder(config.DefaultConfig(), runner,
		WithGOOS("linux"),
		WithGetenv(func(key string) string {
			if key == EnvAndroidNDKHome {
				lookups++
				return ndkRoot
			}
			return ""
		}),
	)

	for _, tr := range []triple.Triple{triple.AndroidArm64, triple.AndroidArm} {
		if err := b.Build(context.Background(), testRequest(tr)); err != nil {
			t.Fatalf("Build(%s) error = %v", tr, err)
		}
	}
	if lookups != 1 {
		t.Errorf("NDK lookups = %d, want 1 shared across builds", lookups)
	}
}

func TestBuilder_Build_CargoFailure(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{name: "host", result: NewExitCodeResult(101)}
	b := NewBuilder(config.DefaultConfig(), runner, WithGOOS("linux"), WithGetenv(noEnv))

	err := b.Build(context.Background(), testRequest(triple.LinuxX86_64))
	if !errors.Is(err, ErrBuildFailed) {
		t.Fatalf("Build() error = %v, want ErrBuildFailed", err)
	}
	var failed *BuildFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("Build() error type = %T", err)
	}
	if failed.Triple != triple.LinuxX86_64 || failed.ExitCode != types.ExitCode(101) {
		t.Errorf("BuildFailedError = %+v, want triple and exit 101", failed)
	}
	var actionable *issue.ActionableError
	if !errors.As(err, &actionable) || !actionable.HasSuggestions() {
		t.Errorf("Build() error should carry recovery suggestions, got %v", err)
	}
}

func TestBuilder_Build_RunnerInfraError(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{name: "host", result: NewErrorResult(1, errors.New("socket down"))}
	b := NewBuilder(config.DefaultConfig(), runner, WithGOOS("linux"), WithGetenv(noEnv))

	err := b.Build(context.Background(), testRequest(triple.LinuxX86_64))
	if err == nil || !strings.Contains(err.Error(), "socket down") {
		t.Errorf("Build() error = %v, want the runner failure preserved", err)
	}
}

func TestBuilder_Build_InvalidRequest(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{name: "host"}
	b := NewBuilder(config.DefaultConfig(), runner, WithGOOS("linux"), WithGetenv(noEnv))

	req := testRequest(triple.LinuxX86_64)
	req.CrateDir = ""
	if err := b.Build(context.Background(), req); !errors.Is(err, ErrInvalidBuildRequest) {
		t.Fatalf("Build() error = %v, want ErrInvalidBuildRequest", err)
	}
	if len(runner.invocations) != 0 {
		t.Errorf("invocations = %d, want none for an invalid request", len(runner.invocations))
	}
}

func TestBuilder_Preflight_HostAllPresent(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	b := NewBuilder(config.DefaultConfig(), &fakeRunner{name: "host"},
		WithGOOS("linux"),
		WithGetenv(noEnv),
		WithChecker(hostTools()),
		WithRustup(rustupReporting(t, rec, "x86_64-unknown-linux-gnu\n")),
	)

	if err := b.Preflight(context.Background(), []triple.Triple{triple.LinuxX86_64}); err != nil {
		t.Fatalf("Preflight() error = %v", err)
	}
}

func TestBuilder_Preflight_HostMissingCargo(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	b := NewBuilder(config.DefaultConfig(), &fakeRunner{name: "host"},
		WithGOOS("linux"),
		WithGetenv(noEnv),
		WithChecker(NewChecker(WithLookPath(fakeLookPath(map[string]string{
			"rustup": "/usr/bin/rustup",
		})))),
		WithRustup(rustupReporting(t, rec, "x86_64-unknown-linux-gnu\n")),
	)

	err := b.Preflight(context.Background(), []triple.Triple{triple.LinuxX86_64})
	if !errors.Is(err, ErrMissingTool) {
		t.Fatalf("Preflight() error = %v, want ErrMissingTool", err)
	}
	if !strings.Contains(err.Error(), "cargo") {
		t.Errorf("error = %v, should name cargo", err)
	}
}

func TestBuilder_Preflight_HostMissingRustTargets(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	b := NewBuilder(config.DefaultConfig(), &fakeRunner{name: "host"},
		WithGOOS("linux"),
		WithGetenv(envMap(map[string]string{EnvAndroidNDKHome: makeNDKRoot(t, "linux-x86_64")})),
		WithChecker(hostTools()),
		WithRustup(rustupReporting(t, rec, "aarch64-linux-android\n")),
	)

	err := b.Preflight(context.Background(), []triple.Triple{
		triple.AndroidArm64, triple.AndroidArm, triple.AndroidX86_64,
	})
	if !errors.Is(err, ErrMissingRustTarget) {
		t.Fatalf("Preflight() error = %v, want ErrMissingRustTarget", err)
	}
	var missing *MissingRustTargetError
	if !errors.As(err, &missing) {
		t.Fatalf("Preflight() error type = %T", err)
	}
	// Both uninstalled targets are reported in one pass.
	for _, tr := range []triple.Triple{triple.AndroidArm, triple.AndroidX86_64} {
		if !strings.Contains(err.Error(), tr.String()) {
			t.Errorf("error should list %s: %v", tr, err)
		}
	}
	if strings.Contains(err.Error(), "rust std component for aarch64-linux-android is") {
		t.Errorf("error lists the installed target too: %v", err)
	}
}

func TestBuilder_Preflight_AppleOnLinuxHost(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	b := NewBuilder(config.DefaultConfig(), &fakeRunner{name: "host"},
		WithGOOS("linux"),
		WithGetenv(noEnv),
		WithChecker(hostTools()),
		WithRustup(rustupReporting(t, rec, "aarch64-apple-ios\n")),
	)

	err := b.Preflight(context.Background(), []triple.Triple{triple.IOSDevice})
	if !errors.Is(err, ErrAppleHostRequired) {
		t.Fatalf("Preflight() error = %v, want ErrAppleHostRequired", err)
	}
	if !strings.Contains(err.Error(), "building on linux") {
		t.Errorf("error = %v, should name the host os", err)
	}
}

func TestBuilder_Preflight_AndroidNeedsNDK(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	b := NewBuilder(config.DefaultConfig(), &fakeRunner{name: "host"},
		WithGOOS("linux"),
		WithGetenv(noEnv),
		WithChecker(hostTools()),
		WithRustup(rustupReporting(t, rec, "aarch64-linux-android\n")),
	)

	err := b.Preflight(context.Background(), []triple.Triple{triple.AndroidArm64})
	if !errors.Is(err, ErrNDKNotFound) {
		t.Fatalf("Preflight() error = %v, want ErrNDKNotFound", err)
	}
}

func TestBuilder_Preflight_SkipsTargetCheckWithoutRustup(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	b := NewBuilder(config.DefaultConfig(), &fakeRunner{name: "host"},
		WithGOOS("linux"),
		WithGetenv(noEnv),
		WithChecker(NewChecker(WithLookPath(fakeLookPath(map[string]string{
			"cargo": "/usr/bin/cargo",
		})))),
		WithRustup(NewRustup(WithRustupExecCommand(rec.ExecCommandFunc(t)))),
	)

	err := b.Preflight(context.Background(), []triple.Triple{triple.LinuxX86_64})
	if !errors.Is(err, ErrMissingTool) {
		t.Fatalf("Preflight() error = %v, want ErrMissingTool", err)
	}
	// No point listing targets through a rustup that is not there.
	rec.AssertInvocationCount(t, 0)
}

func TestBuilder_Preflight_ContainerImageMissing(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Build.InContainer = true
	eng := &fakeEngine{available: true}
	runner := NewContainerRunner(eng, testImage, "/proj", WithCargoHome(""))
	b := NewBuilder(cfg, runner)

	err := b.Preflight(context.Background(), []triple.Triple{triple.AndroidArm64})
	if !errors.Is(err, ErrMissingImage) {
		t.Fatalf("Preflight() error = %v, want ErrMissingImage", err)
	}
	if !strings.Contains(err.Error(), string(testImage)) {
		t.Errorf("error = %v, should name the image", err)
	}
}

func TestBuilder_Preflight_ContainerEngineUnavailable(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Build.InContainer = true
	runner := NewContainerRunner(&fakeEngine{}, testImage, "/proj", WithCargoHome(""))
	b := NewBuilder(cfg, runner)

	err := b.Preflight(context.Background(), []triple.Triple{triple.AndroidArm64})
	if !errors.Is(err, container.ErrNoEngineAvailable) {
		t.Fatalf("Preflight() error = %v, want ErrNoEngineAvailable", err)
	}
}

func TestBuilder_Preflight_ContainerRejectsAppleTriples(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Build.InContainer = true
	runner := NewContainerRunner(&fakeEngine{available: true, imageExists: true}, testImage, "/proj", WithCargoHome(""))
	b := NewBuilder(cfg, runner)

	err := b.Preflight(context.Background(), []triple.Triple{triple.IOSDevice})
	if !errors.Is(err, ErrAppleHostRequired) {
		t.Fatalf("Preflight() error = %v, want ErrAppleHostRequired", err)
	}
	if !strings.Contains(err.Error(), "a linux container") {
		t.Errorf("error = %v, should explain the container restriction", err)
	}
}

func TestBuilder_Preflight_ContainerReady(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Build.InContainer = true
	runner := NewContainerRunner(&fakeEngine{available: true, imageExists: true}, testImage, "/proj", WithCargoHome(""))
	b := NewBuilder(cfg, runner)

	if err := b.Preflight(context.Background(), []triple.Triple{triple.AndroidArm64}); err != nil {
		t.Fatalf("Preflight() error = %v", err)
	}
}

func TestBuilder_Setup_HostInstallsMissingTargets(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	// First list: nothing installed. Then the add, then the post-install
	// list that Preflight runs.
	rec.Stdouts = []string{"", "info: installed\n", "x86_64-unknown-linux-gnu\n"}
	b := NewBuilder(config.DefaultConfig(), &fakeRunner{name: "host"},
		WithGOOS("linux"),
		WithGetenv(noEnv),
		WithChecker(hostTools()),
		WithRustup(NewRustup(WithRustupExecCommand(rec.ExecCommandFunc(t)))),
	)

	if err := b.Setup(context.Background(), []triple.Triple{triple.LinuxX86_64}, nil, nil); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	rec.AssertInvocationCount(t, 3)
	add := rec.Invocations[1]
	want := []string{"target", "add", "x86_64-unknown-linux-gnu"}
	if !slices.Equal(add.Args, want) {
		t.Errorf("install args = %v, want %v", add.Args, want)
	}
}

func TestBuilder_Setup_HostAlreadyInstalled(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	rec.Stdout = "x86_64-unknown-linux-gnu\n"
	b := NewBuilder(config.DefaultConfig(), &fakeRunner{name: "host"},
		WithGOOS("linux"),
		WithGetenv(noEnv),
		WithChecker(hostTools()),
		WithRustup(NewRustup(WithRustupExecCommand(rec.ExecCommandFunc(t)))),
	)

	if err := b.Setup(context.Background(), []triple.Triple{triple.LinuxX86_64}, nil, nil); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	// Only the two list invocations; no install happened.
	rec.AssertInvocationCount(t, 2)
	for i, inv := range rec.Invocations {
		if want := []string{"target", "list", "--installed"}; !slices.Equal(inv.Args, want) {
			t.Errorf("invocation %d args = %v, want %v", i, inv.Args, want)
		}
	}
}

func TestBuilder_Setup_HostMissingToolFailsFast(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	b := NewBuilder(config.DefaultConfig(), &fakeRunner{name: "host"},
		WithGOOS("linux"),
		WithGetenv(noEnv),
		WithChecker(NewChecker(WithLookPath(fakeLookPath(nil)))),
		WithRustup(NewRustup(WithRustupExecCommand(rec.ExecCommandFunc(t)))),
	)

	err := b.Setup(context.Background(), []triple.Triple{triple.LinuxX86_64}, nil, nil)
	if !errors.Is(err, ErrMissingTool) {
		t.Fatalf("Setup() error = %v, want ErrMissingTool", err)
	}
	rec.AssertInvocationCount(t, 0)
}

func TestBuilder_Setup_ContainerPullsImage(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Build.InContainer = true
	eng := &fakeEngine{available: true}
	runner := NewContainerRunner(eng, testImage, "/proj", WithCargoHome(""))
	b := NewBuilder(cfg, runner)

	if err := b.Setup(context.Background(), []triple.Triple{triple.AndroidArm64}, nil, nil); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if len(eng.pulled) != 1 || eng.pulled[0] != testImage {
		t.Errorf("pulled = %v, want [%s]", eng.pulled, testImage)
	}
}

func TestBuilder_Setup_ContainerEngineDown(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Build.InContainer = true
	runner := NewContainerRunner(&fakeEngine{}, testImage, "/proj", WithCargoHome(""))
	b := NewBuilder(cfg, runner)

	err := b.Setup(context.Background(), []triple.Triple{triple.AndroidArm64}, nil, nil)
	if !errors.Is(err, container.ErrNoEngineAvailable) {
		t.Fatalf("Setup() error = %v, want ErrNoEngineAvailable", err)
	}
}

func TestBuilder_Setup_ContainerModeNeedsContainerRunner(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Build.InContainer = true
	b := NewBuilder(cfg, &fakeRunner{name: "host"})

	err := b.Setup(context.Background(), []triple.Triple{triple.AndroidArm64}, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "container build mode requires a container runner") {
		t.Errorf("Setup() error = %v, want runner mismatch", err)
	}
}
