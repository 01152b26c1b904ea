// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"

	"svbind-cli/internal/config"
	"svbind-cli/internal/container"
	"svbind-cli/internal/issue"
	"svbind-cli/pkg/platform"
	"svbind-cli/pkg/triple"
)

// Builder runs native crate compilations through a Runner, resolving the
// per-triple toolchain environment first. One Builder serves a whole build
// run and is safe for concurrent Build calls; the matrix builds triples in
// parallel.
type Builder struct {
	runner      Runner
	checker     *Checker
	rustup      *Rustup
	cargo       string
	inContainer bool
	apiLevel    int
	ndkHome     config.NdkPath
	getenv      func(string) string
	goos        string
	logger      *log.Logger

	ndkOnce sync.Once
	ndk     *NDK
	ndkErr  error
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithChecker overrides the tool checker. Used by tests.
func WithChecker(c *Checker) BuilderOption {
	return func(b *Builder) { b.checker = c }
}

// WithRustup overrides the rustup client. Used by tests.
func WithRustup(r *Rustup) BuilderOption {
	return func(b *Builder) { b.rustup = r }
}

// WithGetenv overrides environment lookup. Used by tests.
func WithGetenv(fn func(string) string) BuilderOption {
	return func(b *Builder) { b.getenv = fn }
}

// WithGOOS overrides host OS detection. Used by tests.
func WithGOOS(goos string) BuilderOption {
	return func(b *Builder) { b.goos = goos }
}

// WithAndroidAPILevel overrides the Android API level. Projects pin their
// level in svbind.cue; the app layer passes it through here.
func WithAndroidAPILevel(level int) BuilderOption {
	return func(b *Builder) { b.apiLevel = level }
}

// WithLogger sets the build logger. The default discards.
func WithLogger(l *log.Logger) BuilderOption {
	return func(b *Builder) { b.logger = l }
}

// NewBuilder creates a Builder executing through runner, configured from
// the machine config.
func NewBuilder(cfg *config.Config, runner Runner, opts ...BuilderOption) *Builder {
	b := &Builder{
		runner:      runner,
		checker:     NewChecker(),
		rustup:      NewRustup(),
		cargo:       cfg.Cargo.CargoExecutable(),
		inContainer: cfg.Build.InContainer,
		apiLevel:    cfg.Android.EffectiveAPILevel(),
		ndkHome:     cfg.Android.NdkHome,
		getenv:      os.Getenv,
		goos:        runtime.GOOS,
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Preflight verifies the toolchain can build every given triple, before any
// compilation starts. Host mode checks PATH tools, installed rust std
// components, the NDK for Android triples and the host OS for Apple
// triples; container mode checks the engine and the build image. Problems
// are aggregated so the user fixes them in one pass.
func (b *Builder) Preflight(ctx context.Context, triples []triple.Triple) error {
	if b.inContainer {
		return b.preflightContainer(ctx, triples)
	}
	return b.preflightHost(ctx, triples)
}

func (b *Builder) preflightHost(ctx context.Context, triples []triple.Triple) error {
	var errs []error

	if err := b.checker.CheckAll(Requirements(triples, b.goos)); err != nil {
		errs = append(errs, err)
	}

	for _, t := range triples {
		if t.IsApple() && b.goos != platform.Darwin {
			errs = append(errs, &AppleHostError{Triple: t, HostOS: b.goos})
		}
	}

	// Rust target checks need a working rustup; skip them when it is
	// missing so the aggregate stays readable.
	if _, err := b.checker.Check(ToolRequirement{Name: "rustup"}); err == nil {
		missing, listErr := b.rustup.MissingTargets(ctx, triples)
		if listErr != nil {
			errs = append(errs, listErr)
		}
		for _, t := range missing {
			errs = append(errs, &MissingRustTargetError{Triple: t})
		}
	}

	if containsAndroid(triples) {
		if _, err := b.resolveNDK(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return preflightError(errors.Join(errs...))
	}
	return nil
}

func (b *Builder) preflightContainer(ctx context.Context, triples []triple.Triple) error {
	var errs []error

	for _, t := range triples {
		if t.IsApple() {
			errs = append(errs, &AppleHostError{Triple: t, HostOS: "a linux container"})
		}
	}

	if cr, ok := b.runner.(*ContainerRunner); ok {
		if !cr.Available() {
			errs = append(errs, &container.EngineNotAvailableError{
				Engine: cr.engine.Name(),
				Reason: "engine not responding",
			})
		} else {
			exists, err := cr.engine.ImageExists(ctx, cr.image)
			switch {
			case err != nil:
				errs = append(errs, err)
			case !exists:
				errs = append(errs, &MissingImageError{Image: cr.image})
			}
		}
	}

	if len(errs) > 0 {
		return preflightError(errors.Join(errs...))
	}
	return nil
}

// Build compiles the crate for one triple through the runner. The cargo
// environment pins CARGO_TARGET_DIR to the request's target dir; Android
// triples additionally get the NDK compiler and linker variables in host
// mode (the build image carries its own). A non-zero cargo exit becomes a
// BuildFailedError.
func (b *Builder) Build(ctx context.Context, req BuildRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	env := map[string]string{}
	if req.Triple.IsAndroid() && !b.inContainer {
		ndk, err := b.resolveNDK()
		if err != nil {
			return err
		}
		ndkEnv, err := ndk.BuildEnv(req.Triple, b.apiLevel, b.goos)
		if err != nil {
			return err
		}
		maps.Copy(env, ndkEnv)
	}

	inv := Invocation{
		Tool:    b.cargo,
		Args:    cargoArgs(req),
		Dir:     req.CrateDir,
		Env:     env,
		PathEnv: map[string]string{"CARGO_TARGET_DIR": req.TargetDir},
		Stdout:  req.Stdout,
		Stderr:  req.Stderr,
	}

	b.logger.Debug("cargo build", "triple", req.Triple, "runner", b.runner.Name(), "args", inv.Args)

	result := b.runner.Run(ctx, inv)
	if result.Error != nil {
		return buildError(req, result.Error)
	}
	if !result.ExitCode.IsSuccess() {
		return buildError(req, &BuildFailedError{Triple: req.Triple, ExitCode: result.ExitCode})
	}
	return nil
}

// Setup installs what the given triples need and can be installed
// automatically: missing rust std components in host mode, the build image
// in container mode. It finishes with a full Preflight so the remaining
// verify-only pieces (NDK, Xcode tools) are reported too.
func (b *Builder) Setup(ctx context.Context, triples []triple.Triple, stdout, stderr io.Writer) error {
	if b.inContainer {
		cr, ok := b.runner.(*ContainerRunner)
		if !ok {
			return fmt.Errorf("container build mode requires a container runner, got %s", b.runner.Name())
		}
		if !cr.Available() {
			return preflightError(&container.EngineNotAvailableError{
				Engine: cr.engine.Name(),
				Reason: "engine not responding",
			})
		}
		b.logger.Info("priming build image", "image", cr.image)
		if err := cr.EnsureImage(ctx); err != nil {
			return err
		}
		return b.Preflight(ctx, triples)
	}

	if err := b.checker.CheckAll(Requirements(triples, b.goos)); err != nil {
		return preflightError(err)
	}
	missing, err := b.rustup.MissingTargets(ctx, triples)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		b.logger.Info("installing rust std components", "targets", missing)
		if err := b.rustup.AddTargets(ctx, missing, stdout, stderr); err != nil {
			return err
		}
	}
	return b.Preflight(ctx, triples)
}

// resolveNDK locates the NDK once per Builder; concurrent triple builds
// share the result.
func (b *Builder) resolveNDK() (*NDK, error) {
	b.ndkOnce.Do(func() {
		b.ndk, b.ndkErr = FindNDK(b.ndkHome, b.getenv)
		if b.ndkErr == nil {
			b.logger.Debug("using android ndk", "root", b.ndk.Root, "api_level", b.apiLevel)
		}
	})
	return b.ndk, b.ndkErr
}

// preflightError wraps aggregated preflight failures in an actionable error
// pointing at setup.
func preflightError(cause error) error {
	return issue.NewErrorContext().
		WithOperation("verifying build toolchain").
		WithSuggestions(
			"Run 'svbind setup' to install missing rust targets and pull the build image",
			"Run 'svbind setup --check' to list everything the build needs",
		).
		Wrap(cause).
		BuildError()
}

// buildError wraps a failed compilation in an actionable error.
func buildError(req BuildRequest, cause error) error {
	return issue.NewErrorContext().
		WithOperation(fmt.Sprintf("compiling %s for %s", req.Crate.Name, req.Triple)).
		WithResource(req.CrateDir).
		WithSuggestions(
			"Inspect the cargo output above for the first error",
			fmt.Sprintf("Reproduce with 'cargo build --target %s' in the crate directory", req.Triple),
		).
		Wrap(cause).
		BuildError()
}
