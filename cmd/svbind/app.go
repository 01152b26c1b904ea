// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"svbind-cli/internal/assemble"
	"svbind-cli/internal/bindgen"
	"svbind-cli/internal/config"
	"svbind-cli/internal/issue"
	"svbind-cli/internal/matrix"
	"svbind-cli/internal/svfile"
	"svbind-cli/internal/toolchain"
	"svbind-cli/pkg/iface"
	"svbind-cli/pkg/triple"
	"svbind-cli/pkg/types"
)

type (
	// ConfigProvider loads machine configuration using explicit options.
	// This abstraction enables testing with custom config sources or mock
	// implementations.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// RunnerFactory selects the tool runner for a build: host processes or
	// the cross-compilation container, per the machine config.
	RunnerFactory func(cfg *config.Config, projectRoot string) (toolchain.Runner, error)

	// Toolchain is what the pipeline commands need from the native
	// toolchain: matrix compilation plus one-time setup.
	// *toolchain.Builder is the production implementation.
	Toolchain interface {
		matrix.Compiler
		Setup(ctx context.Context, triples []triple.Triple, stdout, stderr io.Writer) error
	}

	// CompilerFactory builds the per-run crate compiler the matrix drives.
	// Tests substitute a factory returning a fake compiler so pipeline
	// commands run without cargo.
	CompilerFactory func(cfg *config.Config, runner toolchain.Runner, opts ...toolchain.BuilderOption) Toolchain

	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer - Cobra command handlers delegate through its
	// factories so tests can swap the toolchain out from under the pipeline.
	App struct {
		Config   ConfigProvider
		Runner   RunnerFactory
		Compiler CompilerFactory
		verifier assemble.SymbolVerifier
		stdout   io.Writer
		stderr   io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config   ConfigProvider
		Runner   RunnerFactory
		Compiler CompilerFactory
		// Verifier replaces the native symbol check during assembly.
		// Production leaves it nil for the real binary inspection.
		Verifier assemble.SymbolVerifier
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// project aggregates everything one build run reads from the project
	// tree: the svbind.cue definition, the crate manifest, and the parsed
	// interface definition.
	project struct {
		Svfile *svfile.Svfile
		Crate  *svfile.CrateInfo
		Def    *iface.Interface
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Runner == nil {
		deps.Runner = toolchain.NewRunner
	}
	if deps.Compiler == nil {
		deps.Compiler = func(cfg *config.Config, runner toolchain.Runner, opts ...toolchain.BuilderOption) Toolchain {
			return toolchain.NewBuilder(cfg, runner, opts...)
		}
	}

	return &App{
		Config:   deps.Config,
		Runner:   deps.Runner,
		Compiler: deps.Compiler,
		verifier: deps.Verifier,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
	}
}

// loadMachineConfig loads the machine config. An explicitly requested
// config file must load; without one, load failures fall back to defaults
// with a warning so a broken machine config never blocks a build that
// doesn't need it.
func (a *App) loadMachineConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: types.FilesystemPath(cfgFile)})
	if err == nil {
		return cfg, nil
	}
	if cfgFile != "" {
		return nil, issue.NewErrorContext().
			WithOperation("loading machine config").
			WithResource(cfgFile).
			WithSuggestion("Run 'svbind config dump' to see the expected shape").
			Wrap(err).
			BuildError()
	}
	fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+"failed to load config, using defaults: "+formatErrorForDisplay(err, verbose))
	return config.DefaultConfig(), nil
}

// logger builds the CLI logger: quiet by default, debug when --verbose.
func (a *App) logger() *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{Level: level, ReportTimestamp: false})
}

// loadProject locates and parses the project definition starting from the
// current directory, then reads the crate manifest and the interface
// definition it points at.
func loadProject() (*project, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determining working directory: %w", err)
	}
	return loadProjectFrom(wd)
}

// loadProjectFrom is loadProject anchored at an explicit directory, for tests.
func loadProjectFrom(startDir string) (*project, error) {
	sv, err := svfile.Load(startDir)
	if err != nil {
		if errors.Is(err, svfile.ErrNotFound) {
			return nil, issue.NewErrorContext().
				WithOperation("locating the project file").
				WithResource(startDir).
				WithSuggestions(
					"Run 'svbind init' to scaffold a svbind.cue here",
					"Run svbind from inside the SDK repository",
				).
				Wrap(err).
				BuildError()
		}
		return nil, issue.NewErrorContext().
			WithOperation("parsing the project file").
			WithSuggestion("Fix the reported fields; 'svbind init --force' rewrites a fresh default").
			Wrap(err).
			BuildError()
	}

	crate, err := svfile.ReadCrateInfo(sv.CratePath())
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("reading the native crate manifest").
			WithResource(sv.CratePath()).
			WithSuggestion("Check sdk.crate_dir in svbind.cue points at the directory holding Cargo.toml").
			Wrap(err).
			BuildError()
	}

	def, err := iface.Parse(sv.IfacePath())
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parsing the interface definition").
			WithResource(sv.IfacePath()).
			WithSuggestion("The offending symbol is named above; fix it in the .iface.cue file").
			Wrap(err).
			BuildError()
	}

	return &project{Svfile: sv, Crate: crate, Def: def}, nil
}

// bindOptions maps the project file's packaging names onto generator options.
func (p *project) bindOptions() bindgen.Options {
	opts := bindgen.Options{LibName: p.LibName()}
	if p.Svfile.Android != nil {
		opts.KotlinPackage = p.Svfile.Android.Package
	}
	if p.Svfile.Apple != nil {
		opts.SwiftModule = p.Svfile.Apple.Module
	}
	if p.Svfile.Python != nil {
		opts.PythonPackage = p.Svfile.Python.Package
	}
	return opts
}

// LibName resolves the published library name for this project.
func (p *project) LibName() string {
	return p.Svfile.EffectiveLibName(p.Crate)
}

// allTriples collects the union of the build matrices of every platform the
// project declares, in canonical order without duplicates.
func (p *project) allTriples() ([]triple.Triple, error) {
	seen := make(map[triple.Triple]bool)
	for _, plat := range p.Svfile.DeclaredPlatforms() {
		triples, err := p.Svfile.TriplesFor(plat)
		if err != nil {
			return nil, err
		}
		for _, t := range triples {
			seen[t] = true
		}
	}
	var out []triple.Triple
	for _, t := range triple.All() {
		if seen[t] {
			out = append(out, t)
		}
	}
	return out, nil
}
