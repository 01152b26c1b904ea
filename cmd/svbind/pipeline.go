// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"path/filepath"

	"svbind-cli/internal/bindgen"
	"svbind-cli/internal/config"
	"svbind-cli/internal/issue"
	"svbind-cli/internal/matrix"
	"svbind-cli/internal/svfile"
	"svbind-cli/internal/toolchain"
	"svbind-cli/pkg/triple"
)

// buildOutcome is what one matrix+bindgen run produced: the compiled
// binaries for every declared triple and the generated binding artifact,
// already written under the output tree.
type buildOutcome struct {
	Platform    triple.Platform
	Triples     []triple.Triple
	Result      *matrix.Result
	Artifact    *bindgen.Artifact
	BindingsDir string
}

// runPipeline generates bindings and builds the native matrix for one
// platform family. Binding generation runs first: it depends only on the
// interface definition and failing there costs no compilation. The
// bindings land on disk only after the whole matrix succeeded, so a failed
// run writes nothing new.
//
// The caller holds the output directory's build lock.
func (a *App) runPipeline(ctx context.Context, cfg *config.Config, proj *project, p triple.Platform) (*buildOutcome, error) {
	lang, err := bindgen.LanguageFor(p)
	if err != nil {
		return nil, err
	}
	artifact, err := bindgen.Generate(proj.Def, lang, proj.bindOptions())
	if err != nil {
		return nil, err
	}

	triples, err := proj.Svfile.TriplesFor(p)
	if err != nil {
		return nil, err
	}
	extraArgs, err := proj.Svfile.CargoArgs()
	if err != nil {
		return nil, err
	}

	logger := a.logger()
	runner, err := a.Runner(cfg, proj.Svfile.Dir())
	if err != nil {
		return nil, err
	}
	compiler := a.Compiler(cfg, runner,
		toolchain.WithAndroidAPILevel(androidAPILevel(cfg, proj.Svfile)),
		toolchain.WithLogger(logger),
	)

	outDir := proj.Svfile.OutPath()
	result, err := matrix.New(compiler, matrix.WithLogger(logger)).Run(ctx, matrix.Request{
		CrateDir:  proj.Svfile.CratePath(),
		Crate:     proj.Crate,
		LibName:   proj.LibName(),
		Profile:   proj.Svfile.Profile,
		Triples:   triples,
		OutDir:    outDir,
		ExtraArgs: extraArgs,
		Jobs:      cfg.Build.Jobs,
		Locked:    cfg.Build.Locked,
		Stdout:    a.stdout,
		Stderr:    a.stderr,
	})
	if err != nil {
		return nil, err
	}

	bindingsDir := bindingsDir(outDir, lang)
	if err := artifact.Write(bindingsDir); err != nil {
		return nil, err
	}

	return &buildOutcome{
		Platform:    p,
		Triples:     triples,
		Result:      result,
		Artifact:    artifact,
		BindingsDir: bindingsDir,
	}, nil
}

// acquireBuildLock takes the exclusive lock on the project output tree,
// wrapping a held lock in an actionable error.
func acquireBuildLock(outDir string) (*toolchain.BuildLock, error) {
	lock, err := toolchain.AcquireBuildLock(outDir)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("locking the output directory").
			WithResource(outDir).
			WithSuggestions(
				"Wait for the running svbind build to finish",
				"Remove the lock file only if no other build is running",
			).
			Wrap(err).
			BuildError()
	}
	return lock, nil
}

// bindingsDir is where one language's generated bindings live:
// <out>/bindings/<language>.
func bindingsDir(outDir string, lang bindgen.Language) string {
	return filepath.Join(outDir, "bindings", lang.String())
}

// androidAPILevel resolves the Android API level: the project file's pin
// wins over the machine config, which falls back to the built-in default.
func androidAPILevel(cfg *config.Config, sv *svfile.Svfile) int {
	if sv.Android != nil && sv.Android.APILevel != 0 {
		return sv.Android.APILevel
	}
	return cfg.Android.EffectiveAPILevel()
}
