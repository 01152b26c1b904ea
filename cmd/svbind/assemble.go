// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"svbind-cli/internal/assemble"
	"svbind-cli/internal/config"
	"svbind-cli/internal/manifest"
	"svbind-cli/pkg/triple"
)

// newAssembleCommand creates the `svbind assemble` command.
func newAssembleCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "assemble <android|apple|python>",
		Short: "Build, bind, and fan the binaries into a platform bundle",
		Long: `Run the full pipeline for one platform family and fan the compiled
binaries into its platform bundle: jniLibs layout plus Kotlin sources
for Android, an XCFramework plus Swift sources for Apple, a Python
package directory for desktop.

Assembly validates completeness first - every declared triple must have
a compiled binary exporting every symbol the bindings declare - and
replaces the previous bundle wholesale, never merging into it.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"android", "apple", "python"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssemble(cmd, app, args[0])
		},
	}
}

func runAssemble(cmd *cobra.Command, app *App, platformArg string) error {
	ctx := cmd.Context()

	platform, err := triple.ParsePlatform(platformArg)
	if err != nil {
		return err
	}
	cfg, err := app.loadMachineConfig(ctx)
	if err != nil {
		return err
	}
	proj, err := loadProject()
	if err != nil {
		return err
	}

	lock, err := acquireBuildLock(proj.Svfile.OutPath())
	if err != nil {
		return err
	}
	defer lock.Release()

	bundle, err := app.assemblePlatform(ctx, cfg, proj, platform)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "%s Assembled %s bundle at %s\n",
		SuccessStyle.Render("✓"), bundle.Platform, CmdStyle.Render(bundle.Dir))
	return nil
}

// assemblePlatform runs the pipeline for one platform and assembles the
// resulting binaries and bindings into its bundle. The caller holds the
// build lock.
func (a *App) assemblePlatform(ctx context.Context, cfg *config.Config, proj *project, p triple.Platform) (*assemble.Bundle, error) {
	outcome, err := a.runPipeline(ctx, cfg, proj, p)
	if err != nil {
		return nil, err
	}

	runner, err := a.Runner(cfg, proj.Svfile.Dir())
	if err != nil {
		return nil, err
	}
	opts := []assemble.Option{assemble.WithLogger(a.logger())}
	if a.verifier != nil {
		opts = append(opts, assemble.WithSymbolVerifier(a.verifier))
	}
	assembler := assemble.New(runner, opts...)

	return assembler.Run(ctx, assemble.Request{
		Platform: p,
		Triples:  outcome.Triples,
		Result:   outcome.Result,
		Artifact: outcome.Artifact,
		SDK: manifest.SDK{
			Name:    proj.Crate.Name,
			Version: proj.Crate.Version,
			LibName: proj.LibName(),
		},
		LibName: proj.LibName(),
		OutDir:  proj.Svfile.OutPath(),
	})
}
