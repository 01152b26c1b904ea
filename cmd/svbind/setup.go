// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"svbind-cli/internal/toolchain"
)

// newSetupCommand creates the `svbind setup` command.
func newSetupCommand(app *App) *cobra.Command {
	var checkOnly bool

	setupCmd := &cobra.Command{
		Use:   "setup",
		Short: "Install and verify the cross-compilation toolchains",
		Long: `Install and verify everything the project's declared triples need.

In host build mode this adds missing rust std components through rustup
and verifies cargo, the Android NDK, and the Apple tools. In container
build mode it pulls the cross-compilation image and verifies the engine.

Environment preconditions (ANDROID_NDK_HOME for Android triples, a
macOS host for Apple triples) are verified, never installed: a missing
SDK root is a hard failure with instructions, not a silent skip.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd, app, checkOnly)
		},
	}
	setupCmd.Flags().BoolVar(&checkOnly, "check", false, "verify only, install nothing")

	return setupCmd
}

func runSetup(cmd *cobra.Command, app *App, checkOnly bool) error {
	ctx := cmd.Context()

	cfg, err := app.loadMachineConfig(ctx)
	if err != nil {
		return err
	}
	proj, err := loadProject()
	if err != nil {
		return err
	}
	triples, err := proj.allTriples()
	if err != nil {
		return err
	}

	runner, err := app.Runner(cfg, proj.Svfile.Dir())
	if err != nil {
		return err
	}
	compiler := app.Compiler(cfg, runner,
		toolchain.WithAndroidAPILevel(androidAPILevel(cfg, proj.Svfile)),
		toolchain.WithLogger(app.logger()),
	)

	if checkOnly {
		if err := compiler.Preflight(ctx, triples); err != nil {
			return err
		}
		fmt.Fprintf(app.stdout, "%s Toolchain ready for %d triples\n", SuccessStyle.Render("✓"), len(triples))
		return nil
	}

	if err := compiler.Setup(ctx, triples, app.stdout, app.stderr); err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "%s Toolchain ready for %d triples\n", SuccessStyle.Render("✓"), len(triples))
	return nil
}
