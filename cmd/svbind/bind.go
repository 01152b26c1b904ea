// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"svbind-cli/internal/bindgen"
	"svbind-cli/pkg/triple"
)

// newBindCommand creates the `svbind bind` command.
func newBindCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "bind <kotlin|swift|python>",
		Short: "Build the native matrix and generate bindings for one language",
		Long: `Compile the native core for every triple the language's platform
declares and generate that language's bindings from the interface
definition.

Binding generation is deterministic: the same interface definition
always yields byte-identical sources. Generated files are replaced
wholesale on every run; hand edits are lost.

Examples:
  svbind bind kotlin     Android matrix + Kotlin/JNA bindings
  svbind bind swift      Apple matrix + Swift bindings and C header
  svbind bind python     Host build + ctypes Python package`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"kotlin", "swift", "python"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBind(cmd, app, args[0])
		},
	}
}

func runBind(cmd *cobra.Command, app *App, langArg string) error {
	ctx := cmd.Context()

	lang, err := bindgen.ParseLanguage(langArg)
	if err != nil {
		return err
	}
	platform, err := platformForLanguage(lang)
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

	outcome, err := app.runPipeline(ctx, cfg, proj, platform)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "%s Built %d %s binaries and wrote %s bindings to %s\n",
		SuccessStyle.Render("✓"),
		len(outcome.Triples), outcome.Platform,
		lang, CmdStyle.Render(outcome.BindingsDir))
	return nil
}

// platformForLanguage is the inverse of bindgen.LanguageFor: the platform
// family whose bundle carries a language's bindings.
func platformForLanguage(lang bindgen.Language) (triple.Platform, error) {
	for _, p := range triple.AllPlatforms() {
		if l, err := bindgen.LanguageFor(p); err == nil && l == lang {
			return p, nil
		}
	}
	return "", &bindgen.UnsupportedLanguageError{Name: lang.String()}
}
