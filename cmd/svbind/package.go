// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"svbind-cli/internal/assemble"
	"svbind-cli/internal/bindgen"
	"svbind-cli/internal/config"
	"svbind-cli/internal/pack"
	"svbind-cli/pkg/triple"
)

// newPackageCommand creates the `svbind package` command.
func newPackageCommand(app *App) *cobra.Command {
	var skipAssemble bool

	packageCmd := &cobra.Command{
		Use:   "package <android|apple|python>",
		Short: "Build, assemble, and emit the final distributable",
		Long: `Run the full pipeline for one platform family and wrap its bundle into
the distributable its ecosystem consumes: an .aar plus sources jar for
Android, a Swift Package directory for Apple, a Python source
distribution layout for desktop.

Packaging re-validates the bundle from its manifest and refuses to emit
anything when the bundle is incomplete, carries unexpected binaries, or
was assembled against a different interface definition than the current
one. A refused or failed run never costs the previous distributable.

With --skip-assemble the existing bundle is packaged as-is, still
subject to the same validation.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"android", "apple", "python"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPackage(cmd, app, args[0], skipAssemble)
		},
	}
	packageCmd.Flags().BoolVar(&skipAssemble, "skip-assemble", false, "package the existing bundle without rebuilding")

	return packageCmd
}

func runPackage(cmd *cobra.Command, app *App, platformArg string, skipAssemble bool) error {
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
	outDir := proj.Svfile.OutPath()

	lock, err := acquireBuildLock(outDir)
	if err != nil {
		return err
	}
	defer lock.Release()

	var bundleDir string
	if skipAssemble {
		bundleDir = assemble.BundleDir(outDir, platform)
	} else {
		bundle, err := app.assemblePlatform(ctx, cfg, proj, platform)
		if err != nil {
			return err
		}
		bundleDir = bundle.Dir
	}

	// The symbol digest always comes from the current interface definition:
	// generation is deterministic and pure, so this is exactly the digest a
	// fresh bind would produce, and a stale bundle fails the comparison.
	lang, err := bindgen.LanguageFor(platform)
	if err != nil {
		return err
	}
	artifact, err := bindgen.Generate(proj.Def, lang, proj.bindOptions())
	if err != nil {
		return err
	}
	triples, err := proj.Svfile.TriplesFor(platform)
	if err != nil {
		return err
	}

	pkg, err := packagerFor(platform, cfg, proj).Package(pack.Request{
		BundleDir:    bundleDir,
		DistDir:      filepath.Join(outDir, "dist"),
		Triples:      triples,
		SymbolDigest: artifact.SymbolDigest(),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "%s Packaged %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(pkg.Path))
	for _, extra := range pkg.Extras {
		fmt.Fprintf(app.stdout, "  + %s\n", CmdStyle.Render(extra))
	}
	return nil
}

// packagerFor selects the platform's packager, configured from the project
// file and the machine config.
func packagerFor(p triple.Platform, cfg *config.Config, proj *project) pack.Packager {
	switch p {
	case triple.PlatformApple:
		return pack.NewApple(pack.AppleOptions{Module: proj.Svfile.Apple.Module})
	case triple.PlatformPython:
		return pack.NewPython(pack.PythonOptions{Description: string(proj.Svfile.Description)})
	default:
		return pack.NewAndroid(pack.AndroidOptions{
			Package:  proj.Svfile.Android.Package,
			APILevel: androidAPILevel(cfg, proj.Svfile),
		})
	}
}
