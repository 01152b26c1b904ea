// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"svbind-cli/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// app is the CLI composition root shared by all command handlers.
	app = NewApp(Dependencies{})

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "svbind",
		Short: "Build and bind the Smart Vaults native SDK",
		Long: TitleStyle.Render("svbind") + SubtitleStyle.Render(" - Build and bind the Smart Vaults native SDK") + `

svbind cross-compiles the Smart Vaults native core for Android, Apple,
and desktop targets, generates Kotlin, Swift, and Python bindings from
a declarative interface definition, and packages the results as an
Android AAR, a Swift Package, and a Python source distribution.

Projects are defined in a 'svbind.cue' file next to the SDK crate.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'svbind init' next to the native crate
  2. Run 'svbind setup' to install the cross toolchains
  3. Run 'svbind package android' to build your first AAR

` + SubtitleStyle.Render("Examples:") + `
  svbind bind kotlin          Build the Android matrix and emit Kotlin bindings
  svbind assemble apple       Fan the Apple binaries into an XCFramework bundle
  svbind package python       Emit the Python source distribution
  svbind triples              List the supported target triples
  svbind setup --check        Verify toolchains without installing anything`,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is the platform config dir)")

	// Add subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(newSetupCommand(app))
	rootCmd.AddCommand(newBindCommand(app))
	rootCmd.AddCommand(newAssembleCommand(app))
	rootCmd.AddCommand(newPackageCommand(app))
	rootCmd.AddCommand(triplesCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(newConfigCommand(app))
	rootCmd.AddCommand(newCompletionCommand())
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
