// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	// cleanCargo also removes the per-triple cargo work areas, which are
	// otherwise kept across runs for incremental compilation.
	cleanCargo bool

	// cleanCmd removes the project output tree.
	cleanCmd = &cobra.Command{
		Use:   "clean",
		Short: "Remove the project output tree",
		Long: `Remove the project's build output tree (compiled binaries, generated
bindings, bundles, and distributables).

The per-triple cargo work areas are kept by default so the next build
stays incremental; pass --cargo to remove them too.`,
		RunE: runClean,
	}
)

func init() {
	cleanCmd.Flags().BoolVar(&cleanCargo, "cargo", false, "also remove the cargo work areas")
}

func runClean(cmd *cobra.Command, args []string) error {
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

	subdirs := []string{"build", "bindings", "bundle", "dist"}
	if cleanCargo {
		subdirs = append(subdirs, "cargo")
	}
	for _, sub := range subdirs {
		if err := os.RemoveAll(filepath.Join(outDir, sub)); err != nil {
			return fmt.Errorf("removing %s: %w", sub, err)
		}
	}

	fmt.Printf("%s Cleaned %s\n", SuccessStyle.Render("✓"), outDir)
	return nil
}
