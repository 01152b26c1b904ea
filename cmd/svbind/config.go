// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"svbind-cli/internal/config"
)

// newConfigCommand creates the `svbind config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage svbind configuration",
		Long: `Manage svbind machine configuration.

Configuration is stored in:
  - Linux: ~/.config/svbind/config.cue
  - macOS: ~/Library/Application Support/svbind/config.cue
  - Windows: %APPDATA%\svbind\config.cue

Machine settings (NDK home, container engine, build image) live here;
per-project settings live in the project's svbind.cue.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadMachineConfig(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Print(config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.loadMachineConfig(ctx)
	if err != nil {
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Println(TitleStyle.Render("Current Configuration"))
	fmt.Println()

	// Derive the config file path from the standard config directory; the
	// provider does not cache resolved paths.
	if cfgPath, pathErr := configFilePath(); pathErr == nil && fileExistsCheck(cfgPath) {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), cfgPath)
	} else {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	fmt.Printf("%s: %s\n", keyStyle.Render("container_engine"), valueStyle.Render(string(cfg.ContainerEngine)))
	fmt.Printf("%s: %s\n", keyStyle.Render("build.in_container"), valueStyle.Render(fmt.Sprintf("%v", cfg.Build.InContainer)))
	fmt.Printf("%s: %s\n", keyStyle.Render("build.image"), valueStyle.Render(string(cfg.Build.BuildImage())))
	fmt.Printf("%s: %s\n", keyStyle.Render("build.locked"), valueStyle.Render(fmt.Sprintf("%v", cfg.Build.Locked)))
	if cfg.Build.Jobs != 0 {
		fmt.Printf("%s: %s\n", keyStyle.Render("build.jobs"), valueStyle.Render(fmt.Sprintf("%d", cfg.Build.Jobs)))
	}
	if cfg.Android.NdkHome != "" {
		fmt.Printf("%s: %s\n", keyStyle.Render("android.ndk_home"), valueStyle.Render(string(cfg.Android.NdkHome)))
	}
	fmt.Printf("%s: %s\n", keyStyle.Render("android.api_level"), valueStyle.Render(fmt.Sprintf("%d", cfg.Android.EffectiveAPILevel())))
	fmt.Printf("%s: %s\n", keyStyle.Render("cargo.path"), valueStyle.Render(cfg.Cargo.CargoExecutable()))

	return nil
}

func initConfig() error {
	if err := config.CreateDefaultConfig(); err != nil {
		return err
	}
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}
	fmt.Printf("%s Created %s\n", SuccessStyle.Render("✓"), cfgPath)
	return nil
}

func showConfigPath() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}
	fmt.Println(cfgPath)
	return nil
}

// configFilePath returns the default config file location.
func configFilePath() (string, error) {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt), nil
}

// fileExistsCheck reports whether path names an existing regular file.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
