// SPDX-License-Identifier: MPL-2.0

// Package config handles machine configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/svbind/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/svbind/config.cue on macOS, %APPDATA%\svbind\config.cue
// on Windows). The package provides type-safe configuration access and supports container
// engine selection, containerized build settings, NDK resolution, cargo options, and UI
// settings. Per-project settings (crate location, interface definition, target triples)
// live in the project file and are handled by internal/svfile, not here.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
