// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for svbind.
//
// This package implements the Cobra command hierarchy for the svbind CLI:
// the root command, project scaffolding, toolchain setup, the build+bind
// pipeline commands, and configuration management.
package cmd
