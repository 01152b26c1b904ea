// SPDX-License-Identifier: MPL-2.0

//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default is the target run by a bare `mage`.
var Default = Build

// Build compiles the svbind binary with version metadata from git.
func Build() error {
	mg.Deps(Tidy)

	version := gitDescribe()
	commit, _ := sh.Output("git", "rev-parse", "--short", "HEAD")
	date, _ := sh.Output("date", "-u", "+%Y-%m-%dT%H:%M:%SZ")

	ldflags := fmt.Sprintf(
		"-X svbind-cli/cmd/svbind.Version=%s -X svbind-cli/cmd/svbind.Commit=%s -X svbind-cli/cmd/svbind.BuildDate=%s",
		version, commit, date)

	return sh.RunV("go", "build", "-ldflags", ldflags, "-o", "bin/svbind", ".")
}

// Test runs the unit tests, skipping the container-backed ones.
func Test() error {
	return sh.RunV("go", "test", "-short", "./...")
}

// TestAll runs every test, including the container integration tests.
func TestAll() error {
	return sh.RunV("go", "test", "./...")
}

// Lint runs go vet across the module.
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Tidy syncs go.mod with the source tree.
func Tidy() error {
	return sh.RunV("go", "mod", "tidy")
}

// Clean removes build outputs.
func Clean() error {
	return os.RemoveAll("bin")
}

// gitDescribe returns the nearest tag description, or "dev" outside a
// tagged checkout.
func gitDescribe() string {
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || out == "" {
		return "dev"
	}
	return out
}
