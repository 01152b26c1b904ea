// SPDX-License-Identifier: MPL-2.0

// svbind builds, binds, and packages the Smart Vaults native SDK for
// Android, Apple, and Python consumers.
package main

import cmd "svbind-cli/cmd/svbind"

func main() {
	cmd.Execute()
}
