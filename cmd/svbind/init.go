// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"svbind-cli/internal/svfile"
)

var (
	initForce    bool
	initCrateDir string

	// initCmd scaffolds a new svbind project
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create a svbind.cue project file in the current directory",
		Long: `Create a svbind.cue project file in the current directory, plus a
starter interface definition.

The scaffolded project targets all three platform families (Android,
Apple, Python) with their default triple sets. Edit the generated
files to match your SDK before the first build.`,
		RunE: runInit,
	}
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing files")
	initCmd.Flags().StringVar(&initCrateDir, "crate-dir", ".", "directory holding the native crate's Cargo.toml")
}

func runInit(cmd *cobra.Command, args []string) error {
	ifaceFile := "sdk.iface.cue"

	for _, f := range []string{svfile.FileName, ifaceFile} {
		if _, err := os.Stat(f); err == nil && !initForce {
			return fmt.Errorf("file '%s' already exists. Use --force to overwrite", f)
		}
	}

	sv := svfile.DefaultSvfile(initCrateDir, ifaceFile)
	if err := os.WriteFile(svfile.FileName, []byte(svfile.GenerateCUE(sv)), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", svfile.FileName, err)
	}
	if err := os.WriteFile(ifaceFile, []byte(starterInterface), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ifaceFile, err)
	}

	absPath, _ := filepath.Abs(svfile.FileName)
	fmt.Printf("%s Created %s\n", SuccessStyle.Render("✓"), absPath)
	fmt.Printf("%s Created %s\n", SuccessStyle.Render("✓"), ifaceFile)
	fmt.Println()
	fmt.Println(SubtitleStyle.Render("Next steps:"))
	fmt.Println("  1. Point sdk.crate_dir at the native crate and edit the interface definition")
	fmt.Println("  2. Run 'svbind setup' to install the cross toolchains")
	fmt.Println("  3. Run 'svbind package <android|apple|python>' to build a distributable")

	return nil
}

// starterInterface is the interface definition `svbind init` scaffolds: a
// small but complete surface exercising every declaration kind, modeled on
// the Smart Vaults client API.
const starterInterface = `// svbind interface definition
// The single source of truth for the native library's exported surface.
// Regenerate bindings after every change: svbind bind <kotlin|swift|python>.

namespace: "smartvaults"
version:   "0.1.0"

enums: [{
	name: "Network"
	doc:  "Bitcoin network the vault store operates on."
	variants: ["bitcoin", "testnet", "signet", "regtest"]
}]

records: [{
	name: "VaultSummary"
	doc:  "One vault as shown in listings."
	fields: [
		{name: "identifier", type: "string"},
		{name: "description", type: "optional<string>"},
		{name: "balance_sats", type: "u64"},
	]
}]

errors: [{
	name: "VaultError"
	doc:  "Failures reported by vault operations."
	variants: ["generic", "network", "storage"]
}]

objects: [{
	name: "SmartVaults"
	doc:  "Handle to an open vault store."
	constructors: [{
		name: "open"
		params: [
			{name: "base_path", type: "string"},
			{name: "keychain_name", type: "string"},
			{name: "password", type: "string"},
			{name: "network", type: "Network"},
		]
		throws: "VaultError"
	}]
	methods: [
		{name: "list_vaults", returns: "sequence<VaultSummary>", throws: "VaultError"},
		{
			name: "sync"
			params: [{name: "handler", type: "SyncHandler"}]
			returns: "AbortHandle"
			throws:  "VaultError"
		},
	]
}, {
	name: "AbortHandle"
	doc:  "Cancels a running sync."
	methods: [{name: "abort"}]
}, {
	name: "Descriptor"
	doc:  "A parsed output descriptor."
	constructors: [{
		name: "from_str"
		params: [{name: "descriptor", type: "string"}]
		throws: "VaultError"
	}]
	methods: [{name: "to_string", returns: "string"}]
}]

callbacks: [{
	name: "SyncHandler"
	doc:  "Receives relay messages while a sync runs."
	methods: [{
		name: "handle_message"
		params: [{name: "message", type: "string"}]
	}]
}]

functions: [{
	name:    "library_version"
	doc:     "Version of the native core library."
	returns: "string"
}]
`
