// SPDX-License-Identifier: MPL-2.0

package svfile

import (
	"fmt"
	"strings"
)

// DefaultSvfile returns the project definition `svbind init` scaffolds:
// all three platform targets with default triple sets.
func DefaultSvfile(crateDir, ifaceFile string) *Svfile {
	return &Svfile{
		SDK: SDKConfig{
			CrateDir: crateDir,
			Iface:    ifaceFile,
		},
		Profile: ProfileRelease,
		Android: &AndroidTarget{Package: "com.example.sdk"},
		Apple:   &AppleTarget{Module: "ExampleSDK"},
		Python:  &PythonTarget{Package: "example_sdk"},
	}
}

// GenerateCUE generates CUE text from a Svfile struct.
// This is used by `svbind init` to scaffold svbind.cue files.
func GenerateCUE(sv *Svfile) string {
	var sb strings.Builder

	sb.WriteString("// svbind project file\n")
	sb.WriteString("// Declares what to build; machine settings live in the svbind config dir.\n\n")

	if sv.Description != "" {
		fmt.Fprintf(&sb, "description: %q\n\n", sv.Description)
	}

	sb.WriteString("sdk: {\n")
	fmt.Fprintf(&sb, "\tcrate_dir: %q\n", sv.SDK.CrateDir)
	fmt.Fprintf(&sb, "\tiface:     %q\n", sv.SDK.Iface)
	if sv.SDK.LibName != "" {
		fmt.Fprintf(&sb, "\tlib_name:  %q\n", sv.SDK.LibName)
	}
	sb.WriteString("}\n")

	if sv.OutputDir != "" && sv.OutputDir != "out" {
		fmt.Fprintf(&sb, "\noutput_dir: %q\n", sv.OutputDir)
	}
	if sv.Profile != "" && sv.Profile != ProfileRelease {
		fmt.Fprintf(&sb, "\nprofile: %q\n", sv.Profile)
	}
	if sv.ExtraCargoArgs != "" {
		fmt.Fprintf(&sb, "\nextra_cargo_args: %q\n", sv.ExtraCargoArgs)
	}

	if sv.Android != nil {
		sb.WriteString("\nandroid: {\n")
		fmt.Fprintf(&sb, "\tpackage: %q\n", sv.Android.Package)
		if sv.Android.APILevel != 0 {
			fmt.Fprintf(&sb, "\tapi_level: %d\n", sv.Android.APILevel)
		}
		generateTriples(&sb, sv.Android.Triples)
		sb.WriteString("}\n")
	}

	if sv.Apple != nil {
		sb.WriteString("\napple: {\n")
		fmt.Fprintf(&sb, "\tmodule: %q\n", sv.Apple.Module)
		generateTriples(&sb, sv.Apple.Triples)
		sb.WriteString("}\n")
	}

	if sv.Python != nil {
		sb.WriteString("\npython: {\n")
		fmt.Fprintf(&sb, "\tpackage: %q\n", sv.Python.Package)
		generateTriples(&sb, sv.Python.Triples)
		sb.WriteString("}\n")
	}

	return sb.String()
}

// generateTriples emits a triples list when the set is restricted.
func generateTriples(sb *strings.Builder, triples []string) {
	if len(triples) == 0 {
		return
	}
	sb.WriteString("\ttriples: [\n")
	for _, t := range triples {
		fmt.Fprintf(sb, "\t\t%q,\n", t)
	}
	sb.WriteString("\t]\n")
}
