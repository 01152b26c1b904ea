// SPDX-License-Identifier: MPL-2.0
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package svfile

import (
	"strings"
	"testing"

	"svbind-cli/pkg/triple"
)

func TestGenerateCUE_RoundTrip(t *testing.T) {
	sv := DefaultSvfile("crates/sdk-ffi", "sdk.iface.cue")

	generated := GenerateCUE(sv)
	parsed, err := ParseBytes([]byte(generated), "svbind.cue")
	if err != nil {
		t.Fatalf("generated project file does not parse: %v\n%s", err, generated)
	}

	if parsed.SDK.CrateDir != "crates/sdk-ffi" {
		t.Errorf("CrateDir = %q", parsed.SDK.CrateDir)
	}
	if parsed.SDK.Iface != "sdk.iface.cue" {
		t.Errorf("Iface = %q", parsed.SDK.Iface)
	}
	if parsed.Profile != ProfileRelease {
		t.Errorf("Profile = %q", parsed.Profile)
	}
	if parsed.Android == nil || parsed.Apple == nil || parsed.Python == nil {
		t.Error("scaffold should declare all three platforms")
	}
}

func TestGenerateCUE_OmitsDefaults(t *testing.T) {
	sv := DefaultSvfile("ffi", "sdk.iface.cue")

	generated := GenerateCUE(sv)
	for _, field := range []string{"output_dir", "profile", "extra_cargo_args", "api_level", "triples", "lib_name", "description"} {
		if strings.Contains(generated, field) {
			t.Errorf("generated scaffold should omit %q:\n%s", field, generated)
		}
	}
}

func TestGenerateCUE_EmitsNonDefaults(t *testing.T) {
	sv := &Svfile{
		Description: "test SDK",
		SDK: SDKConfig{
			CrateDir: "ffi",
			Iface:    "sdk.iface.cue",
			LibName:  "svsdk",
		},
		OutputDir:      "dist",
		Profile:        ProfileDebug,
		ExtraCargoArgs: "--locked",
		Android: &AndroidTarget{
			Package:  "io.smartvaults.sdk",
			APILevel: 28,
			Triples:  []string{string(triple.AndroidArm64)},
		},
	}

	generated := GenerateCUE(sv)
	parsed, err := ParseBytes([]byte(generated), "svbind.cue")
	if err != nil {
		t.Fatalf("generated project file does not parse: %v\n%s", err, generated)
	}

	if parsed.Description != "test SDK" {
		t.Errorf("Description = %q", parsed.Description)
	}
	if parsed.SDK.LibName != "svsdk" {
		t.Errorf("LibName = %q", parsed.SDK.LibName)
	}
	if parsed.OutputDir != "dist" {
		t.Errorf("OutputDir = %q", parsed.OutputDir)
	}
	if parsed.Profile != ProfileDebug {
		t.Errorf("Profile = %q", parsed.Profile)
	}
	if parsed.ExtraCargoArgs != "--locked" {
		t.Errorf("ExtraCargoArgs = %q", parsed.ExtraCargoArgs)
	}
	if parsed.Android == nil {
		t.Fatal("Android block missing after round trip")
	}
	if parsed.Android.APILevel != 28 {
		t.Errorf("APILevel = %d", parsed.Android.APILevel)
	}
	if len(parsed.Android.Triples) != 1 || parsed.Android.Triples[0] != string(triple.AndroidArm64) {
		t.Errorf("Triples = %v", parsed.Android.Triples)
	}
	if parsed.Apple != nil || parsed.Python != nil {
		t.Error("undeclared platforms should stay absent")
	}
}
