// SPDX-License-Identifier: MPL-2.0

package iface

import (
	"slices"
	"testing"
)

func TestSnakeCase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "SmartVaults", want: "smart_vaults"},
		{in: "AbortHandle", want: "abort_handle"},
		{in: "SyncHandler", want: "sync_handler"},
		{in: "Network", want: "network"},
		{in: "HTTPServer", want: "http_server"},
		{in: "KeyV2", want: "key_v2"},
		{in: "A", want: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := SnakeCase(tt.in); got != tt.want {
				t.Errorf("SnakeCase(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDeclaredSymbols(t *testing.T) {
	t.Parallel()

	def, err := ParseBytes([]byte(validDefinition), "vaults.iface.cue")
	if err != nil {
		t.Fatalf("ParseBytes error = %v", err)
	}

	got := def.DeclaredSymbols()
	want := []string{
		"smartvaults_abort_handle_abort",
		"smartvaults_abort_handle_free",
		"smartvaults_buffer_alloc",
		"smartvaults_buffer_free",
		"smartvaults_lib_version",
		"smartvaults_smart_vaults_free",
		"smartvaults_smart_vaults_list_vaults",
		"smartvaults_smart_vaults_open",
		"smartvaults_smart_vaults_sync",
		"smartvaults_string_free",
		"smartvaults_sync_handler_init",
	}
	if !slices.Equal(got, want) {
		t.Errorf("DeclaredSymbols() = %v, want %v", got, want)
	}

	// The enumeration must be stable across calls.
	if again := def.DeclaredSymbols(); !slices.Equal(got, again) {
		t.Errorf("DeclaredSymbols() not deterministic: %v vs %v", got, again)
	}
}

func TestSymbolHelpersAgreeWithDeclaredSymbols(t *testing.T) {
	t.Parallel()

	def, err := ParseBytes([]byte(validDefinition), "vaults.iface.cue")
	if err != nil {
		t.Fatalf("ParseBytes error = %v", err)
	}

	all := def.DeclaredSymbols()
	contains := func(sym string) {
		t.Helper()
		if !slices.Contains(all, sym) {
			t.Errorf("DeclaredSymbols() missing %q", sym)
		}
	}

	obj := &def.Objects[0]
	contains(def.ObjectSymbol(obj, "open"))
	contains(def.ObjectFreeSymbol(obj))
	contains(def.CallbackInitSymbol(&def.Callbacks[0]))
	contains(def.FunctionSymbol(&def.Functions[0]))
	contains(def.StringFreeSymbol())
	contains(def.BufferAllocSymbol())
	contains(def.BufferFreeSymbol())
}
