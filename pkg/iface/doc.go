// SPDX-License-Identifier: MPL-2.0

// Package iface models the declarative interface definition that drives
// binding generation. The definition is a CUE file (conventionally
// <name>.iface.cue) validated against the embedded #Interface schema and
// then semantically checked: every referenced type must resolve to a
// declared enum, record, error set, object, or callback, and every type
// expression must map onto the generator's canonical type system.
//
// The interface definition is an immutable input. It is the single source
// of truth for the FFI symbol surface: DeclaredSymbols enumerates, in
// deterministic order, every exported C symbol the compiled native library
// must provide for the generated bindings to load.
package iface
