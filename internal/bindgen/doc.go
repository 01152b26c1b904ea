// SPDX-License-Identifier: MPL-2.0

// Package bindgen generates host-language bindings (Kotlin, Swift, Python)
// from a validated interface definition.
//
// All three generators target the same C ABI convention: scalars and enum
// ordinals cross the boundary directly, object handles cross as opaque
// pointers, callbacks cross as registered uint64 handles, and everything
// else (strings, bytes, optionals, sequences, records) crosses serialized
// in a native-allocated buffer struct. Fallible calls take a trailing
// status out-parameter; a non-zero code is re-raised as a Kotlin
// exception, a Swift throw, or a Python exception.
//
// Emitters are pure functions of the interface definition: no timestamps,
// no map-order iteration, identical input bytes in means identical output
// bytes out. A definition mentioning a type with no canonical mapping
// fails generation naming that type, and nothing is emitted.
package bindgen
