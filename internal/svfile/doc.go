// SPDX-License-Identifier: MPL-2.0

// Package svfile provides types and parsing for svbind.cue project files.
//
// A project file declares the native crate to build, the interface
// definition to generate bindings from, and the per-platform packaging
// targets (Android package, Swift module, Python package, triple sets).
// This package handles CUE schema validation, parsing to Go structs,
// upward discovery from a working directory, and Cargo.toml introspection.
//
// This package uses pkg/cueutil for CUE parsing implementation details.
// External consumers should use the exported Parse(), ParseBytes(), Find()
// and Load() functions; the CUE parsing internals are not part of the
// public API.
package svfile
