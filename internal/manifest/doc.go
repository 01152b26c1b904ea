// SPDX-License-Identifier: MPL-2.0

// Package manifest reads and writes the manifest that travels at the
// root of every platform bundle (svbind-manifest.toml): which run
// produced the bundle, the compiled library per triple with its size
// and digest, and the symbol surface the bindings were generated
// against. The assembler writes it; the packager reads it back and
// re-validates before emitting anything, so a bundle edited or half
// rebuilt after assembly is refused instead of shipped.
package manifest
