// SPDX-License-Identifier: MPL-2.0

// Package symbols reads the exported symbol tables of compiled native
// libraries and checks them against the symbol set the generated
// bindings load at runtime.
//
// Four container formats cover the triple catalog: ELF shared objects
// (Android, Linux), Mach-O dylibs (macOS, including universal files),
// ar archives of Mach-O objects (iOS static slices), and PE DLLs
// (Windows). Verification is subset-based: a library may export more
// than the declared surface (Rust runtimes always leak incidentals),
// but every declared symbol must resolve here, or the loader on a user
// machine fails with a far worse message much later.
package symbols
