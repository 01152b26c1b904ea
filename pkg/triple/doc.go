// SPDX-License-Identifier: MPL-2.0

// Package triple defines the compilation targets the native core can be
// built for, along with the per-target metadata the build pipeline needs:
// platform family membership, Android ABI directory names, Apple slice
// roles, cargo linker environment variables, and library file naming.
//
// A Triple is the canonical rustc target name (e.g. "aarch64-linux-android").
// Every declared triple maps to exactly one compiled binary; the registry in
// this package is the single source of truth for which triples exist and
// which platform bundles they may participate in.
package triple
