// SPDX-License-Identifier: MPL-2.0

// Package toolchain models the native build toolchain: which host tools a
// set of target triples needs, where the Android NDK lives, which rustup
// std components are installed, and how cargo is invoked for one triple.
//
// Compilation runs through the Runner abstraction. The host runner spawns
// cargo directly; the container runner executes it inside a pinned
// cross-compilation image with the project bind mounted, so the same build
// requests work in both modes. Builder ties the pieces together: Preflight
// verifies everything a build matrix needs before any compilation starts,
// Build compiles one triple, and Setup installs what can be installed
// automatically (rust std components, the build image). The NDK and the
// Xcode tools can only be verified, never installed.
package toolchain
