// SPDX-License-Identifier: MPL-2.0

// Package assemble fans a completed build matrix into one platform bundle:
// the compiled libraries laid out the way the platform's packaging expects,
// the generated bindings beside them, and a manifest recording what went in.
//
// Assembly is all-or-nothing. Matrix completeness and the symbol contract
// (every FFI symbol the bindings declare must be exported by every binary)
// are checked before the first byte is written, and the previous bundle
// directory is replaced wholesale, never merged, so a bundle on disk always
// reflects exactly one assembly run. Android and Python bundles are pure
// file layout; Apple bundles additionally drive lipo and xcodebuild on the
// host to produce the XCFramework.
package assemble
