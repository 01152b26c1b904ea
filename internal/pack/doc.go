// SPDX-License-Identifier: MPL-2.0

// Package pack wraps assembled platform bundles into the distributables
// each host ecosystem consumes: an Android AAR plus a sources jar, a
// Swift package directory vending the XCFramework, and a Python sdist
// layout around the generated package.
//
// Every packager re-validates the bundle from its manifest before
// writing anything: the recorded triples must match the declared set
// exactly, the binding symbol digest must match the current interface
// definition, and every binary must still hash to its recorded digest.
// An edited, stale, or half-rebuilt bundle is refused rather than
// shipped. Distributables are built at a temporary path and renamed
// into place, so a failed run leaves no partial output where a previous
// good package stood.
package pack
