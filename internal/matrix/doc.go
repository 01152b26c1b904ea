// SPDX-License-Identifier: MPL-2.0

// Package matrix runs the architecture build matrix: one native compilation
// per declared target triple, in parallel, joined before anything downstream
// consumes the result.
//
// Each triple builds into its own cargo target dir and publishes exactly one
// library file under a fixed layout (<out>/build/<triple>/<libfile>) that the
// assembler discovers by convention. The matrix is all-or-nothing: toolchain
// problems abort it before the first compilation starts, and the first build
// failure cancels every in-flight sibling, so a partial set of binaries is
// never mistaken for a complete one.
package matrix
