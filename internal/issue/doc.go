// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// This package defines error types that include remediation steps and
// Markdown-formatted guidance. Build failures are where users spend their
// debugging time, so every error crossing the CLI boundary carries enough
// context (operation, resource, suggestions) to act on without reading code.
package issue
