// SPDX-License-Identifier: MPL-2.0

// Package container provides a unified abstraction layer for container engines (Docker/Podman).
//
// The Engine interface defines the operations the containerized toolchain runner
// needs: Build, Run, ImageExists, Pull, plus Available/Version for diagnostics.
// Two implementations are provided: DockerEngine and PodmanEngine, both embedding
// BaseCLIEngine for shared CLI argument construction and command execution.
//
// Engine selection uses NewEngine(EngineType) with automatic fallback if the preferred
// engine is unavailable, or AutoDetectEngine() for preference-less detection (Podman is
// tried first).
//
// IMPORTANT: Only Linux containers are supported; cross images are glibc-based
// (Alpine/musl images are not supported) and Windows container images are not
// supported. Cross builds for the Windows triple use the GNU toolchain inside a
// Linux container.
package container
