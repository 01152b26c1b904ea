// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"svbind-cli/internal/bindgen"
	"svbind-cli/pkg/fspath"
	"svbind-cli/pkg/triple"
)

// AppleOptions tune the emitted Swift package.
type AppleOptions struct {
	// Module is the Swift module name. Empty derives it from the
	// bundled Swift sources.
	Module string
}

type applePackager struct {
	opts AppleOptions
}

// NewApple returns the packager that wraps an Apple bundle into a Swift
// package directory vending the XCFramework through a binary target.
func NewApple(opts AppleOptions) Packager {
	return &applePackager{opts: opts}
}

func (p *applePackager) Platform() triple.Platform { return triple.PlatformApple }

func (p *applePackager) Package(req Request) (*Package, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := validateBundle(req, bindgen.LangSwift); err != nil {
		return nil, err
	}

	swiftDir := filepath.Join(req.BundleDir, "swift")
	module := p.opts.Module
	if module == "" {
		var err error
		module, err = swiftModuleName(swiftDir)
		if err != nil {
			return nil, err
		}
	}
	ffi, err := xcframeworkName(req.BundleDir)
	if err != nil {
		return nil, err
	}

	final := filepath.Join(req.DistDir, module)
	err = replaceDir(final, func(tmp string) error {
		if err := fspath.CopyDir(filepath.Join(req.BundleDir, ffi), filepath.Join(tmp, ffi)); err != nil {
			return fmt.Errorf("copying xcframework: %w", err)
		}
		// Only the .swift files move under Sources. The C header and
		// module map already ship inside the framework slices.
		entries, err := os.ReadDir(swiftDir)
		if err != nil {
			return fmt.Errorf("reading swift sources: %w", err)
		}
		srcDir := filepath.Join(tmp, "Sources", module)
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".swift") {
				continue
			}
			if err := fspath.CopyFile(filepath.Join(swiftDir, e.Name()), filepath.Join(srcDir, e.Name())); err != nil {
				return err
			}
		}
		spec := packageSwift(module, strings.TrimSuffix(ffi, ".xcframework"), ffi)
		if err := os.WriteFile(filepath.Join(tmp, "Package.swift"), []byte(spec), 0o644); err != nil {
			return fmt.Errorf("writing Package.swift: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Package{Platform: triple.PlatformApple, Path: final}, nil
}

func packageSwift(module, ffiTarget, ffiPath string) string {
	var sb strings.Builder
	sb.WriteString("// swift-tools-version:5.5\n")
	sb.WriteString("import PackageDescription\n\n")
	sb.WriteString("let package = Package(\n")
	fmt.Fprintf(&sb, "    name: %q,\n", module)
	sb.WriteString("    platforms: [.iOS(.v14), .macOS(.v12)],\n")
	sb.WriteString("    products: [\n")
	fmt.Fprintf(&sb, "        .library(name: %q, targets: [%q]),\n", module, module)
	sb.WriteString("    ],\n")
	sb.WriteString("    targets: [\n")
	fmt.Fprintf(&sb, "        .target(name: %q, dependencies: [%q], path: %q),\n", module, ffiTarget, "Sources/"+module)
	fmt.Fprintf(&sb, "        .binaryTarget(name: %q, path: %q),\n", ffiTarget, ffiPath)
	sb.WriteString("    ]\n")
	sb.WriteString(")\n")
	return sb.String()
}

// swiftModuleName is the basename of the first top-level .swift file.
func swiftModuleName(swiftDir string) (string, error) {
	entries, err := os.ReadDir(swiftDir)
	if err != nil {
		return "", fmt.Errorf("reading swift sources: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".swift") {
			continue
		}
		return strings.TrimSuffix(e.Name(), ".swift"), nil
	}
	return "", errors.New("bundle carries no swift sources to derive the module name from")
}

// xcframeworkName finds the framework directory the assembler emitted.
func xcframeworkName(bundleDir string) (string, error) {
	entries, err := os.ReadDir(bundleDir)
	if err != nil {
		return "", fmt.Errorf("reading bundle: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasSuffix(e.Name(), ".xcframework") {
			return e.Name(), nil
		}
	}
	return "", errors.New("bundle carries no xcframework")
}
