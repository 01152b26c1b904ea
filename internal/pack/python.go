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

// PythonOptions tune the emitted sdist layout.
type PythonOptions struct {
	// Description seeds setup.py and the README. Empty derives a
	// one-liner from the crate name.
	Description string
}

type pythonPackager struct {
	opts PythonOptions
}

// NewPython returns the packager that wraps a Python bundle into an
// sdist-style directory: setup.py beside the package holding both the
// generated module and the native library.
func NewPython(opts PythonOptions) Packager {
	return &pythonPackager{opts: opts}
}

func (p *pythonPackager) Platform() triple.Platform { return triple.PlatformPython }

func (p *pythonPackager) Package(req Request) (*Package, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	man, err := validateBundle(req, bindgen.LangPython)
	if err != nil {
		return nil, err
	}

	pkgName, err := pythonPackageName(req.BundleDir)
	if err != nil {
		return nil, err
	}
	description := p.opts.Description
	if description == "" {
		description = fmt.Sprintf("Python bindings for %s.", man.SDK.Name)
	}
	version := man.SDK.Version
	if version == "" {
		version = "0.0.0"
	}

	final := filepath.Join(req.DistDir, man.SDK.Name+"-python")
	err = replaceDir(final, func(tmp string) error {
		if err := fspath.CopyDir(filepath.Join(req.BundleDir, pkgName), filepath.Join(tmp, pkgName)); err != nil {
			return fmt.Errorf("copying python package: %w", err)
		}
		files := map[string]string{
			"setup.py":    setupPy(man.SDK.Name, version, description, pkgName),
			"README.md":   fmt.Sprintf("# %s\n\n%s\n", man.SDK.Name, description),
			"MANIFEST.in": fmt.Sprintf("recursive-include %s *\n", pkgName),
		}
		for name, content := range files {
			if err := os.WriteFile(filepath.Join(tmp, name), []byte(content), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Package{Platform: triple.PlatformPython, Path: final}, nil
}

func setupPy(name, version, description, pkgName string) string {
	var sb strings.Builder
	sb.WriteString("#!/usr/bin/env python\n\n")
	sb.WriteString("from pathlib import Path\n")
	sb.WriteString("from setuptools import setup\n\n")
	sb.WriteString("this_directory = Path(__file__).parent\n")
	sb.WriteString("long_description = (this_directory / \"README.md\").read_text()\n\n")
	sb.WriteString("setup(\n")
	fmt.Fprintf(&sb, "    name=%q,\n", name)
	fmt.Fprintf(&sb, "    version=%q,\n", version)
	fmt.Fprintf(&sb, "    description=%q,\n", description)
	sb.WriteString("    long_description=long_description,\n")
	sb.WriteString("    long_description_content_type=\"text/markdown\",\n")
	sb.WriteString("    include_package_data=True,\n")
	sb.WriteString("    zip_safe=False,\n")
	fmt.Fprintf(&sb, "    packages=[%q],\n", pkgName)
	sb.WriteString("    # The package ships a native library; force platform-specific\n")
	sb.WriteString("    # install names instead of a purelib.\n")
	sb.WriteString("    has_ext_modules=lambda: True,\n")
	sb.WriteString(")\n")
	return sb.String()
}

// pythonPackageName finds the bundled package: the directory holding an
// __init__.py.
func pythonPackageName(bundleDir string) (string, error) {
	entries, err := os.ReadDir(bundleDir)
	if err != nil {
		return "", fmt.Errorf("reading bundle: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if _, err := os.Stat(filepath.Join(bundleDir, e.Name(), "__init__.py")); err == nil {
			return e.Name(), nil
		}
	}
	return "", errors.New("bundle carries no python package")
}
