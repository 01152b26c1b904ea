// SPDX-License-Identifier: MPL-2.0

// Package fspath provides small filesystem helpers shared by the build,
// assembly, and packaging stages.
package fspath

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyFile copies the regular file at src to dst, creating parent directories
// as needed and preserving the source file's permission bits. An existing
// destination file is truncated.
func CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stating source file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("copying %s: not a regular file", src)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source file: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating destination file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying file contents: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing destination file: %w", err)
	}
	return nil
}

// CopyDir recursively copies the tree rooted at src into dst, creating dst
// and any intermediate directories. Directory permission bits carry over.
// Entries that are neither directories nor regular files are rejected; build
// outputs never contain them, so hitting one means a corrupted tree.
func CopyDir(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(target, info.Mode().Perm()); err != nil {
				return fmt.Errorf("creating directory %s: %w", target, err)
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return fmt.Errorf("copying %s: %s is not a regular file", src, p)
		}
		return CopyFile(p, target)
	})
}
