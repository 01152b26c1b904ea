// SPDX-License-Identifier: MPL-2.0

package fspath_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"svbind-cli/pkg/fspath"
)

func TestCopyFile(t *testing.T) {
	t.Parallel()

	t.Run("copies contents and permissions", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := filepath.Join(dir, "src", "libvault.so")
		if err := os.MkdirAll(filepath.Dir(src), 0o755); err != nil {
			t.Fatalf("MkdirAll error = %v", err)
		}
		if err := os.WriteFile(src, []byte("native code"), 0o755); err != nil {
			t.Fatalf("writing source: %v", err)
		}

		// Destination parents are created on demand.
		dst := filepath.Join(dir, "out", "jniLibs", "arm64-v8a", "libvault.so")
		if err := fspath.CopyFile(src, dst); err != nil {
			t.Fatalf("CopyFile() error = %v", err)
		}

		got, err := os.ReadFile(dst)
		if err != nil {
			t.Fatalf("reading destination: %v", err)
		}
		if string(got) != "native code" {
			t.Errorf("destination content = %q, want %q", got, "native code")
		}

		if runtime.GOOS != "windows" {
			info, err := os.Stat(dst)
			if err != nil {
				t.Fatalf("stating destination: %v", err)
			}
			if perm := info.Mode().Perm(); perm != 0o755 {
				t.Errorf("destination permissions = %o, want %o", perm, 0o755)
			}
		}
	})

	t.Run("missing source returns error", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		err := fspath.CopyFile(filepath.Join(dir, "absent"), filepath.Join(dir, "dst"))
		if err == nil {
			t.Error("expected error for missing source")
		}
	})

	t.Run("directory source returns error", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		err := fspath.CopyFile(dir, filepath.Join(dir, "dst"))
		if err == nil {
			t.Error("expected error for directory source")
		}
	})

	t.Run("overwrites existing destination", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := filepath.Join(dir, "src.bin")
		dst := filepath.Join(dir, "dst.bin")

		if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
			t.Fatalf("writing source: %v", err)
		}
		if err := os.WriteFile(dst, []byte("old content that is longer"), 0o644); err != nil {
			t.Fatalf("writing destination: %v", err)
		}

		if err := fspath.CopyFile(src, dst); err != nil {
			t.Fatalf("CopyFile() error = %v", err)
		}

		got, err := os.ReadFile(dst)
		if err != nil {
			t.Fatalf("reading destination: %v", err)
		}
		if string(got) != "new" {
			t.Errorf("destination content = %q, want %q", got, "new")
		}
	})
}

func TestCopyDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "bundle")
	files := map[string]string{
		"svbind-manifest.toml":          "schema = 1",
		"jniLibs/arm64-v8a/libsdk.so":   "arm64 code",
		"jniLibs/x86_64/libsdk.so":      "x86_64 code",
		"kotlin/com/sdk/Bindings.kt":    "package com.sdk",
		"kotlin/com/sdk/internal/Fd.kt": "internal",
	}
	for rel, content := range files {
		p := filepath.Join(src, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("MkdirAll error = %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("writing fixture %s: %v", rel, err)
		}
	}

	dst := filepath.Join(dir, "dist", "copy")
	if err := fspath.CopyDir(src, dst); err != nil {
		t.Fatalf("CopyDir() error = %v", err)
	}

	for rel, content := range files {
		got, err := os.ReadFile(filepath.Join(dst, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatalf("copied file %s missing: %v", rel, err)
		}
		if string(got) != content {
			t.Errorf("%s = %q, want %q", rel, got, content)
		}
	}
}

func TestCopyDirRejectsSymlink(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation needs privileges on windows")
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "tree")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatalf("MkdirAll error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "real"), []byte("x"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	if err := os.Symlink(filepath.Join(src, "real"), filepath.Join(src, "link")); err != nil {
		t.Fatalf("creating symlink: %v", err)
	}

	if err := fspath.CopyDir(src, filepath.Join(dir, "dst")); err == nil {
		t.Fatal("CopyDir() succeeded on a tree containing a symlink")
	}
}
