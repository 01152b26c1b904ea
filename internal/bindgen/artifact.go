// SPDX-License-Identifier: MPL-2.0

package bindgen

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"svbind-cli/internal/digest"
	"svbind-cli/pkg/triple"
)

// Supported binding languages, one per platform family.
const (
	// LangKotlin generates JNA-backed Kotlin for Android.
	LangKotlin Language = "kotlin"
	// LangSwift generates a C header, module map, and Swift wrapper for
	// Apple platforms.
	LangSwift Language = "swift"
	// LangPython generates a ctypes-backed Python package for desktop.
	LangPython Language = "python"
)

type (
	// Language selects a binding generator.
	Language string

	// File is one generated source file: a slash-separated path relative
	// to the language's binding root, plus its contents.
	File struct {
		Path string
		Data []byte
	}

	// Artifact is one language's complete generated binding set, held in
	// memory until generation has fully succeeded. Files are sorted by
	// path; Symbols is the sorted C symbol list the bindings link against,
	// carried so downstream stages can verify compiled libraries export
	// exactly what the generated code calls.
	Artifact struct {
		Language Language
		Files    []File
		Symbols  []string
	}
)

// String returns the string representation of the Language.
func (l Language) String() string { return string(l) }

// Validate reports whether the Language is one of the supported set.
func (l Language) Validate() error {
	switch l {
	case LangKotlin, LangSwift, LangPython:
		return nil
	default:
		return &UnsupportedLanguageError{Name: string(l)}
	}
}

// Languages returns the supported binding languages in canonical order.
func Languages() []Language {
	return []Language{LangKotlin, LangSwift, LangPython}
}

// ParseLanguage validates a raw string and returns it as a Language.
func ParseLanguage(s string) (Language, error) {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	if err := l.Validate(); err != nil {
		return "", err
	}
	return l, nil
}

// LanguageFor returns the binding language a platform family bundles.
func LanguageFor(p triple.Platform) (Language, error) {
	switch p {
	case triple.PlatformAndroid:
		return LangKotlin, nil
	case triple.PlatformApple:
		return LangSwift, nil
	case triple.PlatformPython:
		return LangPython, nil
	default:
		return "", &triple.InvalidPlatformError{Value: p}
	}
}

func supportedLanguageList() string {
	names := make([]string, 0, 3)
	for _, l := range Languages() {
		names = append(names, string(l))
	}
	return strings.Join(names, ", ")
}

// File returns the contents of the generated file at path.
func (a *Artifact) File(path string) ([]byte, bool) {
	for i := range a.Files {
		if a.Files[i].Path == path {
			return a.Files[i].Data, true
		}
	}
	return nil, false
}

// Paths returns the generated file paths in artifact order.
func (a *Artifact) Paths() []string {
	paths := make([]string, 0, len(a.Files))
	for i := range a.Files {
		paths = append(paths, a.Files[i].Path)
	}
	return paths
}

// SymbolDigest digests the symbol list the bindings were generated
// against. Manifests record it so assembly can prove bindings and
// binaries came from the same interface definition.
func (a *Artifact) SymbolDigest() digest.Digest {
	return digest.Strings(a.Symbols)
}

// Write replaces dir with the artifact's files. The previous directory
// contents are removed first so regenerated bindings never mix with
// stale files from an earlier definition.
func (a *Artifact) Write(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clearing binding dir %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating binding dir %s: %w", dir, err)
	}
	for i := range a.Files {
		f := &a.Files[i]
		dst := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("creating binding dir %s: %w", filepath.Dir(dst), err)
		}
		if err := os.WriteFile(dst, f.Data, 0o644); err != nil {
			return fmt.Errorf("writing binding file %s: %w", dst, err)
		}
	}
	return nil
}

// sortFiles fixes the artifact's file order. Generators emit in a fixed
// sequence already; sorting keeps the order independent of emission
// details.
func sortFiles(files []File) {
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
}
