// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"

	"svbind-cli/internal/digest"
	"svbind-cli/pkg/triple"
)

// FileName is the manifest file name, written at the bundle root.
const FileName = "svbind-manifest.toml"

// Schema is the manifest schema version this build writes and the only
// one it reads back.
const Schema = 1

type (
	// Manifest describes one assembled platform bundle.
	Manifest struct {
		// SchemaVersion guards against reading manifests written by an
		// incompatible svbind.
		SchemaVersion int `toml:"schema"`
		// RunID identifies the assembly run that produced the bundle.
		RunID string `toml:"run_id"`
		// CreatedAt is the assembly time in UTC.
		CreatedAt time.Time `toml:"created_at"`

		// SDK describes the native crate the bundle was built from.
		SDK SDK `toml:"sdk"`
		// Binding describes the bindings packed with the binaries.
		Binding Binding `toml:"binding"`
		// Binaries records one compiled library per declared triple.
		Binaries []Binary `toml:"binaries"`
	}

	// SDK describes the native crate the bundle was built from.
	SDK struct {
		// Name is the cargo package name.
		Name string `toml:"name"`
		// Version is the declared crate version, when known.
		Version string `toml:"version,omitempty"`
		// LibName is the compiled library name the binaries derive
		// their file names from.
		LibName string `toml:"lib_name"`
	}

	// Binding describes the bindings packed with the binaries.
	Binding struct {
		// Language is the binding language (kotlin, swift, python).
		Language string `toml:"language"`
		// SymbolDigest fingerprints the FFI symbol list the bindings
		// were generated against.
		SymbolDigest string `toml:"symbol_digest"`
	}

	// Binary records one compiled library inside the bundle.
	Binary struct {
		// Triple is the rustc target the library was compiled for.
		Triple string `toml:"triple"`
		// Path locates the library relative to the bundle root, with
		// forward slashes.
		Path string `toml:"path"`
		// Size is the file size in bytes at assembly time.
		Size int64 `toml:"size"`
		// Digest is the BLAKE2b-256 digest of the file contents.
		Digest string `toml:"digest"`
	}
)

// New returns a manifest for one assembly run: fresh run ID, current
// UTC time, current schema.
func New(sdk SDK, binding Binding) *Manifest {
	return &Manifest{
		SchemaVersion: Schema,
		RunID:         uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		SDK:           sdk,
		Binding:       binding,
	}
}

// Add records a compiled library under its bundle-relative path.
func (m *Manifest) Add(t triple.Triple, relPath string, size int64, d digest.Digest) {
	m.Binaries = append(m.Binaries, Binary{
		Triple: t.String(),
		Path:   filepath.ToSlash(relPath),
		Size:   size,
		Digest: string(d),
	})
}

// Binary returns the record for t.
func (m *Manifest) Binary(t triple.Triple) (Binary, bool) {
	for _, b := range m.Binaries {
		if b.Triple == t.String() {
			return b, true
		}
	}
	return Binary{}, false
}

// Missing returns the declared triples without a binary record,
// preserving declared order.
func (m *Manifest) Missing(declared []triple.Triple) []triple.Triple {
	var missing []triple.Triple
	for _, t := range declared {
		if _, ok := m.Binary(t); !ok {
			missing = append(missing, t)
		}
	}
	return missing
}

// VerifyBinaries re-hashes every recorded binary under root and
// compares against the recorded digest, catching bundles modified
// after assembly.
func (m *Manifest) VerifyBinaries(root string) error {
	for _, b := range m.Binaries {
		path := filepath.Join(root, filepath.FromSlash(b.Path))
		got, err := digest.File(path)
		if err != nil {
			return fmt.Errorf("verifying %s: %w", b.Path, err)
		}
		if got != digest.Digest(b.Digest) {
			return &DigestMismatchError{Path: b.Path, Want: digest.Digest(b.Digest), Got: got}
		}
	}
	return nil
}

// Write marshals the manifest to <dir>/svbind-manifest.toml. Binary
// records are sorted by triple so the file is stable for a given
// binary set.
func (m *Manifest) Write(dir string) error {
	slices.SortFunc(m.Binaries, func(a, b Binary) int {
		return strings.Compare(a.Triple, b.Triple)
	})

	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// Read loads and validates the manifest at <dir>/svbind-manifest.toml.
func Read(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := m.validate(path); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate(path string) error {
	var fieldErrs []error

	if m.SchemaVersion != Schema {
		fieldErrs = append(fieldErrs,
			fmt.Errorf("schema %d not supported (want %d)", m.SchemaVersion, Schema))
	}
	if _, err := uuid.Parse(m.RunID); err != nil {
		fieldErrs = append(fieldErrs, fmt.Errorf("run_id: %w", err))
	}
	if m.CreatedAt.IsZero() {
		fieldErrs = append(fieldErrs, errors.New("created_at missing"))
	}
	if m.SDK.LibName == "" {
		fieldErrs = append(fieldErrs, errors.New("sdk.lib_name missing"))
	}
	if m.Binding.Language == "" {
		fieldErrs = append(fieldErrs, errors.New("binding.language missing"))
	}
	if err := digest.Digest(m.Binding.SymbolDigest).Validate(); err != nil {
		fieldErrs = append(fieldErrs, fmt.Errorf("binding.symbol_digest: %w", err))
	}

	seen := make(map[string]bool, len(m.Binaries))
	for i, b := range m.Binaries {
		if _, err := triple.Parse(b.Triple); err != nil {
			fieldErrs = append(fieldErrs, fmt.Errorf("binaries[%d]: %w", i, err))
		} else if seen[b.Triple] {
			fieldErrs = append(fieldErrs, fmt.Errorf("binaries[%d]: duplicate record for %s", i, b.Triple))
		}
		seen[b.Triple] = true

		if !relBundlePath(b.Path) {
			fieldErrs = append(fieldErrs, fmt.Errorf("binaries[%d]: path %q is not bundle-relative", i, b.Path))
		}
		if err := digest.Digest(b.Digest).Validate(); err != nil {
			fieldErrs = append(fieldErrs, fmt.Errorf("binaries[%d]: %w", i, err))
		}
	}

	if len(fieldErrs) > 0 {
		return &InvalidManifestError{Path: path, FieldErrs: fieldErrs}
	}
	return nil
}

// relBundlePath reports whether p stays inside the bundle: non-empty,
// slash-separated, and not escaping through an absolute or parent path.
func relBundlePath(p string) bool {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return false
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
