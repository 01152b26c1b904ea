// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"svbind-cli/internal/bindgen"
	"svbind-cli/internal/digest"
	"svbind-cli/internal/manifest"
	"svbind-cli/pkg/triple"
)

// Packager wraps one platform's assembled bundle into the distributable
// shape its host ecosystem consumes. Every implementation shares the
// same precondition contract: the bundle is re-validated from its
// manifest, and nothing is emitted on any disagreement.
type Packager interface {
	// Platform names the bundle family this packager accepts.
	Platform() triple.Platform
	// Package validates the bundle and writes the distributable under
	// req.DistDir, returning what was emitted.
	Package(req Request) (*Package, error)
}

// Request describes one packaging run. The same request shape serves
// every packager; platform-specific knobs live on the packager itself.
type Request struct {
	// BundleDir is the assembled platform bundle to wrap.
	BundleDir string
	// DistDir is the directory distributables are written under.
	DistDir string
	// Triples is the declared set for the platform. The bundle manifest
	// must record exactly these, no more and no fewer.
	Triples []triple.Triple
	// SymbolDigest fingerprints the FFI symbols the current binding
	// artifact declares. The bundle must have been assembled against
	// the same set.
	SymbolDigest digest.Digest
}

// Validate checks the request fields and returns an InvalidRequestError
// listing every problem found.
func (r Request) Validate() error {
	var errs []error

	if r.BundleDir == "" {
		errs = append(errs, errors.New("bundle directory must not be empty"))
	}
	if r.DistDir == "" {
		errs = append(errs, errors.New("dist directory must not be empty"))
	}
	if len(r.Triples) == 0 {
		errs = append(errs, errors.New("at least one target triple must be declared"))
	}
	seen := make(map[triple.Triple]bool, len(r.Triples))
	for _, t := range r.Triples {
		if err := t.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[t] {
			errs = append(errs, fmt.Errorf("duplicate target triple %s", t))
		}
		seen[t] = true
	}
	if err := r.SymbolDigest.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("symbol digest: %w", err))
	}

	if len(errs) > 0 {
		return &InvalidRequestError{FieldErrs: errs}
	}
	return nil
}

// Package is one emitted distributable.
type Package struct {
	// Platform the distributable serves.
	Platform triple.Platform
	// Path is the distributable itself: a file for Android (.aar), a
	// directory for the Swift package and the Python sdist layout.
	Path string
	// Extras are companions emitted beside Path (the Android sources jar).
	Extras []string
}

// validateBundle re-reads the bundle manifest and re-checks every
// packaging precondition: right binding language, exactly the declared
// triples, the symbol set the current bindings declare, and binaries
// whose digests still match their recorded values.
func validateBundle(req Request, lang bindgen.Language) (*manifest.Manifest, error) {
	man, err := manifest.Read(req.BundleDir)
	if err != nil {
		return nil, err
	}

	if man.Binding.Language != lang.String() {
		return nil, fmt.Errorf("bundle at %s holds %s bindings, need %s", req.BundleDir, man.Binding.Language, lang)
	}

	missing := man.Missing(req.Triples)
	extra := extraBinaries(man, req.Triples)
	if len(missing) > 0 || len(extra) > 0 {
		return nil, &IncompleteBundleError{Missing: missing, Extra: extra}
	}

	if man.Binding.SymbolDigest != string(req.SymbolDigest) {
		return nil, &SymbolMismatchError{
			Want: req.SymbolDigest,
			Got:  digest.Digest(man.Binding.SymbolDigest),
		}
	}

	if err := man.VerifyBinaries(req.BundleDir); err != nil {
		return nil, err
	}
	return man, nil
}

// extraBinaries returns bundled triples absent from the declared set.
func extraBinaries(man *manifest.Manifest, declared []triple.Triple) []triple.Triple {
	var extra []triple.Triple
	for _, b := range man.Binaries {
		if !slices.Contains(declared, triple.Triple(b.Triple)) {
			extra = append(extra, triple.Triple(b.Triple))
		}
	}
	return extra
}

// distBaseName is "<name>-<version>" from the bundle manifest, or just
// the crate name when the version is unknown.
func distBaseName(man *manifest.Manifest) string {
	if man.SDK.Version == "" {
		return man.SDK.Name
	}
	return man.SDK.Name + "-" + man.SDK.Version
}

// replaceFile writes a file through a temp sibling and renames it over
// final, so a failed run never leaves a truncated distributable where a
// previous good one stood.
func replaceFile(final string, write func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		return fmt.Errorf("creating dist dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(final), "."+filepath.Base(final)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return fmt.Errorf("moving distributable into place: %w", err)
	}
	return nil
}

// replaceDir builds a directory under a temp sibling and swaps it over
// final. The previous output is removed only after the build succeeded.
func replaceDir(final string, build func(tmp string) error) error {
	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		return fmt.Errorf("creating dist dir: %w", err)
	}
	tmp, err := os.MkdirTemp(filepath.Dir(final), "."+filepath.Base(final)+".*")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	if err := build(tmp); err != nil {
		return err
	}
	if err := os.RemoveAll(final); err != nil {
		return fmt.Errorf("clearing previous distributable: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("moving distributable into place: %w", err)
	}
	return nil
}

// zipBytes adds one archive entry from memory. Headers carry no
// timestamps, so archives are byte-stable across runs.
func zipBytes(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("creating archive entry %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing archive entry %s: %w", name, err)
	}
	return nil
}

// zipFile streams one file into the archive under name.
func zipFile(zw *zip.Writer, name, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer f.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("creating archive entry %s: %w", name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("writing archive entry %s: %w", name, err)
	}
	return nil
}

// writeTreeZip zips the tree rooted at dir, entry names relative to it,
// in lexical walk order.
func writeTreeZip(w io.Writer, dir string) error {
	zw := zip.NewWriter(w)
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		return zipFile(zw, filepath.ToSlash(rel), p)
	})
	if err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
