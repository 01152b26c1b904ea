// SPDX-License-Identifier: MPL-2.0

package assemble

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"

	"svbind-cli/internal/bindgen"
	"svbind-cli/internal/manifest"
	"svbind-cli/internal/matrix"
	"svbind-cli/internal/symbols"
	"svbind-cli/internal/toolchain"
	"svbind-cli/pkg/fspath"
	"svbind-cli/pkg/triple"
)

// SymbolVerifier checks that the library at path exports every declared
// FFI symbol. symbols.Verify is the production implementation.
type SymbolVerifier func(path string, declared []string) error

// Assembler lays out platform bundles from compiled binaries and
// generated bindings.
type Assembler struct {
	runner toolchain.Runner
	verify SymbolVerifier
	logger *log.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger routes assembly progress to l.
func WithLogger(l *log.Logger) Option {
	return func(a *Assembler) { a.logger = l }
}

// WithSymbolVerifier replaces the native symbol check, for tests.
func WithSymbolVerifier(v SymbolVerifier) Option {
	return func(a *Assembler) { a.verify = v }
}

// New creates an Assembler. The runner executes lipo and xcodebuild for
// Apple bundles; Android and Python assembly never invoke it.
func New(runner toolchain.Runner, opts ...Option) *Assembler {
	a := &Assembler{
		runner: runner,
		verify: symbols.Verify,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Request describes one platform bundle assembly.
type Request struct {
	// Platform selects the bundle layout.
	Platform triple.Platform
	// Triples is the declared matrix for this platform. Every entry must
	// belong to the platform family and have a compiled binary in Result.
	Triples []triple.Triple
	// Result holds the compiled binaries the matrix produced.
	Result *matrix.Result
	// Artifact holds the generated bindings, in the platform's language.
	Artifact *bindgen.Artifact
	// SDK identifies the crate in the bundle manifest.
	SDK manifest.SDK
	// LibName is the published library base name bundle file names
	// derive from, without lib prefix or extension.
	LibName string
	// OutDir is the project output root. The bundle is written under
	// <out>/bundle/<platform>.
	OutDir string
}

// Validate checks the request fields and returns an InvalidRequestError
// listing every problem found.
func (r Request) Validate() error {
	var errs []error

	platformErr := r.Platform.Validate()
	if platformErr != nil {
		errs = append(errs, platformErr)
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
			continue
		}
		seen[t] = true
		if platformErr == nil && !r.Platform.Contains(t) {
			errs = append(errs, fmt.Errorf("triple %s does not belong to the %s platform", t, r.Platform))
		}
	}
	if r.Platform == triple.PlatformPython && len(r.Triples) > 1 {
		errs = append(errs, errors.New("python bundles hold exactly one host triple"))
	}

	if r.Result == nil {
		errs = append(errs, errors.New("build result must not be nil"))
	}
	if r.Artifact == nil {
		errs = append(errs, errors.New("binding artifact must not be nil"))
	} else if platformErr == nil {
		if want, err := bindgen.LanguageFor(r.Platform); err == nil && r.Artifact.Language != want {
			errs = append(errs, fmt.Errorf("%s bundles carry %s bindings, got %s", r.Platform, want, r.Artifact.Language))
		}
	}

	if r.LibName == "" {
		errs = append(errs, errors.New("library name must not be empty"))
	}
	if r.OutDir == "" {
		errs = append(errs, errors.New("output directory must not be empty"))
	}

	if len(errs) > 0 {
		return &InvalidRequestError{FieldErrs: errs}
	}
	return nil
}

// Bundle is one assembled platform bundle on disk.
type Bundle struct {
	// Platform the bundle was assembled for.
	Platform triple.Platform
	// Dir is the bundle root directory.
	Dir string
	// Manifest records the binaries and bindings the bundle holds. The
	// same manifest is written at the bundle root.
	Manifest *manifest.Manifest
}

// BundleDir returns the directory one platform's bundle lives in:
// <out>/bundle/<platform>. The dir is owned exclusively by that
// platform's assembly and replaced wholesale on every run.
func BundleDir(outDir string, p triple.Platform) string {
	return filepath.Join(outDir, "bundle", p.String())
}

// Run assembles one platform bundle and returns it.
//
// Matrix completeness and the symbol contract are checked before the
// previous bundle is touched, so precondition failures never cost an
// existing bundle. The manifest is written last: a bundle directory
// without one is an aborted assembly, and the packager refuses it.
func (a *Assembler) Run(ctx context.Context, req Request) (*Bundle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := req.Result.Complete(req.Triples); err != nil {
		return nil, err
	}
	if err := a.verifyBinaries(req); err != nil {
		return nil, err
	}

	dir := BundleDir(req.OutDir, req.Platform)
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("clearing bundle dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating bundle dir: %w", err)
	}

	a.logger.Info("assembling bundle",
		"platform", req.Platform,
		"triples", len(req.Triples),
		"dir", dir)

	man := manifest.New(req.SDK, manifest.Binding{
		Language:     req.Artifact.Language.String(),
		SymbolDigest: string(req.Artifact.SymbolDigest()),
	})

	var err error
	switch req.Platform {
	case triple.PlatformAndroid:
		err = a.layoutAndroid(req, dir, man)
	case triple.PlatformApple:
		err = a.layoutApple(ctx, req, dir, man)
	case triple.PlatformPython:
		err = a.layoutPython(req, dir, man)
	}
	if err != nil {
		return nil, err
	}

	if err := man.Write(dir); err != nil {
		return nil, err
	}

	a.logger.Info("bundle assembled", "platform", req.Platform, "dir", dir)
	return &Bundle{Platform: req.Platform, Dir: dir, Manifest: man}, nil
}

// verifyBinaries checks every compiled binary against the symbols the
// bindings declare, before any bundle output exists.
func (a *Assembler) verifyBinaries(req Request) error {
	for _, t := range orderedTriples(req.Triples) {
		bin, _ := req.Result.Binary(t)
		a.logger.Debug("verifying exported symbols", "triple", t, "path", bin.Path)
		if err := a.verify(bin.Path, req.Artifact.Symbols); err != nil {
			return fmt.Errorf("verifying %s binary: %w", t, err)
		}
	}
	return nil
}

// orderedTriples returns the declared triples in canonical catalog
// order, so bundle layout and tool invocations are stable regardless of
// declaration order.
func orderedTriples(declared []triple.Triple) []triple.Triple {
	ordered := make([]triple.Triple, 0, len(declared))
	for _, t := range triple.All() {
		if slices.Contains(declared, t) {
			ordered = append(ordered, t)
		}
	}
	return ordered
}

// placeBinary copies one compiled library into the bundle at rel and
// records it in the manifest.
func placeBinary(dir, rel string, bin matrix.Binary, man *manifest.Manifest) error {
	if err := fspath.CopyFile(bin.Path, filepath.Join(dir, rel)); err != nil {
		return fmt.Errorf("staging %s: %w", rel, err)
	}
	man.Add(bin.Triple, rel, bin.Size, bin.Digest)
	return nil
}
