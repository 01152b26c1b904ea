// SPDX-License-Identifier: MPL-2.0

package matrix

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"svbind-cli/internal/digest"
	"svbind-cli/internal/issue"
	"svbind-cli/internal/svfile"
	"svbind-cli/internal/toolchain"
	"svbind-cli/pkg/fspath"
	"svbind-cli/pkg/triple"
)

// Compiler compiles one triple at a time. *toolchain.Builder is the real
// implementation; tests substitute a fake.
type Compiler interface {
	// Preflight verifies the toolchain can build every given triple.
	Preflight(ctx context.Context, triples []triple.Triple) error
	// Build compiles one triple. Safe for concurrent calls.
	Build(ctx context.Context, req toolchain.BuildRequest) error
}

// Request describes one matrix run: one crate compiled for a set of triples
// under a single profile.
type Request struct {
	// CrateDir is the host directory holding the crate's Cargo.toml.
	CrateDir string
	// Crate describes the crate as read from its manifest.
	Crate *svfile.CrateInfo
	// LibName is the library name bundles ship and bindings load. Empty
	// falls back to the crate's own compiled name.
	LibName string
	// Profile selects the cargo profile for every triple.
	Profile svfile.Profile
	// Triples lists the targets to compile, one build each.
	Triples []triple.Triple
	// OutDir is the project output root. The matrix owns the build/ and
	// cargo/ subtrees underneath it.
	OutDir string
	// ExtraArgs are appended verbatim to every cargo invocation.
	ExtraArgs []string
	// Jobs caps each cargo invocation's parallelism (0 lets cargo decide).
	Jobs int
	// Locked passes --locked when the crate has a lockfile.
	Locked bool
	// Stdout and Stderr receive the builds' output. Output is buffered per
	// triple and written whole when that build finishes, so parallel builds
	// do not interleave.
	Stdout io.Writer
	Stderr io.Writer
}

// Validate checks the request fields.
func (r Request) Validate() error {
	var errs []error
	if r.CrateDir == "" {
		errs = append(errs, errors.New("crate dir must not be empty"))
	}
	if r.Crate == nil {
		errs = append(errs, errors.New("crate info must not be nil"))
	}
	if !r.Profile.IsValid() {
		errs = append(errs, fmt.Errorf("invalid build profile %q", r.Profile))
	}
	if r.OutDir == "" {
		errs = append(errs, errors.New("output dir must not be empty"))
	}
	if len(r.Triples) == 0 {
		errs = append(errs, errors.New("at least one triple must be declared"))
	}
	seen := make(map[triple.Triple]bool, len(r.Triples))
	for _, t := range r.Triples {
		if err := t.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[t] {
			errs = append(errs, fmt.Errorf("duplicate triple %s", t))
		}
		seen[t] = true
	}
	if r.Jobs < 0 {
		errs = append(errs, fmt.Errorf("invalid job count %d", r.Jobs))
	}
	if len(errs) > 0 {
		return &InvalidRequestError{FieldErrs: errs}
	}
	return nil
}

// libName resolves the published library name.
func (r Request) libName() string {
	if r.LibName != "" {
		return r.LibName
	}
	return r.Crate.LibName
}

// Binary is one compiled library, published under the matrix output layout.
type Binary struct {
	// Triple the binary was compiled for.
	Triple triple.Triple
	// Path is the absolute path of the published library file.
	Path string
	// Size is the file size in bytes.
	Size int64
	// Digest is the content digest recorded in bundle manifests.
	Digest digest.Digest
}

// Result maps each built triple to its binary. The map form makes
// completeness checkable: a declared triple with no entry means the matrix
// did not finish, and nothing downstream may consume the result.
type Result struct {
	Binaries map[triple.Triple]Binary
}

// Binary returns the compiled binary for t.
func (r *Result) Binary(t triple.Triple) (Binary, bool) {
	b, ok := r.Binaries[t]
	return b, ok
}

// Complete verifies the result holds one binary per declared triple.
func (r *Result) Complete(declared []triple.Triple) error {
	var missing []triple.Triple
	for _, t := range declared {
		if _, ok := r.Binaries[t]; !ok {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return &IncompleteMatrixError{Missing: missing}
	}
	return nil
}

// Sorted returns the binaries in canonical triple order, for deterministic
// manifests and logs.
func (r *Result) Sorted() []Binary {
	out := make([]Binary, 0, len(r.Binaries))
	for _, t := range triple.All() {
		if b, ok := r.Binaries[t]; ok {
			out = append(out, b)
		}
	}
	return out
}

// TripleDir returns the directory one triple's published binary lives in:
// <out>/build/<triple>. The dir is owned exclusively by that triple's build
// and replaced wholesale on every run.
func TripleDir(outDir string, t triple.Triple) string {
	return filepath.Join(outDir, "build", t.String())
}

// cargoTargetDir returns the per-triple cargo work area under
// <out>/cargo/<triple>. It is kept across runs so cargo's incremental
// state is reused; cargo guards its own consistency there.
func cargoTargetDir(outDir string, t triple.Triple) string {
	return filepath.Join(outDir, "cargo", t.String())
}

// artifactFileName returns the library file name for a triple. iOS slices
// (device and simulator) link statically into an XCFramework; every other
// platform ships a shared library loaded at runtime.
func artifactFileName(lib string, t triple.Triple) string {
	if t.OS() == triple.OSIOS || t.OS() == triple.OSIOSSim {
		return t.StaticLibName(lib)
	}
	return t.SharedLibName(lib)
}

// Matrix runs the per-triple builds.
type Matrix struct {
	compiler Compiler
	logger   *log.Logger
}

// Option configures a Matrix.
type Option func(*Matrix)

// WithLogger sets the matrix logger. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(m *Matrix) { m.logger = l }
}

// New creates a Matrix compiling through compiler.
func New(compiler Compiler, opts ...Option) *Matrix {
	m := &Matrix{
		compiler: compiler,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run builds every declared triple and publishes the results. The whole
// toolchain is verified before the first compilation starts, builds run in
// parallel, and the first failure cancels the in-flight rest. On error no
// Result is returned: a partial matrix is not a result.
func (m *Matrix) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := m.compiler.Preflight(ctx, req.Triples); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m.logger.Info("building native matrix",
		"crate", req.Crate.Name, "profile", req.Profile, "triples", len(req.Triples))
	start := time.Now()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		errs     []error
		binaries = make(map[triple.Triple]Binary, len(req.Triples))
	)
	for _, t := range req.Triples {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bin, out, err := m.buildOne(ctx, req, t)

			mu.Lock()
			defer mu.Unlock()
			out.flush(req.Stdout, req.Stderr)
			if err != nil {
				// The first failure cancels the siblings; errors the
				// cancellation itself causes are noise, not findings.
				if ctx.Err() != nil && len(errs) > 0 {
					return
				}
				errs = append(errs, err)
				cancel()
				return
			}
			binaries[t] = bin
		}()
	}
	wg.Wait()

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	m.logger.Info("native matrix complete",
		"triples", len(binaries), "elapsed", time.Since(start).Round(time.Millisecond))
	return &Result{Binaries: binaries}, nil
}

// tripleOutput buffers one build's streams until the build finishes.
type tripleOutput struct {
	stdout bytes.Buffer
	stderr bytes.Buffer
}

// flush writes the buffered streams. Callers hold the collection lock, so
// whole builds never interleave.
func (o *tripleOutput) flush(stdout, stderr io.Writer) {
	if stdout != nil && o.stdout.Len() > 0 {
		_, _ = stdout.Write(o.stdout.Bytes())
	}
	if stderr != nil && o.stderr.Len() > 0 {
		_, _ = stderr.Write(o.stderr.Bytes())
	}
}

// buildOne compiles a single triple and publishes its artifact under
// TripleDir. The artifact dir is cleared first: a failed or interrupted
// run may have left files behind, and the layout is replaced, never merged.
func (m *Matrix) buildOne(ctx context.Context, req Request, t triple.Triple) (Binary, *tripleOutput, error) {
	out := &tripleOutput{}

	artifactDir := TripleDir(req.OutDir, t)
	if err := os.RemoveAll(artifactDir); err != nil {
		return Binary{}, out, fmt.Errorf("clearing %s: %w", artifactDir, err)
	}
	if err := os.MkdirAll(artifactDir, 0o755); err != nil {
		return Binary{}, out, fmt.Errorf("creating %s: %w", artifactDir, err)
	}
	targetDir := cargoTargetDir(req.OutDir, t)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return Binary{}, out, fmt.Errorf("creating %s: %w", targetDir, err)
	}

	m.logger.Info("building", "triple", t)
	start := time.Now()

	err := m.compiler.Build(ctx, toolchain.BuildRequest{
		CrateDir:  req.CrateDir,
		Crate:     req.Crate,
		Triple:    t,
		Profile:   req.Profile,
		TargetDir: targetDir,
		ExtraArgs: req.ExtraArgs,
		Jobs:      req.Jobs,
		Locked:    req.Locked,
		Stdout:    &out.stdout,
		Stderr:    &out.stderr,
	})
	if err != nil {
		return Binary{}, out, err
	}

	bin, err := m.publish(req, t, targetDir)
	if err != nil {
		return Binary{}, out, err
	}

	m.logger.Info("built", "triple", t,
		"lib", filepath.Base(bin.Path), "elapsed", time.Since(start).Round(time.Millisecond))
	return bin, out, nil
}

// publish copies the compiled library out of cargo's target dir into the
// triple's artifact dir, renaming it to the published library name, and
// records its size and digest.
func (m *Matrix) publish(req Request, t triple.Triple, targetDir string) (Binary, error) {
	produced := filepath.Join(
		toolchain.CargoOutputDir(targetDir, t, req.Profile),
		artifactFileName(req.Crate.LibName, t),
	)
	if _, err := os.Stat(produced); err != nil {
		if os.IsNotExist(err) {
			return Binary{}, artifactError(&ArtifactNotFoundError{Triple: t, Path: produced})
		}
		return Binary{}, fmt.Errorf("checking %s artifact: %w", t, err)
	}

	dest := filepath.Join(TripleDir(req.OutDir, t), artifactFileName(req.libName(), t))
	if err := fspath.CopyFile(produced, dest); err != nil {
		return Binary{}, fmt.Errorf("publishing %s artifact: %w", t, err)
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		return Binary{}, fmt.Errorf("publishing %s artifact: %w", t, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Binary{}, fmt.Errorf("publishing %s artifact: %w", t, err)
	}
	dg, err := digest.File(abs)
	if err != nil {
		return Binary{}, fmt.Errorf("publishing %s artifact: %w", t, err)
	}

	return Binary{Triple: t, Path: abs, Size: info.Size(), Digest: dg}, nil
}

// artifactError wraps a missing compiled library in an actionable error.
func artifactError(cause *ArtifactNotFoundError) error {
	return issue.NewErrorContext().
		WithOperation(fmt.Sprintf("publishing the %s library", cause.Triple)).
		WithSuggestions(
			`Declare crate-type = ["cdylib", "staticlib"] in the crate's [lib] table`,
			"Check svbind.toml cdylib_name if the crate renames its library",
		).
		Wrap(cause).
		BuildError()
}
