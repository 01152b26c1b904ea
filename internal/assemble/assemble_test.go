// SPDX-License-Identifier: MPL-2.0

package assemble

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"svbind-cli/internal/bindgen"
	"svbind-cli/internal/digest"
	"svbind-cli/internal/manifest"
	"svbind-cli/internal/matrix"
	"svbind-cli/internal/symbols"
	"svbind-cli/internal/toolchain"
	"svbind-cli/pkg/iface"
	"svbind-cli/pkg/triple"
)

// assembleDefinition is the minimal interface definition the assembly
// tests generate bindings from.
const assembleDefinition = `
namespace: "vaultkit"
version:   "1.0.0"

functions: [
	{name: "lib_version", doc: "Reports the embedded SDK version.", returns: "string"},
]
`

func testArtifact(t *testing.T, lang bindgen.Language) *bindgen.Artifact {
	t.Helper()

	def, err := iface.ParseBytes([]byte(assembleDefinition), "vaultkit.iface.cue")
	if err != nil {
		t.Fatalf("ParseBytes error = %v", err)
	}
	art, err := bindgen.Generate(def, lang, bindgen.Options{})
	if err != nil {
		t.Fatalf("Generate(%s) error = %v", lang, err)
	}
	return art
}

// fakeResult writes one fake library file per triple, under the matrix
// output layout, and returns the result describing them.
func fakeResult(t *testing.T, lib string, triples ...triple.Triple) *matrix.Result {
	t.Helper()

	dir := t.TempDir()
	res := &matrix.Result{Binaries: make(map[triple.Triple]matrix.Binary, len(triples))}
	for _, tr := range triples {
		name := tr.SharedLibName(lib)
		if tr.OS() == triple.OSIOS || tr.OS() == triple.OSIOSSim {
			name = tr.StaticLibName(lib)
		}
		path := filepath.Join(matrix.TripleDir(dir, tr), name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll error = %v", err)
		}
		data := []byte("native code for " + tr.String())
		if err := os.WriteFile(path, data, 0o755); err != nil {
			t.Fatalf("WriteFile error = %v", err)
		}
		res.Binaries[tr] = matrix.Binary{
			Triple: tr,
			Path:   path,
			Size:   int64(len(data)),
			Digest: digest.Bytes(data),
		}
	}
	return res
}

// recordingVerifier is a SymbolVerifier recording every checked path.
type recordingVerifier struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (v *recordingVerifier) verify(path string, _ []string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.paths = append(v.paths, path)
	return v.err
}

// fakeRunner stands in for the host toolchain runner. lipo invocations
// concatenate their input files into the output; xcodebuild invocations
// create the output framework directory, like the real tools do.
type fakeRunner struct {
	mu   sync.Mutex
	invs []toolchain.Invocation
	fail map[string]string // tool name -> stderr line before exit 1
}

func (f *fakeRunner) Name() string    { return "fake" }
func (f *fakeRunner) Available() bool { return true }

func (f *fakeRunner) Run(_ context.Context, inv toolchain.Invocation) *toolchain.Result {
	f.mu.Lock()
	f.invs = append(f.invs, inv)
	f.mu.Unlock()

	if msg, ok := f.fail[inv.Tool]; ok {
		fmt.Fprintln(inv.Stderr, msg)
		return toolchain.NewExitCodeResult(1)
	}

	switch inv.Tool {
	case "lipo":
		var merged []byte
		for _, arg := range inv.Args[1:] {
			if arg == "-output" {
				break
			}
			data, err := os.ReadFile(arg)
			if err != nil {
				return toolchain.NewErrorResult(1, err)
			}
			merged = append(merged, data...)
		}
		if err := os.WriteFile(argAfter(inv.Args, "-output"), merged, 0o755); err != nil {
			return toolchain.NewErrorResult(1, err)
		}
	case "xcodebuild":
		out := argAfter(inv.Args, "-output")
		if err := os.MkdirAll(out, 0o755); err != nil {
			return toolchain.NewErrorResult(1, err)
		}
		if err := os.WriteFile(filepath.Join(out, "Info.plist"), []byte("plist"), 0o644); err != nil {
			return toolchain.NewErrorResult(1, err)
		}
	}
	return toolchain.NewExitCodeResult(0)
}

// invocations returns the recorded invocations of one tool.
func (f *fakeRunner) invocations(tool string) []toolchain.Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []toolchain.Invocation
	for _, inv := range f.invs {
		if inv.Tool == tool {
			out = append(out, inv)
		}
	}
	return out
}

// argAfter returns the argument following flag, or "".
func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func TestAssembleAndroid(t *testing.T) {
	t.Parallel()

	triples := []triple.Triple{
		triple.AndroidArm64, triple.AndroidArm, triple.AndroidX86_64, triple.AndroidX86,
	}
	verifier := &recordingVerifier{}
	asm := New(&fakeRunner{}, WithSymbolVerifier(verifier.verify))
	art := testArtifact(t, bindgen.LangKotlin)

	outDir := t.TempDir()
	bundle, err := asm.Run(context.Background(), Request{
		Platform: triple.PlatformAndroid,
		Triples:  triples,
		Result:   fakeResult(t, "vaultkit", triples...),
		Artifact: art,
		SDK:      manifest.SDK{Name: "vaultkit-sdk", Version: "1.0.0", LibName: "vaultkit"},
		LibName:  "vaultkit",
		OutDir:   outDir,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if want := filepath.Join(outDir, "bundle", "android"); bundle.Dir != want {
		t.Errorf("Dir = %q, want %q", bundle.Dir, want)
	}

	// One shared library per declared ABI, bytes preserved.
	for _, tr := range triples {
		abi, err := tr.AndroidABI()
		if err != nil {
			t.Fatalf("AndroidABI(%s) error = %v", tr, err)
		}
		libPath := filepath.Join(bundle.Dir, "jniLibs", abi, "libvaultkit.so")
		data, err := os.ReadFile(libPath)
		if err != nil {
			t.Fatalf("reading %s: %v", libPath, err)
		}
		if want := "native code for " + tr.String(); string(data) != want {
			t.Errorf("%s holds %q, want %q", libPath, data, want)
		}
	}

	// Kotlin sources land beside the libraries.
	kt := filepath.Join(bundle.Dir, "kotlin", "com", "vaultkit", "Vaultkit.kt")
	if _, err := os.Stat(kt); err != nil {
		t.Errorf("kotlin source missing: %v", err)
	}

	// Every binary was symbol-checked before assembly.
	if got := len(verifier.paths); got != len(triples) {
		t.Errorf("verified %d binaries, want %d", got, len(triples))
	}

	// The written manifest round-trips and matches the bundle contents.
	man, err := manifest.Read(bundle.Dir)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if man.Binding.Language != "kotlin" {
		t.Errorf("Language = %q, want %q", man.Binding.Language, "kotlin")
	}
	if want := string(art.SymbolDigest()); man.Binding.SymbolDigest != want {
		t.Errorf("SymbolDigest = %q, want %q", man.Binding.SymbolDigest, want)
	}
	if got := len(man.Binaries); got != len(triples) {
		t.Fatalf("manifest records %d binaries, want %d", got, len(triples))
	}
	rec, ok := man.Binary(triple.AndroidArm64)
	if !ok {
		t.Fatal("manifest has no record for aarch64-linux-android")
	}
	if want := "jniLibs/arm64-v8a/libvaultkit.so"; rec.Path != want {
		t.Errorf("Path = %q, want %q", rec.Path, want)
	}
	if err := man.VerifyBinaries(bundle.Dir); err != nil {
		t.Errorf("VerifyBinaries() error = %v", err)
	}
}

func TestAssembleReplacesPreviousBundle(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	stale := filepath.Join(outDir, "bundle", "android", "jniLibs", "mips", "libold.so")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatalf("MkdirAll error = %v", err)
	}
	if err := os.WriteFile(stale, []byte("stale"), 0o644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}

	asm := New(&fakeRunner{}, WithSymbolVerifier(func(string, []string) error { return nil }))
	_, err := asm.Run(context.Background(), Request{
		Platform: triple.PlatformAndroid,
		Triples:  []triple.Triple{triple.AndroidArm64},
		Result:   fakeResult(t, "vaultkit", triple.AndroidArm64),
		Artifact: testArtifact(t, bindgen.LangKotlin),
		SDK:      manifest.SDK{Name: "vaultkit-sdk", LibName: "vaultkit"},
		LibName:  "vaultkit",
		OutDir:   outDir,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if _, err := os.Stat(stale); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("stale file survived reassembly: %v", err)
	}
}

func TestAssembleFailsBeforeWritingOnIncompleteMatrix(t *testing.T) {
	t.Parallel()

	asm := New(&fakeRunner{}, WithSymbolVerifier(func(string, []string) error { return nil }))
	outDir := t.TempDir()
	_, err := asm.Run(context.Background(), Request{
		Platform: triple.PlatformAndroid,
		Triples:  []triple.Triple{triple.AndroidArm64, triple.AndroidX86_64},
		Result:   fakeResult(t, "vaultkit", triple.AndroidArm64),
		Artifact: testArtifact(t, bindgen.LangKotlin),
		SDK:      manifest.SDK{Name: "vaultkit-sdk", LibName: "vaultkit"},
		LibName:  "vaultkit",
		OutDir:   outDir,
	})
	if !errors.Is(err, matrix.ErrIncompleteMatrix) {
		t.Fatalf("error = %v, want ErrIncompleteMatrix", err)
	}

	if _, err := os.Stat(filepath.Join(outDir, "bundle")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("bundle output exists after failed completeness check: %v", err)
	}
}

func TestAssembleFailsBeforeWritingOnSymbolMismatch(t *testing.T) {
	t.Parallel()

	verifier := &recordingVerifier{err: &symbols.MissingSymbolsError{
		Path:    "libvaultkit.so",
		Missing: []string{"vaultkit_lib_version"},
	}}
	asm := New(&fakeRunner{}, WithSymbolVerifier(verifier.verify))

	outDir := t.TempDir()
	_, err := asm.Run(context.Background(), Request{
		Platform: triple.PlatformAndroid,
		Triples:  []triple.Triple{triple.AndroidArm64},
		Result:   fakeResult(t, "vaultkit", triple.AndroidArm64),
		Artifact: testArtifact(t, bindgen.LangKotlin),
		SDK:      manifest.SDK{Name: "vaultkit-sdk", LibName: "vaultkit"},
		LibName:  "vaultkit",
		OutDir:   outDir,
	})
	if !errors.Is(err, symbols.ErrMissingSymbols) {
		t.Fatalf("error = %v, want ErrMissingSymbols", err)
	}
	if !strings.Contains(err.Error(), "aarch64-linux-android") {
		t.Errorf("error %q does not name the failing triple", err)
	}

	if _, err := os.Stat(filepath.Join(outDir, "bundle")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("bundle output exists after failed symbol check: %v", err)
	}
}

func TestAssembleApple(t *testing.T) {
	t.Parallel()

	triples := []triple.Triple{
		triple.IOSDevice, triple.IOSSimArm64, triple.IOSSimX86_64, triple.MacArm64,
	}
	runner := &fakeRunner{}
	asm := New(runner, WithSymbolVerifier(func(string, []string) error { return nil }))

	outDir := t.TempDir()
	bundle, err := asm.Run(context.Background(), Request{
		Platform: triple.PlatformApple,
		Triples:  triples,
		Result:   fakeResult(t, "vaultkit", triples...),
		Artifact: testArtifact(t, bindgen.LangSwift),
		SDK:      manifest.SDK{Name: "vaultkit-sdk", Version: "1.0.0", LibName: "vaultkit"},
		LibName:  "vaultkit",
		OutDir:   outDir,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	dir := bundle.Dir

	// Per-triple libraries stay staged under libs/ and are what the
	// manifest records.
	staged := map[triple.Triple]string{
		triple.IOSDevice:    "libs/aarch64-apple-ios/libvaultkit.a",
		triple.IOSSimArm64:  "libs/aarch64-apple-ios-sim/libvaultkit.a",
		triple.IOSSimX86_64: "libs/x86_64-apple-ios/libvaultkit.a",
		triple.MacArm64:     "libs/aarch64-apple-darwin/libvaultkit.dylib",
	}
	for tr, rel := range staged {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
			t.Errorf("staged library for %s missing: %v", tr, err)
		}
		rec, ok := bundle.Manifest.Binary(tr)
		if !ok {
			t.Fatalf("manifest has no record for %s", tr)
		}
		if rec.Path != rel {
			t.Errorf("manifest path for %s = %q, want %q", tr, rec.Path, rel)
		}
	}
	if err := bundle.Manifest.VerifyBinaries(dir); err != nil {
		t.Errorf("VerifyBinaries() error = %v", err)
	}

	// The two simulator architectures were merged with lipo, in
	// canonical order.
	lipos := runner.invocations("lipo")
	if len(lipos) != 1 {
		t.Fatalf("lipo ran %d times, want 1", len(lipos))
	}
	wantLipo := []string{
		"-create",
		filepath.Join(dir, "libs", "aarch64-apple-ios-sim", "libvaultkit.a"),
		filepath.Join(dir, "libs", "x86_64-apple-ios", "libvaultkit.a"),
		"-output", filepath.Join(dir, "merged", "ios-sim", "libvaultkit.a"),
	}
	if !slices.Equal(lipos[0].Args, wantLipo) {
		t.Errorf("lipo args = %q, want %q", lipos[0].Args, wantLipo)
	}

	// xcodebuild got one slice per OS family, device first, each with
	// the generated headers.
	xcs := runner.invocations("xcodebuild")
	if len(xcs) != 1 {
		t.Fatalf("xcodebuild ran %d times, want 1", len(xcs))
	}
	headers := filepath.Join(dir, "swift", "include")
	wantXC := []string{
		"-create-xcframework",
		"-library", filepath.Join(dir, "libs", "aarch64-apple-ios", "libvaultkit.a"), "-headers", headers,
		"-library", filepath.Join(dir, "merged", "ios-sim", "libvaultkit.a"), "-headers", headers,
		"-library", filepath.Join(dir, "libs", "aarch64-apple-darwin", "libvaultkit.dylib"), "-headers", headers,
		"-output", filepath.Join(dir, "vaultkitFFI.xcframework"),
	}
	if !slices.Equal(xcs[0].Args, wantXC) {
		t.Errorf("xcodebuild args = %q, want %q", xcs[0].Args, wantXC)
	}

	// The framework exists, the merge staging dir does not.
	if _, err := os.Stat(filepath.Join(dir, "vaultkitFFI.xcframework", "Info.plist")); err != nil {
		t.Errorf("xcframework missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "merged")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("merge staging dir survived assembly: %v", err)
	}

	// Swift sources and the C header land under swift/.
	for _, rel := range []string{"Vaultkit.swift", "include/vaultkitFFI.h", "include/module.modulemap"} {
		if _, err := os.Stat(filepath.Join(dir, "swift", filepath.FromSlash(rel))); err != nil {
			t.Errorf("swift source %s missing: %v", rel, err)
		}
	}
}

func TestAssembleAppleSingleSliceSkipsLipo(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	asm := New(runner, WithSymbolVerifier(func(string, []string) error { return nil }))

	bundle, err := asm.Run(context.Background(), Request{
		Platform: triple.PlatformApple,
		Triples:  []triple.Triple{triple.IOSDevice},
		Result:   fakeResult(t, "vaultkit", triple.IOSDevice),
		Artifact: testArtifact(t, bindgen.LangSwift),
		SDK:      manifest.SDK{Name: "vaultkit-sdk", LibName: "vaultkit"},
		LibName:  "vaultkit",
		OutDir:   t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if lipos := runner.invocations("lipo"); len(lipos) != 0 {
		t.Errorf("lipo ran %d times for a single-arch slice, want 0", len(lipos))
	}
	xcs := runner.invocations("xcodebuild")
	if len(xcs) != 1 {
		t.Fatalf("xcodebuild ran %d times, want 1", len(xcs))
	}
	wantLib := filepath.Join(bundle.Dir, "libs", "aarch64-apple-ios", "libvaultkit.a")
	if got := argAfter(xcs[0].Args, "-library"); got != wantLib {
		t.Errorf("-library = %q, want staged path %q", got, wantLib)
	}
}

func TestAssembleAppleLipoFailure(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{fail: map[string]string{"lipo": "can't open input file"}}
	asm := New(runner, WithSymbolVerifier(func(string, []string) error { return nil }))

	_, err := asm.Run(context.Background(), Request{
		Platform: triple.PlatformApple,
		Triples:  []triple.Triple{triple.IOSSimArm64, triple.IOSSimX86_64},
		Result:   fakeResult(t, "vaultkit", triple.IOSSimArm64, triple.IOSSimX86_64),
		Artifact: testArtifact(t, bindgen.LangSwift),
		SDK:      manifest.SDK{Name: "vaultkit-sdk", LibName: "vaultkit"},
		LibName:  "vaultkit",
		OutDir:   t.TempDir(),
	})
	if err == nil {
		t.Fatal("Run() succeeded with failing lipo")
	}
	for _, want := range []string{"merge", "can't open input file"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not contain %q", err, want)
		}
	}
	if xcs := runner.invocations("xcodebuild"); len(xcs) != 0 {
		t.Errorf("xcodebuild ran %d times after lipo failed, want 0", len(xcs))
	}
}

func TestAssemblePython(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	asm := New(runner, WithSymbolVerifier(func(string, []string) error { return nil }))

	outDir := t.TempDir()
	bundle, err := asm.Run(context.Background(), Request{
		Platform: triple.PlatformPython,
		Triples:  []triple.Triple{triple.LinuxX86_64},
		Result:   fakeResult(t, "vaultkit", triple.LinuxX86_64),
		Artifact: testArtifact(t, bindgen.LangPython),
		SDK:      manifest.SDK{Name: "vaultkit-sdk", Version: "1.0.0", LibName: "vaultkit"},
		LibName:  "vaultkit",
		OutDir:   outDir,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// The package holds the generated module and the host library side
	// by side, where the loader looks first.
	for _, rel := range []string{"vaultkit/__init__.py", "vaultkit/libvaultkit.so"} {
		if _, err := os.Stat(filepath.Join(bundle.Dir, filepath.FromSlash(rel))); err != nil {
			t.Errorf("bundle file %s missing: %v", rel, err)
		}
	}

	rec, ok := bundle.Manifest.Binary(triple.LinuxX86_64)
	if !ok {
		t.Fatal("manifest has no record for x86_64-unknown-linux-gnu")
	}
	if want := "vaultkit/libvaultkit.so"; rec.Path != want {
		t.Errorf("Path = %q, want %q", rec.Path, want)
	}
	if err := bundle.Manifest.VerifyBinaries(bundle.Dir); err != nil {
		t.Errorf("VerifyBinaries() error = %v", err)
	}

	// Pure file layout; no host tools involved.
	if len(runner.invs) != 0 {
		t.Errorf("runner saw %d invocations, want 0", len(runner.invs))
	}
}

func TestRequestValidate(t *testing.T) {
	t.Parallel()

	valid := func() Request {
		return Request{
			Platform: triple.PlatformAndroid,
			Triples:  []triple.Triple{triple.AndroidArm64},
			Result:   &matrix.Result{},
			Artifact: &bindgen.Artifact{Language: bindgen.LangKotlin},
			LibName:  "vaultkit",
			OutDir:   "out",
		}
	}

	tests := []struct {
		name   string
		mutate func(r *Request)
		want   string
	}{
		{
			name:   "unknown platform",
			mutate: func(r *Request) { r.Platform = "windows" },
			want:   "invalid platform family",
		},
		{
			name:   "no triples",
			mutate: func(r *Request) { r.Triples = nil },
			want:   "at least one",
		},
		{
			name:   "unknown triple",
			mutate: func(r *Request) { r.Triples = append(r.Triples, "riscv64gc-unknown-none-elf") },
			want:   "unknown target triple",
		},
		{
			name:   "duplicate triple",
			mutate: func(r *Request) { r.Triples = append(r.Triples, triple.AndroidArm64) },
			want:   "duplicate target triple",
		},
		{
			name:   "foreign triple",
			mutate: func(r *Request) { r.Triples = append(r.Triples, triple.LinuxX86_64) },
			want:   "does not belong to the android platform",
		},
		{
			name: "python multi triple",
			mutate: func(r *Request) {
				r.Platform = triple.PlatformPython
				r.Triples = []triple.Triple{triple.LinuxX86_64, triple.MacArm64}
				r.Artifact.Language = bindgen.LangPython
			},
			want: "exactly one host triple",
		},
		{
			name:   "nil result",
			mutate: func(r *Request) { r.Result = nil },
			want:   "build result",
		},
		{
			name:   "nil artifact",
			mutate: func(r *Request) { r.Artifact = nil },
			want:   "binding artifact",
		},
		{
			name:   "language mismatch",
			mutate: func(r *Request) { r.Artifact.Language = bindgen.LangSwift },
			want:   "android bundles carry kotlin bindings, got swift",
		},
		{
			name:   "empty lib name",
			mutate: func(r *Request) { r.LibName = "" },
			want:   "library name",
		},
		{
			name:   "empty out dir",
			mutate: func(r *Request) { r.OutDir = "" },
			want:   "output directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := valid()
			tt.mutate(&req)
			err := req.Validate()
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("error = %v, want ErrInvalidRequest", err)
			}
			var reqErr *InvalidRequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("error = %v, want *InvalidRequestError", err)
			}
			found := false
			for _, fieldErr := range reqErr.FieldErrs {
				if strings.Contains(fieldErr.Error(), tt.want) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("field errors %v do not mention %q", reqErr.FieldErrs, tt.want)
			}
		})
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("Validate() on valid request = %v", err)
	}
}
