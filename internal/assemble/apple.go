// SPDX-License-Identifier: MPL-2.0

package assemble

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"svbind-cli/internal/bindgen"
	"svbind-cli/internal/issue"
	"svbind-cli/internal/manifest"
	"svbind-cli/internal/toolchain"
	"svbind-cli/pkg/triple"
)

// appleSliceOrder is the XCFramework slice order: one slice per OS
// family, device before simulator before desktop.
var appleSliceOrder = []string{triple.OSIOS, triple.OSIOSSim, triple.OSMacOS}

// layoutApple writes the Swift package precursor. Per-triple libraries
// are staged under libs/<triple>/ and recorded in the manifest; triples
// sharing an OS family are merged with lipo into a fat library; the
// slices are then joined into <namespace>FFI.xcframework by xcodebuild,
// with the generated C header and module map as the slice headers.
//
// lipo and xcodebuild only exist on macOS hosts, so Apple assembly runs
// through the host runner rather than a build container.
func (a *Assembler) layoutApple(ctx context.Context, req Request, dir string, man *manifest.Manifest) error {
	if err := req.Artifact.Write(filepath.Join(dir, "swift")); err != nil {
		return fmt.Errorf("writing swift sources: %w", err)
	}

	families := make(map[string][]string, len(appleSliceOrder))
	for _, t := range orderedTriples(req.Triples) {
		bin, _ := req.Result.Binary(t)
		rel := filepath.Join("libs", t.String(), appleLibName(req.LibName, t))
		if err := placeBinary(dir, rel, bin, man); err != nil {
			return err
		}
		families[t.OS()] = append(families[t.OS()], filepath.Join(dir, rel))
	}

	// Fat merges are an intermediate step; the staged per-triple copies
	// stay behind as the manifest's verification targets.
	mergedDir := filepath.Join(dir, "merged")
	defer os.RemoveAll(mergedDir)

	var sliceLibs []string
	for _, family := range appleSliceOrder {
		libs := families[family]
		switch len(libs) {
		case 0:
			continue
		case 1:
			sliceLibs = append(sliceLibs, libs[0])
		default:
			merged := filepath.Join(mergedDir, family, filepath.Base(libs[0]))
			if err := os.MkdirAll(filepath.Dir(merged), 0o755); err != nil {
				return fmt.Errorf("staging %s fat library: %w", family, err)
			}
			args := append([]string{"-create"}, libs...)
			args = append(args, "-output", merged)
			op := fmt.Sprintf("merge %d %s architectures", len(libs), family)
			if err := a.runHostTool(ctx, "lipo", args, op); err != nil {
				return err
			}
			a.logger.Debug("merged fat library", "family", family, "inputs", len(libs))
			sliceLibs = append(sliceLibs, merged)
		}
	}

	ffiModule, err := ffiModuleName(req.Artifact)
	if err != nil {
		return err
	}
	headers := filepath.Join(dir, "swift", "include")
	xcArgs := []string{"-create-xcframework"}
	for _, lib := range sliceLibs {
		xcArgs = append(xcArgs, "-library", lib, "-headers", headers)
	}
	framework := filepath.Join(dir, ffiModule+".xcframework")
	xcArgs = append(xcArgs, "-output", framework)

	if err := a.runHostTool(ctx, "xcodebuild", xcArgs, "create the xcframework"); err != nil {
		return err
	}
	a.logger.Debug("created xcframework", "path", framework, "slices", len(sliceLibs))
	return nil
}

// appleLibName returns the staged library file name for an Apple triple.
// iOS slices link statically into the XCFramework; macOS ships the
// dylib the matrix built.
func appleLibName(lib string, t triple.Triple) string {
	if t.OS() == triple.OSMacOS {
		return t.SharedLibName(lib)
	}
	return t.StaticLibName(lib)
}

// ffiModuleName recovers the clang module name from the generated C
// header, so the XCFramework is named after the module it vends.
func ffiModuleName(art *bindgen.Artifact) (string, error) {
	for _, f := range art.Files {
		if path.Dir(f.Path) == "include" && strings.HasSuffix(f.Path, ".h") {
			return strings.TrimSuffix(path.Base(f.Path), ".h"), nil
		}
	}
	return "", errors.New("swift artifact carries no C header under include/")
}

// runHostTool executes one Apple host tool through the runner, turning
// a failure into an actionable error carrying the tool's output.
func (a *Assembler) runHostTool(ctx context.Context, tool string, args []string, operation string) error {
	a.logger.Debug("running host tool", "tool", tool, "args", strings.Join(args, " "))

	var out bytes.Buffer
	res := a.runner.Run(ctx, toolchain.Invocation{
		Tool:   tool,
		Args:   args,
		Stdout: &out,
		Stderr: &out,
	})

	cause := res.Error
	if cause == nil && !res.ExitCode.IsSuccess() {
		cause = fmt.Errorf("%s exited with code %d: %s", tool, res.ExitCode, strings.TrimSpace(out.String()))
	}
	if cause == nil {
		return nil
	}
	return issue.NewErrorContext().
		WithOperation(operation).
		WithResource(tool).
		WithSuggestions(
			"Install the Xcode command line tools: xcode-select --install",
			"Apple bundles must be assembled on a macOS host; lipo and xcodebuild cannot run inside build containers",
		).
		Wrap(cause).
		BuildError()
}
