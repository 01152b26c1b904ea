// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"svbind-cli/pkg/triple"
)

func TestRunPipelineAndroid(t *testing.T) {
	t.Parallel()

	proj, err := loadProjectFrom(scaffoldProject(t))
	if err != nil {
		t.Fatalf("loadProjectFrom() error = %v", err)
	}
	tc := &fakeToolchain{}
	app, _, _ := testApp(tc)

	cfg, err := app.loadMachineConfig(context.Background())
	if err != nil {
		t.Fatalf("loadMachineConfig() error = %v", err)
	}
	outcome, err := app.runPipeline(context.Background(), cfg, proj, triple.PlatformAndroid)
	if err != nil {
		t.Fatalf("runPipeline() error = %v", err)
	}

	want := []triple.Triple{triple.AndroidArm64, triple.AndroidArm}
	if len(outcome.Triples) != len(want) {
		t.Fatalf("Triples = %v, want %v", outcome.Triples, want)
	}
	for _, tr := range want {
		bin, ok := outcome.Result.Binaries[tr]
		if !ok {
			t.Errorf("no binary for %s", tr)
			continue
		}
		if _, err := os.Stat(bin.Path); err != nil {
			t.Errorf("published binary %s: %v", bin.Path, err)
		}
		if wantName := tr.SharedLibName("smartvaults_sdk_ffi"); filepath.Base(bin.Path) != wantName {
			t.Errorf("binary name = %s, want %s", filepath.Base(bin.Path), wantName)
		}
	}
	if built := tc.builtTriples(); len(built) != len(want) {
		t.Errorf("compiler built %v, want %d triples", built, len(want))
	}

	// The Kotlin sources must be on disk, under the language's bindings dir.
	entries, err := os.ReadDir(outcome.BindingsDir)
	if err != nil {
		t.Fatalf("ReadDir(%s) error = %v", outcome.BindingsDir, err)
	}
	if len(entries) == 0 {
		t.Error("bindings dir is empty")
	}
	wantDir := filepath.Join(proj.Svfile.OutPath(), "bindings", "kotlin")
	if outcome.BindingsDir != wantDir {
		t.Errorf("BindingsDir = %s, want %s", outcome.BindingsDir, wantDir)
	}
}

func TestRunPipelineUndeclaredPlatform(t *testing.T) {
	t.Parallel()

	proj, err := loadProjectFrom(scaffoldProject(t))
	if err != nil {
		t.Fatalf("loadProjectFrom() error = %v", err)
	}
	tc := &fakeToolchain{}
	app, _, _ := testApp(tc)

	cfg, err := app.loadMachineConfig(context.Background())
	if err != nil {
		t.Fatalf("loadMachineConfig() error = %v", err)
	}
	_, err = app.runPipeline(context.Background(), cfg, proj, triple.PlatformApple)
	if err == nil {
		t.Fatal("runPipeline(apple) error = nil, want undeclared-platform failure")
	}
	if len(tc.builtTriples()) != 0 {
		t.Errorf("compiler built %v, want no builds for undeclared platform", tc.builtTriples())
	}
}

// A failed matrix run must leave no bindings behind: generation happens in
// memory first and only lands after every triple compiled.
func TestRunPipelineFailureWritesNoBindings(t *testing.T) {
	t.Parallel()

	proj, err := loadProjectFrom(scaffoldProject(t))
	if err != nil {
		t.Fatalf("loadProjectFrom() error = %v", err)
	}
	buildErr := errors.New("linker not found")
	tc := &fakeToolchain{failTriple: triple.AndroidArm, failErr: buildErr}
	app, _, _ := testApp(tc)

	cfg, err := app.loadMachineConfig(context.Background())
	if err != nil {
		t.Fatalf("loadMachineConfig() error = %v", err)
	}
	_, err = app.runPipeline(context.Background(), cfg, proj, triple.PlatformAndroid)
	if err == nil {
		t.Fatal("runPipeline() error = nil, want build failure")
	}
	if !errors.Is(err, buildErr) {
		t.Errorf("error = %v, want wrapped %v", err, buildErr)
	}

	bindings := filepath.Join(proj.Svfile.OutPath(), "bindings")
	if _, statErr := os.Stat(bindings); !os.IsNotExist(statErr) {
		t.Errorf("bindings dir exists after failed run (stat err = %v)", statErr)
	}
}

func TestAcquireBuildLockHeld(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	lock, err := acquireBuildLock(outDir)
	if err != nil {
		t.Fatalf("acquireBuildLock() error = %v", err)
	}
	defer lock.Release()

	if _, err := acquireBuildLock(outDir); err == nil {
		t.Error("second acquireBuildLock() error = nil, want held-lock failure")
	}
}
