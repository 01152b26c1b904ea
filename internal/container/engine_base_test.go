// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"svbind-cli/internal/issue"
)

func TestBuildArgs(t *testing.T) {
	t.Parallel()

	e := NewBaseCLIEngine("/usr/bin/podman")

	tests := []struct {
		name string
		opts BuildOptions
		want []string
	}{
		{
			name: "minimal",
			opts: BuildOptions{ContextDir: "/ctx", Tag: "cross:latest"},
			want: []string{"build", "-t", "cross:latest", "/ctx"},
		},
		{
			name: "relative containerfile resolved against context",
			opts: BuildOptions{ContextDir: "/ctx", Containerfile: "images/Containerfile", Tag: "cross:latest"},
			want: []string{"build", "-f", "/ctx/images/Containerfile", "-t", "cross:latest", "/ctx"},
		},
		{
			name: "absolute containerfile used as-is",
			opts: BuildOptions{ContextDir: "/ctx", Containerfile: "/abs/Containerfile", Tag: "cross:latest"},
			want: []string{"build", "-f", "/abs/Containerfile", "-t", "cross:latest", "/ctx"},
		},
		{
			name: "no-cache and sorted build args",
			opts: BuildOptions{
				ContextDir: "/ctx",
				Tag:        "cross:latest",
				NoCache:    true,
				BuildArgs:  map[string]string{"ZULU": "1", "ALPHA": "2"},
			},
			want: []string{"build", "-t", "cross:latest", "--no-cache", "--build-arg", "ALPHA=2", "--build-arg", "ZULU=1", "/ctx"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := e.BuildArgs(tt.opts)
			if !slices.Equal(got, tt.want) {
				t.Errorf("BuildArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunArgs(t *testing.T) {
	t.Parallel()

	e := NewBaseCLIEngine("/usr/bin/podman")

	opts := RunOptions{
		Image:   "ghcr.io/smartvaults/svbind-cross:latest",
		Command: []string{"cargo", "build", "--release"},
		WorkDir: "/work",
		Remove:  true,
		Name:    "svbind-build",
		Env: map[string]string{
			"CARGO_TARGET_DIR": "/work/out",
			"API_LEVEL":        "24",
		},
		Volumes: []VolumeMount{
			{HostPath: "/home/u/sdk", ContainerPath: "/work"},
			{HostPath: "/home/u/.cargo/registry", ContainerPath: "/root/.cargo/registry", ReadOnly: true},
		},
	}

	want := []string{
		"run", "--rm",
		"--name", "svbind-build",
		"-w", "/work",
		"-e", "API_LEVEL=24",
		"-e", "CARGO_TARGET_DIR=/work/out",
		"-v", "/home/u/sdk:/work",
		"-v", "/home/u/.cargo/registry:/root/.cargo/registry:ro",
		"ghcr.io/smartvaults/svbind-cross:latest",
		"cargo", "build", "--release",
	}

	got := e.RunArgs(opts)
	if !slices.Equal(got, want) {
		t.Errorf("RunArgs() =\n%v\nwant\n%v", got, want)
	}
}

func TestRunArgs_Deterministic(t *testing.T) {
	t.Parallel()

	e := NewBaseCLIEngine("/usr/bin/podman")
	opts := RunOptions{
		Image: "img",
		Env:   map[string]string{"B": "2", "A": "1", "C": "3", "D": "4"},
	}

	first := e.RunArgs(opts)
	for range 20 {
		if got := e.RunArgs(opts); !slices.Equal(got, first) {
			t.Fatalf("RunArgs() not deterministic:\n%v\nvs\n%v", got, first)
		}
	}
}

func TestPullArgs(t *testing.T) {
	t.Parallel()

	e := NewBaseCLIEngine("/usr/bin/docker")
	want := []string{"pull", "cross:latest"}
	if got := e.PullArgs("cross:latest"); !slices.Equal(got, want) {
		t.Errorf("PullArgs() = %v, want %v", got, want)
	}
}

func TestRun_CapturesExitCode(t *testing.T) {
	e, recorder := newMockedBase(t)
	recorder.ExitCode = 42

	result, err := e.Run(context.Background(), RunOptions{
		Image:   "cross:latest",
		Command: []string{"cargo", "build"},
	})
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if result.ExitCode != 42 {
		t.Errorf("ExitCode = %d, want 42", result.ExitCode)
	}
	if result.Error != nil {
		t.Errorf("Error = %v, want nil for plain non-zero exit", result.Error)
	}
	recorder.AssertFirstArg(t, "run")
	recorder.AssertArgsContain(t, "cross:latest")
}

func TestRun_Success(t *testing.T) {
	e, recorder := newMockedBase(t)

	var stdout bytes.Buffer
	recorder.Stdout = "Compiling smartvaults-sdk-ffi"

	result, err := e.Run(context.Background(), RunOptions{
		Image:   "cross:latest",
		Command: []string{"cargo", "build"},
		Stdout:  &stdout,
	})
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if !result.ExitCode.IsSuccess() {
		t.Errorf("ExitCode = %d, want success", result.ExitCode)
	}
	if stdout.String() == "" {
		t.Error("stdout was not streamed to the caller")
	}
}

func TestRun_RejectsInvalidOptions(t *testing.T) {
	e, recorder := newMockedBase(t)

	_, err := e.Run(context.Background(), RunOptions{Image: "   "})
	if err == nil {
		t.Fatal("Run() accepted a whitespace image tag")
	}
	if !errors.Is(err, ErrInvalidImageTag) {
		t.Errorf("error should wrap ErrInvalidImageTag, got: %v", err)
	}
	recorder.AssertInvocationCount(t, 0)
}

func TestRun_RejectsInvalidVolume(t *testing.T) {
	e, recorder := newMockedBase(t)

	_, err := e.Run(context.Background(), RunOptions{
		Image:   "cross:latest",
		Volumes: []VolumeMount{{HostPath: "/ok", ContainerPath: ""}},
	})
	if err == nil {
		t.Fatal("Run() accepted a volume without a container path")
	}
	if !errors.Is(err, ErrInvalidVolumeMount) {
		t.Errorf("error should wrap ErrInvalidVolumeMount, got: %v", err)
	}
	recorder.AssertInvocationCount(t, 0)
}

func TestBuild_StreamsOutput(t *testing.T) {
	e, recorder := newMockedBase(t)
	recorder.Stdout = "STEP 1/3"

	var stdout bytes.Buffer
	err := e.Build(context.Background(), BuildOptions{
		ContextDir: "/ctx",
		Tag:        "cross:local",
		Stdout:     &stdout,
	})
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}
	if stdout.String() != "STEP 1/3" {
		t.Errorf("stdout = %q", stdout.String())
	}
	recorder.AssertFirstArg(t, "build")
}

func TestBuild_FailureIsActionable(t *testing.T) {
	e, recorder := newMockedBase(t)
	recorder.ExitCode = 1

	err := e.Build(context.Background(), BuildOptions{ContextDir: "/ctx", Tag: "cross:local"})
	if err == nil {
		t.Fatal("Build() should fail when the engine exits non-zero")
	}
	var actionable *issue.ActionableError
	if !errors.As(err, &actionable) {
		t.Errorf("Build() error should be actionable, got: %v", err)
	}
}

func TestPull_RetriesTransientFailure(t *testing.T) {
	e, recorder := newMockedBase(t, WithPullBackoff(time.Millisecond))
	// Engine exit 125 is transient; the second attempt succeeds.
	recorder.ExitCodes = []int{125, 0}

	if err := e.Pull(context.Background(), "cross:latest"); err != nil {
		t.Fatalf("Pull() returned error: %v", err)
	}
	recorder.AssertInvocationCount(t, 2)
	recorder.AssertFirstArg(t, "pull")
}

func TestPull_PermanentFailureDoesNotRetry(t *testing.T) {
	e, recorder := newMockedBase(t, WithPullBackoff(time.Millisecond))
	// Exit 1 (e.g., manifest unknown) is permanent.
	recorder.ExitCode = 1

	err := e.Pull(context.Background(), "cross:does-not-exist")
	if err == nil {
		t.Fatal("Pull() should fail on permanent errors")
	}
	recorder.AssertInvocationCount(t, 1)
}

func TestPull_ExhaustsRetries(t *testing.T) {
	e, recorder := newMockedBase(t, WithPullBackoff(time.Millisecond))
	recorder.ExitCode = 125

	err := e.Pull(context.Background(), "cross:latest")
	if err == nil {
		t.Fatal("Pull() should fail after exhausting retries")
	}
	recorder.AssertInvocationCount(t, pullAttempts)
}

func TestPull_RejectsEmptyImage(t *testing.T) {
	e, recorder := newMockedBase(t)

	err := e.Pull(context.Background(), "")
	if !errors.Is(err, ErrInvalidImageTag) {
		t.Errorf("error should wrap ErrInvalidImageTag, got: %v", err)
	}
	recorder.AssertInvocationCount(t, 0)
}
