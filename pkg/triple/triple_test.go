// SPDX-License-Identifier: MPL-2.0

package triple

import (
	"errors"
	"strings"
	"testing"
)

func TestTripleValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   Triple
		wantErr bool
	}{
		{name: "android arm64", value: AndroidArm64, wantErr: false},
		{name: "android arm", value: AndroidArm, wantErr: false},
		{name: "ios device", value: IOSDevice, wantErr: false},
		{name: "ios simulator arm64", value: IOSSimArm64, wantErr: false},
		{name: "macos arm64", value: MacArm64, wantErr: false},
		{name: "desktop linux", value: LinuxX86_64, wantErr: false},
		{name: "empty is invalid", value: "", wantErr: true},
		{name: "unknown triple", value: "riscv64gc-unknown-linux-gnu", wantErr: true},
		{name: "typo", value: "aarch64-linux-androd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.value.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Triple(%q).Validate() error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnknownTriple) {
				t.Errorf("Triple(%q).Validate() error does not wrap ErrUnknownTriple", tt.value)
			}
		})
	}
}

func TestUnknownTripleErrorNamesValidTriples(t *testing.T) {
	t.Parallel()

	err := Triple("bogus").Validate()
	if err == nil {
		t.Fatal("expected error for unknown triple")
	}
	// The message should list valid triples so users can fix the project file.
	if !strings.Contains(err.Error(), string(AndroidArm64)) {
		t.Errorf("error should list valid triples, got: %v", err)
	}
}

func TestTripleFamilies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     Triple
		android   bool
		apple     bool
		desktop   bool
		simulator bool
	}{
		{name: "android arm64", value: AndroidArm64, android: true},
		{name: "android x86", value: AndroidX86, android: true},
		{name: "ios device", value: IOSDevice, apple: true},
		{name: "ios sim arm64", value: IOSSimArm64, apple: true, simulator: true},
		{name: "ios sim x86_64", value: IOSSimX86_64, apple: true, simulator: true},
		{name: "macos arm64", value: MacArm64, apple: true, desktop: true},
		{name: "linux x86_64", value: LinuxX86_64, desktop: true},
		{name: "windows x86_64", value: WindowsX86_64, desktop: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.value.IsAndroid(); got != tt.android {
				t.Errorf("IsAndroid() = %v, want %v", got, tt.android)
			}
			if got := tt.value.IsApple(); got != tt.apple {
				t.Errorf("IsApple() = %v, want %v", got, tt.apple)
			}
			if got := tt.value.IsDesktop(); got != tt.desktop {
				t.Errorf("IsDesktop() = %v, want %v", got, tt.desktop)
			}
			if got := tt.value.IsSimulator(); got != tt.simulator {
				t.Errorf("IsSimulator() = %v, want %v", got, tt.simulator)
			}
		})
	}
}

func TestAndroidABI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   Triple
		want    string
		wantErr bool
	}{
		{name: "arm64 maps to arm64-v8a", value: AndroidArm64, want: "arm64-v8a"},
		{name: "arm maps to armeabi-v7a", value: AndroidArm, want: "armeabi-v7a"},
		{name: "x86_64 maps to x86_64", value: AndroidX86_64, want: "x86_64"},
		{name: "x86 maps to x86", value: AndroidX86, want: "x86"},
		{name: "ios has no ABI", value: IOSDevice, wantErr: true},
		{name: "linux has no ABI", value: LinuxX86_64, wantErr: true},
		{name: "unknown triple", value: "bogus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.value.AndroidABI()
			if (err != nil) != tt.wantErr {
				t.Fatalf("AndroidABI() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("AndroidABI() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLibraryNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		value      Triple
		wantShared string
		wantStatic string
	}{
		{
			name:       "android uses lib .so",
			value:      AndroidArm64,
			wantShared: "libsmartvaults_ffi.so",
			wantStatic: "libsmartvaults_ffi.a",
		},
		{
			name:       "linux uses lib .so",
			value:      LinuxX86_64,
			wantShared: "libsmartvaults_ffi.so",
			wantStatic: "libsmartvaults_ffi.a",
		},
		{
			name:       "macos uses lib .dylib",
			value:      MacArm64,
			wantShared: "libsmartvaults_ffi.dylib",
			wantStatic: "libsmartvaults_ffi.a",
		},
		{
			name:       "ios uses lib prefix",
			value:      IOSDevice,
			wantShared: "libsmartvaults_ffi.so",
			wantStatic: "libsmartvaults_ffi.a",
		},
		{
			name:       "windows uses bare .dll and .lib",
			value:      WindowsX86_64,
			wantShared: "smartvaults_ffi.dll",
			wantStatic: "smartvaults_ffi.lib",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.value.SharedLibName("smartvaults_ffi"); got != tt.wantShared {
				t.Errorf("SharedLibName() = %q, want %q", got, tt.wantShared)
			}
			if got := tt.value.StaticLibName("smartvaults_ffi"); got != tt.wantStatic {
				t.Errorf("StaticLibName() = %q, want %q", got, tt.wantStatic)
			}
		})
	}
}

func TestLinkerEnvVar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value Triple
		want  string
	}{
		{value: AndroidArm64, want: "CARGO_TARGET_AARCH64_LINUX_ANDROID_LINKER"},
		{value: AndroidArm, want: "CARGO_TARGET_ARMV7_LINUX_ANDROIDEABI_LINKER"},
		{value: IOSSimArm64, want: "CARGO_TARGET_AARCH64_APPLE_IOS_SIM_LINKER"},
	}

	for _, tt := range tests {
		t.Run(string(tt.value), func(t *testing.T) {
			t.Parallel()

			if got := tt.value.LinkerEnvVar(); got != tt.want {
				t.Errorf("LinkerEnvVar() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNDKClangName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   Triple
		api     int
		want    string
		wantErr bool
	}{
		{
			name:  "arm64 uses triple prefix",
			value: AndroidArm64,
			api:   24,
			want:  "aarch64-linux-android24-clang",
		},
		{
			// The NDK wrapper name differs from the rustc triple for 32-bit ARM.
			name:  "armv7 uses armv7a prefix",
			value: AndroidArm,
			api:   24,
			want:  "armv7a-linux-androideabi24-clang",
		},
		{
			name:  "x86 uses triple prefix",
			value: AndroidX86,
			api:   33,
			want:  "i686-linux-android33-clang",
		},
		{
			name:    "non-android triple fails",
			value:   IOSDevice,
			api:     24,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.value.NDKClangName(tt.api)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NDKClangName() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NDKClangName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("valid triple round-trips", func(t *testing.T) {
		t.Parallel()

		got, err := Parse("aarch64-linux-android")
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if got != AndroidArm64 {
			t.Errorf("Parse() = %q, want %q", got, AndroidArm64)
		}
	})

	t.Run("unknown triple fails", func(t *testing.T) {
		t.Parallel()

		_, err := Parse("mips-unknown-linux-gnu")
		if !errors.Is(err, ErrUnknownTriple) {
			t.Errorf("Parse() error = %v, want ErrUnknownTriple", err)
		}
	})
}

func TestAllCoversRegistry(t *testing.T) {
	t.Parallel()

	all := All()
	if len(all) != len(registry) {
		t.Fatalf("All() returned %d triples, registry has %d", len(all), len(registry))
	}
	seen := make(map[Triple]bool, len(all))
	for _, tr := range all {
		if err := tr.Validate(); err != nil {
			t.Errorf("All() contains unregistered triple %q", tr)
		}
		if seen[tr] {
			t.Errorf("All() contains duplicate triple %q", tr)
		}
		seen[tr] = true
	}
}

func TestHostFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		goos    string
		goarch  string
		want    Triple
		wantErr bool
	}{
		{name: "linux amd64", goos: "linux", goarch: "amd64", want: LinuxX86_64},
		{name: "linux arm64", goos: "linux", goarch: "arm64", want: LinuxArm64},
		{name: "darwin amd64", goos: "darwin", goarch: "amd64", want: MacX86_64},
		{name: "darwin arm64", goos: "darwin", goarch: "arm64", want: MacArm64},
		{name: "windows amd64", goos: "windows", goarch: "amd64", want: WindowsX86_64},
		{name: "windows arm64 unsupported", goos: "windows", goarch: "arm64", wantErr: true},
		{name: "plan9 unsupported", goos: "plan9", goarch: "amd64", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := hostFor(tt.goos, tt.goarch)
			if (err != nil) != tt.wantErr {
				t.Fatalf("hostFor(%s, %s) error = %v, wantErr %v", tt.goos, tt.goarch, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnsupportedHost) {
				t.Errorf("hostFor() error does not wrap ErrUnsupportedHost")
			}
			if got != tt.want {
				t.Errorf("hostFor(%s, %s) = %q, want %q", tt.goos, tt.goarch, got, tt.want)
			}
		})
	}
}
