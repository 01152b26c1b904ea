// SPDX-License-Identifier: MPL-2.0

package triple

import (
	"errors"
	"testing"
)

func TestPlatformValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   Platform
		wantErr bool
	}{
		{name: "android", value: PlatformAndroid, wantErr: false},
		{name: "apple", value: PlatformApple, wantErr: false},
		{name: "python", value: PlatformPython, wantErr: false},
		{name: "empty is invalid", value: "", wantErr: true},
		{name: "unknown family", value: "wasm", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.value.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Platform(%q).Validate() error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPlatform) {
				t.Errorf("Platform(%q).Validate() error does not wrap ErrInvalidPlatform", tt.value)
			}
		})
	}
}

func TestPlatformContains(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		platform Platform
		triple   Triple
		want     bool
	}{
		{name: "android contains android arm64", platform: PlatformAndroid, triple: AndroidArm64, want: true},
		{name: "android excludes ios", platform: PlatformAndroid, triple: IOSDevice, want: false},
		{name: "apple contains ios device", platform: PlatformApple, triple: IOSDevice, want: true},
		{name: "apple contains simulator", platform: PlatformApple, triple: IOSSimX86_64, want: true},
		{name: "apple contains macos", platform: PlatformApple, triple: MacArm64, want: true},
		{name: "apple excludes android", platform: PlatformApple, triple: AndroidArm, want: false},
		{name: "python contains linux", platform: PlatformPython, triple: LinuxX86_64, want: true},
		{name: "python contains macos", platform: PlatformPython, triple: MacX86_64, want: true},
		{name: "python excludes android", platform: PlatformPython, triple: AndroidX86, want: false},
		{name: "python excludes ios", platform: PlatformPython, triple: IOSSimArm64, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.platform.Contains(tt.triple); got != tt.want {
				t.Errorf("Platform(%q).Contains(%q) = %v, want %v", tt.platform, tt.triple, got, tt.want)
			}
		})
	}
}

func TestPlatformDefaultTriples(t *testing.T) {
	t.Parallel()

	t.Run("android covers all four ABIs", func(t *testing.T) {
		t.Parallel()

		got, err := PlatformAndroid.DefaultTriples()
		if err != nil {
			t.Fatalf("DefaultTriples() error = %v", err)
		}
		want := []Triple{AndroidArm64, AndroidArm, AndroidX86_64, AndroidX86}
		if len(got) != len(want) {
			t.Fatalf("DefaultTriples() = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("DefaultTriples()[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("apple covers device and both simulators", func(t *testing.T) {
		t.Parallel()

		got, err := PlatformApple.DefaultTriples()
		if err != nil {
			t.Fatalf("DefaultTriples() error = %v", err)
		}
		want := []Triple{IOSDevice, IOSSimArm64, IOSSimX86_64}
		if len(got) != len(want) {
			t.Fatalf("DefaultTriples() = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("DefaultTriples()[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("python builds the host triple", func(t *testing.T) {
		t.Parallel()

		got, err := PlatformPython.DefaultTriples()
		if err != nil {
			t.Skipf("host platform not supported: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("DefaultTriples() returned %d triples, want 1", len(got))
		}
		if !got[0].IsDesktop() {
			t.Errorf("DefaultTriples() = %q, want a desktop triple", got[0])
		}
	})

	t.Run("invalid platform fails", func(t *testing.T) {
		t.Parallel()

		_, err := Platform("wasm").DefaultTriples()
		if !errors.Is(err, ErrInvalidPlatform) {
			t.Errorf("DefaultTriples() error = %v, want ErrInvalidPlatform", err)
		}
	})
}

func TestPlatformMembers(t *testing.T) {
	t.Parallel()

	for _, p := range AllPlatforms() {
		p := p
		t.Run(p.String(), func(t *testing.T) {
			t.Parallel()

			members := p.Members()
			if len(members) == 0 {
				t.Fatalf("Platform(%q).Members() is empty", p)
			}
			for _, tr := range members {
				if !p.Contains(tr) {
					t.Errorf("Members() returned %q which Contains() rejects", tr)
				}
			}
		})
	}
}

func TestParsePlatform(t *testing.T) {
	t.Parallel()

	got, err := ParsePlatform("apple")
	if err != nil {
		t.Fatalf("ParsePlatform() error = %v", err)
	}
	if got != PlatformApple {
		t.Errorf("ParsePlatform() = %q, want %q", got, PlatformApple)
	}

	if _, err := ParsePlatform("solaris"); err == nil {
		t.Error("ParsePlatform() should fail for unknown family")
	}
}
