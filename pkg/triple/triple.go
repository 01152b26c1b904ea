// SPDX-License-Identifier: MPL-2.0

package triple

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/exp/slices"
)

const (
	// AndroidArm64 targets 64-bit ARM Android devices.
	AndroidArm64 Triple = "aarch64-linux-android"
	// AndroidArm targets 32-bit ARM Android devices.
	AndroidArm Triple = "armv7-linux-androideabi"
	// AndroidX86_64 targets 64-bit x86 Android emulators.
	AndroidX86_64 Triple = "x86_64-linux-android"
	// AndroidX86 targets 32-bit x86 Android emulators.
	AndroidX86 Triple = "i686-linux-android"

	// IOSDevice targets physical iPhones and iPads.
	IOSDevice Triple = "aarch64-apple-ios"
	// IOSSimArm64 targets the iOS simulator on Apple Silicon hosts.
	IOSSimArm64 Triple = "aarch64-apple-ios-sim"
	// IOSSimX86_64 targets the iOS simulator on Intel hosts.
	IOSSimX86_64 Triple = "x86_64-apple-ios"
	// MacArm64 targets Apple Silicon macOS.
	MacArm64 Triple = "aarch64-apple-darwin"
	// MacX86_64 targets Intel macOS.
	MacX86_64 Triple = "x86_64-apple-darwin"

	// LinuxX86_64 targets 64-bit x86 desktop Linux.
	LinuxX86_64 Triple = "x86_64-unknown-linux-gnu"
	// LinuxArm64 targets 64-bit ARM desktop Linux.
	LinuxArm64 Triple = "aarch64-unknown-linux-gnu"
	// WindowsX86_64 targets 64-bit x86 Windows (GNU toolchain).
	WindowsX86_64 Triple = "x86_64-pc-windows-gnu"
)

// OS family names as used in triple metadata. These are finer grained than
// platform families: the apple platform spans the ios, ios-sim and macos
// OS families.
const (
	OSAndroid = "android"
	OSIOS     = "ios"
	OSIOSSim  = "ios-sim"
	OSMacOS   = "macos"
	OSLinux   = "linux"
	OSWindows = "windows"
)

// CPU architecture names as used in triple metadata.
const (
	ArchArm64  = "arm64"
	ArchArm    = "arm"
	ArchX86_64 = "x86_64"
	ArchX86    = "x86"
)

var (
	// ErrUnknownTriple is returned when a Triple value is not in the registry.
	ErrUnknownTriple = errors.New("unknown target triple")
	// ErrNoAndroidABI is returned when an Android ABI directory is requested
	// for a non-Android triple.
	ErrNoAndroidABI = errors.New("triple has no Android ABI")
	// ErrUnsupportedHost is returned when the current host maps to no
	// registered triple.
	ErrUnsupportedHost = errors.New("unsupported host platform")
)

type (
	// Triple is a canonical rustc target name identifying one compilation
	// target. The zero value ("") is invalid.
	Triple string

	// UnknownTripleError is returned when a Triple value is not recognized.
	// It wraps ErrUnknownTriple for errors.Is() compatibility.
	UnknownTripleError struct {
		Value Triple
	}

	// meta holds the registry attributes of one triple.
	meta struct {
		os         string
		arch       string
		androidABI string // jniLibs directory name, Android triples only
		simulator  bool   // Apple simulator slice
	}
)

// registry is the single source of truth for supported triples.
// AndroidABI values follow the NDK jniLibs directory convention.
var registry = map[Triple]meta{
	AndroidArm64:  {os: OSAndroid, arch: ArchArm64, androidABI: "arm64-v8a"},
	AndroidArm:    {os: OSAndroid, arch: ArchArm, androidABI: "armeabi-v7a"},
	AndroidX86_64: {os: OSAndroid, arch: ArchX86_64, androidABI: "x86_64"},
	AndroidX86:    {os: OSAndroid, arch: ArchX86, androidABI: "x86"},
	IOSDevice:     {os: OSIOS, arch: ArchArm64},
	IOSSimArm64:   {os: OSIOSSim, arch: ArchArm64, simulator: true},
	IOSSimX86_64:  {os: OSIOSSim, arch: ArchX86_64, simulator: true},
	MacArm64:      {os: OSMacOS, arch: ArchArm64},
	MacX86_64:     {os: OSMacOS, arch: ArchX86_64},
	LinuxX86_64:   {os: OSLinux, arch: ArchX86_64},
	LinuxArm64:    {os: OSLinux, arch: ArchArm64},
	WindowsX86_64: {os: OSWindows, arch: ArchX86_64},
}

// Error implements the error interface for UnknownTripleError.
func (e *UnknownTripleError) Error() string {
	return fmt.Sprintf("unknown target triple %q (valid: %s)", e.Value, strings.Join(allStrings(), ", "))
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *UnknownTripleError) Unwrap() error {
	return ErrUnknownTriple
}

// String returns the canonical rustc target name.
func (t Triple) String() string { return string(t) }

// Validate returns nil if the Triple is in the registry, or an
// UnknownTripleError if it is not.
func (t Triple) Validate() error {
	if _, ok := registry[t]; !ok {
		return &UnknownTripleError{Value: t}
	}
	return nil
}

// OS returns the OS family of the triple (android, ios, ios-sim, macos,
// linux, windows). Unknown triples return "".
func (t Triple) OS() string { return registry[t].os }

// Arch returns the CPU architecture of the triple (arm64, arm, x86_64, x86).
// Unknown triples return "".
func (t Triple) Arch() string { return registry[t].arch }

// IsAndroid reports whether the triple targets Android.
func (t Triple) IsAndroid() bool { return registry[t].os == OSAndroid }

// IsApple reports whether the triple targets an Apple OS (iOS, iOS
// simulator, or macOS).
func (t Triple) IsApple() bool {
	switch registry[t].os {
	case OSIOS, OSIOSSim, OSMacOS:
		return true
	default:
		return false
	}
}

// IsDesktop reports whether the triple targets a desktop OS (linux, macos,
// windows).
func (t Triple) IsDesktop() bool {
	switch registry[t].os {
	case OSLinux, OSMacOS, OSWindows:
		return true
	default:
		return false
	}
}

// IsSimulator reports whether the triple is an Apple simulator slice.
// Simulator and device slices must never be merged into the same framework;
// they become separate XCFramework members.
func (t Triple) IsSimulator() bool { return registry[t].simulator }

// AndroidABI returns the jniLibs ABI directory name for an Android triple
// (e.g. "arm64-v8a" for aarch64-linux-android).
func (t Triple) AndroidABI() (string, error) {
	m, ok := registry[t]
	if !ok {
		return "", &UnknownTripleError{Value: t}
	}
	if m.androidABI == "" {
		return "", fmt.Errorf("%w: %s", ErrNoAndroidABI, t)
	}
	return m.androidABI, nil
}

// SharedLibName returns the platform-specific file name of a shared library
// built from the given crate name (e.g. "libsmartvaults_ffi.so").
func (t Triple) SharedLibName(crate string) string {
	switch registry[t].os {
	case OSWindows:
		return crate + ".dll"
	case OSMacOS:
		return "lib" + crate + ".dylib"
	default:
		return "lib" + crate + ".so"
	}
}

// StaticLibName returns the platform-specific file name of a static library
// built from the given crate name (e.g. "libsmartvaults_ffi.a").
func (t Triple) StaticLibName(crate string) string {
	if registry[t].os == OSWindows {
		return crate + ".lib"
	}
	return "lib" + crate + ".a"
}

// LinkerEnvVar returns the cargo environment variable that selects the
// linker for this triple (e.g. CARGO_TARGET_AARCH64_LINUX_ANDROID_LINKER).
func (t Triple) LinkerEnvVar() string {
	upper := strings.ToUpper(strings.ReplaceAll(string(t), "-", "_"))
	return "CARGO_TARGET_" + upper + "_LINKER"
}

// NDKClangName returns the NDK clang wrapper binary name for an Android
// triple at the given API level. The 32-bit ARM wrapper uses the
// "armv7a-linux-androideabi" prefix even though the rustc triple is
// "armv7-linux-androideabi".
func (t Triple) NDKClangName(apiLevel int) (string, error) {
	if !t.IsAndroid() {
		return "", fmt.Errorf("%w: %s", ErrNoAndroidABI, t)
	}
	prefix := string(t)
	if t == AndroidArm {
		prefix = "armv7a-linux-androideabi"
	}
	return fmt.Sprintf("%s%d-clang", prefix, apiLevel), nil
}

// Parse validates a raw string and returns it as a Triple.
func Parse(s string) (Triple, error) {
	t := Triple(s)
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

// All returns every registered triple in canonical order: Android first,
// then Apple (device before simulator before macOS), then desktop.
func All() []Triple {
	return []Triple{
		AndroidArm64, AndroidArm, AndroidX86_64, AndroidX86,
		IOSDevice, IOSSimArm64, IOSSimX86_64, MacArm64, MacX86_64,
		LinuxX86_64, LinuxArm64, WindowsX86_64,
	}
}

// Host returns the triple matching the current host OS and architecture.
// Used when building desktop libraries for Python packaging.
func Host() (Triple, error) {
	return hostFor(runtime.GOOS, runtime.GOARCH)
}

// hostFor maps a GOOS/GOARCH pair to a registered triple. Split from Host
// so tests can cover the mapping without depending on the test runner's
// platform.
func hostFor(goos, goarch string) (Triple, error) {
	switch goos {
	case "linux":
		switch goarch {
		case "amd64":
			return LinuxX86_64, nil
		case "arm64":
			return LinuxArm64, nil
		}
	case "darwin":
		switch goarch {
		case "amd64":
			return MacX86_64, nil
		case "arm64":
			return MacArm64, nil
		}
	case "windows":
		if goarch == "amd64" {
			return WindowsX86_64, nil
		}
	}
	return "", fmt.Errorf("%w: %s/%s", ErrUnsupportedHost, goos, goarch)
}

// allStrings returns the registry keys as sorted strings for error messages.
func allStrings() []string {
	strs := make([]string, 0, len(registry))
	for t := range registry {
		strs = append(strs, string(t))
	}
	slices.Sort(strs)
	return strs
}
