// SPDX-License-Identifier: EPL-2.0

package toolchain

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"svbind-cli/internal/config"
	"svbind-cli/pkg/platform"
	"svbind-cli/pkg/triple"
)

// Environment variables consulted when locating the Android NDK.
const (
	// EnvAndroidNDKHome points directly at an NDK installation.
	EnvAndroidNDKHome = "ANDROID_NDK_HOME"
	// EnvAndroidHome points at an SDK root; NDKs live under <root>/ndk/<version>.
	EnvAndroidHome = "ANDROID_HOME"
)

// NDK is a validated Android NDK installation.
type NDK struct {
	// Root is the NDK installation directory.
	Root string
}

// FindNDK locates an Android NDK installation. Resolution order: the
// machine config's android.ndk_home, $ANDROID_NDK_HOME, then the highest
// versioned directory under $ANDROID_HOME/ndk. A candidate qualifies only
// when it contains the llvm prebuilt toolchain; invalid candidates fall
// through to the next and end up in the error's searched list.
func FindNDK(home config.NdkPath, getenv func(string) string) (*NDK, error) {
	var candidates []string
	if home != "" {
		candidates = append(candidates, home.String())
	}
	if env := getenv(EnvAndroidNDKHome); env != "" {
		candidates = append(candidates, env)
	}
	if sdk := getenv(EnvAndroidHome); sdk != "" {
		ndkDir := filepath.Join(sdk, "ndk")
		if best := highestVersionDir(ndkDir); best != "" {
			candidates = append(candidates, filepath.Join(ndkDir, best))
		} else {
			candidates = append(candidates, ndkDir)
		}
	}

	var searched []string
	for _, c := range candidates {
		if isNDKRoot(c) {
			return &NDK{Root: c}, nil
		}
		searched = append(searched, c)
	}
	return nil, &NDKNotFoundError{Searched: searched}
}

// isNDKRoot reports whether dir looks like an NDK installation: the llvm
// prebuilt toolchain directory must exist.
func isNDKRoot(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, "toolchains", "llvm", "prebuilt"))
	return err == nil && info.IsDir()
}

// highestVersionDir returns the name of the highest dotted-numeric
// subdirectory of dir ("26.1.10909125" style), or "" when none exists.
func highestVersionDir(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	for _, e := range entries {
		if !e.IsDir() || !isVersionName(e.Name()) {
			continue
		}
		if best == "" || versionLess(best, e.Name()) {
			best = e.Name()
		}
	}
	return best
}

// isVersionName reports whether name consists of dot-separated integers.
func isVersionName(name string) bool {
	for _, seg := range strings.Split(name, ".") {
		if _, err := strconv.Atoi(seg); err != nil {
			return false
		}
	}
	return name != ""
}

// versionLess compares dotted-numeric version names segment by segment.
// Missing segments count as zero, so "26" < "26.0.1".
func versionLess(a, b string) bool {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		av, bv := 0, 0
		if i < len(as) {
			av, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(bs[i])
		}
		if av != bv {
			return av < bv
		}
	}
	return false
}

// ndkHostTag returns the NDK prebuilt toolchain directory for a host OS.
// Apple Silicon hosts use the darwin-x86_64 tag: the NDK ships its macOS
// toolchain under that name (universal binaries in recent releases).
func ndkHostTag(goos string) (string, error) {
	switch goos {
	case platform.Linux:
		return "linux-x86_64", nil
	case platform.Darwin:
		return "darwin-x86_64", nil
	case platform.Windows:
		return "windows-x86_64", nil
	default:
		return "", fmt.Errorf("no ndk prebuilt toolchain for host os %q", goos)
	}
}

// BinDir returns the clang wrapper directory for the given host OS.
func (n *NDK) BinDir(goos string) (string, error) {
	tag, err := ndkHostTag(goos)
	if err != nil {
		return "", err
	}
	return filepath.Join(n.Root, "toolchains", "llvm", "prebuilt", tag, "bin"), nil
}

// BuildEnv returns the cargo environment for cross-compiling one Android
// triple: target-scoped CC and AR for build scripts plus the cargo linker
// override, all pointing into the NDK's llvm toolchain. On Windows hosts
// the clang wrappers are .cmd batch files.
func (n *NDK) BuildEnv(t triple.Triple, apiLevel int, goos string) (map[string]string, error) {
	clangName, err := t.NDKClangName(apiLevel)
	if err != nil {
		return nil, err
	}
	bin, err := n.BinDir(goos)
	if err != nil {
		return nil, err
	}
	if goos == platform.Windows {
		clangName += ".cmd"
	}

	clang := filepath.Join(bin, clangName)
	suffix := strings.ReplaceAll(t.String(), "-", "_")
	return map[string]string{
		"CC_" + suffix:   clang,
		"AR_" + suffix:   filepath.Join(bin, "llvm-ar"),
		t.LinkerEnvVar(): clang,
	}, nil
}
