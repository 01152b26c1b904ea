// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"svbind-cli/internal/bindgen"
	"svbind-cli/internal/config"
	"svbind-cli/internal/manifest"
	"svbind-cli/pkg/triple"
)

// AndroidOptions tune the emitted AAR.
type AndroidOptions struct {
	// Package is the Java package recorded in AndroidManifest.xml.
	// Empty derives it from the bundled Kotlin sources.
	Package string
	// APILevel is the minSdkVersion. Zero means the project default,
	// which matches what the NDK toolchain compiled against.
	APILevel int
}

type androidPackager struct {
	opts AndroidOptions
}

// NewAndroid returns the packager that wraps an Android bundle into an
// .aar plus a sources jar.
func NewAndroid(opts AndroidOptions) Packager {
	return &androidPackager{opts: opts}
}

func (p *androidPackager) Platform() triple.Platform { return triple.PlatformAndroid }

func (p *androidPackager) Package(req Request) (*Package, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	man, err := validateBundle(req, bindgen.LangKotlin)
	if err != nil {
		return nil, err
	}

	kotlinDir := filepath.Join(req.BundleDir, "kotlin")
	javaPkg := p.opts.Package
	if javaPkg == "" {
		javaPkg, err = kotlinPackage(kotlinDir)
		if err != nil {
			return nil, err
		}
	}
	api := p.opts.APILevel
	if api == 0 {
		api = config.DefaultAndroidAPILevel
	}

	base := distBaseName(man)
	aarPath := filepath.Join(req.DistDir, base+".aar")
	srcJarPath := filepath.Join(req.DistDir, base+"-sources.jar")

	err = replaceFile(aarPath, func(w io.Writer) error {
		return writeAAR(w, req.BundleDir, man, javaPkg, api)
	})
	if err != nil {
		return nil, err
	}
	err = replaceFile(srcJarPath, func(w io.Writer) error {
		return writeTreeZip(w, kotlinDir)
	})
	if err != nil {
		return nil, err
	}

	return &Package{
		Platform: triple.PlatformAndroid,
		Path:     aarPath,
		Extras:   []string{srcJarPath},
	}, nil
}

// writeAAR lays out the archive the Android Gradle plugin consumes:
// AndroidManifest.xml, a classes.jar (empty here, consumers compile the
// sources jar), the native libraries under jni/<abi>/, and the bundle
// manifest for provenance.
func writeAAR(w io.Writer, bundleDir string, man *manifest.Manifest, javaPkg string, apiLevel int) error {
	zw := zip.NewWriter(w)

	if err := zipBytes(zw, "AndroidManifest.xml", androidManifestXML(javaPkg, apiLevel)); err != nil {
		zw.Close()
		return err
	}
	classes, err := emptyJar()
	if err != nil {
		zw.Close()
		return err
	}
	if err := zipBytes(zw, "classes.jar", classes); err != nil {
		zw.Close()
		return err
	}
	if err := zipFile(zw, manifest.FileName, filepath.Join(bundleDir, manifest.FileName)); err != nil {
		zw.Close()
		return err
	}
	for _, b := range man.Binaries {
		t := triple.Triple(b.Triple)
		abi, err := t.AndroidABI()
		if err != nil {
			zw.Close()
			return err
		}
		entry := path.Join("jni", abi, path.Base(b.Path))
		if err := zipFile(zw, entry, filepath.Join(bundleDir, filepath.FromSlash(b.Path))); err != nil {
			zw.Close()
			return err
		}
	}

	return zw.Close()
}

func androidManifestXML(javaPkg string, apiLevel int) []byte {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	fmt.Fprintf(&sb, "<manifest xmlns:android=%q\n", "http://schemas.android.com/apk/res/android")
	fmt.Fprintf(&sb, "    package=%q>\n", javaPkg)
	fmt.Fprintf(&sb, "    <uses-sdk android:minSdkVersion=%q />\n", fmt.Sprint(apiLevel))
	sb.WriteString("</manifest>\n")
	return []byte(sb.String())
}

// emptyJar builds the minimal classes.jar an AAR must carry.
func emptyJar() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if err := zipBytes(zw, "META-INF/MANIFEST.MF", []byte("Manifest-Version: 1.0\nCreated-By: svbind\n")); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// kotlinPackage derives the Java package from the first Kotlin source
// under dir: the directory path relative to dir, dots for slashes.
func kotlinPackage(dir string) (string, error) {
	var pkg string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".kt") {
			return nil
		}
		rel, err := filepath.Rel(dir, filepath.Dir(p))
		if err != nil {
			return err
		}
		pkg = strings.ReplaceAll(filepath.ToSlash(rel), "/", ".")
		return fs.SkipAll
	})
	if err != nil {
		return "", fmt.Errorf("scanning kotlin sources: %w", err)
	}
	if pkg == "" || pkg == "." {
		return "", errors.New("bundle carries no kotlin sources to derive the java package from")
	}
	return pkg, nil
}
