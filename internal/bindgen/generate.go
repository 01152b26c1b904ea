// SPDX-License-Identifier: MPL-2.0

package bindgen

import (
	"fmt"

	"svbind-cli/pkg/iface"
)

// Options carries the packaging names that come from svbind.cue rather
// than the interface definition. Zero values fall back to defaults
// derived from the namespace.
type Options struct {
	// LibName is the published native library base name the bindings
	// load, without lib prefix or extension. Defaults to the namespace.
	LibName string
	// KotlinPackage is the Java package generated Kotlin lives in.
	// Defaults to "com.<namespace>".
	KotlinPackage string
	// SwiftModule names the generated Swift module and source file.
	// Defaults to the namespace in UpperCamelCase.
	SwiftModule string
	// PythonPackage is the generated Python package directory name.
	// Defaults to the namespace.
	PythonPackage string
}

// withDefaults fills unset options from the interface definition.
func (o Options) withDefaults(def *iface.Interface) Options {
	if o.LibName == "" {
		o.LibName = def.Namespace
	}
	if o.KotlinPackage == "" {
		o.KotlinPackage = "com." + def.Namespace
	}
	if o.SwiftModule == "" {
		o.SwiftModule = pascalCase(def.Namespace)
	}
	if o.PythonPackage == "" {
		o.PythonPackage = def.Namespace
	}
	return o
}

// Generate produces the binding artifact for one language from a
// validated interface definition.
//
// Generation is deterministic: the same definition and options yield
// byte-identical output. The definition is fully resolved before any
// output is assembled, so a type with no canonical mapping fails with
// the offending type and use site named, and zero files are produced.
func Generate(def *iface.Interface, lang Language, opts Options) (*Artifact, error) {
	if def == nil {
		return nil, ErrNoDefinition
	}
	if err := lang.Validate(); err != nil {
		return nil, err
	}

	bound, err := bindInterface(def)
	if err != nil {
		return nil, fmt.Errorf("generating %s bindings: %w", lang, err)
	}
	opts = opts.withDefaults(def)

	var files []File
	switch lang {
	case LangKotlin:
		files = generateKotlin(bound, opts)
	case LangSwift:
		files = generateSwift(bound, opts)
	case LangPython:
		files = generatePython(bound, opts)
	}
	sortFiles(files)

	return &Artifact{Language: lang, Files: files, Symbols: def.DeclaredSymbols()}, nil
}

// headerLines renders the shared generated-file banner, without comment
// markers so each language can apply its own.
func headerLines(def *iface.Interface) []string {
	first := fmt.Sprintf("Generated by svbind from the %q interface definition", def.Namespace)
	if def.Version != "" {
		first += ", contract " + def.Version
	}
	first += "."
	return []string{first, "Do not edit; the next bind regenerates this file."}
}
