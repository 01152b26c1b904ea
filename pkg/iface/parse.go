// SPDX-License-Identifier: MPL-2.0

package iface

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"svbind-cli/pkg/cueutil"
)

// Suffix is the canonical interface definition file suffix.
const Suffix = ".iface.cue"

//go:embed iface_schema.cue
var ifaceSchema []byte

// Parse reads, schema-checks, and semantically validates the interface
// definition at path.
func Parse(path string) (*Interface, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading interface definition: %w", err)
	}
	return ParseBytes(data, path)
}

// ParseBytes validates raw interface definition contents against the
// embedded schema and then runs semantic validation (reference
// resolution, signature rules). filename appears in error messages only.
func ParseBytes(data []byte, filename string) (*Interface, error) {
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, filename); err != nil {
		return nil, err
	}

	result, err := cueutil.ParseAndDecode[Interface](ifaceSchema, data, "#Interface",
		cueutil.WithFilename(filename))
	if err != nil {
		return nil, err
	}

	def := result.Value
	def.FilePath = filename
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return def, nil
}

// BaseName derives the definition's short name from its file path:
// "sdk/vaults.iface.cue" yields "vaults". Falls back to the namespace
// when the path does not carry the canonical suffix.
func (i *Interface) BaseName() string {
	base := strings.TrimSuffix(filepathBase(i.FilePath), Suffix)
	if base == "" || base == filepathBase(i.FilePath) {
		return i.Namespace
	}
	return base
}

// filepathBase is path.Base over both separator conventions, so
// definitions referenced with Windows paths still report a clean name.
func filepathBase(p string) string {
	if idx := strings.LastIndexAny(p, `/\`); idx >= 0 {
		return p[idx+1:]
	}
	return p
}
