// SPDX-License-Identifier: MPL-2.0

package svfile

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"svbind-cli/pkg/cueutil"
)

//go:embed svfile_schema.cue
var svfileSchema string

// Parse reads and parses a project file from the given path.
func Parse(path string) (*Svfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file at %s: %w", path, err)
	}

	return ParseBytes(data, path)
}

// ParseBytes parses project file content from bytes.
// Uses cueutil.ParseAndDecodeString for the 3-step CUE parsing flow:
// compile schema → compile user data → validate and decode.
func ParseBytes(data []byte, path string) (*Svfile, error) {
	result, err := cueutil.ParseAndDecodeString[Svfile](
		svfileSchema,
		data,
		"#Svfile",
		cueutil.WithFilename(path),
	)
	if err != nil {
		return nil, err
	}

	sv := result.Value
	sv.FilePath = path

	// Validate cross-field rules and apply defaults
	if err := sv.validate(); err != nil {
		return nil, err
	}

	return sv, nil
}

// Find walks from startDir toward the filesystem root looking for a
// svbind.cue, the way cargo locates Cargo.toml. Returns the absolute path
// of the first match.
func Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", startDir, err)
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &NotFoundError{Start: startDir}
		}
		dir = parent
	}
}

// Load finds and parses the project file governing startDir.
func Load(startDir string) (*Svfile, error) {
	path, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	return Parse(path)
}
