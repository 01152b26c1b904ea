// SPDX-License-Identifier: MPL-2.0

package assemble

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"

	"svbind-cli/internal/bindgen"
	"svbind-cli/internal/manifest"
)

// layoutPython writes the sdist precursor: the generated package with
// the compiled host library placed inside it, where the generated
// loader looks first. A Python bundle holds exactly one triple; cross
// builds get their own bundle per host.
func (a *Assembler) layoutPython(req Request, dir string, man *manifest.Manifest) error {
	// Artifact.Write replaces dir wholesale, so sources go in before
	// the binary.
	if err := req.Artifact.Write(dir); err != nil {
		return fmt.Errorf("writing python sources: %w", err)
	}

	pkg, err := pythonPackageDir(req.Artifact)
	if err != nil {
		return err
	}

	t := req.Triples[0]
	bin, _ := req.Result.Binary(t)
	rel := filepath.Join(filepath.FromSlash(pkg), t.SharedLibName(req.LibName))
	return placeBinary(dir, rel, bin, man)
}

// pythonPackageDir locates the generated package directory inside the
// artifact, the one holding __init__.py.
func pythonPackageDir(art *bindgen.Artifact) (string, error) {
	for _, f := range art.Files {
		if path.Base(f.Path) == "__init__.py" {
			return path.Dir(f.Path), nil
		}
	}
	return "", errors.New("python artifact carries no __init__.py")
}
