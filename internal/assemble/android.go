// SPDX-License-Identifier: MPL-2.0

package assemble

import (
	"fmt"
	"path/filepath"

	"svbind-cli/internal/manifest"
)

// layoutAndroid writes the AAR precursor layout: one shared library per
// declared ABI under jniLibs/<abi>/, and the generated Kotlin sources
// under kotlin/. The packager lifts both into the archive verbatim.
func (a *Assembler) layoutAndroid(req Request, dir string, man *manifest.Manifest) error {
	for _, t := range orderedTriples(req.Triples) {
		bin, _ := req.Result.Binary(t)
		abi, err := t.AndroidABI()
		if err != nil {
			return err
		}
		rel := filepath.Join("jniLibs", abi, t.SharedLibName(req.LibName))
		if err := placeBinary(dir, rel, bin, man); err != nil {
			return err
		}
	}

	if err := req.Artifact.Write(filepath.Join(dir, "kotlin")); err != nil {
		return fmt.Errorf("writing kotlin sources: %w", err)
	}
	return nil
}
