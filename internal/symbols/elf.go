// SPDX-License-Identifier: MPL-2.0

package symbols

import (
	"debug/elf"
	"errors"
)

const elfMagic = "\x7fELF"

// elfExports reads the dynamic symbol table of an ELF shared object.
// cdylib crates export through .dynsym, so the regular symbol table
// (which strip removes anyway) is never consulted. Undefined entries
// are imports, not exports, and are skipped.
func elfExports(path string) ([]string, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	syms, err := f.DynamicSymbols()
	if err != nil {
		if errors.Is(err, elf.ErrNoSymbols) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, sym := range syms {
		if sym.Section == elf.SHN_UNDEF || sym.Name == "" {
			continue
		}
		names = append(names, sym.Name)
	}
	return names, nil
}
