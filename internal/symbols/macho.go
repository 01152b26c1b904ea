// SPDX-License-Identifier: MPL-2.0

package symbols

import (
	"debug/macho"
	"encoding/binary"
	"strings"
)

// Mach-O n_type masks, from <mach-o/nlist.h>. debug/macho exposes the
// raw byte only.
const (
	machoStabMask = 0xe0 // N_STAB: debugger entry
	machoTypeMask = 0x0e // N_TYPE
	machoTypeSect = 0x0e // N_SECT: defined in a section
	machoExtMask  = 0x01 // N_EXT: external (exported)
)

func isMachO(magic []byte) bool {
	if len(magic) < 4 {
		return false
	}
	le := binary.LittleEndian.Uint32(magic)
	be := binary.BigEndian.Uint32(magic)
	return le == macho.Magic32 || le == macho.Magic64 ||
		be == macho.Magic32 || be == macho.Magic64
}

func isFatMachO(magic []byte) bool {
	return len(magic) >= 4 && binary.BigEndian.Uint32(magic) == macho.MagicFat
}

func machoExports(path string) ([]string, error) {
	f, err := macho.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return machoSymbols(f), nil
}

// fatExports reads a universal binary. A symbol counts as exported only
// when every architecture slice exports it: the loader picks one slice,
// so a symbol missing from any of them is missing for somebody.
func fatExports(path string) ([]string, error) {
	f, err := macho.OpenFat(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	for i, arch := range f.Arches {
		slice := machoSymbols(arch.File)
		if i == 0 {
			names = slice
			continue
		}
		names = intersect(names, slice)
	}
	return names, nil
}

// machoSymbols collects the defined external symbols of one Mach-O
// image. The leading underscore C symbols carry on Darwin is stripped.
func machoSymbols(f *macho.File) []string {
	if f.Symtab == nil {
		return nil
	}
	var names []string
	for _, sym := range f.Symtab.Syms {
		if sym.Type&machoStabMask != 0 {
			continue
		}
		if sym.Type&machoExtMask == 0 {
			continue
		}
		if sym.Type&machoTypeMask != machoTypeSect {
			continue
		}
		names = append(names, strings.TrimPrefix(sym.Name, "_"))
	}
	return names
}

func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
