// SPDX-License-Identifier: MPL-2.0

package symbols

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
	"fmt"
)

const peMagic = "MZ"

// peExportDirLen is the size of IMAGE_EXPORT_DIRECTORY. debug/pe parses
// headers and sections but not the export table, so the directory is
// walked by hand: NumberOfNames name RVAs at AddressOfNames, each
// pointing at a NUL-terminated export name.
const peExportDirLen = 40

// peExports reads the export name table of a PE image (DLL).
func peExports(path string) ([]string, error) {
	f, err := pe.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dir, ok := peExportDirectory(f)
	if !ok || dir.VirtualAddress == 0 {
		return nil, nil
	}

	r := &rvaReader{file: f, data: map[*pe.Section][]byte{}}
	table, err := r.at(dir.VirtualAddress, peExportDirLen)
	if err != nil {
		return nil, fmt.Errorf("export directory: %w", err)
	}
	numberOfNames := binary.LittleEndian.Uint32(table[24:])
	namesRVA := binary.LittleEndian.Uint32(table[32:])

	names := make([]string, 0, numberOfNames)
	for i := uint32(0); i < numberOfNames; i++ {
		entry, err := r.at(namesRVA+4*i, 4)
		if err != nil {
			return nil, fmt.Errorf("export name table: %w", err)
		}
		name, err := r.cstring(binary.LittleEndian.Uint32(entry))
		if err != nil {
			return nil, fmt.Errorf("export name: %w", err)
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func peExportDirectory(f *pe.File) (pe.DataDirectory, bool) {
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader64:
		if oh.NumberOfRvaAndSizes > pe.IMAGE_DIRECTORY_ENTRY_EXPORT {
			return oh.DataDirectory[pe.IMAGE_DIRECTORY_ENTRY_EXPORT], true
		}
	case *pe.OptionalHeader32:
		if oh.NumberOfRvaAndSizes > pe.IMAGE_DIRECTORY_ENTRY_EXPORT {
			return oh.DataDirectory[pe.IMAGE_DIRECTORY_ENTRY_EXPORT], true
		}
	}
	return pe.DataDirectory{}, false
}

// rvaReader resolves image-relative virtual addresses to raw section
// bytes, loading each section's contents at most once.
type rvaReader struct {
	file *pe.File
	data map[*pe.Section][]byte
}

func (r *rvaReader) section(rva uint32) ([]byte, uint32, error) {
	for _, s := range r.file.Sections {
		if rva < s.VirtualAddress || rva >= s.VirtualAddress+s.VirtualSize {
			continue
		}
		data, ok := r.data[s]
		if !ok {
			loaded, err := s.Data()
			if err != nil {
				return nil, 0, err
			}
			r.data[s] = loaded
			data = loaded
		}
		return data, rva - s.VirtualAddress, nil
	}
	return nil, 0, fmt.Errorf("rva 0x%x maps to no section", rva)
}

func (r *rvaReader) at(rva, n uint32) ([]byte, error) {
	data, off, err := r.section(rva)
	if err != nil {
		return nil, err
	}
	if uint64(off)+uint64(n) > uint64(len(data)) {
		return nil, fmt.Errorf("rva 0x%x: %d bytes past end of section data", rva, n)
	}
	return data[off : off+n], nil
}

func (r *rvaReader) cstring(rva uint32) (string, error) {
	data, off, err := r.section(rva)
	if err != nil {
		return "", err
	}
	end := bytes.IndexByte(data[off:], 0)
	if end < 0 {
		return "", fmt.Errorf("unterminated string at rva 0x%x", rva)
	}
	return string(data[off : off+uint32(end)]), nil
}
