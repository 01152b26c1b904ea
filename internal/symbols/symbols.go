// SPDX-License-Identifier: MPL-2.0

package symbols

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"
)

// Exported reads the exported symbol names of the compiled library at
// path. The container format is sniffed from the leading magic bytes,
// names are returned sorted and deduplicated, and Mach-O's leading
// underscore is stripped so results compare directly against C symbol
// names. Files in none of the supported formats yield an
// UnknownFormatError.
func Exported(path string) ([]string, error) {
	magic, err := readMagic(path)
	if err != nil {
		return nil, err
	}

	var names []string
	switch {
	case bytes.HasPrefix(magic, []byte(elfMagic)):
		names, err = elfExports(path)
	case bytes.HasPrefix(magic, []byte(arMagic)):
		names, err = archiveExports(path)
	case isMachO(magic):
		names, err = machoExports(path)
	case isFatMachO(magic):
		names, err = fatExports(path)
	case bytes.HasPrefix(magic, []byte(peMagic)):
		names, err = peExports(path)
	default:
		return nil, &UnknownFormatError{Path: path, Magic: magic}
	}
	if err != nil {
		return nil, fmt.Errorf("reading symbols from %s: %w", path, err)
	}

	slices.Sort(names)
	return slices.Compact(names), nil
}

// Verify checks that the library at path exports every declared symbol.
// A library exporting more than the declared set passes; any declared
// symbol the library lacks yields a MissingSymbolsError naming all of
// them in declaration order.
func Verify(path string, declared []string) error {
	exported, err := Exported(path)
	if err != nil {
		return err
	}

	have := make(map[string]struct{}, len(exported))
	for _, name := range exported {
		have[name] = struct{}{}
	}

	var missing []string
	for _, name := range declared {
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingSymbolsError{Path: path, Missing: missing}
	}
	return nil
}

func readMagic(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening library: %w", err)
	}
	defer f.Close()

	// Short and empty files fall through to the format dispatch, which
	// rejects their truncated magic as an unknown format.
	magic := make([]byte, 8)
	n, err := io.ReadFull(f, magic)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return magic[:n], nil
}
