// SPDX-License-Identifier: MPL-2.0

package symbols

import (
	"bufio"
	"bytes"
	"debug/macho"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	arMagic     = "!<arch>\n"
	arHeaderLen = 60
)

// archiveExports walks the members of an ar archive and collects the
// defined external symbols of every Mach-O object inside, which is how
// a Rust staticlib for iOS carries its exports. Members in other
// formats and archive bookkeeping members contribute nothing.
func archiveExports(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	magic := make([]byte, len(arMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("truncated archive: %w", err)
	}
	if string(magic) != arMagic {
		return nil, fmt.Errorf("bad archive magic % x", magic)
	}

	var names []string
	for {
		name, data, err := readMember(r)
		if err == io.EOF {
			return names, nil
		}
		if err != nil {
			return nil, err
		}
		if isIndexMember(name) {
			continue
		}
		obj, err := macho.NewFile(bytes.NewReader(data))
		if err != nil {
			continue
		}
		names = append(names, machoSymbols(obj)...)
	}
}

// readMember reads one 60-byte member header and the member body,
// consuming the even-boundary padding byte odd-sized bodies carry.
// io.EOF means a clean end of archive.
func readMember(r *bufio.Reader) (string, []byte, error) {
	hdr := make([]byte, arHeaderLen)
	if _, err := io.ReadFull(r, hdr); err != nil {
		if err == io.EOF {
			return "", nil, io.EOF
		}
		return "", nil, fmt.Errorf("truncated archive member header: %w", err)
	}
	if hdr[58] != '`' || hdr[59] != '\n' {
		return "", nil, fmt.Errorf("bad archive member terminator % x", hdr[58:60])
	}

	name := strings.TrimRight(string(hdr[0:16]), " ")
	sizeField := strings.TrimSpace(string(hdr[48:58]))
	size, err := strconv.ParseInt(sizeField, 10, 64)
	if err != nil || size < 0 {
		return "", nil, fmt.Errorf("bad archive member size %q", sizeField)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", nil, fmt.Errorf("truncated archive member %q: %w", name, err)
	}

	// BSD extended names: "#1/<n>" stores the real name in the first n
	// bytes of the member body.
	if strings.HasPrefix(name, "#1/") {
		n, convErr := strconv.Atoi(name[len("#1/"):])
		if convErr != nil || n < 0 || int64(n) > size {
			return "", nil, fmt.Errorf("bad extended member name %q", name)
		}
		name = strings.TrimRight(string(data[:n]), "\x00")
		data = data[n:]
	}

	if size%2 == 1 {
		if _, err := r.Discard(1); err != nil && err != io.EOF {
			return "", nil, err
		}
	}
	return name, data, nil
}

// isIndexMember reports whether name is archive bookkeeping rather than
// an object file: the BSD "__.SYMDEF" symbol index (newer libtools
// append " SORTED") or the GNU "/" index and "//" long-name table.
func isIndexMember(name string) bool {
	return name == "/" || name == "//" || strings.HasPrefix(name, "__.SYMDEF")
}
