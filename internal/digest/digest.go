// SPDX-License-Identifier: MPL-2.0

// Package digest computes the content digests recorded in build
// manifests: built libraries are digested so assembly and packaging can
// detect stale or tampered artifacts, and the declared symbol list is
// digested so bundles can prove which interface definition produced them.
package digest

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Scheme is the algorithm prefix carried by every rendered digest.
const Scheme = "blake2b256"

// ErrMalformedDigest is the sentinel error wrapped by parse failures.
var ErrMalformedDigest = errors.New("malformed digest")

// Digest is a content digest in "blake2b256:<hex>" form. The prefix is
// stored so manifests stay self-describing if the algorithm ever moves.
type Digest string

// String implements fmt.Stringer.
func (d Digest) String() string { return string(d) }

// Hex returns the bare hex portion of the digest.
func (d Digest) Hex() string {
	_, hx, _ := strings.Cut(string(d), ":")
	return hx
}

// Validate checks the digest carries the expected scheme and a
// well-formed 256-bit hex payload.
func (d Digest) Validate() error {
	scheme, hx, found := strings.Cut(string(d), ":")
	if !found || scheme != Scheme {
		return fmt.Errorf("%w: %q does not carry the %s scheme", ErrMalformedDigest, d, Scheme)
	}
	raw, err := hex.DecodeString(hx)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrMalformedDigest, d, err)
	}
	if len(raw) != blake2b.Size256 {
		return fmt.Errorf("%w: %q: expected %d bytes, got %d", ErrMalformedDigest, d, blake2b.Size256, len(raw))
	}
	return nil
}

// Bytes digests an in-memory buffer.
func Bytes(data []byte) Digest {
	sum := blake2b.Sum256(data)
	return render(sum[:])
}

// File digests the file at path by streaming its contents.
func File(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("digesting %s: %w", path, err)
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", fmt.Errorf("digesting %s: %w", path, err)
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("digesting %s: %w", path, err)
	}
	return render(h.Sum(nil)), nil
}

// Strings digests an ordered list by joining items with newlines. Used
// for the declared symbol list, which is already sorted by its producer.
func Strings(items []string) Digest {
	return Bytes([]byte(strings.Join(items, "\n")))
}

func render(sum []byte) Digest {
	return Digest(Scheme + ":" + hex.EncodeToString(sum))
}
