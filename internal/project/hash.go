package project

import (
	"crypto/sha256"
)

// Digest is a fixed 256-bit hash (compatible with source.File.Hash)
type Digest [32]byte

// Combine builds the run hash: H( config || file1 || file2 ... ).
// The order of parts must be deterministic (files are sorted by path).
func Combine(head Digest, parts ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(head[:])
	for _, d := range parts {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// HashStrings hashes a list of strings with separators.
func HashStrings(items ...string) Digest {
	h := sha256.New()
	for _, s := range items {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0})
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
