package project

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest is a SHA-256 hash, compatible with source.File.Hash.
type Digest [32]byte

// Combine hashes content followed by parts in order.
func Combine(content Digest, parts ...[]byte) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, p := range parts {
		_, _ = h.Write(p)
		_, _ = h.Write([]byte{0})
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether d was never set.
func (d Digest) IsZero() bool { return d == Digest{} }
