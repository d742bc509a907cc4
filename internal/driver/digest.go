package driver

import "crypto/sha256"

// Digest is a SHA-256 value used to key the disk cache.
type Digest [32]byte

// HashBytes returns the digest of raw content.
func HashBytes(b []byte) Digest {
	return sha256.Sum256(b)
}

// combineDigest: H(content || extra1 || extra2 ...). Порядок значим.
func combineDigest(content Digest, extra ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range extra {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// IsZero reports whether the digest is all zeroes.
func (d Digest) IsZero() bool {
	var z Digest
	return d == z
}
