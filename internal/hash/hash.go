// Package hash wraps xxHash64 for block checksums and schema fingerprints.
package hash

import "github.com/cespare/xxhash/v2"

// Sum64 returns the xxHash64 of data.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// String returns the xxHash64 of s.
func String(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Digest accumulates an xxHash64 over several writes.
type Digest struct {
	d *xxhash.Digest
}

// NewDigest creates an empty Digest.
func NewDigest() *Digest {
	return &Digest{d: xxhash.New()}
}

// Write adds p to the digest. It never fails.
func (d *Digest) Write(p []byte) (int, error) {
	return d.d.Write(p)
}

// WriteString adds s to the digest without copying it.
func (d *Digest) WriteString(s string) (int, error) {
	return d.d.WriteString(s)
}

// Sum64 returns the hash of everything written so far.
func (d *Digest) Sum64() uint64 {
	return d.d.Sum64()
}
