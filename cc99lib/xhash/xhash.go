// Package xhash implements the stable, non-cryptographic byte-range hash
// component A of the toolchain relies on for SSTORE dedup and for selecting
// HB's per-mode hash-table buckets. No security properties are required; the
// only contract is that equal byte sequences hash identically on every
// platform the stores are shared across, which xxhash's pure-integer
// algorithm provides by construction.
package xhash

import "github.com/cespare/xxhash/v2"

// Hash32 folds a 64-bit xxhash digest of b into 32 bits for use as an SSTORE
// dedup key.
func Hash32(b []byte) uint32 {
	h := xxhash.Sum64(b)
	return uint32(h) ^ uint32(h>>32)
}

// BucketOf returns a hash of a record id reduced to the range [0, buckets),
// the selection rule HB uses to place an id into one of its per-mode chained
// hash-table buckets. buckets must be > 0.
func BucketOf(id uint32, buckets int) int {
	if buckets <= 0 {
		return 0
	}
	h := xxhash.Sum64(idBytes(id))
	return int(h % uint64(buckets))
}

func idBytes(id uint32) []byte {
	return []byte{byte(id), byte(id >> 8), byte(id >> 16), byte(id >> 24)}
}
