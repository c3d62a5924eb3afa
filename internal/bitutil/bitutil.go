// Package bitutil centralises the small bit-arithmetic helpers this module
// needs for shard-index selection, adapted from the teacher's
// internal/unsafehelpers (which centralised unsafe.Pointer tricks for the
// same "keep one tiny audited place for low-level arithmetic" reason). Unlike
// the teacher, nothing here reaches for package unsafe: ShardedHashIndex
// selects shards from a plain uint64 hash, not from arbitrary key bytes, so
// there is no zero-copy string/slice conversion to centralise.
//
// © 2025 smash authors. MIT License.
package bitutil

// IsPowerOfTwo returns true if x is a power of two (exactly one bit set).
func IsPowerOfTwo(x uint64) bool {
	return x != 0 && (x&(x-1)) == 0
}

// ShardFunc returns the fastest correct (hash -> shard index) function for a
// given shard count. When shards is a power of two the mod is replaced with
// a mask, which is both faster and exactly equivalent; any other shard count
// falls back to the plain modulo spec.md §3 specifies ("hash mod N").
func ShardFunc(shards int) func(hash uint64) int {
	n := uint64(shards)
	if IsPowerOfTwo(n) {
		mask := n - 1
		return func(hash uint64) int { return int(hash & mask) }
	}
	return func(hash uint64) int { return int(hash % n) }
}
