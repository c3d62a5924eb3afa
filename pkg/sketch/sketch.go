// Package sketch defines the immutable value type shared by every engine in
// this module: a MinHash sketch loaded from a signature file.
//
// © 2025 smash authors. MIT License.
package sketch

// Hash is the 64-bit hash type produced by the upstream MinHash sketching
// tool. It carries no semantics beyond "unsigned 64-bit integer" here; this
// package never computes hashes from sequence data, only consumes them.
type Hash = uint64

// Sketch is an immutable value holding the ascending, duplicate-free hash
// sequence of one signature, plus the metadata needed to report it. A Sketch
// is constructed once at load time (see package sketchio) and never mutated
// afterwards — not even by gather, which retires hashes from the index, not
// from the Sketch itself.
type Sketch struct {
	Hashes []Hash

	Name     string
	MD5      string
	FilePath string

	KSize   int
	MaxHash Hash
	Seed    int

	// LoadErr is non-nil when this Sketch could not be parsed from its
	// source file. An empty Hashes slice with a non-nil LoadErr is the
	// canonical "failed to load" representation; callers that only need
	// the authoritative empty-sketch report should prefer
	// sketchio.LoadReport over inspecting this field directly.
	LoadErr error
}

// Size returns the number of hashes in the sketch.
func (s Sketch) Size() int {
	return len(s.Hashes)
}

// Empty reports whether the sketch carries no hashes, either because the
// source signature was genuinely empty or because it failed to load.
func (s Sketch) Empty() bool {
	return len(s.Hashes) == 0
}

// ID is a non-negative index into the ambient sketch vector for a run. It is
// stable for the duration of that run and is never persisted.
type ID = int
