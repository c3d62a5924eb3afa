package hashindex

// index.go is the public ShardedHashIndex surface: the inverted index
// mapping each hash to the multiset of sketch IDs that contain it, sharded
// across N independently-locked partitions (spec.md §3-4.1). This is the
// engineering core this module exists to get right — the parallel
// construction in builder.go and the gather residual-update protocol in
// package gather both depend on its invariants holding exactly.
//
// © 2025 smash authors. MIT License.

import (
	"errors"

	"github.com/dkoslicki/smash-alternate-implementations/internal/bitutil"
	"github.com/dkoslicki/smash-alternate-implementations/pkg/sketch"
)

// DefaultShardCount is spec.md §4.1's recommended default (N=4096), chosen
// to keep lock contention low relative to worker count because MinHash
// output is uniformly distributed across the hash space.
const DefaultShardCount = 4096

// ErrInvalidShardCount is returned by New when shardCount is not positive.
var ErrInvalidShardCount = errors.New("hashindex: shard count must be > 0")

// Index is the sharded concurrent inverted index: hash -> {sketch IDs}.
// Shard selection is hash mod N (or a mask when N is a power of two, see
// internal/bitutil). Multiple readers of different shards proceed in
// parallel; a writer and a reader of the same shard serialise on that
// shard's RWMutex (spec.md §5).
type Index struct {
	shards   []*shard
	shardFor func(hash sketch.Hash) int
}

// New constructs an empty Index with the given shard count. shardCount should
// be at least 16x the expected worker/thread count to keep contention low
// (spec.md §4.1 policy note); New does not enforce this, only that
// shardCount is positive.
func New(shardCount int) (*Index, error) {
	if shardCount <= 0 {
		return nil, ErrInvalidShardCount
	}
	idx := &Index{
		shards:   make([]*shard, shardCount),
		shardFor: bitutil.ShardFunc(shardCount),
	}
	for i := range idx.shards {
		idx.shards[i] = newShard()
	}
	return idx, nil
}

// NewDefault constructs an Index with DefaultShardCount shards.
func NewDefault() *Index {
	idx, err := New(DefaultShardCount)
	if err != nil {
		// DefaultShardCount is a positive constant; this cannot happen.
		panic(err)
	}
	return idx
}

func (idx *Index) shardAt(hash sketch.Hash) *shard {
	return idx.shards[idx.shardFor(hash)]
}

// Add appends id to the list at hash in the owning shard. No deduplication
// is performed; callers must ensure they do not add the same (hash, id) pair
// twice during index build (spec.md §4.1).
func (idx *Index) Add(hash sketch.Hash, id sketch.ID) {
	idx.shardAt(hash).add(hash, id)
}

// AddMany replaces the list at hash with ids, for bulk loads. This overload
// is unused by the core paths (IndexBuilder, GatherEngine, PairwiseEngine)
// but is part of the contract spec.md §4.1/§9 describes.
func (idx *Index) AddMany(hash sketch.Hash, ids []sketch.ID) {
	idx.shardAt(hash).addMany(hash, ids)
}

// Get returns a snapshot copy of the sketch IDs at hash, or nil if absent.
// The copy is safe to hold across subsequent Remove/RemoveAll calls on the
// same hash (spec.md §4.1 "Policy notes").
func (idx *Index) Get(hash sketch.Hash) []sketch.ID {
	return idx.shardAt(hash).get(hash)
}

// Contains reports whether hash has any entries in the index.
func (idx *Index) Contains(hash sketch.Hash) bool {
	return idx.shardAt(hash).contains(hash)
}

// Remove erases the first occurrence of id from the list at hash. If the
// list becomes empty, the key is erased.
func (idx *Index) Remove(hash sketch.Hash, id sketch.ID) {
	idx.shardAt(hash).remove(hash, id)
}

// RemoveAll erases the key at hash and returns its full prior list (a
// permutation of insertion order). Used by gather to retire every occurrence
// of a hash in a single shard-locked step.
func (idx *Index) RemoveAll(hash sketch.Hash) []sketch.ID {
	return idx.shardAt(hash).removeAll(hash)
}

// Size returns the sum of key counts across all shards. Not atomic across
// shards; not required to be consistent with concurrent mutation.
func (idx *Index) Size() int {
	total := 0
	for _, s := range idx.shards {
		total += s.size()
	}
	return total
}

// ShardCount returns the number of shards this index was constructed with.
func (idx *Index) ShardCount() int {
	return len(idx.shards)
}
