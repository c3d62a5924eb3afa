package hashindex

// shard.go contains one partition of the sharded inverted index. An Index is
// split into N independent shards to minimise lock contention during
// parallel construction, mirroring the teacher's pkg/shard.go (arena-cache
// splits its key space across shards for the same reason). Each shard owns
// its own map and RWMutex; a hash always belongs to exactly one shard,
// selected by internal/bitutil.ShardFunc.
//
// © 2025 smash authors. MIT License.

import (
	"sync"

	"github.com/dkoslicki/smash-alternate-implementations/pkg/sketch"
)

// shard maps hash -> ordered-by-insertion, possibly-duplicate-bearing list
// of sketch IDs that contain it. Order within a list is insertion order only;
// callers must treat it as a multiset (spec.md §3).
type shard struct {
	mu sync.RWMutex
	m  map[sketch.Hash][]sketch.ID
}

func newShard() *shard {
	return &shard{m: make(map[sketch.Hash][]sketch.ID)}
}

// add appends id to the list at hash, creating the list if absent. No
// deduplication is performed: callers must not add the same (hash, id) pair
// twice (spec.md §4.1).
func (s *shard) add(hash sketch.Hash, id sketch.ID) {
	s.mu.Lock()
	s.m[hash] = append(s.m[hash], id)
	s.mu.Unlock()
}

// addMany replaces the list at hash outright (spec.md §4.1, §9: the bulk
// overload in the original implementation unconditionally overwrites).
func (s *shard) addMany(hash sketch.Hash, ids []sketch.ID) {
	cp := make([]sketch.ID, len(ids))
	copy(cp, ids)
	s.mu.Lock()
	s.m[hash] = cp
	s.mu.Unlock()
}

// get returns a snapshot copy of the list at hash, or nil if absent. A copy
// is returned unconditionally so that callers (notably gather, which
// interleaves get-like reads with remove_all mutations of the same shard)
// never observe a slice that mutates out from under them.
func (s *shard) get(hash sketch.Hash) []sketch.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids, ok := s.m[hash]
	if !ok {
		return nil
	}
	cp := make([]sketch.ID, len(ids))
	copy(cp, ids)
	return cp
}

// contains reports whether hash has any entries in this shard.
func (s *shard) contains(hash sketch.Hash) bool {
	s.mu.RLock()
	_, ok := s.m[hash]
	s.mu.RUnlock()
	return ok
}

// remove erases the first occurrence of id from the list at hash; if the
// list becomes empty the key is erased entirely (spec.md §3: "An empty list
// for a key is not permitted to persist").
func (s *shard) remove(hash sketch.Hash, id sketch.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, ok := s.m[hash]
	if !ok {
		return
	}
	for i, v := range ids {
		if v == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(s.m, hash)
		return
	}
	s.m[hash] = ids
}

// removeAll erases the key at hash and returns its full list (a permutation
// of what was stored). Returns nil if the key was absent.
func (s *shard) removeAll(hash sketch.Hash) []sketch.ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, ok := s.m[hash]
	if !ok {
		return nil
	}
	delete(s.m, hash)
	return ids
}

// size returns the number of keys held by this shard.
func (s *shard) size() int {
	s.mu.RLock()
	n := len(s.m)
	s.mu.RUnlock()
	return n
}
