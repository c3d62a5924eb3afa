package sketchio

// cache.go implements an optional on-disk cache of parsed sketches, grounded
// on the teacher's examples/disk_eject/main.go L2-cache pattern: a loader
// consults Badger first, and on a miss does the expensive work (here, JSON
// parsing) and writes the result back. This is purely a performance layer —
// it never changes what a load returns, only how often it has to re-parse
// JSON for an unchanged file across runs. It is not the canonical sketch wire
// format described in spec.md §6; its encoding is an internal detail that
// may be invalidated and rebuilt at any time.
//
// © 2025 smash authors. MIT License.

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/dkoslicki/smash-alternate-implementations/pkg/sketch"
)

// Cache wraps an embedded Badger database keyed by (absolute path, size,
// mtime) so that a changed file is always treated as a cache miss.
type Cache struct {
	db *badger.DB
}

// OpenCache opens (or creates) a parse cache rooted at dir. Callers must
// Close it when done.
func OpenCache(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open sketch cache at %s: %w", dir, err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

type cachedSketch struct {
	Hashes  []sketch.Hash
	Name    string
	MD5     string
	KSize   int
	MaxHash sketch.Hash
	Seed    int
}

// Lookup returns the cached sketch for path if present and still fresh
// (matching size and mtime). ok is false on any miss, including I/O errors
// consulting the cache — a cache failure must never fail the load, only
// force a re-parse.
func (c *Cache) Lookup(path string) (s sketch.Sketch, ok bool) {
	if c == nil {
		return sketch.Sketch{}, false
	}
	key, freshErr := cacheKey(path)
	if freshErr != nil {
		return sketch.Sketch{}, false
	}

	var payload []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			payload = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return sketch.Sketch{}, false
	}

	var cs cachedSketch
	dec := gob.NewDecoder(bytes.NewReader(payload))
	if err := dec.Decode(&cs); err != nil {
		return sketch.Sketch{}, false
	}
	return sketch.Sketch{
		Hashes:   cs.Hashes,
		Name:     cs.Name,
		MD5:      cs.MD5,
		FilePath: path,
		KSize:    cs.KSize,
		MaxHash:  cs.MaxHash,
		Seed:     cs.Seed,
	}, true
}

// Store persists a successfully parsed sketch so future Lookup calls for the
// same (path, size, mtime) tuple short-circuit JSON parsing. Store failures
// are swallowed: the cache is best-effort.
func (c *Cache) Store(path string, s sketch.Sketch) {
	if c == nil || s.LoadErr != nil {
		return
	}
	key, err := cacheKey(path)
	if err != nil {
		return
	}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	cs := cachedSketch{
		Hashes:  s.Hashes,
		Name:    s.Name,
		MD5:     s.MD5,
		KSize:   s.KSize,
		MaxHash: s.MaxHash,
		Seed:    s.Seed,
	}
	if err := enc.Encode(cs); err != nil {
		return
	}

	_ = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, buf.Bytes())
	})
}

func cacheKey(path string) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, errors.New("sketch path is a directory")
	}
	key := fmt.Sprintf("%s|%d|%d", abs, info.Size(), info.ModTime().UnixNano())
	return []byte(key), nil
}
