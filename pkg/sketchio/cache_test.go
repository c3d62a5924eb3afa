package sketchio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoslicki/smash-alternate-implementations/pkg/sketch"
)

func TestCacheStoreThenLookupRoundTrips(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenCache(filepath.Join(dir, "db"))
	require.NoError(t, err)
	defer cache.Close()

	path := filepath.Join(dir, "a.sig.json")
	require.NoError(t, os.WriteFile(path, []byte("irrelevant"), 0o644))

	want := sketch.Sketch{Hashes: []sketch.Hash{1, 2, 3}, Name: "a", MD5: "m", KSize: 21, MaxHash: 9, Seed: 42}
	cache.Store(path, want)

	got, ok := cache.Lookup(path)
	require.True(t, ok)
	assert.Equal(t, want.Hashes, got.Hashes)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.MD5, got.MD5)
	assert.Equal(t, path, got.FilePath)
}

func TestCacheLookupMissWhenNeverStored(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenCache(filepath.Join(dir, "db"))
	require.NoError(t, err)
	defer cache.Close()

	path := filepath.Join(dir, "never.sig.json")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, ok := cache.Lookup(path)
	assert.False(t, ok)
}

func TestCacheStoreIgnoresFailedLoads(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenCache(filepath.Join(dir, "db"))
	require.NoError(t, err)
	defer cache.Close()

	path := filepath.Join(dir, "bad.sig.json")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	cache.Store(path, sketch.Sketch{LoadErr: assert.AnError})
	_, ok := cache.Lookup(path)
	assert.False(t, ok, "a failed load must never be cached")
}

func TestCacheKeyChangesWithMtime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.sig.json")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	k1, err := cacheKey(path)
	require.NoError(t, err)

	newTime := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, newTime, newTime))

	k2, err := cacheKey(path)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}

func TestNilCacheIsSafeNoop(t *testing.T) {
	var cache *Cache
	_, ok := cache.Lookup("anything")
	assert.False(t, ok)
	cache.Store("anything", sketch.Sketch{Hashes: []sketch.Hash{1}})
	assert.NoError(t, cache.Close())
}
