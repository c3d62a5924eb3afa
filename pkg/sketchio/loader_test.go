package sketchio

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSketchFile(t *testing.T, dir, name string, hashes string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	doc := `[{"name":"` + name + `","signatures":[{"mins":[` + hashes + `],"md5sum":"x","ksize":21,"max_hash":1,"seed":42}]}]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestLoaderLoadPreservesOrderAndReportsEmpty(t *testing.T) {
	dir := t.TempDir()
	good1 := writeSketchFile(t, dir, "good1.sig.json", "1,2,3")
	good2 := writeSketchFile(t, dir, "good2.sig.json", "4,5")
	missing := filepath.Join(dir, "missing.sig.json")

	loader := NewLoader(4, nil, nil)
	sketches, report := loader.Load(context.Background(), []string{good1, missing, good2})

	require.Len(t, sketches, 3)
	assert.Equal(t, []uint64{1, 2, 3}, sketches[0].Hashes)
	assert.True(t, sketches[1].Empty())
	assert.Equal(t, []uint64{4, 5}, sketches[2].Hashes)

	assert.Equal(t, []int{1}, report.EmptyIDs)
	assert.Error(t, report.Errors[1])
}

func TestLoaderLoadEmptyPathsIsNoop(t *testing.T) {
	loader := NewLoader(4, nil, nil)
	sketches, report := loader.Load(context.Background(), nil)
	assert.Empty(t, sketches)
	assert.Empty(t, report.EmptyIDs)
}

func TestLoaderClampsThreadsToAtLeastOne(t *testing.T) {
	loader := NewLoader(0, nil, nil)
	assert.Equal(t, 1, loader.Threads)
}

func TestLoaderUsesCacheOnSecondLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeSketchFile(t, dir, "cached.sig.json", "9,10")

	cacheDir := filepath.Join(dir, "cache")
	cache, err := OpenCache(cacheDir)
	require.NoError(t, err)
	defer cache.Close()

	loader := NewLoader(1, cache, nil)
	first, _ := loader.Load(context.Background(), []string{path})
	require.Len(t, first, 1)
	assert.Equal(t, []uint64{9, 10}, first[0].Hashes)

	// Corrupt the source file without changing its size or mtime; a cache
	// hit should still return the previously parsed, now-stale result rather
	// than re-parsing, since the cache key (path, size, mtime) is unchanged.
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, make([]byte, info.Size()), 0o644))
	require.NoError(t, os.Chtimes(path, info.ModTime(), info.ModTime()))

	second, _ := loader.Load(context.Background(), []string{path})
	require.Len(t, second, 1)
	assert.Equal(t, []uint64{9, 10}, second[0].Hashes)

	cached, ok := cache.Lookup(path)
	require.True(t, ok)
	assert.Equal(t, []uint64{9, 10}, cached.Hashes)
}
