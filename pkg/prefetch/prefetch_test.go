package prefetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoslicki/smash-alternate-implementations/pkg/hashindex"
	"github.com/dkoslicki/smash-alternate-implementations/pkg/sketch"
)

func buildS1Index(t *testing.T) (*hashindex.Index, []sketch.Sketch) {
	t.Helper()
	refs := []sketch.Sketch{
		{Name: "A", Hashes: []sketch.Hash{1, 2, 3}},
		{Name: "B", Hashes: []sketch.Hash{2, 3, 4}},
		{Name: "C", Hashes: []sketch.Hash{5}},
	}
	idx := hashindex.NewDefault()
	for refID, s := range refs {
		for _, h := range s.Hashes {
			idx.Add(h, refID)
		}
	}
	require.Equal(t, 5, idx.Size())
	return idx, refs
}

// TestRunMatchesS2 pins the worked example: query {1,2,3,4} against refs
// A={1,2,3}, B={2,3,4}, C={5} at threshold 1 yields A then B, both with
// intersection count 3, C dropped entirely.
func TestRunMatchesS2(t *testing.T) {
	idx, refs := buildS1Index(t)
	query := sketch.Sketch{Hashes: []sketch.Hash{1, 2, 3, 4}}

	rows := New(nil).Run(query, refs, idx, 1)

	require.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0].RefID) // A
	assert.Equal(t, 3, rows[0].NumIntersections)
	assert.Equal(t, 1, rows[1].RefID) // B
	assert.Equal(t, 3, rows[1].NumIntersections)
}

func TestRunTieBreaksByRefIDAscending(t *testing.T) {
	idx, refs := buildS1Index(t)
	query := sketch.Sketch{Hashes: []sketch.Hash{1, 2, 3, 4}}
	rows := New(nil).Run(query, refs, idx, 1)
	require.Len(t, rows, 2)
	assert.Less(t, rows[0].RefID, rows[1].RefID)
}

func TestRunDropsRowsBelowThreshold(t *testing.T) {
	idx, refs := buildS1Index(t)
	query := sketch.Sketch{Hashes: []sketch.Hash{5}}
	rows := New(nil).Run(query, refs, idx, 1)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].RefID) // C
}

func TestRunEmptyQueryYieldsNoRows(t *testing.T) {
	idx, refs := buildS1Index(t)
	rows := New(nil).Run(sketch.Sketch{}, refs, idx, 0)
	assert.Empty(t, rows)
}

func TestRunIsIdempotentAndDoesNotMutateIndex(t *testing.T) {
	idx, refs := buildS1Index(t)
	query := sketch.Sketch{Hashes: []sketch.Hash{1, 2, 3, 4}}

	first := New(nil).Run(query, refs, idx, 1)
	second := New(nil).Run(query, refs, idx, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, 5, idx.Size(), "prefetch must never mutate the index")
}
